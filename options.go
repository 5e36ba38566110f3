// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/loader"
)

// Options configures an Engine. Every field has a documented default,
// applied by DefaultOptions, and the struct is validated once by New.
//
// Options can be written in TOML; field keys are the snake_case names in
// the struct tags:
//
//	prevent_cache_wipe_between_frames = false
//	lockstep = true
//	lockstep_max_steps = 4
//	time_step = "16ms"
type Options struct {
	// PreventCacheWipeBetweenFrames makes WipeCaches(false) a no-op, for
	// hosts that never touch the context between frames. Default false.
	PreventCacheWipeBetweenFrames bool `toml:"prevent_cache_wipe_between_frames"`
	// CullBackFaces selects back-face culling for SetState; false culls
	// front faces. Default true.
	CullBackFaces bool `toml:"cull_back_faces"`
	// FlushOnEndFrame flushes the context after every frame, for drivers
	// known to buffer commands indefinitely. Default false.
	FlushOnEndFrame bool `toml:"flush_on_end_frame"`

	// DisableParallelCompile links programs synchronously even when the
	// context can compile in parallel. Default false.
	DisableParallelCompile bool `toml:"disable_parallel_compile"`
	// DisableBindingOptimization binds every texture to the channel the
	// material asks for. Default false.
	DisableBindingOptimization bool `toml:"disable_binding_optimization"`
	// ForcePowerOfTwo rescales every loaded image to power-of-two sizes.
	// Version 1 contexts always do. Default false.
	ForcePowerOfTwo bool `toml:"force_power_of_two"`
	// DisableFlipYCache issues UNPACK_FLIP_Y before every upload. Default
	// false.
	DisableFlipYCache bool `toml:"disable_flip_y_cache"`

	// Lockstep turns on deterministic lockstep stepping. Default false.
	Lockstep bool `toml:"lockstep"`
	// LockstepMaxSteps caps the simulation steps per frame. Default 4.
	LockstepMaxSteps int `toml:"lockstep_max_steps"`
	// TimeStep is the duration of one lockstep step. Default 1/60 s.
	TimeStep time.Duration `toml:"time_step"`

	// AssetRoot resolves relative texture URLs. Default the working
	// directory.
	AssetRoot string `toml:"asset_root"`
	// ImageCacheBytes bounds the decoded image cache. Default 64 MiB.
	ImageCacheBytes int `toml:"image_cache_bytes"`

	// Loaders replaces the image loader registry. Default
	// loader.DefaultRegistry().
	Loaders *loader.Registry `toml:"-"`
	// Fetcher replaces the URL fetcher. Default a loader.DefaultFetcher
	// rooted at AssetRoot.
	Fetcher loader.Fetcher `toml:"-"`
	// Now replaces time.Now in the frame loop, for tests. Default nil.
	Now func() time.Time `toml:"-"`
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		CullBackFaces:    true,
		LockstepMaxSteps: frame.DefaultLockstepMaxSteps,
		TimeStep:         frame.DefaultTimeStep,
		ImageCacheBytes:  loader.DefaultCacheBytes,
	}
}

// Validate reports option values no engine can run with.
func (o Options) Validate() error {
	switch {
	case o.LockstepMaxSteps < 0:
		return fmt.Errorf("%w: lockstep max steps %d", ErrInvalidOptions, o.LockstepMaxSteps)
	case o.TimeStep < 0:
		return fmt.Errorf("%w: time step %v", ErrInvalidOptions, o.TimeStep)
	case o.Lockstep && o.TimeStep == 0:
		return fmt.Errorf("%w: lockstep needs a time step", ErrInvalidOptions)
	case o.ImageCacheBytes < 0:
		return fmt.Errorf("%w: image cache of %d bytes", ErrInvalidOptions, o.ImageCacheBytes)
	}
	return nil
}

// WithOptions replaces every option with o, typically loaded from a file.
// Options given after it still apply.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithPreventCacheWipeBetweenFrames keeps the caches across frames.
func WithPreventCacheWipeBetweenFrames(v bool) Option {
	return func(o *Options) { o.PreventCacheWipeBetweenFrames = v }
}

// WithCullBackFaces selects the face culled by SetState.
func WithCullBackFaces(v bool) Option {
	return func(o *Options) { o.CullBackFaces = v }
}

// WithFlushOnEndFrame flushes the context at the end of every frame.
func WithFlushOnEndFrame(v bool) Option {
	return func(o *Options) { o.FlushOnEndFrame = v }
}

// WithParallelCompile enables or disables parallel shader compilation
// where the context supports it.
func WithParallelCompile(v bool) Option {
	return func(o *Options) { o.DisableParallelCompile = !v }
}

// WithBindingOptimization enables or disables texture unit redirection.
func WithBindingOptimization(v bool) Option {
	return func(o *Options) { o.DisableBindingOptimization = !v }
}

// WithForcePowerOfTwo rescales loaded images to power-of-two sizes.
func WithForcePowerOfTwo(v bool) Option {
	return func(o *Options) { o.ForcePowerOfTwo = v }
}

// WithLockstep turns on deterministic lockstep with the given step cap and
// step duration.
//
// Example:
//
//	e, err := glengine.New(ctx, glengine.WithLockstep(4, time.Second/60))
func WithLockstep(maxSteps int, timeStep time.Duration) Option {
	return func(o *Options) {
		o.Lockstep = true
		o.LockstepMaxSteps = maxSteps
		o.TimeStep = timeStep
	}
}

// WithAssetRoot resolves relative texture URLs against dir.
func WithAssetRoot(dir string) Option {
	return func(o *Options) { o.AssetRoot = dir }
}

// WithImageCacheBytes bounds the decoded image cache.
func WithImageCacheBytes(n int) Option {
	return func(o *Options) { o.ImageCacheBytes = n }
}

// WithLoaders injects the image loader registry.
func WithLoaders(r *loader.Registry) Option {
	return func(o *Options) { o.Loaders = r }
}

// WithFetcher injects the URL fetcher.
func WithFetcher(f loader.Fetcher) Option {
	return func(o *Options) { o.Fetcher = f }
}

// WithClock replaces time.Now in the frame loop.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// ParseOptions decodes TOML on top of DefaultOptions. Unknown keys are an
// error.
func ParseOptions(data []byte) (Options, error) {
	o := DefaultOptions()
	md, err := toml.Decode(string(data), &o)
	if err != nil {
		return Options{}, fmt.Errorf("glengine: parse options: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("%w: unknown key %q", ErrInvalidOptions, undecoded[0].String())
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadOptions reads options from a TOML file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("glengine: load options: %w", err)
	}
	return ParseOptions(data)
}
