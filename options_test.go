// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/loader"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if !o.CullBackFaces {
		t.Error("CullBackFaces = false, want true")
	}
	if o.LockstepMaxSteps != frame.DefaultLockstepMaxSteps {
		t.Errorf("LockstepMaxSteps = %d, want %d", o.LockstepMaxSteps, frame.DefaultLockstepMaxSteps)
	}
	if o.TimeStep != frame.DefaultTimeStep {
		t.Errorf("TimeStep = %v, want %v", o.TimeStep, frame.DefaultTimeStep)
	}
	if o.ImageCacheBytes != loader.DefaultCacheBytes {
		t.Errorf("ImageCacheBytes = %d, want %d", o.ImageCacheBytes, loader.DefaultCacheBytes)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		ok     bool
	}{
		{"defaults", func(*Options) {}, true},
		{"negative max steps", func(o *Options) { o.LockstepMaxSteps = -1 }, false},
		{"negative time step", func(o *Options) { o.TimeStep = -time.Millisecond }, false},
		{"lockstep without step", func(o *Options) { o.Lockstep, o.TimeStep = true, 0 }, false},
		{"zero step without lockstep", func(o *Options) { o.TimeStep = 0 }, true},
		{"negative cache", func(o *Options) { o.ImageCacheBytes = -1 }, false},
		{"zero cache", func(o *Options) { o.ImageCacheBytes = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			err := o.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Validate() = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestFunctionalOptions(t *testing.T) {
	now := func() time.Time { return time.Unix(0, 0) }
	reg := loader.NewRegistry()
	o := DefaultOptions()
	for _, opt := range []Option{
		WithPreventCacheWipeBetweenFrames(true),
		WithCullBackFaces(false),
		WithFlushOnEndFrame(true),
		WithParallelCompile(false),
		WithBindingOptimization(false),
		WithForcePowerOfTwo(true),
		WithLockstep(2, 5*time.Millisecond),
		WithAssetRoot("assets"),
		WithImageCacheBytes(1024),
		WithLoaders(reg),
		WithClock(now),
	} {
		opt(&o)
	}

	if !o.PreventCacheWipeBetweenFrames || o.CullBackFaces || !o.FlushOnEndFrame {
		t.Errorf("frame flags = %t, %t, %t", o.PreventCacheWipeBetweenFrames, o.CullBackFaces, o.FlushOnEndFrame)
	}
	if !o.DisableParallelCompile || !o.DisableBindingOptimization || !o.ForcePowerOfTwo {
		t.Errorf("cache flags = %t, %t, %t", o.DisableParallelCompile, o.DisableBindingOptimization, o.ForcePowerOfTwo)
	}
	if !o.Lockstep || o.LockstepMaxSteps != 2 || o.TimeStep != 5*time.Millisecond {
		t.Errorf("lockstep = %t, %d, %v", o.Lockstep, o.LockstepMaxSteps, o.TimeStep)
	}
	if o.AssetRoot != "assets" || o.ImageCacheBytes != 1024 {
		t.Errorf("AssetRoot = %q, ImageCacheBytes = %d", o.AssetRoot, o.ImageCacheBytes)
	}
	if o.Loaders != reg || o.Now == nil {
		t.Error("injected registry or clock lost")
	}
}

func TestWithOptionsThenOverride(t *testing.T) {
	base := DefaultOptions()
	base.AssetRoot = "base"
	base.FlushOnEndFrame = true

	o := DefaultOptions()
	WithOptions(base)(&o)
	WithAssetRoot("override")(&o)
	if o.AssetRoot != "override" || !o.FlushOnEndFrame {
		t.Errorf("AssetRoot = %q, FlushOnEndFrame = %t, want override and true", o.AssetRoot, o.FlushOnEndFrame)
	}
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOptions([]byte(`
prevent_cache_wipe_between_frames = true
cull_back_faces = false
lockstep = true
lockstep_max_steps = 8
time_step = "10ms"
asset_root = "textures"
image_cache_bytes = 4096
`))
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if !o.PreventCacheWipeBetweenFrames || o.CullBackFaces {
		t.Errorf("flags = %t, %t, want true, false", o.PreventCacheWipeBetweenFrames, o.CullBackFaces)
	}
	if !o.Lockstep || o.LockstepMaxSteps != 8 || o.TimeStep != 10*time.Millisecond {
		t.Errorf("lockstep = %t, %d, %v, want true, 8, 10ms", o.Lockstep, o.LockstepMaxSteps, o.TimeStep)
	}
	if o.AssetRoot != "textures" || o.ImageCacheBytes != 4096 {
		t.Errorf("AssetRoot = %q, ImageCacheBytes = %d", o.AssetRoot, o.ImageCacheBytes)
	}
}

func TestParseOptionsKeepsDefaults(t *testing.T) {
	o, err := ParseOptions([]byte(`flush_on_end_frame = true`))
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if !o.CullBackFaces || o.TimeStep != frame.DefaultTimeStep {
		t.Errorf("defaults lost: CullBackFaces = %t, TimeStep = %v", o.CullBackFaces, o.TimeStep)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown key", `max_fps = 60`, ErrInvalidOptions},
		{"invalid value", `lockstep_max_steps = -2`, ErrInvalidOptions},
		{"syntax", `lockstep = `, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseOptions() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ParseOptions() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte("disable_parallel_compile = true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if !o.DisableParallelCompile {
		t.Error("DisableParallelCompile = false, want true")
	}
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadOptions() of a missing file succeeded")
	}
}
