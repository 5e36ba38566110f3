// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"errors"
	"fmt"

	"github.com/gogpu/glengine/backend"
	"github.com/gogpu/glengine/buffer"
	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
	"github.com/gogpu/glengine/pipeline"
	"github.com/gogpu/glengine/state"
	"github.com/gogpu/glengine/target"
	"github.com/gogpu/glengine/texture"
)

// Engine owns every cache of one native context: the fixed-function state
// trackers, buffers and vertex arrays, textures and their units, effects,
// render targets and the frame loop. It is not safe for concurrent use;
// every method must run on the thread that owns the context.
type Engine struct {
	ctx  native.Context
	opts Options
	caps *caps.Caps

	depth     *state.DepthCull
	stencil   *state.Stencil
	alpha     *state.Alpha
	alphaMode state.AlphaMode

	buffers   *buffer.Cache
	textures  *texture.Manager
	pipelines *pipeline.Cache
	targets   *target.Manager
	loader    *loader.Service
	loop      *frame.Loop

	viewport       [4]int
	viewportKnown  bool
	cachedViewport *Viewport

	drawCalls int
	lost      bool
	disposed  bool
}

// New returns an engine driving ctx. Options are applied on top of
// DefaultOptions and validated once.
//
// Example:
//
//	ctx, _, err := backend.Default(backend.Config{Width: 800, Height: 600})
//	if err != nil {
//	    return err
//	}
//	e, err := glengine.New(ctx, glengine.WithLockstep(4, time.Second/60))
func New(ctx native.Context, opts ...Option) (*Engine, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", ErrInvalidOptions)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		ctx:       ctx,
		opts:      o,
		caps:      caps.Probe(ctx),
		depth:     state.NewDepthCull(),
		stencil:   state.NewStencil(),
		alpha:     state.NewAlpha(),
		alphaMode: state.AlphaDisable,
	}
	q := &frame.Queue{}
	e.loop = frame.NewLoop(frame.Options{
		Lockstep:         o.Lockstep,
		LockstepMaxSteps: o.LockstepMaxSteps,
		TimeStep:         o.TimeStep,
	}, frame.Hooks{
		Begin: e.beginFrame,
		End:   e.endFrame,
		Lost:  e.IsContextLost,
		Now:   o.Now,
	}, q)

	fetcher := o.Fetcher
	if fetcher == nil {
		fetcher = &loader.DefaultFetcher{Root: o.AssetRoot}
	}
	e.loader = loader.NewService(o.Loaders, fetcher, q, o.ImageCacheBytes)

	e.buffers = buffer.New(ctx, e.caps)
	e.textures = texture.New(ctx, e.caps, texture.Options{
		DisableBindingOptimization: o.DisableBindingOptimization,
		ForcePowerOfTwo:            o.ForcePowerOfTwo,
		DisableFlipYCache:          o.DisableFlipYCache,
		Loader:                     e.loader,
	})
	e.pipelines = pipeline.New(ctx, e.caps, q, pipeline.Options{
		DisableParallelCompile: o.DisableParallelCompile,
	})
	e.pipelines.OnUse(e.textures.UseProgram)
	e.pipelines.OnDelete(e.textures.ForgetProgram)
	e.targets = target.New(ctx, e.caps, e.textures)
	e.targets.SetViewportFunc(e.targetViewport)
	e.targets.SetWipeFunc(func() { e.WipeCaches(false) })

	glog.For("engine").Info("engine created",
		"version", e.caps.Version, "renderer", e.caps.Renderer, "parallelCompile", e.pipelines.Parallel())
	return e, nil
}

// Open creates a context with the named backend and an engine on it.
func Open(name string, cfg backend.Config, opts ...Option) (*Engine, error) {
	ctx, err := backend.Open(name, cfg)
	if err != nil {
		return nil, err
	}
	e, err := New(ctx, opts...)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}
	return e, nil
}

// Context returns the native context.
func (e *Engine) Context() native.Context { return e.ctx }

// Caps returns the capability record. It is refreshed in place when the
// context is restored.
func (e *Engine) Caps() *caps.Caps { return e.caps }

// Options returns the options the engine was created with.
func (e *Engine) Options() Options { return e.opts }

// Buffers returns the buffer and vertex array cache.
func (e *Engine) Buffers() *buffer.Cache { return e.buffers }

// Textures returns the texture manager.
func (e *Engine) Textures() *texture.Manager { return e.textures }

// Pipelines returns the effect cache.
func (e *Engine) Pipelines() *pipeline.Cache { return e.pipelines }

// Targets returns the render target manager.
func (e *Engine) Targets() *target.Manager { return e.targets }

// Loader returns the texture source loader.
func (e *Engine) Loader() *loader.Service { return e.loader }

// Loop returns the frame loop.
func (e *Engine) Loop() *frame.Loop { return e.loop }

// DepthCullingState returns the depth and culling tracker.
func (e *Engine) DepthCullingState() *state.DepthCull { return e.depth }

// StencilState returns the stencil tracker.
func (e *Engine) StencilState() *state.Stencil { return e.stencil }

// AlphaState returns the blending tracker.
func (e *Engine) AlphaState() *state.Alpha { return e.alpha }

// WipeCaches forgets what the engine believes is bound, so the next binds
// and state changes reach the context. Without bruteForce only the current
// effect, the viewport and the vertex bindings are forgotten, and nothing
// at all when PreventCacheWipeBetweenFrames is set. With bruteForce the
// current program, the texture units, every state tracker and every
// attribute are forgotten too.
func (e *Engine) WipeCaches(bruteForce bool) {
	if e.opts.PreventCacheWipeBetweenFrames && !bruteForce {
		return
	}
	e.pipelines.WipeCaches(bruteForce)
	e.viewportKnown = false
	if bruteForce {
		e.textures.WipeCaches(true)
		e.stencil.Reset()
		e.depth.Reset()
		e.alpha.Reset()
		e.alphaMode = state.AlphaAdd
	}
	e.buffers.WipeCaches(bruteForce)
}

// IsContextLost reports whether rendering is suspended by a context loss.
func (e *Engine) IsContextLost() bool { return e.lost || e.ctx.IsContextLost() }

// MarkContextLost suspends rendering until RestoreContext. Native objects
// are considered gone; handles stay valid.
func (e *Engine) MarkContextLost() {
	if e.lost {
		return
	}
	e.lost = true
	glog.For("engine").Info("context lost")
}

// RestoreContext resumes after a context loss: capabilities are probed
// again, every cache is wiped and every resource rebuilt. Rendering resumes
// even when some resources fail to rebuild; their errors are joined.
func (e *Engine) RestoreContext() error {
	if e.disposed {
		return ErrDisposed
	}
	if e.ctx.IsContextLost() {
		return ErrContextLost
	}
	*e.caps = *caps.Probe(e.ctx)
	e.lost = false
	e.viewportKnown = false
	err := e.RebuildAll()
	e.WipeCaches(true)
	glog.For("engine").Info("context restored", "err", err)
	return err
}

// RebuildAll recreates every buffer, texture, render target and effect on
// the current context. Handles keep their identity.
func (e *Engine) RebuildAll() error {
	if e.disposed {
		return ErrDisposed
	}
	return errors.Join(
		e.buffers.RebuildAll(),
		e.textures.RebuildAll(),
		e.targets.RebuildAll(),
		e.pipelines.RebuildAll(),
	)
}

// Dispose stops the frame loop, empties every texture unit and deletes
// every native object the engine owns. The context itself is left to its
// owner.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.textures.UnbindAllTextures()
	e.loop.StopAll()
	e.loader.Close()
	e.targets.Dispose()
	e.textures.Dispose()
	e.pipelines.Dispose()
	e.buffers.Dispose()
	e.loader.Purge()
	e.cachedViewport = nil
	e.viewportKnown = false
	e.disposed = true
	glog.For("engine").Debug("engine disposed")
}
