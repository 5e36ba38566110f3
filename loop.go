// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"time"

	"github.com/gogpu/glengine/backend"
	"github.com/gogpu/glengine/frame"
)

// beginFrame runs after the loop drained its queue: finished parallel
// compiles are finalized and the draw counter restarts.
func (e *Engine) beginFrame() {
	e.pipelines.Poll()
	e.drawCalls = 0
}

// endFrame flushes when asked to and presents the drawing buffer.
func (e *Engine) endFrame() {
	if e.opts.FlushOnEndFrame {
		e.ctx.Flush()
	}
	backend.Present(e.ctx)
}

// RunRenderLoop registers fn to run once per frame and returns its
// registration, which StopRenderLoop accepts.
//
// Example:
//
//	f := e.RunRenderLoop(func() {
//	    e.Clear(&gputypes.Color{A: 1}, true, true, false)
//	})
//	defer e.StopRenderLoop(f)
//	for !window.ShouldClose() {
//	    e.Tick()
//	}
func (e *Engine) RunRenderLoop(fn func()) *frame.Func {
	f := frame.NewFunc(fn)
	e.loop.Run(f)
	return f
}

// StopRenderLoop unregisters f, or every function when f is nil.
func (e *Engine) StopRenderLoop(f *frame.Func) {
	if f == nil {
		e.loop.StopAll()
		return
	}
	e.loop.Stop(f)
}

// Tick runs one frame of the render loop. It reports false when nothing is
// registered, the context is lost or the engine is disposed.
func (e *Engine) Tick() bool {
	if e.disposed {
		return false
	}
	return e.loop.Tick()
}

// RenderFrame runs fn as one frame, between the usual begin and end steps,
// without registering it.
func (e *Engine) RenderFrame(fn func()) error {
	switch {
	case e.disposed:
		return ErrDisposed
	case e.IsContextLost():
		return ErrContextLost
	}
	e.loop.Frame(fn)
	return nil
}

// FPS returns the frame rate averaged over recent frames.
func (e *Engine) FPS() float64 { return e.loop.FPS() }

// DeltaTime returns the duration of the last frame.
func (e *Engine) DeltaTime() time.Duration { return e.loop.DeltaTime() }

// IsDeterministicLockStep reports whether lockstep stepping is on.
func (e *Engine) IsDeterministicLockStep() bool { return e.loop.IsDeterministicLockStep() }

// LockstepMaxSteps returns the cap on simulation steps per frame.
func (e *Engine) LockstepMaxSteps() int { return e.loop.LockstepMaxSteps() }

// TimeStep returns the duration of one lockstep step.
func (e *Engine) TimeStep() time.Duration { return e.loop.TimeStep() }
