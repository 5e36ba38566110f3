// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"slices"
	"time"

	"github.com/gogpu/glengine/internal/glog"
)

// ErrPending is returned by Future.Result before the future resolves.
var ErrPending = errors.New("frame: result pending")

// Defaults for deterministic lockstep.
const (
	DefaultLockstepMaxSteps = 4
	DefaultTimeStep         = time.Second / 60
)

// fpsWindow is the number of frame intervals averaged by FPS.
const fpsWindow = 30

// Options configures a Loop.
type Options struct {
	// Lockstep makes Steps report a fixed number of simulation steps per
	// frame instead of 1.
	Lockstep bool
	// LockstepMaxSteps caps the steps taken in one frame. Default 4.
	LockstepMaxSteps int
	// TimeStep is the duration of one lockstep step. Default 1/60 s.
	TimeStep time.Duration
}

func (o Options) withDefaults() Options {
	if o.LockstepMaxSteps <= 0 {
		o.LockstepMaxSteps = DefaultLockstepMaxSteps
	}
	if o.TimeStep <= 0 {
		o.TimeStep = DefaultTimeStep
	}
	return o
}

// Hooks connect a Loop to the engine. Every field is optional.
type Hooks struct {
	// Begin runs after the queue is drained, before any render function.
	Begin func()
	// End runs after the last render function.
	End func()
	// Lost reports a lost context; frames are skipped while it returns true.
	Lost func() bool
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Func is a registered render function. Its pointer is its identity, so
// registering the same Func twice is a no-op.
type Func struct {
	fn func()
}

// NewFunc wraps fn for registration with a Loop.
func NewFunc(fn func()) *Func { return &Func{fn: fn} }

// Loop drives render functions once per Tick. It never blocks and never
// paces itself: the host calls Tick once per display refresh. A Loop is
// Idle until a function is added and returns to Idle when the last one is
// removed.
type Loop struct {
	opts  Options
	hooks Hooks
	queue *Queue

	funcs []*Func

	frames  uint64
	last    time.Time
	samples [fpsWindow]time.Duration
	next    int
	count   int
	delta   time.Duration
	fps     float64

	accumulator time.Duration
	steps       int
}

// NewLoop returns an idle loop that drains q at the start of each frame.
// A nil q gets a private queue.
func NewLoop(opts Options, hooks Hooks, q *Queue) *Loop {
	if q == nil {
		q = &Queue{}
	}
	if hooks.Now == nil {
		hooks.Now = time.Now
	}
	return &Loop{opts: opts.withDefaults(), hooks: hooks, queue: q}
}

// Queue returns the queue drained at the start of each frame.
func (l *Loop) Queue() *Queue { return l.queue }

// Run registers f. Adding a function that is already registered does
// nothing.
func (l *Loop) Run(f *Func) {
	if f == nil || slices.Contains(l.funcs, f) {
		return
	}
	l.funcs = append(l.funcs, f)
	if len(l.funcs) == 1 {
		glog.For("frame").Debug("render loop started")
	}
}

// Stop unregisters f. Unknown functions are ignored.
func (l *Loop) Stop(f *Func) {
	i := slices.Index(l.funcs, f)
	if i < 0 {
		return
	}
	l.funcs = slices.Delete(l.funcs, i, i+1)
	if len(l.funcs) == 0 {
		glog.For("frame").Debug("render loop stopped")
	}
}

// StopAll unregisters every function.
func (l *Loop) StopAll() { l.funcs = nil }

// Running reports whether at least one function is registered.
func (l *Loop) Running() bool { return len(l.funcs) > 0 }

// Tick runs one frame: drain the queue, the Begin hook, every render
// function in registration order, then the End hook. It returns false
// without doing anything when the loop is idle or the context is lost.
func (l *Loop) Tick() bool {
	if len(l.funcs) == 0 {
		return false
	}
	if l.hooks.Lost != nil && l.hooks.Lost() {
		return false
	}
	l.Frame(func() {
		// Functions stopped by an earlier function this frame still run.
		for _, f := range slices.Clone(l.funcs) {
			f.fn()
		}
	})
	return true
}

// Frame runs render between the frame begin and end steps, without
// consulting the registered functions. It backs one-shot rendering.
func (l *Loop) Frame(render func()) {
	l.measure()
	l.queue.Drain()
	if l.hooks.Begin != nil {
		l.hooks.Begin()
	}
	if render != nil {
		render()
	}
	if l.hooks.End != nil {
		l.hooks.End()
	}
	l.frames++
}

func (l *Loop) measure() {
	now := l.hooks.Now()
	if !l.last.IsZero() {
		dt := now.Sub(l.last)
		l.samples[l.next] = dt
		l.next = (l.next + 1) % fpsWindow
		l.count = min(l.count+1, fpsWindow)
		l.delta = dt

		var sum time.Duration
		for i := 0; i < l.count; i++ {
			sum += l.samples[i]
		}
		if sum > 0 {
			l.fps = float64(l.count) / sum.Seconds()
		}
	}
	l.last = now
	l.advance()
}

// advance computes the lockstep steps for this frame, carrying the
// remainder over to the next one.
func (l *Loop) advance() {
	if !l.opts.Lockstep {
		l.steps = 1
		return
	}
	budget := l.delta + l.accumulator
	steps := min(int(budget/l.opts.TimeStep), l.opts.LockstepMaxSteps)
	budget -= time.Duration(steps) * l.opts.TimeStep
	l.accumulator = max(budget, 0)
	l.steps = steps
}

// FPS returns frames per second averaged over the last 30 frames.
func (l *Loop) FPS() float64 { return l.fps }

// DeltaTime returns the duration of the last frame interval.
func (l *Loop) DeltaTime() time.Duration { return l.delta }

// Frames returns the number of frames rendered so far.
func (l *Loop) Frames() uint64 { return l.frames }

// Steps returns the simulation steps to take this frame: the lockstep
// count in lockstep mode, 1 otherwise.
func (l *Loop) Steps() int { return l.steps }

// IsDeterministicLockStep reports whether lockstep mode is on.
func (l *Loop) IsDeterministicLockStep() bool { return l.opts.Lockstep }

// LockstepMaxSteps returns the per-frame step cap.
func (l *Loop) LockstepMaxSteps() int { return l.opts.LockstepMaxSteps }

// TimeStep returns the duration of one lockstep step.
func (l *Loop) TimeStep() time.Duration { return l.opts.TimeStep }
