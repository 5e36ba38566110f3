// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline caches linked shader programs ("effects").
//
// Effects are keyed by vertex name, fragment name and defines, so asking
// twice for the same combination compiles once. On contexts advertising
// KHR_parallel_shader_compile linking is not waited on: the cache polls
// the completion status once per frame through Poll and finalizes the
// effect when the driver is done. Failures keep the native info log and
// are permanent for that key.
//
//	c := pipeline.New(ctx, caps, queue, pipeline.Options{})
//	e, err := c.CreateEffect(pipeline.EffectOptions{
//		Vertex: "default", Fragment: "default",
//		Attributes: []string{"position"},
//	})
//	if err != nil {
//		var ce *pipeline.CompileError
//		errors.As(err, &ce)
//	}
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// Errors returned by the cache.
var (
	// ErrCreate is returned when the context refuses a shader or program
	// object, typically because it is lost.
	ErrCreate = errors.New("pipeline: creation failed")

	// ErrStale is returned for released effects.
	ErrStale = errors.New("pipeline: stale effect")

	// ErrNotReady is returned when an effect still compiling is used.
	ErrNotReady = errors.New("pipeline: effect not ready")

	// ErrNoSource is returned when neither the options nor the shader
	// store provide the code of a stage.
	ErrNoSource = errors.New("pipeline: missing shader source")

	// ErrUnsupported is returned for features the context lacks.
	ErrUnsupported = errors.New("pipeline: unsupported feature")
)

// Stage identifies where a compile error happened.
type Stage uint8

// Stages.
const (
	StageVertex Stage = iota
	StageFragment
	StageProgram
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "VERTEX SHADER"
	case StageFragment:
		return "FRAGMENT SHADER"
	default:
		return "PROGRAM"
	}
}

// CompileError carries the driver's info log of a failed compile or link.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	if e.Stage == StageProgram {
		return e.Log
	}
	return e.Stage.String() + " " + e.Log
}

// Status is the lifecycle state of an effect.
type Status uint8

// Statuses.
const (
	Compiling Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Compiling:
		return "compiling"
	case Ready:
		return "ready"
	default:
		return "failed"
	}
}

// Options configures a Cache.
type Options struct {
	// DisableParallelCompile links synchronously even when the context
	// supports parallel compilation.
	DisableParallelCompile bool
}

// Cache owns every effect of one context. It is not safe for concurrent
// use.
type Cache struct {
	ctx   native.Context
	caps  *caps.Caps
	queue *frame.Queue
	opts  Options

	effects arena.Arena[*Effect]
	byKey   map[string]*Effect
	pending []*Effect
	store   map[storeKey]string

	current      *Effect
	program      native.Program
	programKnown bool

	compiles int

	useHooks    []func(native.Program)
	deleteHooks []func(native.Program)
}

type storeKey struct {
	stage Stage
	name  string
}

// New returns a cache for ctx. Compile futures resolve through q.
func New(ctx native.Context, c *caps.Caps, q *frame.Queue, opts Options) *Cache {
	return &Cache{
		ctx:   ctx,
		caps:  c,
		queue: q,
		opts:  opts,
		byKey: make(map[string]*Effect),
		store: make(map[storeKey]string),
	}
}

// Parallel reports whether links are finalized asynchronously.
func (c *Cache) Parallel() bool {
	return c.caps.ParallelShaderCompile && !c.opts.DisableParallelCompile
}

// RegisterShader stores source under name for stage, for effects that
// name a shader without giving its code.
func (c *Cache) RegisterShader(name string, stage Stage, source string) {
	c.store[storeKey{stage, name}] = source
}

// Compiles returns how many programs have been linked, rebuilds included.
func (c *Cache) Compiles() int { return c.compiles }

// Len returns the number of live effects.
func (c *Cache) Len() int { return c.effects.Len() }

// OnUse registers fn to run whenever another program becomes current.
func (c *Cache) OnUse(fn func(native.Program)) {
	if fn != nil {
		c.useHooks = append(c.useHooks, fn)
	}
}

// OnDelete registers fn to run before a program is deleted.
func (c *Cache) OnDelete(fn func(native.Program)) {
	if fn != nil {
		c.deleteHooks = append(c.deleteHooks, fn)
	}
}

// IsLive reports whether e is still owned by c.
func (c *Cache) IsLive(e *Effect) bool {
	if e == nil {
		return false
	}
	got, ok := c.effects.Get(e.handle)
	return ok && got == e
}

// Effect returns the cached effect for key, if any.
func (c *Cache) Effect(key string) (*Effect, bool) {
	e, ok := c.byKey[key]
	return e, ok
}

// CreateEffect returns the effect for o, compiling it on first request.
// A cached effect is returned as is: OnCompiled runs right away when it is
// ready, is queued while it compiles, and OnError runs for a failed one.
//
// A synchronous compile or link failure returns the failed effect with a
// *CompileError. Creation failures return a nil effect.
func (c *Cache) CreateEffect(o EffectOptions) (*Effect, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	key := o.Key()
	if e, ok := c.byKey[key]; ok {
		switch e.status {
		case Ready:
			if o.OnCompiled != nil {
				o.OnCompiled(e)
			}
		case Compiling:
			e.ExecuteWhenCompiled(o.OnCompiled)
		case Failed:
			if o.OnError != nil {
				o.OnError(e, e.err)
			}
		}
		return e, e.err
	}

	vs, fs, err := c.sources(o)
	if err != nil {
		return nil, err
	}
	e := &Effect{
		cache:        c,
		key:          key,
		opts:         o,
		vertexCode:   vs,
		fragmentCode: fs,
	}
	if o.OnCompiled != nil {
		e.whenCompiled = append(e.whenCompiled, o.OnCompiled)
	}
	e.recreate = func() error { return c.build(e) }
	if err := e.recreate(); err != nil {
		var ce *CompileError
		if !errors.As(err, &ce) {
			return nil, err
		}
	}
	e.handle = c.effects.Insert(e)
	c.byKey[key] = e
	return e, e.err
}

// sources resolves the final code of both stages.
func (c *Cache) sources(o EffectOptions) (vs, fs string, err error) {
	vs, fs = o.VertexSource, o.FragmentSource
	if vs == "" {
		vs = c.store[storeKey{StageVertex, o.Vertex}]
	}
	if fs == "" {
		fs = c.store[storeKey{StageFragment, o.Fragment}]
	}
	switch {
	case vs == "":
		return "", "", fmt.Errorf("%w: vertex %q", ErrNoSource, o.Vertex)
	case fs == "":
		return "", "", fmt.Errorf("%w: fragment %q", ErrNoSource, o.Fragment)
	}
	if o.Language == WGSL {
		if !c.caps.SPIRV {
			glog.For("pipeline").Error("WGSL effects need SPIR-V shader binaries", "effect", o.Key())
			return "", "", fmt.Errorf("%w: SPIR-V shader binaries", ErrUnsupported)
		}
		return vs, fs, nil
	}
	if !o.Raw {
		vs = concatenate(vs, o.Defines, c.caps.ShaderVersion())
		fs = concatenate(fs, o.Defines, c.caps.ShaderVersion())
	}
	return vs, fs, nil
}

func concatenate(source, defines, version string) string {
	if defines != "" {
		return version + defines + "\n" + source
	}
	return version + source
}

// Use makes e the current effect, issuing UseProgram only when its
// program is not already current. A nil e forgets the current effect.
func (c *Cache) Use(e *Effect) error {
	if e == nil {
		c.current = nil
		return nil
	}
	if !c.IsLive(e) {
		return ErrStale
	}
	switch e.status {
	case Compiling:
		return fmt.Errorf("%w: %s", ErrNotReady, e.key)
	case Failed:
		return e.err
	}
	c.current = e
	c.setProgram(e.program)
	return nil
}

func (c *Cache) setProgram(p native.Program) {
	if c.programKnown && c.program == p {
		return
	}
	c.ctx.UseProgram(p)
	c.program, c.programKnown = p, true
	for _, fn := range c.useHooks {
		fn(p)
	}
}

// Current returns the effect last made current, or nil.
func (c *Cache) Current() *Effect { return c.current }

// Poll checks the completion status of every effect compiling in
// parallel and finalizes those the driver is done with. It never waits
// and is meant to run once per frame. It returns how many effects were
// finalized.
func (c *Cache) Poll() int {
	if len(c.pending) == 0 {
		return 0
	}
	done := 0
	still := c.pending[:0]
	for _, e := range c.pending {
		if c.ctx.GetProgrami(e.program, native.COMPLETION_STATUS_KHR) == 0 {
			still = append(still, e)
			continue
		}
		done++
		if e.released {
			e.parallel = false
			c.destroy(e)
			continue
		}
		_ = c.finalize(e)
	}
	clear(c.pending[len(still):])
	c.pending = still
	return done
}

// Pending returns the number of effects awaiting a parallel link.
func (c *Cache) Pending() int { return len(c.pending) }

// AreAllEffectsReady reports whether every live effect has linked.
func (c *Cache) AreAllEffectsReady() bool {
	ready := true
	c.effects.Each(func(_ arena.Handle, e *Effect) {
		if e.status != Ready {
			ready = false
		}
	})
	return ready
}

// ReleaseEffect drops e from the cache and deletes its program. An effect
// still linking in parallel is deleted once Poll sees it finalized.
func (c *Cache) ReleaseEffect(e *Effect) error {
	if !c.IsLive(e) {
		return ErrStale
	}
	c.effects.Remove(e.handle)
	if c.byKey[e.key] == e {
		delete(c.byKey, e.key)
	}
	if c.current == e {
		c.current = nil
	}
	if e.parallel {
		e.released = true
		return nil
	}
	c.destroy(e)
	return nil
}

// ReleaseEffects releases every effect.
func (c *Cache) ReleaseEffects() {
	var all []*Effect
	c.effects.Each(func(_ arena.Handle, e *Effect) { all = append(all, e) })
	for _, e := range all {
		_ = c.ReleaseEffect(e)
	}
}

// destroy deletes the native objects of e: transform feedback first, then
// the program and any shader not yet freed.
func (c *Cache) destroy(e *Effect) {
	if e.feedback != 0 {
		c.ctx.DeleteTransformFeedback(e.feedback)
		e.feedback = 0
	}
	c.deleteShaders(e)
	if e.program != 0 {
		for _, fn := range c.deleteHooks {
			fn(e.program)
		}
		c.ctx.DeleteProgram(e.program)
		if c.program == e.program {
			c.programKnown = false
		}
		e.program = 0
	}
	clear(e.values)
}

// WipeCaches forgets the current effect. With bruteForce the current
// program and every uniform value cache are forgotten too.
func (c *Cache) WipeCaches(bruteForce bool) {
	c.current = nil
	if !bruteForce {
		return
	}
	c.programKnown = false
	c.effects.Each(func(_ arena.Handle, e *Effect) { clear(e.values) })
}

// Dispose deletes every program, waiting for no pending link.
func (c *Cache) Dispose() {
	for _, e := range c.pending {
		if e.released {
			c.destroy(e)
		}
	}
	c.pending = nil
	var all []arena.Handle
	c.effects.Each(func(h arena.Handle, e *Effect) {
		e.parallel = false
		c.destroy(e)
		all = append(all, h)
	})
	for _, h := range all {
		c.effects.Remove(h)
	}
	clear(c.byKey)
	c.current = nil
	c.programKnown = false
}

// RebuildAll relinks every effect on a fresh context after a context
// loss. Effects keep their identity; failed ones are tried again.
func (c *Cache) RebuildAll() error {
	c.pending = nil
	c.current = nil
	c.programKnown = false
	var errs []error
	c.effects.Each(func(_ arena.Handle, e *Effect) {
		e.program, e.vs, e.fs, e.feedback = 0, 0, 0, 0
		clear(e.values)
		clear(e.locations)
		if err := e.recreate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.key, err))
		}
	})
	if len(errs) == 0 {
		glog.For("pipeline").Debug("effects rebuilt", "effects", c.effects.Len())
	}
	return errors.Join(errs...)
}
