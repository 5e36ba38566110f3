// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/native"
)

// Language is the shading language of an effect's sources.
type Language uint8

// Languages.
const (
	// GLSL sources get the context's version preamble and the defines
	// prepended, unless Raw is set.
	GLSL Language = iota
	// WGSL sources are translated to SPIR-V and uploaded as binaries.
	// Defines only take part in the key.
	WGSL
)

// EffectOptions describes an effect. Vertex, Fragment and Defines form
// the cache key.
type EffectOptions struct {
	// Vertex and Fragment name the shaders. An empty name is derived from
	// the source text.
	Vertex, Fragment string
	// VertexSource and FragmentSource hold the code. Empty sources are
	// looked up in the shader store by name.
	VertexSource, FragmentSource string
	// Defines is prepended to both sources, one directive per line.
	Defines string
	// Language of the sources. Default GLSL.
	Language Language
	// Raw compiles the sources verbatim, without version or defines.
	Raw bool

	// Attributes lists the vertex inputs in binding order.
	Attributes []string
	// Uniforms and Samplers list the uniforms resolved at link time.
	// Samplers are numbered in order.
	Uniforms []string
	Samplers []string
	// TransformFeedbackVaryings are captured by transform feedback.
	// Ignored with an error log on version 1 contexts.
	TransformFeedbackVaryings []string
	// SeparateAttribs captures each varying into its own buffer instead
	// of interleaving them.
	SeparateAttribs bool

	// OnCompiled runs once the effect is ready.
	OnCompiled func(*Effect)
	// OnError runs when the effect fails to compile or link.
	OnError func(*Effect, error)
}

var errNoShader = errors.New("pipeline: effect needs a vertex and a fragment shader")

// Validate checks that both stages are named or given.
func (o EffectOptions) Validate() error {
	if o.Vertex == "" && o.VertexSource == "" || o.Fragment == "" && o.FragmentSource == "" {
		return errNoShader
	}
	if o.Language > WGSL {
		return fmt.Errorf("pipeline: unknown language %d", o.Language)
	}
	return nil
}

// Key returns vertex + "+" + fragment + "@" + defines.
func (o EffectOptions) Key() string {
	return stageName(o.Vertex, o.VertexSource) + "+" + stageName(o.Fragment, o.FragmentSource) + "@" + o.Defines
}

func stageName(name, source string) string {
	if name != "" {
		return name
	}
	h := fnv.New64a()
	h.Write([]byte(source))
	return fmt.Sprintf("source:%016x", h.Sum64())
}

// Effect is a cached shader program with its resolved locations and the
// last value written to each uniform.
type Effect struct {
	cache  *Cache
	handle arena.Handle
	key    string
	opts   EffectOptions

	vertexCode, fragmentCode string

	program  native.Program
	vs, fs   native.Shader
	feedback native.TransformFeedback

	status   Status
	err      error
	parallel bool
	released bool

	whenCompiled []func(*Effect)
	compiled     *frame.Future[*Effect]

	attributes map[string]int
	locations  map[string]native.UniformLocation
	blocks     map[string]int
	values     map[string]uniformValue

	recreate func() error
}

// Key returns the cache key of e.
func (e *Effect) Key() string { return e.key }

// Status returns the lifecycle state of e.
func (e *Effect) Status() Status { return e.status }

// IsReady reports whether e has linked.
func (e *Effect) IsReady() bool { return e.status == Ready }

// Err returns the compile error of a failed effect.
func (e *Effect) Err() error { return e.err }

// Program returns the native program, 0 unless linked or linking.
func (e *Effect) Program() native.Program { return e.program }

// TransformFeedback returns the feedback object created for the effect's
// varyings, or 0.
func (e *Effect) TransformFeedback() native.TransformFeedback { return e.feedback }

// VertexCode returns the vertex code handed to the driver.
func (e *Effect) VertexCode() string { return e.vertexCode }

// FragmentCode returns the fragment code handed to the driver.
func (e *Effect) FragmentCode() string { return e.fragmentCode }

// Samplers returns the sampler names in channel order.
func (e *Effect) Samplers() []string { return e.opts.Samplers }

// SamplerIndex returns the channel of a sampler, or -1.
func (e *Effect) SamplerIndex(name string) int { return slices.Index(e.opts.Samplers, name) }

// Compiled returns a future resolved when the current build of e
// finalizes, with the compile error on failure.
func (e *Effect) Compiled() *frame.Future[*Effect] { return e.compiled }

// ExecuteWhenCompiled runs fn once e is ready: immediately when it already
// is, otherwise after the callbacks queued before it. Nothing runs for a
// failed effect.
func (e *Effect) ExecuteWhenCompiled(fn func(*Effect)) {
	if fn == nil {
		return
	}
	switch e.status {
	case Ready:
		fn(e)
	case Compiling:
		e.whenCompiled = append(e.whenCompiled, fn)
	}
}

// AttributeNames implements buffer.Layout.
func (e *Effect) AttributeNames() []string { return e.opts.Attributes }

// AttributeLocation implements buffer.Layout. Unknown or inactive
// attributes report -1.
func (e *Effect) AttributeLocation(name string) int {
	if l, ok := e.attributes[name]; ok {
		return l
	}
	return -1
}

// Uniform returns the location of a uniform, querying and remembering
// names that were not declared up front. Before linking every name is
// unknown.
func (e *Effect) Uniform(name string) native.UniformLocation {
	if l, ok := e.locations[name]; ok {
		return l
	}
	if e.status != Ready {
		return native.NoUniform
	}
	l := e.cache.ctx.GetUniformLocation(e.program, name)
	e.locations[name] = l
	return l
}

// BindUniformBlock assigns the uniform block name to a buffer binding
// point. Repeated assignments are elided; unknown blocks are ignored.
func (e *Effect) BindUniformBlock(name string, binding int) error {
	if !e.cache.IsLive(e) {
		return ErrStale
	}
	if e.status != Ready {
		return fmt.Errorf("%w: %s", ErrNotReady, e.key)
	}
	if b, ok := e.blocks[name]; ok && b == binding {
		return nil
	}
	idx := e.cache.ctx.GetUniformBlockIndex(e.program, name)
	if idx < 0 {
		return nil
	}
	e.cache.ctx.UniformBlockBinding(e.program, idx, binding)
	e.blocks[name] = binding
	return nil
}
