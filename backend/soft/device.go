// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package soft is a software implementation of native.Context.
//
// It keeps real object state (textures, buffers, vertex arrays,
// framebuffers, renderbuffers, shaders, programs) and rasterises triangles
// with a single solid-colour shading model: every fragment takes the value
// of the program's "color" uniform. Every call is also appended to a call
// log so tests can assert exactly which native calls the caches emitted.
package soft

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/glengine/native"
)

// FRAMEBUFFER_INCOMPLETE_ATTACHMENT is reported for framebuffers without a
// usable attachment.
//
//nolint:revive,stylecheck // GL spelling.
const FRAMEBUFFER_INCOMPLETE_ATTACHMENT native.Enum = 0x8CD6

// Options configures a Device. Zero fields take the documented default.
type Options struct {
	// Width and Height size the default framebuffer. Default 256x256.
	Width, Height int
	// Version is the reported API version, 1 or 2. Default 2.
	Version int
	// Extensions advertised by the device. Default: anisotropic filtering,
	// float and half-float colour buffers, linear float filtering.
	Extensions []string
	// ParallelCompile advertises KHR_parallel_shader_compile. Programs then
	// report COMPLETION_STATUS_KHR false until polled CompileLatency times.
	ParallelCompile bool
	// CompileLatency is the number of completion polls a parallel compile
	// takes. Default 1.
	CompileLatency int
	// Limits overrides GetInteger answers. A zero value is returned as is,
	// which lets tests simulate drivers that answer 0 for optional limits.
	Limits map[native.Enum]int
}

// Call is one recorded native call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Device is the software context. It is not safe for concurrent use.
type Device struct {
	opts   Options
	limits map[native.Enum]int
	calls  []Call
	nextID uint32
	err    native.Enum
	lost   bool

	textures      map[native.Texture]*texture
	buffers       map[native.Buffer]*buffer
	vaos          map[native.VertexArray]*vertexArray
	framebuffers  map[native.Framebuffer]*framebuffer
	renderbuffers map[native.Renderbuffer]*renderbuffer
	shaders       map[native.Shader]*shader
	programs      map[native.Program]*program
	feedbacks     map[native.TransformFeedback]bool

	deleted       map[string]int
	doubleDeletes int
	drawCalls     int

	st pipelineState
}

// pipelineState is the context-global binding and fixed-function state.
type pipelineState struct {
	activeUnit    int
	units         []map[native.Enum]native.Texture
	arrayBuffer   native.Buffer
	uniformBuffer native.Buffer
	indexed       map[int]native.Buffer
	vao           native.VertexArray
	drawFB        native.Framebuffer
	readFB        native.Framebuffer
	renderbuffer  native.Renderbuffer
	program       native.Program
	feedback      native.TransformFeedback

	pixelStore map[native.Enum]int

	FixedState
}

// New creates a software device.
func New(opts Options) *Device {
	if opts.Width <= 0 {
		opts.Width = 256
	}
	if opts.Height <= 0 {
		opts.Height = 256
	}
	if opts.Version == 0 {
		opts.Version = 2
	}
	if opts.CompileLatency <= 0 {
		opts.CompileLatency = 1
	}
	if opts.Extensions == nil {
		opts.Extensions = []string{
			native.ExtAnisotropic,
			native.ExtColorBufferFloat,
			native.ExtColorBufferHalf,
			native.ExtTextureFloatLinear,
		}
	}
	if opts.ParallelCompile && !slices.Contains(opts.Extensions, native.ExtParallelCompile) {
		opts.Extensions = append(slices.Clone(opts.Extensions), native.ExtParallelCompile)
	}

	d := &Device{
		opts:          opts,
		limits:        defaultLimits(),
		textures:      make(map[native.Texture]*texture),
		buffers:       make(map[native.Buffer]*buffer),
		vaos:          map[native.VertexArray]*vertexArray{0: newVertexArray()},
		framebuffers:  make(map[native.Framebuffer]*framebuffer),
		renderbuffers: make(map[native.Renderbuffer]*renderbuffer),
		shaders:       make(map[native.Shader]*shader),
		programs:      make(map[native.Program]*program),
		feedbacks:     make(map[native.TransformFeedback]bool),
		deleted:       make(map[string]int),
	}
	for k, v := range opts.Limits {
		d.limits[k] = v
	}
	d.framebuffers[0] = newDefaultFramebuffer(opts.Width, opts.Height)
	d.resetState()
	return d
}

func defaultLimits() map[native.Enum]int {
	return map[native.Enum]int{
		native.MAX_TEXTURE_SIZE:                 4096,
		native.MAX_CUBE_MAP_TEXTURE_SIZE:        4096,
		native.MAX_RENDERBUFFER_SIZE:            4096,
		native.MAX_3D_TEXTURE_SIZE:              256,
		native.MAX_ARRAY_TEXTURE_LAYERS:         256,
		native.MAX_TEXTURE_IMAGE_UNITS:          16,
		native.MAX_VERTEX_TEXTURE_IMAGE_UNITS:   16,
		native.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 16,
		native.MAX_VERTEX_ATTRIBS:               16,
		native.MAX_VARYING_VECTORS:              15,
		native.MAX_VERTEX_UNIFORM_VECTORS:       1024,
		native.MAX_FRAGMENT_UNIFORM_VECTORS:     1024,
		native.MAX_SAMPLES:                      4,
		native.MAX_DRAW_BUFFERS:                 8,
		native.MAX_COLOR_ATTACHMENTS:            8,
	}
}

func (d *Device) resetState() {
	units := d.limits[native.MAX_COMBINED_TEXTURE_IMAGE_UNITS]
	if units < 1 {
		units = 1
	}
	d.st = pipelineState{
		units:      make([]map[native.Enum]native.Texture, units),
		indexed:    make(map[int]native.Buffer),
		pixelStore: map[native.Enum]int{native.UNPACK_ALIGNMENT: 4, native.PACK_ALIGNMENT: 4},
		FixedState: defaultFixedState(d.opts.Width, d.opts.Height),
	}
	for i := range d.st.units {
		d.st.units[i] = make(map[native.Enum]native.Texture)
	}
}

func (d *Device) rec(name string, args ...any) {
	d.calls = append(d.calls, Call{Name: name, Args: args})
}

func (d *Device) fail(code native.Enum) {
	if d.err == native.NO_ERROR {
		d.err = code
	}
}

func (d *Device) newID() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) noteDelete(kind string, live bool) {
	if live {
		d.deleted[kind]++
	} else {
		d.doubleDeletes++
	}
}

// Calls returns the recorded call log.
func (d *Device) Calls() []Call { return d.calls }

// ResetCalls clears the call log without touching object state.
func (d *Device) ResetCalls() { d.calls = d.calls[:0] }

// Count returns how many recorded calls have the given name.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Names returns the recorded call names in order.
func (d *Device) Names() []string {
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the first call with the given name at or
// after from, or -1.
func (d *Device) Index(name string, from int) int {
	for i := max(from, 0); i < len(d.calls); i++ {
		if d.calls[i].Name == name {
			return i
		}
	}
	return -1
}

// Deleted returns how many objects of a kind ("texture", "buffer",
// "framebuffer", "renderbuffer", "program", "shader", "vertexArray",
// "transformFeedback") were deleted while live.
func (d *Device) Deleted(kind string) int { return d.deleted[kind] }

// DoubleDeletes counts deletes of names that were not live.
func (d *Device) DoubleDeletes() int { return d.doubleDeletes }

// DrawCalls returns the number of draw commands executed.
func (d *Device) DrawCalls() int { return d.drawCalls }

// LoseContext simulates a context loss: every object is gone, all state
// returns to defaults and object creation answers 0 until RestoreContext.
func (d *Device) LoseContext() {
	d.lost = true
	d.textures = make(map[native.Texture]*texture)
	d.buffers = make(map[native.Buffer]*buffer)
	d.vaos = map[native.VertexArray]*vertexArray{0: newVertexArray()}
	d.framebuffers = map[native.Framebuffer]*framebuffer{0: newDefaultFramebuffer(d.opts.Width, d.opts.Height)}
	d.renderbuffers = make(map[native.Renderbuffer]*renderbuffer)
	d.shaders = make(map[native.Shader]*shader)
	d.programs = make(map[native.Program]*program)
	d.feedbacks = make(map[native.TransformFeedback]bool)
	d.resetState()
}

// RestoreContext ends a simulated context loss.
func (d *Device) RestoreContext() { d.lost = false }

// APIVersion implements native.Context.
func (d *Device) APIVersion() int { return d.opts.Version }

// DrawingBufferSize implements native.Context.
func (d *Device) DrawingBufferSize() (int, int) { return d.opts.Width, d.opts.Height }

// IsContextLost implements native.Context.
func (d *Device) IsContextLost() bool { return d.lost }

// GetError implements native.Context.
func (d *Device) GetError() native.Enum {
	e := d.err
	d.err = native.NO_ERROR
	return e
}

// GetInteger implements native.Context.
func (d *Device) GetInteger(pname native.Enum) int {
	d.rec("GetInteger", pname)
	switch pname {
	case native.FRAMEBUFFER_BINDING:
		return int(d.st.drawFB)
	case native.MAX_TEXTURE_MAX_ANISOTROPY_EXT:
		return 16
	}
	if v, ok := d.limits[pname]; ok {
		return v
	}
	d.fail(native.INVALID_ENUM)
	return 0
}

// GetFloat implements native.Context.
func (d *Device) GetFloat(pname native.Enum) float32 {
	d.rec("GetFloat", pname)
	if pname == native.MAX_TEXTURE_MAX_ANISOTROPY_EXT {
		if slices.Contains(d.opts.Extensions, native.ExtAnisotropic) {
			return 16
		}
		return 0
	}
	return float32(d.limits[pname])
}

// GetString implements native.Context.
func (d *Device) GetString(pname native.Enum) string {
	switch pname {
	case native.VENDOR:
		return "gogpu"
	case native.RENDERER:
		return "soft"
	case native.VERSION:
		if d.opts.Version >= 2 {
			return "OpenGL ES 3.0 (soft)"
		}
		return "OpenGL ES 2.0 (soft)"
	case native.SHADING_LANGUAGE_VERSION:
		return "OpenGL ES GLSL ES 3.00 (soft)"
	case native.EXTENSIONS:
		return strings.Join(d.opts.Extensions, " ")
	}
	return ""
}

// Extensions implements native.Context.
func (d *Device) Extensions() []string { return slices.Clone(d.opts.Extensions) }

// PixelStorei implements native.Context.
func (d *Device) PixelStorei(pname native.Enum, param int) {
	d.rec("PixelStorei", pname, param)
	d.st.pixelStore[pname] = param
}

// Flush implements native.Context.
func (d *Device) Flush() { d.rec("Flush") }

// Finish implements native.Context.
func (d *Device) Finish() { d.rec("Finish") }

var _ native.Context = (*Device)(nil)
