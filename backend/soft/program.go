// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/glengine/native"
)

const spirvMagic = 0x07230203

type shader struct {
	typ      native.Enum
	source   string
	binary   []byte
	compiled bool
	log      string
}

type program struct {
	shaders  []native.Shader
	linked   bool
	log      string
	pending  int
	attribs  map[string]int
	uniforms map[string]native.UniformLocation
	blocks   map[string]int
	bindings map[int]int
	values   map[native.UniformLocation][]float32
	varyings []string
}

// CreateShader implements native.Context.
func (d *Device) CreateShader(typ native.Enum) native.Shader {
	if typ != native.VERTEX_SHADER && typ != native.FRAGMENT_SHADER {
		d.fail(native.INVALID_ENUM)
		return 0
	}
	if d.lost {
		return 0
	}
	s := native.Shader(d.newID())
	d.shaders[s] = &shader{typ: typ}
	d.rec("CreateShader", typ, s)
	return s
}

// ShaderSource implements native.Context.
func (d *Device) ShaderSource(s native.Shader, source string) {
	d.rec("ShaderSource", s)
	if sh := d.shaders[s]; sh != nil {
		sh.source = source
		sh.binary = nil
	}
}

// ShaderBinary implements native.Context. Only SPIR-V is accepted, and
// only when the device advertises GL_ARB_gl_spirv.
func (d *Device) ShaderBinary(s native.Shader, format native.Enum, bin []byte) {
	d.rec("ShaderBinary", s, format, len(bin))
	sh := d.shaders[s]
	if sh == nil {
		d.fail(native.INVALID_VALUE)
		return
	}
	if format != native.SHADER_BINARY_FORMAT_SPIR_V || !slices.Contains(d.opts.Extensions, native.ExtSPIRV) {
		d.fail(native.INVALID_ENUM)
		return
	}
	sh.binary = slices.Clone(bin)
	sh.source = ""
}

// CompileShader implements native.Context. A source containing an #error
// directive fails with a driver-style log.
func (d *Device) CompileShader(s native.Shader) {
	d.rec("CompileShader", s)
	sh := d.shaders[s]
	if sh == nil {
		d.fail(native.INVALID_VALUE)
		return
	}
	sh.compiled, sh.log = false, ""
	if sh.binary != nil {
		if len(sh.binary) < 4 || binary.LittleEndian.Uint32(sh.binary) != spirvMagic {
			sh.log = "ERROR: invalid SPIR-V module"
			return
		}
		sh.compiled = true
		return
	}
	if strings.TrimSpace(sh.source) == "" {
		sh.log = "ERROR: 0:1: '' : empty shader source"
		return
	}
	for i, line := range strings.Split(sh.source, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "#error"); ok {
			sh.log = fmt.Sprintf("ERROR: 0:%d: '#error' : %s", i+1, strings.TrimSpace(rest))
			return
		}
	}
	sh.compiled = true
}

// GetShaderi implements native.Context.
func (d *Device) GetShaderi(s native.Shader, pname native.Enum) int {
	sh := d.shaders[s]
	if sh == nil {
		d.fail(native.INVALID_VALUE)
		return 0
	}
	switch pname {
	case native.COMPILE_STATUS:
		return boolInt(sh.compiled)
	case native.COMPLETION_STATUS_KHR:
		return 1
	}
	d.fail(native.INVALID_ENUM)
	return 0
}

// GetShaderInfoLog implements native.Context.
func (d *Device) GetShaderInfoLog(s native.Shader) string {
	if sh := d.shaders[s]; sh != nil {
		return sh.log
	}
	return ""
}

// DeleteShader implements native.Context.
func (d *Device) DeleteShader(s native.Shader) {
	d.rec("DeleteShader", s)
	if s == 0 {
		return
	}
	_, live := d.shaders[s]
	d.noteDelete("shader", live)
	delete(d.shaders, s)
}

// CreateProgram implements native.Context.
func (d *Device) CreateProgram() native.Program {
	if d.lost {
		return 0
	}
	p := native.Program(d.newID())
	d.programs[p] = &program{}
	d.rec("CreateProgram", p)
	return p
}

// AttachShader implements native.Context.
func (d *Device) AttachShader(p native.Program, s native.Shader) {
	d.rec("AttachShader", p, s)
	prog, sh := d.programs[p], d.shaders[s]
	if prog == nil || sh == nil {
		d.fail(native.INVALID_VALUE)
		return
	}
	prog.shaders = append(prog.shaders, s)
}

// LinkProgram implements native.Context. Active attributes are the
// vertex shader's inputs in declaration order; uniforms are numbered in
// the order the stages declare them.
func (d *Device) LinkProgram(p native.Program) {
	d.rec("LinkProgram", p)
	prog := d.programs[p]
	if prog == nil {
		d.fail(native.INVALID_VALUE)
		return
	}
	prog.linked, prog.log = false, ""
	prog.attribs = map[string]int{}
	prog.uniforms = map[string]native.UniformLocation{}
	prog.blocks = map[string]int{}
	prog.bindings = map[int]int{}
	prog.values = map[native.UniformLocation][]float32{}
	if d.opts.ParallelCompile {
		prog.pending = d.opts.CompileLatency
	}

	var vs, fs *shader
	for _, s := range prog.shaders {
		sh := d.shaders[s]
		if sh == nil {
			continue
		}
		if !sh.compiled {
			prog.log = "Link failed: an attached shader did not compile."
			return
		}
		if sh.typ == native.VERTEX_SHADER {
			vs = sh
		} else {
			fs = sh
		}
	}
	if vs == nil || fs == nil {
		prog.log = "Link failed: a vertex and a fragment shader are required."
		return
	}
	for _, sh := range []*shader{vs, fs} {
		parseDeclarations(prog, sh)
	}
	prog.linked = true
}

func parseDeclarations(prog *program, sh *shader) {
	for _, raw := range strings.Split(sh.source, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "layout") {
			if i := strings.Index(line, ")"); i >= 0 {
				line = strings.TrimSpace(line[i+1:])
			}
		}
		fields := strings.Fields(strings.TrimSuffix(line, ";"))
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "in", "attribute":
			if sh.typ != native.VERTEX_SHADER {
				continue
			}
			name := declName(fields[len(fields)-1])
			if _, ok := prog.attribs[name]; !ok {
				prog.attribs[name] = len(prog.attribs)
			}
		case "uniform":
			last := fields[len(fields)-1]
			if strings.HasSuffix(last, "{") {
				name := strings.TrimSuffix(fields[1], "{")
				if _, ok := prog.blocks[name]; !ok {
					prog.blocks[name] = len(prog.blocks)
				}
				continue
			}
			if len(fields) < 3 {
				continue
			}
			name := declName(last)
			if _, ok := prog.uniforms[name]; !ok {
				prog.uniforms[name] = native.UniformLocation(len(prog.uniforms))
			}
		}
	}
}

func declName(tok string) string {
	if i := strings.Index(tok, "["); i >= 0 {
		tok = tok[:i]
	}
	return tok
}

// GetProgrami implements native.Context.
func (d *Device) GetProgrami(p native.Program, pname native.Enum) int {
	prog := d.programs[p]
	if prog == nil {
		d.fail(native.INVALID_VALUE)
		return 0
	}
	switch pname {
	case native.LINK_STATUS:
		return boolInt(prog.linked)
	case native.COMPLETION_STATUS_KHR:
		d.rec("GetProgrami", p, pname)
		if !d.opts.ParallelCompile {
			d.fail(native.INVALID_ENUM)
			return 1
		}
		if prog.pending > 0 {
			prog.pending--
			return 0
		}
		return 1
	}
	d.fail(native.INVALID_ENUM)
	return 0
}

// GetProgramInfoLog implements native.Context.
func (d *Device) GetProgramInfoLog(p native.Program) string {
	if prog := d.programs[p]; prog != nil {
		return prog.log
	}
	return ""
}

// DeleteProgram implements native.Context.
func (d *Device) DeleteProgram(p native.Program) {
	d.rec("DeleteProgram", p)
	if p == 0 {
		return
	}
	_, live := d.programs[p]
	d.noteDelete("program", live)
	delete(d.programs, p)
	if d.st.program == p {
		d.st.program = 0
	}
}

// UseProgram implements native.Context.
func (d *Device) UseProgram(p native.Program) {
	d.rec("UseProgram", p)
	if p != 0 {
		prog := d.programs[p]
		if prog == nil || !prog.linked {
			d.fail(native.INVALID_OPERATION)
			return
		}
	}
	d.st.program = p
}

// CurrentProgram returns the program in use.
func (d *Device) CurrentProgram() native.Program { return d.st.program }

// LivePrograms returns the number of program objects alive.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveShaders returns the number of shader objects alive.
func (d *Device) LiveShaders() int { return len(d.shaders) }

// GetUniformLocation implements native.Context.
func (d *Device) GetUniformLocation(p native.Program, name string) native.UniformLocation {
	d.rec("GetUniformLocation", p, name)
	prog := d.programs[p]
	if prog == nil || !prog.linked {
		d.fail(native.INVALID_OPERATION)
		return native.NoUniform
	}
	if l, ok := prog.uniforms[declName(name)]; ok {
		return l
	}
	return native.NoUniform
}

// GetAttribLocation implements native.Context.
func (d *Device) GetAttribLocation(p native.Program, name string) int {
	d.rec("GetAttribLocation", p, name)
	prog := d.programs[p]
	if prog == nil || !prog.linked {
		d.fail(native.INVALID_OPERATION)
		return -1
	}
	if l, ok := prog.attribs[name]; ok {
		return l
	}
	return -1
}

// GetUniformBlockIndex implements native.Context.
func (d *Device) GetUniformBlockIndex(p native.Program, name string) int {
	prog := d.programs[p]
	if prog == nil || !prog.linked {
		return -1
	}
	if i, ok := prog.blocks[name]; ok {
		return i
	}
	return -1
}

// UniformBlockBinding implements native.Context.
func (d *Device) UniformBlockBinding(p native.Program, blockIndex, binding int) {
	d.rec("UniformBlockBinding", p, blockIndex, binding)
	if prog := d.programs[p]; prog != nil && prog.linked {
		prog.bindings[blockIndex] = binding
	}
}

// BlockBinding returns the binding point assigned to a uniform block.
func (d *Device) BlockBinding(p native.Program, blockIndex int) (int, bool) {
	prog := d.programs[p]
	if prog == nil {
		return 0, false
	}
	b, ok := prog.bindings[blockIndex]
	return b, ok
}

// UniformValue returns the last value uploaded to a uniform of p.
func (d *Device) UniformValue(p native.Program, name string) ([]float32, bool) {
	prog := d.programs[p]
	if prog == nil {
		return nil, false
	}
	l, ok := prog.uniforms[declName(name)]
	if !ok {
		return nil, false
	}
	v, ok := prog.values[l]
	return slices.Clone(v), ok
}

// Varyings returns the transform feedback varyings recorded for p.
func (d *Device) Varyings(p native.Program) []string {
	if prog := d.programs[p]; prog != nil {
		return slices.Clone(prog.varyings)
	}
	return nil
}

// CreateTransformFeedback implements native.Context.
func (d *Device) CreateTransformFeedback() native.TransformFeedback {
	if d.lost {
		return 0
	}
	tf := native.TransformFeedback(d.newID())
	d.feedbacks[tf] = true
	d.rec("CreateTransformFeedback", tf)
	return tf
}

// DeleteTransformFeedback implements native.Context.
func (d *Device) DeleteTransformFeedback(tf native.TransformFeedback) {
	d.rec("DeleteTransformFeedback", tf)
	if tf == 0 {
		return
	}
	d.noteDelete("transformFeedback", d.feedbacks[tf])
	delete(d.feedbacks, tf)
	if d.st.feedback == tf {
		d.st.feedback = 0
	}
}

// BindTransformFeedback implements native.Context.
func (d *Device) BindTransformFeedback(_ native.Enum, tf native.TransformFeedback) {
	d.rec("BindTransformFeedback", tf)
	if tf != 0 && !d.feedbacks[tf] {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.st.feedback = tf
}

// TransformFeedbackVaryings implements native.Context.
func (d *Device) TransformFeedbackVaryings(p native.Program, varyings []string, mode native.Enum) {
	d.rec("TransformFeedbackVaryings", p, slices.Clone(varyings), mode)
	if prog := d.programs[p]; prog != nil {
		prog.varyings = slices.Clone(varyings)
	}
}

func (d *Device) setUniform(name string, l native.UniformLocation, v []float32) {
	d.rec(name, l, v)
	if !l.Valid() {
		return
	}
	prog := d.programs[d.st.program]
	if prog == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	prog.values[l] = v
}

func ints(v ...int) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func int32s(v []int32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// Uniform1i implements native.Context.
func (d *Device) Uniform1i(l native.UniformLocation, v int) { d.setUniform("Uniform1i", l, ints(v)) }

// Uniform2i implements native.Context.
func (d *Device) Uniform2i(l native.UniformLocation, x, y int) {
	d.setUniform("Uniform2i", l, ints(x, y))
}

// Uniform3i implements native.Context.
func (d *Device) Uniform3i(l native.UniformLocation, x, y, z int) {
	d.setUniform("Uniform3i", l, ints(x, y, z))
}

// Uniform4i implements native.Context.
func (d *Device) Uniform4i(l native.UniformLocation, x, y, z, w int) {
	d.setUniform("Uniform4i", l, ints(x, y, z, w))
}

// Uniform1iv implements native.Context.
func (d *Device) Uniform1iv(l native.UniformLocation, v []int32) {
	d.setUniform("Uniform1iv", l, int32s(v))
}

// Uniform2iv implements native.Context.
func (d *Device) Uniform2iv(l native.UniformLocation, v []int32) {
	d.setUniform("Uniform2iv", l, int32s(v))
}

// Uniform3iv implements native.Context.
func (d *Device) Uniform3iv(l native.UniformLocation, v []int32) {
	d.setUniform("Uniform3iv", l, int32s(v))
}

// Uniform4iv implements native.Context.
func (d *Device) Uniform4iv(l native.UniformLocation, v []int32) {
	d.setUniform("Uniform4iv", l, int32s(v))
}

// Uniform1f implements native.Context.
func (d *Device) Uniform1f(l native.UniformLocation, x float32) {
	d.setUniform("Uniform1f", l, []float32{x})
}

// Uniform2f implements native.Context.
func (d *Device) Uniform2f(l native.UniformLocation, x, y float32) {
	d.setUniform("Uniform2f", l, []float32{x, y})
}

// Uniform3f implements native.Context.
func (d *Device) Uniform3f(l native.UniformLocation, x, y, z float32) {
	d.setUniform("Uniform3f", l, []float32{x, y, z})
}

// Uniform4f implements native.Context.
func (d *Device) Uniform4f(l native.UniformLocation, x, y, z, w float32) {
	d.setUniform("Uniform4f", l, []float32{x, y, z, w})
}

// Uniform1fv implements native.Context.
func (d *Device) Uniform1fv(l native.UniformLocation, v []float32) {
	d.setUniform("Uniform1fv", l, slices.Clone(v))
}

// Uniform2fv implements native.Context.
func (d *Device) Uniform2fv(l native.UniformLocation, v []float32) {
	d.setUniform("Uniform2fv", l, slices.Clone(v))
}

// Uniform3fv implements native.Context.
func (d *Device) Uniform3fv(l native.UniformLocation, v []float32) {
	d.setUniform("Uniform3fv", l, slices.Clone(v))
}

// Uniform4fv implements native.Context.
func (d *Device) Uniform4fv(l native.UniformLocation, v []float32) {
	d.setUniform("Uniform4fv", l, slices.Clone(v))
}

// UniformMatrix2fv implements native.Context.
func (d *Device) UniformMatrix2fv(l native.UniformLocation, _ bool, v []float32) {
	d.setUniform("UniformMatrix2fv", l, slices.Clone(v))
}

// UniformMatrix3fv implements native.Context.
func (d *Device) UniformMatrix3fv(l native.UniformLocation, _ bool, v []float32) {
	d.setUniform("UniformMatrix3fv", l, slices.Clone(v))
}

// UniformMatrix4fv implements native.Context.
func (d *Device) UniformMatrix4fv(l native.UniformLocation, _ bool, v []float32) {
	d.setUniform("UniformMatrix4fv", l, slices.Clone(v))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
