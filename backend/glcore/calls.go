// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcore

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/glengine/native"
)

func (c *Context) flipped(data []byte, rows int) []byte {
	if !c.flipY || len(data) == 0 || rows <= 1 {
		return data
	}
	stride := len(data) / rows
	out := make([]byte, len(data))
	for y := 0; y < rows; y++ {
		copy(out[y*stride:(y+1)*stride], data[(rows-1-y)*stride:(rows-y)*stride])
	}
	return out
}

// CreateTexture implements native.Context.
func (c *Context) CreateTexture() native.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	return native.Texture(id)
}

// DeleteTexture implements native.Context.
func (c *Context) DeleteTexture(t native.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

// ActiveTexture implements native.Context.
func (c *Context) ActiveTexture(unit native.Enum) { gl.ActiveTexture(uint32(unit)) }

// BindTexture implements native.Context.
func (c *Context) BindTexture(target native.Enum, t native.Texture) {
	gl.BindTexture(uint32(target), uint32(t))
}

// TexImage2D implements native.Context.
func (c *Context) TexImage2D(target native.Enum, level int, internalFormat native.Enum, width, height int, format, typ native.Enum, data []byte) {
	data = c.flipped(data, height)
	gl.TexImage2D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), 0, uint32(format), uint32(typ), ptr(data))
}

// TexSubImage2D implements native.Context.
func (c *Context) TexSubImage2D(target native.Enum, level, x, y, width, height int, format, typ native.Enum, data []byte) {
	data = c.flipped(data, height)
	gl.TexSubImage2D(uint32(target), int32(level), int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(typ), ptr(data))
}

// TexImage3D implements native.Context.
func (c *Context) TexImage3D(target native.Enum, level int, internalFormat native.Enum, width, height, depth int, format, typ native.Enum, data []byte) {
	gl.TexImage3D(uint32(target), int32(level), int32(internalFormat), int32(width), int32(height), int32(depth), 0, uint32(format), uint32(typ), ptr(data))
}

// TexParameteri implements native.Context.
func (c *Context) TexParameteri(target, pname native.Enum, param int) {
	gl.TexParameteri(uint32(target), uint32(pname), int32(param))
}

// TexParameterf implements native.Context.
func (c *Context) TexParameterf(target, pname native.Enum, param float32) {
	gl.TexParameterf(uint32(target), uint32(pname), param)
}

// GenerateMipmap implements native.Context.
func (c *Context) GenerateMipmap(target native.Enum) { gl.GenerateMipmap(uint32(target)) }

// CreateBuffer implements native.Context.
func (c *Context) CreateBuffer() native.Buffer {
	var id uint32
	gl.GenBuffers(1, &id)
	return native.Buffer(id)
}

// DeleteBuffer implements native.Context.
func (c *Context) DeleteBuffer(b native.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

// BindBuffer implements native.Context.
func (c *Context) BindBuffer(target native.Enum, b native.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

// BindBufferBase implements native.Context.
func (c *Context) BindBufferBase(target native.Enum, index int, b native.Buffer) {
	gl.BindBufferBase(uint32(target), uint32(index), uint32(b))
}

// BufferData implements native.Context.
func (c *Context) BufferData(target native.Enum, data []byte, usage native.Enum) {
	gl.BufferData(uint32(target), len(data), ptr(data), uint32(usage))
}

// BufferDataSize implements native.Context.
func (c *Context) BufferDataSize(target native.Enum, size int, usage native.Enum) {
	gl.BufferData(uint32(target), size, nil, uint32(usage))
}

// BufferSubData implements native.Context.
func (c *Context) BufferSubData(target native.Enum, offset int, data []byte) {
	gl.BufferSubData(uint32(target), offset, len(data), ptr(data))
}

// CreateVertexArray implements native.Context.
func (c *Context) CreateVertexArray() native.VertexArray {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return native.VertexArray(id)
}

// DeleteVertexArray implements native.Context.
func (c *Context) DeleteVertexArray(v native.VertexArray) {
	id := uint32(v)
	gl.DeleteVertexArrays(1, &id)
}

// BindVertexArray implements native.Context.
func (c *Context) BindVertexArray(v native.VertexArray) { gl.BindVertexArray(uint32(v)) }

// EnableVertexAttribArray implements native.Context.
func (c *Context) EnableVertexAttribArray(index int) { gl.EnableVertexAttribArray(uint32(index)) }

// DisableVertexAttribArray implements native.Context.
func (c *Context) DisableVertexAttribArray(index int) { gl.DisableVertexAttribArray(uint32(index)) }

// VertexAttribPointer implements native.Context.
func (c *Context) VertexAttribPointer(index, size int, typ native.Enum, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(uint32(index), int32(size), uint32(typ), normalized, int32(stride), uintptr(offset))
}

// VertexAttribDivisor implements native.Context.
func (c *Context) VertexAttribDivisor(index, divisor int) {
	gl.VertexAttribDivisor(uint32(index), uint32(divisor))
}

// CreateShader implements native.Context.
func (c *Context) CreateShader(typ native.Enum) native.Shader {
	return native.Shader(gl.CreateShader(uint32(typ)))
}

// ShaderSource implements native.Context.
func (c *Context) ShaderSource(s native.Shader, source string) {
	src, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(uint32(s), 1, src, nil)
}

// ShaderBinary implements native.Context.
func (c *Context) ShaderBinary(s native.Shader, format native.Enum, bin []byte) {
	id := uint32(s)
	gl.ShaderBinary(1, &id, uint32(format), ptr(bin), int32(len(bin)))
}

// CompileShader implements native.Context.
func (c *Context) CompileShader(s native.Shader) { gl.CompileShader(uint32(s)) }

// GetShaderi implements native.Context.
func (c *Context) GetShaderi(s native.Shader, pname native.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

// GetShaderInfoLog implements native.Context.
func (c *Context) GetShaderInfoLog(s native.Shader) string {
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := make([]uint8, n)
	gl.GetShaderInfoLog(uint32(s), n, nil, &buf[0])
	return gl.GoStr(&buf[0])
}

// DeleteShader implements native.Context.
func (c *Context) DeleteShader(s native.Shader) { gl.DeleteShader(uint32(s)) }

// CreateProgram implements native.Context.
func (c *Context) CreateProgram() native.Program { return native.Program(gl.CreateProgram()) }

// AttachShader implements native.Context.
func (c *Context) AttachShader(p native.Program, s native.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

// LinkProgram implements native.Context.
func (c *Context) LinkProgram(p native.Program) { gl.LinkProgram(uint32(p)) }

// GetProgrami implements native.Context.
func (c *Context) GetProgrami(p native.Program, pname native.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

// GetProgramInfoLog implements native.Context.
func (c *Context) GetProgramInfoLog(p native.Program) string {
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return ""
	}
	buf := make([]uint8, n)
	gl.GetProgramInfoLog(uint32(p), n, nil, &buf[0])
	return gl.GoStr(&buf[0])
}

// DeleteProgram implements native.Context.
func (c *Context) DeleteProgram(p native.Program) { gl.DeleteProgram(uint32(p)) }

// UseProgram implements native.Context.
func (c *Context) UseProgram(p native.Program) { gl.UseProgram(uint32(p)) }

// GetUniformLocation implements native.Context.
func (c *Context) GetUniformLocation(p native.Program, name string) native.UniformLocation {
	s, free := cstr(name)
	defer free()
	return native.UniformLocation(gl.GetUniformLocation(uint32(p), s))
}

// GetAttribLocation implements native.Context.
func (c *Context) GetAttribLocation(p native.Program, name string) int {
	s, free := cstr(name)
	defer free()
	return int(gl.GetAttribLocation(uint32(p), s))
}

// GetUniformBlockIndex implements native.Context.
func (c *Context) GetUniformBlockIndex(p native.Program, name string) int {
	s, free := cstr(name)
	defer free()
	idx := gl.GetUniformBlockIndex(uint32(p), s)
	if idx == gl.INVALID_INDEX {
		return -1
	}
	return int(idx)
}

// UniformBlockBinding implements native.Context.
func (c *Context) UniformBlockBinding(p native.Program, blockIndex, binding int) {
	gl.UniformBlockBinding(uint32(p), uint32(blockIndex), uint32(binding))
}

// CreateTransformFeedback implements native.Context.
func (c *Context) CreateTransformFeedback() native.TransformFeedback {
	var id uint32
	gl.GenTransformFeedbacks(1, &id)
	return native.TransformFeedback(id)
}

// DeleteTransformFeedback implements native.Context.
func (c *Context) DeleteTransformFeedback(tf native.TransformFeedback) {
	id := uint32(tf)
	gl.DeleteTransformFeedbacks(1, &id)
}

// BindTransformFeedback implements native.Context.
func (c *Context) BindTransformFeedback(target native.Enum, tf native.TransformFeedback) {
	gl.BindTransformFeedback(uint32(target), uint32(tf))
}

// TransformFeedbackVaryings implements native.Context.
func (c *Context) TransformFeedbackVaryings(p native.Program, varyings []string, mode native.Enum) {
	if len(varyings) == 0 {
		return
	}
	terminated := make([]string, len(varyings))
	for i, v := range varyings {
		terminated[i] = v + "\x00"
	}
	strs, free := gl.Strs(terminated...)
	defer free()
	gl.TransformFeedbackVaryings(uint32(p), int32(len(varyings)), strs, uint32(mode))
}

// Uniform1i implements native.Context.
func (c *Context) Uniform1i(l native.UniformLocation, v int) { gl.Uniform1i(int32(l), int32(v)) }

// Uniform2i implements native.Context.
func (c *Context) Uniform2i(l native.UniformLocation, x, y int) {
	gl.Uniform2i(int32(l), int32(x), int32(y))
}

// Uniform3i implements native.Context.
func (c *Context) Uniform3i(l native.UniformLocation, x, y, z int) {
	gl.Uniform3i(int32(l), int32(x), int32(y), int32(z))
}

// Uniform4i implements native.Context.
func (c *Context) Uniform4i(l native.UniformLocation, x, y, z, w int) {
	gl.Uniform4i(int32(l), int32(x), int32(y), int32(z), int32(w))
}

func intVec(l native.UniformLocation, v []int32, n int, fn func(int32, int32, *int32)) {
	if len(v) < n {
		return
	}
	fn(int32(l), int32(len(v)/n), &v[0])
}

func floatVec(l native.UniformLocation, v []float32, n int, fn func(int32, int32, *float32)) {
	if len(v) < n {
		return
	}
	fn(int32(l), int32(len(v)/n), &v[0])
}

func matrix(l native.UniformLocation, transpose bool, v []float32, n int, fn func(int32, int32, bool, *float32)) {
	if len(v) < n {
		return
	}
	fn(int32(l), int32(len(v)/n), transpose, &v[0])
}

// Uniform1iv implements native.Context.
func (c *Context) Uniform1iv(l native.UniformLocation, v []int32) { intVec(l, v, 1, gl.Uniform1iv) }

// Uniform2iv implements native.Context.
func (c *Context) Uniform2iv(l native.UniformLocation, v []int32) { intVec(l, v, 2, gl.Uniform2iv) }

// Uniform3iv implements native.Context.
func (c *Context) Uniform3iv(l native.UniformLocation, v []int32) { intVec(l, v, 3, gl.Uniform3iv) }

// Uniform4iv implements native.Context.
func (c *Context) Uniform4iv(l native.UniformLocation, v []int32) { intVec(l, v, 4, gl.Uniform4iv) }

// Uniform1f implements native.Context.
func (c *Context) Uniform1f(l native.UniformLocation, x float32) { gl.Uniform1f(int32(l), x) }

// Uniform2f implements native.Context.
func (c *Context) Uniform2f(l native.UniformLocation, x, y float32) { gl.Uniform2f(int32(l), x, y) }

// Uniform3f implements native.Context.
func (c *Context) Uniform3f(l native.UniformLocation, x, y, z float32) {
	gl.Uniform3f(int32(l), x, y, z)
}

// Uniform4f implements native.Context.
func (c *Context) Uniform4f(l native.UniformLocation, x, y, z, w float32) {
	gl.Uniform4f(int32(l), x, y, z, w)
}

// Uniform1fv implements native.Context.
func (c *Context) Uniform1fv(l native.UniformLocation, v []float32) {
	floatVec(l, v, 1, gl.Uniform1fv)
}

// Uniform2fv implements native.Context.
func (c *Context) Uniform2fv(l native.UniformLocation, v []float32) {
	floatVec(l, v, 2, gl.Uniform2fv)
}

// Uniform3fv implements native.Context.
func (c *Context) Uniform3fv(l native.UniformLocation, v []float32) {
	floatVec(l, v, 3, gl.Uniform3fv)
}

// Uniform4fv implements native.Context.
func (c *Context) Uniform4fv(l native.UniformLocation, v []float32) {
	floatVec(l, v, 4, gl.Uniform4fv)
}

// UniformMatrix2fv implements native.Context.
func (c *Context) UniformMatrix2fv(l native.UniformLocation, transpose bool, v []float32) {
	matrix(l, transpose, v, 4, gl.UniformMatrix2fv)
}

// UniformMatrix3fv implements native.Context.
func (c *Context) UniformMatrix3fv(l native.UniformLocation, transpose bool, v []float32) {
	matrix(l, transpose, v, 9, gl.UniformMatrix3fv)
}

// UniformMatrix4fv implements native.Context.
func (c *Context) UniformMatrix4fv(l native.UniformLocation, transpose bool, v []float32) {
	matrix(l, transpose, v, 16, gl.UniformMatrix4fv)
}

// CreateFramebuffer implements native.Context.
func (c *Context) CreateFramebuffer() native.Framebuffer {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return native.Framebuffer(id)
}

// DeleteFramebuffer implements native.Context.
func (c *Context) DeleteFramebuffer(fb native.Framebuffer) {
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

// BindFramebuffer implements native.Context.
func (c *Context) BindFramebuffer(target native.Enum, fb native.Framebuffer) {
	gl.BindFramebuffer(uint32(target), uint32(fb))
}

// FramebufferTexture2D implements native.Context.
func (c *Context) FramebufferTexture2D(target, attachment, texTarget native.Enum, t native.Texture, level int) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), uint32(t), int32(level))
}

// FramebufferTextureLayer implements native.Context.
func (c *Context) FramebufferTextureLayer(target, attachment native.Enum, t native.Texture, level, layer int) {
	gl.FramebufferTextureLayer(uint32(target), uint32(attachment), uint32(t), int32(level), int32(layer))
}

// FramebufferRenderbuffer implements native.Context.
func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget native.Enum, rb native.Renderbuffer) {
	gl.FramebufferRenderbuffer(uint32(target), uint32(attachment), uint32(rbTarget), uint32(rb))
}

// CheckFramebufferStatus implements native.Context.
func (c *Context) CheckFramebufferStatus(target native.Enum) native.Enum {
	return native.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

// CreateRenderbuffer implements native.Context.
func (c *Context) CreateRenderbuffer() native.Renderbuffer {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return native.Renderbuffer(id)
}

// DeleteRenderbuffer implements native.Context.
func (c *Context) DeleteRenderbuffer(rb native.Renderbuffer) {
	id := uint32(rb)
	gl.DeleteRenderbuffers(1, &id)
}

// BindRenderbuffer implements native.Context.
func (c *Context) BindRenderbuffer(target native.Enum, rb native.Renderbuffer) {
	gl.BindRenderbuffer(uint32(target), uint32(rb))
}

// RenderbufferStorage implements native.Context.
func (c *Context) RenderbufferStorage(target, internalFormat native.Enum, width, height int) {
	gl.RenderbufferStorage(uint32(target), uint32(internalFormat), int32(width), int32(height))
}

// RenderbufferStorageMultisample implements native.Context.
func (c *Context) RenderbufferStorageMultisample(target native.Enum, samples int, internalFormat native.Enum, width, height int) {
	gl.RenderbufferStorageMultisample(uint32(target), int32(samples), uint32(internalFormat), int32(width), int32(height))
}

// BlitFramebuffer implements native.Context.
func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter native.Enum) {
	gl.BlitFramebuffer(int32(srcX0), int32(srcY0), int32(srcX1), int32(srcY1),
		int32(dstX0), int32(dstY0), int32(dstX1), int32(dstY1), uint32(mask), uint32(filter))
}

// DrawBuffers implements native.Context.
func (c *Context) DrawBuffers(bufs []native.Enum) {
	if len(bufs) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	ids := make([]uint32, len(bufs))
	for i, b := range bufs {
		ids[i] = uint32(b)
	}
	gl.DrawBuffers(int32(len(ids)), &ids[0])
}

// ReadBuffer implements native.Context.
func (c *Context) ReadBuffer(src native.Enum) { gl.ReadBuffer(uint32(src)) }

// ReadPixels implements native.Context.
func (c *Context) ReadPixels(x, y, width, height int, format, typ native.Enum, dst []byte) {
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), uint32(format), uint32(typ), ptr(dst))
}

// Viewport implements native.Context.
func (c *Context) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// Scissor implements native.Context.
func (c *Context) Scissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

// ClearColor implements native.Context.
func (c *Context) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

// ClearDepth implements native.Context.
func (c *Context) ClearDepth(d float32) { gl.ClearDepth(float64(d)) }

// ClearStencil implements native.Context.
func (c *Context) ClearStencil(s int) { gl.ClearStencil(int32(s)) }

// Clear implements native.Context.
func (c *Context) Clear(mask native.Enum) { gl.Clear(uint32(mask)) }

// Enable implements native.Context.
func (c *Context) Enable(capability native.Enum) { gl.Enable(uint32(capability)) }

// Disable implements native.Context.
func (c *Context) Disable(capability native.Enum) { gl.Disable(uint32(capability)) }

// DepthFunc implements native.Context.
func (c *Context) DepthFunc(fn native.Enum) { gl.DepthFunc(uint32(fn)) }

// DepthMask implements native.Context.
func (c *Context) DepthMask(flag bool) { gl.DepthMask(flag) }

// CullFace implements native.Context.
func (c *Context) CullFace(mode native.Enum) { gl.CullFace(uint32(mode)) }

// FrontFace implements native.Context.
func (c *Context) FrontFace(mode native.Enum) { gl.FrontFace(uint32(mode)) }

// PolygonOffset implements native.Context.
func (c *Context) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }

// StencilFunc implements native.Context.
func (c *Context) StencilFunc(fn native.Enum, ref int, mask uint32) {
	gl.StencilFunc(uint32(fn), int32(ref), mask)
}

// StencilOp implements native.Context.
func (c *Context) StencilOp(fail, zfail, zpass native.Enum) {
	gl.StencilOp(uint32(fail), uint32(zfail), uint32(zpass))
}

// StencilMask implements native.Context.
func (c *Context) StencilMask(mask uint32) { gl.StencilMask(mask) }

// BlendFuncSeparate implements native.Context.
func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha native.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

// BlendEquationSeparate implements native.Context.
func (c *Context) BlendEquationSeparate(modeRGB, modeAlpha native.Enum) {
	gl.BlendEquationSeparate(uint32(modeRGB), uint32(modeAlpha))
}

// BlendColor implements native.Context.
func (c *Context) BlendColor(r, g, b, a float32) { gl.BlendColor(r, g, b, a) }

// ColorMask implements native.Context.
func (c *Context) ColorMask(r, g, b, a bool) { gl.ColorMask(r, g, b, a) }

// DrawArrays implements native.Context.
func (c *Context) DrawArrays(mode native.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

// DrawElements implements native.Context.
func (c *Context) DrawElements(mode native.Enum, count int, typ native.Enum, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), int32(count), uint32(typ), uintptr(offset))
}

// DrawArraysInstanced implements native.Context.
func (c *Context) DrawArraysInstanced(mode native.Enum, first, count, instances int) {
	gl.DrawArraysInstanced(uint32(mode), int32(first), int32(count), int32(instances))
}

// DrawElementsInstanced implements native.Context.
func (c *Context) DrawElementsInstanced(mode native.Enum, count int, typ native.Enum, offset, instances int) {
	gl.DrawElementsInstanced(uint32(mode), int32(count), uint32(typ), unsafe.Pointer(uintptr(offset)), int32(instances)) //nolint:govet // GL buffer offset.
}
