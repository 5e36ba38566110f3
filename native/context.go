// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

// Native object names. Zero is the "no object" value for every kind, the
// same convention OpenGL uses.
type (
	Texture           uint32
	Buffer            uint32
	Framebuffer       uint32
	Renderbuffer      uint32
	Program           uint32
	Shader            uint32
	VertexArray       uint32
	TransformFeedback uint32
	Query             uint32
)

// UniformLocation identifies a uniform inside a linked program.
// NoUniform is returned for names the program does not use.
type UniformLocation int32

// NoUniform is the location of an inactive or unknown uniform.
const NoUniform UniformLocation = -1

// Valid reports whether the location refers to an active uniform.
func (l UniformLocation) Valid() bool { return l >= 0 }

// Context is the immediate-mode graphics API the engine drives. It mirrors
// the OpenGL ES 3.0 / WebGL 2 surface the caches need and nothing more.
//
// Implementations are not required to be safe for concurrent use; the
// engine calls a Context from the render thread only.
type Context interface {
	// APIVersion is 1 for WebGL1/ES2 class contexts and 2 for WebGL2/ES3
	// or desktop core contexts.
	APIVersion() int
	// DrawingBufferSize returns the size of the default framebuffer.
	DrawingBufferSize() (width, height int)
	GetInteger(pname Enum) int
	GetFloat(pname Enum) float32
	GetString(pname Enum) string
	Extensions() []string
	GetError() Enum
	IsContextLost() bool

	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t Texture)
	TexImage2D(target Enum, level int, internalFormat Enum, width, height int, format, typ Enum, data []byte)
	TexSubImage2D(target Enum, level, x, y, width, height int, format, typ Enum, data []byte)
	TexImage3D(target Enum, level int, internalFormat Enum, width, height, depth int, format, typ Enum, data []byte)
	TexParameteri(target, pname Enum, param int)
	TexParameterf(target, pname Enum, param float32)
	GenerateMipmap(target Enum)
	PixelStorei(pname Enum, param int)

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target Enum, b Buffer)
	BindBufferBase(target Enum, index int, b Buffer)
	BufferData(target Enum, data []byte, usage Enum)
	BufferDataSize(target Enum, size int, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)

	CreateVertexArray() VertexArray
	DeleteVertexArray(v VertexArray)
	BindVertexArray(v VertexArray)
	EnableVertexAttribArray(index int)
	DisableVertexAttribArray(index int)
	VertexAttribPointer(index, size int, typ Enum, normalized bool, stride, offset int)
	VertexAttribDivisor(index, divisor int)

	CreateShader(typ Enum) Shader
	ShaderSource(s Shader, source string)
	ShaderBinary(s Shader, format Enum, binary []byte)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader) string
	DeleteShader(s Shader)
	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)
	GetUniformLocation(p Program, name string) UniformLocation
	GetAttribLocation(p Program, name string) int
	GetUniformBlockIndex(p Program, name string) int
	UniformBlockBinding(p Program, blockIndex, binding int)

	CreateTransformFeedback() TransformFeedback
	DeleteTransformFeedback(tf TransformFeedback)
	BindTransformFeedback(target Enum, tf TransformFeedback)
	TransformFeedbackVaryings(p Program, varyings []string, mode Enum)

	Uniform1i(l UniformLocation, v int)
	Uniform2i(l UniformLocation, x, y int)
	Uniform3i(l UniformLocation, x, y, z int)
	Uniform4i(l UniformLocation, x, y, z, w int)
	Uniform1iv(l UniformLocation, v []int32)
	Uniform2iv(l UniformLocation, v []int32)
	Uniform3iv(l UniformLocation, v []int32)
	Uniform4iv(l UniformLocation, v []int32)
	Uniform1f(l UniformLocation, x float32)
	Uniform2f(l UniformLocation, x, y float32)
	Uniform3f(l UniformLocation, x, y, z float32)
	Uniform4f(l UniformLocation, x, y, z, w float32)
	Uniform1fv(l UniformLocation, v []float32)
	Uniform2fv(l UniformLocation, v []float32)
	Uniform3fv(l UniformLocation, v []float32)
	Uniform4fv(l UniformLocation, v []float32)
	UniformMatrix2fv(l UniformLocation, transpose bool, v []float32)
	UniformMatrix3fv(l UniformLocation, transpose bool, v []float32)
	UniformMatrix4fv(l UniformLocation, transpose bool, v []float32)

	CreateFramebuffer() Framebuffer
	DeleteFramebuffer(fb Framebuffer)
	BindFramebuffer(target Enum, fb Framebuffer)
	FramebufferTexture2D(target, attachment, texTarget Enum, t Texture, level int)
	FramebufferTextureLayer(target, attachment Enum, t Texture, level, layer int)
	FramebufferRenderbuffer(target, attachment, rbTarget Enum, rb Renderbuffer)
	CheckFramebufferStatus(target Enum) Enum
	CreateRenderbuffer() Renderbuffer
	DeleteRenderbuffer(rb Renderbuffer)
	BindRenderbuffer(target Enum, rb Renderbuffer)
	RenderbufferStorage(target, internalFormat Enum, width, height int)
	RenderbufferStorageMultisample(target Enum, samples int, internalFormat Enum, width, height int)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, filter Enum)
	DrawBuffers(bufs []Enum)
	ReadBuffer(src Enum)
	ReadPixels(x, y, width, height int, format, typ Enum, dst []byte)

	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	ClearStencil(s int)
	Clear(mask Enum)
	Enable(cap Enum)
	Disable(cap Enum)
	DepthFunc(fn Enum)
	DepthMask(flag bool)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	PolygonOffset(factor, units float32)
	StencilFunc(fn Enum, ref int, mask uint32)
	StencilOp(fail, zfail, zpass Enum)
	StencilMask(mask uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendColor(r, g, b, a float32)
	ColorMask(r, g, b, a bool)

	DrawArrays(mode Enum, first, count int)
	DrawElements(mode Enum, count int, typ Enum, offset int)
	DrawArraysInstanced(mode Enum, first, count, instances int)
	DrawElementsInstanced(mode Enum, count int, typ Enum, offset, instances int)

	Flush()
	Finish()
}
