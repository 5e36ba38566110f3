// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glcore implements native.Context on a desktop OpenGL 4.1 core
// profile context created through GLFW.
//
// GLFW and GL calls must happen on the main OS thread. Programs using this
// backend should call runtime.LockOSThread from an init function in their
// main package.
package glcore

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/glengine/backend"
	"github.com/gogpu/glengine/native"
)

func init() {
	backend.Register(backend.GLCore, func(cfg backend.Config) (native.Context, error) {
		return Open(cfg)
	})
}

// Context is a native.Context bound to a GLFW window.
type Context struct {
	window *glfw.Window
	flipY  bool
	exts   []string
	lost   bool
}

// Open creates a window with a current OpenGL 4.1 core context.
func Open(cfg backend.Config) (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glcore: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, boolHint(cfg.Visible))
	glfw.WindowHint(glfw.Samples, cfg.Samples)

	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 640
	}
	if h <= 0 {
		h = 480
	}
	title := cfg.Title
	if title == "" {
		title = "glengine"
	}
	window, err := glfw.CreateWindow(w, h, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glcore: create window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("glcore: load gl: %w", err)
	}
	c := &Context{window: window}
	c.exts = c.probeExtensions()
	return c, nil
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// Window returns the GLFW window backing the context.
func (c *Context) Window() *glfw.Window { return c.window }

// ShouldClose reports whether the user asked to close the window.
func (c *Context) ShouldClose() bool { return c.window.ShouldClose() }

// SwapBuffers implements backend.Presenter and pumps window events.
func (c *Context) SwapBuffers() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

// Close implements backend.Closer.
func (c *Context) Close() error {
	c.lost = true
	c.window.Destroy()
	glfw.Terminate()
	return nil
}

// probeExtensions reports the WebGL-style extension names the engine
// probes for. Desktop 4.1 core covers most of them natively.
func (c *Context) probeExtensions() []string {
	exts := []string{
		native.ExtColorBufferFloat,
		native.ExtColorBufferHalf,
		native.ExtTextureFloatLinear,
		native.ExtTextureHalfLinear,
		native.ExtTextureFloat,
		native.ExtTextureHalfFloat,
		native.ExtUintIndices,
		native.ExtVertexArrayObject,
		native.ExtInstancedArrays,
		native.ExtDrawBuffers,
		native.ExtDepthTexture,
		native.ExtStandardDerivatives,
		native.ExtShaderTextureLOD,
		native.ExtBlendMinMax,
	}
	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := uint32(0); i < uint32(n); i++ {
		name := gl.GoStr(gl.GetStringi(gl.EXTENSIONS, i))
		switch name {
		case "GL_EXT_texture_filter_anisotropic", "GL_ARB_texture_filter_anisotropic":
			exts = append(exts, native.ExtAnisotropic)
		case "GL_KHR_parallel_shader_compile", "GL_ARB_parallel_shader_compile":
			exts = append(exts, native.ExtParallelCompile)
		case "GL_OVR_multiview2":
			exts = append(exts, native.ExtMultiview)
		}
	}
	return exts
}

func ptr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func cstr(s string) (*uint8, func()) {
	strs, free := gl.Strs(s + "\x00")
	return *strs, free
}

// APIVersion implements native.Context.
func (c *Context) APIVersion() int { return 2 }

// DrawingBufferSize implements native.Context.
func (c *Context) DrawingBufferSize() (int, int) { return c.window.GetFramebufferSize() }

// GetInteger implements native.Context.
func (c *Context) GetInteger(pname native.Enum) int {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

// GetFloat implements native.Context.
func (c *Context) GetFloat(pname native.Enum) float32 {
	var v float32
	gl.GetFloatv(uint32(pname), &v)
	return v
}

// GetString implements native.Context.
func (c *Context) GetString(pname native.Enum) string {
	if pname == native.EXTENSIONS {
		return strings.Join(c.exts, " ")
	}
	return gl.GoStr(gl.GetString(uint32(pname)))
}

// Extensions implements native.Context.
func (c *Context) Extensions() []string { return append([]string(nil), c.exts...) }

// GetError implements native.Context.
func (c *Context) GetError() native.Enum { return native.Enum(gl.GetError()) }

// IsContextLost implements native.Context. Desktop contexts are only
// lost when the window is closed.
func (c *Context) IsContextLost() bool { return c.lost }

// PixelStorei implements native.Context. UNPACK_FLIP_Y_WEBGL has no
// desktop equivalent and is applied to uploads on the CPU.
func (c *Context) PixelStorei(pname native.Enum, param int) {
	switch pname {
	case native.UNPACK_FLIP_Y_WEBGL:
		c.flipY = param != 0
	case native.UNPACK_PREMULTIPLY_ALPHA_WEBGL:
	default:
		gl.PixelStorei(uint32(pname), int32(param))
	}
}

// Flush implements native.Context.
func (c *Context) Flush() { gl.Flush() }

// Finish implements native.Context.
func (c *Context) Finish() { gl.Finish() }

var _ native.Context = (*Context)(nil)
