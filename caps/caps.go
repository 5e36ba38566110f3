// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package caps probes the limits and optional features of a native context.
//
// A Caps record is created once per engine by Probe and treated as
// immutable afterwards. Limits that some drivers fail to report are
// replaced by documented safe defaults and a warning is logged.
package caps

import (
	"strings"

	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// Safe defaults for limits that drivers sometimes answer with 0.
const (
	DefaultMaxVaryingVectors         = 16
	DefaultMaxVertexUniformVectors   = 256
	DefaultMaxFragmentUniformVectors = 256
)

// Caps is the capability record of one context.
type Caps struct {
	// Version is 1 for WebGL1/ES2 class contexts and 2 otherwise.
	Version int
	// ES reports a GLSL ES dialect (false for desktop core contexts).
	ES bool

	Vendor        string
	Renderer      string
	VersionString string

	MaxTextureSize                int
	MaxCubemapTextureSize         int
	MaxRenderTextureSize          int
	Max3DTextureSize              int
	MaxArrayTextureLayers         int
	MaxTexturesImageUnits         int
	MaxVertexTextureImageUnits    int
	MaxCombinedTexturesImageUnits int
	MaxVertexAttribs              int
	MaxVaryingVectors             int
	MaxVertexUniformVectors       int
	MaxFragmentUniformVectors     int
	MaxSamples                    int
	MaxDrawBuffers                int
	MaxAnisotropy                 float32

	TextureAnisotropicFilter        bool
	UintIndices                     bool
	StandardDerivatives             bool
	TextureLOD                      bool
	VertexArrayObject               bool
	InstancedArrays                 bool
	DrawBuffers                     bool
	DepthTexture                    bool
	BlendMinMax                     bool
	ParallelShaderCompile           bool
	SPIRV                           bool
	Multiview                       bool
	ColorBufferFloat                bool
	TextureFloat                    bool
	TextureFloatLinearFiltering     bool
	TextureFloatRender              bool
	TextureHalfFloat                bool
	TextureHalfFloatLinearFiltering bool
	TextureHalfFloatRender          bool

	extensions map[string]bool
}

// Probe queries ctx once and returns its capability record.
func Probe(ctx native.Context) *Caps {
	log := glog.For("caps")
	c := &Caps{
		Version:    ctx.APIVersion(),
		extensions: make(map[string]bool),
	}
	for _, e := range ctx.Extensions() {
		c.extensions[e] = true
	}
	v2 := c.Version > 1

	c.VersionString = ctx.GetString(native.VERSION)
	c.Vendor = orUnknown(ctx.GetString(native.VENDOR), "Unknown vendor")
	c.Renderer = orUnknown(ctx.GetString(native.RENDERER), "Unknown renderer")
	c.ES = strings.Contains(c.VersionString, "OpenGL ES") || strings.Contains(c.VersionString, "WebGL")

	c.MaxTexturesImageUnits = ctx.GetInteger(native.MAX_TEXTURE_IMAGE_UNITS)
	c.MaxCombinedTexturesImageUnits = ctx.GetInteger(native.MAX_COMBINED_TEXTURE_IMAGE_UNITS)
	c.MaxVertexTextureImageUnits = ctx.GetInteger(native.MAX_VERTEX_TEXTURE_IMAGE_UNITS)
	c.MaxTextureSize = ctx.GetInteger(native.MAX_TEXTURE_SIZE)
	c.MaxCubemapTextureSize = ctx.GetInteger(native.MAX_CUBE_MAP_TEXTURE_SIZE)
	c.MaxRenderTextureSize = ctx.GetInteger(native.MAX_RENDERBUFFER_SIZE)
	c.MaxVertexAttribs = ctx.GetInteger(native.MAX_VERTEX_ATTRIBS)
	c.MaxSamples = 1
	c.MaxDrawBuffers = 1
	if v2 {
		c.MaxSamples = ctx.GetInteger(native.MAX_SAMPLES)
		c.MaxDrawBuffers = ctx.GetInteger(native.MAX_DRAW_BUFFERS)
		c.Max3DTextureSize = ctx.GetInteger(native.MAX_3D_TEXTURE_SIZE)
		c.MaxArrayTextureLayers = ctx.GetInteger(native.MAX_ARRAY_TEXTURE_LAYERS)
	}
	// Drop errors from limits the driver does not know.
	drainErrors(ctx)

	c.MaxVaryingVectors = limitOr(ctx, native.MAX_VARYING_VECTORS, DefaultMaxVaryingVectors, "MAX_VARYING_VECTORS")
	c.MaxFragmentUniformVectors = limitOr(ctx, native.MAX_FRAGMENT_UNIFORM_VECTORS, DefaultMaxFragmentUniformVectors, "MAX_FRAGMENT_UNIFORM_VECTORS")
	c.MaxVertexUniformVectors = limitOr(ctx, native.MAX_VERTEX_UNIFORM_VECTORS, DefaultMaxVertexUniformVectors, "MAX_VERTEX_UNIFORM_VECTORS")
	if c.MaxCombinedTexturesImageUnits <= 0 {
		log.Warn("MAX_COMBINED_TEXTURE_IMAGE_UNITS query failed, using default", "value", 8)
		c.MaxCombinedTexturesImageUnits = 8
	}

	c.TextureAnisotropicFilter = c.Has(native.ExtAnisotropic)
	c.MaxAnisotropy = 1
	if c.TextureAnisotropicFilter {
		c.MaxAnisotropy = max(ctx.GetFloat(native.MAX_TEXTURE_MAX_ANISOTROPY_EXT), 1)
	}
	c.ParallelShaderCompile = c.Has(native.ExtParallelCompile)
	c.SPIRV = c.Has(native.ExtSPIRV)
	c.Multiview = c.Has(native.ExtMultiview)

	c.UintIndices = v2 || c.Has(native.ExtUintIndices)
	c.StandardDerivatives = v2 || c.Has(native.ExtStandardDerivatives)
	c.TextureLOD = v2 || c.Has(native.ExtShaderTextureLOD)
	c.VertexArrayObject = v2 || c.Has(native.ExtVertexArrayObject)
	c.InstancedArrays = v2 || c.Has(native.ExtInstancedArrays)
	c.DrawBuffers = v2 || c.Has(native.ExtDrawBuffers)
	c.DepthTexture = v2 || c.Has(native.ExtDepthTexture)
	c.BlendMinMax = v2 || c.Has(native.ExtBlendMinMax)

	c.ColorBufferFloat = v2 && c.Has(native.ExtColorBufferFloat)
	c.TextureFloat = v2 || c.Has(native.ExtTextureFloat)
	c.TextureFloatLinearFiltering = c.TextureFloat && c.Has(native.ExtTextureFloatLinear)
	c.TextureHalfFloat = v2 || c.Has(native.ExtTextureHalfFloat)
	c.TextureHalfFloatLinearFiltering = v2 || c.Has(native.ExtTextureHalfLinear)
	if v2 {
		c.TextureFloatRender = c.TextureFloat && c.ColorBufferFloat
		c.TextureHalfFloatRender = c.TextureHalfFloat && (c.ColorBufferFloat || c.Has(native.ExtColorBufferHalf))
	} else {
		c.TextureFloatRender = c.TextureFloat && canRender(ctx, native.RGBA, native.FLOAT)
		c.TextureHalfFloatRender = c.TextureHalfFloat && canRender(ctx, native.RGBA, native.HALF_FLOAT)
	}

	log.Info("capabilities probed",
		"version", c.Version,
		"renderer", c.Renderer,
		"maxTextureSize", c.MaxTextureSize,
		"textureUnits", c.MaxCombinedTexturesImageUnits,
		"parallelCompile", c.ParallelShaderCompile)
	return c
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// limitOr reads an integer limit, substituting def when the driver answers
// 0 or reports an error.
func limitOr(ctx native.Context, pname native.Enum, def int, name string) int {
	v := ctx.GetInteger(pname)
	if e := ctx.GetError(); e != native.NO_ERROR || v <= 0 {
		glog.For("caps").Warn("limit query failed, using default", "limit", name, "value", def)
		return def
	}
	return v
}

// canRender checks whether a 1x1 texture of the given type can be attached
// to a framebuffer and cleared without errors.
func canRender(ctx native.Context, format, typ native.Enum) bool {
	drainErrors(ctx)
	tex := ctx.CreateTexture()
	ctx.BindTexture(native.TEXTURE_2D, tex)
	ctx.TexImage2D(native.TEXTURE_2D, 0, format, 1, 1, format, typ, nil)
	ctx.TexParameteri(native.TEXTURE_2D, native.TEXTURE_MIN_FILTER, int(native.NEAREST))
	ctx.TexParameteri(native.TEXTURE_2D, native.TEXTURE_MAG_FILTER, int(native.NEAREST))

	fb := ctx.CreateFramebuffer()
	ctx.BindFramebuffer(native.FRAMEBUFFER, fb)
	ctx.FramebufferTexture2D(native.FRAMEBUFFER, native.COLOR_ATTACHMENT0, native.TEXTURE_2D, tex, 0)
	ok := ctx.CheckFramebufferStatus(native.FRAMEBUFFER) == native.FRAMEBUFFER_COMPLETE &&
		ctx.GetError() == native.NO_ERROR
	if ok {
		ctx.Clear(native.COLOR_BUFFER_BIT)
		ok = ctx.GetError() == native.NO_ERROR
	}

	ctx.DeleteTexture(tex)
	ctx.DeleteFramebuffer(fb)
	ctx.BindFramebuffer(native.FRAMEBUFFER, 0)
	ctx.BindTexture(native.TEXTURE_2D, 0)
	drainErrors(ctx)
	return ok
}

// maxErrorDrain bounds drainErrors; a lost context reports an error on
// every call.
const maxErrorDrain = 16

// drainErrors clears the pending error flags of ctx.
func drainErrors(ctx native.Context) {
	for range maxErrorDrain {
		if ctx.GetError() == native.NO_ERROR {
			return
		}
	}
}

// Has reports whether the context advertised an extension.
func (c *Caps) Has(ext string) bool { return c.extensions[ext] }

// Extensions returns the advertised extension names.
func (c *Caps) Extensions() []string {
	out := make([]string, 0, len(c.extensions))
	for e := range c.extensions {
		out = append(out, e)
	}
	return out
}

// ShaderVersion returns the preamble prepended to every generated shader:
// GLSL ES 3.00 on ES/WebGL 2 contexts, GLSL 3.30 on desktop core contexts,
// nothing on version 1 contexts.
func (c *Caps) ShaderVersion() string {
	switch {
	case c.Version < 2:
		return ""
	case c.ES:
		return "#version 300 es\n#define WEBGL2 \n"
	default:
		return "#version 330\n#define WEBGL2 \n"
	}
}
