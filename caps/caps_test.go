// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package caps

import (
	"testing"
	"time"

	"github.com/gogpu/glengine/backend/soft"
	"github.com/gogpu/glengine/native"
)

func TestProbeDefaults(t *testing.T) {
	c := Probe(soft.New(soft.Options{}))

	if c.Version != 2 {
		t.Errorf("Version = %d, want 2", c.Version)
	}
	if c.MaxCombinedTexturesImageUnits != 16 {
		t.Errorf("MaxCombinedTexturesImageUnits = %d, want 16", c.MaxCombinedTexturesImageUnits)
	}
	if c.MaxVaryingVectors != 15 {
		t.Errorf("MaxVaryingVectors = %d, want 15", c.MaxVaryingVectors)
	}
	if c.MaxAnisotropy != 16 || !c.TextureAnisotropicFilter {
		t.Errorf("anisotropy = %v/%v, want 16/true", c.MaxAnisotropy, c.TextureAnisotropicFilter)
	}
	if !c.UintIndices || !c.VertexArrayObject || !c.DrawBuffers || !c.InstancedArrays {
		t.Error("version 2 core features not reported")
	}
	if !c.TextureFloatRender || !c.TextureFloatLinearFiltering {
		t.Error("float rendering not reported with EXT_color_buffer_float")
	}
	if c.ParallelShaderCompile || c.SPIRV {
		t.Error("optional extensions reported without being advertised")
	}
	if got := c.ShaderVersion(); got != "#version 300 es\n#define WEBGL2 \n" {
		t.Errorf("ShaderVersion() = %q", got)
	}
}

func TestProbeSubstitutesZeroLimits(t *testing.T) {
	d := soft.New(soft.Options{Limits: map[native.Enum]int{
		native.MAX_VARYING_VECTORS:          0,
		native.MAX_VERTEX_UNIFORM_VECTORS:   0,
		native.MAX_FRAGMENT_UNIFORM_VECTORS: 0,
	}})
	c := Probe(d)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"varying", c.MaxVaryingVectors, DefaultMaxVaryingVectors},
		{"vertex uniforms", c.MaxVertexUniformVectors, DefaultMaxVertexUniformVectors},
		{"fragment uniforms", c.MaxFragmentUniformVectors, DefaultMaxFragmentUniformVectors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
	if e := d.GetError(); e != native.NO_ERROR {
		t.Errorf("probe left error %#x", e)
	}
}

func TestProbeVersion1(t *testing.T) {
	d := soft.New(soft.Options{Version: 1, Extensions: []string{native.ExtTextureFloat}})
	c := Probe(d)

	if c.UintIndices || c.VertexArrayObject || c.DrawBuffers {
		t.Error("version 1 reported version 2 features")
	}
	if c.MaxSamples != 1 || c.MaxDrawBuffers != 1 {
		t.Errorf("MaxSamples/MaxDrawBuffers = %d/%d, want 1/1", c.MaxSamples, c.MaxDrawBuffers)
	}
	if !c.TextureFloat || !c.TextureFloatRender {
		t.Error("float render probe failed on a device that can render floats")
	}
	if c.TextureFloatLinearFiltering {
		t.Error("linear float filtering reported without the extension")
	}
	if c.MaxAnisotropy != 1 {
		t.Errorf("MaxAnisotropy = %v, want 1", c.MaxAnisotropy)
	}
	if c.ShaderVersion() != "" {
		t.Errorf("ShaderVersion() = %q, want empty", c.ShaderVersion())
	}
	if d.LiveTextures() != 0 || d.LiveFramebuffers() != 0 {
		t.Error("render probe leaked objects")
	}
}

func TestProbeOptionalExtensions(t *testing.T) {
	c := Probe(soft.New(soft.Options{
		ParallelCompile: true,
		Extensions:      []string{native.ExtSPIRV, native.ExtMultiview},
	}))
	if !c.ParallelShaderCompile || !c.SPIRV || !c.Multiview {
		t.Errorf("parallel/spirv/multiview = %v/%v/%v", c.ParallelShaderCompile, c.SPIRV, c.Multiview)
	}
	if c.TextureAnisotropicFilter {
		t.Error("anisotropy reported without the extension")
	}
	if !c.Has(native.ExtSPIRV) || c.Has("missing") {
		t.Error("Has() mismatch")
	}
}

// stuckErrors reports an error on every GetError, as a lost context does.
type stuckErrors struct {
	*soft.Device
	reads int
}

func (s *stuckErrors) GetError() native.Enum {
	s.reads++
	return native.CONTEXT_LOST_WEBGL
}

func TestDrainErrorsIsBounded(t *testing.T) {
	ctx := &stuckErrors{Device: soft.New(soft.Options{})}
	drainErrors(ctx)
	if ctx.reads != maxErrorDrain {
		t.Errorf("GetError() calls = %d, want %d", ctx.reads, maxErrorDrain)
	}
}

func TestProbeReturnsWithStickyError(t *testing.T) {
	ctx := &stuckErrors{Device: soft.New(soft.Options{Version: 1})}
	done := make(chan *Caps, 1)
	go func() { done <- Probe(ctx) }()
	select {
	case c := <-done:
		if c.MaxVaryingVectors != DefaultMaxVaryingVectors {
			t.Errorf("MaxVaryingVectors = %d, want the default %d", c.MaxVaryingVectors, DefaultMaxVaryingVectors)
		}
		if c.TextureFloatRender || c.TextureHalfFloatRender {
			t.Errorf("float render = %t, half float render = %t, want false with every query failing",
				c.TextureFloatRender, c.TextureHalfFloatRender)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Probe() did not return")
	}
}
