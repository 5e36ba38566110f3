// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/pipeline"
	"github.com/gogpu/glengine/texture"
)

// CreateEffect returns the cached effect for o, compiling it on first use.
// Identical options return the same effect without a second compile.
func (e *Engine) CreateEffect(o pipeline.EffectOptions) (*pipeline.Effect, error) {
	if e.disposed {
		return nil, ErrDisposed
	}
	return e.pipelines.CreateEffect(o)
}

// EnableEffect makes eff current and points its samplers at their
// channels. Enabling the current effect again does nothing; a nil eff
// forgets the current one.
func (e *Engine) EnableEffect(eff *pipeline.Effect) error {
	if eff == nil {
		return e.pipelines.Use(nil)
	}
	if e.pipelines.Current() == eff {
		return nil
	}
	return e.BindSamplers(eff)
}

// BindSamplers makes eff current and records each of its samplers as the
// uniform of the channel matching its index.
func (e *Engine) BindSamplers(eff *pipeline.Effect) error {
	if err := e.pipelines.Use(eff); err != nil {
		return err
	}
	for i, name := range eff.Samplers() {
		e.textures.BindUniform(i, texture.Uniform{Program: eff.Program(), Location: eff.Uniform(name)})
	}
	return nil
}

// SetTexture binds s for sampling through the sampler uniform samplerName
// of eff, which expects it on channel. A nil s empties the channel.
func (e *Engine) SetTexture(channel int, eff *pipeline.Effect, samplerName string, s *texture.Sampler) error {
	u := texture.Uniform{Location: eff.Uniform(samplerName), Program: eff.Program()}
	return e.textures.SetTexture(channel, u, s)
}

// SetTextureArray binds samplers to consecutive channels starting at
// channel for the sampler array uniform samplerName of eff.
func (e *Engine) SetTextureArray(channel int, eff *pipeline.Effect, samplerName string, samplers []*texture.Sampler) error {
	u := texture.Uniform{Location: eff.Uniform(samplerName), Program: eff.Program()}
	return e.textures.SetTextureArray(channel, u, samplers)
}

// SetMatrix4 sets a mat4 uniform of eff.
func (e *Engine) SetMatrix4(eff *pipeline.Effect, name string, m mgl32.Mat4) error {
	return eff.SetMatrix4(name, m[:])
}

// SetMatrix3 sets a mat3 uniform of eff.
func (e *Engine) SetMatrix3(eff *pipeline.Effect, name string, m mgl32.Mat3) error {
	return eff.SetMatrix3(name, m[:])
}

// SetMatrix2 sets a mat2 uniform of eff.
func (e *Engine) SetMatrix2(eff *pipeline.Effect, name string, m mgl32.Mat2) error {
	return eff.SetMatrix2(name, m[:])
}

// SetMatrices sets a mat4[] uniform of eff from consecutive matrices.
func (e *Engine) SetMatrices(eff *pipeline.Effect, name string, ms []mgl32.Mat4) error {
	v := make([]float32, 0, 16*len(ms))
	for _, m := range ms {
		v = append(v, m[:]...)
	}
	return eff.SetMatrix4(name, v)
}

// SetVector2 sets a vec2 uniform of eff.
func (e *Engine) SetVector2(eff *pipeline.Effect, name string, v mgl32.Vec2) error {
	return eff.SetFloat2(name, v[0], v[1])
}

// SetVector3 sets a vec3 uniform of eff.
func (e *Engine) SetVector3(eff *pipeline.Effect, name string, v mgl32.Vec3) error {
	return eff.SetFloat3(name, v[0], v[1], v[2])
}

// SetVector4 sets a vec4 uniform of eff.
func (e *Engine) SetVector4(eff *pipeline.Effect, name string, v mgl32.Vec4) error {
	return eff.SetFloat4(name, v[0], v[1], v[2], v[3])
}

// SetColor4 sets a vec4 uniform of eff from c.
func (e *Engine) SetColor4(eff *pipeline.Effect, name string, c gputypes.Color) error {
	return eff.SetFloat4(name, float32(c.R), float32(c.G), float32(c.B), float32(c.A))
}

// ReleaseEffect drops eff from the cache and deletes its program.
func (e *Engine) ReleaseEffect(eff *pipeline.Effect) error { return e.pipelines.ReleaseEffect(eff) }

// ReleaseEffects releases every effect.
func (e *Engine) ReleaseEffects() { e.pipelines.ReleaseEffects() }

// AreAllEffectsReady reports whether no effect is still compiling.
func (e *Engine) AreAllEffectsReady() bool { return e.pipelines.AreAllEffectsReady() }
