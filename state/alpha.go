// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/native"
)

// BlendFactors are the separate RGB and alpha source/destination factors.
type BlendFactors struct {
	SrcRGB, DstRGB, SrcAlpha, DstAlpha gputypes.BlendFactor
}

// BlendEquations are the separate RGB and alpha blend operations.
type BlendEquations struct {
	RGB, Alpha gputypes.BlendOperation
}

// Alpha tracks blending and the colour write mask.
type Alpha struct {
	blend     tracked[bool]
	factors   tracked[BlendFactors]
	equations tracked[BlendEquations]
	constants tracked[[4]float32]
	colorMask tracked[[4]bool]
}

// NewAlpha returns a tracker in the reset state: blending off, factors
// One/Zero, Add equations, zero constant colour, all channels writable.
func NewAlpha() *Alpha {
	s := &Alpha{}
	s.Reset()
	return s
}

// Reset restores the default desired state and forgets what was applied.
func (s *Alpha) Reset() {
	s.blend.forget(false)
	s.factors.forget(BlendFactors{
		SrcRGB:   gputypes.BlendFactorOne,
		DstRGB:   gputypes.BlendFactorZero,
		SrcAlpha: gputypes.BlendFactorOne,
		DstAlpha: gputypes.BlendFactorZero,
	})
	s.equations.forget(BlendEquations{RGB: gputypes.BlendOperationAdd, Alpha: gputypes.BlendOperationAdd})
	s.constants.forget([4]float32{})
	s.colorMask.forget([4]bool{true, true, true, true})
}

// SetBlend enables or disables blending.
func (s *Alpha) SetBlend(on bool) { s.blend.set(on) }

// Blend reports whether blending is desired.
func (s *Alpha) Blend() bool { return s.blend.get() }

// SetFactors sets the blend factors.
func (s *Alpha) SetFactors(f BlendFactors) { s.factors.set(f) }

// Factors returns the desired blend factors.
func (s *Alpha) Factors() BlendFactors { return s.factors.get() }

// SetEquations sets the blend operations.
func (s *Alpha) SetEquations(e BlendEquations) { s.equations.set(e) }

// Equations returns the desired blend operations.
func (s *Alpha) Equations() BlendEquations { return s.equations.get() }

// SetConstants sets the blend constant colour.
func (s *Alpha) SetConstants(c gputypes.Color) {
	s.constants.set([4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
}

// SetColorMask sets which channels are written.
func (s *Alpha) SetColorMask(r, g, b, a bool) { s.colorMask.set([4]bool{r, g, b, a}) }

// ColorWrite reports whether any channel is writable.
func (s *Alpha) ColorWrite() bool {
	m := s.colorMask.get()
	return m[0] || m[1] || m[2] || m[3]
}

// IsDirty reports whether Apply would emit any call.
func (s *Alpha) IsDirty() bool {
	return s.blend.dirty() || s.factors.dirty() || s.equations.dirty() ||
		s.constants.dirty() || s.colorMask.dirty()
}

// Apply emits the calls for every changed field.
func (s *Alpha) Apply(ctx native.Context) {
	if !s.IsDirty() {
		return
	}
	if s.blend.dirty() {
		toggle(ctx, native.BLEND, s.blend.get())
		s.blend.commit()
	}
	if s.factors.dirty() {
		f := s.factors.get()
		ctx.BlendFuncSeparate(native.BlendFactor(f.SrcRGB), native.BlendFactor(f.DstRGB),
			native.BlendFactor(f.SrcAlpha), native.BlendFactor(f.DstAlpha))
		s.factors.commit()
	}
	if s.equations.dirty() {
		e := s.equations.get()
		ctx.BlendEquationSeparate(native.BlendOp(e.RGB), native.BlendOp(e.Alpha))
		s.equations.commit()
	}
	if s.constants.dirty() {
		c := s.constants.get()
		ctx.BlendColor(c[0], c[1], c[2], c[3])
		s.constants.commit()
	}
	if s.colorMask.dirty() {
		m := s.colorMask.get()
		ctx.ColorMask(m[0], m[1], m[2], m[3])
		s.colorMask.commit()
	}
}
