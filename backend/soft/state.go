// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"maps"

	"github.com/gogpu/glengine/native"
)

// FixedState is the fixed-function portion of the device state.
type FixedState struct {
	Viewport     [4]int
	Scissor      [4]int
	ClearColor   [4]float32
	ClearDepth   float32
	ClearStencil int
	Enabled      map[native.Enum]bool

	DepthFunc     native.Enum
	DepthMask     bool
	CullFace      native.Enum
	FrontFace     native.Enum
	PolygonOffset [2]float32
	ColorMask     [4]bool

	StencilFunc     native.Enum
	StencilRef      int
	StencilFuncMask uint32
	StencilFail     native.Enum
	StencilZFail    native.Enum
	StencilZPass    native.Enum
	StencilMask     uint32

	BlendSrcRGB   native.Enum
	BlendDstRGB   native.Enum
	BlendSrcAlpha native.Enum
	BlendDstAlpha native.Enum
	BlendEqRGB    native.Enum
	BlendEqAlpha  native.Enum
	BlendColor    [4]float32
}

func defaultFixedState(w, h int) FixedState {
	return FixedState{
		Viewport:        [4]int{0, 0, w, h},
		Scissor:         [4]int{0, 0, w, h},
		ClearDepth:      1,
		Enabled:         map[native.Enum]bool{},
		DepthFunc:       native.LESS,
		DepthMask:       true,
		CullFace:        native.BACK,
		FrontFace:       native.CCW,
		ColorMask:       [4]bool{true, true, true, true},
		StencilFunc:     native.ALWAYS,
		StencilFuncMask: 0xFFFFFFFF,
		StencilFail:     native.KEEP,
		StencilZFail:    native.KEEP,
		StencilZPass:    native.KEEP,
		StencilMask:     0xFFFFFFFF,
		BlendSrcRGB:     native.ONE,
		BlendDstRGB:     native.ZERO,
		BlendSrcAlpha:   native.ONE,
		BlendDstAlpha:   native.ZERO,
		BlendEqRGB:      native.FUNC_ADD,
		BlendEqAlpha:    native.FUNC_ADD,
	}
}

// Fixed returns a copy of the current fixed-function state.
func (d *Device) Fixed() FixedState {
	f := d.st.FixedState
	f.Enabled = maps.Clone(f.Enabled)
	return f
}

// IsEnabled reports whether a capability is enabled.
func (d *Device) IsEnabled(capability native.Enum) bool { return d.st.Enabled[capability] }

// Viewport implements native.Context.
func (d *Device) Viewport(x, y, width, height int) {
	d.rec("Viewport", x, y, width, height)
	if width < 0 || height < 0 {
		d.fail(native.INVALID_VALUE)
		return
	}
	d.st.Viewport = [4]int{x, y, width, height}
}

// Scissor implements native.Context.
func (d *Device) Scissor(x, y, width, height int) {
	d.rec("Scissor", x, y, width, height)
	if width < 0 || height < 0 {
		d.fail(native.INVALID_VALUE)
		return
	}
	d.st.Scissor = [4]int{x, y, width, height}
}

// ClearColor implements native.Context.
func (d *Device) ClearColor(r, g, b, a float32) {
	d.rec("ClearColor", r, g, b, a)
	d.st.ClearColor = [4]float32{r, g, b, a}
}

// ClearDepth implements native.Context.
func (d *Device) ClearDepth(v float32) {
	d.rec("ClearDepth", v)
	d.st.ClearDepth = min(max(v, 0), 1)
}

// ClearStencil implements native.Context.
func (d *Device) ClearStencil(s int) {
	d.rec("ClearStencil", s)
	d.st.ClearStencil = s
}

// Enable implements native.Context.
func (d *Device) Enable(capability native.Enum) {
	d.rec("Enable", capability)
	d.st.Enabled[capability] = true
}

// Disable implements native.Context.
func (d *Device) Disable(capability native.Enum) {
	d.rec("Disable", capability)
	delete(d.st.Enabled, capability)
}

// DepthFunc implements native.Context.
func (d *Device) DepthFunc(fn native.Enum) {
	d.rec("DepthFunc", fn)
	if fn < native.NEVER || fn > native.ALWAYS {
		d.fail(native.INVALID_ENUM)
		return
	}
	d.st.DepthFunc = fn
}

// DepthMask implements native.Context.
func (d *Device) DepthMask(flag bool) {
	d.rec("DepthMask", flag)
	d.st.DepthMask = flag
}

// CullFace implements native.Context.
func (d *Device) CullFace(mode native.Enum) {
	d.rec("CullFace", mode)
	d.st.CullFace = mode
}

// FrontFace implements native.Context.
func (d *Device) FrontFace(mode native.Enum) {
	d.rec("FrontFace", mode)
	d.st.FrontFace = mode
}

// PolygonOffset implements native.Context.
func (d *Device) PolygonOffset(factor, units float32) {
	d.rec("PolygonOffset", factor, units)
	d.st.PolygonOffset = [2]float32{factor, units}
}

// StencilFunc implements native.Context.
func (d *Device) StencilFunc(fn native.Enum, ref int, mask uint32) {
	d.rec("StencilFunc", fn, ref, mask)
	d.st.StencilFunc = fn
	d.st.StencilRef = ref
	d.st.StencilFuncMask = mask
}

// StencilOp implements native.Context.
func (d *Device) StencilOp(fail, zfail, zpass native.Enum) {
	d.rec("StencilOp", fail, zfail, zpass)
	d.st.StencilFail = fail
	d.st.StencilZFail = zfail
	d.st.StencilZPass = zpass
}

// StencilMask implements native.Context.
func (d *Device) StencilMask(mask uint32) {
	d.rec("StencilMask", mask)
	d.st.StencilMask = mask
}

// BlendFuncSeparate implements native.Context.
func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha native.Enum) {
	d.rec("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
	d.st.BlendSrcRGB = srcRGB
	d.st.BlendDstRGB = dstRGB
	d.st.BlendSrcAlpha = srcAlpha
	d.st.BlendDstAlpha = dstAlpha
}

// BlendEquationSeparate implements native.Context.
func (d *Device) BlendEquationSeparate(modeRGB, modeAlpha native.Enum) {
	d.rec("BlendEquationSeparate", modeRGB, modeAlpha)
	d.st.BlendEqRGB = modeRGB
	d.st.BlendEqAlpha = modeAlpha
}

// BlendColor implements native.Context.
func (d *Device) BlendColor(r, g, b, a float32) {
	d.rec("BlendColor", r, g, b, a)
	d.st.BlendColor = [4]float32{r, g, b, a}
}

// ColorMask implements native.Context.
func (d *Device) ColorMask(r, g, b, a bool) {
	d.rec("ColorMask", r, g, b, a)
	d.st.ColorMask = [4]bool{r, g, b, a}
}
