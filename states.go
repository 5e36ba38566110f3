// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/native"
	"github.com/gogpu/glengine/state"
)

// Viewport is a rectangle in units of the render size: 0, 0, 1, 1 covers
// the whole surface.
type Viewport struct {
	X, Y, Width, Height float32
}

// FullViewport covers the whole render surface.
var FullViewport = Viewport{Width: 1, Height: 1}

// SetState sets culling, the polygon offset factor and the winding of
// front faces. reverseSide makes clockwise faces front facing. force
// re-sends every value even when unchanged.
func (e *Engine) SetState(culling bool, zOffset float32, force, reverseSide bool) {
	if force {
		e.depth.Invalidate()
	}
	e.depth.SetCull(culling)
	if e.opts.CullBackFaces {
		e.depth.SetCullFace(gputypes.CullModeBack)
	} else {
		e.depth.SetCullFace(gputypes.CullModeFront)
	}
	e.depth.SetZOffset(zOffset)
	if reverseSide {
		e.depth.SetFrontFace(gputypes.FrontFaceCW)
	} else {
		e.depth.SetFrontFace(gputypes.FrontFaceCCW)
	}
}

// SetZOffset sets the polygon offset factor.
func (e *Engine) SetZOffset(v float32) { e.depth.SetZOffset(v) }

// SetDepthBuffer enables or disables depth testing.
func (e *Engine) SetDepthBuffer(enable bool) { e.depth.SetDepthTest(enable) }

// SetDepthWrite enables or disables depth writes.
func (e *Engine) SetDepthWrite(enable bool) { e.depth.SetDepthMask(enable) }

// DepthWrite reports whether depth writes are enabled.
func (e *Engine) DepthWrite() bool { return e.depth.DepthMask() }

// SetDepthFunction sets the depth comparison.
func (e *Engine) SetDepthFunction(f gputypes.CompareFunction) { e.depth.SetDepthFunc(f) }

// SetStencilBuffer enables or disables stencil testing.
func (e *Engine) SetStencilBuffer(enable bool) { e.stencil.SetEnabled(enable) }

// SetColorWrite enables or disables writes to every colour channel.
func (e *Engine) SetColorWrite(enable bool) { e.alpha.SetColorMask(enable, enable, enable, enable) }

// ColorWrite reports whether colour writes are enabled.
func (e *Engine) ColorWrite() bool { return e.alpha.ColorWrite() }

// SetAlphaMode selects a canned blending configuration. Depth writes follow
// the mode, on only when blending is off, unless noDepthWriteChange is set.
func (e *Engine) SetAlphaMode(mode state.AlphaMode, noDepthWriteChange bool) {
	if e.alphaMode == mode {
		return
	}
	state.SetAlphaMode(e.alpha, e.depth, mode, noDepthWriteChange)
	e.alphaMode = mode
}

// AlphaMode returns the mode last selected.
func (e *Engine) AlphaMode() state.AlphaMode { return e.alphaMode }

// ApplyStates flushes every pending fixed-function change to the context.
// Draws and clears call it.
func (e *Engine) ApplyStates() {
	e.depth.Apply(e.ctx)
	e.stencil.Apply(e.ctx)
	e.alpha.Apply(e.ctx)
}

// RenderWidth returns the width of the bound render target, or of the
// drawing buffer when none is bound.
func (e *Engine) RenderWidth() int {
	if t := e.targets.Current(); t != nil {
		return t.Width()
	}
	w, _ := e.ctx.DrawingBufferSize()
	return w
}

// RenderHeight returns the height of the bound render target, or of the
// drawing buffer when none is bound.
func (e *Engine) RenderHeight() int {
	if t := e.targets.Current(); t != nil {
		return t.Height()
	}
	_, h := e.ctx.DrawingBufferSize()
	return h
}

// SetViewport sets a viewport relative to requiredWidth x requiredHeight,
// or to the render size where they are zero, and remembers it for later
// render target binds.
func (e *Engine) SetViewport(v Viewport, requiredWidth, requiredHeight int) {
	w, h := requiredWidth, requiredHeight
	if w <= 0 {
		w = e.RenderWidth()
	}
	if h <= 0 {
		h = e.RenderHeight()
	}
	e.cachedViewport = &v
	e.setViewport(int(v.X*float32(w)), int(v.Y*float32(h)), int(v.Width*float32(w)), int(v.Height*float32(h)))
}

// SetDirectViewport sets a viewport in pixels, forgetting the remembered
// relative one, which is returned.
func (e *Engine) SetDirectViewport(x, y, width, height int) Viewport {
	prev := FullViewport
	if e.cachedViewport != nil {
		prev = *e.cachedViewport
	}
	e.cachedViewport = nil
	e.setViewport(x, y, width, height)
	return prev
}

// setViewport issues Viewport unless the cached rectangle matches.
func (e *Engine) setViewport(x, y, w, h int) {
	v := [4]int{x, y, w, h}
	if e.viewportKnown && e.viewport == v {
		return
	}
	e.viewport, e.viewportKnown = v, true
	e.ctx.Viewport(x, y, w, h)
}

// targetViewport serves render target binds: a relative request reuses the
// remembered viewport at the new size, anything else covers the size.
func (e *Engine) targetViewport(width, height int, relative bool) {
	if relative && e.cachedViewport != nil {
		e.SetViewport(*e.cachedViewport, width, height)
		return
	}
	e.setViewport(0, 0, width, height)
}

// Clear clears the bound framebuffer. The colour buffer is cleared only
// when backBuffer is set and color is not nil. Pending state is applied
// first so masks take effect.
func (e *Engine) Clear(color *gputypes.Color, backBuffer, depth, stencil bool) {
	e.ApplyStates()
	var mask native.Enum
	if backBuffer && color != nil {
		e.ctx.ClearColor(float32(color.R), float32(color.G), float32(color.B), float32(color.A))
		mask |= native.COLOR_BUFFER_BIT
	}
	if depth {
		e.ctx.ClearDepth(1)
		mask |= native.DEPTH_BUFFER_BIT
	}
	if stencil {
		e.ctx.ClearStencil(0)
		mask |= native.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		e.ctx.Clear(mask)
	}
}

// EnableScissor restricts draws and clears to a rectangle in pixels.
func (e *Engine) EnableScissor(x, y, width, height int) {
	e.ctx.Enable(native.SCISSOR_TEST)
	e.ctx.Scissor(x, y, width, height)
}

// DisableScissor lifts the scissor rectangle.
func (e *Engine) DisableScissor() { e.ctx.Disable(native.SCISSOR_TEST) }

// ScissorClear clears colour, depth and stencil inside a rectangle only.
func (e *Engine) ScissorClear(x, y, width, height int, color gputypes.Color) {
	e.EnableScissor(x, y, width, height)
	e.Clear(&color, true, true, true)
	e.DisableScissor()
}
