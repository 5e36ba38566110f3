// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/native"
)

// DepthCull tracks depth testing, face culling and polygon offset.
//
// After construction and after Reset the desired state is: depth test on,
// depth writes on, LessEqual, culling off, back faces, counter-clockwise
// front faces, no offset.
type DepthCull struct {
	depthTest    tracked[bool]
	depthMask    tracked[bool]
	depthFunc    tracked[gputypes.CompareFunction]
	cull         tracked[bool]
	cullFace     tracked[gputypes.CullMode]
	frontFace    tracked[gputypes.FrontFace]
	zOffset      tracked[float32]
	zOffsetUnits tracked[float32]
}

// NewDepthCull returns a tracker in the reset state.
func NewDepthCull() *DepthCull {
	s := &DepthCull{}
	s.Reset()
	return s
}

// Reset restores the default desired state and forgets what was applied.
func (s *DepthCull) Reset() {
	s.depthTest.forget(true)
	s.depthMask.forget(true)
	s.depthFunc.forget(gputypes.CompareFunctionLessEqual)
	s.cull.forget(false)
	s.cullFace.forget(gputypes.CullModeBack)
	s.frontFace.forget(gputypes.FrontFaceCCW)
	s.zOffset.forget(0)
	s.zOffsetUnits.forget(0)
}

// Invalidate forgets what was applied without touching the desired
// state, so the next Apply emits every field.
func (s *DepthCull) Invalidate() {
	s.depthTest.invalidate()
	s.depthMask.invalidate()
	s.depthFunc.invalidate()
	s.cull.invalidate()
	s.cullFace.invalidate()
	s.frontFace.invalidate()
	s.zOffset.invalidate()
	s.zOffsetUnits.invalidate()
}

// IsDirty reports whether Apply would emit any call.
func (s *DepthCull) IsDirty() bool {
	return s.depthTest.dirty() || s.depthMask.dirty() || s.depthFunc.dirty() ||
		s.cull.dirty() || s.cullFace.dirty() || s.frontFace.dirty() ||
		s.zOffset.dirty() || s.zOffsetUnits.dirty()
}

// SetDepthTest enables or disables the depth test.
func (s *DepthCull) SetDepthTest(v bool) { s.depthTest.set(v) }

// DepthTest reports whether the depth test is wanted.
func (s *DepthCull) DepthTest() bool { return s.depthTest.get() }

// SetDepthMask enables or disables depth writes.
func (s *DepthCull) SetDepthMask(v bool) { s.depthMask.set(v) }

// DepthMask reports whether depth writes are wanted.
func (s *DepthCull) DepthMask() bool { return s.depthMask.get() }

// SetDepthFunc sets the depth comparison.
func (s *DepthCull) SetDepthFunc(f gputypes.CompareFunction) { s.depthFunc.set(f) }

// DepthFunc returns the depth comparison.
func (s *DepthCull) DepthFunc() gputypes.CompareFunction { return s.depthFunc.get() }

// SetCull enables or disables face culling.
func (s *DepthCull) SetCull(v bool) { s.cull.set(v) }

// Cull reports whether face culling is wanted.
func (s *DepthCull) Cull() bool { return s.cull.get() }

// SetCullFace sets which faces are culled.
func (s *DepthCull) SetCullFace(m gputypes.CullMode) { s.cullFace.set(m) }

// CullFace returns which faces are culled.
func (s *DepthCull) CullFace() gputypes.CullMode { return s.cullFace.get() }

// SetFrontFace sets the winding of front faces.
func (s *DepthCull) SetFrontFace(f gputypes.FrontFace) { s.frontFace.set(f) }

// FrontFace returns the winding of front faces.
func (s *DepthCull) FrontFace() gputypes.FrontFace { return s.frontFace.get() }

// SetZOffset sets the polygon offset factor. Zero disables the offset.
func (s *DepthCull) SetZOffset(factor float32) { s.zOffset.set(factor) }

// ZOffset returns the polygon offset factor.
func (s *DepthCull) ZOffset() float32 { return s.zOffset.get() }

// SetZOffsetUnits sets the polygon offset units.
func (s *DepthCull) SetZOffsetUnits(units float32) { s.zOffsetUnits.set(units) }

// ZOffsetUnits returns the polygon offset units.
func (s *DepthCull) ZOffsetUnits() float32 { return s.zOffsetUnits.get() }

// Apply emits the calls for every changed field.
func (s *DepthCull) Apply(ctx native.Context) {
	if !s.IsDirty() {
		return
	}
	if s.cull.dirty() {
		toggle(ctx, native.CULL_FACE, s.cull.get())
		s.cull.commit()
	}
	if s.cullFace.dirty() {
		ctx.CullFace(native.CullFace(s.cullFace.get()))
		s.cullFace.commit()
	}
	if s.depthMask.dirty() {
		ctx.DepthMask(s.depthMask.get())
		s.depthMask.commit()
	}
	if s.depthTest.dirty() {
		toggle(ctx, native.DEPTH_TEST, s.depthTest.get())
		s.depthTest.commit()
	}
	if s.depthFunc.dirty() {
		ctx.DepthFunc(native.CompareFunc(s.depthFunc.get()))
		s.depthFunc.commit()
	}
	if s.zOffset.dirty() || s.zOffsetUnits.dirty() {
		if s.zOffset.get() != 0 || s.zOffsetUnits.get() != 0 {
			ctx.Enable(native.POLYGON_OFFSET_FILL)
			ctx.PolygonOffset(s.zOffset.get(), s.zOffsetUnits.get())
		} else {
			ctx.Disable(native.POLYGON_OFFSET_FILL)
		}
		s.zOffset.commit()
		s.zOffsetUnits.commit()
	}
	if s.frontFace.dirty() {
		ctx.FrontFace(native.FrontFace(s.frontFace.get()))
		s.frontFace.commit()
	}
}

func toggle(ctx native.Context, capability native.Enum, on bool) {
	if on {
		ctx.Enable(capability)
	} else {
		ctx.Disable(capability)
	}
}
