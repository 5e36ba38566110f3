// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/native"
)

// Stencil tracks the stencil test.
type Stencil struct {
	enabled   tracked[bool]
	mask      tracked[uint32]
	fn        tracked[gputypes.CompareFunction]
	ref       tracked[int]
	funcMask  tracked[uint32]
	opFail    tracked[gputypes.StencilOperation]
	opZFail   tracked[gputypes.StencilOperation]
	opPass    tracked[gputypes.StencilOperation]
	saved     StencilSnapshot
	haveSaved bool
}

// StencilSnapshot is the desired stencil configuration at one point in time.
type StencilSnapshot struct {
	Enabled     bool
	Mask        uint32
	Func        gputypes.CompareFunction
	Ref         int
	FuncMask    uint32
	OpFail      gputypes.StencilOperation
	OpDepthFail gputypes.StencilOperation
	OpPass      gputypes.StencilOperation
}

// DefaultStencil is the configuration a Stencil starts from and resets to.
var DefaultStencil = StencilSnapshot{
	Enabled:     false,
	Mask:        0xFF,
	Func:        gputypes.CompareFunctionAlways,
	Ref:         1,
	FuncMask:    0xFF,
	OpFail:      gputypes.StencilOperationKeep,
	OpDepthFail: gputypes.StencilOperationKeep,
	OpPass:      gputypes.StencilOperationReplace,
}

// NewStencil returns a tracker in the reset state.
func NewStencil() *Stencil {
	s := &Stencil{}
	s.Reset()
	return s
}

// Reset restores DefaultStencil as desired and forgets what was applied.
func (s *Stencil) Reset() {
	d := DefaultStencil
	s.enabled.forget(d.Enabled)
	s.mask.forget(d.Mask)
	s.fn.forget(d.Func)
	s.ref.forget(d.Ref)
	s.funcMask.forget(d.FuncMask)
	s.opFail.forget(d.OpFail)
	s.opZFail.forget(d.OpDepthFail)
	s.opPass.forget(d.OpPass)
}

// Snapshot returns the desired configuration.
func (s *Stencil) Snapshot() StencilSnapshot {
	return StencilSnapshot{
		Enabled:     s.enabled.get(),
		Mask:        s.mask.get(),
		Func:        s.fn.get(),
		Ref:         s.ref.get(),
		FuncMask:    s.funcMask.get(),
		OpFail:      s.opFail.get(),
		OpDepthFail: s.opZFail.get(),
		OpPass:      s.opPass.get(),
	}
}

// Set replaces the whole desired configuration.
func (s *Stencil) Set(c StencilSnapshot) {
	s.enabled.set(c.Enabled)
	s.mask.set(c.Mask)
	s.fn.set(c.Func)
	s.ref.set(c.Ref)
	s.funcMask.set(c.FuncMask)
	s.opFail.set(c.OpFail)
	s.opZFail.set(c.OpDepthFail)
	s.opPass.set(c.OpPass)
}

// Save remembers the desired configuration for a later Restore.
func (s *Stencil) Save() {
	s.saved = s.Snapshot()
	s.haveSaved = true
}

// Restore re-applies the configuration captured by Save. Without a prior
// Save it is a no-op.
func (s *Stencil) Restore() {
	if s.haveSaved {
		s.Set(s.saved)
	}
}

// SetEnabled enables or disables the stencil test.
func (s *Stencil) SetEnabled(v bool) { s.enabled.set(v) }

// Enabled reports whether the stencil test is wanted.
func (s *Stencil) Enabled() bool { return s.enabled.get() }

// SetMask sets the stencil write mask.
func (s *Stencil) SetMask(m uint32) { s.mask.set(m) }

// SetFunc sets the stencil comparison.
func (s *Stencil) SetFunc(f gputypes.CompareFunction) { s.fn.set(f) }

// SetFuncRef sets the reference value of the stencil comparison.
func (s *Stencil) SetFuncRef(ref int) { s.ref.set(ref) }

// SetFuncMask sets the mask ANDed with both sides of the comparison.
func (s *Stencil) SetFuncMask(m uint32) { s.funcMask.set(m) }

// SetOpStencilFail sets the operation run when the stencil test fails.
func (s *Stencil) SetOpStencilFail(op gputypes.StencilOperation) { s.opFail.set(op) }

// SetOpDepthFail sets the operation run when the stencil test passes and
// the depth test fails.
func (s *Stencil) SetOpDepthFail(op gputypes.StencilOperation) { s.opZFail.set(op) }

// SetOpPass sets the operation run when both tests pass.
func (s *Stencil) SetOpPass(op gputypes.StencilOperation) { s.opPass.set(op) }

// IsDirty reports whether Apply would emit any call.
func (s *Stencil) IsDirty() bool {
	return s.enabled.dirty() || s.mask.dirty() || s.fn.dirty() || s.ref.dirty() ||
		s.funcMask.dirty() || s.opFail.dirty() || s.opZFail.dirty() || s.opPass.dirty()
}

// Apply emits the calls for every changed field.
func (s *Stencil) Apply(ctx native.Context) {
	if !s.IsDirty() {
		return
	}
	if s.enabled.dirty() {
		toggle(ctx, native.STENCIL_TEST, s.enabled.get())
		s.enabled.commit()
	}
	if s.mask.dirty() {
		ctx.StencilMask(s.mask.get())
		s.mask.commit()
	}
	if s.fn.dirty() || s.ref.dirty() || s.funcMask.dirty() {
		ctx.StencilFunc(native.CompareFunc(s.fn.get()), s.ref.get(), s.funcMask.get())
		s.fn.commit()
		s.ref.commit()
		s.funcMask.commit()
	}
	if s.opFail.dirty() || s.opZFail.dirty() || s.opPass.dirty() {
		ctx.StencilOp(native.StencilOp(s.opFail.get()), native.StencilOp(s.opZFail.get()), native.StencilOp(s.opPass.get()))
		s.opFail.commit()
		s.opZFail.commit()
		s.opPass.commit()
	}
}
