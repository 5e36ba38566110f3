// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/backend/soft"
	"github.com/gogpu/glengine/native"
)

func TestDepthCullElision(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewDepthCull()

	s.Apply(d)
	if len(d.Calls()) == 0 {
		t.Fatal("first Apply emitted nothing")
	}
	if s.IsDirty() {
		t.Error("tracker dirty after Apply")
	}

	d.ResetCalls()
	s.SetDepthFunc(gputypes.CompareFunctionLessEqual)
	s.SetCull(false)
	s.Apply(d)
	if n := len(d.Calls()); n != 0 {
		t.Errorf("re-setting applied values emitted %d calls: %v", n, d.Names())
	}

	s.SetDepthFunc(gputypes.CompareFunctionGreater)
	s.Apply(d)
	if n := len(d.Calls()); n != 1 || d.Count("DepthFunc") != 1 {
		t.Errorf("calls = %v, want one DepthFunc", d.Names())
	}
	if got := d.Fixed().DepthFunc; got != native.GREATER {
		t.Errorf("DepthFunc = %#x, want GREATER", got)
	}
}

func TestDepthCullResetReemits(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewDepthCull()
	s.Apply(d)
	first := len(d.Calls())

	d.ResetCalls()
	s.Reset()
	if !s.IsDirty() {
		t.Fatal("Reset left tracker clean")
	}
	s.Apply(d)
	if n := len(d.Calls()); n != first {
		t.Errorf("after Reset Apply emitted %d calls, want %d", n, first)
	}
	f := d.Fixed()
	if !d.IsEnabled(native.DEPTH_TEST) || !f.DepthMask || f.DepthFunc != native.LEQUAL {
		t.Errorf("defaults not applied: test=%v mask=%v func=%#x", d.IsEnabled(native.DEPTH_TEST), f.DepthMask, f.DepthFunc)
	}
	if d.IsEnabled(native.CULL_FACE) {
		t.Error("culling enabled by default")
	}
}

func TestDepthCullOrder(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewDepthCull()
	s.Apply(d)

	want := []string{"Disable", "CullFace", "DepthMask", "Enable", "DepthFunc", "Disable", "FrontFace"}
	got := d.Names()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestZOffset(t *testing.T) {
	tests := []struct {
		name          string
		factor, units float32
		enabled       bool
	}{
		{"factor", 1.5, 0, true},
		{"units only", 0, 2, true},
		{"none", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := soft.New(soft.Options{})
			s := NewDepthCull()
			s.SetZOffset(tt.factor)
			s.SetZOffsetUnits(tt.units)
			s.Apply(d)

			if got := d.IsEnabled(native.POLYGON_OFFSET_FILL); got != tt.enabled {
				t.Errorf("POLYGON_OFFSET_FILL = %v, want %v", got, tt.enabled)
			}
			if tt.enabled {
				if got := d.Fixed().PolygonOffset; got != [2]float32{tt.factor, tt.units} {
					t.Errorf("PolygonOffset = %v", got)
				}
			}
		})
	}
}

func TestStencilGroupsCalls(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewStencil()
	s.Apply(d)
	if d.Count("StencilFunc") != 1 || d.Count("StencilOp") != 1 || d.Count("StencilMask") != 1 {
		t.Fatalf("first apply calls = %v", d.Names())
	}

	d.ResetCalls()
	s.SetFuncRef(7)
	s.SetFuncMask(0x0F)
	s.Apply(d)
	if d.Count("StencilFunc") != 1 || len(d.Calls()) != 1 {
		t.Errorf("calls = %v, want a single StencilFunc", d.Names())
	}
	f := d.Fixed()
	if f.StencilFunc != native.ALWAYS || f.StencilRef != 7 || f.StencilFuncMask != 0x0F {
		t.Errorf("stencil func = %#x/%d/%#x", f.StencilFunc, f.StencilRef, f.StencilFuncMask)
	}
	if f.StencilZPass != native.REPLACE {
		t.Errorf("StencilZPass = %#x, want REPLACE", f.StencilZPass)
	}
}

func TestStencilSaveRestore(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewStencil()
	s.SetEnabled(true)
	s.SetFunc(gputypes.CompareFunctionEqual)
	s.Apply(d)
	s.Save()

	s.SetEnabled(false)
	s.SetFunc(gputypes.CompareFunctionNever)
	s.SetOpPass(gputypes.StencilOperationInvert)
	s.Apply(d)

	s.Restore()
	if got := s.Snapshot(); got.Func != gputypes.CompareFunctionEqual || !got.Enabled ||
		got.OpPass != gputypes.StencilOperationReplace {
		t.Errorf("restored snapshot = %+v", got)
	}
	s.Apply(d)
	if !d.IsEnabled(native.STENCIL_TEST) || d.Fixed().StencilFunc != native.EQUAL {
		t.Error("restored state not applied")
	}
}

func TestStencilRestoreWithoutSave(t *testing.T) {
	s := NewStencil()
	s.SetFuncRef(3)
	s.Restore()
	if s.Snapshot().Ref != 3 {
		t.Error("Restore without Save changed the configuration")
	}
}

func TestAlphaModes(t *testing.T) {
	tests := []struct {
		mode     AlphaMode
		src, dst native.Enum
		blend    bool
	}{
		{AlphaDisable, native.ONE, native.ZERO, false},
		{AlphaAdd, native.SRC_ALPHA, native.ONE, true},
		{AlphaCombine, native.SRC_ALPHA, native.ONE_MINUS_SRC_ALPHA, true},
		{AlphaSubtract, native.ZERO, native.ONE_MINUS_SRC_COLOR, true},
		{AlphaMultiply, native.DST_COLOR, native.ZERO, true},
		{AlphaPremultiplied, native.ONE, native.ONE_MINUS_SRC_ALPHA, true},
		{AlphaInterpolate, native.CONSTANT_COLOR, native.ONE_MINUS_CONSTANT_COLOR, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			d := soft.New(soft.Options{})
			a, dc := NewAlpha(), NewDepthCull()
			SetAlphaMode(a, dc, tt.mode, false)
			a.Apply(d)

			if got := d.IsEnabled(native.BLEND); got != tt.blend {
				t.Errorf("BLEND = %v, want %v", got, tt.blend)
			}
			f := d.Fixed()
			if tt.blend && (f.BlendSrcRGB != tt.src || f.BlendDstRGB != tt.dst) {
				t.Errorf("factors = %#x/%#x, want %#x/%#x", f.BlendSrcRGB, f.BlendDstRGB, tt.src, tt.dst)
			}
			if dc.DepthMask() != !tt.blend {
				t.Errorf("DepthMask = %v, want %v", dc.DepthMask(), !tt.blend)
			}
		})
	}
}

func TestAlphaModeKeepsDepthWrite(t *testing.T) {
	dc := NewDepthCull()
	SetAlphaMode(NewAlpha(), dc, AlphaCombine, true)
	if !dc.DepthMask() {
		t.Error("depth writes changed with keepDepthWrite set")
	}
}

func TestAlphaElision(t *testing.T) {
	d := soft.New(soft.Options{})
	a := NewAlpha()
	SetAlphaMode(a, nil, AlphaCombine, false)
	a.Apply(d)

	d.ResetCalls()
	SetAlphaMode(a, nil, AlphaCombine, false)
	a.Apply(d)
	if n := len(d.Calls()); n != 0 {
		t.Errorf("repeating a mode emitted %v", d.Names())
	}

	a.SetColorMask(true, true, true, false)
	a.SetConstants(gputypes.Color{R: 1, A: 0.5})
	a.Apply(d)
	if d.Count("ColorMask") != 1 || d.Count("BlendColor") != 1 || len(d.Calls()) != 2 {
		t.Errorf("calls = %v", d.Names())
	}
	if got := d.Fixed().BlendColor; got != [4]float32{1, 0, 0, 0.5} {
		t.Errorf("BlendColor = %v", got)
	}
	if !a.ColorWrite() {
		t.Error("ColorWrite false with three channels writable")
	}
}

func TestParseAlphaMode(t *testing.T) {
	for m := AlphaDisable; m <= AlphaScreenMode; m++ {
		got, err := ParseAlphaMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseAlphaMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseAlphaMode("bogus"); err == nil {
		t.Error("unknown name accepted")
	}
}

func TestDepthCullInvalidateKeepsDesired(t *testing.T) {
	d := soft.New(soft.Options{})
	s := NewDepthCull()
	s.SetCull(true)
	s.SetDepthFunc(gputypes.CompareFunctionGreater)
	s.Apply(d)

	d.ResetCalls()
	s.Invalidate()
	if !s.IsDirty() {
		t.Fatal("Invalidate left tracker clean")
	}
	s.Apply(d)
	if got := d.Count("DepthFunc"); got != 1 {
		t.Errorf("DepthFunc calls = %d, want 1", got)
	}
	if !d.IsEnabled(native.CULL_FACE) || d.Fixed().DepthFunc != native.GREATER {
		t.Error("Invalidate changed the desired state")
	}
}
