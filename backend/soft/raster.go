// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/glengine/native"
)

type vertex struct{ x, y, z float32 }

// DrawArrays implements native.Context.
func (d *Device) DrawArrays(mode native.Enum, first, count int) {
	d.rec("DrawArrays", mode, first, count)
	d.draw(mode, sequence(first, count))
}

// DrawArraysInstanced implements native.Context. Instances share
// positions, so the primitive is rasterised once.
func (d *Device) DrawArraysInstanced(mode native.Enum, first, count, instances int) {
	d.rec("DrawArraysInstanced", mode, first, count, instances)
	if instances <= 0 {
		return
	}
	d.draw(mode, sequence(first, count))
}

// DrawElements implements native.Context.
func (d *Device) DrawElements(mode native.Enum, count int, typ native.Enum, offset int) {
	d.rec("DrawElements", mode, count, typ, offset)
	if idx, ok := d.indices(count, typ, offset); ok {
		d.draw(mode, idx)
	}
}

// DrawElementsInstanced implements native.Context.
func (d *Device) DrawElementsInstanced(mode native.Enum, count int, typ native.Enum, offset, instances int) {
	d.rec("DrawElementsInstanced", mode, count, typ, offset, instances)
	if instances <= 0 {
		return
	}
	if idx, ok := d.indices(count, typ, offset); ok {
		d.draw(mode, idx)
	}
}

func sequence(first, count int) []int {
	out := make([]int, max(count, 0))
	for i := range out {
		out[i] = first + i
	}
	return out
}

func (d *Device) indices(count int, typ native.Enum, offset int) ([]int, bool) {
	buf := d.buffers[d.vaos[d.st.vao].elements]
	if buf == nil {
		d.fail(native.INVALID_OPERATION)
		return nil, false
	}
	size := 2
	switch typ {
	case native.UNSIGNED_INT:
		size = 4
	case native.UNSIGNED_BYTE:
		size = 1
	}
	if offset < 0 || offset+count*size > len(buf.data) {
		d.fail(native.INVALID_OPERATION)
		return nil, false
	}
	out := make([]int, count)
	for i := range out {
		p := buf.data[offset+i*size:]
		switch size {
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(p))
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(p))
		default:
			out[i] = int(p[0])
		}
	}
	return out, true
}

func (d *Device) draw(mode native.Enum, idx []int) {
	if d.lost {
		return
	}
	prog := d.programs[d.st.program]
	if prog == nil || !prog.linked {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.drawCalls++
	if d.st.Enabled[native.RASTERIZER_DISCARD] {
		return
	}
	positions, ok := d.fetchPositions(idx)
	if !ok {
		return
	}
	color := [4]float32{1, 1, 1, 1}
	if l, ok := prog.uniforms["color"]; ok {
		if v := prog.values[l]; len(v) >= 4 {
			copy(color[:], v)
		}
	}
	n := len(positions)
	switch mode {
	case native.TRIANGLES:
		for i := 0; i+2 < n; i += 3 {
			d.triangle(positions[i], positions[i+1], positions[i+2], color)
		}
	case native.TRIANGLE_STRIP:
		for i := 0; i+2 < n; i++ {
			if i%2 == 0 {
				d.triangle(positions[i], positions[i+1], positions[i+2], color)
			} else {
				d.triangle(positions[i+1], positions[i], positions[i+2], color)
			}
		}
	case native.TRIANGLE_FAN:
		for i := 1; i+1 < n; i++ {
			d.triangle(positions[0], positions[i], positions[i+1], color)
		}
	}
}

// fetchPositions reads attribute 0 as float positions.
func (d *Device) fetchPositions(idx []int) ([]vertex, bool) {
	a := d.vaos[d.st.vao].attribs[0]
	if !a.enabled || a.typ != native.FLOAT || a.size < 2 {
		return nil, false
	}
	buf := d.buffers[a.buffer]
	if buf == nil {
		return nil, false
	}
	stride := a.stride
	if stride == 0 {
		stride = 4 * a.size
	}
	out := make([]vertex, len(idx))
	for i, v := range idx {
		off := a.offset + v*stride
		if off < 0 || off+4*a.size > len(buf.data) {
			d.fail(native.INVALID_OPERATION)
			return nil, false
		}
		f := func(c int) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(buf.data[off+4*c:]))
		}
		out[i] = vertex{x: f(0), y: f(1)}
		if a.size > 2 {
			out[i].z = f(2)
		}
	}
	return out, true
}

func (d *Device) triangle(a, b, c vertex, color [4]float32) {
	fb := d.framebuffers[d.st.drawFB]
	targets := d.colorTargets(fb)
	depth := d.depthPlane(fb)
	stencil := d.stencilPlane(fb)
	if len(targets) == 0 && depth == nil {
		return
	}

	vp := d.st.Viewport
	win := func(v vertex) vertex {
		return vertex{
			x: float32(vp[0]) + (v.x+1)/2*float32(vp[2]),
			y: float32(vp[1]) + (v.y+1)/2*float32(vp[3]),
			z: (v.z + 1) / 2,
		}
	}
	a, b, c = win(a), win(b), win(c)
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if d.st.Enabled[native.CULL_FACE] {
		front := (area > 0) == (d.st.FrontFace == native.CCW)
		switch d.st.CullFace {
		case native.FRONT_AND_BACK:
			return
		case native.FRONT:
			if front {
				return
			}
		default:
			if !front {
				return
			}
		}
	}

	x0 := max(vp[0], int(math.Floor(float64(min(a.x, b.x, c.x)))))
	y0 := max(vp[1], int(math.Floor(float64(min(a.y, b.y, c.y)))))
	x1 := min(vp[0]+vp[2], int(math.Ceil(float64(max(a.x, b.x, c.x)))))
	y1 := min(vp[1]+vp[3], int(math.Ceil(float64(max(a.y, b.y, c.y)))))
	if d.st.Enabled[native.SCISSOR_TEST] {
		sc := d.st.Scissor
		x0, y0 = max(x0, sc[0]), max(y0, sc[1])
		x1, y1 = min(x1, sc[0]+sc[2]), min(y1, sc[1]+sc[3])
	}

	for py := max(y0, 0); py < y1; py++ {
		for px := max(x0, 0); px < x1; px++ {
			cx, cy := float32(px)+0.5, float32(py)+0.5
			w0 := edge(b, c, cx, cy) / area
			w1 := edge(c, a, cx, cy) / area
			w2 := edge(a, b, cx, cy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*c.z
			d.fragment(px, py, z, color, targets, depth, stencil)
		}
	}
}

func edge(a, b vertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (d *Device) fragment(x, y int, z float32, color [4]float32, targets []*surface, depth, stencil *surface) {
	if stencil != nil && d.st.Enabled[native.STENCIL_TEST] {
		if x >= stencil.w || y >= stencil.h {
			return
		}
		i := y*stencil.w + x
		mask := uint8(d.st.StencilFuncMask)
		if !compare(d.st.StencilFunc, float32(uint8(d.st.StencilRef)&mask), float32(stencil.stencil[i]&mask)) {
			d.stencilUpdate(stencil, i, d.st.StencilFail)
			return
		}
		if !d.depthPass(depth, x, y, z) {
			d.stencilUpdate(stencil, i, d.st.StencilZFail)
			return
		}
		d.stencilUpdate(stencil, i, d.st.StencilZPass)
	} else if !d.depthPass(depth, x, y, z) {
		return
	}
	for _, s := range targets {
		if x >= s.w || y >= s.h {
			continue
		}
		i := 4 * (y*s.w + x)
		out := color
		if d.st.Enabled[native.BLEND] {
			var dst [4]float32
			for ch := range dst {
				dst[ch] = float32(s.color[i+ch]) / 255
			}
			out = d.blend(color, dst)
		}
		for ch := 0; ch < 4; ch++ {
			if d.st.ColorMask[ch] {
				s.color[i+ch] = unitToByte(out[ch])
			}
		}
	}
}

func (d *Device) depthPass(depth *surface, x, y int, z float32) bool {
	if depth == nil || !d.st.Enabled[native.DEPTH_TEST] {
		return true
	}
	if x >= depth.w || y >= depth.h {
		return false
	}
	i := y*depth.w + x
	if !compare(d.st.DepthFunc, z, depth.depth[i]) {
		return false
	}
	if d.st.DepthMask {
		depth.depth[i] = z
	}
	return true
}

func compare(fn native.Enum, ref, stored float32) bool {
	switch fn {
	case native.NEVER:
		return false
	case native.LESS:
		return ref < stored
	case native.EQUAL:
		return ref == stored
	case native.LEQUAL:
		return ref <= stored
	case native.GREATER:
		return ref > stored
	case native.NOTEQUAL:
		return ref != stored
	case native.GEQUAL:
		return ref >= stored
	}
	return true
}

func (d *Device) stencilUpdate(s *surface, i int, op native.Enum) {
	cur := s.stencil[i]
	next := cur
	switch op {
	case native.ZERO:
		next = 0
	case native.REPLACE:
		next = uint8(d.st.StencilRef)
	case native.INCR:
		if cur < 255 {
			next = cur + 1
		}
	case native.DECR:
		if cur > 0 {
			next = cur - 1
		}
	case native.INCR_WRAP:
		next = cur + 1
	case native.DECR_WRAP:
		next = cur - 1
	case native.INVERT:
		next = ^cur
	}
	m := uint8(d.st.StencilMask)
	s.stencil[i] = cur&^m | next&m
}

func (d *Device) blend(src, dst [4]float32) [4]float32 {
	k := d.st.BlendColor
	factor := func(f native.Enum, ch int) float32 {
		switch f {
		case native.ZERO:
			return 0
		case native.ONE:
			return 1
		case native.SRC_COLOR:
			return src[ch]
		case native.ONE_MINUS_SRC_COLOR:
			return 1 - src[ch]
		case native.SRC_ALPHA:
			return src[3]
		case native.ONE_MINUS_SRC_ALPHA:
			return 1 - src[3]
		case native.DST_COLOR:
			return dst[ch]
		case native.ONE_MINUS_DST_COLOR:
			return 1 - dst[ch]
		case native.DST_ALPHA:
			return dst[3]
		case native.ONE_MINUS_DST_ALPHA:
			return 1 - dst[3]
		case native.SRC_ALPHA_SATURATE:
			if ch == 3 {
				return 1
			}
			return min(src[3], 1-dst[3])
		case native.CONSTANT_COLOR:
			return k[ch]
		case native.ONE_MINUS_CONSTANT_COLOR:
			return 1 - k[ch]
		case native.CONSTANT_ALPHA:
			return k[3]
		case native.ONE_MINUS_CONSTANT_ALPHA:
			return 1 - k[3]
		}
		return 1
	}
	equation := func(eq native.Enum, s, t float32) float32 {
		switch eq {
		case native.FUNC_SUBTRACT:
			return s - t
		case native.FUNC_REVERSE_SUBTRACT:
			return t - s
		case native.MIN:
			return min(s, t)
		case native.MAX:
			return max(s, t)
		}
		return s + t
	}
	var out [4]float32
	for ch := 0; ch < 3; ch++ {
		if d.st.BlendEqRGB == native.MIN || d.st.BlendEqRGB == native.MAX {
			out[ch] = equation(d.st.BlendEqRGB, src[ch], dst[ch])
			continue
		}
		out[ch] = equation(d.st.BlendEqRGB, src[ch]*factor(d.st.BlendSrcRGB, ch), dst[ch]*factor(d.st.BlendDstRGB, ch))
	}
	if d.st.BlendEqAlpha == native.MIN || d.st.BlendEqAlpha == native.MAX {
		out[3] = equation(d.st.BlendEqAlpha, src[3], dst[3])
	} else {
		out[3] = equation(d.st.BlendEqAlpha, src[3]*factor(d.st.BlendSrcAlpha, 3), dst[3]*factor(d.st.BlendDstAlpha, 3))
	}
	return out
}
