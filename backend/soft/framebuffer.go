// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/gogpu/glengine/native"
)

type attachment struct {
	texture      native.Texture
	renderbuffer native.Renderbuffer
	level        int
	plane        int
}

type framebuffer struct {
	attachments map[native.Enum]attachment
	drawBuffers []native.Enum
	readBuffer  native.Enum

	// The default framebuffer owns its planes.
	color *surface
	depth *surface
}

type renderbuffer struct {
	internal native.Enum
	samples  int
	plane    *surface
}

func newDefaultFramebuffer(w, h int) *framebuffer {
	return &framebuffer{
		attachments: map[native.Enum]attachment{},
		drawBuffers: []native.Enum{native.BACK},
		readBuffer:  native.BACK,
		color:       newSurface(w, h, native.RGBA8),
		depth:       newSurface(w, h, native.DEPTH24_STENCIL8),
	}
}

func (d *Device) plane(fb *framebuffer, point native.Enum) *surface {
	if fb.color != nil {
		switch point {
		case native.BACK, native.COLOR_ATTACHMENT0:
			return fb.color
		case native.DEPTH_ATTACHMENT, native.STENCIL_ATTACHMENT, native.DEPTH_STENCIL_ATTACHMENT:
			return fb.depth
		}
		return nil
	}
	a, ok := fb.attachments[point]
	if !ok && (point == native.DEPTH_ATTACHMENT || point == native.STENCIL_ATTACHMENT) {
		a, ok = fb.attachments[native.DEPTH_STENCIL_ATTACHMENT]
	}
	if !ok {
		return nil
	}
	if a.renderbuffer != 0 {
		if rb := d.renderbuffers[a.renderbuffer]; rb != nil {
			return rb.plane
		}
		return nil
	}
	if tex := d.textures[a.texture]; tex != nil {
		return tex.planes[a.plane]
	}
	return nil
}

func (d *Device) colorTargets(fb *framebuffer) []*surface {
	var out []*surface
	for _, b := range fb.drawBuffers {
		if b == native.NONE {
			continue
		}
		if s := d.plane(fb, b); s != nil && s.color != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *Device) depthPlane(fb *framebuffer) *surface {
	if s := d.plane(fb, native.DEPTH_ATTACHMENT); s != nil && s.depth != nil {
		return s
	}
	return nil
}

func (d *Device) stencilPlane(fb *framebuffer) *surface {
	if s := d.plane(fb, native.STENCIL_ATTACHMENT); s != nil && s.stencil != nil {
		return s
	}
	return nil
}

func (d *Device) boundFramebuffer(target native.Enum) *framebuffer {
	if target == native.READ_FRAMEBUFFER {
		return d.framebuffers[d.st.readFB]
	}
	return d.framebuffers[d.st.drawFB]
}

// CreateFramebuffer implements native.Context.
func (d *Device) CreateFramebuffer() native.Framebuffer {
	if d.lost {
		return 0
	}
	fb := native.Framebuffer(d.newID())
	d.framebuffers[fb] = &framebuffer{
		attachments: map[native.Enum]attachment{},
		drawBuffers: []native.Enum{native.COLOR_ATTACHMENT0},
		readBuffer:  native.COLOR_ATTACHMENT0,
	}
	d.rec("CreateFramebuffer", fb)
	return fb
}

// DeleteFramebuffer implements native.Context.
func (d *Device) DeleteFramebuffer(fb native.Framebuffer) {
	d.rec("DeleteFramebuffer", fb)
	if fb == 0 {
		return
	}
	_, live := d.framebuffers[fb]
	d.noteDelete("framebuffer", live)
	delete(d.framebuffers, fb)
	if d.st.drawFB == fb {
		d.st.drawFB = 0
	}
	if d.st.readFB == fb {
		d.st.readFB = 0
	}
}

// BindFramebuffer implements native.Context.
func (d *Device) BindFramebuffer(target native.Enum, fb native.Framebuffer) {
	d.rec("BindFramebuffer", target, fb)
	if _, ok := d.framebuffers[fb]; !ok {
		d.fail(native.INVALID_OPERATION)
		return
	}
	switch target {
	case native.FRAMEBUFFER:
		d.st.drawFB, d.st.readFB = fb, fb
	case native.DRAW_FRAMEBUFFER:
		d.st.drawFB = fb
	case native.READ_FRAMEBUFFER:
		d.st.readFB = fb
	default:
		d.fail(native.INVALID_ENUM)
	}
}

// BoundFramebuffer returns the framebuffer bound to DRAW_FRAMEBUFFER or
// READ_FRAMEBUFFER. FRAMEBUFFER answers for the draw binding.
func (d *Device) BoundFramebuffer(target native.Enum) native.Framebuffer {
	if target == native.READ_FRAMEBUFFER {
		return d.st.readFB
	}
	return d.st.drawFB
}

// LiveFramebuffers returns the number of framebuffer objects alive.
func (d *Device) LiveFramebuffers() int { return len(d.framebuffers) - 1 }

// DrawBuffersOf returns the draw buffer list of fb.
func (d *Device) DrawBuffersOf(fb native.Framebuffer) []native.Enum {
	if f := d.framebuffers[fb]; f != nil {
		return slices.Clone(f.drawBuffers)
	}
	return nil
}

// Attachment returns the texture attached at point of fb.
func (d *Device) Attachment(fb native.Framebuffer, point native.Enum) (native.Texture, bool) {
	f := d.framebuffers[fb]
	if f == nil {
		return 0, false
	}
	a, ok := f.attachments[point]
	return a.texture, ok && a.texture != 0
}

func (d *Device) attach(target, point native.Enum, a attachment) {
	fb := d.boundFramebuffer(target)
	if fb == nil || fb.color != nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	if a.texture == 0 && a.renderbuffer == 0 {
		delete(fb.attachments, point)
		return
	}
	fb.attachments[point] = a
}

// FramebufferTexture2D implements native.Context.
func (d *Device) FramebufferTexture2D(target, point, texTarget native.Enum, t native.Texture, level int) {
	d.rec("FramebufferTexture2D", target, point, texTarget, t, level)
	plane := 0
	if texTarget >= native.TEXTURE_CUBE_MAP_POSITIVE_X && texTarget < native.TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		plane = int(texTarget - native.TEXTURE_CUBE_MAP_POSITIVE_X)
	}
	if t != 0 && d.textures[t] == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.attach(target, point, attachment{texture: t, level: level, plane: plane})
}

// FramebufferTextureLayer implements native.Context.
func (d *Device) FramebufferTextureLayer(target, point native.Enum, t native.Texture, level, layer int) {
	d.rec("FramebufferTextureLayer", target, point, t, level, layer)
	if t != 0 && d.textures[t] == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.attach(target, point, attachment{texture: t, level: level, plane: layer})
}

// FramebufferRenderbuffer implements native.Context.
func (d *Device) FramebufferRenderbuffer(target, point, _ native.Enum, rb native.Renderbuffer) {
	d.rec("FramebufferRenderbuffer", target, point, rb)
	if rb != 0 && d.renderbuffers[rb] == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.attach(target, point, attachment{renderbuffer: rb})
}

// CheckFramebufferStatus implements native.Context.
func (d *Device) CheckFramebufferStatus(target native.Enum) native.Enum {
	d.rec("CheckFramebufferStatus", target)
	fb := d.boundFramebuffer(target)
	if fb == nil {
		return FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	if fb.color != nil {
		return native.FRAMEBUFFER_COMPLETE
	}
	w, h := -1, -1
	for point := range fb.attachments {
		s := d.plane(fb, point)
		if s == nil {
			return FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		if w >= 0 && (s.w != w || s.h != h) {
			return FRAMEBUFFER_INCOMPLETE_ATTACHMENT
		}
		w, h = s.w, s.h
	}
	if w < 0 {
		return FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	return native.FRAMEBUFFER_COMPLETE
}

// CreateRenderbuffer implements native.Context.
func (d *Device) CreateRenderbuffer() native.Renderbuffer {
	if d.lost {
		return 0
	}
	rb := native.Renderbuffer(d.newID())
	d.renderbuffers[rb] = &renderbuffer{}
	d.rec("CreateRenderbuffer", rb)
	return rb
}

// DeleteRenderbuffer implements native.Context.
func (d *Device) DeleteRenderbuffer(rb native.Renderbuffer) {
	d.rec("DeleteRenderbuffer", rb)
	if rb == 0 {
		return
	}
	_, live := d.renderbuffers[rb]
	d.noteDelete("renderbuffer", live)
	delete(d.renderbuffers, rb)
	if d.st.renderbuffer == rb {
		d.st.renderbuffer = 0
	}
}

// BindRenderbuffer implements native.Context.
func (d *Device) BindRenderbuffer(_ native.Enum, rb native.Renderbuffer) {
	d.rec("BindRenderbuffer", rb)
	if rb != 0 && d.renderbuffers[rb] == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.st.renderbuffer = rb
}

// RenderbufferStorage implements native.Context.
func (d *Device) RenderbufferStorage(_, internalFormat native.Enum, width, height int) {
	d.rec("RenderbufferStorage", internalFormat, width, height)
	d.renderbufferStorage(0, internalFormat, width, height)
}

// RenderbufferStorageMultisample implements native.Context. Multisampled
// storage keeps a single resolved sample per pixel.
func (d *Device) RenderbufferStorageMultisample(_ native.Enum, samples int, internalFormat native.Enum, width, height int) {
	d.rec("RenderbufferStorageMultisample", samples, internalFormat, width, height)
	d.renderbufferStorage(samples, internalFormat, width, height)
}

func (d *Device) renderbufferStorage(samples int, internalFormat native.Enum, width, height int) {
	rb := d.renderbuffers[d.st.renderbuffer]
	if rb == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	if samples > d.limits[native.MAX_SAMPLES] || width > d.limits[native.MAX_RENDERBUFFER_SIZE] || height > d.limits[native.MAX_RENDERBUFFER_SIZE] {
		d.fail(native.INVALID_VALUE)
		return
	}
	rb.internal = internalFormat
	rb.samples = samples
	rb.plane = newSurface(width, height, internalFormat)
}

// RenderbufferSamples returns the sample count rb was allocated with.
func (d *Device) RenderbufferSamples(rb native.Renderbuffer) int {
	if r := d.renderbuffers[rb]; r != nil {
		return r.samples
	}
	return 0
}

// LiveRenderbuffers returns the number of renderbuffer objects alive.
func (d *Device) LiveRenderbuffers() int { return len(d.renderbuffers) }

// DrawBuffers implements native.Context.
func (d *Device) DrawBuffers(bufs []native.Enum) {
	d.rec("DrawBuffers", slices.Clone(bufs))
	fb := d.framebuffers[d.st.drawFB]
	if len(bufs) > d.limits[native.MAX_DRAW_BUFFERS] {
		d.fail(native.INVALID_VALUE)
		return
	}
	for i, b := range bufs {
		if b == native.NONE {
			continue
		}
		if fb.color != nil {
			if b != native.BACK || i != 0 {
				d.fail(native.INVALID_OPERATION)
				return
			}
		} else if b != native.COLOR_ATTACHMENT0+native.Enum(i) {
			d.fail(native.INVALID_OPERATION)
			return
		}
	}
	fb.drawBuffers = slices.Clone(bufs)
}

// ReadBuffer implements native.Context.
func (d *Device) ReadBuffer(src native.Enum) {
	d.rec("ReadBuffer", src)
	d.framebuffers[d.st.readFB].readBuffer = src
}

// BlitFramebuffer implements native.Context. Sampling is always nearest.
func (d *Device) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, _ native.Enum) {
	d.rec("BlitFramebuffer", srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask)
	read := d.framebuffers[d.st.readFB]
	draw := d.framebuffers[d.st.drawFB]
	sw, sh := srcX1-srcX0, srcY1-srcY0
	dw, dh := dstX1-dstX0, dstY1-dstY0
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return
	}
	blit := func(src, dst *surface, copyPixel func(si, di int)) {
		for y := 0; y < dh; y++ {
			sy := srcY0 + y*sh/dh
			ty := dstY0 + y
			if sy < 0 || sy >= src.h || ty < 0 || ty >= dst.h {
				continue
			}
			for x := 0; x < dw; x++ {
				sx := srcX0 + x*sw/dw
				tx := dstX0 + x
				if sx < 0 || sx >= src.w || tx < 0 || tx >= dst.w {
					continue
				}
				copyPixel(sy*src.w+sx, ty*dst.w+tx)
			}
		}
	}
	if mask&native.COLOR_BUFFER_BIT != 0 {
		src := d.plane(read, read.readBuffer)
		if src == nil || src.color == nil {
			d.fail(native.INVALID_OPERATION)
			return
		}
		for _, dst := range d.colorTargets(draw) {
			blit(src, dst, func(si, di int) {
				copy(dst.color[4*di:4*di+4], src.color[4*si:4*si+4])
			})
		}
	}
	if mask&native.DEPTH_BUFFER_BIT != 0 {
		src, dst := d.depthPlane(read), d.depthPlane(draw)
		if src != nil && dst != nil {
			blit(src, dst, func(si, di int) { dst.depth[di] = src.depth[si] })
		}
	}
	if mask&native.STENCIL_BUFFER_BIT != 0 {
		src, dst := d.stencilPlane(read), d.stencilPlane(draw)
		if src != nil && dst != nil {
			blit(src, dst, func(si, di int) { dst.stencil[di] = src.stencil[si] })
		}
	}
}

// ReadPixels implements native.Context. RGBA with UNSIGNED_BYTE or FLOAT
// is supported; FLOAT writes little-endian float32 values.
func (d *Device) ReadPixels(x, y, width, height int, format, typ native.Enum, dst []byte) {
	d.rec("ReadPixels", x, y, width, height, format, typ)
	fb := d.framebuffers[d.st.readFB]
	src := d.plane(fb, fb.readBuffer)
	if src == nil || src.color == nil || format != native.RGBA {
		d.fail(native.INVALID_OPERATION)
		return
	}
	size := 1
	if typ == native.FLOAT {
		size = 4
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sx, sy := x+col, y+row
			var px [4]byte
			if sx >= 0 && sy >= 0 && sx < src.w && sy < src.h {
				copy(px[:], src.color[4*(sy*src.w+sx):])
			}
			off := 4 * size * (row*width + col)
			if off+4*size > len(dst) {
				return
			}
			for c := 0; c < 4; c++ {
				if size == 4 {
					binary.LittleEndian.PutUint32(dst[off+4*c:], math.Float32bits(float32(px[c])/255))
				} else {
					dst[off+c] = px[c]
				}
			}
		}
	}
}

// Pixel returns the colour of the default framebuffer at (x, y), with
// y = 0 on the bottom row.
func (d *Device) Pixel(x, y int) [4]byte {
	s := d.framebuffers[0].color
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return [4]byte{}
	}
	i := 4 * (y*s.w + x)
	return [4]byte{s.color[i], s.color[i+1], s.color[i+2], s.color[i+3]}
}

// Clear implements native.Context.
func (d *Device) Clear(mask native.Enum) {
	d.rec("Clear", mask)
	fb := d.framebuffers[d.st.drawFB]
	x0, y0, x1, y1 := 0, 0, math.MaxInt32, math.MaxInt32
	if d.st.Enabled[native.SCISSOR_TEST] {
		sc := d.st.Scissor
		x0, y0, x1, y1 = sc[0], sc[1], sc[0]+sc[2], sc[1]+sc[3]
	}
	each := func(s *surface, fn func(i int)) {
		for y := max(y0, 0); y < min(y1, s.h); y++ {
			for x := max(x0, 0); x < min(x1, s.w); x++ {
				fn(y*s.w + x)
			}
		}
	}
	if mask&native.COLOR_BUFFER_BIT != 0 {
		var c [4]byte
		for i, v := range d.st.ClearColor {
			c[i] = unitToByte(v)
		}
		for _, s := range d.colorTargets(fb) {
			each(s, func(i int) {
				for ch := 0; ch < 4; ch++ {
					if d.st.ColorMask[ch] {
						s.color[4*i+ch] = c[ch]
					}
				}
			})
		}
	}
	if mask&native.DEPTH_BUFFER_BIT != 0 && d.st.DepthMask {
		if s := d.depthPlane(fb); s != nil {
			each(s, func(i int) { s.depth[i] = d.st.ClearDepth })
		}
	}
	if mask&native.STENCIL_BUFFER_BIT != 0 {
		if s := d.stencilPlane(fb); s != nil {
			m := uint8(d.st.StencilMask)
			v := uint8(d.st.ClearStencil)
			each(s, func(i int) { s.stencil[i] = s.stencil[i]&^m | v&m })
		}
	}
}
