// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/glengine/native"
)

// surface is one image plane. Rows are stored bottom-up like GL.
type surface struct {
	w, h    int
	color   []byte
	depth   []float32
	stencil []uint8
}

func newSurface(w, h int, internal native.Enum) *surface {
	s := &surface{w: w, h: h}
	switch internal {
	case native.DEPTH_COMPONENT16, native.DEPTH_COMPONENT24, native.DEPTH_COMPONENT32F, native.DEPTH_COMPONENT:
		s.depth = make([]float32, w*h)
	case native.DEPTH24_STENCIL8, native.DEPTH32F_STENCIL8, native.DEPTH_STENCIL:
		s.depth = make([]float32, w*h)
		s.stencil = make([]uint8, w*h)
	case native.STENCIL_INDEX8:
		s.stencil = make([]uint8, w*h)
	default:
		s.color = make([]byte, 4*w*h)
	}
	return s
}

type texture struct {
	target   native.Enum
	w, h, d  int
	internal native.Enum
	planes   map[int]*surface
	mipmaps  int
	params   map[native.Enum]float32
}

type buffer struct {
	data  []byte
	usage native.Enum
}

type attrib struct {
	enabled    bool
	buffer     native.Buffer
	size       int
	typ        native.Enum
	normalized bool
	stride     int
	offset     int
	divisor    int
}

type vertexArray struct {
	attribs  [32]attrib
	elements native.Buffer
}

func newVertexArray() *vertexArray { return &vertexArray{} }

// --- textures ---

// CreateTexture implements native.Context.
func (d *Device) CreateTexture() native.Texture {
	if d.lost {
		return 0
	}
	t := native.Texture(d.newID())
	d.textures[t] = &texture{planes: map[int]*surface{}, params: map[native.Enum]float32{}}
	d.rec("CreateTexture", t)
	return t
}

// DeleteTexture implements native.Context.
func (d *Device) DeleteTexture(t native.Texture) {
	d.rec("DeleteTexture", t)
	if t == 0 {
		return
	}
	_, live := d.textures[t]
	d.noteDelete("texture", live)
	delete(d.textures, t)
	for _, unit := range d.st.units {
		for target, bound := range unit {
			if bound == t {
				delete(unit, target)
			}
		}
	}
}

// ActiveTexture implements native.Context.
func (d *Device) ActiveTexture(unit native.Enum) {
	d.rec("ActiveTexture", unit)
	i := int(unit - native.TEXTURE0)
	if i < 0 || i >= len(d.st.units) {
		d.fail(native.INVALID_ENUM)
		return
	}
	d.st.activeUnit = i
}

// BindTexture implements native.Context.
func (d *Device) BindTexture(target native.Enum, t native.Texture) {
	d.rec("BindTexture", target, t)
	if t == 0 {
		delete(d.st.units[d.st.activeUnit], target)
		return
	}
	tex, ok := d.textures[t]
	if !ok {
		d.fail(native.INVALID_OPERATION)
		return
	}
	if tex.target == 0 {
		tex.target = target
	} else if tex.target != target {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.st.units[d.st.activeUnit][target] = t
}

// BoundTexture returns the texture bound to target on a unit.
func (d *Device) BoundTexture(unit int, target native.Enum) native.Texture {
	if unit < 0 || unit >= len(d.st.units) {
		return 0
	}
	return d.st.units[unit][target]
}

// ActiveUnit returns the active texture unit index.
func (d *Device) ActiveUnit() int { return d.st.activeUnit }

// LiveTextures returns the number of texture objects alive.
func (d *Device) LiveTextures() int { return len(d.textures) }

// TextureSize returns the level-0 size of t.
func (d *Device) TextureSize(t native.Texture) (w, h int, ok bool) {
	tex, ok := d.textures[t]
	if !ok {
		return 0, 0, false
	}
	return tex.w, tex.h, true
}

// TextureParam returns a texture parameter last set on t.
func (d *Device) TextureParam(t native.Texture, pname native.Enum) (float32, bool) {
	tex, ok := d.textures[t]
	if !ok {
		return 0, false
	}
	v, ok := tex.params[pname]
	return v, ok
}

// MipmapsGenerated reports how many times GenerateMipmap ran on t.
func (d *Device) MipmapsGenerated(t native.Texture) int {
	if tex, ok := d.textures[t]; ok {
		return tex.mipmaps
	}
	return 0
}

// TexturePixel returns the RGBA8 value of a texel on plane 0.
func (d *Device) TexturePixel(t native.Texture, x, y int) [4]byte {
	tex, ok := d.textures[t]
	if !ok {
		return [4]byte{}
	}
	s := tex.planes[0]
	if s == nil || s.color == nil || x < 0 || y < 0 || x >= s.w || y >= s.h {
		return [4]byte{}
	}
	i := 4 * (y*s.w + x)
	return [4]byte{s.color[i], s.color[i+1], s.color[i+2], s.color[i+3]}
}

func (d *Device) textureFor(target native.Enum) (*texture, int) {
	plane := 0
	bindTarget := target
	if target >= native.TEXTURE_CUBE_MAP_POSITIVE_X && target < native.TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		plane = int(target - native.TEXTURE_CUBE_MAP_POSITIVE_X)
		bindTarget = native.TEXTURE_CUBE_MAP
	}
	t := d.st.units[d.st.activeUnit][bindTarget]
	if t == 0 {
		return nil, 0
	}
	return d.textures[t], plane
}

// TexImage2D implements native.Context.
func (d *Device) TexImage2D(target native.Enum, level int, internalFormat native.Enum, width, height int, format, typ native.Enum, data []byte) {
	d.rec("TexImage2D", target, level, internalFormat, width, height, format, typ)
	tex, plane := d.textureFor(target)
	if tex == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	if width < 0 || height < 0 || width > d.limits[native.MAX_TEXTURE_SIZE] || height > d.limits[native.MAX_TEXTURE_SIZE] {
		d.fail(native.INVALID_VALUE)
		return
	}
	if level != 0 {
		return
	}
	tex.w, tex.h, tex.d = width, height, 1
	tex.internal = internalFormat
	s := newSurface(width, height, internalFormat)
	if data != nil && s.color != nil {
		d.unpack(s.color, width, height, format, typ, data)
	}
	tex.planes[plane] = s
}

// TexSubImage2D implements native.Context.
func (d *Device) TexSubImage2D(target native.Enum, level, x, y, width, height int, format, typ native.Enum, data []byte) {
	d.rec("TexSubImage2D", target, level, x, y, width, height, format, typ)
	tex, plane := d.textureFor(target)
	if tex == nil || level != 0 {
		return
	}
	s := tex.planes[plane]
	if s == nil || s.color == nil || x+width > s.w || y+height > s.h {
		d.fail(native.INVALID_VALUE)
		return
	}
	tmp := make([]byte, 4*width*height)
	d.unpack(tmp, width, height, format, typ, data)
	for row := 0; row < height; row++ {
		copy(s.color[4*((y+row)*s.w+x):], tmp[4*row*width:4*(row+1)*width])
	}
}

// TexImage3D implements native.Context.
func (d *Device) TexImage3D(target native.Enum, level int, internalFormat native.Enum, width, height, depth int, format, typ native.Enum, data []byte) {
	d.rec("TexImage3D", target, level, internalFormat, width, height, depth, format, typ)
	if d.opts.Version < 2 {
		d.fail(native.INVALID_OPERATION)
		return
	}
	tex, _ := d.textureFor(target)
	if tex == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	if level != 0 {
		return
	}
	tex.w, tex.h, tex.d = width, height, depth
	tex.internal = internalFormat
	bpp := bytesPerPixel(format, typ)
	for z := 0; z < depth; z++ {
		s := newSurface(width, height, internalFormat)
		if data != nil && s.color != nil {
			start := z * width * height * bpp
			if start < len(data) {
				d.unpack(s.color, width, height, format, typ, data[start:])
			}
		}
		tex.planes[z] = s
	}
}

// TexParameteri implements native.Context.
func (d *Device) TexParameteri(target, pname native.Enum, param int) {
	d.rec("TexParameteri", target, pname, param)
	if tex, _ := d.textureFor(target); tex != nil {
		tex.params[pname] = float32(param)
	}
}

// TexParameterf implements native.Context.
func (d *Device) TexParameterf(target, pname native.Enum, param float32) {
	d.rec("TexParameterf", target, pname, param)
	if tex, _ := d.textureFor(target); tex != nil {
		tex.params[pname] = param
	}
}

// GenerateMipmap implements native.Context.
func (d *Device) GenerateMipmap(target native.Enum) {
	d.rec("GenerateMipmap", target)
	if tex, _ := d.textureFor(target); tex != nil {
		tex.mipmaps++
	} else {
		d.fail(native.INVALID_OPERATION)
	}
}

func bytesPerPixel(format, typ native.Enum) int {
	channels := 4
	switch format {
	case native.RGB:
		channels = 3
	case native.RG, native.LUMINANCE_ALPHA:
		channels = 2
	case native.RED, native.LUMINANCE, native.ALPHA:
		channels = 1
	}
	switch typ {
	case native.FLOAT:
		return channels * 4
	case native.HALF_FLOAT:
		return channels * 2
	}
	return channels
}

// unpack converts client pixel data to RGBA8, honouring UNPACK_FLIP_Y.
func (d *Device) unpack(dst []byte, w, h int, format, typ native.Enum, src []byte) {
	bpp := bytesPerPixel(format, typ)
	flip := d.st.pixelStore[native.UNPACK_FLIP_Y_WEBGL] != 0
	for y := 0; y < h; y++ {
		srcRow := y
		if flip {
			srcRow = h - 1 - y
		}
		for x := 0; x < w; x++ {
			off := (srcRow*w + x) * bpp
			if off+bpp > len(src) {
				return
			}
			px := decodePixel(src[off:off+bpp], format, typ)
			copy(dst[4*(y*w+x):], px[:])
		}
	}
}

func decodePixel(p []byte, format, typ native.Enum) [4]byte {
	n := bytesPerPixel(format, typ)
	size := 1
	switch typ {
	case native.FLOAT:
		size = 4
	case native.HALF_FLOAT:
		size = 2
	}
	ch := make([]byte, n/size)
	for i := range ch {
		c := p[i*size : (i+1)*size]
		switch typ {
		case native.FLOAT:
			ch[i] = unitToByte(math.Float32frombits(binary.LittleEndian.Uint32(c)))
		case native.HALF_FLOAT:
			ch[i] = unitToByte(halfToFloat(binary.LittleEndian.Uint16(c)))
		default:
			ch[i] = c[0]
		}
	}
	switch format {
	case native.RGB:
		return [4]byte{ch[0], ch[1], ch[2], 255}
	case native.RG:
		return [4]byte{ch[0], ch[1], 0, 255}
	case native.RED:
		return [4]byte{ch[0], 0, 0, 255}
	case native.LUMINANCE:
		return [4]byte{ch[0], ch[0], ch[0], 255}
	case native.ALPHA:
		return [4]byte{0, 0, 0, ch[0]}
	case native.LUMINANCE_ALPHA:
		return [4]byte{ch[0], ch[0], ch[0], ch[1]}
	}
	return [4]byte{ch[0], ch[1], ch[2], ch[3]}
}

func unitToByte(v float32) byte {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)
	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		f := float32(frac) / 1024 / 16384
		if sign != 0 {
			return -f
		}
		return f
	case 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
}

// --- buffers ---

// CreateBuffer implements native.Context.
func (d *Device) CreateBuffer() native.Buffer {
	if d.lost {
		return 0
	}
	b := native.Buffer(d.newID())
	d.buffers[b] = &buffer{}
	d.rec("CreateBuffer", b)
	return b
}

// DeleteBuffer implements native.Context.
func (d *Device) DeleteBuffer(b native.Buffer) {
	d.rec("DeleteBuffer", b)
	if b == 0 {
		return
	}
	_, live := d.buffers[b]
	d.noteDelete("buffer", live)
	delete(d.buffers, b)
	if d.st.arrayBuffer == b {
		d.st.arrayBuffer = 0
	}
	if d.st.uniformBuffer == b {
		d.st.uniformBuffer = 0
	}
	if va := d.vaos[d.st.vao]; va != nil && va.elements == b {
		va.elements = 0
	}
}

// BindBuffer implements native.Context.
func (d *Device) BindBuffer(target native.Enum, b native.Buffer) {
	d.rec("BindBuffer", target, b)
	if b != 0 {
		if _, ok := d.buffers[b]; !ok {
			d.fail(native.INVALID_OPERATION)
			return
		}
	}
	switch target {
	case native.ARRAY_BUFFER:
		d.st.arrayBuffer = b
	case native.ELEMENT_ARRAY_BUFFER:
		d.vaos[d.st.vao].elements = b
	case native.UNIFORM_BUFFER:
		d.st.uniformBuffer = b
	}
}

// BindBufferBase implements native.Context.
func (d *Device) BindBufferBase(target native.Enum, index int, b native.Buffer) {
	d.rec("BindBufferBase", target, index, b)
	if target == native.UNIFORM_BUFFER {
		d.st.uniformBuffer = b
		d.st.indexed[index] = b
	}
}

func (d *Device) boundBuffer(target native.Enum) *buffer {
	var b native.Buffer
	switch target {
	case native.ARRAY_BUFFER:
		b = d.st.arrayBuffer
	case native.ELEMENT_ARRAY_BUFFER:
		b = d.vaos[d.st.vao].elements
	case native.UNIFORM_BUFFER:
		b = d.st.uniformBuffer
	}
	return d.buffers[b]
}

// BufferData implements native.Context.
func (d *Device) BufferData(target native.Enum, data []byte, usage native.Enum) {
	d.rec("BufferData", target, len(data), usage)
	buf := d.boundBuffer(target)
	if buf == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	buf.data = append([]byte(nil), data...)
	buf.usage = usage
}

// BufferDataSize implements native.Context.
func (d *Device) BufferDataSize(target native.Enum, size int, usage native.Enum) {
	d.rec("BufferDataSize", target, size, usage)
	buf := d.boundBuffer(target)
	if buf == nil {
		d.fail(native.INVALID_OPERATION)
		return
	}
	buf.data = make([]byte, size)
	buf.usage = usage
}

// BufferSubData implements native.Context.
func (d *Device) BufferSubData(target native.Enum, offset int, data []byte) {
	d.rec("BufferSubData", target, offset, len(data))
	buf := d.boundBuffer(target)
	if buf == nil || offset < 0 || offset+len(data) > len(buf.data) {
		d.fail(native.INVALID_VALUE)
		return
	}
	copy(buf.data[offset:], data)
}

// BufferContents returns a copy of a buffer's data store.
func (d *Device) BufferContents(b native.Buffer) ([]byte, bool) {
	buf, ok := d.buffers[b]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), buf.data...), true
}

// BufferUsage returns the usage hint a buffer was last allocated with.
func (d *Device) BufferUsage(b native.Buffer) native.Enum {
	if buf, ok := d.buffers[b]; ok {
		return buf.usage
	}
	return 0
}

// LiveBuffers returns the number of buffer objects alive.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// BoundBuffer returns the buffer bound to target. ELEMENT_ARRAY_BUFFER
// answers for the bound vertex array.
func (d *Device) BoundBuffer(target native.Enum) native.Buffer {
	switch target {
	case native.ARRAY_BUFFER:
		return d.st.arrayBuffer
	case native.ELEMENT_ARRAY_BUFFER:
		return d.vaos[d.st.vao].elements
	case native.UNIFORM_BUFFER:
		return d.st.uniformBuffer
	}
	return 0
}

// --- vertex arrays ---

// CreateVertexArray implements native.Context.
func (d *Device) CreateVertexArray() native.VertexArray {
	if d.lost {
		return 0
	}
	v := native.VertexArray(d.newID())
	d.vaos[v] = newVertexArray()
	d.rec("CreateVertexArray", v)
	return v
}

// DeleteVertexArray implements native.Context.
func (d *Device) DeleteVertexArray(v native.VertexArray) {
	d.rec("DeleteVertexArray", v)
	if v == 0 {
		return
	}
	_, live := d.vaos[v]
	d.noteDelete("vertexArray", live)
	delete(d.vaos, v)
	if d.st.vao == v {
		d.st.vao = 0
	}
}

// BindVertexArray implements native.Context.
func (d *Device) BindVertexArray(v native.VertexArray) {
	d.rec("BindVertexArray", v)
	if _, ok := d.vaos[v]; !ok {
		d.fail(native.INVALID_OPERATION)
		return
	}
	d.st.vao = v
}

// BoundVertexArray returns the bound vertex array.
func (d *Device) BoundVertexArray() native.VertexArray { return d.st.vao }

func (d *Device) attrib(index int) *attrib {
	if index < 0 || index >= len(vertexArray{}.attribs) || index >= d.limits[native.MAX_VERTEX_ATTRIBS] {
		d.fail(native.INVALID_VALUE)
		return nil
	}
	return &d.vaos[d.st.vao].attribs[index]
}

// EnableVertexAttribArray implements native.Context.
func (d *Device) EnableVertexAttribArray(index int) {
	d.rec("EnableVertexAttribArray", index)
	if a := d.attrib(index); a != nil {
		a.enabled = true
	}
}

// DisableVertexAttribArray implements native.Context.
func (d *Device) DisableVertexAttribArray(index int) {
	d.rec("DisableVertexAttribArray", index)
	if a := d.attrib(index); a != nil {
		a.enabled = false
	}
}

// VertexAttribPointer implements native.Context.
func (d *Device) VertexAttribPointer(index, size int, typ native.Enum, normalized bool, stride, offset int) {
	d.rec("VertexAttribPointer", index, size, typ, normalized, stride, offset)
	a := d.attrib(index)
	if a == nil {
		return
	}
	a.buffer = d.st.arrayBuffer
	a.size = size
	a.typ = typ
	a.normalized = normalized
	a.stride = stride
	a.offset = offset
}

// VertexAttribDivisor implements native.Context.
func (d *Device) VertexAttribDivisor(index, divisor int) {
	d.rec("VertexAttribDivisor", index, divisor)
	if a := d.attrib(index); a != nil {
		a.divisor = divisor
	}
}

// AttribState reports the enable flag, source buffer and divisor of a
// vertex attribute on the bound vertex array.
func (d *Device) AttribState(index int) (enabled bool, buf native.Buffer, divisor int) {
	a := d.vaos[d.st.vao].attribs[index]
	return a.enabled, a.buffer, a.divisor
}
