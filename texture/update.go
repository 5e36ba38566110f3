// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
)

func (m *Manager) live(t *Texture) error {
	if !m.IsLive(t) {
		return ErrStale
	}
	return nil
}

// UpdateRawTexture replaces the whole content of a raw 2D, 3D or array
// texture, possibly changing its format and type.
func (m *Manager) UpdateRawTexture(t *Texture, data []byte, format Format, typ Type, invertY bool) error {
	if err := m.live(t); err != nil {
		return err
	}
	if t.cube {
		return fmt.Errorf("%w: use UpdateRawCubeTexture for cube maps", ErrUnsupported)
	}
	format = format.orRGBA()
	if err := checkData(data, dataSize(t.width, t.height, t.depth, format, typ)); err != nil {
		return err
	}
	t.format, t.typ, t.invertY = format, typ, invertY
	t.raw = [][]byte{data}
	m.uploadRaw(t)
	return nil
}

// UpdateRawCubeTexture replaces the six faces of a raw cube map.
func (m *Manager) UpdateRawCubeTexture(t *Texture, faces [][]byte, format Format, typ Type, invertY bool) error {
	if err := m.live(t); err != nil {
		return err
	}
	if !t.cube {
		return fmt.Errorf("%w: not a cube map", ErrUnsupported)
	}
	if len(faces) != 6 {
		return fmt.Errorf("%w: %d cube faces", ErrSize, len(faces))
	}
	format = format.orRGBA()
	for _, f := range faces {
		if err := checkData(f, dataSize(t.width, t.height, 1, format, typ)); err != nil {
			return err
		}
	}
	t.format, t.typ, t.invertY = format, typ, invertY
	t.raw = faces
	m.uploadRaw(t)
	return nil
}

// UpdateTextureData writes a sub-rectangle of one level. face selects the
// cube face and is ignored for 2D textures. Rectangles outside level 0
// fail with ErrSize.
func (m *Manager) UpdateTextureData(t *Texture, data []byte, x, y, width, height, face, lod int) error {
	if err := m.live(t); err != nil {
		return err
	}
	lw, lh := max(t.width>>lod, 1), max(t.height>>lod, 1)
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > lw || y+height > lh || lod < 0 {
		return fmt.Errorf("%w: %dx%d at %d,%d outside %dx%d", ErrSize, width, height, x, y, lw, lh)
	}
	if err := checkData(data, dataSize(width, height, 1, t.format.orRGBA(), t.typ)); err != nil {
		return err
	}
	target, imageTarget := native.TEXTURE_2D, native.TEXTURE_2D
	if t.cube {
		if face < 0 || face > 5 {
			return fmt.Errorf("%w: cube face %d", ErrSize, face)
		}
		target = native.TEXTURE_CUBE_MAP
		imageTarget = native.TEXTURE_CUBE_MAP_POSITIVE_X + native.Enum(face)
	}
	m.bindTextureDirectly(target, t, true, false)
	m.unpackFlipY(t.invertY)
	m.ctx.TexSubImage2D(imageTarget, lod, x, y, width, height, t.format.orRGBA().native(), t.typ.native(), data)
	m.bindTextureDirectly(target, nil, false, false)
	return nil
}

// UpdateDynamicTexture uploads a new frame into a dynamic texture. Frames
// of another size are resampled to the texture size.
func (m *Manager) UpdateDynamicTexture(t *Texture, d *loader.Data, invertY, premultiplyAlpha bool, format Format) error {
	if err := m.live(t); err != nil {
		return err
	}
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: empty frame", ErrSize)
	}
	t.data = d
	t.invertY = invertY
	t.premul = premultiplyAlpha
	t.format = format.orRGBA()
	m.uploadDynamic(t)
	t.ready = true
	return nil
}

func (m *Manager) uploadDynamic(t *Texture) {
	d := loader.Rescale(t.data, t.width, t.height)
	m.bindTextureDirectly(native.TEXTURE_2D, t, true, false)
	m.unpackFlipY(t.invertY)
	if t.premul {
		m.ctx.PixelStorei(native.UNPACK_PREMULTIPLY_ALPHA_WEBGL, 1)
	}
	if t.format != FormatRGBA {
		m.unpackAlignment(t.width)
	}
	t.internalFormat = sizedFormat(m.caps.Version, t.format, TypeUnsignedByte)
	m.ctx.TexImage2D(native.TEXTURE_2D, 0, t.internalFormat, t.width, t.height,
		t.format.native(), native.UNSIGNED_BYTE, packPixels(d.Pixels, t.format))
	if t.mipmaps {
		m.ctx.GenerateMipmap(native.TEXTURE_2D)
	}
	m.bindTextureDirectly(native.TEXTURE_2D, nil, false, false)
	if t.premul {
		m.ctx.PixelStorei(native.UNPACK_PREMULTIPLY_ALPHA_WEBGL, 0)
	}
}

// UpdateTextureSamplingMode changes the filters of t. With
// generateMipmaps the mip chain is built first and kept from then on.
func (m *Manager) UpdateTextureSamplingMode(t *Texture, mode SamplingMode, generateMipmaps bool) error {
	if err := m.live(t); err != nil {
		return err
	}
	m.samplingMode(t, mode.orTrilinear(), generateMipmaps)
	return nil
}

func (m *Manager) samplingMode(t *Texture, mode SamplingMode, generateMipmaps bool) {
	target := t.Target()
	if generateMipmaps {
		t.mipmaps = true
	}
	mag, minFilter := mode.Filters(t.mipmaps)
	m.setParameteri(target, native.TEXTURE_MAG_FILTER, int(mag), t)
	m.setParameteri(target, native.TEXTURE_MIN_FILTER, int(minFilter), t)
	if generateMipmaps {
		m.ctx.GenerateMipmap(target)
	}
	m.bindTextureDirectly(target, nil, false, false)
	t.sampling = mode
	// The anisotropy clamp depends on the mode.
	t.anisotropy = 0
}

// UpdateTextureWrappingMode sets the wrap mode of each axis. WrapKeep
// leaves an axis alone; r only applies to 3D and array textures.
func (m *Manager) UpdateTextureWrappingMode(t *Texture, u, v, r Wrap) error {
	if err := m.live(t); err != nil {
		return err
	}
	target := t.Target()
	if u != WrapKeep {
		m.setParameteri(target, native.TEXTURE_WRAP_S, u.native(), t)
		t.wrapU.store(u)
	}
	if v != WrapKeep {
		m.setParameteri(target, native.TEXTURE_WRAP_T, v.native(), t)
		t.wrapV.store(v)
	}
	if r != WrapKeep && (t.is3D || t.is2DArray) {
		m.setParameteri(target, native.TEXTURE_WRAP_R, r.native(), t)
		t.wrapR.store(r)
	}
	m.bindTextureDirectly(target, nil, false, false)
	return nil
}

// UpdateTextureComparisonFunction enables depth comparison with fn, or
// disables it when fn is zero. Version 1 contexts have no comparison
// samplers: the call logs an error and changes nothing.
func (m *Manager) UpdateTextureComparisonFunction(t *Texture, fn gputypes.CompareFunction) error {
	if err := m.live(t); err != nil {
		return err
	}
	if m.caps.Version < 2 {
		glog.For("texture").Error("comparison functions need a version 2 context")
		return fmt.Errorf("%w: texture comparison on version %d", ErrUnsupported, m.caps.Version)
	}
	target := t.Target()
	m.bindTextureDirectly(target, t, true, false)
	m.setCompare(target, fn)
	m.bindTextureDirectly(target, nil, false, false)
	t.compare = fn
	return nil
}

// GenerateMipmaps rebuilds the mip chain of t from level 0.
func (m *Manager) GenerateMipmaps(t *Texture) error {
	if err := m.live(t); err != nil {
		return err
	}
	target := t.Target()
	m.bindTextureDirectly(target, t, true, false)
	m.ctx.GenerateMipmap(target)
	m.bindTextureDirectly(target, nil, false, false)
	return nil
}
