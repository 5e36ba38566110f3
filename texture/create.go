// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
)

// CreateOptions configures CreateTexture.
type CreateOptions struct {
	NoMipmap bool
	InvertY  bool
	Sampling SamplingMode
	// Format overrides the texel layout. FormatAuto picks RGB for JPEG
	// sources and RGBA otherwise.
	Format Format
	// Fallback is loaded once when the URL fails.
	Fallback string
	// Ext forces the loader selection.
	Ext string
	// Buffer holds already fetched bytes. Such textures are never shared.
	Buffer []byte
}

// DefaultCreateOptions returns options for a flipped trilinear texture
// with mipmaps.
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{InvertY: true, Sampling: Trilinear}
}

func textureKey(url string, mipmaps, invertY bool, s SamplingMode) string {
	return fmt.Sprintf("%s|%t|%t|%d", url, mipmaps, invertY, s)
}

// cached returns the live texture stored under key with an added owner.
func (m *Manager) cached(key string) (*Texture, *frame.Future[*Texture], bool) {
	t, ok := m.loaded[key]
	if !ok || !m.IsLive(t) {
		return nil, nil, false
	}
	if _, err := m.Retain(t); err != nil {
		return nil, nil, false
	}
	if t.loading != nil {
		return t, t.loading, true
	}
	return t, frame.Resolved[*Texture](nil, t, t.loadErr), true
}

// CreateTexture starts loading url through the loader service and returns
// the texture at once. Until the returned future resolves the texture is
// not ready and samplers fall back to a placeholder. A URL already loaded
// with the same mipmap, flip and sampling settings returns the existing
// texture with one more owner.
func (m *Manager) CreateTexture(ctx context.Context, url string, o CreateOptions) (*Texture, *frame.Future[*Texture], error) {
	if m.opts.Loader == nil {
		return nil, nil, ErrNoLoader
	}
	if url == "" && o.Buffer == nil {
		return nil, nil, fmt.Errorf("%w: empty url", ErrCreate)
	}
	sampling := o.Sampling.orTrilinear()
	var key string
	if o.Buffer == nil && !strings.HasPrefix(url, "data:") {
		key = textureKey(url, !o.NoMipmap, o.InvertY, sampling)
		if t, fut, ok := m.cached(key); ok {
			return t, fut, nil
		}
	}

	t := newTexture(SourceURL)
	t.url, t.key = url, key
	t.mipmaps = !o.NoMipmap
	t.invertY = o.InvertY
	t.sampling = sampling
	t.format = o.Format
	if t.format == FormatAuto {
		ext := o.Ext
		if ext == "" {
			ext = loader.Ext(url)
		}
		t.format = FormatRGBA
		if ext == ".jpg" || ext == ".jpeg" {
			t.format = FormatRGB
		}
	}
	err := m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		if t.data != nil {
			m.upload2D(t)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if key != "" {
		m.loaded[key] = t
	}

	fut := frame.NewFuture[*Texture](nil)
	t.loading = fut
	req := loader.Request{URL: url, Fallback: o.Fallback, Ext: o.Ext, Buffer: o.Buffer}
	m.opts.Loader.Load(ctx, req).Then(func(d *loader.Data, err error) {
		m.complete(t, fut, err, func() error { return m.prepareTexture(t, d) })
	})
	return t, fut, nil
}

// complete finishes an asynchronous load on the render thread.
func (m *Manager) complete(t *Texture, fut *frame.Future[*Texture], err error, prepare func() error) {
	t.loading = nil
	if !m.IsLive(t) {
		fut.Resolve(nil, ErrStale)
		return
	}
	if err == nil {
		err = prepare()
	}
	if err != nil {
		t.failed, t.loadErr = true, err
		glog.For("texture").Error("texture load failed", "url", t.url, "err", err)
		fut.Resolve(t, err)
		return
	}
	fut.Resolve(t, nil)
}

func (m *Manager) prepareTexture(t *Texture, d *loader.Data) error {
	if d == nil || d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrSize)
	}
	limit := m.caps.MaxTextureSize
	w, h := d.Width, d.Height
	if m.needPOT() {
		w, h = loader.ExponentOfTwo(w, limit), loader.ExponentOfTwo(h, limit)
	}
	t.baseWidth, t.baseHeight = d.Width, d.Height
	t.width, t.height = min(w, limit), min(h, limit)
	if d.Mipmaps || d.Compressed {
		t.mipmaps = false
	}
	t.data = d
	if !m.ctx.IsContextLost() {
		m.upload2D(t)
	}
	t.ready = true
	return nil
}

func (m *Manager) upload2D(t *Texture) {
	d := loader.Rescale(t.data, t.width, t.height)
	m.bindTextureDirectly(native.TEXTURE_2D, t, true, false)
	m.unpackFlipY(t.invertY)
	if t.format != FormatRGBA {
		m.unpackAlignment(t.width)
	}
	t.internalFormat = sizedFormat(m.caps.Version, t.format, TypeUnsignedByte)
	m.ctx.TexImage2D(native.TEXTURE_2D, 0, t.internalFormat, t.width, t.height,
		t.format.native(), native.UNSIGNED_BYTE, packPixels(d.Pixels, t.format))
	m.applyFilters(native.TEXTURE_2D, t)
	if t.mipmaps {
		m.ctx.GenerateMipmap(native.TEXTURE_2D)
	}
	m.bindTextureDirectly(native.TEXTURE_2D, nil, false, false)
}

// CubeOptions configures CreateCubeTexture.
type CubeOptions struct {
	NoMipmap bool
	Format   Format
	Ext      string
}

// CreateCubeTexture loads six faces in +X -X +Y -Y +Z -Z order into a cube
// map. Faces are never flipped and are resized to the first face.
func (m *Manager) CreateCubeTexture(ctx context.Context, urls []string, o CubeOptions) (*Texture, *frame.Future[*Texture], error) {
	if m.opts.Loader == nil {
		return nil, nil, ErrNoLoader
	}
	if len(urls) != 6 {
		return nil, nil, fmt.Errorf("%w: %w", ErrCreate, loader.ErrCubeFaces)
	}
	key := textureKey("cube:"+strings.Join(urls, ","), !o.NoMipmap, false, 0)
	if t, fut, ok := m.cached(key); ok {
		return t, fut, nil
	}

	t := newTexture(SourceCube)
	t.cube = true
	t.url, t.key = urls[0], key
	t.mipmaps = !o.NoMipmap
	t.format = o.Format.orRGBA()
	t.sampling = LinearLinear
	if t.mipmaps {
		t.sampling = Trilinear
	}
	err := m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		if t.faces != nil {
			m.uploadCube(t)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	m.loaded[key] = t

	fut := frame.NewFuture[*Texture](nil)
	t.loading = fut
	m.opts.Loader.LoadCube(ctx, urls, o.Ext).Then(func(faces []*loader.Data, err error) {
		m.complete(t, fut, err, func() error { return m.prepareCube(t, faces) })
	})
	return t, fut, nil
}

func (m *Manager) prepareCube(t *Texture, faces []*loader.Data) error {
	if len(faces) != 6 || faces[0] == nil || faces[0].Width <= 0 {
		return fmt.Errorf("%w: %w", ErrSize, loader.ErrCubeFaces)
	}
	size := faces[0].Width
	if m.needPOT() {
		size = loader.ExponentOfTwo(size, m.caps.MaxCubemapTextureSize)
	}
	t.baseWidth, t.baseHeight = faces[0].Width, faces[0].Height
	t.width, t.height = size, size
	t.faces = faces
	if !m.ctx.IsContextLost() {
		m.uploadCube(t)
	}
	t.ready = true
	return nil
}

func (m *Manager) uploadCube(t *Texture) {
	m.bindTextureDirectly(native.TEXTURE_CUBE_MAP, t, true, false)
	m.unpackFlipY(false)
	t.internalFormat = sizedFormat(m.caps.Version, t.format, TypeUnsignedByte)
	for i, f := range t.faces {
		d := loader.Rescale(f, t.width, t.height)
		m.ctx.TexImage2D(native.TEXTURE_CUBE_MAP_POSITIVE_X+native.Enum(i), 0, t.internalFormat,
			t.width, t.height, t.format.native(), native.UNSIGNED_BYTE, packPixels(d.Pixels, t.format))
	}
	if t.mipmaps {
		m.ctx.GenerateMipmap(native.TEXTURE_CUBE_MAP)
	}
	m.applyFilters(native.TEXTURE_CUBE_MAP, t)
	m.ctx.TexParameteri(native.TEXTURE_CUBE_MAP, native.TEXTURE_WRAP_S, int(native.CLAMP_TO_EDGE))
	m.ctx.TexParameteri(native.TEXTURE_CUBE_MAP, native.TEXTURE_WRAP_T, int(native.CLAMP_TO_EDGE))
	m.bindTextureDirectly(native.TEXTURE_CUBE_MAP, nil, false, false)
}

// RawOptions describes client provided texel data.
type RawOptions struct {
	Width  int
	Height int
	// Depth is the slice or layer count of 3D and array textures.
	Depth           int
	Format          Format
	Type            Type
	Sampling        SamplingMode
	GenerateMipmaps bool
	InvertY         bool
}

func (o RawOptions) validate(layered bool) error {
	if o.Width <= 0 || o.Height <= 0 || (layered && o.Depth <= 0) {
		return fmt.Errorf("%w: %dx%dx%d", ErrSize, o.Width, o.Height, o.Depth)
	}
	return nil
}

func (m *Manager) newRaw(src Source, o RawOptions) *Texture {
	t := newTexture(src)
	t.width, t.height, t.depth = o.Width, o.Height, max(o.Depth, 1)
	t.baseWidth, t.baseHeight = o.Width, o.Height
	t.format, t.typ = o.Format.orRGBA(), o.Type
	t.invertY = o.InvertY
	t.sampling, t.mipmaps = m.filterable(o.Type, o.Sampling.orTrilinear(), o.GenerateMipmaps)
	if m.caps.Version < 2 && !(isPOT(o.Width) && isPOT(o.Height)) {
		t.mipmaps = false
	}
	return t
}

// filterable forces nearest sampling without mipmaps for float types the
// context cannot filter linearly.
func (m *Manager) filterable(typ Type, s SamplingMode, mipmaps bool) (SamplingMode, bool) {
	if (typ == TypeFloat && !m.caps.TextureFloatLinearFiltering) ||
		(typ == TypeHalfFloat && !m.caps.TextureHalfFloatLinearFiltering) {
		if s != Nearest || mipmaps {
			glog.For("texture").Warn("float texture filtering is not supported, using nearest sampling without mipmaps")
		}
		return Nearest, false
	}
	return s, mipmaps
}

// CreateRawTexture uploads data as a 2D texture. A nil data allocates
// uninitialized storage. data is retained to rebuild the texture after a
// context loss.
func (m *Manager) CreateRawTexture(data []byte, o RawOptions) (*Texture, error) {
	if err := o.validate(false); err != nil {
		return nil, err
	}
	t := m.newRaw(SourceRaw, o)
	if err := checkData(data, dataSize(t.width, t.height, 1, t.format, t.typ)); err != nil {
		return nil, err
	}
	t.raw = [][]byte{data}
	return t, m.registerRaw(t)
}

// CreateRawTexture3D uploads data as a 3D texture. It needs a version 2
// context.
func (m *Manager) CreateRawTexture3D(data []byte, o RawOptions) (*Texture, error) {
	return m.createLayered(SourceRaw3D, data, o)
}

// CreateRawTexture2DArray uploads data as a 2D array texture. It needs a
// version 2 context.
func (m *Manager) CreateRawTexture2DArray(data []byte, o RawOptions) (*Texture, error) {
	return m.createLayered(SourceRaw2DArray, data, o)
}

func (m *Manager) createLayered(src Source, data []byte, o RawOptions) (*Texture, error) {
	if m.caps.Version < 2 {
		glog.For("texture").Error("layered textures need a version 2 context", "source", src)
		return nil, fmt.Errorf("%w: %s texture on version %d", ErrUnsupported, src, m.caps.Version)
	}
	if err := o.validate(true); err != nil {
		return nil, err
	}
	t := m.newRaw(src, o)
	t.is3D = src == SourceRaw3D
	t.is2DArray = !t.is3D
	if err := checkData(data, dataSize(t.width, t.height, t.depth, t.format, t.typ)); err != nil {
		return nil, err
	}
	t.raw = [][]byte{data}
	return t, m.registerRaw(t)
}

// CreateRawCubeTexture uploads six square faces of the given size. faces
// may be nil to allocate empty storage.
func (m *Manager) CreateRawCubeTexture(faces [][]byte, size int, o RawOptions) (*Texture, error) {
	o.Width, o.Height = size, size
	if err := o.validate(false); err != nil {
		return nil, err
	}
	if faces != nil && len(faces) != 6 {
		return nil, fmt.Errorf("%w: %d cube faces", ErrSize, len(faces))
	}
	t := m.newRaw(SourceCubeRaw, o)
	t.cube = true
	for _, f := range faces {
		if err := checkData(f, dataSize(size, size, 1, t.format, t.typ)); err != nil {
			return nil, err
		}
	}
	t.raw = faces
	return t, m.registerRaw(t)
}

func (m *Manager) registerRaw(t *Texture) error {
	return m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		m.uploadRaw(t)
		return nil
	})
}

func (m *Manager) uploadRaw(t *Texture) {
	target := t.Target()
	m.bindTextureDirectly(target, t, true, false)
	m.unpackFlipY(t.invertY)
	m.unpackAlignment(t.width)
	t.internalFormat = sizedFormat(m.caps.Version, t.format, t.typ)
	format, typ := t.format.native(), t.typ.native()
	var data []byte
	if len(t.raw) > 0 {
		data = t.raw[0]
	}
	switch {
	case t.cube:
		for face := range 6 {
			var fd []byte
			if face < len(t.raw) {
				fd = t.raw[face]
			}
			m.ctx.TexImage2D(native.TEXTURE_CUBE_MAP_POSITIVE_X+native.Enum(face), 0, t.internalFormat,
				t.width, t.height, format, typ, fd)
		}
		m.ctx.TexParameteri(target, native.TEXTURE_WRAP_S, int(native.CLAMP_TO_EDGE))
		m.ctx.TexParameteri(target, native.TEXTURE_WRAP_T, int(native.CLAMP_TO_EDGE))
	case t.is3D || t.is2DArray:
		m.ctx.TexImage3D(target, 0, t.internalFormat, t.width, t.height, t.depth, format, typ, data)
	default:
		m.ctx.TexImage2D(target, 0, t.internalFormat, t.width, t.height, format, typ, data)
	}
	m.applyFilters(target, t)
	if t.mipmaps && data != nil {
		m.ctx.GenerateMipmap(target)
	}
	m.bindTextureDirectly(target, nil, false, false)
	t.ready = true
}

// CreateDynamicTexture returns an empty texture filled later by
// UpdateDynamicTexture, such as a canvas or video frame. When mipmaps are
// wanted on a context that needs power-of-two sizes the size is rounded.
func (m *Manager) CreateDynamicTexture(width, height int, generateMipmaps bool, sampling SamplingMode) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, width, height)
	}
	t := newTexture(SourceDynamic)
	t.baseWidth, t.baseHeight = width, height
	if generateMipmaps && m.needPOT() {
		width = loader.ExponentOfTwo(width, m.caps.MaxTextureSize)
		height = loader.ExponentOfTwo(height, m.caps.MaxTextureSize)
	}
	t.width, t.height = width, height
	t.format = FormatRGBA
	t.mipmaps = generateMipmaps
	t.sampling = sampling.orTrilinear()
	err := m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		m.samplingMode(t, t.sampling, false)
		if t.data != nil {
			m.uploadDynamic(t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// InternalOptions describes render target storage.
type InternalOptions struct {
	Width  int
	Height int
	// Layers above zero allocate a 2D array with that many layers.
	Layers          int
	Cube            bool
	Format          Format
	Type            Type
	Sampling        SamplingMode
	GenerateMipmaps bool
	// Source defaults to SourceRenderTarget.
	Source Source
}

// CreateInternalTexture allocates empty storage for a render target.
// Float types fall back to nearest sampling when the context cannot filter
// them, and to unsigned bytes when it cannot store them.
func (m *Manager) CreateInternalTexture(o InternalOptions) (*Texture, error) {
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, o.Width, o.Height)
	}
	if o.Layers > 0 && m.caps.Version < 2 {
		glog.For("texture").Error("array render targets need a version 2 context")
		return nil, fmt.Errorf("%w: array render target on version %d", ErrUnsupported, m.caps.Version)
	}
	typ, sampling := o.Type, o.Sampling.orTrilinear()
	if (typ == TypeFloat && !m.caps.TextureFloatLinearFiltering) ||
		(typ == TypeHalfFloat && !m.caps.TextureHalfFloatLinearFiltering) {
		sampling = Nearest
	}
	if typ == TypeFloat && !m.caps.TextureFloat {
		typ = TypeUnsignedByte
		glog.For("texture").Warn("float textures are not supported, using unsigned byte storage")
	}
	src := o.Source
	if src == SourceUnknown {
		src = SourceRenderTarget
	}
	t := newTexture(src)
	t.width, t.height = o.Width, o.Height
	t.baseWidth, t.baseHeight = o.Width, o.Height
	t.depth = max(o.Layers, 1)
	t.cube = o.Cube
	t.is2DArray = o.Layers > 0
	t.format, t.typ = o.Format.orRGBA(), typ
	t.sampling = sampling
	t.mipmaps = o.GenerateMipmaps
	err := m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		m.allocateStorage(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Manager) allocateStorage(t *Texture) {
	target := t.Target()
	m.bindTextureDirectly(target, t, true, false)
	t.internalFormat = sizedFormat(m.caps.Version, t.format, t.typ)
	format, typ := t.format.native(), t.typ.native()
	switch {
	case t.is2DArray:
		m.ctx.TexImage3D(target, 0, t.internalFormat, t.width, t.height, t.depth, format, typ, nil)
	case t.cube:
		for face := range 6 {
			m.ctx.TexImage2D(native.TEXTURE_CUBE_MAP_POSITIVE_X+native.Enum(face), 0, t.internalFormat,
				t.width, t.height, format, typ, nil)
		}
	default:
		m.ctx.TexImage2D(target, 0, t.internalFormat, t.width, t.height, format, typ, nil)
	}
	m.applyFilters(target, t)
	m.clampEdges(target, t)
	if t.mipmaps {
		m.ctx.GenerateMipmap(target)
	}
	m.bindTextureDirectly(target, nil, false, false)
	t.ready = true
}

// DepthOptions describes a sampleable depth or depth-stencil texture.
type DepthOptions struct {
	Width             int
	Height            int
	Cube              bool
	GenerateStencil   bool
	BilinearFiltering bool
	// Comparison enables hardware depth comparison; zero samples raw depth.
	Comparison gputypes.CompareFunction
	// Bits is 16, 24 or 32 (float); zero means 24.
	Bits int
}

func depthFormats(version int, stencil bool, bits int) (internal, format, typ native.Enum) {
	if version < 2 {
		if stencil {
			return native.DEPTH_STENCIL, native.DEPTH_STENCIL, native.UNSIGNED_INT_24_8
		}
		return native.DEPTH_COMPONENT, native.DEPTH_COMPONENT, native.UNSIGNED_INT
	}
	switch {
	case stencil && bits == 32:
		return native.DEPTH32F_STENCIL8, native.DEPTH_STENCIL, native.FLOAT_32_UNSIGNED_INT_24_8_REV
	case stencil:
		return native.DEPTH24_STENCIL8, native.DEPTH_STENCIL, native.UNSIGNED_INT_24_8
	case bits == 16:
		return native.DEPTH_COMPONENT16, native.DEPTH_COMPONENT, native.UNSIGNED_SHORT
	case bits == 32:
		return native.DEPTH_COMPONENT32F, native.DEPTH_COMPONENT, native.FLOAT
	default:
		return native.DEPTH_COMPONENT24, native.DEPTH_COMPONENT, native.UNSIGNED_INT
	}
}

// CreateDepthStencilTexture allocates a depth texture that can be both
// attached to a framebuffer and sampled.
func (m *Manager) CreateDepthStencilTexture(o DepthOptions) (*Texture, error) {
	if !m.caps.DepthTexture {
		glog.For("texture").Error("depth textures are not supported by this context")
		return nil, fmt.Errorf("%w: depth texture", ErrUnsupported)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, o.Width, o.Height)
	}
	t := newTexture(SourceDepthStencil)
	t.width, t.height = o.Width, o.Height
	t.baseWidth, t.baseHeight = o.Width, o.Height
	t.cube = o.Cube
	t.stencil = o.GenerateStencil
	t.compare = o.Comparison
	t.sampling = Nearest
	if o.BilinearFiltering {
		t.sampling = Bilinear
	}
	internal, format, typ := depthFormats(m.caps.Version, o.GenerateStencil, o.Bits)
	err := m.register(t, func() error {
		if err := m.allocate(t); err != nil {
			return err
		}
		target := t.Target()
		m.bindTextureDirectly(target, t, true, false)
		t.internalFormat = internal
		if t.cube {
			for face := range 6 {
				m.ctx.TexImage2D(native.TEXTURE_CUBE_MAP_POSITIVE_X+native.Enum(face), 0, internal,
					t.width, t.height, format, typ, nil)
			}
		} else {
			m.ctx.TexImage2D(target, 0, internal, t.width, t.height, format, typ, nil)
		}
		m.applyFilters(target, t)
		m.clampEdges(target, t)
		if m.caps.Version >= 2 {
			m.setCompare(target, t.compare)
		}
		m.bindTextureDirectly(target, nil, false, false)
		t.ready = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// applyFilters sets the filters of the texture bound to target.
func (m *Manager) applyFilters(target native.Enum, t *Texture) {
	mag, minFilter := t.sampling.Filters(t.mipmaps)
	m.ctx.TexParameteri(target, native.TEXTURE_MAG_FILTER, int(mag))
	m.ctx.TexParameteri(target, native.TEXTURE_MIN_FILTER, int(minFilter))
}

func (m *Manager) clampEdges(target native.Enum, t *Texture) {
	m.ctx.TexParameteri(target, native.TEXTURE_WRAP_S, WrapClamp.native())
	m.ctx.TexParameteri(target, native.TEXTURE_WRAP_T, WrapClamp.native())
	if !t.cube {
		t.wrapU.store(WrapClamp)
		t.wrapV.store(WrapClamp)
	}
}

func (m *Manager) setCompare(target native.Enum, fn gputypes.CompareFunction) {
	if fn == 0 {
		m.ctx.TexParameteri(target, native.TEXTURE_COMPARE_FUNC, int(native.LEQUAL))
		m.ctx.TexParameteri(target, native.TEXTURE_COMPARE_MODE, int(native.NONE))
		return
	}
	m.ctx.TexParameteri(target, native.TEXTURE_COMPARE_FUNC, int(native.CompareFunc(fn)))
	m.ctx.TexParameteri(target, native.TEXTURE_COMPARE_MODE, int(native.COMPARE_REF_TO_TEXTURE))
}

// unpackAlignment switches to byte aligned rows when width is not a
// multiple of four. Uploads are always tightly packed.
func (m *Manager) unpackAlignment(width int) {
	if width%4 != 0 {
		m.ctx.PixelStorei(native.UNPACK_ALIGNMENT, 1)
	}
}

func isPOT(v int) bool { return v > 0 && v&(v-1) == 0 }

func dataSize(w, h, d int, f Format, t Type) int { return w * h * d * f.components() * t.size() }

func checkData(data []byte, want int) error {
	if data != nil && len(data) < want {
		return fmt.Errorf("%w: %d bytes, need %d", ErrSize, len(data), want)
	}
	return nil
}

// packPixels converts RGBA8 pixels to the layout of f.
func packPixels(rgba []byte, f Format) []byte {
	if f == FormatRGBA || f == FormatAuto {
		return rgba
	}
	out := make([]byte, 0, len(rgba)/4*f.components())
	for i := 0; i+3 < len(rgba); i += 4 {
		switch f {
		case FormatRGB:
			out = append(out, rgba[i], rgba[i+1], rgba[i+2])
		case FormatRG:
			out = append(out, rgba[i], rgba[i+1])
		case FormatRed, FormatLuminance:
			out = append(out, rgba[i])
		case FormatAlpha:
			out = append(out, rgba[i+3])
		case FormatLuminanceAlpha:
			out = append(out, rgba[i], rgba[i+3])
		}
	}
	return out
}
