// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture owns textures and the texture-unit binding cache.
//
// Textures live in a generation-checked arena and are shared through
// Retain and Release. Binding is done through a Manager that remembers
// which texture occupies every unit. A texture keeps the unit it was last
// bound to, so a material that samples it again from any channel is
// redirected to that unit and only its sampler uniform is rewritten. When
// no unit is free the least recently used texture is evicted, but never
// one already bound for the draw call being prepared.
package texture

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/internal/lru"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
)

// Errors returned by the Manager.
var (
	// ErrCreate is returned when the context refuses to allocate a
	// texture, typically because it is lost.
	ErrCreate = errors.New("texture: creation failed")

	// ErrStale is returned for released or foreign textures.
	ErrStale = errors.New("texture: stale texture")

	// ErrChannelsExhausted is returned when every texture unit holds a
	// texture bound for the current draw call.
	ErrChannelsExhausted = errors.New("texture: all texture units are in use by the current draw")

	// ErrChannel is returned for channels outside the texture units.
	ErrChannel = errors.New("texture: channel out of range")

	// ErrUnsupported is returned for features the context lacks.
	ErrUnsupported = errors.New("texture: unsupported on this context")

	// ErrSize is returned for invalid dimensions or short pixel data.
	ErrSize = errors.New("texture: invalid size")

	// ErrNoLoader is returned by URL based creation when the manager has
	// no loader service.
	ErrNoLoader = errors.New("texture: no loader service")
)

// Source records how a texture was created.
type Source uint8

// Texture sources.
const (
	SourceUnknown Source = iota
	SourceURL
	SourceTemp
	SourceRaw
	SourceDynamic
	SourceRenderTarget
	SourceMultiRenderTarget
	SourceCube
	SourceCubeRaw
	SourceRaw3D
	SourceRaw2DArray
	SourceDepthStencil
	SourceMultisampled
	SourcePlaceholder
)

func (s Source) String() string {
	switch s {
	case SourceURL:
		return "url"
	case SourceTemp:
		return "temp"
	case SourceRaw:
		return "raw"
	case SourceDynamic:
		return "dynamic"
	case SourceRenderTarget:
		return "render target"
	case SourceMultiRenderTarget:
		return "multi render target"
	case SourceCube:
		return "cube"
	case SourceCubeRaw:
		return "raw cube"
	case SourceRaw3D:
		return "raw 3D"
	case SourceRaw2DArray:
		return "raw 2D array"
	case SourceDepthStencil:
		return "depth stencil"
	case SourceMultisampled:
		return "multisampled"
	case SourcePlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Format is the channel layout of texel data.
type Format uint8

// Texel formats. FormatAuto lets the creating call choose, which is RGB
// for JPEG sources and RGBA everywhere else.
const (
	FormatAuto Format = iota
	FormatRGBA
	FormatRGB
	FormatRG
	FormatRed
	FormatAlpha
	FormatLuminance
	FormatLuminanceAlpha
)

func (f Format) orRGBA() Format {
	if f == FormatAuto {
		return FormatRGBA
	}
	return f
}

func (f Format) components() int {
	switch f {
	case FormatRGB:
		return 3
	case FormatRG, FormatLuminanceAlpha:
		return 2
	case FormatRed, FormatAlpha, FormatLuminance:
		return 1
	default:
		return 4
	}
}

// native returns the unsized GL format.
func (f Format) native() native.Enum {
	switch f {
	case FormatRGB:
		return native.RGB
	case FormatRG:
		return native.RG
	case FormatRed:
		return native.RED
	case FormatAlpha:
		return native.ALPHA
	case FormatLuminance:
		return native.LUMINANCE
	case FormatLuminanceAlpha:
		return native.LUMINANCE_ALPHA
	default:
		return native.RGBA
	}
}

// Type is the component type of texel data.
type Type uint8

// Component types.
const (
	TypeUnsignedByte Type = iota
	TypeFloat
	TypeHalfFloat
)

func (t Type) size() int {
	switch t {
	case TypeFloat:
		return 4
	case TypeHalfFloat:
		return 2
	default:
		return 1
	}
}

func (t Type) native() native.Enum {
	switch t {
	case TypeFloat:
		return native.FLOAT
	case TypeHalfFloat:
		return native.HALF_FLOAT
	default:
		return native.UNSIGNED_BYTE
	}
}

// sizedFormat returns the internal format passed to TexImage. Version 1
// contexts only accept the unsized format.
func sizedFormat(version int, f Format, t Type) native.Enum {
	if version < 2 {
		return f.native()
	}
	switch t {
	case TypeFloat:
		switch f {
		case FormatRed:
			return native.R32F
		case FormatRG:
			return native.RG32F
		case FormatRGB:
			return native.RGB32F
		}
		return native.RGBA32F
	case TypeHalfFloat:
		switch f {
		case FormatRed:
			return native.R16F
		case FormatRG:
			return native.RG16F
		case FormatRGB:
			return native.RGB16F
		}
		return native.RGBA16F
	}
	switch f {
	case FormatRed:
		return native.R8
	case FormatRG:
		return native.RG8
	case FormatRGB:
		return native.RGB8
	case FormatRGBA, FormatAuto:
		return native.RGBA8
	}
	return f.native()
}

// FormatFromGPU maps a portable texture format onto a format and type
// this package can allocate.
func FormatFromGPU(f gputypes.TextureFormat) (Format, Type, bool) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return FormatRGBA, TypeUnsignedByte, true
	case gputypes.TextureFormatR8Unorm:
		return FormatRed, TypeUnsignedByte, true
	}
	return FormatAuto, TypeUnsignedByte, false
}

// Wrap is a texture addressing mode.
type Wrap uint8

// Addressing modes. WrapKeep leaves an axis unchanged in
// UpdateTextureWrappingMode.
const (
	WrapClamp Wrap = iota
	WrapRepeat
	WrapMirror
	WrapKeep Wrap = 0xFF
)

func (w Wrap) native() int {
	switch w {
	case WrapRepeat:
		return int(native.REPEAT)
	case WrapMirror:
		return int(native.MIRRORED_REPEAT)
	default:
		return int(native.CLAMP_TO_EDGE)
	}
}

// Coordinates is how a material derives texture coordinates. Only the
// cube modes matter here: they decide how cube maps wrap.
type Coordinates uint8

// Coordinate modes.
const (
	CoordinatesExplicit Coordinates = iota
	CoordinatesSpherical
	CoordinatesPlanar
	CoordinatesCubic
	CoordinatesProjection
	CoordinatesSkybox
)

// DefaultAnisotropy is the anisotropic filtering level of a new Sampler.
const DefaultAnisotropy = 4

// wrapCache is the last wrap mode issued for one axis.
type wrapCache struct {
	mode  Wrap
	known bool
}

func (c *wrapCache) differs(w Wrap) bool { return !c.known || c.mode != w }

func (c *wrapCache) store(w Wrap) { c.mode, c.known = w, true }

// Texture is a GPU texture owned by a Manager.
type Texture struct {
	handle arena.Handle
	native native.Texture

	source     Source
	url        string
	key        string
	width      int
	height     int
	depth      int
	baseWidth  int
	baseHeight int
	format     Format
	typ        Type
	sampling   SamplingMode
	mipmaps    bool
	invertY    bool
	cube       bool
	is3D       bool
	is2DArray  bool
	ready      bool
	failed     bool
	samples    int
	compare    gputypes.CompareFunction
	stencil    bool
	premul     bool

	internalFormat native.Enum

	depthStencil *Texture

	// Sampler state last applied to the native object.
	wrapU       wrapCache
	wrapV       wrapCache
	wrapR       wrapCache
	coordinates Coordinates
	coordsKnown bool
	anisotropy  int

	// initialSlot is the channel the material asked for; designatedSlot
	// is the unit the texture currently occupies, or -1.
	initialSlot    int
	designatedSlot int
	slot           lru.Node[*Texture]
	drawEpoch      uint64

	// data is the decoded image kept to replay the upload on rebuild.
	data     *loader.Data
	faces    []*loader.Data
	raw      [][]byte
	loading  *frame.Future[*Texture]
	loadErr  error
	recreate func() error
}

func newTexture(src Source) *Texture {
	t := &Texture{source: src, initialSlot: -1, designatedSlot: -1, samples: 1}
	t.slot.Key = t
	return t
}

// Native returns the native texture name, 0 once released.
func (t *Texture) Native() native.Texture { return t.native }

// Source reports how the texture was created.
func (t *Texture) Source() Source { return t.source }

// URL returns the source URL of a loaded texture.
func (t *Texture) URL() string { return t.url }

// Width returns the allocated width, which may differ from BaseWidth
// after a power-of-two or maximum-size rescale.
func (t *Texture) Width() int { return t.width }

// Height returns the allocated height.
func (t *Texture) Height() int { return t.height }

// Depth returns the depth of 3D textures and the layer count of arrays.
func (t *Texture) Depth() int { return t.depth }

// BaseWidth returns the width of the source data.
func (t *Texture) BaseWidth() int { return t.baseWidth }

// BaseHeight returns the height of the source data.
func (t *Texture) BaseHeight() int { return t.baseHeight }

// Format returns the texel format.
func (t *Texture) Format() Format { return t.format }

// Type returns the component type.
func (t *Texture) Type() Type { return t.typ }

// SamplingMode returns the current sampling mode.
func (t *Texture) SamplingMode() SamplingMode { return t.sampling }

// GenerateMipmaps reports whether the texture carries a mip chain.
func (t *Texture) GenerateMipmaps() bool { return t.mipmaps }

// InvertY reports whether uploads are flipped vertically.
func (t *Texture) InvertY() bool { return t.invertY }

// IsCube reports a cube map.
func (t *Texture) IsCube() bool { return t.cube }

// Is3D reports a 3D texture.
func (t *Texture) Is3D() bool { return t.is3D }

// Is2DArray reports a 2D array texture.
func (t *Texture) Is2DArray() bool { return t.is2DArray }

// IsReady reports that texel data has been uploaded.
func (t *Texture) IsReady() bool { return t.ready && !t.failed && t.native != 0 }

// Failed reports a texture whose source could not be loaded. It samples
// as a placeholder.
func (t *Texture) Failed() bool { return t.failed }

// Samples returns the MSAA sample count recorded by the render target
// that owns the texture, 1 otherwise.
func (t *Texture) Samples() int { return t.samples }

// SetSamples records the sample count of an owning render target.
func (t *Texture) SetSamples(n int) { t.samples = max(n, 1) }

// ComparisonFunction returns the depth comparison, the zero value when
// comparison is off.
func (t *Texture) ComparisonFunction() gputypes.CompareFunction { return t.compare }

// HasStencil reports a depth texture with a stencil channel.
func (t *Texture) HasStencil() bool { return t.stencil }

// InternalFormat returns the native internal format of level 0.
func (t *Texture) InternalFormat() native.Enum { return t.internalFormat }

// DepthStencilTexture returns the depth texture sampled in place of t
// when a Sampler asks for depth, or nil.
func (t *Texture) DepthStencilTexture() *Texture { return t.depthStencil }

// SetDepthStencilTexture attaches d as the depth texture of t. t owns d
// from then on and releases it with itself.
func (t *Texture) SetDepthStencilTexture(d *Texture) { t.depthStencil = d }

// Channel returns the texture unit the texture occupies, or -1.
func (t *Texture) Channel() int { return t.designatedSlot }

// Target returns the native bind target.
func (t *Texture) Target() native.Enum {
	switch {
	case t.cube:
		return native.TEXTURE_CUBE_MAP
	case t.is3D:
		return native.TEXTURE_3D
	case t.is2DArray:
		return native.TEXTURE_2D_ARRAY
	default:
		return native.TEXTURE_2D
	}
}

// forgetSamplerState marks every applied parameter unknown, as on a newly
// created native object.
func (t *Texture) forgetSamplerState() {
	t.wrapU, t.wrapV, t.wrapR = wrapCache{}, wrapCache{}, wrapCache{}
	t.coordsKnown = false
	t.anisotropy = 0
}

// Sampler is a texture as seen by one material: the shared GPU texture
// plus the addressing and filtering state the material wants.
type Sampler struct {
	Texture     *Texture
	WrapU       Wrap
	WrapV       Wrap
	WrapR       Wrap
	Anisotropy  int
	Coordinates Coordinates
	// DepthStencil samples the depth texture of Texture.
	DepthStencil bool
}

// NewSampler returns a repeating sampler for t. Cube maps default to
// cubic coordinates.
func NewSampler(t *Texture) *Sampler {
	s := &Sampler{Texture: t, WrapU: WrapRepeat, WrapV: WrapRepeat, WrapR: WrapRepeat, Anisotropy: DefaultAnisotropy}
	if t != nil && t.cube {
		s.Coordinates = CoordinatesCubic
	}
	return s
}

// Uniform addresses a sampler uniform of one program.
type Uniform struct {
	Program  native.Program
	Location native.UniformLocation
}

// Valid reports whether u names an active uniform.
func (u Uniform) Valid() bool { return u.Location.Valid() }
