// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/backend/soft"
	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
)

var noUniform = Uniform{Location: native.NoUniform}

func newManager(t *testing.T, so soft.Options, o Options) (*Manager, *soft.Device) {
	t.Helper()
	d := soft.New(so)
	return New(d, caps.Probe(d), o), d
}

func twoUnits() soft.Options {
	return soft.Options{Limits: map[native.Enum]int{native.MAX_COMBINED_TEXTURE_IMAGE_UNITS: 2}}
}

func rawTexture(t *testing.T, m *Manager, o RawOptions) *Texture {
	t.Helper()
	if o.Width == 0 {
		o.Width, o.Height = 4, 4
	}
	var data []byte
	if o.Type == TypeUnsignedByte {
		data = make([]byte, o.Width*o.Height*o.Format.orRGBA().components())
	}
	tex, err := m.CreateRawTexture(data, o)
	if err != nil {
		t.Fatalf("CreateRawTexture() error = %v", err)
	}
	return tex
}

func TestBindTextureReplacesChannel(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	b := rawTexture(t, m, RawOptions{})
	d.ResetCalls()

	if err := m.BindTexture(0, a); err != nil {
		t.Fatal(err)
	}
	if err := m.BindTexture(0, a); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("BindTexture"); got != 1 {
		t.Fatalf("BindTexture calls after binding A twice = %d, want 1", got)
	}
	if err := m.BindTexture(0, b); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("BindTexture"); got != 2 {
		t.Errorf("BindTexture calls = %d, want 2", got)
	}
	if m.Bound(0) != b {
		t.Error("channel 0 does not report B")
	}
	if got := d.BoundTexture(0, native.TEXTURE_2D); got != b.Native() {
		t.Errorf("native unit 0 holds %d, want %d", got, b.Native())
	}
	if a.Channel() != -1 {
		t.Errorf("A.Channel() = %d, want -1", a.Channel())
	}
}

func TestSetTextureIsIdempotent(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{Sampling: Nearest})
	m.UseProgram(7)
	u := Uniform{Program: 7, Location: 2}
	s := NewSampler(a)

	d.ResetCalls()
	if err := m.SetTexture(0, u, s); err != nil {
		t.Fatal(err)
	}
	if d.Count("BindTexture") != 1 || d.Count("Uniform1i") != 1 {
		t.Fatalf("first SetTexture calls = %v", d.Names())
	}
	d.ResetCalls()
	if err := m.SetTexture(0, u, s); err != nil {
		t.Fatal(err)
	}
	if n := len(d.Calls()); n != 0 {
		t.Errorf("repeated SetTexture issued %d calls: %v", n, d.Names())
	}
}

func TestSetTextureRedirectsToOccupiedUnit(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	m.UseProgram(7)
	if err := m.SetTexture(0, Uniform{Program: 7, Location: 1}, NewSampler(a)); err != nil {
		t.Fatal(err)
	}

	d.ResetCalls()
	if err := m.SetTexture(3, Uniform{Program: 7, Location: 2}, NewSampler(a)); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("BindTexture"); got != 0 {
		t.Errorf("BindTexture calls = %d, want 0", got)
	}
	if a.Channel() != 0 {
		t.Errorf("Channel() = %d, want 0", a.Channel())
	}
	i := d.Index("Uniform1i", 0)
	if i < 0 {
		t.Fatal("sampler uniform not redirected")
	}
	args := d.Calls()[i].Args
	if args[0] != native.UniformLocation(2) || args[1].([]float32)[0] != 0 {
		t.Errorf("Uniform1i args = %v, want location 2 set to unit 0", args)
	}
}

func TestSamplerUniformOfOtherProgramIsSkipped(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	m.UseProgram(9)
	d.ResetCalls()
	if err := m.SetTexture(0, Uniform{Program: 7, Location: 1}, NewSampler(a)); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("Uniform1i"); got != 0 {
		t.Errorf("Uniform1i calls = %d, want 0", got)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	m, _ := newManager(t, twoUnits(), Options{})
	a := rawTexture(t, m, RawOptions{})
	b := rawTexture(t, m, RawOptions{})
	c := rawTexture(t, m, RawOptions{})

	set := func(ch int, tex *Texture) {
		t.Helper()
		if err := m.SetTexture(ch, noUniform, NewSampler(tex)); err != nil {
			t.Fatalf("SetTexture(%d) error = %v", ch, err)
		}
	}
	set(0, a)
	set(1, b)
	m.NextDraw()
	set(0, a)
	m.NextDraw()
	set(0, c)

	if c.Channel() != 1 {
		t.Errorf("C.Channel() = %d, want 1", c.Channel())
	}
	if a.Channel() != 0 || b.Channel() != -1 {
		t.Errorf("A, B channels = %d, %d, want 0, -1", a.Channel(), b.Channel())
	}
	if m.Collisions() != 1 {
		t.Errorf("Collisions() = %d, want 1", m.Collisions())
	}
}

func TestTexturesOfCurrentDrawAreNotEvicted(t *testing.T) {
	m, _ := newManager(t, twoUnits(), Options{})
	a := rawTexture(t, m, RawOptions{})
	b := rawTexture(t, m, RawOptions{})
	c := rawTexture(t, m, RawOptions{})

	_ = m.SetTexture(0, noUniform, NewSampler(a))
	_ = m.SetTexture(1, noUniform, NewSampler(b))
	err := m.SetTexture(0, noUniform, NewSampler(c))
	if !errors.Is(err, ErrChannelsExhausted) {
		t.Fatalf("SetTexture() error = %v, want ErrChannelsExhausted", err)
	}
	if m.Bound(0) != a || m.Bound(1) != b {
		t.Error("a pinned texture was evicted")
	}

	m.NextDraw()
	if err := m.SetTexture(0, noUniform, NewSampler(c)); err != nil {
		t.Errorf("SetTexture() after NextDraw error = %v", err)
	}
}

func TestUploadAvoidsUnitOfCurrentDraw(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	if err := m.SetTexture(0, noUniform, NewSampler(a)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateRawTexture(make([]byte, 64), RawOptions{Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	if got := d.BoundTexture(0, native.TEXTURE_2D); got != a.Native() {
		t.Errorf("unit 0 holds %d after an upload, want %d", got, a.Native())
	}
	if m.Bound(0) != a {
		t.Error("cache lost the texture of unit 0")
	}
}

func TestDisabledBindingOptimizationCountsCollisions(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{DisableBindingOptimization: true})
	a := rawTexture(t, m, RawOptions{})
	_ = m.SetTexture(0, noUniform, NewSampler(a))
	m.ResetCollisions()
	d.ResetCalls()
	_ = m.SetTexture(2, noUniform, NewSampler(a))
	if got := d.BoundTexture(2, native.TEXTURE_2D); got != a.Native() {
		t.Errorf("unit 2 holds %d, want %d", got, a.Native())
	}
	if m.Collisions() != 1 {
		t.Errorf("Collisions() = %d, want 1", m.Collisions())
	}
}

func TestPlaceholderForUnreadyTexture(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	dyn, err := m.CreateDynamicTexture(2, 2, false, Bilinear)
	if err != nil {
		t.Fatal(err)
	}
	if dyn.IsReady() {
		t.Fatal("dynamic texture ready before its first frame")
	}
	if err := m.SetTexture(0, noUniform, NewSampler(dyn)); err != nil {
		t.Fatal(err)
	}
	p := m.Bound(0)
	if p == nil || p.Source() != SourcePlaceholder {
		t.Fatalf("Bound(0) = %v, want the 2D placeholder", p)
	}
	if got := m.Textures(); len(got) != 1 || got[0] != dyn {
		t.Errorf("Textures() = %v, want only the dynamic texture", got)
	}

	pix := &loader.Data{Width: 2, Height: 2, Pixels: bytes.Repeat([]byte{255, 0, 0, 255}, 4)}
	if err := m.UpdateDynamicTexture(dyn, pix, false, false, FormatRGBA); err != nil {
		t.Fatal(err)
	}
	m.NextDraw()
	if err := m.SetTexture(0, noUniform, NewSampler(dyn)); err != nil {
		t.Fatal(err)
	}
	ch := dyn.Channel()
	if ch < 0 || m.Bound(ch) != dyn || d.BoundTexture(ch, native.TEXTURE_2D) != dyn.Native() {
		t.Errorf("dynamic texture not bound after its first frame, channel %d", ch)
	}
	if got := d.TexturePixel(dyn.Native(), 1, 1); got != [4]byte{255, 0, 0, 255} {
		t.Errorf("TexturePixel() = %v, want red", got)
	}
}

func TestPlaceholderKinds(t *testing.T) {
	m, _ := newManager(t, soft.Options{}, Options{})
	tests := []struct {
		name              string
		cube, is3D, array bool
		want              native.Enum
	}{
		{"2d", false, false, false, native.TEXTURE_2D},
		{"cube", true, false, false, native.TEXTURE_CUBE_MAP},
		{"3d", false, true, false, native.TEXTURE_3D},
		{"array", false, false, true, native.TEXTURE_2D_ARRAY},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.Placeholder(tt.cube, tt.is3D, tt.array)
			if p == nil {
				t.Fatal("Placeholder() = nil")
			}
			if p.Target() != tt.want || !p.IsReady() {
				t.Errorf("placeholder target %#x ready %v", p.Target(), p.IsReady())
			}
			if m.Placeholder(tt.cube, tt.is3D, tt.array) != p {
				t.Error("placeholder recreated")
			}
		})
	}
}

func TestSamplingFilters(t *testing.T) {
	tests := []struct {
		mode     SamplingMode
		mipmaps  bool
		mag, min native.Enum
	}{
		{Nearest, true, native.NEAREST, native.NEAREST_MIPMAP_LINEAR},
		{Nearest, false, native.NEAREST, native.NEAREST},
		{Bilinear, true, native.LINEAR, native.LINEAR_MIPMAP_NEAREST},
		{Trilinear, true, native.LINEAR, native.LINEAR_MIPMAP_LINEAR},
		{Trilinear, false, native.LINEAR, native.LINEAR},
		{NearestLinearMipNearest, true, native.NEAREST, native.LINEAR_MIPMAP_NEAREST},
		{NearestLinear, true, native.NEAREST, native.LINEAR},
		{LinearNearestMipLinear, true, native.LINEAR, native.NEAREST_MIPMAP_LINEAR},
		{LinearNearest, false, native.LINEAR, native.NEAREST},
		{NearestNearest, true, native.NEAREST, native.NEAREST},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			mag, minFilter := tt.mode.Filters(tt.mipmaps)
			if mag != tt.mag || minFilter != tt.min {
				t.Errorf("Filters(%v) = %#x, %#x, want %#x, %#x", tt.mipmaps, mag, minFilter, tt.mag, tt.min)
			}
		})
	}
}

func TestWrapStateIsCached(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	s := NewSampler(a)
	_ = m.SetTexture(0, noUniform, s)

	clamp := *s
	clamp.WrapU = WrapClamp
	d.ResetCalls()
	_ = m.SetTexture(0, noUniform, &clamp)
	if got := d.Count("TexParameteri"); got != 1 {
		t.Errorf("TexParameteri calls = %d, want 1", got)
	}
	if v, _ := d.TextureParam(a.Native(), native.TEXTURE_WRAP_S); v != float32(native.CLAMP_TO_EDGE) {
		t.Errorf("WRAP_S = %v, want CLAMP_TO_EDGE", v)
	}
}

func TestCubeWrapFollowsCoordinates(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	c, err := m.CreateRawCubeTexture(nil, 2, RawOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s := NewSampler(c)
	s.Coordinates = CoordinatesSpherical
	_ = m.SetTexture(0, noUniform, s)
	if v, _ := d.TextureParam(c.Native(), native.TEXTURE_WRAP_S); v != float32(native.REPEAT) {
		t.Errorf("spherical WRAP_S = %v, want REPEAT", v)
	}
	s.Coordinates = CoordinatesSkybox
	_ = m.SetTexture(0, noUniform, s)
	if v, _ := d.TextureParam(c.Native(), native.TEXTURE_WRAP_T); v != float32(native.CLAMP_TO_EDGE) {
		t.Errorf("skybox WRAP_T = %v, want CLAMP_TO_EDGE", v)
	}
}

func TestAnisotropy(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{Sampling: Trilinear})
	s := NewSampler(a)
	s.Anisotropy = 64
	_ = m.SetTexture(0, noUniform, s)
	if v, _ := d.TextureParam(a.Native(), native.TEXTURE_MAX_ANISOTROPY_EXT); v != 16 {
		t.Errorf("anisotropy = %v, want the driver maximum 16", v)
	}

	d.ResetCalls()
	_ = m.SetTexture(0, noUniform, s)
	if got := d.Count("TexParameterf"); got != 0 {
		t.Errorf("unchanged anisotropy issued %d calls", got)
	}

	if err := m.UpdateTextureSamplingMode(a, Nearest, false); err != nil {
		t.Fatal(err)
	}
	_ = m.SetTexture(0, noUniform, s)
	if v, _ := d.TextureParam(a.Native(), native.TEXTURE_MAX_ANISOTROPY_EXT); v != 1 {
		t.Errorf("anisotropy with nearest sampling = %v, want 1", v)
	}
	if v, _ := d.TextureParam(a.Native(), native.TEXTURE_MIN_FILTER); v != float32(native.NEAREST) {
		t.Errorf("MIN_FILTER = %v, want NEAREST", v)
	}
}

func TestUnbindAllTexturesClearsEveryTarget(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	c, err := m.CreateRawCubeTexture(nil, 2, RawOptions{})
	if err != nil {
		t.Fatal(err)
	}
	_ = m.BindTexture(0, a)
	_ = m.BindTexture(0, c)
	if d.BoundTexture(0, native.TEXTURE_2D) == 0 || d.BoundTexture(0, native.TEXTURE_CUBE_MAP) == 0 {
		t.Fatal("unit 0 should hold both targets")
	}
	m.UnbindAllTextures()
	if d.BoundTexture(0, native.TEXTURE_2D) != 0 || d.BoundTexture(0, native.TEXTURE_CUBE_MAP) != 0 {
		t.Error("UnbindAllTextures left a target bound")
	}
	if m.Bound(0) != nil {
		t.Error("cache still reports a texture on unit 0")
	}
}

func TestWipeCachesForcesRebind(t *testing.T) {
	for _, brute := range []bool{false, true} {
		m, d := newManager(t, soft.Options{}, Options{})
		a := rawTexture(t, m, RawOptions{})
		_ = m.SetTexture(0, noUniform, NewSampler(a))
		m.WipeCaches(brute)
		d.ResetCalls()
		_ = m.SetTexture(0, noUniform, NewSampler(a))
		if got := d.Count("BindTexture"); got != 1 {
			t.Errorf("WipeCaches(%v): BindTexture calls = %d, want 1", brute, got)
		}
	}
}

func TestFlipYIsCached(t *testing.T) {
	tests := []struct {
		name    string
		disable bool
		want    int
	}{
		{"cached", false, 1},
		{"disabled", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newManager(t, soft.Options{}, Options{DisableFlipYCache: tt.disable})
			d.ResetCalls()
			rawTexture(t, m, RawOptions{})
			rawTexture(t, m, RawOptions{})
			if got := d.Count("PixelStorei"); got != tt.want {
				t.Errorf("PixelStorei calls = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReleaseRunsHooksOnce(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	var released []*Texture
	m.OnRelease(func(t *Texture) { released = append(released, t) })
	_ = m.SetTexture(0, noUniform, NewSampler(a))

	if n, _ := m.Retain(a); n != 2 {
		t.Fatalf("Retain() = %d, want 2", n)
	}
	if freed, err := m.Release(a); freed || err != nil {
		t.Fatalf("first Release() = %v, %v", freed, err)
	}
	if freed, err := m.Release(a); !freed || err != nil {
		t.Fatalf("second Release() = %v, %v", freed, err)
	}
	if len(released) != 1 || released[0] != a {
		t.Errorf("hooks saw %v", released)
	}
	if d.Deleted("texture") != 1 || m.Bound(0) != nil || m.IsLive(a) {
		t.Error("released texture still present")
	}
	if _, err := m.Release(a); !errors.Is(err, ErrStale) {
		t.Errorf("third Release() error = %v, want ErrStale", err)
	}
}

func TestRawTextureValidation(t *testing.T) {
	m, _ := newManager(t, soft.Options{}, Options{})
	if _, err := m.CreateRawTexture(make([]byte, 3), RawOptions{Width: 2, Height: 2}); !errors.Is(err, ErrSize) {
		t.Errorf("short data error = %v, want ErrSize", err)
	}
	if _, err := m.CreateRawTexture(nil, RawOptions{}); !errors.Is(err, ErrSize) {
		t.Errorf("zero size error = %v, want ErrSize", err)
	}
	if _, err := m.CreateRawCubeTexture(make([][]byte, 5), 2, RawOptions{}); !errors.Is(err, ErrSize) {
		t.Errorf("five faces error = %v, want ErrSize", err)
	}
}

func TestLayeredTexturesNeedVersion2(t *testing.T) {
	m, _ := newManager(t, soft.Options{Version: 1}, Options{})
	if _, err := m.CreateRawTexture3D(nil, RawOptions{Width: 2, Height: 2, Depth: 2}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("CreateRawTexture3D() error = %v, want ErrUnsupported", err)
	}

	m2, d2 := newManager(t, soft.Options{}, Options{})
	arr, err := m2.CreateRawTexture2DArray(make([]byte, 2*2*3*4), RawOptions{Width: 2, Height: 2, Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !arr.Is2DArray() || arr.Depth() != 3 || d2.Count("TexImage3D") != 1 {
		t.Errorf("array texture depth %d, TexImage3D calls %d", arr.Depth(), d2.Count("TexImage3D"))
	}
}

func TestFloatTexturesWithoutLinearFiltering(t *testing.T) {
	m, _ := newManager(t, soft.Options{Extensions: []string{}}, Options{})
	f := rawTexture(t, m, RawOptions{Type: TypeFloat, Sampling: Trilinear, GenerateMipmaps: true})
	if f.SamplingMode() != Nearest || f.GenerateMipmaps() {
		t.Errorf("float texture sampling %v mipmaps %v, want nearest without mipmaps", f.SamplingMode(), f.GenerateMipmaps())
	}

	v1, _ := newManager(t, soft.Options{Version: 1, Extensions: []string{}}, Options{})
	rt, err := v1.CreateInternalTexture(InternalOptions{Width: 4, Height: 4, Type: TypeFloat})
	if err != nil {
		t.Fatal(err)
	}
	if rt.Type() != TypeUnsignedByte || rt.SamplingMode() != Nearest {
		t.Errorf("render target type %v sampling %v, want unsigned byte and nearest", rt.Type(), rt.SamplingMode())
	}
}

func TestUpdateTextureData(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	px := []byte{0, 255, 0, 255}
	if err := m.UpdateTextureData(a, px, 3, 3, 1, 1, 0, 0); err != nil {
		t.Fatal(err)
	}
	if got := d.TexturePixel(a.Native(), 3, 3); got != [4]byte{0, 255, 0, 255} {
		t.Errorf("TexturePixel() = %v, want green", got)
	}
	if err := m.UpdateTextureData(a, px, 4, 0, 1, 1, 0, 0); !errors.Is(err, ErrSize) {
		t.Errorf("out of range update error = %v, want ErrSize", err)
	}
}

func TestComparisonFunction(t *testing.T) {
	v1, d1 := newManager(t, soft.Options{Version: 1}, Options{})
	a := rawTexture(t, v1, RawOptions{})
	d1.ResetCalls()
	if err := v1.UpdateTextureComparisonFunction(a, gputypes.CompareFunctionLess); !errors.Is(err, ErrUnsupported) {
		t.Errorf("version 1 error = %v, want ErrUnsupported", err)
	}
	if len(d1.Calls()) != 0 || a.ComparisonFunction() != 0 {
		t.Error("version 1 comparison changed state")
	}

	m, d := newManager(t, soft.Options{}, Options{})
	depth, err := m.CreateDepthStencilTexture(DepthOptions{Width: 4, Height: 4, Comparison: gputypes.CompareFunctionLess})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := d.TextureParam(depth.Native(), native.TEXTURE_COMPARE_MODE); v != float32(native.COMPARE_REF_TO_TEXTURE) {
		t.Errorf("COMPARE_MODE = %v, want COMPARE_REF_TO_TEXTURE", v)
	}
	if err := m.UpdateTextureComparisonFunction(depth, 0); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.TextureParam(depth.Native(), native.TEXTURE_COMPARE_MODE); v != float32(native.NONE) {
		t.Errorf("COMPARE_MODE = %v, want NONE", v)
	}
	if depth.InternalFormat() != native.DEPTH_COMPONENT24 {
		t.Errorf("InternalFormat() = %#x, want DEPTH_COMPONENT24", depth.InternalFormat())
	}
}

func TestDepthFormats(t *testing.T) {
	tests := []struct {
		version int
		stencil bool
		bits    int
		want    native.Enum
	}{
		{2, true, 0, native.DEPTH24_STENCIL8},
		{2, true, 32, native.DEPTH32F_STENCIL8},
		{2, false, 16, native.DEPTH_COMPONENT16},
		{2, false, 32, native.DEPTH_COMPONENT32F},
		{1, true, 0, native.DEPTH_STENCIL},
		{1, false, 16, native.DEPTH_COMPONENT},
	}
	for _, tt := range tests {
		if got, _, _ := depthFormats(tt.version, tt.stencil, tt.bits); got != tt.want {
			t.Errorf("depthFormats(%d, %v, %d) = %#x, want %#x", tt.version, tt.stencil, tt.bits, got, tt.want)
		}
	}
}

func TestRebuildAll(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	a := rawTexture(t, m, RawOptions{})
	rt, err := m.CreateInternalTexture(InternalOptions{Width: 8, Height: 8})
	if err != nil {
		t.Fatal(err)
	}
	_ = m.SetTexture(0, noUniform, NewSampler(a))

	d.LoseContext()
	d.RestoreContext()
	if err := m.RebuildAll(); err != nil {
		t.Fatalf("RebuildAll() error = %v", err)
	}
	for _, tex := range []*Texture{a, rt} {
		if w, _, ok := d.TextureSize(tex.Native()); !ok || w != tex.Width() {
			t.Errorf("%s texture not recreated", tex.Source())
		}
	}
	if m.Bound(0) != nil || a.Channel() != -1 {
		t.Error("binding cache survived the rebuild")
	}
}

func TestDisposeDeletesEverything(t *testing.T) {
	m, d := newManager(t, soft.Options{}, Options{})
	rawTexture(t, m, RawOptions{})
	m.Placeholder(true, false, false)
	m.Dispose()
	if d.LiveTextures() != 0 || m.Len() != 0 {
		t.Errorf("live textures %d, managed %d, want 0", d.LiveTextures(), m.Len())
	}
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newLoaderManager(t *testing.T, files map[string][]byte) (*Manager, *soft.Device, *loader.Service, *frame.Queue) {
	t.Helper()
	q := &frame.Queue{}
	fetch := loader.FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if b, ok := files[url]; ok {
			return b, nil
		}
		return nil, os.ErrNotExist
	})
	svc := loader.NewService(nil, fetch, q, 0)
	t.Cleanup(svc.Close)
	m, d := newManager(t, soft.Options{}, Options{Loader: svc})
	return m, d, svc, q
}

func TestCreateTextureFromURL(t *testing.T) {
	m, d, svc, q := newLoaderManager(t, map[string][]byte{
		"brick.png": pngBytes(t, 4, 4, color.NRGBA{B: 255, A: 255}),
	})
	ctx := context.Background()

	tex, fut, err := m.CreateTexture(ctx, "brick.png", DefaultCreateOptions())
	if err != nil {
		t.Fatal(err)
	}
	if tex.IsReady() {
		t.Fatal("texture ready before the load finished")
	}
	again, _, err := m.CreateTexture(ctx, "brick.png", DefaultCreateOptions())
	if err != nil || again != tex {
		t.Fatalf("second CreateTexture() = %p, %v, want the shared texture", again, err)
	}
	if m.References(tex) != 2 {
		t.Errorf("References() = %d, want 2", m.References(tex))
	}

	svc.Wait()
	q.Drain()
	if _, err := fut.Result(); err != nil {
		t.Fatalf("future error = %v", err)
	}
	if !tex.IsReady() || tex.Width() != 4 {
		t.Fatalf("ready %v width %d", tex.IsReady(), tex.Width())
	}
	if got := d.TexturePixel(tex.Native(), 0, 0); got != [4]byte{0, 0, 255, 255} {
		t.Errorf("TexturePixel() = %v, want blue", got)
	}
	if d.MipmapsGenerated(tex.Native()) != 1 {
		t.Errorf("MipmapsGenerated() = %d, want 1", d.MipmapsGenerated(tex.Native()))
	}

	_, _ = m.Release(tex)
	_, _ = m.Release(tex)
	other, _, err := m.CreateTexture(ctx, "brick.png", DefaultCreateOptions())
	if err != nil {
		t.Fatal(err)
	}
	if other == tex {
		t.Error("released texture served from the cache")
	}
}

func TestCreateTextureFailureUsesPlaceholder(t *testing.T) {
	m, _, svc, q := newLoaderManager(t, map[string][]byte{})
	tex, fut, err := m.CreateTexture(context.Background(), "missing.png", DefaultCreateOptions())
	if err != nil {
		t.Fatal(err)
	}
	svc.Wait()
	q.Drain()

	var le *loader.LoadError
	if _, err := fut.Result(); !errors.As(err, &le) {
		t.Fatalf("future error = %v, want *loader.LoadError", err)
	}
	if !tex.Failed() || tex.IsReady() {
		t.Errorf("Failed() = %v, IsReady() = %v", tex.Failed(), tex.IsReady())
	}
	if err := m.SetTexture(0, noUniform, NewSampler(tex)); err != nil {
		t.Fatal(err)
	}
	if p := m.Bound(0); p == nil || p.Source() != SourcePlaceholder {
		t.Error("failed texture not replaced by the placeholder")
	}
}

func TestCreateTextureWithoutLoader(t *testing.T) {
	m, _ := newManager(t, soft.Options{}, Options{})
	if _, _, err := m.CreateTexture(context.Background(), "a.png", DefaultCreateOptions()); !errors.Is(err, ErrNoLoader) {
		t.Errorf("CreateTexture() error = %v, want ErrNoLoader", err)
	}
}

func TestCreateCubeTexture(t *testing.T) {
	files := map[string][]byte{}
	urls := []string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"}
	for _, u := range urls {
		files[u] = pngBytes(t, 2, 2, color.NRGBA{G: 255, A: 255})
	}
	m, d, svc, q := newLoaderManager(t, files)
	cube, fut, err := m.CreateCubeTexture(context.Background(), urls, CubeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	svc.Wait()
	q.Drain()
	if _, err := fut.Result(); err != nil {
		t.Fatal(err)
	}
	if !cube.IsReady() || !cube.IsCube() {
		t.Fatal("cube not ready")
	}
	if v, _ := d.TextureParam(cube.Native(), native.TEXTURE_MIN_FILTER); v != float32(native.LINEAR_MIPMAP_LINEAR) {
		t.Errorf("MIN_FILTER = %v, want LINEAR_MIPMAP_LINEAR", v)
	}
	if got := d.Count("TexImage2D"); got < 6 {
		t.Errorf("TexImage2D calls = %d, want at least 6", got)
	}
}
