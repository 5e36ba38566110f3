// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"slices"

	_ "golang.org/x/image/bmp" // register BMP
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// ImageLoader decodes the common raster formats.
type ImageLoader struct{}

// NewImageLoader returns the raster image loader.
func NewImageLoader() *ImageLoader { return &ImageLoader{} }

// CanLoad implements Loader.
func (*ImageLoader) CanLoad(ext string) bool { return slices.Contains(imageExts, ext) }

// LoadData implements Loader.
func (*ImageLoader) LoadData(data []byte) (*Data, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: decode: %w", err)
	}
	return FromImage(img), nil
}

// LoadCubeData implements Loader.
func (l *ImageLoader) LoadCubeData(faces [][]byte) ([]*Data, error) {
	if len(faces) != 6 {
		return nil, ErrCubeFaces
	}
	out := make([]*Data, 6)
	for i, f := range faces {
		d, err := l.LoadData(f)
		if err != nil {
			return nil, fmt.Errorf("loader: cube face %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

// FromImage converts img to tightly packed RGBA8.
func FromImage(img image.Image) *Data {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	d := &Data{Width: w, Height: h}

	if n, ok := img.(*image.NRGBA); ok && n.Stride == 4*w && n.Rect.Min == (image.Point{}) {
		d.Pixels = slices.Clone(n.Pix[:4*w*h])
		return d
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	d.Pixels = dst.Pix
	return d
}

// Image wraps d as an image sharing its pixels.
func (d *Data) Image() *image.NRGBA {
	return &image.NRGBA{Pix: d.Pixels, Stride: 4 * d.Width, Rect: image.Rect(0, 0, d.Width, d.Height)}
}

// Rescale returns d resampled to w x h with a Catmull-Rom filter. It is
// used to bring NPOT images to a power of two and to clamp images larger
// than the maximum texture size.
func Rescale(d *Data, w, h int) *Data {
	if d.Width == w && d.Height == h {
		return d
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), d.Image(), d.Image().Bounds(), xdraw.Src, nil)
	return &Data{Width: w, Height: h, Pixels: dst.Pix}
}

// CeilingPOT returns the smallest power of two >= v.
func CeilingPOT(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// FloorPOT returns the largest power of two <= v.
func FloorPOT(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p<<1 <= v {
		p <<= 1
	}
	return p
}

// NearestPOT returns the power of two closest to v, rounding ties up.
func NearestPOT(v int) int {
	c, f := CeilingPOT(v), FloorPOT(v)
	if c-v > v-f {
		return f
	}
	return c
}

// ExponentOfTwo returns the power of two nearest to v, capped at limit.
func ExponentOfTwo(v, limit int) int {
	return min(NearestPOT(v), limit)
}
