// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import "github.com/gogpu/glengine/native"

// SamplingMode selects the magnification filter, the minification filter
// and the mip filter together. Names read mag_min_mip.
type SamplingMode uint8

// Sampling modes.
const (
	NearestNearestMipLinear SamplingMode = iota + 1
	LinearLinearMipNearest
	LinearLinearMipLinear
	NearestNearestMipNearest
	NearestLinearMipNearest
	NearestLinearMipLinear
	NearestLinear
	NearestNearest
	LinearNearestMipNearest
	LinearNearestMipLinear
	LinearLinear
	LinearNearest

	Nearest   = NearestNearestMipLinear
	Bilinear  = LinearLinearMipNearest
	Trilinear = LinearLinearMipLinear
)

func (m SamplingMode) String() string {
	switch m {
	case NearestNearestMipLinear:
		return "nearest"
	case LinearLinearMipNearest:
		return "bilinear"
	case LinearLinearMipLinear:
		return "trilinear"
	case NearestNearestMipNearest:
		return "nearest-nearest-mipnearest"
	case NearestLinearMipNearest:
		return "nearest-linear-mipnearest"
	case NearestLinearMipLinear:
		return "nearest-linear-miplinear"
	case NearestLinear:
		return "nearest-linear"
	case NearestNearest:
		return "nearest-nearest"
	case LinearNearestMipNearest:
		return "linear-nearest-mipnearest"
	case LinearNearestMipLinear:
		return "linear-nearest-miplinear"
	case LinearLinear:
		return "linear-linear"
	case LinearNearest:
		return "linear-nearest"
	default:
		return "unknown"
	}
}

func (m SamplingMode) orTrilinear() SamplingMode {
	if m == 0 {
		return Trilinear
	}
	return m
}

// Filters returns the magnification and minification filters of m. The
// mip part of the minification filter only applies when mipmaps is set.
func (m SamplingMode) Filters(mipmaps bool) (mag, minFilter native.Enum) {
	mip := func(withMips, without native.Enum) native.Enum {
		if mipmaps {
			return withMips
		}
		return without
	}
	switch m {
	case LinearLinearMipNearest:
		return native.LINEAR, mip(native.LINEAR_MIPMAP_NEAREST, native.LINEAR)
	case LinearLinearMipLinear:
		return native.LINEAR, mip(native.LINEAR_MIPMAP_LINEAR, native.LINEAR)
	case NearestNearestMipLinear:
		return native.NEAREST, mip(native.NEAREST_MIPMAP_LINEAR, native.NEAREST)
	case NearestNearestMipNearest:
		return native.NEAREST, mip(native.NEAREST_MIPMAP_NEAREST, native.NEAREST)
	case NearestLinearMipNearest:
		return native.NEAREST, mip(native.LINEAR_MIPMAP_NEAREST, native.LINEAR)
	case NearestLinearMipLinear:
		return native.NEAREST, mip(native.LINEAR_MIPMAP_LINEAR, native.LINEAR)
	case NearestLinear:
		return native.NEAREST, native.LINEAR
	case LinearNearestMipNearest:
		return native.LINEAR, mip(native.NEAREST_MIPMAP_NEAREST, native.NEAREST)
	case LinearNearestMipLinear:
		return native.LINEAR, mip(native.NEAREST_MIPMAP_LINEAR, native.NEAREST)
	case LinearNearest:
		return native.LINEAR, native.NEAREST
	case LinearLinear:
		return native.LINEAR, native.LINEAR
	default:
		return native.NEAREST, native.NEAREST
	}
}

// anisotropic reports whether anisotropic filtering may stay above 1.
// Drivers force linear filtering when it is on, so every other mode pins
// the level to 1.
func (m SamplingMode) anisotropic() bool {
	return m == LinearLinearMipNearest || m == LinearLinearMipLinear || m == LinearLinear
}
