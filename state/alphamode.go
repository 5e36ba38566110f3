// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// AlphaMode names a canned blending configuration.
type AlphaMode uint8

// Alpha modes.
const (
	AlphaDisable AlphaMode = iota
	AlphaAdd
	AlphaCombine
	AlphaSubtract
	AlphaMultiply
	AlphaMaximized
	AlphaOneOne
	AlphaPremultiplied
	AlphaPremultipliedPorterDuff
	AlphaInterpolate
	AlphaScreenMode
)

var alphaModeNames = [...]string{
	AlphaDisable:                 "disable",
	AlphaAdd:                     "add",
	AlphaCombine:                 "combine",
	AlphaSubtract:                "subtract",
	AlphaMultiply:                "multiply",
	AlphaMaximized:               "maximized",
	AlphaOneOne:                  "oneone",
	AlphaPremultiplied:           "premultiplied",
	AlphaPremultipliedPorterDuff: "premultiplied-porterduff",
	AlphaInterpolate:             "interpolate",
	AlphaScreenMode:              "screenmode",
}

// String returns the name accepted by ParseAlphaMode.
func (m AlphaMode) String() string {
	if int(m) < len(alphaModeNames) {
		return alphaModeNames[m]
	}
	return fmt.Sprintf("AlphaMode(%d)", m)
}

// ParseAlphaMode resolves a mode name as printed by String.
func ParseAlphaMode(name string) (AlphaMode, error) {
	for i, n := range alphaModeNames {
		if n == name {
			return AlphaMode(i), nil
		}
	}
	return 0, fmt.Errorf("state: unknown alpha mode %q", name)
}

const (
	zero         = gputypes.BlendFactorZero
	one          = gputypes.BlendFactorOne
	srcAlpha     = gputypes.BlendFactorSrcAlpha
	oneMinusSrcA = gputypes.BlendFactorOneMinusSrcAlpha
	oneMinusSrc  = gputypes.BlendFactorOneMinusSrc
	dst          = gputypes.BlendFactorDst
	constant     = gputypes.BlendFactorConstant
	oneMinusK    = gputypes.BlendFactorOneMinusConstant
)

var alphaModeFactors = map[AlphaMode]BlendFactors{
	AlphaAdd:                     {srcAlpha, one, zero, one},
	AlphaCombine:                 {srcAlpha, oneMinusSrcA, one, one},
	AlphaSubtract:                {zero, oneMinusSrc, one, one},
	AlphaMultiply:                {dst, zero, one, one},
	AlphaMaximized:               {srcAlpha, oneMinusSrc, one, one},
	AlphaOneOne:                  {one, one, zero, one},
	AlphaPremultiplied:           {one, oneMinusSrcA, one, one},
	AlphaPremultipliedPorterDuff: {one, oneMinusSrcA, one, oneMinusSrcA},
	AlphaInterpolate:             {constant, oneMinusK, constant, oneMinusK},
	AlphaScreenMode:              {one, oneMinusSrc, one, oneMinusSrcA},
}

// ModeFactors returns the blend factors of a mode. AlphaDisable and
// unknown modes report false.
func ModeFactors(m AlphaMode) (BlendFactors, bool) {
	f, ok := alphaModeFactors[m]
	return f, ok
}

// SetAlphaMode configures a for mode. Unless keepDepthWrite is set, depth
// writes are enabled exactly when blending is disabled.
func SetAlphaMode(a *Alpha, d *DepthCull, m AlphaMode, keepDepthWrite bool) {
	if f, ok := alphaModeFactors[m]; ok {
		a.SetFactors(f)
		a.SetBlend(true)
	} else {
		a.SetBlend(false)
	}
	if !keepDepthWrite && d != nil {
		d.SetDepthMask(m == AlphaDisable)
	}
}
