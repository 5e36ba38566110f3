// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "github.com/gogpu/gputypes"

// The engine describes fixed-function state with the portable gputypes
// enumerations and translates them to GL enumerants only at the native
// boundary.

// CompareFunc maps a comparison function to its GL enumerant.
// Undefined maps to ALWAYS.
func CompareFunc(f gputypes.CompareFunction) Enum {
	switch f {
	case gputypes.CompareFunctionNever:
		return NEVER
	case gputypes.CompareFunctionLess:
		return LESS
	case gputypes.CompareFunctionEqual:
		return EQUAL
	case gputypes.CompareFunctionLessEqual:
		return LEQUAL
	case gputypes.CompareFunctionGreater:
		return GREATER
	case gputypes.CompareFunctionNotEqual:
		return NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return GEQUAL
	default:
		return ALWAYS
	}
}

// StencilOp maps a stencil operation to its GL enumerant.
func StencilOp(op gputypes.StencilOperation) Enum {
	switch op {
	case gputypes.StencilOperationZero:
		return ZERO
	case gputypes.StencilOperationReplace:
		return REPLACE
	case gputypes.StencilOperationInvert:
		return INVERT
	case gputypes.StencilOperationIncrementClamp:
		return INCR
	case gputypes.StencilOperationDecrementClamp:
		return DECR
	case gputypes.StencilOperationIncrementWrap:
		return INCR_WRAP
	case gputypes.StencilOperationDecrementWrap:
		return DECR_WRAP
	default:
		return KEEP
	}
}

// BlendFactor maps a blend factor to its GL enumerant.
func BlendFactor(f gputypes.BlendFactor) Enum {
	switch f {
	case gputypes.BlendFactorZero:
		return ZERO
	case gputypes.BlendFactorSrc:
		return SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ONE_MINUS_DST_ALPHA
	case gputypes.BlendFactorSrcAlphaSaturated:
		return SRC_ALPHA_SATURATE
	case gputypes.BlendFactorConstant:
		return CONSTANT_COLOR
	case gputypes.BlendFactorOneMinusConstant:
		return ONE_MINUS_CONSTANT_COLOR
	default:
		return ONE
	}
}

// BlendOp maps a blend operation to its GL blend equation.
func BlendOp(op gputypes.BlendOperation) Enum {
	switch op {
	case gputypes.BlendOperationSubtract:
		return FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return MIN
	case gputypes.BlendOperationMax:
		return MAX
	default:
		return FUNC_ADD
	}
}

// CullFace maps a cull mode to the face GL should discard.
// CullModeNone has no GL face; callers disable CULL_FACE instead.
func CullFace(m gputypes.CullMode) Enum {
	if m == gputypes.CullModeFront {
		return FRONT
	}
	return BACK
}

// FrontFace maps a winding order to its GL enumerant.
func FrontFace(f gputypes.FrontFace) Enum {
	if f == gputypes.FrontFaceCW {
		return CW
	}
	return CCW
}

// IndexType maps an index format to the GL element type.
func IndexType(f gputypes.IndexFormat) Enum {
	if f == gputypes.IndexFormatUint32 {
		return UNSIGNED_INT
	}
	return UNSIGNED_SHORT
}

// IndexSize returns the byte width of one index.
func IndexSize(f gputypes.IndexFormat) int {
	if f == gputypes.IndexFormatUint32 {
		return 4
	}
	return 2
}
