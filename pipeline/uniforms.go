// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"fmt"
	"slices"

	"github.com/gogpu/glengine/native"
)

// uniformOp is the native entry point a cached value was written with.
type uniformOp uint8

const (
	opInt uniformOp = iota + 1
	opInt2
	opInt3
	opInt4
	opIntArray
	opIntArray2
	opIntArray3
	opIntArray4
	opFloat
	opFloat2
	opFloat3
	opFloat4
	opFloatArray
	opFloatArray2
	opFloatArray3
	opFloatArray4
	opMatrix2
	opMatrix3
	opMatrix4
)

type uniformValue struct {
	op uniformOp
	f  []float32
	i  []int32
}

// changed makes e current and records the value of name. It returns the
// location to write and false when the call can be elided: the uniform is
// inactive or already holds the value.
func (e *Effect) changed(name string, op uniformOp, f []float32, i []int32) (native.UniformLocation, bool, error) {
	if err := e.cache.Use(e); err != nil {
		return native.NoUniform, false, err
	}
	loc := e.Uniform(name)
	if !loc.Valid() {
		return loc, false, nil
	}
	if v, ok := e.values[name]; ok && v.op == op && slices.Equal(v.f, f) && slices.Equal(v.i, i) {
		return loc, false, nil
	}
	e.values[name] = uniformValue{op: op, f: slices.Clone(f), i: slices.Clone(i)}
	return loc, true, nil
}

// Uniform setters write through the native context only when the value
// differs from the last one written for that name. They make e current
// first. Sampler uniforms belong to the texture binding cache and must not
// be set here.

// SetInt sets an int uniform.
func (e *Effect) SetInt(name string, v int) error {
	loc, ok, err := e.changed(name, opInt, nil, []int32{int32(v)})
	if ok {
		e.cache.ctx.Uniform1i(loc, v)
	}
	return err
}

// SetInt2 sets an ivec2 uniform.
func (e *Effect) SetInt2(name string, x, y int) error {
	loc, ok, err := e.changed(name, opInt2, nil, []int32{int32(x), int32(y)})
	if ok {
		e.cache.ctx.Uniform2i(loc, x, y)
	}
	return err
}

// SetInt3 sets an ivec3 uniform.
func (e *Effect) SetInt3(name string, x, y, z int) error {
	loc, ok, err := e.changed(name, opInt3, nil, []int32{int32(x), int32(y), int32(z)})
	if ok {
		e.cache.ctx.Uniform3i(loc, x, y, z)
	}
	return err
}

// SetInt4 sets an ivec4 uniform.
func (e *Effect) SetInt4(name string, x, y, z, w int) error {
	loc, ok, err := e.changed(name, opInt4, nil, []int32{int32(x), int32(y), int32(z), int32(w)})
	if ok {
		e.cache.ctx.Uniform4i(loc, x, y, z, w)
	}
	return err
}

// SetIntArray sets an int[] uniform.
func (e *Effect) SetIntArray(name string, v []int32) error {
	return e.setInts(name, opIntArray, 1, v)
}

// SetIntArray2 sets an ivec2[] uniform from packed components.
func (e *Effect) SetIntArray2(name string, v []int32) error {
	return e.setInts(name, opIntArray2, 2, v)
}

// SetIntArray3 sets an ivec3[] uniform from packed components.
func (e *Effect) SetIntArray3(name string, v []int32) error {
	return e.setInts(name, opIntArray3, 3, v)
}

// SetIntArray4 sets an ivec4[] uniform from packed components.
func (e *Effect) SetIntArray4(name string, v []int32) error {
	return e.setInts(name, opIntArray4, 4, v)
}

func (e *Effect) setInts(name string, op uniformOp, n int, v []int32) error {
	if len(v) == 0 || len(v)%n != 0 {
		return fmt.Errorf("pipeline: %s: %d components for vectors of %d", name, len(v), n)
	}
	loc, ok, err := e.changed(name, op, nil, v)
	if !ok {
		return err
	}
	ctx := e.cache.ctx
	switch op {
	case opIntArray:
		ctx.Uniform1iv(loc, v)
	case opIntArray2:
		ctx.Uniform2iv(loc, v)
	case opIntArray3:
		ctx.Uniform3iv(loc, v)
	default:
		ctx.Uniform4iv(loc, v)
	}
	return nil
}

// SetFloat sets a float uniform.
func (e *Effect) SetFloat(name string, v float32) error {
	loc, ok, err := e.changed(name, opFloat, []float32{v}, nil)
	if ok {
		e.cache.ctx.Uniform1f(loc, v)
	}
	return err
}

// SetFloat2 sets a vec2 uniform.
func (e *Effect) SetFloat2(name string, x, y float32) error {
	loc, ok, err := e.changed(name, opFloat2, []float32{x, y}, nil)
	if ok {
		e.cache.ctx.Uniform2f(loc, x, y)
	}
	return err
}

// SetFloat3 sets a vec3 uniform.
func (e *Effect) SetFloat3(name string, x, y, z float32) error {
	loc, ok, err := e.changed(name, opFloat3, []float32{x, y, z}, nil)
	if ok {
		e.cache.ctx.Uniform3f(loc, x, y, z)
	}
	return err
}

// SetFloat4 sets a vec4 uniform.
func (e *Effect) SetFloat4(name string, x, y, z, w float32) error {
	loc, ok, err := e.changed(name, opFloat4, []float32{x, y, z, w}, nil)
	if ok {
		e.cache.ctx.Uniform4f(loc, x, y, z, w)
	}
	return err
}

// SetFloatArray sets a float[] uniform.
func (e *Effect) SetFloatArray(name string, v []float32) error {
	return e.setFloats(name, opFloatArray, 1, v)
}

// SetFloatArray2 sets a vec2[] uniform from packed components.
func (e *Effect) SetFloatArray2(name string, v []float32) error {
	return e.setFloats(name, opFloatArray2, 2, v)
}

// SetFloatArray3 sets a vec3[] uniform from packed components.
func (e *Effect) SetFloatArray3(name string, v []float32) error {
	return e.setFloats(name, opFloatArray3, 3, v)
}

// SetFloatArray4 sets a vec4[] uniform from packed components.
func (e *Effect) SetFloatArray4(name string, v []float32) error {
	return e.setFloats(name, opFloatArray4, 4, v)
}

// SetMatrix2 sets a mat2 uniform, or a mat2[] from consecutive matrices.
func (e *Effect) SetMatrix2(name string, v []float32) error {
	return e.setFloats(name, opMatrix2, 4, v)
}

// SetMatrix3 sets a mat3 uniform, or a mat3[] from consecutive matrices.
func (e *Effect) SetMatrix3(name string, v []float32) error {
	return e.setFloats(name, opMatrix3, 9, v)
}

// SetMatrix4 sets a mat4 uniform, or a mat4[] from consecutive matrices.
// Matrices are column major.
func (e *Effect) SetMatrix4(name string, v []float32) error {
	return e.setFloats(name, opMatrix4, 16, v)
}

func (e *Effect) setFloats(name string, op uniformOp, n int, v []float32) error {
	if len(v) == 0 || len(v)%n != 0 {
		return fmt.Errorf("pipeline: %s: %d components for blocks of %d", name, len(v), n)
	}
	loc, ok, err := e.changed(name, op, v, nil)
	if !ok {
		return err
	}
	ctx := e.cache.ctx
	switch op {
	case opFloatArray:
		ctx.Uniform1fv(loc, v)
	case opFloatArray2:
		ctx.Uniform2fv(loc, v)
	case opFloatArray3:
		ctx.Uniform3fv(loc, v)
	case opFloatArray4:
		ctx.Uniform4fv(loc, v)
	case opMatrix2:
		ctx.UniformMatrix2fv(loc, false, v)
	case opMatrix3:
		ctx.UniformMatrix3fv(loc, false, v)
	default:
		ctx.UniformMatrix4fv(loc, false, v)
	}
	return nil
}

// SetBool sets a bool uniform as 0 or 1.
func (e *Effect) SetBool(name string, v bool) error {
	i := 0
	if v {
		i = 1
	}
	return e.SetInt(name, i)
}
