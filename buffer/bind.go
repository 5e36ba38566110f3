// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"fmt"

	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/native"
)

// VertexArray refers to a recorded vertex array owned by a Cache.
type VertexArray struct{ h arena.Handle }

// IsZero reports whether v is the zero handle.
func (v VertexArray) IsZero() bool { return v.h.IsZero() }

type vaoRecord struct {
	native   native.VertexArray
	set      *VertexSet
	index    Handle
	layout   Layout
	recreate func() error
}

// Bound returns the buffer the cache believes is bound to target. Unknown
// bindings report 0.
func (c *Cache) Bound(target native.Enum) native.Buffer { return c.bound[target] }

// BoundVertexArray returns the caller vertex array currently bound, or 0.
func (c *Cache) BoundVertexArray() native.VertexArray { return c.vao }

// Recording reports whether a vertex array is being recorded.
func (c *Cache) Recording() bool { return c.recording }

// bindBuffer is the single path to BindBuffer. It elides the call when
// the cached binding matches, except while recording.
func (c *Cache) bindBuffer(target native.Enum, b native.Buffer) {
	if cur, ok := c.bound[target]; ok && cur == b && !c.recording {
		return
	}
	c.ctx.BindBuffer(target, b)
	c.bound[target] = b
}

func (c *Cache) resolve(h Handle) (native.Buffer, *record, error) {
	if h.IsZero() {
		return 0, nil, nil
	}
	r, err := c.get(h)
	if err != nil {
		return 0, nil, err
	}
	return r.native, r, nil
}

// BindArrayBuffer binds h to ARRAY_BUFFER. The zero handle unbinds.
func (c *Cache) BindArrayBuffer(h Handle) error {
	b, _, err := c.resolve(h)
	if err != nil {
		return err
	}
	c.bindBuffer(native.ARRAY_BUFFER, b)
	return nil
}

// BindUniformBuffer binds h to the generic UNIFORM_BUFFER point. The zero
// handle unbinds.
func (c *Cache) BindUniformBuffer(h Handle) error {
	b, _, err := c.resolve(h)
	if err != nil {
		return err
	}
	c.bindBuffer(native.UNIFORM_BUFFER, b)
	return nil
}

// BindUniformBufferBase binds h to an indexed uniform block binding.
// The generic UNIFORM_BUFFER binding changes with it.
func (c *Cache) BindUniformBufferBase(h Handle, location int) error {
	b, _, err := c.resolve(h)
	if err != nil {
		return err
	}
	c.ctx.BindBufferBase(native.UNIFORM_BUFFER, location, b)
	c.bound[native.UNIFORM_BUFFER] = b
	return nil
}

// BindIndexBuffer binds h to ELEMENT_ARRAY_BUFFER and selects its index
// width for the following draws. Outside recording this first leaves any
// bound vertex array, since element bindings belong to it.
func (c *Cache) BindIndexBuffer(h Handle) error {
	b, r, err := c.resolve(h)
	if err != nil {
		return err
	}
	c.bindIndex(b)
	c.cachedIndex = b
	c.uint32Indices = r != nil && r.is32
	return nil
}

func (c *Cache) bindIndex(b native.Buffer) {
	if !c.recording {
		c.unbindVertexArray()
	}
	c.bindBuffer(native.ELEMENT_ARRAY_BUFFER, b)
}

func (c *Cache) bindIndexWithCache(h Handle) {
	b, r, err := c.resolve(h)
	if err != nil || b == 0 {
		return
	}
	if c.cachedIndex != b {
		c.cachedIndex = b
		c.bindIndex(b)
		c.uint32Indices = r.is32
	}
}

func (c *Cache) resetVertexBufferBinding() {
	c.bindBuffer(native.ARRAY_BUFFER, 0)
	c.cachedSet = nil
}

func (c *Cache) resetIndexBufferBinding() {
	c.bindIndex(0)
	c.cachedIndex = 0
}

// IndexType returns the element type of the current index buffer.
func (c *Cache) IndexType() native.Enum {
	if c.uint32Indices {
		return native.UNSIGNED_INT
	}
	return native.UNSIGNED_SHORT
}

// IndexSize returns the byte size of one element of the current index
// buffer.
func (c *Cache) IndexSize() int {
	if c.uint32Indices {
		return 4
	}
	return 2
}

// BindBuffers makes the attributes of layout read from set and binds
// index. Attribute pointers are re-issued only when the set, its contents
// or the layout changed since the previous call. Attributes the layout
// does not use, or that have no buffer in set, are skipped.
func (c *Cache) BindBuffers(set *VertexSet, index Handle, layout Layout) {
	if c.cachedSet != set || c.cachedVersion != set.version || c.cachedLayout != layout {
		c.cachedSet = set
		c.cachedVersion = set.version
		c.cachedLayout = layout

		c.unbindVertexArray()
		c.UnbindAllAttributes()
		c.bindAttributes(set, layout)
	}
	c.bindIndexWithCache(index)
}

// bindAttributes enables and points every attribute layout uses at its
// buffer in set. While recording, the attribute cache is left alone since
// the state lands in the vertex array being recorded.
func (c *Cache) bindAttributes(set *VertexSet, layout Layout) {
	for _, name := range layout.AttributeNames() {
		loc := layout.AttributeLocation(name)
		if loc < 0 || loc >= len(c.enabled) {
			continue
		}
		vb, ok := set.Get(name)
		if !ok {
			continue
		}
		r, ok := c.buffers.Get(vb.Buffer.h)
		if !ok {
			continue
		}
		if c.recording || !c.enabled[loc] {
			c.ctx.EnableVertexAttribArray(loc)
			if !c.recording {
				c.enabled[loc] = true
			}
		}
		c.vertexAttribPointer(r.native, loc, vb.Size, vb.componentType(), vb.Normalized, vb.Stride, vb.Offset)
		if vb.Instanced {
			c.ctx.VertexAttribDivisor(loc, vb.divisor())
			if !c.recording {
				c.instanceLocations = append(c.instanceLocations, loc)
				c.instanceBuffers = append(c.instanceBuffers, r.native)
			}
		}
	}
}

func (c *Cache) vertexAttribPointer(b native.Buffer, loc, size int, typ native.Enum, normalized bool, stride, offset int) {
	p := pointer{
		active:     true,
		buffer:     b,
		size:       size,
		typ:        typ,
		normalized: normalized,
		stride:     stride,
		offset:     offset,
	}
	if !c.recording && c.pointers[loc] == p {
		return
	}
	c.bindBuffer(native.ARRAY_BUFFER, b)
	c.ctx.VertexAttribPointer(loc, size, typ, normalized, stride, offset)
	if !c.recording {
		c.pointers[loc] = p
	}
}

// UnbindAllAttributes disables every enabled vertex attribute. After a
// vertex array was bound or recorded every location is disabled, since
// the cache no longer knows which ones are enabled.
func (c *Cache) UnbindAllAttributes() {
	if c.mustWipeAttribs {
		c.mustWipeAttribs = false
		for i := range c.enabled {
			c.disableAttribute(i)
		}
		return
	}
	for i, on := range c.enabled {
		if on {
			c.disableAttribute(i)
		}
	}
}

func (c *Cache) disableAttribute(loc int) {
	c.ctx.DisableVertexAttribArray(loc)
	c.enabled[loc] = false
	c.pointers[loc].active = false
}

// UnbindInstanceAttributes resets the divisor of every attribute set up
// for instancing since the last call.
func (c *Cache) UnbindInstanceAttributes() {
	for _, loc := range c.instanceLocations {
		c.ctx.VertexAttribDivisor(loc, 0)
	}
	c.instanceLocations = c.instanceLocations[:0]
	c.instanceBuffers = c.instanceBuffers[:0]
}

// DisableInstanceAttribute stops instancing on one location and disables
// it. Locations that were not instanced are left alone.
func (c *Cache) DisableInstanceAttribute(loc int) {
	found := false
	for i := 0; i < len(c.instanceLocations); {
		if c.instanceLocations[i] == loc {
			c.instanceLocations = append(c.instanceLocations[:i], c.instanceLocations[i+1:]...)
			c.instanceBuffers = append(c.instanceBuffers[:i], c.instanceBuffers[i+1:]...)
			found = true
			continue
		}
		i++
	}
	if found {
		c.ctx.VertexAttribDivisor(loc, 0)
		c.disableAttribute(loc)
	}
}

// DisableInstanceAttributeByName resolves name through layout and calls
// DisableInstanceAttribute.
func (c *Cache) DisableInstanceAttributeByName(layout Layout, name string) {
	if loc := layout.AttributeLocation(name); loc >= 0 {
		c.DisableInstanceAttribute(loc)
	}
}

// InstanceAttributes returns the locations currently set up for
// instancing, in setup order.
func (c *Cache) InstanceAttributes() []int {
	return append([]int(nil), c.instanceLocations...)
}

// RecordVertexArray creates a vertex array capturing the attribute setup
// of layout reading from set, plus index. Every bind is forced through
// while recording. The vertex array is re-recorded by RebuildAll.
func (c *Cache) RecordVertexArray(set *VertexSet, index Handle, layout Layout) (VertexArray, error) {
	v := &vaoRecord{set: set, index: index, layout: layout}
	v.recreate = func() error { return c.record(v) }
	if err := v.recreate(); err != nil {
		return VertexArray{}, err
	}
	return VertexArray{c.vaos.Insert(v)}, nil
}

func (c *Cache) record(v *vaoRecord) error {
	vao := c.ctx.CreateVertexArray()
	if vao == 0 {
		return fmt.Errorf("%w: vertex array", ErrCreate)
	}
	v.native = vao

	c.recording = true
	c.ctx.BindVertexArray(vao)
	c.mustWipeAttribs = true
	c.UnbindAllAttributes()
	c.bindAttributes(v.set, v.layout)
	b, _, _ := c.resolve(v.index)
	c.bindIndex(b)
	c.recording = false

	c.ctx.BindVertexArray(c.coreVAO)
	c.leftVertexArray()
	c.vao = 0
	return nil
}

// BindVertexArray binds a recorded vertex array. index only selects the
// index width for the following draws; the element binding itself was
// captured when recording.
func (c *Cache) BindVertexArray(v VertexArray, index Handle) error {
	rec, ok := c.vaos.Get(v.h)
	if !ok {
		return ErrStale
	}
	if c.vao == rec.native {
		return nil
	}
	_, r, err := c.resolve(index)
	if err != nil {
		return err
	}
	c.vao = rec.native
	c.ctx.BindVertexArray(rec.native)
	c.leftVertexArray()
	c.uint32Indices = r != nil && r.is32
	return nil
}

// unbindVertexArray returns to the private core vertex array, or to none.
func (c *Cache) unbindVertexArray() {
	if c.vao == 0 {
		return
	}
	c.vao = 0
	c.ctx.BindVertexArray(c.coreVAO)
	c.leftVertexArray()
}

// leftVertexArray drops the per-vertex-array caches after the bound
// vertex array changed.
func (c *Cache) leftVertexArray() {
	delete(c.bound, native.ELEMENT_ARRAY_BUFFER)
	c.cachedSet = nil
	c.cachedLayout = nil
	c.cachedIndex = 0
	c.mustWipeAttribs = true
}

// ReleaseVertexArray deletes a recorded vertex array.
func (c *Cache) ReleaseVertexArray(v VertexArray) error {
	rec, ok := c.vaos.Remove(v.h)
	if !ok {
		return ErrStale
	}
	c.ctx.DeleteVertexArray(rec.native)
	if c.vao == rec.native {
		c.vao = 0
		if c.coreVAO != 0 {
			c.ctx.BindVertexArray(c.coreVAO)
		}
		c.leftVertexArray()
	}
	return nil
}

// VertexArrays returns the number of recorded vertex arrays.
func (c *Cache) VertexArrays() int { return c.vaos.Len() }
