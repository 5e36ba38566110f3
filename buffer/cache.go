// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// Cache owns every buffer and vertex array of one context. It is not safe
// for concurrent use.
type Cache struct {
	ctx  native.Context
	caps *caps.Caps

	buffers arena.Arena[*record]
	vaos    arena.Arena[*vaoRecord]

	// bound mirrors the generic binding point per target. A missing entry
	// means the native binding is unknown.
	bound map[native.Enum]native.Buffer

	vao       native.VertexArray
	coreVAO   native.VertexArray
	recording bool

	cachedSet     *VertexSet
	cachedVersion uint64
	cachedLayout  Layout
	cachedIndex   native.Buffer
	uint32Indices bool

	mustWipeAttribs bool
	enabled         []bool
	pointers        []pointer

	instanceLocations []int
	instanceBuffers   []native.Buffer
}

// pointer is the last attribute pointer issued for one location.
type pointer struct {
	active     bool
	buffer     native.Buffer
	size       int
	typ        native.Enum
	normalized bool
	stride     int
	offset     int
}

// New returns a cache for ctx. Desktop core contexts get a private vertex
// array that stays bound whenever the caller has no vertex array of its
// own, since they cannot draw with vertex array 0.
func New(ctx native.Context, c *caps.Caps) *Cache {
	bc := &Cache{
		ctx:   ctx,
		caps:  c,
		bound: make(map[native.Enum]native.Buffer),
	}
	bc.resetAttribState()
	bc.initCoreVAO()
	return bc
}

func (c *Cache) initCoreVAO() {
	c.coreVAO = 0
	if c.caps.Version < 2 || c.caps.ES {
		return
	}
	c.coreVAO = c.ctx.CreateVertexArray()
	c.ctx.BindVertexArray(c.coreVAO)
}

func (c *Cache) resetAttribState() {
	n := max(c.caps.MaxVertexAttribs, 1)
	c.enabled = make([]bool, n)
	c.pointers = make([]pointer, n)
	c.instanceLocations = c.instanceLocations[:0]
	c.instanceBuffers = c.instanceBuffers[:0]
}

// CoreVertexArray returns the vertex array bound in place of "none" on
// desktop core contexts, or 0.
func (c *Cache) CoreVertexArray() native.VertexArray { return c.coreVAO }

func (c *Cache) get(h Handle) (*record, error) {
	r, ok := c.buffers.Get(h.h)
	if !ok {
		return nil, ErrStale
	}
	return r, nil
}

// Info describes a live buffer.
func (c *Cache) Info(h Handle) (Info, bool) {
	r, ok := c.buffers.Get(h.h)
	if !ok {
		return Info{}, false
	}
	return Info{
		Native:     r.native,
		Kind:       r.kind,
		Size:       r.size,
		Is32Bits:   r.is32,
		Dynamic:    r.dynamic,
		References: c.buffers.Refs(h.h),
	}, true
}

// Native returns the native name behind h, or 0 for stale handles.
func (c *Cache) Native(h Handle) native.Buffer {
	if r, ok := c.buffers.Get(h.h); ok {
		return r.native
	}
	return 0
}

// Len returns the number of live buffers.
func (c *Cache) Len() int { return c.buffers.Len() }

// add registers r and allocates its native store through r.recreate.
func (c *Cache) add(r *record) (Handle, error) {
	r.recreate = func() error { return c.allocate(r) }
	if err := r.recreate(); err != nil {
		return Handle{}, err
	}
	return Handle{c.buffers.Insert(r)}, nil
}

// allocate creates the native buffer of r and uploads r.data, or reserves
// r.size bytes when there is no data.
func (c *Cache) allocate(r *record) error {
	b := c.ctx.CreateBuffer()
	if b == 0 {
		return fmt.Errorf("%w: %s", ErrCreate, r.kind)
	}
	r.native = b
	target := r.kind.target()
	if r.kind == KindIndex {
		c.bindIndex(b)
	} else {
		c.bindBuffer(target, b)
	}
	if r.data != nil {
		c.ctx.BufferData(target, r.data, r.usage())
	} else {
		c.ctx.BufferDataSize(target, r.size, r.usage())
	}
	switch r.kind {
	case KindIndex:
		c.resetIndexBufferBinding()
	case KindUniform:
		c.bindBuffer(native.UNIFORM_BUFFER, 0)
	default:
		c.resetVertexBufferBinding()
	}
	return nil
}

// CreateVertexBuffer uploads static vertex data.
func (c *Cache) CreateVertexBuffer(data []float32) (Handle, error) {
	b := native.Float32Bytes(data)
	return c.add(&record{kind: KindVertex, size: len(b), data: b})
}

// CreateDynamicVertexBuffer uploads vertex data that will be updated with
// UpdateDynamicVertexBuffer.
func (c *Cache) CreateDynamicVertexBuffer(data []float32) (Handle, error) {
	b := native.Float32Bytes(data)
	return c.add(&record{kind: KindVertex, size: len(b), data: b, dynamic: true})
}

// CreateIndexBuffer uploads index data. The buffer stores 32-bit indices
// when any index exceeds 65535 and 16-bit indices otherwise.
func (c *Cache) CreateIndexBuffer(indices []uint32, updatable bool) (Handle, error) {
	need32 := slices.ContainsFunc(indices, func(i uint32) bool { return i > 0xFFFF })
	if need32 && !c.caps.UintIndices {
		glog.For("buffer").Error("index data needs 32-bit indices", "max", slices.Max(indices))
		return Handle{}, ErrUintIndices
	}
	var b []byte
	if need32 {
		b = native.Uint32Bytes(indices)
	} else {
		b = native.Uint16Bytes(indices)
	}
	return c.add(&record{kind: KindIndex, size: len(b), data: b, is32: need32, dynamic: updatable})
}

// CreateUniformBuffer uploads static uniform block data.
func (c *Cache) CreateUniformBuffer(data []float32) (Handle, error) {
	b := native.Float32Bytes(data)
	return c.add(&record{kind: KindUniform, size: len(b), data: b})
}

// CreateDynamicUniformBuffer uploads uniform block data that will be
// updated with UpdateUniformBuffer.
func (c *Cache) CreateDynamicUniformBuffer(data []float32) (Handle, error) {
	b := native.Float32Bytes(data)
	return c.add(&record{kind: KindUniform, size: len(b), data: b, dynamic: true})
}

// CreateInstancesBuffer reserves capacity bytes for per-instance data.
func (c *Cache) CreateInstancesBuffer(capacity int) (Handle, error) {
	return c.add(&record{kind: KindInstances, size: capacity, dynamic: true})
}

// UpdateDynamicVertexBuffer writes data at byteOffset. A positive
// byteLength limits the write to the first byteLength bytes of data.
func (c *Cache) UpdateDynamicVertexBuffer(h Handle, data []byte, byteOffset, byteLength int) error {
	r, err := c.get(h)
	if err != nil {
		return err
	}
	if byteLength > 0 && byteLength < len(data) {
		data = data[:byteLength]
	}
	if err := r.write(byteOffset, data); err != nil {
		return err
	}
	c.bindBuffer(native.ARRAY_BUFFER, r.native)
	c.ctx.BufferSubData(native.ARRAY_BUFFER, byteOffset, data)
	c.resetVertexBufferBinding()
	return nil
}

// UpdateDynamicIndexBuffer writes indices starting at element offset,
// encoded at the buffer's index width.
func (c *Cache) UpdateDynamicIndexBuffer(h Handle, indices []uint32, offset int) error {
	r, err := c.get(h)
	if err != nil {
		return err
	}
	var b []byte
	if r.is32 {
		b = native.Uint32Bytes(indices)
	} else {
		if slices.ContainsFunc(indices, func(i uint32) bool { return i > 0xFFFF }) {
			return fmt.Errorf("%w: index above 65535 in a 16-bit buffer", ErrRange)
		}
		b = native.Uint16Bytes(indices)
	}
	byteOffset := offset * 2
	if r.is32 {
		byteOffset = offset * 4
	}
	if err := r.write(byteOffset, b); err != nil {
		return err
	}
	c.bindIndex(r.native)
	c.ctx.BufferSubData(native.ELEMENT_ARRAY_BUFFER, byteOffset, b)
	c.resetIndexBufferBinding()
	return nil
}

// UpdateUniformBuffer writes elements starting at float offset. A positive
// count limits the write to the first count elements.
func (c *Cache) UpdateUniformBuffer(h Handle, elements []float32, offset, count int) error {
	r, err := c.get(h)
	if err != nil {
		return err
	}
	if count > 0 && count < len(elements) {
		elements = elements[:count]
	}
	b := native.Float32Bytes(elements)
	if err := r.write(offset*4, b); err != nil {
		return err
	}
	c.BindUniformBuffer(h)
	c.ctx.BufferSubData(native.UNIFORM_BUFFER, offset*4, b)
	c.BindUniformBuffer(Handle{})
	return nil
}

// write mirrors an update into the rebuild copy.
func (r *record) write(offset int, b []byte) error {
	if offset < 0 || offset+len(b) > r.size {
		return fmt.Errorf("%w: %d bytes at %d in %d-byte %s", ErrRange, len(b), offset, r.size, r.kind)
	}
	if r.data == nil {
		r.data = make([]byte, r.size)
	}
	copy(r.data[offset:], b)
	return nil
}

// Retain adds an owner to h and returns the new reference count.
func (c *Cache) Retain(h Handle) (int, error) {
	n, err := c.buffers.Retain(h.h)
	if err != nil {
		return 0, ErrStale
	}
	return n, nil
}

// Release drops an owner of h. The native buffer is deleted when the last
// owner lets go, and freed reports that it happened.
func (c *Cache) Release(h Handle) (freed bool, err error) {
	r, freed, err := c.buffers.Release(h.h)
	if err != nil {
		return false, ErrStale
	}
	if freed {
		c.deleteNative(r.native)
	}
	return freed, nil
}

// deleteNative deletes b and drops it from every binding cache, mirroring
// the native rule that deleting a bound buffer unbinds it.
func (c *Cache) deleteNative(b native.Buffer) {
	c.ctx.DeleteBuffer(b)
	for target, cur := range c.bound {
		if cur == b {
			c.bound[target] = 0
		}
	}
	if c.cachedIndex == b {
		c.cachedIndex = 0
	}
	for i := range c.pointers {
		if c.pointers[i].buffer == b {
			c.pointers[i].active = false
		}
	}
}

// WipeCaches forgets cached vertex and index bindings and unbinds them.
// With bruteForce every attribute is disabled and every binding is
// treated as unknown, so nothing is elided afterwards.
func (c *Cache) WipeCaches(bruteForce bool) {
	if bruteForce {
		clear(c.bound)
		c.ctx.BindVertexArray(c.coreVAO)
		c.vao = 0
		c.leftVertexArray()
		c.UnbindAllAttributes()
	} else {
		c.unbindVertexArray()
	}
	c.resetVertexBufferBinding()
	c.cachedIndex = 0
	c.cachedLayout = nil
	c.bindIndex(0)
}

// Dispose deletes every buffer and vertex array, including the private
// core vertex array.
func (c *Cache) Dispose() {
	var vaos, bufs []arena.Handle
	c.vaos.Each(func(h arena.Handle, v *vaoRecord) {
		c.ctx.DeleteVertexArray(v.native)
		vaos = append(vaos, h)
	})
	c.buffers.Each(func(h arena.Handle, r *record) {
		c.ctx.DeleteBuffer(r.native)
		bufs = append(bufs, h)
	})
	for _, h := range vaos {
		c.vaos.Remove(h)
	}
	for _, h := range bufs {
		c.buffers.Remove(h)
	}
	if c.coreVAO != 0 {
		c.ctx.DeleteVertexArray(c.coreVAO)
		c.coreVAO = 0
	}
	clear(c.bound)
	c.vao = 0
	c.cachedSet, c.cachedLayout, c.cachedIndex = nil, nil, 0
}

// RebuildAll recreates every buffer and vertex array on a fresh context
// after a context loss. Handles stay valid; native names change.
func (c *Cache) RebuildAll() error {
	clear(c.bound)
	c.vao = 0
	c.recording = false
	c.cachedSet, c.cachedLayout, c.cachedIndex = nil, nil, 0
	c.mustWipeAttribs = false
	c.resetAttribState()
	c.initCoreVAO()

	var errs []error
	c.buffers.Each(func(_ arena.Handle, r *record) {
		if err := r.recreate(); err != nil {
			errs = append(errs, err)
		}
	})
	c.vaos.Each(func(_ arena.Handle, v *vaoRecord) {
		if err := v.recreate(); err != nil {
			errs = append(errs, err)
		}
	})
	if len(errs) == 0 {
		glog.For("buffer").Debug("buffers rebuilt", "buffers", c.buffers.Len(), "vertexArrays", c.vaos.Len())
	}
	return errors.Join(errs...)
}
