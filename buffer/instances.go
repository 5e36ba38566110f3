// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// InstanceAttribute describes one per-instance attribute inside an
// instances buffer.
type InstanceAttribute struct {
	// Name is resolved through the layout when set; otherwise Location
	// is used as is.
	Name     string
	Location int
	// Size is the number of float components.
	Size       int
	Type       native.Enum
	Normalized bool
	Offset     int
	// Divisor defaults to 1.
	Divisor int
}

// MatrixAttributes describes a 4x4 float matrix spread over four vec4
// attribute locations, the usual layout of per-instance world matrices.
func MatrixAttributes(locations [4]int) []InstanceAttribute {
	out := make([]InstanceAttribute, 4)
	for i, loc := range locations {
		out[i] = InstanceAttribute{Location: loc, Size: 4, Offset: i * 16}
	}
	return out
}

// BindInstancesBuffer points attrs at h with per-instance divisors. The
// stride is the sum of the attribute sizes.
func (c *Cache) BindInstancesBuffer(h Handle, attrs []InstanceAttribute, layout Layout) error {
	b, _, err := c.resolve(h)
	if err != nil {
		return err
	}
	c.bindBuffer(native.ARRAY_BUFFER, b)
	stride := 0
	for _, a := range attrs {
		stride += a.Size * 4
	}
	for _, a := range attrs {
		loc := a.Location
		if a.Name != "" && layout != nil {
			loc = layout.AttributeLocation(a.Name)
		}
		if loc < 0 || loc >= len(c.enabled) {
			continue
		}
		if !c.enabled[loc] {
			c.ctx.EnableVertexAttribArray(loc)
			c.enabled[loc] = true
		}
		typ := a.Type
		if typ == 0 {
			typ = native.FLOAT
		}
		c.vertexAttribPointer(b, loc, a.Size, typ, a.Normalized, stride, a.Offset)
		div := a.Divisor
		if div <= 0 {
			div = 1
		}
		c.ctx.VertexAttribDivisor(loc, div)
		c.instanceLocations = append(c.instanceLocations, loc)
		c.instanceBuffers = append(c.instanceBuffers, b)
	}
	return nil
}

// UpdateAndBindInstancesBuffer uploads data at the start of h, when data
// is not nil, and binds attrs as BindInstancesBuffer does.
func (c *Cache) UpdateAndBindInstancesBuffer(h Handle, data []float32, attrs []InstanceAttribute, layout Layout) error {
	r, err := c.get(h)
	if err != nil {
		return err
	}
	if data != nil {
		b := native.Float32Bytes(data)
		if err := r.write(0, b); err != nil {
			return err
		}
		c.bindBuffer(native.ARRAY_BUFFER, r.native)
		c.ctx.BufferSubData(native.ARRAY_BUFFER, 0, b)
	}
	return c.BindInstancesBuffer(h, attrs, layout)
}

// Instances is a growable instances buffer. Its capacity doubles whenever
// an update does not fit, releasing the previous buffer.
type Instances struct {
	c        *Cache
	h        Handle
	capacity int
}

// NewInstances reserves an instances buffer of at least capacity bytes.
func (c *Cache) NewInstances(capacity int) (*Instances, error) {
	capacity = max(capacity, 64)
	h, err := c.CreateInstancesBuffer(capacity)
	if err != nil {
		return nil, err
	}
	return &Instances{c: c, h: h, capacity: capacity}, nil
}

// Handle returns the current buffer. It changes when the buffer grows.
func (in *Instances) Handle() Handle { return in.h }

// Capacity returns the current capacity in bytes.
func (in *Instances) Capacity() int { return in.capacity }

// Update grows the buffer to fit data, uploads it and binds attrs.
func (in *Instances) Update(data []float32, attrs []InstanceAttribute, layout Layout) error {
	need := len(data) * 4
	if need > in.capacity {
		capacity := in.capacity
		for capacity < need {
			capacity *= 2
		}
		h, err := in.c.CreateInstancesBuffer(capacity)
		if err != nil {
			return err
		}
		if _, err := in.c.Release(in.h); err != nil {
			glog.For("buffer").Warn("releasing outgrown instances buffer", "err", err)
		}
		glog.For("buffer").Debug("instances buffer grown", "from", in.capacity, "to", capacity)
		in.h, in.capacity = h, capacity
	}
	return in.c.UpdateAndBindInstancesBuffer(in.h, data, attrs, layout)
}

// Release frees the buffer.
func (in *Instances) Release() error {
	_, err := in.c.Release(in.h)
	in.h = Handle{}
	return err
}
