// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package buffer owns vertex, index, uniform and instance buffers and the
// vertex-array state that references them.
//
// Buffers live in a generation-checked arena: a Handle stays valid until
// its last owner releases it, and a stale Handle is rejected instead of
// touching a recycled native name. Binds are elided against a per-target
// cache that always mirrors the native binding, except while a vertex
// array is being recorded, when every bind is forced through.
package buffer

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/native"
)

// Errors returned by the cache.
var (
	// ErrCreate is returned when the context refuses to allocate a buffer
	// or vertex array, typically because it is lost.
	ErrCreate = errors.New("buffer: creation failed")

	// ErrStale is returned for released or foreign handles.
	ErrStale = errors.New("buffer: stale handle")

	// ErrUintIndices is returned for index data above 65535 on contexts
	// without 32-bit index support.
	ErrUintIndices = errors.New("buffer: 32-bit indices not supported")

	// ErrRange is returned for updates outside the allocated store.
	ErrRange = errors.New("buffer: update out of range")
)

// Kind is the role a buffer was created for.
type Kind uint8

// Buffer kinds.
const (
	KindVertex Kind = iota
	KindIndex
	KindUniform
	KindInstances
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex buffer"
	case KindIndex:
		return "index buffer"
	case KindUniform:
		return "uniform buffer"
	case KindInstances:
		return "instances buffer"
	default:
		return "buffer"
	}
}

func (k Kind) target() native.Enum {
	switch k {
	case KindIndex:
		return native.ELEMENT_ARRAY_BUFFER
	case KindUniform:
		return native.UNIFORM_BUFFER
	default:
		return native.ARRAY_BUFFER
	}
}

// Handle refers to a buffer owned by a Cache. The zero Handle means "no
// buffer" wherever a Handle is accepted.
type Handle struct{ h arena.Handle }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.h.IsZero() }

// Info describes a live buffer.
type Info struct {
	Native     native.Buffer
	Kind       Kind
	Size       int
	Is32Bits   bool
	Dynamic    bool
	References int
}

// IndexFormat returns the element format of an index buffer.
func (i Info) IndexFormat() gputypes.IndexFormat {
	if i.Is32Bits {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// record is the cache-side state of one buffer. data mirrors the full
// store so the buffer can be recreated after a context loss.
type record struct {
	native   native.Buffer
	kind     Kind
	size     int
	is32     bool
	dynamic  bool
	data     []byte
	recreate func() error
}

func (r *record) usage() native.Enum {
	if r.dynamic {
		return native.DYNAMIC_DRAW
	}
	return native.STATIC_DRAW
}

// VertexBuffer describes how one attribute reads from a buffer.
type VertexBuffer struct {
	Buffer Handle
	// Size is the number of components per vertex, 1 to 4.
	Size int
	// Type is the component type. Zero means FLOAT.
	Type       native.Enum
	Normalized bool
	// Stride in bytes. Zero means tightly packed.
	Stride int
	Offset int
	// Instanced attributes advance once per Divisor instances. A zero
	// Divisor on an instanced attribute means 1.
	Instanced bool
	Divisor   int
}

func (vb VertexBuffer) componentType() native.Enum {
	if vb.Type == 0 {
		return native.FLOAT
	}
	return vb.Type
}

func (vb VertexBuffer) divisor() int {
	if vb.Divisor <= 0 {
		return 1
	}
	return vb.Divisor
}

// VertexSet maps attribute names to vertex buffers. Every mutation bumps
// a version so the cache notices changes made through the same set.
type VertexSet struct {
	buffers map[string]VertexBuffer
	version uint64
}

// NewVertexSet returns an empty set.
func NewVertexSet() *VertexSet {
	return &VertexSet{buffers: make(map[string]VertexBuffer)}
}

// Set assigns the buffer feeding an attribute.
func (s *VertexSet) Set(name string, vb VertexBuffer) {
	s.buffers[name] = vb
	s.version++
}

// Remove drops an attribute.
func (s *VertexSet) Remove(name string) {
	if _, ok := s.buffers[name]; ok {
		delete(s.buffers, name)
		s.version++
	}
}

// Get returns the buffer feeding an attribute.
func (s *VertexSet) Get(name string) (VertexBuffer, bool) {
	vb, ok := s.buffers[name]
	return vb, ok
}

// Len returns the number of attributes in the set.
func (s *VertexSet) Len() int { return len(s.buffers) }

// Layout resolves attribute names to native locations. Linked pipelines
// implement it. Implementations must be comparable, pointer types are.
type Layout interface {
	// AttributeNames lists the attributes in declaration order.
	AttributeNames() []string
	// AttributeLocation returns the location of a named attribute, or -1
	// when the program does not use it.
	AttributeLocation(name string) int
}
