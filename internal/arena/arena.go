// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package arena stores reference-counted values behind generation-checked
// handles. A handle whose slot was freed and reused no longer resolves, so
// a forgotten release cannot turn into a use-after-free.
package arena

import "errors"

// ErrStale is returned for handles that are zero, out of range, or whose
// slot has since been freed.
var ErrStale = errors.New("arena: stale or invalid handle")

// Handle identifies a slot. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

type slot[T any] struct {
	value T
	gen   uint32
	refs  int
	live  bool
}

// Arena is a slab of reference-counted values. The zero value is ready to
// use. An Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// Insert stores v with a reference count of one.
func (a *Arena[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.value = v
	s.refs = 1
	s.live = true
	a.live++
	return Handle{index: idx, gen: s.gen}
}

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	if h.gen == 0 || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}

// Get returns the value behind h.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if s := a.lookup(h); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Set replaces the value behind h without touching its reference count.
func (a *Arena[T]) Set(h Handle, v T) error {
	s := a.lookup(h)
	if s == nil {
		return ErrStale
	}
	s.value = v
	return nil
}

// Retain adds an owner and returns the new reference count.
func (a *Arena[T]) Retain(h Handle) (int, error) {
	s := a.lookup(h)
	if s == nil {
		return 0, ErrStale
	}
	s.refs++
	return s.refs, nil
}

// Refs returns the reference count, or zero for stale handles.
func (a *Arena[T]) Refs(h Handle) int {
	if s := a.lookup(h); s != nil {
		return s.refs
	}
	return 0
}

// Release drops an owner. When the count reaches zero the slot is freed and
// its value returned with freed set, so the caller can destroy it.
func (a *Arena[T]) Release(h Handle) (v T, freed bool, err error) {
	s := a.lookup(h)
	if s == nil {
		return v, false, ErrStale
	}
	s.refs--
	if s.refs > 0 {
		return s.value, false, nil
	}
	v = a.drop(h.index)
	return v, true, nil
}

// Remove frees the slot regardless of its reference count.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	if a.lookup(h) == nil {
		var zero T
		return zero, false
	}
	return a.drop(h.index), true
}

func (a *Arena[T]) drop(idx uint32) T {
	s := &a.slots[idx]
	v := s.value
	var zero T
	s.value = zero
	s.refs = 0
	s.live = false
	a.free = append(a.free, idx)
	a.live--
	return v
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int { return a.live }

// Each calls fn for every live slot in index order. fn must not insert or
// remove.
func (a *Arena[T]) Each(fn func(Handle, T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(Handle{index: uint32(i), gen: s.gen}, s.value)
		}
	}
}
