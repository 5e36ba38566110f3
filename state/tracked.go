// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package state tracks fixed-function GPU state and emits native calls
// only for fields that changed since they were last applied.
//
// Every tracker follows the same protocol: setters store the desired value
// only, Apply diffs desired against applied and emits the minimal calls,
// and Reset forgets what was applied so the next Apply emits everything.
package state

// tracked is one elided field. The applied value is only meaningful while
// known is true.
type tracked[T comparable] struct {
	want    T
	applied T
	known   bool
}

func (t *tracked[T]) set(v T) { t.want = v }

func (t *tracked[T]) get() T { return t.want }

// dirty reports whether the next apply must emit this field.
func (t *tracked[T]) dirty() bool { return !t.known || t.want != t.applied }

// commit records the desired value as applied.
func (t *tracked[T]) commit() {
	t.applied = t.want
	t.known = true
}

// invalidate marks the applied value unknown, keeping the desired one.
func (t *tracked[T]) invalidate() { t.known = false }

// forget marks the applied value unknown and restores v as desired.
func (t *tracked[T]) forget(v T) {
	t.want = v
	t.known = false
}
