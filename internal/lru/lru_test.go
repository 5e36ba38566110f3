// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lru

import (
	"slices"
	"testing"
)

func keys(l *List[string]) []string {
	var out []string
	l.Walk(func(k string) bool {
		out = append(out, k)
		return true
	})
	return out
}

func TestPushAndOldest(t *testing.T) {
	var l List[string]
	l.PushFront("a")
	l.PushFront("b")
	l.PushFront("c")

	if got, _ := l.Oldest(); got != "a" {
		t.Errorf("Oldest() = %q, want %q", got, "a")
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(keys(&l), want) {
		t.Errorf("Walk order = %v, want %v", keys(&l), want)
	}
}

func TestMoveToFront(t *testing.T) {
	var l List[string]
	a := l.PushFront("a")
	l.PushFront("b")
	l.MoveToFront(a)

	if got, _ := l.Oldest(); got != "b" {
		t.Errorf("Oldest() after touch = %q, want %q", got, "b")
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestRemoveAndRelink(t *testing.T) {
	var l List[string]
	a := l.PushFront("a")
	l.PushFront("b")

	l.Remove(a)
	if a.Linked() {
		t.Error("removed node still reports Linked")
	}
	l.Remove(a)
	if l.Len() != 1 {
		t.Fatalf("Len() after double remove = %d, want 1", l.Len())
	}

	l.MoveToFront(a)
	if want := []string{"b", "a"}; !slices.Equal(keys(&l), want) {
		t.Errorf("Walk order = %v, want %v", keys(&l), want)
	}
}

func TestRemoveOldestEmpty(t *testing.T) {
	var l List[int]
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest() on empty list returned ok")
	}
	l.PushFront(1)
	if k, ok := l.RemoveOldest(); !ok || k != 1 {
		t.Errorf("RemoveOldest() = %d, %v, want 1, true", k, ok)
	}
}

func TestClear(t *testing.T) {
	var l List[int]
	n := l.PushFront(1)
	l.PushFront(2)
	l.Clear()
	if l.Len() != 0 || n.Linked() {
		t.Errorf("Clear left Len() = %d, Linked = %v", l.Len(), n.Linked())
	}
}
