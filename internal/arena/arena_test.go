// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package arena

import (
	"errors"
	"testing"
)

func TestInsertGet(t *testing.T) {
	var a Arena[string]
	h := a.Insert("vbo")
	if h.IsZero() {
		t.Fatal("Insert returned zero handle")
	}
	v, ok := a.Get(h)
	if !ok || v != "vbo" {
		t.Errorf("Get() = %q, %v, want %q, true", v, ok, "vbo")
	}
	if got := a.Refs(h); got != 1 {
		t.Errorf("Refs() = %d, want 1", got)
	}
}

func TestRetainRelease(t *testing.T) {
	var a Arena[int]
	h := a.Insert(7)
	if n, err := a.Retain(h); err != nil || n != 2 {
		t.Fatalf("Retain() = %d, %v, want 2, nil", n, err)
	}

	if _, freed, err := a.Release(h); err != nil || freed {
		t.Fatalf("first Release() freed = %v, err = %v, want false, nil", freed, err)
	}
	if got := a.Refs(h); got != 1 {
		t.Errorf("Refs() after one release = %d, want 1", got)
	}

	v, freed, err := a.Release(h)
	if err != nil || !freed || v != 7 {
		t.Fatalf("second Release() = %d, %v, %v, want 7, true, nil", v, freed, err)
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	var a Arena[int]
	old := a.Insert(1)
	if _, _, err := a.Release(old); err != nil {
		t.Fatal(err)
	}
	fresh := a.Insert(2)

	if _, ok := a.Get(old); ok {
		t.Error("stale handle still resolves after slot reuse")
	}
	if _, err := a.Retain(old); !errors.Is(err, ErrStale) {
		t.Errorf("Retain(stale) error = %v, want ErrStale", err)
	}
	if v, ok := a.Get(fresh); !ok || v != 2 {
		t.Errorf("Get(fresh) = %d, %v, want 2, true", v, ok)
	}
}

func TestZeroHandle(t *testing.T) {
	var a Arena[int]
	if _, _, err := a.Release(Handle{}); !errors.Is(err, ErrStale) {
		t.Errorf("Release(zero) error = %v, want ErrStale", err)
	}
}

func TestEachAndRemove(t *testing.T) {
	var a Arena[int]
	h1 := a.Insert(1)
	a.Insert(2)
	a.Retain(h1)

	if _, ok := a.Remove(h1); !ok {
		t.Fatal("Remove() = false")
	}
	sum := 0
	a.Each(func(_ Handle, v int) { sum += v })
	if sum != 2 {
		t.Errorf("Each sum = %d, want 2", sum)
	}
}
