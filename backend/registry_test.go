// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/glengine/native"
)

type fakeContext struct {
	native.Context
	swaps  int
	closed bool
}

func (f *fakeContext) SwapBuffers() { f.swaps++ }

func (f *fakeContext) Close() error {
	f.closed = true
	return nil
}

func TestRegisterAndOpen(t *testing.T) {
	want := &fakeContext{}
	var got Config
	Register("fake", func(cfg Config) (native.Context, error) {
		got = cfg
		return want, nil
	})
	defer Unregister("fake")

	if !IsRegistered("fake") {
		t.Fatal("IsRegistered(fake) = false")
	}
	if !slices.Contains(Available(), "fake") {
		t.Errorf("Available() = %v, missing fake", Available())
	}
	ctx, err := Open("fake", Config{Width: 32, Height: 16})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if ctx != want {
		t.Error("Open() returned a different context")
	}
	if got.Width != 32 || got.Height != 16 {
		t.Errorf("factory config = %+v", got)
	}

	Present(ctx)
	if want.swaps != 1 {
		t.Errorf("swaps = %d, want 1", want.swaps)
	}
	if err := Close(ctx); err != nil || !want.closed {
		t.Errorf("Close() = %v, closed = %v", err, want.closed)
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("does-not-exist", Config{})
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenFactoryError(t *testing.T) {
	boom := errors.New("no display")
	Register("broken", func(Config) (native.Context, error) { return nil, boom })
	defer Unregister("broken")

	_, err := Open("broken", Config{})
	if !errors.Is(err, ErrContextCreation) || !errors.Is(err, boom) {
		t.Errorf("Open() error = %v, want wrapped ErrContextCreation and cause", err)
	}
}

func TestDefaultFallsBack(t *testing.T) {
	if len(Available()) > 0 {
		t.Skip("registry not empty")
	}
	Register(GLCore, func(Config) (native.Context, error) { return nil, errors.New("no gpu") })
	defer Unregister(GLCore)
	fallback := &fakeContext{}
	Register(Soft, func(Config) (native.Context, error) { return fallback, nil })
	defer Unregister(Soft)

	ctx, name, err := Default(Config{})
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if name != Soft || ctx != fallback {
		t.Errorf("Default() = %q, want %q", name, Soft)
	}
}

func TestDefaultEmpty(t *testing.T) {
	if len(Available()) > 0 {
		t.Skip("registry not empty")
	}
	if _, _, err := Default(Config{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() error = %v, want ErrBackendNotAvailable", err)
	}
}
