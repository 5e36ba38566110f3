// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/glengine/native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrContextCreation is returned when a backend could not create a context.
	ErrContextCreation = errors.New("backend: context creation failed")
)

// Backend name constants.
const (
	// Soft is the name of the in-process software context.
	Soft = "soft"
	// GLCore is the name of the desktop OpenGL core profile context.
	GLCore = "glcore"
)

// Config describes the context a backend should create.
type Config struct {
	// Width and Height size the default framebuffer.
	Width, Height int
	// Title is the window title for windowed backends.
	Title string
	// Visible shows the window. Headless use keeps it hidden.
	Visible bool
	// Samples requests a multisampled default framebuffer.
	Samples int
	// Version requests the API version, 1 or 2. Zero picks the backend's best.
	Version int
}

// Factory creates a native context for cfg.
type Factory func(cfg Config) (native.Context, error)

// Presenter is implemented by contexts that own a swap chain.
type Presenter interface {
	SwapBuffers()
}

// Closer is implemented by contexts that hold OS resources.
type Closer interface {
	Close() error
}

// Present swaps ctx's buffers when it has any.
func Present(ctx native.Context) {
	if p, ok := ctx.(Presenter); ok {
		p.SwapBuffers()
	}
}

// Close releases ctx's OS resources when it holds any.
func Close(ctx native.Context) error {
	if c, ok := ctx.(Closer); ok {
		return c.Close()
	}
	return nil
}
