// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package loader turns texture sources into pixel data.
//
// A Registry holds the Loaders an engine may use; it is built by the
// caller and injected, so different engines can carry different codec
// sets. A Service fetches bytes, picks a loader by file extension, decodes
// on a worker goroutine and resolves a frame.Future whose continuations
// run on the render thread.
package loader

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
)

// Errors returned by loaders and the Service.
var (
	ErrNoLoader  = errors.New("loader: no loader for extension")
	ErrEmptyData = errors.New("loader: empty data")
	ErrCubeFaces = errors.New("loader: a cube needs six faces")
	ErrClosed    = errors.New("loader: service closed")
)

// Data is decoded level-0 pixel data.
type Data struct {
	Width, Height int
	// Pixels is tightly packed non-premultiplied RGBA8, top row first.
	Pixels []byte
	// Mipmaps reports that the payload carries its own mip chain, so the
	// texture must not generate one.
	Mipmaps bool
	// Compressed reports a GPU-compressed payload.
	Compressed bool
}

// Size returns the byte size of the pixel payload.
func (d *Data) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Pixels)
}

// Loader decodes one family of file formats.
type Loader interface {
	// CanLoad reports whether the loader understands files with the given
	// lower-case extension, including the leading dot.
	CanLoad(ext string) bool
	// LoadData decodes a single image.
	LoadData(data []byte) (*Data, error)
	// LoadCubeData decodes the six faces of a cube map, in +X -X +Y -Y +Z
	// -Z order.
	LoadCubeData(faces [][]byte) ([]*Data, error)
}

// Registry is an ordered set of loaders. The first loader whose CanLoad
// accepts an extension wins. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	loaders []Loader
}

// NewRegistry returns a registry holding loaders in priority order.
func NewRegistry(loaders ...Loader) *Registry {
	r := &Registry{}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// DefaultRegistry returns a new registry with the image loader.
func DefaultRegistry() *Registry { return NewRegistry(NewImageLoader()) }

// Register appends l with the lowest priority.
func (r *Registry) Register(l Loader) {
	if l == nil {
		return
	}
	r.mu.Lock()
	r.loaders = append(r.loaders, l)
	r.mu.Unlock()
}

// Find returns the loader for ext.
func (r *Registry) Find(ext string) (Loader, error) {
	ext = strings.ToLower(ext)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.loaders {
		if l.CanLoad(ext) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrNoLoader, ext)
}

// Len returns the number of registered loaders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.loaders)
}

// Ext returns the lower-case extension of a texture URL. Data URLs yield
// the extension of their media type, so "data:image/png;base64,..." gives
// ".png".
func Ext(url string) string {
	if rest, ok := strings.CutPrefix(url, "data:"); ok {
		mime, _, _ := strings.Cut(rest, ";")
		mime, _, _ = strings.Cut(mime, ",")
		if _, sub, ok := strings.Cut(mime, "/"); ok {
			if sub == "jpeg" {
				sub = "jpg"
			}
			return "." + strings.ToLower(sub)
		}
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.ToLower(path.Ext(url))
}

// LoadError reports a texture source that could not be loaded, after the
// fallback was tried.
type LoadError struct {
	URL     string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }
