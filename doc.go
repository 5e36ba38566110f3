// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glengine is a GPU command and resource caching layer over an
// OpenGL ES 3 / WebGL 2 style API.
//
// # Overview
//
// Higher layers describe what should be drawn; the Engine decides, call by
// call, whether the native state actually has to change, and owns every
// native object it creates so that each is created once, reused and
// deleted exactly once.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/glengine"
//	    "github.com/gogpu/glengine/backend"
//	    _ "github.com/gogpu/glengine/backend/glcore"
//	)
//
//	e, err := glengine.Open(backend.GLCore, backend.Config{Width: 800, Height: 600, Visible: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Dispose()
//
//	eff, _ := e.CreateEffect(pipeline.EffectOptions{...})
//	e.RunRenderLoop(func() {
//	    e.Clear(&gputypes.Color{A: 1}, true, true, false)
//	    _ = e.EnableEffect(eff)
//	    e.BindBuffers(set, indices, eff)
//	    _ = e.Draw(true, 0, count, 0)
//	})
//	for !window.ShouldClose() {
//	    e.Tick()
//	}
//
// # Architecture
//
// The Engine composes one cache per concern, each in its own package:
//   - caps: capability probe
//   - state: depth/cull, stencil and blending trackers
//   - buffer: buffers, attribute pointers and vertex arrays
//   - texture: textures, texture units with LRU eviction, placeholders
//   - pipeline: effects with synchronous or parallel compilation
//   - target: render targets with depth/stencil, MSAA and MRT
//   - frame: the render loop, FPS and futures run at frame start
//   - loader: image decoding behind an injected registry
//
// Native contexts come from backend: backend/glcore drives desktop OpenGL
// through GLFW and backend/soft is a recording software device used by
// the tests.
//
// # Threading
//
// An Engine and its context belong to one goroutine, normally the one
// locked to the main OS thread. Only image fetching and decoding run
// elsewhere; their results are delivered at the start of the next frame.
//
// # Context Loss
//
// Every resource keeps what it needs to recreate itself. After a loss,
// RestoreContext probes the capabilities again, rebuilds every buffer,
// texture, render target and effect under its existing handle, and wipes
// the binding caches.
package glengine

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
