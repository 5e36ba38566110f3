// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is the registry of native context implementations.
//
// Backends register a Factory from an init() function and are selected at
// runtime by name or by priority:
//
//	import _ "github.com/gogpu/glengine/backend/soft"
//
//	ctx, err := backend.Open(backend.Soft, backend.Config{Width: 640, Height: 480})
//
// Default tries the desktop OpenGL backend first and falls back to the
// software context.
//
// # Available Backends
//
//   - "soft": in-process software context, always available
//   - "glcore": OpenGL 4.1 core profile through GLFW, requires cgo
package backend
