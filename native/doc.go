// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native defines the immediate-mode graphics API that glengine
// drives, the handle types it hands out and the GL enumerants it speaks.
//
// Two implementations live under backend/: soft, a software reference
// device used by the tests, and glcore, a desktop OpenGL 4.1 core binding.
package native
