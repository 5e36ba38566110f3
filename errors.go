// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import "errors"

var (
	// ErrInvalidOptions is returned by New and Options.Validate.
	ErrInvalidOptions = errors.New("glengine: invalid options")

	// ErrContextLost is returned by operations refused while the context
	// is lost.
	ErrContextLost = errors.New("glengine: context lost")

	// ErrDisposed is returned by operations on a disposed engine.
	ErrDisposed = errors.New("glengine: engine disposed")

	// ErrNoEffect is returned by draws issued without a ready effect.
	ErrNoEffect = errors.New("glengine: no effect enabled")
)
