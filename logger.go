// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"log/slog"

	"github.com/gogpu/glengine/internal/glog"
)

// SetLogger configures the logger for glengine and all its sub-packages.
// By default, glengine produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by glengine:
//   - [slog.LevelDebug]: cache decisions (evictions, rebuilds, sample counts)
//   - [slog.LevelInfo]: lifecycle events (capabilities probed, context restored)
//   - [slog.LevelWarn]: defaulted limits and downgraded formats
//   - [slog.LevelError]: unsupported features turned into no-ops
//
// Every record carries a "component" attribute naming the subsystem.
//
// Example:
//
//	glengine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) { glog.Set(l) }

// Logger returns the current logger used by glengine.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger { return glog.Logger() }
