// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"github.com/gogpu/glengine/backend"
	"github.com/gogpu/glengine/native"
)

func init() {
	backend.Register(backend.Soft, func(cfg backend.Config) (native.Context, error) {
		return New(Options{Width: cfg.Width, Height: cfg.Height, Version: cfg.Version}), nil
	})
}

// SwapBuffers implements backend.Presenter. It only records the call.
func (d *Device) SwapBuffers() { d.rec("SwapBuffers") }
