// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultIsSilent(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestForAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { Set(nil) })

	For("texture").Warn("placeholder used")

	out := buf.String()
	if !strings.Contains(out, "component=texture") {
		t.Errorf("log output %q missing component tag", out)
	}
	if !strings.Contains(out, "placeholder used") {
		t.Errorf("log output %q missing message", out)
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	Set(slog.Default())
	Set(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("Set(nil) should restore the silent logger")
	}
}
