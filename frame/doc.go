// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame drives per-frame rendering on a single render thread.
//
// A Loop runs registered render functions once per Tick, measures frame
// rate, and reports deterministic lockstep steps. Work that completes on
// other goroutines (image decoding, shader translation) comes back through
// a Queue, which the Loop drains at the start of every frame, and is
// exposed to callers as a Future whose continuations run there.
package frame
