// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package workers

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"explicit", 3, 3},
		{"zero", 0, runtime.GOMAXPROCS(0)},
		{"negative", -2, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.n)
			defer p.Close()
			if p.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", p.Workers(), tt.want)
			}
			if !p.Running() {
				t.Error("Running() = false after New")
			}
		})
	}
}

func TestSubmitRunsEveryJob(t *testing.T) {
	p := New(4)
	var n atomic.Int64
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		if !p.Submit(func() { defer wg.Done(); n.Add(1) }) {
			t.Fatal("Submit() = false on a running pool")
		}
	}
	wg.Wait()
	p.Close()
	if n.Load() != 200 {
		t.Errorf("ran %d jobs, want 200", n.Load())
	}
	if p.Pending() != 0 {
		t.Errorf("Pending() = %d after Close, want 0", p.Pending())
	}
}

func TestSubmitNil(t *testing.T) {
	p := New(1)
	defer p.Close()
	if p.Submit(nil) {
		t.Error("Submit(nil) = true, want false")
	}
}

func TestCloseRunsQueuedJobs(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	var n atomic.Int64
	p.Submit(func() { <-release; n.Add(1) })
	for range 5 {
		p.Submit(func() { n.Add(1) })
	}
	close(release)
	p.Close()
	if n.Load() != 6 {
		t.Errorf("ran %d jobs before Close returned, want 6", n.Load())
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()
	ran := false
	if p.Submit(func() { ran = true }) {
		t.Error("Submit() = true after Close")
	}
	if ran || p.Running() {
		t.Errorf("ran = %t, Running() = %t, want false, false", ran, p.Running())
	}
}

func TestSlowJobDoesNotBlockQueue(t *testing.T) {
	p := New(2)
	defer p.Close()

	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{})
	p.Submit(func() { close(started); <-block })
	<-started

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second job did not run while the first was blocked")
	}
}
