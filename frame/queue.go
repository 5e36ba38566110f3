// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "sync"

// Queue collects work posted from any goroutine and runs it on the render
// thread when the loop drains it at the start of a frame.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// Post schedules fn for the next drain. It is safe for concurrent use.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of tasks waiting for the next drain.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs every task posted before the call, in posting order, and
// returns how many ran. Tasks posted while draining wait for the next
// drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	tasks := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}
