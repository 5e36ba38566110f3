// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "sync"

// Future is the result of an asynchronous texture or shader load. It is
// resolved from any goroutine; continuations always run on the render
// thread through the owning Queue.
type Future[T any] struct {
	q *Queue

	mu    sync.Mutex
	done  bool
	value T
	err   error
	thens []func(T, error)
}

// NewFuture returns a pending future whose continuations run on q. With a
// nil queue they run inline, on the goroutine that resolves.
func NewFuture[T any](q *Queue) *Future[T] {
	return &Future[T]{q: q}
}

// Resolved returns a future that already holds value and err.
func Resolved[T any](q *Queue, value T, err error) *Future[T] {
	f := NewFuture[T](q)
	f.Resolve(value, err)
	return f
}

// Resolve completes the future. Only the first call has an effect; it
// reports whether this call won.
func (f *Future[T]) Resolve(value T, err error) bool {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return false
	}
	f.done = true
	f.value, f.err = value, err
	thens := f.thens
	f.thens = nil
	f.mu.Unlock()

	for _, fn := range thens {
		f.schedule(fn, value, err)
	}
	return true
}

// Then registers fn to receive the result. If the future is already
// resolved fn is scheduled right away, so it still runs at a frame start.
func (f *Future[T]) Then(fn func(T, error)) *Future[T] {
	f.mu.Lock()
	if !f.done {
		f.thens = append(f.thens, fn)
		f.mu.Unlock()
		return f
	}
	value, err := f.value, f.err
	f.mu.Unlock()
	f.schedule(fn, value, err)
	return f
}

func (f *Future[T]) schedule(fn func(T, error), value T, err error) {
	if f.q == nil {
		fn(value, err)
		return
	}
	f.q.Post(func() { fn(value, err) })
}

// Done reports whether the future has been resolved.
func (f *Future[T]) Done() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Result returns the resolved value and error. Before resolution it
// returns the zero value and ErrPending.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.done {
		var zero T
		return zero, ErrPending
	}
	return f.value, f.err
}
