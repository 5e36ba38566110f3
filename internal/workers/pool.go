// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package workers runs background jobs, such as image fetching and
// decoding, on a fixed set of goroutines.
package workers

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs jobs on a fixed number of goroutines. Each worker owns a
// queue and steals from the others when its own is empty, so one slow
// fetch does not hold back the jobs queued behind it.
//
// Pool is safe for concurrent use.
type Pool struct {
	queues []chan func()
	busy   []atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup

	// submit serializes Submit against Close so no job is sent on a
	// queue that Close has already drained.
	submit  sync.RWMutex
	running atomic.Bool
	pending atomic.Int64
}

// New starts a pool of n workers. n <= 0 selects GOMAXPROCS.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	size := max(n*4, 8)

	p := &Pool{
		queues: make([]chan func(), n),
		busy:   make([]atomic.Bool, n),
		done:   make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), size)
	}
	p.running.Store(true)

	p.wg.Add(n)
	for i := range n {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(id)
			return
		case job := <-own:
			p.run(id, job)
		default:
			if job := p.steal(id); job != nil {
				p.run(id, job)
				continue
			}
			select {
			case <-p.done:
				p.drain(id)
				return
			case job := <-own:
				p.run(id, job)
			}
		}
	}
}

func (p *Pool) run(id int, job func()) {
	p.busy[id].Store(true)
	defer func() {
		p.busy[id].Store(false)
		p.pending.Add(-1)
	}()
	job()
}

func (p *Pool) drain(id int) {
	for {
		select {
		case job := <-p.queues[id]:
			p.run(id, job)
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i, q := range p.queues {
		if i == id {
			continue
		}
		select {
		case job := <-q:
			return job
		default:
		}
	}
	return nil
}

// Submit queues job on the least loaded worker, counting a running job as
// one queued job. It blocks while
// every queue is full and reports false, without running job, once the
// pool is closed.
func (p *Pool) Submit(job func()) bool {
	if job == nil {
		return false
	}
	p.submit.RLock()
	defer p.submit.RUnlock()
	if !p.running.Load() {
		return false
	}

	idx, best := 0, -1
	for i, q := range p.queues {
		load := len(q)
		if p.busy[i].Load() {
			load++
		}
		if best < 0 || load < best {
			idx, best = i, load
		}
	}
	p.pending.Add(1)
	p.queues[idx] <- job
	return true
}

// Close stops accepting jobs, runs every job already queued and waits for
// the workers to exit. Close is idempotent.
func (p *Pool) Close() {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return len(p.queues) }

// Running reports whether the pool still accepts jobs.
func (p *Pool) Running() bool { return p.running.Load() }

// Pending returns the number of jobs queued or running.
func (p *Pool) Pending() int { return int(p.pending.Load()) }
