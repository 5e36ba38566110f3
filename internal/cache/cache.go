// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a sharded, cost-bounded LRU cache keyed by string.
//
// The loader keeps decoded images here so that several textures created
// from the same URL share one decode. Each shard holds its own mutex and
// recency list; the cost budget is split evenly between shards.
//
//	c := cache.New[*loader.Data](64<<20, func(d *loader.Data) int { return len(d.Pixels) })
//	c.Set(url, data)
//	data, ok := c.Get(url)
//
// A Cache is safe for concurrent use and must not be copied.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glengine/internal/lru"
)

// ShardCount is the number of shards. It must be a power of two.
const ShardCount = 16

const shardMask = ShardCount - 1

// Cost reports the weight of a value against the cache budget.
type Cost[V any] func(V) int

// Cache maps strings to values, evicting least recently used entries
// once the summed cost of a shard exceeds its share of the budget.
type Cache[V any] struct {
	shards [ShardCount]*shard[V]
	cost   Cost[V]
	budget int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	recency lru.List[string]
	used    int
	limit   int
}

type entry[V any] struct {
	value V
	cost  int
	node  *lru.Node[string]
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Cost      int
	Budget    int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New returns a cache holding at most budget cost units. A nil cost
// weighs every value as 1, and a budget <= 0 disables eviction.
func New[V any](budget int, cost Cost[V]) *Cache[V] {
	if cost == nil {
		cost = func(V) int { return 1 }
	}
	c := &Cache[V]{cost: cost, budget: budget}
	limit := 0
	if budget > 0 {
		limit = max(budget/ShardCount, 1)
	}
	for i := range c.shards {
		c.shards[i] = &shard[V]{entries: make(map[string]*entry[V]), limit: limit}
	}
	return c
}

func (c *Cache[V]) shardFor(key string) *shard[V] {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key)) // never fails
	return c.shards[h.Sum64()&shardMask]
}

// Get returns the value stored under key and marks it recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.recency.MoveToFront(e.node)
	}
	s.mu.Unlock()
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key. A value heavier than a whole shard is not
// cached at all.
func (c *Cache[V]) Set(key string, value V) {
	cost := c.cost(value)
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.used -= e.cost
		s.recency.Remove(e.node)
		delete(s.entries, key)
	}
	if s.limit > 0 && cost > s.limit {
		return
	}
	for s.limit > 0 && s.used+cost > s.limit {
		oldest, ok := s.recency.RemoveOldest()
		if !ok {
			break
		}
		s.used -= s.entries[oldest].cost
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
	s.entries[key] = &entry[V]{value: value, cost: cost, node: s.recency.PushFront(key)}
	s.used += cost
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.recency.Remove(e.node)
	s.used -= e.cost
	delete(s.entries, key)
	return true
}

// Clear drops every entry. Counters are kept.
func (c *Cache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]*entry[V])
		s.recency.Clear()
		s.used = 0
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Cache[V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Stats returns current counters.
func (c *Cache[V]) Stats() Stats {
	st := Stats{
		Budget:    c.budget,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
	for _, s := range c.shards {
		s.mu.Lock()
		st.Len += len(s.entries)
		st.Cost += s.used
		s.mu.Unlock()
	}
	return st
}
