// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package loader

import (
	"context"
	"strings"
	"sync"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/cache"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/internal/workers"
)

// DefaultCacheBytes is the decoded image budget used when NewService is
// given zero.
const DefaultCacheBytes = 64 << 20

// Request describes one texture source.
type Request struct {
	URL string
	// Fallback is tried once when URL fails to fetch or decode.
	Fallback string
	// Ext forces the extension used to pick a loader.
	Ext string
	// Buffer holds already fetched bytes; URL is then only a cache key.
	Buffer []byte
}

// Service fetches and decodes texture sources off the render thread on a
// worker pool started by the first Load. Decoded images are cached by URL
// and shared; their pixels must not be modified.
type Service struct {
	registry *Registry
	fetcher  Fetcher
	queue    *frame.Queue
	decoded  *cache.Cache[*Data]
	inflight sync.WaitGroup

	mu     sync.Mutex
	pool   *workers.Pool
	closed bool
}

// NewService returns a service resolving futures through q. A nil fetcher
// uses DefaultFetcher and cacheBytes <= 0 selects DefaultCacheBytes.
func NewService(r *Registry, f Fetcher, q *frame.Queue, cacheBytes int) *Service {
	if r == nil {
		r = DefaultRegistry()
	}
	if f == nil {
		f = &DefaultFetcher{}
	}
	if cacheBytes <= 0 {
		cacheBytes = DefaultCacheBytes
	}
	return &Service{
		registry: r,
		fetcher:  f,
		queue:    q,
		decoded:  cache.New[*Data](cacheBytes, (*Data).Size),
	}
}

// Registry returns the injected loader registry.
func (s *Service) Registry() *Registry { return s.registry }

// Load decodes req on the worker pool.
func (s *Service) Load(ctx context.Context, req Request) *frame.Future[*Data] {
	f := frame.NewFuture[*Data](s.queue)
	if !s.submit(func() { f.Resolve(s.Decode(ctx, req)) }) {
		f.Resolve(nil, ErrClosed)
	}
	return f
}

// LoadCube decodes six face URLs on the worker pool.
func (s *Service) LoadCube(ctx context.Context, urls []string, ext string) *frame.Future[[]*Data] {
	f := frame.NewFuture[[]*Data](s.queue)
	if len(urls) != 6 {
		f.Resolve(nil, ErrCubeFaces)
		return f
	}
	if !s.submit(func() { f.Resolve(s.DecodeCube(ctx, urls, ext)) }) {
		f.Resolve(nil, ErrClosed)
	}
	return f
}

func (s *Service) submit(job func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.pool == nil {
		s.pool = workers.New(0)
	}
	p := s.pool
	s.inflight.Add(1)
	s.mu.Unlock()

	if !p.Submit(func() {
		defer s.inflight.Done()
		job()
	}) {
		s.inflight.Done()
		return false
	}
	return true
}

// Wait blocks until every pending Load has resolved its future.
func (s *Service) Wait() { s.inflight.Wait() }

// Close finishes the pending loads and stops the worker pool. Later loads
// resolve with ErrClosed.
func (s *Service) Close() {
	s.mu.Lock()
	p := s.pool
	s.closed = true
	s.mu.Unlock()
	if p != nil {
		p.Close()
	}
}

// Purge empties the decoded image cache.
func (s *Service) Purge() { s.decoded.Clear() }

// Decode fetches and decodes req on the calling goroutine. When req.URL
// fails and a fallback is set, the fallback is tried once before a
// *LoadError is returned.
func (s *Service) Decode(ctx context.Context, req Request) (*Data, error) {
	d, err := s.decode(ctx, req.URL, req.Ext, req.Buffer)
	if err == nil {
		return d, nil
	}
	if req.Fallback != "" && req.Fallback != req.URL {
		glog.For("loader").Warn("texture load failed, retrying with fallback",
			"url", req.URL, "fallback", req.Fallback, "err", err)
		fd, ferr := s.decode(ctx, req.Fallback, "", nil)
		if ferr == nil {
			return fd, nil
		}
		err = ferr
	}
	return nil, &LoadError{URL: req.URL, Message: "unable to load " + shortURL(req.URL), Err: err}
}

// DecodeCube decodes six faces with the loader picked by ext, or by the
// extension of the first face.
func (s *Service) DecodeCube(ctx context.Context, urls []string, ext string) ([]*Data, error) {
	if len(urls) != 6 {
		return nil, ErrCubeFaces
	}
	if ext == "" {
		ext = Ext(urls[0])
	}
	l, err := s.registry.Find(ext)
	if err != nil {
		return nil, &LoadError{URL: urls[0], Message: "unable to load cube " + shortURL(urls[0]), Err: err}
	}
	faces := make([][]byte, 6)
	for i, u := range urls {
		if faces[i], err = s.fetcher.Fetch(ctx, u); err != nil {
			return nil, &LoadError{URL: u, Message: "unable to load cube face " + shortURL(u), Err: err}
		}
	}
	out, err := l.LoadCubeData(faces)
	if err != nil {
		return nil, &LoadError{URL: urls[0], Message: "unable to decode cube " + shortURL(urls[0]), Err: err}
	}
	return out, nil
}

func (s *Service) decode(ctx context.Context, url, ext string, buf []byte) (*Data, error) {
	if ext == "" {
		ext = Ext(url)
	}
	cacheable := buf == nil && url != "" && !strings.HasPrefix(url, "data:")
	if cacheable {
		if d, ok := s.decoded.Get(url); ok {
			return d, nil
		}
	}
	l, err := s.registry.Find(ext)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		if buf, err = s.fetcher.Fetch(ctx, url); err != nil {
			return nil, err
		}
	}
	d, err := l.LoadData(buf)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.decoded.Set(url, d)
	}
	return d, nil
}

// shortURL keeps data URLs out of error messages.
func shortURL(u string) string {
	if strings.HasPrefix(u, "data:") {
		return "data URL"
	}
	return u
}
