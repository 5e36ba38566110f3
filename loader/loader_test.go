// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/gogpu/glengine/frame"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// mapFetcher serves fixed payloads and counts requests.
type mapFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	hits  map[string]int
}

func newMapFetcher(files map[string][]byte) *mapFetcher {
	return &mapFetcher{files: files, hits: map[string]int{}}
}

func (m *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[url]++
	b, ok := m.files[url]
	if !ok {
		return nil, os.ErrNotExist
	}
	return b, nil
}

func TestExt(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"textures/brick.PNG", ".png"},
		{"https://example.com/a/b.jpg?v=2", ".jpg"},
		{"data:image/jpeg;base64,AAAA", ".jpg"},
		{"data:image/webp;base64,AAAA", ".webp"},
		{"noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Ext(tt.url); got != tt.want {
				t.Errorf("Ext() = %q, want %q", got, tt.want)
			}
		})
	}
}

type stubLoader struct{ ext string }

func (s stubLoader) CanLoad(ext string) bool              { return ext == s.ext }
func (stubLoader) LoadData([]byte) (*Data, error)         { return &Data{Width: 1, Height: 1}, nil }
func (stubLoader) LoadCubeData([][]byte) ([]*Data, error) { return nil, nil }

func TestRegistryFind(t *testing.T) {
	first := stubLoader{ext: ".png"}
	r := NewRegistry(first, NewImageLoader())

	l, err := r.Find(".PNG")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(stubLoader); !ok {
		t.Errorf("Find(.png) = %T, want the first registered loader", l)
	}
	if l, _ := r.Find(".bmp"); l == nil {
		t.Error("Find(.bmp) found nothing")
	}
	if _, err := r.Find(".ktx"); !errors.Is(err, ErrNoLoader) {
		t.Errorf("Find(.ktx) error = %v, want ErrNoLoader", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestImageLoaderDecodesPNG(t *testing.T) {
	d, err := NewImageLoader().LoadData(pngBytes(t, 2, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 40}))
	if err != nil {
		t.Fatal(err)
	}
	if d.Width != 2 || d.Height != 3 || len(d.Pixels) != 24 {
		t.Fatalf("decoded %dx%d with %d bytes", d.Width, d.Height, len(d.Pixels))
	}
	if got := d.Pixels[:4]; !bytes.Equal(got, []byte{10, 20, 30, 40}) {
		t.Errorf("first pixel = %v, want [10 20 30 40]", got)
	}
	if _, err := NewImageLoader().LoadData(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("LoadData(nil) error = %v, want ErrEmptyData", err)
	}
}

func TestDecodeRetriesFallbackOnce(t *testing.T) {
	f := newMapFetcher(map[string][]byte{"fallback.png": pngBytes(t, 1, 1, color.NRGBA{A: 255})})
	s := NewService(nil, f, nil, 0)

	d, err := s.Decode(context.Background(), Request{URL: "missing.png", Fallback: "fallback.png"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if d.Width != 1 {
		t.Errorf("Width = %d, want 1", d.Width)
	}
	if f.hits["missing.png"] != 1 || f.hits["fallback.png"] != 1 {
		t.Errorf("hits = %v, want one fetch each", f.hits)
	}
}

func TestDecodeErrorAfterFallback(t *testing.T) {
	f := newMapFetcher(map[string][]byte{})
	s := NewService(nil, f, nil, 0)

	_, err := s.Decode(context.Background(), Request{URL: "a.png", Fallback: "b.png"})
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Decode() error = %v, want *LoadError", err)
	}
	if le.URL != "a.png" || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadError = %+v", le)
	}
	if f.hits["b.png"] != 1 {
		t.Errorf("fallback fetched %d times, want 1", f.hits["b.png"])
	}
}

func TestDecodeCachesByURL(t *testing.T) {
	f := newMapFetcher(map[string][]byte{"a.png": pngBytes(t, 4, 4, color.NRGBA{R: 255, A: 255})})
	s := NewService(nil, f, nil, 0)
	ctx := context.Background()

	d1, err1 := s.Decode(ctx, Request{URL: "a.png"})
	d2, err2 := s.Decode(ctx, Request{URL: "a.png"})
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if d1 != d2 {
		t.Error("second decode did not share the cached image")
	}
	if f.hits["a.png"] != 1 {
		t.Errorf("fetched %d times, want 1", f.hits["a.png"])
	}
	s.Purge()
	if _, err := s.Decode(ctx, Request{URL: "a.png"}); err != nil {
		t.Fatal(err)
	}
	if f.hits["a.png"] != 2 {
		t.Errorf("fetched %d times after Purge, want 2", f.hits["a.png"])
	}
}

func TestLoadResolvesOnQueue(t *testing.T) {
	q := &frame.Queue{}
	f := newMapFetcher(map[string][]byte{"a.png": pngBytes(t, 2, 2, color.NRGBA{A: 255})})
	s := NewService(nil, f, q, 0)
	defer s.Close()

	var got *Data
	s.Load(context.Background(), Request{URL: "a.png"}).Then(func(d *Data, err error) {
		if err == nil {
			got = d
		}
	})
	s.Wait()
	if got != nil {
		t.Fatal("continuation ran before the queue was drained")
	}
	q.Drain()
	if got == nil || got.Width != 2 {
		t.Errorf("got = %+v, want a 2x2 image", got)
	}
}

func TestLoadAfterClose(t *testing.T) {
	q := &frame.Queue{}
	f := newMapFetcher(map[string][]byte{"a.png": pngBytes(t, 2, 2, color.NRGBA{A: 255})})
	s := NewService(nil, f, q, 0)

	var first error = errors.New("unresolved")
	s.Load(context.Background(), Request{URL: "a.png"}).Then(func(_ *Data, err error) { first = err })
	s.Close()
	s.Close()

	var second error
	s.Load(context.Background(), Request{URL: "a.png"}).Then(func(_ *Data, err error) { second = err })
	q.Drain()
	if first != nil {
		t.Errorf("load queued before Close error = %v, want nil", first)
	}
	if !errors.Is(second, ErrClosed) {
		t.Errorf("load after Close error = %v, want ErrClosed", second)
	}
}

func TestDecodeCube(t *testing.T) {
	files := map[string][]byte{}
	urls := []string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"}
	for _, u := range urls {
		files[u] = pngBytes(t, 2, 2, color.NRGBA{G: 255, A: 255})
	}
	s := NewService(nil, newMapFetcher(files), nil, 0)

	faces, err := s.DecodeCube(context.Background(), urls, "")
	if err != nil || len(faces) != 6 {
		t.Fatalf("DecodeCube() = %d faces, %v", len(faces), err)
	}
	if _, err := s.DecodeCube(context.Background(), urls[:5], ""); !errors.Is(err, ErrCubeFaces) {
		t.Errorf("five faces error = %v, want ErrCubeFaces", err)
	}
}

func TestDefaultFetcherDataURL(t *testing.T) {
	raw := pngBytes(t, 1, 1, color.NRGBA{B: 255, A: 255})
	u := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	b, err := (&DefaultFetcher{}).Fetch(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, raw) {
		t.Error("data URL payload mismatch")
	}
	if _, err := (&DefaultFetcher{}).Fetch(context.Background(), "data:nocomma"); err == nil {
		t.Error("malformed data URL accepted")
	}
}

func TestPowerOfTwo(t *testing.T) {
	tests := []struct {
		v                    int
		ceil, floor, nearest int
	}{
		{1, 1, 1, 1},
		{5, 8, 4, 4},
		{6, 8, 4, 8},
		{7, 8, 4, 8},
		{64, 64, 64, 64},
		{300, 512, 256, 256},
	}
	for _, tt := range tests {
		if got := CeilingPOT(tt.v); got != tt.ceil {
			t.Errorf("CeilingPOT(%d) = %d, want %d", tt.v, got, tt.ceil)
		}
		if got := FloorPOT(tt.v); got != tt.floor {
			t.Errorf("FloorPOT(%d) = %d, want %d", tt.v, got, tt.floor)
		}
		if got := NearestPOT(tt.v); got != tt.nearest {
			t.Errorf("NearestPOT(%d) = %d, want %d", tt.v, got, tt.nearest)
		}
	}
	if got := ExponentOfTwo(1000, 512); got != 512 {
		t.Errorf("ExponentOfTwo(1000, 512) = %d, want 512", got)
	}
}

func TestRescale(t *testing.T) {
	d, err := NewImageLoader().LoadData(pngBytes(t, 3, 5, color.NRGBA{R: 200, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	r := Rescale(d, 4, 4)
	if r.Width != 4 || r.Height != 4 || len(r.Pixels) != 64 {
		t.Fatalf("Rescale() = %dx%d with %d bytes", r.Width, r.Height, len(r.Pixels))
	}
	if diff(r.Pixels[0], 200) > 1 || diff(r.Pixels[3], 255) > 1 {
		t.Errorf("uniform image changed colour: %v", r.Pixels[:4])
	}
	if Rescale(d, 3, 5) != d {
		t.Error("same-size Rescale copied the image")
	}
}

func diff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
