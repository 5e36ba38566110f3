// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/internal/arena"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/internal/lru"
	"github.com/gogpu/glengine/loader"
	"github.com/gogpu/glengine/native"
)

// Options configures a Manager.
type Options struct {
	// DisableBindingOptimization binds every texture to the channel the
	// material asks for instead of the unit it already occupies.
	DisableBindingOptimization bool
	// ForcePowerOfTwo rescales loaded images to power-of-two sizes even on
	// contexts that accept other sizes. Version 1 contexts always do.
	ForcePowerOfTwo bool
	// DisableFlipYCache issues UNPACK_FLIP_Y before every upload.
	DisableFlipYCache bool
	// Loader resolves URL sources. Without it URL creation fails with
	// ErrNoLoader.
	Loader *loader.Service
}

// placeholder kinds.
const (
	placeholder2D = iota
	placeholderCube
	placeholder3D
	placeholder2DArray
	placeholderKinds
)

// unit target bits.
const (
	bit2D uint8 = 1 << iota
	bitCube
	bit3D
	bit2DArray
)

func targetBit(target native.Enum) uint8 {
	switch target {
	case native.TEXTURE_CUBE_MAP:
		return bitCube
	case native.TEXTURE_3D:
		return bit3D
	case native.TEXTURE_2D_ARRAY:
		return bit2DArray
	default:
		return bit2D
	}
}

// Manager owns every texture of one context and the state of its texture
// units. It is not safe for concurrent use.
type Manager struct {
	ctx  native.Context
	caps *caps.Caps
	opts Options

	textures arena.Arena[*Texture]
	loaded   map[string]*Texture

	// bound holds the texture each unit was last bound to by this cache.
	// targets records every bind target a unit may still hold natively.
	bound   []*Texture
	targets []uint8
	free    []int
	tracker lru.List[*Texture]

	activeChannel  int
	currentChannel int

	program      native.Program
	uniforms     map[int]Uniform
	uniformState map[Uniform]int

	epoch      uint64
	collisions int

	placeholders [placeholderKinds]*Texture
	flipY        int

	releaseHooks []func(*Texture)
}

// New returns a manager for ctx.
func New(ctx native.Context, c *caps.Caps, opts Options) *Manager {
	m := &Manager{
		ctx:          ctx,
		caps:         c,
		opts:         opts,
		loaded:       make(map[string]*Texture),
		uniforms:     make(map[int]Uniform),
		uniformState: make(map[Uniform]int),
		epoch:        1,
	}
	m.resetUnits()
	return m
}

func (m *Manager) resetUnits() {
	n := max(m.caps.MaxCombinedTexturesImageUnits, 1)
	m.bound = make([]*Texture, n)
	m.targets = make([]uint8, n)
	m.tracker.Clear()
	m.resetFree()
	m.activeChannel = 0
	m.currentChannel = -1
	m.flipY = -1
}

func (m *Manager) resetFree() {
	m.free = m.free[:0]
	for i := range m.bound {
		m.free = append(m.free, i)
	}
}

// Units returns the number of texture units managed.
func (m *Manager) Units() int { return len(m.bound) }

// Len returns the number of live textures, placeholders included.
func (m *Manager) Len() int { return m.textures.Len() }

// Collisions returns how many binds had to evict another texture.
func (m *Manager) Collisions() int { return m.collisions }

// ResetCollisions zeroes the collision counter, typically once a frame.
func (m *Manager) ResetCollisions() { m.collisions = 0 }

// NextDraw ends the current draw call. Textures bound for it become
// eligible for eviction again.
func (m *Manager) NextDraw() { m.epoch++ }

// OnRelease registers fn to run before a texture is destroyed, so owners
// such as framebuffers can detach it.
func (m *Manager) OnRelease(fn func(*Texture)) {
	if fn != nil {
		m.releaseHooks = append(m.releaseHooks, fn)
	}
}

// IsLive reports whether t is still owned by m.
func (m *Manager) IsLive(t *Texture) bool {
	if t == nil {
		return false
	}
	got, ok := m.textures.Get(t.handle)
	return ok && got == t
}

// Textures returns the loaded textures, ready or not, in arena order.
func (m *Manager) Textures() []*Texture {
	out := make([]*Texture, 0, m.textures.Len())
	m.textures.Each(func(_ arena.Handle, t *Texture) {
		if t.source != SourcePlaceholder {
			out = append(out, t)
		}
	})
	return out
}

// register stores t and allocates its native object through t.recreate.
func (m *Manager) register(t *Texture, recreate func() error) error {
	t.recreate = recreate
	if err := recreate(); err != nil {
		if t.native != 0 {
			m.ctx.DeleteTexture(t.native)
			t.native = 0
		}
		return err
	}
	t.handle = m.textures.Insert(t)
	return nil
}

// allocate gives t a fresh native name.
func (m *Manager) allocate(t *Texture) error {
	n := m.ctx.CreateTexture()
	if n == 0 {
		return fmt.Errorf("%w: %s texture", ErrCreate, t.source)
	}
	t.native = n
	t.forgetSamplerState()
	return nil
}

// Retain adds an owner to t and returns the new reference count.
func (m *Manager) Retain(t *Texture) (int, error) {
	if !m.IsLive(t) {
		return 0, ErrStale
	}
	n, err := m.textures.Retain(t.handle)
	if err != nil {
		return 0, ErrStale
	}
	return n, nil
}

// References returns the reference count of t, 0 once released.
func (m *Manager) References(t *Texture) int {
	if !m.IsLive(t) {
		return 0
	}
	return m.textures.Refs(t.handle)
}

// Release drops an owner of t. When the last owner lets go the release
// hooks run, t leaves the binding cache and the native texture is
// deleted; freed reports that it happened.
func (m *Manager) Release(t *Texture) (freed bool, err error) {
	if !m.IsLive(t) {
		return false, ErrStale
	}
	_, freed, err = m.textures.Release(t.handle)
	if err != nil {
		return false, ErrStale
	}
	if freed {
		m.destroy(t)
	}
	return freed, nil
}

func (m *Manager) destroy(t *Texture) {
	for _, fn := range m.releaseHooks {
		fn(t)
	}
	m.forget(t)
	if t.native != 0 {
		m.ctx.DeleteTexture(t.native)
		t.native = 0
	}
	if t.key != "" && m.loaded[t.key] == t {
		delete(m.loaded, t.key)
	}
	t.data, t.faces, t.raw = nil, nil, nil
	t.ready = false
	if d := t.depthStencil; d != nil {
		t.depthStencil = nil
		if m.IsLive(d) {
			_, _ = m.Release(d)
		}
	}
}

// forget drops t from the binding cache, mirroring the native rule that
// deleting a texture unbinds it from every unit.
func (m *Manager) forget(t *Texture) {
	bit := targetBit(t.Target())
	if slot := m.removeDesignatedSlot(t); slot >= 0 {
		m.targets[slot] &^= bit
	}
	for ch, b := range m.bound {
		if b == t {
			m.bound[ch] = nil
			m.targets[ch] &^= bit
			m.freeSlot(ch)
		}
	}
}

// WipeCaches forgets the binding cache. With bruteForce the unpack state
// and the sampler uniform values are forgotten as well.
func (m *Manager) WipeCaches(bruteForce bool) {
	m.ResetTextureCache()
	if bruteForce {
		m.flipY = -1
		clear(m.uniformState)
	}
}

// ForgetProgram drops the sampler uniform state recorded for p, which
// must be called when p is deleted.
func (m *Manager) ForgetProgram(p native.Program) {
	for u := range m.uniformState {
		if u.Program == p {
			delete(m.uniformState, u)
		}
	}
	for ch, u := range m.uniforms {
		if u.Program == p {
			delete(m.uniforms, ch)
		}
	}
}

// Dispose deletes every texture, placeholders included.
func (m *Manager) Dispose() {
	var all []arena.Handle
	m.textures.Each(func(h arena.Handle, t *Texture) {
		if t.native != 0 {
			m.ctx.DeleteTexture(t.native)
			t.native = 0
		}
		t.ready = false
		all = append(all, h)
	})
	for _, h := range all {
		m.textures.Remove(h)
	}
	clear(m.loaded)
	clear(m.uniforms)
	clear(m.uniformState)
	m.placeholders = [placeholderKinds]*Texture{}
	m.resetUnits()
}

// RebuildAll recreates every texture on a fresh context after a context
// loss. Textures keep their identity; native names change and render
// target storage comes back empty.
func (m *Manager) RebuildAll() error {
	clear(m.uniformState)
	m.resetUnits()
	var errs []error
	m.textures.Each(func(_ arena.Handle, t *Texture) {
		t.native = 0
		t.designatedSlot, t.initialSlot = -1, -1
		if err := t.recreate(); err != nil {
			errs = append(errs, err)
		}
	})
	if len(errs) == 0 {
		glog.For("texture").Debug("textures rebuilt", "textures", m.textures.Len())
	}
	return errors.Join(errs...)
}

// unpackFlipY sets UNPACK_FLIP_Y, skipping the call when the cached value
// already matches.
func (m *Manager) unpackFlipY(v bool) {
	want := 0
	if v {
		want = 1
	}
	if m.flipY == want && !m.opts.DisableFlipYCache {
		return
	}
	m.flipY = want
	m.ctx.PixelStorei(native.UNPACK_FLIP_Y_WEBGL, want)
}

// needPOT reports whether loaded images must be resized to powers of two.
func (m *Manager) needPOT() bool { return m.caps.Version < 2 || m.opts.ForcePowerOfTwo }

// Placeholder returns the 1x1 texture sampled in place of textures of the
// given kind that are not ready, creating it on first use.
func (m *Manager) Placeholder(cube, is3D, is2DArray bool) *Texture {
	kind := placeholder2D
	switch {
	case cube:
		kind = placeholderCube
	case is3D:
		kind = placeholder3D
	case is2DArray:
		kind = placeholder2DArray
	}
	if p := m.placeholders[kind]; p != nil && m.IsLive(p) {
		return p
	}
	p, err := m.createPlaceholder(kind)
	if err != nil {
		glog.For("texture").Error("placeholder creation failed", "err", err)
		return nil
	}
	m.placeholders[kind] = p
	return p
}

func (m *Manager) createPlaceholder(kind int) (*Texture, error) {
	texel := make([]byte, 4)
	opts := RawOptions{Width: 1, Height: 1, Format: FormatRGBA, Sampling: Nearest}
	var (
		t   *Texture
		err error
	)
	switch kind {
	case placeholderCube:
		faces := [][]byte{texel, texel, texel, texel, texel, texel}
		t, err = m.CreateRawCubeTexture(faces, 1, opts)
	case placeholder3D:
		opts.Depth = 1
		t, err = m.CreateRawTexture3D(texel, opts)
	case placeholder2DArray:
		opts.Depth = 1
		t, err = m.CreateRawTexture2DArray(texel, opts)
	default:
		t, err = m.CreateRawTexture(texel, opts)
	}
	if err != nil {
		return nil, err
	}
	t.source = SourcePlaceholder
	return t, nil
}
