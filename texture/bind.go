// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"fmt"
	"slices"

	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// unitTargets are the bind targets cleared when a unit is emptied.
var unitTargets = [...]native.Enum{native.TEXTURE_2D, native.TEXTURE_CUBE_MAP, native.TEXTURE_3D, native.TEXTURE_2D_ARRAY}

// Bound returns the texture the cache holds for channel, or nil.
func (m *Manager) Bound(channel int) *Texture {
	if channel < 0 || channel >= len(m.bound) {
		return nil
	}
	return m.bound[channel]
}

// ActiveChannel returns the channel the next bind goes to.
func (m *Manager) ActiveChannel() int { return m.activeChannel }

// UseProgram tells the manager which program is current. Sampler
// uniforms of other programs are never written.
func (m *Manager) UseProgram(p native.Program) { m.program = p }

func (m *Manager) checkChannel(channel int) error {
	if channel < 0 || channel >= len(m.bound) {
		return fmt.Errorf("%w: channel %d of %d", ErrChannel, channel, len(m.bound))
	}
	return nil
}

func (m *Manager) freeSlot(ch int) {
	if m.opts.DisableBindingOptimization || slices.Contains(m.free, ch) {
		return
	}
	m.free = append(m.free, ch)
}

func (m *Manager) takeSlot(ch int) {
	if i := slices.Index(m.free, ch); i >= 0 {
		m.free = slices.Delete(m.free, i, i+1)
	}
}

// activateCurrentTexture makes the active channel the native active unit.
func (m *Manager) activateCurrentTexture() {
	if m.currentChannel == m.activeChannel {
		return
	}
	m.ctx.ActiveTexture(native.TEXTURE0 + native.Enum(m.activeChannel))
	m.currentChannel = m.activeChannel
}

// removeDesignatedSlot takes t out of the unit it occupies and returns
// that unit to the free list. It returns the freed unit or -1.
func (m *Manager) removeDesignatedSlot(t *Texture) int {
	slot := t.designatedSlot
	if slot == -1 {
		return -1
	}
	t.designatedSlot = -1
	if m.opts.DisableBindingOptimization {
		return -1
	}
	m.tracker.Remove(&t.slot)
	if m.bound[slot] == t {
		m.bound[slot] = nil
	}
	if m.bound[slot] == nil {
		m.freeSlot(slot)
	}
	return slot
}

// evictionCandidate returns the least recently used texture not bound
// for the current draw call.
func (m *Manager) evictionCandidate() *Texture {
	var victim *Texture
	m.tracker.Walk(func(t *Texture) bool {
		if t.drawEpoch != m.epoch {
			victim = t
			return false
		}
		return true
	})
	return victim
}

// correctChannel returns the unit t should be sampled from when a
// material asks for channel: the unit t already occupies, channel itself
// when it is free, another free unit, or the unit of the evicted least
// recently used texture.
func (m *Manager) correctChannel(channel int, t *Texture) (int, error) {
	t.initialSlot = channel
	if m.opts.DisableBindingOptimization {
		if channel != t.designatedSlot {
			m.collisions++
		}
		return channel, nil
	}
	if channel == t.designatedSlot {
		return channel, nil
	}
	if t.designatedSlot > -1 {
		return t.designatedSlot, nil
	}
	if slices.Contains(m.free, channel) {
		return channel, nil
	}
	if len(m.free) > 0 {
		return m.free[0], nil
	}
	victim := m.evictionCandidate()
	if victim == nil {
		return -1, ErrChannelsExhausted
	}
	m.collisions++
	slot := m.removeDesignatedSlot(victim)
	glog.For("texture").Debug("texture unit recycled", "unit", slot, "evicted", victim.native, "for", t.native)
	return slot, nil
}

// workingChannel picks the unit an upload binds t to. A texture that
// occupies a unit is updated there; otherwise the active unit is used
// unless it holds a texture of the current draw call.
func (m *Manager) workingChannel(t *Texture) {
	if t.designatedSlot > -1 {
		m.activeChannel = t.designatedSlot
		return
	}
	cur := m.bound[m.activeChannel]
	if cur == nil || cur.drawEpoch != m.epoch {
		return
	}
	if len(m.free) > 0 {
		m.activeChannel = m.free[0]
		return
	}
	if v := m.evictionCandidate(); v != nil && v.designatedSlot > -1 {
		m.activeChannel = v.designatedSlot
	}
}

// bindTextureDirectly binds t to target on the active channel unless the
// cache shows it is already there. forDataUpdate moves the active channel
// to the unit chosen for uploads and skips the sampler uniform; force
// issues the bind regardless of the cache. It reports whether t was
// already bound for a data update.
func (m *Manager) bindTextureDirectly(target native.Enum, t *Texture, forDataUpdate, force bool) bool {
	rendering := t != nil && t.initialSlot > -1
	if forDataUpdate && t != nil {
		m.workingChannel(t)
	}
	wasBound := m.bindActive(target, t, forDataUpdate, force)
	if rendering && !forDataUpdate {
		m.bindSamplerUniformToChannel(t.initialSlot, m.activeChannel)
	}
	return wasBound
}

func (m *Manager) bindActive(target native.Enum, t *Texture, forDataUpdate, force bool) bool {
	ch := m.activeChannel
	current := m.bound[ch]
	if current != t || force {
		if current != nil {
			m.removeDesignatedSlot(current)
		}
		if t != nil && t.designatedSlot > -1 && t.designatedSlot != ch {
			m.removeDesignatedSlot(t)
		}
		m.activateCurrentTexture()
		var n native.Texture
		if t != nil {
			n = t.native
		}
		m.ctx.BindTexture(target, n)
		m.bound[ch] = t
		if t == nil {
			m.targets[ch] &^= targetBit(target)
			return false
		}
		m.targets[ch] |= targetBit(target)
		if !m.opts.DisableBindingOptimization {
			m.takeSlot(ch)
			m.tracker.MoveToFront(&t.slot)
		}
		t.designatedSlot = ch
		return false
	}
	if forDataUpdate {
		m.activateCurrentTexture()
		return true
	}
	return false
}

// bindSamplerUniformToChannel points the sampler uniform recorded for
// sourceSlot at destination, skipping the call when it already does.
func (m *Manager) bindSamplerUniformToChannel(sourceSlot, destination int) {
	u, ok := m.uniforms[sourceSlot]
	if !ok || !u.Valid() || u.Program != m.program {
		return
	}
	if cur, ok := m.uniformState[u]; ok && cur == destination {
		return
	}
	m.ctx.Uniform1i(u.Location, destination)
	m.uniformState[u] = destination
}

// moveOnTop marks t as the most recently used bound texture.
func (m *Manager) moveOnTop(t *Texture) {
	if m.opts.DisableBindingOptimization || !t.slot.Linked() {
		return
	}
	m.tracker.MoveToFront(&t.slot)
}

// BindTexture binds t to channel directly, without redirecting it to the
// unit it already occupies. A nil t empties the channel.
func (m *Manager) BindTexture(channel int, t *Texture) error {
	if err := m.checkChannel(channel); err != nil {
		return err
	}
	if t != nil && !m.IsLive(t) {
		return ErrStale
	}
	m.activeChannel = channel
	if t == nil {
		m.unbindChannel(channel)
		return nil
	}
	t.initialSlot = channel
	t.drawEpoch = m.epoch
	m.bindTextureDirectly(t.Target(), t, false, false)
	return nil
}

// SetTexture binds the texture of s for sampling through the uniform u of
// the current program, which the material expects on channel. The
// texture may be redirected to another unit, in which case u is pointed
// at it. Textures that are not ready are replaced by a placeholder of the
// same kind, and s's wrap and anisotropy are applied when they differ
// from what the texture last saw. A nil s or texture empties channel.
func (m *Manager) SetTexture(channel int, u Uniform, s *Sampler) error {
	if err := m.checkChannel(channel); err != nil {
		return err
	}
	if u.Valid() {
		m.uniforms[channel] = u
	} else {
		delete(m.uniforms, channel)
	}
	return m.setTexture(channel, s, false)
}

// BindUniform records u as the sampler uniform expected on channel, so a
// texture later redirected away from channel repoints it. A uniform that
// is not valid clears the record.
func (m *Manager) BindUniform(channel int, u Uniform) {
	if channel < 0 || channel >= len(m.bound) {
		return
	}
	if u.Valid() {
		m.uniforms[channel] = u
		return
	}
	delete(m.uniforms, channel)
}

// SetTextureArray binds samplers to consecutive channels starting at
// channel and writes their units into the sampler array uniform u.
func (m *Manager) SetTextureArray(channel int, u Uniform, samplers []*Sampler) error {
	if err := m.checkChannel(channel); err != nil {
		return err
	}
	if err := m.checkChannel(channel + len(samplers) - 1); len(samplers) > 0 && err != nil {
		return err
	}
	if !u.Valid() {
		return nil
	}
	units := make([]int32, len(samplers))
	for i := range units {
		units[i] = int32(channel + i)
	}
	if u.Program == m.program {
		m.ctx.Uniform1iv(u.Location, units)
	}
	for i, s := range samplers {
		if err := m.setTexture(channel+i, s, true); err != nil {
			return err
		}
	}
	return nil
}

// resolve returns the texture actually sampled for s.
func (m *Manager) resolve(s *Sampler) *Texture {
	src := s.Texture
	var t *Texture
	switch {
	case s.DepthStencil:
		if d := src.depthStencil; d != nil && d.IsReady() && m.IsLive(d) {
			t = d
		}
	case src.IsReady() && m.IsLive(src):
		t = src
	}
	if t == nil {
		t = m.Placeholder(src.cube, src.is3D, src.is2DArray)
	}
	return t
}

func (m *Manager) setTexture(channel int, s *Sampler, partOfArray bool) error {
	var t *Texture
	if s != nil && s.Texture != nil {
		t = m.resolve(s)
	}
	if t == nil {
		m.unbindChannel(channel)
		return nil
	}

	if partOfArray {
		t.initialSlot = channel
	} else {
		ch, err := m.correctChannel(channel, t)
		if err != nil {
			return err
		}
		channel = ch
	}
	t.drawEpoch = m.epoch

	target := t.Target()
	if m.bound[channel] == t {
		m.moveOnTop(t)
		if !partOfArray {
			m.bindSamplerUniformToChannel(t.initialSlot, channel)
		}
		m.activeChannel = channel
	} else {
		m.activeChannel = channel
		if partOfArray {
			m.bindActive(target, t, false, false)
		} else {
			m.bindTextureDirectly(target, t, false, false)
		}
	}
	m.applySampler(target, t, s)
	return nil
}

// applySampler issues the wrap and anisotropy parameters of s that differ
// from the ones t last received.
func (m *Manager) applySampler(target native.Enum, t *Texture, s *Sampler) {
	if t.cube {
		if !t.coordsKnown || t.coordinates != s.Coordinates {
			t.coordinates, t.coordsKnown = s.Coordinates, true
			w := WrapRepeat
			if s.Coordinates == CoordinatesCubic || s.Coordinates == CoordinatesSkybox {
				w = WrapClamp
			}
			m.setParameteri(target, native.TEXTURE_WRAP_S, w.native(), t)
			m.setParameteri(target, native.TEXTURE_WRAP_T, w.native(), t)
		}
	} else {
		if s.WrapU != WrapKeep && t.wrapU.differs(s.WrapU) {
			t.wrapU.store(s.WrapU)
			m.setParameteri(target, native.TEXTURE_WRAP_S, s.WrapU.native(), t)
		}
		if s.WrapV != WrapKeep && t.wrapV.differs(s.WrapV) {
			t.wrapV.store(s.WrapV)
			m.setParameteri(target, native.TEXTURE_WRAP_T, s.WrapV.native(), t)
		}
		if (t.is3D || t.is2DArray) && s.WrapR != WrapKeep && t.wrapR.differs(s.WrapR) {
			t.wrapR.store(s.WrapR)
			m.setParameteri(target, native.TEXTURE_WRAP_R, s.WrapR.native(), t)
		}
	}
	m.setAnisotropicLevel(target, t, s.Anisotropy)
}

// setAnisotropicLevel applies level, pinned to 1 for sampling modes that
// are not linear-linear and clamped to the driver maximum.
func (m *Manager) setAnisotropicLevel(target native.Enum, t *Texture, level int) {
	if !m.caps.TextureAnisotropicFilter {
		return
	}
	level = max(level, 1)
	if !t.sampling.anisotropic() {
		level = 1
	}
	if t.anisotropy == level {
		return
	}
	m.setParameterf(target, native.TEXTURE_MAX_ANISOTROPY_EXT, min(float32(level), m.caps.MaxAnisotropy), t)
	t.anisotropy = level
}

// prepareWorkingTexture makes t the texture bound to target on the native
// active unit.
func (m *Manager) prepareWorkingTexture(target native.Enum, t *Texture) {
	if t != m.bound[m.activeChannel] {
		m.bindTextureDirectly(target, t, true, true)
		return
	}
	m.activateCurrentTexture()
}

func (m *Manager) setParameteri(target, pname native.Enum, v int, t *Texture) {
	m.prepareWorkingTexture(target, t)
	m.ctx.TexParameteri(target, pname, v)
}

func (m *Manager) setParameterf(target, pname native.Enum, v float32, t *Texture) {
	m.prepareWorkingTexture(target, t)
	m.ctx.TexParameterf(target, pname, v)
}

// unbindChannel clears every target channel may still hold natively.
func (m *Manager) unbindChannel(channel int) {
	mask := m.targets[channel]
	if cur := m.bound[channel]; cur != nil {
		mask |= targetBit(cur.Target())
	}
	if mask == 0 {
		return
	}
	m.activeChannel = channel
	for _, target := range unitTargets {
		if mask&targetBit(target) != 0 {
			m.bindTextureDirectly(target, nil, false, true)
		}
	}
}

// UnbindAllTextures empties every texture unit.
func (m *Manager) UnbindAllTextures() {
	for ch := range m.bound {
		m.unbindChannel(ch)
	}
}

// ResetTextureCache forgets every binding. The next bind of any texture
// is issued natively.
func (m *Manager) ResetTextureCache() {
	for _, t := range m.bound {
		if t != nil {
			m.removeDesignatedSlot(t)
		}
	}
	clear(m.bound)
	m.tracker.Clear()
	m.resetFree()
	m.currentChannel = -1
}
