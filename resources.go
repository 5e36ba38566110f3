// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"context"

	"github.com/gogpu/glengine/buffer"
	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/pipeline"
	"github.com/gogpu/glengine/target"
	"github.com/gogpu/glengine/texture"
)

// usable refuses resource creation on a disposed engine or a lost context.
func (e *Engine) usable() error {
	switch {
	case e.disposed:
		return ErrDisposed
	case e.IsContextLost():
		return ErrContextLost
	}
	return nil
}

// CreateVertexBuffer uploads static vertex data.
func (e *Engine) CreateVertexBuffer(data []float32) (buffer.Handle, error) {
	if err := e.usable(); err != nil {
		return buffer.Handle{}, err
	}
	return e.buffers.CreateVertexBuffer(data)
}

// CreateDynamicVertexBuffer uploads vertex data meant to be rewritten.
func (e *Engine) CreateDynamicVertexBuffer(data []float32) (buffer.Handle, error) {
	if err := e.usable(); err != nil {
		return buffer.Handle{}, err
	}
	return e.buffers.CreateDynamicVertexBuffer(data)
}

// CreateIndexBuffer uploads indices, as 16-bit values when they all fit.
func (e *Engine) CreateIndexBuffer(indices []uint32, updatable bool) (buffer.Handle, error) {
	if err := e.usable(); err != nil {
		return buffer.Handle{}, err
	}
	return e.buffers.CreateIndexBuffer(indices, updatable)
}

// CreateUniformBuffer uploads uniform block data.
func (e *Engine) CreateUniformBuffer(data []float32, dynamic bool) (buffer.Handle, error) {
	if err := e.usable(); err != nil {
		return buffer.Handle{}, err
	}
	if dynamic {
		return e.buffers.CreateDynamicUniformBuffer(data)
	}
	return e.buffers.CreateUniformBuffer(data)
}

// CreateInstancesBuffer allocates a dynamic per-instance buffer of capacity
// bytes.
func (e *Engine) CreateInstancesBuffer(capacity int) (buffer.Handle, error) {
	if err := e.usable(); err != nil {
		return buffer.Handle{}, err
	}
	return e.buffers.CreateInstancesBuffer(capacity)
}

// ReleaseBuffer drops one reference to h and deletes the buffer with the
// last one.
func (e *Engine) ReleaseBuffer(h buffer.Handle) (bool, error) { return e.buffers.Release(h) }

// BindArrayBuffer binds h as the vertex buffer.
func (e *Engine) BindArrayBuffer(h buffer.Handle) error { return e.buffers.BindArrayBuffer(h) }

// BindIndexBuffer binds h as the index buffer.
func (e *Engine) BindIndexBuffer(h buffer.Handle) error { return e.buffers.BindIndexBuffer(h) }

// BindBuffers points the attributes of eff at the buffers of set and binds
// index.
func (e *Engine) BindBuffers(set *buffer.VertexSet, index buffer.Handle, eff *pipeline.Effect) {
	e.buffers.BindBuffers(set, index, eff)
}

// RecordVertexArrayObject records the bindings of set and index for eff
// into a vertex array.
func (e *Engine) RecordVertexArrayObject(set *buffer.VertexSet, index buffer.Handle, eff *pipeline.Effect) (buffer.VertexArray, error) {
	if err := e.usable(); err != nil {
		return buffer.VertexArray{}, err
	}
	return e.buffers.RecordVertexArray(set, index, eff)
}

// BindVertexArrayObject binds a recorded vertex array.
func (e *Engine) BindVertexArrayObject(v buffer.VertexArray, index buffer.Handle) error {
	return e.buffers.BindVertexArray(v, index)
}

// ReleaseVertexArrayObject deletes a recorded vertex array.
func (e *Engine) ReleaseVertexArrayObject(v buffer.VertexArray) error {
	return e.buffers.ReleaseVertexArray(v)
}

// UpdateAndBindInstancesBuffer uploads per-instance data, growing the
// buffer when needed, and points attrs of eff at it.
func (e *Engine) UpdateAndBindInstancesBuffer(h buffer.Handle, data []float32, attrs []buffer.InstanceAttribute, eff *pipeline.Effect) error {
	return e.buffers.UpdateAndBindInstancesBuffer(h, data, attrs, eff)
}

// CreateTexture loads url into a texture. The texture is usable at once
// and samples as a placeholder until the returned future resolves at the
// start of a frame.
func (e *Engine) CreateTexture(ctx context.Context, url string, o texture.CreateOptions) (*texture.Texture, *frame.Future[*texture.Texture], error) {
	if err := e.usable(); err != nil {
		return nil, nil, err
	}
	return e.textures.CreateTexture(ctx, url, o)
}

// CreateCubeTexture loads six faces into a cube map.
func (e *Engine) CreateCubeTexture(ctx context.Context, urls []string, o texture.CubeOptions) (*texture.Texture, *frame.Future[*texture.Texture], error) {
	if err := e.usable(); err != nil {
		return nil, nil, err
	}
	return e.textures.CreateCubeTexture(ctx, urls, o)
}

// CreateRawTexture uploads texels as a 2D texture.
func (e *Engine) CreateRawTexture(data []byte, o texture.RawOptions) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.textures.CreateRawTexture(data, o)
}

// CreateRawTexture3D uploads texels as a 3D texture.
func (e *Engine) CreateRawTexture3D(data []byte, o texture.RawOptions) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.textures.CreateRawTexture3D(data, o)
}

// CreateRawTexture2DArray uploads texels as a 2D array texture.
func (e *Engine) CreateRawTexture2DArray(data []byte, o texture.RawOptions) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.textures.CreateRawTexture2DArray(data, o)
}

// CreateRawCubeTexture uploads six square faces as a cube map.
func (e *Engine) CreateRawCubeTexture(faces [][]byte, size int, o texture.RawOptions) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.textures.CreateRawCubeTexture(faces, size, o)
}

// CreateDynamicTexture allocates a texture filled later by
// UpdateDynamicTexture.
func (e *Engine) CreateDynamicTexture(width, height int, generateMipmaps bool, sampling texture.SamplingMode) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.textures.CreateDynamicTexture(width, height, generateMipmaps, sampling)
}

// ReleaseTexture drops one reference to t. The last reference detaches it
// from any render target and the unit it is bound to, then deletes it.
func (e *Engine) ReleaseTexture(t *texture.Texture) (bool, error) { return e.textures.Release(t) }

// BindTexture binds t to channel for a data update or direct sampling.
func (e *Engine) BindTexture(channel int, t *texture.Texture) error {
	return e.textures.BindTexture(channel, t)
}

// UnbindAllTextures clears every unit.
func (e *Engine) UnbindAllTextures() { e.textures.UnbindAllTextures() }

// CreateRenderTargetTexture creates a render target and returns it; its
// colour texture is Target.Texture.
func (e *Engine) CreateRenderTargetTexture(o target.Options) (*target.Target, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.targets.CreateRenderTarget(o)
}

// CreateMultipleRenderTarget creates a target with several colour
// attachments written by one draw.
func (e *Engine) CreateMultipleRenderTarget(o target.MultiOptions) (*target.Target, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.targets.CreateMultipleRenderTarget(o)
}

// CreateDepthStencilTexture attaches a sampleable depth texture to t.
func (e *Engine) CreateDepthStencilTexture(t *target.Target, o texture.DepthOptions) (*texture.Texture, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.targets.CreateDepthStencilTexture(t, o)
}

// ReleaseRenderTarget drops one reference to t and deletes its
// framebuffers with the last one.
func (e *Engine) ReleaseRenderTarget(t *target.Target) (bool, error) { return e.targets.Release(t) }

// BindFramebuffer renders into t from now on, unbinding the current
// target first.
func (e *Engine) BindFramebuffer(t *target.Target, o target.BindOptions) error {
	return e.targets.BindFramebuffer(t, o)
}

// UnBindFramebuffer resolves t, generates its mipmaps unless
// disableMipmaps is set, runs beforeUnbind and restores the framebuffer
// bound before t.
func (e *Engine) UnBindFramebuffer(t *target.Target, disableMipmaps bool, beforeUnbind func()) error {
	return e.targets.UnbindFramebuffer(t, disableMipmaps, beforeUnbind)
}

// UnBindMultiColorAttachment is UnBindFramebuffer for multiple render
// targets, resolving every attachment.
func (e *Engine) UnBindMultiColorAttachment(t *target.Target, disableMipmaps bool, beforeUnbind func()) error {
	return e.targets.UnbindMultiColorAttachment(t, disableMipmaps, beforeUnbind)
}

// RestoreDefaultFramebuffer unbinds any target and renders to the drawing
// buffer.
func (e *Engine) RestoreDefaultFramebuffer() error { return e.targets.RestoreDefaultFramebuffer() }

// UpdateRenderTargetTextureSampleCount changes the sample count of t and
// returns the count applied after clamping.
func (e *Engine) UpdateRenderTargetTextureSampleCount(t *target.Target, samples int) (int, error) {
	return e.targets.UpdateSampleCount(t, samples)
}

// UpdateMultipleRenderTargetSampleCount changes the sample count of a
// multiple render target.
func (e *Engine) UpdateMultipleRenderTargetSampleCount(t *target.Target, samples int) (int, error) {
	return e.targets.UpdateMultipleRenderTargetSampleCount(t, samples)
}

// ReadPixels reads RGBA, or RGB without hasAlpha, from the bound
// framebuffer.
func (e *Engine) ReadPixels(x, y, width, height int, hasAlpha bool) ([]byte, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.targets.ReadPixels(x, y, width, height, hasAlpha)
}

// ReadTexturePixels reads RGBA pixels of one level and face of tex, such
// as the colour texture of an unbound render target.
func (e *Engine) ReadTexturePixels(tex *texture.Texture, x, y, width, height, face, level int) ([]byte, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}
	return e.targets.ReadTexturePixels(tex, x, y, width, height, face, level)
}
