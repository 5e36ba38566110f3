// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// build compiles and links e. A parallel link returns right away with e
// still compiling; otherwise e is finalized before returning.
func (c *Cache) build(e *Effect) error {
	e.status, e.err = Compiling, nil
	e.parallel, e.released = false, false
	e.compiled = frame.NewFuture[*Effect](c.queue)
	e.attributes = make(map[string]int)
	e.locations = make(map[string]native.UniformLocation)
	e.blocks = make(map[string]int)
	e.values = make(map[string]uniformValue)

	vs, err := c.compileShader(e, native.VERTEX_SHADER, e.vertexCode)
	if err != nil {
		return c.abort(e, err)
	}
	e.vs = vs
	fs, err := c.compileShader(e, native.FRAGMENT_SHADER, e.fragmentCode)
	if err != nil {
		return c.abort(e, err)
	}
	e.fs = fs

	p := c.ctx.CreateProgram()
	if p == 0 {
		return c.abort(e, fmt.Errorf("%w: program", ErrCreate))
	}
	e.program = p
	c.ctx.AttachShader(p, e.vs)
	c.ctx.AttachShader(p, e.fs)

	varyings := len(e.opts.TransformFeedbackVaryings) > 0
	if varyings && c.caps.Version < 2 {
		glog.For("pipeline").Error("transform feedback needs a version 2 context", "effect", e.key)
		varyings = false
	}
	if varyings {
		e.feedback = c.ctx.CreateTransformFeedback()
		c.ctx.BindTransformFeedback(native.TRANSFORM_FEEDBACK, e.feedback)
		mode := native.INTERLEAVED_ATTRIBS
		if e.opts.SeparateAttribs {
			mode = native.SEPARATE_ATTRIBS
		}
		c.ctx.TransformFeedbackVaryings(p, e.opts.TransformFeedbackVaryings, mode)
	}
	c.ctx.LinkProgram(p)
	if varyings {
		c.ctx.BindTransformFeedback(native.TRANSFORM_FEEDBACK, 0)
	}
	c.compiles++

	if c.Parallel() {
		e.parallel = true
		c.pending = append(c.pending, e)
		return nil
	}
	return c.finalize(e)
}

// compileShader creates and compiles one stage. Compile errors are read
// when the program is finalized, so a driver that compiles in parallel is
// never waited on here.
func (c *Cache) compileShader(e *Effect, typ native.Enum, code string) (native.Shader, error) {
	s := c.ctx.CreateShader(typ)
	if s == 0 {
		kind := "vertex shader"
		if typ == native.FRAGMENT_SHADER {
			kind = "fragment shader"
		}
		return 0, fmt.Errorf("%w: %s", ErrCreate, kind)
	}
	if e.opts.Language == WGSL {
		bin, err := spirv(code)
		if err != nil {
			c.ctx.DeleteShader(s)
			stage := StageVertex
			if typ == native.FRAGMENT_SHADER {
				stage = StageFragment
			}
			return 0, &CompileError{Stage: stage, Log: err.Error()}
		}
		c.ctx.ShaderBinary(s, native.SHADER_BINARY_FORMAT_SPIR_V, bin)
	} else {
		c.ctx.ShaderSource(s, code)
	}
	c.ctx.CompileShader(s)
	return s, nil
}

// finalize checks the link of e, frees its shaders and resolves its
// locations. Failures are permanent.
func (c *Cache) finalize(e *Effect) error {
	e.parallel = false
	if c.ctx.GetProgrami(e.program, native.LINK_STATUS) == 0 {
		return c.fail(e, c.linkError(e))
	}
	c.deleteShaders(e)

	for _, name := range e.opts.Attributes {
		e.attributes[name] = c.ctx.GetAttribLocation(e.program, name)
	}
	for _, names := range [][]string{e.opts.Uniforms, e.opts.Samplers} {
		for _, name := range names {
			e.locations[name] = c.ctx.GetUniformLocation(e.program, name)
		}
	}
	e.status = Ready
	glog.For("pipeline").Debug("effect compiled", "effect", e.key, "program", e.program)

	fns := e.whenCompiled
	e.whenCompiled = nil
	for _, fn := range fns {
		fn(e)
	}
	e.compiled.Resolve(e, nil)
	return nil
}

// linkError reads the info logs in the order a driver reports them: the
// vertex stage, then the fragment stage, then the program.
func (c *Cache) linkError(e *Effect) error {
	if e.vs != 0 && c.ctx.GetShaderi(e.vs, native.COMPILE_STATUS) == 0 {
		if log := c.ctx.GetShaderInfoLog(e.vs); log != "" {
			return &CompileError{Stage: StageVertex, Log: log}
		}
	}
	if e.fs != 0 && c.ctx.GetShaderi(e.fs, native.COMPILE_STATUS) == 0 {
		if log := c.ctx.GetShaderInfoLog(e.fs); log != "" {
			return &CompileError{Stage: StageFragment, Log: log}
		}
	}
	log := c.ctx.GetProgramInfoLog(e.program)
	if log == "" {
		log = "link failed"
	}
	return &CompileError{Stage: StageProgram, Log: log}
}

// fail marks e failed, frees everything it allocated and notifies its
// listeners. It returns err.
func (c *Cache) fail(e *Effect, err error) error {
	e.parallel = false
	c.destroy(e)
	e.status, e.err = Failed, err
	e.whenCompiled = nil
	glog.For("pipeline").Error("effect compilation failed", "effect", e.key, "err", err)
	if e.opts.OnError != nil {
		e.opts.OnError(e, err)
	}
	e.compiled.Resolve(e, err)
	return err
}

// abort frees what a build allocated before err. Compile errors fail the
// effect for good; anything else leaves it unusable until the next
// rebuild.
func (c *Cache) abort(e *Effect, err error) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return c.fail(e, err)
	}
	c.destroy(e)
	e.status, e.err = Failed, err
	e.whenCompiled = nil
	return err
}

func (c *Cache) deleteShaders(e *Effect) {
	if e.vs != 0 {
		c.ctx.DeleteShader(e.vs)
		e.vs = 0
	}
	if e.fs != 0 {
		c.ctx.DeleteShader(e.fs)
		e.fs = 0
	}
}
