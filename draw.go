// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glengine

import (
	"fmt"

	"github.com/gogpu/glengine/internal/glog"
	"github.com/gogpu/glengine/native"
)

// FillMode selects the primitive a draw assembles.
type FillMode uint8

// Fill and draw modes.
const (
	TriangleFillMode FillMode = iota
	WireFrameFillMode
	PointFillMode
	PointListDrawMode
	LineListDrawMode
	LineLoopDrawMode
	LineStripDrawMode
	TriangleStripDrawMode
	TriangleFanDrawMode
)

var fillModeNames = [...]string{
	TriangleFillMode:      "triangle",
	WireFrameFillMode:     "wireframe",
	PointFillMode:         "point",
	PointListDrawMode:     "pointlist",
	LineListDrawMode:      "linelist",
	LineLoopDrawMode:      "lineloop",
	LineStripDrawMode:     "linestrip",
	TriangleStripDrawMode: "trianglestrip",
	TriangleFanDrawMode:   "trianglefan",
}

func (m FillMode) String() string {
	if int(m) < len(fillModeNames) {
		return fillModeNames[m]
	}
	return fmt.Sprintf("FillMode(%d)", m)
}

// primitive returns the native primitive of m. Wireframes are drawn as
// line lists; unknown modes draw triangles.
func (m FillMode) primitive() native.Enum {
	switch m {
	case PointFillMode, PointListDrawMode:
		return native.POINTS
	case WireFrameFillMode, LineListDrawMode:
		return native.LINES
	case LineLoopDrawMode:
		return native.LINE_LOOP
	case LineStripDrawMode:
		return native.LINE_STRIP
	case TriangleStripDrawMode:
		return native.TRIANGLE_STRIP
	case TriangleFanDrawMode:
		return native.TRIANGLE_FAN
	default:
		return native.TRIANGLES
	}
}

// beforeDraw refuses draws without a ready effect, applies pending state
// and counts the draw.
func (e *Engine) beforeDraw() error {
	switch {
	case e.disposed:
		return ErrDisposed
	case e.IsContextLost():
		return ErrContextLost
	}
	if cur := e.pipelines.Current(); cur == nil || !cur.IsReady() {
		glog.For("engine").Debug("draw skipped without a ready effect")
		return ErrNoEffect
	}
	e.ApplyStates()
	e.drawCalls++
	return nil
}

// DrawElementsType draws indexCount indices of the bound index buffer
// starting at indexStart, instanced when instances > 0. The index width
// follows the bound buffer.
func (e *Engine) DrawElementsType(mode FillMode, indexStart, indexCount, instances int) error {
	if err := e.beforeDraw(); err != nil {
		return err
	}
	typ, offset := e.buffers.IndexType(), indexStart*e.buffers.IndexSize()
	if instances > 0 {
		e.ctx.DrawElementsInstanced(mode.primitive(), indexCount, typ, offset, instances)
	} else {
		e.ctx.DrawElements(mode.primitive(), indexCount, typ, offset)
	}
	e.textures.NextDraw()
	return nil
}

// DrawArraysType draws verticesCount vertices starting at verticesStart,
// instanced when instances > 0.
func (e *Engine) DrawArraysType(mode FillMode, verticesStart, verticesCount, instances int) error {
	if err := e.beforeDraw(); err != nil {
		return err
	}
	if instances > 0 {
		e.ctx.DrawArraysInstanced(mode.primitive(), verticesStart, verticesCount, instances)
	} else {
		e.ctx.DrawArrays(mode.primitive(), verticesStart, verticesCount)
	}
	e.textures.NextDraw()
	return nil
}

// Draw draws indexed triangles, or a wireframe when useTriangles is false.
func (e *Engine) Draw(useTriangles bool, indexStart, indexCount, instances int) error {
	mode := TriangleFillMode
	if !useTriangles {
		mode = WireFrameFillMode
	}
	return e.DrawElementsType(mode, indexStart, indexCount, instances)
}

// DrawUnIndexed draws triangles, or a wireframe, from consecutive vertices.
func (e *Engine) DrawUnIndexed(useTriangles bool, verticesStart, verticesCount, instances int) error {
	mode := TriangleFillMode
	if !useTriangles {
		mode = WireFrameFillMode
	}
	return e.DrawArraysType(mode, verticesStart, verticesCount, instances)
}

// DrawPointClouds draws consecutive vertices as points.
func (e *Engine) DrawPointClouds(verticesStart, verticesCount, instances int) error {
	return e.DrawArraysType(PointFillMode, verticesStart, verticesCount, instances)
}

// DrawCalls returns the number of draws issued in the current frame.
func (e *Engine) DrawCalls() int { return e.drawCalls }
