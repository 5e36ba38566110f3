// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gldemo renders a spinning triangle into a multisampled render
// target and draws the resolved texture to the window.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glengine"
	"github.com/gogpu/glengine/backend"
	"github.com/gogpu/glengine/backend/glcore"
	"github.com/gogpu/glengine/buffer"
	"github.com/gogpu/glengine/pipeline"
	"github.com/gogpu/glengine/target"
	"github.com/gogpu/glengine/texture"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

const sceneVertex = `in vec2 position;
uniform mat4 world;
void main() { gl_Position = world * vec4(position, 0.0, 1.0); }`

const sceneFragment = `uniform vec4 color;
out vec4 fragColor;
void main() { fragColor = color; }`

const blitVertex = `in vec2 position;
out vec2 vUV;
void main() {
	vUV = position * 0.5 + 0.5;
	gl_Position = vec4(position, 0.0, 1.0);
}`

const blitFragment = `in vec2 vUV;
uniform sampler2D scene;
out vec4 fragColor;
void main() { fragColor = texture(scene, vUV); }`

func main() {
	var (
		width   = flag.Int("width", 800, "window width")
		height  = flag.Int("height", 600, "window height")
		size    = flag.Int("size", 512, "render target size")
		samples = flag.Int("samples", 4, "render target samples")
		config  = flag.String("config", "", "engine options in TOML")
		verbose = flag.Bool("v", false, "log cache decisions")
	)
	flag.Parse()

	if *verbose {
		glengine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	var opts []glengine.Option
	if *config != "" {
		o, err := glengine.LoadOptions(*config)
		if err != nil {
			log.Fatalf("Failed to load options: %v", err)
		}
		opts = append(opts, glengine.WithOptions(o))
	}

	e, err := glengine.Open(backend.GLCore, backend.Config{
		Width:   *width,
		Height:  *height,
		Title:   "gldemo",
		Visible: true,
	}, opts...)
	if err != nil {
		log.Fatalf("Failed to open engine: %v", err)
	}
	win := e.Context().(*glcore.Context)
	defer func() {
		e.Dispose()
		_ = backend.Close(win)
	}()

	d, err := newDemo(e, *size, *samples)
	if err != nil {
		log.Printf("Failed to set up: %v", err)
		return
	}
	e.RunRenderLoop(d.frame)
	for !win.ShouldClose() {
		e.Tick()
	}
	log.Printf("Rendered at %.1f fps, %d samples", e.FPS(), d.rt.Samples())
}

type demo struct {
	e     *glengine.Engine
	rt    *target.Target
	scene *pipeline.Effect
	blit  *pipeline.Effect

	triangle, quad *buffer.VertexSet
	triIndex       buffer.Handle
	quadIndex      buffer.Handle

	angle float32
}

func newDemo(e *glengine.Engine, size, samples int) (*demo, error) {
	d := &demo{e: e}

	o := target.Defaults(size, size)
	o.Samples = samples
	rt, err := e.CreateRenderTargetTexture(o)
	if err != nil {
		return nil, err
	}
	d.rt = rt

	if d.scene, err = e.CreateEffect(pipeline.EffectOptions{
		Vertex:         "scene",
		Fragment:       "scene",
		VertexSource:   sceneVertex,
		FragmentSource: sceneFragment,
		Attributes:     []string{"position"},
		Uniforms:       []string{"world", "color"},
	}); err != nil {
		return nil, err
	}
	if d.blit, err = e.CreateEffect(pipeline.EffectOptions{
		Vertex:         "blit",
		Fragment:       "blit",
		VertexSource:   blitVertex,
		FragmentSource: blitFragment,
		Attributes:     []string{"position"},
		Samplers:       []string{"scene"},
	}); err != nil {
		return nil, err
	}

	if d.triangle, d.triIndex, err = mesh(e, []float32{0, 0.8, -0.7, -0.6, 0.7, -0.6}, []uint32{0, 1, 2}); err != nil {
		return nil, err
	}
	if d.quad, d.quadIndex, err = mesh(e, []float32{-1, -1, 1, -1, 1, 1, -1, 1}, []uint32{0, 1, 2, 0, 2, 3}); err != nil {
		return nil, err
	}
	return d, nil
}

func mesh(e *glengine.Engine, positions []float32, indices []uint32) (*buffer.VertexSet, buffer.Handle, error) {
	vb, err := e.CreateVertexBuffer(positions)
	if err != nil {
		return nil, buffer.Handle{}, err
	}
	ib, err := e.CreateIndexBuffer(indices, false)
	if err != nil {
		return nil, buffer.Handle{}, err
	}
	set := buffer.NewVertexSet()
	set.Set("position", buffer.VertexBuffer{Buffer: vb, Size: 2})
	return set, ib, nil
}

// frame draws the triangle into the target, resolves it and samples the
// result over the whole window. Frames are skipped while effects compile.
func (d *demo) frame() {
	e := d.e
	if !d.scene.IsReady() || !d.blit.IsReady() {
		return
	}
	d.angle += float32(e.DeltaTime().Seconds())

	if err := e.BindFramebuffer(d.rt, target.BindOptions{}); err != nil {
		log.Printf("bind: %v", err)
		return
	}
	e.Clear(&gputypes.Color{R: 0.1, G: 0.1, B: 0.15, A: 1}, true, true, false)
	check(e.EnableEffect(d.scene))
	check(e.SetMatrix4(d.scene, "world", mgl32.HomogRotate3DZ(d.angle)))
	check(e.SetColor4(d.scene, "color", gputypes.Color{R: 1, G: 0.6, B: 0.2, A: 1}))
	e.BindBuffers(d.triangle, d.triIndex, d.scene)
	check(e.Draw(true, 0, 3, 0))
	check(e.UnBindFramebuffer(d.rt, false, nil))

	e.SetDirectViewport(0, 0, e.RenderWidth(), e.RenderHeight())
	e.Clear(&gputypes.Color{A: 1}, true, true, false)
	check(e.EnableEffect(d.blit))
	check(e.SetTexture(0, d.blit, "scene", texture.NewSampler(d.rt.Texture())))
	e.BindBuffers(d.quad, d.quadIndex, d.blit)
	check(e.Draw(true, 0, 6, 0))
}

func check(err error) {
	if err != nil && !errors.Is(err, glengine.ErrNoEffect) {
		log.Printf("frame: %v", err)
	}
}
