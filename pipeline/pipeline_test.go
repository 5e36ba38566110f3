// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/glengine/backend/soft"
	"github.com/gogpu/glengine/caps"
	"github.com/gogpu/glengine/frame"
	"github.com/gogpu/glengine/native"
)

const vertexSrc = `in vec3 position;
in vec2 uv;
uniform mat4 world;
uniform float alpha;
out vec2 vUV;
void main() { vUV = uv; gl_Position = world * vec4(position, alpha); }`

const fragmentSrc = `in vec2 vUV;
uniform sampler2D diffuse;
uniform vec4 color;
uniform Material {
	vec4 tint;
};
out vec4 fragColor;
void main() { fragColor = color * tint; }`

func newCache(t *testing.T, so soft.Options) (*Cache, *soft.Device) {
	t.Helper()
	d := soft.New(so)
	return New(d, caps.Probe(d), &frame.Queue{}, Options{}), d
}

func basic() EffectOptions {
	return EffectOptions{
		Vertex:         "basic",
		Fragment:       "basic",
		VertexSource:   vertexSrc,
		FragmentSource: fragmentSrc,
		Attributes:     []string{"position", "uv"},
		Uniforms:       []string{"world", "alpha", "color"},
		Samplers:       []string{"diffuse"},
	}
}

func mustEffect(t *testing.T, c *Cache, o EffectOptions) *Effect {
	t.Helper()
	e, err := c.CreateEffect(o)
	if err != nil {
		t.Fatalf("CreateEffect() error = %v", err)
	}
	return e
}

func TestSameEffectCompilesOnce(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	first := mustEffect(t, c, basic())

	compiled := 0
	o := basic()
	o.OnCompiled = func(*Effect) { compiled++ }
	second := mustEffect(t, c, o)

	if second != first {
		t.Error("CreateEffect() returned a different effect for the same key")
	}
	if got := d.Count("LinkProgram"); got != 1 {
		t.Errorf("LinkProgram calls = %d, want 1", got)
	}
	if got := c.Compiles(); got != 1 {
		t.Errorf("Compiles() = %d, want 1", got)
	}
	if compiled != 1 {
		t.Errorf("OnCompiled calls = %d, want 1", compiled)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestEffectKey(t *testing.T) {
	tests := []struct {
		name string
		opts EffectOptions
		want string
	}{
		{"names", EffectOptions{Vertex: "a", Fragment: "b", Defines: "#define X"}, "a+b@#define X"},
		{"no defines", EffectOptions{Vertex: "a", Fragment: "a"}, "a+a@"},
		{"source", EffectOptions{VertexSource: "x", Fragment: "b"}, stageName("", "x") + "+b@"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
	if stageName("", "x") == stageName("", "y") {
		t.Error("stageName() collides for different sources")
	}
}

func TestShaderConcatenation(t *testing.T) {
	c, _ := newCache(t, soft.Options{})
	o := basic()
	o.Defines = "#define FOG"
	e := mustEffect(t, c, o)
	want := c.caps.ShaderVersion() + "#define FOG\n" + vertexSrc
	if got := e.VertexCode(); got != want {
		t.Errorf("VertexCode() = %q, want %q", got, want)
	}

	raw := basic()
	raw.Vertex, raw.Fragment = "raw", "raw"
	raw.Raw = true
	raw.Defines = "#define FOG"
	r := mustEffect(t, c, raw)
	if got := r.FragmentCode(); got != fragmentSrc {
		t.Errorf("FragmentCode() = %q, want verbatim source", got)
	}
}

func TestShaderStore(t *testing.T) {
	c, _ := newCache(t, soft.Options{})
	c.RegisterShader("stored", StageVertex, vertexSrc)
	c.RegisterShader("stored", StageFragment, fragmentSrc)

	e := mustEffect(t, c, EffectOptions{Vertex: "stored", Fragment: "stored"})
	if !e.IsReady() {
		t.Errorf("Status() = %v, want ready", e.Status())
	}

	_, err := c.CreateEffect(EffectOptions{Vertex: "stored", Fragment: "missing"})
	if !errors.Is(err, ErrNoSource) {
		t.Errorf("CreateEffect() error = %v, want ErrNoSource", err)
	}
	if _, err := c.CreateEffect(EffectOptions{Vertex: "stored"}); err == nil {
		t.Error("CreateEffect() without fragment should fail")
	}
}

func TestShadersFreedAfterLink(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	e := mustEffect(t, c, basic())

	if got := d.LiveShaders(); got != 0 {
		t.Errorf("LiveShaders() = %d, want 0", got)
	}
	if got := d.LivePrograms(); got != 1 {
		t.Errorf("LivePrograms() = %d, want 1", got)
	}
	attrs := []struct {
		name string
		want int
	}{
		{"position", 0},
		{"uv", 1},
		{"normal", -1},
	}
	for _, a := range attrs {
		if got := e.AttributeLocation(a.name); got != a.want {
			t.Errorf("AttributeLocation(%q) = %d, want %d", a.name, got, a.want)
		}
	}
	if got := e.Uniform("world"); got != 0 {
		t.Errorf("Uniform(world) = %d, want 0", got)
	}
	if got := e.Uniform("diffuse"); got != 2 {
		t.Errorf("Uniform(diffuse) = %d, want 2", got)
	}
	if got := e.Uniform("nothing"); got.Valid() {
		t.Errorf("Uniform(nothing) = %d, want invalid", got)
	}
	if got := e.SamplerIndex("diffuse"); got != 0 {
		t.Errorf("SamplerIndex(diffuse) = %d, want 0", got)
	}
}

func TestCompileErrorIsPermanent(t *testing.T) {
	tests := []struct {
		name    string
		defines string
		frag    string
		stage   Stage
		prefix  string
	}{
		{"fragment", "", "#error broken fragment\n" + fragmentSrc, StageFragment, "FRAGMENT SHADER "},
		{"both stages", "#error broken define", fragmentSrc, StageVertex, "VERTEX SHADER "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, d := newCache(t, soft.Options{})
			var reported error
			o := basic()
			o.Defines = tt.defines
			o.FragmentSource = tt.frag
			o.OnError = func(_ *Effect, err error) { reported = err }

			e, err := c.CreateEffect(o)
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("CreateEffect() error = %v, want *CompileError", err)
			}
			if ce.Stage != tt.stage {
				t.Errorf("Stage = %v, want %v", ce.Stage, tt.stage)
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) || !strings.Contains(err.Error(), "broken") {
				t.Errorf("Error() = %q, want prefix %q and the driver log", err.Error(), tt.prefix)
			}
			if reported != err {
				t.Errorf("OnError got %v, want %v", reported, err)
			}
			if e == nil || e.Status() != Failed {
				t.Fatalf("effect = %v, want a failed effect", e)
			}
			if d.LivePrograms() != 0 || d.LiveShaders() != 0 {
				t.Errorf("live programs/shaders = %d/%d, want 0/0", d.LivePrograms(), d.LiveShaders())
			}

			again, err2 := c.CreateEffect(o)
			if again != e || err2 != err {
				t.Error("second CreateEffect() did not return the cached failure")
			}
			if got := d.Count("LinkProgram"); got != 1 {
				t.Errorf("LinkProgram calls = %d, want 1", got)
			}
			if err := c.Use(e); err != err2 {
				t.Errorf("Use() error = %v, want %v", err, err2)
			}
			ran := false
			e.ExecuteWhenCompiled(func(*Effect) { ran = true })
			if ran {
				t.Error("ExecuteWhenCompiled() ran for a failed effect")
			}
			if c.AreAllEffectsReady() {
				t.Error("AreAllEffectsReady() = true with a failed effect")
			}
		})
	}
}

func TestCompileErrorMessages(t *testing.T) {
	tests := []struct {
		err  *CompileError
		want string
	}{
		{&CompileError{Stage: StageVertex, Log: "x"}, "VERTEX SHADER x"},
		{&CompileError{Stage: StageFragment, Log: "y"}, "FRAGMENT SHADER y"},
		{&CompileError{Stage: StageProgram, Log: "z"}, "z"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestParallelCompile(t *testing.T) {
	c, d := newCache(t, soft.Options{ParallelCompile: true})
	if !c.Parallel() {
		t.Fatal("Parallel() = false, want true")
	}
	var order []string
	o := basic()
	o.OnCompiled = func(*Effect) { order = append(order, "options") }
	e := mustEffect(t, c, o)

	if e.Status() != Compiling {
		t.Fatalf("Status() = %v, want compiling", e.Status())
	}
	if err := c.Use(e); !errors.Is(err, ErrNotReady) {
		t.Errorf("Use() error = %v, want ErrNotReady", err)
	}
	e.ExecuteWhenCompiled(func(*Effect) { order = append(order, "first") })
	hit := basic()
	hit.OnCompiled = func(*Effect) { order = append(order, "hit") }
	mustEffect(t, c, hit)
	if c.AreAllEffectsReady() {
		t.Error("AreAllEffectsReady() = true while compiling")
	}

	if got := c.Poll(); got != 0 {
		t.Errorf("first Poll() = %d, want 0", got)
	}
	if got := c.Poll(); got != 1 {
		t.Errorf("second Poll() = %d, want 1", got)
	}
	if !e.IsReady() {
		t.Fatalf("Status() = %v, want ready", e.Status())
	}
	want := []string{"options", "first", "hit"}
	if !slices.Equal(order, want) {
		t.Errorf("callbacks = %v, want %v", order, want)
	}
	if !e.Compiled().Done() {
		t.Error("Compiled() not resolved")
	}
	if got := d.LiveShaders(); got != 0 {
		t.Errorf("LiveShaders() = %d, want 0", got)
	}
	if got := c.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
	if got := c.Poll(); got != 0 {
		t.Errorf("idle Poll() = %d, want 0", got)
	}
	if !c.AreAllEffectsReady() {
		t.Error("AreAllEffectsReady() = false")
	}
}

func TestParallelCompileFailure(t *testing.T) {
	c, _ := newCache(t, soft.Options{ParallelCompile: true})
	o := basic()
	o.FragmentSource = "#error late\n" + fragmentSrc
	e, err := c.CreateEffect(o)
	if err != nil {
		t.Fatalf("CreateEffect() error = %v, want nil until finalized", err)
	}
	c.Poll()
	c.Poll()
	if e.Status() != Failed {
		t.Fatalf("Status() = %v, want failed", e.Status())
	}
	if _, err := e.Compiled().Result(); err == nil {
		t.Error("Compiled() resolved without the compile error")
	}
}

func TestReleaseWaitsForPendingCompile(t *testing.T) {
	c, d := newCache(t, soft.Options{ParallelCompile: true})
	e := mustEffect(t, c, basic())

	if err := c.ReleaseEffect(e); err != nil {
		t.Fatalf("ReleaseEffect() error = %v", err)
	}
	if c.IsLive(e) {
		t.Error("IsLive() = true after release")
	}
	if got := d.Deleted("program"); got != 0 {
		t.Errorf("programs deleted before finalize = %d, want 0", got)
	}
	c.Poll()
	c.Poll()
	if got := d.Deleted("program"); got != 1 {
		t.Errorf("programs deleted = %d, want 1", got)
	}
	if got := d.LivePrograms(); got != 0 {
		t.Errorf("LivePrograms() = %d, want 0", got)
	}
	if !errors.Is(c.ReleaseEffect(e), ErrStale) {
		t.Error("second ReleaseEffect() should report a stale effect")
	}

	again := mustEffect(t, c, basic())
	if again == e {
		t.Error("released effect came back from the cache")
	}
}

func TestTransformFeedback(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	o := basic()
	o.TransformFeedbackVaryings = []string{"vUV"}
	e := mustEffect(t, c, o)

	if e.TransformFeedback() == 0 {
		t.Fatal("TransformFeedback() = 0")
	}
	if got := d.Varyings(e.Program()); !slices.Equal(got, []string{"vUV"}) {
		t.Errorf("Varyings() = %v, want [vUV]", got)
	}
	link := d.Index("LinkProgram", 0)
	if v := d.Index("TransformFeedbackVaryings", 0); v < 0 || v > link {
		t.Errorf("TransformFeedbackVaryings at %d, want before LinkProgram at %d", v, link)
	}

	d.ResetCalls()
	if err := c.ReleaseEffect(e); err != nil {
		t.Fatal(err)
	}
	tf, prog := d.Index("DeleteTransformFeedback", 0), d.Index("DeleteProgram", 0)
	if tf < 0 || prog < 0 || tf > prog {
		t.Errorf("DeleteTransformFeedback at %d, DeleteProgram at %d, want feedback first", tf, prog)
	}
	if got := d.DoubleDeletes(); got != 0 {
		t.Errorf("DoubleDeletes() = %d, want 0", got)
	}
}

func TestTransformFeedbackNeedsVersion2(t *testing.T) {
	c, d := newCache(t, soft.Options{Version: 1})
	o := basic()
	o.TransformFeedbackVaryings = []string{"vUV"}
	e := mustEffect(t, c, o)
	if e.TransformFeedback() != 0 {
		t.Error("TransformFeedback() created on a version 1 context")
	}
	if got := d.Count("CreateTransformFeedback"); got != 0 {
		t.Errorf("CreateTransformFeedback calls = %d, want 0", got)
	}
	if !e.IsReady() {
		t.Errorf("Status() = %v, want ready", e.Status())
	}
}

func TestUseElidesUseProgram(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	a := mustEffect(t, c, basic())
	bo := basic()
	bo.Vertex = "other"
	b := mustEffect(t, c, bo)

	var used []native.Program
	c.OnUse(func(p native.Program) { used = append(used, p) })
	d.ResetCalls()

	for _, e := range []*Effect{a, a, b, b, a} {
		if err := c.Use(e); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Count("UseProgram"); got != 3 {
		t.Errorf("UseProgram calls = %d, want 3", got)
	}
	want := []native.Program{a.Program(), b.Program(), a.Program()}
	if !slices.Equal(used, want) {
		t.Errorf("OnUse programs = %v, want %v", used, want)
	}
	if c.Current() != a {
		t.Error("Current() is not the last used effect")
	}

	c.WipeCaches(false)
	if c.Current() != nil {
		t.Error("Current() survived WipeCaches")
	}
	_ = c.Use(a)
	if got := d.Count("UseProgram"); got != 3 {
		t.Errorf("UseProgram calls after soft wipe = %d, want 3", got)
	}
	c.WipeCaches(true)
	_ = c.Use(a)
	if got := d.Count("UseProgram"); got != 4 {
		t.Errorf("UseProgram calls after brute force wipe = %d, want 4", got)
	}
	if got := d.CurrentProgram(); got != a.Program() {
		t.Errorf("CurrentProgram() = %d, want %d", got, a.Program())
	}
}

func TestUniformValuesAreCached(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	e := mustEffect(t, c, basic())
	d.ResetCalls()

	identity := []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	steps := []func() error{
		func() error { return e.SetFloat("alpha", 1) },
		func() error { return e.SetFloat("alpha", 1) },
		func() error { return e.SetFloat("alpha", 0.5) },
		func() error { return e.SetMatrix4("world", identity) },
		func() error { return e.SetMatrix4("world", identity) },
		func() error { return e.SetFloat4("color", 1, 0, 0, 1) },
		func() error { return e.SetFloat4("color", 1, 0, 0, 1) },
		func() error { return e.SetFloat("unknown", 3) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
	}
	counts := map[string]int{"Uniform1f": 2, "UniformMatrix4fv": 1, "Uniform4f": 1, "UseProgram": 1}
	for name, want := range counts {
		if got := d.Count(name); got != want {
			t.Errorf("%s calls = %d, want %d", name, got, want)
		}
	}
	if got, _ := d.UniformValue(e.Program(), "alpha"); !slices.Equal(got, []float32{0.5}) {
		t.Errorf("alpha = %v, want [0.5]", got)
	}

	c.WipeCaches(true)
	if err := e.SetFloat("alpha", 0.5); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("Uniform1f"); got != 3 {
		t.Errorf("Uniform1f calls after wipe = %d, want 3", got)
	}
	if err := e.SetMatrix4("world", identity[:15]); err == nil {
		t.Error("SetMatrix4() accepted 15 floats")
	}
}

func TestUniformSettersMakeEffectCurrent(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	a := mustEffect(t, c, basic())
	bo := basic()
	bo.Fragment = "other"
	b := mustEffect(t, c, bo)

	_ = c.Use(a)
	if err := b.SetInt("alpha", 2); err != nil {
		t.Fatal(err)
	}
	if c.Current() != b || d.CurrentProgram() != b.Program() {
		t.Error("SetInt() did not make its effect current")
	}
	if got, _ := d.UniformValue(b.Program(), "alpha"); !slices.Equal(got, []float32{2}) {
		t.Errorf("alpha of b = %v, want [2]", got)
	}
	if _, ok := d.UniformValue(a.Program(), "alpha"); ok {
		t.Error("value leaked into the other program")
	}
}

func TestBindUniformBlock(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	e := mustEffect(t, c, basic())

	for range 2 {
		if err := e.BindUniformBlock("Material", 3); err != nil {
			t.Fatal(err)
		}
	}
	if got := d.Count("UniformBlockBinding"); got != 1 {
		t.Errorf("UniformBlockBinding calls = %d, want 1", got)
	}
	if got, ok := d.BlockBinding(e.Program(), 0); !ok || got != 3 {
		t.Errorf("BlockBinding() = %d, %v, want 3, true", got, ok)
	}
	if err := e.BindUniformBlock("Missing", 1); err != nil {
		t.Errorf("BindUniformBlock(Missing) error = %v, want nil", err)
	}
}

func TestReleaseAndDispose(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	a := mustEffect(t, c, basic())
	bo := basic()
	bo.Vertex = "b"
	mustEffect(t, c, bo)

	var deleted []native.Program
	c.OnDelete(func(p native.Program) { deleted = append(deleted, p) })

	pa := a.Program()
	if err := c.ReleaseEffect(a); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(deleted, []native.Program{pa}) {
		t.Errorf("OnDelete programs = %v, want [%d]", deleted, pa)
	}
	if _, ok := c.Effect(basic().Key()); ok {
		t.Error("released effect still cached by key")
	}

	c.Dispose()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if got := d.LivePrograms(); got != 0 {
		t.Errorf("LivePrograms() = %d, want 0", got)
	}
	if got := d.DoubleDeletes(); got != 0 {
		t.Errorf("DoubleDeletes() = %d, want 0", got)
	}
	if len(deleted) != 2 {
		t.Errorf("OnDelete calls = %d, want 2", len(deleted))
	}
}

func TestReleaseEffects(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	mustEffect(t, c, basic())
	bo := basic()
	bo.Vertex = "b"
	mustEffect(t, c, bo)

	c.ReleaseEffects()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if got := d.Deleted("program"); got != 2 {
		t.Errorf("programs deleted = %d, want 2", got)
	}
	if !c.AreAllEffectsReady() {
		t.Error("AreAllEffectsReady() = false on an empty cache")
	}
}

func TestRebuildAll(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	e := mustEffect(t, c, basic())
	_ = e.SetFloat("alpha", 1)

	d.LoseContext()
	d.RestoreContext()
	if err := c.RebuildAll(); err != nil {
		t.Fatalf("RebuildAll() error = %v", err)
	}
	if !e.IsReady() {
		t.Fatalf("Status() = %v, want ready", e.Status())
	}
	if got, ok := c.Effect(e.Key()); !ok || got != e {
		t.Error("effect identity changed across rebuild")
	}
	if got := d.LivePrograms(); got != 1 {
		t.Errorf("LivePrograms() = %d, want 1", got)
	}
	if got := c.Compiles(); got != 2 {
		t.Errorf("Compiles() = %d, want 2", got)
	}

	d.ResetCalls()
	if err := e.SetFloat("alpha", 1); err != nil {
		t.Fatal(err)
	}
	if got := d.Count("Uniform1f"); got != 1 {
		t.Errorf("Uniform1f calls after rebuild = %d, want 1", got)
	}
}

func TestWGSLNeedsSPIRV(t *testing.T) {
	c, d := newCache(t, soft.Options{})
	e, err := c.CreateEffect(EffectOptions{
		Vertex: "w", Fragment: "w",
		VertexSource: "@vertex fn main() {}", FragmentSource: "@fragment fn main() {}",
		Language: WGSL,
	})
	if !errors.Is(err, ErrUnsupported) || e != nil {
		t.Errorf("CreateEffect() = %v, %v, want nil, ErrUnsupported", e, err)
	}
	if got := d.Count("CreateShader"); got != 0 {
		t.Errorf("CreateShader calls = %d, want 0", got)
	}
}

const wgslVertex = `@vertex
fn main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

const wgslFragment = `@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestWGSLEffect(t *testing.T) {
	words, err := CompileWGSL(wgslVertex)
	if err != nil {
		t.Skipf("Skipping: naga cannot translate the test shader: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("CompileWGSL() returned no words")
	}
	if words[0] != 0x07230203 {
		t.Fatalf("CompileWGSL() magic = %#x, want 0x07230203", words[0])
	}

	c, d := newCache(t, soft.Options{Extensions: []string{native.ExtSPIRV}})
	e, err := c.CreateEffect(EffectOptions{
		Vertex: "wgsl", Fragment: "wgsl",
		VertexSource: wgslVertex, FragmentSource: wgslFragment,
		Language: WGSL,
	})
	if err != nil {
		t.Skipf("Skipping: naga cannot translate the test shader: %v", err)
	}
	if !e.IsReady() {
		t.Fatalf("Status() = %v, want ready", e.Status())
	}
	if got := d.Count("ShaderBinary"); got != 2 {
		t.Errorf("ShaderBinary calls = %d, want 2", got)
	}
	if got := d.Count("ShaderSource"); got != 0 {
		t.Errorf("ShaderSource calls = %d, want 0", got)
	}
	if got := TranslationsCached(); got < 2 {
		t.Errorf("TranslationsCached() = %d, want at least 2", got)
	}
}
