package main

import (
	"errors"
	"flag"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Raunak-S/tinyrender/pkg/render"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "no model") {
		t.Errorf("Validate() without model = %v", err)
	}

	s.Model = "head.obj"
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	cfg := s.RenderConfig()
	if cfg != render.DefaultConfig() {
		t.Errorf("RenderConfig() = %+v, want the renderer defaults", cfg)
	}
	if s.Variant() != render.VariantShadow {
		t.Errorf("Variant() = %v", s.Variant())
	}
	if cam := s.Camera(); cam.Eye.X != 1 || cam.Eye.Y != 1 || cam.Eye.Z != 4 {
		t.Errorf("Camera().Eye = %v", cam.Eye)
	}
}

func TestLoadScene(t *testing.T) {
	path := writeFile(t, "scene.yaml", `
model: models/diablo.obj
width: 320
height: 240
eye: [0, 0, 3]
shader: phong
ambient_floor: 0
output: out/render.png
`)
	s, err := LoadScene(path)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(path)
	if s.Model != filepath.Join(dir, "models", "diablo.obj") {
		t.Errorf("Model = %q, want it relative to the scene file", s.Model)
	}
	if s.Output != filepath.Join(dir, "out", "render.png") {
		t.Errorf("Output = %q", s.Output)
	}
	if s.AmbientFloor == nil || *s.AmbientFloor != 0 {
		t.Errorf("AmbientFloor = %v, want explicit 0", s.AmbientFloor)
	}

	r := Resolve(Defaults(), s)
	if r.Width != 320 || r.Height != 240 || r.Shader != "phong" {
		t.Errorf("resolved = %+v", r)
	}
	if r.Depth != 2000 || r.ZBuffer != "zbuffer.tga" {
		t.Errorf("defaults lost: depth %v zbuffer %q", r.Depth, r.ZBuffer)
	}
	if cfg := r.RenderConfig(); cfg.AmbientFloor != 0 || cfg.ShadowBias != 10 {
		t.Errorf("RenderConfig() = %+v", cfg)
	}
}

func TestLoadScene_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "modle: x.obj\n"},
		{"bad type", "width: wide\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadScene(writeFile(t, "scene.yaml", tc.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	s, err := LoadScene(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Errorf("empty scene file: %v", err)
	}
	if s.Model != "" {
		t.Errorf("empty scene Model = %q", s.Model)
	}
}

func TestResolve_FlagsWin(t *testing.T) {
	file := Defaults()
	file.Model = "a.obj"
	file.Width = 100
	on := true
	file.Wireframe = &on

	var over Scene
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(&over.Width, "width", 0, "")
	fs.Var(vecFlag{&over.Light}, "light", "")
	fs.Var(floatPtrFlag{&over.ShadowBias}, "bias", "")
	if err := fs.Parse([]string{"-width", "64", "-light", "0, 0, 1", "-bias", "0"}); err != nil {
		t.Fatal(err)
	}

	r := Resolve(file, over)
	if r.Width != 64 {
		t.Errorf("Width = %d, want the flag value", r.Width)
	}
	if len(r.Light) != 3 || r.Light[2] != 1 {
		t.Errorf("Light = %v", r.Light)
	}
	if r.ShadowBias == nil || *r.ShadowBias != 0 {
		t.Errorf("ShadowBias = %v, want explicit 0", r.ShadowBias)
	}
	if r.Model != "a.obj" || !enabled(r.Wireframe) || r.Height != 800 {
		t.Errorf("unset flags overrode the scene: %+v", r)
	}
}

func TestResolve_SwitchesOff(t *testing.T) {
	file, err := LoadScene(writeFile(t, "scene.yaml", "model: m.obj\nwireframe: true\nbounds: true\nnormalize: true\n"))
	if err != nil {
		t.Fatal(err)
	}

	var over Scene
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(boolPtrFlag{&over.Wireframe}, "wireframe", "")
	fs.Var(boolPtrFlag{&over.Bounds}, "bounds", "")
	fs.Var(boolPtrFlag{&over.Axes}, "axes", "")
	if err := fs.Parse([]string{"-wireframe=false", "-axes"}); err != nil {
		t.Fatal(err)
	}

	r := Resolve(Resolve(Defaults(), file), over)
	tests := []struct {
		name string
		got  *bool
		want bool
	}{
		{"wireframe turned off", r.Wireframe, false},
		{"bounds kept from file", r.Bounds, true},
		{"axes turned on", r.Axes, true},
		{"normalize kept from file", r.Normalize, true},
	}
	for _, tc := range tests {
		if enabled(tc.got) != tc.want {
			t.Errorf("%s: got %v", tc.name, enabled(tc.got))
		}
	}
	if enabled(Defaults().Wireframe) {
		t.Error("wireframe should default to off")
	}
}

func TestScene_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Scene)
		want   string
	}{
		{"short vector", func(s *Scene) { s.Eye = []float64{1, 2} }, "eye needs 3"},
		{"shader", func(s *Scene) { s.Shader = "toon" }, "unknown shader"},
		{"background", func(s *Scene) { s.Background = "1,2" }, "background"},
		{"background range", func(s *Scene) { s.Background = "1,2,300" }, "background"},
		{"frames", func(s *Scene) { s.Frames = 0 }, "frames"},
		{"output format", func(s *Scene) { s.Output = "out.gif" }, "unknown image format"},
		{"canvas", func(s *Scene) { s.Width = -5 }, "canvas size"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			s.Model = "m.obj"
			tc.modify(&s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}
}

func TestVecFlag(t *testing.T) {
	var v []float64
	f := vecFlag{&v}
	if err := f.Set("1.5,-2,3"); err != nil {
		t.Fatal(err)
	}
	if f.String() != "1.5,-2,3" {
		t.Errorf("String() = %q", f.String())
	}
	for _, bad := range []string{"1,2", "a,b,c", ""} {
		if err := f.Set(bad); err == nil {
			t.Errorf("Set(%q) should fail", bad)
		}
	}
}

func TestFrameName(t *testing.T) {
	tests := []struct {
		path string
		i    int
		want string
	}{
		{"output.tga", 0, "output_000.tga"},
		{"out/render.png", 12, "out/render_012.png"},
		{"noext", 7, "noext_007"},
	}
	for _, tc := range tests {
		if got := frameName(tc.path, tc.i); got != tc.want {
			t.Errorf("frameName(%q, %d) = %q, want %q", tc.path, tc.i, got, tc.want)
		}
	}
}

func TestOrbitAngles(t *testing.T) {
	if a := orbitAngles(1); len(a) != 1 || a[0] != 0 {
		t.Errorf("orbitAngles(1) = %v", a)
	}

	a := orbitAngles(60)
	if len(a) != 60 || a[0] != 0 {
		t.Fatalf("orbitAngles(60) starts %v, len %d", a[0], len(a))
	}
	for i := 1; i < len(a); i++ {
		if a[i] < a[i-1] {
			t.Fatalf("angle %d decreased: %v < %v", i, a[i], a[i-1])
		}
	}
	if last := a[len(a)-1]; last < 0.9*2*math.Pi || last > 2*math.Pi+1e-9 {
		t.Errorf("last angle = %v, want close to a full turn", last)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{800, 800, 100, 50, 50, 50},
		{800, 400, 100, 64, 100, 50},
		{10, 10, 100, 100, 100, 100},
		{0, 10, 100, 100, 0, 0},
	}
	for _, tc := range tests {
		w, h := fitSize(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("fitSize(%d, %d, %d, %d) = %d, %d, want %d, %d", tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}
