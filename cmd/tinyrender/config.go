package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
	"github.com/Raunak-S/tinyrender/pkg/render"
)

// Scene is everything one invocation renders. It is read from a YAML file
// and overridden field by field from the command line.
type Scene struct {
	Model string `yaml:"model"`

	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Depth  float64 `yaml:"depth"`

	Eye    []float64 `yaml:"eye,flow"`
	Center []float64 `yaml:"center,flow"`
	Up     []float64 `yaml:"up,flow"`
	Light  []float64 `yaml:"light,flow"`

	Shader       string   `yaml:"shader"`
	AmbientFloor *float64 `yaml:"ambient_floor"`
	ShadowBias   *float64 `yaml:"shadow_bias"`
	Background   string   `yaml:"background"` // "r,g,b"

	// Yaw rotates the model about +Y, in degrees.
	Yaw       float64 `yaml:"yaw"`
	Normalize *bool   `yaml:"normalize"`

	// Overlays drawn over the shaded image.
	Wireframe *bool `yaml:"wireframe"`
	Bounds    *bool `yaml:"bounds"`
	Axes      *bool `yaml:"axes"`

	Output    string `yaml:"output"`
	ZBuffer   string `yaml:"zbuffer"`
	ShadowMap string `yaml:"shadow_map"` // light-pass depth, shadow shader only

	Frames int `yaml:"frames"`
}

// Defaults are the renderer's historical scene.
func Defaults() Scene {
	floor, bias := 0.3, 10.0
	return Scene{
		Width:        800,
		Height:       800,
		Depth:        2000,
		Eye:          []float64{1, 1, 4},
		Center:       []float64{0, 0, 0},
		Up:           []float64{0, 1, 0},
		Light:        []float64{1, 1, 0},
		Shader:       "shadow",
		AmbientFloor: &floor,
		ShadowBias:   &bias,
		Background:   "0,0,0",
		Output:       "output.tga",
		ZBuffer:      "zbuffer.tga",
		Frames:       1,
	}
}

// LoadScene reads a YAML scene file. Unknown keys are errors.
func LoadScene(path string) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scene{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	var s Scene
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scene{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Paths in a scene file are relative to the file.
	dir := filepath.Dir(path)
	for _, p := range []*string{&s.Model, &s.Output, &s.ZBuffer, &s.ShadowMap} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return s, nil
}

// Resolve overlays the non-zero fields of over onto base.
func Resolve(base, over Scene) Scene {
	s := base
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setVec := func(dst *[]float64, v []float64) {
		if v != nil {
			*dst = v
		}
	}

	setString(&s.Model, over.Model)
	if over.Width != 0 {
		s.Width = over.Width
	}
	if over.Height != 0 {
		s.Height = over.Height
	}
	if over.Depth != 0 {
		s.Depth = over.Depth
	}
	setVec(&s.Eye, over.Eye)
	setVec(&s.Center, over.Center)
	setVec(&s.Up, over.Up)
	setVec(&s.Light, over.Light)
	setString(&s.Shader, over.Shader)
	if over.AmbientFloor != nil {
		s.AmbientFloor = over.AmbientFloor
	}
	if over.ShadowBias != nil {
		s.ShadowBias = over.ShadowBias
	}
	setString(&s.Background, over.Background)
	if over.Yaw != 0 {
		s.Yaw = over.Yaw
	}
	for _, b := range []struct{ dst, v **bool }{
		{&s.Normalize, &over.Normalize},
		{&s.Wireframe, &over.Wireframe},
		{&s.Bounds, &over.Bounds},
		{&s.Axes, &over.Axes},
	} {
		if *b.v != nil {
			*b.dst = *b.v
		}
	}
	setString(&s.Output, over.Output)
	setString(&s.ZBuffer, over.ZBuffer)
	setString(&s.ShadowMap, over.ShadowMap)
	if over.Frames != 0 {
		s.Frames = over.Frames
	}
	return s
}

// Validate reports every invalid field at once.
func (s Scene) Validate() error {
	var errs []error
	if s.Model == "" {
		errs = append(errs, errors.New("no model given"))
	}
	for name, v := range map[string][]float64{"eye": s.Eye, "center": s.Center, "up": s.Up, "light": s.Light} {
		if len(v) != 3 {
			errs = append(errs, fmt.Errorf("%s needs 3 components, got %d", name, len(v)))
		}
	}
	if _, err := render.ParseVariant(s.Shader); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseColor(s.Background); err != nil {
		errs = append(errs, err)
	}
	if s.Frames < 1 {
		errs = append(errs, fmt.Errorf("frames %d must be at least 1", s.Frames))
	}
	for _, out := range []string{s.Output, s.ZBuffer, s.ShadowMap} {
		if out != "" && !render.KnownFormat(filepath.Ext(out)) {
			errs = append(errs, fmt.Errorf("output %s: %w", out, render.ErrUnknownFormat))
		}
	}
	if s.Output == "" {
		errs = append(errs, errors.New("no output path"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := s.RenderConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// RenderConfig converts the scene's canvas settings. Call after Validate.
func (s Scene) RenderConfig() render.Config {
	cfg := render.DefaultConfig()
	cfg.Width = s.Width
	cfg.Height = s.Height
	cfg.Depth = s.Depth
	if s.AmbientFloor != nil {
		cfg.AmbientFloor = *s.AmbientFloor
	}
	if s.ShadowBias != nil {
		cfg.ShadowBias = *s.ShadowBias
	}
	if bg, err := parseColor(s.Background); err == nil {
		cfg.Background = bg
	}
	return cfg
}

// Camera returns the eye camera. Call after Validate.
func (s Scene) Camera() render.Camera {
	return render.Camera{
		Eye:    math3d.V3FromSlice(s.Eye),
		Center: math3d.V3FromSlice(s.Center),
		Up:     math3d.V3FromSlice(s.Up),
	}
}

// LightDir returns the direction toward the light. Call after Validate.
func (s Scene) LightDir() math3d.Vec3 {
	return math3d.V3FromSlice(s.Light)
}

// Variant returns the parsed shader. Call after Validate.
func (s Scene) Variant() render.Variant {
	v, _ := render.ParseVariant(s.Shader)
	return v
}

// enabled reports whether an optional switch is set and true.
func enabled(b *bool) bool { return b != nil && *b }

func parseColor(s string) (render.Color, error) {
	if s == "" {
		return render.ColorBlack, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("background %q: want r,g,b", s)
	}
	var c [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("background %q: %w", s, err)
		}
		c[i] = uint8(v)
	}
	return render.RGB(c[0], c[1], c[2]), nil
}

// vecFlag parses "x,y,z" into a slice.
type vecFlag struct{ dst *[]float64 }

func (f vecFlag) String() string {
	if f.dst == nil || *f.dst == nil {
		return ""
	}
	parts := make([]string, len(*f.dst))
	for i, v := range *f.dst {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (f vecFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	v := make([]float64, 3)
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return err
		}
		v[i] = x
	}
	*f.dst = v
	return nil
}

// floatPtrFlag sets *dst only when the flag is given, so an explicit 0 is
// distinguishable from unset.
type floatPtrFlag struct{ dst **float64 }

func (f floatPtrFlag) String() string {
	if f.dst == nil || *f.dst == nil {
		return ""
	}
	return strconv.FormatFloat(**f.dst, 'g', -1, 64)
}

func (f floatPtrFlag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f.dst = &v
	return nil
}

// boolPtrFlag is a boolean flag that sets *dst only when given, so
// -wireframe=false can turn off a scene file's true.
type boolPtrFlag struct{ dst **bool }

func (f boolPtrFlag) String() string {
	if f.dst == nil || *f.dst == nil {
		return ""
	}
	return strconv.FormatBool(**f.dst)
}

func (f boolPtrFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f.dst = &v
	return nil
}

func (f boolPtrFlag) IsBoolFlag() bool { return true }
