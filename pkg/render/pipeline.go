package render

import (
	"fmt"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Progress receives the number of faces finished. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
}

// Frame is the result of one render pass.
type Frame struct {
	Image      *Framebuffer
	Depth      *DepthBuffer
	Transforms *Transforms
	Stats      Stats
}

// ShadowFrame holds both passes of a shadowed render. Light.Depth is the
// shadow buffer the eye pass read.
type ShadowFrame struct {
	Light Frame
	Eye   Frame
}

// Pipeline runs render passes with a shared configuration.
type Pipeline struct {
	Config   Config
	Progress Progress // optional
}

// NewPipeline creates a pipeline for cfg.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{Config: cfg}
}

// progressBatch is how many faces are drawn between Progress reports.
const progressBatch = 256

// DrawModel runs the vertex stage for the three corners of every face of m
// and rasterizes the result.
func DrawModel(r *Rasterizer, m Model, sh Shader, t *Transforms) {
	drawFaces(r, m, sh, t, 0, m.FaceCount())
}

// drawFaces draws faces [lo, hi) of m.
func drawFaces(r *Rasterizer, m Model, sh Shader, t *Transforms, lo, hi int) {
	var clip [3]math3d.Vec4
	for f := lo; f < hi; f++ {
		for i := range 3 {
			clip[i] = sh.Vertex(f, i, t)
		}
		r.DrawTriangle(clip, sh)
	}
}

// Pass renders m with sh into fresh buffers sized to the configuration.
// An error from the Progress sink stops the pass.
func (p *Pipeline) Pass(m Model, sh Shader, t *Transforms) (Frame, error) {
	fb := NewFramebuffer(p.Config.Width, p.Config.Height)
	fb.Clear(p.Config.Background)
	r := NewRasterizer(fb, NewDepthBuffer(p.Config.Width, p.Config.Height))

	if p.Progress == nil {
		DrawModel(r, m, sh, t)
	} else {
		n := m.FaceCount()
		for lo := 0; lo < n; lo += progressBatch {
			hi := min(lo+progressBatch, n)
			drawFaces(r, m, sh, t, lo, hi)
			if err := p.Progress.Add(hi - lo); err != nil {
				return Frame{}, fmt.Errorf("progress: %w", err)
			}
		}
	}

	return Frame{Image: fb, Depth: r.depth, Transforms: t, Stats: r.Stats}, nil
}

// Render runs a single pass with the named variant seen through eye. The
// shadow variant runs both passes and returns the eye frame.
func (p *Pipeline) Render(m Model, s Surface, eye Camera, light math3d.Vec3, v Variant) (Frame, error) {
	if err := p.Config.Validate(); err != nil {
		return Frame{}, fmt.Errorf("render: %w", err)
	}
	if v == VariantShadow {
		sf, err := p.RenderShadowed(m, s, eye, light)
		if err != nil {
			return Frame{}, err
		}
		return sf.Eye, nil
	}
	sh, err := NewShader(v, Uniforms{Model: m, Surface: s, Light: light, Depth: p.Config.Depth})
	if err != nil {
		return Frame{}, fmt.Errorf("render: %w", err)
	}
	f, err := p.Pass(m, sh, eye.Transforms(p.Config))
	if err != nil {
		return Frame{}, fmt.Errorf("render: %w", err)
	}
	return f, nil
}

// RenderShadowed renders the depth pass from the light, then the eye pass
// with the shadow shader reading the light's finished depth buffer.
func (p *Pipeline) RenderShadowed(m Model, s Surface, eye Camera, light math3d.Vec3) (ShadowFrame, error) {
	if err := p.Config.Validate(); err != nil {
		return ShadowFrame{}, fmt.Errorf("render: %w", err)
	}
	if light.LenSq() == 0 {
		return ShadowFrame{}, fmt.Errorf("render: light direction is zero")
	}

	lightCam := LightCamera(light, eye.Center, eye.Up)
	lt := lightCam.Transforms(p.Config)
	lightFrame, err := p.Pass(m, NewDepthShader(m, p.Config.Depth), lt)
	if err != nil {
		return ShadowFrame{}, fmt.Errorf("render: light pass: %w", err)
	}

	et := eye.Transforms(p.Config)
	mshadow, err := ShadowMatrix(lt, et)
	if err != nil {
		return ShadowFrame{}, fmt.Errorf("render: %w", err)
	}

	u := Uniforms{Model: m, Surface: s, Light: light, Depth: p.Config.Depth}
	sh := NewShadowShader(u, lightFrame.Depth, mshadow, p.Config.AmbientFloor, p.Config.ShadowBias)
	eyeFrame, err := p.Pass(m, sh, et)
	if err != nil {
		return ShadowFrame{}, fmt.Errorf("render: eye pass: %w", err)
	}
	return ShadowFrame{Light: lightFrame, Eye: eyeFrame}, nil
}

// ShadowMatrix returns Screen_light · Screen_eye⁻¹, mapping eye-pass screen
// coordinates to light-pass screen coordinates.
func ShadowMatrix(light, eye *Transforms) (m *math3d.Matrix, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("shadow matrix: %w", e)
		}
	}()
	return light.Screen().Mul(eye.Screen().InvertElimination()), nil
}
