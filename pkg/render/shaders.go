package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Variant selects a shading model.
type Variant int

const (
	VariantFlat    Variant = iota // one intensity per face
	VariantGouraud                // per-vertex intensity, interpolated
	VariantPhong                  // per-fragment normal, diffuse and specular
	VariantTangent                // tangent-space normal mapping
	VariantDepth                  // grayscale depth, the light pass
	VariantShadow                 // phong with a shadow-buffer lookup
)

var variantNames = [...]string{"flat", "gouraud", "phong", "tangent", "depth", "shadow"}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

// ParseVariant maps a name such as "phong" to its Variant.
func ParseVariant(s string) (Variant, error) {
	for i, name := range variantNames {
		if strings.EqualFold(s, name) {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shader %q (want one of %s)", s, strings.Join(variantNames[:], ", "))
}

// Uniforms are the inputs shared by every shader of a pass.
type Uniforms struct {
	Model   Model
	Surface Surface
	Light   math3d.Vec3 // world-space direction toward the light
	Depth   float64     // viewport depth range
}

// NewShader builds a single-pass shader. The shadow variant needs a light
// pass first and is built by Pipeline.RenderShadowed instead.
func NewShader(v Variant, u Uniforms) (Shader, error) {
	u.Light = u.Light.Normalize()
	switch v {
	case VariantFlat:
		return &FlatShader{Uniforms: u, ShaderState: NewShaderState()}, nil
	case VariantGouraud:
		return &GouraudShader{Uniforms: u, ShaderState: NewShaderState()}, nil
	case VariantPhong:
		return &PhongShader{Uniforms: u, ShaderState: NewShaderState()}, nil
	case VariantTangent:
		return &TangentShader{Uniforms: u, ShaderState: NewShaderState()}, nil
	case VariantDepth:
		return NewDepthShader(u.Model, u.Depth), nil
	case VariantShadow:
		return nil, fmt.Errorf("shadow shader needs a shadow buffer")
	}
	return nil, fmt.Errorf("unknown shader variant %d", int(v))
}

// FlatShader lights each face with its geometric normal.
type FlatShader struct {
	Uniforms
	ShaderState

	world     [3]math3d.Vec3
	intensity float64
}

func (s *FlatShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	s.world[nthvert] = s.Model.Position(face, nthvert)
	s.setUV(nthvert, s.Model.UV(face, nthvert))
	if nthvert == 2 {
		n := s.world[1].Sub(s.world[0]).Cross(s.world[2].Sub(s.world[0])).Normalize()
		s.intensity = max(0, n.Dot(s.Light))
	}
	return s.project(nthvert, s.world[nthvert], t)
}

func (s *FlatShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	return false, MultiplyColor(s.Surface.Diffuse(s.uv(bar)), s.intensity)
}

// GouraudShader interpolates per-vertex diffuse intensity.
type GouraudShader struct {
	Uniforms
	ShaderState

	intensity math3d.Vec3
}

func (s *GouraudShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	n := s.Model.Normal(face, nthvert)
	i := max(0, n.Dot(s.Light))
	switch nthvert {
	case 0:
		s.intensity.X = i
	case 1:
		s.intensity.Y = i
	case 2:
		s.intensity.Z = i
	}
	s.setUV(nthvert, s.Model.UV(face, nthvert))
	return s.project(nthvert, s.Model.Position(face, nthvert), t)
}

func (s *GouraudShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	return false, MultiplyColor(s.Surface.Diffuse(s.uv(bar)), s.intensity.Dot(bar))
}

// lighting holds the matrices derived from a pass's transforms: M maps the
// light direction, MIT maps normals.
type lighting struct {
	bound *Transforms
	M     *math3d.Matrix
	MIT   *math3d.Matrix
	light math3d.Vec3
}

// bind recomputes the matrices when t changes. MIT is the inverse transpose
// of normalFrame.
func (l *lighting) bind(t *Transforms, lightFrame, normalFrame *math3d.Matrix, light math3d.Vec3) {
	if l.bound == t {
		return
	}
	l.bound = t
	l.M = lightFrame
	l.MIT = normalFrame.InverseTranspose()
	l.light = math3d.TransformDir(lightFrame, light).Normalize()
}

// normal maps a world normal into the lit frame.
func (l *lighting) normal(n math3d.Vec3) math3d.Vec3 {
	return math3d.TransformDir(l.MIT, n).Normalize()
}

// phong returns the diffuse and specular terms for normal n.
func (l *lighting) phong(n math3d.Vec3, exp float64, hasSpec bool) (diff, spec float64) {
	diff = max(0, n.Dot(l.light))
	if hasSpec {
		r := n.Scale(2 * n.Dot(l.light)).Sub(l.light).Normalize()
		spec = math.Pow(max(r.Z, 0), exp)
	}
	return diff, spec
}

// surfaceNormal returns the normal-map sample at uv, or the interpolated
// vertex normal when the surface has no normal map.
func surfaceNormal(sf Surface, st *ShaderState, uv math3d.Vec2, bar math3d.Vec3) math3d.Vec3 {
	if n, ok := sf.Normal(uv); ok {
		return n
	}
	return lerp(st.Normal, bar)
}

// PhongShader shades per fragment with diffuse and specular terms in the
// projected frame.
type PhongShader struct {
	Uniforms
	ShaderState
	lighting
}

func (s *PhongShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	s.bind(t, t.Clip(), t.Clip(), s.Light)
	s.setUV(nthvert, s.Model.UV(face, nthvert))
	s.Normal.SetCol(nthvert, s.Model.Normal(face, nthvert).Slice())
	return s.project(nthvert, s.Model.Position(face, nthvert), t)
}

func (s *PhongShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	uv := s.uv(bar)
	n := s.normal(surfaceNormal(s.Surface, &s.ShaderState, uv, bar))
	exp, hasSpec := s.Surface.Specular(uv)
	diff, spec := s.phong(n, exp, hasSpec)
	return false, shade(s.Surface.Diffuse(uv), 5, diff+0.6*spec)
}

// TangentShader perturbs the interpolated normal with a tangent-space
// normal map using a per-fragment Darboux frame.
type TangentShader struct {
	Uniforms
	ShaderState
	lighting
}

func (s *TangentShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	s.bind(t, t.Clip(), t.Clip(), s.Light)
	p := s.Model.Position(face, nthvert)
	s.setUV(nthvert, s.Model.UV(face, nthvert))
	s.Normal.SetCol(nthvert, s.normal(s.Model.Normal(face, nthvert)).Slice())
	s.View.SetCol(nthvert, t.Clip().MulVec4(math3d.Embed(p, 1)).PerspectiveDivide().Slice())
	return s.project(nthvert, p, t)
}

func (s *TangentShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	uv := s.uv(bar)
	n := s.darboux(bar).MulVec3(s.Surface.TangentNormal(uv)).Normalize()
	diff := max(0, n.Dot(s.light))
	return false, MultiplyColor(s.Surface.Diffuse(uv), diff)
}

// darboux returns the matrix whose columns are the tangent, bitangent and
// normal at bar. When the edge/normal system is singular any frame around
// the normal is returned.
func (s *TangentShader) darboux(bar math3d.Vec3) *math3d.Matrix {
	bn := lerp(s.Normal, bar).Normalize()

	v0 := math3d.V3FromSlice(s.View.Col(0))
	e1 := math3d.V3FromSlice(s.View.Col(1)).Sub(v0)
	e2 := math3d.V3FromSlice(s.View.Col(2)).Sub(v0)
	a := math3d.MatrixFromRows(e1.Slice(), e2.Slice(), bn.Slice())

	b := math3d.NewMatrix(3, 3)
	b.SetCol(2, bn.Slice())
	if math.Abs(a.Det()) < 1e-12 {
		tan := math3d.V3(1, 0, 0)
		if math.Abs(bn.X) > 0.9 {
			tan = math3d.V3(0, 1, 0)
		}
		i := tan.Sub(bn.Scale(tan.Dot(bn))).Normalize()
		b.SetCol(0, i.Slice())
		b.SetCol(1, bn.Cross(i).Slice())
		return b
	}
	ai := a.InvertElimination()

	du := s.UV.Row(0)
	dv := s.UV.Row(1)
	i := ai.MulVec3(math3d.V3(du[1]-du[0], du[2]-du[0], 0))
	j := ai.MulVec3(math3d.V3(dv[1]-dv[0], dv[2]-dv[0], 0))
	b.SetCol(0, i.Normalize().Slice())
	b.SetCol(1, j.Normalize().Slice())
	return b
}

// DepthShader writes grayscale proportional to screen depth. It is the
// shader of the light pass.
type DepthShader struct {
	ShaderState
	Depth float64

	model Model
}

// NewDepthShader builds a depth-only shader for m.
func NewDepthShader(m Model, depth float64) *DepthShader {
	return &DepthShader{ShaderState: NewShaderState(), Depth: depth, model: m}
}

func (s *DepthShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	return s.project(nthvert, s.model.Position(face, nthvert), t)
}

func (s *DepthShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	p := lerp(s.Tri, bar)
	return false, MultiplyColor(ColorWhite, p.Z/s.Depth)
}

// ShadowShader is phong lighting attenuated by a shadow buffer rendered
// from the light.
type ShadowShader struct {
	Uniforms
	ShaderState
	lighting

	// Shadow is the finished depth buffer of the light pass.
	Shadow *DepthBuffer
	// MShadow maps eye-pass screen coordinates to light-pass screen
	// coordinates.
	MShadow      *math3d.Matrix
	AmbientFloor float64
	Bias         float64
}

// NewShadowShader builds the eye-pass shader of a two-pass render.
func NewShadowShader(u Uniforms, shadow *DepthBuffer, mshadow *math3d.Matrix, floor, bias float64) *ShadowShader {
	u.Light = u.Light.Normalize()
	return &ShadowShader{
		Uniforms:     u,
		ShaderState:  NewShaderState(),
		Shadow:       shadow,
		MShadow:      mshadow,
		AmbientFloor: floor,
		Bias:         bias,
	}
}

func (s *ShadowShader) Vertex(face, nthvert int, t *Transforms) math3d.Vec4 {
	// The light is taken into the camera frame, normals into the
	// projected frame.
	s.bind(t, t.ModelView, t.Clip(), s.Light)
	s.setUV(nthvert, s.Model.UV(face, nthvert))
	s.Normal.SetCol(nthvert, s.Model.Normal(face, nthvert).Slice())
	return s.project(nthvert, s.Model.Position(face, nthvert), t)
}

// Visibility returns 1 for a lit eye-pass screen point p and AmbientFloor
// for a shadowed one. Points outside the shadow buffer count as lit.
func (s *ShadowShader) Visibility(p math3d.Vec3) float64 {
	sb := math3d.TransformPoint(s.MShadow, p)
	stored, ok := s.Shadow.Lookup(sb.X, sb.Y)
	lit := 1.0
	if ok && !(stored < sb.Z+s.Bias) {
		lit = 0
	}
	return s.AmbientFloor + (1-s.AmbientFloor)*lit
}

func (s *ShadowShader) Fragment(bar math3d.Vec3) (bool, color.RGBA) {
	shadow := s.Visibility(lerp(s.Tri, bar))
	uv := s.uv(bar)
	n := s.normal(surfaceNormal(s.Surface, &s.ShaderState, uv, bar))
	exp, hasSpec := s.Surface.Specular(uv)
	diff, spec := s.phong(n, exp, hasSpec)
	return false, shade(s.Surface.Diffuse(uv), 20, shadow*(1.2*diff+0.6*spec))
}
