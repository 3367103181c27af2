package render

import (
	"image/color"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Model is the mesh data the vertex stage reads.
// Implemented by *models.Mesh.
type Model interface {
	FaceCount() int
	Position(face, i int) math3d.Vec3
	UV(face, i int) math3d.Vec2
	Normal(face, i int) math3d.Vec3
}

// Surface provides texture samples to the fragment stage. Missing optional
// maps report ok=false (normal, specular) or a neutral value.
// Implemented by *models.Material.
type Surface interface {
	Diffuse(uv math3d.Vec2) color.RGBA
	Normal(uv math3d.Vec2) (math3d.Vec3, bool)
	TangentNormal(uv math3d.Vec2) math3d.Vec3
	Specular(uv math3d.Vec2) (float64, bool)
}

// Shader is a programmable vertex/fragment pair.
//
// Vertex is called for nthvert 0, 1 and 2 of a face before any Fragment call
// for that face. It returns the homogeneous position whose division by w is
// the pixel coordinate and depth. Fragment receives perspective-corrected
// barycentric weights and returns discard=true to leave the pixel untouched.
//
// A Shader keeps per-triangle state and must not be shared between
// triangles rasterized concurrently.
type Shader interface {
	Vertex(face, nthvert int, t *Transforms) math3d.Vec4
	Fragment(bar math3d.Vec3) (discard bool, c color.RGBA)
}

// Transforms is the matrix bundle of one render pass. It is read-only once
// built and may be shared by every triangle of the pass.
type Transforms struct {
	ModelView  *math3d.Matrix
	Projection *math3d.Matrix
	Viewport   *math3d.Matrix

	clip   *math3d.Matrix
	screen *math3d.Matrix
}

// NewTransforms builds a bundle and caches its products.
func NewTransforms(modelView, projection, viewport *math3d.Matrix) *Transforms {
	clip := projection.Mul(modelView)
	return &Transforms{
		ModelView:  modelView,
		Projection: projection,
		Viewport:   viewport,
		clip:       clip,
		screen:     viewport.Mul(clip),
	}
}

// Clip returns Projection·ModelView.
func (t *Transforms) Clip() *math3d.Matrix { return t.clip }

// Screen returns Viewport·Projection·ModelView.
func (t *Transforms) Screen() *math3d.Matrix { return t.screen }

// ShaderState is the per-triangle scratch written by the vertex stage, one
// column per triangle corner, and read by the fragment stage.
type ShaderState struct {
	UV     *math3d.Matrix // 2×3 texture coordinates
	Tri    *math3d.Matrix // 3×3 screen-space positions after division by w
	Normal *math3d.Matrix // 3×3 normals
	View   *math3d.Matrix // 3×3 clip-space positions after division by w
}

// NewShaderState allocates the varying matrices.
func NewShaderState() ShaderState {
	return ShaderState{
		UV:     math3d.NewMatrix(2, 3),
		Tri:    math3d.NewMatrix(3, 3),
		Normal: math3d.NewMatrix(3, 3),
		View:   math3d.NewMatrix(3, 3),
	}
}

// project records the screen position of corner n and returns it in
// homogeneous coordinates.
func (s *ShaderState) project(n int, p math3d.Vec3, t *Transforms) math3d.Vec4 {
	gl := t.Screen().MulVec4(math3d.Embed(p, 1))
	s.Tri.SetCol(n, gl.PerspectiveDivide().Slice())
	return gl
}

func (s *ShaderState) setUV(n int, uv math3d.Vec2) {
	s.UV.SetCol(n, []float64{uv.X, uv.Y})
}

// uv interpolates the texture coordinate.
func (s *ShaderState) uv(bar math3d.Vec3) math3d.Vec2 {
	v := s.UV.MulVector(bar.Slice())
	return math3d.V2(v[0], v[1])
}

// lerp interpolates a 3×3 varying.
func lerp(m *math3d.Matrix, bar math3d.Vec3) math3d.Vec3 {
	return math3d.V3FromSlice(m.MulVector(bar.Slice()))
}
