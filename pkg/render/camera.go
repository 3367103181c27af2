package render

import (
	"math"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Camera places a viewer in the scene. The eye looks toward Center with Up
// as the vertical hint.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	// Orthographic disables perspective foreshortening (projection
	// coefficient 0), as used by the light pass.
	Orthographic bool
}

// NewCamera creates a perspective camera at eye looking at the origin.
func NewCamera(eye math3d.Vec3) Camera {
	return Camera{
		Eye:    eye,
		Center: math3d.Zero3(),
		Up:     math3d.Up(),
	}
}

// LightCamera returns the orthographic camera looking from dir toward
// center along the light direction.
func LightCamera(dir, center, up math3d.Vec3) Camera {
	return Camera{
		Eye:          center.Add(dir.Normalize()),
		Center:       center,
		Up:           up,
		Orthographic: true,
	}
}

// Forward returns the unit view direction.
func (c Camera) Forward() math3d.Vec3 {
	return c.Center.Sub(c.Eye).Normalize()
}

// Distance returns |eye - center|.
func (c Camera) Distance() float64 {
	return c.Eye.Sub(c.Center).Len()
}

// up returns an up vector that is not parallel to the view direction.
func (c Camera) up() math3d.Vec3 {
	up := c.Up.Normalize()
	if up.LenSq() == 0 {
		up = math3d.Up()
	}
	if math.Abs(up.Dot(c.Forward())) < 1-1e-9 {
		return up
	}
	// Looking straight along up: pick the world axis least aligned with
	// the view.
	for _, alt := range []math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0)} {
		if math.Abs(alt.Dot(c.Forward())) < 0.9 {
			return alt
		}
	}
	return math3d.V3(0, 1, 0)
}

// ViewMatrix returns the LookAt model-view matrix.
func (c Camera) ViewMatrix() *math3d.Matrix {
	return math3d.LookAt(c.Eye, c.Center, c.up())
}

// ProjectionMatrix returns the perspective matrix with coefficient
// -1/|eye-center|, or the orthographic one.
func (c Camera) ProjectionMatrix() *math3d.Matrix {
	d := c.Distance()
	if c.Orthographic || d == 0 {
		return math3d.Projection(0)
	}
	return math3d.Projection(-1 / d)
}

// Transforms builds the pass bundle for cfg's viewport.
func (c Camera) Transforms(cfg Config) *Transforms {
	return NewTransforms(c.ViewMatrix(), c.ProjectionMatrix(), cfg.Viewport())
}

// Orbit returns the camera with the eye rotated by angle radians about the
// Up axis through Center.
func (c Camera) Orbit(angle float64) Camera {
	axis := c.up()
	rel := c.Eye.Sub(c.Center)
	// Rodrigues rotation
	cos, sin := math.Cos(angle), math.Sin(angle)
	rot := rel.Scale(cos).
		Add(axis.Cross(rel).Scale(sin)).
		Add(axis.Scale(axis.Dot(rel) * (1 - cos)))
	c.Eye = c.Center.Add(rot)
	return c
}

// WorldToScreen projects a world point through t to pixel coordinates and
// depth. visible is false for points with w <= 0 or outside the canvas.
func WorldToScreen(t *Transforms, p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	h := t.Screen().MulVec4(math3d.Embed(p, 1))
	if h.W <= 0 {
		return 0, 0, 0, false
	}
	s := h.PerspectiveDivide()
	if s.X < 0 || s.Y < 0 || s.X >= float64(width) || s.Y >= float64(height) {
		return s.X, s.Y, s.Z, false
	}
	return s.X, s.Y, s.Z, true
}
