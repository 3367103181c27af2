package render

import (
	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Wireframe draws unshaded line overlays through a pass's transforms. It
// does no depth test.
type Wireframe struct {
	t  *Transforms
	fb *Framebuffer
}

// NewWireframe creates a wireframe drawer for fb.
func NewWireframe(t *Transforms, fb *Framebuffer) *Wireframe {
	return &Wireframe{t: t, fb: fb}
}

// DrawWireframe draws every face edge of m onto fb.
func DrawWireframe(fb *Framebuffer, m Model, t *Transforms, c Color) {
	NewWireframe(t, fb).DrawModel(m, c)
}

// DrawLine3D draws a world-space segment.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	h1 := w.t.Screen().MulVec4(math3d.Embed(p1, 1))
	h2 := w.t.Screen().MulVec4(math3d.Embed(p2, 1))

	// Endpoints behind the eye project mirrored, skip the segment.
	if h1.W <= 0 || h2.W <= 0 {
		return
	}
	s1 := h1.PerspectiveDivide().Round()
	s2 := h2.PerspectiveDivide().Round()
	if !lineInRange(s1) || !lineInRange(s2) {
		return
	}
	w.fb.DrawLine(s1.X, s1.Y, s2.X, s2.Y, color)
}

// DrawModel draws the three edges of every face.
func (w *Wireframe) DrawModel(m Model, color Color) {
	for f := range m.FaceCount() {
		for i := range 3 {
			w.DrawLine3D(m.Position(f, i), m.Position(f, (i+1)%3), color)
		}
	}
}

// DrawBounds draws the 12 edges of an axis-aligned box.
func (w *Wireframe) DrawBounds(b math3d.AABB, color Color) {
	if b.IsEmpty() {
		return
	}
	lo, hi := b.Min, b.Max
	vertices := [8]math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, // 0: bottom-left-back
		{X: hi.X, Y: lo.Y, Z: lo.Z}, // 1: bottom-right-back
		{X: hi.X, Y: hi.Y, Z: lo.Z}, // 2: top-right-back
		{X: lo.X, Y: hi.Y, Z: lo.Z}, // 3: top-left-back
		{X: lo.X, Y: lo.Y, Z: hi.Z}, // 4: bottom-left-front
		{X: hi.X, Y: lo.Y, Z: hi.Z}, // 5: bottom-right-front
		{X: hi.X, Y: hi.Y, Z: hi.Z}, // 6: top-right-front
		{X: lo.X, Y: hi.Y, Z: hi.Z}, // 7: top-left-front
	}

	edges := [12][2]int{
		// Back face
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		// Front face
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		// Connecting edges
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		w.DrawLine3D(vertices[e[0]], vertices[e[1]], color)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// maxLineCoord bounds projected endpoints so Bresenham stays short.
const maxLineCoord = 1 << 15

func lineInRange(p math3d.Vec3i) bool {
	return abs(p.X) <= maxLineCoord && abs(p.Y) <= maxLineCoord
}
