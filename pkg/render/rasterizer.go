package render

import (
	"math"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// degenerateEps is the smallest |u.z| (twice the screen-space area) a
// triangle may have and still be rasterized.
const degenerateEps = 1e-2

// Rasterizer scans triangles into one color target and one depth target.
// Depth convention: larger is nearer, and a fragment is drawn only when its
// depth is strictly greater than the stored one, so on exact ties the first
// triangle drawn wins.
type Rasterizer struct {
	fb    *Framebuffer // may be nil for depth-only passes
	depth *DepthBuffer
	Stats Stats
}

// Stats counts the work done by a Rasterizer.
type Stats struct {
	Triangles  int // DrawTriangle calls
	Degenerate int // triangles skipped for zero area or w = 0
	Fragments  int // fragments that passed the depth test
	Discarded  int // fragments the shader discarded
	Written    int // pixels written
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Triangles += o.Triangles
	s.Degenerate += o.Degenerate
	s.Fragments += o.Fragments
	s.Discarded += o.Discarded
	s.Written += o.Written
}

// NewRasterizer binds a rasterizer to its targets. fb may be nil.
func NewRasterizer(fb *Framebuffer, depth *DepthBuffer) *Rasterizer {
	return &Rasterizer{fb: fb, depth: depth}
}

// Width returns the depth target width.
func (r *Rasterizer) Width() int { return r.depth.Width }

// Height returns the depth target height.
func (r *Rasterizer) Height() int { return r.depth.Height }

// ResetStats clears the counters.
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

// Barycentric returns the weights of p with respect to triangle abc using
// the edge cross product. ok is false for a degenerate triangle, in which
// case the weights are negative.
func Barycentric(a, b, c, p math3d.Vec2) (bar math3d.Vec3, ok bool) {
	s0 := math3d.V3(c.X-a.X, b.X-a.X, a.X-p.X)
	s1 := math3d.V3(c.Y-a.Y, b.Y-a.Y, a.Y-p.Y)
	u := s0.Cross(s1)
	if math.Abs(u.Z) <= degenerateEps {
		return math3d.V3(-1, 1, 1), false
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z), true
}

// DrawTriangle rasterizes one triangle given the homogeneous positions the
// shader's vertex stage returned.
func (r *Rasterizer) DrawTriangle(clip [3]math3d.Vec4, sh Shader) {
	r.Stats.Triangles++

	var pts [3]math3d.Vec2
	for i, v := range clip {
		if v.W == 0 {
			r.Stats.Degenerate++
			return
		}
		pts[i] = math3d.V2(v.X/v.W, v.Y/v.W)
	}

	// The area test does not depend on the pixel, so run it once.
	area := (pts[2].X-pts[0].X)*(pts[1].Y-pts[0].Y) - (pts[1].X-pts[0].X)*(pts[2].Y-pts[0].Y)
	if !(math.Abs(area) > degenerateEps) {
		r.Stats.Degenerate++
		return
	}

	// Find bounding box
	minX := math.Max(0, math.Floor(min(pts[0].X, pts[1].X, pts[2].X)))
	maxX := math.Min(float64(r.Width()-1), math.Ceil(max(pts[0].X, pts[1].X, pts[2].X)))
	minY := math.Max(0, math.Floor(min(pts[0].Y, pts[1].Y, pts[2].Y)))
	maxY := math.Min(float64(r.Height()-1), math.Ceil(max(pts[0].Y, pts[1].Y, pts[2].Y)))
	if minX > maxX || minY > maxY {
		return
	}

	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
			bc, ok := Barycentric(pts[0], pts[1], pts[2], p)
			if !ok || bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// Perspective-correct the weights. sum is 1/w at this pixel, and
			// it is not positive behind the eye.
			bcClip := math3d.V3(bc.X/clip[0].W, bc.Y/clip[1].W, bc.Z/clip[2].W)
			sum := bcClip.X + bcClip.Y + bcClip.Z
			if !(sum > 0) {
				continue
			}
			bcClip = bcClip.Div(sum)

			// Interpolated homogeneous z over interpolated w: the screen
			// depth after the divide, ordered the same way for any w > 0.
			z := math3d.V3(clip[0].Z, clip[1].Z, clip[2].Z).Dot(bcClip) * sum
			if !(z > r.depth.At(x, y)) {
				continue
			}

			r.Stats.Fragments++
			discard, c := sh.Fragment(bcClip)
			if discard {
				r.Stats.Discarded++
				continue
			}
			r.depth.Set(x, y, z)
			if r.fb != nil {
				r.fb.SetPixel(x, y, c)
			}
			r.Stats.Written++
		}
	}
}
