package math3d

import (
	"math"
	"testing"
)

func nearVec(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestViewport(t *testing.T) {
	vp := Viewport(100, 50, 600, 400, 2000)

	tests := []struct {
		name string
		ndc  Vec3
		want Vec3
	}{
		{"min corner", V3(-1, -1, -1), V3(100, 50, 0)},
		{"max corner", V3(1, 1, 1), V3(700, 450, 2000)},
		{"center", V3(0, 0, 0), V3(400, 250, 1000)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TransformPoint(vp, tc.ndc); !nearVec(got, tc.want, eps) {
				t.Errorf("viewport(%v) = %v, want %v", tc.ndc, got, tc.want)
			}
		})
	}
}

func TestProjection(t *testing.T) {
	t.Run("orthographic", func(t *testing.T) {
		p := Projection(0).MulVec4(V4(1, 2, 3, 1))
		if p.W != 1 {
			t.Errorf("w = %v, want 1", p.W)
		}
	})
	t.Run("perspective", func(t *testing.T) {
		c := 4.0
		p := Projection(-1 / c).MulVec4(V4(1, 2, -c, 1))
		if !near(p.W, 2) {
			t.Errorf("w = %v, want 2", p.W)
		}
		closer := Projection(-1 / c).MulVec4(V4(1, 2, 1, 1))
		if closer.PerspectiveDivide().X <= p.PerspectiveDivide().X {
			t.Error("points nearer the eye should project larger")
		}
	})
}

func TestLookAt(t *testing.T) {
	tests := []struct {
		name           string
		eye, center, u Vec3
	}{
		{"front", V3(0, 0, 3), V3(0, 0, 0), Up()},
		{"oblique", V3(1, 1, 4), V3(0, 0, 0), Up()},
		{"offset center", V3(2, 3, 5), V3(1, -1, 0.5), Up()},
		{"light", V3(1, 1, 0), V3(0, 0, 0), Up()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := LookAt(tc.eye, tc.center, tc.u)
			if got := TransformPoint(m, tc.center); !nearVec(got, Zero3(), 1e-9) {
				t.Errorf("center maps to %v, want origin", got)
			}
			dist := tc.eye.Sub(tc.center).Len()
			if got := TransformPoint(m, tc.eye); !nearVec(got, V3(0, 0, dist), 1e-9) {
				t.Errorf("eye maps to %v, want (0,0,%v)", got, dist)
			}
			// The basis is orthonormal, so the upper 3×3 block is a rotation.
			r := NewMatrix(3, 3)
			for i := range 3 {
				for j := range 3 {
					r.Set(i, j, m.At(i, j))
				}
			}
			if !r.Mul(r.Transpose()).Equal(Identity(3), 1e-9) {
				t.Errorf("basis not orthonormal:\n%v", r)
			}
		})
	}
}

func TestModelTransforms(t *testing.T) {
	p := V3(1, 0, 0)
	if got := TransformPoint(RotateY(math.Pi/2), p); !nearVec(got, V3(0, 0, -1), 1e-12) {
		t.Errorf("rotateY(90°)·x = %v, want (0,0,-1)", got)
	}
	if got := TransformPoint(RotateZ(math.Pi/2), p); !nearVec(got, V3(0, 1, 0), 1e-12) {
		t.Errorf("rotateZ(90°)·x = %v, want (0,1,0)", got)
	}
	if got := TransformPoint(RotateX(math.Pi/2), V3(0, 1, 0)); !nearVec(got, V3(0, 0, 1), 1e-12) {
		t.Errorf("rotateX(90°)·y = %v, want (0,0,1)", got)
	}
	if got := TransformPoint(Translate(V3(1, 2, 3)), p); got != V3(2, 2, 3) {
		t.Errorf("translate = %v", got)
	}
	if got := TransformDir(Translate(V3(1, 2, 3)), p); got != p {
		t.Errorf("directions ignore translation, got %v", got)
	}
}

func TestAABB(t *testing.T) {
	box := EmptyAABB()
	if !box.IsEmpty() {
		t.Fatal("EmptyAABB should be empty")
	}
	for _, p := range []Vec3{V3(-1, 2, 0), V3(3, -2, 1), V3(0, 0, -5)} {
		box = box.Extend(p)
	}
	if box.Min != V3(-1, -2, -5) || box.Max != V3(3, 2, 1) {
		t.Errorf("bounds = %v", box)
	}
	if c := box.Center(); c != V3(1, 0, -2) {
		t.Errorf("center = %v", c)
	}
	if s := box.Size(); s != V3(4, 4, 6) {
		t.Errorf("size = %v", s)
	}
	if !box.ContainsPoint(V3(0, 0, 0)) || box.ContainsPoint(V3(4, 0, 0)) {
		t.Error("ContainsPoint mismatch")
	}

	moved := box.Transform(Translate(V3(10, 0, 0)))
	if moved.Min.X != 9 || moved.Max.X != 13 {
		t.Errorf("translated bounds = %v", moved)
	}
	u := box.Union(moved)
	if u.Min.X != -1 || u.Max.X != 13 {
		t.Errorf("union = %v", u)
	}
}
