package math3d

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestCrossOrthogonal(t *testing.T) {
	tests := []struct {
		name string
		u, v Vec3
	}{
		{"axes", V3(1, 0, 0), V3(0, 1, 0)},
		{"general", V3(1, 2, 3), V3(4, 5, 6)},
		{"negative", V3(-3, 0.5, 7), V3(2, -9, 1)},
		{"parallel", V3(1, 1, 1), V3(2, 2, 2)},
		{"tiny", V3(1e-4, 2e-4, -3e-4), V3(5e-4, 1e-4, 1e-4)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.u.Cross(tc.v)
			if d := c.Dot(tc.u); math.Abs(d) > 1e-9 {
				t.Errorf("cross·u = %v, want 0", d)
			}
			if d := c.Dot(tc.v); math.Abs(d) > 1e-9 {
				t.Errorf("cross·v = %v, want 0", d)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
	}{
		{"unit", V3(0, 0, 1)},
		{"345", V3(3, 4, 0)},
		{"large", V3(1e6, -2e6, 3e6)},
		{"small", V3(1e-6, 1e-6, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if l := tc.v.Normalize().Len(); !near(l, 1) {
				t.Errorf("|normalize(%v)| = %v, want 1", tc.v, l)
			}
		})
	}

	t.Run("zero", func(t *testing.T) {
		if n := Zero3().Normalize(); n != Zero3() {
			t.Errorf("normalize(0) = %v, want zero vector", n)
		}
		if n := (Vec2{}).Normalize(); n != (Vec2{}) {
			t.Errorf("normalize(0) = %v, want zero vector", n)
		}
	})
}

func TestVectorAt(t *testing.T) {
	v := V3(1, 2, 3)
	for i, want := range []float64{1, 2, 3} {
		if got := v.At(i); got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
	w := V4(5, 6, 7, 8)
	if w.At(3) != 8 {
		t.Errorf("Vec4.At(3) = %v, want 8", w.At(3))
	}

	for _, tc := range []struct {
		name string
		fn   func()
	}{
		{"Vec2", func() { V2(1, 2).At(2) }},
		{"Vec2i", func() { V2i(1, 2).At(-1) }},
		{"Vec3", func() { v.At(3) }},
		{"Vec3i", func() { V3i(1, 2, 3).At(5) }},
		{"Vec4", func() { w.At(4) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrIndex) {
					t.Errorf("recovered %v, want ErrIndex", r)
				}
			}()
			tc.fn()
		})
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		in   Vec3
		want Vec3i
	}{
		{V3(0.4, 0.6, -0.6), V3i(0, 1, -1)},
		{V3(2.5, -2.5, 7), V3i(3, -3, 7)},
	}
	for _, tc := range tests {
		if got := tc.in.Round(); got != tc.want {
			t.Errorf("%v.Round() = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := V3i(1, -2, 3).Float(); got != V3(1, -2, 3) {
		t.Errorf("Float() = %v", got)
	}
	if got := V2(1.5, 2.4).Round(); got != V2i(2, 2) {
		t.Errorf("Vec2.Round() = %v", got)
	}
	if got := V2i(3, 4).Float().Len(); got != 5 {
		t.Errorf("|(3,4)| = %v, want 5", got)
	}
}

func TestReflect(t *testing.T) {
	// Light hitting a floor from above bounces straight back up.
	r := V3(0, -1, 0).Reflect(Up())
	if r != V3(0, 1, 0) {
		t.Errorf("reflect = %v, want (0,1,0)", r)
	}
}

func TestEmbed(t *testing.T) {
	p := Embed(V3(2, 4, 6), 2)
	if p.W != 2 {
		t.Fatalf("W = %v, want 2", p.W)
	}
	if got := p.PerspectiveDivide(); got != V3(1, 2, 3) {
		t.Errorf("divide = %v, want (1,2,3)", got)
	}
	if got := Embed(V3(1, 2, 3), 0).PerspectiveDivide(); got != V3(1, 2, 3) {
		t.Errorf("divide with w=0 = %v, want components unchanged", got)
	}
}
