// Package math3d provides the vector, matrix, and transform primitives used by
// the software renderer.
package math3d

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// Up returns the world up vector (0, 1, 0).
func Up() Vec3 {
	return Vec3{0, 1, 0}
}

// Add returns the vector sum a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the component-wise product a * b.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Scale returns the scalar product a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Div returns the scalar division a / s.
func (a Vec3) Div(s float64) Vec3 {
	return Vec3{a.X / s, a.Y / s, a.Z / s}
}

// Dot returns the dot product a · b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length (magnitude) of the vector.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Normalize returns the unit vector in the same direction.
// A zero-length vector is returned as the zero vector.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Negate returns the negated vector.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Reflect returns the reflection of a around normal n.
func (a Vec3) Reflect(n Vec3) Vec3 {
	return a.Sub(n.Scale(2 * a.Dot(n)))
}

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{
		math.Min(a.X, b.X),
		math.Min(a.Y, b.Y),
		math.Min(a.Z, b.Z),
	}
}

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{
		math.Max(a.X, b.X),
		math.Max(a.Y, b.Y),
		math.Max(a.Z, b.Z),
	}
}

// At returns component i (0 = X, 1 = Y, 2 = Z).
func (a Vec3) At(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic(fmt.Errorf("%w: Vec3 component %d", ErrIndex, i))
}

// Slice returns the components as a new slice, for matrix products.
func (a Vec3) Slice() []float64 {
	return []float64{a.X, a.Y, a.Z}
}

// V3FromSlice builds a Vec3 from the first three entries of s.
func V3FromSlice(s []float64) Vec3 {
	if len(s) < 3 {
		panic(fmt.Errorf("%w: need 3 components, got %d", ErrShape, len(s)))
	}
	return Vec3{s[0], s[1], s[2]}
}

// Round converts to an integer vector, rounding each component.
func (a Vec3) Round() Vec3i {
	return Vec3i{int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(a.Z))}
}

// Vec3i is an integer 3D vector for screen coordinates with depth.
type Vec3i struct {
	X, Y, Z int
}

// V3i creates a new Vec3i.
func V3i(x, y, z int) Vec3i {
	return Vec3i{x, y, z}
}

// Add returns the vector sum a + b.
func (a Vec3i) Add(b Vec3i) Vec3i {
	return Vec3i{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3i) Sub(b Vec3i) Vec3i {
	return Vec3i{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// At returns component i (0 = X, 1 = Y, 2 = Z).
func (a Vec3i) At(i int) int {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic(fmt.Errorf("%w: Vec3i component %d", ErrIndex, i))
}

// Float converts to a float vector.
func (a Vec3i) Float() Vec3 {
	return Vec3{float64(a.X), float64(a.Y), float64(a.Z)}
}
