package math3d

import (
	"fmt"
	"math"
)

// Vec2 represents a 2D vector, used for texture coordinates and screen points.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Len returns the length of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// Normalize returns the unit vector in the same direction.
// The zero vector is returned unchanged.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// At returns component i (0 = X, 1 = Y).
func (a Vec2) At(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	}
	panic(fmt.Errorf("%w: Vec2 component %d", ErrIndex, i))
}

// Round converts to integer screen coordinates, rounding each component.
func (a Vec2) Round() Vec2i {
	return Vec2i{int(math.Round(a.X)), int(math.Round(a.Y))}
}

// Vec2i is an integer 2D vector for pixel coordinates.
type Vec2i struct {
	X, Y int
}

// V2i creates a new Vec2i.
func V2i(x, y int) Vec2i {
	return Vec2i{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2i) Add(b Vec2i) Vec2i {
	return Vec2i{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2i) Sub(b Vec2i) Vec2i {
	return Vec2i{a.X - b.X, a.Y - b.Y}
}

// At returns component i (0 = X, 1 = Y).
func (a Vec2i) At(i int) int {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	}
	panic(fmt.Errorf("%w: Vec2i component %d", ErrIndex, i))
}

// Float converts to a float vector.
func (a Vec2i) Float() Vec2 {
	return Vec2{float64(a.X), float64(a.Y)}
}
