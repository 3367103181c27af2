package math3d

import "math"

// Viewport maps the NDC cube [-1,1]³ onto the pixel box [x,x+w]×[y,y+h] and
// depths onto [0,depth].
func Viewport(x, y, w, h int, depth float64) *Matrix {
	m := Identity(4)
	m.Set(0, 3, float64(x)+float64(w)/2)
	m.Set(1, 3, float64(y)+float64(h)/2)
	m.Set(2, 3, depth/2)

	m.Set(0, 0, float64(w)/2)
	m.Set(1, 1, float64(h)/2)
	m.Set(2, 2, depth/2)
	return m
}

// Projection returns the perspective matrix with [3][2] = coeff.
// coeff is usually -1/distance(eye, center); 0 gives an orthographic view.
func Projection(coeff float64) *Matrix {
	m := Identity(4)
	m.Set(3, 2, coeff)
	return m
}

// LookAt returns the matrix taking world coordinates into a camera frame at
// eye looking toward center.
func LookAt(eye, center, up Vec3) *Matrix {
	z := eye.Sub(center).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x).Normalize()

	m := Identity(4)
	for i, basis := range [3]Vec3{x, y, z} {
		m.Set(i, 0, basis.X)
		m.Set(i, 1, basis.Y)
		m.Set(i, 2, basis.Z)
		m.Set(i, 3, -basis.Dot(center))
	}
	return m
}

// Translate creates a translation matrix.
func Translate(v Vec3) *Matrix {
	m := Identity(4)
	m.Set(0, 3, v.X)
	m.Set(1, 3, v.Y)
	m.Set(2, 3, v.Z)
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) *Matrix {
	m := Identity(4)
	m.Set(0, 0, v.X)
	m.Set(1, 1, v.Y)
	m.Set(2, 2, v.Z)
	return m
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) *Matrix {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) *Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return MatrixFromRows(
		[]float64{1, 0, 0, 0},
		[]float64{0, c, -s, 0},
		[]float64{0, s, c, 0},
		[]float64{0, 0, 0, 1},
	)
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) *Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return MatrixFromRows(
		[]float64{c, 0, s, 0},
		[]float64{0, 1, 0, 0},
		[]float64{-s, 0, c, 0},
		[]float64{0, 0, 0, 1},
	)
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) *Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return MatrixFromRows(
		[]float64{c, -s, 0, 0},
		[]float64{s, c, 0, 0},
		[]float64{0, 0, 1, 0},
		[]float64{0, 0, 0, 1},
	)
}

// TransformPoint applies a 4×4 matrix to p as a point and divides by w.
func TransformPoint(m *Matrix, p Vec3) Vec3 {
	return m.MulVec4(Embed(p, 1)).PerspectiveDivide()
}

// TransformDir applies a 4×4 matrix to d as a direction (no translation).
func TransformDir(m *Matrix, d Vec3) Vec3 {
	return m.MulVec4(Embed(d, 0)).Vec3()
}
