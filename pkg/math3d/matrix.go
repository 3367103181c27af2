package math3d

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors carried by precondition panics. Callers that recover can
// match them with errors.Is.
var (
	ErrShape    = errors.New("math3d: shape mismatch")
	ErrSingular = errors.New("math3d: singular matrix")
	ErrIndex    = errors.New("math3d: index out of range")
)

// singularEps is the determinant (or pivot) magnitude below which a matrix
// is treated as non-invertible.
const singularEps = 1e-12

// Matrix is a dense rows×cols matrix of float64 stored in row-major order.
// Its shape is fixed at construction.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zero-filled rows×cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Errorf("%w: %dx%d", ErrShape, rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := range n {
		m.data[i*n+i] = 1
	}
	return m
}

// MatrixFromRows builds a matrix from row slices, which must all be the same
// length.
func MatrixFromRows(rows ...[]float64) *Matrix {
	if len(rows) == 0 {
		panic(fmt.Errorf("%w: no rows", ErrShape))
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) check(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Errorf("%w: (%d,%d) in %dx%d", ErrIndex, row, col, m.rows, m.cols))
	}
}

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) float64 {
	m.check(row, col)
	return m.data[row*m.cols+col]
}

// Set sets the element at (row, col).
func (m *Matrix) Set(row, col int, v float64) {
	m.check(row, col)
	m.data[row*m.cols+col] = v
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	m.check(i, 0)
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Col returns a copy of column j.
func (m *Matrix) Col(j int) []float64 {
	m.check(0, j)
	out := make([]float64, m.rows)
	for i := range m.rows {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// SetRow overwrites row i.
func (m *Matrix) SetRow(i int, v []float64) {
	m.check(i, 0)
	if len(v) != m.cols {
		panic(fmt.Errorf("%w: row of %d for %d columns", ErrShape, len(v), m.cols))
	}
	copy(m.data[i*m.cols:], v)
}

// SetCol overwrites column j.
func (m *Matrix) SetCol(j int, v []float64) {
	m.check(0, j)
	if len(v) != m.rows {
		panic(fmt.Errorf("%w: column of %d for %d rows", ErrShape, len(v), m.rows))
	}
	for i := range m.rows {
		m.data[i*m.cols+j] = v[i]
	}
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, data: make([]float64, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Equal reports whether m and o have the same shape and every entry differs
// by at most tol.
func (m *Matrix) Equal(o *Matrix, tol float64) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, v := range m.data {
		if math.Abs(v-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// Transpose returns a new cols×rows matrix.
func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.cols, m.rows)
	for i := range m.rows {
		for j := range m.cols {
			t.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return t
}

// Mul returns the matrix product a·b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a *Matrix) Mul(b *Matrix) *Matrix {
	if a.cols != b.rows {
		panic(fmt.Errorf("%w: %dx%d · %dx%d", ErrShape, a.rows, a.cols, b.rows, b.cols))
	}
	out := NewMatrix(a.rows, b.cols)
	for i := range a.rows {
		for j := range b.cols {
			var sum float64
			for k := range a.cols {
				sum += a.data[i*a.cols+k] * b.data[k*b.cols+j]
			}
			out.data[i*b.cols+j] = sum
		}
	}
	return out
}

// MulVector returns m·v for a column vector of length Cols.
func (m *Matrix) MulVector(v []float64) []float64 {
	if len(v) != m.cols {
		panic(fmt.Errorf("%w: %dx%d · vector of %d", ErrShape, m.rows, m.cols, len(v)))
	}
	out := make([]float64, m.rows)
	for i := range m.rows {
		var sum float64
		row := m.data[i*m.cols : (i+1)*m.cols]
		for k, x := range row {
			sum += x * v[k]
		}
		out[i] = sum
	}
	return out
}

// MulVec4 transforms a homogeneous vector by a 4×4 matrix.
func (m *Matrix) MulVec4(v Vec4) Vec4 {
	if m.rows != 4 || m.cols != 4 {
		panic(fmt.Errorf("%w: MulVec4 on %dx%d", ErrShape, m.rows, m.cols))
	}
	d := m.data
	return Vec4{
		d[0]*v.X + d[1]*v.Y + d[2]*v.Z + d[3]*v.W,
		d[4]*v.X + d[5]*v.Y + d[6]*v.Z + d[7]*v.W,
		d[8]*v.X + d[9]*v.Y + d[10]*v.Z + d[11]*v.W,
		d[12]*v.X + d[13]*v.Y + d[14]*v.Z + d[15]*v.W,
	}
}

// MulVec3 transforms a vector by a 3×3 matrix.
func (m *Matrix) MulVec3(v Vec3) Vec3 {
	if m.rows != 3 || m.cols != 3 {
		panic(fmt.Errorf("%w: MulVec3 on %dx%d", ErrShape, m.rows, m.cols))
	}
	d := m.data
	return Vec3{
		d[0]*v.X + d[1]*v.Y + d[2]*v.Z,
		d[3]*v.X + d[4]*v.Y + d[5]*v.Z,
		d[6]*v.X + d[7]*v.Y + d[8]*v.Z,
	}
}

// Scale returns m with every entry multiplied by s.
func (m *Matrix) Scale(s float64) *Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

func (m *Matrix) requireSquare(op string) {
	if m.rows != m.cols {
		panic(fmt.Errorf("%w: %s of %dx%d", ErrShape, op, m.rows, m.cols))
	}
}

// Minor returns m with row r and column c removed.
func (m *Matrix) Minor(r, c int) *Matrix {
	m.check(r, c)
	if m.rows < 2 || m.cols < 2 {
		panic(fmt.Errorf("%w: minor of %dx%d", ErrShape, m.rows, m.cols))
	}
	out := NewMatrix(m.rows-1, m.cols-1)
	k := 0
	for i := range m.rows {
		if i == r {
			continue
		}
		for j := range m.cols {
			if j == c {
				continue
			}
			out.data[k] = m.data[i*m.cols+j]
			k++
		}
	}
	return out
}

// Det returns the determinant by cofactor expansion along row 0.
func (m *Matrix) Det() float64 {
	m.requireSquare("determinant")
	if m.rows == 1 {
		return m.data[0]
	}
	var det float64
	for i := range m.cols {
		det += m.data[i] * m.Cofactor(0, i)
	}
	return det
}

// Cofactor returns the signed minor determinant at (r, c).
func (m *Matrix) Cofactor(r, c int) float64 {
	d := m.Minor(r, c).Det()
	if (r+c)%2 == 1 {
		return -d
	}
	return d
}

// Adjugate returns the matrix whose entry (i, j) is Cofactor(i, j).
// It is the transpose of the classical adjoint.
func (m *Matrix) Adjugate() *Matrix {
	m.requireSquare("adjugate")
	out := NewMatrix(m.rows, m.cols)
	if m.rows == 1 {
		out.data[0] = 1
		return out
	}
	for i := range m.rows {
		for j := range m.cols {
			out.data[i*m.cols+j] = m.Cofactor(i, j)
		}
	}
	return out
}

// InverseTranspose returns (m⁻¹)ᵀ, computed from the adjugate and the
// determinant recovered from its first row. Used to transform normals.
func (m *Matrix) InverseTranspose() *Matrix {
	adj := m.Adjugate()
	var det float64
	for j := range m.cols {
		det += adj.data[j] * m.data[j]
	}
	if math.Abs(det) < singularEps {
		panic(fmt.Errorf("%w: determinant %g", ErrSingular, det))
	}
	return adj.Scale(1 / det)
}

// Inverse returns m⁻¹ via the adjugate.
func (m *Matrix) Inverse() *Matrix {
	return m.InverseTranspose().Transpose()
}

// InvertElimination returns m⁻¹ by Gauss-Jordan elimination on [m | I] with
// partial pivoting.
func (m *Matrix) InvertElimination() *Matrix {
	m.requireSquare("inverse")
	n := m.rows
	w := 2 * n
	aug := make([]float64, n*w)
	for i := range n {
		copy(aug[i*w:], m.data[i*n:(i+1)*n])
		aug[i*w+n+i] = 1
	}

	// Forward: pick the largest pivot, normalize its row, clear below.
	for i := range n {
		p := i
		for k := i + 1; k < n; k++ {
			if math.Abs(aug[k*w+i]) > math.Abs(aug[p*w+i]) {
				p = k
			}
		}
		if math.Abs(aug[p*w+i]) < singularEps {
			panic(fmt.Errorf("%w: zero pivot in column %d", ErrSingular, i))
		}
		if p != i {
			for j := range w {
				aug[i*w+j], aug[p*w+j] = aug[p*w+j], aug[i*w+j]
			}
		}
		inv := 1 / aug[i*w+i]
		for j := i; j < w; j++ {
			aug[i*w+j] *= inv
		}
		for k := i + 1; k < n; k++ {
			f := aug[k*w+i]
			if f == 0 {
				continue
			}
			for j := i; j < w; j++ {
				aug[k*w+j] -= f * aug[i*w+j]
			}
		}
	}

	// Backward: clear above each pivot.
	for i := n - 1; i > 0; i-- {
		for k := i - 1; k >= 0; k-- {
			f := aug[k*w+i]
			if f == 0 {
				continue
			}
			for j := i; j < w; j++ {
				aug[k*w+j] -= f * aug[i*w+j]
			}
		}
	}

	out := NewMatrix(n, n)
	for i := range n {
		copy(out.data[i*n:(i+1)*n], aug[i*w+n:(i+1)*w])
	}
	return out
}

// String formats the matrix one row per line.
func (m *Matrix) String() string {
	var b strings.Builder
	for i := range m.rows {
		for j := range m.cols {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.cols+j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
