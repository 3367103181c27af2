// Package models provides triangle mesh loading and material maps for the
// renderer.
package models

import (
	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Mesh is an indexed triangle mesh. Positions, UVs and normals are stored
// separately and each face corner references them by index, as OBJ does.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2 // bottom-left origin
	Normals   []math3d.Vec3
	Faces     []Face

	// Bounding box (calculated on load)
	Bounds math3d.AABB
}

// Face is one triangle. T and N entries are -1 when the corner has no UV or
// normal.
type Face struct {
	V [3]int // Indices into Mesh.Positions
	T [3]int // Indices into Mesh.UVs
	N [3]int // Indices into Mesh.Normals
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:   name,
		Bounds: math3d.EmptyAABB(),
	}
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of distinct positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Position returns the position of corner i of face f.
func (m *Mesh) Position(f, i int) math3d.Vec3 {
	return m.Positions[m.Faces[f].V[i]]
}

// UV returns the texture coordinate of corner i of face f, or the origin if
// the corner has none.
func (m *Mesh) UV(f, i int) math3d.Vec2 {
	t := m.Faces[f].T[i]
	if t < 0 || t >= len(m.UVs) {
		return math3d.Vec2{}
	}
	return m.UVs[t]
}

// Normal returns the unit normal of corner i of face f, or the zero vector
// if the corner has none.
func (m *Mesh) Normal(f, i int) math3d.Vec3 {
	n := m.Faces[f].N[i]
	if n < 0 || n >= len(m.Normals) {
		return math3d.Vec3{}
	}
	return m.Normals[n].Normalize()
}

// HasNormals reports whether every face corner references a normal.
func (m *Mesh) HasNormals() bool {
	if len(m.Normals) == 0 {
		return false
	}
	for _, f := range m.Faces {
		for _, n := range f.N {
			if n < 0 {
				return false
			}
		}
	}
	return true
}

// CalculateSmoothNormals computes one area-weighted normal per position and
// points every face corner at it.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))

	// Accumulate face normals per vertex
	for _, f := range m.Faces {
		v0 := m.Positions[f.V[0]]
		v1 := m.Positions[f.V[1]]
		v2 := m.Positions[f.V[2]]

		normal := v1.Sub(v0).Cross(v2.Sub(v0)) // Don't normalize yet
		for _, vi := range f.V {
			normals[vi] = normals[vi].Add(normal)
		}
	}

	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
	for i := range m.Faces {
		m.Faces[i].N = m.Faces[i].V
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	b := math3d.EmptyAABB()
	for _, p := range m.Positions {
		b = b.Extend(p)
	}
	m.Bounds = b
}

// Transform applies a 4×4 matrix to all positions. Normals are transformed
// by the inverse transpose so non-uniform scales keep them perpendicular.
func (m *Mesh) Transform(mat *math3d.Matrix) {
	for i, p := range m.Positions {
		m.Positions[i] = math3d.TransformPoint(mat, p)
	}
	if len(m.Normals) > 0 {
		nm := mat.InverseTranspose()
		for i, n := range m.Normals {
			m.Normals[i] = math3d.TransformDir(nm, n).Normalize()
		}
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it uniformly so its
// largest dimension spans [-1, 1].
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	if m.Bounds.IsEmpty() {
		return
	}
	size := m.Bounds.Size()
	extent := max(size.X, size.Y, size.Z)
	if extent == 0 {
		return
	}
	mat := math3d.ScaleUniform(2 / extent).Mul(math3d.Translate(m.Bounds.Center().Negate()))
	m.Transform(mat)
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		UVs:       make([]math3d.Vec2, len(m.UVs)),
		Normals:   make([]math3d.Vec3, len(m.Normals)),
		Faces:     make([]Face, len(m.Faces)),
		Bounds:    m.Bounds,
	}
	copy(clone.Positions, m.Positions)
	copy(clone.UVs, m.UVs)
	copy(clone.Normals, m.Normals)
	copy(clone.Faces, m.Faces)
	return clone
}
