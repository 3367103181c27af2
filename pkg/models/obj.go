package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file. Polygons are fan-triangulated and smooth
// normals are computed when the file has none.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads OBJ statements from r. Only v, vt, vn and f are used;
// other statements are ignored.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Positions = append(mesh.Positions, v)
		case "vn":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Normals = append(mesh.Normals, v)
		case "vt":
			var v math3d.Vec2
			v, err = parseVec2(fields[1:])
			mesh.UVs = append(mesh.UVs, v)
		case "f":
			err = mesh.parseFace(fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("obj has no faces")
	}

	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", fields[i], err)
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(f[0], f[1], f[2]), nil
}

// parseVec2 accepts "vt u v [w]"; w is dropped.
func parseVec2(fields []string) (math3d.Vec2, error) {
	if len(fields) == 1 {
		fields = append(fields, "0")
	}
	f, err := parseFloats(fields, 2)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(f[0], f[1]), nil
}

// parseFace handles v, v/t, v//n and v/t/n corners and fans polygons into
// triangles around the first corner.
func (m *Mesh) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face needs at least 3 corners, got %d", len(fields))
	}
	type corner struct{ v, t, n int }
	corners := make([]corner, len(fields))
	for i, tok := range fields {
		parts := strings.Split(tok, "/")
		if len(parts) > 3 {
			return fmt.Errorf("bad face corner %q", tok)
		}
		c := corner{v: -1, t: -1, n: -1}
		var err error
		if c.v, err = resolveIndex(parts[0], len(m.Positions)); err != nil {
			return fmt.Errorf("corner %q: %w", tok, err)
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.t, err = resolveIndex(parts[1], len(m.UVs)); err != nil {
				return fmt.Errorf("corner %q: %w", tok, err)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.n, err = resolveIndex(parts[2], len(m.Normals)); err != nil {
				return fmt.Errorf("corner %q: %w", tok, err)
			}
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		m.Faces = append(m.Faces, Face{
			V: [3]int{a.v, b.v, c.v},
			T: [3]int{a.t, b.t, c.t},
			N: [3]int{a.n, b.n, c.n},
		})
	}
	return nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index into a
// 0-based index into a list of length n.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q: %w", s, err)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (have %d)", i, n)
}
