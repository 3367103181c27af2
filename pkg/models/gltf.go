package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
	"github.com/Raunak-S/tinyrender/pkg/texture"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals computes smooth normals for primitives without them.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	loader := NewGLTFLoader()
	return loader.Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.build(doc, filepath.Base(path))
}

// LoadWithMaterial loads a GLTF or GLB file and uses its first decodable
// image as the diffuse map.
func (l *GLTFLoader) LoadWithMaterial(path string) (*Mesh, *Material, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}
	mesh, err := l.build(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	return mesh, &Material{DiffuseMap: firstTexture(doc, filepath.Dir(path))}, nil
}

func (l *GLTFLoader) build(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	// Process all meshes in the document
	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("gltf has no triangles")
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}

	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		// Get position accessor
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		// Get normals if available
		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		// Get UVs if available
		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		// GLTF attributes share one index per vertex, so a corner uses the
		// same offset into all three lists.
		base := len(mesh.Positions)
		mesh.Positions = append(mesh.Positions, positions...)
		normBase, uvBase := -1, -1
		if len(normals) == len(positions) {
			normBase = len(mesh.Normals)
			mesh.Normals = append(mesh.Normals, normals...)
		}
		if len(uvs) == len(positions) {
			uvBase = len(mesh.UVs)
			for _, uv := range uvs {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				mesh.UVs = append(mesh.UVs, math3d.V2(uv.X, 1.0-uv.Y))
			}
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var f Face
			for k := range 3 {
				idx := indices[i+k]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range (have %d vertices)", idx, len(positions))
				}
				f.V[k] = base + idx
				f.T[k], f.N[k] = -1, -1
				if uvBase >= 0 {
					f.T[k] = uvBase + idx
				}
				if normBase >= 0 {
					f.N[k] = normBase + idx
				}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// accessorView is the validated byte range behind an accessor.
type accessorView struct {
	data   []byte
	start  int
	stride int
	count  int
}

// at returns element i.
func (v accessorView) at(i int) []byte {
	return v.data[v.start+i*v.stride:]
}

// componentSize returns the byte size of one accessor component.
func componentSize(ct gltf.ComponentType) (int, error) {
	switch ct {
	case gltf.ComponentUbyte:
		return 1, nil
	case gltf.ComponentUshort:
		return 2, nil
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4, nil
	}
	return 0, fmt.Errorf("unsupported component type %v", ct)
}

// view resolves accessor idx, checking that it holds want-typed elements of
// n components and lies within its buffer.
func view(doc *gltf.Document, idx int, want gltf.AccessorType, n int) (*gltf.Accessor, accessorView, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, accessorView{}, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.Type != want {
		return nil, accessorView{}, fmt.Errorf("accessor %d: expected %v, got %v", idx, want, acc.Type)
	}
	if acc.BufferView == nil {
		return nil, accessorView{}, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	bv := doc.BufferViews[*acc.BufferView]
	// gltf.Open resolves both embedded (GLB) and external buffers into Data
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, accessorView{}, fmt.Errorf("accessor %d: buffer has no data", idx)
	}

	size, err := componentSize(acc.ComponentType)
	if err != nil {
		return nil, accessorView{}, fmt.Errorf("accessor %d: %w", idx, err)
	}
	elem := size * n
	v := accessorView{
		data:   data,
		start:  bv.ByteOffset + acc.ByteOffset,
		stride: bv.ByteStride,
		count:  acc.Count,
	}
	if v.stride == 0 {
		v.stride = elem
	}
	if v.count > 0 && (v.start < 0 || v.start+(v.count-1)*v.stride+elem > len(data)) {
		return nil, accessorView{}, fmt.Errorf("accessor %d reads past buffer of %d bytes", idx, len(data))
	}
	return acc, v, nil
}

// readFloats reads a float accessor of n components per element.
func readFloats(doc *gltf.Document, idx int, want gltf.AccessorType, n int) ([][3]float64, error) {
	acc, v, err := view(doc, idx, want, n)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("accessor %d: expected float components, got %v", idx, acc.ComponentType)
	}
	out := make([][3]float64, v.count)
	for i := range out {
		b := v.at(i)
		for j := range n {
			out[i][j] = float64(readFloat32(b[j*4:]))
		}
	}
	return out, nil
}

func readVec3Accessor(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	rows, err := readFloats(doc, idx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(rows))
	for i, r := range rows {
		result[i] = math3d.V3(r[0], r[1], r[2])
	}
	return result, nil
}

func readVec2Accessor(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	rows, err := readFloats(doc, idx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(rows))
	for i, r := range rows {
		result[i] = math3d.V2(r[0], r[1])
	}
	return result, nil
}

// readIndices reads an unsigned scalar index accessor.
func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	acc, v, err := view(doc, idx, gltf.AccessorScalar, 1)
	if err != nil {
		return nil, err
	}
	out := make([]int, v.count)
	for i := range out {
		b := v.at(i)
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			out[i] = int(b[0])
		case gltf.ComponentUshort:
			out[i] = int(binary.LittleEndian.Uint16(b))
		case gltf.ComponentUint:
			out[i] = int(binary.LittleEndian.Uint32(b))
		default:
			return nil, fmt.Errorf("accessor %d: index type %v", idx, acc.ComponentType)
		}
	}
	return out, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// firstTexture decodes the first image of doc that yields a texture, either
// from a buffer view or a file next to the document.
func firstTexture(doc *gltf.Document, dir string) *texture.Texture {
	for _, img := range doc.Images {
		var data []byte
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data == nil || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
				continue
			}
			data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		case img.IsEmbeddedResource():
			b, err := img.MarshalData()
			if err != nil {
				continue
			}
			data = b
		case img.URI != "":
			b, err := os.ReadFile(filepath.Join(dir, img.URI))
			if err != nil {
				continue
			}
			data = b
		default:
			continue
		}

		tex, err := texture.DecodeAs(bytes.NewReader(data), mimeExt(img.MimeType, img.URI))
		if err == nil {
			return tex
		}
	}
	return nil
}

// mimeExt picks a decoder extension from a glTF image MIME type, or from the
// media type of a data URI, falling back to the URI's extension. An empty
// result leaves the format to sniffing.
func mimeExt(mime, uri string) string {
	if rest, ok := strings.CutPrefix(uri, "data:"); ok {
		if mime == "" {
			mime, _, _ = strings.Cut(rest, ",")
			mime, _, _ = strings.Cut(mime, ";")
		}
		uri = ""
	}
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tif"
	case "image/x-tga", "image/tga":
		return ".tga"
	}
	return filepath.Ext(uri)
}
