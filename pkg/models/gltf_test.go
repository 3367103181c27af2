package models

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

// writeTriangleGLB writes a single indexed triangle with positions, UVs and
// the given images.
func writeTriangleGLB(t *testing.T, path string, images ...*gltf.Image) {
	t.Helper()
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	uvs := [][2]float32{{0, 0}, {1, 0}, {0, 0.25}}
	indices := []uint16{0, 1, 2, 0} // padded to 4-byte alignment

	var buf []byte
	for _, p := range positions {
		for _, f := range p {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	uvOffset := len(buf)
	for _, uv := range uvs {
		for _, f := range uv {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	idxOffset := len(buf)
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}

	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(buf), Data: buf}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: uvOffset},
			{Buffer: 0, ByteOffset: uvOffset, ByteLength: idxOffset - uvOffset},
			{Buffer: 0, ByteOffset: idxOffset, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec2},
			{BufferView: gltf.Index(2), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Images: images,
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Indices:    gltf.Index(2),
				Attributes: map[string]int{gltf.POSITION: 0, gltf.TEXCOORD_0: 1},
			}},
		}},
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
}

func TestLoadGLBTriangle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	writeTriangleGLB(t, path)

	mesh, mat, err := NewGLTFLoader().LoadWithMaterial(path)
	if err != nil {
		t.Fatalf("LoadWithMaterial: %v", err)
	}
	if mesh.FaceCount() != 1 {
		t.Fatalf("FaceCount = %d, want 1", mesh.FaceCount())
	}
	if p := mesh.Position(0, 1); p != math3d.V3(1, 0, 0) {
		t.Errorf("Position(0,1) = %v", p)
	}
	// V is flipped to a bottom-left origin.
	if uv := mesh.UV(0, 2); uv != math3d.V2(0, 0.75) {
		t.Errorf("UV(0,2) = %v, want (0,0.75)", uv)
	}
	if n := mesh.Normal(0, 0); n != math3d.V3(0, 0, 1) {
		t.Errorf("computed normal = %v, want (0,0,1)", n)
	}
	if mat == nil || mat.DiffuseMap != nil {
		t.Errorf("material = %+v, want empty material", mat)
	}
}

func TestLoadGLBDataURIImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	payload := base64.StdEncoding.EncodeToString(buf.Bytes())

	tests := []struct {
		name string
		uri  string
	}{
		{"typed", "data:image/png;base64," + payload},
		{"untyped", "data:application/octet-stream;base64," + payload},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tri.glb")
			writeTriangleGLB(t, path, &gltf.Image{URI: tc.uri})

			_, mat, err := NewGLTFLoader().LoadWithMaterial(path)
			if err != nil {
				t.Fatalf("LoadWithMaterial: %v", err)
			}
			if mat.DiffuseMap == nil {
				t.Fatal("embedded image was not decoded")
			}
			if c := mat.DiffuseMap.GetPixel(0, 0); c != (color.RGBA{10, 20, 30, 255}) {
				t.Errorf("texel = %v", c)
			}
		})
	}
}

func TestMimeExt(t *testing.T) {
	tests := []struct {
		mime, uri, want string
	}{
		{"image/png", "", ".png"},
		{"image/jpeg", "tex.bin", ".jpg"},
		{"", "tex.tga", ".tga"},
		{"", "data:image/jpeg;base64,AAAA", ".jpg"},
		{"", "data:application/octet-stream;base64,AAAA", ""},
		{"image/png", "data:image/jpeg;base64,AAAA", ".png"},
	}
	for _, tc := range tests {
		if got := mimeExt(tc.mime, tc.uri); got != tc.want {
			t.Errorf("mimeExt(%q, %q) = %q, want %q", tc.mime, tc.uri, got, tc.want)
		}
	}
}
