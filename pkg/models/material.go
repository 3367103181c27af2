package models

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
	"github.com/Raunak-S/tinyrender/pkg/texture"
)

// Texture map file suffixes looked up next to a mesh file.
const (
	DiffuseSuffix  = "_diffuse.tga"
	NormalSuffix   = "_nm.tga"
	TangentSuffix  = "_nm_tangent.tga"
	SpecularSuffix = "_spec.tga"
)

// Material holds the optional texture maps of a mesh. Any map may be nil;
// samplers then return neutral values. A nil *Material samples as all
// defaults.
type Material struct {
	DiffuseMap  *texture.Texture
	NormalMap   *texture.Texture // object-space normals encoded as RGB
	TangentMap  *texture.Texture // tangent-space normals encoded as RGB
	SpecularMap *texture.Texture // specular exponent in the red channel
}

// Diffuse returns the base color at uv, white when there is no diffuse map.
func (m *Material) Diffuse(uv math3d.Vec2) color.RGBA {
	if m == nil || m.DiffuseMap == nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return texture.Sample2D(m.DiffuseMap, uv)
}

// Normal returns the object-space normal at uv. ok is false when there is
// no normal map, in which case callers keep the interpolated vertex normal.
func (m *Material) Normal(uv math3d.Vec2) (n math3d.Vec3, ok bool) {
	if m == nil || m.NormalMap == nil {
		return math3d.Vec3{}, false
	}
	return decodeNormal(texture.Sample2D(m.NormalMap, uv)), true
}

// TangentNormal returns the tangent-space normal at uv, (0,0,1) when there
// is no tangent map.
func (m *Material) TangentNormal(uv math3d.Vec2) math3d.Vec3 {
	if m == nil || m.TangentMap == nil {
		return math3d.V3(0, 0, 1)
	}
	return decodeNormal(texture.Sample2D(m.TangentMap, uv))
}

// Specular returns the specular exponent at uv. ok is false when there is
// no specular map and the specular term should be skipped.
func (m *Material) Specular(uv math3d.Vec2) (exp float64, ok bool) {
	if m == nil || m.SpecularMap == nil {
		return 0, false
	}
	return float64(texture.Sample2D(m.SpecularMap, uv).R), true
}

// decodeNormal maps RGB in [0,255] to a vector in [-1,1]³.
func decodeNormal(c color.RGBA) math3d.Vec3 {
	return math3d.V3(
		float64(c.R)/255*2-1,
		float64(c.G)/255*2-1,
		float64(c.B)/255*2-1,
	)
}

// Loader loads meshes together with their texture maps.
type Loader struct {
	// Logger receives debug messages about missing optional maps.
	Logger *slog.Logger
}

// NewLoader creates a loader that logs to the default slog logger.
func NewLoader() *Loader {
	return &Loader{Logger: slog.Default()}
}

// Load reads a mesh by extension (.obj, .glb, .gltf) and its material.
// OBJ materials come from sibling TGA files; glTF materials from the first
// embedded image.
func (l *Loader) Load(path string) (*Mesh, *Material, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		mesh, err := LoadOBJ(path)
		if err != nil {
			return nil, nil, err
		}
		mat, err := l.LoadMaterial(path)
		if err != nil {
			return nil, nil, err
		}
		return mesh, mat, nil
	case ".glb", ".gltf":
		return NewGLTFLoader().LoadWithMaterial(path)
	default:
		return nil, nil, fmt.Errorf("unsupported model format: %s", filepath.Ext(path))
	}
}

// LoadMaterial looks for <stem>_diffuse.tga, <stem>_nm.tga,
// <stem>_nm_tangent.tga and <stem>_spec.tga beside meshPath. Missing files
// are skipped; files that exist but fail to decode are errors.
func (l *Loader) LoadMaterial(meshPath string) (*Material, error) {
	stem := strings.TrimSuffix(meshPath, filepath.Ext(meshPath))
	mat := &Material{}
	maps := []struct {
		suffix string
		dst    **texture.Texture
	}{
		{DiffuseSuffix, &mat.DiffuseMap},
		{NormalSuffix, &mat.NormalMap},
		{TangentSuffix, &mat.TangentMap},
		{SpecularSuffix, &mat.SpecularMap},
	}
	for _, m := range maps {
		path := stem + m.suffix
		tex, err := texture.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger().Debug("texture map not found", "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load material: %w", err)
		}
		l.logger().Debug("texture map loaded", "path", path, "width", tex.Width, "height", tex.Height)
		*m.dst = tex
	}
	return mat, nil
}

func (l *Loader) logger() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// LoadMaterial loads the sibling texture maps of meshPath with a default
// loader.
func LoadMaterial(meshPath string) (*Material, error) {
	return NewLoader().LoadMaterial(meshPath)
}
