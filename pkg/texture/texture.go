// Package texture holds decoded texture maps and nearest-sample lookup.
package texture

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// Texture holds a 2D image for texture mapping. Row 0 is the top of the
// image; UV coordinates have V=0 at the bottom.
type Texture struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
	WrapU  WrapMode
	WrapV  WrapMode
}

// New creates an empty texture with the given dimensions.
func New(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
		WrapU:  WrapRepeat,
		WrapV:  WrapRepeat,
	}
}

// decoders maps file extensions to their decoder.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".tga":  tga.Decode,
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
}

// Load reads a texture from an image file (TGA, PNG, JPEG, BMP or TIFF).
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	tex, err := DecodeAs(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tex, nil
}

// DecodeAs decodes r with the decoder for the file extension ext (".tga",
// ".png", ...). Unknown extensions fall back to Decode.
func DecodeAs(r io.Reader, ext string) (*Texture, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return Decode(r)
	}
	img, err := decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", ext, err)
	}
	return FromImage(img), nil
}

// signatures maps leading bytes to the extension of their decoder. TGA has
// none and is the fallback.
var signatures = []struct {
	magic string
	ext   string
}{
	{"\x89PNG\r\n\x1a\n", ".png"},
	{"\xff\xd8\xff", ".jpg"},
	{"BM", ".bmp"},
	{"II*\x00", ".tif"},
	{"MM\x00*", ".tif"},
}

// Decode sniffs the format of r and decodes it. Input matching no known
// signature is decoded as TGA.
func Decode(r io.Reader) (*Texture, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(8)
	for _, sig := range signatures {
		if bytes.HasPrefix(head, []byte(sig.magic)) {
			return DecodeAs(br, sig.ext)
		}
	}
	return DecodeAs(br, ".tga")
}

// FromImage creates a texture from an image.Image.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	tex := New(b.Dx(), b.Dy())
	for i := range tex.Pixels {
		p := rgba.Pix[i*4 : i*4+4 : i*4+4]
		tex.Pixels[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	return tex
}

// NewChecker creates a procedural checkerboard texture.
func NewChecker(width, height, checkSize int, c1, c2 color.RGBA) *Texture {
	tex := New(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewSolid creates a 1×1 texture of a single color.
func NewSolid(c color.RGBA) *Texture {
	tex := New(1, 1)
	tex.Pixels[0] = c
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample2D returns the nearest texel to uv. A nil or empty texture samples
// as transparent black.
func Sample2D(t *Texture, uv math3d.Vec2) color.RGBA {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return color.RGBA{}
	}
	u := wrapCoord(uv.X, t.WrapU)
	v := wrapCoord(uv.Y, t.WrapV)

	// Image Y=0 at top, UV V=0 at bottom
	x := int(u * float64(t.Width))
	y := int((1 - v) * float64(t.Height))
	return t.GetPixel(min(x, t.Width-1), min(y, t.Height-1))
}

// wrapCoord applies the wrap mode to a coordinate.
func wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord -= math.Floor(coord)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}
