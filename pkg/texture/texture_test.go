package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// quad returns a 2×2 texture: top row red, green; bottom row blue, white.
func quad() *Texture {
	tex := New(2, 2)
	tex.SetPixel(0, 0, red)
	tex.SetPixel(1, 0, green)
	tex.SetPixel(0, 1, blue)
	tex.SetPixel(1, 1, white)
	return tex
}

func TestSample2D(t *testing.T) {
	tex := quad()
	tests := []struct {
		name string
		uv   math3d.Vec2
		want color.RGBA
	}{
		{"bottom left", math3d.V2(0.25, 0.25), blue},
		{"bottom right", math3d.V2(0.75, 0.25), white},
		{"top left", math3d.V2(0.25, 0.75), red},
		{"top right", math3d.V2(0.75, 0.75), green},
		{"v zero edge", math3d.V2(0, 0), blue},
		{"repeat", math3d.V2(1.25, 2.75), red},
		{"negative repeat", math3d.V2(-0.25, -0.25), green},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sample2D(tex, tc.uv); got != tc.want {
				t.Errorf("Sample2D(%v) = %v, want %v", tc.uv, got, tc.want)
			}
		})
	}
}

func TestSample2DClamp(t *testing.T) {
	tex := quad()
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp
	if got := Sample2D(tex, math3d.V2(5, 5)); got != green {
		t.Errorf("clamped sample = %v, want top-right green", got)
	}
	if got := Sample2D(tex, math3d.V2(-5, -5)); got != blue {
		t.Errorf("clamped sample = %v, want bottom-left blue", got)
	}
}

func TestSample2DNil(t *testing.T) {
	if got := Sample2D(nil, math3d.V2(0.5, 0.5)); got != (color.RGBA{}) {
		t.Errorf("nil texture sample = %v, want zero", got)
	}
}

func TestPixelBounds(t *testing.T) {
	tex := New(2, 2)
	tex.SetPixel(-1, 0, red)
	tex.SetPixel(2, 2, red)
	for _, p := range tex.Pixels {
		if p != (color.RGBA{}) {
			t.Fatal("out-of-bounds SetPixel wrote a pixel")
		}
	}
	if got := tex.GetPixel(5, 5); got != (color.RGBA{}) {
		t.Errorf("out-of-bounds GetPixel = %v", got)
	}
}

func TestChecker(t *testing.T) {
	tex := NewChecker(4, 4, 2, red, blue)
	if tex.GetPixel(0, 0) != red || tex.GetPixel(2, 0) != blue || tex.GetPixel(2, 2) != red {
		t.Error("unexpected checker layout")
	}
}

func writeImage(t *testing.T, path string, encode func(*os.File, image.Image) error) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, red)
	img.Set(1, 0, green)
	img.Set(0, 1, blue)
	img.Set(1, 1, white)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		encode func(*os.File, image.Image) error
	}{
		{"tex.png", func(f *os.File, m image.Image) error { return png.Encode(f, m) }},
		{"tex.tga", func(f *os.File, m image.Image) error { return tga.Encode(f, m) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			writeImage(t, path, tc.encode)

			tex, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tex.Width != 2 || tex.Height != 2 {
				t.Fatalf("size = %dx%d, want 2x2", tex.Width, tex.Height)
			}
			if got := Sample2D(tex, math3d.V2(0.25, 0.75)); got != red {
				t.Errorf("top-left = %v, want red", got)
			}
			if got := Sample2D(tex, math3d.V2(0.75, 0.25)); got != white {
				t.Errorf("bottom-right = %v, want white", got)
			}
		})
	}
}

func TestDecodeSniffsFormat(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, red)
	img.Set(1, 1, white)

	tests := []struct {
		name     string
		encode   func(io.Writer, image.Image) error
		lossless bool
	}{
		{"png", png.Encode, true},
		{"tga", tga.Encode, true},
		{"bmp", bmp.Encode, true},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }, true},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.encode(&buf, img); err != nil {
				t.Fatal(err)
			}
			decoders := map[string]func() (*Texture, error){
				"Decode":         func() (*Texture, error) { return Decode(bytes.NewReader(buf.Bytes())) },
				"unknown suffix": func() (*Texture, error) { return DecodeAs(bytes.NewReader(buf.Bytes()), ".dat") },
			}
			for name, decode := range decoders {
				tex, err := decode()
				if err != nil {
					t.Fatalf("%s: %v", name, err)
				}
				if tex.Width != 2 || tex.Height != 2 {
					t.Fatalf("%s: size = %dx%d, want 2x2", name, tex.Width, tex.Height)
				}
				if tc.lossless && tex.GetPixel(0, 0) != red {
					t.Errorf("%s: pixel (0,0) = %v, want red", name, tex.GetPixel(0, 0))
				}
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.tga")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
}
