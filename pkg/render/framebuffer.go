// Package render implements the software rasterizer: shaders, the triangle
// scan, depth and shadow buffers, and the render passes built on them.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned when an output extension has no encoder.
var ErrUnknownFormat = errors.New("unknown image format")

// Framebuffer is a 2D array of pixels. Row 0 is the bottom of the rendered
// scene until FlipVertically is called; Save flips a copy so files come out
// upright.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

// SetPixel sets a pixel at (x, y) to the given color.
// Out-of-bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// FlipVertically mirrors the image top to bottom.
func (fb *Framebuffer) FlipVertically() {
	for y := range fb.Height / 2 {
		top := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		bot := fb.Pixels[(fb.Height-1-y)*fb.Width : (fb.Height-y)*fb.Width]
		for x := range top {
			top[x], bot[x] = bot[x], top[x]
		}
	}
}

// Clone returns a deep copy.
func (fb *Framebuffer) Clone() *Framebuffer {
	c := NewFramebuffer(fb.Width, fb.Height)
	copy(c.Pixels, fb.Pixels)
	return c
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Pixels {
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img
}

// Scaled returns a bilinear resample of the framebuffer at width×height,
// keeping row order.
func (fb *Framebuffer) Scaled(width, height int) *Framebuffer {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, fb.ToImage(), image.Rect(0, 0, fb.Width, fb.Height), draw.Src, nil)
	out := NewFramebuffer(width, height)
	for i := range out.Pixels {
		p := dst.Pix[i*4 : i*4+4 : i*4+4]
		out.Pixels[i] = color.RGBA{p[0], p[1], p[2], p[3]}
	}
	return out
}

// Encode writes the framebuffer as-is in the format named by ext.
func (fb *Framebuffer) Encode(w io.Writer, ext string) error {
	return EncodeImage(w, fb.ToImage(), ext)
}

// Save writes an upright copy of the framebuffer; the format is chosen by
// the file extension.
func (fb *Framebuffer) Save(path string) error {
	flipped := fb.Clone()
	flipped.FlipVertically()
	return SaveImage(path, flipped.ToImage())
}

// EncodeImage writes img as .png, .tga, .bmp, .tif/.tiff or .webp.
func EncodeImage(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".tga":
		return tga.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".webp":
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
}

// SaveImage encodes img to path by extension.
func SaveImage(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if !KnownFormat(ext) {
		return fmt.Errorf("save %s: %w: %q", path, ErrUnknownFormat, ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := EncodeImage(f, img, ext); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// KnownFormat reports whether ext has an encoder.
func KnownFormat(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".tga", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
