package render

import (
	"image"
	"math"
)

// DepthBuffer stores one depth per pixel. Larger values are nearer the
// camera; Clear fills it with -Inf, meaning nothing drawn yet.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every pixel to -Inf.
func (d *DepthBuffer) Clear() {
	// Use copy-doubling for faster clearing
	n := len(d.Values)
	if n == 0 {
		return
	}
	d.Values[0] = math.Inf(-1)
	for i := 1; i < n; i *= 2 {
		copy(d.Values[i:], d.Values[:i])
	}
}

// At returns the depth at (x, y), -Inf outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.Inf(-1)
	}
	return d.Values[y*d.Width+x]
}

// Set stores z at (x, y). Out-of-bounds writes are ignored.
func (d *DepthBuffer) Set(x, y int, z float64) {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return
	}
	d.Values[y*d.Width+x] = z
}

// Lookup returns the depth at a fractional position, truncated to the pixel
// grid. ok is false outside the buffer.
func (d *DepthBuffer) Lookup(x, y float64) (z float64, ok bool) {
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y < 0 || x >= float64(d.Width) || y >= float64(d.Height) {
		return 0, false
	}
	return d.Values[int(y)*d.Width+int(x)], true
}

// Image renders depths in [0, depth] as grayscale with white nearest. Empty
// pixels are black. Row 0 of the image is row 0 of the buffer.
func (d *DepthBuffer) Image(depth float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, d.Width, d.Height))
	for i, z := range d.Values {
		if math.IsInf(z, -1) {
			continue
		}
		img.Pix[i] = clampChannel(255 * z / depth)
	}
	return img
}

// FlipVertically mirrors the buffer top to bottom.
func (d *DepthBuffer) FlipVertically() {
	for y := range d.Height / 2 {
		top := d.Values[y*d.Width : (y+1)*d.Width]
		bot := d.Values[(d.Height-1-y)*d.Width : (d.Height-y)*d.Width]
		for x := range top {
			top[x], bot[x] = bot[x], top[x]
		}
	}
}

// Save writes the grayscale visualization upright, format by extension.
func (d *DepthBuffer) Save(path string, depth float64) error {
	img := d.Image(depth)
	flipped := image.NewGray(img.Rect)
	for y := range d.Height {
		copy(flipped.Pix[y*d.Width:(y+1)*d.Width], img.Pix[(d.Height-1-y)*d.Width:(d.Height-y)*d.Width])
	}
	return SaveImage(path, flipped)
}
