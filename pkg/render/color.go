package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// MultiplyColor multiplies a color by a scalar (for lighting), saturating at
// 255. Alpha is kept.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: clampChannel(float64(c.R) * intensity),
		G: clampChannel(float64(c.G) * intensity),
		B: clampChannel(float64(c.B) * intensity),
		A: c.A,
	}
}

// shade computes base + c*k per channel, saturating at 255, with full alpha.
func shade(c Color, base, k float64) Color {
	return Color{
		R: clampChannel(base + float64(c.R)*k),
		G: clampChannel(base + float64(c.G)*k),
		B: clampChannel(base + float64(c.B)*k),
		A: 255,
	}
}

func clampChannel(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
