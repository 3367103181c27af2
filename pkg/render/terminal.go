package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen, two pixel rows per cell. Row 0 of the framebuffer is the bottom
// of the image, so the top of each cell reads the higher row.
// The framebuffer height should be 2x the terminal height.
func (r *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := r.Height - 1 - (row-area.Min.Y)*2
		botY := topY - 1

		if botY < 0 {
			break
		}
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < r.Width; col++ {
			topColor := r.GetPixel(col-area.Min.X, topY)
			botColor := r.GetPixel(col-area.Min.X, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
