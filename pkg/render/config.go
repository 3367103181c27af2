package render

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
)

// Config holds the per-render settings shared by every pass.
type Config struct {
	Width  int
	Height int
	Depth  float64 // depth range the viewport maps NDC z onto

	Background color.RGBA

	// AmbientFloor is the fraction of lit intensity kept in shadow.
	AmbientFloor float64
	// ShadowBias is added to a fragment's light-space depth before the
	// shadow-buffer comparison, in the same units as Depth.
	ShadowBias float64
}

// DefaultConfig returns an 800×800 canvas with depth range 2000.
func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       800,
		Depth:        2000,
		Background:   ColorBlack,
		AmbientFloor: 0.3,
		ShadowBias:   10,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Depth <= 0 {
		errs = append(errs, fmt.Errorf("depth %g must be positive", c.Depth))
	}
	if c.AmbientFloor < 0 || c.AmbientFloor > 1 {
		errs = append(errs, fmt.Errorf("ambient floor %g outside [0,1]", c.AmbientFloor))
	}
	if c.ShadowBias < 0 {
		errs = append(errs, fmt.Errorf("shadow bias %g must not be negative", c.ShadowBias))
	}
	return errors.Join(errs...)
}

// Viewport returns the viewport matrix: the central three quarters of the
// canvas with an eighth of margin on each side.
func (c Config) Viewport() *math3d.Matrix {
	return math3d.Viewport(c.Width/8, c.Height/8, c.Width*3/4, c.Height*3/4, c.Depth)
}
