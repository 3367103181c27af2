package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// orbitAngles returns n eye angles that ease from 0 toward one full turn
// with a critically damped spring, so the sequence starts and settles
// smoothly.
func orbitAngles(n int) []float64 {
	if n <= 1 {
		return []float64{0}
	}
	// One turn per second of animation at n frames per second.
	// Frequency 6.0 settles within about 2% of the target in that time.
	spring := harmonica.NewSpring(harmonica.FPS(n), 6.0, 1.0)

	angles := make([]float64, n)
	var pos, vel float64
	for i := 1; i < n; i++ {
		pos, vel = spring.Update(pos, vel, 2*math.Pi)
		angles[i] = pos
	}
	return angles
}

// frameName inserts a zero-padded frame number before the extension:
// out.tga becomes out_007.tga.
func frameName(path string, i int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), i, ext)
}
