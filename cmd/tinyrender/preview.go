package main

import (
	"context"
	"fmt"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/Raunak-S/tinyrender/pkg/render"
)

// preview shows fb in the terminal, two pixel rows per cell, until a key is
// pressed or ctx ends.
func preview(ctx context.Context, fb *render.Framebuffer) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	// Keep the aspect ratio inside the terminal: a cell is one pixel wide
	// and two tall.
	w, h := fitSize(fb.Width, fb.Height, width, height*2)
	fb.Scaled(w, h).Draw(term, uv.Rect(0, 0, width, height))
	if err := term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, isKey := ev.(uv.KeyPressEvent); isKey {
				return nil
			}
		}
	}
}

// fitSize scales w×h to the largest size that fits in maxW×maxH. The
// height is kept even so cells pair rows exactly.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := max(1, int(float64(w)*scale))
	fh := max(2, int(float64(h)*scale)&^1)
	return fw, fh
}
