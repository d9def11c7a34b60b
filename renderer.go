package main

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/retrovm/chip8/cpu"
)

// renderer draws the display buffer with fixed-function OpenGL. The ortho
// projection is sized to the buffer itself, one unit per Chip-8 pixel, so
// the window scale is handled entirely by the viewport.
type renderer struct{}

func newRenderer() (*renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(0, cpu.DisplayWidth, cpu.DisplayHeight, 0, -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.ClearColor(0, 0, 0, 1)

	return &renderer{}, nil
}

// render clears the frame to black and fills one white quad per lit pixel.
func (r *renderer) render(screen [cpu.DisplayHeight][cpu.DisplayWidth]bool) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Color3f(1, 1, 1)

	for y := 0; y < cpu.DisplayHeight; y++ {
		for x := 0; x < cpu.DisplayWidth; x++ {
			if screen[y][x] {
				gl.Rectf(float32(x), float32(y), float32(x+1), float32(y+1))
			}
		}
	}
}
