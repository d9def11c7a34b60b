package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/retroenv/retrogolib/log"
	"github.com/retrovm/chip8/cpu"
)

// keypadLayout maps the left-hand block of a QWERTY keyboard onto the 4x4
// hex keypad, the conventional Chip-8 binding:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keypadLayout = map[glfw.Key]int{
	glfw.Key1: 0x1, glfw.Key2: 0x2, glfw.Key3: 0x3, glfw.Key4: 0xC,
	glfw.KeyQ: 0x4, glfw.KeyW: 0x5, glfw.KeyE: 0x6, glfw.KeyR: 0xD,
	glfw.KeyA: 0x7, glfw.KeyS: 0x8, glfw.KeyD: 0x9, glfw.KeyF: 0xE,
	glfw.KeyZ: 0xA, glfw.KeyX: 0x0, glfw.KeyC: 0xB, glfw.KeyV: 0xF,
}

// attachKeypad forwards key presses and releases to the machine's keypad.
// Escape closes the window; key repeat events are ignored since the keypad
// only tracks held state.
func attachKeypad(window *glfw.Window, machine *cpu.Chip8, logger *log.Logger) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}

		pad, ok := keypadLayout[key]
		if !ok {
			return
		}
		switch action {
		case glfw.Press, glfw.Release:
			if err := machine.SetKey(pad, action == glfw.Press); err != nil {
				logger.Error("Updating keypad", log.Err(err))
			}
		}
	})
}
