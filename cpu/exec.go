package cpu

import "fmt"

// opcode is one big-endian 16-bit instruction word.
//
// Field extraction follows the usual Chip-8 conventions:
//
//	nnn - low 12 bits (an address)
//	kk  - low byte (an immediate)
//	x   - low nibble of the high byte (a register index)
//	y   - high nibble of the low byte (a register index)
//	n   - low nibble (a sprite height)
type opcode uint16

func (op opcode) nnn() uint16 { return uint16(op) & 0x0FFF }
func (op opcode) kk() byte    { return byte(op) }
func (op opcode) x() byte     { return byte(op>>8) & 0x0F }
func (op opcode) y() byte     { return byte(op>>4) & 0x0F }
func (op opcode) n() byte     { return byte(op) & 0x0F }

func hex16(v uint16) string {
	return fmt.Sprintf("0x%04X", v)
}

// exec dispatches on the opcode's nibbles and applies its effect to the
// machine state. at is the address the opcode was fetched from; the program
// counter already points at the next instruction, so skips advance it by
// two more and jumps overwrite it.
func (c *Chip8) exec(op opcode, at uint16) error {
	x, y := op.x(), op.y()

	switch byte(op >> 12) {
	case 0x0:
		switch uint16(op) {
		// 0000: NOP
		case 0x0000:

		// 00E0: CLS
		case 0x00E0:
			c.screen = [DisplayHeight][DisplayWidth]bool{}

		// 00EE: RET
		case 0x00EE:
			addr, err := c.pop(at)
			if err != nil {
				return err
			}
			c.pc = addr

		default:
			return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
		}

	// 1nnn: JP addr
	case 0x1:
		c.pc = op.nnn()

	// 2nnn: CALL addr
	case 0x2:
		if err := c.push(c.pc, at); err != nil {
			return err
		}
		c.pc = op.nnn()

	// 3xkk: SE Vx, byte
	case 0x3:
		if c.v[x] == op.kk() {
			c.pc += 2
		}

	// 4xkk: SNE Vx, byte
	case 0x4:
		if c.v[x] != op.kk() {
			c.pc += 2
		}

	// 5xy0: SE Vx, Vy
	case 0x5:
		if op.n() != 0 {
			return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
		}
		if c.v[x] == c.v[y] {
			c.pc += 2
		}

	// 6xkk: LD Vx, byte
	case 0x6:
		c.v[x] = op.kk()

	// 7xkk: ADD Vx, byte (no carry flag, wraps)
	case 0x7:
		c.v[x] += op.kk()

	case 0x8:
		return c.execALU(op, at)

	// 9xy0: SNE Vx, Vy
	case 0x9:
		if op.n() != 0 {
			return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
		}
		if c.v[x] != c.v[y] {
			c.pc += 2
		}

	// Annn: LD I, addr
	case 0xA:
		c.i = op.nnn()

	// Bnnn: JP V0, addr
	case 0xB:
		c.pc = op.nnn() + uint16(c.v[0])

	// Cxkk: RND Vx, byte
	case 0xC:
		c.v[x] = c.rand.Byte() & op.kk()

	// Dxyn: DRW Vx, Vy, nibble
	case 0xD:
		return c.drawSprite(op, at)

	case 0xE:
		switch op.kk() {
		// Ex9E: SKP Vx
		case 0x9E:
			if c.keys[c.v[x]&0x0F] {
				c.pc += 2
			}

		// ExA1: SKNP Vx
		case 0xA1:
			if !c.keys[c.v[x]&0x0F] {
				c.pc += 2
			}

		default:
			return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
		}

	case 0xF:
		return c.execMisc(op, at)
	}

	return nil
}

// execALU handles the 8xyN register-to-register group. VF doubles as the
// carry/borrow flag and is written after the result, so the flag wins when
// Vx is VF itself.
func (c *Chip8) execALU(op opcode, at uint16) error {
	x, y := op.x(), op.y()

	switch op.n() {
	// 8xy0: LD Vx, Vy
	case 0x0:
		c.v[x] = c.v[y]

	// 8xy1: OR Vx, Vy
	case 0x1:
		c.v[x] |= c.v[y]

	// 8xy2: AND Vx, Vy
	case 0x2:
		c.v[x] &= c.v[y]

	// 8xy3: XOR Vx, Vy
	case 0x3:
		c.v[x] ^= c.v[y]

	// 8xy4: ADD Vx, Vy (VF = carry)
	case 0x4:
		sum := uint16(c.v[x]) + uint16(c.v[y])
		c.v[x] = byte(sum)
		if sum > 0xFF {
			c.v[0xF] = 1
		} else {
			c.v[0xF] = 0
		}

	// 8xy5: SUB Vx, Vy (VF = NOT borrow)
	case 0x5:
		noBorrow := c.v[x] >= c.v[y]
		c.v[x] -= c.v[y]
		if noBorrow {
			c.v[0xF] = 1
		} else {
			c.v[0xF] = 0
		}

	// 8xy6: SHR Vx (VF = bit shifted out; Vy is ignored)
	case 0x6:
		lsb := c.v[x] & 0x01
		c.v[x] >>= 1
		c.v[0xF] = lsb

	// 8xy7: SUBN Vx, Vy (Vx = Vy - Vx, VF = NOT borrow)
	case 0x7:
		noBorrow := c.v[y] >= c.v[x]
		c.v[x] = c.v[y] - c.v[x]
		if noBorrow {
			c.v[0xF] = 1
		} else {
			c.v[0xF] = 0
		}

	// 8xyE: SHL Vx (VF = bit shifted out; Vy is ignored)
	case 0xE:
		msb := (c.v[x] >> 7) & 0x01
		c.v[x] <<= 1
		c.v[0xF] = msb

	default:
		return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
	}

	return nil
}

// execMisc handles the FxNN group: timers, key wait, memory-indexed loads
// and stores.
func (c *Chip8) execMisc(op opcode, at uint16) error {
	x := op.x()

	switch op.kk() {
	// Fx07: LD Vx, DT
	case 0x07:
		c.v[x] = c.dt

	// Fx0A: LD Vx, K (wait for a key press)
	//
	// When no key is down the program counter rewinds by two so the same
	// instruction executes again next tick; the host keeps calling Tick and
	// the wait resolves once SetKey records a press. Quirk kept from the
	// reference machine: Vx receives the pressed-state value (always 1),
	// not the index of the pressed key.
	case 0x0A:
		pressed := false
		for i := range c.keys {
			if c.keys[i] {
				c.v[x] = 1
				pressed = true
				break
			}
		}
		if !pressed {
			c.pc -= 2
		}

	// Fx15: LD DT, Vx
	case 0x15:
		c.dt = c.v[x]

	// Fx18: LD ST, Vx
	case 0x18:
		c.st = c.v[x]

	// Fx1E: ADD I, Vx (wraps)
	case 0x1E:
		c.i += uint16(c.v[x])

	// Fx29: LD F, Vx (I = font glyph base address)
	case 0x29:
		c.i = uint16(c.v[x]) * fontGlyphSize

	// Fx33: LD B, Vx (BCD digits at I, I+1, I+2)
	case 0x33:
		if int(c.i)+2 >= MemorySize {
			return &MemoryError{Addr: uint32(c.i) + 2, PC: at}
		}
		vx := c.v[x]
		c.memory[c.i] = vx / 100
		c.memory[c.i+1] = (vx / 10) % 10
		c.memory[c.i+2] = vx % 10

	// Fx55: LD [I], Vx (store V0..Vx inclusive)
	case 0x55:
		if int(c.i)+int(x) >= MemorySize {
			return &MemoryError{Addr: uint32(c.i) + uint32(x), PC: at}
		}
		for i := byte(0); i <= x; i++ {
			c.memory[c.i+uint16(i)] = c.v[i]
		}

	// Fx65: LD Vx, [I] (load V0..Vx inclusive)
	case 0x65:
		if int(c.i)+int(x) >= MemorySize {
			return &MemoryError{Addr: uint32(c.i) + uint32(x), PC: at}
		}
		for i := byte(0); i <= x; i++ {
			c.v[i] = c.memory[c.i+uint16(i)]
		}

	default:
		return &UnknownOpcodeError{Opcode: uint16(op), PC: at}
	}

	return nil
}

// drawSprite implements Dxyn: an n-row sprite read from memory at I is
// XORed onto the screen at (Vx, Vy). Sprite rows are always 8 pixels wide;
// coordinates wrap on both axes. VF is set when any lit pixel is turned off.
func (c *Chip8) drawSprite(op opcode, at uint16) error {
	height := uint16(op.n())
	if int(c.i)+int(height) > MemorySize {
		return &MemoryError{Addr: uint32(c.i) + uint32(height) - 1, PC: at}
	}

	xCoord := uint16(c.v[op.x()])
	yCoord := uint16(c.v[op.y()])

	collision := false
	for row := uint16(0); row < height; row++ {
		bits := c.memory[c.i+row]
		for col := uint16(0); col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (xCoord + col) % DisplayWidth
			py := (yCoord + row) % DisplayHeight
			if c.screen[py][px] {
				collision = true
			}
			c.screen[py][px] = !c.screen[py][px]
		}
	}

	if collision {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
	return nil
}
