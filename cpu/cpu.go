// Package cpu implements the Chip-8 virtual machine: 4K of memory, sixteen
// 8-bit registers, a call stack, two 60Hz countdown timers and a 64x32
// monochrome display buffer, driven one instruction at a time.
//
// The machine owns no devices. A host drives it by calling Tick N times per
// frame, TickTimers once per frame, and then reading Display for rendering.
// Key state is pushed in through SetKey and the sound timer announces beeps
// on the channel returned by Tone, so windowing, input and audio stay
// entirely outside this package.
package cpu

import (
	"github.com/retroenv/retrogolib/log"
)

const (
	// MemorySize is the number of addressable bytes of RAM.
	MemorySize = 4096
	// ProgramStart is the address programs are loaded at; everything below
	// it is reserved for the interpreter and the font sprites.
	ProgramStart = 0x200
	// MaxProgramSize is the largest ROM that fits between ProgramStart and
	// the end of memory.
	MaxProgramSize = MemorySize - ProgramStart

	// DisplayWidth and DisplayHeight are the dimensions of the display
	// buffer in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	numRegisters = 16
	numKeys      = 16
	stackSize    = 16
)

// Chip8 holds the complete machine state. The zero value is not usable;
// create instances with New.
type Chip8 struct {
	memory [MemorySize]byte
	v      [numRegisters]byte
	i      uint16
	pc     uint16

	stack [stackSize]uint16
	sp    byte

	dt byte
	st byte

	screen [DisplayHeight][DisplayWidth]bool
	keys   [numKeys]bool

	rand   RandomSource
	tones  chan struct{}
	logger *log.Logger
}

// New returns a reset machine with the font sprites loaded and the program
// counter at ProgramStart. Instruction traces are emitted on the given
// logger at debug level.
func New(logger *log.Logger) *Chip8 {
	c := &Chip8{
		logger: logger,
		rand:   newTimeSeededSource(),
		tones:  make(chan struct{}, 1),
	}
	c.Reset()
	return c
}

// SetRandomSource replaces the source of random bytes used by the RND
// opcode. Deterministic replays and tests substitute a fixed sequence here.
func (c *Chip8) SetRandomSource(src RandomSource) {
	c.rand = src
}

// Reset restores the machine to its initial state: memory, registers, stack,
// timers, display and key state cleared, font sprites reloaded and the
// program counter back at ProgramStart. The random source, tone channel and
// logger survive a reset.
func (c *Chip8) Reset() {
	c.memory = [MemorySize]byte{}
	c.v = [numRegisters]byte{}
	c.i = 0
	c.pc = ProgramStart
	c.stack = [stackSize]uint16{}
	c.sp = 0
	c.dt = 0
	c.st = 0
	c.screen = [DisplayHeight][DisplayWidth]bool{}
	c.keys = [numKeys]bool{}

	loadFontSprites(&c.memory)
}

// Load copies a program into memory starting at ProgramStart. Programs
// larger than MaxProgramSize are rejected without touching memory.
func (c *Chip8) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return &ProgramSizeError{Size: len(program)}
	}
	copy(c.memory[ProgramStart:], program)
	return nil
}

// SetKey records a key press or release on the hex keypad. The key index
// must be in the range 0x0 through 0xF.
func (c *Chip8) SetKey(key int, pressed bool) error {
	if key < 0 || key >= numKeys {
		return &KeyIndexError{Index: key}
	}
	c.keys[key] = pressed
	return nil
}

// Display returns a copy of the display buffer in row-major order. Pixel
// (x, y) is at [y][x]; true means lit.
func (c *Chip8) Display() [DisplayHeight][DisplayWidth]bool {
	return c.screen
}

// Snapshot is a read-only copy of the machine's registers, stack and
// memory, for debugging and tests.
type Snapshot struct {
	PC     uint16
	I      uint16
	V      [numRegisters]byte
	DT     byte
	ST     byte
	SP     byte
	Stack  [stackSize]uint16
	Memory [MemorySize]byte
}

// Snapshot returns a copy of the machine state at the moment of the call.
func (c *Chip8) Snapshot() Snapshot {
	return Snapshot{
		PC:     c.pc,
		I:      c.i,
		V:      c.v,
		DT:     c.dt,
		ST:     c.st,
		SP:     c.sp,
		Stack:  c.stack,
		Memory: c.memory,
	}
}

// Tone returns the channel on which the machine announces that a beep
// should start playing. The send is non-blocking: if the consumer has not
// drained the previous signal yet, a new one is dropped.
func (c *Chip8) Tone() <-chan struct{} {
	return c.tones
}

// Tick fetches, decodes and executes exactly one instruction. Faults are
// returned as typed errors (UnknownOpcodeError, StackError, MemoryError)
// and leave all state other than the completed fetch untouched, so the host
// chooses whether to halt, skip or log.
func (c *Chip8) Tick() error {
	if int(c.pc)+1 >= MemorySize {
		return &MemoryError{Addr: uint32(c.pc), PC: c.pc}
	}
	at := c.pc
	op := opcode(uint16(c.memory[c.pc])<<8 | uint16(c.memory[c.pc+1]))
	c.pc += 2

	if c.logger != nil {
		c.logger.Debug("executing instruction",
			log.String("pc", hex16(at)),
			log.String("opcode", hex16(uint16(op))),
		)
	}
	return c.exec(op, at)
}

// TickTimers advances the delay and sound timers by one 60Hz tick. The tone
// signal fires on the tick that takes the sound timer from 1 to 0, so the
// beep starts on the last active tick rather than after it.
func (c *Chip8) TickTimers() {
	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		if c.st == 1 {
			c.requestTone()
		}
		c.st--
	}
}

func (c *Chip8) requestTone() {
	select {
	case c.tones <- struct{}{}:
	default:
	}
}

func (c *Chip8) push(addr uint16, at uint16) error {
	if c.sp >= stackSize {
		return &StackError{Overflow: true, PC: at}
	}
	c.stack[c.sp] = addr
	c.sp++
	return nil
}

func (c *Chip8) pop(at uint16) (uint16, error) {
	if c.sp == 0 {
		return 0, &StackError{Overflow: false, PC: at}
	}
	c.sp--
	return c.stack[c.sp], nil
}
