package cpu

import "fmt"

// UnknownOpcodeError reports an instruction word that matches none of the
// 35 recognized opcode patterns. PC is the address it was fetched from.
type UnknownOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unrecognized opcode %s at %s", hex16(e.Opcode), hex16(e.PC))
}

// StackError reports a CALL with all 16 stack slots in use or a RET on an
// empty stack.
type StackError struct {
	Overflow bool
	PC       uint16
}

func (e *StackError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("call stack overflow at %s", hex16(e.PC))
	}
	return fmt.Sprintf("call stack underflow at %s", hex16(e.PC))
}

// MemoryError reports an instruction that would read or write beyond the
// end of memory.
type MemoryError struct {
	Addr uint32
	PC   uint16
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory access out of bounds at address 0x%04X (pc %s)", e.Addr, hex16(e.PC))
}

// ProgramSizeError reports a program that does not fit between ProgramStart
// and the end of memory.
type ProgramSizeError struct {
	Size int
}

func (e *ProgramSizeError) Error() string {
	return fmt.Sprintf("program size %d exceeds maximum of %d bytes", e.Size, MaxProgramSize)
}

// KeyIndexError reports a SetKey call with an index outside the hex keypad.
type KeyIndexError struct {
	Index int
}

func (e *KeyIndexError) Error() string {
	return fmt.Sprintf("key index %d outside keypad range 0x0-0xF", e.Index)
}
