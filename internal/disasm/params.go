package disasm

import (
	"fmt"

	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
)

type paramReaderFunc func(dis *Disasm, address uint16) (any, []byte, error)

var paramReader = map[m6502.AddressingMode]paramReaderFunc{
	m6502.ImmediateAddressing: paramReaderImmediate,
	m6502.AbsoluteAddressing:  paramReaderAbsolute,
	m6502.AbsoluteXAddressing: paramReaderAbsoluteX,
	m6502.AbsoluteYAddressing: paramReaderAbsoluteY,
	m6502.ZeroPageAddressing:  paramReaderZeroPage,
	m6502.ZeroPageXAddressing: paramReaderZeroPageX,
	m6502.ZeroPageYAddressing: paramReaderZeroPageY,
	m6502.RelativeAddressing:  paramReaderRelative,
	m6502.IndirectAddressing:  paramReaderIndirect,
	m6502.IndirectXAddressing: paramReaderIndirectX,
	m6502.IndirectYAddressing: paramReaderIndirectY,
}

// readOpParam reads the opcode parameter bytes after the first opcode byte.
func (dis *Disasm) readOpParam(addressing m6502.AddressingMode, address uint16) (any, []byte, error) {
	fun, ok := paramReader[addressing]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported addressing mode %d", addressing)
	}
	return fun(dis, address)
}

// opcodeLength returns the instruction length in bytes for the addressing mode.
func opcodeLength(addressing m6502.AddressingMode) int {
	switch addressing {
	case m6502.AbsoluteAddressing, m6502.AbsoluteXAddressing, m6502.AbsoluteYAddressing,
		m6502.IndirectAddressing:
		return 3

	case m6502.ImpliedAddressing, m6502.AccumulatorAddressing:
		return 1

	default: // immediate, zero page, relative, indexed indirect
		return 2
	}
}

// absoluteParamAddress returns the referenced address of absolute mode
// operands, the only modes that can reference hardware registers directly.
func absoluteParamAddress(param any) (uint16, bool) {
	switch val := param.(type) {
	case m6502.Absolute:
		return uint16(val), true
	case m6502.AbsoluteX:
		return uint16(val), true
	case m6502.AbsoluteY:
		return uint16(val), true
	default:
		return 0, false
	}
}

func paramReaderImmediate(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return int(b), opcodes, nil
}

func paramReaderAbsolute(dis *Disasm, address uint16) (any, []byte, error) {
	w, opcodes, err := paramReadWord(dis, address)
	if err != nil {
		return nil, nil, err
	}
	return m6502.Absolute(w), opcodes, nil
}

func paramReaderAbsoluteX(dis *Disasm, address uint16) (any, []byte, error) {
	w, opcodes, err := paramReadWord(dis, address)
	if err != nil {
		return nil, nil, err
	}
	return m6502.AbsoluteX(w), opcodes, nil
}

func paramReaderAbsoluteY(dis *Disasm, address uint16) (any, []byte, error) {
	w, opcodes, err := paramReadWord(dis, address)
	if err != nil {
		return nil, nil, err
	}
	return m6502.AbsoluteY(w), opcodes, nil
}

func paramReaderZeroPage(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return m6502.ZeroPage(b), opcodes, nil
}

func paramReaderZeroPageX(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return m6502.ZeroPageX(b), opcodes, nil
}

func paramReaderZeroPageY(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return m6502.ZeroPageY(b), opcodes, nil
}

// paramReaderRelative converts the signed 8 bit displacement of a branch
// instruction into the absolute destination address. The displacement is
// relative to the address following the branch instruction and wraps around
// in the 16 bit address space.
func paramReaderRelative(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}

	offset := uint16(b)
	if offset < 0x80 {
		address += 2 + offset
	} else {
		address += 2 + offset - 0x100
	}

	opcodes := []byte{b}
	return m6502.Absolute(address), opcodes, nil
}

func paramReaderIndirect(dis *Disasm, address uint16) (any, []byte, error) {
	// the indirection is not resolved, the pointer content is unknown statically
	w, opcodes, err := paramReadWord(dis, address)
	if err != nil {
		return nil, nil, err
	}
	return m6502.Indirect(w), opcodes, nil
}

func paramReaderIndirectX(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return m6502.IndirectX(b), opcodes, nil
}

func paramReaderIndirectY(dis *Disasm, address uint16) (any, []byte, error) {
	b, err := dis.ReadMemory(address + 1)
	if err != nil {
		return nil, nil, err
	}
	opcodes := []byte{b}
	return m6502.IndirectY(b), opcodes, nil
}

func paramReadWord(dis *Disasm, address uint16) (uint16, []byte, error) {
	b1, err := dis.ReadMemory(address + 1)
	if err != nil {
		return 0, nil, err
	}
	b2, err := dis.ReadMemory(address + 2)
	if err != nil {
		return 0, nil, err
	}
	w := uint16(b2)<<8 | uint16(b1)
	opcodes := []byte{b1, b2}
	return w, opcodes, nil
}
