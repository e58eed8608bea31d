// Package program represents the disassembled NES program.
package program

import (
	"github.com/retroenv/nesdisasm/internal/label"
)

// Offset defines the content of an address in the program.
type Offset struct {
	Address uint16 // mapped address of the offset
	Data    []byte // data byte or all opcode bytes that are part of the instruction

	Type OffsetType

	Label   string // name of an entry point handler at this address
	Code    string // asm output of this instruction
	Comment string
}

// Handlers defines the entry point handlers of the program.
type Handlers struct {
	NMI   string
	Reset string
	IRQ   string
}

// Checksums contains the CRC32 checksums to identify the PRG and CHR parts of the ROM.
type Checksums struct {
	PRG     uint32
	CHR     uint32
	Overall uint32
}

// Program defines a disassembled NES program.
type Program struct {
	Offsets []Offset // one offset per PRG byte
	Labels  *label.Allocator

	CodeBaseAddress     uint16
	VectorsStartAddress uint16

	Checksums Checksums
	Handlers  Handlers
}

// New creates a new program from the disassembled offsets.
func New(offsets []Offset, labels *label.Allocator) *Program {
	return &Program{
		Offsets: offsets,
		Labels:  labels,
	}
}

// OffsetInfo returns the offset of the mapped address, or nil if the address
// is outside of the mapped PRG ROM range.
func (p *Program) OffsetInfo(address uint16) *Offset {
	if address < p.CodeBaseAddress {
		return nil
	}
	index := int(address - p.CodeBaseAddress)
	if index >= len(p.Offsets) {
		return nil
	}
	return &p.Offsets[index]
}
