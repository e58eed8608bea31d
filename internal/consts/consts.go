// Package consts maps well-known NES hardware register addresses to their names.
package consts

import (
	"fmt"
	"strings"

	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes/register"
)

// Constant describes a hardware register address. Some registers have
// different names depending on whether they are read or written.
type Constant struct {
	Address uint16

	Read  string
	Write string
}

// Registers maps hardware register addresses to their symbolic names.
type Registers struct {
	constants map[uint16]Constant
}

// New builds the map of all known NES hardware registers from the PPU, APU
// and controller register tables.
func New() (*Registers, error) {
	m := map[uint16]Constant{}
	if err := mergeConstants(m, register.APUAddressToName); err != nil {
		return nil, fmt.Errorf("processing apu constants: %w", err)
	}
	if err := mergeConstants(m, register.ControllerAddressToName); err != nil {
		return nil, fmt.Errorf("processing controller constants: %w", err)
	}
	if err := mergeConstants(m, register.PPUAddressToName); err != nil {
		return nil, fmt.Errorf("processing ppu constants: %w", err)
	}

	return &Registers{constants: m}, nil
}

// ReplaceParameter replaces the address part of an absolute operand by the
// register name if the address is a known hardware register. The access
// direction of the opcode selects between the read and write name of the
// register. Index suffixes of the operand are kept.
func (r *Registers) ReplaceParameter(address uint16, opcode m6502.Opcode, param string) (string, bool) {
	constantInfo, ok := r.constants[address]
	if !ok {
		return param, false
	}

	name := ""
	switch {
	case opcode.WritesMemory(m6502.MemoryWriteInstructions) && constantInfo.Write != "":
		name = constantInfo.Write
	case opcode.ReadsMemory(m6502.MemoryReadInstructions) && constantInfo.Read != "":
		name = constantInfo.Read
	case constantInfo.Read != "":
		name = constantInfo.Read
	default:
		name = constantInfo.Write
	}
	if name == "" {
		return param, false
	}

	// only the address part of an indexed operand gets replaced
	paramParts := strings.Split(param, ",")
	paramParts[0] = name
	return strings.Join(paramParts, ","), true
}

func mergeConstants(destination map[uint16]Constant, source map[uint16]m6502.AccessModeConstant) error {
	for address, constantInfo := range source {
		translation := destination[address]
		translation.Address = address

		if constantInfo.Mode&m6502.ReadAccess != 0 {
			if translation.Read != "" {
				return fmt.Errorf("constant with address 0x%04X and read mode is defined twice", address)
			}
			translation.Read = constantInfo.Constant
		}

		if constantInfo.Mode&m6502.WriteAccess != 0 {
			if translation.Write != "" {
				return fmt.Errorf("constant with address 0x%04X and write mode is defined twice", address)
			}
			translation.Write = constantInfo.Constant
		}

		destination[address] = translation
	}
	return nil
}
