package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/nesdisasm/internal/label"
	"github.com/retroenv/nesdisasm/internal/program"
	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes/parameter"
	"github.com/retroenv/retrogolib/log"
)

// processInstruction disassembles a single instruction at the address and
// returns whether the instruction terminates the current run. An opcode
// outside of the supported set is not fatal, it is output as a data byte with
// a diagnostic comment and only terminates the current run.
func (dis *Disasm) processInstruction(address uint16, offsetInfo *program.Offset) (bool, error) {
	offsetInfo.Address = address

	b, err := dis.ReadMemory(address)
	if err != nil {
		return false, err
	}
	offsetInfo.Data = make([]byte, 1, m6502.MaxOpcodeSize)
	offsetInfo.Data[0] = b

	opcode := m6502.Opcodes[b]
	if opcode.Instruction == nil || (opcode.Instruction.Unofficial && !dis.options.Unofficial) {
		dis.logger.Debug("Unsupported opcode",
			log.String("address", fmt.Sprintf("0x%04X", address)),
			log.String("opcode", fmt.Sprintf("0x%02X", b)))

		dis.markAsData(offsetInfo, "unsupported opcode")
		return true, nil
	}

	if int(address)+opcodeLength(opcode.Addressing) > int(m6502.InterruptVectorStartAddress) {
		dis.markAsData(offsetInfo, "instruction overlaps the interrupt vectors")
		return true, nil
	}

	name := strings.ToUpper(opcode.Instruction.Name)
	if opcode.Addressing == m6502.ImpliedAddressing || opcode.Addressing == m6502.AccumulatorAddressing {
		offsetInfo.Code = name
	} else {
		params, err := dis.processParamInstruction(address, opcode, offsetInfo)
		if err != nil {
			return false, err
		}
		offsetInfo.Code = fmt.Sprintf("%s %s", name, params)
	}

	dis.changeAddressRangeToCode(address, offsetInfo.Data)

	_, terminates := m6502.NotExecutingFollowingOpcodeInstructions[opcode.Instruction.Name]
	return terminates, nil
}

// processParamInstruction reads the parameters of an instruction and renders
// them. Control flow destinations are turned into labels of the role matching
// the instruction type and are added to the worklist for later exploration.
func (dis *Disasm) processParamInstruction(address uint16, opcode m6502.Opcode,
	offsetInfo *program.Offset) (string, error) {

	param, opcodes, err := dis.readOpParam(opcode.Addressing, address)
	if err != nil {
		return "", err
	}
	offsetInfo.Data = append(offsetInfo.Data, opcodes...)

	name := opcode.Instruction.Name
	switch {
	case opcode.Addressing == m6502.RelativeAddressing:
		destination := uint16(param.(m6502.Absolute))
		dis.addAddressToParse(destination)
		return dis.labels.Request(label.BranchTarget, destination), nil

	case name == m6502.JsrInst.Name:
		destination := uint16(param.(m6502.Absolute))
		dis.addAddressToParse(destination)
		return dis.labels.Request(label.Subroutine, destination), nil

	case name == m6502.JmpInst.Name && opcode.Addressing == m6502.AbsoluteAddressing:
		destination := uint16(param.(m6502.Absolute))
		dis.addAddressToParse(destination)
		return dis.labels.Request(label.JumpTarget, destination), nil
	}

	paramAsString, err := parameter.String(dis.converter, opcode.Addressing, param)
	if err != nil {
		return "", fmt.Errorf("getting parameter as string: %w", err)
	}

	if addressReference, ok := absoluteParamAddress(param); ok {
		paramAsString, _ = dis.registers.ReplaceParameter(addressReference, opcode, paramAsString)
	}
	return paramAsString, nil
}

// markAsData marks an offset that can not be disassembled as a data byte with
// a diagnostic comment. The cursor of the caller still advances safely as the
// data consumes exactly one byte.
func (dis *Disasm) markAsData(offsetInfo *program.Offset, comment string) {
	offsetInfo.Code = fmt.Sprintf(".byte $%02x", offsetInfo.Data[0])
	offsetInfo.Comment = comment
	offsetInfo.SetType(program.DataOffset)
}

// changeAddressRangeToCode sets all bytes of an instruction to the code type,
// this prevents the bytes from being disassembled again as instruction starts.
func (dis *Disasm) changeAddressRangeToCode(address uint16, data []byte) {
	for i := range data {
		offsetInfo := &dis.offsets[dis.addressToIndex(address+uint16(i))]
		offsetInfo.SetType(program.CodeOffset)
	}
}
