package disasm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/retroenv/nesdisasm/internal/label"
	"github.com/retroenv/nesdisasm/internal/options"
	"github.com/retroenv/nesdisasm/internal/program"
	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testDisasm(t *testing.T, code []byte, opts options.Disassembler) *Disasm {
	t.Helper()

	cart := cartridge.New()
	cart.PRG[0x7FFC] = 0x00
	cart.PRG[0x7FFD] = 0x80
	copy(cart.PRG, code)

	dis, err := New(log.NewTestLogger(t), cart, opts)
	assert.NoError(t, err)
	return dis
}

// decodeOne decodes a single instruction at address 0x8000.
func decodeOne(t *testing.T, code []byte, opts options.Disassembler) (*program.Offset, bool) {
	t.Helper()

	dis := testDisasm(t, code, opts)
	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0x8000, offsetInfo)
	assert.NoError(t, err)
	return offsetInfo, terminates
}

// TestDecodeTotality decodes every possible opcode byte. Decoding never
// fails hard, every byte either resolves to exactly one addressing mode
// handler or to a diagnostic data byte, and the decoded data always matches
// the reported instruction length.
func TestDecodeTotality(t *testing.T) {
	for b := range 256 {
		opcodeByte := byte(b)
		t.Run(fmt.Sprintf("opcode 0x%02X", opcodeByte), func(t *testing.T) {
			offsetInfo, terminates := decodeOne(t, []byte{opcodeByte, 0x12, 0x0F}, options.Disassembler{})

			assert.True(t, offsetInfo.Code != "")

			opcode := m6502.Opcodes[opcodeByte]
			if opcode.Instruction == nil || opcode.Instruction.Unofficial {
				assert.True(t, offsetInfo.IsType(program.DataOffset))
				assert.True(t, terminates)
				assert.Len(t, offsetInfo.Data, 1)
				return
			}

			assert.Len(t, offsetInfo.Data, opcodeLength(opcode.Addressing))

			_, wantTerminates := m6502.NotExecutingFollowingOpcodeInstructions[opcode.Instruction.Name]
			assert.Equal(t, wantTerminates, terminates)
		})
	}
}

// TestDecodeTotalityUnofficial verifies that enabling unofficial opcodes
// extends the supported set without breaking length consistency.
func TestDecodeTotalityUnofficial(t *testing.T) {
	for b := range 256 {
		opcodeByte := byte(b)
		opcode := m6502.Opcodes[opcodeByte]
		if opcode.Instruction == nil || !opcode.Instruction.Unofficial {
			continue
		}

		t.Run(fmt.Sprintf("opcode 0x%02X", opcodeByte), func(t *testing.T) {
			offsetInfo, _ := decodeOne(t, []byte{opcodeByte, 0x12, 0x0F},
				options.Disassembler{Unofficial: true})

			assert.False(t, offsetInfo.IsType(program.DataOffset))
			assert.Len(t, offsetInfo.Data, opcodeLength(opcode.Addressing))
		})
	}
}

// TestDecodeOperandRendering verifies the rendered operand of the parameter
// converter for the addressing modes that are not replaced by labels.
func TestDecodeOperandRendering(t *testing.T) {
	tests := []struct {
		Name     string
		Input    []byte
		Expected string
	}{
		{Name: "immediate", Input: []byte{0xA9, 0x12, 0x00}, Expected: "LDA #$12"},
		{Name: "absolute", Input: []byte{0xAD, 0x8B, 0x78}, Expected: "LDA $788B"},
		{Name: "absolute indexed", Input: []byte{0xBD, 0x34, 0x12}, Expected: "LDA $1234,X"},
		{Name: "zero page", Input: []byte{0xA5, 0x12, 0x00}, Expected: "LDA $12"},
		{Name: "indirect", Input: []byte{0x6C, 0x00, 0x03}, Expected: "JMP ($0300)"},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			offsetInfo, _ := decodeOne(t, test.Input, options.Disassembler{})
			assert.Equal(t, test.Expected, offsetInfo.Code)
		})
	}
}

func TestDecodeImmediate(t *testing.T) {
	offsetInfo, terminates := decodeOne(t, []byte{0x69, 0x12, 0x00}, options.Disassembler{})

	assert.Equal(t, "ADC #$12", offsetInfo.Code)
	assert.Len(t, offsetInfo.Data, 2)
	assert.False(t, terminates)
}

func TestDecodeJumpToSelf(t *testing.T) {
	dis := testDisasm(t, []byte{0x4C, 0x00, 0x80}, options.Disassembler{})

	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0x8000, offsetInfo)
	assert.NoError(t, err)

	assert.True(t, terminates)
	name, ok := dis.labels.Lookup(label.JumpTarget, 0x8000)
	assert.True(t, ok)
	assert.Equal(t, fmt.Sprintf("JMP %s", name), offsetInfo.Code)
}

func TestDecodeBranchDisplacement(t *testing.T) {
	dis := testDisasm(t, []byte{0x90, 0x02, 0x00}, options.Disassembler{})

	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0x8000, offsetInfo)
	assert.NoError(t, err)
	assert.False(t, terminates)

	// displacement is relative to the address following the branch instruction
	name, ok := dis.labels.Lookup(label.BranchTarget, 0x8004)
	assert.True(t, ok)
	assert.True(t, strings.Contains(offsetInfo.Code, name))
}

func TestDecodeBranchBackwards(t *testing.T) {
	dis := testDisasm(t, []byte{0xEA, 0xD0, 0xFD}, options.Disassembler{})

	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0x8001, offsetInfo)
	assert.NoError(t, err)
	assert.False(t, terminates)

	// 0x8001 + 2 - 3 = 0x8000
	_, ok := dis.labels.Lookup(label.BranchTarget, 0x8000)
	assert.True(t, ok)
}

func TestDecodeSubroutineCall(t *testing.T) {
	dis := testDisasm(t, []byte{0x20, 0x00, 0x90}, options.Disassembler{})

	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0x8000, offsetInfo)
	assert.NoError(t, err)

	// execution resumes after the call
	assert.False(t, terminates)

	name, ok := dis.labels.Lookup(label.Subroutine, 0x9000)
	assert.True(t, ok)
	assert.Equal(t, fmt.Sprintf("JSR %s", name), offsetInfo.Code)
}

func TestDecodeIndirectJump(t *testing.T) {
	offsetInfo, terminates := decodeOne(t, []byte{0x6C, 0x00, 0x03}, options.Disassembler{})

	// the indirection is not resolved, no label is created
	assert.Equal(t, "JMP ($0300)", offsetInfo.Code)
	assert.True(t, terminates)
}

func TestDecodeUnsupportedOpcode(t *testing.T) {
	offsetInfo, terminates := decodeOne(t, []byte{0x02, 0x00, 0x00}, options.Disassembler{})

	assert.True(t, terminates)
	assert.True(t, offsetInfo.IsType(program.DataOffset))
	assert.Equal(t, ".byte $02", offsetInfo.Code)
	assert.Equal(t, "unsupported opcode", offsetInfo.Comment)
	assert.Len(t, offsetInfo.Data, 1)
}

func TestDecodeVectorOverlap(t *testing.T) {
	dis := testDisasm(t, nil, options.Disassembler{})

	// a 3 byte instruction at 0xFFF9 would overlap the vector table at 0xFFFA
	dis.cart.PRG[0x7FF9] = 0x4C

	offsetInfo := &program.Offset{}
	terminates, err := dis.processInstruction(0xFFF9, offsetInfo)
	assert.NoError(t, err)

	assert.True(t, terminates)
	assert.True(t, offsetInfo.IsType(program.DataOffset))
	assert.Len(t, offsetInfo.Data, 1)
}

func TestOpcodeLength(t *testing.T) {
	assert.Equal(t, 1, opcodeLength(m6502.ImpliedAddressing))
	assert.Equal(t, 1, opcodeLength(m6502.AccumulatorAddressing))
	assert.Equal(t, 2, opcodeLength(m6502.ImmediateAddressing))
	assert.Equal(t, 2, opcodeLength(m6502.ZeroPageXAddressing))
	assert.Equal(t, 2, opcodeLength(m6502.RelativeAddressing))
	assert.Equal(t, 2, opcodeLength(m6502.IndirectYAddressing))
	assert.Equal(t, 3, opcodeLength(m6502.AbsoluteAddressing))
	assert.Equal(t, 3, opcodeLength(m6502.IndirectAddressing))
}
