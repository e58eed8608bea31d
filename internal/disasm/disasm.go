// Package disasm implements a tracing disassembler for NES ROMs.
package disasm

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/retroenv/nesdisasm/internal/consts"
	"github.com/retroenv/nesdisasm/internal/label"
	"github.com/retroenv/nesdisasm/internal/options"
	"github.com/retroenv/nesdisasm/internal/program"
	"github.com/retroenv/nesdisasm/internal/writer"
	"github.com/retroenv/retrogolib/arch/system/nes"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
	"github.com/retroenv/retrogolib/arch/system/nes/parameter"
	"github.com/retroenv/retrogolib/log"
)

// Disasm implements a NES disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	pc uint16 // program counter

	cart      *cartridge.Cartridge
	converter parameter.Converter
	registers *consts.Registers
	labels    *label.Allocator

	codeBaseAddress     uint16 // codebase address of the cartridge, it is not always 0x8000
	vectorsStartAddress uint16
	handlers            program.Handlers

	offsets []program.Offset // one entry per PRG byte

	offsetsToParse      []uint16
	offsetsToParseAdded map[uint16]struct{}
}

// New creates a new disassembler for the cartridge. Only mapper 0 (NROM)
// cartridges are supported, any other mapper uses bank switching that would
// make the address translation of this disassembler incorrect.
func New(logger *log.Logger, cart *cartridge.Cartridge, opts options.Disassembler) (*Disasm, error) {
	if cart.Mapper != 0 {
		return nil, fmt.Errorf("unsupported mapper %d, only mapper 0 (NROM) is supported", cart.Mapper)
	}
	if len(cart.PRG) == 0 {
		return nil, fmt.Errorf("cartridge contains no PRG ROM")
	}

	dis := &Disasm{
		logger:              logger,
		options:             opts,
		cart:                cart,
		converter:           parameter.New(parameter.Config{}),
		labels:              label.NewAllocator(),
		offsets:             make([]program.Offset, len(cart.PRG)),
		offsetsToParseAdded: map[uint16]struct{}{},
	}

	var err error
	dis.registers, err = consts.New()
	if err != nil {
		return nil, fmt.Errorf("creating register constants: %w", err)
	}

	if err := dis.initializeVectors(); err != nil {
		return nil, fmt.Errorf("initializing vectors: %w", err)
	}
	return dis, nil
}

// Process disassembles the cartridge and writes the listing to the writer.
func (dis *Disasm) Process(ctx context.Context, mainWriter io.Writer) (*program.Program, error) {
	if err := dis.followExecutionFlow(ctx); err != nil {
		return nil, err
	}

	app := dis.convertToProgram()

	fileWriter := writer.New(app, mainWriter, writer.Options{
		CodeOnly:       dis.options.CodeOnly,
		HexComments:    dis.options.HexComments,
		OffsetComments: dis.options.OffsetComments,
	})
	if err := fileWriter.Write(); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}
	return app, nil
}

// CodeBaseAddress returns the code base address of the cartridge.
func (dis *Disasm) CodeBaseAddress() uint16 {
	return dis.codeBaseAddress
}

// ReadMemory reads a byte from the PRG ROM, handling the mirroring of small
// PRG ROMs into the upper address space window.
func (dis *Disasm) ReadMemory(address uint16) (byte, error) {
	if address < nes.CodeBaseAddress {
		return 0, fmt.Errorf("invalid read from address $%04X", address)
	}
	return dis.cart.PRG[dis.addressToIndex(address)], nil
}

// ReadMemoryWord reads a little endian word from the PRG ROM.
func (dis *Disasm) ReadMemoryWord(address uint16) (uint16, error) {
	b, err := dis.ReadMemory(address)
	if err != nil {
		return 0, err
	}
	low := uint16(b)

	b, err = dis.ReadMemory(address + 1)
	if err != nil {
		return 0, err
	}

	high := uint16(b)
	return high<<8 | low, nil
}

// addressToIndex converts a mapped address to a PRG ROM content offset.
// The modulo handles mirrored PRG ROMs smaller than the address window.
func (dis *Disasm) addressToIndex(address uint16) int {
	return int(address-dis.codeBaseAddress) % len(dis.offsets)
}

// addAddressToParse adds an address to the list to be processed if it has not
// been added yet. Addresses before the code base address are ignored, they
// point to RAM or hardware registers that hold no static code to trace.
func (dis *Disasm) addAddressToParse(address uint16) {
	if address < nes.CodeBaseAddress {
		return
	}
	if _, ok := dis.offsetsToParseAdded[address]; ok {
		return
	}
	dis.offsetsToParseAdded[address] = struct{}{}
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// addressToDisassemble returns the next address to disassemble, or false if
// there are no more addresses to parse.
func (dis *Disasm) addressToDisassemble() (uint16, bool) {
	if len(dis.offsetsToParse) == 0 {
		return 0, false
	}
	addr := dis.offsetsToParse[0]
	dis.offsetsToParse = dis.offsetsToParse[1:]
	return addr, true
}

// followExecutionFlow processes all entries of the worklist. Each entry starts
// a linear run of instructions that ends at an instruction that does not
// continue the execution flow or at an already disassembled address.
func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		address, ok := dis.addressToDisassemble()
		if !ok {
			return nil
		}

		dis.pc = address
		for {
			offsetInfo := &dis.offsets[dis.addressToIndex(dis.pc)]
			if offsetInfo.IsType(program.CodeOffset | program.DataOffset) {
				break // address already disassembled
			}

			terminates, err := dis.processInstruction(dis.pc, offsetInfo)
			if err != nil {
				return err
			}
			if terminates {
				break
			}
			dis.pc += uint16(len(offsetInfo.Data))
		}
	}
}

// converts the internal disassembly state to a program that the listing
// writer outputs.
func (dis *Disasm) convertToProgram() *program.Program {
	app := program.New(dis.offsets, dis.labels)
	app.CodeBaseAddress = dis.codeBaseAddress
	app.VectorsStartAddress = dis.vectorsStartAddress
	app.Handlers = dis.handlers

	crc32q := crc32.MakeTable(crc32.IEEE)
	app.Checksums.PRG = crc32.Checksum(dis.cart.PRG, crc32q)
	app.Checksums.CHR = crc32.Checksum(dis.cart.CHR, crc32q)
	app.Checksums.Overall = crc32.Checksum(append(dis.cart.PRG, dis.cart.CHR...), crc32q)

	return app
}
