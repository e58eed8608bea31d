package disasm

import (
	"fmt"

	"github.com/retroenv/nesdisasm/internal/program"
	m6502 "github.com/retroenv/retrogolib/arch/cpu/cpu6502"
	"github.com/retroenv/retrogolib/arch/system/nes"
	"github.com/retroenv/retrogolib/log"
)

// initializeVectors reads the 3 interrupt handler addresses from the vector
// table and adds them to the addresses to be followed for execution flow.
// Multiple handlers can point to the same address.
func (dis *Disasm) initializeVectors() error {
	dis.calculateCodeBaseAddress()

	handlers := program.Handlers{
		NMI:   "0",
		Reset: "Reset",
		IRQ:   "0",
	}

	var reset uint16
	var err error
	if dis.options.Binary {
		reset = nes.CodeBaseAddress
	} else {
		reset, err = dis.ReadMemoryWord(m6502.ResetAddress)
		if err != nil {
			return fmt.Errorf("reading reset vector: %w", err)
		}
	}
	dis.adjustCodeBaseAddress(reset)

	if reset < nes.CodeBaseAddress {
		return fmt.Errorf("invalid reset vector $%04X", reset)
	}
	dis.logger.Debug("Reset handler", log.String("address", fmt.Sprintf("0x%04X", reset)))
	dis.offsets[dis.addressToIndex(reset)].Label = "Reset"
	dis.addAddressToParse(reset)

	var nmi, irq uint16
	if !dis.options.Binary {
		nmi, err = dis.ReadMemoryWord(m6502.NMIAddress)
		if err != nil {
			return fmt.Errorf("reading NMI vector: %w", err)
		}
		irq, err = dis.ReadMemoryWord(m6502.IrqAddress)
		if err != nil {
			return fmt.Errorf("reading IRQ vector: %w", err)
		}
	}

	if nmi >= nes.CodeBaseAddress {
		dis.logger.Debug("NMI handler", log.String("address", fmt.Sprintf("0x%04X", nmi)))
		offsetInfo := &dis.offsets[dis.addressToIndex(nmi)]
		if offsetInfo.Label == "" {
			offsetInfo.Label = "NMI"
			handlers.NMI = "NMI"
		} else {
			handlers.NMI = offsetInfo.Label
		}
		dis.addAddressToParse(nmi)
	}

	if irq >= nes.CodeBaseAddress {
		dis.logger.Debug("IRQ handler", log.String("address", fmt.Sprintf("0x%04X", irq)))
		offsetInfo := &dis.offsets[dis.addressToIndex(irq)]
		if offsetInfo.Label == "" {
			offsetInfo.Label = "IRQ"
			handlers.IRQ = "IRQ"
		} else {
			handlers.IRQ = offsetInfo.Label
		}
		dis.addAddressToParse(irq)
	}

	dis.handlers = handlers
	return nil
}

// calculateCodeBaseAddress calculates the code base address that is assumed
// by the code. A PRG ROM smaller than the 0x8000 byte window is mirrored into
// the window, the last mirror ends at the vector table.
func (dis *Disasm) calculateCodeBaseAddress() {
	halfPrg := len(dis.cart.PRG) % 0x8000
	dis.codeBaseAddress = uint16(0x8000 + halfPrg)
	dis.vectorsStartAddress = m6502.InterruptVectorStartAddress
}

// adjustCodeBaseAddress fixes up the calculated code base address for half
// sized PRG ROMs that are assembled for the lower mirror, indicated by a
// reset handler below the upper mirror start.
func (dis *Disasm) adjustCodeBaseAddress(resetHandler uint16) {
	halfPrg := len(dis.cart.PRG) % 0x8000
	if resetHandler >= nes.CodeBaseAddress && resetHandler < dis.codeBaseAddress {
		dis.codeBaseAddress = nes.CodeBaseAddress
		dis.vectorsStartAddress -= uint16(halfPrg)
	}

	dis.logger.Debug("Code base address",
		log.String("address", fmt.Sprintf("0x%04X", dis.codeBaseAddress)))
}
