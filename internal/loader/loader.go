// Package loader handles cartridge file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/nesdisasm/internal/options"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// Load loads and parses a cartridge file. In binary mode the file is read as
// a raw buffer without a header. The memory mapping precondition of the
// disassembler is enforced here, a cartridge using any mapper other than 0
// (NROM) is rejected as its address translation would be wrong.
func Load(opts options.Program) (*cartridge.Cartridge, error) {
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	var cart *cartridge.Cartridge
	if opts.Binary {
		cart, err = cartridge.LoadBuffer(file)
	} else {
		cart, err = cartridge.LoadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	if cart.Mapper != 0 {
		return nil, fmt.Errorf("unsupported mapper %d, only mapper 0 (NROM) is supported", cart.Mapper)
	}

	return cart, nil
}
