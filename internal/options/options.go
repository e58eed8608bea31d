// Package options contains the program options.
package options

// Program options of the disassembler.
type Program struct {
	Input  string // name of the file to disassemble
	Output string // name of the output file, stdout if empty
	Batch  string // file mask to process multiple files

	Binary     bool // read the input as a raw binary without a header
	Unofficial bool // disassemble unofficial opcodes instead of stopping at them
	Debug      bool // enable debug logging
	Quiet      bool // perform operations quietly

	NoHexComments bool // do not output the instruction bytes in comments
	NoOffsets     bool // do not output the instruction addresses in comments
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	Binary     bool // input has no header, treat the whole file as PRG
	CodeOnly   bool // do not output the comment header
	Unofficial bool // support unofficial opcodes

	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output instruction addresses in comments
}

// NewDisassembler returns disassembler options derived from the program options.
func NewDisassembler(opts Program) Disassembler {
	return Disassembler{
		Binary:         opts.Binary,
		Unofficial:     opts.Unofficial,
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
	}
}
