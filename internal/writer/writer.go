// Package writer implements the listing output of the disassembler.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/nesdisasm/internal/label"
	"github.com/retroenv/nesdisasm/internal/program"
)

// Writer writes the disassembled program as a text listing, merging label
// declarations and instructions in address order.
type Writer struct {
	app     *program.Program
	options Options
	writer  io.Writer

	linesWritten bool
}

// Options of the writer.
type Options struct {
	CodeOnly       bool // do not output the comment header
	HexComments    bool // output the instruction bytes in comments
	OffsetComments bool // output the instruction addresses in comments
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer, options Options) *Writer {
	return &Writer{
		app:     app,
		options: options,
		writer:  writer,
	}
}

// Write writes the listing. Every address of the mapped address space is
// visited once, label declarations of all roles are printed before the
// instruction at the address and the bytes of an instruction are skipped
// instead of being examined again.
func (w *Writer) Write() error {
	if !w.options.CodeOnly {
		if err := w.writeCommentHeader(); err != nil {
			return err
		}
	}

	vectorsWritten := false
	for address := 0; address < 0x10000; {
		addr := uint16(address)

		if !w.options.CodeOnly && !vectorsWritten &&
			w.app.VectorsStartAddress != 0 && addr >= w.app.VectorsStartAddress {

			if err := w.writeVectors(); err != nil {
				return err
			}
			vectorsWritten = true
		}

		if err := w.writeLabels(addr); err != nil {
			return err
		}

		offsetInfo := w.app.OffsetInfo(addr)
		if offsetInfo == nil || offsetInfo.Code == "" {
			address++
			continue
		}

		if err := w.writeCodeLine(offsetInfo); err != nil {
			return err
		}
		address += len(offsetInfo.Data)
	}
	return nil
}

// writeCommentHeader writes the CRC32 checksums and code base address as
// comments to the output.
func (w *Writer) writeCommentHeader() error {
	if _, err := fmt.Fprintf(w.writer, "; PRG CRC32 checksum: %08x\n", w.app.Checksums.PRG); err != nil {
		return fmt.Errorf("writing prg checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; CHR CRC32 checksum: %08x\n", w.app.Checksums.CHR); err != nil {
		return fmt.Errorf("writing chr checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Overall CRC32 checksum: %08x\n", w.app.Checksums.Overall); err != nil {
		return fmt.Errorf("writing overall checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Code base address: $%04x\n", w.app.CodeBaseAddress); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	w.linesWritten = true
	return nil
}

// writeVectors writes the interrupt vector table with the names of the entry
// point handlers, unset handlers print as 0.
func (w *Writer) writeVectors() error {
	if w.linesWritten {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}

	handlers := w.app.Handlers
	if _, err := fmt.Fprintf(w.writer, ".addr %s, %s, %s\n",
		handlers.NMI, handlers.Reset, handlers.IRQ); err != nil {

		return fmt.Errorf("writing vectors: %w", err)
	}
	w.linesWritten = true
	return nil
}

// writeLabels writes the declarations of all labels registered at the
// address, the entry point handler name first, then one line per role.
func (w *Writer) writeLabels(address uint16) error {
	var names []string

	if offsetInfo := w.app.OffsetInfo(address); offsetInfo != nil && offsetInfo.Label != "" {
		names = append(names, offsetInfo.Label)
	}
	for _, role := range label.Roles {
		if name, ok := w.app.Labels.Lookup(role, address); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	// print an empty line to separate the label block from the previous code
	if w.linesWritten {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w.writer, "%s:\n", name); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}
	}
	w.linesWritten = true
	return nil
}

func (w *Writer) writeCodeLine(offsetInfo *program.Offset) error {
	// data bytes of failed decodes are written as unindented directives
	indent := "  "
	if offsetInfo.IsType(program.DataOffset) {
		indent = ""
	}

	comment := w.lineComment(offsetInfo)

	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "%s%s\n", indent, offsetInfo.Code)
	} else {
		_, err = fmt.Fprintf(w.writer, "%s%-30s ; %s\n", indent, offsetInfo.Code, comment)
	}
	if err != nil {
		return fmt.Errorf("writing code line: %w", err)
	}
	w.linesWritten = true
	return nil
}

// lineComment builds the comment of a code line from the instruction address,
// the hex dump of the consumed bytes and the diagnostic comment.
func (w *Writer) lineComment(offsetInfo *program.Offset) string {
	var parts []string

	if w.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", offsetInfo.Address))
	}
	if w.options.HexComments {
		hexBytes := make([]string, 0, len(offsetInfo.Data))
		for _, b := range offsetInfo.Data {
			hexBytes = append(hexBytes, fmt.Sprintf("%02X", b))
		}
		parts = append(parts, strings.Join(hexBytes, " "))
	}
	if offsetInfo.Comment != "" {
		parts = append(parts, offsetInfo.Comment)
	}

	return strings.Join(parts, " ")
}
