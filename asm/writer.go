package asm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/cpcgfx/palette"
)

const (
	fallbackNote = "; note: colours not in the palette were snapped to the nearest ink"

	beginMarker = ";------ BEGIN IMAGE --------"
	endMarker   = ";------ END IMAGE --------"

	defaultColumns = 16
)

type indexEntry struct {
	label, source string
	skipped       bool
}

// Writer assembles blocks into assembler source.
type Writer struct {
	w     *bufio.Writer
	index []indexEntry

	// Hex writes values as &FF instead of decimal
	Hex bool
}

// NewWriter returns a Writer that writes to w. The mode is recorded in a
// comment at the top.
func NewWriter(w io.Writer, mode palette.Mode) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "; %s\n\n", mode); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

func (w *Writer) value(b byte) string {
	if w.Hex {
		return fmt.Sprintf("&%02X", b)
	}
	return fmt.Sprintf("%d", b)
}

func (w *Writer) row(b []byte) error {
	values := make([]string, len(b))
	for i, v := range b {
		values[i] = w.value(v)
	}
	_, err := fmt.Fprintf(w.w, "  db %s\n", strings.Join(values, ", "))
	return err
}

// WriteBlock writes a single block. The label is upper-cased and the data
// split into db lines of columns values each, after the first Header bytes
// which each get a line of their own. The INK assignments are written as
// comments so they do not assemble to anything.
func (w *Writer) WriteBlock(b *Block, columns int) error {
	if columns <= 0 {
		columns = defaultColumns
	}
	label := strings.ToUpper(b.Label)

	if b.Fallback {
		if _, err := fmt.Fprintln(w.w, fallbackNote); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w.w, "%s:\n%s\n", label, beginMarker); err != nil {
		return err
	}

	data := b.Data
	for i := 0; i < b.Header && len(data) > 0; i++ {
		if err := w.row(data[:1]); err != nil {
			return err
		}
		data = data[1:]
	}
	for len(data) > 0 {
		n := columns
		if n > len(data) {
			n = len(data)
		}
		if err := w.row(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}

	if _, err := fmt.Fprintln(w.w, endMarker); err != nil {
		return err
	}

	if len(b.Inks) > 0 {
		if _, err := fmt.Fprintln(w.w, "  ; PEN -> INK"); err != nil {
			return err
		}
		for _, pen := range b.Inks.Pens() {
			if _, err := fmt.Fprintf(w.w, "  ; INK %d,%d\n", pen, b.Inks[pen]); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w.w); err != nil {
		return err
	}

	w.index = append(w.index, indexEntry{label: label, source: b.Source})

	return nil
}

// Skip lists source in the index under label without writing a block, for
// an input that could not be converted.
func (w *Writer) Skip(label, source string) {
	w.index = append(w.index, indexEntry{label: strings.ToUpper(label), source: source, skipped: true})
}

// Close writes the label index and flushes any buffered output. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if len(w.index) > 0 {
		if _, err := fmt.Fprintln(w.w, "; --- label index ---"); err != nil {
			return err
		}
		for _, e := range w.index {
			var err error
			switch {
			case e.source == "":
				continue
			case e.skipped:
				_, err = fmt.Fprintf(w.w, "; %s = %s (skipped)\n", e.label, e.source)
			default:
				_, err = fmt.Fprintf(w.w, "; %s = %s\n", e.label, e.source)
			}
			if err != nil {
				return err
			}
		}
	}
	return w.w.Flush()
}

// Assemble renders the blocks, in order, as assembler source.
func Assemble(blocks []Block, mode palette.Mode, columns int) (string, error) {
	var sb strings.Builder
	w, err := NewWriter(&sb, mode)
	if err != nil {
		return "", err
	}
	for i := range blocks {
		if err := w.WriteBlock(&blocks[i], columns); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
