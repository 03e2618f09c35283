package cpcgfx

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/cpcgfx/asm"
	"github.com/bodgit/cpcgfx/palette"
	"github.com/bodgit/cpcgfx/screen"
)

var (
	errNoBlocks = errors.New("no labelled data found")
	errNoRows   = errors.New("no db lines to take rows from")
)

func (c *Converter) readAsm(file string) (*asm.File, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return asm.Parse(f, c.logger)
}

// Layout selects how the bytes of a block are arranged into rows.
type Layout int

const (
	// LayoutAuto reads a width and height header when the first two bytes
	// describe the data that follows, one image row per db line otherwise.
	LayoutAuto Layout = iota
	// LayoutHeader expects the width in bytes and the height first.
	LayoutHeader
	// LayoutLines takes every db line as an image row.
	LayoutLines
)

var layoutNames = [...]string{
	LayoutAuto:   "auto",
	LayoutHeader: "header",
	LayoutLines:  "lines",
}

func (l Layout) String() string {
	if l < 0 || int(l) >= len(layoutNames) {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return layoutNames[l]
}

// ParseLayout returns the layout called s.
func ParseLayout(s string) (Layout, error) {
	for i, name := range layoutNames {
		if strings.EqualFold(s, name) {
			return Layout(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q", s)
}

// hasHeader reports whether the first two bytes of b can be a width in bytes
// and a height that the rest of the data covers. A first line of two values
// followed by longer lines is a line layout with a short leading row.
func hasHeader(b *asm.Block) bool {
	if len(b.Data) < 2 || b.Data[0] == 0 || b.Data[1] == 0 {
		return false
	}
	if len(b.Data)-2 < int(b.Data[0])*int(b.Data[1]) {
		return false
	}
	return len(b.Rows) < 2 || b.Rows[0] != 2 || b.Rows[1] < 4
}

// pixels splits block data into screen bytes and a width in pixels.
func (c *Converter) pixels(b *asm.Block) ([]byte, int, error) {
	if c.opts.Width > 0 {
		return b.Data, c.opts.Width, nil
	}

	switch c.opts.Layout {
	case LayoutHeader:
		return c.header(b.Data)
	case LayoutLines:
		return c.lines(b)
	}

	if hasHeader(b) {
		return c.header(b.Data)
	}
	return c.lines(b)
}

func (c *Converter) header(data []byte) ([]byte, int, error) {
	if len(data) < 2 || data[0] == 0 || data[1] == 0 {
		return nil, 0, errNoHeader
	}
	wb, h := int(data[0]), int(data[1])
	data = data[2:]

	switch need := wb * h; {
	case len(data) < need:
		return nil, 0, &screen.MalformedDataError{Length: len(data), WidthBytes: wb, Height: h}
	case len(data) > need:
		c.logger.Printf("warning: %d bytes after %d rows of %d bytes ignored\n", len(data)-need, h, wb)
		data = data[:need]
	}

	return data, wb * c.opts.Mode.PixelsPerByte(), nil
}

// commonLength returns the most frequent row length, the longest of those on
// a tie, and how many rows have it.
func commonLength(rows [][]byte) (int, int) {
	counts := make(map[int]int)
	var length, n int
	for _, r := range rows {
		counts[len(r)]++
	}
	for l, count := range counts {
		if count > n || count == n && l > length {
			length, n = l, count
		}
	}
	return length, n
}

func (c *Converter) lines(b *asm.Block) ([]byte, int, error) {
	rows := make([][]byte, 0, len(b.Rows))
	data := b.Data
	for _, n := range b.Rows {
		if n > len(data) {
			break
		}
		rows = append(rows, data[:n])
		data = data[n:]
	}
	if len(rows) == 0 {
		return nil, 0, errNoRows
	}

	// A short first row is meta data when most of the others agree
	if len(rows) >= 3 {
		length, n := commonLength(rows[1:])
		quorum := (len(rows) - 1) / 2
		if quorum < 2 {
			quorum = 2
		}
		if len(rows[0]) < length && n >= quorum {
			rows = rows[1:]
		}
	}

	wb, _ := commonLength(rows)
	out := make([]byte, 0, wb*len(rows))
	var uneven int
	for _, r := range rows {
		if len(r) != wb {
			uneven++
		}
		row := make([]byte, wb)
		copy(row, r)
		out = append(out, row...)
	}
	if uneven > 0 {
		c.logger.Printf("warning: %d of %d rows are not %d bytes wide, padded or cut\n", uneven, len(rows), wb)
	}

	return out, wb * c.opts.Mode.PixelsPerByte(), nil
}

func (c *Converter) decodeBlock(b *asm.Block, inks palette.Inks, r *Result) error {
	if b.Err != nil {
		return b.Err
	}

	data, width, err := c.pixels(b)
	if err != nil {
		return err
	}

	m, err := screen.Unpack(data, c.opts.Mode, width)
	if err != nil {
		return err
	}

	p, unmapped := inks.Merge(b.Inks).Palette(c.opts.Mode, c.opts.Background)
	m.Palette = p

	used := usedPens(m)
	var missing []string
	for _, pen := range unmapped {
		if used[pen] {
			missing = append(missing, fmt.Sprint(pen))
		}
	}
	if len(missing) > 0 && c.opts.Background == palette.NoIndex {
		c.logger.Printf("warning: %s: no INK for pens %s, using the firmware default inks\n", b.Label, strings.Join(missing, ", "))
	}

	if err := os.MkdirAll(filepath.Dir(r.Output), 0755); err != nil {
		return err
	}

	f, err := os.Create(r.Output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, m); err != nil {
		return err
	}

	r.Width, r.Height = m.Bounds().Dx(), m.Bounds().Dy()
	r.Bytes = len(data)
	for pen := range p {
		if used[pen] {
			r.Colors++
		}
	}

	return f.Close()
}

// DecodeFile converts one block of the assembler file in to the PNG out.
// An empty label picks the first block. An empty out names the PNG after
// the label, in the current directory.
func (c *Converter) DecodeFile(in, out, label string) error {
	f, err := c.readAsm(in)
	if err != nil {
		return err
	}
	if len(f.Blocks) == 0 {
		return errNoBlocks
	}

	b := &f.Blocks[0]
	if label != "" {
		b = nil
		for i := range f.Blocks {
			if f.Blocks[i].Label == strings.ToUpper(label) {
				b = &f.Blocks[i]
				break
			}
		}
		if b == nil {
			return fmt.Errorf("label %s not found", strings.ToUpper(label))
		}
	}

	if out == "" {
		out = asm.SanitizeLabel(b.Label) + ".png"
	}

	r := Result{
		Source: filepath.Base(in),
		Label:  b.Label,
		Output: out,
	}
	r.Err = c.decodeBlock(b, f.Inks, &r)
	c.record(r)

	return nil
}

// DecodeDir converts every block of every assembler file in dir to a PNG in
// outDir named after its label. Files and blocks that fail are logged and
// skipped.
func (c *Converter) DecodeDir(dir, outDir string) error {
	files, err := findFiles(dir, c.opts.Recursive, ".asm")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .asm files found in %s", dir)
	}

	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}

		f, err := c.readAsm(file)
		if err != nil {
			c.record(Result{Source: rel, Err: err})
			continue
		}

		for i := range f.Blocks {
			b := &f.Blocks[i]

			name := asm.SanitizeLabel(b.Label)
			if c.opts.PrefixFile {
				name = asm.SanitizeLabel(baseName(file)) + "__" + name
			}

			r := Result{
				Source: rel,
				Label:  b.Label,
				Output: filepath.Join(outDir, name+".png"),
			}
			r.Err = c.decodeBlock(b, f.Inks, &r)
			c.record(r)
		}
	}

	return nil
}
