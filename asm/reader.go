package asm

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"strconv"
	"strings"

	"github.com/bodgit/cpcgfx/palette"
)

// File is the result of parsing assembler source.
type File struct {
	// Inks holds the INK directives found before the first label
	Inks   palette.Inks
	Blocks []Block
}

type state int

const (
	seekingLabel state = iota
	accumulating
)

type parser struct {
	logger *log.Logger
	file   File
	state  state
	line   int

	current *Block
	orphans Block
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

// label returns the upper-cased label defined by code and whatever follows
// its colon.
func label(code string) (string, string, bool) {
	if i := strings.IndexByte(code, ':'); i >= 0 {
		ident := strings.TrimSpace(code[:i])
		if !isIdent(ident) || isReserved(ident) {
			return "", "", false
		}
		return strings.ToUpper(ident), strings.TrimSpace(code[i+1:]), true
	}
	if !isIdent(code) || isReserved(code) {
		return "", "", false
	}
	return strings.ToUpper(code), "", true
}

func splitOp(code string) (string, string) {
	if i := strings.IndexAny(code, " \t"); i >= 0 {
		return code[:i], strings.TrimSpace(code[i+1:])
	}
	return code, ""
}

// data parses a db or defb directive.
func data(code string) ([]byte, bool, error) {
	op, args := splitOp(code)
	switch strings.ToLower(op) {
	case "db", "defb", ".db":
	default:
		return nil, false, nil
	}

	var b []byte
	for _, tok := range strings.Split(args, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := parseByte(tok)
		if err != nil {
			return nil, true, fmt.Errorf("%w: %q", err, tok)
		}
		b = append(b, v)
	}
	return b, true, nil
}

// parseInk finds an INK pen,ink directive anywhere in s. A directive that does
// not parse is returned as an error.
func parseInk(s string) (int, int, bool, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', ';', ':':
			return true
		}
		return false
	})
	for i, f := range fields {
		if !strings.EqualFold(f, "INK") || i+1 == len(fields) || fields[i+1][0] < '0' || fields[i+1][0] > '9' {
			continue
		}
		if i+2 >= len(fields) {
			return 0, 0, true, fmt.Errorf("asm: INK %s has no ink", fields[i+1])
		}
		pen, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return 0, 0, true, fmt.Errorf("asm: bad INK pen %q", fields[i+1])
		}
		ink, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return 0, 0, true, fmt.Errorf("asm: bad INK ink %q", fields[i+2])
		}
		if pen > 15 || !palette.ValidInk(ink) {
			return 0, 0, true, fmt.Errorf("asm: INK %d,%d out of range", pen, ink)
		}
		return pen, ink, true, nil
	}
	return 0, 0, false, nil
}

func (p *parser) setInk(pen, ink int) {
	inks, where := p.file.Inks, "file"
	if p.current != nil {
		inks, where = p.current.Inks, p.current.Label
	}
	if old, ok := inks.Set(pen, ink); ok && old != ink {
		p.logger.Printf("line %d: %s: pen %d redefined from ink %d to %d\n", p.line, where, pen, old, ink)
	}
}

func (p *parser) finish() {
	if p.current == nil {
		return
	}
	if p.current.Err == nil && len(p.current.Data) == 0 {
		p.current.Err = ErrEmptyBlock
	}
	p.file.Blocks = append(p.file.Blocks, *p.current)
	p.current = nil
}

func (p *parser) addData(code string) {
	b, ok, err := data(code)
	if !ok {
		return
	}

	blk := p.current
	if p.state == seekingLabel {
		blk = &p.orphans
	}
	switch {
	case blk.Err != nil:
	case err != nil:
		blk.Err = fmt.Errorf("line %d: %w", p.line, err)
	case len(b) > 0:
		blk.Data = append(blk.Data, b...)
		blk.Rows = append(blk.Rows, len(b))
	}
}

func (p *parser) parseLine(s string) {
	code := strings.TrimSpace(stripComment(s))

	if lbl, rest, ok := label(code); ok {
		p.finish()
		p.current = &Block{Label: lbl, Inks: palette.Inks{}, Line: p.line}
		p.state = accumulating
		code = rest
	}

	pen, ink, found, err := parseInk(s)
	switch {
	case found && err != nil:
		p.logger.Printf("line %d: %v, skipped\n", p.line, err)
	case found:
		p.setInk(pen, ink)
	}

	if op, _ := splitOp(code); strings.EqualFold(strings.TrimSuffix(op, ":"), "INK") {
		if !found {
			p.logger.Printf("line %d: %v: %q, skipped\n", p.line, errBadInk, code)
		}
		return
	}

	if code == "" {
		return
	}

	p.addData(code)
}

// Parse reads assembler source from r and splits it into blocks. Problems
// with a single block are recorded in its Err field, the returned error is
// only for failing to read r. Diagnostics about skipped INK directives are
// written to logger, which may be nil.
func Parse(r io.Reader, logger *log.Logger) (*File, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	p := parser{
		logger: logger,
		file: File{
			Inks: palette.Inks{},
		},
		orphans: Block{Label: DefaultLabel, Inks: palette.Inks{}, Line: 1},
	}

	s := bufio.NewScanner(r)
	for s.Scan() {
		p.line++
		p.parseLine(s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	p.finish()

	switch {
	case len(p.file.Blocks) == 0 && (len(p.orphans.Data) > 0 || p.orphans.Err != nil):
		// No labels at all, the whole file is a single block
		p.orphans.Inks, p.file.Inks = p.file.Inks, palette.Inks{}
		p.file.Blocks = append(p.file.Blocks, p.orphans)
	case len(p.orphans.Data) > 0:
		logger.Printf("%d bytes before the first label ignored\n", len(p.orphans.Data))
	}

	return &p.file, nil
}
