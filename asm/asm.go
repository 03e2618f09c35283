/*
Package asm reads and writes the labelled data blocks used to embed CPC
graphics in Z80 assembler source.

A block is a label on a line of its own, optionally followed by a colon,
and the db or defb directives that follow it:

	SPRITE:
	  db 2, 3
	  db &F0, &0F, $AA, #55, 0x11, 17
	  ; INK 0,1

INK pen,ink directives are picked up even inside comments and give the
hardware ink of a pen for the block they appear in. Directives before the
first label apply to every block of the file.
*/
package asm

import (
	"errors"
	"strings"

	"github.com/bodgit/cpcgfx/palette"
)

var (
	// ErrEmptyBlock is the error of a label with no data following it.
	ErrEmptyBlock = errors.New("asm: label has no data")

	errBadNumber = errors.New("asm: invalid number")
	errRange     = errors.New("asm: value out of byte range")
	errBadInk    = errors.New("asm: INK needs a pen and an ink")
)

// DefaultLabel names the block of a file that has data but no labels.
const DefaultLabel = "IMG"

// Block is a labelled sequence of bytes.
type Block struct {
	Label string
	Data  []byte
	Inks  palette.Inks
	// Rows is the number of values on each db line, in order
	Rows []int

	// Line is where the label was found when parsing
	Line int
	// Err is set when the block could not be parsed, other blocks of the
	// same file are unaffected
	Err error

	// Header is the number of leading bytes written on a line of their own
	Header int
	// Source is recorded next to the label in the index
	Source string
	// Fallback notes above the label that colours were snapped to the
	// nearest ink
	Fallback bool
}

// Directives and mnemonics that may stand alone on a line without being a
// label.
var reserved = map[string]struct{}{
	"db": {}, "defb": {}, "dw": {}, "defw": {}, "ds": {}, "defs": {},
	"ink": {}, "equ": {}, "org": {}, "include": {}, "incbin": {}, "section": {},
	"macro": {}, "endm": {}, "end": {}, "align": {}, "list": {}, "nolist": {},
	"ret": {}, "reti": {}, "retn": {}, "nop": {}, "halt": {}, "di": {}, "ei": {},
	"exx": {}, "ldir": {}, "lddr": {}, "ldi": {}, "ldd": {}, "cpl": {},
	"neg": {}, "scf": {}, "ccf": {}, "rla": {}, "rra": {}, "rlca": {},
	"rrca": {}, "daa": {}, "otir": {}, "inir": {}, "outi": {}, "ini": {},
}

func isReserved(s string) bool {
	_, ok := reserved[strings.ToLower(s)]
	return ok
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// SanitizeLabel turns s into a valid upper-case label: anything other than
// letters, digits and underscore becomes an underscore. A leading digit or a
// name that clashes with a directive or mnemonic gets an IMG_ prefix.
func SanitizeLabel(s string) string {
	var b strings.Builder
	last := '_'
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		default:
			r = '_'
		}
		if r == '_' && last == '_' {
			continue
		}
		b.WriteRune(r)
		last = r
	}
	label := strings.ToUpper(strings.TrimRight(b.String(), "_"))
	switch {
	case label == "":
		return DefaultLabel
	case label[0] >= '0' && label[0] <= '9', isReserved(label):
		return DefaultLabel + "_" + label
	}
	return label
}
