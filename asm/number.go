package asm

import (
	"strconv"
	"strings"
)

// parseByte parses a numeric literal in any of the notations CPC assemblers
// accept: decimal, &FF, $FF, #FF, 0xFF, 0FFh and %1010. Negative values down
// to -128 wrap around as they would when assembled.
func parseByte(s string) (byte, error) {
	s = strings.TrimSpace(s)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg, s = true, s[1:]
	}

	base := 10
	switch {
	case s == "":
		return 0, errBadNumber
	case s[0] == '&', s[0] == '$', s[0] == '#':
		base, s = 16, s[1:]
	case s[0] == '%':
		base, s = 2, s[1:]
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base, s = 16, s[2:]
	case len(s) > 1 && (s[len(s)-1] == 'h' || s[len(s)-1] == 'H') && s[0] >= '0' && s[0] <= '9':
		base, s = 16, s[:len(s)-1]
	}

	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, errBadNumber
	}

	switch {
	case neg && n > 128:
		return 0, errRange
	case neg:
		return byte(-int(n)), nil
	case n > 255:
		return 0, errRange
	}
	return byte(n), nil
}
