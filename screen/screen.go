/*
Package screen implements packing and unpacking of Amstrad CPC screen bytes.

Each screen byte holds two, four or eight pixels depending on the mode. The
bits of each pixel are not stored next to each other, the gate array
interleaves them across the byte. In mode 0 the byte
b7 b6 b5 b4 b3 b2 b1 b0 holds the left pixel as b1 b5 b3 b7 and the right
pixel as b0 b4 b2 b6 (most significant bit first).
*/
package screen

import (
	"fmt"

	"github.com/bodgit/cpcgfx/palette"
)

// bits[mode][pixel][bit] is the position within the screen byte of the given
// bit of the pen of the n-th pixel of the byte.
var bits = [...][][]uint{
	palette.Mode0: {
		{7, 3, 5, 1},
		{6, 2, 4, 0},
	},
	palette.Mode1: {
		{3, 7},
		{2, 6},
		{1, 5},
		{0, 4},
	},
	palette.Mode2: {
		{7}, {6}, {5}, {4}, {3}, {2}, {1}, {0},
	},
}

// MalformedDataError is returned when a byte sequence does not hold a whole
// number of rows, or fewer than Height rows when a height is expected.
type MalformedDataError struct {
	Length     int
	WidthBytes int
	Height     int
}

func (e *MalformedDataError) Error() string {
	if e.Height > 0 {
		return fmt.Sprintf("screen: %d bytes is short of %d rows of %d bytes", e.Length, e.Height, e.WidthBytes)
	}
	return fmt.Sprintf("screen: %d bytes is not a whole number of %d byte rows", e.Length, e.WidthBytes)
}

// WidthBytes returns how many bytes hold a row of width pixels in mode m,
// rounding up.
func WidthBytes(m palette.Mode, width int) int {
	p := m.PixelsPerByte()
	return (width + p - 1) / p
}

func packByte(m palette.Mode, pens []uint8) byte {
	var b byte
	for i, pen := range pens {
		for bit, pos := range bits[m][i] {
			b |= (pen >> uint(bit) & 1) << pos
		}
	}
	return b
}

func unpackByte(m palette.Mode, b byte, pens []uint8) {
	for i := range pens {
		var pen uint8
		for bit, pos := range bits[m][i] {
			pen |= (b >> pos & 1) << uint(bit)
		}
		pens[i] = pen
	}
}
