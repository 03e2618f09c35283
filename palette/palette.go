/*
Package palette implements the Amstrad CPC hardware colour table, the default
pen to ink assignments for each screen mode and the nearest colour matching
used when converting arbitrary images.

The CPC has 27 hardware colours, referred to as inks by the firmware. Each
red, green and blue channel is either off, half or full intensity. A screen
mode can only show a limited number of them at once, addressed by pen number.
*/
package palette

import (
	"fmt"
	"image/color"
)

// Mode is a CPC screen mode.
type Mode int

const (
	// Mode0 is 160x200 with 16 colours, 4 bits per pixel.
	Mode0 Mode = iota
	// Mode1 is 320x200 with 4 colours, 2 bits per pixel.
	Mode1
	// Mode2 is 640x200 with 2 colours, 1 bit per pixel.
	Mode2
)

// NumInks is the number of hardware colours.
const NumInks = 27

// UnsupportedModeError is returned for a screen mode other than 0, 1 or 2.
type UnsupportedModeError int

func (e UnsupportedModeError) Error() string {
	return fmt.Sprintf("palette: unsupported mode %d", int(e))
}

// ParseMode validates m as a screen mode.
func ParseMode(m int) (Mode, error) {
	switch Mode(m) {
	case Mode0, Mode1, Mode2:
		return Mode(m), nil
	}
	return 0, UnsupportedModeError(m)
}

// Colors returns the number of pens available in the mode.
func (m Mode) Colors() int {
	return 1 << m.BitsPerPixel()
}

// BitsPerPixel returns how many bits encode a single pixel.
func (m Mode) BitsPerPixel() int {
	return 4 >> m
}

// PixelsPerByte returns how many pixels are packed in each screen byte.
func (m Mode) PixelsPerByte() int {
	return 8 / m.BitsPerPixel()
}

func (m Mode) String() string {
	return fmt.Sprintf("MODE %d", int(m))
}

// Firmware channel intensities
const (
	off  = 0
	half = 128
	full = 255
)

// Hardware holds the 27 inks in firmware order.
var Hardware = color.Palette{
	color.RGBA{off, off, off, 0xff},
	color.RGBA{off, off, half, 0xff},
	color.RGBA{off, off, full, 0xff},
	color.RGBA{half, off, off, 0xff},
	color.RGBA{half, off, half, 0xff},
	color.RGBA{half, off, full, 0xff},
	color.RGBA{full, off, off, 0xff},
	color.RGBA{full, off, half, 0xff},
	color.RGBA{full, off, full, 0xff},
	color.RGBA{off, half, off, 0xff},
	color.RGBA{off, half, half, 0xff},
	color.RGBA{off, half, full, 0xff},
	color.RGBA{half, half, off, 0xff},
	color.RGBA{half, half, half, 0xff},
	color.RGBA{half, half, full, 0xff},
	color.RGBA{full, half, off, 0xff},
	color.RGBA{full, half, half, 0xff},
	color.RGBA{full, half, full, 0xff},
	color.RGBA{off, full, off, 0xff},
	color.RGBA{off, full, half, 0xff},
	color.RGBA{off, full, full, 0xff},
	color.RGBA{half, full, off, 0xff},
	color.RGBA{half, full, half, 0xff},
	color.RGBA{half, full, full, 0xff},
	color.RGBA{full, full, off, 0xff},
	color.RGBA{full, full, half, 0xff},
	color.RGBA{full, full, full, 0xff},
}

// Power-on pen assignments. Pens 14 and 15 flash on real hardware, only the
// first ink of each pair is used here.
var defaultInks = [...][]int{
	Mode0: {1, 24, 20, 6, 26, 0, 2, 8, 10, 12, 14, 16, 18, 22, 1, 16},
	Mode1: {1, 24, 20, 6},
	Mode2: {1, 24},
}

// DefaultInks returns the firmware default ink for each pen of the mode.
func DefaultInks(m Mode) []int {
	return append([]int(nil), defaultInks[m]...)
}

// Default returns the palette the firmware sets up for the mode.
func Default(m Mode) color.Palette {
	return FromInks(defaultInks[m])
}

// FromInks builds a palette from a list of inks, one per pen.
func FromInks(inks []int) color.Palette {
	p := make(color.Palette, len(inks))
	for pen, ink := range inks {
		p[pen] = Hardware[ink]
	}
	return p
}
