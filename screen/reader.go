package screen

import (
	"errors"
	"image"

	"github.com/bodgit/cpcgfx/palette"
)

var errBadWidth = errors.New("screen: width must be positive")

// Unpack decodes screen bytes for mode md into an image width pixels wide.
// The height follows from the length of b, which must be a whole number of
// rows. Pixels of the last byte of each row beyond width are discarded. The
// image uses the firmware default palette, callers replace it once the inks
// are known.
func Unpack(b []byte, md palette.Mode, width int) (*image.Paletted, error) {
	if width <= 0 {
		return nil, errBadWidth
	}

	wb := WidthBytes(md, width)
	if len(b)%wb != 0 {
		return nil, &MalformedDataError{Length: len(b), WidthBytes: wb}
	}
	height := len(b) / wb

	m := image.NewPaletted(image.Rect(0, 0, width, height), palette.Default(md))

	p := md.PixelsPerByte()
	pens := make([]uint8, p)
	for i, v := range b {
		y, bx := i/wb, i%wb
		unpackByte(md, v, pens)
		for j, pen := range pens {
			if x := bx*p + j; x < width {
				m.SetColorIndex(x, y, pen)
			}
		}
	}
	return m, nil
}
