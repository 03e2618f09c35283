package screen

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/bodgit/cpcgfx/palette"
	"github.com/ericpauley/go-quantize/quantize"
)

// Index converts m to an image of pen indices using the matcher. The result
// uses the matcher's palette and its top-left corner is at (0, 0).
func Index(m image.Image, matcher *palette.Matcher) *image.Paletted {
	b := m.Bounds()
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), matcher.Palette())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, uint8(matcher.Match(m.At(x, y))))
		}
	}
	return pm
}

// Reduce quantizes m to at most n colours using a median cut. Fully
// transparent pixels are kept transparent so they can still be picked up by
// a transparent override.
func Reduce(m image.Image, n int) image.Image {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, n), m)

	pm := image.NewPaletted(b, p)
	draw.Draw(pm, b, m, b.Min, draw.Src)

	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a == 0 {
				continue
			}
			c := color.NRGBAModel.Convert(pm.At(x, y)).(color.NRGBA)
			c.A = 0xff
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Pack encodes the pen indices of m as screen bytes for mode md, row by row
// from the top. Rows whose width is not a multiple of the pixels per byte
// are padded with pen 0. Pens are masked to the bits the mode has.
func Pack(m *image.Paletted, md palette.Mode) []byte {
	b := m.Bounds()
	p := md.PixelsPerByte()
	mask := uint8(md.Colors() - 1)
	wb := WidthBytes(md, b.Dx())

	out := make([]byte, 0, wb*b.Dy())
	pens := make([]uint8, p)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for bx := 0; bx < wb; bx++ {
			for i := range pens {
				pens[i] = 0
				if x := b.Min.X + bx*p + i; x < b.Max.X {
					pens[i] = m.ColorIndexAt(x, y) & mask
				}
			}
			out = append(out, packByte(md, pens))
		}
	}
	return out
}
