package palette

import (
	"bytes"
	"errors"
	"image/color"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, m := range []int{0, 1, 2} {
		mode, err := ParseMode(m)
		require.NoError(t, err)
		assert.Equal(t, Mode(m), mode)
	}

	for _, m := range []int{-1, 3, 42} {
		_, err := ParseMode(m)
		var target UnsupportedModeError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, UnsupportedModeError(m), target)
	}
}

func TestModeGeometry(t *testing.T) {
	tables := []struct {
		mode          Mode
		colors        int
		bits          int
		pixelsPerByte int
	}{
		{Mode0, 16, 4, 2},
		{Mode1, 4, 2, 4},
		{Mode2, 2, 1, 8},
	}

	for _, table := range tables {
		t.Run(table.mode.String(), func(t *testing.T) {
			assert.Equal(t, table.colors, table.mode.Colors())
			assert.Equal(t, table.bits, table.mode.BitsPerPixel())
			assert.Equal(t, table.pixelsPerByte, table.mode.PixelsPerByte())
			assert.Len(t, Default(table.mode), table.colors)
		})
	}
}

func TestHardware(t *testing.T) {
	require.Len(t, Hardware, NumInks)
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, Hardware[0])
	assert.Equal(t, color.RGBA{0, 0, 128, 0xff}, Hardware[1])
	assert.Equal(t, color.RGBA{255, 255, 0, 0xff}, Hardware[24])
	assert.Equal(t, color.RGBA{255, 255, 255, 0xff}, Hardware[26])
}

func TestMatchExact(t *testing.T) {
	for _, mode := range []Mode{Mode0, Mode1, Mode2} {
		p := Default(mode)
		m := NewMatcher(p, nil)
		for k, c := range p {
			// Mode 0 repeats inks for the flashing pens
			assert.Equal(t, p.Index(c), m.Match(c), "pen %d", k)
		}
		assert.Zero(t, m.Inexact())
		assert.False(t, m.Warned())
	}
}

func TestMatchNearest(t *testing.T) {
	m := NewMatcher(Hardware, nil)

	assert.Equal(t, 26, m.Match(color.RGBA{250, 250, 250, 0xff}))
	assert.Equal(t, 13, m.Match(color.RGBA{120, 130, 125, 0xff}))
	assert.Equal(t, 6, m.Match(color.RGBA{200, 10, 10, 0xff}))
	assert.Equal(t, 3, m.Inexact())
}

func TestMatchTieLowestIndex(t *testing.T) {
	p := color.Palette{
		color.RGBA{0, 0, 0, 0xff},
		color.RGBA{100, 100, 100, 0xff},
		color.RGBA{100, 100, 100, 0xff},
	}
	m := NewMatcher(p, nil)
	assert.Equal(t, 1, m.Match(color.RGBA{100, 100, 100, 0xff}))
	// Equidistant from 0 and 1
	assert.Equal(t, 0, m.Match(color.RGBA{50, 50, 50, 0xff}))
}

func TestMatchIdempotent(t *testing.T) {
	for _, mode := range []Mode{Mode0, Mode1, Mode2} {
		p := Default(mode)
		m := NewMatcher(p, nil)
		for r := 0; r < 256; r += 51 {
			for g := 0; g < 256; g += 51 {
				for b := 0; b < 256; b += 51 {
					i := m.Match(color.RGBA{uint8(r), uint8(g), uint8(b), 0xff})
					assert.Equal(t, i, m.Match(p[i]))
				}
			}
		}
	}
}

func TestMatchWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	m := NewMatcher(Default(Mode1), log.New(&buf, "", 0))

	for i := 0; i < 100; i++ {
		m.Match(color.RGBA{uint8(i), 3, 7, 0xff})
	}
	m.Match(Default(Mode1)[2])

	assert.Equal(t, 100, m.Inexact())
	assert.True(t, m.Warned())
	assert.Equal(t, 1, strings.Count(buf.String(), "warning:"))
}

func TestMatchTransparent(t *testing.T) {
	p := Default(Mode0)
	m := NewMatcher(p, nil)
	m.SetTransparent(3)

	// Transparent but with the RGB of pen 7
	c := color.NRGBA{255, 0, 255, 0}
	assert.Equal(t, 3, m.Match(c))
	assert.Equal(t, 7, m.Match(color.NRGBA{255, 0, 255, 0xff}))
	assert.Zero(t, m.Inexact())

	m.SetTransparent(NoIndex)
	assert.Equal(t, 7, m.Match(c))
}

func TestInks(t *testing.T) {
	inks := Inks{}
	_, dup := inks.Set(0, 1)
	assert.False(t, dup)
	old, dup := inks.Set(0, 26)
	assert.True(t, dup)
	assert.Equal(t, 1, old)
	assert.Equal(t, 26, inks[0])

	inks.Set(3, 6)
	assert.Equal(t, []int{0, 3}, inks.Pens())
	assert.Equal(t, "0:26 3:6", inks.String())

	merged := Inks{0: 2, 1: 2}.Merge(inks)
	assert.Equal(t, Inks{0: 26, 1: 2, 3: 6}, merged)
}

func TestInksPalette(t *testing.T) {
	inks := Inks{0: 0, 1: 26, 7: 3}

	p, missing := inks.Palette(Mode1, NoIndex)
	require.Len(t, p, 4)
	assert.Equal(t, Hardware[0], p[0])
	assert.Equal(t, Hardware[26], p[1])
	assert.Equal(t, Hardware[20], p[2])
	assert.Equal(t, Hardware[6], p[3])
	assert.Equal(t, []int{2, 3}, missing)

	p, missing = inks.Palette(Mode1, 13)
	assert.Equal(t, Hardware[13], p[2])
	assert.Equal(t, Hardware[13], p[3])
	assert.Equal(t, []int{2, 3}, missing)

	p, missing = Inks{0: 9, 1: 18}.Palette(Mode2, NoIndex)
	assert.Equal(t, color.Palette{Hardware[9], Hardware[18]}, p)
	assert.Empty(t, missing)
}

func TestMatcherReplay(t *testing.T) {
	var buf bytes.Buffer
	m := NewMatcher(Default(Mode1), log.New(&buf, "", 0))

	m.Replay(color.NRGBA{1, 2, 3, 255}, 0)
	assert.False(t, m.Warned())
	assert.Empty(t, buf.String())

	m.Replay(color.NRGBA{1, 2, 3, 255}, 5)
	assert.True(t, m.Warned())
	assert.Equal(t, 5, m.Inexact())
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, m.Last())
	assert.Contains(t, buf.String(), "#010203")

	m.Match(color.NRGBA{10, 10, 250, 255})
	m.Replay(color.NRGBA{4, 5, 6, 255}, 2)
	assert.Equal(t, 8, m.Inexact())
	assert.Equal(t, color.NRGBA{4, 5, 6, 255}, m.Last())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
