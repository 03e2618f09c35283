package palette

import (
	"image/color"
	"io/ioutil"
	"log"
)

// NoIndex disables the transparent override.
const NoIndex = -1

// Matcher maps colours onto the closest entry of a palette. A single Matcher
// is meant to be shared by every image of a conversion run so that the
// out-of-palette warning is only logged once.
type Matcher struct {
	palette     color.Palette
	rgb         []color.NRGBA
	transparent int
	logger      *log.Logger

	warned  bool
	inexact int
	last    color.NRGBA
}

// NewMatcher returns a Matcher for the palette p. A nil logger discards the
// warning.
func NewMatcher(p color.Palette, logger *log.Logger) *Matcher {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	m := &Matcher{
		palette:     p,
		rgb:         make([]color.NRGBA, len(p)),
		transparent: NoIndex,
		logger:      logger,
	}
	for i, c := range p {
		m.rgb[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
	return m
}

// SetTransparent makes fully transparent pixels map to index i without any
// distance computation. Pass NoIndex to match them like any other colour.
func (m *Matcher) SetTransparent(i int) {
	m.transparent = i
}

// Palette returns the palette being matched against.
func (m *Matcher) Palette() color.Palette {
	return m.palette
}

// Inexact returns the number of colours so far that were not exactly in the
// palette.
func (m *Matcher) Inexact() int {
	return m.inexact
}

// Warned reports whether the out-of-palette warning has been logged.
func (m *Matcher) Warned() bool {
	return m.warned
}

func sqDiff(x, y uint8) int {
	d := int(x) - int(y)
	return d * d
}

// Match returns the index of the palette entry closest to c.
func (m *Matcher) Match(c color.Color) int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 && m.transparent != NoIndex {
		return m.transparent
	}

	best, bestSum := 0, int(^uint(0)>>1)
	for i, p := range m.rgb {
		sum := sqDiff(n.R, p.R) + sqDiff(n.G, p.G) + sqDiff(n.B, p.B)
		if sum < bestSum {
			best, bestSum = i, sum
			if sum == 0 {
				return best
			}
		}
	}

	m.snapped(n, 1)

	return best
}

func (m *Matcher) snapped(c color.NRGBA, n int) {
	m.inexact += n
	m.last = c
	if !m.warned {
		m.warned = true
		m.logger.Printf("warning: colour #%02x%02x%02x is not in the palette, inexact colours are being snapped to the nearest ink\n", c.R, c.G, c.B)
	}
}

// Last returns the colour of the most recent inexact match.
func (m *Matcher) Last() color.NRGBA {
	return m.last
}

// Replay counts n inexact matches of c made without calling Match, such as
// those of an image converted in an earlier run. The warning is logged if it
// has not been already.
func (m *Matcher) Replay(c color.NRGBA, n int) {
	if n > 0 {
		m.snapped(c, n)
	}
}
