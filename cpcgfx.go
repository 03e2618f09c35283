/*
Package cpcgfx converts images to and from the assembler data tables used by
Amstrad CPC graphics.

Images are matched against the hardware palette of a screen mode, packed into
screen bytes and written as labelled db blocks. Going the other way, every
labelled block of an assembler file is unpacked and written out as a PNG
using the INK directives found next to it.

A run never stops at the first bad image or block. Each failure is logged
and recorded and the conversion carries on with the rest, Errors reports how
many there were.
*/
package cpcgfx

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"

	"github.com/bodgit/cpcgfx/palette"
)

// Options controls a conversion run.
type Options struct {
	Mode palette.Mode

	// Transparent is the pen, or ink when Adaptive is set, used for fully
	// transparent pixels. palette.NoIndex matches them like any other colour.
	Transparent int
	// Adaptive matches against all 27 hardware inks and allocates pens in
	// order of first use instead of using the firmware default pens.
	Adaptive bool
	// Quantize reduces each image to the number of colours of the mode with
	// a median cut before matching.
	Quantize bool
	// Hex writes data values as &FF.
	Hex bool

	// Background is the ink used for pens that have no INK directive.
	Background int
	// Layout is how decoded blocks are split into rows
	Layout Layout
	// Width is the width in pixels of headerless data, the height follows
	// from the length. It overrides Layout when not zero.
	Width int
	// PrefixFile prefixes decoded PNG names with the assembler file name.
	PrefixFile bool

	Recursive bool
	Verbose   bool

	// Cache, if not nil, stores packed images so unchanged files are not
	// converted again.
	Cache *Cache
}

// DefaultOptions returns the options for a mode with no overrides.
func DefaultOptions(mode palette.Mode) Options {
	return Options{
		Mode:        mode,
		Transparent: palette.NoIndex,
		Background:  palette.NoIndex,
	}
}

// Converter runs conversions, keeping the state that spans every file of a
// run.
type Converter struct {
	opts    Options
	logger  *log.Logger
	matcher *palette.Matcher

	results []Result
	failed  int
}

var (
	errTooLarge = errors.New("image too large, width in bytes and height must fit in a byte")
	errNoHeader = errors.New("block too short for a width and height header")
)

// New validates the options and returns a Converter. Warnings and errors
// go to logger, which may be nil.
func New(opts Options, logger *log.Logger) (*Converter, error) {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}

	if _, err := palette.ParseMode(int(opts.Mode)); err != nil {
		return nil, err
	}

	switch {
	case opts.Transparent == palette.NoIndex:
	case opts.Adaptive && !palette.ValidInk(opts.Transparent):
		return nil, fmt.Errorf("transparent ink %d is not between 0 and %d", opts.Transparent, palette.NumInks-1)
	case !opts.Adaptive && (opts.Transparent < 0 || opts.Transparent >= opts.Mode.Colors()):
		return nil, fmt.Errorf("transparent pen %d is not between 0 and %d", opts.Transparent, opts.Mode.Colors()-1)
	}

	if opts.Background != palette.NoIndex && !palette.ValidInk(opts.Background) {
		return nil, fmt.Errorf("background ink %d is not between 0 and %d", opts.Background, palette.NumInks-1)
	}

	if opts.Layout < LayoutAuto || opts.Layout > LayoutLines {
		return nil, fmt.Errorf("unknown layout %d", int(opts.Layout))
	}

	if opts.Width < 0 {
		return nil, fmt.Errorf("width %d is negative", opts.Width)
	}

	p := palette.Default(opts.Mode)
	if opts.Adaptive {
		p = palette.Hardware
	}
	matcher := palette.NewMatcher(p, logger)
	matcher.SetTransparent(opts.Transparent)

	return &Converter{
		opts:    opts,
		logger:  logger,
		matcher: matcher,
	}, nil
}

// Result records the outcome of converting one image or block.
type Result struct {
	Source string
	Label  string
	Output string

	Width, Height int
	Bytes         int
	Colors        int
	// Fallback is set when colours had to be snapped to the nearest ink
	Fallback bool

	Err error
}

// Results returns the outcome of everything converted so far.
func (c *Converter) Results() []Result {
	return append([]Result(nil), c.results...)
}

// Errors returns how many images or blocks failed to convert.
func (c *Converter) Errors() int {
	return c.failed
}

func (c *Converter) record(r Result) {
	switch {
	case r.Err != nil && r.Label == "":
		c.failed++
		c.logger.Printf("%s: %v\n", r.Source, r.Err)
	case r.Err != nil:
		c.failed++
		c.logger.Printf("%s: %s: %v\n", r.Source, r.Label, r.Err)
	case c.opts.Verbose:
		c.logger.Printf("%s: %s -> %s (%dx%dpx, %s)\n", r.Source, r.Label, r.Output, r.Width, r.Height, c.opts.Mode)
	}
	c.results = append(c.results, r)
}
