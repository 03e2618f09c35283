package cpcgfx

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/cpcgfx/asm"
	"github.com/bodgit/cpcgfx/palette"
	"github.com/bodgit/cpcgfx/screen"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var imageExts = []string{".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// sprite is a packed image ready to be written as a block.
type sprite struct {
	width, height int
	// data starts with the width in bytes and the height
	data []byte
	inks palette.Inks
	// inexact counts the pixels snapped to the nearest ink, the last of
	// which was snapped
	inexact int
	snapped color.NRGBA
}

func (s *sprite) widthBytes() int {
	return int(s.data[0])
}

// settings identifies everything besides the image that changes the packed
// result, used as part of the cache key.
func (c *Converter) settings() string {
	return fmt.Sprintf("mode=%d transparent=%d adaptive=%t quantize=%t", c.opts.Mode, c.opts.Transparent, c.opts.Adaptive, c.opts.Quantize)
}

// allocatePens replaces the inks in m with pens, numbered in order of first
// appearance, and returns the ink of each pen.
func allocatePens(m *image.Paletted, mode palette.Mode) ([]int, error) {
	pens := make(map[uint8]uint8)
	var inks []int
	for _, ink := range m.Pix {
		if _, ok := pens[ink]; !ok {
			pens[ink] = uint8(len(inks))
			inks = append(inks, int(ink))
		}
	}
	if len(inks) > mode.Colors() {
		return nil, fmt.Errorf("uses %d inks but %s allows %d", len(inks), mode, mode.Colors())
	}

	for i, ink := range m.Pix {
		m.Pix[i] = pens[ink]
	}
	m.Palette = palette.FromInks(inks)

	return inks, nil
}

func usedPens(m *image.Paletted) []bool {
	used := make([]bool, 256)
	for _, pen := range m.Pix {
		used[pen] = true
	}
	return used
}

// padded warns when a row of width pixels does not fill its last byte.
func (c *Converter) padded(width int) bool {
	if p := c.opts.Mode.PixelsPerByte(); width%p != 0 {
		c.logger.Printf("warning: width %dpx is not a multiple of %d, padding with pen 0\n", width, p)
		return true
	}
	return false
}

func (c *Converter) encodeImage(m image.Image) (*sprite, error) {
	mode := c.opts.Mode

	if c.opts.Quantize {
		m = screen.Reduce(m, mode.Colors())
	}

	before := c.matcher.Inexact()
	pm := screen.Index(m, c.matcher)
	b := pm.Bounds()

	wb := screen.WidthBytes(mode, b.Dx())
	if wb == 0 || wb > 0xff || b.Dy() == 0 || b.Dy() > 0xff {
		return nil, errTooLarge
	}

	inks := palette.DefaultInks(mode)
	if c.opts.Adaptive {
		var err error
		if inks, err = allocatePens(pm, mode); err != nil {
			return nil, err
		}
	}

	s := &sprite{
		width:   b.Dx(),
		height:  b.Dy(),
		data:    append([]byte{byte(wb), byte(b.Dy())}, screen.Pack(pm, mode)...),
		inks:    palette.Inks{},
		inexact: c.matcher.Inexact() - before,
	}
	if s.inexact > 0 {
		s.snapped = c.matcher.Last()
	}

	used := usedPens(pm)
	if c.padded(s.width) {
		used[0] = true
	}
	for pen, ink := range inks {
		if used[pen] {
			s.inks[pen] = ink
		}
	}

	return s, nil
}

func (c *Converter) encodeFile(file string) (*sprite, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if c.opts.Cache == nil {
		m, _, err := image.Decode(f)
		if err != nil {
			return nil, err
		}
		return c.encodeImage(m)
	}

	h := sha1.New()
	b := new(bytes.Buffer)
	if _, err := io.Copy(io.MultiWriter(h, b), f); err != nil {
		return nil, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	s, err := c.opts.Cache.find(sha, c.settings())
	switch {
	case err != nil:
		return nil, err
	case s != nil:
		c.matcher.Replay(s.snapped, s.inexact)
		c.padded(s.width)
		return s, nil
	}

	m, _, err := image.Decode(b)
	if err != nil {
		return nil, err
	}
	if s, err = c.encodeImage(m); err != nil {
		return nil, err
	}

	return s, c.opts.Cache.store(sha, c.settings(), s)
}

// EncodeDir converts every image in dir into a single assembler file out,
// one labelled block per image. Labels are derived from the path of each
// image relative to dir. Images that fail to convert are logged and
// skipped.
func (c *Converter) EncodeDir(dir, out string) error {
	files, err := findFiles(dir, c.opts.Recursive, imageExts...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := asm.NewWriter(f, c.opts.Mode)
	if err != nil {
		return err
	}
	w.Hex = c.opts.Hex

	labels := make(map[string]int)
	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return err
		}

		label := asm.SanitizeLabel(strings.TrimSuffix(rel, filepath.Ext(rel)))
		if n := labels[label]; n > 0 {
			labels[label]++
			label = fmt.Sprintf("%s_%d", label, n+1)
			c.logger.Printf("warning: %s: label already used, renamed to %s\n", rel, label)
		}
		labels[label]++

		r := Result{
			Source: rel,
			Label:  label,
			Output: filepath.Base(out),
		}

		s, err := c.encodeFile(file)
		if err != nil {
			r.Err = err
			c.record(r)
			w.Skip(label, rel)
			continue
		}

		b := asm.Block{
			Label:  label,
			Data:   s.data,
			Inks:   s.inks,
			Header:   2,
			Source:   rel,
			Fallback: s.inexact > 0,
		}
		if err := w.WriteBlock(&b, s.widthBytes()); err != nil {
			return err
		}

		r.Width, r.Height = s.width, s.height
		r.Bytes = len(s.data)
		r.Colors = len(s.inks)
		r.Fallback = s.inexact > 0
		c.record(r)
	}

	if err := w.Close(); err != nil {
		return err
	}

	return f.Close()
}
