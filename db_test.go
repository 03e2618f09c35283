package cpcgfx

import (
	"image"
	"image/color"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/cpcgfx/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	s, err := cache.find("ABC", "mode=1")
	require.NoError(t, err)
	assert.Nil(t, s)

	want := &sprite{
		width:   6,
		height:  1,
		data:    []byte{2, 1, 0xff, 0x88},
		inks:    palette.Inks{0: 1, 3: 6},
		inexact: 3,
		snapped: color.NRGBA{0x12, 0x34, 0x56, 0xff},
	}
	require.NoError(t, cache.store("ABC", "mode=1", want))

	s, err = cache.find("ABC", "mode=1")
	require.NoError(t, err)
	assert.Equal(t, want, s)

	s, err = cache.find("ABC", "mode=0")
	require.NoError(t, err)
	assert.Nil(t, s)

	assert.Error(t, cache.store("ABC", "mode=1", want))

	exact := &sprite{width: 8, height: 1, data: []byte{1, 1, 0}, inks: palette.Inks{}}
	require.NoError(t, cache.store("DEF", "mode=1", exact))
	s, err = cache.find("DEF", "mode=1")
	require.NoError(t, err)
	assert.Equal(t, exact, s)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, cache.Purge())
	n, err = cache.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEncodeCached(t *testing.T) {
	dir := t.TempDir()
	p := palette.Default(palette.Mode1)
	writePNG(t, filepath.Join(dir, "GRAFICOS", "a.png"), pens(p, 8, 2))
	writePNG(t, filepath.Join(dir, "GRAFICOS", "b.png"), pens(p[:2], 4, 4))

	cache, err := NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	run := func(opts Options) string {
		opts.Cache = cache
		c, _ := newConverter(t, opts)
		out := filepath.Join(dir, "out.asm")
		require.NoError(t, c.EncodeDir(filepath.Join(dir, "GRAFICOS"), out))
		assert.Equal(t, 0, c.Errors())
		b, err := ioutil.ReadFile(out)
		require.NoError(t, err)
		return string(b)
	}

	opts := DefaultOptions(palette.Mode1)
	first := run(opts)
	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, first, run(opts))
	n, err = cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	opts.Hex = true
	run(opts)
	n, err = cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	opts.Transparent = 0
	run(opts)
	n, err = cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestEncodeCachedWarnings(t *testing.T) {
	dir := t.TempDir()
	off := image.NewNRGBA(image.Rect(0, 0, 6, 1))
	for x := 0; x < 6; x++ {
		off.Set(x, 0, color.NRGBA{10, 10, 250, 255})
	}
	writePNG(t, filepath.Join(dir, "GRAFICOS", "off.png"), off)

	cache, err := NewCache(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	opts := DefaultOptions(palette.Mode1)
	opts.Cache = cache

	for i := 0; i < 2; i++ {
		c, diag := newConverter(t, opts)
		require.NoError(t, c.EncodeDir(filepath.Join(dir, "GRAFICOS"), filepath.Join(dir, "out.asm")))

		assert.Equal(t, 1, strings.Count(diag.String(), "#0a0afa is not in the palette"), "run %d", i)
		assert.Equal(t, 1, strings.Count(diag.String(), "padding with pen 0"), "run %d", i)
		assert.Equal(t, 6, c.matcher.Inexact(), "run %d", i)
		require.Len(t, c.Results(), 1)
		assert.True(t, c.Results()[0].Fallback)
	}

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
