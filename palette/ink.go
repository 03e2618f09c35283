package palette

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// Inks maps pens to hardware inks as set by INK pen,ink directives.
type Inks map[int]int

// Set assigns ink to pen. It returns the previous ink and true if the pen was
// already assigned, the new ink replaces it either way.
func (i Inks) Set(pen, ink int) (int, bool) {
	old, ok := i[pen]
	i[pen] = ink
	return old, ok
}

// Merge returns a copy of i with every entry of o added, o taking
// precedence.
func (i Inks) Merge(o Inks) Inks {
	m := make(Inks, len(i)+len(o))
	for k, v := range i {
		m[k] = v
	}
	for k, v := range o {
		m[k] = v
	}
	return m
}

// Pens returns the assigned pens in ascending order.
func (i Inks) Pens() []int {
	pens := make([]int, 0, len(i))
	for pen := range i {
		pens = append(pens, pen)
	}
	sort.Ints(pens)
	return pens
}

func (i Inks) String() string {
	var b strings.Builder
	for n, pen := range i.Pens() {
		if n > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%d", pen, i[pen])
	}
	return b.String()
}

// Palette resolves the pens of mode m to colours. Pens without an ink use
// background when it is not NoIndex, otherwise the firmware default ink for
// that pen. The unmapped pens are returned so the caller can warn about
// them. Entries for pens the mode does not have are ignored.
func (i Inks) Palette(m Mode, background int) (color.Palette, []int) {
	defaults := defaultInks[m]
	inks := make([]int, m.Colors())
	var missing []int
	for pen := range inks {
		ink, ok := i[pen]
		switch {
		case ok:
		case background != NoIndex:
			ink = background
			missing = append(missing, pen)
		default:
			ink = defaults[pen]
			missing = append(missing, pen)
		}
		inks[pen] = ink
	}
	return FromInks(inks), missing
}

// ValidInk reports whether ink is one of the hardware colours.
func ValidInk(ink int) bool {
	return ink >= 0 && ink < NumInks
}
