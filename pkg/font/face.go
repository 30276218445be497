package font

import (
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"galley/pkg/scaled"
)

// fromFixed converts 26.6 fixed point (at 72dpi, so pixels are points) to
// scaled points.
func fromFixed(v fixed.Int26_6) scaled.Scaled {
	return scaled.Scaled(v) << 10
}

// measureGlyph reads advance width and ink bounds of c. Height is the extent
// above the baseline and depth the extent below it, never negative.
func measureGlyph(face font.Face, c rune) (CharInfo, bool) {
	adv, ok := face.GlyphAdvance(c)
	if !ok {
		return CharInfo{}, false
	}
	ci := CharInfo{Width: fromFixed(adv)}
	if bounds, _, ok := face.GlyphBounds(c); ok {
		if h := fromFixed(-bounds.Min.Y); h > 0 {
			ci.Height = h
		}
		if d := fromFixed(bounds.Max.Y); d > 0 {
			ci.Depth = d
		}
	}
	return ci, true
}

// LoadFace loads a TrueType font file at the given size in points and
// registers it under name. Spacing parameters are derived from the face:
// an interword space of one space-glyph advance that stretches by half and
// shrinks by a third of itself, the way text fonts are usually set up.
func (t *Table) LoadFace(name, path string, size float64) (ID, error) {
	face, err := gg.LoadFontFace(path, size)
	if err != nil {
		return NullFont, fmt.Errorf("font: load %s: %w", path, err)
	}
	return t.AddFace(name, face, size), nil
}

// AddFace registers an already opened face of the given size in points.
func (t *Table) AddFace(name string, face font.Face, size float64) ID {
	e := &entry{name: name, face: face, chars: map[rune]CharInfo{}}
	// Printable ASCII is measured up front; everything else on demand.
	for c := rune(' '); c < 0x7f; c++ {
		if ci, ok := measureGlyph(face, c); ok {
			e.chars[c] = ci
		}
	}
	space := e.chars[' '].Width
	e.params = Params{
		Space:        space,
		SpaceStretch: space / 2,
		SpaceShrink:  space / 3,
		XHeight:      e.chars['x'].Height,
		Quad:         scaled.FromPoints(size),
		ExtraSpace:   space / 3,
	}
	return t.add(e)
}
