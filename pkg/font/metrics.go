// Package font provides the character metrics the packers measure with.
//
// Packing only needs three numbers per glyph: width, height and depth. They
// come from a Metrics implementation; Table is the one this module ships,
// filled either with fixed cell metrics or from a TrueType face.
package font

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"

	"galley/pkg/scaled"
)

// ID identifies a font in a Metrics source.
type ID int32

// NullFont is the font with no characters.
const NullFont ID = 0

// CharInfo holds the dimensions of one glyph.
type CharInfo struct {
	Width  scaled.Scaled
	Height scaled.Scaled
	Depth  scaled.Scaled
	Italic scaled.Scaled
}

// Params are the font-wide spacing parameters.
type Params struct {
	Space        scaled.Scaled
	SpaceStretch scaled.Scaled
	SpaceShrink  scaled.Scaled
	XHeight      scaled.Scaled
	Quad         scaled.Scaled
	ExtraSpace   scaled.Scaled
}

// Metrics looks up glyph dimensions.
type Metrics interface {
	// Char returns the dimensions of c in font f; ok is false when the font
	// has no such glyph.
	Char(f ID, c rune) (info CharInfo, ok bool)
	// Params returns the spacing parameters of f.
	Params(f ID) Params
	// Name returns the identifier used when displaying f.
	Name(f ID) string
}

type entry struct {
	name   string
	params Params
	cell   *CharInfo // every glyph has these metrics when set
	face   font.Face

	mu    sync.RWMutex
	chars map[rune]CharInfo
}

// Table is an in-memory Metrics source. It is safe for concurrent lookups.
type Table struct {
	mu    sync.RWMutex
	fonts []*entry
	names map[string]ID
}

// NewTable returns a table holding only NullFont.
func NewTable() *Table {
	t := &Table{names: map[string]ID{}}
	t.add(&entry{name: "nullfont", chars: map[rune]CharInfo{}})
	return t
}

func (t *Table) add(e *entry) ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := ID(len(t.fonts))
	t.fonts = append(t.fonts, e)
	t.names[e.name] = id
	return id
}

func (t *Table) entry(f ID) *entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if f < 0 || int(f) >= len(t.fonts) {
		return nil
	}
	return t.fonts[f]
}

// AddFont registers a font with explicit per-glyph metrics.
func (t *Table) AddFont(name string, chars map[rune]CharInfo, p Params) ID {
	cp := make(map[rune]CharInfo, len(chars))
	for r, ci := range chars {
		cp[r] = ci
	}
	return t.add(&entry{name: name, params: p, chars: cp})
}

// AddFixed registers a font in which every glyph has the same cell metrics,
// the way the Ahem test font is built.
func (t *Table) AddFixed(name string, cell CharInfo, p Params) ID {
	c := cell
	return t.add(&entry{name: name, params: p, cell: &c, chars: map[rune]CharInfo{}})
}

// Lookup returns the id registered under name.
func (t *Table) Lookup(name string) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.names[name]
	return id, ok
}

// Char implements Metrics.
func (t *Table) Char(f ID, c rune) (CharInfo, bool) {
	e := t.entry(f)
	if e == nil {
		return CharInfo{}, false
	}
	if e.cell != nil {
		return *e.cell, true
	}
	e.mu.RLock()
	ci, ok := e.chars[c]
	e.mu.RUnlock()
	if ok || e.face == nil {
		return ci, ok
	}
	// Faces are not safe for concurrent use, so measure under the write lock.
	e.mu.Lock()
	defer e.mu.Unlock()
	if ci, ok = e.chars[c]; ok {
		return ci, true
	}
	ci, ok = measureGlyph(e.face, c)
	if !ok {
		return CharInfo{}, false
	}
	e.chars[c] = ci
	return ci, true
}

// Params implements Metrics.
func (t *Table) Params(f ID) Params {
	if e := t.entry(f); e != nil {
		e.mu.RLock()
		defer e.mu.RUnlock()
		return e.params
	}
	return Params{}
}

// SetParams replaces the spacing parameters of f.
func (t *Table) SetParams(f ID, p Params) {
	if e := t.entry(f); e != nil {
		e.mu.Lock()
		e.params = p
		e.mu.Unlock()
	}
}

// Name implements Metrics.
func (t *Table) Name(f ID) string {
	if e := t.entry(f); e != nil {
		return e.name
	}
	return fmt.Sprintf("font%d", f)
}

// Face returns the rasterizable face behind f, or nil for fonts that only
// carry metrics.
func (t *Table) Face(f ID) font.Face {
	if e := t.entry(f); e != nil {
		return e.face
	}
	return nil
}
