// Package node defines the items that make up horizontal and vertical lists
// and the arena that owns them.
//
// Items are addressed by Handle. None is the null handle. A list is an ordered
// slice of handles; when a list is packed into a box the box takes ownership
// of it.
package node

import (
	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/scaled"
)

// ItemType identifies the variant stored in an Item.
type ItemType uint8

const (
	Char     ItemType = iota // a glyph of a font
	Ligature                 // a glyph standing for several characters
	HList                    // a horizontal box
	VList                    // a vertical box
	Rule                     // a solid rectangle
	Ins                      // insertion material, migrates out of hboxes
	Mark                     // a mark, migrates out of hboxes
	Adjust                   // vadjust material, migrates out of hboxes
	Disc                     // a discretionary break
	Glue                     // stretchable space
	Kern                     // fixed space
	Penalty                  // a break penalty
)

var typeNames = [...]string{"char", "ligature", "hlist", "vlist", "rule", "ins", "mark",
	"adjust", "disc", "glue", "kern", "penalty"}

func (t ItemType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsBox reports whether the type is HList or VList.
func (t ItemType) IsBox() bool { return t == HList || t == VList }

// Handle addresses an item in an Arena.
type Handle int32

// None is the null handle.
const None Handle = -1

// Running marks a rule dimension that takes the size of the enclosing box.
const Running scaled.Scaled = -1 << 30

const (
	// InfPenalty forbids a break.
	InfPenalty = 10000
	// EjectPenalty forces a break.
	EjectPenalty = -InfPenalty
)

// LeaderKind distinguishes ordinary glue from the three leader flavours.
type LeaderKind uint8

const (
	NoLeaders LeaderKind = iota
	ALeaders             // aligned
	CLeaders             // centered
	XLeaders             // expanded
)

// Item is one element of a list. Type decides which fields are meaningful.
type Item struct {
	Type ItemType

	// Char, Ligature
	Font  font.ID
	Glyph rune
	Text  string // Ligature: the characters the glyph replaces

	// HList, VList, Rule; Kern uses Width only
	Width  scaled.Scaled
	Height scaled.Scaled
	Depth  scaled.Scaled
	Shift  scaled.Scaled // HList, VList

	// HList, VList: glue setting and contents; Ins, Adjust: contents
	GlueSign  glue.Sign
	GlueOrder glue.Order
	GlueSet   float64
	List      []Handle

	// Glue
	Spec    glue.Spec
	Leaders LeaderKind
	Leader  Handle // box or rule repeated by leaders, None otherwise

	// Kern: discardable at a line break
	Explicit bool

	// Penalty
	Penalty int

	// Disc
	Pre     []Handle
	Post    []Handle
	NoBreak []Handle

	// Ins
	InsNumber int
	// Mark
	Mark string
}

// IsDiscardable reports whether the item vanishes when it follows a line
// break: glue, penalties and explicit kerns.
func (it *Item) IsDiscardable() bool {
	switch it.Type {
	case Glue, Penalty:
		return true
	case Kern:
		return it.Explicit
	}
	return false
}
