// Package vlist builds vertical lists out of boxes, inserting the interline
// glue that keeps baselines a constant distance apart.
package vlist

import (
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/scaled"
)

// IgnoreDepth is the PrevDepth value that suppresses interline glue before
// the next box.
const IgnoreDepth scaled.Scaled = -1000 * scaled.Unity

// Builder accumulates a vertical list.
type Builder struct {
	Arena *node.Arena
	// BaselineSkip is the desired distance between consecutive baselines.
	BaselineSkip glue.Spec
	// LineSkip is used instead when boxes would come closer than
	// LineSkipLimit.
	LineSkip      glue.Spec
	LineSkipLimit scaled.Scaled
	// PrevDepth is the depth of the last box appended.
	PrevDepth scaled.Scaled

	list []node.Handle
}

// NewBuilder returns an empty builder.
func NewBuilder(a *node.Arena, baselineSkip, lineSkip glue.Spec, lineSkipLimit scaled.Scaled) *Builder {
	return &Builder{
		Arena:         a,
		BaselineSkip:  baselineSkip,
		LineSkip:      lineSkip,
		LineSkipLimit: lineSkipLimit,
		PrevDepth:     IgnoreDepth,
	}
}

// Append adds box b, preceded by interline glue unless PrevDepth is
// IgnoreDepth. The glue brings the baseline of b BaselineSkip below the
// previous one, or is LineSkip if that would leave less than LineSkipLimit
// between the boxes.
func (b *Builder) Append(box node.Handle) {
	it := b.Arena.Get(box)
	height, depth := it.Height, it.Depth
	if b.PrevDepth > IgnoreDepth {
		d := b.BaselineSkip.Width - b.PrevDepth - height
		var g node.Handle
		if d < b.LineSkipLimit {
			g = b.Arena.NewGlue(b.LineSkip)
		} else {
			s := b.BaselineSkip
			s.Width = d
			g = b.Arena.NewGlue(s)
		}
		b.list = append(b.list, g)
	}
	b.list = append(b.list, box)
	b.PrevDepth = depth
}

// AppendPenalty adds a penalty between lines.
func (b *Builder) AppendPenalty(p int) {
	b.list = append(b.list, b.Arena.NewPenalty(p))
}

// AppendItem adds any other vertical material. A rule suppresses the
// interline glue before the next box.
func (b *Builder) AppendItem(h node.Handle) {
	if b.Arena.Get(h).Type == node.Rule {
		b.PrevDepth = IgnoreDepth
	}
	b.list = append(b.list, h)
}

// List returns the list built so far. The builder keeps appending to the
// same backing list.
func (b *Builder) List() []node.Handle {
	return b.list
}
