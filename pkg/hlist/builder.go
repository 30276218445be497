// Package hlist turns text into horizontal lists of characters, interword
// glue and discretionaries, ready for the line breaker.
package hlist

import (
	"go.uber.org/zap"

	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/text"
)

// Builder appends items set in one font to horizontal lists.
type Builder struct {
	Packer *pack.Packer
	Font   font.ID
	Logger *zap.Logger
}

// New returns a builder for font f. A nil logger discards warnings.
func New(p *pack.Packer, f font.ID, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Packer: p, Font: f, Logger: logger}
}

// SpaceSpec is the interword glue of the builder's font.
func (b *Builder) SpaceSpec() glue.Spec {
	p := b.Packer.Metrics.Params(b.Font)
	return glue.Spec{Width: p.Space, Stretch: p.SpaceStretch, Shrink: p.SpaceShrink}
}

// Append adds the items for s to list and returns the extended list.
//
// Words become characters; white space becomes interword glue; "~" becomes
// glue that cannot be broken; an explicit hyphen is followed by an empty
// discretionary so a line may end after it; a soft hyphen becomes a
// discretionary whose pre-break material is a hyphen. Characters the font
// does not have are dropped with a warning.
func (b *Builder) Append(list []node.Handle, s string) []node.Handle {
	a := b.Packer.Arena
	for _, tok := range text.Split(s) {
		switch tok.Kind {
		case text.Word:
			for _, c := range tok.Text {
				if h, ok := b.char(c); ok {
					list = append(list, h)
				}
			}
		case text.Space:
			list = append(list, a.NewGlue(b.SpaceSpec()))
		case text.Tie:
			list = append(list, a.NewPenalty(node.InfPenalty), a.NewGlue(b.SpaceSpec()))
		case text.Hyphen:
			if h, ok := b.char('-'); ok {
				list = append(list, h, a.NewDisc(nil, nil, nil))
			}
		case text.SoftHyphen:
			var pre []node.Handle
			if h, ok := b.char('-'); ok {
				pre = append(pre, h)
			}
			list = append(list, a.NewDisc(pre, nil, nil))
		}
	}
	return list
}

// Text returns the items for s.
func (b *Builder) Text(s string) []node.Handle {
	return b.Append(nil, s)
}

// Word packs the characters of s into an hbox of natural width.
func (b *Builder) Word(s string) (node.Handle, pack.Diagnostics, error) {
	var chars []node.Handle
	for _, c := range s {
		if h, ok := b.char(c); ok {
			chars = append(chars, h)
		}
	}
	return b.Packer.HPackNatural(chars)
}

func (b *Builder) char(c rune) (node.Handle, bool) {
	m := b.Packer.Metrics
	if _, ok := m.Char(b.Font, c); !ok {
		b.Logger.Warn("missing character",
			zap.String("char", string(c)), zap.String("font", m.Name(b.Font)))
		return node.None, false
	}
	return b.Packer.Arena.NewChar(b.Font, c), true
}
