// Package pack computes the dimensions of boxes from their contents and
// sets their glue.
//
// HPack packs a horizontal list to a given width and VPackage packs a
// vertical list to a given height. Either the size is prescribed (Exactly) or
// added to the natural size (Additional). When the natural size differs from
// the target, the glue of the highest order of infinity that is present
// makes up the difference. Boxes that come out too loose, too tight or too
// wide are reported as Diagnostics; they are produced regardless.
package pack

import (
	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/scaled"
)

// Mode says how the size handed to a packer is interpreted.
type Mode uint8

const (
	// Exactly packs to the given size.
	Exactly Mode = iota
	// Additional packs to the natural size plus the given amount.
	Additional
)

// Params are the thresholds for box reports.
type Params struct {
	// HBadness and VBadness: boxes with a larger badness are reported.
	HBadness int
	VBadness int
	// HFuzz and VFuzz: overfull boxes that stick out by less are not reported.
	HFuzz scaled.Scaled
	VFuzz scaled.Scaled
	// OverfullRule is the width of the rule appended to overfull hboxes;
	// zero disables it.
	OverfullRule scaled.Scaled
}

// PlainParams returns the thresholds of the plain format.
func PlainParams() Params {
	return Params{
		HBadness:     1000,
		VBadness:     1000,
		HFuzz:        scaled.FromPoints(0.1),
		VFuzz:        scaled.FromPoints(0.1),
		OverfullRule: scaled.FromInt(5),
	}
}

// Packer packs lists of items held in Arena. A Packer keeps no state between
// calls besides its configuration.
type Packer struct {
	Arena      *node.Arena
	Metrics    font.Metrics
	Params     Params
	Provenance Provenance
}

// New returns a packer over arena a measuring characters with m.
func New(a *node.Arena, m font.Metrics, p Params) *Packer {
	return &Packer{Arena: a, Metrics: m, Params: p}
}

func (p *Packer) char(it *node.Item, where string) (font.CharInfo, error) {
	if p.Metrics == nil {
		return font.CharInfo{}, confusion(where, "no font metrics for character %q", it.Glyph)
	}
	ci, ok := p.Metrics.Char(it.Font, it.Glyph)
	if !ok {
		return font.CharInfo{}, confusion(where, "font %s has no character %q",
			p.Metrics.Name(it.Font), it.Glyph)
	}
	return ci, nil
}

type hstate struct {
	x, h, d scaled.Scaled
	stretch glue.Totals
	shrink  glue.Totals
}

func (st *hstate) height(v scaled.Scaled) {
	if v > st.h {
		st.h = v
	}
}

func (st *hstate) depth(v scaled.Scaled) {
	if v > st.d {
		st.d = v
	}
}

// hscan accumulates the items of list. Items that are kept in the box are
// appended to keep; when keep is nil the list is only measured.
func (p *Packer) hscan(st *hstate, list []node.Handle, keep *[]node.Handle, sink *[]node.Handle) error {
	a := p.Arena
	for _, hd := range list {
		it := a.Get(hd)
		switch it.Type {
		case node.Char, node.Ligature:
			ci, err := p.char(it, "hpack")
			if err != nil {
				return err
			}
			st.x += ci.Width
			st.height(ci.Height)
			st.depth(ci.Depth)
		case node.HList, node.VList:
			st.x += it.Width
			st.height(it.Height - it.Shift)
			st.depth(it.Depth + it.Shift)
		case node.Rule:
			// Running dimensions are far below zero and never win a max.
			st.x += dim(it.Width)
			st.height(it.Height)
			st.depth(it.Depth)
		case node.Ins, node.Mark, node.Adjust:
			if keep != nil && sink != nil {
				if it.Type == node.Adjust {
					*sink = append(*sink, it.List...)
					it.List = nil
					a.Free(hd)
				} else {
					*sink = append(*sink, hd)
				}
				continue
			}
		case node.Glue:
			st.x += it.Spec.Width
			st.stretch[it.Spec.StretchOrder] += it.Spec.Stretch
			st.shrink[it.Spec.ShrinkOrder] += it.Spec.Shrink
			if it.Leaders != node.NoLeaders && it.Leader != node.None {
				l := a.Get(it.Leader)
				st.height(l.Height)
				st.depth(l.Depth)
			}
		case node.Kern:
			st.x += it.Width
		case node.Disc:
			if err := p.hscan(st, it.NoBreak, nil, nil); err != nil {
				return err
			}
		case node.Penalty:
		}
		if keep != nil {
			*keep = append(*keep, hd)
		}
	}
	return nil
}

// HPack packs list into a new hbox of width w (Exactly) or natural width
// plus w (Additional). Insertions, marks and vadjust material are moved in
// order onto *sink when sink is non-nil; the material of a vadjust is
// spliced in without its wrapper. The returned box owns the remaining items.
func (p *Packer) HPack(list []node.Handle, w scaled.Scaled, m Mode, sink *[]node.Handle) (node.Handle, Diagnostics, error) {
	var st hstate
	contents := make([]node.Handle, 0, len(list))
	if err := p.hscan(&st, list, &contents, sink); err != nil {
		return node.None, Diagnostics{}, err
	}
	if m == Additional {
		w += st.x
	}
	box := node.Item{Type: node.HList, Width: w, Height: st.h, Depth: st.d, Leader: node.None}
	excess := w - st.x
	diag, overfull := p.setGlue(&box, excess, st.stretch, st.shrink, len(contents) > 0, Horizontal)
	if overfull && p.Params.OverfullRule > 0 && diag.Reports[0].Amount > p.Params.HFuzz {
		contents = append(contents, p.Arena.Add(node.Item{
			Type:   node.Rule,
			Width:  p.Params.OverfullRule,
			Height: node.Running,
			Depth:  node.Running,
			Leader: node.None,
		}))
	}
	box.List = contents
	h := p.Arena.Add(box)
	for i := range diag.Reports {
		diag.Reports[i].Box = h
	}
	return h, diag, nil
}

// HPackNatural packs list at its natural width.
func (p *Packer) HPackNatural(list []node.Handle) (node.Handle, Diagnostics, error) {
	return p.HPack(list, 0, Additional, nil)
}

// setGlue fills in the glue setting of box for the given excess and reports
// on the outcome. overfull is set when an Overfull report was issued.
func (p *Packer) setGlue(box *node.Item, excess scaled.Scaled, stretch, shrink glue.Totals,
	nonEmpty bool, axis Axis) (diag Diagnostics, overfull bool) {
	badnessLimit, fuzz := p.Params.HBadness, p.Params.HFuzz
	if axis == Vertical {
		badnessLimit, fuzz = p.Params.VBadness, p.Params.VFuzz
	}
	report := func(k Kind, b int, amount scaled.Scaled) {
		diag.Reports = append(diag.Reports, Diagnostic{
			Kind: k, Axis: axis, Badness: b, Amount: amount, Provenance: p.Provenance, Box: node.None,
		})
	}

	box.GlueSign, box.GlueOrder, box.GlueSet = glue.SignNormal, glue.Normal, 0
	switch {
	case excess == 0:
		return diag, false

	case excess > 0:
		o, ratio := glue.Resolve(stretch, excess)
		box.GlueOrder = o
		if stretch[o] != 0 {
			box.GlueSign, box.GlueSet = glue.Stretching, ratio
		}
		if o == glue.Normal && nonEmpty {
			diag.Badness = glue.Badness(excess, stretch[glue.Normal])
			if diag.Badness > badnessLimit {
				if diag.Badness > 100 {
					report(Underfull, diag.Badness, 0)
				} else {
					report(Loose, diag.Badness, 0)
				}
			}
		}
		return diag, false

	default:
		o, ratio := glue.Resolve(shrink, -excess)
		box.GlueOrder = o
		if shrink[o] != 0 {
			box.GlueSign, box.GlueSet = glue.Shrinking, ratio
		}
		if o == glue.Normal && nonEmpty {
			if shrink[glue.Normal] < -excess {
				diag.Badness = glue.InfBad
				box.GlueSet = 1.0 // the most glue can shrink
				if amount := -excess - shrink[glue.Normal]; amount > fuzz || badnessLimit < 100 {
					report(Overfull, diag.Badness, amount)
					return diag, true
				}
				return diag, false
			}
			diag.Badness = glue.Badness(-excess, shrink[glue.Normal])
			if diag.Badness > badnessLimit {
				report(Tight, diag.Badness, 0)
			}
		}
		return diag, false
	}
}

// VPack packs list into a vbox of unconstrained depth.
func (p *Packer) VPack(list []node.Handle, h scaled.Scaled, m Mode) (node.Handle, Diagnostics, error) {
	return p.VPackage(list, h, m, scaled.MaxDimen)
}

// VPackage packs list into a new vbox of height h (Exactly) or natural
// height plus h (Additional). When the depth of the last item exceeds
// maxDepth the reference point moves down: the excess depth becomes height
// and the depth is maxDepth.
func (p *Packer) VPackage(list []node.Handle, h scaled.Scaled, m Mode, maxDepth scaled.Scaled) (node.Handle, Diagnostics, error) {
	a := p.Arena
	var (
		w, d, x         scaled.Scaled
		stretch, shrink glue.Totals
	)
	for _, hd := range list {
		it := a.Get(hd)
		switch it.Type {
		case node.Char, node.Ligature, node.Disc:
			return node.None, Diagnostics{}, confusion("vpack", "%v item in a vertical list", it.Type)
		case node.HList, node.VList:
			x += d + it.Height
			d = it.Depth
			if it.Width+it.Shift > w {
				w = it.Width + it.Shift
			}
		case node.Rule:
			x += d + dim(it.Height)
			d = dim(it.Depth)
			if it.Width > w {
				w = it.Width
			}
		case node.Glue:
			x += d
			d = 0
			x += it.Spec.Width
			stretch[it.Spec.StretchOrder] += it.Spec.Stretch
			shrink[it.Spec.ShrinkOrder] += it.Spec.Shrink
			if it.Leaders != node.NoLeaders && it.Leader != node.None {
				if lw := a.Get(it.Leader).Width; lw > w {
					w = lw
				}
			}
		case node.Kern:
			x += d + it.Width
			d = 0
		}
	}
	box := node.Item{Type: node.VList, Width: w, List: append([]node.Handle(nil), list...), Leader: node.None}
	if d > maxDepth {
		x += d - maxDepth
		box.Depth = maxDepth
	} else {
		box.Depth = d
	}
	if m == Additional {
		h += x
	}
	box.Height = h
	diag, _ := p.setGlue(&box, h-x, stretch, shrink, len(list) > 0, Vertical)
	hd := a.Add(box)
	for i := range diag.Reports {
		diag.Reports[i].Box = hd
	}
	return hd, diag, nil
}
