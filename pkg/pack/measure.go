package pack

import (
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/scaled"
)

// Widths is the horizontal extent of some material: a natural width plus
// stretch and shrink per order of infinity.
type Widths struct {
	Natural scaled.Scaled
	Stretch glue.Totals
	Shrink  glue.Totals
}

// Add returns w + o.
func (w Widths) Add(o Widths) Widths {
	w.Natural += o.Natural
	for i := range w.Stretch {
		w.Stretch[i] += o.Stretch[i]
		w.Shrink[i] += o.Shrink[i]
	}
	return w
}

// Sub returns w - o.
func (w Widths) Sub(o Widths) Widths {
	w.Natural -= o.Natural
	for i := range w.Stretch {
		w.Stretch[i] -= o.Stretch[i]
		w.Shrink[i] -= o.Shrink[i]
	}
	return w
}

// AddGlue returns w with one more glue item of spec s.
func (w Widths) AddGlue(s glue.Spec) Widths {
	w.Natural += s.Width
	w.Stretch[s.StretchOrder] += s.Stretch
	w.Shrink[s.ShrinkOrder] += s.Shrink
	return w
}

// Measure returns the contribution of item h to the width of an hbox, the
// same amounts HPack accumulates for it. A discretionary counts as its
// unbroken material. Items that HPack skips or moves out contribute nothing.
func (p *Packer) Measure(h node.Handle) (Widths, error) {
	it := p.Arena.Get(h)
	switch it.Type {
	case node.Char, node.Ligature:
		ci, err := p.char(it, "hpack")
		if err != nil {
			return Widths{}, err
		}
		return Widths{Natural: ci.Width}, nil
	case node.HList, node.VList, node.Rule:
		return Widths{Natural: dim(it.Width)}, nil
	case node.Glue:
		return Widths{}.AddGlue(it.Spec), nil
	case node.Kern:
		return Widths{Natural: it.Width}, nil
	case node.Disc:
		return p.MeasureList(it.NoBreak)
	}
	return Widths{}, nil
}

// MeasureList sums Measure over l.
func (p *Packer) MeasureList(l []node.Handle) (Widths, error) {
	var total Widths
	for _, h := range l {
		w, err := p.Measure(h)
		if err != nil {
			return Widths{}, err
		}
		total = total.Add(w)
	}
	return total, nil
}

// dim reads a dimension that may be running; running dimensions add nothing.
func dim(v scaled.Scaled) scaled.Scaled {
	if v == node.Running {
		return 0
	}
	return v
}
