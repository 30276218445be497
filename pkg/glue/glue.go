// Package glue resolves stretchable and shrinkable space.
//
// Glue carries a natural width and independent stretch and shrink amounts,
// each tagged with an order of infinity. When a list is set to a given size
// only the highest order that has a nonzero total takes part; every lower
// order is ignored completely.
package glue

import (
	"math"

	"galley/pkg/scaled"
)

// Order is an order of infinity for stretch or shrink.
type Order uint8

const (
	Normal Order = iota // finite
	Fil                 // first order infinity
	Fill                // second order infinity
	Filll               // third order infinity
)

// NumOrders is the number of glue orders.
const NumOrders = 4

func (o Order) String() string {
	switch o {
	case Normal:
		return ""
	case Fil:
		return "fil"
	case Fill:
		return "fill"
	case Filll:
		return "filll"
	}
	return "?"
}

// Sign says whether the glue of a box is being stretched or shrunk.
type Sign uint8

const (
	SignNormal Sign = iota
	Stretching
	Shrinking
)

func (s Sign) String() string {
	switch s {
	case Stretching:
		return "stretching"
	case Shrinking:
		return "shrinking"
	}
	return "normal"
}

// Spec is a glue specification.
type Spec struct {
	Width        scaled.Scaled
	Stretch      scaled.Scaled
	StretchOrder Order
	Shrink       scaled.Scaled
	ShrinkOrder  Order
}

// IsZero reports whether the spec is 0pt plus 0pt minus 0pt.
func (s Spec) IsZero() bool {
	return s.Width == 0 && s.Stretch == 0 && s.Shrink == 0
}

// Totals holds one accumulated amount per order of infinity.
type Totals [NumOrders]scaled.Scaled

// Highest returns the highest order with a nonzero total, or Normal when
// every total is zero.
func (t Totals) Highest() Order {
	for o := Filll; o > Normal; o-- {
		if t[o] != 0 {
			return o
		}
	}
	return Normal
}

// Resolve picks the governing order for the given totals and the ratio that
// makes up excess with glue of that order. When every total is zero the
// result is (Normal, 0): there is nothing that can absorb the excess.
func Resolve(t Totals, excess scaled.Scaled) (Order, float64) {
	o := t.Highest()
	if t[o] == 0 {
		return Normal, 0
	}
	return o, float64(excess) / float64(t[o])
}

// Set returns the width that glue s occupies inside a box whose glue is set
// with the given sign, order and ratio. Glue of other orders keeps its
// natural width.
func Set(s Spec, sign Sign, order Order, ratio float64) scaled.Scaled {
	w := s.Width
	switch sign {
	case Stretching:
		if s.StretchOrder == order {
			w += scaled.Scaled(math.Round(ratio * float64(s.Stretch)))
		}
	case Shrinking:
		if s.ShrinkOrder == order {
			w -= scaled.Scaled(math.Round(ratio * float64(s.Shrink)))
		}
	}
	return w
}
