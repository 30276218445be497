package pack

import (
	"errors"
	"fmt"

	"galley/pkg/node"
	"galley/pkg/scaled"
)

// ErrConfusion reports an item that can never legally reach the routine it
// was handed to, such as a character in a vertical list. It signals a bug in
// whatever assembled the list, not bad input.
var ErrConfusion = errors.New("this can't happen")

func confusion(where string, format string, args ...any) error {
	return fmt.Errorf("%w (%s): %s", ErrConfusion, where, fmt.Sprintf(format, args...))
}

// Kind classifies a box report.
type Kind uint8

const (
	Underfull Kind = iota
	Loose
	Tight
	Overfull
)

func (k Kind) String() string {
	switch k {
	case Underfull:
		return "Underfull"
	case Loose:
		return "Loose"
	case Tight:
		return "Tight"
	case Overfull:
		return "Overfull"
	}
	return "?"
}

// Axis is the direction a box was packed in.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vbox"
	}
	return "hbox"
}

// Provenance says where the material of a box came from.
type Provenance struct {
	// OutputActive is set while an output routine is running.
	OutputActive bool
	// BeginLine is the source line where the enclosing paragraph began, or
	// the negated line of the enclosing alignment. Zero means neither.
	BeginLine int
	// Line is the current source line.
	Line int
}

func (p Provenance) String() string {
	switch {
	case p.OutputActive:
		return "has occurred while \\output is active"
	case p.BeginLine > 0:
		return fmt.Sprintf("in paragraph at lines %d--%d", p.BeginLine, p.Line)
	case p.BeginLine < 0:
		return fmt.Sprintf("in alignment at lines %d--%d", -p.BeginLine, p.Line)
	}
	return fmt.Sprintf("detected at line %d", p.Line)
}

// Diagnostic is an advisory report about a box that came out worse than the
// configured thresholds allow. The box is produced regardless.
type Diagnostic struct {
	Kind    Kind
	Axis    Axis
	Badness int
	// Amount is how far an overfull box sticks out; zero for other kinds.
	Amount     scaled.Scaled
	Provenance Provenance
	Box        node.Handle
}

func (d Diagnostic) String() string {
	if d.Kind == Overfull {
		what := "wide"
		if d.Axis == Vertical {
			what = "high"
		}
		return fmt.Sprintf("Overfull \\%v (%vpt too %s) %v", d.Axis, d.Amount, what, d.Provenance)
	}
	return fmt.Sprintf("%v \\%v (badness %d) %v", d.Kind, d.Axis, d.Badness, d.Provenance)
}

// Diagnostics is what a pack call reports besides the box itself.
type Diagnostics struct {
	// Badness of the packed box: 0 when the glue is set naturally or with
	// infinite glue, InfBad when the box is overfull.
	Badness int
	Reports []Diagnostic
}
