package linebreak

import (
	"galley/pkg/glue"
	"galley/pkg/pack"
	"galley/pkg/scaled"
)

// Params configure a paragraph break. Every value is explicit; PlainParams
// returns the values of the plain format.
type Params struct {
	// Pretolerance is the badness limit of the first pass, which does not
	// break at discretionaries. A negative value skips that pass.
	Pretolerance int
	// Tolerance is the badness limit once discretionaries are allowed.
	Tolerance int
	// EmergencyStretch, when positive, adds a last pass that pretends every
	// line has this much more finite stretch.
	EmergencyStretch scaled.Scaled
	// AllowOverfull lets the last pass accept an overfull line when nothing
	// else keeps the search alive. Without it a paragraph that cannot be set
	// within Tolerance fails with ErrNoFeasibleBreak.
	AllowOverfull bool

	HyphenPenalty   int // break at a discretionary with pre-break material
	ExHyphenPenalty int // break at a discretionary without it
	LinePenalty     int // added to the badness of every line

	AdjDemerits          int64 // adjacent lines of incompatible fitness
	DoubleHyphenDemerits int64 // two consecutive hyphenated lines
	FinalHyphenDemerits  int64 // hyphenated second-to-last line

	// Looseness asks for that many more (or fewer) lines than optimal.
	Looseness int

	LeftSkip    glue.Spec
	RightSkip   glue.Spec
	ParFillSkip glue.Spec

	Shape Shape
	// PrevGraf is the number of lines of the paragraph already set.
	PrevGraf int
	// Provenance is attached to the reports of the packed lines. When it is
	// zero the packer's own provenance is used.
	Provenance pack.Provenance
}

// PlainParams returns the plain format's paragraph parameters for lines of
// width hsize.
func PlainParams(hsize scaled.Scaled) Params {
	return Params{
		Pretolerance:         100,
		Tolerance:            200,
		AllowOverfull:        true,
		HyphenPenalty:        50,
		ExHyphenPenalty:      50,
		LinePenalty:          10,
		AdjDemerits:          10000,
		DoubleHyphenDemerits: 10000,
		FinalHyphenDemerits:  5000,
		ParFillSkip:          glue.Spec{Stretch: scaled.Unity, StretchOrder: glue.Fil},
		Shape:                Shape{Width: hsize},
	}
}

// LineSpec is the width and left indentation of one line.
type LineSpec struct {
	Width  scaled.Scaled
	Indent scaled.Scaled
}

// Shape gives the width and indentation of each line. Line n (counting from
// 1) uses Lines[n-1] while n <= len(Lines) and Width/Indent afterwards.
type Shape struct {
	Lines  []LineSpec
	Width  scaled.Scaled
	Indent scaled.Scaled
}

// Line returns width and indentation of line n.
func (s Shape) Line(n int) LineSpec {
	if n >= 1 && n <= len(s.Lines) {
		return s.Lines[n-1]
	}
	return LineSpec{Width: s.Width, Indent: s.Indent}
}

// lastSpecial is the last line whose width may differ from Width.
func (s Shape) lastSpecial() int { return len(s.Lines) }

// HangShape builds hanging indentation for lines of width hsize. With
// after >= 0 the lines after the first after lines are indented; with
// after < 0 the first |after| lines are. A positive indent indents on the
// left, a negative one on the right.
func HangShape(hsize, indent scaled.Scaled, after int) Shape {
	hung := LineSpec{Width: hsize - indent.Abs()}
	if indent > 0 {
		hung.Indent = indent
	}
	full := LineSpec{Width: hsize}
	if after < 0 {
		lines := make([]LineSpec, -after)
		for i := range lines {
			lines[i] = hung
		}
		return Shape{Lines: lines, Width: full.Width}
	}
	lines := make([]LineSpec, after)
	for i := range lines {
		lines[i] = full
	}
	return Shape{Lines: lines, Width: hung.Width, Indent: hung.Indent}
}
