package linebreak

import (
	"galley/pkg/pack"
)

// Fitness classifies a line by how far its glue is stretched or shrunk.
type Fitness uint8

const (
	VeryLoose Fitness = iota
	Loose
	Decent
	Tight
	numFitness
)

func (f Fitness) String() string {
	switch f {
	case VeryLoose:
		return "very loose"
	case Loose:
		return "loose"
	case Decent:
		return "decent"
	case Tight:
		return "tight"
	}
	return "?"
}

// BreakType says whether a line ends at a discretionary.
type BreakType uint8

const (
	Unhyphenated BreakType = iota
	Hyphenated
)

func (t BreakType) String() string {
	if t == Hyphenated {
		return "hyphenated"
	}
	return "unhyphenated"
}

// awfulBad is larger than any demerits a paragraph can accumulate.
const awfulBad int64 = 1 << 62

// passive is a materialized breakpoint. Following prev leads back to the
// start of the paragraph along the best path ending here.
type passive struct {
	serial  int
	pos     int
	typ     BreakType
	fitness Fitness
	badness int
	total   int64
	prev    *passive
}

// active is a breakpoint from which the next line may still start.
type active struct {
	// line is the number of the line that starts here.
	line    int
	fitness Fitness
	// typ is the type of the break that ended the previous line.
	typ   BreakType
	total int64
	brk   *passive // nil at the start of the paragraph

	// start is the first item of the line that begins here and carry the
	// width of post-break material in front of it.
	start int
	carry pack.Widths
}

// candidate is the best way found so far to reach the current breakpoint
// with a given fitness.
type candidate struct {
	demerits int64
	badness  int
	place    *passive
	line     int
}

// classBest tracks the candidates of one line-number class.
type classBest struct {
	byFitness [numFitness]candidate
	minimum   int64
}

func (c *classBest) reset() {
	for i := range c.byFitness {
		c.byFitness[i] = candidate{demerits: awfulBad}
	}
	c.minimum = awfulBad
}

// record keeps d if it is no worse than what fit already has.
func (c *classBest) record(fit Fitness, d int64, b int, place *passive, line int) {
	if d > c.byFitness[fit].demerits {
		return
	}
	c.byFitness[fit] = candidate{demerits: d, badness: b, place: place, line: line}
	if d < c.minimum {
		c.minimum = d
	}
}
