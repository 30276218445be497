// Package linebreak breaks a horizontal list into lines.
//
// The breaker looks at every legal breakpoint of the paragraph and keeps the
// set of earlier breakpoints from which a line could still reach it (the
// active list). Each candidate line is rated by its badness, the penalty at
// its end and the way it fits next to its predecessor; the sequence of
// breaks with the fewest total demerits wins. Up to three passes are made
// with increasingly permissive settings. The chosen lines are packed with
// package pack.
package linebreak

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/scaled"
)

// ErrNoFeasibleBreak is returned when no pass finds a way to set the
// paragraph within its tolerance.
var ErrNoFeasibleBreak = errors.New("no feasible line breaks")

// Pass identifies one attempt at breaking a paragraph.
type Pass uint8

const (
	FirstPass     Pass = iota + 1 // Pretolerance, no discretionaries
	SecondPass                    // Tolerance, discretionaries allowed
	EmergencyPass                 // Tolerance plus EmergencyStretch
)

func (p Pass) String() string {
	switch p {
	case FirstPass:
		return "@firstpass"
	case SecondPass:
		return "@secondpass"
	case EmergencyPass:
		return "@emergencypass"
	}
	return "@pass"
}

type pass struct {
	kind      Pass
	threshold int
	hyphenate bool
	stretch   scaled.Scaled
	final     bool
}

// passes lists the passes p calls for, in order. The last one is final.
func (p Params) passes() []pass {
	var ps []pass
	if p.Pretolerance >= 0 {
		ps = append(ps, pass{kind: FirstPass, threshold: p.Pretolerance})
	}
	ps = append(ps, pass{kind: SecondPass, threshold: p.Tolerance, hyphenate: true})
	if p.EmergencyStretch > 0 {
		ps = append(ps, pass{kind: EmergencyPass, threshold: p.Tolerance, hyphenate: true,
			stretch: p.EmergencyStretch})
	}
	ps[len(ps)-1].final = true
	return ps
}

// Line is one packed line of a paragraph.
type Line struct {
	Box node.Handle
	// Adjust holds the insertions, marks and vadjust material that migrated
	// out of the line, to be placed after it in the enclosing vertical list.
	Adjust      []node.Handle
	Number      int
	Diagnostics pack.Diagnostics
}

// Break describes the breakpoint at the end of a line.
type Break struct {
	// Pos is the index of the break item in the prepared paragraph, or its
	// length for the end of the paragraph.
	Pos      int
	Type     BreakType
	Fitness  Fitness
	Badness  int
	Demerits int64
}

// Result is a broken paragraph.
type Result struct {
	Lines         []Line
	Breaks        []Break
	TotalDemerits int64
	Pass          Pass
}

// Breaker breaks paragraphs whose items live in Packer's arena. It holds no
// state between calls.
type Breaker struct {
	Packer *pack.Packer
	Params Params
	Logger *zap.Logger
}

// New returns a breaker. A nil logger disables tracing.
func New(p *pack.Packer, params Params, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{Packer: p, Params: params, Logger: logger}
}

// Break breaks the horizontal list into lines and packs them. The list is
// consumed: its items end up in the line boxes or are freed. When no pass
// succeeds the list is left as it was, except that infinite shrink in its
// glue has been made finite.
func (b *Breaker) Break(list []node.Handle) (*Result, error) {
	items, trailing := b.prepare(list)
	r, err := b.newRun(items)
	if err == nil {
		for _, ps := range b.Params.passes() {
			best, ok := r.run(ps)
			if !ok {
				continue
			}
			res, err := r.finish(best, ps.kind)
			if err == nil && trailing != node.None {
				b.Packer.Arena.Free(trailing)
			}
			return res, err
		}
		err = ErrNoFeasibleBreak
	}
	// Only the closing penalty and ParFillSkip belong to the breaker.
	b.Packer.Arena.FreeList(items[len(items)-2:])
	return nil, err
}

// prepare leaves out a trailing glue item and closes the paragraph with an
// infinite penalty and ParFillSkip. The trailing glue is returned so it can
// be freed once the paragraph is set.
func (b *Breaker) prepare(list []node.Handle) ([]node.Handle, node.Handle) {
	a := b.Packer.Arena
	items := make([]node.Handle, 0, len(list)+2)
	items = append(items, list...)
	trailing := node.None
	if n := len(items); n > 0 && a.Get(items[n-1]).Type == node.Glue {
		trailing = items[n-1]
		items = items[:n-1]
	}
	items = append(items, a.NewPenalty(node.InfPenalty), a.NewGlue(b.Params.ParFillSkip))
	return items, trailing
}

// discWidths holds the widths of a discretionary's break material.
type discWidths struct {
	pre, post pack.Widths
}

// run is the state of one Break call.
type run struct {
	b      *Breaker
	arena  *node.Arena
	log    *zap.Logger
	items  []node.Handle
	prefix []pack.Widths // prefix[i] is the width of items[:i]
	discs  map[int]discWidths

	leftSkip  glue.Spec
	rightSkip glue.Spec
	skips     pack.Widths

	easyLine int

	pass   pass
	bg     pack.Widths
	active []*active
	spare  []*active
	best   classBest
	serial int
}

const maxLine = math.MaxInt

func (b *Breaker) newRun(items []node.Handle) (*run, error) {
	r := &run{
		b:      b,
		arena:  b.Packer.Arena,
		log:    b.Logger,
		items:  items,
		prefix: make([]pack.Widths, len(items)+1),
		discs:  make(map[int]discWidths),
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	for i, h := range items {
		it := r.arena.Get(h)
		switch it.Type {
		case node.Glue:
			it.Spec = r.finiteShrink(it.Spec, i)
		case node.Disc:
			r.finiteList(it.Pre, i)
			r.finiteList(it.Post, i)
			r.finiteList(it.NoBreak, i)
		}
		w, err := b.Packer.Measure(h)
		if err != nil {
			return nil, err
		}
		r.prefix[i+1] = r.prefix[i].Add(w)
		if it.Type != node.Disc {
			continue
		}
		pre, err := b.Packer.MeasureList(it.Pre)
		if err != nil {
			return nil, err
		}
		post, err := b.Packer.MeasureList(it.Post)
		if err != nil {
			return nil, err
		}
		r.discs[i] = discWidths{pre: pre, post: post}
	}
	r.leftSkip = r.finiteShrink(b.Params.LeftSkip, -1)
	r.rightSkip = r.finiteShrink(b.Params.RightSkip, -1)
	r.skips = pack.Widths{}.AddGlue(r.leftSkip).AddGlue(r.rightSkip)

	r.easyLine = maxLine
	if b.Params.Looseness == 0 {
		r.easyLine = b.Params.Shape.lastSpecial()
	}
	return r, nil
}

// finiteShrink turns infinite shrink into finite shrink. Infinite shrink
// would let any amount of material fit on one line. The rewritten spec is
// what the line is later packed with, so rating and packing agree.
func (r *run) finiteShrink(s glue.Spec, pos int) glue.Spec {
	if s.Shrink == 0 || s.ShrinkOrder == glue.Normal {
		return s
	}
	r.log.Warn("infinite glue shrinkage found in a paragraph",
		zap.Int("pos", pos), zap.Stringer("order", s.ShrinkOrder))
	s.ShrinkOrder = glue.Normal
	return s
}

func (r *run) finiteList(l []node.Handle, pos int) {
	for _, h := range l {
		if it := r.arena.Get(h); it.Type == node.Glue {
			it.Spec = r.finiteShrink(it.Spec, pos)
		}
	}
}

// run makes one pass over the paragraph. It returns the chosen end node, and
// whether the pass settles the paragraph.
func (r *run) run(ps pass) (*active, bool) {
	r.pass = ps
	r.bg = r.skips
	r.bg.Stretch[glue.Normal] += ps.stretch
	r.active = append(r.active[:0], &active{
		line:    r.b.Params.PrevGraf + 1,
		fitness: Decent,
		typ:     Unhyphenated,
	})
	r.best.reset()
	r.serial = 0
	r.log.Debug(ps.kind.String(), zap.Int("threshold", ps.threshold))

	a := r.arena
	n := len(r.items)
	for cur := 0; cur < n && len(r.active) > 0; cur++ {
		it := a.Get(r.items[cur])
		switch it.Type {
		case node.Glue:
			if cur > 0 && !a.Get(r.items[cur-1]).IsDiscardable() {
				r.try(cur, 0, Unhyphenated)
			}
		case node.Kern:
			if it.Explicit && cur+1 < n && a.Get(r.items[cur+1]).Type == node.Glue {
				r.try(cur, 0, Unhyphenated)
			}
		case node.Penalty:
			r.try(cur, it.Penalty, Unhyphenated)
		case node.Disc:
			if ps.hyphenate {
				pi := r.b.Params.HyphenPenalty
				if len(it.Pre) == 0 {
					pi = r.b.Params.ExHyphenPenalty
				}
				r.try(cur, pi, Hyphenated)
			}
		}
	}
	if len(r.active) == 0 {
		return nil, false
	}
	r.try(n, node.EjectPenalty, Hyphenated)
	if len(r.active) == 0 {
		return nil, false
	}
	return r.choose()
}

// choose picks the end node with the fewest demerits, or the one that comes
// closest to the requested looseness.
func (r *run) choose() (*active, bool) {
	best := r.active[0]
	fewest := best.total
	for _, q := range r.active[1:] {
		if q.total < fewest {
			best, fewest = q, q.total
		}
	}
	looseness := r.b.Params.Looseness
	if looseness == 0 {
		return best, true
	}
	bestLine := best.line
	actual := 0
	for _, q := range r.active {
		diff := q.line - bestLine
		switch {
		case (diff < actual && looseness <= diff) || (diff > actual && looseness >= diff):
			best, actual, fewest = q, diff, q.total
		case diff == actual && q.total < fewest:
			best, fewest = q, q.total
		}
	}
	return best, actual == looseness || r.pass.final
}

// lineStart returns where the line after a break at cur begins and the
// width of the post-break material carried into it.
func (r *run) lineStart(cur int) (int, pack.Widths) {
	n := len(r.items)
	if cur >= n {
		return n, pack.Widths{}
	}
	s := cur + 1
	it := r.arena.Get(r.items[cur])
	if it.Type == node.Disc && len(it.Post) > 0 {
		return s, r.discs[cur].post
	}
	for s < n && r.arena.Get(r.items[s]).IsDiscardable() {
		s++
	}
	return s, pack.Widths{}
}

// try considers a break at position cur with penalty pi.
func (r *run) try(cur, pi int, typ BreakType) {
	if pi >= node.InfPenalty {
		return
	}
	if pi <= node.EjectPenalty {
		pi = node.EjectPenalty
	}
	n := len(r.items)
	var pre pack.Widths
	if typ == Hyphenated && cur < n {
		pre = r.discs[cur].pre
	}

	var (
		located   bool
		start     int
		carry     pack.Widths
		oldL      int
		lineWidth scaled.Scaled
	)
	next := r.spare[:0]
	for i := 0; ; i++ {
		var q *active
		l := maxLine
		if i < len(r.active) {
			q = r.active[i]
			l = q.line
		}
		if l > oldL {
			// A line-number class is complete: the best ways of getting here
			// become active nodes.
			if r.best.minimum < awfulBad && (oldL != r.easyLine || q == nil) {
				if !located {
					start, carry = r.lineStart(cur)
					located = true
				}
				next = r.materialize(next, cur, typ, start, carry)
			}
			if q == nil {
				break
			}
			if l > r.easyLine {
				oldL = maxLine - 1
			} else {
				oldL = l
			}
			lineWidth = r.b.Params.Shape.Line(l).Width
		}

		w := r.bg.Add(r.prefix[cur].Sub(r.prefix[q.start])).Add(q.carry).Add(pre)
		b, fit := rate(lineWidth-w.Natural, w)

		artificial, stays := false, true
		if b > glue.InfBad || pi == node.EjectPenalty {
			if r.pass.final && r.b.Params.AllowOverfull && r.best.minimum == awfulBad &&
				len(next) == 0 && i == len(r.active)-1 {
				artificial = true
			} else if b > r.pass.threshold {
				continue
			}
			stays = false
		} else if b > r.pass.threshold {
			next = append(next, q)
			continue
		}

		var d int64
		if !artificial {
			d = r.demerits(q, b, pi, typ, fit, cur == n)
		}
		if ce := r.log.Check(zap.DebugLevel, "@"); ce != nil {
			ce.Write(zap.Int("pos", cur), zap.Int("via", serialOf(q.brk)),
				zap.Int("b", b), zap.Int("p", pi), zap.Int64("d", d), zap.Bool("artificial", artificial))
		}
		r.best.record(fit, q.total+d, b, q.brk, q.line)
		if stays {
			next = append(next, q)
		}
	}
	r.spare = r.active
	r.active = next
}

// materialize turns the best candidates of the closed class into passive
// breaks and appends an active node for each to next.
func (r *run) materialize(next []*active, cur int, typ BreakType, start int, carry pack.Widths) []*active {
	minimum := r.best.minimum
	adj := r.b.Params.AdjDemerits
	if adj < 0 {
		adj = -adj
	}
	if adj >= awfulBad-minimum {
		minimum = awfulBad - 1
	} else {
		minimum += adj
	}
	for fit := VeryLoose; fit < numFitness; fit++ {
		c := r.best.byFitness[fit]
		if c.demerits > minimum {
			continue
		}
		r.serial++
		p := &passive{
			serial:  r.serial,
			pos:     cur,
			typ:     typ,
			fitness: fit,
			badness: c.badness,
			total:   c.demerits,
			prev:    c.place,
		}
		next = append(next, &active{
			line:    c.line + 1,
			fitness: fit,
			typ:     typ,
			total:   c.demerits,
			brk:     p,
			start:   start,
			carry:   carry,
		})
		if ce := r.log.Check(zap.DebugLevel, "@@"); ce != nil {
			ce.Write(zap.Int("serial", p.serial), zap.Int("line", c.line),
				zap.Stringer("fitness", fit), zap.Bool("hyphenated", typ == Hyphenated),
				zap.Int64("t", c.demerits), zap.Int("from", serialOf(c.place)))
		}
	}
	r.best.reset()
	return next
}

func serialOf(p *passive) int {
	if p == nil {
		return 0
	}
	return p.serial
}

// rate computes the badness and fitness class of a line that falls short of
// its target width by shortfall (negative when it is too wide).
func rate(shortfall scaled.Scaled, w pack.Widths) (int, Fitness) {
	if shortfall > 0 {
		if w.Stretch[glue.Fil] != 0 || w.Stretch[glue.Fill] != 0 || w.Stretch[glue.Filll] != 0 {
			return 0, Decent
		}
		b := glue.Badness(shortfall, w.Stretch[glue.Normal])
		switch {
		case b > 99:
			return b, VeryLoose
		case b > 12:
			return b, Loose
		}
		return b, Decent
	}
	if -shortfall > w.Shrink[glue.Normal] {
		return glue.InfBad + 1, Tight
	}
	b := glue.Badness(-shortfall, w.Shrink[glue.Normal])
	if b > 12 {
		return b, Tight
	}
	return b, Decent
}

// demerits rates a line from q ending at a break with penalty pi.
func (r *run) demerits(q *active, b, pi int, typ BreakType, fit Fitness, atEnd bool) int64 {
	p := r.b.Params
	d := int64(p.LinePenalty + b)
	if d >= 10000 || d <= -10000 {
		d = 100000000
	} else {
		d *= d
	}
	if pi != 0 {
		pp := int64(pi) * int64(pi)
		if pi > 0 {
			d += pp
		} else if pi > node.EjectPenalty {
			d -= pp
		}
	}
	if typ == Hyphenated && q.typ == Hyphenated {
		if atEnd {
			d += p.FinalHyphenDemerits
		} else {
			d += p.DoubleHyphenDemerits
		}
	}
	if diff := int(fit) - int(q.fitness); diff > 1 || diff < -1 {
		d += p.AdjDemerits
	}
	return d
}
