package linebreak

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/scaled"
)

func pt(n int) scaled.Scaled { return scaled.FromInt(n) }

// paragraph assembles a horizontal list in a fresh arena. Every glyph of its
// font is 5pt wide.
type paragraph struct {
	packer *pack.Packer
	font   font.ID
	items  []node.Handle
}

func newParagraph(t *testing.T) *paragraph {
	t.Helper()
	tbl := font.NewTable()
	f := tbl.AddFixed("cell", font.CharInfo{Width: pt(5), Height: pt(7), Depth: pt(2)}, font.Params{})
	return &paragraph{packer: pack.New(node.NewArena(), tbl, pack.PlainParams()), font: f}
}

func (p *paragraph) arena() *node.Arena { return p.packer.Arena }

func (p *paragraph) word(s string) *paragraph {
	for _, c := range s {
		p.items = append(p.items, p.arena().NewChar(p.font, c))
	}
	return p
}

func (p *paragraph) space(s glue.Spec) *paragraph {
	p.items = append(p.items, p.arena().NewGlue(s))
	return p
}

func (p *paragraph) penalty(v int) *paragraph {
	p.items = append(p.items, p.arena().NewPenalty(v))
	return p
}

func (p *paragraph) hyphen() *paragraph {
	a := p.arena()
	p.items = append(p.items, a.NewDisc([]node.Handle{a.NewChar(p.font, '-')}, nil, nil))
	return p
}

func (p *paragraph) kern(w scaled.Scaled) *paragraph {
	p.items = append(p.items, p.arena().NewKern(w, true))
	return p
}

func (p *paragraph) disc(pre, post, noBreak string) *paragraph {
	a := p.arena()
	chars := func(s string) []node.Handle {
		var l []node.Handle
		for _, c := range s {
			l = append(l, a.NewChar(p.font, c))
		}
		return l
	}
	p.items = append(p.items, a.NewDisc(chars(pre), chars(post), chars(noBreak)))
	return p
}

func (p *paragraph) words(s glue.Spec, ws ...string) *paragraph {
	for i, w := range ws {
		if i > 0 {
			p.space(s)
		}
		p.word(w)
	}
	return p
}

func (p *paragraph) breakWith(params Params, logger *zap.Logger) (*Result, error) {
	return New(p.packer, params, logger).Break(p.items)
}

func positions(res *Result) []int {
	var out []int
	for _, b := range res.Breaks {
		out = append(out, b.Pos)
	}
	return out
}

// sketch draws a list as text: glyphs as themselves, glue as a space,
// penalties as a bar and kerns as a k.
func sketch(a *node.Arena, list []node.Handle) string {
	var b strings.Builder
	for _, h := range list {
		switch it := a.Get(h); it.Type {
		case node.Char:
			b.WriteRune(it.Glyph)
		case node.Glue:
			b.WriteByte(' ')
		case node.Penalty:
			b.WriteByte('|')
		case node.Kern:
			b.WriteByte('k')
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

var tightSpace = glue.Spec{Width: pt(5), Stretch: pt(5), Shrink: pt(2)}

func TestBreak_TwoPerfectLines(t *testing.T) {
	p := newParagraph(t).words(tightSpace, "aaaa", "bbbb", "cccc", "dddd")

	res, err := p.breakWith(PlainParams(pt(45)), nil)
	require.NoError(t, err)

	assert.Equal(t, FirstPass, res.Pass)
	assert.Equal(t, []int{9, 21}, positions(res))
	assert.Equal(t, int64(200), res.TotalDemerits)
	require.Len(t, res.Lines, 2)
	for i, l := range res.Lines {
		assert.Equal(t, i+1, l.Number)
		box := p.arena().Get(l.Box)
		assert.Equal(t, pt(45), box.Width)
		assert.Equal(t, glue.SignNormal, box.GlueSign)
		assert.Empty(t, l.Diagnostics.Reports)
		assert.Equal(t, Decent, res.Breaks[i].Fitness)
		assert.Equal(t, int64(100), res.Breaks[i].Demerits)
	}
	// Line one is aaaa, the space, bbbb and the right skip.
	first := p.arena().Get(res.Lines[0].Box).List
	require.Len(t, first, 10)
	assert.Equal(t, node.Glue, p.arena().Get(first[9]).Type)
}

func TestBreak_Deterministic(t *testing.T) {
	build := func() *Result {
		p := newParagraph(t).words(glue.Spec{Width: pt(5), Stretch: pt(20), Shrink: pt(2)},
			"aaaa", "bb", "cccccc", "d", "eeee", "ff", "ggg", "hhhhh", "ii")
		res, err := p.breakWith(PlainParams(pt(70)), nil)
		require.NoError(t, err)
		return res
	}
	first, second := build(), build()
	assert.Empty(t, cmp.Diff(first.Breaks, second.Breaks))
	assert.Equal(t, first.TotalDemerits, second.TotalDemerits)
	assert.Equal(t, first.Pass, second.Pass)
}

func TestBreak_ForcedBreakIsAlwaysTaken(t *testing.T) {
	p := newParagraph(t)
	p.words(tightSpace, "aaaa", "bbbb").penalty(node.EjectPenalty).space(tightSpace).
		words(tightSpace, "cccc", "dddd")

	res, err := p.breakWith(PlainParams(pt(100)), nil)
	require.NoError(t, err)

	// The first line is hopelessly loose; only the final pass accepts it.
	assert.Equal(t, SecondPass, res.Pass)
	assert.Equal(t, []int{9, 22}, positions(res))
	assert.Equal(t, int64(0), res.Breaks[0].Demerits)
	assert.Equal(t, VeryLoose, res.Breaks[0].Fitness)
	assert.Equal(t, int64(10100), res.TotalDemerits)

	reports := res.Lines[0].Diagnostics.Reports
	require.Len(t, reports, 1)
	assert.Equal(t, pack.Underfull, reports[0].Kind)

	// The glue after the forced break does not start line two.
	second := p.arena().Get(res.Lines[1].Box).List
	assert.Equal(t, node.Char, p.arena().Get(second[0]).Type)
}

func TestBreak_EmergencyStretch(t *testing.T) {
	p := newParagraph(t)
	p.words(tightSpace, "aaaa", "bbbb").penalty(node.EjectPenalty).space(tightSpace).
		words(tightSpace, "cccc", "dddd")
	params := PlainParams(pt(100))
	params.EmergencyStretch = pt(100)

	res, err := p.breakWith(params, nil)
	require.NoError(t, err)

	assert.Equal(t, EmergencyPass, res.Pass)
	assert.Equal(t, 14, res.Breaks[0].Badness)
	assert.Equal(t, Loose, res.Breaks[0].Fitness)
	assert.Equal(t, int64(676), res.TotalDemerits)
}

func TestBreak_HyphenationOnSecondPass(t *testing.T) {
	p := newParagraph(t)
	p.word("aaaa").space(tightSpace).word("bb").hyphen().word("cc").space(tightSpace).word("dddd")

	res, err := p.breakWith(PlainParams(pt(40)), nil)
	require.NoError(t, err)

	assert.Equal(t, SecondPass, res.Pass)
	assert.Equal(t, []int{7, 17}, positions(res))
	assert.Equal(t, Hyphenated, res.Breaks[0].Type)
	assert.Equal(t, Unhyphenated, res.Breaks[1].Type)
	// 10^2 + hyphenpenalty^2, then 10^2 + finalhyphendemerits.
	assert.Equal(t, int64(2600), res.Breaks[0].Demerits)
	assert.Equal(t, int64(5100), res.Breaks[1].Demerits)
	assert.Equal(t, int64(7700), res.TotalDemerits)

	a := p.arena()
	first := a.Get(res.Lines[0].Box)
	assert.Equal(t, pt(40), first.Width)
	require.Len(t, first.List, 9)
	hy := a.Get(first.List[7])
	assert.Equal(t, node.Char, hy.Type)
	assert.Equal(t, '-', hy.Glyph)
	assert.Empty(t, res.Lines[0].Diagnostics.Reports)
}

func TestBreak_OverfullWordWithoutEmergencyFails(t *testing.T) {
	p := newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa")
	params := PlainParams(pt(45))
	params.AllowOverfull = false

	_, err := p.breakWith(params, nil)
	require.ErrorIs(t, err, ErrNoFeasibleBreak)
}

func TestBreak_OverfullWordWithArtificialDemerits(t *testing.T) {
	p := newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa")

	res, err := p.breakWith(PlainParams(pt(45)), nil)
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(0), res.TotalDemerits)
	reports := res.Lines[0].Diagnostics.Reports
	require.Len(t, reports, 1)
	assert.Equal(t, pack.Overfull, reports[0].Kind)
	assert.Equal(t, pt(55), reports[0].Amount)
}

func TestBreak_HighToleranceNeverStarves(t *testing.T) {
	p := newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa")
	params := PlainParams(pt(45))
	params.Pretolerance = -1
	params.Tolerance = glue.InfBad + 1
	params.AllowOverfull = false

	res, err := p.breakWith(params, nil)
	require.NoError(t, err)
	assert.Equal(t, SecondPass, res.Pass)
	assert.Equal(t, glue.InfBad+1, res.Breaks[0].Badness)
	assert.Equal(t, int64(100000000), res.TotalDemerits)
}

func TestBreak_Looseness(t *testing.T) {
	space := glue.Spec{Width: pt(5), Stretch: pt(20), Shrink: pt(2)}
	words := []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff"}

	tests := []struct {
		name      string
		looseness int
		pass      Pass
		breaks    []int
		demerits  int64
	}{
		{name: "optimal", looseness: 0, pass: FirstPass, breaks: []int{14, 31}, demerits: 200},
		{name: "one more line", looseness: 1, pass: SecondPass, breaks: []int{9, 24, 31}, demerits: 62225},
		{name: "more than possible", looseness: 5, pass: SecondPass, breaks: []int{9, 24, 31}, demerits: 62225},
		{name: "fewer than possible", looseness: -1, pass: SecondPass, breaks: []int{14, 31}, demerits: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParagraph(t).words(space, words...)
			params := PlainParams(pt(70))
			params.Looseness = tt.looseness

			res, err := p.breakWith(params, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, tt.breaks, positions(res))
			assert.Equal(t, tt.demerits, res.TotalDemerits)
		})
	}
}

func TestBreak_ShapeAndIndent(t *testing.T) {
	space := glue.Spec{Width: pt(5), Stretch: pt(20), Shrink: pt(2)}
	p := newParagraph(t).words(space, "aaaa", "bbbb", "cccc", "dddd", "eeee")
	params := PlainParams(pt(70))
	params.Shape = Shape{Lines: []LineSpec{{Width: pt(45), Indent: pt(10)}}, Width: pt(70)}

	res, err := p.breakWith(params, nil)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)

	a := p.arena()
	first, second := a.Get(res.Lines[0].Box), a.Get(res.Lines[1].Box)
	assert.Equal(t, pt(45), first.Width)
	assert.Equal(t, pt(10), first.Shift)
	assert.Equal(t, pt(70), second.Width)
	assert.Equal(t, scaled.Scaled(0), second.Shift)
}

func TestBreak_MarksMigrateToAdjust(t *testing.T) {
	p := newParagraph(t)
	p.word("aa")
	mark := p.arena().NewMark("m")
	p.items = append(p.items, mark)
	p.word("aa").space(tightSpace).words(tightSpace, "bbbb", "cccc", "dddd")

	res, err := p.breakWith(PlainParams(pt(45)), nil)
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, []node.Handle{mark}, res.Lines[0].Adjust)
	assert.NotContains(t, p.arena().Get(res.Lines[0].Box).List, mark)
	assert.Empty(t, res.Lines[1].Adjust)
}

func TestBreak_EmptyParagraph(t *testing.T) {
	p := newParagraph(t)
	res, err := p.breakWith(PlainParams(pt(45)), nil)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, pt(45), p.arena().Get(res.Lines[0].Box).Width)
}

func TestBreak_Tracing(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := newParagraph(t)
	p.word("aaaa").space(tightSpace).word("bb").hyphen().word("cc").space(tightSpace).word("dddd")

	_, err := p.breakWith(PlainParams(pt(40)), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("@firstpass").Len())
	assert.Equal(t, 1, logs.FilterMessage("@secondpass").Len())
	assert.NotZero(t, logs.FilterMessage("@").Len())
	// One node after the hyphen and one at the end.
	assert.Equal(t, 2, logs.FilterMessage("@@").Len())
}

func TestHangShape(t *testing.T) {
	s := HangShape(pt(100), pt(20), 2)
	assert.Equal(t, LineSpec{Width: pt(100)}, s.Line(1))
	assert.Equal(t, LineSpec{Width: pt(100)}, s.Line(2))
	assert.Equal(t, LineSpec{Width: pt(80), Indent: pt(20)}, s.Line(3))

	s = HangShape(pt(100), pt(-20), -1)
	assert.Equal(t, LineSpec{Width: pt(80)}, s.Line(1))
	assert.Equal(t, LineSpec{Width: pt(100)}, s.Line(2))
}

func TestBreak_Breakpoints(t *testing.T) {
	tests := []struct {
		name     string
		build    func(p *paragraph)
		hsize    int
		params   func(*Params)
		pass     Pass
		breaks   []int
		demerits int64
		lines    []string
	}{
		{
			name: "explicit kern before glue",
			build: func(p *paragraph) {
				p.word("aaaa").kern(pt(1)).space(tightSpace).word("bbbb")
			},
			hsize:    20,
			pass:     FirstPass,
			breaks:   []int{4, 12},
			demerits: 200,
			lines:    []string{"aaaa ", "bbbb|  "},
		},
		{
			name: "post-break material starts the next line",
			build: func(p *paragraph) {
				p.word("aaa").disc("-", "b", "c").word("bbb")
			},
			hsize:    20,
			pass:     SecondPass,
			breaks:   []int{3, 9},
			demerits: 7700,
			lines:    []string{"aaa- ", "bbbb|  "},
		},
		{
			name: "left skip counts toward the line width",
			build: func(p *paragraph) {
				p.words(tightSpace, "aaaa", "bbbb", "cccc", "dddd")
			},
			hsize: 50,
			params: func(params *Params) {
				params.LeftSkip = glue.Spec{Width: pt(5)}
			},
			pass:     FirstPass,
			breaks:   []int{9, 21},
			demerits: 200,
			lines:    []string{" aaaa bbbb ", " cccc dddd|  "},
		},
		{
			name: "break inside the discardables after a break",
			build: func(p *paragraph) {
				p.word("aaaa").space(tightSpace).penalty(-5000).word("bbbb")
			},
			hsize: 45,
			params: func(params *Params) {
				params.Pretolerance = -1
				params.Tolerance = glue.InfBad + 1
				params.Looseness = 1
				params.RightSkip = glue.Spec{Stretch: scaled.Unity, StretchOrder: glue.Fil}
			},
			pass:     SecondPass,
			breaks:   []int{4, 5, 12},
			demerits: 100 + (100 - 5000*5000) + 100,
			lines:    []string{"aaaa ", " ", "bbbb|  "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParagraph(t)
			tt.build(p)
			params := PlainParams(pt(tt.hsize))
			if tt.params != nil {
				tt.params(&params)
			}

			res, err := p.breakWith(params, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, tt.breaks, positions(res))
			assert.Equal(t, tt.demerits, res.TotalDemerits)
			a := p.arena()
			var lines []string
			for _, l := range res.Lines {
				box := a.Get(l.Box)
				assert.Equal(t, pt(tt.hsize), box.Width)
				lines = append(lines, sketch(a, box.List))
			}
			if diff := cmp.Diff(tt.lines, lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBreak_LeftSkipLeadsEveryLine(t *testing.T) {
	p := newParagraph(t).words(tightSpace, "aaaa", "bbbb", "cccc", "dddd")
	params := PlainParams(pt(50))
	params.LeftSkip = glue.Spec{Width: pt(5)}

	res, err := p.breakWith(params, nil)
	require.NoError(t, err)

	a := p.arena()
	for _, l := range res.Lines {
		box := a.Get(l.Box)
		assert.Equal(t, glue.SignNormal, box.GlueSign)
		assert.Equal(t, params.LeftSkip, a.Get(box.List[0]).Spec)
		assert.Empty(t, l.Diagnostics.Reports)
	}
}

func TestBreak_InfiniteShrinkIsMadeFinite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	space := glue.Spec{Width: pt(10), Shrink: pt(5), ShrinkOrder: glue.Fil}
	p := newParagraph(t).words(space, "aaaa", "bbbb")
	gap := p.items[4]

	res, err := p.breakWith(PlainParams(pt(45)), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("infinite glue shrinkage found in a paragraph").Len())
	// With fil shrink the line would be perfect; as finite shrink it is tight.
	assert.Equal(t, FirstPass, res.Pass)
	assert.Equal(t, []int{11}, positions(res))
	assert.Equal(t, 100, res.Breaks[0].Badness)
	assert.Equal(t, Tight, res.Breaks[0].Fitness)
	assert.Equal(t, int64(110*110), res.TotalDemerits)

	a := p.arena()
	assert.Equal(t, glue.Normal, a.Get(gap).Spec.ShrinkOrder)
	box := a.Get(res.Lines[0].Box)
	assert.Equal(t, glue.Shrinking, box.GlueSign)
	assert.Equal(t, glue.Normal, box.GlueOrder)
	assert.InDelta(t, 1.0, box.GlueSet, 1e-9)
	assert.Empty(t, res.Lines[0].Diagnostics.Reports)
}

func TestBreak_FailureKeepsTheList(t *testing.T) {
	p := newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa").space(tightSpace)
	params := PlainParams(pt(45))
	params.AllowOverfull = false
	list := append([]node.Handle(nil), p.items...)

	_, err := p.breakWith(params, nil)
	require.ErrorIs(t, err, ErrNoFeasibleBreak)

	a := p.arena()
	trailing := a.Get(list[len(list)-1])
	assert.Equal(t, node.Glue, trailing.Type)
	assert.Equal(t, tightSpace, trailing.Spec)
	for _, h := range list[:len(list)-1] {
		assert.Equal(t, node.Char, a.Get(h).Type)
	}

	// The same list can be set once overfull lines are allowed.
	params.AllowOverfull = true
	res, err := New(p.packer, params, nil).Break(list)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaa|  ", sketch(a, a.Get(res.Lines[0].Box).List))
}

func TestBreak_LineProvenance(t *testing.T) {
	p := newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa")
	p.packer.Provenance = pack.Provenance{Line: 7}
	params := PlainParams(pt(45))
	params.Provenance = pack.Provenance{BeginLine: 3, Line: 5}

	res, err := p.breakWith(params, nil)
	require.NoError(t, err)

	reports := res.Lines[0].Diagnostics.Reports
	require.Len(t, reports, 1)
	assert.Equal(t, params.Provenance, reports[0].Provenance)
	assert.Equal(t, "in paragraph at lines 3--5", reports[0].Provenance.String())
	// The packer keeps its own provenance.
	assert.Equal(t, pack.Provenance{Line: 7}, p.packer.Provenance)

	// Without one, the packer's provenance is used.
	p = newParagraph(t).word("aaaaaaaaaaaaaaaaaaaa")
	p.packer.Provenance = pack.Provenance{Line: 7}
	res, err = p.breakWith(PlainParams(pt(45)), nil)
	require.NoError(t, err)
	require.Len(t, res.Lines[0].Diagnostics.Reports, 1)
	assert.Equal(t, pack.Provenance{Line: 7}, res.Lines[0].Diagnostics.Reports[0].Provenance)
}
