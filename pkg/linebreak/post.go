package linebreak

import (
	"galley/pkg/node"
	"galley/pkg/pack"
)

// finish packs the lines ending at the breaks that lead to best.
func (r *run) finish(best *active, kind Pass) (*Result, error) {
	var chain []*passive
	for p := best.brk; p != nil; p = p.prev {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	a := r.arena
	params := r.b.Params
	n := len(r.items)
	res := &Result{TotalDemerits: best.total, Pass: kind}

	start := 0
	var post []node.Handle
	var prevTotal int64
	number := params.PrevGraf + 1
	pk := *r.b.Packer
	if params.Provenance != (pack.Provenance{}) {
		pk.Provenance = params.Provenance
	}
	for k, p := range chain {
		var content []node.Handle
		if !params.LeftSkip.IsZero() {
			content = append(content, a.NewGlue(r.leftSkip))
		}
		content = append(content, post...)
		content = append(content, r.items[start:p.pos]...)
		post = nil

		brk := Break{
			Pos:      p.pos,
			Type:     p.typ,
			Fitness:  p.fitness,
			Badness:  p.badness,
			Demerits: p.total - prevTotal,
		}
		next := n
		if p.pos < n {
			next, _ = r.lineStart(p.pos)
			// The next break may sit inside the discardable run.
			if k+1 < len(chain) && chain[k+1].pos < next {
				next = chain[k+1].pos
			}
			it := a.Get(r.items[p.pos])
			if it.Type == node.Disc {
				content = append(content, it.Pre...)
				post = it.Post
				it.Pre, it.Post = nil, nil
			}
			// The break item and the discardables after it vanish.
			for _, h := range r.items[p.pos:next] {
				a.Free(h)
			}
		} else {
			// The paragraph end counts as hyphenated only for rating.
			brk.Type = Unhyphenated
		}
		content = append(content, a.NewGlue(r.rightSkip))

		spec := params.Shape.Line(number)
		var adjust []node.Handle
		box, diag, err := pk.HPack(content, spec.Width, pack.Exactly, &adjust)
		if err != nil {
			return nil, err
		}
		a.Get(box).Shift = spec.Indent

		res.Lines = append(res.Lines, Line{Box: box, Adjust: adjust, Number: number, Diagnostics: diag})
		res.Breaks = append(res.Breaks, brk)
		prevTotal = p.total
		start = next
		number++
	}
	return res, nil
}
