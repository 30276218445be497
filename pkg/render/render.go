// Package render draws packed boxes onto a raster image.
//
// Boxes are shipped out the traditional way: an hbox is traversed left to
// right along its baseline, a vbox top to bottom, and each glue item takes
// the width its box's glue setting gives it.
package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/scaled"
)

// Options control the output image.
type Options struct {
	// Scale is the number of pixels per point.
	Scale float64
	// Margin is the white space around the box, in points.
	Margin float64
	// Outlines draws the bounding box of every hbox and vbox.
	Outlines bool
}

// DefaultOptions renders at two pixels per point with a 10pt margin.
func DefaultOptions() Options {
	return Options{Scale: 2, Margin: 10}
}

// Renderer draws one box tree.
type Renderer struct {
	context *gg.Context
	arena   *node.Arena
	fonts   *font.Table
	opt     Options
	face    font.ID
}

// Size returns the image size in pixels needed for box h.
func Size(a *node.Arena, h node.Handle, opt Options) (int, int) {
	it := a.Get(h)
	w := (pt(it.Width) + 2*opt.Margin) * opt.Scale
	ht := (pt(it.Height) + pt(it.Depth) + 2*opt.Margin) * opt.Scale
	return int(math.Ceil(math.Max(w, 1))), int(math.Ceil(math.Max(ht, 1)))
}

// NewRenderer returns a renderer with a canvas large enough for box h.
func NewRenderer(a *node.Arena, fonts *font.Table, h node.Handle, opt Options) *Renderer {
	if opt.Scale <= 0 {
		opt.Scale = 1
	}
	w, ht := Size(a, h, opt)
	return &Renderer{context: gg.NewContext(w, ht), arena: a, fonts: fonts, opt: opt, face: font.NullFont}
}

// Render draws box h with its top left corner at the margin.
func (r *Renderer) Render(h node.Handle) {
	dc := r.context
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.Push()
	dc.Scale(r.opt.Scale, r.opt.Scale)
	dc.Translate(r.opt.Margin, r.opt.Margin)
	box := r.arena.Get(h)
	if box.Type == node.VList {
		r.vlistOut(box, 0, 0)
	} else {
		r.hlistOut(box, 0, pt(box.Height))
	}
	dc.Pop()
}

// Image returns the rendered image.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

// SavePNG writes the rendered image to filename.
func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// EncodePNG writes the rendered image to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}

func pt(s scaled.Scaled) float64 { return s.Points() }

// running resolves a rule dimension against the enclosing box.
func running(d, enclosing scaled.Scaled) scaled.Scaled {
	if d == node.Running {
		return enclosing
	}
	return d
}

func (r *Renderer) outline(x, y, w, h float64) {
	if !r.opt.Outlines || w <= 0 || h <= 0 {
		return
	}
	dc := r.context
	dc.Push()
	dc.SetRGB(0.6, 0.6, 0.9)
	dc.SetLineWidth(0.25)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.Pop()
}

func (r *Renderer) fillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	r.context.DrawRectangle(x, y, w, h)
	r.context.Fill()
}

// hlistOut draws an hbox whose left edge is at x and baseline at y.
func (r *Renderer) hlistOut(box *node.Item, x, y float64) {
	r.outline(x, y-pt(box.Height), pt(box.Width), pt(box.Height)+pt(box.Depth))
	cur := scaled.FromPoints(x)
	r.hlistItems(box, box.List, &cur, x, y)
}

func (r *Renderer) hlistItems(box *node.Item, list []node.Handle, cur *scaled.Scaled, left, y float64) {
	for _, hd := range list {
		it := r.arena.Get(hd)
		x := pt(*cur)
		switch it.Type {
		case node.Char, node.Ligature:
			*cur += r.glyph(it, x, y)
		case node.HList:
			r.hlistOut(it, x, y+pt(it.Shift))
			*cur += it.Width
		case node.VList:
			r.vlistOut(it, x, y+pt(it.Shift)-pt(it.Height))
			*cur += it.Width
		case node.Rule:
			ht, dp := running(it.Height, box.Height), running(it.Depth, box.Depth)
			r.fillRect(x, y-pt(ht), pt(it.Width), pt(ht)+pt(dp))
			*cur += it.Width
		case node.Glue:
			w := glue.Set(it.Spec, box.GlueSign, box.GlueOrder, box.GlueSet)
			if it.Leaders != node.NoLeaders && it.Leader != node.None {
				r.hleaders(box, it, x, y, w, left)
			}
			*cur += w
		case node.Kern:
			*cur += it.Width
		case node.Disc:
			r.hlistItems(box, it.NoBreak, cur, left, y)
		}
	}
}

// hleaders fills a glue of width w at x with its leader.
func (r *Renderer) hleaders(box, g *node.Item, x, y float64, w scaled.Scaled, left float64) {
	l := r.arena.Get(g.Leader)
	if l.Type == node.Rule {
		ht, dp := running(l.Height, box.Height), running(l.Depth, box.Depth)
		r.fillRect(x, y-pt(ht), pt(w), pt(ht)+pt(dp))
		return
	}
	for _, off := range leaderOffsets(g.Leaders, scaled.FromPoints(x-left), w, l.Width) {
		lx := x + pt(off)
		if l.Type == node.VList {
			r.vlistOut(l, lx, y+pt(l.Shift)-pt(l.Height))
		} else {
			r.hlistOut(l, lx, y+pt(l.Shift))
		}
	}
}

// leaderOffsets places copies of a leader box of size lw in a glue of size
// w that starts at distance start from the edge of the enclosing box. The
// offsets are relative to the start of the glue.
func leaderOffsets(kind node.LeaderKind, start, w, lw scaled.Scaled) []scaled.Scaled {
	if lw <= 0 || w <= 0 {
		return nil
	}
	var cur, gap scaled.Scaled
	switch kind {
	case node.ALeaders:
		// Aligned to multiples of lw measured from the enclosing box.
		cur = lw*(start/lw) - start
		if cur < 0 {
			cur += lw
		}
	case node.CLeaders:
		cur = (w % lw) / 2
	case node.XLeaders:
		q, rem := w/lw, w%lw
		gap = rem / (q + 1)
		cur = (rem - (q-1)*gap) / 2
	}
	var out []scaled.Scaled
	for cur+lw <= w {
		out = append(out, cur)
		cur += lw + gap
	}
	return out
}

// glyph draws a character with its baseline origin at (x, y) and returns
// its width.
func (r *Renderer) glyph(it *node.Item, x, y float64) scaled.Scaled {
	ci, ok := r.fonts.Char(it.Font, it.Glyph)
	if !ok {
		return 0
	}
	if face := r.fonts.Face(it.Font); face != nil {
		if r.face != it.Font {
			r.context.SetFontFace(face)
			r.face = it.Font
		}
		r.context.DrawString(string(it.Glyph), x, y)
		return ci.Width
	}
	// Metric-only fonts show each glyph as its filled box.
	r.fillRect(x, y-pt(ci.Height), pt(ci.Width), pt(ci.Height)+pt(ci.Depth))
	return ci.Width
}

// vlistOut draws a vbox whose left edge is at x and top at y.
func (r *Renderer) vlistOut(box *node.Item, x, y float64) {
	r.outline(x, y, pt(box.Width), pt(box.Height)+pt(box.Depth))
	top := y
	cur := scaled.FromPoints(y)
	for _, hd := range box.List {
		it := r.arena.Get(hd)
		v := pt(cur)
		switch it.Type {
		case node.HList:
			r.hlistOut(it, x+pt(it.Shift), v+pt(it.Height))
			cur += it.Height + it.Depth
		case node.VList:
			r.vlistOut(it, x+pt(it.Shift), v)
			cur += it.Height + it.Depth
		case node.Rule:
			w := running(it.Width, box.Width)
			ht := it.Height + it.Depth
			r.fillRect(x, v, pt(w), pt(ht))
			cur += ht
		case node.Glue:
			g := glue.Set(it.Spec, box.GlueSign, box.GlueOrder, box.GlueSet)
			if it.Leaders != node.NoLeaders && it.Leader != node.None {
				r.vleaders(box, it, x, v, g, top)
			}
			cur += g
		case node.Kern:
			cur += it.Width
		}
	}
}

func (r *Renderer) vleaders(box, g *node.Item, x, v float64, h scaled.Scaled, top float64) {
	l := r.arena.Get(g.Leader)
	if l.Type == node.Rule {
		r.fillRect(x, v, pt(running(l.Width, box.Width)), pt(h))
		return
	}
	size := l.Height + l.Depth
	for _, off := range leaderOffsets(g.Leaders, scaled.FromPoints(v-top), h, size) {
		ly := v + pt(off)
		if l.Type == node.VList {
			r.vlistOut(l, x+pt(l.Shift), ly)
		} else {
			r.hlistOut(l, x+pt(l.Shift), ly+pt(l.Height))
		}
	}
}
