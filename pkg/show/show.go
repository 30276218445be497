// Package show prints boxes and lists in the traditional diagnostic format:
// one item per line, nesting shown by a leading "." per level.
package show

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/scaled"
)

// Options limit how much of a box is shown.
type Options struct {
	// Depth is the deepest nesting level shown. Deeper lists print as " []".
	Depth int
	// Breadth is the number of items shown per list before "etc.". Zero or
	// less means 5.
	Breadth int
	// FontName names a font in character lines. When nil fonts are shown by
	// number.
	FontName func(font.ID) string
}

// Box writes the display of the item h to w.
func Box(w io.Writer, a *node.Arena, h node.Handle, opt Options) error {
	return List(w, a, []node.Handle{h}, opt)
}

// List writes the display of the items of l to w, one after another at the
// outermost level.
func List(w io.Writer, a *node.Arena, l []node.Handle, opt Options) error {
	p := &printer{a: a, opt: opt}
	if p.opt.Breadth <= 0 {
		p.opt.Breadth = 5
	}
	if p.opt.Depth < 0 {
		p.opt.Depth = 0
	}
	p.list(l)
	if p.started {
		p.buf.WriteByte('\n')
	}
	_, err := w.Write(p.buf.Bytes())
	return err
}

// Diagnostic writes a box report followed by the display of its box.
func Diagnostic(w io.Writer, a *node.Arena, d pack.Diagnostic, opt Options) error {
	if _, err := fmt.Fprintln(w, d.String()); err != nil {
		return err
	}
	if d.Box == node.None {
		return nil
	}
	return Box(w, a, d.Box, opt)
}

type printer struct {
	a       *node.Arena
	opt     Options
	buf     bytes.Buffer
	prefix  []byte
	started bool
}

func (p *printer) newline() {
	if p.started {
		p.buf.WriteByte('\n')
	}
	p.started = true
	p.buf.Write(p.prefix)
}

func (p *printer) list(l []node.Handle) {
	if len(p.prefix) > p.opt.Depth {
		if len(l) > 0 {
			p.buf.WriteString(" []")
		}
		return
	}
	for n, h := range l {
		p.newline()
		if n >= p.opt.Breadth {
			p.buf.WriteString("etc.")
			return
		}
		p.item(h)
	}
}

func (p *printer) nested(c byte, l []node.Handle) {
	p.prefix = append(p.prefix, c)
	p.list(l)
	p.prefix = p.prefix[:len(p.prefix)-1]
}

func (p *printer) fontName(f font.ID) string {
	if p.opt.FontName != nil {
		return p.opt.FontName(f)
	}
	return fmt.Sprintf("FONT%d", f)
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.buf, format, args...)
}

func (p *printer) item(h node.Handle) {
	it := p.a.Get(h)
	switch it.Type {
	case node.Char:
		p.printf("\\%s %c", p.fontName(it.Font), it.Glyph)
	case node.Ligature:
		p.printf("\\%s %c (ligature %s)", p.fontName(it.Font), it.Glyph, it.Text)
	case node.HList, node.VList:
		p.box(it)
	case node.Rule:
		p.printf("\\rule(%s+%s)x%s", ruleDimen(it.Height), ruleDimen(it.Depth), ruleDimen(it.Width))
	case node.Ins:
		p.printf("\\insert%d, natural size %v; depth %v", it.InsNumber, it.Height, it.Depth)
		p.nested('.', it.List)
	case node.Mark:
		p.printf("\\mark{%s}", it.Mark)
	case node.Adjust:
		p.buf.WriteString("\\vadjust")
		p.nested('.', it.List)
	case node.Disc:
		p.buf.WriteString("\\discretionary")
		if len(it.NoBreak) > 0 {
			p.printf(" replacing %d", len(it.NoBreak))
		}
		p.nested('.', it.Pre)
		p.nested('|', it.Post)
		p.nested('=', it.NoBreak)
	case node.Glue:
		if it.Leaders != node.NoLeaders {
			p.printf("\\%s %s", leaderName(it.Leaders), spec(it.Spec))
			if it.Leader != node.None {
				p.nested('.', []node.Handle{it.Leader})
			}
			return
		}
		p.printf("\\glue %s", spec(it.Spec))
	case node.Kern:
		if it.Explicit {
			p.printf("\\kern %v", it.Width)
		} else {
			p.printf("\\kern%v", it.Width)
		}
	case node.Penalty:
		p.printf("\\penalty %d", it.Penalty)
	default:
		p.buf.WriteString("Unknown node type!")
	}
}

func (p *printer) box(it *node.Item) {
	name := "hbox"
	if it.Type == node.VList {
		name = "vbox"
	}
	p.printf("\\%s(%v+%v)x%v", name, it.Height, it.Depth, it.Width)
	if it.GlueSign != glue.SignNormal && it.GlueSet != 0 {
		p.buf.WriteString(", glue set ")
		if it.GlueSign == glue.Shrinking {
			p.buf.WriteString("- ")
		}
		set := scaled.Scaled(math.Round(float64(scaled.Unity) * it.GlueSet))
		p.printf("%v%v", set, it.GlueOrder)
	}
	if it.Shift != 0 {
		p.printf(", shifted %v", it.Shift)
	}
	p.nested('.', it.List)
}

func leaderName(k node.LeaderKind) string {
	switch k {
	case node.CLeaders:
		return "cleaders"
	case node.XLeaders:
		return "xleaders"
	}
	return "leaders"
}

func ruleDimen(d scaled.Scaled) string {
	if d == node.Running {
		return "*"
	}
	return d.String()
}

// spec prints a glue specification such as "5.0 plus 1.0fil minus 2.0".
func spec(s glue.Spec) string {
	out := s.Width.String()
	if s.Stretch != 0 {
		out += " plus " + s.Stretch.String() + s.StretchOrder.String()
	}
	if s.Shrink != 0 {
		out += " minus " + s.Shrink.String() + s.ShrinkOrder.String()
	}
	return out
}
