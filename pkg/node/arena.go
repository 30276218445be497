package node

import (
	"fmt"

	"galley/pkg/font"
	"galley/pkg/glue"
	"galley/pkg/scaled"
)

// Arena owns items and hands out stable handles to them. Freed slots are
// reused by later allocations.
type Arena struct {
	items []Item
	free  []Handle
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores a copy of it and returns its handle.
func (a *Arena) Add(it Item) Handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.items[h] = it
		return h
	}
	a.items = append(a.items, it)
	return Handle(len(a.items) - 1)
}

// Get returns the item for h. The pointer stays valid until the next Add.
func (a *Arena) Get(h Handle) *Item {
	if h < 0 || int(h) >= len(a.items) {
		panic(fmt.Sprintf("node: handle %d out of range", h))
	}
	return &a.items[h]
}

// Valid reports whether h addresses a live slot.
func (a *Arena) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(a.items)
}

// Len returns the number of slots ever allocated.
func (a *Arena) Len() int { return len(a.items) }

// Free releases h. Lists owned by the item are released too.
func (a *Arena) Free(h Handle) {
	it := a.Get(h)
	for _, l := range [][]Handle{it.List, it.Pre, it.Post, it.NoBreak} {
		a.FreeList(l)
	}
	if it.Type == Glue && it.Leaders != NoLeaders && it.Leader != None {
		a.Free(it.Leader)
	}
	a.items[h] = Item{}
	a.free = append(a.free, h)
}

// FreeList releases every item of l.
func (a *Arena) FreeList(l []Handle) {
	for _, h := range l {
		a.Free(h)
	}
}

// Copy makes a deep copy of h and returns the new handle.
func (a *Arena) Copy(h Handle) Handle {
	it := *a.Get(h)
	it.List = a.CopyList(it.List)
	it.Pre = a.CopyList(it.Pre)
	it.Post = a.CopyList(it.Post)
	it.NoBreak = a.CopyList(it.NoBreak)
	if it.Type == Glue && it.Leaders != NoLeaders && it.Leader != None {
		it.Leader = a.Copy(it.Leader)
	}
	return a.Add(it)
}

// CopyList deep-copies every item of l.
func (a *Arena) CopyList(l []Handle) []Handle {
	if l == nil {
		return nil
	}
	out := make([]Handle, len(l))
	for i, h := range l {
		out[i] = a.Copy(h)
	}
	return out
}

// NewChar adds a character item.
func (a *Arena) NewChar(f font.ID, c rune) Handle {
	return a.Add(Item{Type: Char, Font: f, Glyph: c, Leader: None})
}

// NewLigature adds a ligature glyph c that replaces text.
func (a *Arena) NewLigature(f font.ID, c rune, text string) Handle {
	return a.Add(Item{Type: Ligature, Font: f, Glyph: c, Text: text, Leader: None})
}

// NewGlue adds a glue item.
func (a *Arena) NewGlue(s glue.Spec) Handle {
	return a.Add(Item{Type: Glue, Spec: s, Leader: None})
}

// NewLeaders adds leader glue that repeats the box or rule leader.
func (a *Arena) NewLeaders(kind LeaderKind, s glue.Spec, leader Handle) Handle {
	return a.Add(Item{Type: Glue, Spec: s, Leaders: kind, Leader: leader})
}

// NewKern adds a kern. Explicit kerns disappear at line breaks.
func (a *Arena) NewKern(w scaled.Scaled, explicit bool) Handle {
	return a.Add(Item{Type: Kern, Width: w, Explicit: explicit, Leader: None})
}

// NewPenalty adds a penalty item.
func (a *Arena) NewPenalty(p int) Handle {
	return a.Add(Item{Type: Penalty, Penalty: p, Leader: None})
}

// NewRule adds a rule. Any dimension may be Running.
func (a *Arena) NewRule(w, h, d scaled.Scaled) Handle {
	return a.Add(Item{Type: Rule, Width: w, Height: h, Depth: d, Leader: None})
}

// NewBox adds an already dimensioned box of the given type.
func (a *Arena) NewBox(t ItemType, w, h, d scaled.Scaled, list []Handle) Handle {
	if !t.IsBox() {
		panic(fmt.Sprintf("node: NewBox with type %v", t))
	}
	return a.Add(Item{Type: t, Width: w, Height: h, Depth: d, List: list, Leader: None})
}

// NewDisc adds a discretionary break.
func (a *Arena) NewDisc(pre, post, noBreak []Handle) Handle {
	return a.Add(Item{Type: Disc, Pre: pre, Post: post, NoBreak: noBreak, Leader: None})
}

// NewMark adds a mark.
func (a *Arena) NewMark(text string) Handle {
	return a.Add(Item{Type: Mark, Mark: text, Leader: None})
}

// NewAdjust adds vadjust material.
func (a *Arena) NewAdjust(list []Handle) Handle {
	return a.Add(Item{Type: Adjust, List: list, Leader: None})
}

// NewIns adds an insertion for class n with the given natural height and
// depth of its material.
func (a *Arena) NewIns(n int, height, depth scaled.Scaled, list []Handle) Handle {
	return a.Add(Item{Type: Ins, InsNumber: n, Height: height, Depth: depth, List: list, Leader: None})
}
