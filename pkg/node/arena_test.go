package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galley/pkg/glue"
	"galley/pkg/scaled"
)

func TestArena_AddGet(t *testing.T) {
	a := NewArena()
	c := a.NewChar(1, 'x')
	k := a.NewKern(scaled.Unity, true)

	assert.Equal(t, Handle(0), c)
	assert.Equal(t, Handle(1), k)
	assert.Equal(t, Char, a.Get(c).Type)
	assert.Equal(t, 'x', a.Get(c).Glyph)
	assert.Equal(t, None, a.Get(c).Leader)
	assert.True(t, a.Get(k).Explicit)
	assert.True(t, a.Valid(k))
	assert.False(t, a.Valid(None))
	assert.False(t, a.Valid(2))
	assert.Panics(t, func() { a.Get(5) })
}

func TestArena_FreeReusesSlots(t *testing.T) {
	a := NewArena()
	inner := a.NewChar(0, 'a')
	box := a.NewBox(HList, 0, 0, 0, []Handle{inner})
	require.Equal(t, 2, a.Len())

	a.Free(box)
	// Both slots come back; the box's list went with it.
	h1 := a.NewPenalty(5)
	h2 := a.NewPenalty(6)
	assert.ElementsMatch(t, []Handle{inner, box}, []Handle{h1, h2})
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 5, a.Get(h1).Penalty)
}

func TestArena_FreeLeaders(t *testing.T) {
	a := NewArena()
	rule := a.NewRule(Running, scaled.Unity, 0)
	g := a.NewLeaders(ALeaders, glue.Spec{Width: scaled.Unity}, rule)
	disc := a.NewDisc([]Handle{a.NewChar(0, '-')}, nil, []Handle{a.NewChar(0, 'k')})

	a.FreeList([]Handle{g, disc})
	assert.Len(t, a.free, 5)
}

func TestArena_Copy(t *testing.T) {
	a := NewArena()
	rule := a.NewRule(Running, scaled.Unity, 0)
	g := a.NewLeaders(CLeaders, glue.Spec{Width: scaled.Unity}, rule)
	box := a.NewBox(VList, scaled.Unity, 2*scaled.Unity, 0, []Handle{g, a.NewMark("m")})

	cp := a.Copy(box)
	require.NotEqual(t, box, cp)
	orig, dup := a.Get(box), a.Get(cp)
	assert.Equal(t, orig.Width, dup.Width)
	require.Len(t, dup.List, 2)
	assert.NotEqual(t, orig.List[0], dup.List[0])
	assert.NotEqual(t, rule, a.Get(dup.List[0]).Leader)
	assert.Equal(t, "m", a.Get(dup.List[1]).Mark)

	// Changing the copy leaves the original alone.
	a.Get(a.Get(dup.List[0]).Leader).Height = 0
	assert.Equal(t, scaled.Unity, a.Get(rule).Height)
	assert.Nil(t, a.CopyList(nil))
}

func TestNewBox_RejectsOtherTypes(t *testing.T) {
	assert.Panics(t, func() { NewArena().NewBox(Glue, 0, 0, 0, nil) })
}

func TestIsDiscardable(t *testing.T) {
	a := NewArena()
	tests := []struct {
		h    Handle
		want bool
	}{
		{a.NewGlue(glue.Spec{}), true},
		{a.NewPenalty(0), true},
		{a.NewKern(scaled.Unity, true), true},
		{a.NewKern(scaled.Unity, false), false},
		{a.NewChar(0, 'a'), false},
		{a.NewRule(0, 0, 0), false},
		{a.NewDisc(nil, nil, nil), false},
	}
	for _, tt := range tests {
		it := a.Get(tt.h)
		assert.Equal(t, tt.want, it.IsDiscardable(), it.Type.String())
	}
}

func TestItemType_String(t *testing.T) {
	assert.Equal(t, "hlist", HList.String())
	assert.Equal(t, "penalty", Penalty.String())
	assert.Equal(t, "unknown", ItemType(99).String())
}
