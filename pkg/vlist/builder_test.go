package vlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galley/pkg/glue"
	"galley/pkg/node"
	"galley/pkg/scaled"
)

func pt(n int) scaled.Scaled { return scaled.FromInt(n) }

func newBuilder() *Builder {
	return NewBuilder(node.NewArena(),
		glue.Spec{Width: pt(12)},
		glue.Spec{Width: pt(1)},
		0)
}

func TestAppend_BaselineSkip(t *testing.T) {
	b := newBuilder()
	a := b.Arena
	first := a.NewBox(node.HList, pt(100), pt(7), pt(2), nil)
	second := a.NewBox(node.HList, pt(100), pt(6), pt(3), nil)

	b.Append(first)
	b.Append(second)

	list := b.List()
	require.Len(t, list, 3)
	g := a.Get(list[1])
	assert.Equal(t, node.Glue, g.Type)
	// 12 - 2 - 6
	assert.Equal(t, pt(4), g.Spec.Width)
	assert.Equal(t, pt(3), b.PrevDepth)
}

func TestAppend_LineSkipWhenTooClose(t *testing.T) {
	b := newBuilder()
	a := b.Arena
	b.Append(a.NewBox(node.HList, pt(100), pt(7), pt(5), nil))
	b.Append(a.NewBox(node.HList, pt(100), pt(9), pt(0), nil))

	list := b.List()
	require.Len(t, list, 3)
	assert.Equal(t, pt(1), a.Get(list[1]).Spec.Width)
}

func TestAppend_FirstBoxAndAfterRule(t *testing.T) {
	b := newBuilder()
	a := b.Arena
	b.Append(a.NewBox(node.HList, pt(100), pt(7), pt(2), nil))
	b.AppendPenalty(150)
	b.AppendItem(a.NewRule(node.Running, pt(1), 0))
	b.Append(a.NewBox(node.HList, pt(100), pt(7), pt(2), nil))

	var types []node.ItemType
	for _, h := range b.List() {
		types = append(types, a.Get(h).Type)
	}
	assert.Equal(t, []node.ItemType{node.HList, node.Penalty, node.Rule, node.HList}, types)
}
