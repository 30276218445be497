package glue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"galley/pkg/scaled"
)

func pt(n int) scaled.Scaled { return scaled.FromInt(n) }

func TestResolve_PicksHighestNonzeroOrder(t *testing.T) {
	// stretch Normal = 6, Fill = 2, excess 20: the finite stretch is ignored.
	totals := Totals{Normal: pt(6), Fill: pt(2)}

	order, ratio := Resolve(totals, pt(20))

	assert.Equal(t, Fill, order)
	assert.Equal(t, 10.0, ratio)
}

func TestResolve_FilStretch(t *testing.T) {
	order, ratio := Resolve(Totals{Fil: pt(5)}, pt(50))

	assert.Equal(t, Fil, order)
	assert.Equal(t, 10.0, ratio)
}

func TestResolve_NothingAvailable(t *testing.T) {
	order, ratio := Resolve(Totals{}, pt(7))

	assert.Equal(t, Normal, order)
	assert.Zero(t, ratio)
}

func TestResolve_LowerOrdersNeverMatter(t *testing.T) {
	excesses := []scaled.Scaled{pt(-30), pt(-1), 1, pt(3), pt(1000)}
	lower := []scaled.Scaled{0, 1, pt(-4), pt(2), pt(77)}

	for top := Fil; top <= Filll; top++ {
		for _, excess := range excesses {
			base := Totals{}
			base[top] = pt(3)
			wantOrder, wantRatio := Resolve(base, excess)

			for _, v := range lower {
				varied := base
				for o := Normal; o < top; o++ {
					varied[o] = v
				}
				order, ratio := Resolve(varied, excess)
				if order != wantOrder || ratio != wantRatio {
					t.Errorf("order %v excess %v lower %v: got (%v, %v), want (%v, %v)",
						top, excess, v, order, ratio, wantOrder, wantRatio)
				}
			}
		}
	}
}

func TestTotals_Highest(t *testing.T) {
	assert.Equal(t, Normal, Totals{}.Highest())
	assert.Equal(t, Normal, Totals{Normal: 5}.Highest())
	assert.Equal(t, Fil, Totals{Normal: 5, Fil: -1}.Highest())
	assert.Equal(t, Filll, Totals{Fil: 1, Filll: 1}.Highest())
}

func TestSet(t *testing.T) {
	spec := Spec{Width: pt(10), Stretch: pt(6), Shrink: pt(3)}

	assert.Equal(t, pt(10), Set(spec, SignNormal, Normal, 0))
	assert.Equal(t, pt(13), Set(spec, Stretching, Normal, 0.5))
	assert.Equal(t, pt(7), Set(spec, Shrinking, Normal, 1.0))
	// Glue of a lower order than the box's keeps its natural width.
	assert.Equal(t, pt(10), Set(spec, Stretching, Fil, 4))

	fil := Spec{Stretch: pt(1), StretchOrder: Fil}
	assert.Equal(t, pt(25), Set(fil, Stretching, Fil, 25))
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "", Normal.String())
	assert.Equal(t, "fil", Fil.String())
	assert.Equal(t, "fill", Fill.String())
	assert.Equal(t, "filll", Filll.String())
}
