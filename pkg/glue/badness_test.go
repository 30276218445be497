package glue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"galley/pkg/scaled"
)

func TestBadness_Boundaries(t *testing.T) {
	for _, total := range []scaled.Scaled{0, 1, pt(1), pt(100), scaled.MaxDimen} {
		assert.Zero(t, Badness(0, total), "badness(0, %v)", total)
	}
	for _, excess := range []scaled.Scaled{1, pt(1), pt(1000), scaled.MaxDimen} {
		assert.Equal(t, InfBad, Badness(excess, 0), "badness(%v, 0)", excess)
		assert.Equal(t, InfBad, Badness(excess, -pt(3)), "badness(%v, -3pt)", excess)
	}
}

func TestBadness_KnownValues(t *testing.T) {
	tests := []struct {
		name   string
		excess scaled.Scaled
		total  scaled.Scaled
		want   int
	}{
		{"exactly the stretch", pt(6), pt(6), 100},
		{"half the stretch", pt(3), pt(6), 12},
		{"twice the stretch", pt(12), pt(6), 800},
		{"negative excess uses magnitude", -pt(6), pt(6), 100},
		{"far beyond", pt(1000), pt(1), InfBad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Badness(tt.excess, tt.total))
		})
	}
}

func TestBadness_MonotoneAndBounded(t *testing.T) {
	for _, total := range []scaled.Scaled{1, 300, pt(1), pt(6), pt(250)} {
		prev := 0
		for excess := scaled.Scaled(0); excess < 40*total+pt(1); excess += total/7 + 1 {
			b := Badness(excess, total)
			if b < prev {
				t.Fatalf("badness(%v, %v) = %d dropped below %d", excess, total, b, prev)
			}
			if b < 0 || b > InfBad {
				t.Fatalf("badness(%v, %v) = %d out of range", excess, total, b)
			}
			prev = b
		}
		assert.Equal(t, InfBad, prev, "total %v should saturate", total)
	}
}
