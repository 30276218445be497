package glue

import "galley/pkg/scaled"

// InfBad is the badness of a box that cannot be set at all.
const InfBad = 1_000_000

// saturation is the largest ratio term whose cube still fits under InfBad:
// 6400^3 / 2^18 is exactly 1,000,000.
const saturation = 6400

// Badness approximates 100*(t/s)^3, the badness of a box whose glue has to
// make up t units with s units of stretch or shrink available.
//
// The result is 0 when t is 0, InfBad when there is nothing to stretch or
// shrink (s <= 0), and otherwise non-decreasing in t, saturating at InfBad.
// A negative t is measured by its magnitude.
func Badness(t, s scaled.Scaled) int {
	if t < 0 {
		t = -t
	}
	if t == 0 {
		return 0
	}
	if s <= 0 {
		return InfBad
	}
	// 297^3 is 2^18 * 100.07, so r^3 / 2^18 is about 100 * (t/s)^3.
	r := int64(t) * 297 / int64(s)
	if r > saturation {
		return InfBad
	}
	return int((r*r*r + 1<<17) >> 18)
}
