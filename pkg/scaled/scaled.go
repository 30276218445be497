// Package scaled implements the fixed-point dimension type shared by every
// packaging routine. A Scaled value counts 1/65536 of a point.
package scaled

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scaled is a dimension in units of 2^-16 pt.
//
// Dimensions that come from input are bounded by MaxDimen. The backing type is
// wider than that so sums over a whole paragraph never overflow.
type Scaled int64

const (
	// Unity is 1pt.
	Unity Scaled = 1 << 16
	// Two is 2pt.
	Two Scaled = 2 << 16
	// MaxDimen is the largest legal dimension, about 16383.99998pt.
	MaxDimen Scaled = 1<<30 - 1
)

// FromPoints converts a point value to the nearest scaled value.
func FromPoints(pt float64) Scaled {
	return Scaled(math.Round(pt * float64(Unity)))
}

// FromInt returns n points.
func FromInt(n int) Scaled {
	return Scaled(n) * Unity
}

// Points returns s as a floating point number of points.
func (s Scaled) Points() float64 {
	return float64(s) / float64(Unity)
}

// Abs returns |s|.
func (s Scaled) Abs() Scaled {
	if s < 0 {
		return -s
	}
	return s
}

// String prints s in points rounded to at most five decimal digits, using the
// shortest digit string that converts back to the same value.
func (s Scaled) String() string {
	var b strings.Builder
	if s < 0 {
		b.WriteByte('-')
		s = -s
	}
	b.WriteString(strconv.FormatInt(int64(s/Unity), 10))
	b.WriteByte('.')
	s = 10*(s%Unity) + 5
	delta := Scaled(10)
	for {
		if delta > Unity {
			s += 0x8000 - 50000 // round the last digit
		}
		b.WriteByte(byte('0' + s/Unity))
		s = 10 * (s % Unity)
		delta *= 10
		if s <= delta {
			break
		}
	}
	return b.String()
}

// units maps the accepted unit suffixes to their size in points.
var units = map[string]float64{
	"pt": 1,
	"pc": 12,
	"in": 72.27,
	"bp": 72.27 / 72,
	"cm": 72.27 / 2.54,
	"mm": 72.27 / 25.4,
	"dd": 1238.0 / 1157,
	"cc": 14856.0 / 1157,
	"sp": 1.0 / 65536,
}

// Parse reads a dimension such as "3.5pt", "-2mm" or "12". A bare number is
// taken as points.
func Parse(text string) (Scaled, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, fmt.Errorf("scaled: empty dimension")
	}
	factor := 1.0
	for suffix, f := range units {
		if strings.HasSuffix(t, suffix) {
			factor = f
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
			break
		}
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("scaled: invalid dimension %q: %w", text, err)
	}
	s := FromPoints(v * factor)
	if s.Abs() > MaxDimen {
		return 0, fmt.Errorf("scaled: dimension %q too large", text)
	}
	return s, nil
}

// MustParse is Parse for constants in tests and defaults.
func MustParse(text string) Scaled {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}
