// Package visualtest compares rendered images with a per-channel tolerance.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Result is the outcome of a comparison.
type Result struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest channel difference found
	// Diff marks differing pixels in red over a gray copy of the actual
	// image. Set only when Options.Diff is true.
	Diff *image.RGBA
}

// Options configure a comparison.
type Options struct {
	// Tolerance is the largest difference per 8-bit channel that still
	// counts as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within this many
	// pixels.
	FuzzyRadius int
	// MaxDifferentPercent accepts images whose share of different pixels
	// is at most this percentage.
	MaxDifferentPercent float64
	// Diff requests a diff image.
	Diff bool
}

// DefaultOptions tolerates anti-aliasing noise of two levels per channel.
func DefaultOptions() Options {
	return Options{Tolerance: 2}
}

// Compare compares actual with expected pixel by pixel. Images of different
// bounds never match.
func Compare(actual, expected image.Image, opts Options) (*Result, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &Result{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}
	res := &Result{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	if opts.Diff {
		res.Diff = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba8(actual.At(x, y))
			diff := channelDiff(a, rgba8(expected.At(x, y)))
			if diff > res.MaxDifference {
				res.MaxDifference = diff
			}
			same := diff <= opts.Tolerance
			if !same && opts.FuzzyRadius > 0 {
				same = fuzzyMatch(a, expected, x, y, opts.FuzzyRadius, opts.Tolerance, bounds)
			}
			if !same {
				res.Match = false
				res.DifferentPixels++
			}
			if res.Diff != nil {
				if same {
					res.Diff.Set(x, y, color.RGBA{a[0], a[0], a[0], 255})
				} else {
					res.Diff.Set(x, y, color.RGBA{255, 0, 0, 255})
				}
			}
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		pct := float64(res.DifferentPixels) / float64(res.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			res.Match = true
		}
	}
	return res, nil
}

// CompareFiles compares two PNG files.
func CompareFiles(actualPath, expectedPath string, opts Options) (*Result, error) {
	actual, err := LoadPNG(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual image: %w", err)
	}
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected image: %w", err)
	}
	return Compare(actual, expected, opts)
}

// LoadPNG decodes the PNG file at path.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// SavePNG encodes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func rgba8(c color.Color) [4]uint8 {
	r, g, b, a := c.RGBA()
	return [4]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b [4]uint8) int {
	max := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

// fuzzyMatch reports whether the actual pixel a at (x, y) matches some
// expected pixel within radius.
func fuzzyMatch(a [4]uint8, expected image.Image, x, y, radius, tolerance int, bounds image.Rectangle) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, rgba8(expected.At(p.X, p.Y))) <= tolerance {
				return true
			}
		}
	}
	return false
}
