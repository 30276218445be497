// Package config loads galley settings with viper.
//
// Settings come from, in increasing precedence: the plain defaults, a
// galley.yaml file (the working directory, or an explicit path), GALLEY_*
// environment variables, and command line flags bound by the caller.
// Nested keys map to environment names with "_", so render.scale is read
// from GALLEY_RENDER_SCALE.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"galley/pkg/glue"
	"galley/pkg/linebreak"
	"galley/pkg/pack"
	"galley/pkg/render"
	"galley/pkg/scaled"
	"galley/pkg/show"
)

const (
	configFileName = "galley"
	configFileType = "yaml"
	envPrefix      = "GALLEY"
)

// Keys.
const (
	KeyHSize                = "hsize"
	KeyPretolerance         = "pretolerance"
	KeyTolerance            = "tolerance"
	KeyEmergencyStretch     = "emergency_stretch"
	KeyAllowOverfull        = "allow_overfull"
	KeyHyphenPenalty        = "hyphen_penalty"
	KeyExHyphenPenalty      = "ex_hyphen_penalty"
	KeyLinePenalty          = "line_penalty"
	KeyAdjDemerits          = "adj_demerits"
	KeyDoubleHyphenDemerits = "double_hyphen_demerits"
	KeyFinalHyphenDemerits  = "final_hyphen_demerits"
	KeyLooseness            = "looseness"
	KeyLeftSkip             = "left_skip"
	KeyRightSkip            = "right_skip"
	KeyHBadness             = "hbadness"
	KeyVBadness             = "vbadness"
	KeyHFuzz                = "hfuzz"
	KeyVFuzz                = "vfuzz"
	KeyOverfullRule         = "overfull_rule"
	KeyBaselineSkip         = "baseline_skip"
	KeyLineSkip             = "line_skip"
	KeyLineSkipLimit        = "line_skip_limit"
	KeyFontDirs             = "fonts.dirs"
	KeyShowDepth            = "show.depth"
	KeyShowBreadth          = "show.breadth"
	KeyRenderScale          = "render.scale"
	KeyRenderMargin         = "render.margin"
	KeyRenderOutlines       = "render.outlines"
	KeyWorkers              = "workers"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("config: invalid setting")

// Config is the resolved configuration.
type Config struct {
	// File is the configuration file that was read, if any.
	File string

	Break    linebreak.Params
	Pack     pack.Params
	Stack    Stack
	Show     show.Options
	Render   render.Options
	FontDirs []string
	// Workers bounds how many paragraphs are broken at once; zero or less
	// means no bound.
	Workers int
}

// Stack is the interline spacing used when lines are stacked.
type Stack struct {
	BaselineSkip  glue.Spec
	LineSkip      glue.Spec
	LineSkipLimit scaled.Scaled
}

// New returns a viper instance with the plain defaults and environment
// lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyHSize, "345pt")
	v.SetDefault(KeyPretolerance, 100)
	v.SetDefault(KeyTolerance, 200)
	v.SetDefault(KeyEmergencyStretch, "0pt")
	v.SetDefault(KeyAllowOverfull, true)
	v.SetDefault(KeyHyphenPenalty, 50)
	v.SetDefault(KeyExHyphenPenalty, 50)
	v.SetDefault(KeyLinePenalty, 10)
	v.SetDefault(KeyAdjDemerits, 10000)
	v.SetDefault(KeyDoubleHyphenDemerits, 10000)
	v.SetDefault(KeyFinalHyphenDemerits, 5000)
	v.SetDefault(KeyLooseness, 0)
	v.SetDefault(KeyLeftSkip, "0pt")
	v.SetDefault(KeyRightSkip, "0pt")
	v.SetDefault(KeyHBadness, 1000)
	v.SetDefault(KeyVBadness, 1000)
	v.SetDefault(KeyHFuzz, "0.1pt")
	v.SetDefault(KeyVFuzz, "0.1pt")
	v.SetDefault(KeyOverfullRule, "5pt")
	v.SetDefault(KeyBaselineSkip, "12pt")
	v.SetDefault(KeyLineSkip, "1pt")
	v.SetDefault(KeyLineSkipLimit, "0pt")
	v.SetDefault(KeyFontDirs, []string{})
	v.SetDefault(KeyShowDepth, 10)
	v.SetDefault(KeyShowBreadth, 100)
	v.SetDefault(KeyRenderScale, 2.0)
	v.SetDefault(KeyRenderMargin, 10.0)
	v.SetDefault(KeyRenderOutlines, false)
	v.SetDefault(KeyWorkers, 0)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Read reads the configuration file into v. With an empty path galley.yaml
// is looked up in dir, and a missing file is not an error. An explicit path
// must exist.
func Read(v *viper.Viper, path, dir string) error {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configFileType)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load is New followed by Read and Decode.
func Load(path, dir string) (*Config, error) {
	v := New()
	if err := Read(v, path, dir); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode resolves the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	d := decoder{v: v}
	hsize := d.dimen(KeyHSize)

	c := &Config{File: v.ConfigFileUsed()}
	c.Break = linebreak.PlainParams(hsize)
	c.Break.Pretolerance = v.GetInt(KeyPretolerance)
	c.Break.Tolerance = v.GetInt(KeyTolerance)
	c.Break.EmergencyStretch = d.dimen(KeyEmergencyStretch)
	c.Break.AllowOverfull = v.GetBool(KeyAllowOverfull)
	c.Break.HyphenPenalty = v.GetInt(KeyHyphenPenalty)
	c.Break.ExHyphenPenalty = v.GetInt(KeyExHyphenPenalty)
	c.Break.LinePenalty = v.GetInt(KeyLinePenalty)
	c.Break.AdjDemerits = v.GetInt64(KeyAdjDemerits)
	c.Break.DoubleHyphenDemerits = v.GetInt64(KeyDoubleHyphenDemerits)
	c.Break.FinalHyphenDemerits = v.GetInt64(KeyFinalHyphenDemerits)
	c.Break.Looseness = v.GetInt(KeyLooseness)
	c.Break.LeftSkip.Width = d.dimen(KeyLeftSkip)
	c.Break.RightSkip.Width = d.dimen(KeyRightSkip)

	c.Pack = pack.Params{
		HBadness:     v.GetInt(KeyHBadness),
		VBadness:     v.GetInt(KeyVBadness),
		HFuzz:        d.dimen(KeyHFuzz),
		VFuzz:        d.dimen(KeyVFuzz),
		OverfullRule: d.dimen(KeyOverfullRule),
	}
	c.Stack = Stack{
		BaselineSkip:  glue.Spec{Width: d.dimen(KeyBaselineSkip)},
		LineSkip:      glue.Spec{Width: d.dimen(KeyLineSkip)},
		LineSkipLimit: d.dimen(KeyLineSkipLimit),
	}
	c.Show = show.Options{
		Depth:   v.GetInt(KeyShowDepth),
		Breadth: v.GetInt(KeyShowBreadth),
	}
	c.Render = render.Options{
		Scale:    v.GetFloat64(KeyRenderScale),
		Margin:   v.GetFloat64(KeyRenderMargin),
		Outlines: v.GetBool(KeyRenderOutlines),
	}
	c.FontDirs = v.GetStringSlice(KeyFontDirs)
	c.Workers = v.GetInt(KeyWorkers)

	if d.err != nil {
		return nil, d.err
	}
	switch {
	case hsize <= 0:
		return nil, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeyHSize, hsize)
	case c.Break.Tolerance < 0:
		return nil, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, KeyTolerance, c.Break.Tolerance)
	case c.Break.EmergencyStretch < 0:
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeyEmergencyStretch)
	case c.Render.Scale <= 0:
		return nil, fmt.Errorf("%w: %s must be positive, got %g", ErrInvalid, KeyRenderScale, c.Render.Scale)
	case c.Render.Margin < 0:
		return nil, fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalid, KeyRenderMargin, c.Render.Margin)
	}
	return c, nil
}

// decoder keeps the first dimension parse error.
type decoder struct {
	v   *viper.Viper
	err error
}

func (d *decoder) dimen(key string) scaled.Scaled {
	s, err := scaled.Parse(d.v.GetString(key))
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
	}
	return s
}
