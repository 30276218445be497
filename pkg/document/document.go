// Package document loads YAML descriptions of fonts and paragraphs to be
// set.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"galley/pkg/font"
	"galley/pkg/hlist"
	"galley/pkg/linebreak"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/scaled"
	"galley/pkg/text"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid document")

// Dimen is a dimension written as in "12pt" or "1.5in".
type Dimen scaled.Scaled

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dimen) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := scaled.Parse(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Dimen(v)
	return nil
}

// Scaled returns d as a scaled dimension.
func (d Dimen) Scaled() scaled.Scaled { return scaled.Scaled(d) }

// Cell gives synthetic metrics in which every glyph has the same box.
type Cell struct {
	Width  Dimen `yaml:"width"`
	Height Dimen `yaml:"height"`
	Depth  Dimen `yaml:"depth"`
}

// Font declares a font. Exactly one of Path and Cell is set.
type Font struct {
	Name string `yaml:"name"`
	// Path is a TrueType file, relative to the document or the font path.
	Path string  `yaml:"path,omitempty"`
	Size float64 `yaml:"size,omitempty"`
	Cell *Cell   `yaml:"cell,omitempty"`

	// Space, Stretch and Shrink override the interword glue.
	Space   *Dimen `yaml:"space,omitempty"`
	Stretch *Dimen `yaml:"stretch,omitempty"`
	Shrink  *Dimen `yaml:"shrink,omitempty"`
}

// Paragraph is a run of text to be broken into lines.
type Paragraph struct {
	ID   string `yaml:"id"`
	Font string `yaml:"font"`
	Text string `yaml:"text"`

	// Optional overrides of the document settings.
	HSize     *Dimen `yaml:"hsize,omitempty"`
	Indent    *Dimen `yaml:"indent,omitempty"`
	Looseness *int   `yaml:"looseness,omitempty"`
	Tolerance *int   `yaml:"tolerance,omitempty"`

	// Line and EndLine are the first and last source lines of the
	// paragraph's entry, or zero when it was not parsed.
	Line    int `yaml:"-"`
	EndLine int `yaml:"-"`
}

// Document is a set of fonts and the paragraphs set in them.
type Document struct {
	HSize      Dimen       `yaml:"hsize"`
	Indent     Dimen       `yaml:"indent,omitempty"`
	Fonts      []Font      `yaml:"fonts"`
	Paragraphs []Paragraph `yaml:"paragraphs"`

	// Dir is the directory relative font paths are resolved against.
	Dir string `yaml:"-"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes and validates a document. Unknown fields are rejected.
func Parse(data []byte, dir string) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	doc.Dir = dir
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err == nil {
		doc.locate(&root)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &doc, nil
}

// locate records where each paragraph sits in the source tree.
func (d *Document) locate(root *yaml.Node) {
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "paragraphs" {
			continue
		}
		for j, n := range root.Content[i+1].Content {
			if j < len(d.Paragraphs) {
				d.Paragraphs[j].Line = n.Line
				d.Paragraphs[j].EndLine = lastLine(n)
			}
		}
	}
}

// lastLine is the last source line spanned by n.
func lastLine(n *yaml.Node) int {
	last := n.Line
	if n.Kind == yaml.ScalarNode && n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 {
		// Block scalars start on the line after their indicator.
		last += strings.Count(strings.TrimSuffix(n.Value, "\n"), "\n") + 1
	}
	for _, c := range n.Content {
		last = max(last, lastLine(c))
	}
	return last
}

func (d *Document) validate() error {
	if d.HSize <= 0 {
		return fmt.Errorf("hsize must be positive")
	}
	names := make(map[string]bool, len(d.Fonts))
	for i, f := range d.Fonts {
		if f.Name == "" {
			return fmt.Errorf("fonts[%d]: name is required", i)
		}
		if names[f.Name] {
			return fmt.Errorf("fonts[%d]: duplicate font %q", i, f.Name)
		}
		names[f.Name] = true
		if (f.Path == "") == (f.Cell == nil) {
			return fmt.Errorf("font %q: exactly one of path and cell is required", f.Name)
		}
		if f.Path != "" && f.Size <= 0 {
			return fmt.Errorf("font %q: size must be positive", f.Name)
		}
	}
	ids := make(map[string]bool, len(d.Paragraphs))
	for i := range d.Paragraphs {
		p := &d.Paragraphs[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("p%d", i+1)
		}
		if ids[p.ID] {
			return fmt.Errorf("paragraphs[%d]: duplicate id %q", i, p.ID)
		}
		ids[p.ID] = true
		if !names[p.Font] {
			return fmt.Errorf("paragraph %q: unknown font %q", p.ID, p.Font)
		}
		if p.HSize != nil && *p.HSize <= 0 {
			return fmt.Errorf("paragraph %q: hsize must be positive", p.ID)
		}
	}
	return nil
}

// LoadFonts registers the document's fonts in a new table. Font files are
// looked up in the document directory first, then along fp.
func (d *Document) LoadFonts(fp text.FontPath) (*font.Table, error) {
	fp.Dirs = append([]string{d.Dir}, fp.Dirs...)
	tbl := font.NewTable()
	for _, f := range d.Fonts {
		var id font.ID
		if f.Cell != nil {
			cell := font.CharInfo{Width: f.Cell.Width.Scaled(), Height: f.Cell.Height.Scaled(), Depth: f.Cell.Depth.Scaled()}
			// A cell font's space is one cell wide unless overridden.
			id = tbl.AddFixed(f.Name, cell, font.Params{
				Space:        cell.Width,
				SpaceStretch: cell.Width / 2,
				SpaceShrink:  cell.Width / 3,
				Quad:         cell.Width,
				XHeight:      cell.Height,
			})
		} else {
			path, err := fp.Resolve(f.Path)
			if err != nil {
				return nil, fmt.Errorf("font %q: %w", f.Name, err)
			}
			if id, err = tbl.LoadFace(f.Name, path, f.Size); err != nil {
				return nil, err
			}
		}
		p := tbl.Params(id)
		if f.Space != nil {
			p.Space = f.Space.Scaled()
		}
		if f.Stretch != nil {
			p.SpaceStretch = f.Stretch.Scaled()
		}
		if f.Shrink != nil {
			p.SpaceShrink = f.Shrink.Scaled()
		}
		tbl.SetParams(id, p)
	}
	return tbl, nil
}

// Items builds the horizontal list of p into the packer's arena. The list
// starts with an empty box as wide as the paragraph indentation.
func (d *Document) Items(pk *pack.Packer, fonts *font.Table, p Paragraph, logger *zap.Logger) ([]node.Handle, error) {
	f, ok := fonts.Lookup(p.Font)
	if !ok {
		return nil, fmt.Errorf("%w: paragraph %q: unknown font %q", ErrInvalid, p.ID, p.Font)
	}
	indent := d.Indent
	if p.Indent != nil {
		indent = *p.Indent
	}
	var list []node.Handle
	if indent != 0 {
		list = append(list, pk.Arena.NewBox(node.HList, indent.Scaled(), 0, 0, nil))
	}
	return hlist.New(pk, f, logger).Append(list, p.Text), nil
}

// Params applies the paragraph's overrides to base. The line width is the
// paragraph's hsize, or the document's. Line reports name the paragraph's
// source lines.
func (d *Document) Params(base linebreak.Params, p Paragraph) linebreak.Params {
	hsize := d.HSize
	if p.HSize != nil {
		hsize = *p.HSize
	}
	base.Shape = linebreak.Shape{Width: hsize.Scaled()}
	if p.Looseness != nil {
		base.Looseness = *p.Looseness
	}
	if p.Tolerance != nil {
		base.Tolerance = *p.Tolerance
	}
	if p.Line > 0 {
		base.Provenance = pack.Provenance{BeginLine: p.Line, Line: p.EndLine}
	}
	return base
}
