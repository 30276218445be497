package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"galley/pkg/font"
	"galley/pkg/hlist"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/scaled"
	"galley/pkg/show"
	"galley/pkg/text"
)

// hpackOptions holds flags for the hpack command.
type hpackOptions struct {
	*rootOptions
	Width   string
	Natural bool
	Font    string
	Size    float64
}

func newHPackCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &hpackOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hpack <text>...",
		Short: "Pack text into a single hbox and show it",
		Long: `Pack text into one hbox, set to --width (the configured hsize by default)
or to its natural width, and print the box with any report about it.

Without --font every character is a 5pt by 7+2pt cell.

Example:
  galley hpack --width 40pt "a few words"
  galley hpack --font Go-Regular.ttf --size 10 --natural "Hello"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHPack(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&opts.Width, "width", "", "box width (default hsize)")
	cmd.Flags().BoolVar(&opts.Natural, "natural", false, "pack to the natural width")
	cmd.Flags().StringVar(&opts.Font, "font", "", "TrueType font file")
	cmd.Flags().Float64Var(&opts.Size, "size", 10, "font size in points")
	return cmd
}

// cellFont is the metric-only font used when no font file is given.
func cellFont(tbl *font.Table) font.ID {
	w := scaled.FromInt(5)
	return tbl.AddFixed("cell",
		font.CharInfo{Width: w, Height: scaled.FromInt(7), Depth: scaled.FromInt(2)},
		font.Params{Space: w, SpaceStretch: w / 2, SpaceShrink: w / 3, Quad: 2 * w})
}

func runHPack(cmd *cobra.Command, opts *hpackOptions, s string) error {
	cfg := opts.config
	width := cfg.Break.Shape.Width
	if opts.Width != "" {
		v, err := scaled.Parse(opts.Width)
		if err != nil {
			return err
		}
		width = v
	}

	fonts := font.NewTable()
	var f font.ID
	if opts.Font != "" {
		fp := text.DefaultFontPath(".")
		fp.Dirs = append(fp.Dirs, cfg.FontDirs...)
		path, err := fp.Resolve(opts.Font)
		if err != nil {
			return err
		}
		if f, err = fonts.LoadFace(opts.Font, path, opts.Size); err != nil {
			return err
		}
	} else {
		f = cellFont(fonts)
	}

	pk := pack.New(node.NewArena(), fonts, cfg.Pack)
	// The text is a single line of input.
	pk.Provenance = pack.Provenance{Line: 1}
	list := hlist.New(pk, f, opts.logger).Text(s)
	var box node.Handle
	var diag pack.Diagnostics
	var err error
	if opts.Natural {
		box, diag, err = pk.HPackNatural(list)
	} else {
		box, diag, err = pk.HPack(list, width, pack.Exactly, nil)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	showOpts := cfg.Show
	showOpts.FontName = fonts.Name
	for _, d := range diag.Reports {
		logDiagnostic(opts.logger, d, 0)
		if err := show.Diagnostic(w, pk.Arena, d, showOpts); err != nil {
			return err
		}
	}
	if len(diag.Reports) == 0 {
		if err := show.Box(w, pk.Arena, box, showOpts); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "%% badness %d\n", diag.Badness)
	return nil
}
