package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"galley/pkg/show"
)

// breakOptions holds flags for the break command.
type breakOptions struct {
	*rootOptions
	Breaks bool
}

func newBreakCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &breakOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "break <document.yaml>",
		Short: "Break the paragraphs of a document into lines and show the boxes",
		Long: `Break every paragraph of a document into lines, stack the lines in a
vbox and print it in the box display format, one item per line.

Example:
  galley break poem.yaml
  galley break --breaks --tolerance 1000 poem.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBreak(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.Breaks, "breaks", false, "list the chosen breakpoints")
	return cmd
}

func runBreak(cmd *cobra.Command, opts *breakOptions, path string) error {
	cfg := opts.config
	doc, fonts, err := loadDocument(path, cfg)
	if err != nil {
		return err
	}
	set, err := typeset(cmd.Context(), doc, fonts, cfg, opts.logger)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	showOpts := cfg.Show
	showOpts.FontName = fonts.Name
	for _, sp := range set {
		res := sp.Result
		fmt.Fprintf(w, "%% %s: %d lines, %v, demerits %d\n", sp.ID, len(res.Lines), res.Pass, res.TotalDemerits)
		if opts.Breaks {
			writeBreaks(w, sp)
		}
		if err := show.Box(w, sp.Packer.Arena, sp.Box, showOpts); err != nil {
			return err
		}
	}
	return nil
}

func writeBreaks(w io.Writer, sp *setParagraph) {
	for i, b := range sp.Result.Breaks {
		fmt.Fprintf(w, "%%   line %d: @%d %v %v b=%d d=%d\n",
			sp.Result.Lines[i].Number, b.Pos, b.Type, b.Fitness, b.Badness, b.Demerits)
	}
}
