package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"galley/pkg/render"
)

// renderOptions holds flags for the render command.
type renderOptions struct {
	*rootOptions
	Output   string
	Outlines bool
}

func newRenderCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &renderOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <document.yaml>",
		Short: "Break the paragraphs of a document and render them to PNG",
		Long: `Break every paragraph of a document into lines and draw the paragraphs
one below the other into a PNG image.

Example:
  galley render -o poem.png poem.yaml
  galley render --outlines -o boxes.png poem.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "output.png", "output PNG file path")
	cmd.Flags().BoolVar(&opts.Outlines, "outlines", false, "draw the outline of every box")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, path string) error {
	cfg := opts.config
	doc, fonts, err := loadDocument(path, cfg)
	if err != nil {
		return err
	}
	set, err := typeset(cmd.Context(), doc, fonts, cfg, opts.logger)
	if err != nil {
		return err
	}

	ropts := cfg.Render
	ropts.Outlines = ropts.Outlines || opts.Outlines
	var pages []image.Image
	for _, sp := range set {
		r := render.NewRenderer(sp.Packer.Arena, fonts, sp.Box, ropts)
		r.Render(sp.Box)
		pages = append(pages, r.Image())
	}
	img := stackImages(pages)

	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	opts.logger.Info("rendered",
		zap.String("output", opts.Output),
		zap.Int("paragraphs", len(set)),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return nil
}

// stackImages places images one below the other on a white background.
func stackImages(imgs []image.Image) *image.RGBA {
	w, h := 1, 0
	for _, img := range imgs {
		b := img.Bounds()
		w = max(w, b.Dx())
		h += b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, w, max(h, 1)))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}
	return out
}
