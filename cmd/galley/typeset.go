package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"galley/internal/config"
	"galley/pkg/document"
	"galley/pkg/font"
	"galley/pkg/linebreak"
	"galley/pkg/node"
	"galley/pkg/pack"
	"galley/pkg/text"
	"galley/pkg/vlist"
)

// setParagraph is one paragraph broken into lines and stacked in a vbox.
type setParagraph struct {
	ID     string
	Packer *pack.Packer
	Result *linebreak.Result
	Box    node.Handle
	// Reports collects the diagnostics of the lines and of the vbox.
	Reports []pack.Diagnostic
}

// loadDocument reads a document and its fonts.
func loadDocument(path string, cfg *config.Config) (*document.Document, *font.Table, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, nil, err
	}
	fp := text.DefaultFontPath("")
	fp.Dirs = append(append([]string{}, cfg.FontDirs...), fp.Dirs...)
	fonts, err := doc.LoadFonts(fp)
	if err != nil {
		return nil, nil, err
	}
	return doc, fonts, nil
}

// typeset sets the paragraphs of doc concurrently, each in its own arena.
// The results are in document order.
func typeset(ctx context.Context, doc *document.Document, fonts *font.Table, cfg *config.Config, logger *zap.Logger) ([]*setParagraph, error) {
	out := make([]*setParagraph, len(doc.Paragraphs))
	eg, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}
	for i, p := range doc.Paragraphs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sp, err := setOne(doc, fonts, cfg, p, logger.With(zap.String("paragraph", p.ID)))
			if err != nil {
				return fmt.Errorf("paragraph %q: %w", p.ID, err)
			}
			out[i] = sp
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func setOne(doc *document.Document, fonts *font.Table, cfg *config.Config, p document.Paragraph, logger *zap.Logger) (*setParagraph, error) {
	a := node.NewArena()
	pk := pack.New(a, fonts, cfg.Pack)
	items, err := doc.Items(pk, fonts, p, logger)
	if err != nil {
		return nil, err
	}
	res, err := linebreak.New(pk, doc.Params(cfg.Break, p), logger).Break(items)
	if err != nil {
		return nil, err
	}
	logger.Debug("paragraph broken",
		zap.Int("lines", len(res.Lines)),
		zap.Stringer("pass", res.Pass),
		zap.Int64("demerits", res.TotalDemerits))

	sp := &setParagraph{ID: p.ID, Packer: pk, Result: res}
	vb := vlist.NewBuilder(a, cfg.Stack.BaselineSkip, cfg.Stack.LineSkip, cfg.Stack.LineSkipLimit)
	for _, line := range res.Lines {
		vb.Append(line.Box)
		for _, h := range line.Adjust {
			vb.AppendItem(h)
		}
		for _, d := range line.Diagnostics.Reports {
			logDiagnostic(logger, d, line.Number)
			sp.Reports = append(sp.Reports, d)
		}
	}
	pk.Provenance = pack.Provenance{Line: p.EndLine}
	box, diag, err := pk.VPack(vb.List(), 0, pack.Additional)
	if err != nil {
		return nil, err
	}
	for _, d := range diag.Reports {
		logDiagnostic(logger, d, 0)
		sp.Reports = append(sp.Reports, d)
	}
	sp.Box = box
	return sp, nil
}

func logDiagnostic(logger *zap.Logger, d pack.Diagnostic, line int) {
	fields := []zap.Field{
		zap.Stringer("kind", d.Kind),
		zap.Stringer("axis", d.Axis),
		zap.Int("badness", d.Badness),
	}
	if d.Amount != 0 {
		fields = append(fields, zap.Stringer("amount", d.Amount))
	}
	if line > 0 {
		fields = append(fields, zap.Int("line", line))
	}
	if d.Provenance != (pack.Provenance{}) {
		fields = append(fields, zap.Stringer("source", d.Provenance))
	}
	logger.Warn("box report", fields...)
}
