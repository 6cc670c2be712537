// Package engine orchestrates the full reconstruction: glyphs in,
// Markdown out. Each page runs the line builder, layout analysis,
// classification, table detection, and emission; the document pass
// then normalizes across pages, computes statistics, and scans for
// garbled fonts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glyphmark/classify"
	"glyphmark/docstats"
	"glyphmark/emit"
	"glyphmark/garble"
	"glyphmark/glyph"
	"glyphmark/layout"
	"glyphmark/normalize"
	"glyphmark/observability"
	"glyphmark/ocr"
	"glyphmark/tables"
)

// Options configures a conversion.
type Options struct {
	// OCR enables the fallback for pages without a text layer. The
	// source must implement ImageRenderer for it to run.
	OCR bool
	// Languages are OCR trained-data hints.
	Languages []string

	Tables              bool
	Math                bool
	HeaderFooterRemoval bool
	HyphenationFix      bool
	PreserveLayout      bool

	// TableConfig overrides the detection weights; nil uses defaults.
	TableConfig *tables.Config

	Logger observability.Logger
}

// DefaultOptions enables every feature except OCR.
func DefaultOptions() Options {
	return Options{
		Tables:              true,
		Math:                true,
		HeaderFooterRemoval: true,
		HyphenationFix:      true,
	}
}

// ImageRenderer is implemented by glyph sources that can rasterize a
// page for OCR. dpi <= 0 selects the renderer's default.
type ImageRenderer interface {
	RenderPage(ctx context.Context, index int, dpi int) (img []byte, format ocr.ImageFormat, w, h float64, err error)
}

// PageError records a page that failed without aborting the document.
type PageError struct {
	Page int
	Err  error
}

func (e PageError) Error() string { return fmt.Sprintf("page %d: %v", e.Page+1, e.Err) }

func (e PageError) Unwrap() error { return e.Err }

// PageResult is the per-page output retained in the final Result.
type PageResult struct {
	Markdown string
	Tables   int
	OCRUsed  bool
	Garble   garble.Report
}

// Result is a completed conversion.
type Result struct {
	Markdown string
	Stats    docstats.DocumentStats
	Pages    []PageResult
	// Errors lists pages that were skipped; the document error is nil
	// as long as at least one page converted.
	Errors []PageError
}

// Engine converts glyph sources to Markdown.
type Engine struct {
	opts Options
	log  observability.Logger
	det  *tables.Detector
}

// New builds an engine. A nil logger is replaced with the no-op one.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	cfg := tables.DefaultConfig()
	if opts.TableConfig != nil {
		cfg = *opts.TableConfig
	}
	return &Engine{
		opts: opts,
		log:  log,
		det:  tables.NewDetector(cfg, log),
	}
}

type extractedPage struct {
	lines []glyph.Line
	size  glyph.Size
	ocr   bool
	err   error
}

// Convert runs the full pipeline over src. Password and invalid-input
// failures from the source abort the conversion; other per-page
// failures are recorded and skipped. Cancellation is honored between
// pages.
func (e *Engine) Convert(ctx context.Context, src glyph.Source) (Result, error) {
	n := src.NumPages()
	if n == 0 {
		return Result{}, glyph.ErrInvalidInput
	}
	start := time.Now()

	// Pass one: extract positioned lines from every page. The body
	// font size is a document-wide statistic, so extraction completes
	// before any page is emitted.
	extracted := make([]extractedPage, n)
	var allLines []glyph.Line
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		extracted[i] = e.extractPage(ctx, src, i)
		if err := extracted[i].err; err != nil {
			if isFatal(err) {
				return Result{}, err
			}
			continue
		}
		allLines = append(allLines, extracted[i].lines...)
	}
	if len(allLines) == 0 {
		if err := firstPageError(extracted); err != nil {
			return Result{}, fmt.Errorf("%w: no page yielded text", err)
		}
		return Result{}, fmt.Errorf("%w: no text content", glyph.ErrInvalidInput)
	}
	bodySize := emit.BodySize(allLines)

	// Pass two: per-page layout, classification, tables, emission.
	res := Result{Pages: make([]PageResult, n)}
	pageMarkdown := make([]string, 0, n)
	tableTotal := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		ep := extracted[i]
		if ep.err != nil {
			res.Errors = append(res.Errors, PageError{Page: i, Err: ep.err})
			e.log.Warn("page skipped",
				observability.Int("page", i+1),
				observability.Error("error", ep.err))
			continue
		}
		if len(ep.lines) == 0 {
			// No text layer and no OCR result; record the page so hosts
			// can tell an empty page from a dropped one.
			res.Errors = append(res.Errors, PageError{Page: i, Err: layout.ErrDegenerateLayout})
			e.log.Warn("page empty",
				observability.Int("page", i+1))
			continue
		}
		md, nt := e.renderPage(ep, bodySize)
		rep := garble.Scan(md)
		res.Pages[i] = PageResult{Markdown: md, Tables: nt, OCRUsed: ep.ocr, Garble: rep}
		pageMarkdown = append(pageMarkdown, md)
		tableTotal += nt
	}

	// The document passes below run over all pages at once; honor
	// cancellation once more between the per-page and cross-page work.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	norm := normalize.New(normalize.Options{
		HeaderFooter: e.opts.HeaderFooterRemoval,
		Hyphenation:  e.opts.HyphenationFix,
		Defragment:   !e.opts.PreserveLayout,
		Bullets:      true,
		HeaderLines:  3,
		Similarity:   0.8,
		Coverage:     0.5,
	})
	res.Markdown = norm.Document(pageMarkdown)
	res.Stats = docstats.Compute(res.Markdown, n)

	garbled := 0
	for _, p := range res.Pages {
		if p.Garble.Recommend {
			garbled++
		}
	}
	e.log.Info("conversion complete",
		observability.Int(observability.MetricPageCount, n),
		observability.Int(observability.MetricTableCount, tableTotal),
		observability.Int(observability.MetricGarbledPages, garbled),
		observability.Int(observability.MetricPageFailures, len(res.Errors)),
		observability.Float64(observability.MetricPageDuration, time.Since(start).Seconds()/float64(n)))
	return res, nil
}

func (e *Engine) extractPage(ctx context.Context, src glyph.Source, i int) extractedPage {
	b := glyph.NewLineBuilder()
	size, err := src.Page(ctx, i, b)
	if err != nil {
		return extractedPage{err: err}
	}
	lines := b.Lines()
	if len(lines) == 0 && e.opts.OCR {
		olines, oerr := e.ocrPage(ctx, src, i, size)
		if oerr != nil {
			return extractedPage{err: oerr}
		}
		return extractedPage{lines: olines, size: size, ocr: true}
	}
	return extractedPage{lines: lines, size: size}
}

// ocrPage rasterizes and recognizes a page without a text layer.
func (e *Engine) ocrPage(ctx context.Context, src glyph.Source, i int, size glyph.Size) ([]glyph.Line, error) {
	renderer, ok := src.(ImageRenderer)
	if !ok {
		return nil, fmt.Errorf("%w: source cannot rasterize pages", ocr.ErrUnavailable)
	}
	img, format, w, h, err := renderer.RenderPage(ctx, i, 0)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", i+1, err)
	}
	result, err := ocr.DefaultEngine().Recognize(ctx, ocr.Input{
		PageIndex: i,
		Image:     img,
		Format:    format,
		Languages: e.opts.Languages,
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("ocr fallback used",
		observability.Int("page", i+1),
		observability.Int("lines", len(result.Lines)))
	return ocr.GlyphLines(result, w, h, size), nil
}

// renderPage turns one extracted page into Markdown.
func (e *Engine) renderPage(ep extractedPage, bodySize float64) (string, int) {
	pl, err := layout.Analyze(ep.lines, ep.size)
	if err != nil {
		// Degenerate layouts fall back to plain top-to-bottom text.
		if errors.Is(err, layout.ErrDegenerateLayout) {
			return plainText(ep.lines), 0
		}
		return "", 0
	}
	regions := classify.Page(pl, bodySize)

	detected := map[int][]tables.Table{}
	total := 0
	if e.opts.Tables {
		for ri, r := range regions {
			if r.Type != classify.PotentialTable {
				continue
			}
			ts := e.det.Detect(r.Block.Lines)
			if len(ts) > 0 {
				detected[ri] = ts
				total += len(ts)
			}
		}
	}

	em := emit.NewEmitter(bodySize, emit.Options{
		Tables:         e.opts.Tables,
		Math:           e.opts.Math,
		CodeFences:     true,
		PreserveLayout: e.opts.PreserveLayout,
	})
	return em.Page(regions, detected), total
}

func plainText(lines []glyph.Line) string {
	var out []byte
	for _, l := range lines {
		out = append(out, l.Text...)
		out = append(out, '\n')
	}
	return string(out)
}

// isFatal reports whether a page error should abort the whole
// conversion.
func isFatal(err error) bool {
	return errors.Is(err, glyph.ErrPasswordRequired) ||
		errors.Is(err, glyph.ErrPasswordIncorrect) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func firstPageError(pages []extractedPage) error {
	for _, p := range pages {
		if p.err != nil {
			return p.err
		}
	}
	return nil
}
