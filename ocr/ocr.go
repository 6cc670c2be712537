// Package ocr defines the fallback recognition contract used when a
// page has no usable text layer. Providers plug in behind the Engine
// interface; importing ocr/tesseract registers the default provider.
package ocr

import (
	"context"
	"errors"

	"glyphmark/geo"
	"glyphmark/glyph"
)

// ErrUnavailable reports that no OCR provider is installed or that the
// provider cannot run in this environment.
var ErrUnavailable = errors.New("ocr engine unavailable")

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatTIFF ImageFormat = "image/tiff"
)

// Input is a single rendered page image submitted for recognition.
type Input struct {
	// PageIndex is the zero-based index of the source page.
	PageIndex int
	// Image is the encoded payload in the format given by Format.
	Image  []byte
	Format ImageFormat
	// DPI is the render resolution; zero means unknown.
	DPI int
	// Languages holds trained-data hints such as "eng" or "deu".
	Languages []string
	// Metadata passes provider-specific variables through without
	// widening the API.
	Metadata map[string]string
}

// Word is one recognized token in image pixel coordinates, origin at
// the upper-left corner.
type Word struct {
	Text       string
	X, Y       float64
	Width      float64
	Height     float64
	Confidence float64
}

// Line groups words sharing a baseline.
type Line struct {
	Text       string
	Words      []Word
	X, Y       float64
	Width      float64
	Height     float64
	Confidence float64
}

// Result is the recognition output for one page image.
type Result struct {
	PageIndex int
	PlainText string
	Lines     []Line
	Language  string
}

// Engine is the provider contract: one page image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

var defaultEngine Engine = unavailableEngine{}

// DefaultEngine returns the registered default provider.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine replaces the default provider. Providers call this
// from init.
func SetDefaultEngine(e Engine) { defaultEngine = e }

type unavailableEngine struct{}

func (unavailableEngine) Name() string { return "unavailable" }

func (unavailableEngine) Recognize(context.Context, Input) (Result, error) {
	return Result{}, ErrUnavailable
}

// GlyphLines converts a recognition result into positioned lines for
// the layout pipeline. OCR coordinates use a top-left origin in image
// pixels; the returned lines use a bottom-left origin scaled to the
// page size.
func GlyphLines(res Result, imgW, imgH float64, page glyph.Size) []glyph.Line {
	if imgW <= 0 || imgH <= 0 || page.Width <= 0 || page.Height <= 0 {
		return nil
	}
	sx := page.Width / imgW
	sy := page.Height / imgH

	var lines []glyph.Line
	for _, l := range res.Lines {
		if l.Text == "" {
			continue
		}
		size := l.Height * sy
		y := page.Height - (l.Y+l.Height)*sy
		gl := glyph.Line{
			Y:           y,
			MinX:        l.X * sx,
			MaxX:        (l.X + l.Width) * sx,
			AvgFontSize: size,
			Text:        l.Text,
		}
		for _, w := range l.Words {
			gl.Glyphs = append(gl.Glyphs, wordGlyphs(w, sx, sy, page.Height)...)
		}
		if len(gl.Glyphs) == 0 {
			gl.Glyphs = wordGlyphs(Word{
				Text: l.Text, X: l.X, Y: l.Y, Width: l.Width, Height: l.Height,
			}, sx, sy, page.Height)
		}
		lines = append(lines, gl)
	}
	return lines
}

// wordGlyphs spreads a word's characters evenly across its box.
func wordGlyphs(w Word, sx, sy, pageH float64) []glyph.Glyph {
	runes := []rune(w.Text)
	if len(runes) == 0 {
		return nil
	}
	step := w.Width * sx / float64(len(runes))
	y := pageH - (w.Y+w.Height)*sy
	size := w.Height * sy
	out := make([]glyph.Glyph, 0, len(runes))
	for i, r := range runes {
		out = append(out, glyph.Glyph{
			Char: r,
			X:    w.X*sx + float64(i)*step,
			Y:    y,
			Size: size,
		})
	}
	return out
}

// Bounds returns the union of all line boxes in page coordinates.
func Bounds(res Result, imgW, imgH float64, page glyph.Size) geo.Rect {
	var r geo.Rect
	for _, gl := range GlyphLines(res, imgW, imgH, page) {
		r = r.Union(gl.BBox())
	}
	return r
}
