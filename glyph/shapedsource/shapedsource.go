// Package shapedsource is a glyph source backed by in-memory page
// descriptions. Given a font file it positions characters with real
// shaped advances; without one it falls back to half-em spacing. It
// serves synthetic documents in tests and programmatic callers that
// already hold text.
package shapedsource

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"glyphmark/geo"
	"glyphmark/glyph"
)

// LineSpec positions one line of text on a synthetic page. X, Y is the
// baseline origin in page units with a bottom-left origin.
type LineSpec struct {
	Text string
	X, Y float64
	Size float64
	Font glyph.Font
}

// PageSpec is one synthetic page.
type PageSpec struct {
	Size  glyph.Size
	Lines []LineSpec
}

// Source implements glyph.Source over page specs.
type Source struct {
	pages []PageSpec
	face  *gofont.Face
}

// Option configures a Source.
type Option func(*Source) error

// WithFontData supplies a TTF/OTF font; character advances then come
// from shaping instead of the half-em estimate.
func WithFontData(data []byte) Option {
	return func(s *Source) error {
		face, err := gofont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parse font: %w", err)
		}
		s.face = face
		return nil
	}
}

// New builds a source over the given pages.
func New(pages []PageSpec, opts ...Option) (*Source, error) {
	s := &Source{pages: pages}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NumPages returns the page count.
func (s *Source) NumPages() int { return len(s.pages) }

// Page streams one synthetic page into sink.
func (s *Source) Page(ctx context.Context, index int, sink glyph.Sink) (glyph.Size, error) {
	if err := ctx.Err(); err != nil {
		return glyph.Size{}, err
	}
	if index < 0 || index >= len(s.pages) {
		return glyph.Size{}, fmt.Errorf("%w: page %d out of range", glyph.ErrInvalidInput, index)
	}
	page := s.pages[index]
	for _, line := range page.Lines {
		s.emitLine(line, sink)
	}
	return page.Size, nil
}

func (s *Source) emitLine(line LineSpec, sink glyph.Sink) {
	runes := []rune(line.Text)
	if len(runes) == 0 {
		return
	}
	size := line.Size
	if size <= 0 {
		size = 12
	}
	advances := s.advances(runes, size)

	width := 0.0
	for _, a := range advances {
		width += a
	}
	bbox := geo.Rect{
		MinX: line.X, MinY: line.Y,
		MaxX: line.X + width, MaxY: line.Y + size,
	}

	sink.BeginLine(bbox, glyph.Horizontal)
	x := line.X
	for i, r := range runes {
		sink.Char(r, x, line.Y, line.Font, size)
		x += advances[i]
	}
	sink.EndLine()
}

// advances returns one advance per rune, shaped when a face is loaded.
func (s *Source) advances(runes []rune, size float64) []float64 {
	out := make([]float64, len(runes))
	if s.face == nil {
		for i := range out {
			out[i] = size * 0.5
		}
		return out
	}

	shaper := &shaping.HarfbuzzShaper{}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      s.face,
		Size:      fixed.Int26_6(size * 64),
		Language:  language.DefaultLanguage(),
	}
	output := shaper.Shape(input)

	// Ligatures collapse clusters; the whole advance lands on the
	// cluster's first rune.
	for _, g := range output.Glyphs {
		c := g.ClusterIndex
		if c >= 0 && c < len(out) {
			out[c] += float64(g.XAdvance) / 64.0
		}
	}
	for i := range out {
		if out[i] == 0 && i > 0 {
			// runes swallowed into the previous cluster advance nothing
			continue
		}
		if out[i] == 0 {
			out[i] = size * 0.5
		}
	}
	return out
}
