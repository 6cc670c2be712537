// Package glyph defines the positioned-character data model that feeds
// the reconstruction pipeline, and the event contract a glyph source
// must satisfy.
package glyph

import (
	"context"
	"errors"

	"glyphmark/geo"
)

// Source-side failures. Password errors abort the whole document; the
// rest are recorded per page by the engine.
var (
	ErrInvalidInput      = errors.New("glyph: empty or zero-page document")
	ErrPasswordRequired  = errors.New("glyph: document is encrypted, password required")
	ErrPasswordIncorrect = errors.New("glyph: password incorrect")
)

// Weight is a font weight as reported by the shaper.
type Weight string

const (
	WeightNormal Weight = "normal"
	WeightBold   Weight = "bold"
)

// Style is a font style as reported by the shaper.
type Style string

const (
	StyleNormal Style = "normal"
	StyleItalic Style = "italic"
)

// WritingMode distinguishes horizontal from vertical line layout.
type WritingMode int

const (
	Horizontal WritingMode = iota
	Vertical
)

// Font carries the shaper-reported font attributes of a glyph.
type Font struct {
	Family string
	Weight Weight
	Style  Style
}

// Glyph is one positioned character record. It is the immutable unit of
// the pipeline.
type Glyph struct {
	Char rune
	X    float64 // origin x
	Y    float64 // origin y (baseline)
	Size float64 // font size
	Font Font
}

// Line is an ordered run of glyphs sharing a baseline, as framed by the
// shaper's line events. Reading order within a line is the shaper's
// order (left to right).
type Line struct {
	Glyphs      []Glyph
	Y           float64 // baseline
	MinX        float64
	MaxX        float64
	AvgFontSize float64 // character-count-weighted mean
	Bold        bool    // majority by character count
	Italic      bool
	Text        string
}

// BBox returns the line's bounding box, approximating glyph extents
// from the font size.
func (l Line) BBox() geo.Rect {
	return geo.Rect{
		MinX: l.MinX,
		MinY: l.Y,
		MaxX: l.MaxX,
		MaxY: l.Y + l.AvgFontSize,
	}
}

// Size is a page extent in user-space units.
type Size struct {
	Width  float64
	Height float64
}

// Sink receives the ordered glyph event stream for one page. Events
// arrive in the shaper's visual reading order.
type Sink interface {
	BeginLine(bbox geo.Rect, mode WritingMode)
	Char(c rune, x, y float64, font Font, size float64)
	EndLine()
}

// Source delivers per-page glyph streams for one document. NumPages
// reports the page count; Page replays page index (0-based) into the
// sink and returns the page dimensions.
type Source interface {
	NumPages() int
	Page(ctx context.Context, index int, sink Sink) (Size, error)
}
