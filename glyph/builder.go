package glyph

import (
	"strings"

	"glyphmark/geo"
)

// LineBuilder accumulates glyph events into committed Lines. It
// implements Sink. On BeginLine the provisional bbox is stored; each
// Char appends to the open line; EndLine commits the line if it is
// non-empty. No reordering is performed.
type LineBuilder struct {
	lines []Line

	open    bool
	bbox    geo.Rect
	glyphs  []Glyph
	sizeSum float64
	boldN   int
	italicN int
	textBuf strings.Builder
}

// NewLineBuilder returns an empty builder ready to receive events.
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{}
}

// BeginLine opens a new line with the shaper's provisional bbox.
// An unterminated previous line is committed first.
func (b *LineBuilder) BeginLine(bbox geo.Rect, _ WritingMode) {
	if b.open {
		b.EndLine()
	}
	b.open = true
	b.bbox = bbox
	b.glyphs = nil
	b.sizeSum = 0
	b.boldN = 0
	b.italicN = 0
	b.textBuf.Reset()
}

// Char appends one glyph to the open line. Events outside a line frame
// open an implicit line so a misbehaving shaper loses no text.
func (b *LineBuilder) Char(c rune, x, y float64, font Font, size float64) {
	if !b.open {
		b.BeginLine(geo.Rect{}, Horizontal)
	}
	b.glyphs = append(b.glyphs, Glyph{Char: c, X: x, Y: y, Size: size, Font: font})
	b.sizeSum += size
	if font.Weight == WeightBold {
		b.boldN++
	}
	if font.Style == StyleItalic {
		b.italicN++
	}
	b.textBuf.WriteRune(c)
}

// EndLine commits the open line if it contains at least one glyph.
func (b *LineBuilder) EndLine() {
	if !b.open {
		return
	}
	b.open = false
	if len(b.glyphs) == 0 {
		return
	}

	n := len(b.glyphs)
	line := Line{
		Glyphs:      b.glyphs,
		Y:           b.glyphs[0].Y,
		AvgFontSize: b.sizeSum / float64(n),
		Bold:        b.boldN*2 > n,
		Italic:      b.italicN*2 > n,
		Text:        b.textBuf.String(),
	}

	minX := b.glyphs[0].X
	maxX := b.glyphs[0].X
	for _, g := range b.glyphs {
		if g.X < minX {
			minX = g.X
		}
		if g.X > maxX {
			maxX = g.X
		}
	}
	// The last origin is not the right edge; extend by a half-em
	// estimate for the final glyph.
	last := b.glyphs[n-1]
	maxX += last.Size * 0.5
	if !b.bbox.Empty() {
		if b.bbox.MinX < minX {
			minX = b.bbox.MinX
		}
		if b.bbox.MaxX > maxX {
			maxX = b.bbox.MaxX
		}
	}
	line.MinX = minX
	line.MaxX = maxX

	b.lines = append(b.lines, line)
	b.glyphs = nil
}

// Lines returns the committed lines in event order. A trailing
// unterminated line is committed first.
func (b *LineBuilder) Lines() []Line {
	if b.open {
		b.EndLine()
	}
	return b.lines
}
