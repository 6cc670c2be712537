package ocr

import (
	"context"
	"errors"
	"testing"

	"glyphmark/glyph"
)

func TestDefaultEngineUnavailable(t *testing.T) {
	prev := DefaultEngine()
	defer SetDefaultEngine(prev)
	SetDefaultEngine(unavailableEngine{})
	_, err := DefaultEngine().Recognize(context.Background(), Input{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestGlyphLinesCoordinates(t *testing.T) {
	// A 1224x1584 render of a 612x792 page: scale is exactly 0.5.
	res := Result{
		Lines: []Line{{
			Text: "Hi",
			X:    144, Y: 184, Width: 100, Height: 24,
			Words: []Word{{Text: "Hi", X: 144, Y: 184, Width: 100, Height: 24}},
		}},
	}
	page := glyph.Size{Width: 612, Height: 792}
	lines := GlyphLines(res, 1224, 1584, page)
	if len(lines) != 1 {
		t.Fatalf("lines = %d", len(lines))
	}
	l := lines[0]
	// Top-left (144,184..208) maps to a bottom-left baseline of
	// 792 - 208*0.5 = 688.
	if l.Y != 688 {
		t.Fatalf("baseline = %v", l.Y)
	}
	if l.MinX != 72 || l.MaxX != 122 {
		t.Fatalf("extent = %v..%v", l.MinX, l.MaxX)
	}
	if l.AvgFontSize != 12 {
		t.Fatalf("font size = %v", l.AvgFontSize)
	}
	if len(l.Glyphs) != 2 {
		t.Fatalf("glyphs = %d", len(l.Glyphs))
	}
	// Characters spread evenly across the word box.
	if l.Glyphs[0].X != 72 || l.Glyphs[1].X != 97 {
		t.Fatalf("glyph xs = %v, %v", l.Glyphs[0].X, l.Glyphs[1].X)
	}
}

func TestGlyphLinesRejectsDegenerateSizes(t *testing.T) {
	res := Result{Lines: []Line{{Text: "x", Width: 10, Height: 10}}}
	if got := GlyphLines(res, 0, 100, glyph.Size{Width: 612, Height: 792}); got != nil {
		t.Fatalf("zero-width image produced lines: %v", got)
	}
}
