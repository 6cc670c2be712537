package glyph

import (
	"testing"

	"glyphmark/geo"
)

func emit(b *LineBuilder, text string, x, y, size float64, font Font) {
	for _, r := range text {
		b.Char(r, x, y, font, size)
		x += size * 0.5
	}
}

func TestBuilderCommitsLines(t *testing.T) {
	b := NewLineBuilder()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "Hello", 72, 700, 12, Font{})
	b.EndLine()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "World", 72, 686, 12, Font{})
	b.EndLine()

	lines := b.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0].Text != "Hello" || lines[1].Text != "World" {
		t.Fatalf("texts = %q, %q", lines[0].Text, lines[1].Text)
	}
	if lines[0].Y != 700 {
		t.Fatalf("baseline = %v", lines[0].Y)
	}
	if lines[0].MinX != 72 {
		t.Fatalf("minX = %v", lines[0].MinX)
	}
	// Last origin extended by a half em: 72 + 4*6 + 6 = 102.
	if lines[0].MaxX != 102 {
		t.Fatalf("maxX = %v", lines[0].MaxX)
	}
	if lines[0].AvgFontSize != 12 {
		t.Fatalf("avg size = %v", lines[0].AvgFontSize)
	}
}

func TestBuilderImplicitLine(t *testing.T) {
	b := NewLineBuilder()
	// A Char with no BeginLine still lands somewhere.
	b.Char('x', 10, 20, Font{}, 10)
	lines := b.Lines()
	if len(lines) != 1 || lines[0].Text != "x" {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestBuilderSkipsEmptyLines(t *testing.T) {
	b := NewLineBuilder()
	b.BeginLine(geo.Rect{}, Horizontal)
	b.EndLine()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "only", 72, 700, 12, Font{})
	b.EndLine()
	if lines := b.Lines(); len(lines) != 1 {
		t.Fatalf("lines = %d", len(lines))
	}
}

func TestBuilderMajorityStyle(t *testing.T) {
	bold := Font{Weight: WeightBold}
	b := NewLineBuilder()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "abc", 72, 700, 12, bold)
	emit(b, "de", 90, 700, 12, Font{Weight: WeightNormal})
	b.EndLine()
	lines := b.Lines()
	if !lines[0].Bold {
		t.Fatal("3-of-5 bold line not marked bold")
	}
	if lines[0].Italic {
		t.Fatal("line marked italic with no italic glyphs")
	}

	// An even split is not a majority.
	b = NewLineBuilder()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "ab", 72, 700, 12, bold)
	emit(b, "cd", 84, 700, 12, Font{})
	b.EndLine()
	if b.Lines()[0].Bold {
		t.Fatal("2-of-4 bold line marked bold")
	}
}

func TestBuilderBBoxWidens(t *testing.T) {
	b := NewLineBuilder()
	b.BeginLine(geo.Rect{MinX: 50, MaxX: 560, MinY: 700, MaxY: 712}, Horizontal)
	emit(b, "mid", 200, 700, 12, Font{})
	b.EndLine()
	l := b.Lines()[0]
	if l.MinX != 50 || l.MaxX != 560 {
		t.Fatalf("bbox not honored: %v..%v", l.MinX, l.MaxX)
	}
}

func TestBuilderTrailingOpenLine(t *testing.T) {
	b := NewLineBuilder()
	b.BeginLine(geo.Rect{}, Horizontal)
	emit(b, "tail", 72, 700, 12, Font{})
	// No EndLine; Lines commits it.
	if lines := b.Lines(); len(lines) != 1 || lines[0].Text != "tail" {
		t.Fatalf("lines = %+v", lines)
	}
}
