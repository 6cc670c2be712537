package layout

import (
	"errors"
	"testing"

	"glyphmark/glyph"
)

func mkLine(text string, minX, maxX, y, size float64) glyph.Line {
	l := glyph.Line{Text: text, MinX: minX, MaxX: maxX, Y: y, AvgFontSize: size}
	step := (maxX - minX) / float64(len(text)+1)
	x := minX
	for _, r := range text {
		l.Glyphs = append(l.Glyphs, glyph.Glyph{Char: r, X: x, Y: y, Size: size})
		x += step
	}
	return l
}

var letterSize = glyph.Size{Width: 612, Height: 792}

func TestAnalyzeEmptyPage(t *testing.T) {
	_, err := Analyze(nil, letterSize)
	if !errors.Is(err, ErrDegenerateLayout) {
		t.Fatalf("err = %v, want ErrDegenerateLayout", err)
	}
}

func TestAnalyzeSingleColumn(t *testing.T) {
	var lines []glyph.Line
	for i := 0; i < 10; i++ {
		lines = append(lines, mkLine("a line of ordinary text", 72, 540, 700-float64(i)*14, 12))
	}
	pl, err := Analyze(lines, letterSize)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if pl.IsMultiColumn {
		t.Fatal("single column flagged as multi-column")
	}
	if len(pl.Columns) != 1 {
		t.Fatalf("columns = %d", len(pl.Columns))
	}
	if len(pl.Blocks) != 1 {
		t.Fatalf("blocks = %d", len(pl.Blocks))
	}
}

func TestAnalyzeTwoColumns(t *testing.T) {
	var lines []glyph.Line
	for i := 0; i < 12; i++ {
		y := 700 - float64(i)*14
		lines = append(lines, mkLine("left column sentence text", 50, 280, y, 12))
		lines = append(lines, mkLine("right column sentence text", 330, 560, y, 12))
	}
	pl, err := Analyze(lines, letterSize)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !pl.IsMultiColumn {
		t.Fatal("two-column page not flagged")
	}
	if len(pl.Columns) != 2 {
		t.Fatalf("columns = %d", len(pl.Columns))
	}
	if pl.Columns[0].X >= pl.Columns[1].X {
		t.Fatal("columns not sorted by x")
	}
	for _, l := range pl.Columns[0].Lines {
		if l.MinX > 300 {
			t.Fatalf("right line assigned to left column: %v", l.MinX)
		}
	}
}

func TestGroupBlocksSplitsOnGap(t *testing.T) {
	lines := []glyph.Line{
		mkLine("first paragraph line one", 72, 540, 700, 12),
		mkLine("first paragraph line two", 72, 540, 686, 12),
		// 2.5 x 12 = 30; a 60pt gap starts a new block.
		mkLine("second paragraph line one", 72, 540, 626, 12),
		mkLine("second paragraph line two", 72, 540, 612, 12),
	}
	pl, err := Analyze(lines, letterSize)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(pl.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(pl.Blocks))
	}
	if len(pl.Blocks[0].Lines) != 2 || len(pl.Blocks[1].Lines) != 2 {
		t.Fatalf("block sizes = %d/%d", len(pl.Blocks[0].Lines), len(pl.Blocks[1].Lines))
	}
	// Blocks come out top to bottom.
	if pl.Blocks[0].Lines[0].Y < pl.Blocks[1].Lines[0].Y {
		t.Fatal("blocks not in reading order")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	var lines []glyph.Line
	for i := 0; i < 8; i++ {
		y := 700 - float64(i)*14
		lines = append(lines, mkLine("left side words", 50, 280, y, 12))
		lines = append(lines, mkLine("right side words", 330, 560, y, 12))
	}
	a, _ := Analyze(lines, letterSize)
	b, _ := Analyze(lines, letterSize)
	if len(a.Blocks) != len(b.Blocks) || a.IsMultiColumn != b.IsMultiColumn {
		t.Fatal("repeated analysis differs")
	}
	for i := range a.Blocks {
		if a.Blocks[i].Text() != b.Blocks[i].Text() {
			t.Fatalf("block %d text differs", i)
		}
	}
}
