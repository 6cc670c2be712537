package classify

import (
	"testing"

	"glyphmark/glyph"
	"glyphmark/layout"
)

func mkBlock(size float64, texts ...string) layout.Block {
	b := layout.Block{AvgFontSize: size}
	y := 700.0
	for _, t := range texts {
		b.Lines = append(b.Lines, glyph.Line{Text: t, Y: y, AvgFontSize: size, MinX: 72, MaxX: 540})
		y -= size * 1.2
	}
	return b
}

func TestHeadingLevels(t *testing.T) {
	cases := []struct {
		size  float64
		level int
	}{
		{18, 1}, // 1.5x body
		{15, 2}, // 1.25x
		{13.5, 3},
	}
	for _, c := range cases {
		r := classifyBlock(mkBlock(c.size, "Results and Discussion"), 12)
		if r.Type != Heading {
			t.Fatalf("size %v classified as %s", c.size, r.Type)
		}
		if r.HeadingLevel != c.level {
			t.Fatalf("size %v level = %d, want %d", c.size, r.HeadingLevel, c.level)
		}
	}
}

func TestHeadingRejectsLongBlocks(t *testing.T) {
	b := mkBlock(18, "line one", "line two", "line three", "line four")
	if r := classifyBlock(b, 12); r.Type == Heading {
		t.Fatal("4-line block accepted as heading")
	}
}

func TestListDetection(t *testing.T) {
	b := mkBlock(12,
		"• first item in the list",
		"• second item in the list",
		"• third item in the list",
	)
	if r := classifyBlock(b, 12); r.Type != List {
		t.Fatalf("type = %s, want list", r.Type)
	}
	// Numbered markers count too.
	b = mkBlock(12, "1. first step", "2. second step", "3. third step")
	if r := classifyBlock(b, 12); r.Type != List {
		t.Fatalf("numbered type = %s, want list", r.Type)
	}
	// A minority of bullets does not make a list.
	b = mkBlock(12,
		"• one bullet only",
		"plain prose line follows here",
		"and another plain prose line",
	)
	if r := classifyBlock(b, 12); r.Type == List {
		t.Fatal("minority bullets classified as list")
	}
}

func TestCodeDetection(t *testing.T) {
	b := mkBlock(10,
		"for i := range items {",
		"    total += items[i].Price;",
		"}",
	)
	if r := classifyBlock(b, 12); r.Type != Code {
		t.Fatalf("type = %s, want code", r.Type)
	}
}

func TestProseDetection(t *testing.T) {
	b := mkBlock(12,
		"The survey was distributed to all participants in the spring.",
		"Responses were collected over a period of six weeks.",
		"The overall completion rate exceeded our expectations.",
	)
	r := classifyBlock(b, 12)
	if r.Type != Prose {
		t.Fatalf("type = %s, want prose", r.Type)
	}
	if r.Confidence < 0.7 {
		t.Fatalf("confidence = %v", r.Confidence)
	}
}

func TestProseColumnOnMultiColumnPage(t *testing.T) {
	left := mkBlock(12,
		"The left column continues the argument from the previous page.",
		"It reads as ordinary English prose with full sentences.",
	)
	right := mkBlock(12,
		"The right column carries on with more of the same discussion.",
		"Neither column should ever be mistaken for a data table.",
	)
	right.Column = 1
	pl := layout.PageLayout{
		Blocks:        []layout.Block{left, right},
		IsMultiColumn: true,
	}
	regions := Page(pl, 12)
	for _, r := range regions {
		if r.Type == PotentialTable {
			t.Fatal("two-column prose produced a potential-table region")
		}
		if r.Type != ProseColumn {
			t.Fatalf("type = %s, want prose-column", r.Type)
		}
	}
}

func TestTableSignalWithoutProse(t *testing.T) {
	// Pipe-delimited cells of long identifiers carry no prose signal at
	// all; even below the dominant table threshold the block stays a
	// table candidate for the detector to confirm or reject.
	b := mkBlock(12,
		"Electroencephalographically|monitored Pseudohypoparathyroidism|confirmed",
		"Immunoelectrophoretically|replicated Counterimmunoelectrophoresis|observed",
	)
	if r := classifyBlock(b, 12); r.Type != PotentialTable {
		t.Fatalf("type = %s, want potential-table", r.Type)
	}
}

func TestMergeAdjacentSameType(t *testing.T) {
	a := classifyBlock(mkBlock(12, "A full sentence of prose appears in this block."), 12)
	b := classifyBlock(mkBlock(12, "Another full sentence of prose follows directly after."), 12)
	merged := mergeAdjacent([]Region{a, b})
	if len(merged) != 1 {
		t.Fatalf("merged regions = %d, want 1", len(merged))
	}
	if len(merged[0].Block.Lines) != 2 {
		t.Fatalf("merged lines = %d", len(merged[0].Block.Lines))
	}
}

func TestFunctionWordRatio(t *testing.T) {
	if r := FunctionWordRatio("the cat sat on the mat"); r < 0.4 {
		t.Fatalf("ratio = %v", r)
	}
	if r := FunctionWordRatio("quarterly revenue totals"); r != 0 {
		t.Fatalf("ratio = %v, want 0", r)
	}
}
