package emit

import (
	"strings"
	"testing"

	"glyphmark/classify"
	"glyphmark/geo"
	"glyphmark/glyph"
	"glyphmark/layout"
	"glyphmark/tables"
)

func mkLine(text string, size float64, bold bool) glyph.Line {
	l := glyph.Line{Text: text, AvgFontSize: size, Bold: bold}
	for i, r := range text {
		l.Glyphs = append(l.Glyphs, glyph.Glyph{Char: r, X: float64(i) * size * 0.5, Size: size})
	}
	return l
}

func proseRegion(texts ...string) classify.Region {
	b := layout.Block{AvgFontSize: 12}
	for _, t := range texts {
		b.Lines = append(b.Lines, mkLine(t, 12, false))
	}
	return classify.Region{Type: classify.Prose, Block: b}
}

func render(regions ...classify.Region) string {
	e := NewEmitter(12, DefaultOptions())
	return e.Page(regions, nil)
}

func TestBodySize(t *testing.T) {
	lines := []glyph.Line{
		mkLine("a long run of body text here", 12, false),
		mkLine("short", 18, false),
	}
	if got := BodySize(lines); got != 12 {
		t.Fatalf("BodySize = %v", got)
	}
	// Ties break toward the smaller size.
	lines = []glyph.Line{
		mkLine("equal", 12, false),
		mkLine("equal", 10, false),
	}
	if got := BodySize(lines); got != 10 {
		t.Fatalf("tied BodySize = %v", got)
	}
}

func TestHeadingEmission(t *testing.T) {
	r := classify.Region{
		Type:         classify.Heading,
		HeadingLevel: 2,
		Block:        layout.Block{Lines: []glyph.Line{mkLine("Background", 15, false)}},
	}
	got := render(r)
	if got != "## Background" {
		t.Fatalf("got %q", got)
	}
	// A missing level falls back to 3.
	r.HeadingLevel = 0
	if got := render(r); got != "### Background" {
		t.Fatalf("got %q", got)
	}
}

func TestListEmission(t *testing.T) {
	b := layout.Block{Lines: []glyph.Line{
		mkLine("• first item", 12, false),
		mkLine("2. second item", 12, false),
	}}
	got := render(classify.Region{Type: classify.List, Block: b})
	want := "- first item\n2. second item"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCodeEmission(t *testing.T) {
	b := layout.Block{Lines: []glyph.Line{
		mkLine("x := compute()", 10, false),
	}}
	got := render(classify.Region{Type: classify.Code, Block: b})
	if !strings.HasPrefix(got, "```\n") || !strings.Contains(got, "x := compute()") {
		t.Fatalf("got %q", got)
	}
}

func TestParagraphMergeLowercase(t *testing.T) {
	got := render(
		proseRegion("The measurement was repeated three times"),
		proseRegion("under identical laboratory conditions."),
	)
	want := "The measurement was repeated three times under identical laboratory conditions."
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestParagraphBreakAfterSentence(t *testing.T) {
	got := render(
		proseRegion("This is a complete sentence."),
		proseRegion("Another paragraph starts here."),
	)
	if !strings.Contains(got, "sentence.\n\nAnother") {
		t.Fatalf("got %q", got)
	}
}

func TestParagraphMergeAfterConnective(t *testing.T) {
	// "the" cannot end a thought; the capital that follows still merges
	// when the vertical gap is small.
	a := proseRegion("The results depend entirely on the")
	a.Block.BBox = geo.Rect{MinY: 688, MaxY: 700}
	b := proseRegion("Temperature recorded during each trial.")
	b.Block.BBox = geo.Rect{MinY: 674, MaxY: 686}
	got := render(a, b)
	if strings.Contains(got, "\n\n") {
		t.Fatalf("connective line split into paragraphs: %q", got)
	}
}

func TestParagraphBreakOnLabel(t *testing.T) {
	got := render(
		proseRegion("The full dataset appears below the"),
		proseRegion("Figure Caption: sampled values by region"),
	)
	if !strings.Contains(got, "\n\n") {
		t.Fatalf("label line merged into paragraph: %q", got)
	}
}

func TestBoldParagraph(t *testing.T) {
	b := layout.Block{Lines: []glyph.Line{mkLine("Important notice", 12, true)}}
	got := render(classify.Region{Type: classify.Prose, Block: b})
	if got != "**Important notice**" {
		t.Fatalf("got %q", got)
	}
}

func TestMathInProse(t *testing.T) {
	got := render(proseRegion("The area is A = πr²"))
	want := `The area is A = $\pi r^{2}$`
	if got != want {
		t.Fatalf("got %q", got)
	}
	// Disabled math leaves text alone.
	opts := DefaultOptions()
	opts.Math = false
	e := NewEmitter(12, opts)
	got = e.Page([]classify.Region{proseRegion("The area is A = πr²")}, nil)
	if got != "The area is A = πr²" {
		t.Fatalf("got %q", got)
	}
}

func TestTableEmissionWithResidual(t *testing.T) {
	b := layout.Block{Lines: []glyph.Line{
		mkLine("Name  Age", 12, false),
		mkLine("John  30", 12, false),
		mkLine("Jane  25", 12, false),
		mkLine("Source: census sample.", 12, false),
	}}
	tab := tables.Table{
		Rows:       [][]string{{"Name", "Age"}, {"John", "30"}, {"Jane", "25"}},
		Alignments: []tables.Alignment{tables.AlignLeft, tables.AlignRight},
		StartLine:  0,
		EndLine:    2,
	}
	e := NewEmitter(12, DefaultOptions())
	got := e.Page(
		[]classify.Region{{Type: classify.PotentialTable, Block: b}},
		map[int][]tables.Table{0: {tab}},
	)
	if !strings.Contains(got, "| Name | Age |") {
		t.Fatalf("table header missing: %q", got)
	}
	if !strings.Contains(got, "Source: census sample.") {
		t.Fatalf("residual line lost: %q", got)
	}
	// Tables disabled: the region falls back to prose.
	opts := DefaultOptions()
	opts.Tables = false
	e = NewEmitter(12, opts)
	got = e.Page(
		[]classify.Region{{Type: classify.PotentialTable, Block: b}},
		map[int][]tables.Table{0: {tab}},
	)
	if strings.Contains(got, "|") {
		t.Fatalf("pipe table emitted with tables disabled: %q", got)
	}
}
