package normalize

import (
	"fmt"
	"strings"
	"testing"
)

func TestFixHyphenation(t *testing.T) {
	got := FixHyphenation("the trans-\nformation was complete")
	if got != "the transformation was complete" {
		t.Fatalf("got %q", got)
	}
	// In-line hyphens survive.
	if got := FixHyphenation("a well-known example"); got != "a well-known example" {
		t.Fatalf("in-line hyphen broken: %q", got)
	}
	// En dash breaks join too.
	if got := FixHyphenation("co–\noperation"); got != "cooperation" {
		t.Fatalf("en dash: %q", got)
	}
	// Soft hyphens vanish everywhere.
	if got := FixHyphenation("hy\u00adphen"); got != "hyphen" {
		t.Fatalf("soft hyphen: %q", got)
	}
}

func TestFixHyphenationInvariant(t *testing.T) {
	inputs := []string{
		"multi-\nline hy-\nphen chains every-\nwhere",
		"already clean text",
	}
	for _, in := range inputs {
		out := FixHyphenation(in)
		if strings.Contains(out, "-\n") {
			t.Fatalf("hyphen-newline remains in %q", out)
		}
		if out != FixHyphenation(out) {
			t.Fatalf("not idempotent for %q", in)
		}
	}
}

func TestMergeBullets(t *testing.T) {
	got := MergeBullets("•\nFirst item\n•\nSecond item")
	want := "- First item\n- Second item"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	// A bullet followed by another bullet line stays put.
	in := "•\n• already marked"
	if got := MergeBullets(in); got != in {
		t.Fatalf("got %q", got)
	}
}

func TestMaskLine(t *testing.T) {
	if MaskLine("Page 12") != MaskLine("Page 173") {
		t.Fatal("digit runs not masked equally")
	}
	if MaskLine("  Document   Title ") != "document title" {
		t.Fatalf("got %q", MaskLine("  Document   Title "))
	}
}

func TestJaccard(t *testing.T) {
	if j := Jaccard("document title", "document title"); j != 1 {
		t.Fatalf("identical lines = %v", j)
	}
	if j := Jaccard("alpha beta", "gamma delta"); j != 0 {
		t.Fatalf("disjoint lines = %v", j)
	}
}

func headerPages() []string {
	var pages []string
	titles := []string{"Document Title", "DOCUMENT TITLE", "document title", "Document Title", "Document  Title"}
	bodies := []string{
		"Glaciers advance slowly under accumulated snowfall pressure.\nIce cores reveal ancient climate patterns clearly.\nMeltwater feeds downstream rivers during summer.",
		"Volcanoes erupt when magma chambers pressurize suddenly.\nAsh clouds disrupt aviation across whole continents.\nLava flows reshape surrounding terrain permanently.",
		"Estuaries mix fresh river water with tidal seawater.\nBrackish habitats support remarkably diverse species.\nSediment deposits build protective marshland gradually.",
		"Savannas balance scattered trees against open grassland.\nSeasonal fires clear accumulated dry vegetation quickly.\nGrazing herds migrate following sporadic rainfall.",
		"Archipelagos form along volcanic hotspot chains.\nIsland populations diverge into distinct species.\nCoral reefs fringe the sheltered inner lagoons.",
	}
	for i, title := range titles {
		pages = append(pages, fmt.Sprintf("%s\n%s\nPage %d", title, bodies[i], i+1))
	}
	return pages
}

func TestDetectPatterns(t *testing.T) {
	n := New(DefaultOptions())
	patterns := n.DetectPatterns(headerPages())
	foundTitle, foundPage := false, false
	for _, p := range patterns {
		if p == "document title" {
			foundTitle = true
		}
		if p == "page #" {
			foundPage = true
		}
	}
	if !foundTitle {
		t.Fatalf("title pattern missing from %v", patterns)
	}
	if !foundPage {
		t.Fatalf("page-number pattern missing from %v", patterns)
	}
}

func TestDocumentRemovesHeadersAndFooters(t *testing.T) {
	n := New(DefaultOptions())
	out := n.Document(headerPages())
	if strings.Contains(strings.ToLower(out), "document title") {
		t.Fatalf("header survived: %q", out)
	}
	if strings.Contains(out, "Page 3") {
		t.Fatalf("footer survived: %q", out)
	}
	if !strings.Contains(out, "Meltwater") {
		t.Fatalf("body text lost: %q", out)
	}
}

func TestDocumentIdempotent(t *testing.T) {
	n := New(DefaultOptions())
	first := n.Document(headerPages())
	second := n.Document([]string{first})
	if first != second {
		t.Fatalf("second pass changed output:\n%q\nvs\n%q", first, second)
	}
}

func TestDefragment(t *testing.T) {
	got := Defragment("a sentence that was cut\nshort here")
	if got != "a sentence that was cut short here" {
		t.Fatalf("got %q", got)
	}
	// Sentence-final lines keep their paragraph break.
	in := "A finished sentence.\nThe next one starts."
	if got := Defragment(in); got != in {
		t.Fatalf("got %q", got)
	}
	// Headings are never merged into.
	in = "# Heading\nshort line"
	if got := Defragment(in); got != in {
		t.Fatalf("got %q", got)
	}
}
