package docstats

import "testing"

func TestComputeSimpleDocument(t *testing.T) {
	md := "# Title\n\nhello world\n"
	s := Compute(md, 1)
	if s.HeadingCount != 1 {
		t.Fatalf("headings = %d", s.HeadingCount)
	}
	if s.WordCount != 3 {
		t.Fatalf("words = %d", s.WordCount)
	}
	if s.PageCount != 1 {
		t.Fatalf("pages = %d", s.PageCount)
	}
}

func TestComputeStructures(t *testing.T) {
	md := "## Data\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
		"- first\n- second\n\n" +
		"![chart](chart.png)\n\n" +
		"```\ncode line here\n```\n"
	s := Compute(md, 3)
	if s.TableCount != 1 {
		t.Fatalf("tables = %d", s.TableCount)
	}
	if s.ListItemCount != 2 {
		t.Fatalf("list items = %d", s.ListItemCount)
	}
	if s.ImageCount != 1 {
		t.Fatalf("images = %d", s.ImageCount)
	}
	if s.HeadingCount != 1 {
		t.Fatalf("headings = %d", s.HeadingCount)
	}
	if s.PageCount != 3 {
		t.Fatalf("pages = %d", s.PageCount)
	}
	// Fenced code contributes to the word count.
	if s.WordCount < 3 {
		t.Fatalf("words = %d", s.WordCount)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute("", 0)
	if s != (DocumentStats{}) {
		t.Fatalf("empty document stats = %+v", s)
	}
}
