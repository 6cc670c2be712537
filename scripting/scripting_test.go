package scripting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"glyphmark/docstats"
)

func TestTransform(t *testing.T) {
	e := NewEngine()
	script := `function transform(markdown, stats) {
		return markdown.toUpperCase() + "\n" + stats.pageCount + " pages";
	}`
	out, err := e.Transform(context.Background(), script, "hello", docstats.DocumentStats{PageCount: 4})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.HasPrefix(out, "HELLO") || !strings.Contains(out, "4 pages") {
		t.Fatalf("out = %q", out)
	}
}

func TestTransformStatsFields(t *testing.T) {
	e := NewEngine()
	script := `function transform(markdown, stats) {
		return [stats.wordCount, stats.headingCount, stats.tableCount].join(",");
	}`
	stats := docstats.DocumentStats{WordCount: 10, HeadingCount: 2, TableCount: 1}
	out, err := e.Transform(context.Background(), script, "x", stats)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != "10,2,1" {
		t.Fatalf("out = %q", out)
	}
}

func TestTransformMissingFunction(t *testing.T) {
	e := NewEngine()
	if _, err := e.Transform(context.Background(), `var x = 1;`, "doc", docstats.DocumentStats{}); err == nil {
		t.Fatal("missing transform accepted")
	}
}

func TestTransformUndefinedResult(t *testing.T) {
	e := NewEngine()
	out, err := e.Transform(context.Background(), `function transform(markdown, stats) {}`, "unchanged", docstats.DocumentStats{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out != "unchanged" {
		t.Fatalf("out = %q", out)
	}
}

func TestTransformCancelledContext(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Transform(ctx, `function transform(m) { return m; }`, "doc", docstats.DocumentStats{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestTransformScriptError(t *testing.T) {
	e := NewEngine()
	if _, err := e.Transform(context.Background(), `throw new Error("boom");`, "doc", docstats.DocumentStats{}); err == nil {
		t.Fatal("script error swallowed")
	}
}
