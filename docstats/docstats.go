// Package docstats computes summary statistics for a reconstructed
// Markdown document by walking its parsed AST.
package docstats

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// DocumentStats summarizes a finished document.
type DocumentStats struct {
	WordCount     int `json:"wordCount"`
	HeadingCount  int `json:"headingCount"`
	TableCount    int `json:"tableCount"`
	ListItemCount int `json:"listItemCount"`
	ImageCount    int `json:"imageCount"`
	PageCount     int `json:"pageCount"`
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Compute parses the Markdown and counts headings, tables, list items,
// images, and words. pageCount is supplied by the caller.
func Compute(markdown string, pageCount int) DocumentStats {
	src := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(src))

	stats := DocumentStats{PageCount: pageCount}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			stats.HeadingCount++
		case *extast.Table:
			stats.TableCount++
		case *ast.ListItem:
			stats.ListItemCount++
		case *ast.Image:
			stats.ImageCount++
		case *ast.Text:
			stats.WordCount += countWords(string(v.Segment.Value(src)))
		case *ast.FencedCodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				stats.WordCount += countWords(string(seg.Value(src)))
			}
		case *ast.CodeBlock:
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				stats.WordCount += countWords(string(seg.Value(src)))
			}
		}
		return ast.WalkContinue, nil
	})
	return stats
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
