package engine

import (
	"bytes"
	"fmt"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderHTML converts reconstructed Markdown to HTML. GFM covers the
// pipe tables the emitter produces; LaTeX segments become MathML.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}
