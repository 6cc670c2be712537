// Package tesseract provides the gosseract-backed OCR engine and
// registers it as the package-level default.
package tesseract

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"glyphmark/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine using the gosseract client.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single page image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	lines := extractLines(c)
	return ocr.Result{
		PageIndex: in.PageIndex,
		PlainText: plain,
		Lines:     lines,
		Language:  firstLanguage(in.Languages),
	}, nil
}

// extractLines pulls word boxes from the client and groups them by
// vertical overlap into baseline lines.
func extractLines(c *gosseract.Client) []ocr.Line {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		w := ocr.Word{
			Text:       b.Word,
			X:          float64(b.Box.Min.X),
			Y:          float64(b.Box.Min.Y),
			Width:      float64(b.Box.Dx()),
			Height:     float64(b.Box.Dy()),
			Confidence: b.Confidence / 100.0,
		}
		if strings.TrimSpace(w.Text) != "" {
			words = append(words, w)
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Y != words[j].Y {
			return words[i].Y < words[j].Y
		}
		return words[i].X < words[j].X
	})

	var lines []ocr.Line
	for _, w := range words {
		if n := len(lines); n > 0 && overlapsLine(&lines[n-1], w) {
			appendWord(&lines[n-1], w)
			continue
		}
		lines = append(lines, ocr.Line{
			Text: w.Text, Words: []ocr.Word{w},
			X: w.X, Y: w.Y, Width: w.Width, Height: w.Height,
			Confidence: w.Confidence,
		})
	}
	for i := range lines {
		sort.Slice(lines[i].Words, func(a, b int) bool { return lines[i].Words[a].X < lines[i].Words[b].X })
		parts := make([]string, 0, len(lines[i].Words))
		var sum float64
		for _, w := range lines[i].Words {
			parts = append(parts, w.Text)
			sum += w.Confidence
		}
		lines[i].Text = strings.Join(parts, " ")
		lines[i].Confidence = sum / float64(len(lines[i].Words))
	}
	return lines
}

// overlapsLine reports vertical overlap of at least half the smaller
// height.
func overlapsLine(l *ocr.Line, w ocr.Word) bool {
	top := maxf(l.Y, w.Y)
	bottom := minf(l.Y+l.Height, w.Y+w.Height)
	overlap := bottom - top
	ref := minf(l.Height, w.Height)
	return ref > 0 && overlap >= ref/2
}

func appendWord(l *ocr.Line, w ocr.Word) {
	minX := minf(l.X, w.X)
	minY := minf(l.Y, w.Y)
	maxX := maxf(l.X+l.Width, w.X+w.Width)
	maxY := maxf(l.Y+l.Height, w.Y+w.Height)
	l.X, l.Y = minX, minY
	l.Width, l.Height = maxX-minX, maxY-minY
	l.Words = append(l.Words, w)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}
