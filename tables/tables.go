// Package tables detects data tables in classified blocks and renders
// them as GitHub-flavored Markdown. Three strategies run in order
// (bordered pipes, whitespace-aligned ASCII, column-clustered
// positioned rows); every candidate grid must pass the statistical
// profile gate before it becomes a table.
package tables

import (
	"strings"

	"glyphmark/glyph"
	"glyphmark/observability"
)

// Alignment is a Markdown column alignment.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Table is an accepted grid. The first row is the header row.
type Table struct {
	Rows          [][]string
	Alignments    []Alignment
	Confidence    float64
	DetectionType string
	StartLine     int
	EndLine       int
}

// Detector runs the strategies over candidate blocks.
type Detector struct {
	cfg Config
	log observability.Logger
}

// NewDetector builds a detector; a nil logger disables logging.
func NewDetector(cfg Config, log observability.Logger) *Detector {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Detector{cfg: cfg, log: log}
}

// Detect examines one block's lines. The first strategy whose grid
// passes the gate wins; later strategies may still contribute tables
// that do not overlap an accepted one by source-line range.
func (d *Detector) Detect(lines []glyph.Line) []Table {
	strategies := []Strategy{borderedStrategy{}, asciiStrategy{}, positionedStrategy{}}

	var accepted []Table
	for _, s := range strategies {
		for _, g := range s.Detect(lines) {
			if overlapsAny(accepted, g) {
				continue
			}
			bonus := 0.0
			if s.Name() == "bordered" {
				bonus = d.cfg.BorderedBonus
			}
			p := profileGrid(g, d.cfg, bonus)
			if !p.accept(d.cfg) {
				d.log.Debug("table candidate rejected",
					observability.String("strategy", s.Name()),
					observability.Float64("score", p.Score),
					observability.Int("rows", p.NRows),
					observability.Int("cols", p.NCols))
				continue
			}
			// The positioned strategy gets an extra veto after the
			// gate: wide average cells mean re-joined prose.
			if s.Name() == "positioned" && p.AvgLen > d.cfg.PositionedAvgLenVeto {
				d.log.Debug("positioned candidate vetoed",
					observability.Float64("avgLen", p.AvgLen))
				continue
			}
			t := d.build(g, p, s.Name())
			d.log.Debug("table accepted",
				observability.String("strategy", s.Name()),
				observability.Float64("score", p.Score),
				observability.Float64("confidence", t.Confidence))
			accepted = append(accepted, t)
		}
	}
	return accepted
}

func overlapsAny(tables []Table, g Grid) bool {
	for _, t := range tables {
		if g.StartLine <= t.EndLine && g.EndLine >= t.StartLine {
			return true
		}
	}
	return false
}

func (d *Detector) build(g Grid, p Profile, strategy string) Table {
	t := Table{
		Rows:          g.Cells,
		Confidence:    p.Score / 10,
		DetectionType: strategy,
		StartLine:     g.StartLine,
		EndLine:       g.EndLine,
	}
	if t.Confidence > 1 {
		t.Confidence = 1
	}

	threshold := d.cfg.NumericAlignRatio
	if strategy == "positioned" {
		threshold = d.cfg.PositionedNumericAlignRatio
	}
	cols := 0
	if len(g.Cells) > 0 {
		cols = len(g.Cells[0])
	}
	t.Alignments = make([]Alignment, cols)
	for c := 0; c < cols; c++ {
		numeric, filled := 0, 0
		for r := 1; r < len(g.Cells); r++ {
			cell := strings.TrimSpace(g.Cells[r][c])
			if cell == "" {
				continue
			}
			filled++
			if isNumericCell(cell) {
				numeric++
			}
		}
		if filled > 0 && float64(numeric) >= threshold*float64(filled) {
			t.Alignments[c] = AlignRight
		} else {
			t.Alignments[c] = AlignLeft
		}
	}
	return t
}

// Markdown renders the table as a GitHub-flavored pipe table with the
// first row as header.
func (t Table) Markdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(escapeCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(t.Rows[0])
	b.WriteString("|")
	for _, a := range t.Alignments {
		switch a {
		case AlignRight:
			b.WriteString("---:|")
		case AlignCenter:
			b.WriteString(":---:|")
		default:
			b.WriteString("---|")
		}
	}
	b.WriteString("\n")
	for _, row := range t.Rows[1:] {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

func escapeCell(c string) string {
	c = strings.ReplaceAll(c, "|", `\|`)
	return strings.Join(strings.Fields(c), " ")
}
