// Package layout partitions the lines of a page into columns and
// vertically coherent blocks. Its single most consequential output is
// the multi-column flag: downstream classification relies on it to keep
// two-column prose from being mistaken for a table.
package layout

import (
	"errors"
	"sort"
	"strings"

	"glyphmark/geo"
	"glyphmark/glyph"
)

// ErrDegenerateLayout is returned when a page produced zero lines. The
// engine records it and emits the page as empty Markdown.
var ErrDegenerateLayout = errors.New("layout: page has no lines")

const (
	histogramBins = 50
	// A bin is a gap when its density is below this fraction of the
	// mean bin density.
	gapDensityRatio = 0.2
	// A contiguous gap run must span at least this fraction of the
	// page width to become a column boundary.
	minGapWidthRatio = 0.03
	// A column narrower than this fraction of the page width is
	// discarded.
	minColumnWidthRatio = 0.20
	// Lines separated by more than this multiple of their mean font
	// size start a new block.
	blockGapFactor = 2.5
)

// Column is a vertical slice of the page holding the lines whose
// x-center falls inside it.
type Column struct {
	X     float64
	Width float64
	Lines []glyph.Line
}

// Block is a run of vertically adjacent lines within one column.
type Block struct {
	Lines       []glyph.Line
	BBox        geo.Rect
	AvgFontSize float64
	Column      int
}

// Text returns the block's lines joined by newlines.
func (b Block) Text() string {
	parts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// PageLayout is the spatial analysis of one page.
type PageLayout struct {
	Columns       []Column
	Blocks        []Block
	IsMultiColumn bool
	Width         float64
	Height        float64
}

// Analyze detects columns and groups blocks for one page.
func Analyze(lines []glyph.Line, size glyph.Size) (PageLayout, error) {
	if len(lines) == 0 {
		return PageLayout{}, ErrDegenerateLayout
	}
	pl := PageLayout{Width: size.Width, Height: size.Height}
	pl.Columns = detectColumns(lines, size.Width)
	pl.IsMultiColumn = len(pl.Columns) > 1
	for ci := range pl.Columns {
		pl.Blocks = append(pl.Blocks, groupBlocks(pl.Columns[ci].Lines, ci)...)
	}
	return pl, nil
}

// detectColumns builds an x-axis density histogram of line spans, finds
// sufficiently wide low-density runs, and partitions the page at them.
func detectColumns(lines []glyph.Line, pageWidth float64) []Column {
	if pageWidth <= 0 {
		pageWidth = maxLineExtent(lines)
	}
	binWidth := pageWidth / histogramBins

	var hist [histogramBins]int
	for _, l := range lines {
		lo := int(l.MinX / binWidth)
		hi := int(l.MaxX / binWidth)
		if lo < 0 {
			lo = 0
		}
		if hi >= histogramBins {
			hi = histogramBins - 1
		}
		for i := lo; i <= hi; i++ {
			hist[i]++
		}
	}

	total := 0
	for _, c := range hist {
		total += c
	}
	avgDensity := float64(total) / histogramBins

	// Boundaries are the centers of gap runs wide enough to separate
	// columns.
	var boundaries []float64
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		width := float64(end-runStart) * binWidth
		if width > minGapWidthRatio*pageWidth {
			boundaries = append(boundaries, (float64(runStart)+float64(end))/2*binWidth)
		}
		runStart = -1
	}
	for i, c := range hist {
		if float64(c) < gapDensityRatio*avgDensity {
			if runStart < 0 {
				runStart = i
			}
		} else {
			flush(i)
		}
	}
	flush(histogramBins)

	edges := append([]float64{0}, boundaries...)
	edges = append(edges, pageWidth)

	var cols []Column
	for i := 0; i+1 < len(edges); i++ {
		x, w := edges[i], edges[i+1]-edges[i]
		if w < minColumnWidthRatio*pageWidth {
			continue
		}
		col := Column{X: x, Width: w}
		for _, l := range lines {
			center := (l.MinX + l.MaxX) / 2
			if center >= x && center < x+w {
				col.Lines = append(col.Lines, l)
			}
		}
		if len(col.Lines) > 0 {
			cols = append(cols, col)
		}
	}

	if len(cols) == 0 {
		return []Column{{X: 0, Width: pageWidth, Lines: lines}}
	}

	// Lines whose centers fell into discarded slices still need a
	// home: assign them to the nearest surviving column.
	assigned := 0
	for _, c := range cols {
		assigned += len(c.Lines)
	}
	if assigned < len(lines) {
		for _, l := range lines {
			center := (l.MinX + l.MaxX) / 2
			if columnIndexFor(cols, center) == -1 {
				nearest := 0
				best := -1.0
				for i, c := range cols {
					d := distanceTo(c, center)
					if best < 0 || d < best {
						best = d
						nearest = i
					}
				}
				cols[nearest].Lines = append(cols[nearest].Lines, l)
			}
		}
	}

	sort.SliceStable(cols, func(i, j int) bool { return cols[i].X < cols[j].X })
	return cols
}

func columnIndexFor(cols []Column, center float64) int {
	for i, c := range cols {
		if center >= c.X && center < c.X+c.Width {
			return i
		}
	}
	return -1
}

func distanceTo(c Column, x float64) float64 {
	switch {
	case x < c.X:
		return c.X - x
	case x > c.X+c.Width:
		return x - (c.X + c.Width)
	default:
		return 0
	}
}

func maxLineExtent(lines []glyph.Line) float64 {
	max := 1.0
	for _, l := range lines {
		if l.MaxX > max {
			max = l.MaxX
		}
	}
	return max
}

// groupBlocks splits a column's lines into blocks wherever the vertical
// gap exceeds blockGapFactor times the mean font size of the adjacent
// lines. Lines are processed top to bottom (descending y in PDF space).
func groupBlocks(lines []glyph.Line, columnIndex int) []Block {
	if len(lines) == 0 {
		return nil
	}
	sorted := make([]glyph.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var blocks []Block
	current := []glyph.Line{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		gap := prev.Y - curr.Y
		if gap < 0 {
			gap = -gap
		}
		limit := blockGapFactor * (prev.AvgFontSize + curr.AvgFontSize) / 2
		if gap > limit {
			blocks = append(blocks, makeBlock(current, columnIndex))
			current = nil
		}
		current = append(current, curr)
	}
	blocks = append(blocks, makeBlock(current, columnIndex))
	return blocks
}

func makeBlock(lines []glyph.Line, columnIndex int) Block {
	b := Block{Lines: lines, Column: columnIndex}
	var sizeSum float64
	for _, l := range lines {
		b.BBox = b.BBox.Union(l.BBox())
		sizeSum += l.AvgFontSize
	}
	b.AvgFontSize = sizeSum / float64(len(lines))
	// Extend downward so the last baseline's descenders are contained.
	b.BBox.MinY -= b.AvgFontSize
	return b
}
