package tables

import (
	"regexp"
	"sort"
	"strings"

	"glyphmark/glyph"
)

// Strategy turns a run of lines into zero or more candidate grids. The
// detector profiles and gates each candidate; strategies themselves do
// no scoring.
type Strategy interface {
	Name() string
	Detect(lines []glyph.Line) []Grid
}

var separatorRowRe = regexp.MustCompile(`^[\s|:\-¦]+$`)

// borderedStrategy handles tables drawn with pipe characters, the kind
// already formatted as Markdown or ASCII art in the source text.
type borderedStrategy struct{}

func (borderedStrategy) Name() string { return "bordered" }

func (borderedStrategy) Detect(lines []glyph.Line) []Grid {
	type raw struct {
		idx   int
		cells []string
		pipes int
	}
	var rows []raw
	maxPipes := 0
	for i, l := range lines {
		t := l.Text
		if !strings.ContainsAny(t, "|¦") {
			continue
		}
		if separatorRowRe.MatchString(t) {
			continue
		}
		t = strings.ReplaceAll(t, "¦", "|")
		pipes := strings.Count(t, "|")
		if pipes > maxPipes {
			maxPipes = pipes
		}
		cells := strings.Split(t, "|")
		// Strip the empty leading/trailing cells from |a|b| forms.
		if len(cells) > 0 && strings.TrimSpace(cells[0]) == "" {
			cells = cells[1:]
		}
		if len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		rows = append(rows, raw{idx: i, cells: cells})
	}
	if len(rows) < 2 || maxPipes < 2 {
		return nil
	}

	cols := 0
	for _, r := range rows {
		if len(r.cells) > cols {
			cols = len(r.cells)
		}
	}
	if cols < 2 {
		return nil
	}
	g := Grid{StartLine: rows[0].idx, EndLine: rows[len(rows)-1].idx}
	for _, r := range rows {
		g.Cells = append(g.Cells, r.cells)
	}
	g.normalize(cols)
	return []Grid{g}
}

var (
	wideGapRe   = regexp.MustCompile(`\s{3,}`)
	narrowGapRe = regexp.MustCompile(`\s{2,}`)
)

// asciiStrategy splits lines on runs of whitespace and accepts the
// layout only when a dominant column count emerges.
type asciiStrategy struct{}

func (asciiStrategy) Name() string { return "ascii" }

func (s asciiStrategy) Detect(lines []glyph.Line) []Grid {
	if g, ok := s.detectWithGap(lines, wideGapRe); ok {
		return []Grid{g}
	}
	if g, ok := s.detectWithGap(lines, narrowGapRe); ok {
		return []Grid{g}
	}
	return nil
}

func (asciiStrategy) detectWithGap(lines []glyph.Line, gap *regexp.Regexp) (Grid, bool) {
	type raw struct {
		idx   int
		cells []string
	}
	var rows []raw
	counts := map[int]int{}
	for i, l := range lines {
		t := strings.TrimSpace(l.Text)
		if t == "" {
			continue
		}
		cells := gap.Split(t, -1)
		rows = append(rows, raw{idx: i, cells: cells})
		counts[len(cells)]++
	}
	if len(rows) < 2 {
		return Grid{}, false
	}

	// The target column count is the mode of per-line cell counts; it
	// must cover at least 60% of the non-empty rows and be >= 2.
	target, covered := 0, 0
	for n, c := range counts {
		if c > covered || (c == covered && n > target) {
			target, covered = n, c
		}
	}
	if target < 2 || float64(covered) < 0.6*float64(len(rows)) {
		return Grid{}, false
	}

	g := Grid{StartLine: rows[0].idx, EndLine: rows[len(rows)-1].idx}
	for _, r := range rows {
		g.Cells = append(g.Cells, r.cells)
	}
	g.normalize(target)
	return g, true
}

// positionedStrategy clusters per-cell x-coordinates across rows; each
// cluster becomes a column. It only applies when glyph positions are
// available.
type positionedStrategy struct{}

func (positionedStrategy) Name() string { return "positioned" }

type positionedCell struct {
	x    float64
	text string
}

func (positionedStrategy) Detect(lines []glyph.Line) []Grid {
	var rows [][]positionedCell
	var rowIdx []int
	for i, l := range lines {
		cells := splitPositionedCells(l)
		if len(cells) >= 2 {
			rows = append(rows, cells)
			rowIdx = append(rowIdx, i)
		}
	}
	if len(rows) < 2 {
		return nil
	}

	// Cluster all x-coordinates; tolerance grows with cluster size.
	var xs []float64
	for _, row := range rows {
		for _, c := range row {
			xs = append(xs, c.x)
		}
	}
	sort.Float64s(xs)
	var centroids []float64
	var sizes []int
	for _, x := range xs {
		placed := false
		for i, c := range centroids {
			tol := 15.0 * float64(sizes[i])
			if x-c <= tol {
				centroids[i] = (c*float64(sizes[i]) + x) / float64(sizes[i]+1)
				sizes[i]++
				placed = true
				break
			}
		}
		if !placed {
			centroids = append(centroids, x)
			sizes = append(sizes, 1)
		}
	}
	if len(centroids) < 2 {
		return nil
	}

	g := Grid{StartLine: rowIdx[0], EndLine: rowIdx[len(rowIdx)-1]}
	for _, row := range rows {
		cells := make([]string, len(centroids))
		for _, c := range row {
			col := nearestCentroid(centroids, c.x)
			if cells[col] != "" {
				cells[col] += " "
			}
			cells[col] += c.text
		}
		g.Cells = append(g.Cells, cells)
	}
	return []Grid{g}
}

// splitPositionedCells breaks a line into cells at gaps wider than one
// em between consecutive glyph origins.
func splitPositionedCells(l glyph.Line) []positionedCell {
	if len(l.Glyphs) == 0 {
		return nil
	}
	var cells []positionedCell
	var buf strings.Builder
	start := l.Glyphs[0].X
	prev := l.Glyphs[0]
	buf.WriteRune(prev.Char)
	for _, g := range l.Glyphs[1:] {
		gapLimit := prev.Size
		if gapLimit <= 0 {
			gapLimit = 10
		}
		if g.X-prev.X > gapLimit*1.5 {
			text := strings.TrimSpace(buf.String())
			if text != "" {
				cells = append(cells, positionedCell{x: start, text: text})
			}
			buf.Reset()
			start = g.X
		}
		buf.WriteRune(g.Char)
		prev = g
	}
	text := strings.TrimSpace(buf.String())
	if text != "" {
		cells = append(cells, positionedCell{x: start, text: text})
	}
	return cells
}

func nearestCentroid(centroids []float64, x float64) int {
	best, bestD := 0, -1.0
	for i, c := range centroids {
		d := x - c
		if d < 0 {
			d = -d
		}
		if bestD < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
