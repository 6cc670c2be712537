// Package classify labels layout blocks with a structural type. The
// tests are ordered and the first accepting test wins; ambiguity never
// raises, it just leans prose, because a false-positive table is the
// most damaging failure mode for academic layouts.
package classify

import (
	"regexp"
	"strings"

	"glyphmark/layout"
)

// Type is the structural label of a region.
type Type string

const (
	Prose          Type = "prose"
	ProseColumn    Type = "prose-column"
	Heading        Type = "heading"
	List           Type = "list"
	Code           Type = "code"
	PotentialTable Type = "potential-table"
	Unknown        Type = "unknown"
)

// Region is an immutable classified block.
type Region struct {
	Block        layout.Block
	Type         Type
	HeadingLevel int // 1..3 when Type == Heading
	Confidence   float64
	Column       int
}

// Heading level thresholds relative to the document body size.
const (
	h1Ratio = 1.5
	h2Ratio = 1.25
	h3Ratio = 1.1
)

var (
	numberedRe    = regexp.MustCompile(`^\d+[.)]\s`)
	funcCallRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*\(`)
	assignRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=\s*[^=]`)
	numericCellRe = regexp.MustCompile(`^[+\-]?[$€£¥]?[\d,]+(\.\d+)?%?$`)
)

var codeKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "return": {},
	"function": {}, "def": {}, "class": {}, "import": {}, "from": {},
}

// IsBullet reports whether the rune is a list bullet glyph.
func IsBullet(r rune) bool {
	switch r {
	case '-', '•', '●', '○', '◦', '▪', '▸', '►', '◆', '✓', '✗', '★', '☆':
		return true
	}
	return r >= 0x2022 && r <= 0x2043
}

// Page classifies every block of the analyzed page. bodySize is the
// document body font size used for heading detection. Prose blocks on a
// multi-column page are relabeled prose-column, and adjacent regions of
// identical type within a column are merged.
func Page(pl layout.PageLayout, bodySize float64) []Region {
	regions := make([]Region, 0, len(pl.Blocks))
	for _, b := range pl.Blocks {
		r := classifyBlock(b, bodySize)
		if pl.IsMultiColumn && r.Type == Prose {
			r.Type = ProseColumn
		}
		regions = append(regions, r)
	}
	return mergeAdjacent(regions)
}

func classifyBlock(b layout.Block, bodySize float64) Region {
	r := Region{Block: b, Column: b.Column}

	if isList(b) {
		r.Type = List
		r.Confidence = 0.9
		return r
	}
	if isCode(b) {
		r.Type = Code
		r.Confidence = 0.8
		return r
	}
	if level, ok := headingLevel(b, bodySize); ok {
		r.Type = Heading
		r.HeadingLevel = level
		r.Confidence = 0.85
		return r
	}

	prose := proseScore(b)
	table := tableScore(b)
	switch {
	case prose >= 0.7 && table < 0.3:
		r.Type = Prose
		r.Confidence = prose
	case table >= 0.6 && prose < 0.4:
		r.Type = PotentialTable
		r.Confidence = table
	case table > prose:
		// Ambiguous; lean prose unless the table evidence clearly
		// dominates without any prose signal.
		if prose < 0.2 && table >= 0.5 {
			r.Type = PotentialTable
			r.Confidence = table
		} else {
			r.Type = Prose
			r.Confidence = prose
		}
	default:
		r.Type = Prose
		r.Confidence = prose
	}
	if r.Confidence == 0 {
		r.Type = Unknown
	}
	return r
}

func isList(b layout.Block) bool {
	if len(b.Lines) == 0 {
		return false
	}
	n := 0
	for _, l := range b.Lines {
		t := strings.TrimSpace(l.Text)
		if t == "" {
			continue
		}
		first := []rune(t)[0]
		if IsBullet(first) || numberedRe.MatchString(t) {
			n++
		}
	}
	return float64(n) >= 0.6*float64(len(b.Lines))
}

func isCode(b layout.Block) bool {
	if len(b.Lines) == 0 {
		return false
	}
	n := 0
	for _, l := range b.Lines {
		if looksLikeCode(l.Text) {
			n++
		}
	}
	return float64(n) >= 0.5*float64(len(b.Lines))
}

func looksLikeCode(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	switch t {
	case "{", "}", "(", ")", "[", "]", "};", "});":
		return true
	}
	if word, _, _ := strings.Cut(t, " "); word != "" {
		if _, ok := codeKeywords[word]; ok {
			return true
		}
	}
	if strings.HasSuffix(t, ";") || strings.HasSuffix(t, "{") {
		return true
	}
	if strings.HasPrefix(line, "    ") {
		return true
	}
	if funcCallRe.MatchString(t) {
		return true
	}
	if assignRe.MatchString(t) {
		return true
	}
	return false
}

func headingLevel(b layout.Block, bodySize float64) (int, bool) {
	if len(b.Lines) > 3 {
		return 0, false
	}
	text := strings.TrimSpace(b.Text())
	if text == "" || len(text) > 200 {
		return 0, false
	}
	if len(text) > 50 && strings.ContainsAny(text[len(text)-1:], ".!?") {
		return 0, false
	}
	noPunct := !strings.ContainsAny(text, ".!?")
	larger := bodySize > 0 && b.AvgFontSize > bodySize
	if !((len(text) < 100 && noPunct) || larger) {
		return 0, false
	}

	if bodySize <= 0 {
		return 3, true
	}
	ratio := b.AvgFontSize / bodySize
	switch {
	case ratio >= h1Ratio:
		return 1, true
	case ratio >= h2Ratio:
		return 2, true
	case ratio >= h3Ratio:
		return 3, true
	}
	// Same size as body; accept only short punctuation-free text.
	if len(text) < 100 && noPunct {
		return 3, true
	}
	return 0, false
}

func proseScore(b layout.Block) float64 {
	text := b.Text()
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	score := 0.0

	sentences := countSentences(text)
	if sentences > 0 {
		wps := float64(len(words)) / float64(sentences)
		if wps >= 5 && wps <= 30 {
			score += 0.25
		}
	}

	fwRatio := FunctionWordRatio(text)
	if fwRatio >= 0.15 {
		score += 0.25
	}
	if fwRatio > 0.25 {
		score += 0.15
	}

	punctLines := 0
	for _, l := range b.Lines {
		t := strings.TrimRight(strings.TrimSpace(l.Text), "\"')]")
		if t != "" && strings.ContainsAny(t[len(t)-1:], ".!?") {
			punctLines++
		}
	}
	if len(b.Lines) > 0 && float64(punctLines) > 0.3*float64(len(b.Lines)) {
		score += 0.20
	}

	totalLen := 0
	for _, w := range words {
		totalLen += len([]rune(w))
	}
	meanLen := float64(totalLen) / float64(len(words))
	if meanLen >= 4 && meanLen <= 8 {
		score += 0.15
	}

	if score > 1 {
		score = 1
	}
	return score
}

func tableScore(b layout.Block) float64 {
	text := b.Text()
	lines := nonEmptyLines(b)
	if len(lines) == 0 {
		return 0
	}
	score := 0.0

	if strings.ContainsRune(text, '|') {
		score += 0.4
	}

	shortCellLines := 0
	numericLines := 0
	cellCounts := map[int]int{}
	totalLineLen := 0
	for _, l := range lines {
		totalLineLen += len([]rune(l))
		cells := strings.Fields(l)
		if len(cells) >= 2 {
			cellCounts[len(cells)]++
		}
		short := 0
		numeric := false
		for _, c := range cells {
			if len([]rune(c)) <= 20 {
				short++
			}
			if numericCellRe.MatchString(c) {
				numeric = true
			}
		}
		if len(cells) > 0 && short*2 >= len(cells) {
			shortCellLines++
		}
		if numeric {
			numericLines++
		}
	}

	if float64(shortCellLines) >= 0.4*float64(len(lines)) {
		score += 0.25
	}
	if float64(numericLines) >= 0.3*float64(len(lines)) {
		score += 0.2
	}

	best := 0
	for _, n := range cellCounts {
		if n > best {
			best = n
		}
	}
	if len(lines) > 1 && float64(best) >= 0.6*float64(len(lines)-1) {
		score += 0.15
	}

	if float64(totalLineLen)/float64(len(lines)) > 100 {
		score -= 0.2
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func nonEmptyLines(b layout.Block) []string {
	var out []string
	for _, l := range b.Lines {
		if strings.TrimSpace(l.Text) != "" {
			out = append(out, l.Text)
		}
	}
	return out
}

// mergeAdjacent merges consecutive regions of identical type in the
// same column, expanding the bbox and averaging confidence.
func mergeAdjacent(regions []Region) []Region {
	if len(regions) < 2 {
		return regions
	}
	out := []Region{regions[0]}
	for _, r := range regions[1:] {
		last := &out[len(out)-1]
		if r.Type == last.Type && r.Column == last.Column && r.Type != Heading {
			last.Block.Lines = append(last.Block.Lines, r.Block.Lines...)
			last.Block.BBox = last.Block.BBox.Union(r.Block.BBox)
			last.Confidence = (last.Confidence + r.Confidence) / 2
			continue
		}
		out = append(out, r)
	}
	return out
}
