package tables

import (
	"regexp"
	"strings"
	"unicode"

	"glyphmark/classify"
)

// Grid is a rectangular matrix of cell strings produced by a detection
// strategy. StartLine/EndLine are indices into the source block's lines.
type Grid struct {
	Cells     [][]string
	StartLine int
	EndLine   int
}

// normalize pads short rows with empty cells and merges overflow cells
// into the last column so every row has exactly cols cells.
func (g *Grid) normalize(cols int) {
	for i, row := range g.Cells {
		switch {
		case len(row) < cols:
			for len(row) < cols {
				row = append(row, "")
			}
			g.Cells[i] = row
		case len(row) > cols:
			merged := append(row[:cols-1:cols-1], strings.Join(row[cols-1:], " "))
			g.Cells[i] = merged
		}
	}
}

// Profile is the deterministic statistical fingerprint of a Grid. It is
// the accept/reject gate for every strategy.
type Profile struct {
	NRows         int
	NCols         int
	NonEmpty      int
	ShortToken    int
	Numeric       int
	Sentence      int
	ProseFragment int
	AvgLen        float64
	MaxLen        int
	Density       float64
	Score         float64
}

func (p Profile) sentenceRatio() float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	return float64(p.Sentence) / float64(p.NonEmpty)
}

func (p Profile) fragmentRatio() float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	return float64(p.ProseFragment) / float64(p.NonEmpty)
}

func (p Profile) tabularRatio() float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	return float64(p.ShortToken+p.Numeric) / float64(p.NonEmpty)
}

// profileGrid computes cell statistics and the score. bonus is added
// before the gate (the bordered strategy's +2.0).
func profileGrid(g Grid, cfg Config, bonus float64) Profile {
	p := Profile{NRows: len(g.Cells)}
	if p.NRows == 0 {
		return p
	}
	p.NCols = len(g.Cells[0])

	totalCells := 0
	totalLen := 0
	equalRows := true
	firstRowFill := -1
	for _, row := range g.Cells {
		rowFill := 0
		for _, cell := range row {
			totalCells++
			c := strings.TrimSpace(cell)
			if c == "" {
				continue
			}
			rowFill++
			p.NonEmpty++
			n := len([]rune(c))
			totalLen += n
			if n > p.MaxLen {
				p.MaxLen = n
			}
			if isShortToken(c) {
				p.ShortToken++
			}
			if isNumericCell(c) {
				p.Numeric++
			}
			if isSentenceCell(c) {
				p.Sentence++
			}
			if isProseFragment(c) {
				p.ProseFragment++
			}
		}
		if firstRowFill == -1 {
			firstRowFill = rowFill
		} else if rowFill != firstRowFill {
			equalRows = false
		}
	}
	if p.NonEmpty > 0 {
		p.AvgLen = float64(totalLen) / float64(p.NonEmpty)
	}
	if totalCells > 0 {
		p.Density = float64(p.NonEmpty) / float64(totalCells)
	}

	p.Score = score(p, cfg, equalRows) + bonus
	return p
}

func score(p Profile, cfg Config, equalRows bool) float64 {
	if p.NonEmpty == 0 {
		return 0
	}
	s := cfg.RowWeight*float64(p.NRows) + cfg.ColWeight*float64(p.NCols)
	s += cfg.ShortTokenWeight * float64(p.ShortToken) / float64(p.NonEmpty)
	s += cfg.NumericWeight * float64(p.Numeric) / float64(p.NonEmpty)

	sr := p.sentenceRatio()
	switch {
	case sr > cfg.SentenceHeavyThreshold:
		s -= cfg.SentenceHeavyPenalty * sr
	case sr > cfg.SentenceMidThreshold:
		s -= cfg.SentenceMidPenalty * sr
	}

	fr := p.fragmentRatio()
	switch {
	case fr > cfg.FragmentHighThreshold:
		s -= cfg.FragmentHighPenalty * fr
	case fr > cfg.FragmentMidThreshold:
		s -= cfg.FragmentMidPenalty * fr
	case fr > cfg.FragmentLowThreshold:
		s -= cfg.FragmentLowPenalty * fr
	}

	if max(sr, fr) > 0.6 && float64(p.ShortToken+p.Numeric) < 0.3*float64(p.NonEmpty) {
		s -= cfg.ProseDominancePenalty
	}

	switch {
	case p.AvgLen > cfg.AvgLenHighThreshold:
		s -= cfg.AvgLenHighPenalty
	case p.AvgLen > cfg.AvgLenMidThreshold:
		s -= cfg.AvgLenMidPenalty
	}
	if float64(p.MaxLen) > cfg.MaxLenThreshold {
		s -= cfg.MaxLenPenalty
	}

	if p.NRows >= 4 && p.NCols >= 3 && fr < 0.3 {
		s += cfg.ShapeBonus
	}
	if equalRows {
		s += cfg.EqualRowBonus
	}
	if p.Density >= 0.6 {
		s += cfg.DensityBonus
	}
	return s
}

// accept applies the gate. All conditions must hold.
func (p Profile) accept(cfg Config) bool {
	if p.NRows < cfg.MinRows || p.NCols < cfg.MinCols {
		return false
	}
	if p.Density < cfg.MinDensity {
		return false
	}
	tabular := p.tabularRatio()
	if p.AvgLen > 60 && tabular < 0.5 {
		return false
	}
	if !(float64(p.MaxLen) <= 80 || p.AvgLen <= 40) && tabular < 0.4 {
		return false
	}
	// Sentence-heavy grids need strong tabular structure.
	if p.sentenceRatio() >= 0.4 && tabular < 0.5 {
		return false
	}
	// Short-token deficit with no numerics: only large, tight grids.
	if tabular < 0.15 && p.Numeric == 0 {
		if !(p.NRows >= 4 && p.NCols >= 3 && p.AvgLen <= 30) {
			return false
		}
	}
	return p.Score >= cfg.MinScore
}

var (
	currencyRe    = regexp.MustCompile(`^[$€£¥]|[$€£¥]$`)
	numericBodyRe = regexp.MustCompile(`^[+\-]?\(?\d{1,3}(,\d{3})*(\.\d+)?\)?%?$|^[+\-]?\(?\d+(\.\d+)?\)?%?$`)
)

// isShortToken: trimmed, <= 24 chars, no internal space, alphanumeric
// after stripping wrapper punctuation and currency symbols.
func isShortToken(c string) bool {
	if len([]rune(c)) > 24 || strings.ContainsAny(c, " \t") {
		return false
	}
	c = strings.Trim(c, ".,;:()[]{}\"'")
	c = currencyRe.ReplaceAllString(c, "")
	if c == "" {
		return false
	}
	for _, r := range c {
		if r > unicode.MaxASCII {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' && r != '%' && r != '/' {
			return false
		}
	}
	return true
}

// isNumericCell: digits or decimals after stripping one leading or
// trailing currency symbol, optional sign, optional parenthesis wrap,
// single decimal point, optional %, optional thousands commas.
func isNumericCell(c string) bool {
	c = currencyRe.ReplaceAllString(strings.TrimSpace(c), "")
	return numericBodyRe.MatchString(c)
}

// isSentenceCell: at least five words ending with sentence punctuation.
func isSentenceCell(c string) bool {
	words := strings.Fields(c)
	if len(words) < 5 {
		return false
	}
	r := []rune(strings.TrimSpace(c))
	last := r[len(r)-1]
	return last == '.' || last == '!' || last == '?' || last == '…'
}

// isProseFragment flags cells that are broken prose rather than data.
// This is the critical negative signal: it catches sentences from
// two-column layouts whose line joins never closed.
func isProseFragment(c string) bool {
	n := len([]rune(c))
	if n > 60 {
		return true
	}
	words := strings.Fields(c)
	if len(words) >= 4 && n > 40 && classify.FunctionWordRatio(c) >= 0.15 {
		return true
	}
	if len(words) >= 5 && startsUpper(c) && meanWordLen(words) >= 3.5 {
		return true
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		return unicode.IsUpper(r)
	}
	return false
}

func meanWordLen(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len([]rune(w))
	}
	return float64(total) / float64(len(words))
}
