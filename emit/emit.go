// Package emit turns classified regions into Markdown. It maintains a
// small state machine (Idle, InParagraph, InList, InCode); list and
// code states flush on any heading or non-matching block.
package emit

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"glyphmark/classify"
	"glyphmark/glyph"
	"glyphmark/layout"
	"glyphmark/mathtex"
	"glyphmark/tables"
)

// Options controls emission.
type Options struct {
	Tables         bool // render accepted tables as pipe tables
	Math           bool // run the math tokenizer over text
	CodeFences     bool // wrap code blocks in ``` fences
	PreserveLayout bool // keep blank-line runs instead of collapsing
}

// DefaultOptions enables everything except layout preservation.
func DefaultOptions() Options {
	return Options{Tables: true, Math: true, CodeFences: true}
}

type state int

const (
	stateIdle state = iota
	stateInParagraph
	stateInList
	stateInCode
)

var (
	labelRe    = regexp.MustCompile(`^[A-Z][A-Za-z]*(\s+[A-Z][A-Za-z]*)*:\s`)
	numberedRe = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
)

// connectiveWords end a line without completing a thought; a line
// ending in one merges with the next even before a capital letter.
var connectiveWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "nor": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "by": {}, "to": {}, "for": {},
	"with": {}, "from": {}, "as": {}, "into": {}, "than": {}, "then": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"has": {}, "have": {}, "had": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "that": {}, "which": {},
	"who": {}, "whose": {}, "where": {}, "when": {}, "while": {}, "if": {},
	"because": {}, "although": {}, "though": {}, "since": {}, "unless": {},
	"between": {}, "during": {}, "through": {}, "under": {}, "over": {},
}

// BodySize returns the document body font size: the size (rounded to
// 0.5) owning the greatest total character count.
func BodySize(lines []glyph.Line) float64 {
	counts := map[float64]int{}
	for _, l := range lines {
		size := math.Round(l.AvgFontSize*2) / 2
		counts[size] += len(l.Glyphs)
	}
	body, best := 0.0, -1
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			body, best = size, n
		}
	}
	return body
}

// pendingParagraph accumulates prose blocks that merge into a single
// paragraph.
type pendingParagraph struct {
	text       string
	lastRegion classify.Region
	boldChars  int
	italChars  int
	totalChars int
}

// Emitter renders one page's regions to Markdown.
type Emitter struct {
	opts     Options
	bodySize float64

	out   strings.Builder
	state state
	para  *pendingParagraph
}

// NewEmitter returns a page emitter. bodySize is the document body font
// size used for heading levels.
func NewEmitter(bodySize float64, opts Options) *Emitter {
	return &Emitter{opts: opts, bodySize: bodySize}
}

// Page renders the page's regions in reading order. detected maps the
// index of a region to the tables accepted inside it.
func (e *Emitter) Page(regions []classify.Region, detected map[int][]tables.Table) string {
	for i, r := range regions {
		switch r.Type {
		case classify.Heading:
			e.heading(r)
		case classify.List:
			e.list(r)
		case classify.Code:
			e.code(r)
		case classify.PotentialTable:
			if ts := detected[i]; len(ts) > 0 && e.opts.Tables {
				e.tables(r, ts)
			} else {
				e.prose(r)
			}
		default:
			e.prose(r)
		}
	}
	e.flush()
	md := e.out.String()
	if !e.opts.PreserveLayout {
		md = collapseBlankRuns(md)
	}
	return strings.TrimRight(md, "\n")
}

func (e *Emitter) heading(r classify.Region) {
	e.flush()
	level := r.HeadingLevel
	if level < 1 {
		level = 3
	}
	text := strings.TrimSpace(strings.Join(strings.Fields(r.Block.Text()), " "))
	if text == "" {
		return
	}
	e.out.WriteString(strings.Repeat("#", level) + " " + e.mathText(text) + "\n\n")
	e.state = stateIdle
}

func (e *Emitter) list(r classify.Region) {
	if e.state != stateInList {
		e.flush()
		e.state = stateInList
	}
	for _, l := range r.Block.Lines {
		t := strings.TrimSpace(l.Text)
		if t == "" {
			continue
		}
		if m := numberedRe.FindStringSubmatch(t); m != nil {
			e.out.WriteString(m[1] + ". " + e.mathText(strings.TrimSpace(m[2])) + "\n")
			continue
		}
		runes := []rune(t)
		if classify.IsBullet(runes[0]) {
			t = strings.TrimSpace(string(runes[1:]))
		}
		e.out.WriteString("- " + e.mathText(t) + "\n")
	}
}

func (e *Emitter) code(r classify.Region) {
	e.flush()
	e.state = stateInCode
	if e.opts.CodeFences {
		e.out.WriteString("```\n" + r.Block.Text() + "\n```\n\n")
	} else {
		e.out.WriteString(r.Block.Text() + "\n\n")
	}
	e.state = stateIdle
}

func (e *Emitter) tables(r classify.Region, ts []tables.Table) {
	e.flush()
	// Lines outside all table ranges are residual prose.
	covered := make([]bool, len(r.Block.Lines))
	for _, t := range ts {
		for i := t.StartLine; i <= t.EndLine && i < len(covered); i++ {
			if i >= 0 {
				covered[i] = true
			}
		}
	}
	var residual []string
	for i, l := range r.Block.Lines {
		if !covered[i] && strings.TrimSpace(l.Text) != "" {
			residual = append(residual, strings.TrimSpace(l.Text))
		}
	}
	for _, t := range ts {
		e.out.WriteString(t.Markdown() + "\n\n")
	}
	if len(residual) > 0 {
		e.out.WriteString(e.mathText(strings.Join(residual, " ")) + "\n\n")
	}
	e.state = stateIdle
}

func (e *Emitter) prose(r classify.Region) {
	if e.state == stateInList || e.state == stateInCode {
		e.flush()
	}
	text := strings.TrimSpace(strings.Join(strings.Fields(r.Block.Text()), " "))
	if text == "" {
		return
	}
	bold, ital, total := styleCounts(r.Block)

	if e.para != nil && e.shouldMerge(e.para.lastRegion, r) {
		e.para.text += " " + text
		e.para.boldChars += bold
		e.para.italChars += ital
		e.para.totalChars += total
		e.para.lastRegion = r
		return
	}
	e.flush()
	e.para = &pendingParagraph{
		text:       text,
		lastRegion: r,
		boldChars:  bold,
		italChars:  ital,
		totalChars: total,
	}
	e.state = stateInParagraph
}

func styleCounts(b layout.Block) (bold, ital, total int) {
	for _, l := range b.Lines {
		n := len(l.Glyphs)
		total += n
		if l.Bold {
			bold += n
		}
		if l.Italic {
			ital += n
		}
	}
	return
}

// shouldMerge applies the continuation rules in order.
func (e *Emitter) shouldMerge(prev, curr classify.Region) bool {
	prevText := strings.TrimSpace(prev.Block.Text())
	currText := strings.TrimSpace(curr.Block.Text())
	if prevText == "" || currText == "" {
		return false
	}

	// 1. A label pattern starts its own paragraph.
	if labelRe.MatchString(currText) {
		return false
	}

	endsSentence := sentenceEnd(prevText)
	capStart := startsUpper(currText)

	// 2. Complete sentence followed by a capital never merges.
	if endsSentence && capStart {
		return false
	}

	// 3. Content word before a capital never merges.
	if capStart && !endsSentence {
		if w := lastWord(prevText); w != "" {
			if _, connective := connectiveWords[strings.ToLower(w)]; !connective {
				return false
			}
		}
	}

	// 4. Lowercase or continuation punctuation always merges.
	first := firstRune(currText)
	if unicode.IsLower(first) {
		return true
	}
	switch first {
	case ',', ';', ':', '-', ')', ']', '"', '\'', '”', '’':
		return true
	}

	// 5. Otherwise merge on a small vertical gap.
	gap := prev.Block.BBox.MinY - curr.Block.BBox.MaxY
	if gap < 0 {
		gap = -gap
	}
	avgLineHeight := (prev.Block.AvgFontSize + curr.Block.AvgFontSize) / 2 * 1.2
	return gap < 1.5*avgLineHeight
}

func (e *Emitter) flush() {
	if e.para == nil {
		e.state = stateIdle
		return
	}
	text := e.para.text
	if e.opts.Math {
		text = mathtex.ProcessText(text)
	}
	if e.para.totalChars > 0 {
		boldDominant := e.para.boldChars*2 > e.para.totalChars
		italDominant := e.para.italChars*2 > e.para.totalChars
		switch {
		case boldDominant && italDominant:
			text = "***" + text + "***"
		case boldDominant:
			text = "**" + text + "**"
		case italDominant:
			text = "*" + text + "*"
		}
	}
	e.out.WriteString(text + "\n\n")
	e.para = nil
	e.state = stateIdle
}

func (e *Emitter) mathText(s string) string {
	if !e.opts.Math {
		return s
	}
	return mathtex.ProcessText(s)
}

func sentenceEnd(s string) bool {
	s = strings.TrimRight(s, "\"')]”’")
	if s == "" {
		return false
	}
	r := []rune(s)
	last := r[len(r)-1]
	return last == '.' || last == '!' || last == '?'
}

func startsUpper(s string) bool {
	return unicode.IsUpper(firstRune(s))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,;:!?\"')]")
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
