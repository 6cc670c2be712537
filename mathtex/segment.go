// Package mathtex locates mathematical notation in extracted text,
// rewrites Unicode math code points to LaTeX, and wraps the results in
// inline or display delimiters.
package mathtex

import (
	"regexp"
	"sort"
	"strings"
)

// Segment is one slice of a partitioned text. Concatenating the Text of
// all segments of a partition reproduces the input exactly.
type Segment struct {
	Text      string
	IsMath    bool
	IsDisplay bool
	Start     int // rune offset in the original text
	End       int
}

var delimitedRe = regexp.MustCompile(`\$\$[^$]+\$\$|\\\[[\s\S]*?\\\]|\$[^$\n]+\$|\\\([\s\S]*?\\\)`)

// Split partitions text into math and non-math segments. Existing LaTeX
// delimiters are honored first; undelimited regions are either wrapped
// whole (dense math), partitioned around inline spans (prose with
// embedded math), or left as prose.
func Split(text string) []Segment {
	var segs []Segment
	runes := []rune(text)

	locs := delimitedRe.FindAllStringIndex(text, -1)
	pos := 0 // byte offset
	runeAt := func(byteOff int) int { return len([]rune(text[:byteOff])) }

	for _, loc := range locs {
		if loc[0] > pos {
			segs = append(segs, splitUndelimited(text[pos:loc[0]], runeAt(pos))...)
		}
		piece := text[loc[0]:loc[1]]
		segs = append(segs, Segment{
			Text:      piece,
			IsMath:    true,
			IsDisplay: strings.HasPrefix(piece, "$$") || strings.HasPrefix(piece, `\[`),
			Start:     runeAt(loc[0]),
			End:       runeAt(loc[1]),
		})
		pos = loc[1]
	}
	if pos < len(text) {
		segs = append(segs, splitUndelimited(text[pos:], runeAt(pos))...)
	}
	if len(segs) == 0 && len(runes) > 0 {
		segs = append(segs, Segment{Text: text, Start: 0, End: len(runes)})
	}
	return segs
}

func splitUndelimited(region string, offset int) []Segment {
	runes := []rune(region)
	n := len(runes)
	if n == 0 {
		return nil
	}

	// Prose with embedded math partitions around inline spans.
	if looksLikeProse(region) {
		if spans := FindInlineSpans(region); len(spans) > 0 {
			return partitionBySpans(runes, spans, offset)
		}
	}

	// A region that is dense enough overall is wrapped whole.
	threshold := 0.12 + minf(1, float64(n)/50)*0.13
	strong := strongCount(region)
	enough := strong >= 1
	if n > 100 {
		enough = strong >= 3
	}
	if enough && Density(region) > threshold {
		return []Segment{{
			Text:      region,
			IsMath:    true,
			IsDisplay: IsDisplay(region),
			Start:     offset,
			End:       offset + n,
		}}
	}

	return []Segment{{Text: region, Start: offset, End: offset + n}}
}

// looksLikeProse uses the raw indicator ratio, not the bonused density:
// a sentence with one embedded formula is still prose.
func looksLikeProse(region string) bool {
	words := strings.Fields(region)
	if len(words) < 4 {
		return false
	}
	runes := []rune(region)
	strong, weak := 0, 0
	for _, r := range runes {
		switch {
		case isStrongIndicator(r):
			strong++
		case isWeakIndicator(r):
			weak++
		}
	}
	ratio := (float64(strong) + 0.3*float64(weak)) / float64(len(runes))
	return ratio < 0.3
}

func partitionBySpans(runes []rune, spans []Span, offset int) []Segment {
	var segs []Segment
	pos := 0
	for _, sp := range spans {
		if sp.Start > pos {
			segs = append(segs, Segment{
				Text:  string(runes[pos:sp.Start]),
				Start: offset + pos,
				End:   offset + sp.Start,
			})
		}
		segs = append(segs, Segment{
			Text:   string(runes[sp.Start:sp.End]),
			IsMath: true,
			Start:  offset + sp.Start,
			End:    offset + sp.End,
		})
		pos = sp.End
	}
	if pos < len(runes) {
		segs = append(segs, Segment{
			Text:  string(runes[pos:]),
			Start: offset + pos,
			End:   offset + len(runes),
		})
	}
	return segs
}

// Span is a half-open rune range [Start, End) within one region.
type Span struct {
	Start int
	End   int
}

type wordPos struct {
	start int
	end   int // half-open rune range
	text  string
}

func splitWords(runes []rune) []wordPos {
	var out []wordPos
	i := 0
	for i < len(runes) {
		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
			i++
		}
		if i >= len(runes) {
			break
		}
		j := i
		for j < len(runes) && runes[j] != ' ' && runes[j] != '\t' {
			j++
		}
		out = append(out, wordPos{start: i, end: j, text: string(runes[i:j])})
		i = j
	}
	return out
}

func containsStrong(w string) bool {
	for _, r := range w {
		if isStrongIndicator(r) {
			return true
		}
	}
	return false
}

// FindInlineSpans extracts candidate math runs from a prose line:
// maximal runs of consecutive words that carry a strong indicator,
// pruned by length, word count, trailing-period, and density gates,
// with overlapping spans merged. Expanding into neighboring plain
// words is deliberately avoided; the greedy whitespace crossing of
// naive regex approaches is what turns whole sentences into math.
func FindInlineSpans(text string) []Span {
	runes := []rune(text)
	words := splitWords(runes)
	var spans []Span
	i := 0
	for i < len(words) {
		if !containsStrong(words[i].text) {
			i++
			continue
		}
		j := i
		for j+1 < len(words) && containsStrong(words[j+1].text) {
			j++
		}
		start, end := words[i].start, words[j].end
		// Drop trailing prose punctuation so it stays outside the
		// delimiters.
		for end > start && (runes[end-1] == ',' || runes[end-1] == ';' || runes[end-1] == ':') {
			end--
		}
		i = j + 1
		span := string(runes[start:end])
		if !acceptSpan(span) {
			continue
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return mergeSpans(spans)
}

func acceptSpan(span string) bool {
	if len([]rune(span)) > 80 {
		return false
	}
	words := strings.Fields(span)
	if len(words) > 6 {
		return false
	}
	if strings.HasSuffix(span, ".") && len(words) > 2 {
		return false
	}
	return Density(span) >= 0.2
}

func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// ProcessText runs the full tokenizer over a text: segment, convert,
// and wrap. Non-math segments pass through untouched except for soft
// hyphen removal.
func ProcessText(text string) string {
	var b strings.Builder
	for _, seg := range Split(text) {
		switch {
		case !seg.IsMath:
			b.WriteString(strings.ReplaceAll(seg.Text, "\u00ad", ""))
		case seg.IsDisplay:
			b.WriteString(WrapDisplay(stripDelimiters(seg.Text)))
		default:
			b.WriteString(WrapInline(stripDelimiters(seg.Text)))
		}
	}
	return b.String()
}

// ProcessBlock handles a standalone block: a block that qualifies as
// display math is wrapped whole, otherwise it is processed like prose.
func ProcessBlock(text string) string {
	if IsDisplay(text) {
		return WrapDisplay(stripDelimiters(text))
	}
	return ProcessText(text)
}

func stripDelimiters(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "$$") && strings.HasSuffix(t, "$$") && len(t) > 4:
		return strings.TrimSpace(t[2 : len(t)-2])
	case strings.HasPrefix(t, `\[`) && strings.HasSuffix(t, `\]`) && len(t) > 4:
		return strings.TrimSpace(t[2 : len(t)-2])
	case strings.HasPrefix(t, `\(`) && strings.HasSuffix(t, `\)`) && len(t) > 4:
		return strings.TrimSpace(t[2 : len(t)-2])
	case strings.HasPrefix(t, "$") && strings.HasSuffix(t, "$") && len(t) > 2:
		return strings.TrimSpace(t[1 : len(t)-1])
	}
	return t
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
