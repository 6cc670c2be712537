// Package normalize is the cross-page pass: it strips repeating
// headers and footers, repairs hyphenation broken at line ends,
// defragments orphan lines, merges lone bullet glyphs, and NFC
// normalizes the final document.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"glyphmark/classify"
)

// Options controls the individual passes.
type Options struct {
	HeaderFooter bool
	Hyphenation  bool
	Defragment   bool
	Bullets      bool

	// HeaderLines is how many lines from the top and bottom of each
	// page participate in header/footer detection.
	HeaderLines int
	// Similarity is the Jaccard threshold for clustering candidate
	// lines.
	Similarity float64
	// Coverage is the fraction of pages a pattern must appear on.
	Coverage float64
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{
		HeaderFooter: true,
		Hyphenation:  true,
		Defragment:   true,
		Bullets:      true,
		HeaderLines:  3,
		Similarity:   0.8,
		Coverage:     0.5,
	}
}

// minPagesForPatterns is the page count below which header/footer
// detection is skipped entirely.
const minPagesForPatterns = 3

// Normalizer applies the cross-page passes.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer with the given options.
func New(opts Options) *Normalizer {
	if opts.HeaderLines <= 0 {
		opts.HeaderLines = 3
	}
	if opts.Similarity <= 0 {
		opts.Similarity = 0.8
	}
	if opts.Coverage <= 0 {
		opts.Coverage = 0.5
	}
	return &Normalizer{opts: opts}
}

// Document merges per-page Markdown into the final document text.
func (n *Normalizer) Document(pages []string) string {
	if n.opts.HeaderFooter && len(pages) >= minPagesForPatterns {
		patterns := n.DetectPatterns(pages)
		if len(patterns) > 0 {
			for i := range pages {
				pages[i] = n.removePatterns(pages[i], patterns)
			}
		}
	}

	doc := strings.Join(pages, "\n\n")
	if n.opts.Hyphenation {
		doc = FixHyphenation(doc)
	}
	if n.opts.Defragment {
		doc = Defragment(doc)
	}
	if n.opts.Bullets {
		doc = MergeBullets(doc)
	}
	doc = collapseBlankRuns(doc)
	return norm.NFC.String(strings.TrimSpace(doc)) + "\n"
}

var digitRunRe = regexp.MustCompile(`\d+`)

// MaskLine produces the comparison form of a header/footer candidate:
// digit runs become #, whitespace collapses, everything lowercases.
// "Page 12" and "Page 173" then compare equal.
func MaskLine(s string) string {
	s = digitRunRe.ReplaceAllString(s, "#")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard computes word-set similarity of two masked lines.
func Jaccard(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// DetectPatterns clusters the first and last HeaderLines lines of every
// page and returns the masked representatives of clusters covering at
// least Coverage of the pages.
func (n *Normalizer) DetectPatterns(pages []string) []string {
	type cluster struct {
		repr  string
		pages map[int]struct{}
	}
	var clusters []*cluster

	add := func(pageIdx int, line string) {
		masked := MaskLine(line)
		if masked == "" {
			return
		}
		for _, c := range clusters {
			if Jaccard(c.repr, masked) >= n.opts.Similarity {
				c.pages[pageIdx] = struct{}{}
				return
			}
		}
		clusters = append(clusters, &cluster{repr: masked, pages: map[int]struct{}{pageIdx: {}}})
	}

	for i, page := range pages {
		first, last := edgeLines(page, n.opts.HeaderLines)
		for _, l := range first {
			add(i, l)
		}
		for _, l := range last {
			add(i, l)
		}
	}

	var patterns []string
	need := n.opts.Coverage * float64(len(pages))
	for _, c := range clusters {
		if float64(len(c.pages)) >= need {
			patterns = append(patterns, c.repr)
		}
	}
	return patterns
}

// edgeLines returns up to count non-empty lines from the top and from
// the bottom of a page.
func edgeLines(page string, count int) (first, last []string) {
	lines := strings.Split(page, "\n")
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		first = append(first, l)
		if len(first) == count {
			break
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		last = append(last, lines[i])
		if len(last) == count {
			break
		}
	}
	return first, last
}

// removePatterns drops lines whose masked form matches any detected
// pattern with similarity >= the threshold.
func (n *Normalizer) removePatterns(page string, patterns []string) string {
	lines := strings.Split(page, "\n")
	var kept []string
	for _, l := range lines {
		masked := MaskLine(stripHeadingPrefix(l))
		drop := false
		if masked != "" {
			for _, p := range patterns {
				if Jaccard(p, masked) >= n.opts.Similarity {
					drop = true
					break
				}
			}
		}
		if !drop {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func stripHeadingPrefix(l string) string {
	t := strings.TrimSpace(l)
	return strings.TrimLeft(t, "# ")
}

var (
	hardHyphenRe = regexp.MustCompile(`(\p{L})-\n\s*(\p{L})`)
	enDashRe     = regexp.MustCompile(`(\p{L})–\n\s*(\p{L})`)
)

// FixHyphenation joins words broken across line ends, strips soft
// hyphens, and joins en-dash breaks. Hyphens inside a line survive.
func FixHyphenation(s string) string {
	s = strings.ReplaceAll(s, "\u00ad", "")
	for {
		next := hardHyphenRe.ReplaceAllString(s, "$1$2")
		next = enDashRe.ReplaceAllString(next, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

const defragMaxLen = 45

var (
	headingLineRe  = regexp.MustCompile(`^#{1,6}\s`)
	listLineRe     = regexp.MustCompile(`^(\d+[.)]\s|[-*+]\s)`)
	tableLineRe    = regexp.MustCompile(`^\|`)
	fenceLineRe    = regexp.MustCompile("^```")
)

// Defragment merges short orphan lines into the previous non-empty
// line: a line of at most 45 characters that does not begin a heading
// or list joins its predecessor if the predecessor does not end a
// sentence, or if the orphan itself begins lowercase.
func Defragment(doc string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || len([]rune(t)) > defragMaxLen ||
			headingLineRe.MatchString(t) || listLineRe.MatchString(t) ||
			tableLineRe.MatchString(t) || fenceLineRe.MatchString(t) {
			out = append(out, line)
			continue
		}
		prevIdx := lastContentLine(out)
		if prevIdx < 0 {
			out = append(out, line)
			continue
		}
		prev := strings.TrimSpace(out[prevIdx])
		startsLower := firstIsLower(t)
		if strings.ContainsAny(lastRune(prev), ".!?;:") && !startsLower {
			out = append(out, line)
			continue
		}
		if headingLineRe.MatchString(prev) || listLineRe.MatchString(prev) ||
			tableLineRe.MatchString(prev) || fenceLineRe.MatchString(prev) {
			out = append(out, line)
			continue
		}
		out[prevIdx] = out[prevIdx] + " " + t
		// Swallow blank lines between the fragment and its home.
		out = out[:prevIdx+1]
	}
	return strings.Join(out, "\n")
}

func lastContentLine(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

func lastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return ""
	}
	return string(r[len(r)-1])
}

func firstIsLower(s string) bool {
	for _, r := range s {
		return r >= 'a' && r <= 'z'
	}
	return false
}

var digitMarkerRe = regexp.MustCompile(`^\d+[.)]\s`)

// MergeBullets joins a line holding a single bullet glyph with the
// following line as one list item, unless the next line already starts
// its own list marker.
func MergeBullets(doc string) string {
	lines := strings.Split(doc, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if isLoneBullet(t) {
			// Find the next non-empty line.
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
			if j < len(lines) {
				next := strings.TrimSpace(lines[j])
				nr := []rune(next)
				if len(nr) > 0 && !classify.IsBullet(nr[0]) && !digitMarkerRe.MatchString(next) {
					out = append(out, "- "+next)
					i = j
					continue
				}
			}
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}

func isLoneBullet(t string) bool {
	r := []rune(t)
	return len(r) == 1 && classify.IsBullet(r[0])
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

func collapseBlankRuns(s string) string {
	return blankRunRe.ReplaceAllString(s, "\n\n")
}
