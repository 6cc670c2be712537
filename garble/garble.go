// Package garble scans emitted page text for the fingerprints of a
// broken font encoding: replacement characters, Private-Use-Area
// glyphs, and math-fragment garbage. Its verdict is advisory; callers
// decide whether to reroute the page through OCR or a vision service.
package garble

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Report is the per-page verdict.
type Report struct {
	Recommend         bool    `json:"recommend"`
	Reason            string  `json:"reason"`
	GarbledPercentage float64 `json:"garbledPercentage"`
}

const (
	minReplacementChars = 3
	minPUAChars         = 2
	minPatternMatches   = 3
)

var garbledPatterns = []*regexp.Regexp{
	// Letter with a replacement char wedged inside a word.
	regexp.MustCompile(`\p{L}\x{FFFD}\p{L}`),
	// Runs of replacement chars.
	regexp.MustCompile(`\x{FFFD}{2,}`),
	// Three or more contiguous math-operator block chars in prose.
	regexp.MustCompile(`[\x{2200}-\x{22FF}]{3,}`),
	// Garbled subscript soup, e.g. "ℎ>@�".
	regexp.MustCompile(`ℎ[>@<]\S?\x{FFFD}?`),
	// Parenthesized expression followed by garbled operators.
	regexp.MustCompile(`\([^)]*\)\s*\+\s*\p{L}?ℎ[>@<]`),
}

func isPUA(r rune) bool {
	return r >= 0xE000 && r <= 0xF8FF
}

// Scan inspects one page's text.
func Scan(text string) Report {
	if text == "" {
		return Report{}
	}

	replacement, pua, garbled := 0, 0, 0
	total := 0
	for _, r := range text {
		total++
		switch {
		case r == utf8.RuneError:
			replacement++
			garbled++
		case isPUA(r):
			pua++
			garbled++
		}
	}

	patternHits := 0
	for _, re := range garbledPatterns {
		n := len(re.FindAllStringIndex(text, -1))
		patternHits += n
	}

	pct := float64(garbled) / float64(total) * 100

	switch {
	case replacement >= minReplacementChars:
		return Report{
			Recommend:         true,
			Reason:            fmt.Sprintf("%d replacement characters", replacement),
			GarbledPercentage: pct,
		}
	case pua >= minPUAChars:
		return Report{
			Recommend:         true,
			Reason:            fmt.Sprintf("%d private-use-area characters", pua),
			GarbledPercentage: pct,
		}
	case patternHits >= minPatternMatches:
		return Report{
			Recommend:         true,
			Reason:            fmt.Sprintf("%d garbled-pattern matches", patternHits),
			GarbledPercentage: pct,
		}
	}
	return Report{GarbledPercentage: pct}
}

// ScanPages runs Scan over each page and returns the reports in order.
func ScanPages(pages []string) []Report {
	reports := make([]Report, len(pages))
	for i, p := range pages {
		reports[i] = Scan(p)
	}
	return reports
}

// Summary formats a short human-readable digest of the reports, one
// line per flagged page.
func Summary(reports []Report) string {
	var b strings.Builder
	for i, r := range reports {
		if !r.Recommend {
			continue
		}
		fmt.Fprintf(&b, "page %d: %s (%.1f%% garbled)\n", i+1, r.Reason, r.GarbledPercentage)
	}
	return b.String()
}
