package mathtex

import (
	"regexp"
	"strings"
)

var (
	numericFracRe = regexp.MustCompile(`\b\d+\s*/\s*\d+\b`)
	varAssignRe   = regexp.MustCompile(`\b[A-Za-z]\s*=\s*\S`)
	sqrtWordRe    = regexp.MustCompile(`\\?\bsqrt\b|√`)
	bigOpWordRe   = regexp.MustCompile(`\\?\b(sum|int)\b|∑|∫`)
	beginEnvRe    = regexp.MustCompile(`\\begin\{(equation|align|gather|multline|eqnarray|displaymath)\*?\}`)
)

// Density scores how mathematical a piece of text looks, in [0,1].
// Strong indicators (Greek, sub/superscripts, operators, ^, _) count
// fully; weak ones (=, +, *) count at 0.3 and only in the presence of
// at least one strong indicator, so plain prose arithmetic stays cold.
func Density(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	strong, weak := 0, 0
	for _, r := range runes {
		switch {
		case isStrongIndicator(r):
			strong++
		case isWeakIndicator(r):
			weak++
		}
	}

	score := float64(strong)
	if strong > 0 {
		score += 0.3 * float64(weak)
	}
	d := score / float64(len(runes))

	if strong > 0 {
		if numericFracRe.MatchString(text) {
			d += 0.05
		}
		if hasScriptedLetter(runes) {
			d += 0.15
		}
		if varAssignRe.MatchString(text) {
			d += 0.10
		}
		if sqrtWordRe.MatchString(text) {
			d += 0.15
		}
		if bigOpWordRe.MatchString(text) {
			d += 0.20
		}
	}

	if d > 1 {
		d = 1
	}
	return d
}

// hasScriptedLetter reports a letter immediately followed by a
// sub/superscript glyph, e.g. r² or xᵢ.
func hasScriptedLetter(runes []rune) bool {
	for i := 1; i < len(runes); i++ {
		if (isSuperscript(runes[i]) || isSubscript(runes[i])) && isLetterRune(runes[i-1]) {
			return true
		}
	}
	return false
}

func isLetterRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || isGreek(r)
}

func strongCount(text string) int {
	n := 0
	for _, r := range text {
		if isStrongIndicator(r) {
			n++
		}
	}
	return n
}

func hasEquationRelation(text string) bool {
	for _, r := range text {
		if _, ok := equationRelations[r]; ok {
			return true
		}
	}
	return false
}

func hasBigConstruct(text string) bool {
	if bigOpWordRe.MatchString(text) || sqrtWordRe.MatchString(text) {
		return true
	}
	if strings.Contains(text, `\frac`) || strings.Contains(text, "matrix") {
		return true
	}
	return numericFracRe.MatchString(text)
}

// IsDisplay decides whether a block of text should be set as display
// math ($$...$$) rather than inline.
func IsDisplay(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if strings.HasPrefix(t, "$$") && strings.HasSuffix(t, "$$") && len(t) > 4 {
		return true
	}
	if strings.HasPrefix(t, `\[`) && strings.HasSuffix(t, `\]`) {
		return true
	}
	if beginEnvRe.MatchString(t) {
		return true
	}
	if strings.Contains(t, "\n") {
		return Density(t) > 0.35
	}
	if len([]rune(t)) < 200 && Density(t) > 0.4 {
		return hasEquationRelation(t) || hasBigConstruct(t)
	}
	return false
}

// IsInline decides whether a short run of text qualifies as inline
// math.
func IsInline(text string) bool {
	t := strings.TrimSpace(text)
	n := len([]rune(t))
	if n == 0 {
		return false
	}
	if n < 100 && Density(t) > 0.25 {
		return true
	}
	if n < 50 {
		for _, r := range t {
			if isGreek(r) || isSuperscript(r) || isSubscript(r) || isOperator(r) {
				return true
			}
		}
	}
	return false
}
