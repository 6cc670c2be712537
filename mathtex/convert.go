package mathtex

import (
	"regexp"
	"strings"
)

var simpleFracRe = regexp.MustCompile(`(^|[\s{(=])([0-9]+|[A-Za-z])\s*/\s*([0-9]+|[A-Za-z])($|[\s})=,.])`)

// Convert rewrites every mapped Unicode math code point in s to its
// LaTeX form. Consecutive superscript glyphs collapse into a single
// ^{...} group, likewise subscripts. A space is inserted after a
// command when the next output character is a letter, so \pi followed
// by r stays two tokens.
func Convert(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case isSuperscript(r):
			j := i
			var group strings.Builder
			for j < len(runes) && isSuperscript(runes[j]) {
				group.WriteString(superscripts[runes[j]])
				j++
			}
			b.WriteString("^{" + group.String() + "}")
			i = j - 1
		case isSubscript(r):
			j := i
			var group strings.Builder
			for j < len(runes) && isSubscript(runes[j]) {
				group.WriteString(subscripts[runes[j]])
				j++
			}
			b.WriteString("_{" + group.String() + "}")
			i = j - 1
		default:
			if cmd, ok := greek[r]; ok {
				writeCommand(&b, cmd, nextRune(runes, i))
				continue
			}
			if cmd, ok := operators[r]; ok {
				writeCommand(&b, cmd, nextRune(runes, i))
				continue
			}
			if r == '\u00ad' { // soft hyphen
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func nextRune(runes []rune, i int) rune {
	for j := i + 1; j < len(runes); j++ {
		return runes[j]
	}
	return 0
}

func writeCommand(b *strings.Builder, cmd string, next rune) {
	b.WriteString(cmd)
	// Commands ending in a letter swallow a following letter unless
	// separated.
	if len(cmd) > 1 && isCommandTail(cmd) && isAsciiLetter(next) {
		b.WriteByte(' ')
	}
}

func isCommandTail(cmd string) bool {
	last := cmd[len(cmd)-1]
	return (last >= 'a' && last <= 'z') || (last >= 'A' && last <= 'Z')
}

func isAsciiLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// normalizeMath tidies a converted math segment: whitespace collapsed
// to single spaces and simple one-token fractions rewritten as \frac.
func normalizeMath(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = simpleFracRe.ReplaceAllString(s, `$1\frac{$2}{$3}$4`)
	return strings.TrimSpace(s)
}

// WrapInline renders a math segment with inline delimiters.
func WrapInline(s string) string {
	return "$" + normalizeMath(Convert(s)) + "$"
}

// WrapDisplay renders a math segment with display delimiters.
func WrapDisplay(s string) string {
	return "$$\n" + normalizeMath(Convert(s)) + "\n$$"
}
