package pdfsource

import "strconv"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokNumber
	tokName
	tokOperator
	tokArrayOpen
	tokArrayClose
)

type token struct {
	kind tokenKind
	num  float64
	str  string
	// raw holds a string token's undecoded bytes; the interpreter
	// decodes them against the active font's ToUnicode map.
	raw []byte
}

// lexer walks a decoded content stream and yields operands and
// operators. Inline dictionaries and comments are skipped; inline
// image data (BI..EI) is consumed without interpretation.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

func isWhite(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) next() token {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case isWhite(b):
			l.pos++
		case b == '%':
			l.skipComment()
		case b == '(':
			l.pos++
			return token{kind: tokString, raw: l.literalString()}
		case b == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.skipDict()
				continue
			}
			l.pos++
			return token{kind: tokString, raw: l.hexString()}
		case b == '[':
			l.pos++
			return token{kind: tokArrayOpen}
		case b == ']':
			l.pos++
			return token{kind: tokArrayClose}
		case b == '/':
			l.pos++
			return token{kind: tokName, str: l.bareToken()}
		case b == '{' || b == '}' || b == ')' || b == '>':
			l.pos++
		case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
			word := l.bareToken()
			if f, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, num: f}
			}
			return token{kind: tokOperator, str: word}
		default:
			word := l.bareToken()
			if word == "BI" {
				l.skipInlineImage()
				continue
			}
			return token{kind: tokOperator, str: word}
		}
	}
	return token{kind: tokEOF}
}

func (l *lexer) bareToken() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) skipComment() {
	for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
		l.pos++
	}
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == '<' && l.data[l.pos+1] == '<' {
			depth++
			l.pos += 2
			continue
		}
		if l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
			continue
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// skipInlineImage consumes everything through the EI operator.
func (l *lexer) skipInlineImage() {
	for l.pos+1 < len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			(l.pos == 0 || isWhite(l.data[l.pos-1])) &&
			(l.pos+2 >= len(l.data) || isWhite(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// literalString reads a ( ) string with escape sequences and nested
// parentheses. The opening paren is already consumed.
func (l *lexer) literalString() []byte {
	var raw []byte
	depth := 1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch b {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return raw
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				raw = append(raw, '\n')
			case 'r':
				raw = append(raw, '\r')
			case 't':
				raw = append(raw, '\t')
			case 'b':
				raw = append(raw, '\b')
			case 'f':
				raw = append(raw, '\f')
			case '(', ')', '\\':
				raw = append(raw, e)
			case '\n':
				// line continuation
			case '\r':
				if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && l.pos+1 < len(l.data); k++ {
						nb := l.data[l.pos+1]
						if nb < '0' || nb > '7' {
							break
						}
						val = val*8 + int(nb-'0')
						l.pos++
					}
					raw = append(raw, byte(val))
				} else {
					raw = append(raw, e)
				}
			}
			l.pos++
		case '(':
			depth++
			raw = append(raw, b)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return raw
			}
			raw = append(raw, b)
		default:
			raw = append(raw, b)
			l.pos++
		}
	}
	return raw
}

// hexString reads a < > string. The opening bracket is consumed.
func (l *lexer) hexString() []byte {
	var raw []byte
	var hi byte
	have := false
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			break
		}
		v, ok := hexVal(b)
		if !ok {
			continue
		}
		if !have {
			hi = v
			have = true
			continue
		}
		raw = append(raw, hi<<4|v)
		have = false
	}
	if have {
		raw = append(raw, hi<<4)
	}
	return raw
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// decodeText interprets string bytes as UTF-16BE when they carry a BOM,
// otherwise as Latin-1. It is the fallback for fonts without a
// ToUnicode map.
func decodeText(raw []byte) string {
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		return utf16BEString(raw[2:])
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}
