package pdfsource

import (
	"bufio"
	"bytes"
	"sort"
	"strings"
	"unicode/utf16"
)

// toUnicode maps font code sequences to Unicode text, built from a
// font's ToUnicode CMap stream. Subsetted and CID fonts show their
// glyphs through these maps; without one the raw code bytes are
// meaningless.
type toUnicode struct {
	entries map[string]string
	// lengths holds the known code byte widths, widest first, so
	// decode can try multi-byte codes before single bytes.
	lengths []int
}

// parseToUnicode reads the bfchar/bfrange sections of a CMap stream.
// Codespace ranges contribute code widths; malformed lines are skipped.
func parseToUnicode(data []byte) *toUnicode {
	sc := bufio.NewScanner(bytes.NewReader(data))
	m := &toUnicode{entries: map[string]string{}}
	widths := map[int]struct{}{}

	state := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		switch {
		case strings.HasSuffix(line, "begincodespacerange"):
			state = "codespace"
			continue
		case strings.HasSuffix(line, "endcodespacerange"),
			strings.HasSuffix(line, "endbfchar"),
			strings.HasSuffix(line, "endbfrange"):
			state = ""
			continue
		case strings.HasSuffix(line, "beginbfchar"):
			state = "bfchar"
			continue
		case strings.HasSuffix(line, "beginbfrange"):
			state = "bfrange"
			continue
		}

		switch state {
		case "codespace":
			if hexes := hexTokens(line); len(hexes) > 0 {
				if b := hexBytes(hexes[0]); len(b) > 0 {
					widths[len(b)] = struct{}{}
				}
			}
		case "bfchar":
			hexes := hexTokens(line)
			if len(hexes) < 2 {
				continue
			}
			src := hexBytes(hexes[0])
			if len(src) == 0 {
				continue
			}
			m.entries[string(src)] = utf16BEString(hexBytes(hexes[1]))
			widths[len(src)] = struct{}{}
		case "bfrange":
			line = joinBracketed(line, sc)
			hexes := hexTokens(line)
			if len(hexes) < 3 {
				continue
			}
			src := hexBytes(hexes[0])
			lo, hi := codeInt(src), codeInt(hexBytes(hexes[1]))
			widths[len(src)] = struct{}{}
			if strings.Contains(line, "[") {
				// <lo> <hi> [<dst> <dst> ...]
				for i := 0; i <= hi-lo && 2+i < len(hexes); i++ {
					key := string(intCode(lo+i, len(src)))
					m.entries[key] = utf16BEString(hexBytes(hexes[2+i]))
				}
			} else {
				// <lo> <hi> <dstStart>
				dst := hexBytes(hexes[2])
				base := codeInt(dst)
				for i := 0; i <= hi-lo; i++ {
					key := string(intCode(lo+i, len(src)))
					m.entries[key] = utf16BEString(intCode(base+i, len(dst)))
				}
			}
		}
	}

	if len(widths) == 0 {
		for k := range m.entries {
			widths[len(k)] = struct{}{}
		}
	}
	for w := range widths {
		m.lengths = append(m.lengths, w)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(m.lengths)))
	return m
}

// decode maps a string's raw code bytes to text, trying the widest
// code width first. Unmapped bytes pass through as Latin-1.
func (m *toUnicode) decode(raw []byte) string {
	if m == nil || len(m.lengths) == 0 {
		return decodeText(raw)
	}
	var out strings.Builder
	for len(raw) > 0 {
		matched := false
		for _, l := range m.lengths {
			if len(raw) < l {
				continue
			}
			if val, ok := m.entries[string(raw[:l])]; ok {
				out.WriteString(val)
				raw = raw[l:]
				matched = true
				break
			}
		}
		if !matched {
			out.WriteRune(rune(raw[0]))
			raw = raw[1:]
		}
	}
	return out.String()
}

// joinBracketed pulls in continuation lines until the array form of a
// bfrange entry closes.
func joinBracketed(line string, sc *bufio.Scanner) string {
	if !strings.Contains(line, "[") || strings.Contains(line, "]") {
		return line
	}
	for sc.Scan() {
		next := strings.TrimSpace(sc.Text())
		line += " " + next
		if strings.Contains(next, "]") {
			break
		}
	}
	return line
}

// hexTokens extracts the contents of every <...> group on a line.
func hexTokens(line string) []string {
	var tokens []string
	for {
		start := strings.Index(line, "<")
		if start == -1 {
			break
		}
		end := strings.Index(line[start+1:], ">")
		if end == -1 {
			break
		}
		tokens = append(tokens, strings.ReplaceAll(line[start+1:start+1+end], " ", ""))
		line = line[start+1+end+1:]
	}
	return tokens
}

func hexBytes(hex string) []byte {
	if len(hex)%2 == 1 {
		hex += "0"
	}
	out := make([]byte, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		hi, _ := hexVal(hex[i])
		lo, _ := hexVal(hex[i+1])
		out[i/2] = hi<<4 | lo
	}
	return out
}

func codeInt(b []byte) int {
	v := 0
	for _, by := range b {
		v = v<<8 | int(by)
	}
	return v
}

func intCode(v, length int) []byte {
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func utf16BEString(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(u16))
}
