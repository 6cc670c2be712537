// Package pdfsource reads positioned text from PDF files via pdfcpu
// and feeds it to a glyph sink. Only the text-object subset of the
// content stream grammar is interpreted; painting operators are
// skipped.
package pdfsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"glyphmark/geo"
	"glyphmark/glyph"
	"glyphmark/observability"
)

// Source implements glyph.Source on top of a parsed PDF.
type Source struct {
	ctx  *model.Context
	dims []types.Dim
	log  observability.Logger
}

// Open reads and validates the PDF at path. password may be empty.
func Open(path, password string, log observability.Logger) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return FromReader(f, password, log)
}

// FromReader reads and validates a PDF from rs.
func FromReader(rs io.ReadSeeker, password string, log observability.Logger) (*Source, error) {
	if log == nil {
		log = observability.NopLogger{}
	}
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, mapReadError(err, password)
	}
	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", glyph.ErrInvalidInput)
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}
	return &Source{ctx: ctx, dims: dims, log: log}, nil
}

// mapReadError translates pdfcpu failures into the source error
// taxonomy.
func mapReadError(err error, password string) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		if password != "" {
			return fmt.Errorf("%w: %s", glyph.ErrPasswordIncorrect, err)
		}
		return fmt.Errorf("%w: %s", glyph.ErrPasswordRequired, err)
	}
	return fmt.Errorf("%w: %s", glyph.ErrInvalidInput, err)
}

// NumPages returns the page count.
func (s *Source) NumPages() int { return s.ctx.PageCount }

// Page interprets page index (zero-based) and streams its glyphs into
// sink in content order.
func (s *Source) Page(ctx context.Context, index int, sink glyph.Sink) (glyph.Size, error) {
	if err := ctx.Err(); err != nil {
		return glyph.Size{}, err
	}
	if index < 0 || index >= s.ctx.PageCount {
		return glyph.Size{}, fmt.Errorf("%w: page %d out of range", glyph.ErrInvalidInput, index)
	}
	pageNr := index + 1

	size := glyph.Size{Width: 612, Height: 792}
	if index < len(s.dims) {
		size = glyph.Size{Width: s.dims[index].Width, Height: s.dims[index].Height}
	}

	r, err := pdfcpu.ExtractPageContent(s.ctx, pageNr)
	if err != nil {
		return size, fmt.Errorf("page %d content: %w", pageNr, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return size, fmt.Errorf("page %d content: %w", pageNr, err)
	}

	ip := &interp{
		sink:  sink,
		fonts: s.pageFonts(pageNr),
	}
	ip.run(data)
	s.log.Debug("page interpreted",
		observability.Int("page", pageNr),
		observability.Int("glyphs", ip.emitted))
	return size, nil
}

// fontSpec is what the interpreter needs per font resource: style
// attributes from the BaseFont name, and the ToUnicode map when the
// font embeds one.
type fontSpec struct {
	font glyph.Font
	cmap *toUnicode
}

// pageFonts maps content-stream font resource names to their specs.
func (s *Source) pageFonts(pageNr int) map[string]fontSpec {
	fonts := map[string]fontSpec{}
	pd, _, _, err := s.ctx.PageDict(pageNr, false)
	if err != nil || pd == nil {
		return fonts
	}
	resObj, found := pd.Find("Resources")
	if !found {
		return fonts
	}
	res, err := s.ctx.DereferenceDict(resObj)
	if err != nil || res == nil {
		return fonts
	}
	fontObj, found := res.Find("Font")
	if !found {
		return fonts
	}
	fontRes, err := s.ctx.DereferenceDict(fontObj)
	if err != nil || fontRes == nil {
		return fonts
	}
	for name, ref := range fontRes {
		fd, err := s.ctx.DereferenceDict(ref)
		if err != nil || fd == nil {
			continue
		}
		base := ""
		if bf, found := fd.Find("BaseFont"); found {
			if n, ok := bf.(types.Name); ok {
				base = n.Value()
			}
		}
		spec := fontSpec{font: fontFromBaseName(base)}
		if tu, found := fd.Find("ToUnicode"); found {
			spec.cmap = s.fontCMap(tu)
		}
		fonts[name] = spec
	}
	return fonts
}

// fontCMap decodes a ToUnicode stream into a code map. Subsetted and
// CID fonts are unreadable without it.
func (s *Source) fontCMap(obj types.Object) *toUnicode {
	sd, _, err := s.ctx.DereferenceStreamDict(obj)
	if err != nil || sd == nil {
		return nil
	}
	if err := sd.Decode(); err != nil {
		return nil
	}
	if len(sd.Content) == 0 {
		return nil
	}
	return parseToUnicode(sd.Content)
}

func fontFromBaseName(base string) glyph.Font {
	f := glyph.Font{Family: base, Weight: glyph.WeightNormal, Style: glyph.StyleNormal}
	lower := strings.ToLower(base)
	if strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy") {
		f.Weight = glyph.WeightBold
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		f.Style = glyph.StyleItalic
	}
	return f
}

// interp is the text-object interpreter. It tracks the text line
// matrix origin, leading, and the active font, and emits one sink line
// per baseline.
type interp struct {
	sink  glyph.Sink
	fonts map[string]fontSpec

	font     glyph.Font
	cmap     *toUnicode
	fontSize float64
	leading  float64
	charSp   float64
	wordSp   float64

	x, y   float64 // current pen position
	lx, ly float64 // line matrix origin

	open    bool
	emitted int
}

const defaultAdvance = 0.5 // em fraction used without width tables

func (ip *interp) run(data []byte) {
	lx := newLexer(data)
	var stack []token
	inArray := false
	var arr []token

	for {
		tok := lx.next()
		switch tok.kind {
		case tokEOF:
			ip.endLine()
			return
		case tokArrayOpen:
			inArray = true
			arr = arr[:0]
		case tokArrayClose:
			inArray = false
		case tokNumber, tokString, tokName:
			if inArray {
				arr = append(arr, tok)
			} else {
				stack = append(stack, tok)
			}
		case tokOperator:
			ip.apply(tok.str, stack, arr)
			stack = stack[:0]
			arr = arr[:0]
		}
	}
}

func num(stack []token, fromEnd int) float64 {
	i := len(stack) - 1 - fromEnd
	if i < 0 || stack[i].kind != tokNumber {
		return 0
	}
	return stack[i].num
}

func (ip *interp) apply(op string, stack, arr []token) {
	switch op {
	case "BT":
		ip.endLine()
		ip.x, ip.y, ip.lx, ip.ly = 0, 0, 0, 0
	case "ET":
		ip.endLine()
	case "Tf":
		ip.fontSize = num(stack, 0)
		if len(stack) >= 2 && stack[len(stack)-2].kind == tokName {
			spec := ip.fonts[stack[len(stack)-2].str]
			ip.font = spec.font
			ip.cmap = spec.cmap
		}
	case "TL":
		ip.leading = num(stack, 0)
	case "Tc":
		ip.charSp = num(stack, 0)
	case "Tw":
		ip.wordSp = num(stack, 0)
	case "Td":
		ip.moveLine(num(stack, 1), num(stack, 0))
	case "TD":
		ty := num(stack, 0)
		ip.leading = -ty
		ip.moveLine(num(stack, 1), ty)
	case "Tm":
		// Only the translation part is honored; rotation and skew in
		// the text matrix are rare in body text.
		if len(stack) >= 6 {
			e, f := num(stack, 1), num(stack, 0)
			if f != ip.ly {
				ip.endLine()
			}
			ip.lx, ip.ly = e, f
			ip.x, ip.y = e, f
		}
	case "T*":
		ip.moveLine(0, -ip.leading)
	case "Tj":
		ip.show(lastString(stack))
	case "'":
		ip.moveLine(0, -ip.leading)
		ip.show(lastString(stack))
	case "\"":
		if len(stack) >= 3 {
			ip.wordSp = num(stack, 2)
			ip.charSp = num(stack, 1)
		}
		ip.moveLine(0, -ip.leading)
		ip.show(lastString(stack))
	case "TJ":
		for _, t := range arr {
			switch t.kind {
			case tokString:
				ip.show(t.raw)
			case tokNumber:
				ip.x -= t.num / 1000 * ip.fontSize
			}
		}
	}
}

func lastString(stack []token) []byte {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].kind == tokString {
			return stack[i].raw
		}
	}
	return nil
}

// moveLine advances the line matrix origin. A vertical move closes the
// open line.
func (ip *interp) moveLine(tx, ty float64) {
	if ty != 0 {
		ip.endLine()
	}
	ip.lx += tx
	ip.ly += ty
	ip.x, ip.y = ip.lx, ip.ly
}

// show decodes a string's code bytes through the active font's
// ToUnicode map (BOM/Latin-1 fallback without one) and emits glyphs.
func (ip *interp) show(raw []byte) {
	if len(raw) == 0 {
		return
	}
	s := ip.cmap.decode(raw)
	if s == "" {
		return
	}
	if !ip.open {
		ip.sink.BeginLine(geo.Rect{}, glyph.Horizontal)
		ip.open = true
	}
	size := ip.fontSize
	if size <= 0 {
		size = 12
	}
	for _, r := range s {
		if r == '\n' || r == '\r' {
			continue
		}
		ip.sink.Char(r, ip.x, ip.y, ip.font, size)
		ip.emitted++
		ip.x += size*defaultAdvance + ip.charSp
		if r == ' ' {
			ip.x += ip.wordSp
		}
	}
}

func (ip *interp) endLine() {
	if ip.open {
		ip.sink.EndLine()
		ip.open = false
	}
}
