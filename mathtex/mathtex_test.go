package mathtex

import (
	"strings"
	"testing"
)

func TestProcessTextInlineFormula(t *testing.T) {
	got := ProcessText("The area is A = πr²")
	want := `The area is A = $\pi r^{2}$`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProcessTextComparisonGreek(t *testing.T) {
	got := ProcessText("If α ≤ β then the result holds.")
	if !strings.Contains(got, `\alpha`) {
		t.Fatalf("missing \\alpha in %q", got)
	}
	if !strings.Contains(got, `\leq`) {
		t.Fatalf("missing \\leq in %q", got)
	}
	if !strings.Contains(got, `\beta`) {
		t.Fatalf("missing \\beta in %q", got)
	}
}

func TestProcessTextLeavesProseAlone(t *testing.T) {
	in := "Plain sentences stay exactly as they were written."
	if got := ProcessText(in); got != in {
		t.Fatalf("prose was altered: %q", got)
	}
}

func TestProcessTextAssignmentSentence(t *testing.T) {
	// Weak indicators alone must not turn prose into math.
	in := "let x = 2 be the starting value"
	if got := ProcessText(in); strings.Contains(got, "$") {
		t.Fatalf("prose arithmetic wrapped as math: %q", got)
	}
}

func TestConvertTables(t *testing.T) {
	cases := []struct {
		in   rune
		want string
	}{
		{'π', `\pi`},
		{'Σ', `\Sigma`},
		{'∞', `\infty`},
		{'≤', `\leq`},
		{'→', `\to`},
		{'∂', `\partial`},
	}
	for _, c := range cases {
		got, ok := LaTeX(c.in)
		if !ok || got != c.want {
			t.Fatalf("LaTeX(%q) = %q (%v), want %q", c.in, got, ok, c.want)
		}
	}
}

func TestConvertTablesComplete(t *testing.T) {
	// Every rune in every mapping table must resolve through LaTeX.
	tabs := []struct {
		name string
		m    map[rune]string
	}{
		{"greek", greek},
		{"superscripts", superscripts},
		{"subscripts", subscripts},
		{"operators", operators},
	}
	for _, tab := range tabs {
		for r := range tab.m {
			got, ok := LaTeX(r)
			if !ok || got == "" {
				t.Fatalf("%s rune %q has no mapping (%q, %v)", tab.name, r, got, ok)
			}
		}
	}
}

func TestConvertGroupsScripts(t *testing.T) {
	if got := Convert("x¹²"); got != "x^{12}" {
		t.Fatalf("superscript grouping: got %q", got)
	}
	if got := Convert("x₀₁"); got != "x_{01}" {
		t.Fatalf("subscript grouping: got %q", got)
	}
}

func TestConvertCommandSpacing(t *testing.T) {
	// A command followed by an ASCII letter needs a separator.
	if got := Convert("πr"); got != `\pi r` {
		t.Fatalf("got %q", got)
	}
	// No separator before non-letters.
	if got := Convert("π2"); got != `\pi2` {
		t.Fatalf("got %q", got)
	}
}

func TestDensityMonotonicUnderGreek(t *testing.T) {
	samples := []string{
		"",
		"plain words here",
		"x = y + z",
		"∑ of all parts",
	}
	letters := []rune{'α', 'β', 'π', 'Ω'}
	for _, s := range samples {
		base := Density(s)
		for _, g := range letters {
			d := Density(s + string(g))
			if d < base-1e-9 {
				t.Fatalf("density dropped after adding %q to %q: %v -> %v", g, s, base, d)
			}
			if d < 0 || d > 1 {
				t.Fatalf("density out of range: %v", d)
			}
		}
	}
}

func TestDensityIgnoresWeakWithoutStrong(t *testing.T) {
	if d := Density("a = b and c = d"); d != 0 {
		t.Fatalf("weak-only text scored %v, want 0", d)
	}
}

func TestIsDisplay(t *testing.T) {
	if !IsDisplay("$$x^2$$") {
		t.Fatal("delimited display not recognized")
	}
	if !IsDisplay("∑ x₁ = μ") {
		t.Fatal("dense equation not recognized as display")
	}
	if IsDisplay("An ordinary sentence about totals.") {
		t.Fatal("prose misread as display math")
	}
}

func TestSplitRoundTrips(t *testing.T) {
	inputs := []string{
		"The area is A = πr²",
		"If α ≤ β then the result holds.",
		"no math at all",
		"prefix $x+y$ suffix",
	}
	for _, in := range inputs {
		var b strings.Builder
		for _, seg := range Split(in) {
			b.WriteString(seg.Text)
		}
		if b.String() != in {
			t.Fatalf("segments do not reproduce input: %q vs %q", b.String(), in)
		}
	}
}

func TestFindInlineSpansBounded(t *testing.T) {
	spans := FindInlineSpans("The area is A = πr² as stated")
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	runes := []rune("The area is A = πr² as stated")
	if got := string(runes[spans[0].Start:spans[0].End]); got != "πr²" {
		t.Fatalf("span = %q", got)
	}
}

func TestProcessBlockDisplay(t *testing.T) {
	got := ProcessBlock("∑ x₁ = μ")
	if !strings.HasPrefix(got, "$$\n") || !strings.HasSuffix(got, "\n$$") {
		t.Fatalf("display wrapping missing: %q", got)
	}
	if !strings.Contains(got, `\sum`) {
		t.Fatalf("missing \\sum: %q", got)
	}
}
