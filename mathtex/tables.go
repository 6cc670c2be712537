package mathtex

// Immutable lookup tables, loaded once at init. Linear scans are fine
// at this size; the hot path goes through map lookups.

// greek maps Greek code points to LaTeX commands. Uppercase letters
// whose glyph collides with ASCII Latin (Alpha, Beta, Epsilon, ...) map
// to the Latin letter instead of a command.
var greek = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`,
	'ε': `\varepsilon`, 'ϵ': `\epsilon`, 'ζ': `\zeta`, 'η': `\eta`,
	'θ': `\theta`, 'ϑ': `\vartheta`, 'ι': `\iota`, 'κ': `\kappa`,
	'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`, 'ξ': `\xi`, 'ο': `o`,
	'π': `\pi`, 'ϖ': `\varpi`, 'ρ': `\rho`, 'ϱ': `\varrho`,
	'σ': `\sigma`, 'ς': `\varsigma`, 'τ': `\tau`, 'υ': `\upsilon`,
	'φ': `\varphi`, 'ϕ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,

	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`,
	'Ξ': `\Xi`, 'Π': `\Pi`, 'Σ': `\Sigma`, 'Υ': `\Upsilon`,
	'Φ': `\Phi`, 'Ψ': `\Psi`, 'Ω': `\Omega`,

	'Α': `A`, 'Β': `B`, 'Ε': `E`, 'Ζ': `Z`, 'Η': `H`, 'Ι': `I`,
	'Κ': `K`, 'Μ': `M`, 'Ν': `N`, 'Ο': `O`, 'Ρ': `P`, 'Τ': `T`,
	'Χ': `X`,
}

// superscripts map to the plain character inside a ^{...} group.
var superscripts = map[rune]string{
	'⁰': "0", '¹': "1", '²': "2", '³': "3", '⁴': "4",
	'⁵': "5", '⁶': "6", '⁷': "7", '⁸': "8", '⁹': "9",
	'⁺': "+", '⁻': "-", '⁼': "=", '⁽': "(", '⁾': ")",
	'ⁿ': "n", 'ⁱ': "i",
}

// subscripts map to the plain character inside a _{...} group.
var subscripts = map[rune]string{
	'₀': "0", '₁': "1", '₂': "2", '₃': "3", '₄': "4",
	'₅': "5", '₆': "6", '₇': "7", '₈': "8", '₉': "9",
	'₊': "+", '₋': "-", '₌': "=", '₍': "(", '₎': ")",
	'ₐ': "a", 'ₑ': "e", 'ₒ': "o", 'ₓ': "x",
}

// operators maps mathematical operators, relations, arrows, set/logic
// symbols, calculus symbols, brackets and dots to LaTeX commands.
var operators = map[rune]string{
	// Arithmetic and algebra.
	'×': `\times`, '÷': `\div`, '±': `\pm`, '∓': `\mp`,
	'·': `\cdot`, '⋅': `\cdot`, '∗': `\ast`, '∘': `\circ`,
	'√': `\sqrt`, '∛': `\sqrt[3]`, '∜': `\sqrt[4]`, '∞': `\infty`,

	// Calculus.
	'∫': `\int`, '∬': `\iint`, '∭': `\iiint`, '∮': `\oint`,
	'∑': `\sum`, '∏': `\prod`, '∐': `\coprod`,
	'∂': `\partial`, '∇': `\nabla`,

	// Relations.
	'≤': `\leq`, '≥': `\geq`, '≠': `\neq`, '≈': `\approx`,
	'≡': `\equiv`, '≢': `\not\equiv`, '≅': `\cong`, '≃': `\simeq`,
	'∼': `\sim`, '∝': `\propto`, '≪': `\ll`, '≫': `\gg`,
	'≺': `\prec`, '≻': `\succ`, '≐': `\doteq`,

	// Set theory.
	'∈': `\in`, '∉': `\notin`, '∋': `\ni`,
	'⊂': `\subset`, '⊃': `\supset`, '⊆': `\subseteq`, '⊇': `\supseteq`,
	'∪': `\cup`, '∩': `\cap`, '∅': `\emptyset`, '∖': `\setminus`,
	'⊕': `\oplus`, '⊖': `\ominus`, '⊗': `\otimes`, '⊘': `\oslash`,

	// Logic.
	'∧': `\land`, '∨': `\lor`, '¬': `\neg`,
	'∀': `\forall`, '∃': `\exists`, '∄': `\nexists`,
	'∴': `\therefore`, '∵': `\because`,
	'⊢': `\vdash`, '⊨': `\models`, '⊥': `\perp`, '∥': `\parallel`,

	// Arrows.
	'→': `\to`, '←': `\leftarrow`, '↔': `\leftrightarrow`,
	'⇒': `\Rightarrow`, '⇐': `\Leftarrow`, '⇔': `\Leftrightarrow`,
	'↦': `\mapsto`, '↑': `\uparrow`, '↓': `\downarrow`,
	'⟶': `\longrightarrow`, '⟵': `\longleftarrow`,

	// Number sets and constants.
	'ℝ': `\mathbb{R}`, 'ℕ': `\mathbb{N}`, 'ℤ': `\mathbb{Z}`,
	'ℚ': `\mathbb{Q}`, 'ℂ': `\mathbb{C}`, 'ℙ': `\mathbb{P}`,
	'ℏ': `\hbar`, 'ℓ': `\ell`, 'ℜ': `\Re`, 'ℑ': `\Im`,
	'ℵ': `\aleph`, '℘': `\wp`,

	// Accents and marks.
	'′': `'`, '″': `''`, '‴': `'''`, '°': `^{\circ}`,

	// Brackets and dots.
	'⟨': `\langle`, '⟩': `\rangle`,
	'⌊': `\lfloor`, '⌋': `\rfloor`, '⌈': `\lceil`, '⌉': `\rceil`,
	'…': `\ldots`, '⋯': `\cdots`, '⋮': `\vdots`, '⋱': `\ddots`,
}

// equationRelations are the operators whose presence qualifies a
// standalone block as display math.
var equationRelations = map[rune]struct{}{
	'=': {}, '≤': {}, '≥': {}, '≠': {}, '≈': {}, '≃': {},
	'⇒': {}, '→': {}, '⇔': {}, '↦': {}, '∝': {},
}

// LaTeX returns the mapping target for a single code point, consulting
// all tables. Super/subscript runes come back without their ^{}/_{}
// wrapper; use Convert for grouped output.
func LaTeX(r rune) (string, bool) {
	if s, ok := greek[r]; ok {
		return s, true
	}
	if s, ok := superscripts[r]; ok {
		return "^{" + s + "}", true
	}
	if s, ok := subscripts[r]; ok {
		return "_{" + s + "}", true
	}
	if s, ok := operators[r]; ok {
		return s, true
	}
	return "", false
}

func isGreek(r rune) bool {
	_, ok := greek[r]
	return ok
}

func isSuperscript(r rune) bool {
	_, ok := superscripts[r]
	return ok
}

func isSubscript(r rune) bool {
	_, ok := subscripts[r]
	return ok
}

func isOperator(r rune) bool {
	_, ok := operators[r]
	return ok
}

// isStrongIndicator reports whether the rune alone marks math content.
func isStrongIndicator(r rune) bool {
	return isGreek(r) || isSuperscript(r) || isSubscript(r) || isOperator(r) || r == '^' || r == '_'
}

// isWeakIndicator reports runes that suggest math only in company.
func isWeakIndicator(r rune) bool {
	return r == '=' || r == '+' || r == '*'
}
