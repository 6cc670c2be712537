package classify

import "strings"

// functionWords is the closed-class English word set used as a prose
// signal. Membership is case-insensitive.
var functionWords = map[string]struct{}{}

func init() {
	const list = "the a an is are was were be been have has had do does did " +
		"will would could should may might must shall can to of in for on " +
		"with at by from as into through during before after and but or nor " +
		"so yet both either neither not only also just than then now here " +
		"there this that these those it its they their them he she his her " +
		"we our you your who which what"
	for _, w := range strings.Fields(list) {
		functionWords[w] = struct{}{}
	}
}

// IsFunctionWord reports whether the token is a closed-class English
// function word. Trailing punctuation is not stripped by this helper.
func IsFunctionWord(w string) bool {
	_, ok := functionWords[strings.ToLower(w)]
	return ok
}

// FunctionWordRatio returns the fraction of whitespace-separated tokens
// that are function words after stripping wrapper punctuation.
func FunctionWordRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	n := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()[]{}\"'")
		if IsFunctionWord(w) {
			n++
		}
	}
	return float64(n) / float64(len(words))
}
