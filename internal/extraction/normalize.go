package extraction

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes to NFD, drops combining marks, and
// recomposes, stripping diacritics ("Hà Nội" -> "Ha Noi").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips diacritical marks. Used for keyword
// matching and name comparison; display names keep their original form.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// NormalizeName produces the comparison form of a POI name: folded,
// punctuation replaced by spaces, whitespace collapsed and trimmed.
func NormalizeName(name string) string {
	folded := Fold(name)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NamesEqual reports whether two normalized names refer to the same
// entity: identical, or one contains the other as a whole-word
// substring. "eiffel tower" and "return to eiffel tower" are equal;
// "notre dame cathedral" and "notre dame basilica" are not.
func NamesEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return containsWholeWord(a, b) || containsWholeWord(b, a)
}

// containsWholeWord reports whether needle occurs in haystack on word
// boundaries.
func containsWholeWord(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
