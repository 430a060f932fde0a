package vocab

import "strings"

// strippedPunctuation lists the characters Normalize removes.
const strippedPunctuation = `.,;:!?()"'`

var (
	// foldLower runs after lowercasing, so only the lower-case forms matter.
	foldLower = strings.NewReplacer("ß", "ss", "ä", "ae", "ö", "oe", "ü", "ue")

	// foldVariant keeps the case of the original answer text.
	foldVariant = strings.NewReplacer(
		"ß", "ss", "ä", "ae", "ö", "oe", "ü", "ue",
		"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	)
)

// Normalize canonicalizes a free-text answer for tolerant comparison.
//
// Normalization rules:
// - Letters are lowercased
// - German diacritics are folded (ß→ss, ä→ae, ö→oe, ü→ue)
// - The characters . , ; : ! ? ( ) " ' are removed
// - Whitespace runs collapse to a single space, leading and trailing
//   whitespace is trimmed
//
// Punctuation is removed before whitespace is collapsed, which keeps the
// function idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := foldLower.Replace(strings.ToLower(text))
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunctuation, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldDiacritics replaces German diacritics with their ASCII spelling and
// leaves everything else, including case, untouched.
func FoldDiacritics(s string) string {
	return foldVariant.Replace(s)
}
