package vocab

import (
	"sort"
	"strings"
)

// SolutionSet holds the accepted spellings for one question.
// Iteration order carries no meaning.
type SolutionSet map[string]struct{}

// SplitAnswers splits a raw answer field on ";" and "|", trims every part
// and drops the empty ones. Order is preserved.
func SplitAnswers(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '|'
	})
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return parts
}

// PrimarySolution returns the first accepted answer of a raw answer field,
// or "" when there is none. It is the spelling shown after a wrong answer.
func PrimarySolution(raw string) string {
	parts := SplitAnswers(raw)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ExpandSolutions builds the SolutionSet of a raw answer field. Every part
// is accepted as written and with its diacritics folded to ASCII.
func ExpandSolutions(raw string) SolutionSet {
	set := make(SolutionSet)
	for _, part := range SplitAnswers(raw) {
		set[part] = struct{}{}
		set[FoldDiacritics(part)] = struct{}{}
	}
	return set
}

// Contains reports whether s is one of the stored spellings, compared
// verbatim.
func (s SolutionSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of distinct spellings.
func (s SolutionSet) Len() int {
	return len(s)
}

// Values returns the spellings in sorted order.
func (s SolutionSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether answer equals any accepted spelling once both
// sides are normalized. A blank answer never matches.
func (s SolutionSet) Matches(answer string) bool {
	want := Normalize(answer)
	if want == "" {
		return false
	}
	for v := range s {
		if Normalize(v) == want {
			return true
		}
	}
	return false
}
