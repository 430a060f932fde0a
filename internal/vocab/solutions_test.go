package vocab

import (
	"reflect"
	"testing"
)

func TestExpandSolutions(t *testing.T) {
	got := ExpandSolutions("Haus;Häuser")
	want := []string{"Haeuser", "Haus", "Häuser"}
	if !reflect.DeepEqual(got.Values(), want) {
		t.Errorf("ExpandSolutions(Haus;Häuser) = %v, want %v", got.Values(), want)
	}
}

func TestExpandSolutions_Delimiters(t *testing.T) {
	got := ExpandSolutions(" run | to run ;; sprint ")
	for _, w := range []string{"run", "to run", "sprint"} {
		if !got.Contains(w) {
			t.Errorf("ExpandSolutions missing %q in %v", w, got.Values())
		}
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3", got.Len())
	}
}

func TestExpandSolutions_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", ";|;"} {
		if got := ExpandSolutions(in); got.Len() != 0 {
			t.Errorf("ExpandSolutions(%q) = %v, want empty", in, got.Values())
		}
	}
}

func TestPrimarySolution(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Haus;Häuser", "Haus"},
		{" ; Auto|Wagen", "Auto"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := PrimarySolution(tc.input); got != tc.want {
			t.Errorf("PrimarySolution(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSolutionSet_Matches(t *testing.T) {
	set := ExpandSolutions("Häuser;Gebäude")

	tests := []struct {
		answer string
		want   bool
	}{
		{"häuser", true},
		{"Haeuser", true},
		{"  HÄUSER. ", true},
		{"gebaeude", true},
		{"Haus", false},
		{"huas", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range tests {
		if got := set.Matches(tc.answer); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.answer, got, tc.want)
		}
	}
}
