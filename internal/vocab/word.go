package vocab

import (
	"fmt"
	"strings"
)

// BlankMarker is the placeholder a cloze prompt asks the learner to fill.
const BlankMarker = "___"

// Course selects a slice of the word bank. The numbers are opaque to the
// quiz engine; it only compares them. They start at 1, so a zero field
// can stand for "any" in filters.
type Course struct {
	Grade   int `json:"grade" koanf:"grade" validate:"min=1"`
	Unit    int `json:"unit" koanf:"unit" validate:"min=1"`
	Station int `json:"station" koanf:"station" validate:"min=1"`
}

func (c Course) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Grade, c.Unit, c.Station)
}

// WordEntry is one vocabulary item of the word bank.
type WordEntry struct {
	ID string `json:"id"`

	// Source is the German term. It may hold several accepted answers
	// separated by ";" or "|".
	Source string `json:"de" validate:"required"`

	// Target is the English term, same delimiter rules as Source.
	Target string `json:"en" validate:"required"`

	Course

	// ClozeSource is an optional German sentence with a BlankMarker where
	// the German word belongs.
	ClozeSource string `json:"cloze_de,omitempty" validate:"omitempty,contains=___"`

	// ClozeTarget is the English counterpart of ClozeSource.
	ClozeTarget string `json:"cloze_en,omitempty" validate:"omitempty,contains=___"`
}

// Usable reports whether both terms are present. Entries that are not
// usable cannot produce a question.
func (w WordEntry) Usable() bool {
	return strings.TrimSpace(w.Source) != "" && strings.TrimSpace(w.Target) != ""
}

// Direction says which language is shown and which one is asked for.
type Direction int

const (
	// TargetToSource shows the English word and asks for the German one.
	TargetToSource Direction = iota

	// SourceToTarget shows the German word and asks for the English one.
	SourceToTarget
)

func (d Direction) String() string {
	if d == SourceToTarget {
		return "de->en"
	}
	return "en->de"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == SourceToTarget {
		return TargetToSource
	}
	return SourceToTarget
}

// ParseDirection accepts both the cloze ("en->de") and the multiple-choice
// ("en2de") spelling.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en->de", "en2de", "":
		return TargetToSource, nil
	case "de->en", "de2en":
		return SourceToTarget, nil
	default:
		return TargetToSource, fmt.Errorf("unknown direction %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
