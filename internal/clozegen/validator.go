package clozegen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// Validator checks a generated cloze.
type Validator interface {
	Name() string
	Validate(c *Cloze, w vocab.WordEntry) *ValidationError
}

// ValidationError describes why a cloze was rejected.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

const maxSentenceLen = 200

// StructuralValidator requires each sentence to hold exactly one blank and
// to stay within the length limit.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Cloze, _ vocab.WordEntry) *ValidationError {
	for _, s := range []struct{ field, text string }{{"cloze_de", c.Source}, {"cloze_en", c.Target}} {
		if strings.TrimSpace(s.text) == "" {
			return &ValidationError{Validator: v.Name(), Message: s.field + " is empty", Retryable: true}
		}
		if n := strings.Count(s.text, vocab.BlankMarker); n != 1 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("%s must contain %s exactly once, found %d", s.field, vocab.BlankMarker, n),
				Retryable: true,
			}
		}
		if utf8.RuneCountInString(s.text) > maxSentenceLen {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("%s exceeds %d characters", s.field, maxSentenceLen),
				Retryable: true,
			}
		}
	}
	return nil
}

// LeakValidator rejects sentences that give the answer away by naming it
// outside the blank.
type LeakValidator struct{}

func (v *LeakValidator) Name() string { return "leak" }

func (v *LeakValidator) Validate(c *Cloze, w vocab.WordEntry) *ValidationError {
	if word, ok := leaks(c.Source, w.Source); ok {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("cloze_de contains the answer %q", word), Retryable: true}
	}
	if word, ok := leaks(c.Target, w.Target); ok {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("cloze_en contains the answer %q", word), Retryable: true}
	}
	return nil
}

// leaks reports whether any accepted answer of raw appears as whole words in
// sentence.
func leaks(sentence, raw string) (string, bool) {
	padded := " " + vocab.Normalize(strings.ReplaceAll(sentence, vocab.BlankMarker, " ")) + " "
	for _, answer := range vocab.SplitAnswers(raw) {
		n := vocab.Normalize(answer)
		if n != "" && strings.Contains(padded, " "+n+" ") {
			return answer, true
		}
	}
	return "", false
}
