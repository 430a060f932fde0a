package session

import (
	"fmt"
	"strings"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// Phase represents the current phase of a quiz session.
type Phase int

const (
	PhaseLoading  Phase = iota // Waiting for the word pool
	PhaseUnlocked              // Current question accepts an answer
	PhaseLocked                // Answer recorded, waiting for Advance
	PhaseFinished              // Every question has been answered
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnlocked:
		return "unlocked"
	case PhaseLocked:
		return "locked"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	for c := PhaseLoading; c <= PhaseFinished; c++ {
		if c.String() == string(b) {
			*p = c
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Mode is the question type of a session.
type Mode string

const (
	// ModeCloze asks the learner to type the missing word.
	ModeCloze Mode = "cloze"

	// ModeMultipleChoice asks the learner to pick one of four options.
	ModeMultipleChoice Mode = "choice"
)

// choiceCount is the number of options of a multiple-choice question.
const choiceCount = 4

// ParseMode parses a mode name. An empty name selects ModeCloze.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cloze":
		return ModeCloze, nil
	case "choice", "mc", "multiple-choice":
		return ModeMultipleChoice, nil
	default:
		return ModeCloze, fmt.Errorf("unknown quiz mode %q", s)
	}
}

// MinPool returns the smallest pool the mode can run on. Multiple choice
// draws its distractors from the pool.
func (m Mode) MinPool() int {
	if m == ModeMultipleChoice {
		return choiceCount
	}
	return 1
}

// Tag returns the mode label stored with a result, e.g. "cloze-en->de" or
// "de2en".
func (m Mode) Tag(dir vocab.Direction) string {
	if m == ModeMultipleChoice {
		if dir == vocab.SourceToTarget {
			return "de2en"
		}
		return "en2de"
	}
	return "cloze-" + dir.String()
}

// Question is the question currently shown to the learner.
type Question struct {
	// Index is the position of the question in the shuffled order.
	Index int

	// Word is the entry the question was built from.
	Word vocab.WordEntry

	// Prompt is the cloze text, or the word to translate in
	// multiple-choice mode.
	Prompt string

	// Solutions holds the accepted spellings of the answer.
	Solutions vocab.SolutionSet

	// Canonical is the spelling shown after a wrong answer.
	Canonical string

	// Options and CorrectIndex are set in multiple-choice mode only.
	Options      []string
	CorrectIndex int
}

// Attempt records one answered question.
type Attempt struct {
	WordID    string          `json:"word_id"`
	Source    string          `json:"de"`
	Target    string          `json:"en"`
	Prompt    string          `json:"prompt"`
	Answer    string          `json:"answer"`
	Canonical string          `json:"solution"`
	Correct   bool            `json:"correct"`
	Direction vocab.Direction `json:"direction"`

	Options      []string `json:"options,omitempty"`
	Chosen       int      `json:"chosen,omitempty"`
	CorrectIndex int      `json:"correct_index,omitempty"`
}

// Snapshot is a read-only view of a session, published to subscribers
// after every transition.
type Snapshot struct {
	SessionID          string          `json:"session_id"`
	Course             vocab.Course    `json:"course"`
	Mode               Mode            `json:"mode"`
	Direction          vocab.Direction `json:"direction"`
	Phase              Phase           `json:"phase"`
	Index              int             `json:"index"`
	Total              int             `json:"total"`
	Correct            int             `json:"correct"`
	Percent            int             `json:"percent"`
	Progress           string          `json:"progress"`
	CanChangeDirection bool            `json:"can_change_direction"`
	Prompt             string          `json:"prompt,omitempty"`
	Options            []string        `json:"options,omitempty"`
	LastAttempt        *Attempt        `json:"last_attempt,omitempty"`
	Attempts           []Attempt       `json:"attempts,omitempty"`
	ResultPersisted    bool            `json:"result_persisted"`
	PersistError       string          `json:"persist_error,omitempty"`
}

// Percent returns correct/total as a whole percentage, rounding halves up.
// A zero total yields 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}
