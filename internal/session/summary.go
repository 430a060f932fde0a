package session

import (
	"fmt"
	"time"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// Summary holds the data displayed once a session is over.
type Summary struct {
	Course     vocab.Course
	Mode       Mode
	Direction  vocab.Direction
	Duration   time.Duration
	Total      int
	Correct    int
	Percent    int
	Attempts   []Attempt
	PersistErr error
}

// BuildSummary creates a Summary from the current session state.
func BuildSummary(s *Session) *Summary {
	return &Summary{
		Course:     s.course,
		Mode:       s.mode,
		Direction:  s.direction,
		Duration:   s.now().Sub(s.startedAt),
		Total:      s.Total(),
		Correct:    s.correct,
		Percent:    s.Percent(),
		Attempts:   s.Attempts(),
		PersistErr: s.persistErr,
	}
}

// Wrong returns the attempts that were answered incorrectly.
func (sm *Summary) Wrong() []Attempt {
	var out []Attempt
	for _, a := range sm.Attempts {
		if !a.Correct {
			out = append(out, a)
		}
	}
	return out
}

// AveragePercent is the mean score of results, rounded half up. It is 0
// for no results.
func AveragePercent(results []Result) int {
	sum := 0
	for _, r := range results {
		sum += r.Percent
	}
	return Percent(sum, 100*len(results))
}

// Overview summarizes results as the number of tests and their average
// score, e.g. "3 tests, ⌀ 67%".
func Overview(results []Result) string {
	noun := "tests"
	if len(results) == 1 {
		noun = "test"
	}
	return fmt.Sprintf("%d %s, ⌀ %d%%", len(results), noun, AveragePercent(results))
}
