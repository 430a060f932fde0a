package session

import (
	"context"
	"time"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// PoolLoader provides the word entries of a course.
type PoolLoader interface {
	FetchPool(ctx context.Context, course vocab.Course) ([]vocab.WordEntry, error)
}

// ResultRecorder stores the summary of a finished session.
type ResultRecorder interface {
	RecordSession(ctx context.Context, result Result) error
}

// UserLookup resolves the learner a session belongs to.
type UserLookup interface {
	CurrentUser(ctx context.Context) (User, error)
}

// AttemptRecorder keeps per-word answer statistics.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, userID, wordID string, correct bool) error
}

// User identifies a learner. An empty ID means nobody is signed in.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Admin bool   `json:"admin,omitempty"`
}

// Result is the stored summary of one finished session.
type Result struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	UserEmail string       `json:"user_email"`
	Course    vocab.Course `json:"course"`
	Total     int          `json:"total"`
	Correct   int          `json:"correct"`
	Percent   int          `json:"percent"`
	Mode      string       `json:"mode"`
	CreatedAt time.Time    `json:"created_at"`
}
