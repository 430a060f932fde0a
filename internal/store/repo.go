package store

import (
	"context"
	"errors"
	"time"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/vocab"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	After int64     // id > After
	From  time.Time // created_at >= From
	To    time.Time // created_at <= To
}

// WordFilter narrows ListWords. Zero fields match everything.
type WordFilter struct {
	Grade   int
	Unit    int
	Station int
	Limit   int
}

// WordRepo reads and maintains the word bank.
type WordRepo interface {
	// FetchPool returns every word of the course.
	FetchPool(ctx context.Context, c vocab.Course) ([]vocab.WordEntry, error)

	// Grades returns the distinct grades in ascending order.
	Grades(ctx context.Context) ([]int, error)

	// Units returns the distinct units of a grade in ascending order.
	Units(ctx context.Context, grade int) ([]int, error)

	// Stations returns the distinct stations of a grade and unit in ascending order.
	Stations(ctx context.Context, grade, unit int) ([]int, error)

	// UpsertWords inserts words or refreshes existing ones by id.
	UpsertWords(ctx context.Context, words []vocab.WordEntry) (int, error)

	ListWords(ctx context.Context, f WordFilter) ([]vocab.WordEntry, error)

	// WordsMissingCloze returns up to limit words without a cloze template.
	WordsMissingCloze(ctx context.Context, limit int) ([]vocab.WordEntry, error)

	SetCloze(ctx context.Context, id, clozeSource, clozeTarget string) error
}

// ResultFilter narrows ListResults. Course numbers start at 1, so a zero
// course field matches every value.
type ResultFilter struct {
	UserID  string
	Grade   int
	Unit    int
	Station int
	Limit   int
}

// ResultRepo persists finished quiz sessions.
type ResultRepo interface {
	// RecordSession stores one result row. It satisfies session.ResultRecorder.
	RecordSession(ctx context.Context, r session.Result) error

	// ListResults returns matching results, newest first.
	ListResults(ctx context.Context, f ResultFilter) ([]session.Result, error)

	// ResultCourses returns the distinct courses the user has results for.
	ResultCourses(ctx context.Context, userID string) ([]vocab.Course, error)
}

// Profile is a learner or administrator account.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// User converts the profile to the session's view of a user.
func (p Profile) User() session.User {
	return session.User{ID: p.ID, Email: p.Email, Name: p.FullName, Admin: p.Admin}
}

// ProfileRepo manages accounts.
type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *Profile) error
	ProfileByEmail(ctx context.Context, email string) (*Profile, error)
	ProfileByID(ctx context.Context, id string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	SetAdmin(ctx context.Context, id string, admin bool) error
	SetPassword(ctx context.Context, id, hash string) error
}

// WordStat counts attempts of one user at one word.
type WordStat struct {
	WordID     string
	UserID     string
	Attempts   int
	Correct    int
	LastSeenAt time.Time
}

// StatRepo keeps per-word attempt counters.
type StatRepo interface {
	// RecordAttempt increments the counters. It satisfies session.AttemptRecorder.
	RecordAttempt(ctx context.Context, userID, wordID string, correct bool) error

	WordStats(ctx context.Context, userID string) ([]WordStat, error)
}

// LLMRequestEventData captures the data for a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestRecord is a stored LLM request.
type LLMRequestRecord struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates requests by one key (purpose or model).
type LLMUsage struct {
	Key          string
	Requests     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
	Failures     int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMRequests returns requests, newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
