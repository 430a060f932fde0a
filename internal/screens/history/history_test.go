package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/vocab"
)

type fakeResults struct {
	store.ResultRepo
	byUser map[string][]session.Result
	seen   []store.ResultFilter
}

func (f *fakeResults) ListResults(_ context.Context, filter store.ResultFilter) ([]session.Result, error) {
	f.seen = append(f.seen, filter)
	var out []session.Result
	for _, r := range f.byUser[filter.UserID] {
		if filter.Grade != 0 && r.Course.Grade != filter.Grade ||
			filter.Unit != 0 && r.Course.Unit != filter.Unit ||
			filter.Station != 0 && r.Course.Station != filter.Station {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResults) ResultCourses(_ context.Context, userID string) ([]vocab.Course, error) {
	var out []vocab.Course
	for _, r := range f.byUser[userID] {
		out = append(out, r.Course)
	}
	return out, nil
}

type fakeProfiles struct {
	store.ProfileRepo
	profiles []store.Profile
}

func (f fakeProfiles) ListProfiles(context.Context) ([]store.Profile, error) {
	return f.profiles, nil
}

func testResults() *fakeResults {
	at := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	return &fakeResults{byUser: map[string][]session.Result{
		"u1": {
			{ID: "r1", UserID: "u1", UserEmail: "anna@example.com", Course: vocab.Course{Grade: 5, Unit: 1, Station: 1}, Total: 4, Correct: 3, Percent: 75, Mode: "cloze-en->de", CreatedAt: at},
			{ID: "r2", UserID: "u1", UserEmail: "anna@example.com", Course: vocab.Course{Grade: 5, Unit: 2, Station: 1}, Total: 2, Correct: 2, Percent: 100, Mode: "de2en", CreatedAt: at},
		},
		"u2": {
			{ID: "r3", UserID: "u2", UserEmail: "carl@example.com", Course: vocab.Course{Grade: 6, Unit: 1, Station: 1}, Total: 5, Correct: 1, Percent: 20, Mode: "en2de", CreatedAt: at},
		},
	}}
}

func loadScreen(t *testing.T, s *HistoryScreen, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestHistory_Learner(t *testing.T) {
	results := testResults()
	s := New(&screen.Env{
		Results: results,
		User:    session.User{ID: "u1", Email: "anna@example.com"},
	})
	loadScreen(t, s, s.Init())

	require.Len(t, s.results, 2)
	assert.Len(t, s.learners, 1)
	assert.Equal(t, resultLimit, results.seen[0].Limit)

	view := s.View(100, 24)
	assert.Contains(t, view, "Course 5/1/1")
	assert.Contains(t, view, "75%")
	assert.NotContains(t, view, "cloze-en->de")

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 24), "cloze-en->de")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Nil(t, cmd, "a learner cannot switch to others")
}

func TestHistory_AdminCyclesLearners(t *testing.T) {
	results := testResults()
	s := New(&screen.Env{
		Results: results,
		Profiles: fakeProfiles{profiles: []store.Profile{
			{ID: "u1", Email: "anna@example.com"},
			{ID: "u2", Email: "carl@example.com", FullName: "Carl"},
		}},
		User: session.User{ID: "u1", Email: "anna@example.com", Admin: true},
	})
	loadScreen(t, s, s.Init())
	require.Len(t, s.learners, 2)
	assert.Len(t, s.KeyHints(), 5)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	loadScreen(t, s, cmd)
	assert.Equal(t, 1, s.current)
	require.Len(t, s.results, 1)
	assert.Equal(t, "r3", s.results[0].ID)
	assert.Len(t, s.KeyHints(), 4, "one course leaves nothing to filter")
	assert.True(t, strings.Contains(s.View(100, 24), "Carl <carl@example.com>"))

	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	loadScreen(t, s, cmd)
	assert.Equal(t, 0, s.current)
	assert.Len(t, s.results, 2)
}

func TestHistory_Empty(t *testing.T) {
	s := New(&screen.Env{Results: &fakeResults{}, User: session.User{ID: "nobody"}})
	loadScreen(t, s, s.Init())
	assert.Contains(t, s.View(80, 24), "No quizzes yet")
}

func TestHistory_Overview(t *testing.T) {
	s := New(&screen.Env{
		Results: testResults(),
		User:    session.User{ID: "u1", Email: "anna@example.com"},
	})
	loadScreen(t, s, s.Init())

	view := s.View(100, 24)
	assert.Contains(t, view, "All courses")
	assert.Contains(t, view, "2 tests, ⌀ 88%")
}

func TestHistory_CourseFilter(t *testing.T) {
	results := testResults()
	s := New(&screen.Env{
		Results: results,
		User:    session.User{ID: "u1", Email: "anna@example.com"},
	})
	loadScreen(t, s, s.Init())
	require.Len(t, s.courses, 2)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'f', Text: "f"})
	loadScreen(t, s, cmd)
	last := results.seen[len(results.seen)-1]
	assert.Equal(t, store.ResultFilter{UserID: "u1", Grade: 5, Unit: 1, Station: 1, Limit: resultLimit}, last)
	require.Len(t, s.results, 1)
	assert.Equal(t, "r1", s.results[0].ID)
	view := s.View(100, 24)
	assert.Contains(t, view, "Course 5/1/1  ·  1 test, ⌀ 75%")

	_, cmd = s.Update(tea.KeyPressMsg{Code: 'f', Text: "f"})
	loadScreen(t, s, cmd)
	require.Len(t, s.results, 1)
	assert.Equal(t, "r2", s.results[0].ID)

	_, cmd = s.Update(tea.KeyPressMsg{Code: 'f', Text: "f"})
	loadScreen(t, s, cmd)
	last = results.seen[len(results.seen)-1]
	assert.Zero(t, last.Grade)
	assert.Len(t, s.results, 2)
	assert.Contains(t, s.View(100, 24), "All courses")
}
