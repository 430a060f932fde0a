package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func TestIssueAndParse(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	tok, err := s.Issue("p1", "anna@example.com", true)
	require.NoError(t, err)

	c, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "p1", c.Sub)
	assert.Equal(t, "anna@example.com", c.Email)
	assert.True(t, c.Admin())
}

func TestParseRejects(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	tok, err := s.Issue("p1", "anna@example.com", false)
	require.NoError(t, err)

	other := NewService("another-secret-of-length", time.Hour)
	_, err = other.Parse(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired := NewService(testSecret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue("p1", "", false)
	require.NoError(t, err)
	_, err = s.Parse(old)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = s.Parse("garbage")
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	h, err := HashPassword("geheim")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(h, "geheim"))
	assert.ErrorIs(t, CheckPassword(h, "falsch"), ErrInvalidCredentials)
	assert.ErrorIs(t, CheckPassword("", "geheim"), ErrInvalidCredentials)

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	s := NewService(testSecret, time.Hour)
	learner, _ := s.Issue("p1", "a@example.com", false)
	admin, _ := s.Issue("p2", "b@example.com", true)

	var seen string
	h := Middleware(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SubjectFromContext(r.Context())
	}))
	adminOnly := Middleware(s)(RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		query   string
		want    int
	}{
		{"no token", h, "", "", http.StatusUnauthorized},
		{"bad token", h, "Bearer nope", "", http.StatusUnauthorized},
		{"wrong scheme", h, "Basic abc", "", http.StatusUnauthorized},
		{"header", h, "Bearer " + learner, "", http.StatusOK},
		{"query", h, "", "?access_token=" + learner, http.StatusOK},
		{"admin denied", adminOnly, "Bearer " + learner, "", http.StatusForbidden},
		{"admin allowed", adminOnly, "Bearer " + admin, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, "p1", seen)
}
