package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernwerk/vokabel/internal/auth"
	"github.com/lernwerk/vokabel/internal/logging"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/vocab"
)

type testEnv struct {
	srv     *Server
	handler http.Handler
	st      *store.Store
	learner string // token
	admin   string // token
	other   string // token
	adminID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.OpenSQLite(ctx, "file:api_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.WordRepo().UpsertWords(ctx, []vocab.WordEntry{
		{Source: "Haus", Target: "house", Course: vocab.Course{Grade: 5, Unit: 1, Station: 1}},
		{Source: "Baum", Target: "tree", Course: vocab.Course{Grade: 5, Unit: 2, Station: 1}},
		{Source: "Hund", Target: "dog", Course: vocab.Course{Grade: 5, Unit: 2, Station: 1}},
		{Source: "Katze", Target: "cat", Course: vocab.Course{Grade: 5, Unit: 2, Station: 1}},
		{Source: "Maus", Target: "mouse", Course: vocab.Course{Grade: 5, Unit: 2, Station: 1}},
	})
	require.NoError(t, err)

	hash, err := auth.HashPassword("geheim")
	require.NoError(t, err)
	profiles := st.ProfileRepo()
	anna := &store.Profile{Email: "anna@example.com", FullName: "Anna", PasswordHash: hash}
	boss := &store.Profile{Email: "boss@example.com", PasswordHash: hash, Admin: true}
	carl := &store.Profile{Email: "carl@example.com", PasswordHash: hash}
	for _, p := range []*store.Profile{anna, boss, carl} {
		require.NoError(t, profiles.CreateProfile(ctx, p))
	}

	authSvc := auth.NewService("0123456789abcdef-test", time.Hour)
	srv := NewServer(Options{
		Words:    st.WordRepo(),
		Results:  st.ResultRepo(),
		Profiles: profiles,
		Stats:    st.StatRepo(),
		Auth:     authSvc,
		Logger:   logging.Discard(),
	})

	env := &testEnv{srv: srv, handler: srv.Handler(), st: st, adminID: boss.ID}
	env.learner, _ = authSvc.Issue(anna.ID, anna.Email, false)
	env.admin, _ = authSvc.Issue(boss.ID, boss.Email, true)
	env.other, _ = authSvc.Issue(carl.ID, carl.Email, false)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createSession(t *testing.T, token string, body map[string]any) session.Snapshot {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/sessions", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[session.Snapshot](t, rec)
}

var oneWord = map[string]any{"grade": 5, "unit": 1, "station": 1}

func TestHealthAndAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/courses/grades", "", nil).Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "Anna@example.com", "password": "geheim"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[loginResponse](t, rec)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "anna@example.com", resp.User.Email)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	me := env.do(t, http.MethodGet, "/me", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, me.Code)

	bad := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "anna@example.com", "password": "nein"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	unknown := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@example.com", "password": "nein"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	invalid := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestCourses(t *testing.T) {
	env := newTestEnv(t)

	grades := decodeBody[map[string][]int](t, env.do(t, http.MethodGet, "/courses/grades", env.learner, nil))
	assert.Equal(t, []int{5}, grades["grades"])

	units := decodeBody[map[string][]int](t, env.do(t, http.MethodGet, "/courses/grades/5/units", env.learner, nil))
	assert.Equal(t, []int{1, 2}, units["units"])

	stations := decodeBody[map[string][]int](t, env.do(t, http.MethodGet, "/courses/grades/5/units/2/stations", env.learner, nil))
	assert.Equal(t, []int{1}, stations["stations"])

	empty := decodeBody[map[string][]int](t, env.do(t, http.MethodGet, "/courses/grades/9/units", env.learner, nil))
	assert.Equal(t, []int{}, empty["units"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/courses/grades/x/units", env.learner, nil).Code)
}

func TestSessionFlow(t *testing.T) {
	env := newTestEnv(t)

	snap := env.createSession(t, env.learner, oneWord)
	assert.Equal(t, session.PhaseUnlocked, snap.Phase)
	assert.Equal(t, "Setze das **deutsche** Wort für **house** ein: ___", snap.Prompt)
	assert.True(t, snap.CanChangeDirection)
	path := "/sessions/" + snap.SessionID

	// Advance before answering is not allowed.
	rec := env.do(t, http.MethodPost, path+"/advance", env.learner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decodeBody[errorBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": " haus! "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ans := decodeBody[answerResponse](t, rec)
	assert.True(t, ans.Attempt.Correct)
	assert.Equal(t, "1 / 1", ans.Snapshot.Progress)

	// A second answer on a locked question is rejected.
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": "x"}).Code)

	rec = env.do(t, http.MethodPost, path+"/advance", env.learner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	final := decodeBody[session.Snapshot](t, rec)
	assert.Equal(t, 100, final.Percent)
	assert.True(t, final.ResultPersisted)

	results := decodeBody[map[string][]session.Result](t, env.do(t, http.MethodGet, "/results", env.learner, nil))
	require.Len(t, results["results"], 1)
	assert.Equal(t, "cloze-en->de", results["results"][0].Mode)
	assert.Equal(t, 100, results["results"][0].Percent)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, env.learner, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, env.learner, nil).Code)
}

func TestCreateSessionErrors(t *testing.T) {
	env := newTestEnv(t)

	choice := map[string]any{"grade": 5, "unit": 1, "station": 1, "mode": "choice"}
	rec := env.do(t, http.MethodPost, "/sessions", env.learner, choice)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "insufficient_data", decodeBody[errorBody](t, rec).Code)

	empty := map[string]any{"grade": 7, "unit": 1, "station": 1}
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/sessions", env.learner, empty).Code)

	badDir := map[string]any{"grade": 5, "unit": 1, "station": 1, "direction": "fr->de"}
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/sessions", env.learner, badDir).Code)

	unknownField := map[string]any{"grade": 5, "unit": 1, "station": 1, "speed": 3}
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/sessions", env.learner, unknownField).Code)

	nested := map[string]any{"course": map[string]int{"grade": 5, "unit": 1, "station": 1}}
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/sessions", env.learner, nested).Code)

	gradeZero := map[string]any{"grade": 0, "unit": 1, "station": 1}
	rec = env.do(t, http.MethodPost, "/sessions", env.learner, gradeZero)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestCreateSessionFlatBody(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/sessions", env.learner, json.RawMessage(
		`{"grade":5,"unit":1,"station":1,"mode":"cloze","direction":"en->de"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decodeBody[session.Snapshot](t, rec)
	assert.Equal(t, vocab.Course{Grade: 5, Unit: 1, Station: 1}, snap.Course)
	assert.Equal(t, 1, snap.Total)
}

func TestMultipleChoiceSession(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"grade": 5, "unit": 2, "station": 1, "mode": "choice", "direction": "de->en"}
	snap := env.createSession(t, env.learner, body)
	require.Len(t, snap.Options, 4)
	path := "/sessions/" + snap.SessionID

	rec := env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": "9"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_choice", decodeBody[errorBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	ans := decodeBody[answerResponse](t, rec)
	assert.Equal(t, snap.Options[0], ans.Attempt.Answer)
}

func TestDirectionChange(t *testing.T) {
	env := newTestEnv(t)
	snap := env.createSession(t, env.learner, oneWord)
	path := "/sessions/" + snap.SessionID

	// Free before the first answer.
	rec := env.do(t, http.MethodPost, path+"/direction", env.learner, map[string]any{"direction": "de->en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody[session.Snapshot](t, rec).Prompt, "**Haus**")

	env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": "tree"})

	rec = env.do(t, http.MethodPost, path+"/direction", env.learner, map[string]any{"direction": "en->de"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "confirmation_required", decodeBody[errorBody](t, rec).Code)

	rec = env.do(t, http.MethodPost, path+"/direction", env.learner, map[string]any{"direction": "en->de", "confirm": true})
	require.Equal(t, http.StatusOK, rec.Code)
	restarted := decodeBody[session.Snapshot](t, rec)
	assert.Empty(t, restarted.Attempts)
	assert.Equal(t, session.PhaseUnlocked, restarted.Phase)
}

func TestSessionOwnership(t *testing.T) {
	env := newTestEnv(t)
	snap := env.createSession(t, env.learner, oneWord)
	path := "/sessions/" + snap.SessionID

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path, env.other, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, env.other, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, env.admin, nil).Code)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/admin/users", env.learner, nil).Code)

	rec := env.do(t, http.MethodGet, "/admin/users", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody[map[string][]store.Profile](t, rec)
	assert.Len(t, users["users"], 3)

	// Finish a session as the learner, then read it back as admin.
	snap := env.createSession(t, env.learner, oneWord)
	path := "/sessions/" + snap.SessionID
	env.do(t, http.MethodPost, path+"/answer", env.learner, map[string]string{"answer": "falsch"})
	env.do(t, http.MethodPost, path+"/advance", env.learner, nil)

	var annaID string
	for _, u := range users["users"] {
		if u.Email == "anna@example.com" {
			annaID = u.ID
		}
	}
	rec = env.do(t, http.MethodGet, "/admin/users/"+annaID+"/results?grade=5", env.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody[map[string][]session.Result](t, rec)
	require.Len(t, results["results"], 1)
	assert.Equal(t, 0, results["results"][0].Percent)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/admin/users/nobody/results", env.admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/results?limit=-1", env.learner, nil).Code)
}

func TestStream(t *testing.T) {
	env := newTestEnv(t)
	snap := env.createSession(t, env.learner, oneWord)

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/" + snap.SessionID + "/stream"
	header := http.Header{"Authorization": []string{"Bearer " + env.learner}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev streamEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "snapshot", ev.Type)
	require.NotNil(t, ev.Session)
	assert.Equal(t, session.PhaseUnlocked, ev.Session.Phase)

	require.NoError(t, conn.WriteJSON(streamCommand{Op: "answer", Answer: "Haus"}))

	var sawAttempt, sawLocked bool
	for !(sawAttempt && sawLocked) {
		var next streamEvent
		require.NoError(t, conn.ReadJSON(&next))
		switch next.Type {
		case "attempt":
			sawAttempt = next.Attempt.Correct
		case "snapshot":
			sawLocked = sawLocked || next.Session.Phase == session.PhaseLocked
		}
	}

	require.NoError(t, conn.WriteJSON(streamCommand{Op: "jump"}))
	for {
		var next streamEvent
		require.NoError(t, conn.ReadJSON(&next))
		if next.Type == "error" {
			assert.Equal(t, "bad_request", next.Code)
			break
		}
	}
}

func TestStreamRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	snap := env.createSession(t, env.learner, oneWord)

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/sessions/" + snap.SessionID + "/stream?access_token=" + env.other
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegistrySweep(t *testing.T) {
	r := newRegistry()
	now := time.Now()
	r.now = func() time.Time { return now }

	s1 := session.New(session.Config{}, session.Deps{Logger: logging.Discard()})
	s2 := session.New(session.Config{}, session.Deps{Logger: logging.Discard()})
	r.add(s1, "a")
	now = now.Add(10 * time.Minute)
	r.add(s2, "b")

	assert.Equal(t, 1, r.sweep(5*time.Minute))
	_, ok := r.get(s1.ID())
	assert.False(t, ok)
	_, ok = r.get(s2.ID())
	assert.True(t, ok)
}
