package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lernwerk/vokabel/internal/auth"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/vocab"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.len()})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        store.Profile `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.profiles.ProfileByEmail(r.Context(), req.Email)
	if store.IsNotFound(err) {
		s.writeError(w, r, auth.ErrInvalidCredentials)
		return
	} else if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := auth.CheckPassword(p.PasswordHash, req.Password); err != nil {
		s.log.Info("login rejected", "email", req.Email)
		s.writeError(w, r, err)
		return
	}
	tok, err := s.auth.Issue(p.ID, p.Email, p.Admin)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("issue token: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: tok, TokenType: "Bearer", User: *p})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.ProfileByID(r.Context(), auth.SubjectFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := s.words.Grades(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"grades": nonNil(grades)})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	grade, err := pathInt(r, "grade")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	units, err := s.words.Units(r.Context(), grade)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"units": nonNil(units)})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	grade, err := pathInt(r, "grade")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	unit, err := pathInt(r, "unit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stations, err := s.words.Stations(r.Context(), grade, unit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"stations": nonNil(stations)})
}

// createSessionRequest is the flat body
// {"grade", "unit", "station", "mode", "direction"}.
type createSessionRequest struct {
	vocab.Course
	Mode      string `json:"mode" validate:"omitempty,oneof=cloze choice"`
	Direction string `json:"direction"`
}

// profileUser resolves the session owner from the token subject.
type profileUser struct {
	profiles store.ProfileRepo
	id       string
}

func (u profileUser) CurrentUser(ctx context.Context) (session.User, error) {
	p, err := u.profiles.ProfileByID(ctx, u.id)
	if err != nil {
		return session.User{}, err
	}
	return p.User(), nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	dir, err := vocab.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	owner := auth.SubjectFromContext(r.Context())
	sess := session.New(session.Config{Course: req.Course, Mode: mode, Direction: dir}, session.Deps{
		Loader:   s.words,
		Recorder: s.results,
		Users:    profileUser{profiles: s.profiles, id: owner},
		Stats:    s.stats,
		Logger:   s.log,
	})
	if err := sess.Load(context.WithoutCancel(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sessions.add(sess, owner)
	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// withSession runs fn on the session named in the path while holding its
// lock, then responds with fn's value or the session snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sess *session.Session) (any, error)) {
	ls, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	out, err := fn(context.WithoutCancel(r.Context()), ls.s)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if out == nil {
		out = ls.s.Snapshot()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(r *http.Request) (*liveSession, error) {
	ls, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		return nil, errSessionNotFound
	}
	c := auth.ClaimsFromContext(r.Context())
	if c == nil || (c.Sub != ls.owner && !c.Admin()) {
		return nil, errForbidden
	}
	return ls, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(context.Context, *session.Session) (any, error) { return nil, nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.lookup(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sessions.remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Attempt  session.Attempt  `json:"attempt"`
	Snapshot session.Snapshot `json:"session"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (any, error) {
		a, err := sess.SubmitAnswer(ctx, req.Answer)
		if err != nil {
			return nil, err
		}
		return answerResponse{Attempt: a, Snapshot: sess.Snapshot()}, nil
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (any, error) {
		return nil, sess.Advance(ctx)
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (any, error) {
		return nil, sess.Restart(ctx)
	})
}

type directionRequest struct {
	Direction string `json:"direction" validate:"required"`
	Confirm   bool   `json:"confirm"`
}

func (s *Server) handleDirection(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir, err := vocab.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session) (any, error) {
		return nil, sess.ChangeDirection(ctx, dir, req.Confirm)
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	f, err := resultFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.UserID = auth.SubjectFromContext(r.Context())
	s.writeResults(w, r, f)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.ListProfiles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]store.Profile{"users": nonNil(profiles)})
}

func (s *Server) handleAdminUserResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.profiles.ProfileByID(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := resultFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.UserID = id
	s.writeResults(w, r, f)
}

func (s *Server) writeResults(w http.ResponseWriter, r *http.Request, f store.ResultFilter) {
	results, err := s.results.ListResults(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]session.Result{"results": nonNil(results)})
}

func resultFilter(r *http.Request) (store.ResultFilter, error) {
	var f store.ResultFilter
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"grade", &f.Grade}, {"unit", &f.Unit}, {"station", &f.Station}, {"limit", &f.Limit}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return f, fmt.Errorf("%w: %s must be a non-negative number", errBadRequest, p.name)
			}
			*p.dst = n
		}
	}
	return f, nil
}

func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return s.validate.Struct(v)
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
