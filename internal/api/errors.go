package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lernwerk/vokabel/internal/auth"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps domain errors to HTTP status codes and stable codes.
func statusFor(err error) (int, string) {
	var (
		insufficient *session.InsufficientDataError
		transition   *session.InvalidTransitionError
		fetch        *session.FetchError
		verrs        validator.ValidationErrors
	)
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.As(err, &transition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, session.ErrConfirmationRequired):
		return http.StatusConflict, "confirmation_required"
	case errors.Is(err, session.ErrInvalidChoice):
		return http.StatusBadRequest, "invalid_choice"
	case errors.As(err, &fetch):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &verrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

var (
	errSessionNotFound = errors.New("session not found")
	errForbidden       = errors.New("forbidden")
	errBadRequest      = errors.New("bad request")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}
