// Package api serves quiz sessions, courses and results over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/lernwerk/vokabel/internal/auth"
	"github.com/lernwerk/vokabel/internal/store"
)

// Options configures a Server. Repositories and Auth are required.
type Options struct {
	Words    store.WordRepo
	Results  store.ResultRepo
	Profiles store.ProfileRepo
	Stats    store.StatRepo
	Auth     *auth.Service
	Logger   *slog.Logger

	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server is the HTTP front end of the quiz engine.
type Server struct {
	words    store.WordRepo
	results  store.ResultRepo
	profiles store.ProfileRepo
	stats    store.StatRepo
	auth     *auth.Service
	log      *slog.Logger

	sessions *registry
	validate *validator.Validate
	upgrader websocket.Upgrader
	origins  []string
	timeout  time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		words:    opts.Words,
		results:  opts.Results,
		profiles: opts.Profiles,
		stats:    opts.Stats,
		auth:     opts.Auth,
		log:      opts.Logger,
		sessions: newRegistry(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		origins:  opts.AllowedOrigins,
		timeout:  opts.RequestTimeout,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.log.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.With(middleware.Timeout(s.timeout)).Post("/auth/login", s.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(s.auth))

		// Long-lived; must not inherit the request timeout.
		pr.Get("/sessions/{id}/stream", s.handleStream)

		pr.Group(func(tr chi.Router) {
			tr.Use(middleware.Timeout(s.timeout))

			tr.Get("/me", s.handleMe)

			tr.Get("/courses/grades", s.handleGrades)
			tr.Get("/courses/grades/{grade}/units", s.handleUnits)
			tr.Get("/courses/grades/{grade}/units/{unit}/stations", s.handleStations)

			tr.Post("/sessions", s.handleCreateSession)
			tr.Get("/sessions/{id}", s.handleGetSession)
			tr.Delete("/sessions/{id}", s.handleDeleteSession)
			tr.Post("/sessions/{id}/answer", s.handleAnswer)
			tr.Post("/sessions/{id}/advance", s.handleAdvance)
			tr.Post("/sessions/{id}/restart", s.handleRestart)
			tr.Post("/sessions/{id}/direction", s.handleDirection)

			tr.Get("/results", s.handleResults)

			tr.With(auth.RequireAdmin).Get("/admin/users", s.handleAdminUsers)
			tr.With(auth.RequireAdmin).Get("/admin/users/{id}/results", s.handleAdminUserResults)
		})
	})
	return r
}

// ExpireSessions drops sessions idle for longer than idle until ctx ends.
func (s *Server) ExpireSessions(ctx context.Context, idle time.Duration) {
	t := time.NewTicker(idle / 4)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.sweep(idle); n > 0 {
				s.log.Info("expired idle sessions", "count", n, "live", s.sessions.len())
			}
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
