package api

import (
	"sync"
	"time"

	"github.com/lernwerk/vokabel/internal/session"
)

// liveSession guards one session. Every transition runs under mu, which
// gives each session the single owner it requires.
type liveSession struct {
	mu      sync.Mutex
	s       *session.Session
	owner   string
	touched time.Time
}

// registry holds the sessions of all connected learners in memory.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	now      func() time.Time
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*liveSession), now: time.Now}
}

func (r *registry) add(s *session.Session, owner string) *liveSession {
	ls := &liveSession{s: s, owner: owner, touched: r.now()}
	r.mu.Lock()
	r.sessions[s.ID()] = ls
	r.mu.Unlock()
	return ls
}

func (r *registry) get(id string) (*liveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ls, ok := r.sessions[id]
	if ok {
		ls.touched = r.now()
	}
	return ls, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep drops sessions untouched for longer than idle and returns how many
// were removed.
func (r *registry) sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ls := range r.sessions {
		if ls.touched.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *registry) touch(ls *liveSession) {
	r.mu.Lock()
	ls.touched = r.now()
	r.mu.Unlock()
}
