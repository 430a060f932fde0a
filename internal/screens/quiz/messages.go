package quiz

import (
	sess "github.com/lernwerk/vokabel/internal/session"
)

// sessionLoadedMsg is sent when the word pool has been fetched and the
// session is ready, or failed to start.
type sessionLoadedMsg struct {
	Session *sess.Session
	Err     error
}
