package screen

import (
	"log/slog"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/vocab"
)

// Env carries the collaborators and defaults shared by all screens.
type Env struct {
	Words    store.WordRepo
	Results  store.ResultRepo
	Profiles store.ProfileRepo
	Stats    store.StatRepo
	Logger   *slog.Logger

	// User is the learner signed in for this run. Users resolves it for
	// sessions.
	User  session.User
	Users session.UserLookup

	// Mode and Direction preselect the quiz options.
	Mode      session.Mode
	Direction vocab.Direction
}

// SessionDeps returns the collaborators of a quiz session.
func (e *Env) SessionDeps() session.Deps {
	return session.Deps{
		Loader:   e.Words,
		Recorder: e.Results,
		Users:    e.Users,
		Stats:    e.Stats,
		Logger:   e.Logger,
	}
}
