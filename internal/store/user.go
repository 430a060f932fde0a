package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lernwerk/vokabel/internal/session"
)

// LocalUser resolves the learner of a terminal session from a configured
// email. The profile is created on first use.
type LocalUser struct {
	Profiles ProfileRepo
	Email    string
	Name     string
}

func (u *LocalUser) CurrentUser(ctx context.Context) (session.User, error) {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return session.User{}, nil
	}

	p, err := u.Profiles.ProfileByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		p = &Profile{Email: email, FullName: u.Name}
		if err := u.Profiles.CreateProfile(ctx, p); err != nil {
			return session.User{}, fmt.Errorf("create local profile: %w", err)
		}
	} else if err != nil {
		return session.User{}, err
	}
	return p.User(), nil
}
