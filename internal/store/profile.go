package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var profileColumns = []string{"id", "email", "full_name", "password_hash", "is_admin", "created_at"}

type profileRepo struct {
	s *Store
}

// CreateProfile inserts p, filling in a missing id and creation time.
// Emails are stored lower-case.
func (r *profileRepo) CreateProfile(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	ins := r.s.builder().Insert(tableProfiles).
		Columns(profileColumns...).
		Values(p.ID, p.Email, p.FullName, p.PasswordHash, boolInt(p.Admin), p.CreatedAt.UnixMilli())
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert profile %s: %w", p.Email, err)
	}
	return nil
}

func (r *profileRepo) ProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.one(ctx, entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
}

func (r *profileRepo) ProfileByID(ctx context.Context, id string) (*Profile, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

func (r *profileRepo) ListProfiles(ctx context.Context) ([]Profile, error) {
	b := r.s.builder()
	sel := b.Select(profileColumns...).From(b.Table(tableProfiles)).OrderBy("email")
	return r.list(ctx, sel)
}

func (r *profileRepo) SetAdmin(ctx context.Context, id string, admin bool) error {
	return r.update(ctx, id, "is_admin", boolInt(admin))
}

func (r *profileRepo) SetPassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, "password_hash", hash)
}

func (r *profileRepo) update(ctx context.Context, id, column string, value any) error {
	upd := r.s.builder().Update(tableProfiles).Set(column, value).Where(entsql.EQ("id", id))
	res, err := r.s.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *profileRepo) one(ctx context.Context, p *entsql.Predicate) (*Profile, error) {
	b := r.s.builder()
	sel := b.Select(profileColumns...).From(b.Table(tableProfiles)).Where(p).Limit(1)
	profiles, err := r.list(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

func (r *profileRepo) list(ctx context.Context, sel *entsql.Selector) ([]Profile, error) {
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var (
			p       Profile
			admin   int
			created int64
		)
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &admin, &created); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Admin = admin != 0
		p.CreatedAt = time.UnixMilli(created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// IsNotFound reports whether err wraps ErrNotFound or sql.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
