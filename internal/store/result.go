package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/vocab"
)

var resultColumns = []string{
	"id", "user_id", "user_email", "grade", "unit", "station",
	"total", "correct", "percent", "mode", "created_at",
}

type resultRepo struct {
	s *Store
}

func (r *resultRepo) RecordSession(ctx context.Context, res session.Result) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}

	ins := r.s.builder().Insert(tableResults).
		Columns(resultColumns...).
		Values(
			res.ID, res.UserID, res.UserEmail,
			res.Course.Grade, res.Course.Unit, res.Course.Station,
			res.Total, res.Correct, res.Percent, res.Mode,
			res.CreatedAt.UnixMilli(),
		)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *resultRepo) ListResults(ctx context.Context, f ResultFilter) ([]session.Result, error) {
	b := r.s.builder()
	sel := b.Select(resultColumns...).From(b.Table(tableResults))
	if f.UserID != "" {
		sel.Where(entsql.EQ("user_id", f.UserID))
	}
	if f.Grade > 0 {
		sel.Where(entsql.EQ("grade", f.Grade))
	}
	if f.Unit > 0 {
		sel.Where(entsql.EQ("unit", f.Unit))
	}
	if f.Station > 0 {
		sel.Where(entsql.EQ("station", f.Station))
	}
	sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []session.Result
	for rows.Next() {
		var (
			res     session.Result
			created int64
		)
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.UserEmail,
			&res.Course.Grade, &res.Course.Unit, &res.Course.Station,
			&res.Total, &res.Correct, &res.Percent, &res.Mode, &created,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.CreatedAt = time.UnixMilli(created)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *resultRepo) ResultCourses(ctx context.Context, userID string) ([]vocab.Course, error) {
	b := r.s.builder()
	sel := b.Select("grade", "unit", "station").Distinct().
		From(b.Table(tableResults)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("grade", "unit", "station")

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query result courses: %w", err)
	}
	defer rows.Close()

	var out []vocab.Course
	for rows.Next() {
		var c vocab.Course
		if err := rows.Scan(&c.Grade, &c.Unit, &c.Station); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
