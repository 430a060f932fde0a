package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type statRepo struct {
	s *Store
}

func (r *statRepo) RecordAttempt(ctx context.Context, userID, wordID string, correct bool) error {
	ok := boolInt(correct)
	ins := r.s.builder().Insert(tableWordStats).
		Columns("word_id", "user_id", "attempts", "correct", "last_seen_at").
		Values(wordID, userID, 1, ok, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("word_id", "user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("attempts", 1)
				u.Add("correct", ok)
				u.SetExcluded("last_seen_at")
			}),
		)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("record attempt %s/%s: %w", userID, wordID, err)
	}
	return nil
}

func (r *statRepo) WordStats(ctx context.Context, userID string) ([]WordStat, error) {
	b := r.s.builder()
	sel := b.Select("word_id", "user_id", "attempts", "correct", "last_seen_at").
		From(b.Table(tableWordStats)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("last_seen_at"), "word_id")

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query word stats: %w", err)
	}
	defer rows.Close()

	var out []WordStat
	for rows.Next() {
		var (
			st   WordStat
			seen int64
		)
		if err := rows.Scan(&st.WordID, &st.UserID, &st.Attempts, &st.Correct, &seen); err != nil {
			return nil, fmt.Errorf("scan word stat: %w", err)
		}
		st.LastSeenAt = time.UnixMilli(seen)
		out = append(out, st)
	}
	return out, rows.Err()
}
