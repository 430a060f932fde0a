package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/lernwerk/vokabel/internal/vocab"
)

var wordColumns = []string{"id", "de", "en", "grade", "unit", "station", "cloze_de", "cloze_en"}

// wordNamespace seeds content ids so that re-importing a list updates rows
// instead of duplicating them.
var wordNamespace = uuid.MustParse("6f1c2b0e-6a43-4a4e-9a57-0d0f61a3c2de")

// WordID derives the stable id of a word from its terms and course.
func WordID(w vocab.WordEntry) string {
	key := strings.Join([]string{
		strings.TrimSpace(w.Source),
		strings.TrimSpace(w.Target),
		w.Course.String(),
	}, "|")
	return uuid.NewSHA1(wordNamespace, []byte(key)).String()
}

type wordRepo struct {
	s *Store
}

func (r *wordRepo) FetchPool(ctx context.Context, c vocab.Course) ([]vocab.WordEntry, error) {
	b := r.s.builder()
	sel := b.Select(wordColumns...).
		From(b.Table(tableWords)).
		Where(entsql.And(
			entsql.EQ("grade", c.Grade),
			entsql.EQ("unit", c.Unit),
			entsql.EQ("station", c.Station),
		)).
		OrderBy("id")
	return r.queryWords(ctx, sel)
}

func (r *wordRepo) Grades(ctx context.Context) ([]int, error) {
	b := r.s.builder()
	sel := b.Select("grade").Distinct().From(b.Table(tableWords)).OrderBy("grade")
	return r.s.queryInts(ctx, sel)
}

func (r *wordRepo) Units(ctx context.Context, grade int) ([]int, error) {
	b := r.s.builder()
	sel := b.Select("unit").Distinct().
		From(b.Table(tableWords)).
		Where(entsql.EQ("grade", grade)).
		OrderBy("unit")
	return r.s.queryInts(ctx, sel)
}

func (r *wordRepo) Stations(ctx context.Context, grade, unit int) ([]int, error) {
	b := r.s.builder()
	sel := b.Select("station").Distinct().
		From(b.Table(tableWords)).
		Where(entsql.And(entsql.EQ("grade", grade), entsql.EQ("unit", unit))).
		OrderBy("station")
	return r.s.queryInts(ctx, sel)
}

// UpsertWords writes all words in one transaction. Rows without an id get
// WordID. Existing cloze templates are kept unless the incoming row has one.
func (r *wordRepo) UpsertWords(ctx context.Context, words []vocab.WordEntry) (int, error) {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	n := 0
	for _, w := range words {
		if w.ID == "" {
			w.ID = WordID(w)
		}
		ins := r.s.builder().Insert(tableWords).
			Columns(append(wordColumns, "created_at")...).
			Values(w.ID, w.Source, w.Target, w.Grade, w.Unit, w.Station, w.ClozeSource, w.ClozeTarget, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("de")
					u.SetExcluded("en")
					u.SetExcluded("grade")
					u.SetExcluded("unit")
					u.SetExcluded("station")
					if w.ClozeSource != "" {
						u.SetExcluded("cloze_de")
					}
					if w.ClozeTarget != "" {
						u.SetExcluded("cloze_en")
					}
				}),
			)
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return n, fmt.Errorf("upsert word %q: %w", w.Source, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *wordRepo) ListWords(ctx context.Context, f WordFilter) ([]vocab.WordEntry, error) {
	b := r.s.builder()
	sel := b.Select(wordColumns...).From(b.Table(tableWords))
	if f.Grade > 0 {
		sel.Where(entsql.EQ("grade", f.Grade))
	}
	if f.Unit > 0 {
		sel.Where(entsql.EQ("unit", f.Unit))
	}
	if f.Station > 0 {
		sel.Where(entsql.EQ("station", f.Station))
	}
	sel.OrderBy("grade", "unit", "station", "de")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	return r.queryWords(ctx, sel)
}

func (r *wordRepo) WordsMissingCloze(ctx context.Context, limit int) ([]vocab.WordEntry, error) {
	b := r.s.builder()
	sel := b.Select(wordColumns...).
		From(b.Table(tableWords)).
		Where(entsql.EQ("cloze_de", "")).
		OrderBy("grade", "unit", "station", "de")
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.queryWords(ctx, sel)
}

func (r *wordRepo) SetCloze(ctx context.Context, id, clozeSource, clozeTarget string) error {
	upd := r.s.builder().Update(tableWords).
		Set("cloze_de", clozeSource).
		Set("cloze_en", clozeTarget).
		Where(entsql.EQ("id", id))
	res, err := r.s.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("set cloze %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("word %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *wordRepo) queryWords(ctx context.Context, sel *entsql.Selector) ([]vocab.WordEntry, error) {
	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var words []vocab.WordEntry
	for rows.Next() {
		var w vocab.WordEntry
		if err := rows.Scan(&w.ID, &w.Source, &w.Target, &w.Grade, &w.Unit, &w.Station, &w.ClozeSource, &w.ClozeTarget); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *Store) queryInts(ctx context.Context, sel *entsql.Selector) ([]int, error) {
	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var v sql.NullInt64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			out = append(out, int(v.Int64))
		}
	}
	return out, rows.Err()
}
