package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmColumns = []string{
	"id", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "created_at",
}

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	ins := r.s.builder().Insert(tableLLMRequests).
		Columns(llmColumns[1:]...).
		Values(
			data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs,
			boolInt(data.Success), data.ErrorMessage, time.Now().UnixMilli(),
		)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error) {
	b := r.s.builder()
	sel := b.Select(llmColumns...).From(b.Table(tableLLMRequests))
	if opts.After > 0 {
		sel.Where(entsql.GT("id", opts.After))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	sel.OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := r.s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestRecord
	for rows.Next() {
		var (
			rec     LLMRequestRecord
			success int
			created int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Provider, &rec.Model, &rec.Purpose,
			&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs,
			&success, &rec.ErrorMessage, &created,
		); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		rec.Success = success != 0
		rec.Timestamp = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LLMUsageByPurpose folds the request log in memory; the table stays small
// for a single installation.
func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	recs, err := r.QueryLLMRequests(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	idx := map[string]int{}
	var out []LLMUsage
	latency := map[string]int64{}
	for _, rec := range recs {
		i, ok := idx[rec.Purpose]
		if !ok {
			i = len(out)
			idx[rec.Purpose] = i
			out = append(out, LLMUsage{Key: rec.Purpose})
		}
		u := &out[i]
		u.Requests++
		u.InputTokens += rec.InputTokens
		u.OutputTokens += rec.OutputTokens
		if !rec.Success {
			u.Failures++
		}
		latency[rec.Purpose] += rec.LatencyMs
	}
	for i := range out {
		out[i].AvgLatencyMs = latency[out[i].Key] / int64(out[i].Requests)
	}
	return out, nil
}
