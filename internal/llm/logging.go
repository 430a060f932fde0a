package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/lernwerk/vokabel/internal/store"
)

type recordingProvider struct {
	inner  Provider
	name   string
	events store.EventRepo
	log    *slog.Logger
}

// WithRecording logs every request of p and appends it to the request
// table. A nil repo only logs. Failures to record never fail the request.
func WithRecording(p Provider, name string, events store.EventRepo, log *slog.Logger) Provider {
	if log == nil {
		log = slog.Default()
	}
	return &recordingProvider{inner: p, name: name, events: events, log: log}
}

func (r *recordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *recordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:  r.name,
		Model:     r.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	attrs := []any{
		"provider", ev.Provider,
		"model", ev.Model,
		"purpose", ev.Purpose,
		"latency_ms", ev.LatencyMs,
		"input_tokens", ev.InputTokens,
		"output_tokens", ev.OutputTokens,
	}
	if err != nil {
		r.log.Warn("llm request failed", append(attrs, "error", err)...)
	} else {
		r.log.Info("llm request", attrs...)
	}

	if r.events != nil {
		// Recording uses its own context so a cancelled request is still logged.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := r.events.AppendLLMRequest(rctx, ev); rerr != nil {
			r.log.Warn("record llm request", "error", rerr)
		}
	}
	return resp, err
}
