// Package clozegen fills in missing cloze sentences of the word bank with
// an LLM.
package clozegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lernwerk/vokabel/internal/llm"
	"github.com/lernwerk/vokabel/internal/vocab"
)

// purpose tags the LLM requests of this package in the request log.
const purpose = "cloze-gen"

// Cloze is a generated pair of sentences for one word.
type Cloze struct {
	Source string `json:"cloze_de"`
	Target string `json:"cloze_en"`
}

// Generator produces cloze sentences with an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Generator{provider: provider, config: cfg}
}

// Generate asks the provider for a cloze pair for w. A retryable
// validation failure is fed back into the next attempt.
func (g *Generator) Generate(ctx context.Context, w vocab.WordEntry) (*Cloze, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	var feedback string
	var lastErr error
	for range g.config.Attempts {
		c, err := g.generateOnce(ctx, w, feedback)
		if err == nil {
			return c, nil
		}
		lastErr = err
		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		feedback = verr.Message
	}
	return nil, lastErr
}

func (g *Generator) generateOnce(ctx context.Context, w vocab.WordEntry, feedback string) (*Cloze, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(w, feedback)),
		Schema:      ClozeSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var c Cloze
	if err := json.Unmarshal(resp.Content, &c); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	for _, v := range g.config.Validators {
		if verr := v.Validate(&c, w); verr != nil {
			return nil, verr
		}
	}
	return &c, nil
}

// Store is the part of the word bank the backfill needs.
type Store interface {
	WordsMissingCloze(ctx context.Context, limit int) ([]vocab.WordEntry, error)
	SetCloze(ctx context.Context, id, clozeSource, clozeTarget string) error
}

// Report summarizes a backfill run.
type Report struct {
	Generated int
	Failed    int
}

// Backfill generates cloze sentences for up to limit words that have
// none. Words whose generation fails are logged and skipped. The run stops
// early when the provider is unavailable or ctx is done.
func (g *Generator) Backfill(ctx context.Context, words Store, limit int, log *slog.Logger) (Report, error) {
	var rep Report
	pending, err := words.WordsMissingCloze(ctx, limit)
	if err != nil {
		return rep, fmt.Errorf("list words without cloze: %w", err)
	}
	for _, w := range pending {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		c, err := g.Generate(ctx, w)
		if err != nil {
			var unavailable *llm.UnavailableError
			if errors.As(err, &unavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return rep, err
			}
			rep.Failed++
			log.Warn("cloze generation failed", "word_id", w.ID, "de", w.Source, "error", err)
			continue
		}
		if err := words.SetCloze(ctx, w.ID, c.Source, c.Target); err != nil {
			return rep, fmt.Errorf("store cloze for %s: %w", w.ID, err)
		}
		rep.Generated++
		log.Debug("cloze generated", "word_id", w.ID, "de", w.Source)
	}
	log.Info("cloze backfill complete", "generated", rep.Generated, "failed", rep.Failed)
	return rep, nil
}
