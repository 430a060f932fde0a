package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lernwerk/vokabel/internal/store"
)

// New builds the configured provider wrapped as
// caller -> retry -> recording -> provider, so each attempt is recorded.
func New(ctx context.Context, cfg Config, events store.EventRepo, log *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = newAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = newOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = newGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	p := WithRetry(WithRecording(base, cfg.Provider, events, log), cfg.Retry, log)
	if cfg.Timeout > 0 {
		p = &timeoutProvider{inner: p, timeout: cfg.Timeout}
	}
	return p, nil
}

// timeoutProvider bounds each Generate call, retries included.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}
