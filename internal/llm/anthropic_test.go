package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func anthropicTestProvider(t *testing.T, handler http.HandlerFunc) *anthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &anthropicProvider{
		client: anthropic.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(server.URL),
			option.WithMaxRetries(0),
		),
		model: "claude-haiku-4-5-20251001",
	}
}

func anthropicError(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func TestAnthropicGenerate(t *testing.T) {
	p := anthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"cloze_de":"Das ___ ist alt.","cloze_en":"The ___ is old."}`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "Write example sentences.",
		Messages:  UserMessage("Haus / house"),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.OutputTokens != 30 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
	if resp.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("Model = %q", resp.Model)
	}
}

func TestAnthropicRateLimit(t *testing.T) {
	p := anthropicTestProvider(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error"))
	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), MaxTokens: 10})
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %T (%v), want *RateLimitError", err, err)
	}
}

func TestAnthropicServerError(t *testing.T) {
	p := anthropicTestProvider(t, anthropicError(http.StatusInternalServerError, "api_error"))
	_, err := p.Generate(context.Background(), Request{Messages: UserMessage("x"), MaxTokens: 10})
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %T (%v), want *UnavailableError", err, err)
	}
	if unavail.Provider != ProviderAnthropic {
		t.Errorf("Provider = %q", unavail.Provider)
	}
}

func TestModelAlias(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-3-opus-latest", "claude-3-opus-latest"},
	}
	for _, tt := range tests {
		if got := modelAlias(tt.in, anthropicAliases); got != tt.want {
			t.Errorf("modelAlias(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := modelAlias("gemini-flash", geminiAliases); got != "gemini-2.0-flash" {
		t.Errorf("gemini alias = %q", got)
	}
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := newAnthropicProvider(ProviderConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}
