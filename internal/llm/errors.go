package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// RateLimitError is returned when the provider answered 429.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// InvalidResponseError is returned when the content is not JSON or does not
// match the requested schema.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// UnavailableError wraps transport failures and 5xx answers.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	name := e.Provider
	if name == "" {
		name = "LLM provider"
	}
	if e.Err == nil {
		return name + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", name, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TruncatedError is returned when the output hit the MaxTokens limit.
type TruncatedError struct {
	Content json.RawMessage
}

func (e *TruncatedError) Error() string {
	return "LLM response truncated at max tokens"
}

// classifyStatus maps an HTTP status from a provider API error.
func classifyStatus(provider string, status int, err error) error {
	if status == 429 {
		return &RateLimitError{Err: err}
	}
	return &UnavailableError{Provider: provider, Err: err}
}
