package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetrySucceedsFirstTime(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	resp, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Errorf("content = %s", resp.Content)
	}
	if n := len(mock.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &UnavailableError{Err: errors.New("down")}},
		MockResponse{Err: &RateLimitError{Err: errors.New("429")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	if _, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := len(mock.Calls()); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestRetryGivesUp(t *testing.T) {
	down := &UnavailableError{Err: errors.New("down")}
	mock := NewMockProvider(MockResponse{Err: down}, MockResponse{Err: down}, MockResponse{Err: down}, MockResponse{Err: down})
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	if !errors.Is(err, down) {
		t.Errorf("err = %v, want %v", err, down)
	}
	if n := len(mock.Calls()); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestRetryNotForTruncation(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &TruncatedError{}}, MockResponse{Content: json.RawMessage(`{}`)})
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	var trunc *TruncatedError
	if !errors.As(err, &trunc) {
		t.Errorf("err = %v, want *TruncatedError", err)
	}
	if n := len(mock.Calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestRetryInvalidResponseOnce(t *testing.T) {
	bad := &InvalidResponseError{Err: errors.New("bad json")}
	mock := NewMockProvider(MockResponse{Err: bad}, MockResponse{Err: bad}, MockResponse{Content: json.RawMessage(`{}`)})
	_, err := WithRetry(mock, fastRetry(), nil).Generate(context.Background(), Request{})
	if !errors.Is(err, bad) {
		t.Errorf("err = %v, want invalid response", err)
	}
	if n := len(mock.Calls()); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialWait = time.Minute
	cfg.MaxWait = time.Minute
	mock := NewMockProvider(MockResponse{Err: &UnavailableError{}}, MockResponse{Content: json.RawMessage(`{}`)})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := WithRetry(mock, cfg, nil).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	r := &retryProvider{cfg: RetryConfig{InitialWait: time.Second, MaxWait: time.Second, Multiplier: 2}}
	got := r.wait(0, &RateLimitError{RetryAfter: 7 * time.Millisecond})
	if got != 7*time.Millisecond {
		t.Errorf("wait = %v, want 7ms", got)
	}

	got = r.wait(5, errors.New("x"))
	if got < 800*time.Millisecond || got > 1200*time.Millisecond {
		t.Errorf("wait = %v, want MaxWait with jitter", got)
	}
}
