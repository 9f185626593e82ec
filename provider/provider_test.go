package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &UpstreamError{StatusCode: 429, Err: errors.New("slow down")}, true},
		{"server error", &UpstreamError{StatusCode: 503, Err: errors.New("unavailable")}, true},
		{"transport", &UpstreamError{Err: errors.New("connection reset")}, true},
		{"bad request", &UpstreamError{StatusCode: 400, Err: errors.New("bad input")}, false},
		{"wrapped", fmt.Errorf("embed: %w", &UpstreamError{StatusCode: 500, Err: errors.New("boom")}), true},
		{"canceled", fmt.Errorf("x: %w", context.Canceled), false},
		{"plain", errors.New("other"), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: IsRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	up := &UpstreamError{StatusCode: 401, Err: errors.New("invalid key")}
	err := fmt.Errorf("ask: %w", &EmbeddingError{Model: "text-embedding-3-small", Err: up})

	var ee *EmbeddingError
	if !errors.As(err, &ee) || ee.Model != "text-embedding-3-small" {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	var got *UpstreamError
	if !errors.As(err, &got) || got.StatusCode != 401 {
		t.Fatalf("expected upstream error through the chain, got %v", err)
	}

	ce := &CompletionError{Model: "gpt-4o-mini", Err: ErrEmptyCompletion}
	if !errors.Is(ce, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion to unwrap")
	}
}
