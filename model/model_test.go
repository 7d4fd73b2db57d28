package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestMockScriptedResponses(t *testing.T) {
	ctx := context.Background()
	mock := &Mock{Responses: []string{"first", "second"}}

	out, err := mock.Complete(ctx, Request{Prompt: "a"})
	if err != nil || out.Text != "first" {
		t.Fatalf("call 1: %q, %v", out.Text, err)
	}
	out, _ = mock.Complete(ctx, Request{Prompt: "b"})
	if out.Text != "second" {
		t.Fatalf("call 2: %q", out.Text)
	}
	// Last response repeats once the script runs out.
	out, _ = mock.Complete(ctx, Request{Prompt: "c"})
	if out.Text != "second" {
		t.Fatalf("call 3: %q", out.Text)
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", mock.CallCount())
	}
}

func TestMockErrAfter(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	mock := &Mock{Responses: []string{"ok"}, Err: boom, ErrAfter: 1}

	if _, err := mock.Complete(ctx, Request{}); err != nil {
		t.Fatalf("first call should succeed: %v", err)
	}
	if _, err := mock.Complete(ctx, Request{}); !errors.Is(err, boom) {
		t.Fatalf("second call should fail: %v", err)
	}
}

func TestMockRespondHook(t *testing.T) {
	ctx := context.Background()
	mock := &Mock{Respond: func(req Request) (string, error) {
		if strings.Contains(req.Prompt, "risk") {
			return "risk-reply", nil
		}
		return "other", nil
	}}

	out, _ := mock.Complete(ctx, Request{Prompt: "assess risk now"})
	if out.Text != "risk-reply" {
		t.Fatalf("hook not routed: %q", out.Text)
	}
}

func TestMockLatencyHonorsContext(t *testing.T) {
	mock := &Mock{Responses: []string{"slow"}, Latency: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := mock.Complete(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("mock did not return promptly on cancellation")
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"rate limit", errors.New("429 Too Many Requests"), "rate_limited", true},
		{"rate limit phrase", errors.New("anthropic rate_limit_error"), "rate_limited", true},
		{"auth", errors.New("401 unauthorized"), "invalid_api_key", false},
		{"quota", errors.New("insufficient_quota for account"), "quota_exceeded", false},
		{"server", errors.New("503 service unavailable"), "server_error", true},
		{"overloaded", errors.New("overloaded_error: try later"), "server_error", true},
		{"network", errors.New("connection reset by peer"), "network_error", true},
		{"unknown", errors.New("model does not exist"), "api_error", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError("test", tc.err)
			var apiErr *APIError
			if !errors.As(got, &apiErr) {
				t.Fatalf("expected APIError, got %T", got)
			}
			if apiErr.Code != tc.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tc.code)
			}
			if apiErr.Retryable() != tc.retryable {
				t.Errorf("retryable = %v, want %v", apiErr.Retryable(), tc.retryable)
			}
		})
	}
}

func TestClassifyErrorPassesThroughCancellation(t *testing.T) {
	got := ClassifyError("test", context.Canceled)
	if !errors.Is(got, context.Canceled) {
		t.Fatalf("cancellation must pass through, got %v", got)
	}
	got = ClassifyError("test", fmt.Errorf("wrap: %w", context.DeadlineExceeded))
	var apiErr *APIError
	if !errors.As(got, &apiErr) || apiErr.Code != "timeout" || !apiErr.Retryable() {
		t.Fatalf("deadline should map to retryable timeout, got %v", got)
	}
}

func TestSchemaInstructions(t *testing.T) {
	got := SchemaInstructions(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_gap_score": map[string]any{"type": "number"},
			"gap_category":      map[string]any{"type": "string"},
		},
	})
	if !strings.Contains(got, "gap_category, overall_gap_score") {
		t.Errorf("fields not listed in sorted order: %q", got)
	}
	if SchemaInstructions(nil) != "" {
		t.Errorf("nil schema should produce no instructions")
	}
}
