// Package model abstracts LLM completion behind a small interface so the
// pipeline stages stay provider-agnostic. Concrete providers live in the
// anthropic, openai and google subpackages; tests use Mock.
package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Request describes one completion call. Stages request JSON output shaped
// by Schema; providers with native JSON modes enforce it at the API level,
// others get the schema appended to the prompt as formatting instructions.
type Request struct {
	// System is the system prompt, may be empty.
	System string

	// Prompt is the user message.
	Prompt string

	// Schema is a JSON-schema-shaped description of the expected output
	// object. Nil means free-form text.
	Schema map[string]any

	// Temperature, zero means provider default.
	Temperature float64

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int
}

// Response is a completed request.
type Response struct {
	// Text is the raw completion text.
	Text string

	// TokensUsed is input plus output tokens, zero when the provider
	// does not report usage.
	TokensUsed int
}

// Completer is the completion collaborator stages depend on.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// APIError is a provider failure normalized to a common shape. Retry
// carries the transient/permanent distinction the workflow retry policy
// consults through the Retryable method.
type APIError struct {
	Provider string
	Code     string
	Message  string
	Retry    bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

// Retryable reports whether the call is worth repeating.
func (e *APIError) Retryable() bool { return e.Retry }

// ClassifyError maps raw SDK errors onto APIError. Provider SDKs do not
// expose stable error types across versions, so classification matches on
// status codes and well-known phrases in the error text:
//
//   - rate limits and 429 -> retryable
//   - 5xx and overload -> retryable
//   - network trouble and timeouts -> retryable
//   - authentication and quota problems -> permanent
//
// Context cancellation passes through untouched so the executor sees it.
func ClassifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Provider: provider, Code: "timeout", Message: "request timed out", Retry: true}
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "429") ||
		strings.Contains(lower, "too many requests"):
		return &APIError{Provider: provider, Code: "rate_limited", Message: "rate limit exceeded", Retry: true}

	case strings.Contains(lower, "invalid api key") ||
		strings.Contains(lower, "incorrect api key") ||
		strings.Contains(lower, "401") ||
		strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "permission"):
		return &APIError{Provider: provider, Code: "invalid_api_key", Message: "authentication failed", Retry: false}

	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "billing") ||
		strings.Contains(lower, "insufficient_quota"):
		return &APIError{Provider: provider, Code: "quota_exceeded", Message: "account quota exceeded", Retry: false}

	case strings.Contains(lower, "500") ||
		strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "504") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "bad gateway") ||
		strings.Contains(lower, "service unavailable") ||
		strings.Contains(lower, "gateway timeout"):
		return &APIError{Provider: provider, Code: "server_error", Message: fmt.Sprintf("server error: %v", err), Retry: true}

	case strings.Contains(lower, "connection") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "network"):
		return &APIError{Provider: provider, Code: "network_error", Message: fmt.Sprintf("network error: %v", err), Retry: true}
	}

	return &APIError{Provider: provider, Code: "api_error", Message: err.Error(), Retry: false}
}

// SchemaInstructions renders a schema as prompt text for providers without
// a native structured-output mode.
func SchemaInstructions(schema map[string]any) string {
	if schema == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nRespond ONLY with a valid JSON object matching this structure")
	if props, ok := schema["properties"].(map[string]any); ok {
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString(" with fields: ")
		sb.WriteString(strings.Join(names, ", "))
	}
	sb.WriteString(". No markdown, no explanation, just the JSON object.")
	return sb.String()
}
