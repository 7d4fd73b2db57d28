// Package search abstracts the web-search collaborator the market scout
// stage uses for salary and demand data. The HTTP client targets
// Tavily-style search APIs; tests use Mock.
package search

import (
	"context"
	"fmt"
)

// Document is one search result.
type Document struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score,omitempty"`
}

// Client is the search collaborator. An empty result slice with a nil
// error is a legitimate outcome; callers decide how to degrade.
// Implementations must be safe for concurrent use.
type Client interface {
	Search(ctx context.Context, query string) ([]Document, error)
}

// APIError is a search transport failure. Rate limits and server errors
// are retryable through the workflow retry policy's Retryable convention.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search: status %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request is worth repeating.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
