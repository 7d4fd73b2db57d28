package search

import (
	"context"
	"strings"
	"sync"
)

// Mock is a scripted search client for tests and examples. Results are
// matched by substring of the query; the Default slice answers anything
// unmatched. Err, when set, fails every call.
type Mock struct {
	// Results maps a query substring to canned documents.
	Results map[string][]Document

	// Default answers queries with no matching substring.
	Default []Document

	// Err, when non-nil, is returned by every call.
	Err error

	mu      sync.Mutex
	queries []string
}

// Search implements Client.
func (m *Mock) Search(ctx context.Context, query string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for needle, docs := range m.Results {
		if strings.Contains(query, needle) {
			return docs, nil
		}
	}
	return m.Default, nil
}

// Queries returns the recorded queries in call order.
func (m *Mock) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}
