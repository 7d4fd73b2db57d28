package model

import (
	"context"
	"sync"
	"time"
)

// Mock is a scripted Completer for tests and examples.
//
// Responses are returned in order; when they run out the last one repeats,
// so a deterministic happy path needs only one response per expected call.
// Err, when set, is returned instead (or after ErrCount calls, if set).
// Latency delays each call, honoring ctx cancellation, which lets tests
// exercise timeouts.
//
// Example:
//
//	mock := &model.Mock{Responses: []string{`{"overall_gap_score": 45}`}}
//	out, _ := mock.Complete(ctx, model.Request{Prompt: "..."})
type Mock struct {
	// Respond, when set, computes the reply per request and overrides
	// Responses and Err. Useful when concurrent stages share one mock
	// and the reply must depend on the prompt.
	Respond func(req Request) (string, error)

	// Responses are returned in call order, last one repeating.
	Responses []string

	// Err, when non-nil, is returned by every call (after ErrAfter
	// successful ones, if positive).
	Err error

	// ErrAfter delays Err until this many calls succeeded.
	ErrAfter int

	// Latency is applied before each response.
	Latency time.Duration

	mu    sync.Mutex
	calls []Request
}

// Complete implements Completer.
func (m *Mock) Complete(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	index := len(m.calls)
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	if m.Respond != nil {
		text, err := m.Respond(req)
		if err != nil {
			return Response{}, err
		}
		return Response{Text: text, TokensUsed: len(text)}, nil
	}

	if m.Err != nil && index >= m.ErrAfter {
		return Response{}, m.Err
	}

	if len(m.Responses) == 0 {
		return Response{}, nil
	}
	if index >= len(m.Responses) {
		index = len(m.Responses) - 1
	}
	return Response{Text: m.Responses[index], TokensUsed: len(m.Responses[index])}, nil
}

// CallCount reports how many calls were made.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded requests in call order.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
