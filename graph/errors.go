package graph

import (
	"context"
	"errors"
	"fmt"
)

// retryable is the convention collaborator errors use to signal that a
// failed call is worth repeating. Provider SDK wrappers and the transport
// clients implement it; the default RetryPolicy consults it.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err is worth retrying: it implements the
// Retryable convention and says so, or it is a deadline expiry (a timed-out
// attempt may succeed with a fresh budget). Context cancellation is never
// retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// ValidationError reports malformed input rejected before any node runs:
// bad graph construction, a bad profile, an out-of-range selection index.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// TransientStageError wraps a recoverable stage failure: a rate-limited or
// overloaded collaborator, a timed-out attempt, malformed structured output
// that a retry may fix.
type TransientStageError struct {
	Node string
	Err  error
}

func (e *TransientStageError) Error() string {
	return fmt.Sprintf("stage %s: transient: %v", e.Node, e.Err)
}

func (e *TransientStageError) Unwrap() error { return e.Err }

// Retryable marks the error as worth repeating.
func (e *TransientStageError) Retryable() bool { return true }

// Transient wraps err as a TransientStageError for node.
func Transient(node string, err error) error {
	return &TransientStageError{Node: node, Err: err}
}

// TerminalStageError reports a node failure that exhausted its retry budget
// or was never retryable. For critical nodes it is the cause carried by the
// RunError that aborts the run.
type TerminalStageError struct {
	Node     string
	Attempts int
	Err      error
}

func (e *TerminalStageError) Error() string {
	return fmt.Sprintf("stage %s: failed after %d attempt(s): %v", e.Node, e.Attempts, e.Err)
}

func (e *TerminalStageError) Unwrap() error { return e.Err }

// DegradedStageError records a tolerated advisory failure whose fallback
// delta was committed. It appears in the run log and in events, never as a
// run-aborting error.
type DegradedStageError struct {
	Node     string
	Attempts int
	Err      error
}

func (e *DegradedStageError) Error() string {
	return fmt.Sprintf("stage %s: degraded after %d attempt(s): %v", e.Node, e.Attempts, e.Err)
}

func (e *DegradedStageError) Unwrap() error { return e.Err }

// RunError is returned when a run aborts. It names the failing node, wraps
// the terminal cause, and carries the run log accumulated up to the abort
// so callers can see exactly which nodes ran, failed, and were skipped.
type RunError struct {
	RunID string
	Node  string
	Err   error
	Log   []LogEntry
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: aborted at %s: %v", e.RunID, e.Node, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
