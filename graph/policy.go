package graph

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// NodePolicy bundles the per-node execution controls: the wall-clock budget
// for a single attempt and the retry schedule. The executor supplies class
// defaults (critical nodes get the longer budget); a NodeSpec may override
// them with its own policy.
type NodePolicy struct {
	// Timeout is the wall-clock budget per attempt. Zero means the
	// executor's class default applies.
	Timeout time.Duration

	// Retry schedules re-attempts after transient failures. Nil means
	// the executor's default policy applies.
	Retry *RetryPolicy
}

// Validate checks the policy for impossible settings.
func (p *NodePolicy) Validate() error {
	if p == nil {
		return nil
	}
	if p.Timeout < 0 {
		return &ValidationError{Field: "timeout", Message: fmt.Sprintf("must not be negative, got %v", p.Timeout)}
	}
	if p.Retry != nil {
		return p.Retry.Validate()
	}
	return nil
}

// RetryPolicy describes the retry schedule for transient stage failures.
//
// Delays grow exponentially from BaseDelay, are capped at MaxDelay, and
// carry uniform jitter in [0, BaseDelay) so concurrent nodes retrying
// against the same collaborator do not synchronize.
//
// Example:
//
//	policy := &graph.RetryPolicy{
//		MaxAttempts: 3,
//		BaseDelay:   500 * time.Millisecond,
//		MaxDelay:    10 * time.Second,
//	}
type RetryPolicy struct {
	// MaxAttempts is the total attempt count including the first one.
	// 1 disables retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth retrying. Nil falls
	// back to IsRetryable.
	Retryable func(error) bool
}

// Validate checks the policy for impossible settings.
func (p *RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return &ValidationError{Field: "maxAttempts", Message: fmt.Sprintf("must be at least 1, got %d", p.MaxAttempts)}
	}
	if p.BaseDelay < 0 {
		return &ValidationError{Field: "baseDelay", Message: fmt.Sprintf("must not be negative, got %v", p.BaseDelay)}
	}
	if p.MaxDelay < 0 {
		return &ValidationError{Field: "maxDelay", Message: fmt.Sprintf("must not be negative, got %v", p.MaxDelay)}
	}
	if p.MaxDelay > 0 && p.MaxDelay < p.BaseDelay {
		return &ValidationError{Field: "maxDelay", Message: "must not be smaller than baseDelay"}
	}
	return nil
}

// shouldRetry reports whether another attempt is allowed for err after the
// given 1-based attempt number.
func (p *RetryPolicy) shouldRetry(attempt int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return IsRetryable(err)
}

// computeBackoff returns the delay before retry number attempt (1-based:
// attempt 1 is the delay after the first failure). The schedule is
// base * 2^(attempt-1), capped at maxDelay, plus uniform jitter drawn from
// [0, base).
func computeBackoff(attempt int, base, maxDelay time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		return 0
	}
	exp := float64(base) * math.Pow(2, float64(attempt-1))
	delay := time.Duration(exp)
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	if rng != nil {
		delay += time.Duration(rng.Int63n(int64(base)))
	}
	return delay
}
