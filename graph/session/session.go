// Package session persists workflow state between the two phases of a
// simulation: the state saved after career matching is reloaded when the
// caller selects a career, possibly from a different process.
//
// Stores hold opaque JSON-serializable state under a caller-chosen id with
// a time-to-live. A load past the TTL behaves exactly like a load of an
// unknown id.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown or its TTL elapsed.
var ErrNotFound = errors.New("session not found")

// Store persists state snapshots between workflow phases.
//
// Type parameter S is the state type; it must be JSON-serializable, the
// same requirement the executor places on it.
type Store[S any] interface {
	// Save stores state under id, replacing any previous snapshot. The
	// session expires ttl from now; ttl <= 0 means no expiry.
	Save(ctx context.Context, id string, state S, ttl time.Duration) error

	// Load returns the state stored under id. Returns ErrNotFound for
	// unknown ids and for sessions whose TTL elapsed.
	Load(ctx context.Context, id string) (S, error)

	// Delete removes the session. Deleting an unknown id is not an
	// error.
	Delete(ctx context.Context, id string) error
}
