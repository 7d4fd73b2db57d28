package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemStore is an in-memory Store for development and tests. Snapshots are
// kept as serialized JSON so loads return independent copies, matching the
// isolation the SQL-backed stores provide.
//
// Expired sessions are dropped lazily on Load; call Sweep to reclaim them
// eagerly.
type MemStore[S any] struct {
	mu      sync.RWMutex
	entries map[string]memEntry

	// now is replaceable in tests.
	now func() time.Time
}

type memEntry struct {
	state     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// Save implements Store.
func (m *MemStore[S]) Save(ctx context.Context, id string, state S, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	entry := memEntry{state: raw}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[id] = entry
	m.mu.Unlock()
	return nil
}

// Load implements Store.
func (m *MemStore[S]) Load(ctx context.Context, id string) (S, error) {
	var zero S
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return zero, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return zero, ErrNotFound
	}
	var state S
	if err := json.Unmarshal(entry.state, &state); err != nil {
		return zero, fmt.Errorf("unmarshal session state: %w", err)
	}
	return state, nil
}

// Delete implements Store.
func (m *MemStore[S]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired session and reports how many were dropped.
func (m *MemStore[S]) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len reports the number of stored sessions, including not-yet-swept
// expired ones.
func (m *MemStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
