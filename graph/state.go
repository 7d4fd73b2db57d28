package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// deepCopy snapshots a state value through a JSON round trip. Each
// dispatched node receives its own copy, so concurrent stages can never
// observe each other's writes and the committed state only advances through
// the reducer.
//
// State types must therefore be JSON-serializable. That requirement is
// shared with the session stores, which persist the same representation.
func deepCopy[S any](state S) (S, error) {
	var out S
	raw, err := json.Marshal(state)
	if err != nil {
		return out, fmt.Errorf("snapshot state: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("restore state snapshot: %w", err)
	}
	return out, nil
}

// stateDigest returns the hex SHA-256 of the state's canonical JSON
// encoding. Digests are recorded per run-log entry so two runs can be
// compared for replay equivalence without persisting full snapshots.
func stateDigest[S any](state S) (string, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("digest state: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
