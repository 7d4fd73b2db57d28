package graph

import (
	"sync"
	"time"
)

// LogEntry records one terminal node transition within a run. Entries for a
// parallel wave are appended in node-id order, so a replayed run with the
// same inputs produces a byte-identical log.
type LogEntry struct {
	NodeID  string    `json:"node_id"`
	Status  Status    `json:"-"`
	State   string    `json:"status"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Attempt int       `json:"attempt"`

	// Tolerated is set when a Failed advisory node was replaced by its
	// fallback delta.
	Tolerated bool `json:"tolerated,omitempty"`

	// ErrorSummary is the terminal error text, empty on success.
	ErrorSummary string `json:"error_summary,omitempty"`

	// StateDigest is the SHA-256 of the committed state after this entry
	// was folded in. Empty for Skipped entries, which commit nothing.
	StateDigest string `json:"state_digest,omitempty"`
}

// RunLog is the append-only audit trail of a single run. It is written only
// by the executor, under the commit lock; stages never see it, so logging
// cannot influence routing or state.
type RunLog struct {
	mu      sync.Mutex
	runID   string
	entries []LogEntry
}

// NewRunLog creates an empty log for the given run id.
func NewRunLog(runID string) *RunLog {
	return &RunLog{runID: runID}
}

// RunID returns the id of the run this log belongs to.
func (l *RunLog) RunID() string { return l.runID }

// append records one terminal transition. The serialized status name is
// filled in here so marshaled logs stay readable.
func (l *RunLog) append(e LogEntry) {
	e.State = e.Status.String()
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Entries returns a copy of the log in append order.
func (l *RunLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// NodeOrder returns the node ids in append order, one per entry. Useful for
// replay comparisons and tests.
func (l *RunLog) NodeOrder() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.NodeID)
	}
	return out
}

// Find returns the first entry for nodeID and whether one exists.
func (l *RunLog) Find(nodeID string) (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.NodeID == nodeID {
			return e, true
		}
	}
	return LogEntry{}, false
}
