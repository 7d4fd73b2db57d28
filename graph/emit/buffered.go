package emit

import "sync"

// BufferedEmitter keeps all events in memory, organized by run id, and
// offers query access to them. It backs tests and debugging sessions;
// long-lived deployments should prefer LogEmitter or OTelEmitter since the
// buffer grows without bound until cleared.
//
// Example:
//
//	emitter := emit.NewBufferedEmitter()
//	exec, _ := graph.NewExecutor(g, graph.Options{Emitter: emitter})
//	exec.Run(ctx, "run-001", initial)
//
//	retries := emitter.HistoryWithFilter("run-001", emit.HistoryFilter{Msg: "node_retry"})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// HistoryFilter selects events from a run's history. Zero-valued fields do
// not filter; set fields combine with AND.
type HistoryFilter struct {
	NodeID  string
	Msg     string
	MinStep *int
	MaxStep *int
}

// NewBufferedEmitter creates an empty buffer. Safe for concurrent use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit appends the event to its run's history.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// History returns a copy of all events for runID in emission order.
func (b *BufferedEmitter) History(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := b.events[runID]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// HistoryWithFilter returns the events for runID matching the filter, in
// emission order.
func (b *BufferedEmitter) HistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []Event{}
	for _, event := range b.events[runID] {
		if matchesFilter(event, filter) {
			out = append(out, event)
		}
	}
	return out
}

// Clear drops the history of runID, or every run when runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.NodeID != "" && event.NodeID != filter.NodeID {
		return false
	}
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinStep != nil && event.Step < *filter.MinStep {
		return false
	}
	if filter.MaxStep != nil && event.Step > *filter.MaxStep {
		return false
	}
	return true
}
