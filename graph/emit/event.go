package emit

// Event is one observability record from a run. The executor emits events
// at every node transition; emitters decide where they go.
//
// Messages currently emitted:
//   - node_start, node_end, node_retry, node_failed, node_skipped
//   - node_degraded (advisory failure replaced by fallback output)
//   - branch_decided
//   - run_complete, run_failed
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Step is the scheduling wave number, 1-indexed. Zero for events
	// raised before the first wave or at run completion.
	Step int

	// NodeID names the node concerned. Empty for run-level events.
	NodeID string

	// Msg is the event name.
	Msg string

	// Meta carries event-specific details. Common keys: "error",
	// "attempt", "attempts", "winner", "reason".
	Meta map[string]any
}
