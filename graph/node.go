package graph

import (
	"context"
	"fmt"
	"time"
)

// Delta is the unit of state change produced by a stage. A delta carries
// only the fields the stage computed; the reducer folds it into the shared
// state. Keys reports the owned state fields the delta sets so the executor
// can verify them against the node's declared Writes. Append-only channels
// (warnings, errors, timings) are not owned fields and must not appear in
// Keys.
type Delta interface {
	Keys() []string
}

// Reducer folds a delta into the previous state and returns the next state.
// It must be a pure function: no mutation of prev, no I/O. For deltas with
// disjoint key sets the fold must be commutative, which is what makes the
// parallel wave merge order-independent.
type Reducer[S any, D Delta] func(prev S, delta D) S

// StageFunc is the unit of work attached to a node. It receives a private
// snapshot of the committed state and returns a delta describing its
// contribution. Stages must not retain or mutate the snapshot after
// returning, and must honor ctx cancellation on any blocking call.
type StageFunc[S any, D Delta] func(ctx context.Context, state S) (D, error)

// NodeClass controls how the executor treats a node whose retries are
// exhausted.
type NodeClass int

const (
	// Critical nodes abort the run on failure. Downstream nodes are
	// marked Skipped and the caller receives a RunError.
	Critical NodeClass = iota

	// Advisory nodes degrade on failure: the executor commits the node's
	// Fallback delta and the run continues.
	Advisory
)

// String returns a human-readable class name.
func (c NodeClass) String() string {
	switch c {
	case Critical:
		return "critical"
	case Advisory:
		return "advisory"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// NodeSpec declares a single node of the execution graph.
//
// Reads and Writes are declared state-field sets. The graph validates at
// construction that every read is produced upstream (or seeded into the
// initial state) and that no two nodes which may run concurrently write the
// same field. At runtime the executor rejects any delta whose Keys are not
// a subset of Writes.
//
// Example:
//
//	spec := graph.NodeSpec[MyState, MyDelta]{
//		ID:        "gap_analyst",
//		Reads:     []string{"normalized_profile", "market_insights"},
//		Writes:    []string{"gap_analysis"},
//		DependsOn: []string{"market_scout"},
//		Class:     graph.Critical,
//		Run:       stages.AnalyzeGaps,
//	}
type NodeSpec[S any, D Delta] struct {
	ID        string
	Reads     []string
	Writes    []string
	DependsOn []string
	Class     NodeClass

	// Run executes the stage. Required.
	Run StageFunc[S, D]

	// Fallback produces a structurally valid degraded delta from the
	// state visible to the failed node. Required for Advisory nodes,
	// ignored for Critical ones. The fallback is responsible for pushing
	// its own warning so degraded results are visible to callers.
	Fallback func(state S) D

	// Policy overrides the executor's class defaults for this node.
	Policy *NodePolicy
}

// validate checks the spec in isolation. Cross-node checks (dependency
// existence, cycles, write overlap) live on the graph.
func (n NodeSpec[S, D]) validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Message: "node id must not be empty"}
	}
	if n.Run == nil {
		return &ValidationError{Field: "run", Message: fmt.Sprintf("node %q has no run function", n.ID)}
	}
	if n.Class == Advisory && n.Fallback == nil {
		return &ValidationError{Field: "fallback", Message: fmt.Sprintf("advisory node %q requires a fallback", n.ID)}
	}
	if n.Policy != nil {
		if err := n.Policy.Validate(); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, dep := range n.DependsOn {
		if dep == n.ID {
			return &ValidationError{Field: "dependsOn", Message: fmt.Sprintf("node %q depends on itself", n.ID)}
		}
	}
	return nil
}

// Status is the lifecycle state of a node within one run.
type Status int

const (
	// Pending nodes have unsatisfied dependencies.
	Pending Status = iota

	// Ready nodes have all dependencies satisfied and await dispatch.
	Ready

	// Running nodes have a stage attempt in flight.
	Running

	// Succeeded nodes committed a delta.
	Succeeded

	// Failed nodes exhausted their retry budget. For advisory nodes the
	// failure is tolerated and a fallback delta was committed instead.
	Failed

	// Skipped nodes were bypassed: the losing arm of a branch, or nodes
	// downstream of a critical failure. Skipped satisfies dependencies.
	Skipped
)

// String returns the lowercase status name used in run logs and events.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// terminal reports whether the status is final for the run.
func (s Status) terminal() bool {
	return s == Succeeded || s == Failed || s == Skipped
}

// satisfiesDependents reports whether dependents of a node in this status
// may be released. Skipped counts as satisfied so that join nodes behind a
// branch do not deadlock waiting on the losing arm, and tolerated advisory
// failures count because a fallback delta was committed in their place.
func (s Status) satisfiesDependents() bool {
	return s == Succeeded || s == Skipped || s == Failed
}

// nodeOutcome is the result of driving one node through its retry budget.
type nodeOutcome[D Delta] struct {
	nodeID   string
	delta    D
	hasDelta bool
	err      error
	start    time.Time
	end      time.Time
	attempts int
	degraded bool
}
