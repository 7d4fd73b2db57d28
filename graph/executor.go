package graph

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/careersim/careersim-go/graph/emit"
)

// Default execution budgets. Critical stages get the longer per-attempt
// budget; the run budget bounds the whole pipeline.
const (
	DefaultCriticalTimeout = 90 * time.Second
	DefaultAdvisoryTimeout = 45 * time.Second
	DefaultRunTimeout      = 8 * time.Minute
)

// DefaultRetryPolicy is the schedule applied when neither the executor
// options nor the node supply one: three attempts with exponential backoff
// from 500ms, capped at 10s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Options configures an Executor. The zero value is usable: class timeouts
// and the retry schedule fall back to the package defaults, events are
// discarded, and metrics are disabled.
type Options struct {
	// CriticalTimeout is the per-attempt budget for Critical nodes
	// without their own policy. Zero means DefaultCriticalTimeout.
	CriticalTimeout time.Duration

	// AdvisoryTimeout is the per-attempt budget for Advisory nodes
	// without their own policy. Zero means DefaultAdvisoryTimeout.
	AdvisoryTimeout time.Duration

	// RunTimeout bounds the whole run. Zero means DefaultRunTimeout;
	// negative disables the bound.
	RunTimeout time.Duration

	// Retry is the default schedule for nodes without their own.
	Retry *RetryPolicy

	// Emitter receives execution events. Nil discards them.
	Emitter emit.Emitter

	// Metrics receives Prometheus measurements. Nil disables them.
	Metrics *Metrics
}

// Executor runs a finalized graph in dependency waves.
//
// Every node whose dependencies are satisfied is dispatched concurrently on
// a private snapshot of the committed state. The wave is a join barrier:
// results are collected, sorted by node id, and committed one at a time
// through the reducer, with the run log appended before dependents are
// released. Branches are decided exactly once, immediately after their
// source commits.
//
// An Executor is stateless between runs and safe for concurrent use.
type Executor[S any, D Delta] struct {
	graph *Graph[S, D]
	opts  Options

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExecutor creates an executor over g, finalizing it if needed.
func NewExecutor[S any, D Delta](g *Graph[S, D], opts Options) (*Executor[S, D], error) {
	if g == nil {
		return nil, &ValidationError{Field: "graph", Message: "graph must not be nil"}
	}
	if err := g.Finalize(); err != nil {
		return nil, err
	}
	if opts.CriticalTimeout == 0 {
		opts.CriticalTimeout = DefaultCriticalTimeout
	}
	if opts.AdvisoryTimeout == 0 {
		opts.AdvisoryTimeout = DefaultAdvisoryTimeout
	}
	if opts.RunTimeout == 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.Retry == nil {
		opts.Retry = DefaultRetryPolicy()
	}
	if err := opts.Retry.Validate(); err != nil {
		return nil, err
	}
	if opts.Emitter == nil {
		opts.Emitter = emit.NewNullEmitter()
	}
	return &Executor[S, D]{
		graph: g,
		opts:  opts,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run executes the full graph from the initial state.
func (e *Executor[S, D]) Run(ctx context.Context, runID string, initial S) (S, *RunLog, error) {
	include := make(map[string]bool, len(e.graph.order))
	for _, id := range e.graph.order {
		include[id] = true
	}
	return e.run(ctx, runID, initial, include, nil)
}

// RunUntil executes only stopAfter and its ancestors, leaving the rest of
// the graph untouched. The returned state can later be handed to RunFrom to
// resume the remainder.
func (e *Executor[S, D]) RunUntil(ctx context.Context, runID string, initial S, stopAfter string) (S, *RunLog, error) {
	var zero S
	if _, ok := e.graph.nodes[stopAfter]; !ok {
		return zero, nil, &ValidationError{Field: "stopAfter", Message: fmt.Sprintf("unknown node %q", stopAfter)}
	}
	include := e.graph.ancestors(stopAfter)
	include[stopAfter] = true
	return e.run(ctx, runID, initial, include, nil)
}

// RunFrom resumes a run whose listed nodes already completed, typically
// from state persisted by an earlier RunUntil. Completed nodes are marked
// Succeeded without re-executing; a branch whose source is among them is
// decided from the provided state before the first wave.
func (e *Executor[S, D]) RunFrom(ctx context.Context, runID string, state S, completed []string) (S, *RunLog, error) {
	var zero S
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		if _, ok := e.graph.nodes[id]; !ok {
			return zero, nil, &ValidationError{Field: "completed", Message: fmt.Sprintf("unknown node %q", id)}
		}
		done[id] = true
	}
	include := make(map[string]bool, len(e.graph.order))
	for _, id := range e.graph.order {
		include[id] = true
	}
	return e.run(ctx, runID, state, include, done)
}

func (e *Executor[S, D]) run(ctx context.Context, runID string, initial S, include, completed map[string]bool) (S, *RunLog, error) {
	if e.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RunTimeout)
		defer cancel()
	}

	state := initial
	log := NewRunLog(runID)
	statuses := make(map[string]Status, len(include))
	for id := range include {
		if completed[id] {
			statuses[id] = Succeeded
		} else {
			statuses[id] = Pending
		}
	}

	branchDecided := make(map[string]bool, len(e.graph.branches))
	step := 0

	for {
		if err := e.decideBranches(state, statuses, include, branchDecided, log, runID, step); err != nil {
			e.abort(statuses, include, log, runID, step)
			e.opts.Metrics.ObserveRun("aborted")
			return state, log, &RunError{RunID: runID, Node: "", Err: err, Log: log.Entries()}
		}

		ready := e.readyNodes(statuses, include)
		if len(ready) == 0 {
			if e.allTerminal(statuses, include) {
				e.emit(runID, step, "", "run_complete", nil)
				e.opts.Metrics.ObserveRun("succeeded")
				return state, log, nil
			}
			err := errors.New("no runnable nodes but run incomplete")
			e.abort(statuses, include, log, runID, step)
			e.opts.Metrics.ObserveRun("aborted")
			return state, log, &RunError{RunID: runID, Node: "", Err: err, Log: log.Entries()}
		}

		step++
		outcomes := make(chan nodeOutcome[D], len(ready))
		e.opts.Metrics.SetInflight(len(ready))
		for _, id := range ready {
			statuses[id] = Running
			e.emit(runID, step, id, "node_start", nil)

			snap, err := deepCopy(state)
			if err != nil {
				term := &TerminalStageError{Node: id, Attempts: 0, Err: err}
				e.abort(statuses, include, log, runID, step)
				e.opts.Metrics.ObserveRun("aborted")
				return state, log, &RunError{RunID: runID, Node: id, Err: term, Log: log.Entries()}
			}
			spec := e.graph.nodes[id]
			go func() {
				outcomes <- e.invoke(ctx, runID, step, spec, snap)
			}()
		}

		wave := make([]nodeOutcome[D], 0, len(ready))
		for range ready {
			wave = append(wave, <-outcomes)
		}
		e.opts.Metrics.SetInflight(0)
		sort.Slice(wave, func(i, j int) bool { return wave[i].nodeID < wave[j].nodeID })

		var failed *nodeOutcome[D]
		for i := range wave {
			out := &wave[i]
			if out.hasDelta {
				if err := e.commit(&state, out, statuses, log, runID, step); err != nil {
					out.err = &TerminalStageError{Node: out.nodeID, Attempts: out.attempts, Err: err}
					out.hasDelta = false
					if failed == nil {
						failed = out
					}
					statuses[out.nodeID] = Failed
					log.append(LogEntry{
						NodeID:       out.nodeID,
						Status:       Failed,
						Start:        out.start,
						End:          out.end,
						Attempt:      out.attempts,
						ErrorSummary: out.err.Error(),
					})
				}
				continue
			}
			statuses[out.nodeID] = Failed
			log.append(LogEntry{
				NodeID:       out.nodeID,
				Status:       Failed,
				Start:        out.start,
				End:          out.end,
				Attempt:      out.attempts,
				ErrorSummary: out.err.Error(),
			})
			e.emit(runID, step, out.nodeID, "node_failed", map[string]any{"error": out.err.Error()})
			e.opts.Metrics.ObserveStage(out.nodeID, "failed", out.end.Sub(out.start))
			if failed == nil {
				failed = out
			}
		}

		if failed != nil {
			e.abort(statuses, include, log, runID, step)
			e.emit(runID, step, failed.nodeID, "run_failed", map[string]any{"error": failed.err.Error()})
			e.opts.Metrics.ObserveRun("aborted")
			return state, log, &RunError{RunID: runID, Node: failed.nodeID, Err: failed.err, Log: log.Entries()}
		}
	}
}

// decideBranches evaluates every undecided branch whose source has
// committed, marking the losing targets Skipped.
func (e *Executor[S, D]) decideBranches(state S, statuses map[string]Status, include, decided map[string]bool, log *RunLog, runID string, step int) error {
	sources := make([]string, 0, len(e.graph.branches))
	for source := range e.graph.branches {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		if decided[source] || !include[source] {
			continue
		}
		if statuses[source] != Succeeded {
			continue
		}
		b := e.graph.branches[source]
		inScope := false
		for _, t := range b.Targets {
			if include[t] {
				inScope = true
				break
			}
		}
		if !inScope {
			// RunUntil stopped at or before the source; the decision
			// belongs to the resuming run.
			continue
		}
		winner := b.Choose(state)
		if !contains(b.Targets, winner) {
			return &ValidationError{Field: "branch", Message: fmt.Sprintf("branch at %q chose unknown target %q", source, winner)}
		}
		decided[source] = true
		e.emit(runID, step, source, "branch_decided", map[string]any{"winner": winner})

		losers := make([]string, 0, len(b.Targets)-1)
		for _, t := range b.Targets {
			if t != winner {
				losers = append(losers, t)
			}
		}
		sort.Strings(losers)
		now := time.Now()
		for _, t := range losers {
			if !include[t] || statuses[t].terminal() {
				continue
			}
			statuses[t] = Skipped
			log.append(LogEntry{NodeID: t, Status: Skipped, Start: now, End: now})
			e.emit(runID, step, t, "node_skipped", map[string]any{"reason": "branch"})
		}
	}
	return nil
}

// readyNodes returns, in id order, the pending nodes whose dependencies are
// all satisfied. A branch target additionally waits for its branch to be
// decided, which happens in the same scheduling pass its source commits.
func (e *Executor[S, D]) readyNodes(statuses map[string]Status, include map[string]bool) []string {
	var ready []string
	for _, id := range e.graph.order {
		if !include[id] || statuses[id] != Pending {
			continue
		}
		ok := true
		for _, dep := range e.graph.nodes[id].DependsOn {
			if !include[dep] || !statuses[dep].satisfiesDependents() {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if source, isTarget := e.graph.branchOf[id]; isTarget {
			// Undecided branch means the source has not succeeded yet;
			// a decided branch either skipped this target already or
			// left it as the winner.
			if include[source] && statuses[source] != Succeeded {
				continue
			}
		}
		ready = append(ready, id)
	}
	return ready
}

// allTerminal reports whether every included node has reached a terminal
// status, meaning the run has nothing left to schedule.
func (e *Executor[S, D]) allTerminal(statuses map[string]Status, include map[string]bool) bool {
	for id := range include {
		if !statuses[id].terminal() {
			return false
		}
	}
	return true
}

// commit folds a delta into the committed state after checking its keys
// against the node's declared writes, then appends the log entry.
func (e *Executor[S, D]) commit(state *S, out *nodeOutcome[D], statuses map[string]Status, log *RunLog, runID string, step int) error {
	spec := e.graph.nodes[out.nodeID]
	for _, k := range out.delta.Keys() {
		if !contains(spec.Writes, k) {
			return &ValidationError{Field: "writes", Message: fmt.Sprintf("node %q produced undeclared field %q", out.nodeID, k)}
		}
	}

	*state = e.graph.reducer(*state, out.delta)
	digest, err := stateDigest(*state)
	if err != nil {
		return err
	}

	status := Succeeded
	entry := LogEntry{
		NodeID:      out.nodeID,
		Start:       out.start,
		End:         out.end,
		Attempt:     out.attempts,
		StateDigest: digest,
	}
	if out.degraded {
		status = Failed
		entry.Tolerated = true
		entry.ErrorSummary = out.err.Error()
		e.emit(runID, step, out.nodeID, "node_degraded", map[string]any{"error": out.err.Error()})
		e.opts.Metrics.IncDegraded(out.nodeID)
		e.opts.Metrics.ObserveStage(out.nodeID, "degraded", out.end.Sub(out.start))
	} else {
		e.emit(runID, step, out.nodeID, "node_end", map[string]any{"attempts": out.attempts})
		e.opts.Metrics.ObserveStage(out.nodeID, "succeeded", out.end.Sub(out.start))
	}
	entry.Status = status
	statuses[out.nodeID] = status
	log.append(entry)
	return nil
}

// abort marks every non-terminal node Skipped after a critical failure.
func (e *Executor[S, D]) abort(statuses map[string]Status, include map[string]bool, log *RunLog, runID string, step int) {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	now := time.Now()
	for _, id := range ids {
		if !include[id] || statuses[id].terminal() {
			continue
		}
		statuses[id] = Skipped
		log.append(LogEntry{NodeID: id, Status: Skipped, Start: now, End: now})
		e.emit(runID, step, id, "node_skipped", map[string]any{"reason": "abort"})
	}
}

// invoke drives one node through its retry budget against a private state
// snapshot and returns the outcome. It never writes shared state.
func (e *Executor[S, D]) invoke(ctx context.Context, runID string, step int, spec NodeSpec[S, D], snapshot S) nodeOutcome[D] {
	timeout := e.nodeTimeout(spec)
	policy := e.nodeRetry(spec)
	out := nodeOutcome[D]{nodeID: spec.ID, start: time.Now()}

	var lastErr error
	for attempt := 1; ; attempt++ {
		out.attempts = attempt
		delta, err := e.attempt(ctx, spec, snapshot, timeout)
		if err == nil {
			out.delta = delta
			out.hasDelta = true
			out.end = time.Now()
			return out
		}
		lastErr = err

		if ctx.Err() != nil {
			// Run budget exhausted or caller gone; no point retrying.
			break
		}
		if !policy.shouldRetry(attempt, err) {
			break
		}

		e.emit(runID, step, spec.ID, "node_retry", map[string]any{"attempt": attempt, "error": err.Error()})
		e.opts.Metrics.IncRetry(spec.ID)

		e.mu.Lock()
		delay := computeBackoff(attempt, policy.BaseDelay, policy.MaxDelay, e.rng)
		e.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	out.end = time.Now()
	if spec.Class == Advisory && spec.Fallback != nil && !errors.Is(lastErr, context.Canceled) {
		out.delta = spec.Fallback(snapshot)
		out.hasDelta = true
		out.degraded = true
		out.err = &DegradedStageError{Node: spec.ID, Attempts: out.attempts, Err: lastErr}
		return out
	}
	out.err = &TerminalStageError{Node: spec.ID, Attempts: out.attempts, Err: lastErr}
	return out
}

// attempt runs a single stage attempt under its wall-clock budget. The
// stage runs in its own goroutine so a non-cooperative stage cannot hold
// the scheduler past the deadline; a late result is discarded, which is
// safe because deltas only take effect through commit.
func (e *Executor[S, D]) attempt(ctx context.Context, spec NodeSpec[S, D], snapshot S, timeout time.Duration) (D, error) {
	var zero D
	actx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		delta D
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("stage panic: %v", r)}
			}
		}()
		d, err := spec.Run(actx, snapshot)
		done <- result{delta: d, err: err}
	}()

	select {
	case r := <-done:
		return r.delta, r.err
	case <-actx.Done():
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, Transient(spec.ID, fmt.Errorf("attempt exceeded %v: %w", timeout, context.DeadlineExceeded))
		}
		return zero, actx.Err()
	}
}

func (e *Executor[S, D]) nodeTimeout(spec NodeSpec[S, D]) time.Duration {
	if spec.Policy != nil && spec.Policy.Timeout > 0 {
		return spec.Policy.Timeout
	}
	if spec.Class == Advisory {
		return e.opts.AdvisoryTimeout
	}
	return e.opts.CriticalTimeout
}

func (e *Executor[S, D]) nodeRetry(spec NodeSpec[S, D]) *RetryPolicy {
	if spec.Policy != nil && spec.Policy.Retry != nil {
		return spec.Policy.Retry
	}
	return e.opts.Retry
}

func (e *Executor[S, D]) emit(runID string, step int, nodeID, msg string, meta map[string]any) {
	e.opts.Emitter.Emit(emit.Event{
		RunID:  runID,
		Step:   step,
		NodeID: nodeID,
		Msg:    msg,
		Meta:   meta,
	})
}
