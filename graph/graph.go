package graph

import (
	"fmt"
	"sort"
)

// Branch routes execution after its source node commits. Choose inspects
// the committed state and names exactly one target; the executor marks the
// remaining targets Skipped. A branch is evaluated once per run, even when
// the run is resumed with the source already complete.
type Branch[S any] struct {
	// Source is the node whose commit triggers the decision.
	Source string

	// Targets are the candidate nodes. Each must depend on Source, and
	// at most one of them runs.
	Targets []string

	// Choose returns the id of the winning target.
	Choose func(state S) string
}

// Graph is a fixed DAG of nodes plus branch decisions over a shared state
// type. Build one with New, Add, AddBranch and Seed, then call Finalize
// before handing it to an Executor. A finalized graph is immutable and safe
// to share between runs.
//
// Example:
//
//	g := graph.New(career.Reduce)
//	g.Seed("career_profile")
//	if err := g.Add(parserSpec); err != nil { ... }
//	if err := g.AddBranch(gapBranch); err != nil { ... }
//	if err := g.Finalize(); err != nil { ... }
type Graph[S any, D Delta] struct {
	reducer   Reducer[S, D]
	nodes     map[string]NodeSpec[S, D]
	branches  map[string]Branch[S]
	seeds     map[string]bool
	order     []string
	finalized bool

	// branchOf maps a branch target to its source, marking the target as
	// a member of an exclusive group.
	branchOf map[string]string
}

// New creates an empty graph over the given reducer.
func New[S any, D Delta](reducer Reducer[S, D]) *Graph[S, D] {
	return &Graph[S, D]{
		reducer:  reducer,
		nodes:    make(map[string]NodeSpec[S, D]),
		branches: make(map[string]Branch[S]),
		seeds:    make(map[string]bool),
		branchOf: make(map[string]string),
	}
}

// Seed declares state fields that are populated before any node runs, such
// as the submitted profile. Seeded fields satisfy Reads without a writer.
func (g *Graph[S, D]) Seed(fields ...string) {
	for _, f := range fields {
		g.seeds[f] = true
	}
}

// Add registers a node. It fails on duplicate ids and on locally invalid
// specs; cross-node checks run in Finalize.
func (g *Graph[S, D]) Add(spec NodeSpec[S, D]) error {
	if g.finalized {
		return &ValidationError{Field: "graph", Message: "cannot add nodes after finalize"}
	}
	if err := spec.validate(); err != nil {
		return err
	}
	if _, exists := g.nodes[spec.ID]; exists {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("duplicate node id %q", spec.ID)}
	}
	g.nodes[spec.ID] = spec
	return nil
}

// AddBranch registers a branch decision. Each source carries at most one
// branch.
func (g *Graph[S, D]) AddBranch(b Branch[S]) error {
	if g.finalized {
		return &ValidationError{Field: "graph", Message: "cannot add branches after finalize"}
	}
	if b.Source == "" {
		return &ValidationError{Field: "source", Message: "branch source must not be empty"}
	}
	if len(b.Targets) < 2 {
		return &ValidationError{Field: "targets", Message: fmt.Sprintf("branch at %q needs at least two targets", b.Source)}
	}
	if b.Choose == nil {
		return &ValidationError{Field: "choose", Message: fmt.Sprintf("branch at %q has no decision function", b.Source)}
	}
	if _, exists := g.branches[b.Source]; exists {
		return &ValidationError{Field: "source", Message: fmt.Sprintf("node %q already has a branch", b.Source)}
	}
	g.branches[b.Source] = b
	return nil
}

// Finalize runs the whole-graph checks and freezes the graph:
//
//   - every dependency names a registered node
//   - the dependency relation is acyclic
//   - branch targets exist and depend directly on their source
//   - no two nodes that may run concurrently write the same field
//     (targets of the same branch are exempt, at most one of them runs)
//   - every Reads field is seeded or written by some ancestor
func (g *Graph[S, D]) Finalize() error {
	if g.finalized {
		return nil
	}
	if len(g.nodes) == 0 {
		return &ValidationError{Field: "graph", Message: "graph has no nodes"}
	}

	for id, spec := range g.nodes {
		for _, dep := range spec.DependsOn {
			if _, ok := g.nodes[dep]; !ok {
				return &ValidationError{Field: "dependsOn", Message: fmt.Sprintf("node %q depends on unknown node %q", id, dep)}
			}
		}
	}

	for source, b := range g.branches {
		if _, ok := g.nodes[source]; !ok {
			return &ValidationError{Field: "source", Message: fmt.Sprintf("branch source %q is not a node", source)}
		}
		seen := make(map[string]bool, len(b.Targets))
		for _, t := range b.Targets {
			spec, ok := g.nodes[t]
			if !ok {
				return &ValidationError{Field: "targets", Message: fmt.Sprintf("branch target %q is not a node", t)}
			}
			if seen[t] {
				return &ValidationError{Field: "targets", Message: fmt.Sprintf("branch at %q lists target %q twice", source, t)}
			}
			seen[t] = true
			if !contains(spec.DependsOn, source) {
				return &ValidationError{Field: "targets", Message: fmt.Sprintf("branch target %q must depend on source %q", t, source)}
			}
			g.branchOf[t] = source
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return err
	}
	g.order = order

	if err := g.checkWriteOverlap(); err != nil {
		return err
	}
	if err := g.checkReadCoverage(); err != nil {
		return err
	}

	g.finalized = true
	return nil
}

// topoSort orders the nodes by Kahn's algorithm, breaking ties by id so
// iteration order is stable across runs. A non-empty remainder means a
// dependency cycle.
func (g *Graph[S, D]) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for id, spec := range g.nodes {
		indegree[id] += 0
		for _, dep := range spec.DependsOn {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		released := false
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				released = true
			}
		}
		if released {
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, &ValidationError{Field: "dependsOn", Message: fmt.Sprintf("dependency cycle involving %v", stuck)}
	}
	return order, nil
}

// checkWriteOverlap rejects pairs of nodes that share a written field
// without an ordering between them. Two targets of the same branch may
// share fields: only one of them ever runs.
func (g *Graph[S, D]) checkWriteOverlap() error {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			if g.sameBranchGroup(a, b) {
				continue
			}
			if g.ordered(a, b) || g.ordered(b, a) {
				continue
			}
			for _, f := range g.nodes[a].Writes {
				if contains(g.nodes[b].Writes, f) {
					return &ValidationError{
						Field:   "writes",
						Message: fmt.Sprintf("nodes %q and %q may run concurrently and both write %q", a, b, f),
					}
				}
			}
		}
	}
	return nil
}

// checkReadCoverage verifies every declared read has a producer: a seeded
// field or a write on some ancestor.
func (g *Graph[S, D]) checkReadCoverage() error {
	for _, id := range g.order {
		spec := g.nodes[id]
		anc := g.ancestors(id)
		for _, f := range spec.Reads {
			if g.seeds[f] {
				continue
			}
			found := false
			for a := range anc {
				if contains(g.nodes[a].Writes, f) {
					found = true
					break
				}
			}
			if !found {
				return &ValidationError{
					Field:   "reads",
					Message: fmt.Sprintf("node %q reads %q but no ancestor writes it and it is not seeded", id, f),
				}
			}
		}
	}
	return nil
}

// sameBranchGroup reports whether a and b are targets of one branch.
func (g *Graph[S, D]) sameBranchGroup(a, b string) bool {
	sa, oka := g.branchOf[a]
	sb, okb := g.branchOf[b]
	return oka && okb && sa == sb
}

// ordered reports whether from is an ancestor of to.
func (g *Graph[S, D]) ordered(from, to string) bool {
	return g.ancestors(to)[from]
}

// ancestors returns the transitive dependency set of id.
func (g *Graph[S, D]) ancestors(id string) map[string]bool {
	out := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		for _, dep := range g.nodes[n].DependsOn {
			if !out[dep] {
				out[dep] = true
				walk(dep)
			}
		}
	}
	walk(id)
	return out
}

// Nodes returns the node ids in topological order.
func (g *Graph[S, D]) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
