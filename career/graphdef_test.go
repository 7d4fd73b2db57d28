package career

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/model"
)

func quickOptions() graph.Options {
	return graph.Options{
		Retry: &graph.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}
}

func fullProfile() CareerProfile {
	return CareerProfile{
		CurrentMajor:       "Computer Science",
		CurrentGPA:         8.5,
		GradingScale:       "10.0",
		CurrentCountry:     "India",
		TargetCareerFields: []string{"Technology"},
		SpecificRoles:      []string{"Machine Learning Engineer"},
		TechnicalSkills:    map[string]string{"Python": "Intermediate"},
		InvestmentCapacity: "$5k-$20k",
	}
}

func runPipeline(t *testing.T, gapScore float64) (State, *graph.RunLog) {
	t.Helper()
	g, err := BuildGraph(&Stages{Completer: scriptedCompleter(gapScore), Search: marketMock()})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	exec, err := graph.NewExecutor(g, quickOptions())
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	state, log, err := exec.Run(context.Background(), "run-1", NewState(fullProfile()))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return state, log
}

func statusIn(t *testing.T, log *graph.RunLog, node string) graph.Status {
	t.Helper()
	entry, ok := log.Find(node)
	if !ok {
		t.Fatalf("node %s missing from run log", node)
	}
	return entry.Status
}

func TestBranchRouting(t *testing.T) {
	t.Run("manageable gap simulates the target", func(t *testing.T) {
		state, log := runPipeline(t, 45)
		if got := statusIn(t, log, NodeTimelineSimulator); got != graph.Succeeded {
			t.Errorf("timeline_simulator = %v", got)
		}
		if got := statusIn(t, log, NodeAlternativePlanner); got != graph.Skipped {
			t.Errorf("alternative_planner = %v", got)
		}
		if len(state.AlternativeCareers) != 0 {
			t.Errorf("unexpected alternatives: %v", state.AlternativeCareers)
		}
	})

	t.Run("gap exactly at threshold still simulates", func(t *testing.T) {
		_, log := runPipeline(t, AlternativeGapThreshold)
		if got := statusIn(t, log, NodeTimelineSimulator); got != graph.Succeeded {
			t.Errorf("timeline_simulator = %v at boundary", got)
		}
		if got := statusIn(t, log, NodeAlternativePlanner); got != graph.Skipped {
			t.Errorf("alternative_planner = %v at boundary", got)
		}
	})

	t.Run("gap above threshold detours into alternatives", func(t *testing.T) {
		state, log := runPipeline(t, 81)
		if got := statusIn(t, log, NodeAlternativePlanner); got != graph.Succeeded {
			t.Errorf("alternative_planner = %v", got)
		}
		if got := statusIn(t, log, NodeTimelineSimulator); got != graph.Skipped {
			t.Errorf("timeline_simulator = %v", got)
		}
		if len(state.AlternativeCareers) == 0 {
			t.Error("no alternatives in state")
		}
		if state.TimelineSimulation == nil || state.TimelineSimulation.ConservativePath == nil {
			t.Error("alternative arm should still produce a timeline")
		}
	})
}

func TestFullRunCompletes(t *testing.T) {
	state, log := runPipeline(t, 45)
	if !state.SimulationComplete {
		t.Error("simulation not marked complete")
	}
	if state.DashboardData == nil {
		t.Fatal("no dashboard data")
	}
	if state.FinancialAnalysis == nil || state.RiskAssessment == nil {
		t.Error("parallel analyses missing")
	}
	for _, node := range []string{
		NodeProfileParser, NodeCareerMatcher, NodeMarketScout, NodeGapAnalyst,
		NodeTimelineSimulator, NodeFinancialAdvisor, NodeRiskAssessor, NodeDashboardFormatter,
	} {
		if got := statusIn(t, log, node); got != graph.Succeeded {
			t.Errorf("%s = %v", node, got)
		}
		if _, ok := state.ProcessingTimeMS[node]; !ok {
			t.Errorf("no timing for %s", node)
		}
	}
}

// Deterministic mocks must yield identical results across runs, down to the
// committed state digests.
func TestRunReplayIdempotent(t *testing.T) {
	stateA, logA := runPipeline(t, 45)
	stateB, logB := runPipeline(t, 45)

	orderA, orderB := logA.NodeOrder(), logB.NodeOrder()
	if len(orderA) != len(orderB) {
		t.Fatalf("log lengths differ: %d vs %d", len(orderA), len(orderB))
	}
	for i := range orderA {
		if orderA[i] != orderB[i] {
			t.Fatalf("node order differs at %d: %s vs %s", i, orderA[i], orderB[i])
		}
	}

	stateA.ProcessingTimeMS, stateB.ProcessingTimeMS = nil, nil
	rawA, _ := json.Marshal(stateA)
	rawB, _ := json.Marshal(stateB)
	if string(rawA) != string(rawB) {
		t.Errorf("replay produced different state")
	}
}

func TestCriticalFailureAbortsDownstream(t *testing.T) {
	completer := &model.Mock{Respond: func(req model.Request) (string, error) {
		return "", &model.APIError{Provider: "test", Code: "invalid_api_key", Message: "bad key"}
	}}
	g, err := BuildGraph(&Stages{Completer: completer, Search: marketMock()})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	exec, err := graph.NewExecutor(g, quickOptions())
	if err != nil {
		t.Fatalf("executor: %v", err)
	}

	_, log, err := exec.Run(context.Background(), "run-abort", NewState(fullProfile()))
	var runErr *graph.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if runErr.Node != NodeCareerMatcher {
		t.Errorf("failing node = %q", runErr.Node)
	}
	if got := statusIn(t, log, NodeProfileParser); got != graph.Succeeded {
		t.Errorf("profile_parser = %v", got)
	}
	for _, node := range []string{
		NodeMarketScout, NodeGapAnalyst, NodeTimelineSimulator,
		NodeAlternativePlanner, NodeFinancialAdvisor, NodeRiskAssessor, NodeDashboardFormatter,
	} {
		if got := statusIn(t, log, node); got != graph.Skipped {
			t.Errorf("%s = %v, want skipped", node, got)
		}
	}
}

func TestAdvisoryFailureDegradesRun(t *testing.T) {
	base := scriptedCompleter(45)
	completer := &model.Mock{Respond: func(req model.Request) (string, error) {
		if strings.Contains(req.System, "financial planner") {
			return "", &model.APIError{Provider: "test", Code: "server_error", Message: "overloaded", Retry: true}
		}
		return base.Respond(req)
	}}
	g, err := BuildGraph(&Stages{Completer: completer, Search: marketMock()})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	exec, err := graph.NewExecutor(g, quickOptions())
	if err != nil {
		t.Fatalf("executor: %v", err)
	}

	state, log, err := exec.Run(context.Background(), "run-degraded", NewState(fullProfile()))
	if err != nil {
		t.Fatalf("degraded run should succeed: %v", err)
	}

	entry, ok := log.Find(NodeFinancialAdvisor)
	if !ok || entry.Status != graph.Failed || !entry.Tolerated {
		t.Errorf("financial_advisor entry = %+v", entry)
	}
	if state.FinancialAnalysis == nil || state.FinancialAnalysis.TotalInvestmentRequired != 15000 {
		t.Errorf("fallback financials not committed: %+v", state.FinancialAnalysis)
	}
	if !hasWarningContaining(state.Warnings, "generic estimate") {
		t.Errorf("no degradation warning: %v", state.Warnings)
	}
	if !state.SimulationComplete || state.DashboardData == nil {
		t.Error("run did not finish despite tolerated failure")
	}
}

func hasWarningContaining(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
