package career

import (
	"github.com/careersim/careersim-go/graph"
)

// Node ids, also the keys under which stage timings are recorded.
const (
	NodeProfileParser      = "profile_parser"
	NodeCareerMatcher      = "career_matcher"
	NodeMarketScout        = "market_scout"
	NodeGapAnalyst         = "gap_analyst"
	NodeTimelineSimulator  = "timeline_simulator"
	NodeAlternativePlanner = "alternative_planner"
	NodeFinancialAdvisor   = "financial_advisor"
	NodeRiskAssessor       = "risk_assessor"
	NodeDashboardFormatter = "dashboard_formatter"
)

// AlternativeGapThreshold is the overall gap score above which the run
// detours into alternative planning. A score exactly at the threshold
// still simulates the selected career.
const AlternativeGapThreshold = 80.0

// BuildGraph wires the seven-stage workflow:
//
//	profile_parser → career_matcher → market_scout → gap_analyst
//	    → (timeline_simulator | alternative_planner)
//	    → {financial_advisor, risk_assessor}   (parallel, advisory)
//	    → dashboard_formatter
//
// The financial and risk stages depend on both branch arms; the losing arm
// satisfies them as skipped. The returned graph is finalized by the
// executor.
func BuildGraph(stages *Stages) (*graph.Graph[State, StateDelta], error) {
	g := graph.New[State, StateDelta](Reduce)
	g.Seed(FieldCareerProfile, FieldSelectedCareerIndex, FieldSelectedCareer)

	specs := []graph.NodeSpec[State, StateDelta]{
		{
			ID:     NodeProfileParser,
			Reads:  []string{FieldCareerProfile},
			Writes: []string{FieldNormalizedProfile},
			Run:    stages.ParseProfile,
		},
		{
			ID:        NodeCareerMatcher,
			Reads:     []string{FieldNormalizedProfile},
			Writes:    []string{FieldCareerMatcherResult},
			DependsOn: []string{NodeProfileParser},
			Run:       stages.MatchCareers,
		},
		{
			ID:        NodeMarketScout,
			Reads:     []string{FieldCareerProfile, FieldNormalizedProfile},
			Writes:    []string{FieldMarketInsights},
			DependsOn: []string{NodeCareerMatcher},
			Run:       stages.ScoutMarket,
		},
		{
			ID:        NodeGapAnalyst,
			Reads:     []string{FieldNormalizedProfile, FieldMarketInsights},
			Writes:    []string{FieldGapAnalysis},
			DependsOn: []string{NodeMarketScout},
			Run:       stages.AnalyzeGaps,
		},
		{
			ID:        NodeTimelineSimulator,
			Reads:     []string{FieldNormalizedProfile, FieldGapAnalysis, FieldSelectedCareer},
			Writes:    []string{FieldTimelineSimulation},
			DependsOn: []string{NodeGapAnalyst},
			Run:       stages.SimulateTimeline,
		},
		{
			ID:        NodeAlternativePlanner,
			Reads:     []string{FieldNormalizedProfile, FieldGapAnalysis, FieldSelectedCareer},
			Writes:    []string{FieldAlternativeCareers, FieldTimelineSimulation},
			DependsOn: []string{NodeGapAnalyst},
			Run:       stages.PlanAlternatives,
		},
		{
			ID:        NodeFinancialAdvisor,
			Reads:     []string{FieldCareerProfile, FieldGapAnalysis, FieldTimelineSimulation},
			Writes:    []string{FieldFinancialAnalysis},
			DependsOn: []string{NodeTimelineSimulator, NodeAlternativePlanner},
			Class:     graph.Advisory,
			Run:       stages.AdviseFinances,
			Fallback:  FinancialFallback,
		},
		{
			ID:        NodeRiskAssessor,
			Reads:     []string{FieldNormalizedProfile, FieldGapAnalysis, FieldTimelineSimulation},
			Writes:    []string{FieldRiskAssessment},
			DependsOn: []string{NodeTimelineSimulator, NodeAlternativePlanner},
			Class:     graph.Advisory,
			Run:       stages.AssessRisk,
			Fallback:  RiskFallback,
		},
		{
			ID: NodeDashboardFormatter,
			Reads: []string{
				FieldSelectedCareer, FieldGapAnalysis, FieldTimelineSimulation,
				FieldFinancialAnalysis, FieldRiskAssessment,
			},
			Writes:    []string{FieldDashboardData, FieldSimulationComplete},
			DependsOn: []string{NodeFinancialAdvisor, NodeRiskAssessor},
			Run:       stages.FormatDashboard,
		},
	}
	for _, spec := range specs {
		if err := g.Add(spec); err != nil {
			return nil, err
		}
	}

	err := g.AddBranch(graph.Branch[State]{
		Source:  NodeGapAnalyst,
		Targets: []string{NodeTimelineSimulator, NodeAlternativePlanner},
		Choose: func(s State) string {
			if s.GapAnalysis != nil && s.GapAnalysis.OverallGapScore > AlternativeGapThreshold {
				return NodeAlternativePlanner
			}
			return NodeTimelineSimulator
		},
	})
	if err != nil {
		return nil, err
	}

	if err := g.Finalize(); err != nil {
		return nil, err
	}
	return g, nil
}
