// Package career implements the seven-stage career simulation workflow on
// top of the graph executor: profile parsing, career matching, market
// scouting, gap analysis, a branched timeline-or-alternatives plan, parallel
// financial and risk analysis, and a dashboard projection.
//
// The workflow runs in two phases. SubmitProfile executes through the gap
// analyst and pauses with the top-3 career fits; SelectCareer resumes the
// saved session with the chosen career and runs the simulation to the end.
package career

import "sort"

// State field names, shared between the state JSON encoding and the graph's
// read/write declarations.
const (
	FieldCareerProfile       = "career_profile"
	FieldNormalizedProfile   = "normalized_profile"
	FieldCareerMatcherResult = "career_matcher_result"
	FieldSelectedCareerIndex = "selected_career_index"
	FieldSelectedCareer      = "selected_career"
	FieldMarketInsights      = "market_insights"
	FieldGapAnalysis         = "gap_analysis"
	FieldAlternativeCareers  = "alternative_careers"
	FieldTimelineSimulation  = "timeline_simulation"
	FieldFinancialAnalysis   = "financial_analysis"
	FieldRiskAssessment      = "risk_assessment"
	FieldDashboardData       = "dashboard_data"
	FieldSimulationComplete  = "simulation_complete"
)

// State is the shared record accumulated across the workflow. Field names
// are fixed: the dashboard frontend and report generation consume this JSON
// directly.
//
// CareerProfile and the selection fields are seeded by the service; every
// other payload field is owned by exactly one stage (the two branch arms
// share timeline_simulation, of which at most one runs). Warnings, Errors
// and ProcessingTimeMS are append-only channels any stage may contribute
// to.
type State struct {
	CareerProfile *CareerProfile `json:"career_profile,omitempty"`

	NormalizedProfile   *NormalizedProfile   `json:"normalized_profile,omitempty"`
	CareerMatcherResult *CareerMatcherResult `json:"career_matcher_result,omitempty"`

	SelectedCareerIndex int        `json:"selected_career_index"`
	SelectedCareer      *CareerFit `json:"selected_career,omitempty"`

	MarketInsights     *MarketInsights     `json:"market_insights,omitempty"`
	GapAnalysis        *GapAnalysis        `json:"gap_analysis,omitempty"`
	AlternativeCareers []AlternativeCareer `json:"alternative_careers,omitempty"`
	TimelineSimulation *TimelinePaths      `json:"timeline_simulation,omitempty"`
	FinancialAnalysis  *FinancialAnalysis  `json:"financial_analysis,omitempty"`
	RiskAssessment     *RiskAssessment     `json:"risk_assessment,omitempty"`
	DashboardData      *DashboardData      `json:"dashboard_data,omitempty"`

	Warnings         []string           `json:"warnings,omitempty"`
	Errors           []string           `json:"errors,omitempty"`
	ProcessingTimeMS map[string]float64 `json:"processing_time_ms,omitempty"`

	SimulationComplete bool `json:"simulation_complete"`
}

// NewState builds the initial state for a profile. The selection index is
// -1 until SelectCareer injects a choice.
func NewState(profile CareerProfile) State {
	return State{
		CareerProfile:       &profile,
		SelectedCareerIndex: -1,
	}
}

// StateDelta carries one stage's contribution. Nil pointer fields are
// untouched; Warnings, Errors and Timings are folded into the shared
// channels and never count as owned writes.
type StateDelta struct {
	NormalizedProfile   *NormalizedProfile
	CareerMatcherResult *CareerMatcherResult
	MarketInsights      *MarketInsights
	GapAnalysis         *GapAnalysis
	AlternativeCareers  []AlternativeCareer
	TimelineSimulation  *TimelinePaths
	FinancialAnalysis   *FinancialAnalysis
	RiskAssessment      *RiskAssessment
	DashboardData       *DashboardData
	SimulationComplete  bool

	Warnings []string
	Errors   []string
	Timings  map[string]float64
}

// Keys reports the owned fields this delta sets, in sorted order. The
// append-only channels are deliberately absent: every stage may contribute
// to them without declaring a write.
func (d StateDelta) Keys() []string {
	var keys []string
	if d.NormalizedProfile != nil {
		keys = append(keys, FieldNormalizedProfile)
	}
	if d.CareerMatcherResult != nil {
		keys = append(keys, FieldCareerMatcherResult)
	}
	if d.MarketInsights != nil {
		keys = append(keys, FieldMarketInsights)
	}
	if d.GapAnalysis != nil {
		keys = append(keys, FieldGapAnalysis)
	}
	if len(d.AlternativeCareers) > 0 {
		keys = append(keys, FieldAlternativeCareers)
	}
	if d.TimelineSimulation != nil {
		keys = append(keys, FieldTimelineSimulation)
	}
	if d.FinancialAnalysis != nil {
		keys = append(keys, FieldFinancialAnalysis)
	}
	if d.RiskAssessment != nil {
		keys = append(keys, FieldRiskAssessment)
	}
	if d.DashboardData != nil {
		keys = append(keys, FieldDashboardData)
	}
	if d.SimulationComplete {
		keys = append(keys, FieldSimulationComplete)
	}
	sort.Strings(keys)
	return keys
}
