package career

import (
	"context"
	"fmt"
	"time"

	"github.com/careersim/careersim-go/model"
)

const riskSystem = `You are a career-risk analyst. Assess the candidate's probability of
successfully reaching the recommended path's target role. Score overall
success probability and the market, personal, financial and technical risk
categories 0-100, list concrete risk factors with mitigations, and sketch
best, worst and most likely scenarios.`

// AssessRisk is the risk_assessor stage. Advisory like the financial
// advisor: RiskFallback supplies a profile-derived estimate when the model
// fails past the retry budget.
func (s *Stages) AssessRisk(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	if state.TimelineSimulation == nil || state.GapAnalysis == nil {
		return StateDelta{}, fmt.Errorf("risk_assessor: timeline or gap analysis missing")
	}
	path := recommendedPath(state.TimelineSimulation)

	persona := ""
	if state.NormalizedProfile != nil {
		persona = state.NormalizedProfile.ProfileSummary
	}

	req := model.Request{
		System: riskSystem,
		Prompt: fmt.Sprintf(
			"Candidate:\n%s\n\nPath: %s toward %s over %d years.\nGap: %.0f/100 (%s)\n\nReturn the full risk assessment.",
			persona, path.PathType, path.FinalTargetRole, path.TotalYears,
			state.GapAnalysis.OverallGapScore, state.GapAnalysis.GapCategory,
		),
		Schema: schema(
			"success_probability_score", "success_reasoning", "confidence_interval",
			"risk_factors", "market_risk_score", "personal_risk_score",
			"financial_risk_score", "technical_risk_score",
			"positive_factors", "negative_factors", "risk_mitigation_plan",
			"best_case_scenario", "worst_case_scenario", "most_likely_scenario",
		),
		Temperature: 0.3,
	}

	var assessment RiskAssessment
	if err := completeJSON(ctx, s.Completer, NodeRiskAssessor, req, &assessment); err != nil {
		return StateDelta{}, err
	}

	assessment.SuccessProbabilityScore = clamp(assessment.SuccessProbabilityScore, 0, 100)
	assessment.MarketRiskScore = clamp(assessment.MarketRiskScore, 0, 100)
	assessment.PersonalRiskScore = clamp(assessment.PersonalRiskScore, 0, 100)
	assessment.FinancialRiskScore = clamp(assessment.FinancialRiskScore, 0, 100)
	assessment.TechnicalRiskScore = clamp(assessment.TechnicalRiskScore, 0, 100)

	return StateDelta{
		RiskAssessment: &assessment,
		Timings:        timing(NodeRiskAssessor, start),
	}, nil
}

// RiskFallback is the degraded risk assessment: the success probability is
// derived from the readiness scores already in the state, adjusted down by
// the gap, so even the fallback reflects this candidate rather than a
// constant.
func RiskFallback(state State) StateDelta {
	base := 60.0
	if n := state.NormalizedProfile; n != nil {
		base = (n.AcademicStrengthScore + n.CareerReadinessScore + n.SkillReadinessScore) / 3
	}
	if g := state.GapAnalysis; g != nil {
		base = clamp(base-g.OverallGapScore*0.3+20, 30, 100)
	}

	assessment := &RiskAssessment{
		SuccessProbabilityScore: base,
		ConfidenceInterval:      fmt.Sprintf("%.0f-%.0f%%", clamp(base-10, 20, 100), clamp(base+15, 0, 95)),
		MarketRiskScore:         35,
		PersonalRiskScore:       40,
		FinancialRiskScore:      45,
		TechnicalRiskScore:      50,
		PositiveFactors: []string{
			"Clear career goals and target role identified",
			"Educational foundation in a relevant field",
		},
		NegativeFactors: []string{
			"Gap between current skills and market requirements",
			"Limited hands-on industry experience",
		},
		ComparedToAverage: "Average",
		PeerSuccessRate:   65,
		RiskMitigationPlan: []string{
			"Build portfolio projects to demonstrate practical abilities",
			"Seek internship opportunities for real-world experience",
			"Find a mentor in the target field for guidance",
		},
		RiskFactors: []RiskFactor{
			{
				FactorName:        "Market Saturation",
				Category:          "market",
				Severity:          "medium",
				Probability:       45,
				ImpactDescription: "High competition for entry-level positions in the target field",
			},
			{
				FactorName:        "Financial Pressure",
				Category:          "financial",
				Severity:          "medium",
				Probability:       50,
				ImpactDescription: "Investment in training may strain finances during the transition",
			},
		},
	}

	return StateDelta{
		RiskAssessment: assessment,
		Warnings:       []string{"Risk assessment is a generic estimate: the detailed analysis was unavailable."},
	}
}
