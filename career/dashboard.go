package career

import (
	"context"
	"fmt"
	"time"
)

// FormatDashboard is the dashboard_formatter stage, the sink node. It is a
// deterministic projection of every upstream result into chart-ready shape
// and sets the completion flag; it never calls the model, so a run that
// reached this point cannot fail on provider trouble.
func (s *Stages) FormatDashboard(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	if state.TimelineSimulation == nil {
		return StateDelta{}, fmt.Errorf("dashboard_formatter: timeline missing")
	}

	data := &DashboardData{
		SummaryStats: map[string]string{},
	}

	path := recommendedPath(state.TimelineSimulation)
	for _, year := range path.YearlyPlans {
		for i, m := range year.Milestones {
			data.Milestones = append(data.Milestones, DashboardMilestone{
				ID:          fmt.Sprintf("y%d-m%d", year.YearNumber, i+1),
				Title:       m.Title,
				Description: m.Description,
				Year:        year.YearNumber,
				Quarter:     m.Quarter,
				Type:        m.Type,
				Status:      "pending",
			})
		}
		if year.ExpectedSalaryRange != "" {
			data.SalaryProgression = append(data.SalaryProgression, ChartPoint{
				Label:    fmt.Sprintf("Year %d", year.YearNumber),
				Value:    float64(year.YearNumber),
				Category: year.ExpectedSalaryRange,
			})
		}
	}
	data.SummaryStats["recommended_path"] = path.PathType
	data.SummaryStats["target_role"] = path.FinalTargetRole
	data.SummaryStats["total_years"] = fmt.Sprintf("%d", path.TotalYears)

	if fin := state.FinancialAnalysis; fin != nil {
		for _, year := range fin.YearlyFinancials {
			data.CostVsIncome = append(data.CostVsIncome,
				ChartPoint{Label: fmt.Sprintf("Year %d", year.YearNumber), Value: year.TotalInvestment, Category: "investment"},
				ChartPoint{Label: fmt.Sprintf("Year %d", year.YearNumber), Value: year.ExpectedIncome, Category: "income"},
			)
		}
		data.SummaryStats["total_investment"] = fmt.Sprintf("%.0f", fin.TotalInvestmentRequired)
		data.SummaryStats["break_even_year"] = fmt.Sprintf("%d", fin.BreakEvenYear)
		data.SummaryStats["five_year_roi"] = fmt.Sprintf("%.0f%%", fin.FiveYearROI)
		data.SummaryStats["affordability"] = fin.AffordabilityRating
	}

	if risk := state.RiskAssessment; risk != nil {
		data.SuccessProbabilityGauge = risk.SuccessProbabilityScore
		data.RiskBreakdown = []ChartPoint{
			{Label: "Market", Value: risk.MarketRiskScore},
			{Label: "Personal", Value: risk.PersonalRiskScore},
			{Label: "Financial", Value: risk.FinancialRiskScore},
			{Label: "Technical", Value: risk.TechnicalRiskScore},
		}
		data.TopRecommendations = append(data.TopRecommendations, risk.RiskMitigationPlan...)
	}

	if gap := state.GapAnalysis; gap != nil {
		for _, sg := range gap.TechnicalSkillGaps {
			data.GapAnalysisChart = append(data.GapAnalysisChart, ChartPoint{
				Label:    sg.SkillName,
				Value:    sg.GapSeverity,
				Category: sg.Priority,
			})
		}
		data.SummaryStats["gap_score"] = fmt.Sprintf("%.0f", gap.OverallGapScore)
		data.SummaryStats["gap_category"] = gap.GapCategory
		data.TopRecommendations = append(data.TopRecommendations, gap.TopPriorities...)
	}

	if sel := state.SelectedCareer; sel != nil {
		data.SelectedCareerSummary = map[string]string{
			"career_title": sel.CareerTitle,
			"career_field": sel.CareerField,
			"fit_score":    fmt.Sprintf("%.0f", sel.OverallFitScore),
			"tagline":      sel.Tagline,
		}
	}

	return StateDelta{
		DashboardData:      data,
		SimulationComplete: true,
		Timings:            timing(NodeDashboardFormatter, start),
	}, nil
}
