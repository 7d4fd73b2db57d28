package career

import (
	"context"
	"fmt"
	"time"

	"github.com/careersim/careersim-go/model"
)

const financeSystem = `You are a financial planner for career transitions. Project the cost and
income of the recommended career path year by year: investments with a
breakdown, expected income and source, cumulative positions, the break-even
point, five-year ROI and an affordability rating against the candidate's
stated investment capacity.`

// AdviseFinances is the financial_advisor stage. It is advisory: when the
// model is unavailable past the retry budget, FinancialFallback supplies a
// conservative generic projection and the run continues degraded.
func (s *Stages) AdviseFinances(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	if state.TimelineSimulation == nil || state.GapAnalysis == nil {
		return StateDelta{}, fmt.Errorf("financial_advisor: timeline or gap analysis missing")
	}
	path := recommendedPath(state.TimelineSimulation)

	capacity := "unknown"
	var minSalary float64
	if state.CareerProfile != nil {
		if state.CareerProfile.InvestmentCapacity != "" {
			capacity = state.CareerProfile.InvestmentCapacity
		}
		minSalary = state.CareerProfile.TargetMinSalary
	}

	req := model.Request{
		System: financeSystem,
		Prompt: fmt.Sprintf(
			"Path: %s toward %s over %d years.\nInvestment capacity: %s\nTarget minimum salary: %.0f\nGap: %.0f/100\n\nReturn the full financial analysis.",
			path.PathType, path.FinalTargetRole, path.TotalYears,
			capacity, minSalary, state.GapAnalysis.OverallGapScore,
		),
		Schema: schema(
			"total_investment_required", "yearly_financials", "break_even_year",
			"five_year_roi", "ten_year_projected_earnings", "affordability_rating",
			"cost_saving_opportunities", "funding_options",
			"meets_min_salary_target", "investment_by_category",
		),
		Temperature: 0.3,
	}

	var analysis FinancialAnalysis
	if err := completeJSON(ctx, s.Completer, NodeFinancialAdvisor, req, &analysis); err != nil {
		return StateDelta{}, err
	}
	if analysis.AffordabilityRating == "" {
		analysis.AffordabilityRating = AffordFeasible
	}

	return StateDelta{
		FinancialAnalysis: &analysis,
		Timings:           timing(NodeFinancialAdvisor, start),
	}, nil
}

// FinancialFallback is the degraded financial analysis committed when the
// advisor fails past its retry budget: generic but structurally complete
// figures for a typical career transition, flagged by a warning so the
// dashboard can label the section as estimated.
func FinancialFallback(state State) StateDelta {
	analysis := &FinancialAnalysis{
		TotalInvestmentRequired:  15000,
		BreakEvenYear:            2,
		BreakEvenMonth:           8,
		FiveYearROI:              450,
		TenYearProjectedEarnings: 850000,
		AffordabilityRating:      AffordFeasible,
		AffordabilityNotes: []string{
			"Total investment is within typical range for a career transition",
			"Early income from internships can offset some costs",
			"Investment pays back within 2-3 years of full-time employment",
		},
		CostSavingOpportunities: []string{
			"Use free learning resources before paid programs",
			"Look for scholarship programs from technology companies",
			"Use student discounts for tools and software",
		},
		FundingOptions: []string{
			"Income share agreements",
			"Employer tuition reimbursement programs",
			"Government workforce development grants",
		},
		MeetsMinSalaryTarget: true,
		YearsToTargetSalary:  3,
	}

	var cumInvest, cumIncome float64
	incomes := []float64{0, 25000, 65000, 85000, 105000}
	invests := []float64{1200, 850, 1100, 600, 600}
	for year := 1; year <= 5; year++ {
		cumInvest += invests[year-1]
		cumIncome += incomes[year-1]
		source := "None"
		switch {
		case year == 2:
			source = "Internship"
		case year >= 3:
			source = "Full-time job"
		}
		analysis.YearlyFinancials = append(analysis.YearlyFinancials, YearlyFinancials{
			YearNumber:           year,
			TotalInvestment:      invests[year-1],
			ExpectedIncome:       incomes[year-1],
			IncomeSource:         source,
			NetCashFlow:          incomes[year-1] - invests[year-1],
			CumulativeInvestment: cumInvest,
			CumulativeIncome:     cumIncome,
		})
	}

	return StateDelta{
		FinancialAnalysis: analysis,
		Warnings:          []string{"Financial analysis is a generic estimate: the detailed projection was unavailable."},
	}
}

// recommendedPath resolves the path the recommendation points at, falling
// back through realistic, conservative and ambitious.
func recommendedPath(t *TimelinePaths) *CareerPath {
	byType := map[string]*CareerPath{
		PathConservative: t.ConservativePath,
		PathRealistic:    t.RealisticPath,
		PathAmbitious:    t.AmbitiousPath,
	}
	if p := byType[t.RecommendedPath]; p != nil {
		return p
	}
	for _, p := range []*CareerPath{t.RealisticPath, t.ConservativePath, t.AmbitiousPath} {
		if p != nil {
			return p
		}
	}
	return &CareerPath{PathType: PathRealistic, TotalYears: 5}
}
