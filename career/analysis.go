package career

// SkillGap is one identified gap between the profile and market demand.
type SkillGap struct {
	SkillName            string   `json:"skill_name"`
	CurrentLevel         string   `json:"current_level"` // None, Basic, Intermediate, Advanced
	RequiredLevel        string   `json:"required_level"`
	GapSeverity          float64  `json:"gap_severity"` // 0-100
	EstimatedTimeToClose string   `json:"estimated_time_to_close,omitempty"`
	RecommendedResources []string `json:"recommended_resources,omitempty"`
	Reasoning            string   `json:"reasoning,omitempty"`
	Priority             string   `json:"priority,omitempty"` // high, medium, low
	LearningPath         []string `json:"learning_path,omitempty"`
}

// Gap categories derived from the overall gap score.
const (
	GapMinimal     = "minimal"     // score < 20
	GapManageable  = "manageable"  // score < 50
	GapSignificant = "significant" // score < 80
	GapSevere      = "severe"      // score >= 80
)

// GapCategory maps an overall gap score onto its category label.
func GapCategory(score float64) string {
	switch {
	case score < 20:
		return GapMinimal
	case score < 50:
		return GapManageable
	case score < 80:
		return GapSignificant
	default:
		return GapSevere
	}
}

// GapAnalysis is the gap analyst's verdict on profile versus market.
type GapAnalysis struct {
	OverallGapScore   float64 `json:"overall_gap_score"` // 0-100, 100 is maximum gap
	GapCategory       string  `json:"gap_category"`
	AnalysisReasoning string  `json:"analysis_reasoning,omitempty"`

	TechnicalSkillGaps []SkillGap `json:"technical_skill_gaps,omitempty"`
	SoftSkillGaps      []SkillGap `json:"soft_skill_gaps,omitempty"`

	EducationGap      string   `json:"education_gap,omitempty"`
	CertificationGaps []string `json:"certification_gaps,omitempty"`

	ExperienceGapYears float64 `json:"experience_gap_years,omitempty"`

	CriticalBottlenecks []string `json:"critical_bottlenecks,omitempty"`
	TimelineBottlenecks []string `json:"timeline_bottlenecks,omitempty"`

	ExistingStrengths     []string `json:"existing_strengths,omitempty"`
	CompetitiveAdvantages []string `json:"competitive_advantages,omitempty"`

	PersonalityFrictions []string `json:"personality_frictions,omitempty"`

	TopPriorities []string `json:"top_priorities,omitempty"`
	QuickWins     []string `json:"quick_wins,omitempty"`
}

// YearMilestone is one milestone within a year of a career path.
type YearMilestone struct {
	Quarter        int      `json:"quarter"` // 1-4
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Type           string   `json:"type,omitempty"` // education, skill, career, certification, project
	EstimatedCost  float64  `json:"estimated_cost,omitempty"`
	EstimatedHours int      `json:"estimated_hours,omitempty"`
	Resources      []string `json:"resources,omitempty"`
	SuccessMetrics []string `json:"success_metrics,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
}

// YearPlan is a single year of a simulated career path.
type YearPlan struct {
	YearNumber int    `json:"year_number"`
	YearLabel  string `json:"year_label,omitempty"`
	Phase      string `json:"phase,omitempty"` // Preparation, Transition, Growth

	PrimaryFocus string          `json:"primary_focus,omitempty"`
	Milestones   []YearMilestone `json:"milestones,omitempty"`

	ExpectedRole        string   `json:"expected_role,omitempty"`
	ExpectedSalaryRange string   `json:"expected_salary_range,omitempty"`
	KeySkillsAcquired   []string `json:"key_skills_acquired,omitempty"`

	PotentialSetbacks []string `json:"potential_setbacks,omitempty"`
	YearSummary       string   `json:"year_summary,omitempty"`
}

// Path types for CareerPath.
const (
	PathConservative = "conservative"
	PathRealistic    = "realistic"
	PathAmbitious    = "ambitious"
)

// CareerPath is one complete simulated trajectory toward the selected
// career.
type CareerPath struct {
	PathType  string `json:"path_type"` // conservative, realistic, ambitious
	PathLabel string `json:"path_label,omitempty"`

	TotalYears  int        `json:"total_years"`
	YearlyPlans []YearPlan `json:"yearly_plans,omitempty"`

	FinalTargetRole     string  `json:"final_target_role,omitempty"`
	FinalExpectedSalary float64 `json:"final_expected_salary,omitempty"`

	MajorMilestones []string `json:"major_milestones,omitempty"`
	Assumptions     []string `json:"assumptions,omitempty"`
}

// TimelinePaths bundles the three simulated paths plus the recommendation.
type TimelinePaths struct {
	ConservativePath *CareerPath `json:"conservative_path,omitempty"`
	RealisticPath    *CareerPath `json:"realistic_path,omitempty"`
	AmbitiousPath    *CareerPath `json:"ambitious_path,omitempty"`

	RecommendedPath      string `json:"recommended_path,omitempty"` // which path type
	RecommendationReason string `json:"recommendation_reason,omitempty"`

	AlignmentScore float64 `json:"alignment_score,omitempty"`
}

// CostBreakdown is one cost item in a yearly financial projection.
type CostBreakdown struct {
	ItemName    string  `json:"item_name"`
	Category    string  `json:"category"` // education, certification, tools, living
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	IsRecurring bool    `json:"is_recurring,omitempty"`
	Frequency   string  `json:"frequency,omitempty"`
}

// YearlyFinancials is the money picture for a single year of the path.
type YearlyFinancials struct {
	YearNumber int `json:"year_number"`

	TotalInvestment float64         `json:"total_investment"`
	CostBreakdown   []CostBreakdown `json:"cost_breakdown,omitempty"`

	ExpectedIncome float64 `json:"expected_income"`
	IncomeSource   string  `json:"income_source,omitempty"`

	NetCashFlow          float64 `json:"net_cash_flow"`
	CumulativeInvestment float64 `json:"cumulative_investment"`
	CumulativeIncome     float64 `json:"cumulative_income"`
}

// Affordability ratings for FinancialAnalysis.
const (
	AffordComfortable = "comfortable"
	AffordFeasible    = "feasible"
	AffordStretch     = "stretch"
	AffordUnfeasible  = "unfeasible"
)

// FinancialAnalysis is the financial advisor's projection for the path.
type FinancialAnalysis struct {
	TotalInvestmentRequired float64            `json:"total_investment_required"`
	InvestmentReasoning     string             `json:"investment_reasoning,omitempty"`
	YearlyFinancials        []YearlyFinancials `json:"yearly_financials,omitempty"`

	BreakEvenYear            int     `json:"break_even_year"`
	BreakEvenMonth           int     `json:"break_even_month,omitempty"`
	FiveYearROI              float64 `json:"five_year_roi"` // percentage
	TenYearProjectedEarnings float64 `json:"ten_year_projected_earnings,omitempty"`

	AffordabilityRating string   `json:"affordability_rating"`
	AffordabilityNotes  []string `json:"affordability_notes,omitempty"`

	CostSavingOpportunities []string `json:"cost_saving_opportunities,omitempty"`
	FundingOptions          []string `json:"funding_options,omitempty"`

	MeetsMinSalaryTarget bool `json:"meets_min_salary_target"`
	YearsToTargetSalary  int  `json:"years_to_target_salary,omitempty"`

	InvestmentByCategory map[string]float64 `json:"investment_by_category,omitempty"`
}

// RiskFactor is one risk in the assessment.
type RiskFactor struct {
	FactorName           string   `json:"factor_name"`
	Category             string   `json:"category"`    // market, personal, financial, technical
	Severity             string   `json:"severity"`    // low, medium, high, critical
	Probability          float64  `json:"probability"` // 0-100
	ImpactDescription    string   `json:"impact_description,omitempty"`
	Reasoning            string   `json:"reasoning,omitempty"`
	MitigationStrategies []string `json:"mitigation_strategies,omitempty"`
}

// RiskAssessment is the risk assessor's overall verdict.
type RiskAssessment struct {
	SuccessProbabilityScore float64 `json:"success_probability_score"` // 0-100
	SuccessReasoning        string  `json:"success_reasoning,omitempty"`
	ConfidenceInterval      string  `json:"confidence_interval,omitempty"`

	RiskFactors []RiskFactor `json:"risk_factors,omitempty"`

	MarketRiskScore    float64 `json:"market_risk_score"`
	PersonalRiskScore  float64 `json:"personal_risk_score"`
	FinancialRiskScore float64 `json:"financial_risk_score"`
	TechnicalRiskScore float64 `json:"technical_risk_score"`

	PositiveFactors []string `json:"positive_factors,omitempty"`
	NegativeFactors []string `json:"negative_factors,omitempty"`

	ComparedToAverage string  `json:"compared_to_average,omitempty"`
	PeerSuccessRate   float64 `json:"peer_success_rate,omitempty"`

	RiskMitigationPlan []string `json:"risk_mitigation_plan,omitempty"`
	ContingencyPlans   []string `json:"contingency_plans,omitempty"`
	Recommendations    []string `json:"recommendations,omitempty"`

	BestCaseScenario   string `json:"best_case_scenario,omitempty"`
	WorstCaseScenario  string `json:"worst_case_scenario,omitempty"`
	MostLikelyScenario string `json:"most_likely_scenario,omitempty"`
}

// CareerFitReasoning explains why a career was recommended.
type CareerFitReasoning struct {
	StrengthsAlignment   []string `json:"strengths_alignment,omitempty"`
	InterestMatch        []string `json:"interest_match,omitempty"`
	SkillTransferability []string `json:"skill_transferability,omitempty"`
	MarketDemandReasons  []string `json:"market_demand_reasons,omitempty"`
	PotentialChallenges  []string `json:"potential_challenges,omitempty"`
	WhyNow               string   `json:"why_now,omitempty"`
}

// CareerFit is one ranked career recommendation from the matcher.
type CareerFit struct {
	Rank        int    `json:"rank"`
	CareerTitle string `json:"career_title"`
	CareerField string `json:"career_field"`

	OverallFitScore     float64 `json:"overall_fit_score"`
	SkillFitScore       float64 `json:"skill_fit_score,omitempty"`
	InterestFitScore    float64 `json:"interest_fit_score,omitempty"`
	MarketFitScore      float64 `json:"market_fit_score,omitempty"`
	PersonalityFitScore float64 `json:"personality_fit_score,omitempty"`

	Tagline   string             `json:"tagline,omitempty"`
	Reasoning CareerFitReasoning `json:"reasoning,omitempty"`

	TypicalSalaryRange string `json:"typical_salary_range,omitempty"`
	TimeToEntry        string `json:"time_to_entry,omitempty"`
	DifficultyLevel    string `json:"difficulty_level,omitempty"`

	TopReasons         []string `json:"top_3_reasons,omitempty"`
	KeySkillsNeeded    []string `json:"key_skills_needed,omitempty"`
	ImmediateNextSteps []string `json:"immediate_next_steps,omitempty"`
}

// CareerMatcherResult is the matcher's full output: top-3 ranked fits plus
// the analysis narrative.
type CareerMatcherResult struct {
	AnalysisSummary        string      `json:"analysis_summary"`
	ProfileHighlights      []string    `json:"profile_highlights,omitempty"`
	CareerFits             []CareerFit `json:"career_fits"`
	MethodologyExplanation string      `json:"methodology_explanation,omitempty"`
	ConfidenceLevel        string      `json:"confidence_level,omitempty"`
}

// AlternativeCareer is a more achievable career suggested when the gap to
// the selected one is too large.
type AlternativeCareer struct {
	RoleTitle            string   `json:"role_title"`
	Field                string   `json:"field"`
	SimilarityToOriginal float64  `json:"similarity_to_original"` // 0-100
	ReasonsSuggested     []string `json:"reasons_suggested,omitempty"`
	GapScore             float64  `json:"gap_score"` // lower is better
	TransitionDifficulty string   `json:"transition_difficulty"` // Easy, Moderate, Challenging
}

// DashboardMilestone is a milestone shaped for roadmap visualization.
type DashboardMilestone struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status"` // pending, in_progress, completed
}

// ChartPoint is one data point for dashboard charts.
type ChartPoint struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Category string  `json:"category,omitempty"`
}

// DashboardData is the deterministic projection of every upstream result
// into the shape the frontend renders.
type DashboardData struct {
	Milestones []DashboardMilestone `json:"milestones,omitempty"`

	SalaryProgression []ChartPoint `json:"salary_progression,omitempty"`
	CostVsIncome      []ChartPoint `json:"cost_vs_income,omitempty"`
	RiskBreakdown     []ChartPoint `json:"risk_breakdown,omitempty"`
	GapAnalysisChart  []ChartPoint `json:"gap_analysis_chart,omitempty"`

	SuccessProbabilityGauge float64 `json:"success_probability_gauge"`

	SummaryStats map[string]string `json:"summary_stats,omitempty"`

	TopRecommendations []string `json:"top_recommendations,omitempty"`

	SelectedCareerSummary map[string]string `json:"selected_career_summary,omitempty"`
}
