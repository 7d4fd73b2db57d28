package career

// LanguageProficiency is one spoken-language entry on a profile.
type LanguageProficiency struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"` // Native, Fluent, Intermediate, Basic
}

// CareerProfile is the raw intake form. Field names mirror the frontend
// payload; only the handful of fields the pipeline cannot work without are
// validated, everything else is optional context for the analysis stages.
type CareerProfile struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"user_id,omitempty"`

	// Demographics.
	DateOfBirth     string                `json:"date_of_birth,omitempty"`
	Gender          string                `json:"gender,omitempty"`
	CurrentCountry  string                `json:"current_country,omitempty"`
	CurrentCity     string                `json:"current_city,omitempty"`
	Nationality     string                `json:"nationality,omitempty"`
	LanguagesSpoken []LanguageProficiency `json:"languages_spoken,omitempty"`

	// Academic status.
	CurrentEducationLevel  string  `json:"current_education_level,omitempty"`
	InstitutionName        string  `json:"institution_name,omitempty"`
	CurrentMajor           string  `json:"current_major,omitempty"`
	CurrentGPA             float64 `json:"current_gpa,omitempty" validate:"omitempty,gte=0"`
	GradingScale           string  `json:"grading_scale,omitempty"` // 4.0, 10.0, percentage
	ExpectedGraduationYear int     `json:"expected_graduation_year,omitempty"`

	// Past academic background.
	HighSchoolStream       string             `json:"high_school_stream,omitempty"`
	KeySubjectsStrength    []string           `json:"key_subjects_strength,omitempty"`
	KeySubjectsInterest    []string           `json:"key_subjects_interest,omitempty"`
	StandardizedTestScores map[string]float64 `json:"standardized_test_scores,omitempty"`

	// Career aspirations.
	TargetCareerFields []string `json:"target_career_fields" validate:"required,min=1,dive,required"`
	SpecificRoles      []string `json:"specific_roles" validate:"required,min=1,dive,required"`
	KnownJobTitle      string   `json:"known_job_title,omitempty"`

	// Long-term vision.
	PrimaryCareerGoal     string   `json:"primary_career_goal,omitempty"`
	DesiredRoleLevel      string   `json:"desired_role_level,omitempty"`
	PreferredWorkEnv      []string `json:"preferred_work_env,omitempty"`
	WillingnessToRelocate string   `json:"willingness_to_relocate,omitempty"`

	// Self-assessed skills.
	TechnicalSkills map[string]string `json:"technical_skills,omitempty"` // skill -> Basic/Intermediate/Advanced
	SoftSkills      map[string]int    `json:"soft_skills,omitempty"`      // skill -> 1..5

	// Interests.
	SubjectsOfInterest []string `json:"subjects_of_interest,omitempty"`
	HobbiesActivities  []string `json:"hobbies_activities,omitempty"`

	// Psychometrics.
	WorkPreference string   `json:"work_preference,omitempty"` // People, Data, Things
	WorkStyle      string   `json:"work_style,omitempty"`      // Theoretical, Practical
	RolePreference string   `json:"role_preference,omitempty"` // Structured, Dynamic
	RiskTolerance  string   `json:"risk_tolerance,omitempty" validate:"omitempty,oneof=Low Medium High"`
	LearningStyle  []string `json:"learning_style,omitempty"`

	// Constraints and resources.
	InvestmentCapacity       string  `json:"investment_capacity,omitempty"` // <$5k, $5k-$20k, $20k-$50k, >$50k
	FinancialDependents      bool    `json:"financial_dependents,omitempty"`
	TargetMinSalary          float64 `json:"target_min_salary,omitempty" validate:"omitempty,gte=0"`
	HoursPerWeek             int     `json:"hours_per_week,omitempty" validate:"omitempty,gte=0,lte=100"`
	DesiredWorkforceTimeline string  `json:"desired_workforce_timeline,omitempty"`
	HasMentor                bool    `json:"has_mentor,omitempty"`

	// Market awareness and risk profile.
	MarketAwareness string   `json:"market_awareness,omitempty"`
	CareerConcerns  []string `json:"career_concerns,omitempty"`
	OptimismLevel   string   `json:"optimism_level,omitempty"`

	// Resume data, optional.
	ResumeText string `json:"resume_text,omitempty"`
}

// NormalizedProfile is the profile parser's output: standardized scores,
// inferred skills and a persona classification the downstream stages build
// their prompts on.
type NormalizedProfile struct {
	NormalizedGPA         float64 `json:"normalized_gpa"`
	AcademicStrengthScore float64 `json:"academic_strength_score"`

	InferredTechnicalSkills map[string]string `json:"inferred_technical_skills,omitempty"`
	CombinedTechnicalSkills map[string]string `json:"combined_technical_skills,omitempty"`

	PersonaType   string   `json:"persona_type"`
	PersonaTraits []string `json:"persona_traits,omitempty"`

	CareerReadinessScore    float64 `json:"career_readiness_score"`
	FinancialReadinessScore float64 `json:"financial_readiness_score"`
	SkillReadinessScore     float64 `json:"skill_readiness_score"`

	YearsToGraduation int `json:"years_to_graduation,omitempty"`

	ProfileSummary string `json:"profile_summary"`
}

// MarketRequirement is a single skill or qualification demanded by the
// market for a role.
type MarketRequirement struct {
	SkillOrQualification string `json:"skill_or_qualification"`
	Importance           string `json:"importance"` // Required, Preferred, Nice-to-have
	Description          string `json:"description,omitempty"`
}

// SalaryRange holds per-seniority salary bands for one role.
type SalaryRange struct {
	Currency       string  `json:"currency"`
	EntryLevelMin  float64 `json:"entry_level_min"`
	EntryLevelMax  float64 `json:"entry_level_max"`
	MidLevelMin    float64 `json:"mid_level_min"`
	MidLevelMax    float64 `json:"mid_level_max"`
	SeniorLevelMin float64 `json:"senior_level_min"`
	SeniorLevelMax float64 `json:"senior_level_max"`
	LocationFactor float64 `json:"location_factor,omitempty"`
}

// JobMarketInsight is the market picture for one target role.
type JobMarketInsight struct {
	RoleTitle string `json:"role_title"`
	Field     string `json:"field"`

	HardRequirements []MarketRequirement `json:"hard_requirements,omitempty"`
	SoftRequirements []MarketRequirement `json:"soft_requirements,omitempty"`

	SalaryRange *SalaryRange `json:"salary_range,omitempty"`

	DemandLevel      string `json:"demand_level"`      // Low, Medium, High, Very High
	GrowthOutlook    string `json:"growth_outlook"`    // Declining, Stable, Growing, Booming
	CompetitionLevel string `json:"competition_level"` // Low, Medium, High, Intense

	MinEducation           string   `json:"min_education,omitempty"`
	PreferredEducation     string   `json:"preferred_education,omitempty"`
	RelevantCertifications []string `json:"relevant_certifications,omitempty"`

	TypicalEntryExperience string `json:"typical_entry_experience,omitempty"`

	EmergingSkills  []string `json:"emerging_skills,omitempty"`
	DecliningSkills []string `json:"declining_skills,omitempty"`
}

// MarketInsights aggregates the market scout's findings across all target
// roles.
type MarketInsights struct {
	TargetRoles      []JobMarketInsight `json:"target_roles"`
	AlternativeRoles []JobMarketInsight `json:"alternative_roles,omitempty"`

	TargetCountry          string  `json:"target_country,omitempty"`
	RegionalDemandModifier float64 `json:"regional_demand_modifier,omitempty"`

	IndustryHealth     string   `json:"industry_health,omitempty"`
	TopHiringCompanies []string `json:"top_hiring_companies,omitempty"`

	DataSources []string `json:"data_sources,omitempty"`
}
