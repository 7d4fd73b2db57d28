package career

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// majorSkills maps academic majors to the technical skills they imply.
// Matching is substring-based and case-insensitive.
var majorSkills = map[string][]string{
	"computer science":        {"Programming", "Data Structures", "Algorithms", "Software Development"},
	"software engineering":    {"Programming", "Software Development", "System Design", "Testing"},
	"information technology":  {"Programming", "Networking", "Database Management", "System Administration"},
	"data science":            {"Python", "Statistics", "Machine Learning", "Data Analysis"},
	"artificial intelligence": {"Python", "Machine Learning", "Deep Learning", "Mathematics"},
	"machine learning":        {"Python", "Statistics", "Deep Learning", "Mathematics"},
	"cybersecurity":           {"Networking", "Security Tools", "Linux", "Cryptography"},
	"electrical engineering":  {"Circuit Design", "Electronics", "Signal Processing", "MATLAB"},
	"mechanical engineering":  {"CAD", "Thermodynamics", "Materials Science", "Manufacturing"},
	"civil engineering":       {"AutoCAD", "Structural Analysis", "Project Management", "Surveying"},
	"business administration": {"Business Strategy", "Management", "Financial Analysis", "Marketing"},
	"finance":                 {"Financial Modeling", "Excel", "Accounting", "Investment Analysis"},
	"marketing":               {"Digital Marketing", "Market Research", "Analytics", "Content Strategy"},
	"economics":               {"Statistical Analysis", "Economic Modeling", "Data Analysis", "Research"},
	"physics":                 {"Mathematics", "Data Analysis", "Programming", "Research Methods"},
	"mathematics":             {"Mathematical Modeling", "Statistics", "Programming", "Problem Solving"},
	"biology":                 {"Lab Techniques", "Data Analysis", "Research Methods", "Bioinformatics"},
	"graphic design":          {"Adobe Creative Suite", "UI Design", "Visual Communication", "Typography"},
	"ux design":               {"User Research", "Wireframing", "Prototyping", "Usability Testing"},
}

// gradingScales maps scale identifiers to their maximum value for
// normalization to 0-100.
var gradingScales = map[string]float64{
	"4.0":        4.0,
	"gpa_4":      4.0,
	"10.0":       10.0,
	"cgpa_10":    10.0,
	"percentage": 100.0,
}

// Persona labels assigned by the profile parser.
const (
	PersonaHighPotentialLowResource = "High-Potential, Low-Resource Student"
	PersonaCareerSwitcher           = "Career Switcher"
	PersonaFastTrackAmbitious       = "Fast-Track Ambitious"
	PersonaSteadyClimber            = "Steady Climber"
	PersonaCareerExplorer           = "Career Explorer"
)

// ParseProfile is the profile_parser stage. It is fully deterministic:
// GPA normalization, major-based skill inference, persona classification
// and readiness scoring all derive from the raw profile with no model
// call, so two runs over the same profile produce identical output.
func (s *Stages) ParseProfile(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	profile := state.CareerProfile
	if profile == nil {
		return StateDelta{}, fmt.Errorf("profile_parser: no career profile in state")
	}

	gpa := NormalizeGPA(profile.CurrentGPA, profile.GradingScale)
	inferred := InferSkillsFromMajor(profile.CurrentMajor)

	combined := make(map[string]string, len(profile.TechnicalSkills)+len(inferred))
	for skill, level := range profile.TechnicalSkills {
		combined[skill] = level
	}
	inferredMap := make(map[string]string, len(inferred))
	for _, skill := range inferred {
		inferredMap[skill] = "Basic"
		if _, stated := combined[skill]; !stated {
			combined[skill] = "Basic"
		}
	}

	academic := academicStrength(gpa, profile.StandardizedTestScores, profile.InstitutionName)
	persona, traits := classifyPersona(profile, academic)

	yearsToGrad := 0
	if profile.ExpectedGraduationYear > 0 {
		if y := profile.ExpectedGraduationYear - time.Now().Year(); y > 0 {
			yearsToGrad = y
		}
	}

	normalized := &NormalizedProfile{
		NormalizedGPA:           gpa,
		AcademicStrengthScore:   academic,
		InferredTechnicalSkills: inferredMap,
		CombinedTechnicalSkills: combined,
		PersonaType:             persona,
		PersonaTraits:           traits,
		CareerReadinessScore:    careerReadiness(profile, academic),
		FinancialReadinessScore: financialReadiness(profile),
		SkillReadinessScore:     skillReadiness(combined),
		YearsToGraduation:       yearsToGrad,
	}
	normalized.ProfileSummary = summarize(profile, normalized)

	return StateDelta{
		NormalizedProfile: normalized,
		Timings:           timing(NodeProfileParser, start),
	}, nil
}

// NormalizeGPA converts a GPA on any supported grading scale to 0-100.
// An unknown or empty scale is treated as 4.0, matching the intake form's
// default.
func NormalizeGPA(gpa float64, scale string) float64 {
	if gpa <= 0 {
		return 0
	}
	max := 4.0
	lower := strings.ToLower(strings.TrimSpace(scale))
	for key, m := range gradingScales {
		if lower != "" && (strings.Contains(lower, key) || strings.Contains(key, lower)) {
			max = m
			break
		}
	}
	return clamp(gpa/max*100, 0, 100)
}

// InferSkillsFromMajor returns the technical skills implied by an academic
// major, or nil when the major is unrecognized.
func InferSkillsFromMajor(major string) []string {
	lower := strings.ToLower(strings.TrimSpace(major))
	if lower == "" {
		return nil
	}
	// Exact-first keeps "machine learning" from matching via "learning".
	if skills, ok := majorSkills[lower]; ok {
		return append([]string{}, skills...)
	}
	keys := make([]string, 0, len(majorSkills))
	for key := range majorSkills {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return append([]string{}, majorSkills[key]...)
		}
	}
	return nil
}

// academicStrength blends normalized GPA (60%), standardized test scores
// (20%) and institution reputation (20%).
func academicStrength(gpa float64, tests map[string]float64, institution string) float64 {
	score := gpa * 0.6

	if len(tests) > 0 {
		var component float64
		var count int
		for test, value := range tests {
			lower := strings.ToLower(test)
			switch {
			case strings.Contains(lower, "sat"):
				component += value / 1600 * 100
				count++
			case strings.Contains(lower, "gre"):
				component += value / 340 * 100
				count++
			case strings.Contains(lower, "gmat"):
				component += value / 800 * 100
				count++
			}
		}
		if count > 0 {
			score += component / float64(count) * 0.2
		} else {
			score += gpa * 0.2
		}
	} else {
		score += gpa * 0.2
	}

	inst := 70.0
	lower := strings.ToLower(institution)
	switch {
	case containsAny(lower, "iit", "mit", "stanford", "harvard", "berkeley", "oxford", "cambridge"):
		inst = 95
	case containsAny(lower, "nit", "bits", "university of", "institute of technology"):
		inst = 80
	}
	score += inst * 0.2

	return clamp(score, 0, 100)
}

// classifyPersona applies the rule table in priority order; Career Explorer
// is the catch-all.
func classifyPersona(p *CareerProfile, academic float64) (string, []string) {
	lowBudget := p.InvestmentCapacity == "<$5k"
	switching := p.ResumeText != "" || p.KnownJobTitle != ""

	switch {
	case academic >= 75 && lowBudget:
		return PersonaHighPotentialLowResource, []string{"Academically strong", "Budget-conscious", "Scholarship candidate"}
	case switching:
		return PersonaCareerSwitcher, []string{"Transferable skills", "Industry experience", "Clear motivation"}
	case academic >= 75 && p.RiskTolerance == "High":
		return PersonaFastTrackAmbitious, []string{"High achiever", "Risk-taker", "Growth-oriented"}
	case p.RiskTolerance == "Low" && p.RolePreference == "Structured":
		return PersonaSteadyClimber, []string{"Methodical", "Risk-averse", "Stability-focused"}
	default:
		return PersonaCareerExplorer, []string{"Curious", "Versatile", "Discovery-oriented"}
	}
}

func careerReadiness(p *CareerProfile, academic float64) float64 {
	score := academic * 0.5
	if len(p.SpecificRoles) > 0 {
		score += 15
	}
	if p.PrimaryCareerGoal != "" {
		score += 10
	}
	if p.HasMentor {
		score += 10
	}
	switch p.MarketAwareness {
	case "High":
		score += 15
	case "Medium":
		score += 8
	}
	return clamp(score, 0, 100)
}

func financialReadiness(p *CareerProfile) float64 {
	score := 40.0
	switch p.InvestmentCapacity {
	case ">$50k":
		score = 90
	case "$20k-$50k":
		score = 75
	case "$5k-$20k":
		score = 55
	case "<$5k":
		score = 30
	}
	if p.FinancialDependents {
		score -= 10
	}
	return clamp(score, 0, 100)
}

func skillReadiness(combined map[string]string) float64 {
	if len(combined) == 0 {
		return 20
	}
	var total float64
	for _, level := range combined {
		switch level {
		case "Advanced":
			total += 90
		case "Intermediate":
			total += 60
		default:
			total += 30
		}
	}
	return clamp(total/float64(len(combined)), 0, 100)
}

// summarize renders the narrative paragraph downstream prompts embed.
func summarize(p *CareerProfile, n *NormalizedProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s studying %s", n.PersonaType, orUnspecified(p.CurrentMajor))
	if p.InstitutionName != "" {
		fmt.Fprintf(&sb, " at %s", p.InstitutionName)
	}
	fmt.Fprintf(&sb, ". Normalized GPA %.1f/100, academic strength %.1f/100.", n.NormalizedGPA, n.AcademicStrengthScore)
	if len(p.SpecificRoles) > 0 {
		fmt.Fprintf(&sb, " Targeting %s", strings.Join(p.SpecificRoles, ", "))
		if len(p.TargetCareerFields) > 0 {
			fmt.Fprintf(&sb, " in %s", strings.Join(p.TargetCareerFields, ", "))
		}
		sb.WriteString(".")
	}
	skills := make([]string, 0, len(n.CombinedTechnicalSkills))
	for skill := range n.CombinedTechnicalSkills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	if len(skills) > 0 {
		fmt.Fprintf(&sb, " Skills: %s.", strings.Join(skills, ", "))
	}
	fmt.Fprintf(&sb, " Readiness: career %.0f, skill %.0f, financial %.0f.",
		n.CareerReadinessScore, n.SkillReadinessScore, n.FinancialReadinessScore)
	return sb.String()
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func orUnspecified(s string) string {
	if s == "" {
		return "an unspecified major"
	}
	return s
}

// timing records one stage duration in milliseconds.
func timing(node string, start time.Time) map[string]float64 {
	return map[string]float64{node: float64(time.Since(start).Microseconds()) / 1000}
}
