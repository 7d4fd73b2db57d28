package career

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeGPA(t *testing.T) {
	cases := []struct {
		name  string
		gpa   float64
		scale string
		want  float64
	}{
		{"four point", 3.5, "4.0", 87.5},
		{"ten point", 8.0, "10.0", 80},
		{"percentage", 85, "percentage", 85},
		{"cgpa alias", 9.0, "cgpa_10", 90},
		{"empty scale defaults to 4.0", 3.0, "", 75},
		{"zero gpa", 0, "4.0", 0},
		{"overshoot clamped", 5.0, "4.0", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeGPA(tc.gpa, tc.scale); got != tc.want {
				t.Errorf("NormalizeGPA(%v, %q) = %v, want %v", tc.gpa, tc.scale, got, tc.want)
			}
		})
	}
}

func TestInferSkillsFromMajor(t *testing.T) {
	if skills := InferSkillsFromMajor("Computer Science"); len(skills) == 0 || skills[0] != "Programming" {
		t.Errorf("computer science skills = %v", skills)
	}
	if skills := InferSkillsFromMajor("B.Tech in Data Science"); len(skills) == 0 || skills[0] != "Python" {
		t.Errorf("substring match failed: %v", skills)
	}
	if skills := InferSkillsFromMajor("Philosophy"); skills != nil {
		t.Errorf("unknown major should infer nothing, got %v", skills)
	}
	if skills := InferSkillsFromMajor(""); skills != nil {
		t.Errorf("empty major should infer nothing, got %v", skills)
	}
}

func TestClassifyPersona(t *testing.T) {
	cases := []struct {
		name     string
		profile  CareerProfile
		academic float64
		want     string
	}{
		{
			"strong student on a tight budget",
			CareerProfile{InvestmentCapacity: "<$5k"},
			85,
			PersonaHighPotentialLowResource,
		},
		{
			"resume present means switcher",
			CareerProfile{ResumeText: "Five years in accounting."},
			60,
			PersonaCareerSwitcher,
		},
		{
			"strong and risk hungry",
			CareerProfile{RiskTolerance: "High", InvestmentCapacity: "$20k-$50k"},
			85,
			PersonaFastTrackAmbitious,
		},
		{
			"cautious and structured",
			CareerProfile{RiskTolerance: "Low", RolePreference: "Structured"},
			55,
			PersonaSteadyClimber,
		},
		{
			"default explorer",
			CareerProfile{},
			50,
			PersonaCareerExplorer,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, traits := classifyPersona(&tc.profile, tc.academic)
			if got != tc.want {
				t.Errorf("persona = %q, want %q", got, tc.want)
			}
			if len(traits) == 0 {
				t.Errorf("no traits for %q", got)
			}
		})
	}
}

func TestParseProfileDeterministic(t *testing.T) {
	stages := &Stages{}
	state := NewState(CareerProfile{
		CurrentMajor:       "Computer Science",
		CurrentGPA:         8.5,
		GradingScale:       "10.0",
		InstitutionName:    "IIT Bombay",
		TargetCareerFields: []string{"Technology"},
		SpecificRoles:      []string{"Machine Learning Engineer"},
		TechnicalSkills:    map[string]string{"Python": "Intermediate"},
		RiskTolerance:      "High",
		MarketAwareness:    "High",
	})

	first, err := stages.ParseProfile(context.Background(), state)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	second, err := stages.ParseProfile(context.Background(), state)
	if err != nil {
		t.Fatalf("parse again: %v", err)
	}

	n := first.NormalizedProfile
	if n == nil {
		t.Fatal("no normalized profile")
	}
	if n.NormalizedGPA != 85 {
		t.Errorf("normalized gpa = %v", n.NormalizedGPA)
	}
	if n.AcademicStrengthScore <= 80 {
		t.Errorf("strong profile scored %v", n.AcademicStrengthScore)
	}
	if n.PersonaType != PersonaFastTrackAmbitious {
		t.Errorf("persona = %q", n.PersonaType)
	}
	if n.CombinedTechnicalSkills["Python"] != "Intermediate" {
		t.Errorf("stated skill level overwritten: %v", n.CombinedTechnicalSkills)
	}
	if n.CombinedTechnicalSkills["Algorithms"] != "Basic" {
		t.Errorf("inferred skill missing: %v", n.CombinedTechnicalSkills)
	}
	if !strings.Contains(n.ProfileSummary, "Machine Learning Engineer") {
		t.Errorf("summary omits target role: %q", n.ProfileSummary)
	}

	rawFirst, _ := json.Marshal(first.NormalizedProfile)
	rawSecond, _ := json.Marshal(second.NormalizedProfile)
	if string(rawFirst) != string(rawSecond) {
		t.Errorf("parser output not deterministic")
	}

	if _, ok := first.Timings[NodeProfileParser]; !ok {
		t.Errorf("no timing recorded: %v", first.Timings)
	}
}

func TestParseProfileMissingProfile(t *testing.T) {
	stages := &Stages{}
	if _, err := stages.ParseProfile(context.Background(), State{}); err == nil {
		t.Fatal("expected error for state without profile")
	}
}
