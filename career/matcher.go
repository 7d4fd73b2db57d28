package career

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/model"
)

const matcherSystem = `You are an expert career counselor. Given a normalized student profile,
recommend the three best-fitting careers, ranked. Score each fit 0-100 on
overall, skill, interest, market and personality dimensions and explain your
reasoning concretely in terms of the profile.`

// MatchCareers is the career_matcher stage: one schema-constrained
// completion producing the top-3 ranked career fits.
func (s *Stages) MatchCareers(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	normalized := state.NormalizedProfile
	if normalized == nil {
		return StateDelta{}, fmt.Errorf("career_matcher: normalized profile missing")
	}

	req := model.Request{
		System: matcherSystem,
		Prompt: fmt.Sprintf(
			"Profile:\n%s\n\nPersona traits: %v\n\nReturn an analysis_summary, profile_highlights and exactly three career_fits ranked 1-3.",
			normalized.ProfileSummary, normalized.PersonaTraits,
		),
		Schema:      schema("analysis_summary", "profile_highlights", "career_fits", "methodology_explanation", "confidence_level"),
		Temperature: 0.4,
	}

	var result CareerMatcherResult
	if err := completeJSON(ctx, s.Completer, NodeCareerMatcher, req, &result); err != nil {
		return StateDelta{}, err
	}
	if len(result.CareerFits) == 0 {
		return StateDelta{}, graph.Transient(NodeCareerMatcher, fmt.Errorf("completion contained no career fits"))
	}

	// Keep the top three by rank, repairing missing or duplicate ranks.
	sort.SliceStable(result.CareerFits, func(i, j int) bool {
		return result.CareerFits[i].Rank < result.CareerFits[j].Rank
	})
	if len(result.CareerFits) > 3 {
		result.CareerFits = result.CareerFits[:3]
	}
	for i := range result.CareerFits {
		result.CareerFits[i].Rank = i + 1
		result.CareerFits[i].OverallFitScore = clamp(result.CareerFits[i].OverallFitScore, 0, 100)
	}

	return StateDelta{
		CareerMatcherResult: &result,
		Timings:             timing(NodeCareerMatcher, start),
	}, nil
}
