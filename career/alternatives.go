package career

import (
	"context"
	"fmt"
	"time"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/model"
)

const alternativesSystem = `You are a pragmatic career counselor. The candidate's selected career has
a very high gap score, so the direct route is unrealistic on their
timeline. Suggest three to five alternative careers that are clearly more
achievable yet aligned with their interests, each with a similarity score,
its own gap score and a transition difficulty. Also build a conservative
multi-year plan toward the single most achievable alternative.`

// PlanAlternatives is the alternative_planner stage, the branch arm taken
// when the gap exceeds the threshold. Besides the alternatives list it
// writes a conservative timeline for the nearest alternative, so the
// downstream financial and risk stages always have a path to analyze.
func (s *Stages) PlanAlternatives(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	gap := state.GapAnalysis
	if gap == nil || state.NormalizedProfile == nil {
		return StateDelta{}, fmt.Errorf("alternative_planner: gap analysis or profile missing")
	}
	target := selectedCareerTitle(state)

	req := model.Request{
		System: alternativesSystem,
		Prompt: fmt.Sprintf(
			"Candidate:\n%s\n\nOriginal target: %s\nGap: %.0f/100 (%s)\nBottlenecks: %v\n\nReturn alternative_careers (3-5 entries) and a conservative_path toward the most achievable one.",
			state.NormalizedProfile.ProfileSummary, target,
			gap.OverallGapScore, gap.GapCategory, gap.CriticalBottlenecks,
		),
		Schema:      schema("alternative_careers", "conservative_path", "recommendation_reason"),
		Temperature: 0.5,
	}

	var out struct {
		AlternativeCareers   []AlternativeCareer `json:"alternative_careers"`
		ConservativePath     *CareerPath         `json:"conservative_path"`
		RecommendationReason string              `json:"recommendation_reason"`
	}
	if err := completeJSON(ctx, s.Completer, NodeAlternativePlanner, req, &out); err != nil {
		return StateDelta{}, err
	}
	if len(out.AlternativeCareers) == 0 {
		return StateDelta{}, graph.Transient(NodeAlternativePlanner, fmt.Errorf("completion contained no alternatives"))
	}
	if len(out.AlternativeCareers) > 5 {
		out.AlternativeCareers = out.AlternativeCareers[:5]
	}
	for i := range out.AlternativeCareers {
		out.AlternativeCareers[i].SimilarityToOriginal = clamp(out.AlternativeCareers[i].SimilarityToOriginal, 0, 100)
		out.AlternativeCareers[i].GapScore = clamp(out.AlternativeCareers[i].GapScore, 0, 100)
	}

	nearest := out.AlternativeCareers[0].RoleTitle
	paths := &TimelinePaths{
		ConservativePath:     out.ConservativePath,
		RecommendedPath:      PathConservative,
		RecommendationReason: out.RecommendationReason,
	}
	if paths.ConservativePath == nil {
		// A plan-less reply still yields a usable skeleton path.
		paths.ConservativePath = &CareerPath{
			PathType:        PathConservative,
			PathLabel:       "Transition via " + nearest,
			TotalYears:      5,
			FinalTargetRole: nearest,
		}
	}
	normalizePaths(paths, nearest)

	warning := fmt.Sprintf(
		"High gap score (%.0f/100) detected for %s. Alternative career paths have been suggested alongside your original target.",
		gap.OverallGapScore, target,
	)

	return StateDelta{
		AlternativeCareers: out.AlternativeCareers,
		TimelineSimulation: paths,
		Warnings:           []string{warning},
		Timings:            timing(NodeAlternativePlanner, start),
	}, nil
}
