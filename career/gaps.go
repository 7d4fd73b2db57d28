package career

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/careersim/careersim-go/model"
)

const gapSystem = `You are a rigorous career-gap analyst. Compare the candidate's current
profile against the market requirements for their target roles. Score the
overall gap 0-100 where 0 means fully ready and 100 means the target is
currently out of reach. Identify concrete skill gaps with severities,
education and experience shortfalls, critical bottlenecks, and also what
the candidate already has going for them.`

// AnalyzeGaps is the gap_analyst stage, the pipeline's pivot: its overall
// gap score decides whether the run simulates the target career or detours
// into alternatives. The score is clamped to [0,100] and the category
// recomputed from it so the two never disagree.
func (s *Stages) AnalyzeGaps(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	if state.NormalizedProfile == nil || state.MarketInsights == nil {
		return StateDelta{}, fmt.Errorf("gap_analyst: profile or market insights missing")
	}

	market, err := json.Marshal(state.MarketInsights.TargetRoles)
	if err != nil {
		return StateDelta{}, fmt.Errorf("gap_analyst: encode market insights: %w", err)
	}

	req := model.Request{
		System: gapSystem,
		Prompt: fmt.Sprintf(
			"Candidate:\n%s\n\nMarket requirements:\n%s\n\nProduce the full gap analysis.",
			state.NormalizedProfile.ProfileSummary, market,
		),
		Schema: schema(
			"overall_gap_score", "gap_category", "analysis_reasoning",
			"technical_skill_gaps", "soft_skill_gaps", "education_gap",
			"experience_gap_years", "critical_bottlenecks",
			"existing_strengths", "top_priorities", "quick_wins",
		),
		Temperature: 0.2,
	}

	var analysis GapAnalysis
	if err := completeJSON(ctx, s.Completer, NodeGapAnalyst, req, &analysis); err != nil {
		return StateDelta{}, err
	}

	analysis.OverallGapScore = clamp(analysis.OverallGapScore, 0, 100)
	analysis.GapCategory = GapCategory(analysis.OverallGapScore)
	for i := range analysis.TechnicalSkillGaps {
		analysis.TechnicalSkillGaps[i].GapSeverity = clamp(analysis.TechnicalSkillGaps[i].GapSeverity, 0, 100)
	}

	return StateDelta{
		GapAnalysis: &analysis,
		Timings:     timing(NodeGapAnalyst, start),
	}, nil
}
