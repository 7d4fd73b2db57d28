package career

import (
	"context"
	"fmt"
	"time"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/model"
)

const timelineSystem = `You are a career-path simulator. Build three multi-year plans toward the
selected career: a conservative path, a realistic path and an ambitious
path. Each path carries yearly plans with quarterly milestones, expected
roles and salary ranges. Recommend one path and explain why.`

// SimulateTimeline is the timeline_simulator stage, the branch arm taken
// when the gap is workable. One completion yields all three paths.
func (s *Stages) SimulateTimeline(ctx context.Context, state State) (StateDelta, error) {
	start := time.Now()
	if state.GapAnalysis == nil || state.NormalizedProfile == nil {
		return StateDelta{}, fmt.Errorf("timeline_simulator: gap analysis or profile missing")
	}
	target := selectedCareerTitle(state)

	req := model.Request{
		System: timelineSystem,
		Prompt: fmt.Sprintf(
			"Candidate:\n%s\n\nTarget career: %s\nOverall gap: %.0f/100 (%s)\nTop priorities: %v\n\nReturn conservative_path, realistic_path and ambitious_path plus the recommendation.",
			state.NormalizedProfile.ProfileSummary, target,
			state.GapAnalysis.OverallGapScore, state.GapAnalysis.GapCategory,
			state.GapAnalysis.TopPriorities,
		),
		Schema:      schema("conservative_path", "realistic_path", "ambitious_path", "recommended_path", "recommendation_reason", "alignment_score"),
		Temperature: 0.5,
	}

	var paths TimelinePaths
	if err := completeJSON(ctx, s.Completer, NodeTimelineSimulator, req, &paths); err != nil {
		return StateDelta{}, err
	}
	if paths.RealisticPath == nil {
		return StateDelta{}, graph.Transient(NodeTimelineSimulator, fmt.Errorf("completion missing realistic path"))
	}
	normalizePaths(&paths, target)

	return StateDelta{
		TimelineSimulation: &paths,
		Timings:            timing(NodeTimelineSimulator, start),
	}, nil
}

// normalizePaths pins path types and fills missing labels so the dashboard
// never renders an unnamed path.
func normalizePaths(paths *TimelinePaths, target string) {
	fix := func(p *CareerPath, pathType string) {
		if p == nil {
			return
		}
		p.PathType = pathType
		if p.FinalTargetRole == "" {
			p.FinalTargetRole = target
		}
		if p.TotalYears == 0 {
			p.TotalYears = len(p.YearlyPlans)
		}
	}
	fix(paths.ConservativePath, PathConservative)
	fix(paths.RealisticPath, PathRealistic)
	fix(paths.AmbitiousPath, PathAmbitious)
	if paths.RecommendedPath == "" {
		paths.RecommendedPath = PathRealistic
	}
	paths.AlignmentScore = clamp(paths.AlignmentScore, 0, 100)
}

// selectedCareerTitle names the career the simulation targets, falling
// back to the profile's first stated role when no explicit selection was
// injected.
func selectedCareerTitle(state State) string {
	if state.SelectedCareer != nil {
		return state.SelectedCareer.CareerTitle
	}
	if state.CareerProfile != nil && len(state.CareerProfile.SpecificRoles) > 0 {
		return state.CareerProfile.SpecificRoles[0]
	}
	return "target career"
}
