package career

// Reduce folds a stage delta into the shared state. Owned fields are
// assigned when set; warnings and errors are concatenated, per-stage
// timings merged, and the completion flag is sticky. For deltas with
// disjoint key sets the fold is commutative, which makes the parallel
// financial and risk commits order-independent.
func Reduce(prev State, d StateDelta) State {
	next := prev

	if d.NormalizedProfile != nil {
		next.NormalizedProfile = d.NormalizedProfile
	}
	if d.CareerMatcherResult != nil {
		next.CareerMatcherResult = d.CareerMatcherResult
	}
	if d.MarketInsights != nil {
		next.MarketInsights = d.MarketInsights
	}
	if d.GapAnalysis != nil {
		next.GapAnalysis = d.GapAnalysis
	}
	if len(d.AlternativeCareers) > 0 {
		next.AlternativeCareers = append([]AlternativeCareer{}, d.AlternativeCareers...)
	}
	if d.TimelineSimulation != nil {
		next.TimelineSimulation = d.TimelineSimulation
	}
	if d.FinancialAnalysis != nil {
		next.FinancialAnalysis = d.FinancialAnalysis
	}
	if d.RiskAssessment != nil {
		next.RiskAssessment = d.RiskAssessment
	}
	if d.DashboardData != nil {
		next.DashboardData = d.DashboardData
	}
	if d.SimulationComplete {
		next.SimulationComplete = true
	}

	if len(d.Warnings) > 0 {
		next.Warnings = concat(prev.Warnings, d.Warnings)
	}
	if len(d.Errors) > 0 {
		next.Errors = concat(prev.Errors, d.Errors)
	}
	if len(d.Timings) > 0 {
		merged := make(map[string]float64, len(prev.ProcessingTimeMS)+len(d.Timings))
		for k, v := range prev.ProcessingTimeMS {
			merged[k] = v
		}
		for k, v := range d.Timings {
			merged[k] = v
		}
		next.ProcessingTimeMS = merged
	}

	return next
}

// concat copies both slices into fresh backing storage so neither input is
// aliased by the result.
func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
