package career

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/graph/session"
	"github.com/careersim/careersim-go/model"
	"github.com/careersim/careersim-go/search"
)

// DefaultSessionTTL bounds how long a submitted profile waits for a career
// selection before the session expires.
const DefaultSessionTTL = 30 * time.Minute

// SessionNotFoundError is returned by SelectCareer when the session id is
// unknown or its TTL elapsed; the caller must resubmit the profile.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found or expired", e.SessionID)
}

// Config configures a Service. Completer, Search and Sessions are
// required; everything else has working defaults.
type Config struct {
	// Completer answers the model-backed stages.
	Completer model.Completer

	// Search supplies market data to the market scout.
	Search search.Client

	// Sessions persists state between SubmitProfile and SelectCareer.
	Sessions session.Store[State]

	// SessionTTL overrides DefaultSessionTTL when positive.
	SessionTTL time.Duration

	// Options is passed to the executor: timeouts, retry schedule,
	// emitter and metrics.
	Options graph.Options
}

// MatchResult is the phase-1 response: the ranked career fits the caller
// chooses from, under a session id that keys the resumption.
type MatchResult struct {
	SessionID       string      `json:"session_id"`
	CareerFits      []CareerFit `json:"career_fits"`
	AnalysisSummary string      `json:"analysis_summary,omitempty"`
	GapScore        float64     `json:"gap_score"`
	GapCategory     string      `json:"gap_category,omitempty"`
	Warnings        []string    `json:"warnings,omitempty"`
}

// SimulationResult is the phase-2 response carrying the complete analysis.
// Success with non-empty Warnings means the run degraded on an advisory
// stage and the flagged sections hold fallback estimates.
type SimulationResult struct {
	Success      bool                 `json:"success"`
	Dashboard    *DashboardData       `json:"dashboard_data,omitempty"`
	Financial    *FinancialAnalysis   `json:"financial_analysis,omitempty"`
	Risk         *RiskAssessment      `json:"risk_assessment,omitempty"`
	Timeline     *TimelinePaths       `json:"timeline_simulation,omitempty"`
	Alternatives []AlternativeCareer  `json:"alternative_careers,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
	Errors       []string             `json:"errors,omitempty"`
	Log          []graph.LogEntry     `json:"run_log,omitempty"`
}

// Service is the workflow facade: profile in, career fits out, selection
// in, simulation out. Safe for concurrent use.
type Service struct {
	exec     *graph.Executor[State, StateDelta]
	sessions session.Store[State]
	ttl      time.Duration
	validate *validator.Validate
}

// NewService builds the workflow graph over the configured collaborators.
func NewService(cfg Config) (*Service, error) {
	if cfg.Completer == nil {
		return nil, &graph.ValidationError{Field: "completer", Message: "completer is required"}
	}
	if cfg.Search == nil {
		return nil, &graph.ValidationError{Field: "search", Message: "search client is required"}
	}
	if cfg.Sessions == nil {
		return nil, &graph.ValidationError{Field: "sessions", Message: "session store is required"}
	}

	g, err := BuildGraph(&Stages{Completer: cfg.Completer, Search: cfg.Search})
	if err != nil {
		return nil, err
	}
	exec, err := graph.NewExecutor(g, cfg.Options)
	if err != nil {
		return nil, err
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		exec:     exec,
		sessions: cfg.Sessions,
		ttl:      ttl,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// SubmitProfile runs phase 1: validation, then profile parsing, career
// matching, market scouting and gap analysis. The resulting state is saved
// under the returned session id for SelectCareer to resume.
func (s *Service) SubmitProfile(ctx context.Context, profile CareerProfile) (*MatchResult, error) {
	if err := s.validate.Struct(profile); err != nil {
		return nil, &graph.ValidationError{Field: "profile", Message: err.Error()}
	}

	sessionID := uuid.NewString()
	state, _, err := s.exec.RunUntil(ctx, sessionID, NewState(profile), NodeGapAnalyst)
	if err != nil {
		return nil, err
	}
	if state.CareerMatcherResult == nil || state.GapAnalysis == nil {
		return nil, fmt.Errorf("matching run finished without results")
	}

	if err := s.sessions.Save(ctx, sessionID, state, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &MatchResult{
		SessionID:       sessionID,
		CareerFits:      state.CareerMatcherResult.CareerFits,
		AnalysisSummary: state.CareerMatcherResult.AnalysisSummary,
		GapScore:        state.GapAnalysis.OverallGapScore,
		GapCategory:     state.GapAnalysis.GapCategory,
		Warnings:        state.Warnings,
	}, nil
}

// SelectCareer runs phase 2: it loads the saved session, injects the
// chosen career into the state and resumes the graph from the branch
// decision through the dashboard. The session is deleted once the
// simulation succeeds; a failed resumption leaves it for a retry.
func (s *Service) SelectCareer(ctx context.Context, sessionID string, careerIndex int) (*SimulationResult, error) {
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, &SessionNotFoundError{SessionID: sessionID}
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	matcher := state.CareerMatcherResult
	if matcher == nil || len(matcher.CareerFits) == 0 {
		return nil, &graph.ValidationError{Field: "session", Message: "session has no career fits"}
	}
	if careerIndex < 0 || careerIndex >= len(matcher.CareerFits) {
		return nil, &graph.ValidationError{
			Field:   "careerIndex",
			Message: fmt.Sprintf("career index %d out of range [0,%d)", careerIndex, len(matcher.CareerFits)),
		}
	}

	selected := matcher.CareerFits[careerIndex]
	state.SelectedCareerIndex = careerIndex
	state.SelectedCareer = &selected
	if state.CareerProfile != nil {
		state.CareerProfile.SpecificRoles = []string{selected.CareerTitle}
		state.CareerProfile.TargetCareerFields = []string{selected.CareerField}
	}

	completed := []string{NodeProfileParser, NodeCareerMatcher, NodeMarketScout, NodeGapAnalyst}
	final, log, err := s.exec.RunFrom(ctx, sessionID, state, completed)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		// The simulation already succeeded; an expiring leftover session
		// is not worth failing the caller over.
		final.Warnings = append(final.Warnings, fmt.Sprintf("session cleanup failed: %v", err))
	}

	return &SimulationResult{
		Success:      final.SimulationComplete,
		Dashboard:    final.DashboardData,
		Financial:    final.FinancialAnalysis,
		Risk:         final.RiskAssessment,
		Timeline:     final.TimelineSimulation,
		Alternatives: final.AlternativeCareers,
		Warnings:     final.Warnings,
		Errors:       final.Errors,
		Log:          log.Entries(),
	}, nil
}
