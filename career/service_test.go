package career

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/careersim/careersim-go/graph"
	"github.com/careersim/careersim-go/graph/session"
	"github.com/careersim/careersim-go/model"
)

func newTestService(t *testing.T, completer model.Completer, opts ...func(*Config)) (*Service, *session.MemStore[State]) {
	t.Helper()
	store := session.NewMemStore[State]()
	cfg := Config{
		Completer: completer,
		Search:    marketMock(),
		Sessions:  store,
		Options:   quickOptions(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	base := Config{
		Completer: scriptedCompleter(45),
		Search:    marketMock(),
		Sessions:  session.NewMemStore[State](),
	}
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing completer", func(c *Config) { c.Completer = nil }},
		{"missing search", func(c *Config) { c.Search = nil }},
		{"missing sessions", func(c *Config) { c.Sessions = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if _, err := NewService(cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestSubmitProfileValidation(t *testing.T) {
	completer := scriptedCompleter(45)
	svc, _ := newTestService(t, completer)

	_, err := svc.SubmitProfile(context.Background(), CareerProfile{})
	var verr *graph.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty profile, got %v", err)
	}
	if completer.CallCount() != 0 {
		t.Errorf("no stages may run on invalid input")
	}
}

func TestSubmitThenSelect(t *testing.T) {
	svc, store := newTestService(t, scriptedCompleter(45))
	ctx := context.Background()

	match, err := svc.SubmitProfile(ctx, fullProfile())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if match.SessionID == "" {
		t.Fatal("no session id")
	}
	if len(match.CareerFits) != 3 {
		t.Fatalf("career fits = %d", len(match.CareerFits))
	}
	if match.GapScore != 45 || match.GapCategory != GapManageable {
		t.Errorf("gap = %v (%s)", match.GapScore, match.GapCategory)
	}
	if store.Len() != 1 {
		t.Errorf("session not saved")
	}

	result, err := svc.SelectCareer(ctx, match.SessionID, 0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !result.Success {
		t.Error("simulation not successful")
	}
	if result.Dashboard == nil || result.Financial == nil || result.Risk == nil || result.Timeline == nil {
		t.Error("simulation result incomplete")
	}
	if got := result.Dashboard.SelectedCareerSummary["career_title"]; got != "Machine Learning Engineer" {
		t.Errorf("selected career = %q", got)
	}

	// Matching-phase nodes must not re-execute on resume.
	for _, entry := range result.Log {
		switch entry.NodeID {
		case NodeProfileParser, NodeCareerMatcher, NodeMarketScout, NodeGapAnalyst:
			t.Errorf("phase-1 node %s re-ran in phase 2", entry.NodeID)
		}
	}

	// Session is consumed by a successful simulation.
	if _, err := store.Load(ctx, match.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("session still loadable after completion: %v", err)
	}
}

func TestSelectCareerHighGapDetour(t *testing.T) {
	svc, _ := newTestService(t, scriptedCompleter(90))
	ctx := context.Background()

	match, err := svc.SubmitProfile(ctx, fullProfile())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if match.GapCategory != GapSevere {
		t.Fatalf("gap category = %q", match.GapCategory)
	}

	result, err := svc.SelectCareer(ctx, match.SessionID, 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Alternatives) == 0 {
		t.Error("no alternatives despite severe gap")
	}
	if !hasWarningContaining(result.Warnings, "High gap score") {
		t.Errorf("missing detour warning: %v", result.Warnings)
	}
	if result.Timeline == nil || result.Timeline.ConservativePath == nil {
		t.Error("detour should still plan a conservative timeline")
	}
}

func TestSelectCareerErrors(t *testing.T) {
	svc, _ := newTestService(t, scriptedCompleter(45))
	ctx := context.Background()

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.SelectCareer(ctx, "no-such-session", 0)
		var nf *SessionNotFoundError
		if !errors.As(err, &nf) || nf.SessionID != "no-such-session" {
			t.Fatalf("expected SessionNotFoundError, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		match, err := svc.SubmitProfile(ctx, fullProfile())
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		for _, idx := range []int{-1, 3} {
			_, err := svc.SelectCareer(ctx, match.SessionID, idx)
			var verr *graph.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("index %d: expected ValidationError, got %v", idx, err)
			}
		}
		// A rejected index leaves the session intact.
		if _, err := svc.SelectCareer(ctx, match.SessionID, 0); err != nil {
			t.Errorf("select after rejected index: %v", err)
		}
	})
}

func TestSessionExpiryBetweenPhases(t *testing.T) {
	svc, _ := newTestService(t, scriptedCompleter(45), func(c *Config) {
		c.SessionTTL = 10 * time.Millisecond
	})
	ctx := context.Background()

	match, err := svc.SubmitProfile(ctx, fullProfile())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, err = svc.SelectCareer(ctx, match.SessionID, 0)
	var nf *SessionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected SessionNotFoundError after TTL, got %v", err)
	}
}

func TestDegradedSimulationStillSucceeds(t *testing.T) {
	base := scriptedCompleter(45)
	completer := &model.Mock{Respond: func(req model.Request) (string, error) {
		if strings.Contains(req.System, "financial planner") {
			return "", &model.APIError{Provider: "test", Code: "server_error", Message: "overloaded", Retry: true}
		}
		return base.Respond(req)
	}}
	svc, _ := newTestService(t, completer)
	ctx := context.Background()

	match, err := svc.SubmitProfile(ctx, fullProfile())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	result, err := svc.SelectCareer(ctx, match.SessionID, 0)
	if err != nil {
		t.Fatalf("degraded select should succeed: %v", err)
	}
	if !result.Success {
		t.Error("degraded run must still report success")
	}
	if result.Financial == nil || result.Financial.TotalInvestmentRequired != 15000 {
		t.Errorf("fallback financials missing: %+v", result.Financial)
	}
	if !hasWarningContaining(result.Warnings, "generic estimate") {
		t.Errorf("no degradation warning: %v", result.Warnings)
	}
	degraded := false
	for _, entry := range result.Log {
		if entry.NodeID == NodeFinancialAdvisor && entry.Tolerated {
			degraded = true
		}
	}
	if !degraded {
		t.Error("run log does not record the tolerated failure")
	}
}

func TestSubmitProfileCriticalFailure(t *testing.T) {
	completer := &model.Mock{Respond: func(req model.Request) (string, error) {
		return "", &model.APIError{Provider: "test", Code: "invalid_api_key", Message: "bad key"}
	}}
	svc, store := newTestService(t, completer)

	_, err := svc.SubmitProfile(context.Background(), fullProfile())
	var runErr *graph.RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if runErr.Node != NodeCareerMatcher {
		t.Errorf("failing node = %q", runErr.Node)
	}
	if store.Len() != 0 {
		t.Errorf("failed matching must not persist a session")
	}
}
