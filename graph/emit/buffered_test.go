package emit

import (
	"sync"
	"testing"
)

func TestBufferedEmitterHistory(t *testing.T) {
	emitter := NewBufferedEmitter()

	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "profile_parser", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "profile_parser", Msg: "node_end"})
	emitter.Emit(Event{RunID: "run-2", Step: 1, NodeID: "career_matcher", Msg: "node_start"})

	got := emitter.History("run-1")
	if len(got) != 2 {
		t.Fatalf("expected 2 events for run-1, got %d", len(got))
	}
	if got[0].Msg != "node_start" || got[1].Msg != "node_end" {
		t.Errorf("events out of order: %v, %v", got[0].Msg, got[1].Msg)
	}
	if len(emitter.History("run-2")) != 1 {
		t.Errorf("run-2 history polluted")
	}
	if len(emitter.History("missing")) != 0 {
		t.Errorf("unknown run should have empty history")
	}
}

func TestBufferedEmitterFilter(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "financial_advisor", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-1", Step: 1, NodeID: "financial_advisor", Msg: "node_retry"})
	emitter.Emit(Event{RunID: "run-1", Step: 2, NodeID: "risk_assessor", Msg: "node_retry"})
	emitter.Emit(Event{RunID: "run-1", Step: 3, NodeID: "dashboard_formatter", Msg: "node_end"})

	t.Run("by message", func(t *testing.T) {
		got := emitter.HistoryWithFilter("run-1", HistoryFilter{Msg: "node_retry"})
		if len(got) != 2 {
			t.Fatalf("expected 2 retries, got %d", len(got))
		}
	})

	t.Run("by node", func(t *testing.T) {
		got := emitter.HistoryWithFilter("run-1", HistoryFilter{NodeID: "risk_assessor"})
		if len(got) != 1 || got[0].Msg != "node_retry" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("by step range", func(t *testing.T) {
		minStep, maxStep := 2, 3
		got := emitter.HistoryWithFilter("run-1", HistoryFilter{MinStep: &minStep, MaxStep: &maxStep})
		if len(got) != 2 {
			t.Fatalf("expected 2 events in steps 2-3, got %d", len(got))
		}
	})

	t.Run("combined", func(t *testing.T) {
		got := emitter.HistoryWithFilter("run-1", HistoryFilter{NodeID: "financial_advisor", Msg: "node_retry"})
		if len(got) != 1 {
			t.Fatalf("expected 1 event, got %d", len(got))
		}
	})
}

func TestBufferedEmitterClear(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{RunID: "run-1", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-2", Msg: "node_start"})

	emitter.Clear("run-1")
	if len(emitter.History("run-1")) != 0 {
		t.Errorf("run-1 not cleared")
	}
	if len(emitter.History("run-2")) != 1 {
		t.Errorf("run-2 should survive targeted clear")
	}

	emitter.Clear("")
	if len(emitter.History("run-2")) != 0 {
		t.Errorf("clear all left events behind")
	}
}

func TestBufferedEmitterConcurrent(t *testing.T) {
	emitter := NewBufferedEmitter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			emitter.Emit(Event{RunID: "run-1", Step: n, Msg: "node_start"})
		}(i)
	}
	wg.Wait()

	if got := len(emitter.History("run-1")); got != 50 {
		t.Fatalf("expected 50 events, got %d", got)
	}
}
