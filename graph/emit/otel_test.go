package emit

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, provider
}

func TestOTelEmitterSpanPerEvent(t *testing.T) {
	recorder, provider := newTestTracer()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(provider.Tracer("careersim-test"))
	emitter.Emit(Event{
		RunID:  "run-1",
		Step:   1,
		NodeID: "timeline_simulator",
		Msg:    "node_end",
		Meta:   map[string]any{"attempts": 1},
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "node_end" {
		t.Errorf("span name = %q, want node_end", span.Name())
	}

	attrs := make(map[string]any)
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs["careersim.run_id"] != "run-1" {
		t.Errorf("run_id attribute missing: %v", attrs)
	}
	if attrs["careersim.node_id"] != "timeline_simulator" {
		t.Errorf("node_id attribute missing: %v", attrs)
	}
	if attrs["careersim.attempts"] != int64(1) {
		t.Errorf("meta attribute missing: %v", attrs)
	}
}

func TestOTelEmitterErrorStatus(t *testing.T) {
	recorder, provider := newTestTracer()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(provider.Tracer("careersim-test"))
	emitter.Emit(Event{
		RunID:  "run-1",
		Step:   2,
		NodeID: "market_scout",
		Msg:    "node_failed",
		Meta:   map[string]any{"error": "rate limited"},
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Description != "rate limited" {
		t.Errorf("error status not recorded: %+v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Errorf("expected recorded error event on span")
	}
}
