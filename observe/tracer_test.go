package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMethodMeta_Names(t *testing.T) {
	tests := []struct {
		name     string
		meta     MethodMeta
		wantID   string
		wantSpan string
	}{
		{
			name:     "method",
			meta:     MethodMeta{Type: "Repo", Name: "Find"},
			wantID:   "Repo.Find",
			wantSpan: "cache.invoke.Repo.Find",
		},
		{
			name:     "function",
			meta:     MethodMeta{Name: "lookup"},
			wantID:   "lookup",
			wantSpan: "cache.invoke.lookup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.ID(); got != tt.wantID {
				t.Errorf("ID() = %q, want %q", got, tt.wantID)
			}
			if got := tt.meta.SpanName(); got != tt.wantSpan {
				t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
			}
		})
	}
}

func TestMethodMeta_Validate(t *testing.T) {
	if err := (MethodMeta{}).Validate(); !errors.Is(err, ErrMissingMethodName) {
		t.Errorf("Validate() error = %v, want ErrMissingMethodName", err)
	}
	if err := (MethodMeta{Name: "f"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func newRecordingTracer() (*tracetest.SpanRecorder, Tracer) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, NewTracer(tp.Tracer("test"))
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	out := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		out[string(a.Key)] = a.Value
	}
	return out
}

func TestTracer_SpanAttributes(t *testing.T) {
	recorder, tr := newRecordingTracer()
	meta := MethodMeta{Type: "Repo", Name: "Find", Encoder: "digest"}

	_, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, true, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "cache.invoke.Repo.Find" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	attrs := spanAttrs(s)
	if v := attrs["method.id"]; v.AsString() != "Repo.Find" {
		t.Errorf("method.id = %v", v)
	}
	if v := attrs["method.type"]; v.AsString() != "Repo" {
		t.Errorf("method.type = %v", v)
	}
	if v := attrs["keygen.encoder"]; v.AsString() != "digest" {
		t.Errorf("keygen.encoder = %v", v)
	}
	if v, ok := attrs["cache.hit"]; !ok || !v.AsBool() {
		t.Errorf("cache.hit = %v, want true", v)
	}
}

func TestTracer_MinimalAttributes(t *testing.T) {
	recorder, tr := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), MethodMeta{Name: "lookup"})
	tr.EndSpan(span, false, nil)

	attrs := spanAttrs(recorder.Ended()[0])
	if _, ok := attrs["method.type"]; ok {
		t.Error("method.type set for a plain function")
	}
	if _, ok := attrs["keygen.encoder"]; ok {
		t.Error("keygen.encoder set without an encoder")
	}
}

func TestTracer_ErrorRecording(t *testing.T) {
	recorder, tr := newRecordingTracer()

	_, span := tr.StartSpan(context.Background(), MethodMeta{Name: "f"})
	tr.EndSpan(span, false, errors.New("backend down"))

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "backend down" {
		t.Errorf("description = %q", s.Status().Description)
	}
	if len(s.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

func TestTracer_ContextPropagation(t *testing.T) {
	recorder, tr := newRecordingTracer()

	ctx, parent := tr.StartSpan(context.Background(), MethodMeta{Name: "outer"})
	_, child := tr.StartSpan(ctx, MethodMeta{Name: "inner"})
	tr.EndSpan(child, false, nil)
	tr.EndSpan(parent, false, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	inner, outer := spans[0], spans[1]
	if inner.Parent().SpanID() != outer.SpanContext().SpanID() {
		t.Error("inner span is not a child of outer")
	}
}
