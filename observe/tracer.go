package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MethodMeta identifies a cached method for telemetry.
type MethodMeta struct {
	Type    string // Declaring type, empty for plain functions
	Name    string // Method name (required)
	Encoder string // Key encoder in use (optional)
}

// ID returns "Type.Name", or just the name for plain functions.
func (m MethodMeta) ID() string {
	if m.Type != "" {
		return m.Type + "." + m.Name
	}
	return m.Name
}

// SpanName returns the span name for an intercepted call:
// cache.invoke.<Type>.<Name> or cache.invoke.<Name>.
func (m MethodMeta) SpanName() string {
	return "cache.invoke." + m.ID()
}

// Validate reports ErrMissingMethodName for an empty name.
func (m MethodMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingMethodName
	}
	return nil
}

func (m MethodMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("method.id", m.ID()),
		attribute.String("method.name", m.Name),
	}
	if m.Type != "" {
		attrs = append(attrs, attribute.String("method.type", m.Type))
	}
	if m.Encoder != "" {
		attrs = append(attrs, attribute.String("keygen.encoder", m.Encoder))
	}
	return attrs
}

// Tracer opens and closes spans around intercepted calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one intercepted call.
	StartSpan(ctx context.Context, meta MethodMeta) (context.Context, trace.Span)

	// EndSpan records whether the call was served from cache and any error,
	// then ends the span.
	EndSpan(span trace.Span, hit bool, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &otelTracer{tracer: t}
}

func (t *otelTracer) StartSpan(ctx context.Context, meta MethodMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(meta.attributes()...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *otelTracer) EndSpan(span trace.Span, hit bool, err error) {
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ MethodMeta) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (nopTracer) EndSpan(trace.Span, bool, error) {}
