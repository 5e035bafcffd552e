package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ownership"

// StartSpan starts a child span of whatever trace ctx carries. With no tracer
// provider installed this is a no-op span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// StartSpanFromTraceID links the new span to a trace id propagated through the
// queue. An empty or malformed id starts a fresh trace.
func StartSpanFromTraceID(ctx context.Context, traceID, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tid, err := trace.TraceIDFromHex(traceID)
	if traceID == "" || err != nil {
		return StartSpan(ctx, name, opts...)
	}
	remote := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	opts = append(opts, trace.WithLinks(trace.Link{SpanContext: remote}))
	return StartSpan(trace.ContextWithRemoteSpanContext(ctx, remote), name, opts...)
}

// TraceID returns the hex trace id on ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
