package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"ownership/internal/config"
)

// Setup installs the process-wide slog logger: text for development, JSON
// otherwise, and the OTel bridge when an OTLP endpoint is configured.
func Setup(cfg config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		handler = otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case cfg.IsDevelopment():
		handler = NewTraceHandler(slog.NewTextHandler(os.Stdout, opts))
	default:
		handler = NewTraceHandler(slog.NewJSONHandler(os.Stdout, opts))
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// NewJSON builds a logger writing JSON to w; used by tests and tools.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewTraceHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

// TraceHandler decorates records with trace ids and context Fields.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	f := FieldsFrom(ctx)
	if f.JobID != "" {
		r.AddAttrs(slog.String("job_id", f.JobID))
	}
	if f.SIREN != "" {
		r.AddAttrs(slog.String("siren", f.SIREN))
	}
	if f.MessageID != "" {
		r.AddAttrs(slog.String("message_id", f.MessageID))
	}
	if f.Component != "" {
		r.AddAttrs(slog.String("component", f.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
