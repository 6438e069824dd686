package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Log keys added by TracingHandler.
const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// TracingHandler stamps changanya log records with the id of the hashing
// operation's span, so a CLI or MCP log line can be matched to its trace.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler returns a handler writing to next. The service name and
// run mode are bound up front; env is bound only when set. Binding them on
// next keeps them outside any group a caller opens later.
func NewTracingHandler(next slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	return &TracingHandler{next: next.WithAttrs(processAttrs(service, env, appMode))}
}

func processAttrs(service, env string, appMode AppMode) []slog.Attr {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env == "" {
		return attrs
	}

	return append(attrs, slog.String(attrEnv, env))
}

func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.next.Enabled(ctx, level)
}

// Handle writes record, adding trace_id and span_id when ctx is inside a span.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		record.AddAttrs(slog.String(attrTraceID, sc.TraceID().String()), slog.String(attrSpanID, sc.SpanID().String()))
	}

	if err := th.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	return nil
}

func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: th.next.WithAttrs(attrs)}
}

func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: th.next.WithGroup(name)}
}
