package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AttrOperation is the span attribute naming the instrumented operation.
const AttrOperation = "changanya.op"

// Instrument runs fn inside a span named op and records RED metrics for the
// call. A nil tracer skips the span; a nil red skips the metrics.
func Instrument(
	ctx context.Context, tracer trace.Tracer, red *REDMetrics, op string,
	fn func(context.Context) error,
) error {
	var span trace.Span

	if tracer != nil {
		ctx, span = tracer.Start(ctx, op, trace.WithAttributes(attribute.String(AttrOperation, op)))
		defer span.End()
	}

	done := red.TrackInflight(ctx, op)
	defer done()

	start := time.Now()
	err := fn(ctx)

	status := StatusOK
	if err != nil {
		status = StatusError

		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	red.RecordRequest(ctx, op, status, time.Since(start))

	return err
}
