package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/changanya/pkg/observability"
)

const (
	testTraceID = "0102030405060708090a0b0c0d0e0f10"
	testSpanID  = "0102030405060708"
)

func jsonLogger(buf *bytes.Buffer, env string, mode observability.AppMode) *slog.Logger {
	inner := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slog.New(observability.NewTracingHandler(inner, "changanya", env, mode))
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	return record
}

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := jsonLogger(&buf, "test", observability.ModeCLI)

	traceID, err := trace.TraceIDFromHex(testTraceID)
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex(testSpanID)
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	logger.InfoContext(trace.ContextWithSpanContext(context.Background(), sc), "encoded")

	record := decodeRecord(t, &buf)
	assert.Equal(t, testTraceID, record["trace_id"])
	assert.Equal(t, testSpanID, record["span_id"])
	assert.Equal(t, "changanya", record["service"])
	assert.Equal(t, "test", record["env"])
	assert.Equal(t, "cli", record["mode"])
}

func TestTracingHandler_NoTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	jsonLogger(&buf, "", observability.ModeMCP).InfoContext(context.Background(), "no span")

	record := decodeRecord(t, &buf)
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "env")
	assert.Equal(t, "mcp", record["mode"])
}

func TestTracingHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	grouped := jsonLogger(&buf, "", observability.ModeCLI).WithGroup("bloom")
	grouped.InfoContext(context.Background(), "sized", slog.Int("bits", 28756))

	record := decodeRecord(t, &buf)
	assert.Equal(t, "changanya", record["service"])

	group, ok := record["bloom"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 28756, group["bits"], 0)
}

func TestTracingHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := jsonLogger(&buf, "", observability.ModeCLI).With(slog.String("op", "geohash.encode"))
	logger.InfoContext(context.Background(), "started")

	record := decodeRecord(t, &buf)
	assert.Equal(t, "geohash.encode", record["op"])
	assert.Equal(t, "changanya", record["service"])
}

func TestTracingHandler_Enabled(t *testing.T) {
	t.Parallel()

	inner := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := observability.NewTracingHandler(inner, "changanya", "", observability.ModeCLI)

	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}
