package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/changanya/pkg/observability"
)

const (
	metricRequests = "changanya.requests.total"
	metricDuration = "changanya.request.duration.seconds"
	metricErrors   = "changanya.errors.total"
	metricInflight = "changanya.inflight.requests"
)

var errBoom = errors.New("boom")

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return red, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func counterTotal(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	red.RecordRequest(context.Background(), "bloom.test", observability.StatusOK, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, metricRequests)))
	assert.NotNil(t, findMetric(rm, metricDuration))
	assert.Nil(t, findMetric(rm, metricErrors))
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	red.RecordRequest(context.Background(), "geohash.decode", observability.StatusError, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, metricErrors)))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	done := red.TrackInflight(context.Background(), "simhash.dupes")
	assert.Equal(t, int64(1), counterTotal(t, findMetric(collectMetrics(t, reader), metricInflight)))

	done()
	assert.Equal(t, int64(0), counterTotal(t, findMetric(collectMetrics(t, reader), metricInflight)))
}

func TestREDMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var red *observability.REDMetrics

	assert.NotPanics(t, func() {
		red.RecordRequest(context.Background(), "op", observability.StatusOK, time.Millisecond)
		red.TrackInflight(context.Background(), "op")()
	})
}

func TestInstrument(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := tp.Tracer("test")

	err := observability.Instrument(context.Background(), tracer, red, "bloom.test",
		func(context.Context) error { return nil })
	require.NoError(t, err)

	err = observability.Instrument(context.Background(), tracer, red, "bloom.test",
		func(context.Context) error { return errBoom })
	require.ErrorIs(t, err, errBoom)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, findMetric(rm, metricRequests)))
	assert.Equal(t, int64(1), counterTotal(t, findMetric(rm, metricErrors)))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "bloom.test", spans[0].Name)
	assert.NotEmpty(t, spans[1].Events)
}

func TestInstrument_NoTracerNoMetrics(t *testing.T) {
	t.Parallel()

	called := false

	err := observability.Instrument(context.Background(), nil, nil, "op", func(context.Context) error {
		called = true

		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
