package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m := NewMetrics(mp)
	ctx := context.Background()
	m.BuildsTotal.Add(ctx, 1)
	m.FilesWrittenTotal.Add(ctx, 3)
	m.BuildDuration.Record(ctx, 12)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, meterName, rm.ScopeMetrics[0].Scope.Name)

	sums := map[string]int64{}
	for _, metric := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := metric.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[metric.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), sums["themebuild.builds.total"])
	assert.Equal(t, int64(3), sums["themebuild.files.written.total"])
}

func TestGetMetricsIsSingleton(t *testing.T) {
	assert.Same(t, GetMetrics(), GetMetrics())
}

func TestTracerWithoutInit(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}
