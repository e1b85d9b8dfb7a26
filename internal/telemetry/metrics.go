package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/themebuild"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Build metrics
	BuildsTotal       metric.Int64Counter
	BuildErrorsTotal  metric.Int64Counter
	BuildDuration     metric.Float64Histogram
	BundlesBuiltTotal metric.Int64Counter

	// Stylesheet chain metrics
	StylesheetsCompiledTotal metric.Int64Counter
	CompileDuration          metric.Float64Histogram

	// Output metrics
	FilesWrittenTotal   metric.Int64Counter
	FilesUnchangedTotal metric.Int64Counter
	BytesWrittenTotal   metric.Int64Counter

	// Template metrics
	MinifiedBytesSaved metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance bound to the global meter provider.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider())
	})
	return metrics
}

// NewMetrics creates every instrument on the given provider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"themebuild.builds.total",
		metric.WithDescription("Total number of builds started"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"themebuild.builds.errors.total",
		metric.WithDescription("Total number of builds that failed"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"themebuild.builds.duration",
		metric.WithDescription("Duration of a whole build"),
		metric.WithUnit("ms"),
	)

	m.BundlesBuiltTotal, _ = meter.Int64Counter(
		"themebuild.bundles.built.total",
		metric.WithDescription("Total number of bundles built"),
		metric.WithUnit("{bundle}"),
	)

	m.StylesheetsCompiledTotal, _ = meter.Int64Counter(
		"themebuild.stylesheets.compiled.total",
		metric.WithDescription("Total number of stylesheets passed through the compile stage"),
		metric.WithUnit("{stylesheet}"),
	)

	m.CompileDuration, _ = meter.Float64Histogram(
		"themebuild.stylesheets.compile.duration",
		metric.WithDescription("Duration of a single stylesheet compile"),
		metric.WithUnit("ms"),
	)

	m.MinifiedBytesSaved, _ = meter.Int64Counter(
		"themebuild.templates.minify.saved",
		metric.WithDescription("Bytes removed by the template minifier"),
		metric.WithUnit("By"),
	)

	m.FilesWrittenTotal, _ = meter.Int64Counter(
		"themebuild.files.written.total",
		metric.WithDescription("Total number of output files written"),
		metric.WithUnit("{file}"),
	)

	m.FilesUnchangedTotal, _ = meter.Int64Counter(
		"themebuild.files.unchanged.total",
		metric.WithDescription("Total number of output files skipped because their bytes were unchanged"),
		metric.WithUnit("{file}"),
	)

	m.BytesWrittenTotal, _ = meter.Int64Counter(
		"themebuild.files.written.bytes",
		metric.WithDescription("Total bytes written to the output tree"),
		metric.WithUnit("By"),
	)

	return m
}
