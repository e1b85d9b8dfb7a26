package assets

import (
	"github.com/wolfeidau/themebuild/internal/sass"
	"github.com/wolfeidau/themebuild/internal/telemetry"
)

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithTranspiler replaces the transpiler named by the compile stage.
// The caller keeps ownership and closes it.
func WithTranspiler(tr sass.Transpiler) Option {
	return func(p *Pipeline) {
		p.transpiler = tr
	}
}

// WithDartSassBinary sets the Dart Sass executable used by the dartsass transpiler.
func WithDartSassBinary(path string) Option {
	return func(p *Pipeline) {
		p.dartSassBinary = path
	}
}

// WithMetrics records build metrics on m instead of the global meter provider.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}
