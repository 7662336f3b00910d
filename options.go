package pagetex

import (
	"log/slog"

	"github.com/gogpu/pagetex/metrics"
	"github.com/gogpu/pagetex/render"
	"github.com/gogpu/pagetex/source"
	"github.com/gogpu/pagetex/world"
)

// Option configures a Server during creation.
//
// Example:
//
//	srv := pagetex.NewServer(store,
//	    pagetex.WithLoader(source.NewDirLoader("assets")),
//	    pagetex.WithFonts(world.FontOptions{Embedded: true}),
//	    pagetex.WithMaxInFlight(4),
//	)
type Option func(*serverOptions)

// serverOptions holds optional configuration for Server creation.
type serverOptions struct {
	logger      *slog.Logger
	compiler    render.Compiler
	rasterizer  render.Rasterizer
	loader      source.Loader
	fonts       world.FontOptions
	maxInFlight int
	jobsPerTick int
	metrics     *metrics.Metrics
}

// defaultOptions returns the default server options.
func defaultOptions() serverOptions {
	return serverOptions{
		compiler:   nil, // render.NewAdapter picks the document compiler
		rasterizer: nil, // and the software rasterizer
	}
}

// WithLogger sets the logger for this server. Without it the package
// logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *serverOptions) {
		o.logger = l
	}
}

// WithCompiler replaces the built-in document compiler.
func WithCompiler(c render.Compiler) Option {
	return func(o *serverOptions) {
		o.compiler = c
	}
}

// WithRasterizer replaces the software rasterizer.
func WithRasterizer(r render.Rasterizer) Option {
	return func(o *serverOptions) {
		o.rasterizer = r
	}
}

// WithLoader sets how sources given by name are read. Without a loader
// only inline and pre-resolved sources can be rendered.
func WithLoader(l source.Loader) Option {
	return func(o *serverOptions) {
		o.loader = l
	}
}

// WithFonts sets the font options used for jobs that do not override
// them. The default adds no fonts beyond those in the bundle.
func WithFonts(f world.FontOptions) Option {
	return func(o *serverOptions) {
		o.fonts = f
	}
}

// WithMaxInFlight bounds the number of jobs executing at once. Submit
// never blocks; excess jobs wait for a free worker. n <= 0 means
// unbounded, the default.
func WithMaxInFlight(n int) Option {
	return func(o *serverOptions) {
		o.maxInFlight = n
	}
}

// WithJobsPerTick bounds how many results one PollAndApply call applies.
// n <= 0 applies everything queued, the default.
func WithJobsPerTick(n int) Option {
	return func(o *serverOptions) {
		o.jobsPerTick = n
	}
}

// WithMetrics records job metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serverOptions) {
		o.metrics = m
	}
}
