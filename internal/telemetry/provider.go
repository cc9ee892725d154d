package telemetry

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/exp/slices"
)

// Provider provides Recorder instances scoped to particular subsystems.
//
// The zero value of a *Provider is equivalent to a provider configured with
// no-op tracer and meter providers, and the default slog logger.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Logger         *slog.Logger
	Attrs          []Attr
}

// Recorder returns a new Recorder instance.
//
// pkg is the path of the Go package that is performing the instrumentation.
// name is the short name of the subsystem, which is used as a namespace for
// all attribute keys.
func (p *Provider) Recorder(pkg, name string, attrs ...Attr) *Recorder {
	var (
		tracerProvider trace.TracerProvider
		meterProvider  metric.MeterProvider
		logger         *slog.Logger
	)

	if p != nil {
		tracerProvider = p.TracerProvider
		meterProvider = p.MeterProvider
		logger = p.Logger

		attrs = append(
			slices.Clone(p.Attrs),
			attrs...,
		)
	}

	if tracerProvider == nil {
		tracerProvider = nooptrace.NewTracerProvider()
	}

	if meterProvider == nil {
		meterProvider = noopmetric.NewMeterProvider()
	}

	if logger == nil {
		logger = slog.Default()
	}

	set := attrSet{
		Namespace: name,
		Attrs:     attrs,
	}

	r := &Recorder{
		name: name,
		tracer: tracerProvider.Tracer(
			pkg,
			tracerVersion,
			trace.WithInstrumentationAttributes(set.ForOpenTelemetry()...),
		),
		meter: meterProvider.Meter(
			pkg,
			meterVersion,
			metric.WithInstrumentationAttributes(set.ForOpenTelemetry()...),
		),
		logger: logger.With(set.ForLogger()...),
	}

	r.errors = r.Int64Counter(
		"errors",
		metric.WithDescription("The number of errors that have occurred."),
		metric.WithUnit("{error}"),
	)

	return r
}
