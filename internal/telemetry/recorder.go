package telemetry

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder records traces, metrics and logs for a particular subsystem.
type Recorder struct {
	name   string
	tracer trace.Tracer
	meter  metric.Meter
	logger *slog.Logger

	errors metric.Int64Counter
}

// Logger returns the logger used by the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return r.logger
}
