package telemetry

import (
	"go.opentelemetry.io/otel/metric"
)

// Int64Counter returns a new Int64Counter instrument.
func (r *Recorder) Int64Counter(name string, options ...metric.Int64CounterOption) metric.Int64Counter {
	c, err := r.meter.Int64Counter(r.name+"."+name, options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Int64UpDownCounter returns a new Int64UpDownCounter instrument.
func (r *Recorder) Int64UpDownCounter(name string, options ...metric.Int64UpDownCounterOption) metric.Int64UpDownCounter {
	c, err := r.meter.Int64UpDownCounter(r.name+"."+name, options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Int64Histogram returns a new Int64Histogram instrument.
func (r *Recorder) Int64Histogram(name string, options ...metric.Int64HistogramOption) metric.Int64Histogram {
	h, err := r.meter.Int64Histogram(r.name+"."+name, options...)
	if err != nil {
		panic(err)
	}
	return h
}
