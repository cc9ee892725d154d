package test

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

// MeterProvider is a [metric.MeterProvider] that keeps the current sum of
// every Int64Counter and Int64UpDownCounter it creates. Other instruments are
// no-ops.
type MeterProvider struct {
	noopmetric.MeterProvider

	m    sync.Mutex
	sums map[string]int64
}

// Meter returns a meter that records to p.
func (p *MeterProvider) Meter(string, ...metric.MeterOption) metric.Meter {
	return &meter{provider: p}
}

// Sum returns the current sum of the named instrument.
func (p *MeterProvider) Sum(name string) int64 {
	p.m.Lock()
	defer p.m.Unlock()
	return p.sums[name]
}

func (p *MeterProvider) add(name string, n int64) {
	p.m.Lock()
	defer p.m.Unlock()

	if p.sums == nil {
		p.sums = map[string]int64{}
	}
	p.sums[name] += n
}

type meter struct {
	noopmetric.Meter
	provider *MeterProvider
}

func (m *meter) Int64Counter(name string, _ ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return &counter{provider: m.provider, name: name}, nil
}

func (m *meter) Int64UpDownCounter(name string, _ ...metric.Int64UpDownCounterOption) (metric.Int64UpDownCounter, error) {
	return &upDownCounter{provider: m.provider, name: name}, nil
}

type counter struct {
	noopmetric.Int64Counter
	provider *MeterProvider
	name     string
}

func (c *counter) Add(_ context.Context, n int64, _ ...metric.AddOption) {
	c.provider.add(c.name, n)
}

type upDownCounter struct {
	noopmetric.Int64UpDownCounter
	provider *MeterProvider
	name     string
}

func (c *upDownCounter) Add(_ context.Context, n int64, _ ...metric.AddOption) {
	c.provider.add(c.name, n)
}
