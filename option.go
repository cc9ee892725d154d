package undojournal

import (
	"fmt"
	"log/slog"

	"github.com/dogmatiq/undojournal/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// A JournalOption configures the behavior of a [Journal].
type JournalOption func(*journalConfig)

type journalConfig struct {
	ID        string
	Telemetry telemetry.Provider
	Observers []Observer
	Types     map[uint32]TypeHint
}

// WithJournalID is a [JournalOption] that sets the identifier used to
// distinguish the journal in telemetry data. By default a random UUID is used.
func WithJournalID(id string) JournalOption {
	if id == "" {
		panic("journal ID must not be empty")
	}

	return func(cfg *journalConfig) {
		cfg.ID = id
	}
}

// WithTracerProvider is a [JournalOption] that sets the OpenTelemetry tracer
// provider used by the journal.
func WithTracerProvider(p trace.TracerProvider) JournalOption {
	if p == nil {
		panic("tracer provider must not be nil")
	}

	return func(cfg *journalConfig) {
		cfg.Telemetry.TracerProvider = p
	}
}

// WithMeterProvider is a [JournalOption] that sets the OpenTelemetry meter
// provider used by the journal.
func WithMeterProvider(p metric.MeterProvider) JournalOption {
	if p == nil {
		panic("meter provider must not be nil")
	}

	return func(cfg *journalConfig) {
		cfg.Telemetry.MeterProvider = p
	}
}

// WithLogger is a [JournalOption] that sets the logger used by the journal.
func WithLogger(l *slog.Logger) JournalOption {
	if l == nil {
		panic("logger must not be nil")
	}

	return func(cfg *journalConfig) {
		cfg.Telemetry.Logger = l
	}
}

// WithObserver is a [JournalOption] that adds an observer that is notified
// when records are replayed or cleared.
//
// If the option is given more than once, observers are notified in the order
// they were added.
func WithObserver(o Observer) JournalOption {
	if o == nil {
		panic("observer must not be nil")
	}

	return func(cfg *journalConfig) {
		cfg.Observers = append(cfg.Observers, o)
	}
}

// WithRecordType is a [JournalOption] that associates a type name with a
// record tag. The name is passed to the [Dispatcher] as the [TypeHint] of
// each record with that tag.
func WithRecordType(tag uint32, name string) JournalOption {
	if name == "" {
		panic("type name must not be empty")
	}

	return func(cfg *journalConfig) {
		if existing, ok := cfg.Types[tag]; ok {
			panic(fmt.Sprintf("tag %d is already associated with %q", tag, existing))
		}

		if cfg.Types == nil {
			cfg.Types = map[uint32]TypeHint{}
		}

		cfg.Types[tag] = TypeHint(name)
	}
}
