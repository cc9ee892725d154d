package instrumented

import (
	"context"

	"github.com/dogmatiq/undojournal/internal/telemetry"
	"github.com/dogmatiq/undojournal/store"
	"go.opentelemetry.io/otel/metric"
)

// Store is a decorator that adds instrumentation to a [store.Store].
type Store struct {
	next      store.Store
	telemetry *telemetry.Recorder

	depth      metric.Int64UpDownCounter
	evictions  metric.Int64Counter
	dataIO     metric.Int64Counter
	recordIO   metric.Int64Counter
	recordSize metric.Int64Histogram
}

var _ store.Store = (*Store)(nil)

// Wrap returns a [Store] that instruments next using r.
func Wrap(next store.Store, r *telemetry.Recorder) *Store {
	s := &Store{
		next:      next,
		telemetry: r,
		depth: r.Int64UpDownCounter(
			"depth",
			metric.WithDescription("The number of records currently held in undo logs."),
			metric.WithUnit("{record}"),
		),
		evictions: r.Int64Counter(
			"evictions",
			metric.WithDescription("The number of records discarded to satisfy undo log limits."),
			metric.WithUnit("{record}"),
		),
		dataIO: r.Int64Counter(
			"io",
			metric.WithDescription("The cumulative size of the undo records that have been pushed and popped."),
			metric.WithUnit("By"),
		),
		recordIO: r.Int64Counter(
			"record.io",
			metric.WithDescription("The number of undo records that have been pushed and popped."),
			metric.WithUnit("{record}"),
		),
		recordSize: r.Int64Histogram(
			"record.size",
			metric.WithDescription("The sizes of the undo records that have been pushed and popped."),
			metric.WithUnit("By"),
		),
	}

	s.depth.Add(context.Background(), int64(next.Len()))

	return s
}

// Unwrap returns the underlying store.
func (s *Store) Unwrap() store.Store {
	return s.next
}

// Push adds a record to the back of the store.
func (s *Store) Push(ctx context.Context, rec store.Record) error {
	size := int64(len(rec.Payload))

	ctx, span := s.telemetry.StartSpan(
		ctx,
		"store.push",
		telemetry.Int("tag", rec.Tag),
		telemetry.Int("record_size", size),
		telemetry.Int("depth", s.next.Len()),
	)
	defer span.End()

	if err := s.next.Push(ctx, rec); err != nil {
		span.Error("unable to push undo record", err)
		return err
	}

	s.dataIO.Add(ctx, size, telemetry.WriteDirection)
	s.recordIO.Add(ctx, 1, telemetry.WriteDirection)
	s.recordSize.Record(ctx, size, telemetry.WriteDirection)

	s.depth.Add(ctx, 1)

	span.SetAttributes(
		telemetry.Int("depth", s.next.Len()),
	)

	span.Debug("undo record pushed")

	return nil
}

// Evicted records that the underlying store discarded a record to satisfy
// its limits.
//
// The underlying store must call it once for each record it evicts, whether
// or not the eviction happens during a call to [Store.Push].
func (s *Store) Evicted(ctx context.Context, _ store.Record) {
	s.depth.Add(ctx, -1)
	s.evictions.Add(ctx, 1)
}

// Pop removes the record at the back of the store and returns it.
func (s *Store) Pop(ctx context.Context) (store.Record, error) {
	ctx, span := s.telemetry.StartSpan(
		ctx,
		"store.pop",
		telemetry.Int("depth", s.next.Len()),
	)
	defer span.End()

	rec, err := s.next.Pop(ctx)
	if err != nil {
		span.Error("unable to pop undo record", err)
		return store.Record{}, err
	}

	size := int64(len(rec.Payload))

	s.dataIO.Add(ctx, size, telemetry.ReadDirection)
	s.recordIO.Add(ctx, 1, telemetry.ReadDirection)
	s.recordSize.Record(ctx, size, telemetry.ReadDirection)
	s.depth.Add(ctx, -1)

	span.SetAttributes(
		telemetry.Int("tag", rec.Tag),
		telemetry.Int("record_size", size),
	)

	span.Debug("undo record popped")

	return rec, nil
}

// HasData returns true if the store contains at least one record.
func (s *Store) HasData() bool {
	return s.next.HasData()
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return s.next.Len()
}

// Clear removes all records from the store.
func (s *Store) Clear(ctx context.Context) error {
	before := s.next.Len()

	ctx, span := s.telemetry.StartSpan(
		ctx,
		"store.clear",
		telemetry.Int("depth", before),
	)
	defer span.End()

	if err := s.next.Clear(ctx); err != nil {
		span.Error("unable to clear undo log", err)
		return err
	}

	s.depth.Add(ctx, -int64(before))
	span.Debug("undo log cleared")

	return nil
}

// Tags returns an iterator over the tags of the records in the store.
func (s *Store) Tags() store.Iterator {
	return s.next.Tags()
}
