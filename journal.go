package undojournal

import (
	"context"

	"github.com/dogmatiq/undojournal/internal/instrumented"
	"github.com/dogmatiq/undojournal/internal/telemetry"
	"github.com/dogmatiq/undojournal/store"
	"github.com/dogmatiq/undojournal/store/memorystore"
	"github.com/google/uuid"
)

// Journal records reversible deltas in a [store.Store] and replays them via a
// [Dispatcher].
type Journal struct {
	store      store.Store
	dispatcher Dispatcher
	observer   Observer
	types      map[uint32]TypeHint
	telemetry  *telemetry.Recorder

	started   bool
	disabled  bool
	blocked   bool
	replaying bool

	// end is the position immediately after the most recent record. It
	// increases with every push and decreases with every pop. Records evicted
	// by the store do not change it, so end-Len() is the position of the
	// oldest retained record.
	end uint64

	// marks and txns are stacks of positions. Each is non-decreasing from
	// bottom to top.
	marks []uint64
	txns  []uint64
}

// New returns a journal that records deltas in s and replays them using d.
//
// s must not be shared with any other journal.
func New(s store.Store, d Dispatcher, options ...JournalOption) *Journal {
	if s == nil {
		panic("store must not be nil")
	}

	if d == nil {
		panic("dispatcher must not be nil")
	}

	var cfg journalConfig
	for _, opt := range options {
		opt(&cfg)
	}

	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	r := cfg.Telemetry.Recorder(
		"github.com/dogmatiq/undojournal",
		"journal",
		telemetry.String("journal_id", cfg.ID),
		telemetry.Type("store", s),
	)

	is := instrumented.Wrap(s, r)

	j := &Journal{
		store:      is,
		dispatcher: d,
		types:      cfg.Types,
		telemetry:  r,
		end:        uint64(s.Len()),
	}

	if m, ok := s.(*memorystore.Store); ok {
		j.observeEvictions(m, is)
	}

	switch len(cfg.Observers) {
	case 0:
		j.observer = NopObserver{}
	case 1:
		j.observer = cfg.Observers[0]
	default:
		j.observer = observers(cfg.Observers)
	}

	return j
}

// observeEvictions arranges for records evicted from m to be logged and
// counted by is, in addition to any existing eviction hook.
//
// Evictions caused by [memorystore.Store.SetLimits] do not pass through is.
func (j *Journal) observeEvictions(m *memorystore.Store, is *instrumented.Store) {
	next := m.OnEvict
	logger := j.telemetry.Logger()

	m.OnEvict = func(rec store.Record) {
		is.Evicted(context.Background(), rec)

		logger.Debug(
			"undo record evicted to satisfy journal limits",
			"tag", rec.Tag,
			"type_hint", string(j.types[rec.Tag]),
			"record_size", len(rec.Payload),
		)

		if next != nil {
			next(rec)
		}
	}
}

// State returns the journal's current recording state.
func (j *Journal) State() State {
	switch {
	case j.replaying:
		return Replaying
	case !j.started:
		return Idle
	case j.disabled || j.blocked:
		return Suspended
	default:
		return Recording
	}
}

// StartUndoRecord begins recording deltas.
//
// If recording has been disabled or blocked the journal remains suspended
// until recording is re-enabled.
func (j *Journal) StartUndoRecord() {
	if j.started {
		return
	}

	j.started = true
	j.telemetry.Logger().Debug(
		"undo recording started",
		"state", j.State().String(),
	)
}

// DisableUndoRecording suspends (true) or resumes (false) recording at the
// request of the user.
//
// Records already in the journal are retained while recording is suspended.
func (j *Journal) DisableUndoRecording(disable bool) {
	j.disabled = disable
	j.logStateChange("disabled", disable)
}

// BlockUndoRecording suspends (true) or resumes (false) recording on behalf
// of the object model, for example while it performs an edit that must not be
// undoable.
//
// It is independent of [Journal.DisableUndoRecording]; recording resumes only
// once neither is in effect.
func (j *Journal) BlockUndoRecording(block bool) {
	j.blocked = block
	j.logStateChange("blocked", block)
}

func (j *Journal) logStateChange(flag string, v bool) {
	j.telemetry.Logger().Debug(
		"undo recording flag changed",
		flag, v,
		"state", j.State().String(),
	)
}

// RecordDelta adds a record describing how to reverse an edit.
//
// If recording is suspended the delta is discarded and nil is returned. It
// returns [ErrNotRecording] if recording has not been started, and
// [ErrReplaying] if it is called while a record is being replayed.
func (j *Journal) RecordDelta(ctx context.Context, payload []byte, tag uint32) error {
	switch j.State() {
	case Idle:
		return ErrNotRecording
	case Replaying:
		return ErrReplaying
	case Suspended:
		return nil
	}

	if err := j.store.Push(ctx, store.Record{
		Payload: payload,
		Tag:     tag,
	}); err != nil {
		return err
	}

	j.end++

	return nil
}

// HasUndo returns true if there is at least one record that can be undone.
func (j *Journal) HasUndo() bool {
	return j.store.HasData()
}

// Depth returns the number of records in the journal.
func (j *Journal) Depth() int {
	return j.store.Len()
}

// Tags returns an iterator over the tags of the records in the journal, from
// the most recent to the oldest.
func (j *Journal) Tags() store.Iterator {
	return j.store.Tags()
}

// ClearUndo removes all records and marks from the journal.
//
// Active transactions remain active, but aborting them no longer undoes any
// records pushed before the journal was cleared.
func (j *Journal) ClearUndo(ctx context.Context) error {
	if j.replaying {
		return ErrReplaying
	}

	ctx, span := j.telemetry.StartSpan(
		ctx,
		"journal.clear",
		telemetry.Stringer("state", j.State()),
		telemetry.Int("depth", j.store.Len()),
		telemetry.Int("marks", len(j.marks)),
		telemetry.Bool("in_transaction", len(j.txns) != 0),
	)
	defer span.End()

	if err := j.store.Clear(ctx); err != nil {
		span.Error("unable to clear undo journal", err)
		return err
	}

	j.end = 0
	j.marks = nil
	j.invalidate()

	j.observer.Cleared(ctx)

	span.Debug("undo journal cleared")

	return nil
}

// invalidate discards marks and clamps transaction start positions that lie
// beyond the end of the journal.
func (j *Journal) invalidate() {
	for n := len(j.marks); n > 0 && j.marks[n-1] > j.end; n-- {
		j.marks = j.marks[:n-1]
	}

	for i := len(j.txns) - 1; i >= 0 && j.txns[i] > j.end; i-- {
		j.txns[i] = j.end
	}
}
