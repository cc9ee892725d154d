package undojournal

import (
	"context"

	"github.com/dogmatiq/undojournal/internal/telemetry"
	"github.com/dogmatiq/undojournal/store"
)

// Undo removes the most recent record from the journal and passes it to the
// dispatcher.
//
// It returns [store.ErrEmpty] if there is nothing to undo; callers are
// expected to check [Journal.HasUndo] first. If the dispatcher fails, the
// record has still been removed and a [*DispatchError] is returned.
func (j *Journal) Undo(ctx context.Context) error {
	return j.replayOne(ctx, "journal.undo")
}

// Redo removes the most recent record from the journal and passes it to the
// dispatcher.
//
// The journal keeps no redo history of its own. Redo is intended for a
// journal that the host uses as its redo log, recording the inverse of each
// undo as a fresh record.
func (j *Journal) Redo(ctx context.Context) error {
	return j.replayOne(ctx, "journal.redo")
}

func (j *Journal) replayOne(ctx context.Context, name string) error {
	if j.replaying {
		return ErrReplaying
	}

	ctx, span := j.telemetry.StartSpan(
		ctx,
		name,
		telemetry.Int("depth", j.store.Len()),
	)
	defer span.End()

	if err := j.undoLast(ctx); err != nil {
		span.Error("unable to replay undo record", err)
		return err
	}

	span.Debug("undo record replayed")

	return nil
}

// undoLast pops the most recent record and dispatches it.
func (j *Journal) undoLast(ctx context.Context) error {
	rec, err := j.store.Pop(ctx)
	if err != nil {
		return err
	}

	j.end--
	j.invalidate()

	return j.dispatch(ctx, rec)
}

// dispatch passes rec to the dispatcher with the journal in the Replaying
// state.
func (j *Journal) dispatch(ctx context.Context, rec store.Record) (err error) {
	hint := j.types[rec.Tag]

	ctx, span := j.telemetry.StartSpan(
		ctx,
		"journal.dispatch",
		telemetry.Int("tag", rec.Tag),
		telemetry.String("type_hint", hint),
		telemetry.Int("record_size", len(rec.Payload)),
	)
	defer span.End()

	j.replaying = true
	defer func() {
		j.replaying = false
		j.observer.AfterUndo(ctx, rec, err)
	}()

	j.observer.BeforeUndo(ctx, rec)

	if err := j.dispatcher.ApplyInverse(ctx, rec.Payload, rec.Tag, hint); err != nil {
		span.Warn(
			"dispatcher could not apply undo record, record discarded",
			telemetry.Binary("payload", rec.Payload),
			telemetry.String("error", err.Error()),
		)

		return &DispatchError{
			Tag:      rec.Tag,
			TypeHint: hint,
			Cause:    err,
		}
	}

	return nil
}
