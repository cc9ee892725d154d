package undojournal

import (
	"context"

	"github.com/dogmatiq/undojournal/internal/telemetry"
)

// SetUndoMark remembers the current position in the journal so that a later
// call to [Journal.UndoBack] can undo every record pushed after it.
//
// Marks nest. A mark is discarded once the journal is undone past it or
// cleared.
func (j *Journal) SetUndoMark() {
	j.marks = append(j.marks, j.end)
}

// HasUndoMark returns true if at least one mark is set.
func (j *Journal) HasUndoMark() bool {
	return len(j.marks) != 0
}

// UndoBack undoes every record pushed since the most recent mark, then
// discards the mark.
//
// It returns [ErrNoMark] if no mark is set. If the dispatcher fails, UndoBack
// stops and returns the error; the mark is retained so that the operation may
// be resumed.
func (j *Journal) UndoBack(ctx context.Context) error {
	if j.replaying {
		return ErrReplaying
	}

	n := len(j.marks)
	if n == 0 {
		return ErrNoMark
	}

	mark := j.marks[n-1]

	ctx, span := j.telemetry.StartSpan(
		ctx,
		"journal.undo_back",
		telemetry.Int("depth", j.store.Len()),
		telemetry.Int("mark", mark),
		telemetry.Int("marks", n),
	)
	defer span.End()

	count := 0
	for j.end > mark && j.store.HasData() {
		if err := j.undoLast(ctx); err != nil {
			span.Error(
				"unable to undo back to mark",
				err,
				telemetry.Int("undone", count),
			)
			return err
		}
		count++
	}

	j.marks = j.marks[:len(j.marks)-1]

	span.Debug(
		"undid records back to mark",
		telemetry.Int("undone", count),
	)

	return nil
}
