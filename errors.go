package undojournal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRecording is returned by [Journal.RecordDelta] if
	// [Journal.StartUndoRecord] has not been called.
	ErrNotRecording = errors.New("undo recording has not been started")

	// ErrReplaying is returned when the journal is modified while a record is
	// being replayed.
	ErrReplaying = errors.New("undo journal is replaying a record")

	// ErrNoMark is returned by [Journal.UndoBack] if no mark has been set.
	ErrNoMark = errors.New("undo journal has no mark")

	// ErrNoTransaction is returned when a transaction is ended or aborted but
	// none is active.
	ErrNoTransaction = errors.New("no transaction is active")

	// ErrUnknownTag is returned by [Mux] when there is no dispatcher
	// registered for a record's tag.
	ErrUnknownTag = errors.New("no dispatcher is registered for the undo record's tag")
)

// DispatchError indicates that a [Dispatcher] was unable to apply the inverse
// of a record.
//
// The record has already been removed from the journal.
type DispatchError struct {
	Tag      uint32
	TypeHint TypeHint
	Cause    error
}

func (e *DispatchError) Error() string {
	if e.TypeHint == "" {
		return fmt.Sprintf(
			"unable to undo record with tag %d: %s",
			e.Tag,
			e.Cause,
		)
	}

	return fmt.Sprintf(
		"unable to undo %s record with tag %d: %s",
		e.TypeHint,
		e.Tag,
		e.Cause,
	)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}
