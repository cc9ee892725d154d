package store

import (
	"context"
	"errors"
)

// ErrEmpty is returned by [Store.Pop] when the store contains no records.
var ErrEmpty = errors.New("undo log is empty")

// Record is a single reversible delta stored in an undo log.
//
// The payload is opaque to the store. The tag is chosen by the caller and
// identifies how to interpret the payload when the record is replayed.
type Record struct {
	Payload []byte
	Tag     uint32
}

// Size returns the number of bytes in the record's payload.
func (r Record) Size() int {
	return len(r.Payload)
}

// A Store is an ordered collection of records, consumed in last-in, first-out
// order.
//
// Implementations are not safe for concurrent use. The record that was pushed
// most recently is at the "back" of the store.
type Store interface {
	// Push adds a record to the back of the store.
	//
	// The store takes a copy of the payload, so the caller may reuse rec's
	// buffer once Push returns.
	Push(ctx context.Context, rec Record) error

	// Pop removes the record at the back of the store and returns it.
	//
	// It returns [ErrEmpty] if the store contains no records.
	Pop(ctx context.Context) (Record, error)

	// HasData returns true if the store contains at least one record.
	HasData() bool

	// Len returns the number of records in the store.
	Len() int

	// Clear removes all records from the store.
	Clear(ctx context.Context) error

	// Tags returns an iterator over the tags of the records in the store,
	// from the most recently pushed record to the oldest.
	//
	// Each call returns a fresh iterator. The store must not be modified while
	// the iterator is in use.
	Tags() Iterator
}
