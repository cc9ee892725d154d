package undojournal

import (
	"context"
	"fmt"
)

// TypeHint is the name of the type of object that a record applies to, as
// registered with [WithRecordType]. It is empty if no name is registered for
// the record's tag.
type TypeHint string

// A Dispatcher applies the inverse of an edit described by an undo record.
type Dispatcher interface {
	// ApplyInverse reverses the edit described by payload.
	//
	// The journal is in the [Replaying] state for the duration of the call,
	// so any attempt to record further deltas fails with [ErrReplaying].
	ApplyInverse(ctx context.Context, payload []byte, tag uint32, hint TypeHint) error
}

// DispatcherFunc is an adaptor that allows an ordinary function to be used as
// a [Dispatcher].
type DispatcherFunc func(ctx context.Context, payload []byte, tag uint32, hint TypeHint) error

// ApplyInverse returns fn(ctx, payload, tag, hint).
func (fn DispatcherFunc) ApplyInverse(ctx context.Context, payload []byte, tag uint32, hint TypeHint) error {
	return fn(ctx, payload, tag, hint)
}

// Mux is a [Dispatcher] that routes each record to another dispatcher based
// on the record's tag.
//
// The zero value is ready to use.
type Mux struct {
	dispatchers map[uint32]Dispatcher
}

// Handle registers d as the dispatcher for records with the given tag.
//
// It panics if a dispatcher is already registered for the tag.
func (m *Mux) Handle(tag uint32, d Dispatcher) {
	if d == nil {
		panic("dispatcher must not be nil")
	}

	if _, ok := m.dispatchers[tag]; ok {
		panic(fmt.Sprintf("a dispatcher is already registered for tag %d", tag))
	}

	if m.dispatchers == nil {
		m.dispatchers = map[uint32]Dispatcher{}
	}

	m.dispatchers[tag] = d
}

// HandleFunc registers fn as the dispatcher for records with the given tag.
func (m *Mux) HandleFunc(
	tag uint32,
	fn func(ctx context.Context, payload []byte, tag uint32, hint TypeHint) error,
) {
	m.Handle(tag, DispatcherFunc(fn))
}

// ApplyInverse forwards the record to the dispatcher registered for its tag.
//
// It returns an error wrapping [ErrUnknownTag] if there is no such
// dispatcher.
func (m *Mux) ApplyInverse(ctx context.Context, payload []byte, tag uint32, hint TypeHint) error {
	d, ok := m.dispatchers[tag]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTag, tag)
	}
	return d.ApplyInverse(ctx, payload, tag, hint)
}
