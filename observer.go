package undojournal

import (
	"context"

	"github.com/dogmatiq/undojournal/store"
)

// An Observer is notified as a [Journal] replays and clears records.
//
// Hosts use observers to fire their own notifications around an undo, such
// as informing views that the document is about to change.
type Observer interface {
	// BeforeUndo is called after rec is removed from the journal, immediately
	// before it is passed to the dispatcher.
	BeforeUndo(ctx context.Context, rec store.Record)

	// AfterUndo is called once the dispatcher returns. err is the error
	// returned by the journal, if any.
	AfterUndo(ctx context.Context, rec store.Record, err error)

	// Cleared is called after all records are removed by
	// [Journal.ClearUndo].
	Cleared(ctx context.Context)
}

// NopObserver is an [Observer] that does nothing. It may be embedded in other
// observers that only need some of the notifications.
type NopObserver struct{}

// BeforeUndo does nothing.
func (NopObserver) BeforeUndo(context.Context, store.Record) {}

// AfterUndo does nothing.
func (NopObserver) AfterUndo(context.Context, store.Record, error) {}

// Cleared does nothing.
func (NopObserver) Cleared(context.Context) {}

// observers is an [Observer] that notifies each of its elements in order.
type observers []Observer

func (o observers) BeforeUndo(ctx context.Context, rec store.Record) {
	for _, x := range o {
		x.BeforeUndo(ctx, rec)
	}
}

func (o observers) AfterUndo(ctx context.Context, rec store.Record, err error) {
	for _, x := range o {
		x.AfterUndo(ctx, rec, err)
	}
}

func (o observers) Cleared(ctx context.Context) {
	for _, x := range o {
		x.Cleared(ctx)
	}
}
