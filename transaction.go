package undojournal

import (
	"context"
	"errors"

	"github.com/dogmatiq/undojournal/internal/telemetry"
)

// StartTransaction begins a (possibly nested) transaction.
func (j *Journal) StartTransaction() {
	j.txns = append(j.txns, j.end)
}

// EndTransaction commits the innermost transaction. The records it produced
// remain in the journal.
func (j *Journal) EndTransaction() error {
	n := len(j.txns)
	if n == 0 {
		return ErrNoTransaction
	}

	j.txns = j.txns[:n-1]

	return nil
}

// NumActiveTransactions returns the current transaction nesting depth.
func (j *Journal) NumActiveTransactions() int {
	return len(j.txns)
}

// AbortTransaction undoes every record pushed since the innermost transaction
// was started, then ends the transaction.
//
// Each record is dispatched and discarded. A dispatch failure does not stop
// the abort; the remaining records are still undone and all errors are
// returned together. If the store itself fails the abort stops immediately.
// In every case the transaction is ended.
func (j *Journal) AbortTransaction(ctx context.Context) error {
	if j.replaying {
		return ErrReplaying
	}

	n := len(j.txns)
	if n == 0 {
		return ErrNoTransaction
	}

	start := j.txns[n-1]

	ctx, span := j.telemetry.StartSpan(
		ctx,
		"journal.abort_transaction",
		telemetry.Int("depth", j.store.Len()),
		telemetry.Int("transactions", n),
	)
	defer span.End()

	var (
		errs  []error
		count int
	)

loop:
	for j.end > start && j.store.HasData() {
		err := j.undoLast(ctx)

		var dispatchErr *DispatchError
		switch {
		case err == nil:
			count++
		case errors.As(err, &dispatchErr):
			count++
			errs = append(errs, err)
		default:
			errs = append(errs, err)
			break loop
		}
	}

	j.txns = j.txns[:n-1]

	if err := errors.Join(errs...); err != nil {
		span.Error(
			"transaction aborted with errors",
			err,
			telemetry.Int("undone", count),
		)
		return err
	}

	span.Debug(
		"transaction aborted",
		telemetry.Int("undone", count),
	)

	return nil
}
