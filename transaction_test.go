package undojournal_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/internal/test"
	"github.com/dogmatiq/undojournal/store"
)

func TestJournal_transactions(t *testing.T) {
	ctx := context.Background()

	t.Run("it keeps records when a transaction is ended", func(t *testing.T) {
		j, _ := setup(t)

		j.StartTransaction()
		record(t, j, 1, 2)

		if n := j.NumActiveTransactions(); n != 1 {
			t.Fatalf("unexpected number of active transactions: got %d, want 1", n)
		}

		if err := j.EndTransaction(); err != nil {
			t.Fatal(err)
		}

		if n := j.NumActiveTransactions(); n != 0 {
			t.Fatalf("unexpected number of active transactions: got %d, want 0", n)
		}

		test.Expect(t, "unexpected tags", tagsOf(j), []uint32{2, 1})
	})

	t.Run("it undoes records when a transaction is aborted", func(t *testing.T) {
		j, d := setup(t)

		record(t, j, 1)
		j.StartTransaction()
		record(t, j, 2, 3)

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{3, 2})
		test.Expect(t, "unexpected remaining tags", tagsOf(j), []uint32{1})

		if n := j.NumActiveTransactions(); n != 0 {
			t.Fatalf("unexpected number of active transactions: got %d, want 0", n)
		}
	})

	t.Run("it aborts only the innermost transaction", func(t *testing.T) {
		j, d := setup(t)

		j.StartTransaction()
		record(t, j, 1)
		j.StartTransaction()
		record(t, j, 2)

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{2})

		if n := j.NumActiveTransactions(); n != 1 {
			t.Fatalf("unexpected number of active transactions: got %d, want 1", n)
		}

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{2, 1})
	})

	t.Run("it undoes committed inner transactions when the outer one is aborted", func(t *testing.T) {
		j, d := setup(t)

		j.StartTransaction()
		record(t, j, 1)
		j.StartTransaction()
		record(t, j, 2)

		if err := j.EndTransaction(); err != nil {
			t.Fatal(err)
		}

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{2, 1})
	})

	t.Run("it returns ErrNoTransaction if no transaction is active", func(t *testing.T) {
		j, _ := setup(t)

		test.ExpectErrorIs(t, j.EndTransaction(), ErrNoTransaction)
		test.ExpectErrorIs(t, j.AbortTransaction(ctx), ErrNoTransaction)
	})

	t.Run("it continues past dispatch failures", func(t *testing.T) {
		cause := errors.New("<error>")

		j, d := setup(t)
		d.Fail = func(tag uint32) error {
			if tag%2 == 0 {
				return cause
			}
			return nil
		}

		j.StartTransaction()
		record(t, j, 1, 2, 3, 4, 5)

		err := j.AbortTransaction(ctx)
		test.ExpectErrorIs(t, err, cause)

		var dispatchErr *DispatchError
		if !errors.As(err, &dispatchErr) {
			t.Fatalf("expected a DispatchError, got %T", err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{5, 4, 3, 2, 1})

		if j.HasUndo() {
			t.Fatal("expected HasUndo() to return false")
		}

		if n := j.NumActiveTransactions(); n != 0 {
			t.Fatalf("unexpected number of active transactions: got %d, want 0", n)
		}
	})

	t.Run("it does not undo records that were cleared", func(t *testing.T) {
		j, d := setup(t)

		j.StartTransaction()
		record(t, j, 1)

		if err := j.ClearUndo(ctx); err != nil {
			t.Fatal(err)
		}

		record(t, j, 2)

		if n := j.NumActiveTransactions(); n != 1 {
			t.Fatalf("unexpected number of active transactions: got %d, want 1", n)
		}

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{2})
	})

	t.Run("it can not be aborted from within a dispatch", func(t *testing.T) {
		j, d := setup(t)

		var abortErr error
		d.During = func(ctx context.Context) {
			abortErr = j.AbortTransaction(ctx)
		}

		j.StartTransaction()
		record(t, j, 1)

		if err := j.Undo(ctx); err != nil {
			t.Fatal(err)
		}

		test.ExpectErrorIs(t, abortErr, ErrReplaying)
	})

	t.Run("it undoes nothing if the journal is empty", func(t *testing.T) {
		j, d := setup(t)

		j.StartTransaction()

		if err := j.AbortTransaction(ctx); err != nil {
			t.Fatal(err)
		}

		if len(d.Records) != 0 {
			t.Fatalf("unexpected replayed tags: %v", d.Tags())
		}

		err := j.Undo(ctx)
		test.ExpectErrorIs(t, err, store.ErrEmpty)
	})
}
