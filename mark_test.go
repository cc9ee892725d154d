package undojournal_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/internal/test"
	"github.com/dogmatiq/undojournal/internal/tlog"
	"github.com/dogmatiq/undojournal/store/memorystore"
	"pgregory.net/rapid"
)

func TestJournal_UndoBack(t *testing.T) {
	ctx := context.Background()

	t.Run("it undoes records pushed after the mark", func(t *testing.T) {
		j, d := setup(t)

		record(t, j, 1, 2)
		j.SetUndoMark()
		record(t, j, 3, 4, 5)

		if !j.HasUndoMark() {
			t.Fatal("expected HasUndoMark() to return true")
		}

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{5, 4, 3})
		test.Expect(t, "unexpected remaining tags", tagsOf(j), []uint32{2, 1})

		if j.HasUndoMark() {
			t.Fatal("expected HasUndoMark() to return false")
		}
	})

	t.Run("it discards the mark even if nothing was pushed after it", func(t *testing.T) {
		j, d := setup(t)

		record(t, j, 1)
		j.SetUndoMark()

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		if len(d.Records) != 0 {
			t.Fatalf("unexpected replayed tags: %v", d.Tags())
		}

		if j.HasUndoMark() {
			t.Fatal("expected HasUndoMark() to return false")
		}
	})

	t.Run("it supports nested marks", func(t *testing.T) {
		j, d := setup(t)

		j.SetUndoMark()
		record(t, j, 1)
		j.SetUndoMark()
		record(t, j, 2, 3)

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{3, 2})

		if !j.HasUndoMark() {
			t.Fatal("expected outer mark to remain")
		}

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{3, 2, 1})
	})

	t.Run("it returns ErrNoMark if no mark is set", func(t *testing.T) {
		j, _ := setup(t)

		record(t, j, 1)

		err := j.UndoBack(ctx)
		test.ExpectErrorIs(t, err, ErrNoMark)

		test.Expect(t, "unexpected tags", tagsOf(j), []uint32{1})
	})

	t.Run("it discards marks that are undone past", func(t *testing.T) {
		j, _ := setup(t)

		record(t, j, 1)
		j.SetUndoMark()

		if err := j.Undo(ctx); err != nil {
			t.Fatal(err)
		}

		if j.HasUndoMark() {
			t.Fatal("expected HasUndoMark() to return false")
		}
	})

	t.Run("it keeps the mark if the dispatcher fails", func(t *testing.T) {
		cause := errors.New("<error>")

		j, d := setup(t)
		d.Fail = func(tag uint32) error {
			if tag == 3 {
				return cause
			}
			return nil
		}

		record(t, j, 1)
		j.SetUndoMark()
		record(t, j, 2, 3, 4)

		err := j.UndoBack(ctx)
		test.ExpectErrorIs(t, err, cause)

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{4, 3})

		if !j.HasUndoMark() {
			t.Fatal("expected HasUndoMark() to return true")
		}

		d.Fail = nil

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{4, 3, 2})
		test.Expect(t, "unexpected remaining tags", tagsOf(j), []uint32{1})
	})

	t.Run("it does not undo records older than the mark after eviction", func(t *testing.T) {
		d := &replayLog{}
		j := New(
			memorystore.New(2, 0),
			d,
			WithLogger(tlog.New(t)),
		)
		j.StartUndoRecord()

		record(t, j, 1, 2)
		j.SetUndoMark()
		record(t, j, 3)

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{3})
		test.Expect(t, "unexpected remaining tags", tagsOf(j), []uint32{2})
	})

	t.Run("it stops when the records after the mark have been evicted", func(t *testing.T) {
		d := &replayLog{}
		j := New(
			memorystore.New(2, 0),
			d,
			WithLogger(tlog.New(t)),
		)
		j.StartUndoRecord()

		j.SetUndoMark()
		record(t, j, 1, 2, 3)

		if err := j.UndoBack(ctx); err != nil {
			t.Fatal(err)
		}

		test.Expect(t, "unexpected replayed tags", d.Tags(), []uint32{3, 2})

		if j.HasUndo() {
			t.Fatal("expected HasUndo() to return false")
		}
	})
}

func TestJournal_marks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()

		maxSteps := rapid.Uint32Range(0, 8).Draw(t, "max steps")

		d := &replayLog{}
		j := New(memorystore.New(maxSteps, 0), d)
		j.StartUndoRecord()

		var (
			// model holds the tags that have been pushed and not yet undone,
			// including those that have been evicted.
			model []uint32
			held  int // number of records in model still held by the store
			marks []int
			next  uint32
		)

		t.Repeat(map[string]func(*rapid.T){
			"": func(t *rapid.T) {
				if j.HasUndoMark() != (len(marks) != 0) {
					t.Fatalf("unexpected HasUndoMark() result, %d mark(s) expected", len(marks))
				}

				if j.Depth() != held {
					t.Fatalf("unexpected depth: got %d, want %d", j.Depth(), held)
				}
			},
			"record": func(t *rapid.T) {
				next++
				if err := j.RecordDelta(ctx, nil, next); err != nil {
					t.Fatal(err)
				}

				model = append(model, next)
				if maxSteps == 0 || held < int(maxSteps) {
					held++
				}
			},
			"set mark": func(t *rapid.T) {
				j.SetUndoMark()
				marks = append(marks, len(model))
			},
			"undo": func(t *rapid.T) {
				if held == 0 {
					t.Skip("nothing to undo")
				}

				if err := j.Undo(ctx); err != nil {
					t.Fatal(err)
				}

				model = model[:len(model)-1]
				held--

				for len(marks) != 0 && marks[len(marks)-1] > len(model) {
					marks = marks[:len(marks)-1]
				}
			},
			"undo back": func(t *rapid.T) {
				if len(marks) == 0 {
					err := j.UndoBack(ctx)
					test.ExpectErrorIs(t, err, ErrNoMark)
					return
				}

				mark := marks[len(marks)-1]
				marks = marks[:len(marks)-1]

				d.Records = nil
				if err := j.UndoBack(ctx); err != nil {
					t.Fatal(err)
				}

				// Only the records still held by the store can be replayed.
				stop := len(model) - held
				if stop < mark {
					stop = mark
				}

				var want []uint32
				for i := len(model) - 1; i >= stop; i-- {
					want = append(want, model[i])
				}

				test.Expect(t, "unexpected replayed tags", d.Tags(), want)

				held -= len(model) - stop
				model = model[:stop]
			},
		})
	})
}
