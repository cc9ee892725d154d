package store

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/dogmatiq/undojournal/internal/test"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a store implementation behaves correctly.
//
// newStore must return an empty store that enforces no resource budget.
func RunTests(
	t *testing.T,
	newStore func(t *testing.T) Store,
) {
	t.Run("func Pop()", func(t *testing.T) {
		t.Run("it returns the record that was pushed", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			want := Record{
				Payload: []byte("<payload>"),
				Tag:     42,
			}

			if err := s.Push(ctx, want); err != nil {
				t.Fatal(err)
			}

			got, err := s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(
				t,
				"unexpected record",
				got,
				want,
			)
		})

		t.Run("it returns records in last-in, first-out order", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			var records []Record

			// Ensure we test with a tag that becomes 2 digits long.
			for i := 0; i < 15; i++ {
				rec := Record{
					Payload: []byte(fmt.Sprintf("<record-%d>", i)),
					Tag:     uint32(i),
				}
				records = append(records, rec)

				if err := s.Push(ctx, rec); err != nil {
					t.Fatal(err)
				}
			}

			for i := len(records) - 1; i >= 0; i-- {
				got, err := s.Pop(ctx)
				if err != nil {
					t.Fatal(err)
				}

				test.Expect(
					t,
					fmt.Sprintf("unexpected record at index %d", i),
					got,
					records[i],
				)
			}

			if s.HasData() {
				t.Fatal("expected store to be empty")
			}
		})

		t.Run("it returns ErrEmpty if the store is empty", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			_, err := s.Pop(ctx)
			test.ExpectErrorIs(t, err, ErrEmpty)
		})

		t.Run("it supports records with an empty payload", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			if err := s.Push(ctx, Record{Tag: 7}); err != nil {
				t.Fatal(err)
			}

			got, err := s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if got.Tag != 7 || len(got.Payload) != 0 {
				t.Fatalf("unexpected record: %+v", got)
			}
		})

		t.Run("it drains the store one record at a time", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			if err := s.Push(ctx, Record{Payload: []byte("AB"), Tag: 1}); err != nil {
				t.Fatal(err)
			}

			if err := s.Push(ctx, Record{Payload: []byte("CDE"), Tag: 2}); err != nil {
				t.Fatal(err)
			}

			got, err := s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}
			test.Expect(t, "unexpected first record", got, Record{Payload: []byte("CDE"), Tag: 2})

			got, err = s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}
			test.Expect(t, "unexpected second record", got, Record{Payload: []byte("AB"), Tag: 1})

			if s.HasData() {
				t.Fatal("expected HasData() to return false")
			}

			_, err = s.Pop(ctx)
			test.ExpectErrorIs(t, err, ErrEmpty)
		})
	})

	t.Run("func Push()", func(t *testing.T) {
		t.Run("it does not retain the caller's buffer", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			buf := []byte("<original>")
			if err := s.Push(ctx, Record{Payload: buf, Tag: 1}); err != nil {
				t.Fatal(err)
			}

			copy(buf, "<modified>")

			got, err := s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}

			if !bytes.Equal(got.Payload, []byte("<original>")) {
				t.Fatalf("unexpected payload: %q", got.Payload)
			}
		})
	})

	t.Run("func Clear()", func(t *testing.T) {
		t.Run("it removes all records", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			for i := 0; i < 3; i++ {
				if err := s.Push(ctx, Record{Payload: []byte("<record>"), Tag: uint32(i)}); err != nil {
					t.Fatal(err)
				}
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatal(err)
			}

			if s.HasData() {
				t.Fatal("expected HasData() to return false")
			}

			if n := s.Len(); n != 0 {
				t.Fatalf("unexpected length: got %d, want 0", n)
			}

			_, err := s.Pop(ctx)
			test.ExpectErrorIs(t, err, ErrEmpty)
		})

		t.Run("it is idempotent", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			for i := 0; i < 2; i++ {
				if err := s.Clear(ctx); err != nil {
					t.Fatal(err)
				}

				if s.HasData() {
					t.Fatal("expected HasData() to return false")
				}
			}
		})

		t.Run("it allows the store to be reused", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			if err := s.Push(ctx, Record{Payload: []byte("<old>"), Tag: 1}); err != nil {
				t.Fatal(err)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatal(err)
			}

			want := Record{Payload: []byte("<new>"), Tag: 2}
			if err := s.Push(ctx, want); err != nil {
				t.Fatal(err)
			}

			got, err := s.Pop(ctx)
			if err != nil {
				t.Fatal(err)
			}

			test.Expect(t, "unexpected record", got, want)
		})
	})

	t.Run("func Tags()", func(t *testing.T) {
		t.Run("it yields tags from newest to oldest", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			for _, tag := range []uint32{1, 2, 3} {
				if err := s.Push(ctx, Record{Payload: []byte("<record>"), Tag: tag}); err != nil {
					t.Fatal(err)
				}
			}

			test.Expect(
				t,
				"unexpected tags",
				CollectTags(s),
				[]uint32{3, 2, 1},
			)
		})

		t.Run("it can be restarted", func(t *testing.T) {
			t.Parallel()

			ctx := test.Context(t)
			s := newStore(t)

			for _, tag := range []uint32{10, 20} {
				if err := s.Push(ctx, Record{Payload: []byte("<record>"), Tag: tag}); err != nil {
					t.Fatal(err)
				}
			}

			first := CollectTags(s)
			second := CollectTags(s)

			test.Expect(t, "traversals differ", second, first)

			if n := s.Len(); n != 2 {
				t.Fatalf("iteration modified the store: got length %d, want 2", n)
			}
		})

		t.Run("it yields nothing for an empty store", func(t *testing.T) {
			t.Parallel()

			s := newStore(t)

			if _, ok := s.Tags().Next(); ok {
				t.Fatal("expected iterator to be exhausted")
			}
		})
	})

	t.Run("it behaves like a stack", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			ctx := context.Background()
			s := newStore(t)

			var model []Record

			rt.Repeat(
				map[string]func(*rapid.T){
					"push": func(rt *rapid.T) {
						rec := Record{
							Payload: rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "payload"),
							Tag:     rapid.Uint32().Draw(rt, "tag"),
						}

						if err := s.Push(ctx, rec); err != nil {
							rt.Fatal(err)
						}

						model = append(model, Record{
							Payload: bytes.Clone(rec.Payload),
							Tag:     rec.Tag,
						})
					},
					"pop": func(rt *rapid.T) {
						got, err := s.Pop(ctx)

						if len(model) == 0 {
							test.ExpectErrorIs(rt, err, ErrEmpty)
							return
						}

						if err != nil {
							rt.Fatal(err)
						}

						want := model[len(model)-1]
						model = model[:len(model)-1]

						test.Expect(rt, "unexpected record", got, want)
					},
					"clear": func(rt *rapid.T) {
						if err := s.Clear(ctx); err != nil {
							rt.Fatal(err)
						}
						model = nil
					},
					"": func(rt *rapid.T) {
						if got, want := s.Len(), len(model); got != want {
							rt.Fatalf("unexpected length: got %d, want %d", got, want)
						}

						if got, want := s.HasData(), len(model) != 0; got != want {
							rt.Fatalf("unexpected HasData(): got %t, want %t", got, want)
						}

						var want []uint32
						for i := len(model) - 1; i >= 0; i-- {
							want = append(want, model[i].Tag)
						}

						test.Expect(rt, "unexpected tags", CollectTags(s), want)
					},
				},
			)
		})
	})
}
