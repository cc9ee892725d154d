package memorystore_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/dogmatiq/undojournal/internal/test"
	"github.com/dogmatiq/undojournal/store"
	. "github.com/dogmatiq/undojournal/store/memorystore"
	"pgregory.net/rapid"
)

func TestStore(t *testing.T) {
	store.RunTests(
		t,
		func(t *testing.T) store.Store {
			return &Store{}
		},
	)
}

func TestStore_limits(t *testing.T) {
	push := func(t *testing.T, s *Store, size int, tag uint32) {
		t.Helper()

		rec := store.Record{
			Payload: bytes.Repeat([]byte{byte(tag)}, size),
			Tag:     tag,
		}

		if err := s.Push(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("it evicts the oldest record when the step limit is reached", func(t *testing.T) {
		s := &Store{}
		s.SetLimits(2, 1_000_000)

		push(t, s, 10, 1)
		push(t, s, 10, 2)
		push(t, s, 10, 3)

		test.Expect(
			t,
			"unexpected tags",
			store.CollectTags(s),
			[]uint32{3, 2},
		)
	})

	t.Run("it evicts the oldest records when the byte limit is reached", func(t *testing.T) {
		s := New(0, 3*(10+RecordOverhead))

		var evicted []uint32
		s.OnEvict = func(rec store.Record) {
			evicted = append(evicted, rec.Tag)
		}

		for tag := uint32(1); tag <= 5; tag++ {
			push(t, s, 10, tag)
		}

		test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{5, 4, 3})
		test.Expect(t, "unexpected evictions", evicted, []uint32{1, 2})

		if got, want := s.BytesUsed(), uint64(3*(10+RecordOverhead)); got != want {
			t.Fatalf("unexpected bytes used: got %d, want %d", got, want)
		}
	})

	t.Run("it evicts as many records as necessary to fit a large record", func(t *testing.T) {
		s := New(0, (20+RecordOverhead)+(60+RecordOverhead))

		for tag := uint32(1); tag <= 4; tag++ {
			push(t, s, 20, tag)
		}

		push(t, s, 60, 5)

		test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{5, 4})
	})

	t.Run("it accepts a record that exceeds the byte limit on its own", func(t *testing.T) {
		s := New(0, 50)

		push(t, s, 10, 1)
		push(t, s, 100, 2)

		test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{2})

		if got, want := s.BytesUsed(), uint64(100+RecordOverhead); got != want {
			t.Fatalf("unexpected bytes used: got %d, want %d", got, want)
		}

		push(t, s, 1, 3)

		test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{3})

		if s.BytesUsed() > 50 {
			t.Fatalf("byte limit still exceeded: %d", s.BytesUsed())
		}
	})

	t.Run("it reuses the buffer of an evicted record", func(t *testing.T) {
		s := New(1, 0)

		push(t, s, 100, 1)
		push(t, s, 50, 2)

		rec, err := s.Pop(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		if len(rec.Payload) != 50 {
			t.Fatalf("unexpected payload length: got %d, want 50", len(rec.Payload))
		}

		if cap(rec.Payload) != 100 {
			t.Fatalf("expected evicted buffer to be reused, got capacity %d", cap(rec.Payload))
		}

		if !bytes.Equal(rec.Payload, bytes.Repeat([]byte{2}, 50)) {
			t.Fatal("unexpected payload content")
		}
	})

	t.Run("func SetLimits()", func(t *testing.T) {
		t.Run("it evicts records that no longer fit", func(t *testing.T) {
			s := &Store{}

			for tag := uint32(1); tag <= 5; tag++ {
				push(t, s, 10, tag)
			}

			s.SetLimits(3, 0)
			test.Expect(t, "unexpected tags after step limit", store.CollectTags(s), []uint32{5, 4, 3})

			s.SetLimits(0, 2*(10+RecordOverhead))
			test.Expect(t, "unexpected tags after byte limit", store.CollectTags(s), []uint32{5, 4})

			steps, size := s.Limits()
			if steps != 0 || size != 2*(10+RecordOverhead) {
				t.Fatalf("unexpected limits: %d, %d", steps, size)
			}
		})

		t.Run("it does not evict when the limits are raised", func(t *testing.T) {
			s := New(2, 0)

			push(t, s, 10, 1)
			push(t, s, 10, 2)

			s.SetLimits(10, 0)

			push(t, s, 10, 3)

			test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{3, 2, 1})
		})
	})

	t.Run("func Pop()", func(t *testing.T) {
		t.Run("it releases the record's budget", func(t *testing.T) {
			s := New(0, 2*(10+RecordOverhead))

			push(t, s, 10, 1)
			push(t, s, 10, 2)

			if _, err := s.Pop(context.Background()); err != nil {
				t.Fatal(err)
			}

			push(t, s, 10, 3)

			test.Expect(t, "unexpected tags", store.CollectTags(s), []uint32{3, 1})
		})
	})

	t.Run("func Clear()", func(t *testing.T) {
		t.Run("it resets the bytes used", func(t *testing.T) {
			s := &Store{}

			push(t, s, 10, 1)

			if err := s.Clear(context.Background()); err != nil {
				t.Fatal(err)
			}

			if n := s.BytesUsed(); n != 0 {
				t.Fatalf("unexpected bytes used: got %d, want 0", n)
			}
		})
	})
}

func TestStore_budget(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		s := &Store{}

		var (
			model     []store.Record
			oversized bool
		)

		trim := func() {
			model = model[len(model)-s.Len():]
		}

		t.Repeat(
			map[string]func(*rapid.T){
				"push": func(t *rapid.T) {
					rec := store.Record{
						Payload: rapid.SliceOfN(rapid.Byte(), 0, 128).Draw(t, "payload"),
						Tag:     rapid.Uint32().Draw(t, "tag"),
					}

					if err := s.Push(ctx, rec); err != nil {
						t.Fatal(err)
					}

					_, maxBytes := s.Limits()
					oversized = maxBytes != 0 && uint64(len(rec.Payload))+RecordOverhead > uint64(maxBytes)

					model = append(model, rec)
					trim()
				},
				"pop": func(t *rapid.T) {
					rec, err := s.Pop(ctx)

					if len(model) == 0 {
						test.ExpectErrorIs(t, err, store.ErrEmpty)
						return
					}

					if err != nil {
						t.Fatal(err)
					}

					test.Expect(t, "unexpected record", rec, model[len(model)-1])
					model = model[:len(model)-1]
					oversized = false
				},
				"set limits": func(t *rapid.T) {
					s.SetLimits(
						rapid.Uint32Range(0, 10).Draw(t, "max steps"),
						rapid.Uint32Range(0, 1024).Draw(t, "max bytes"),
					)
					trim()
					oversized = false
				},
				"": func(t *rapid.T) {
					maxSteps, maxBytes := s.Limits()

					if maxSteps != 0 && s.Len() > int(maxSteps) {
						t.Fatalf("step limit exceeded: %d > %d", s.Len(), maxSteps)
					}

					if maxBytes != 0 && s.BytesUsed() > uint64(maxBytes) {
						if !oversized || s.Len() != 1 {
							t.Fatalf("byte limit exceeded: %d > %d", s.BytesUsed(), maxBytes)
						}
					}

					var want []uint32
					for i := len(model) - 1; i >= 0; i-- {
						want = append(want, model[i].Tag)
					}

					test.Expect(t, "retained records are not the most recent", store.CollectTags(s), want)
				},
			},
		)
	})
}
