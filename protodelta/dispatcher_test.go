package protodelta_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/internal/test"
	"github.com/dogmatiq/undojournal/internal/tlog"
	. "github.com/dogmatiq/undojournal/protodelta"
	"github.com/dogmatiq/undojournal/store/memorystore"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestMarshal(t *testing.T) {
	want := wrapperspb.String("<value>")

	payload, err := Marshal(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Unmarshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	test.Expect(t, "unexpected message", got, proto.Message(want))
}

func TestUnmarshal(t *testing.T) {
	t.Run("it returns an error if the payload is not a packed message", func(t *testing.T) {
		if _, err := Unmarshal([]byte{0xff, 0xff, 0xff}); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("it returns an error if the message type is unknown", func(t *testing.T) {
		payload, err := proto.Marshal(&anypb.Any{
			TypeUrl: "type.googleapis.com/example.Unknown",
		})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := Unmarshal(payload); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("it routes messages to the handler for their type", func(t *testing.T) {
		var (
			strings []string
			ints    []int64
			tags    []uint32
		)

		var d Dispatcher
		Register(
			&d,
			func(_ context.Context, m *wrapperspb.StringValue, tag uint32) error {
				strings = append(strings, m.GetValue())
				tags = append(tags, tag)
				return nil
			},
		)
		Register(
			&d,
			func(_ context.Context, m *wrapperspb.Int64Value, tag uint32) error {
				ints = append(ints, m.GetValue())
				tags = append(tags, tag)
				return nil
			},
		)

		j := undojournal.New(&memorystore.Store{}, &d, undojournal.WithLogger(tlog.New(t)))
		j.StartUndoRecord()

		if err := Record(ctx, j, 1, wrapperspb.String("<first>")); err != nil {
			t.Fatal(err)
		}

		if err := Record(ctx, j, 2, wrapperspb.Int64(42)); err != nil {
			t.Fatal(err)
		}

		if err := Record(ctx, j, 3, wrapperspb.String("<second>")); err != nil {
			t.Fatal(err)
		}

		for j.HasUndo() {
			if err := j.Undo(ctx); err != nil {
				t.Fatal(err)
			}
		}

		test.Expect(t, "unexpected strings", strings, []string{"<second>", "<first>"})
		test.Expect(t, "unexpected ints", ints, []int64{42})
		test.Expect(t, "unexpected tags", tags, []uint32{3, 2, 1})
	})

	t.Run("it returns an error if there is no handler for the type", func(t *testing.T) {
		var d Dispatcher
		Register(
			&d,
			func(context.Context, *structpb.Struct, uint32) error { return nil },
		)

		payload, err := Marshal(wrapperspb.Bool(true))
		if err != nil {
			t.Fatal(err)
		}

		err = d.ApplyInverse(ctx, payload, 1, "")
		test.ExpectErrorIs(t, err, ErrUnhandledType)
	})

	t.Run("it returns the error from the handler", func(t *testing.T) {
		want := errors.New("<error>")

		var d Dispatcher
		Register(
			&d,
			func(context.Context, *wrapperspb.BoolValue, uint32) error { return want },
		)

		payload, err := Marshal(wrapperspb.Bool(true))
		if err != nil {
			t.Fatal(err)
		}

		err = d.ApplyInverse(ctx, payload, 1, "")
		test.ExpectErrorIs(t, err, want)
	})

	t.Run("it lists the registered types in order", func(t *testing.T) {
		var d Dispatcher
		Register(&d, func(context.Context, *wrapperspb.StringValue, uint32) error { return nil })
		Register(&d, func(context.Context, *structpb.Struct, uint32) error { return nil })

		var got []string
		for _, n := range d.Types() {
			got = append(got, string(n))
		}

		test.Expect(
			t,
			"unexpected types",
			got,
			[]string{"google.protobuf.StringValue", "google.protobuf.Struct"},
		)
	})

	t.Run("it panics if a type is registered twice", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected a panic")
			}
		}()

		var d Dispatcher
		fn := func(context.Context, *structpb.Struct, uint32) error { return nil }
		Register(&d, fn)
		Register(&d, fn)
	})
}
