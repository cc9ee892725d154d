package typedproto_test

import (
	"testing"

	. "github.com/dogmatiq/undojournal/internal/protobuf/typedproto"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestNew(t *testing.T) {
	m := New[*wrapperspb.StringValue]()

	if m == nil {
		t.Fatal("expected a non-nil message")
	}

	if !proto.Equal(m, &wrapperspb.StringValue{}) {
		t.Fatal("expected a zero-valued message")
	}
}

func TestFullName(t *testing.T) {
	if got, want := FullName[*structpb.Struct](), "google.protobuf.Struct"; string(got) != want {
		t.Fatalf("unexpected name: got %q, want %q", got, want)
	}

	if got, want := FullName[*wrapperspb.Int64Value](), "google.protobuf.Int64Value"; string(got) != want {
		t.Fatalf("unexpected name: got %q, want %q", got, want)
	}
}
