package protodelta

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// A Recorder accepts undo deltas. It is implemented by
// [undojournal.Journal].
type Recorder interface {
	RecordDelta(ctx context.Context, payload []byte, tag uint32) error
}

// Marshal returns the payload of an undo record describing m.
func Marshal(m proto.Message) ([]byte, error) {
	x, err := anypb.New(m)
	if err != nil {
		return nil, fmt.Errorf("unable to pack %s: %w", m.ProtoReflect().Descriptor().FullName(), err)
	}

	return proto.Marshal(x)
}

// Unmarshal returns the message described by an undo record payload that was
// produced by [Marshal].
//
// The message type must be linked into the binary.
func Unmarshal(payload []byte) (proto.Message, error) {
	x := &anypb.Any{}
	if err := proto.Unmarshal(payload, x); err != nil {
		return nil, fmt.Errorf("unable to unmarshal undo record: %w", err)
	}

	m, err := x.UnmarshalNew()
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal %s: %w", x.GetTypeUrl(), err)
	}

	return m, nil
}

// Record marshals m and records it via r.
func Record(ctx context.Context, r Recorder, tag uint32, m proto.Message) error {
	payload, err := Marshal(m)
	if err != nil {
		return err
	}

	return r.RecordDelta(ctx, payload, tag)
}
