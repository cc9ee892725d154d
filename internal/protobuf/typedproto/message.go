package typedproto

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// MessageStruct is a "place-holder constraint" that indicates a type parameter
// should be a generated struct, a pointer to which implements implements
// [proto.Message].
type MessageStruct interface{}

// Message is a constraint for a [proto.Message] implemented by type *S.
//
// Even though Protocol Buffers generates structs that use pointer receivers, S
// is the "raw" struct type, not a pointer to it.
type Message[S MessageStruct] interface {
	proto.Message
	*S
}

// New returns a new zero-valued message of type T.
func New[
	T Message[S],
	S MessageStruct,
]() T {
	var m S
	return &m
}

// FullName returns the fully-qualified name of the message type T.
func FullName[
	T Message[S],
	S MessageStruct,
]() protoreflect.FullName {
	return New[T, S]().ProtoReflect().Descriptor().FullName()
}
