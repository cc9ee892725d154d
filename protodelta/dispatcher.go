package protodelta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/internal/protobuf/typedproto"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrUnhandledType is returned by [Dispatcher] when there is no handler for
// the type of message in an undo record.
var ErrUnhandledType = errors.New("no handler is registered for the undo record's message type")

// Dispatcher is an [undojournal.Dispatcher] that unmarshals each record and
// routes the message to a handler registered for its type.
//
// The zero value is ready to use.
type Dispatcher struct {
	handlers map[protoreflect.FullName]handler
}

type handler func(ctx context.Context, m proto.Message, tag uint32) error

var _ undojournal.Dispatcher = (*Dispatcher)(nil)

// Register adds fn as the handler for messages of type T.
//
// It panics if a handler for T is already registered.
func Register[
	T typedproto.Message[S],
	S typedproto.MessageStruct,
](
	d *Dispatcher,
	fn func(ctx context.Context, m T, tag uint32) error,
) {
	if fn == nil {
		panic("handler must not be nil")
	}

	name := typedproto.FullName[T, S]()

	if _, ok := d.handlers[name]; ok {
		panic(fmt.Sprintf("a handler is already registered for %s", name))
	}

	if d.handlers == nil {
		d.handlers = map[protoreflect.FullName]handler{}
	}

	d.handlers[name] = func(ctx context.Context, m proto.Message, tag uint32) error {
		return fn(ctx, m.(T), tag)
	}
}

// Types returns the names of the message types that have handlers, in
// lexical order.
func (d *Dispatcher) Types() []protoreflect.FullName {
	names := maps.Keys(d.handlers)
	slices.Sort(names)
	return names
}

// ApplyInverse unmarshals payload and passes the message to its handler.
func (d *Dispatcher) ApplyInverse(
	ctx context.Context,
	payload []byte,
	tag uint32,
	_ undojournal.TypeHint,
) error {
	m, err := Unmarshal(payload)
	if err != nil {
		return err
	}

	name := m.ProtoReflect().Descriptor().FullName()

	h, ok := d.handlers[name]
	if !ok {
		return fmt.Errorf(
			"%w: %s (expected one of: %s)",
			ErrUnhandledType,
			name,
			d.describeTypes(),
		)
	}

	return h(ctx, m, tag)
}

func (d *Dispatcher) describeTypes() string {
	var w strings.Builder

	for i, n := range d.Types() {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(string(n))
	}

	if w.Len() == 0 {
		return "none"
	}

	return w.String()
}
