package telemetry

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/constraints"
)

// Attr is a telemetry attribute.
type Attr struct {
	typ attrType
	key string
	str string
	num int64
}

// String returns a string attribute.
func String[T ~string](k string, v T) Attr {
	return Attr{
		typ: attrTypeString,
		key: k,
		str: string(v),
	}
}

// Stringer returns a string attribute. The value is the result of calling
// v.String().
func Stringer(k string, v fmt.Stringer) Attr {
	return String(k, v.String())
}

// Binary returns a string attribute containing v, represented as a Go string
// (with backslash escaped sequences). If the value is longer than 64 bytes, it
// is truncated to 64 bytes and the key is suffixed with "_truncated".
func Binary(k string, v []byte) Attr {
	if len(v) > 64 {
		v = v[:64]
		k += "_truncated"
	}

	return Attr{
		typ: attrTypeString,
		key: k,
		str: strconv.QuoteToASCII(string(v)),
	}
}

// Type returns a string attribute set to the name of T.
func Type[T any](k string, v T) Attr {
	t := reflect.TypeOf(v)
	if t == nil {
		return String(k, "<nil>")
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return String(k, t.String())
}

// Bool returns a boolean attribute.
func Bool[T ~bool](k string, v T) Attr {
	var n int64
	if v {
		n = 1
	}

	return Attr{
		typ: attrTypeBool,
		key: k,
		num: n,
	}
}

// Int returns an int64 attribute.
func Int[T constraints.Integer](k string, v T) Attr {
	return Attr{
		typ: attrTypeInt64,
		key: k,
		num: int64(v),
	}
}

type attrType uint8

const (
	attrTypeString attrType = iota
	attrTypeBool
	attrTypeInt64
)

// attrSet is a set of attributes that share a common key namespace.
type attrSet struct {
	Namespace string
	Attrs     []Attr
}

func (s attrSet) key(a Attr) string {
	if s.Namespace == "" {
		return a.key
	}
	return s.Namespace + "." + a.key
}

// ForOpenTelemetry returns the attributes as OpenTelemetry key/value pairs.
func (s attrSet) ForOpenTelemetry() []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(s.Attrs))

	for _, a := range s.Attrs {
		k := s.key(a)

		switch a.typ {
		case attrTypeString:
			kvs = append(kvs, attribute.String(k, a.str))
		case attrTypeBool:
			kvs = append(kvs, attribute.Bool(k, a.num != 0))
		case attrTypeInt64:
			kvs = append(kvs, attribute.Int64(k, a.num))
		default:
			panic("unknown attribute type")
		}
	}

	return kvs
}

// ForLogger returns the attributes as arguments for an [slog.Logger], followed
// by any additional slog attributes.
func (s attrSet) ForLogger(extra ...slog.Attr) []any {
	args := make([]any, 0, len(s.Attrs)+len(extra))

	for _, a := range s.Attrs {
		switch a.typ {
		case attrTypeString:
			args = append(args, slog.String(a.key, a.str))
		case attrTypeBool:
			args = append(args, slog.Bool(a.key, a.num != 0))
		case attrTypeInt64:
			args = append(args, slog.Int64(a.key, a.num))
		default:
			panic("unknown attribute type")
		}
	}

	for _, a := range extra {
		args = append(args, a)
	}

	return args
}
