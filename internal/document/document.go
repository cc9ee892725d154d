// Package document is a small key/value document model that records its
// edits in an undo journal.
package document

import (
	"context"
	"errors"

	"github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/protodelta"
	"github.com/dogmatiq/undojournal/store"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// TagSet is the tag of records produced when a key is set.
	TagSet uint32 = 1

	// TagDelete is the tag of records produced when a key is deleted.
	TagDelete uint32 = 2
)

// Document is a set of key/value pairs with undo and redo.
type Document struct {
	undo   *undojournal.Journal
	redo   *undojournal.Journal
	values map[string]*structpb.Value

	// edits is the number of edits made via Set and Delete.
	edits uint64
}

// New returns an empty document that keeps its undo history in u and its redo
// history in r.
func New(u, r store.Store, options ...undojournal.JournalOption) *Document {
	doc := &Document{
		values: map[string]*structpb.Value{},
	}

	options = append(
		slices.Clip(options),
		undojournal.WithRecordType(TagSet, "set"),
		undojournal.WithRecordType(TagDelete, "delete"),
	)

	var undoDispatcher, redoDispatcher protodelta.Dispatcher

	protodelta.Register(
		&undoDispatcher,
		func(ctx context.Context, delta *structpb.Struct, tag uint32) error {
			return doc.replay(ctx, doc.redo, delta, tag)
		},
	)

	protodelta.Register(
		&redoDispatcher,
		func(ctx context.Context, delta *structpb.Struct, tag uint32) error {
			return doc.replay(ctx, doc.undo, delta, tag)
		},
	)

	doc.undo = undojournal.New(u, &undoDispatcher, options...)
	doc.redo = undojournal.New(r, &redoDispatcher, options...)

	doc.undo.StartUndoRecord()
	doc.redo.StartUndoRecord()

	return doc
}

// Journal returns the journal that holds the document's undo history.
func (d *Document) Journal() *undojournal.Journal {
	return d.undo
}

// Get returns the value associated with k.
func (d *Document) Get(k string) (*structpb.Value, bool) {
	v, ok := d.values[k]
	if !ok {
		return nil, false
	}
	return proto.Clone(v).(*structpb.Value), true
}

// Keys returns the document's keys in lexical order.
func (d *Document) Keys() []string {
	keys := maps.Keys(d.values)
	slices.Sort(keys)
	return keys
}

// Snapshot returns a copy of the document's content.
func (d *Document) Snapshot() *structpb.Struct {
	s := &structpb.Struct{
		Fields: make(map[string]*structpb.Value, len(d.values)),
	}

	for k, v := range d.values {
		s.Fields[k] = proto.Clone(v).(*structpb.Value)
	}

	return s
}

// Set associates v with k.
func (d *Document) Set(ctx context.Context, k string, v *structpb.Value) error {
	if v == nil {
		panic("value must not be nil")
	}
	return d.edit(ctx, TagSet, k, v)
}

// Delete removes k from the document. It is a no-op if k is not present.
func (d *Document) Delete(ctx context.Context, k string) error {
	if _, ok := d.values[k]; !ok {
		return nil
	}
	return d.edit(ctx, TagDelete, k, nil)
}

// Undo reverses the most recent edit.
func (d *Document) Undo(ctx context.Context) error {
	return d.undo.Undo(ctx)
}

// Redo re-applies the most recently undone edit.
func (d *Document) Redo(ctx context.Context) error {
	return d.redo.Redo(ctx)
}

// CanUndo returns true if there is an edit to undo.
func (d *Document) CanUndo() bool {
	return d.undo.HasUndo()
}

// CanRedo returns true if there is an undone edit to re-apply.
func (d *Document) CanRedo() bool {
	return d.redo.HasUndo()
}

// Checkpoint marks the current state of the document so that it can be
// restored with [Document.Revert].
func (d *Document) Checkpoint() {
	d.undo.SetUndoMark()
}

// Revert undoes every edit made since the most recent checkpoint.
func (d *Document) Revert(ctx context.Context) error {
	return d.undo.UndoBack(ctx)
}

// Batch calls fn within a transaction. If fn returns an error every edit it
// made is undone and cannot be redone.
func (d *Document) Batch(ctx context.Context, fn func() error) error {
	d.undo.StartTransaction()
	edits := d.edits

	if err := fn(); err != nil {
		err = errors.Join(err, d.undo.AbortTransaction(ctx))

		// Any edit made by fn has already discarded the earlier redo history,
		// leaving only the inverses recorded by the abort.
		if d.edits != edits {
			err = errors.Join(err, d.redo.ClearUndo(ctx))
		}

		return err
	}

	return d.undo.EndTransaction()
}

// edit records the inverse of an edit in the undo journal, then applies it.
func (d *Document) edit(ctx context.Context, tag uint32, k string, v *structpb.Value) error {
	if err := protodelta.Record(ctx, d.undo, tag, d.inverse(k)); err != nil {
		return err
	}

	d.apply(k, v)
	d.edits++

	// A fresh edit invalidates anything that was undone.
	return d.redo.ClearUndo(ctx)
}

// replay applies a delta read from one journal, recording its inverse in the
// other.
func (d *Document) replay(
	ctx context.Context,
	inverse *undojournal.Journal,
	delta *structpb.Struct,
	tag uint32,
) error {
	k, v, err := decode(delta)
	if err != nil {
		return err
	}

	if err := protodelta.Record(ctx, inverse, tag, d.inverse(k)); err != nil {
		return err
	}

	d.apply(k, v)

	return nil
}

func (d *Document) apply(k string, v *structpb.Value) {
	if v == nil {
		delete(d.values, k)
	} else {
		d.values[k] = proto.Clone(v).(*structpb.Value)
	}
}

// inverse returns a delta that restores the current value of k.
func (d *Document) inverse(k string) *structpb.Struct {
	delta := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"key":     structpb.NewStringValue(k),
			"present": structpb.NewBoolValue(false),
		},
	}

	if v, ok := d.values[k]; ok {
		delta.Fields["present"] = structpb.NewBoolValue(true)
		delta.Fields["value"] = proto.Clone(v).(*structpb.Value)
	}

	return delta
}

// decode returns the key and value described by delta. v is nil if the key
// is to be removed.
func decode(delta *structpb.Struct) (k string, v *structpb.Value, err error) {
	key, ok := delta.GetFields()["key"]
	if !ok {
		return "", nil, errors.New("delta does not specify a key")
	}

	if !delta.GetFields()["present"].GetBoolValue() {
		return key.GetStringValue(), nil, nil
	}

	v, ok = delta.GetFields()["value"]
	if !ok {
		return "", nil, errors.New("delta does not specify a value")
	}

	return key.GetStringValue(), v, nil
}
