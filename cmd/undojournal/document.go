package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dogmatiq/undojournal"
	"github.com/dogmatiq/undojournal/internal/document"
	"go.opentelemetry.io/otel"
)

// openDocument returns a new document with the given name, along with a
// function that releases its stores.
func (o *options) openDocument(ctx context.Context, name string) (*document.Document, func() error, error) {
	u, closeUndo, err := o.Config.OpenStore(ctx, o.fs, name)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open undo store for %s: %w", name, err)
	}

	r, closeRedo, err := o.Config.OpenStore(ctx, o.fs, name+".redo")
	if err != nil {
		return nil, nil, errors.Join(
			fmt.Errorf("unable to open redo store for %s: %w", name, err),
			closeUndo(),
		)
	}

	doc := document.New(
		u,
		r,
		undojournal.WithJournalID(name),
		undojournal.WithLogger(o.logger),
		undojournal.WithTracerProvider(otel.GetTracerProvider()),
		undojournal.WithMeterProvider(otel.GetMeterProvider()),
	)

	return doc, func() error {
		return errors.Join(closeUndo(), closeRedo())
	}, nil
}
