package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dogmatiq/undojournal/internal/document"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var errBatchRejected = errors.New("batch rejected")

func newDemoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted editing session",
		Long: "demo edits a document, then undoes and redoes the edits, " +
			"printing the document after each step.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			doc, done, err := opts.openDocument(ctx, "demo")
			if err != nil {
				return err
			}
			defer func() {
				if e := done(); err == nil {
					err = e
				}
			}()

			steps := []struct {
				Description string
				Apply       func() error
			}{
				{"set title", func() error { return doc.Set(ctx, "title", structpb.NewStringValue("Untitled")) }},
				{"set author", func() error { return doc.Set(ctx, "author", structpb.NewStringValue("Anonymous")) }},
				{"checkpoint", func() error { doc.Checkpoint(); return nil }},
				{"rename title", func() error { return doc.Set(ctx, "title", structpb.NewStringValue("Draft")) }},
				{"set pages", func() error { return doc.Set(ctx, "pages", structpb.NewNumberValue(12)) }},
				{"revert to checkpoint", func() error { return doc.Revert(ctx) }},
				{"delete author", func() error { return doc.Delete(ctx, "author") }},
				{"undo", func() error { return doc.Undo(ctx) }},
				{"undo", func() error { return doc.Undo(ctx) }},
				{"redo", func() error { return doc.Redo(ctx) }},
				{"failed batch", func() error {
					err := doc.Batch(ctx, func() error {
						if err := doc.Set(ctx, "title", structpb.NewStringValue("Discarded")); err != nil {
							return err
						}
						return errBatchRejected
					})
					return withoutRejection(err)
				}},
			}

			for _, s := range steps {
				if err := s.Apply(); err != nil {
					return fmt.Errorf("%s: %w", s.Description, err)
				}

				if err := printDocument(out, s.Description, doc); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// withoutRejection returns err with any occurrence of errBatchRejected
// removed, or nil if nothing else remains.
func withoutRejection(err error) error {
	if err == nil || err == errBatchRejected {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var rest []error
		for _, e := range joined.Unwrap() {
			if e := withoutRejection(e); e != nil {
				rest = append(rest, e)
			}
		}
		return errors.Join(rest...)
	}

	return err
}

func printDocument(w io.Writer, step string, doc *document.Document) error {
	data, err := protojson.MarshalOptions{}.Marshal(doc.Snapshot())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(
		w,
		"%-22s %s (undo: %d)\n",
		step,
		data,
		doc.Journal().Depth(),
	)
	return err
}
