package main

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func newSoakCommand(opts *options) *cobra.Command {
	var (
		documents int
		edits     int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Edit many documents concurrently and undo every edit",
		Long: "soak makes random edits to several documents at once, each with " +
			"its own journal, then undoes them and verifies that every document " +
			"is restored to its original state.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, ctx := errgroup.WithContext(cmd.Context())

			for i := 0; i < documents; i++ {
				name := fmt.Sprintf("soak-%d", i)
				rng := rand.New(rand.NewSource(seed + int64(i)))

				g.Go(func() error {
					return soak(ctx, opts, name, rng, edits)
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			_, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%d document(s) restored after %d edit(s) each\n",
				documents,
				edits,
			)
			return err
		},
	}

	cmd.Flags().IntVar(&documents, "documents", 8, "the number of documents to edit concurrently")
	cmd.Flags().IntVar(&edits, "edits", 1000, "the number of edits to make to each document")
	cmd.Flags().Int64Var(&seed, "seed", 1, "the seed for the random edits")

	return cmd
}

// soak makes random edits to a single document, then undoes them.
//
// If the journal retains fewer records than the number of edits made, only
// the retained edits are undone and the result is checked against the
// document as it was before the oldest retained edit.
func soak(
	ctx context.Context,
	opts *options,
	name string,
	rng *rand.Rand,
	edits int,
) (err error) {
	doc, done, err := opts.openDocument(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if e := done(); err == nil {
			err = e
		}
	}()

	keys := []string{"a", "b", "c", "d", "e"}
	history := []*structpb.Struct{doc.Snapshot()}

	for i := 0; i < edits; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		k := keys[rng.Intn(len(keys))]

		if rng.Intn(4) == 0 {
			if _, ok := doc.Get(k); !ok {
				continue
			}
			err = doc.Delete(ctx, k)
		} else {
			err = doc.Set(ctx, k, structpb.NewNumberValue(float64(rng.Intn(1000))))
		}

		if err != nil {
			return fmt.Errorf("%s: edit %d: %w", name, i, err)
		}

		history = append(history, doc.Snapshot())
	}

	depth := doc.Journal().Depth()
	want := history[len(history)-1-depth]

	for doc.CanUndo() {
		if err := doc.Undo(ctx); err != nil {
			return fmt.Errorf("%s: undo: %w", name, err)
		}
	}

	if !proto.Equal(doc.Snapshot(), want) {
		return fmt.Errorf(
			"%s: document was not restored after undoing %d edit(s)",
			name,
			depth,
		)
	}

	opts.logger.DebugContext(
		ctx,
		"document restored",
		"document", name,
		"edits", len(history)-1,
		"undone", depth,
	)

	return nil
}
