package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/ferrite"
	"github.com/dogmatiq/undojournal/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	ferrite.Init()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := newRootCommand(afero.NewOsFs(), true).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// options holds the flags shared by all commands.
type options struct {
	Config  config.Config
	Verbose bool

	fs     afero.Fs
	logger *slog.Logger
}

// newRootCommand returns the root command. If useEnv is true, unset options
// are read from the environment.
func newRootCommand(fs afero.Fs, useEnv bool) *cobra.Command {
	opts := &options{fs: fs}

	root := &cobra.Command{
		Use:           "undojournal",
		Short:         "Exercise undo journals",
		Long:          "undojournal edits key/value documents and undoes the edits using an undo journal.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			backend, _ := cmd.Flags().GetString("backend")
			if backend != "" {
				opts.Config.Backend = config.Backend(backend)
			}

			if cmd.Flags().Changed("no-checksums") {
				disable, _ := cmd.Flags().GetBool("no-checksums")
				opts.Config.SetDisableChecksums(disable)
			}

			opts.Config.UseEnv = useEnv
			opts.Config.Finalize()

			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}

			opts.logger = slog.New(
				slog.NewJSONHandler(
					cmd.ErrOrStderr(),
					&slog.HandlerOptions{
						Level: level,
					},
				),
			)

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("backend", "", "the kind of store that holds undo records (memory or file), defaults to $UNDOJOURNAL_BACKEND")
	flags.Uint32Var(&opts.Config.Memory.MaxSteps, "max-steps", 0, "the maximum number of undo records kept in memory, defaults to $UNDOJOURNAL_MAX_STEPS")
	flags.Uint32Var(&opts.Config.Memory.MaxBytes, "max-bytes", 0, "the maximum size of undo records kept in memory, defaults to $UNDOJOURNAL_MAX_BYTES")
	flags.StringVar(&opts.Config.File.Dir, "dir", "", "the directory used by the file backend, defaults to $UNDOJOURNAL_STORAGE_PATH")
	flags.Bool("no-checksums", false, "do not verify undo record checksums, defaults to the inverse of $UNDOJOURNAL_VERIFY_CHECKSUMS")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newDemoCommand(opts),
		newSoakCommand(opts),
	)

	return root
}
