// Package cli implements the batchvals command.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/me/batchvals/internal/config"
	"github.com/me/batchvals/internal/logging"
	"github.com/me/batchvals/internal/metadata"
	"github.com/me/batchvals/internal/storage"
	"github.com/me/batchvals/internal/values"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command. batchvals is a one-shot
// converter: it reads run metadata, builds the value set, and prints it to
// stdout. All diagnostics go to stderr.
func NewRootCmd() *cobra.Command {
	var cfg config.Config
	var flagDebug bool

	root := &cobra.Command{
		Use:   "batchvals <metadata-file>",
		Short: "Create input values for a new batch from a completed pipeline run",
		Long: `batchvals converts the metadata of a completed pipeline run into a values
JSON document used to seed subsequent runs.

Outputs are de-namespaced and merged with a fixed set of carried-over
inputs; execution-bucket paths are optionally rewritten to their permanent
outputs directory, and large file lists can be uploaded to remote storage
and referenced by URI.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			cfg.MetadataPath = args[0]
			logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
			return run(cmd.Context(), &cfg, logger, cmd.OutOrStdout(), newStore)
		},
	}

	root.Flags().StringVar(&cfg.Workflow, "workflow", values.DefaultWorkflow, "Workflow name whose namespace is stripped from output keys")
	root.Flags().StringVar(&cfg.ExecutionBucket, "execution-bucket", "", "Execution bucket the run wrote outputs to; required with --final-workflow-outputs-dir")
	root.Flags().StringVar(&cfg.OutputsDir, "final-workflow-outputs-dir", "", "Permanent outputs directory substituted for the execution bucket")
	root.Flags().StringVar(&cfg.FileListTarget, "file-list-bucket", "", "Bucket (plus optional subdirectory) to upload file lists to")
	root.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", "text", "Log format (text, json)")

	return root
}

// storeFactory opens an ObjectStore for a file-list target URI. Tests swap
// in an in-memory store.
type storeFactory func(target string) (storage.ObjectStore, error)

func newStore(target string) (storage.ObjectStore, error) {
	return storage.NewS3Store(target)
}

// run executes the whole pipeline: load, extract, rewrite, fill, report,
// materialize, print. Any error before the final print aborts with no
// partial document on stdout.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, open storeFactory) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}

	md, err := metadata.Load(cfg.MetadataPath)
	if err != nil {
		return err
	}

	vs := values.FromOutputs(md.Outputs, cfg.Workflow)

	if cfg.ExecutionBucket != "" {
		prefixes := &values.Prefixes{
			ExecutionBucket: cfg.ExecutionBucket,
			OutputsDir:      cfg.OutputsDir,
		}
		if err := values.Rewrite(vs, prefixes); err != nil {
			return err
		}
	}

	values.FillFromInputs(vs, md.Inputs)
	values.FillMissing(vs, logger)

	if cfg.FileListTarget != "" {
		store, err := open(cfg.FileListTarget)
		if err != nil {
			return err
		}
		if err := values.MaterializeFileLists(ctx, vs, store); err != nil {
			return err
		}
	}

	return values.Write(out, vs)
}
