// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nbextract/internal/batch"
	"github.com/pdiddy/nbextract/internal/catalog"
)

// newBatchCmd builds the batch command with its flags.
func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every notebook under a directory",
		Long: `Batch finds notebooks under dir with glob patterns and extracts each one into
the output directory, mirroring the source tree. The output extension comes
from the notebook's language metadata (".py" when absent).

Runs are recorded in the extraction catalog; notebooks whose modification time
matches their last successful extraction are skipped unless --force is set.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runBatch,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Flags().String("out-dir", batch.DefaultOutputDir, "directory for extracted files")
	cmd.Flags().StringSlice("include", nil, "glob patterns to include (default \"**.ipynb\")")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns to exclude (default: .ipynb_checkpoints)")
	cmd.Flags().Bool("force", false, "re-extract notebooks that are unchanged")
	cmd.Flags().String("catalog-dir", defaultCatalogDir, "directory holding the extraction catalog")
	cmd.Flags().Bool("no-catalog", false, "do not read or record the extraction catalog")
	cmd.Flags().Bool("progress", false, "show a progress bar instead of per-notebook lines")
	return cmd
}

func init() {
	rootCmd.AddCommand(newBatchCmd())
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	root := args[0]
	cfg := batchConfig(cmd)

	notebooks, err := batch.Discover(root, cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	logger.Debug("discovered notebooks", zap.String("root", root), zap.Int("count", len(notebooks)))
	if len(notebooks) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no notebooks found under %s\n", root)
		return nil
	}

	runner := &batch.Runner{
		Config: cfg,
		Log:    logger,
		Out:    cmd.OutOrStdout(),
	}

	if !boolSetting(cmd, "no-catalog", "batch.no_catalog") {
		store, err := catalog.Open(catalogConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()
		runner.Catalog = store
	}

	showProgress, _ := cmd.Flags().GetBool("progress")
	if showProgress {
		runner.Out = io.Discard
		runner.Progress = batch.NewProgressBar(len(notebooks), os.Stderr)
	}

	result, err := runner.Run(ctx, root, notebooks)
	if err != nil {
		return err
	}
	if showProgress {
		fmt.Fprintf(cmd.OutOrStdout(), "Batch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
			result.Extracted, result.Skipped, result.Failed, result.Total())
	}
	if result.HasFailures() {
		return fmt.Errorf("%d of %d notebooks failed", result.Failed, result.Total())
	}
	return nil
}
