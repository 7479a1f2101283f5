// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nbextract/internal/catalog"
	"github.com/pdiddy/nbextract/internal/extract"
	"github.com/pdiddy/nbextract/pkg/types"
)

// newExtractCmd builds the extract command with its flags.
func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [notebook] [output]",
		Short: "Extract the code cells of one notebook into a text file",
		Long: `Extract reads a notebook, keeps the cells whose cell_type is "code" in their
original order, and writes their source joined by a "# %% [New Cell]" marker
to the output file, replacing its content.

Both paths are required, either as arguments or through --source and --dest.`,
		Example: `  nbextract extract analysis.ipynb analysis.py
  nbextract extract --source analysis.ipynb --dest analysis.py --record`,
		Args:          cobra.MaximumNArgs(2),
		RunE:          runExtract,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Flags().String("source", "", "notebook to read")
	cmd.Flags().String("dest", "", "file to write (overwritten)")
	cmd.Flags().Bool("record", false, "record the run in the extraction catalog")
	cmd.Flags().String("catalog-dir", defaultCatalogDir, "directory holding the extraction catalog")
	return cmd
}

func init() {
	rootCmd.AddCommand(newExtractCmd())
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfig(cmd, args)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var modTime string
	if info, err := os.Stat(cfg.SourcePath); err == nil {
		modTime = info.ModTime().UTC().Format(time.RFC3339Nano)
	}

	res, extractErr := extract.Extract(cfg, logger)

	if boolSetting(cmd, "record", "extract.record") {
		recordRun(cmd.Context(), catalogConfig(cmd), res, modTime, extractErr)
	}

	if extractErr != nil {
		return extractErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully extracted code to %s\n", res.DestinationPath)
	return nil
}

// recordRun stores the outcome of an extraction. Catalog problems are
// logged and never change the command's result.
func recordRun(ctx context.Context, cfg types.CatalogConfig, res extract.Result, modTime string, runErr error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Warn("opening catalog", zap.String("dir", cfg.Dir), zap.Error(err))
		return
	}
	defer store.Close()

	rec := types.Extraction{
		SourcePath:      res.SourcePath,
		DestinationPath: res.DestinationPath,
		TotalCells:      res.TotalCells,
		CodeCells:       res.CodeCells,
		BytesWritten:    res.BytesWritten,
		SourceModTime:   modTime,
		Status:          types.ExtractionDone,
	}
	if runErr != nil {
		rec.Status = types.ExtractionFailed
		rec.Error = runErr.Error()
		var extractErr *extract.Error
		if errors.As(runErr, &extractErr) {
			rec.ErrorKind = extractErr.Kind.String()
		}
	}

	if _, err := store.Record(ctx, rec); err != nil {
		logger.Warn("recording extraction", zap.String("source", rec.SourcePath), zap.Error(err))
	}
}
