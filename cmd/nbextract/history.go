// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbextract/internal/catalog"
	"github.com/pdiddy/nbextract/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded extraction runs",
	Long: `History reads the extraction catalog and lists runs, newest first. Use
--export to write the matching runs to history.yaml and history.json.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("catalog-dir", defaultCatalogDir, "directory holding the extraction catalog")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("source", "", "only runs for this notebook path")
	historyCmd.Flags().Bool("failed", false, "only failed runs")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")
	historyCmd.Flags().String("export", "", "write history.yaml and history.json to this directory")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := catalog.Open(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	source, _ := cmd.Flags().GetString("source")
	failedOnly, _ := cmd.Flags().GetBool("failed")
	opts := catalog.ListOptions{
		Source:     source,
		FailedOnly: failedOnly,
		MaxResults: intSetting(cmd, "limit", "catalog.max_results"),
	}

	out := cmd.OutOrStdout()

	if dir, _ := cmd.Flags().GetString("export"); dir != "" {
		yamlPath, err := store.ExportYAML(ctx, dir, opts)
		if err != nil {
			return err
		}
		jsonPath, err := store.ExportJSON(ctx, dir, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %s and %s\n", yamlPath, jsonPath)
		return nil
	}

	runs, err := store.List(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if runs == nil {
			runs = []types.Extraction{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	printHistory(out, runs)
	return nil
}

func printHistory(w io.Writer, runs []types.Extraction) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no extraction runs recorded")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tSTATUS\tCELLS\tSOURCE\tDESTINATION")
	for _, r := range runs {
		cells := fmt.Sprintf("%d/%d", r.CodeCells, r.TotalCells)
		status := string(r.Status)
		if r.Status == types.ExtractionFailed {
			cells = "-"
			if r.ErrorKind != "" {
				status += " (" + r.ErrorKind + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ExtractedAt.Local().Format(time.DateTime), status, cells, r.SourcePath, r.DestinationPath)
	}
	tw.Flush()
}
