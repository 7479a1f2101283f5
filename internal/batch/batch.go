// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch extracts every notebook under a directory tree, skipping
// notebooks unchanged since their last recorded extraction.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/nbextract/internal/extract"
	"github.com/pdiddy/nbextract/pkg/types"
)

// DefaultOutputDir is used when BatchConfig.OutputDir is empty.
const DefaultOutputDir = "extracted"

// Catalog is the subset of the extraction catalog a batch run needs.
type Catalog interface {
	Status(ctx context.Context, sourcePath string) (modTime, destination string, found bool, err error)
	Record(ctx context.Context, rec types.Extraction) (types.Extraction, error)
}

// Result holds the outcome of a batch run.
type Result struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the total number of notebooks processed.
func (r Result) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any notebook failed extraction.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Runner extracts a set of notebooks. Catalog, Log, Out and Progress are
// optional.
type Runner struct {
	Config   types.BatchConfig
	Catalog  Catalog
	Log      *zap.Logger
	Out      io.Writer
	Progress Progress
}

// Run extracts each notebook under root, printing per-notebook status to
// r.Out and returning a summary. Individual failures are counted, not
// returned; the error is non-nil only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, root string, notebooks []string) (Result, error) {
	w := r.out()
	var result Result
	for _, nb := range notebooks {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec := r.ExtractOne(ctx, root, nb)
		switch rec.Status {
		case types.ExtractionDone:
			result.Extracted++
		case types.ExtractionSkipped:
			result.Skipped++
		case types.ExtractionFailed:
			result.Failed++
		}
		if r.Progress != nil {
			_ = r.Progress.Add(1)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		result.Extracted, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// ExtractOne extracts a single notebook found under root and returns the
// run record. Skipped notebooks are not recorded in the catalog.
func (r *Runner) ExtractOne(ctx context.Context, root, nb string) types.Extraction {
	w := r.out()
	log := r.logger().With(zap.String("notebook", nb))
	rel := relativeName(root, nb)

	rec := types.Extraction{SourcePath: nb}

	info, err := os.Stat(nb)
	if err != nil {
		return r.fail(ctx, w, rel, rec, &extract.Error{Kind: extract.KindNotFound, Path: nb, Err: err})
	}
	rec.SourceModTime = info.ModTime().UTC().Format(time.RFC3339Nano)

	if !r.Config.Force && r.Catalog != nil {
		modTime, dest, found, err := r.Catalog.Status(ctx, nb)
		if err != nil {
			log.Warn("catalog status lookup failed", zap.Error(err))
		} else if found && modTime == rec.SourceModTime && r.sameOutput(rel, dest) && fileExists(dest) {
			fmt.Fprintf(w, "skipped: %s (unchanged)\n", rel)
			rec.DestinationPath = dest
			rec.Status = types.ExtractionSkipped
			return rec
		}
	}

	doc, err := extract.Load(nb)
	if err != nil {
		return r.fail(ctx, w, rel, rec, err)
	}
	rec.TotalCells = len(doc.Cells)
	rec.CodeCells = len(doc.CodeCells())

	rec.DestinationPath = r.destination(rel, doc.Extension())
	if err := os.MkdirAll(filepath.Dir(rec.DestinationPath), 0o755); err != nil {
		return r.fail(ctx, w, rel, rec, &extract.Error{Kind: extract.KindWrite, Path: rec.DestinationPath, Err: err})
	}

	n, err := extract.Write(doc, rec.DestinationPath)
	rec.BytesWritten = n
	if err != nil {
		return r.fail(ctx, w, rel, rec, err)
	}

	rec.Status = types.ExtractionDone
	r.record(ctx, w, rel, rec)
	log.Debug("extracted notebook",
		zap.String("destination", rec.DestinationPath),
		zap.Int("code_cells", rec.CodeCells),
	)
	fmt.Fprintf(w, "extracted: %s (%d code cells)\n", rel, rec.CodeCells)
	return rec
}

func (r *Runner) fail(ctx context.Context, w io.Writer, rel string, rec types.Extraction, err error) types.Extraction {
	rec.Status = types.ExtractionFailed
	rec.Error = err.Error()
	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		rec.ErrorKind = extractErr.Kind.String()
	}
	r.record(ctx, w, rel, rec)
	fmt.Fprintf(w, "failed:  %s (%v)\n", rel, err)
	return rec
}

func (r *Runner) record(ctx context.Context, w io.Writer, rel string, rec types.Extraction) {
	if r.Catalog == nil {
		return
	}
	if _, err := r.Catalog.Record(ctx, rec); err != nil {
		fmt.Fprintf(w, "warning: recording %s failed: %v\n", rel, err)
	}
}

// destination maps a notebook's path relative to the batch root onto the
// output directory with the given extension.
func (r *Runner) destination(rel, ext string) string {
	outDir := r.Config.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir
	}
	local := filepath.FromSlash(rel)
	return filepath.Join(outDir, strings.TrimSuffix(local, filepath.Ext(local))+ext)
}

// sameOutput reports whether a recorded destination is where this run would
// write rel, ignoring the extension.
func (r *Runner) sameOutput(rel, dest string) bool {
	return strings.TrimSuffix(dest, filepath.Ext(dest)) == r.destination(rel, "")
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// relativeName returns nb relative to root in slash form, or its base name when
// it is not under root.
func relativeName(root, nb string) string {
	rel, err := filepath.Rel(root, nb)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Base(nb))
	}
	return filepath.ToSlash(rel)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
