// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract flattens the code cells of a notebook into a single
// source file.
package extract

import (
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/nbextract/internal/notebook"
	"github.com/pdiddy/nbextract/pkg/types"
)

// Separator is written between consecutive code cells.
const Separator = "\n\n# %% [New Cell]\n\n"

// Result describes a successful extraction.
type Result struct {
	SourcePath      string
	DestinationPath string
	TotalCells      int
	CodeCells       int
	BytesWritten    int

	// Extension is the notebook's declared file extension.
	Extension string
}

// Join concatenates cell sources in order with Separator between them.
func Join(sources []string) string {
	return strings.Join(sources, Separator)
}

// Render returns the output document for doc.
func Render(doc *notebook.Document) string {
	return Join(doc.CodeSources())
}

// Extract reads the notebook at cfg.SourcePath and writes its code cells to
// cfg.DestinationPath, replacing any existing content. Every failure is
// returned as *Error. The destination is not touched unless the notebook
// was read and decoded.
func Extract(cfg types.ExtractionConfig, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	result := Result{SourcePath: cfg.SourcePath, DestinationPath: cfg.DestinationPath}

	doc, err := Load(cfg.SourcePath)
	if err != nil {
		return result, err
	}
	result.TotalCells = len(doc.Cells)
	result.CodeCells = len(doc.CodeCells())
	result.Extension = doc.Extension()
	log.Debug("decoded notebook",
		zap.String("path", cfg.SourcePath),
		zap.Int("total_cells", result.TotalCells),
		zap.Int("code_cells", result.CodeCells),
	)

	n, err := Write(doc, cfg.DestinationPath)
	result.BytesWritten = n
	if err != nil {
		return result, err
	}

	log.Debug("wrote extracted code", zap.String("path", cfg.DestinationPath), zap.Int("bytes", n))
	return result, nil
}

// Load reads and decodes the notebook at path.
func Load(path string) (*notebook.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindNotFound, Path: path, Err: err}
	}

	doc, err := notebook.Decode(data)
	if err != nil {
		kind := KindDecode
		if errors.Is(err, notebook.ErrMalformed) {
			kind = KindShape
		}
		return nil, &Error{Kind: kind, Path: path, Err: err}
	}
	return doc, nil
}

// Write renders doc and writes it to path, returning the bytes written.
func Write(doc *notebook.Document, path string) (int, error) {
	n, err := writeFile(path, Render(doc))
	if err != nil {
		return n, &Error{Kind: KindWrite, Path: path, Err: err}
	}
	return n, nil
}

// writeFile truncates or creates path and writes content. A close error is
// reported when the write itself succeeded.
func writeFile(path, content string) (n int, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return io.WriteString(f, content)
}
