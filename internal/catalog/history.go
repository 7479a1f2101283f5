// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/nbextract/pkg/types"
)

// ListOptions filters extraction history.
type ListOptions struct {
	// Source restricts results to one notebook path.
	Source string

	// FailedOnly returns only failed runs.
	FailedOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Extraction, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, source_path, destination_path, total_cells, code_cells, bytes_written,
			source_mod_time, status, error_kind, error, extracted_at
		FROM extractions
		WHERE 1=1`)

	if opts.Source != "" {
		qb.WriteString(` AND source_path = ?`)
		args = append(args, opts.Source)
	}
	if opts.FailedOnly {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(types.ExtractionFailed))
	}

	qb.WriteString(` ORDER BY rowid DESC LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying extractions: %w", err)
	}
	defer rows.Close()

	var results []types.Extraction
	for rows.Next() {
		var (
			rec                       types.Extraction
			status, extractedAt       string
			modTime, errKind, errText sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.SourcePath, &rec.DestinationPath,
			&rec.TotalCells, &rec.CodeCells, &rec.BytesWritten,
			&modTime, &status, &errKind, &errText, &extractedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		rec.Status = types.ExtractionStatus(status)
		rec.SourceModTime = modTime.String
		rec.ErrorKind = errKind.String
		rec.Error = errText.String
		if t, err := time.Parse(time.RFC3339Nano, extractedAt); err == nil {
			rec.ExtractedAt = t
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extractions: %w", err)
	}
	return results, nil
}
