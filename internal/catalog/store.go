// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog records notebook extraction runs in SQLite and answers
// whether a notebook changed since its last successful extraction.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nbextract/pkg/types"
)

const (
	dbFile            = "catalog.db"
	defaultMaxResults = 20
)

// Store manages the extraction catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates cfg.Dir/catalog.db and its schema.
func Open(cfg types.CatalogConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("catalog directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the catalog database.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS extractions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source_path TEXT NOT NULL,
			destination_path TEXT NOT NULL,
			total_cells INTEGER,
			code_cells INTEGER,
			bytes_written INTEGER,
			source_mod_time TEXT,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_source ON extractions(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status)`,
		`CREATE TABLE IF NOT EXISTS extraction_status (
			source_path TEXT PRIMARY KEY,
			source_mod_time TEXT NOT NULL,
			destination_path TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one run. Successful runs also become the notebook's
// current status. ID and ExtractedAt are filled in when empty; the stored
// record is returned.
func (s *Store) Record(ctx context.Context, rec types.Extraction) (types.Extraction, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO extractions (id, source_path, destination_path, total_cells, code_cells,
			bytes_written, source_mod_time, status, error_kind, error, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourcePath, rec.DestinationPath, rec.TotalCells, rec.CodeCells,
		rec.BytesWritten, rec.SourceModTime, string(rec.Status), rec.ErrorKind, rec.Error,
		rec.ExtractedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return rec, fmt.Errorf("inserting extraction %s: %w", rec.ID, err)
	}

	if rec.Status == types.ExtractionDone && rec.SourceModTime != "" {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO extraction_status (source_path, source_mod_time, destination_path) VALUES (?, ?, ?)
			 ON CONFLICT(source_path) DO UPDATE SET
				source_mod_time=excluded.source_mod_time, destination_path=excluded.destination_path`,
			rec.SourcePath, rec.SourceModTime, rec.DestinationPath,
		)
		if err != nil {
			return rec, fmt.Errorf("updating extraction status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("committing extraction %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Status returns the source mod time and destination recorded by the last
// successful extraction of sourcePath. found is false when none exists.
func (s *Store) Status(ctx context.Context, sourcePath string) (modTime, destination string, found bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT source_mod_time, destination_path FROM extraction_status WHERE source_path = ?`, sourcePath,
	).Scan(&modTime, &destination)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("querying status for %s: %w", sourcePath, err)
	}
	return modTime, destination, true, nil
}
