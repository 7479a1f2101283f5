// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbextract/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes matching history to dir/history.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, dir string, opts ListOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(dir, "history.yaml", data)
}

// ExportJSON writes matching history to dir/history.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context, dir string, opts ListOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(dir, "history.json", data)
}

func (s *Store) exportEntries(ctx context.Context, opts ListOptions) ([]types.Extraction, error) {
	opts.MaxResults = exportLimit
	entries, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []types.Extraction{}
	}
	return entries, nil
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
