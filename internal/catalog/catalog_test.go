// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbextract/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(types.CatalogConfig{Dir: filepath.Join(t.TempDir(), ".nbextract")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func done(source, modTime string) types.Extraction {
	return types.Extraction{
		SourcePath:      source,
		DestinationPath: source + ".py",
		TotalCells:      4,
		CodeCells:       2,
		BytesWritten:    42,
		SourceModTime:   modTime,
		Status:          types.ExtractionDone,
	}
}

func failed(source, kind, msg string) types.Extraction {
	return types.Extraction{
		SourcePath:      source,
		DestinationPath: source + ".py",
		Status:          types.ExtractionFailed,
		ErrorKind:       kind,
		Error:           msg,
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "catalog")
	store, err := Open(types.CatalogConfig{Dir: dir})
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(types.CatalogConfig{})
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(types.CatalogConfig{Dir: dir})
	require.NoError(t, err)
	_, err = store.Record(ctx, done("a.ipynb", "t1"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(types.CatalogConfig{Dir: dir})
	require.NoError(t, err)
	defer store.Close()

	modTime, _, found, err := store.Status(ctx, "a.ipynb")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t1", modTime)
}

func TestRecord_AssignsIDAndTimestamp(t *testing.T) {
	store := testStore(t)

	rec, err := store.Record(context.Background(), done("a.ipynb", "t1"))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.ExtractedAt.IsZero())

	other, err := store.Record(context.Background(), done("a.ipynb", "t1"))
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestStatus(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, _, found, err := store.Status(ctx, "a.ipynb")
	require.NoError(t, err)
	assert.False(t, found, "no status before any run")

	_, err = store.Record(ctx, done("a.ipynb", "t1"))
	require.NoError(t, err)
	_, err = store.Record(ctx, done("a.ipynb", "t2"))
	require.NoError(t, err)

	modTime, dest, found, err := store.Status(ctx, "a.ipynb")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t2", modTime, "status tracks the latest successful run")
	assert.Equal(t, "a.ipynb.py", dest)

	// A failure does not replace the last good status.
	_, err = store.Record(ctx, failed("a.ipynb", "shape", "missing cells"))
	require.NoError(t, err)
	modTime, _, found, err = store.Status(ctx, "a.ipynb")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "t2", modTime)
}

func TestList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []types.Extraction{
		done("a.ipynb", "t1"),
		failed("b.ipynb", "decode", "unexpected end of JSON input"),
		done("b.ipynb", "t2"),
		failed("c.ipynb", "not_found", "no such file"),
	} {
		rec.ExtractedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := store.Record(ctx, rec)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		opts        ListOptions
		wantSources []string
	}{
		{
			name:        "all newest first",
			opts:        ListOptions{},
			wantSources: []string{"c.ipynb", "b.ipynb", "b.ipynb", "a.ipynb"},
		},
		{
			name:        "by source",
			opts:        ListOptions{Source: "b.ipynb"},
			wantSources: []string{"b.ipynb", "b.ipynb"},
		},
		{
			name:        "failed only",
			opts:        ListOptions{FailedOnly: true},
			wantSources: []string{"c.ipynb", "b.ipynb"},
		},
		{
			name:        "limit",
			opts:        ListOptions{MaxResults: 1},
			wantSources: []string{"c.ipynb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.List(ctx, tt.opts)
			require.NoError(t, err)
			sources := make([]string, len(got))
			for i, r := range got {
				sources[i] = r.SourcePath
			}
			assert.Equal(t, tt.wantSources, sources)
		})
	}

	got, err := store.List(ctx, ListOptions{Source: "c.ipynb"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.ExtractionFailed, got[0].Status)
	assert.Equal(t, "not_found", got[0].ErrorKind)
	assert.Equal(t, "no such file", got[0].Error)
	assert.True(t, base.Add(3*time.Minute).Equal(got[0].ExtractedAt))
}

func TestExport(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.Record(ctx, done("a.ipynb", "t1"))
	require.NoError(t, err)
	_, err = store.Record(ctx, failed("b.ipynb", "shape", "cells is not a list"))
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "export")

	yamlPath, err := store.ExportYAML(ctx, outDir, ListOptions{})
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []types.Extraction
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Len(t, fromYAML, 2)

	jsonPath, err := store.ExportJSON(ctx, outDir, ListOptions{FailedOnly: true})
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []types.Extraction
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "b.ipynb", fromJSON[0].SourcePath)
	assert.Equal(t, "shape", fromJSON[0].ErrorKind)
}

func TestExport_EmptyCatalog(t *testing.T) {
	store := testStore(t)
	path, err := store.ExportJSON(context.Background(), t.TempDir(), ListOptions{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
