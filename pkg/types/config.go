// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ExtractionConfig holds the two paths of a single notebook extraction.
// Neither path has a default; both must be supplied by the caller.
type ExtractionConfig struct {
	// SourcePath is the notebook (.ipynb) to read.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DestinationPath is the text file to create or overwrite.
	DestinationPath string `json:"destination_path" yaml:"destination_path"`
}

// Validate reports whether both paths are set.
func (c ExtractionConfig) Validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if c.DestinationPath == "" {
		return fmt.Errorf("destination path is required")
	}
	return nil
}

// BatchConfig holds settings for extracting every notebook under a directory.
type BatchConfig struct {
	// OutputDir receives one extracted file per notebook, mirroring the
	// source tree (default "extracted").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Include lists glob patterns matched against slash-separated paths
	// relative to the batch root (default ["**.ipynb"]).
	Include []string `json:"include" yaml:"include"`

	// Exclude lists glob patterns that drop otherwise included paths
	// (default ["**.ipynb_checkpoints/**"]).
	Exclude []string `json:"exclude" yaml:"exclude"`

	// Force re-extracts notebooks the catalog reports as unchanged.
	Force bool `json:"force" yaml:"force"`
}

// CatalogConfig holds settings for the extraction catalog.
type CatalogConfig struct {
	// Dir is the directory holding catalog.db (default ".nbextract").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default number of history entries returned (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all settings read from the nbextract config file.
type Config struct {
	Extract ExtractionConfig `json:"extract" yaml:"extract"`
	Batch   BatchConfig      `json:"batch" yaml:"batch"`
	Catalog CatalogConfig    `json:"catalog" yaml:"catalog"`
}
