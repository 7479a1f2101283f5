// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExtractionStatus indicates the outcome of one notebook extraction.
type ExtractionStatus string

const (
	ExtractionDone    ExtractionStatus = "extracted"
	ExtractionSkipped ExtractionStatus = "skipped"
	ExtractionFailed  ExtractionStatus = "failed"
)

// Extraction records one notebook extraction run.
type Extraction struct {
	// ID is a UUID assigned when the run is recorded.
	ID string `json:"id" yaml:"id"`

	// SourcePath is the notebook that was read.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DestinationPath is the text file that was written.
	DestinationPath string `json:"destination_path" yaml:"destination_path"`

	// TotalCells is the number of cells in the notebook.
	TotalCells int `json:"total_cells" yaml:"total_cells"`

	// CodeCells is the number of cells that contributed to the output.
	CodeCells int `json:"code_cells" yaml:"code_cells"`

	// BytesWritten is the size of the output file.
	BytesWritten int `json:"bytes_written" yaml:"bytes_written"`

	// SourceModTime is the notebook's modification time (RFC 3339, UTC)
	// when it was read.
	SourceModTime string `json:"source_mod_time,omitempty" yaml:"source_mod_time,omitempty"`

	// Status is the outcome of the run.
	Status ExtractionStatus `json:"status" yaml:"status"`

	// ErrorKind names the failure class (not_found, decode, shape, write)
	// when Status is failed.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message when Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// ExtractedAt is when the run finished.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}
