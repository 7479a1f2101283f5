// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notebook decodes Jupyter notebook documents into ordered cells
// with resolved source text.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// CellCode is the cell_type tag of cells whose source is extracted.
const CellCode = "code"

// DefaultFileExtension is used when the notebook declares no language
// file extension.
const DefaultFileExtension = ".py"

// ErrMalformed marks a document that is valid JSON but does not have the
// expected notebook structure.
var ErrMalformed = errors.New("malformed notebook")

// ErrInvalidUTF8 marks input that is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("notebook is not valid UTF-8")

// SourceKind distinguishes the two JSON encodings of a cell source.
type SourceKind int

const (
	// StringSource is a source stored as a single JSON string.
	StringSource SourceKind = iota
	// FragmentListSource is a source stored as an array of line fragments.
	FragmentListSource
)

// Source is the text payload of a cell. Fragments carry their own line
// terminators, so Text concatenates them without a separator.
type Source struct {
	Kind      SourceKind
	Fragments []string
}

// Text returns the concatenated source.
func (s Source) Text() string {
	return strings.Join(s.Fragments, "")
}

// UnmarshalJSON accepts either a string or an array of strings.
func (s *Source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty source", ErrMalformed)
	}
	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: source: %v", ErrMalformed, err)
		}
		*s = Source{Kind: StringSource, Fragments: []string{text}}
		return nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return fmt.Errorf("%w: source: %v", ErrMalformed, err)
		}
		fragments := make([]string, len(elems))
		for i, elem := range elems {
			// null would decode to "" silently.
			if len(elem) == 0 || elem[0] != '"' {
				return fmt.Errorf("%w: source fragment %d is not a string", ErrMalformed, i)
			}
			if err := json.Unmarshal(elem, &fragments[i]); err != nil {
				return fmt.Errorf("%w: source fragment %d: %v", ErrMalformed, i, err)
			}
		}
		*s = Source{Kind: FragmentListSource, Fragments: fragments}
		return nil
	default:
		return fmt.Errorf("%w: source must be a string or a list of strings", ErrMalformed)
	}
}

// Cell is one notebook cell. Source is only resolved for code cells.
type Cell struct {
	// Type is the cell_type tag, or "" when absent or not a string.
	Type   string
	Source Source
}

// IsCode reports whether the cell contributes to extracted output.
func (c Cell) IsCode() bool {
	return c.Type == CellCode
}

// Document is a decoded notebook.
type Document struct {
	Cells []Cell

	// FileExtension is metadata.language_info.file_extension, e.g. ".py".
	FileExtension string
}

// CodeCells returns the code cells in document order.
func (d *Document) CodeCells() []Cell {
	var cells []Cell
	for _, c := range d.Cells {
		if c.IsCode() {
			cells = append(cells, c)
		}
	}
	return cells
}

// CodeSources returns the concatenated source of each code cell in
// document order.
func (d *Document) CodeSources() []string {
	code := d.CodeCells()
	sources := make([]string, len(code))
	for i, c := range code {
		sources[i] = c.Source.Text()
	}
	return sources
}

// Extension returns the declared file extension, or DefaultFileExtension
// when none is declared or the declared value is not a plain ".ext".
func (d *Document) Extension() string {
	ext := d.FileExtension
	if len(ext) < 2 || ext[0] != '.' || strings.ContainsAny(ext[1:], `./\`) {
		return DefaultFileExtension
	}
	return ext
}

type rawDocument struct {
	Cells    json.RawMessage `json:"cells"`
	Metadata json.RawMessage `json:"metadata"`
}

type rawMetadata struct {
	LanguageInfo struct {
		FileExtension string `json:"file_extension"`
	} `json:"language_info"`
}

type rawCell struct {
	CellType json.RawMessage `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

// Decode parses notebook JSON. Syntax errors are returned as produced by
// encoding/json; structural problems wrap ErrMalformed.
func Decode(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}

	var top json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if t := bytes.TrimSpace(top); len(t) == 0 || t[0] != '{' {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrMalformed)
	}

	var raw rawDocument
	if err := json.Unmarshal(top, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	cells := bytes.TrimSpace(raw.Cells)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: missing \"cells\"", ErrMalformed)
	}
	if cells[0] != '[' {
		return nil, fmt.Errorf("%w: \"cells\" is not a list", ErrMalformed)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(cells, &elems); err != nil {
		return nil, fmt.Errorf("%w: \"cells\": %v", ErrMalformed, err)
	}

	doc := &Document{Cells: make([]Cell, 0, len(elems))}
	// Metadata is informational; an unexpected shape is ignored.
	var meta rawMetadata
	if len(raw.Metadata) > 0 && json.Unmarshal(raw.Metadata, &meta) == nil {
		doc.FileExtension = meta.LanguageInfo.FileExtension
	}
	for i, elem := range elems {
		cell, err := decodeCell(elem)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		doc.Cells = append(doc.Cells, cell)
	}
	return doc, nil
}

func decodeCell(elem json.RawMessage) (Cell, error) {
	if t := bytes.TrimSpace(elem); len(t) == 0 || t[0] != '{' {
		return Cell{}, fmt.Errorf("%w: cell is not a JSON object", ErrMalformed)
	}

	var rc rawCell
	if err := json.Unmarshal(elem, &rc); err != nil {
		return Cell{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var cell Cell
	// A missing or non-string cell_type leaves Type empty, which excludes the cell.
	if len(rc.CellType) > 0 {
		var tag string
		if json.Unmarshal(rc.CellType, &tag) == nil {
			cell.Type = tag
		}
	}
	if !cell.IsCode() {
		return cell, nil
	}

	src := bytes.TrimSpace(rc.Source)
	if len(src) == 0 {
		return Cell{}, fmt.Errorf("%w: code cell has no source", ErrMalformed)
	}
	if err := json.Unmarshal(src, &cell.Source); err != nil {
		return Cell{}, err
	}
	return cell, nil
}
