// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "fmt"

// Kind classifies an extraction failure.
type Kind int

const (
	// KindNotFound means the notebook could not be read.
	KindNotFound Kind = iota + 1
	// KindDecode means the notebook is not valid UTF-8 JSON.
	KindDecode
	// KindShape means the JSON lacks the expected cells structure.
	KindShape
	// KindWrite means the destination could not be written.
	KindWrite
)

// String returns the snake_case name stored in the catalog.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	case KindShape:
		return "shape"
	case KindWrite:
		return "write"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single failure result of Extract. Callers branch on Kind
// with errors.As; Unwrap exposes the underlying cause.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("reading notebook %s: %v", e.Path, e.Err)
	case KindDecode:
		return fmt.Sprintf("decoding notebook %s: %v", e.Path, e.Err)
	case KindShape:
		return fmt.Sprintf("unexpected notebook structure in %s: %v", e.Path, e.Err)
	case KindWrite:
		return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
