package dataset

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

const (
	// Default column names of the webp image export
	DefaultDecorField = "decor_id"
	DefaultImageField = "image_url"
)

// Derived columns appended to the output when metadata is kept
const (
	OriginalCountField = "original_count"
	ChosenWidthField   = "chosen_width"
	ChosenScoreField   = "chosen_score"
)

// ErrSourceMissing is matched by SourceError when the input file does not exist
var ErrSourceMissing = errors.New("source file not found")

// Fields names the required columns of a dataset
type Fields struct {
	DecorID  string
	ImageURL string
}

// DefaultFields returns the column names used by the webp image export
func DefaultFields() Fields {
	return Fields{DecorID: DefaultDecorField, ImageURL: DefaultImageField}
}

// Schema is the ordered list of columns of a dataset
type Schema struct {
	Columns []string
	Fields  Fields
}

// Value returns the value of column col for a record
func (s Schema) Value(rec dedupe.Record, col string) string {
	switch col {
	case s.Fields.DecorID:
		return rec.DecorID
	case s.Fields.ImageURL:
		return rec.ImageURL
	default:
		return rec.Extra[col]
	}
}

// Row renders a record in column order
func (s Schema) Row(rec dedupe.Record) []string {
	row := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		row[i] = s.Value(rec, col)
	}
	return row
}

// Table is a loaded dataset
type Table struct {
	Path    string
	Schema  Schema
	Records []dedupe.Record
}

// SourceError reports that the input could not be read or parsed
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read dataset %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// WriteError reports that a backup or output file could not be written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
