package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader handles loading of an image dataset CSV
type Loader struct {
	path   string
	fields Fields
}

// NewLoader creates a new dataset loader
func NewLoader(path string, fields Fields) *Loader {
	if fields.DecorID == "" {
		fields.DecorID = DefaultDecorField
	}
	if fields.ImageURL == "" {
		fields.ImageURL = DefaultImageField
	}
	return &Loader{
		path:   path,
		fields: fields,
	}
}

// Load reads the whole dataset into memory
func (l *Loader) Load() (*Table, error) {
	slog.Debug("Opening CSV file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceError{Path: l.path, Err: fmt.Errorf("%w: %w", ErrSourceMissing, err)}
		}
		return nil, &SourceError{Path: l.path, Err: err}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &SourceError{Path: l.path, Err: err}
	}

	slog.Debug("CSV file stats", "size_bytes", len(data))

	table, err := l.parse(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, &SourceError{Path: l.path, Err: err}
	}

	slog.Debug("Finished reading CSV file", "columns", len(table.Schema.Columns), "records", len(table.Records))
	return table, nil
}

func (l *Loader) parse(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	decorIdx, imageIdx := -1, -1
	for i, col := range header {
		switch col {
		case l.fields.DecorID:
			decorIdx = i
		case l.fields.ImageURL:
			imageIdx = i
		}
	}
	if decorIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", l.fields.DecorID)
	}
	if imageIdx < 0 {
		return nil, fmt.Errorf("missing required column %q", l.fields.ImageURL)
	}

	table := &Table{
		Path: l.path,
		Schema: Schema{
			Columns: header,
			Fields:  l.fields,
		},
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		line, _ := r.FieldPos(0)
		if len(fields) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d columns", line, len(fields), len(header))
		}
		rec := dedupe.Record{
			Extra: make(map[string]string, len(header)-2),
			Line:  line,
		}
		for i, col := range header {
			value := ""
			if i < len(fields) {
				value = fields[i]
			}
			switch i {
			case decorIdx:
				rec.DecorID = value
			case imageIdx:
				rec.ImageURL = value
			default:
				rec.Extra[col] = value
			}
		}
		table.Records = append(table.Records, rec)

		if len(table.Records)%1000 == 0 {
			slog.Debug("Reading CSV", "records_read", len(table.Records))
		}
	}

	return table, nil
}
