package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/parquet-go/parquet-go"
)

// saveParquet writes one parquet row per selection; run config and summary are not stored
func (r *RunReport) saveParquet(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close parquet file: %w", cerr)
		}
	}()

	writer := parquet.NewGenericWriter[Selection](file)
	if _, err := writer.Write(r.Selections); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}

	slog.Debug("Parquet report written", "path", path, "rows", len(r.Selections))
	return nil
}

// LoadParquet reads the selections from a parquet report
func LoadParquet(path string) ([]Selection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Selection](pf)
	defer reader.Close()

	return readSelections(reader, pf.NumRows())
}

type selectionReader interface {
	Read(rows []Selection) (int, error)
}

// readSelections drains r in batches. Only io.EOF ends the read cleanly.
func readSelections(r selectionReader, sizeHint int64) ([]Selection, error) {
	selections := make([]Selection, 0, sizeHint)
	rows := make([]Selection, 128)
	for {
		n, err := r.Read(rows)
		selections = append(selections, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return selections, nil
}
