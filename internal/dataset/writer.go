package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

// BackupTimeFormat is the timestamp embedded in backup file names
const BackupTimeFormat = "20060102_150405"

// BackupPath returns the backup location for src taken at now.
// An empty dir places the backup next to src.
func BackupPath(src, dir string, now time.Time) string {
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".csv"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-backup-%s%s", stem, now.Format(BackupTimeFormat), ext))
}

// Backup writes every record of the table, unmodified, to a new timestamped file.
// An existing file with the same name is never overwritten.
func Backup(table *Table, dir string, now time.Time) (string, error) {
	path := BackupPath(table.Path, dir, now)

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &WriteError{Path: path, Err: fmt.Errorf("failed to create backup directory: %w", err)}
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	rows := make([][]string, 0, len(table.Records))
	for _, rec := range table.Records {
		rows = append(rows, table.Schema.Row(rec))
	}

	if err := writeCSV(file, table.Schema.Columns, rows); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	slog.Debug("Backup written", "path", path, "records", len(rows))
	return path, nil
}

// Save overwrites path with the representatives in the original column order.
// With keepMetadata the three derived columns are appended to every row,
// replacing any derived columns already present in the schema.
func Save(path string, schema Schema, reps []dedupe.Representative, keepMetadata bool) error {
	out := schema
	if keepMetadata {
		out.Columns = make([]string, 0, len(schema.Columns)+3)
		for _, col := range schema.Columns {
			if !isDerived(col) {
				out.Columns = append(out.Columns, col)
			}
		}
	}

	rows := make([][]string, 0, len(reps))
	for _, rep := range reps {
		row := out.Row(rep.Record)
		if keepMetadata {
			row = append(row,
				strconv.Itoa(rep.MemberCount),
				strconv.Itoa(rep.Width),
				strconv.Itoa(rep.Score),
			)
		}
		rows = append(rows, row)
	}

	header := out.Columns
	if keepMetadata {
		header = append(header, OriginalCountField, ChosenWidthField, ChosenScoreField)
	}

	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := writeCSV(file, header, rows); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	slog.Debug("Deduplicated dataset written", "path", path, "records", len(rows), "metadata", keepMetadata)
	return nil
}

// writeCSV writes header and rows to file and always closes it
func writeCSV(file *os.File, header []string, rows [][]string) (err error) {
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func isDerived(col string) bool {
	switch col {
	case OriginalCountField, ChosenWidthField, ChosenScoreField:
		return true
	}
	return false
}
