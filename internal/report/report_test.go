package report

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

func sampleResult(t *testing.T) dedupe.Result {
	t.Helper()
	ex, err := dedupe.NewExtractor(dedupe.DefaultMarker)
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}
	records := []dedupe.Record{
		{DecorID: "H1180", ImageURL: "https://cdn/pim/aa/bb/AR_16_9.webp?width=512", Line: 2},
		{DecorID: "H1180", ImageURL: "https://cdn/pim/aa/bb/AR_16_9.webp?width=1024", Line: 3},
		{DecorID: "U999", ImageURL: "https://cdn/pim/cc/dd/AR_4_3.webp?width=2048", Line: 4},
		{DecorID: "U999", ImageURL: "https://cdn/unparseable.webp", Line: 5},
	}
	return dedupe.Deduplicate(records, ex, nil)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Start(4)
	c.OnGrouped(2)
	for _, rep := range sampleResult(t).Representatives {
		c.OnGroup(rep)
	}
	c.Selected(2)
	c.Summary(Summarize(4, 2))

	out := buf.String()
	for _, want := range []string{
		"Processing 4 data rows",
		"Found 2 unique decor_id + base_image combinations",
		"  H1180: 2 → 1 (kept 1024px)",
		"  U999: 1 → 1 (kept 2048px)",
		"Selected 2 representative rows",
		"Reduction:      50.0%",
		"Rows saved:     2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestConsoleAnalysis(t *testing.T) {
	ex, _ := dedupe.NewExtractor(dedupe.DefaultMarker)
	records := []dedupe.Record{
		{DecorID: "D1", ImageURL: "https://cdn/pim/aa/bb/" + strings.Repeat("x", 100) + ".webp", Line: 2},
		{DecorID: "D1", ImageURL: "https://cdn/pim/aa/bb/b.webp", Line: 3},
		{DecorID: "D1", ImageURL: "https://cdn/pim/aa/bb/c.webp", Line: 4},
	}

	var buf bytes.Buffer
	NewConsole(&buf).Analysis("webp-images.csv", dedupe.Analyze(records, ex, 3))

	out := buf.String()
	if !strings.Contains(out, "WEBP-IMAGES.CSV") {
		t.Errorf("Expected upper-cased file name, got:\n%s", out)
	}
	if !strings.Contains(out, "D1:aa/bb: 3 duplicates") {
		t.Errorf("Expected duplicate group line, got:\n%s", out)
	}
	if strings.Contains(out, "c.webp") {
		t.Errorf("Expected at most two sample URLs per group, got:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("Expected long URL to be truncated, got:\n%s", out)
	}
}

func TestNewRunReport(t *testing.T) {
	res := sampleResult(t)
	r := NewRunReport(RunConfig{Input: "webp-images.csv", Marker: "pim"}, 4, res)

	if r.Summary.DedupedSize != 2 || r.Summary.SavedRows != 2 {
		t.Errorf("Unexpected summary %+v", r.Summary)
	}
	if r.Skipped != 1 || r.Groups != 2 {
		t.Errorf("Expected Skipped=1 Groups=2, got %d and %d", r.Skipped, r.Groups)
	}
	first := r.Selections[0]
	if first.GroupKey != "H1180:aa/bb" || first.Line != 3 || first.OriginalCount != 2 || first.ChosenWidth != 1024 || first.ChosenScore != 120 {
		t.Errorf("Unexpected first selection %+v", first)
	}
	second := r.Selections[1]
	if second.ChosenScore != 35 {
		t.Errorf("Expected ChosenScore=35, got %d", second.ChosenScore)
	}
}

func TestSaveYAML(t *testing.T) {
	r := NewRunReport(RunConfig{RunID: "abc", Input: "in.csv", Marker: "pim", Timestamp: "2025-03-07_09-04-05"}, 4, sampleResult(t))
	path := filepath.Join(t.TempDir(), "selection.yaml")

	if err := r.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if loaded.Config.RunID != "abc" || loaded.Summary.Reduction != 50 {
		t.Errorf("Unexpected loaded report %+v", loaded)
	}
	if len(loaded.Selections) != 2 || loaded.Selections[1].DecorID != "U999" {
		t.Errorf("Unexpected selections %+v", loaded.Selections)
	}
}

func TestSaveParquet(t *testing.T) {
	r := NewRunReport(RunConfig{Input: "in.csv"}, 4, sampleResult(t))
	path := filepath.Join(t.TempDir(), "selection.parquet")

	if err := r.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rows, err := LoadParquet(path)
	if err != nil {
		t.Fatalf("LoadParquet failed: %v", err)
	}
	if len(rows) != len(r.Selections) {
		t.Fatalf("Expected %d rows, got %d", len(r.Selections), len(rows))
	}
	for i := range rows {
		if rows[i] != r.Selections[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, r.Selections[i], rows[i])
		}
	}
}

func TestSaveUnsupported(t *testing.T) {
	r := NewRunReport(RunConfig{}, 0, dedupe.Result{})
	if err := r.Save(filepath.Join(t.TempDir(), "selection.txt")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

// batchReader returns its batches in order, then err
type batchReader struct {
	batches [][]Selection
	err     error
}

func (b *batchReader) Read(rows []Selection) (int, error) {
	if len(b.batches) == 0 {
		return 0, b.err
	}
	n := copy(rows, b.batches[0])
	b.batches = b.batches[1:]
	if len(b.batches) == 0 {
		return n, b.err
	}
	return n, nil
}

func TestReadSelections(t *testing.T) {
	first := []Selection{{DecorID: "D1"}, {DecorID: "D2"}}
	second := []Selection{{DecorID: "D3"}}
	corrupt := errors.New("corrupt page")

	tests := []struct {
		name    string
		reader  *batchReader
		want    int
		wantErr error
	}{
		{"eof with final batch", &batchReader{batches: [][]Selection{first, second}, err: io.EOF}, 3, nil},
		{"eof after batches", &batchReader{batches: [][]Selection{first}, err: io.EOF}, 2, nil},
		{"empty", &batchReader{err: io.EOF}, 0, nil},
		{"read error", &batchReader{batches: [][]Selection{first, second}, err: corrupt}, 0, corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := readSelections(tt.reader, 0)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				if rows != nil {
					t.Errorf("Expected no rows on error, got %d", len(rows))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("Expected %d rows, got %d", tt.want, len(rows))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcdefghij", 10, "abcdefghij"},
		{"ascii", "abcdefghijkl", 10, "abcdefg..."},
		// "é" occupies bytes 6 and 7; the cut at 7 falls inside it
		{"multibyte boundary", "abcdeféghijkl", 10, "abcdef..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Expected valid UTF-8, got %q", got)
			}
		})
	}
}
