package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
)

func TestBackupPath(t *testing.T) {
	now := time.Date(2025, 3, 7, 9, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		src      string
		dir      string
		expected string
	}{
		{"next to source", filepath.Join("public", "webp-images.csv"), "", filepath.Join("public", "webp-images-backup-20250307_090405.csv")},
		{"separate directory", filepath.Join("public", "webp-images.csv"), "backups", filepath.Join("backups", "webp-images-backup-20250307_090405.csv")},
		{"no extension", "images", "", "images-backup-20250307_090405.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BackupPath(tt.src, tt.dir, now); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestBackup(t *testing.T) {
	path := writeFile(t, "webp-images.csv", sampleCSV)
	table, err := NewLoader(path, DefaultFields()).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	now := time.Date(2025, 3, 7, 9, 4, 5, 0, time.Local)
	backup, err := Backup(table, "", now)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if filepath.Dir(backup) != filepath.Dir(path) {
		t.Errorf("Expected backup next to source, got %s", backup)
	}

	restored, err := NewLoader(backup, DefaultFields()).Load()
	if err != nil {
		t.Fatalf("Failed to read backup: %v", err)
	}
	if len(restored.Records) != len(table.Records) {
		t.Fatalf("Expected %d records in backup, got %d", len(table.Records), len(restored.Records))
	}
	for i := range table.Records {
		want := table.Schema.Row(table.Records[i])
		got := restored.Schema.Row(restored.Records[i])
		for j := range want {
			if want[j] != got[j] {
				t.Errorf("Record %d column %d: expected %q, got %q", i, j, want[j], got[j])
			}
		}
	}

	// A second backup in the same second must not clobber the first
	_, err = Backup(table, "", now)
	var we *WriteError
	if !errors.As(err, &we) {
		t.Errorf("Expected *WriteError for colliding backup, got %v", err)
	}
}

func TestBackup_UnwritableDir(t *testing.T) {
	path := writeFile(t, "webp-images.csv", sampleCSV)
	table, err := NewLoader(path, DefaultFields()).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// a regular file where the backup directory should be
	blocker := writeFile(t, "blocker", "x")
	_, err = Backup(table, filepath.Join(blocker, "backups"), time.Now())
	var we *WriteError
	if !errors.As(err, &we) {
		t.Errorf("Expected *WriteError, got %v", err)
	}
}

func sampleReps(t *testing.T) (Schema, []dedupe.Representative) {
	t.Helper()
	path := writeFile(t, "webp-images.csv", sampleCSV)
	table, err := NewLoader(path, DefaultFields()).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ex, _ := dedupe.NewExtractor(dedupe.DefaultMarker)
	return table.Schema, dedupe.Deduplicate(table.Records, ex, nil).Representatives
}

func TestSave(t *testing.T) {
	schema, reps := sampleReps(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := Save(out, schema, reps, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	expected := "decor_id,decor_name,image_url,FileType\n" +
		"H1180,Oak,\"https://cdn/pim/aa/bb/img.webp?width=1024,q=80\",webp\n" +
		"U999,Black,https://cdn/pim/cc/dd/img.webp,webp\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, string(data))
	}
}

func TestSave_KeepMetadata(t *testing.T) {
	schema, reps := sampleReps(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := Save(out, schema, reps, true); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	expected := "decor_id,decor_name,image_url,FileType,original_count,chosen_width,chosen_score\n" +
		"H1180,Oak,\"https://cdn/pim/aa/bb/img.webp?width=1024,q=80\",webp,2,1024,100\n" +
		"U999,Black,https://cdn/pim/cc/dd/img.webp,webp,1,0,10\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, string(data))
	}
	if len(schema.Columns) != 4 {
		t.Errorf("Save must not modify the schema, got %v", schema.Columns)
	}
}

func TestSave_Unwritable(t *testing.T) {
	schema, reps := sampleReps(t)
	err := Save(filepath.Join(t.TempDir(), "missing", "out.csv"), schema, reps, false)

	var we *WriteError
	if !errors.As(err, &we) {
		t.Errorf("Expected *WriteError, got %v", err)
	}
}

func TestSave_KeepMetadataReplacesDerivedColumns(t *testing.T) {
	path := writeFile(t, "derived.csv", "decor_id,image_url,original_count,chosen_width,chosen_score\n"+
		"D1,https://cdn/pim/a/b/c.webp?width=1024,4,1024,100\n")
	table, err := NewLoader(path, DefaultFields()).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ex, _ := dedupe.NewExtractor(dedupe.DefaultMarker)
	reps := dedupe.Deduplicate(table.Records, ex, nil).Representatives

	if err := Save(path, table.Schema, reps, true); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	expected := "decor_id,image_url,original_count,chosen_width,chosen_score\n" +
		"D1,https://cdn/pim/a/b/c.webp?width=1024,1,1024,100\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, string(data))
	}
}
