package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	input         TEXT NOT NULL,
	backup        TEXT NOT NULL DEFAULT '',
	dry_run       INTEGER NOT NULL DEFAULT 0,
	original_rows INTEGER NOT NULL,
	deduped_rows  INTEGER NOT NULL,
	skipped_rows  INTEGER NOT NULL,
	groups_count  INTEGER NOT NULL,
	reduction     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded deduplication run
type Run struct {
	ID           string
	StartedAt    time.Time
	Input        string
	Backup       string
	DryRun       bool
	OriginalRows int
	DedupedRows  int
	SkippedRows  int
	Groups       int
	Reduction    float64
}

// Store is a SQLite ledger of past runs
type Store struct {
	db *sql.DB
}

// NewRunID returns a fresh identifier for a run
func NewRunID() string {
	return uuid.NewString()
}

// Open opens (creating if needed) the ledger at path
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run. A run without an ID gets a new one.
func (s *Store) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = NewRunID()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, input, backup, dry_run, original_rows, deduped_rows, skipped_rows, groups_count, reduction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Input, r.Backup, r.DryRun,
		r.OriginalRows, r.DedupedRows, r.SkippedRows, r.Groups, r.Reduction,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, input, backup, dry_run, original_rows, deduped_rows, skipped_rows, groups_count, reduction
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Input, &r.Backup, &r.DryRun,
			&r.OriginalRows, &r.DedupedRows, &r.SkippedRows, &r.Groups, &r.Reduction); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", started, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
