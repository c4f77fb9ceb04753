package dedupecmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/imgdedupe/internal/config"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dataset"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
	"github.com/lehigh-university-libraries/imgdedupe/internal/history"
	"github.com/lehigh-university-libraries/imgdedupe/internal/report"
	"github.com/spf13/cobra"
)

// reportTimeFormat matches the timestamp used for report file names
const reportTimeFormat = "2006-01-02_15-04-05"

// runOptions carries everything a single deduplication run needs
type runOptions struct {
	cfg    config.Effective
	dryRun bool
	now    func() time.Time
	out    io.Writer
}

// NewRunCmd creates the run command that deduplicates a dataset in place
func NewRunCmd() *cobra.Command {
	var flags datasetFlags
	var backupDir string
	var reportPath string
	var historyPath string
	var keepMetadata bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deduplicate image URL variants in a dataset",
		Long: `Groups rows by decor id and base image path, keeps the best scoring URL
of each group and rewrites the dataset in place.

A timestamped backup of the original file is written before the dataset is
overwritten. Rows whose image URL has no base image path are dropped and
reported.`,
		Example: `  # Deduplicate the default dataset
  imgdedupe run

  # Deduplicate another file and keep backups in a separate directory
  imgdedupe run --input data/webp-images.csv --backup-dir backups

  # Preview the selection without writing anything
  imgdedupe run --dry-run --report selection.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov := flags.overrides()
			ov.BackupDir = backupDir
			ov.Report = reportPath
			ov.History = historyPath
			if cmd.Flags().Changed("keep-metadata") {
				ov.KeepMetadata = &keepMetadata
			}

			cfg, err := config.Load(configPath(cmd), ov)
			if err != nil {
				return err
			}

			return executeRun(cmd.Context(), runOptions{
				cfg:    cfg,
				dryRun: dryRun,
				now:    time.Now,
				out:    cmd.OutOrStdout(),
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Directory for the timestamped backup (default: next to the input)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a selection report (.yaml, .yml or .parquet)")
	cmd.Flags().StringVar(&historyPath, "history", "", "Record the run in this SQLite database")
	cmd.Flags().BoolVar(&keepMetadata, "keep-metadata", false, "Keep original_count, chosen_width and chosen_score columns in the output")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Select representatives and report without writing any file")

	return cmd
}

func executeRun(ctx context.Context, opts runOptions) error {
	cfg := opts.cfg
	startedAt := opts.now()

	slog.Info("Starting deduplication", "input", cfg.Input, "marker", cfg.Marker, "dry_run", opts.dryRun)

	ex, err := dedupe.NewExtractor(cfg.Marker)
	if err != nil {
		return err
	}

	// Load dataset
	table, err := dataset.NewLoader(cfg.Input, cfg.Fields).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "rows", len(table.Records), "columns", len(table.Schema.Columns))

	console := report.NewConsole(opts.out)
	console.Start(len(table.Records))

	res := dedupe.Deduplicate(table.Records, ex, console)
	console.Selected(len(res.Representatives))

	if err := ctx.Err(); err != nil {
		return err
	}

	var backupPath string
	if !opts.dryRun {
		backupPath, err = dataset.Backup(table, cfg.BackupDir, startedAt)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		console.Backup(backupPath)

		console.Output(cfg.Input)
		if err := dataset.Save(cfg.Input, table.Schema, res.Representatives, cfg.KeepMetadata); err != nil {
			slog.Error("Deduplicated dataset not written; original rows are in the backup", "backup", backupPath, "err", err)
			return fmt.Errorf("failed to save dataset: %w", err)
		}
	}

	summary := report.Summarize(len(table.Records), len(res.Representatives))
	console.Summary(summary)

	runID := history.NewRunID()

	if cfg.Report != "" {
		rr := report.NewRunReport(report.RunConfig{
			RunID:     runID,
			Input:     cfg.Input,
			Backup:    backupPath,
			Marker:    ex.Marker(),
			DryRun:    opts.dryRun,
			Timestamp: startedAt.Format(reportTimeFormat),
		}, len(table.Records), res)
		if err := rr.Save(cfg.Report); err != nil {
			return fmt.Errorf("failed to save selection report: %w", err)
		}
		fmt.Fprintf(opts.out, "Selection report saved to: %s\n", cfg.Report)
	}

	if cfg.History != "" {
		if err := recordRun(ctx, cfg.History, history.Run{
			ID:           runID,
			StartedAt:    startedAt,
			Input:        cfg.Input,
			Backup:       backupPath,
			DryRun:       opts.dryRun,
			OriginalRows: summary.OriginalSize,
			DedupedRows:  summary.DedupedSize,
			SkippedRows:  res.Skipped,
			Groups:       res.Groups,
			Reduction:    summary.Reduction,
		}); err != nil {
			return err
		}
	}

	slog.Info("Deduplication complete", "run_id", runID, "groups", res.Groups, "skipped", res.Skipped)
	return nil
}

func recordRun(ctx context.Context, path string, run history.Run) (err error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	if _, err := store.Record(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
