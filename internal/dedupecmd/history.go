package dedupecmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/imgdedupe/internal/config"
	"github.com/lehigh-university-libraries/imgdedupe/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command listing previous runs
func NewHistoryCmd() *cobra.Command {
	var historyPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous deduplication runs",
		Example: `  # Show the last 20 runs
  imgdedupe history --history .imgdedupe/history.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd), config.Overrides{History: historyPath})
			if err != nil {
				return err
			}
			if cfg.History == "" {
				return fmt.Errorf("--history is required (or set history in %s)", config.DefaultFile)
			}
			return executeHistory(cmd.Context(), cfg.History, limit, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "SQLite database written by run --history")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")

	return cmd
}

func executeHistory(ctx context.Context, path string, limit int, out io.Writer) (err error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-20s  %-36s  %8s  %8s  %8s  %9s  %s\n", "STARTED", "RUN", "ORIGINAL", "DEDUPED", "SKIPPED", "REDUCTION", "INPUT")
	for _, r := range runs {
		input := r.Input
		if r.DryRun {
			input += " (dry run)"
		}
		fmt.Fprintf(out, "%-20s  %-36s  %8d  %8d  %8d  %8.1f%%  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID,
			r.OriginalRows, r.DedupedRows, r.SkippedRows, r.Reduction, input)
	}
	return nil
}
