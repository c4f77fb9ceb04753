package dedupecmd

import (
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/imgdedupe/internal/config"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dataset"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupe"
	"github.com/lehigh-university-libraries/imgdedupe/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var flags datasetFlags
	var examples int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show how much a dataset would shrink without changing it",
		Long: `Reads the dataset and reports the number of rows, unique decor ids and
unique decor id + base image combinations, along with sample duplicate groups.

Nothing is written.`,
		Example: `  # Analyze the default dataset
  imgdedupe analyze

  # Show every duplicate group
  imgdedupe analyze --input data/webp-images.csv --examples -1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath(cmd), flags.overrides())
			if err != nil {
				return err
			}
			return executeAnalyze(cfg, examples, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&examples, "examples", 3, "Number of duplicate groups to show (-1 for all)")

	return cmd
}

func executeAnalyze(cfg config.Effective, examples int, out io.Writer) error {
	ex, err := dedupe.NewExtractor(cfg.Marker)
	if err != nil {
		return err
	}

	table, err := dataset.NewLoader(cfg.Input, cfg.Fields).Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	analysis := dedupe.Analyze(table.Records, ex, examples)
	report.NewConsole(out).Analysis(cfg.Input, analysis)

	if analysis.Rows > 0 {
		s := report.Summarize(analysis.Rows, analysis.Combinations)
		fmt.Fprintf(out, "\nDeduplication would keep %d of %d rows (%.1f%% reduction)\n", s.DedupedSize, s.OriginalSize, s.Reduction)
	}
	return nil
}
