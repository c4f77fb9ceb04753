package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/imgdedupe/internal/config"
	"github.com/lehigh-university-libraries/imgdedupe/internal/dedupecmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "imgdedupe",
		Short: "Collapse duplicate image URL variants in decor image datasets",
		Long: `imgdedupe removes duplicate image rows from a decor image export.

Rows that point at the same base image of the same decor (differing only in
rendition width or aspect ratio) are collapsed into the single best variant.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultFile+" if present)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	cmd.AddCommand(dedupecmd.NewRunCmd())
	cmd.AddCommand(dedupecmd.NewAnalyzeCmd())
	cmd.AddCommand(dedupecmd.NewHistoryCmd())

	return cmd
}
