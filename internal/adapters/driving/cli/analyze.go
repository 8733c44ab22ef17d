package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis pass",
	Long: `Runs a quick analysis over every source, then asks the configured
external analysis model for sector and stock recommendations, and
derives a trading signal from the flow stage.

Without an analysis API key the pass still completes with numeric
output only.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	cmd.Println("Running full analysis...")
	report, err := pipeline.FullAnalysis(cmd.Context())
	if report != nil {
		printFetch(cmd, report.Fetch)
	}
	if err != nil {
		return fmt.Errorf("full analysis failed: %w", err)
	}

	printSnapshot(cmd, report.Snapshot)
	printModel(cmd, report.Model)
	printSentiment(cmd, report.Sentiment)
	printAnalysis(cmd, report.Analysis)
	printSignals(cmd, report.Signals)
	return nil
}
