package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var runSelector string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a quick analysis pass",
	Long: `Fetches the selected sources once, scores the attention flow, classifies
sentiment and flow stage, and stores the result as a new snapshot.

Select sources with --sources:
  all                 every source (default)
  category:finance    one category (social, news, finance, tech)
  weibo,cls,zhihu     a comma separated list of source IDs`,
	Args: cobra.NoArgs,
	RunE: runQuick,
}

func init() {
	runCmd.Flags().StringVarP(&runSelector, "sources", "s", "all", "sources to fetch")
	rootCmd.AddCommand(runCmd)
}

func runQuick(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	selector, err := domain.ParseSourceSelector(runSelector)
	if err != nil {
		return err
	}

	cmd.Println("Running quick analysis...")
	report, err := pipeline.QuickAnalysis(cmd.Context(), selector)
	if report != nil {
		printFetch(cmd, report.Fetch)
	}
	if err != nil {
		return fmt.Errorf("quick analysis failed: %w", err)
	}

	printSnapshot(cmd, report.Snapshot)
	printModel(cmd, report.Model)
	printSentiment(cmd, report.Sentiment)
	return nil
}
