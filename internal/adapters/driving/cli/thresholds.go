package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "View and change alert thresholds",
	Long: `Alert thresholds are stored in the database and read fresh on every
evaluation, so changes apply to the next run without a restart.`,
}

var thresholdsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alert thresholds",
	Args:  cobra.NoArgs,
	RunE:  runThresholdsList,
}

var thresholdsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set an alert threshold",
	Long: `Set one alert threshold. Numeric thresholds must be non-negative and
the sentiment bounds must lie between 0 and 100.

Examples:
  flowwatch thresholds set heat_threshold 650
  flowwatch thresholds set notification_enabled false
  flowwatch thresholds set alert_dedup_window_minutes 60`,
	Args: cobra.ExactArgs(2),
	RunE: runThresholdsSet,
}

func init() {
	thresholdsCmd.AddCommand(thresholdsListCmd)
	thresholdsCmd.AddCommand(thresholdsSetCmd)
	rootCmd.AddCommand(thresholdsCmd)
}

func runThresholdsList(cmd *cobra.Command, _ []string) error {
	if alertsService == nil {
		return errors.New("alerts service not configured")
	}

	entries, err := alertsService.Thresholds(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list thresholds: %w", err)
	}

	cmd.Println(title("Alert thresholds"))
	for _, e := range entries {
		cmd.Printf("  %-28s %-8s %s\n", e.Key, e.Value, mutedStyle.Render(e.Description))
	}
	return nil
}

func runThresholdsSet(cmd *cobra.Command, args []string) error {
	if alertsService == nil {
		return errors.New("alerts service not configured")
	}

	key, value := args[0], args[1]
	if err := alertsService.SetThreshold(cmd.Context(), key, value); err != nil {
		return fmt.Errorf("failed to set threshold: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}
