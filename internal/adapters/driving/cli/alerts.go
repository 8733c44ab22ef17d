package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var (
	alertsDays       int
	alertsType       string
	alertsUnnotified bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Check and review alerts",
	Long: `Evaluate the six alert rules against a fresh snapshot, or review the
alerts raised by earlier runs.`,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a pass and evaluate alert rules",
	Long: `Runs a quick analysis, compares it with the previous snapshot and
raises heat_surge, rank_change, sentiment_extreme, flow_peak, flow_decline
and viral_spread alerts as thresholds trip. Triggered alerts are stored
and dispatched to the notifier.`,
	Args: cobra.NoArgs,
	RunE: runAlertsCheck,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent alerts",
	Args:  cobra.NoArgs,
	RunE:  runAlertsList,
}

var alertsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Count recent alerts by type and level",
	Args:  cobra.NoArgs,
	RunE:  runAlertsSummary,
}

func init() {
	alertsListCmd.Flags().IntVarP(&alertsDays, "days", "d", 7, "look-back window in days")
	alertsListCmd.Flags().StringVarP(&alertsType, "type", "t", "", "only show alerts of this type")
	alertsListCmd.Flags().BoolVar(&alertsUnnotified, "unnotified", false, "only show alerts not yet delivered")
	alertsSummaryCmd.Flags().IntVarP(&alertsDays, "days", "d", 7, "look-back window in days")

	alertsCmd.AddCommand(alertsCheckCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsSummaryCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlertsCheck(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	cmd.Println("Checking alerts...")
	report, err := pipeline.AlertCheck(cmd.Context())
	if report != nil {
		printFetch(cmd, report.Fetch)
	}
	if err != nil {
		return fmt.Errorf("alert check failed: %w", err)
	}

	if snap := report.Snapshot; snap != nil {
		cmd.Printf("Snapshot #%d: score %d (%s)\n", snap.ID, snap.TotalScore, tierStyle(snap.FlowLevel).Render(snap.FlowLevel))
	}
	cmd.Println()
	cmd.Println(title(fmt.Sprintf("Triggered alerts: %d", len(report.Alerts))))
	printAlerts(cmd, report.Alerts)
	if report.Notified {
		cmd.Println(successStyle.Render("Alerts delivered."))
	}
	return nil
}

func runAlertsList(cmd *cobra.Command, _ []string) error {
	if alertsService == nil {
		return errors.New("alerts service not configured")
	}

	var (
		alerts []domain.Alert
		err    error
	)
	if alertsUnnotified {
		alerts, err = alertsService.Unnotified(cmd.Context())
	} else {
		var alertType domain.AlertType
		if alertsType != "" {
			if alertType, err = domain.ParseAlertType(alertsType); err != nil {
				return err
			}
		}
		alerts, err = alertsService.History(cmd.Context(), alertsDays, alertType)
	}
	if err != nil {
		return fmt.Errorf("failed to list alerts: %w", err)
	}

	if alertsUnnotified {
		cmd.Println(title(fmt.Sprintf("Undelivered alerts: %d", len(alerts))))
	} else {
		cmd.Println(title(fmt.Sprintf("Alerts in the last %d days: %d", alertsDays, len(alerts))))
	}
	printAlerts(cmd, alerts)
	return nil
}

func runAlertsSummary(cmd *cobra.Command, _ []string) error {
	if alertsService == nil {
		return errors.New("alerts service not configured")
	}

	summary, err := alertsService.Summary(cmd.Context(), alertsDays)
	if err != nil {
		return fmt.Errorf("failed to summarise alerts: %w", err)
	}

	cmd.Println(title(fmt.Sprintf("Alert summary (last %d days)", summary.Days)))
	cmd.Printf("  Total: %d\n", summary.Total)
	cmd.Println()
	cmd.Println(headerStyle.Render("By level:"))
	for _, level := range []domain.AlertLevel{domain.LevelDanger, domain.LevelWarning, domain.LevelInfo} {
		cmd.Printf("  %-8s %d\n", string(level), summary.ByLevel[level])
	}
	cmd.Println()
	cmd.Println(headerStyle.Render("By type:"))
	for _, t := range domain.AlertTypes {
		cmd.Printf("  %-18s %d\n", string(t), summary.ByType[t])
	}
	return nil
}
