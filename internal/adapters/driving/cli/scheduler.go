package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run and manage scheduled tasks",
	Long: `The scheduler runs three recurring tasks:

  sync_hotspots    quick analysis over all sources (default every 30m)
  generate_alerts  alert check against the previous snapshot (default every 1h)
  deep_analysis    full analysis with trading signals (default every 2h)`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler in the foreground",
	Long: `Runs due tasks until interrupted. Overdue tasks run immediately on
start. Set scheduler.enabled = false in the config file to keep the
scheduler off.`,
	Args: cobra.NoArgs,
	RunE: runSchedulerStart,
}

var schedulerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tasks and recent executions",
	Args:  cobra.NoArgs,
	RunE:  runSchedulerStatus,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a task now",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerRun,
}

var schedulerEnableCmd = &cobra.Command{
	Use:   "enable [task]",
	Short: "Enable a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskEnabled(cmd, args[0], true)
	},
}

var schedulerDisableCmd = &cobra.Command{
	Use:   "disable [task]",
	Short: "Disable a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTaskEnabled(cmd, args[0], false)
	},
}

var schedulerIntervalCmd = &cobra.Command{
	Use:   "interval [task] [minutes]",
	Short: "Change a task's interval",
	Args:  cobra.ExactArgs(2),
	RunE:  runSchedulerInterval,
}

func init() {
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerEnableCmd)
	schedulerCmd.AddCommand(schedulerDisableCmd)
	schedulerCmd.AddCommand(schedulerIntervalCmd)
	rootCmd.AddCommand(schedulerCmd)
}

func runSchedulerStart(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if !schedulerEnabled() {
		cmd.Println("Scheduler is disabled (scheduler.enabled = false).")
		return nil
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	err := scheduler.Start(cmd.Context())
	if err != nil && cmd.Context().Err() != nil {
		cmd.Println("Scheduler stopped.")
		return nil
	}
	return err
}

func runSchedulerStatus(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	views, err := scheduler.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get scheduler status: %w", err)
	}

	cmd.Println(title("Scheduled tasks"))
	cmd.Println(headerStyle.Render(fmt.Sprintf("  %-16s %-8s %-9s %-17s %-17s", "TASK", "ENABLED", "INTERVAL", "LAST RUN", "NEXT RUN")))
	for _, v := range views {
		t := v.Task
		cmd.Printf("  %-16s %-8s %-9s %-17s %-17s\n", t.ID, yesNo(t.Enabled), t.Interval, formatTime(t.LastRun), formatTime(t.NextRun))
		if t.LastError != "" {
			cmd.Printf("    %s\n", errorStyle.Render("last error: "+t.LastError))
		}
		for _, l := range v.RecentLogs {
			cmd.Printf("    %s %s %s %s\n", formatTime(l.ExecutedAt), taskStatusStyle(l.Status).Render(fmt.Sprintf("%-7s", l.Status)),
				mutedStyle.Render(l.Duration.Round(time.Millisecond).String()), l.Message)
		}
	}
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	taskID := args[0]
	if _, ok := domain.LookupTask(taskID); !ok {
		return fmt.Errorf("unknown task %q: %w", taskID, domain.ErrInvalidInput)
	}

	cmd.Printf("Running %s...\n", taskID)
	entry, err := scheduler.RunNow(cmd.Context(), taskID)
	if err != nil {
		return fmt.Errorf("failed to run %s: %w", taskID, err)
	}

	cmd.Printf("%s in %s: %s\n", taskStatusStyle(entry.Status).Render(string(entry.Status)),
		entry.Duration.Round(time.Millisecond), entry.Message)
	if entry.SnapshotID > 0 {
		cmd.Printf("Snapshot #%d\n", entry.SnapshotID)
	}
	return nil
}

func setTaskEnabled(cmd *cobra.Command, taskID string, enabled bool) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	if err := scheduler.SetEnabled(cmd.Context(), taskID, enabled); err != nil {
		return fmt.Errorf("failed to update %s: %w", taskID, err)
	}

	// The scheduler re-applies the config file on start, so persist there too.
	if settingsService != nil {
		tc, err := currentTaskConfig(taskID)
		if err != nil {
			return err
		}
		if err := settingsService.SetTask(taskID, enabled, tc.Interval); err != nil {
			return fmt.Errorf("failed to save %s settings: %w", taskID, err)
		}
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	cmd.Printf("Task %s %s.\n", taskID, state)
	return nil
}

func runSchedulerInterval(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}

	taskID := args[0]
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes <= 0 {
		return fmt.Errorf("invalid interval %q: %w", args[1], domain.ErrInvalidInput)
	}
	interval := time.Duration(minutes) * time.Minute

	if err := scheduler.SetInterval(cmd.Context(), taskID, interval); err != nil {
		return fmt.Errorf("failed to update %s: %w", taskID, err)
	}

	if settingsService != nil {
		tc, err := currentTaskConfig(taskID)
		if err != nil {
			return err
		}
		if err := settingsService.SetTask(taskID, tc.Enabled, interval); err != nil {
			return fmt.Errorf("failed to save %s settings: %w", taskID, err)
		}
	}

	cmd.Printf("Task %s now runs every %s.\n", taskID, interval)
	return nil
}

func currentTaskConfig(taskID string) (domain.TaskConfig, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return domain.TaskConfig{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Scheduler.GetTaskConfig(taskID), nil
}

// schedulerEnabled reads the master switch. Missing settings count as on.
func schedulerEnabled() bool {
	if settingsService == nil {
		return true
	}
	settings, err := settingsService.Get()
	if err != nil {
		return true
	}
	return settings.Scheduler.Enabled
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}
