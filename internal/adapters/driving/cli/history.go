package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// maxDailyTopics caps the topics printed per day.
const maxDailyTopics = 3

var (
	historyLimit int
	historyDays  int
	historyHours int
	historyScore int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query stored snapshots and trends",
}

var historySnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List recent snapshots",
	Args:  cobra.NoArgs,
	RunE:  runHistorySnapshots,
}

var historyDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show daily rollups",
	Args:  cobra.NoArgs,
	RunE:  runHistoryDaily,
}

var historyTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Compare recent daily averages against earlier days",
	Args:  cobra.NoArgs,
	RunE:  runHistoryTrend,
}

var historyCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Place a score within recent history",
	Long: `Ranks a score against the scores recorded over the last hours.
Without --score the latest snapshot's score is used.`,
	Args: cobra.NoArgs,
	RunE: runHistoryCompare,
}

func init() {
	historySnapshotsCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of snapshots")
	historyDailyCmd.Flags().IntVarP(&historyDays, "days", "d", 7, "number of days")
	historyTrendCmd.Flags().IntVarP(&historyDays, "days", "d", 7, "number of days")
	historyCompareCmd.Flags().IntVar(&historyHours, "hours", 24, "history window in hours")
	historyCompareCmd.Flags().IntVar(&historyScore, "score", 0, "score to compare (default: latest snapshot)")

	historyCmd.AddCommand(historySnapshotsCmd)
	historyCmd.AddCommand(historyDailyCmd)
	historyCmd.AddCommand(historyTrendCmd)
	historyCmd.AddCommand(historyCompareCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistorySnapshots(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	snaps, err := historyService.RecentSnapshots(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		cmd.Println("No snapshots yet. Run 'flowwatch run' first.")
		return nil
	}

	cmd.Println(title("Recent snapshots"))
	cmd.Println(headerStyle.Render(fmt.Sprintf("  %-6s %-17s %-6s %-8s %s", "ID", "TIME", "SCORE", "LEVEL", "SOURCES")))
	for _, s := range snaps {
		cmd.Printf("  %-6d %-17s %-6d %s %d\n", s.ID, s.FetchTime.Local().Format(timeLayout), s.TotalScore,
			tierStyle(s.FlowLevel).Render(fmt.Sprintf("%-8s", s.FlowLevel)), s.SuccessCount)
	}
	return nil
}

func runHistoryDaily(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	stats, err := historyService.DailyStats(cmd.Context(), historyDays)
	if err != nil {
		return fmt.Errorf("failed to load daily stats: %w", err)
	}
	if len(stats) == 0 {
		cmd.Println("No daily statistics yet.")
		return nil
	}

	cmd.Println(title(fmt.Sprintf("Daily statistics (last %d days)", historyDays)))
	for _, st := range stats {
		cmd.Printf("  %s  avg %d  max %d  min %d  %s\n", st.Date, st.AvgScore, st.MaxScore, st.MinScore,
			mutedStyle.Render(fmt.Sprintf("(%d snapshots)", st.SnapshotCount)))
		if topics := formatTopTopics(st.TopTopics); topics != "" {
			cmd.Printf("    topics: %s\n", topics)
		}
	}
	return nil
}

func runHistoryTrend(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	trend, err := historyService.FlowTrend(cmd.Context(), historyDays)
	if err != nil {
		return fmt.Errorf("failed to compute trend: %w", err)
	}

	cmd.Println(title(fmt.Sprintf("Flow trend (last %d days)", trend.Days)))
	cmd.Printf("  Trend: %s\n", trendStyle(trend.Trend))
	if trend.Trend != domain.TrendInsufficient {
		cmd.Printf("  Recent average: %.1f\n", trend.RecentAvg)
		cmd.Printf("  Earlier average: %.1f\n", trend.EarlierAvg)
	}
	if trend.Description != "" {
		cmd.Printf("  %s\n", trend.Description)
	}
	return nil
}

func runHistoryCompare(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	score := historyScore
	if score <= 0 {
		latest, err := historyService.LatestSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load latest snapshot: %w", err)
		}
		if latest == nil {
			return errors.New("no snapshots yet; pass --score or run 'flowwatch run' first")
		}
		score = latest.TotalScore
	}

	cmp, err := historyService.CompareWithHistory(cmd.Context(), score, historyHours)
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}

	cmd.Println(title(fmt.Sprintf("Score %d against the last %d hours", cmp.Score, cmp.Hours)))
	if cmp.Samples == 0 {
		cmd.Println("  No history in this window.")
		return nil
	}
	cmd.Printf("  Percentile: %.0f (%s)\n", cmp.Percentile, cmp.Level)
	cmd.Printf("  Average: %.1f  max %d  min %d  %s\n", cmp.Average, cmp.Max, cmp.Min,
		mutedStyle.Render(fmt.Sprintf("(%d samples)", cmp.Samples)))
	return nil
}

func trendStyle(trend string) string {
	switch trend {
	case domain.TrendRising:
		return successStyle.Render(trend)
	case domain.TrendFalling:
		return warningStyle.Render(trend)
	default:
		return mutedStyle.Render(trend)
	}
}

func formatTopTopics(topics []domain.TopicCount) string {
	parts := make([]string, 0, maxDailyTopics)
	for i, t := range topics {
		if i >= maxDailyTopics {
			break
		}
		parts = append(parts, fmt.Sprintf("%s(%d)", t.Topic, t.Count))
	}
	return strings.Join(parts, ", ")
}
