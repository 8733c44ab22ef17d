package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.History = (*HistoryService)(nil)

const trendWindow = 3

// HistoryService answers trend queries over persisted snapshots.
type HistoryService struct {
	snapshots driven.SnapshotStore
}

// NewHistoryService creates a history service.
func NewHistoryService(snapshots driven.SnapshotStore) *HistoryService {
	return &HistoryService{snapshots: snapshots}
}

// LatestSnapshot returns the most recent snapshot, or nil.
func (h *HistoryService) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return h.snapshots.LatestSnapshot(ctx)
}

// RecentSnapshots lists recent snapshots, newest first.
func (h *HistoryService) RecentSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	return h.snapshots.RecentSnapshots(ctx, limit)
}

// DailyStats returns rollups for the last days, oldest first.
func (h *HistoryService) DailyStats(ctx context.Context, days int) ([]domain.DailyStatistic, error) {
	if days <= 0 {
		days = 7
	}
	return h.snapshots.DailyStats(ctx, days)
}

// FlowTrend compares the average of the latest three days against the
// first three days in the window.
func (h *HistoryService) FlowTrend(ctx context.Context, days int) (*domain.FlowTrend, error) {
	stats, err := h.DailyStats(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	return ComputeFlowTrend(days, stats), nil
}

// ComputeFlowTrend classifies daily stats, oldest first.
func ComputeFlowTrend(days int, stats []domain.DailyStatistic) *domain.FlowTrend {
	trend := &domain.FlowTrend{Days: days, Stats: stats}
	if len(stats) < 2 {
		trend.Trend = domain.TrendInsufficient
		trend.Description = domain.ErrInsufficientHistory.Error()
		return trend
	}

	n := min(trendWindow, len(stats))
	var recent, earlier float64
	for i := 0; i < n; i++ {
		earlier += float64(stats[i].AvgScore)
		recent += float64(stats[len(stats)-n+i].AvgScore)
	}
	trend.RecentAvg = recent / float64(n)
	trend.EarlierAvg = earlier / float64(n)

	switch {
	case trend.RecentAvg > trend.EarlierAvg*1.2:
		trend.Trend = domain.TrendRising
		trend.Description = fmt.Sprintf("attention rising: recent average %.0f vs earlier %.0f", trend.RecentAvg, trend.EarlierAvg)
	case trend.RecentAvg < trend.EarlierAvg*0.8:
		trend.Trend = domain.TrendFalling
		trend.Description = fmt.Sprintf("attention cooling: recent average %.0f vs earlier %.0f", trend.RecentAvg, trend.EarlierAvg)
	default:
		trend.Trend = domain.TrendStable
		trend.Description = fmt.Sprintf("attention balanced: recent average %.0f vs earlier %.0f", trend.RecentAvg, trend.EarlierAvg)
	}
	return trend
}

// CompareWithHistory places score among the scores of the last hours.
func (h *HistoryService) CompareWithHistory(ctx context.Context, score, hours int) (*domain.HistoryComparison, error) {
	if hours <= 0 {
		hours = domain.DefaultHistoryHours
	}
	points, err := h.snapshots.RecentScores(ctx, hours)
	if err != nil {
		return nil, fmt.Errorf("recent scores: %w", err)
	}
	scores := make([]int, len(points))
	for i, p := range points {
		scores[i] = p.Score
	}
	return ComparePercentile(score, hours, scores), nil
}

// ComparePercentile returns the share of scores strictly below score.
// An empty history yields the 50th percentile.
func ComparePercentile(score, hours int, scores []int) *domain.HistoryComparison {
	c := &domain.HistoryComparison{Score: score, Hours: hours, Samples: len(scores)}
	if len(scores) == 0 {
		c.Percentile = 50
		c.Level = "no history"
		return c
	}

	lower, sum := 0, 0
	c.Max, c.Min = scores[0], scores[0]
	for _, s := range scores {
		if s < score {
			lower++
		}
		sum += s
		c.Max = max(c.Max, s)
		c.Min = min(c.Min, s)
	}
	c.Average = float64(sum) / float64(len(scores))
	c.Percentile = round2(float64(lower) / float64(len(scores)) * 100)

	switch {
	case c.Percentile >= 90:
		c.Level = "extremely high"
	case c.Percentile >= 70:
		c.Level = "high"
	case c.Percentile >= 30:
		c.Level = "normal"
	default:
		c.Level = "low"
	}
	return c
}
