package driving

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Pipeline runs the three analysis passes.
type Pipeline interface {
	// QuickAnalysis ingests, scores, classifies and persists one snapshot.
	QuickAnalysis(ctx context.Context, selector domain.SourceSelector) (*domain.RunReport, error)

	// AlertCheck runs a quick analysis, evaluates alert rules against the
	// previous run, persists triggered alerts and dispatches them.
	AlertCheck(ctx context.Context) (*domain.RunReport, error)

	// FullAnalysis runs a quick analysis and hands the snapshot to the
	// external analyzer, when one is configured.
	FullAnalysis(ctx context.Context) (*domain.RunReport, error)
}

// History answers trend queries over persisted snapshots.
type History interface {
	// LatestSnapshot returns the most recent snapshot, or nil.
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// RecentSnapshots lists recent snapshots, newest first.
	RecentSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error)

	// DailyStats returns rollups for the last days.
	DailyStats(ctx context.Context, days int) ([]domain.DailyStatistic, error)

	// FlowTrend compares the recent days' average scores against earlier ones.
	FlowTrend(ctx context.Context, days int) (*domain.FlowTrend, error)

	// CompareWithHistory places score within the last hours of scores.
	CompareWithHistory(ctx context.Context, score, hours int) (*domain.HistoryComparison, error)
}

// Alerts exposes alert queries and threshold management.
type Alerts interface {
	// Summary counts alerts over the last days.
	Summary(ctx context.Context, days int) (*domain.AlertSummary, error)

	// History lists alerts over the last days, optionally filtered by type.
	History(ctx context.Context, days int, alertType domain.AlertType) ([]domain.Alert, error)

	// Unnotified lists alerts awaiting delivery.
	Unnotified(ctx context.Context) ([]domain.Alert, error)

	// Thresholds lists the threshold config.
	Thresholds(ctx context.Context) ([]domain.ThresholdEntry, error)

	// SetThreshold updates one threshold. Unknown keys are rejected.
	SetThreshold(ctx context.Context, key, value string) error
}
