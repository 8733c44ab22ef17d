package driven

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// SnapshotStore persists pipeline runs and their rollups.
type SnapshotStore interface {
	// SaveSnapshot persists the snapshot with all child rows and updates
	// the day's rollup in one transaction. snapshot.Sentiment, when set,
	// is written in the same transaction. Returns the new snapshot ID.
	// Failures are returned as *domain.PersistenceError.
	SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) (int64, error)

	// GetSnapshot returns a snapshot with its children.
	// Returns domain.ErrNotFound if it does not exist.
	GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error)

	// LatestSnapshot returns the most recent snapshot, or nil if none exist.
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// LatestSnapshotForDate returns the latest snapshot taken on date (YYYY-MM-DD),
	// or nil if none exist.
	LatestSnapshotForDate(ctx context.Context, date string) (*domain.Snapshot, error)

	// PreviousSnapshot returns the snapshot before the latest, or nil.
	PreviousSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// RecentSnapshots lists the most recent snapshots, newest first.
	RecentSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error)

	// RecentScores returns total scores from the last hours, oldest first.
	RecentScores(ctx context.Context, hours int) ([]domain.ScorePoint, error)

	// SentimentHistory returns the most recent sentiment records, oldest first.
	SentimentHistory(ctx context.Context, limit int) ([]domain.SentimentRecord, error)

	// DailyStats returns rollups for the last days, oldest first.
	DailyStats(ctx context.Context, days int) ([]domain.DailyStatistic, error)

	// SaveAnalysis persists an external analysis result.
	SaveAnalysis(ctx context.Context, result *domain.AnalysisResult) error

	// LatestAnalysis returns the most recent analysis, or nil.
	LatestAnalysis(ctx context.Context) (*domain.AnalysisResult, error)
}
