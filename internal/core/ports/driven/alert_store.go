package driven

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// AlertStore persists alerts.
type AlertStore interface {
	// SaveAlerts inserts alerts and sets their IDs in place.
	SaveAlerts(ctx context.Context, alerts []domain.Alert) error

	// MarkNotified flips the notified flag for the given alert IDs.
	MarkNotified(ctx context.Context, ids []int64) error

	// Unnotified returns alerts not yet delivered, newest first.
	Unnotified(ctx context.Context) ([]domain.Alert, error)

	// RecentAlerts returns alerts from the last days, newest first.
	// An empty alertType matches every type.
	RecentAlerts(ctx context.Context, days int, alertType domain.AlertType) ([]domain.Alert, error)

	// AlertSummary counts alerts from the last days by type and level.
	AlertSummary(ctx context.Context, days int) (*domain.AlertSummary, error)
}

// ThresholdStore is the mutable alert threshold config.
// Readers must not cache values between evaluations.
type ThresholdStore interface {
	// Thresholds returns all key/value pairs.
	Thresholds(ctx context.Context) (map[string]string, error)

	// ListThresholds returns all entries with descriptions, ordered by key.
	ListThresholds(ctx context.Context) ([]domain.ThresholdEntry, error)

	// SetThreshold upserts a value.
	SetThreshold(ctx context.Context, key, value string) error
}
