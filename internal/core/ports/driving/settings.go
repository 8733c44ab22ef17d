package driving

import (
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Settings resolves and updates runtime configuration.
type Settings interface {
	// Get resolves the current settings with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// SetTask persists a task's enabled flag and interval.
	SetTask(taskID string, enabled bool, interval time.Duration) error

	// SetAnalysis persists the analysis endpoint configuration.
	// Empty baseURL or model keep their current values.
	SetAnalysis(apiKey, baseURL, model string) error
}
