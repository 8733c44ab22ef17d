package domain

import (
	"fmt"
	"time"
)

// AlertType names one of the six alert rules.
type AlertType string

// Alert types.
const (
	AlertHeatSurge        AlertType = "heat_surge"
	AlertRankChange       AlertType = "rank_change"
	AlertSentimentExtreme AlertType = "sentiment_extreme"
	AlertFlowPeak         AlertType = "flow_peak"
	AlertFlowDecline      AlertType = "flow_decline"
	AlertViralSpread      AlertType = "viral_spread"
)

// AlertTypes lists all alert types in evaluation order.
var AlertTypes = []AlertType{
	AlertHeatSurge, AlertRankChange, AlertSentimentExtreme,
	AlertFlowPeak, AlertFlowDecline, AlertViralSpread,
}

// AlertLevel is an alert severity.
type AlertLevel string

// Alert levels.
const (
	LevelInfo    AlertLevel = "info"
	LevelWarning AlertLevel = "warning"
	LevelDanger  AlertLevel = "danger"
)

// Priority orders levels: danger > warning > info.
func (l AlertLevel) Priority() int {
	switch l {
	case LevelDanger:
		return 3
	case LevelWarning:
		return 2
	case LevelInfo:
		return 1
	}
	return 0
}

// ParseAlertLevel validates a level name.
func ParseAlertLevel(s string) (AlertLevel, error) {
	switch AlertLevel(s) {
	case LevelInfo, LevelWarning, LevelDanger:
		return AlertLevel(s), nil
	}
	return "", fmt.Errorf("alert level %q: %w", s, ErrInvalidInput)
}

// ParseAlertType validates an alert type name.
func ParseAlertType(s string) (AlertType, error) {
	for _, t := range AlertTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("alert type %q: %w", s, ErrInvalidInput)
}

// Alert is a triggered threshold rule.
// After creation the only mutation is flipping Notified.
type Alert struct {
	ID int64

	// SnapshotID references the originating snapshot; zero when absent.
	SnapshotID int64

	Type           AlertType
	Level          AlertLevel
	Title          string
	Body           string
	TriggerValue   float64
	ThresholdValue float64
	Notified       bool
	CreatedAt      time.Time
}

// DedupKey identifies alerts that represent the same condition.
func (a *Alert) DedupKey() string {
	return string(a.Type) + ":" + string(a.Level)
}

// AlertSummary counts alerts over a window.
type AlertSummary struct {
	Days    int
	Total   int
	ByType  map[AlertType]int
	ByLevel map[AlertLevel]int
}

// Digest is the notification payload built from a batch of alerts.
type Digest struct {
	Subject string
	Body    string
	Alerts  []Alert
}
