package domain

import (
	"strconv"
	"time"
)

// Threshold keys stored in the threshold config.
const (
	ThresholdHeat                = "heat_threshold"
	ThresholdRankChange          = "rank_change_threshold"
	ThresholdSentimentHigh       = "sentiment_high_threshold"
	ThresholdSentimentLow        = "sentiment_low_threshold"
	ThresholdViralK              = "viral_k_threshold"
	ThresholdAlertEnabled        = "alert_enabled"
	ThresholdNotificationEnabled = "notification_enabled"
	ThresholdDedupWindowMinutes  = "alert_dedup_window_minutes"
)

// ThresholdEntry is one key/value pair of the threshold config.
type ThresholdEntry struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   time.Time
}

// DefaultThresholds returns the seed values for the threshold config.
func DefaultThresholds() []ThresholdEntry {
	return []ThresholdEntry{
		{Key: ThresholdHeat, Value: "800", Description: "flow score that raises heat_surge"},
		{Key: ThresholdRankChange, Value: "10", Description: "rank positions a topic must rise"},
		{Key: ThresholdSentimentHigh, Value: "90", Description: "sentiment index treated as euphoric"},
		{Key: ThresholdSentimentLow, Value: "20", Description: "sentiment index treated as panic"},
		{Key: ThresholdViralK, Value: "1.5", Description: "viral coefficient that raises viral_spread"},
		{Key: ThresholdAlertEnabled, Value: "true", Description: "evaluate alert rules"},
		{Key: ThresholdNotificationEnabled, Value: "true", Description: "dispatch alerts to the notifier"},
		{Key: ThresholdDedupWindowMinutes, Value: "0", Description: "suppress repeated alerts within window, 0 disables"},
	}
}

// Thresholds is a typed view over the threshold config.
type Thresholds struct {
	Heat                int
	RankChange          int
	SentimentHigh       int
	SentimentLow        int
	ViralK              float64
	AlertEnabled        bool
	NotificationEnabled bool
	DedupWindow         time.Duration
}

// ThresholdsFromMap parses raw values, falling back to defaults key by key.
func ThresholdsFromMap(values map[string]string) Thresholds {
	t := Thresholds{
		Heat:                800,
		RankChange:          10,
		SentimentHigh:       90,
		SentimentLow:        20,
		ViralK:              1.5,
		AlertEnabled:        true,
		NotificationEnabled: true,
	}
	if v, err := strconv.Atoi(values[ThresholdHeat]); err == nil {
		t.Heat = v
	}
	if v, err := strconv.Atoi(values[ThresholdRankChange]); err == nil {
		t.RankChange = v
	}
	if v, err := strconv.Atoi(values[ThresholdSentimentHigh]); err == nil {
		t.SentimentHigh = v
	}
	if v, err := strconv.Atoi(values[ThresholdSentimentLow]); err == nil {
		t.SentimentLow = v
	}
	if v, err := strconv.ParseFloat(values[ThresholdViralK], 64); err == nil {
		t.ViralK = v
	}
	if v, err := strconv.ParseBool(values[ThresholdAlertEnabled]); err == nil {
		t.AlertEnabled = v
	}
	if v, err := strconv.ParseBool(values[ThresholdNotificationEnabled]); err == nil {
		t.NotificationEnabled = v
	}
	if v, err := strconv.Atoi(values[ThresholdDedupWindowMinutes]); err == nil && v > 0 {
		t.DedupWindow = time.Duration(v) * time.Minute
	}
	return t
}

// IsThresholdKey reports whether key is a known threshold key.
func IsThresholdKey(key string) bool {
	for _, e := range DefaultThresholds() {
		if e.Key == key {
			return true
		}
	}
	return false
}
