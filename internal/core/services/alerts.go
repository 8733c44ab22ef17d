package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure AlertEngine implements the interface.
var _ driving.Alerts = (*AlertEngine)(nil)

// rankWindow is how many current topics are checked for rank changes.
const (
	rankWindow        = 20
	maxListedRisers   = 3
	defaultAlertsDays = 7
)

// AlertInput is the current reading evaluated by the alert rules.
type AlertInput struct {
	SnapshotID int64
	Score      int
	Topics     []domain.HotTopic

	// PreviousRanking maps topic to 0-based rank in the previous run.
	// nil disables the rank_change rule.
	PreviousRanking map[string]int

	Sentiment *domain.SentimentResult
	ViralK    float64
}

// AlertEngine evaluates threshold rules and dispatches their results.
type AlertEngine struct {
	alerts     driven.AlertStore
	thresholds driven.ThresholdStore
	notifier   driven.Notifier
	deduper    driven.AlertDeduper
	log        *slog.Logger
	now        func() time.Time
}

// NewAlertEngine creates an alert engine. notifier and deduper may be nil.
func NewAlertEngine(
	alerts driven.AlertStore,
	thresholds driven.ThresholdStore,
	notifier driven.Notifier,
	deduper driven.AlertDeduper,
) *AlertEngine {
	return &AlertEngine{
		alerts:     alerts,
		thresholds: thresholds,
		notifier:   notifier,
		deduper:    deduper,
		log:        logger.Component("alerts"),
		now:        time.Now,
	}
}

// loadThresholds reads thresholds fresh from the store.
func (e *AlertEngine) loadThresholds(ctx context.Context) (domain.Thresholds, error) {
	values, err := e.thresholds.Thresholds(ctx)
	if err != nil {
		return domain.Thresholds{}, fmt.Errorf("load thresholds: %w", err)
	}
	return domain.ThresholdsFromMap(values), nil
}

// Evaluate applies the six alert rules and returns triggered alerts with
// the most severe first. Equal levels keep rule order.
func (e *AlertEngine) Evaluate(ctx context.Context, in AlertInput) ([]domain.Alert, error) {
	th, err := e.loadThresholds(ctx)
	if err != nil {
		return nil, err
	}
	if !th.AlertEnabled {
		e.log.Debug("alert evaluation disabled")
		return nil, nil
	}

	var alerts []domain.Alert
	add := func(a *domain.Alert) {
		if a == nil {
			return
		}
		a.SnapshotID = in.SnapshotID
		a.CreatedAt = e.now()
		alerts = append(alerts, *a)
	}

	add(checkHeatSurge(in.Score, th))
	add(checkRankChange(in.Topics, in.PreviousRanking, th))
	if in.Sentiment != nil {
		add(checkSentimentExtreme(in.Sentiment, th))
		add(checkFlowPeak(in.Sentiment))
		add(checkFlowDecline(in.Sentiment))
	}
	add(checkViralSpread(in.ViralK, th))

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level.Priority() > alerts[j].Level.Priority()
	})

	if th.DedupWindow > 0 && e.deduper != nil {
		alerts = e.dedup(ctx, alerts, th.DedupWindow)
	}
	return alerts, nil
}

// dedup drops alerts whose condition was already raised within window.
// A failing deduper lets the alert through.
func (e *AlertEngine) dedup(ctx context.Context, alerts []domain.Alert, window time.Duration) []domain.Alert {
	kept := alerts[:0]
	for _, a := range alerts {
		fresh, err := e.deduper.Claim(ctx, a.DedupKey(), window)
		if err != nil {
			e.log.Warn("dedup claim failed", "key", a.DedupKey(), "error", err)
			fresh = true
		}
		if fresh {
			kept = append(kept, a)
		} else {
			e.log.Debug("alert suppressed", "key", a.DedupKey(), "window", window)
		}
	}
	return kept
}

func checkHeatSurge(score int, th domain.Thresholds) *domain.Alert {
	if score < th.Heat {
		return nil
	}
	return &domain.Alert{
		Type:           domain.AlertHeatSurge,
		Level:          domain.LevelWarning,
		Title:          fmt.Sprintf("heat surge: flow score %d", score),
		Body:           fmt.Sprintf("flow score %d is at or above threshold %d; attention is unusually concentrated", score, th.Heat),
		TriggerValue:   float64(score),
		ThresholdValue: float64(th.Heat),
	}
}

type riser struct {
	topic    string
	current  int
	previous int
}

func checkRankChange(topics []domain.HotTopic, previous map[string]int, th domain.Thresholds) *domain.Alert {
	if len(previous) == 0 {
		return nil
	}

	var risers []riser
	for i, t := range topics {
		if i >= rankWindow {
			break
		}
		prev, ok := previous[t.Topic]
		if !ok {
			continue
		}
		if prev-i >= th.RankChange {
			risers = append(risers, riser{topic: t.Topic, current: i + 1, previous: prev + 1})
		}
	}
	if len(risers) == 0 {
		return nil
	}

	listed := risers
	if len(listed) > maxListedRisers {
		listed = listed[:maxListedRisers]
	}
	names := make([]string, len(listed))
	lines := make([]string, len(listed))
	for i, r := range listed {
		names[i] = r.topic
		lines[i] = fmt.Sprintf("%s: #%d -> #%d", r.topic, r.previous, r.current)
	}

	return &domain.Alert{
		Type:  domain.AlertRankChange,
		Level: domain.LevelInfo,
		Title: "rank change: " + strings.Join(names, ", "),
		Body: fmt.Sprintf("%d topics rose %d or more positions\n%s",
			len(risers), th.RankChange, strings.Join(lines, "\n")),
		TriggerValue:   float64(len(risers)),
		ThresholdValue: float64(th.RankChange),
	}
}

func checkSentimentExtreme(s *domain.SentimentResult, th domain.Thresholds) *domain.Alert {
	switch {
	case s.Index >= th.SentimentHigh:
		return &domain.Alert{
			Type:           domain.AlertSentimentExtreme,
			Level:          domain.LevelWarning,
			Title:          fmt.Sprintf("sentiment extreme: %s (%d)", s.Class, s.Index),
			Body:           fmt.Sprintf("sentiment index %d is at or above %d; euphoria often precedes a reversal", s.Index, th.SentimentHigh),
			TriggerValue:   float64(s.Index),
			ThresholdValue: float64(th.SentimentHigh),
		}
	case s.Index <= th.SentimentLow:
		return &domain.Alert{
			Type:           domain.AlertSentimentExtreme,
			Level:          domain.LevelWarning,
			Title:          fmt.Sprintf("sentiment extreme: %s (%d)", s.Class, s.Index),
			Body:           fmt.Sprintf("sentiment index %d is at or below %d; panic may be overdone", s.Index, th.SentimentLow),
			TriggerValue:   float64(s.Index),
			ThresholdValue: float64(th.SentimentLow),
		}
	}
	return nil
}

// checkFlowPeak fires on the consensus stage alone.
func checkFlowPeak(s *domain.SentimentResult) *domain.Alert {
	if s.Stage.Stage != domain.StageConsensus {
		return nil
	}
	return &domain.Alert{
		Type:  domain.AlertFlowPeak,
		Level: domain.LevelDanger,
		Title: "flow peak: consensus stage reached",
		Body: fmt.Sprintf("stage %s (signal %s), K=%.2f, sentiment %d\n%s",
			s.Stage.Stage, s.Stage.Signal, s.Stage.K, s.Index, s.Stage.Rationale),
		TriggerValue:   s.Stage.K,
		ThresholdValue: 1.5,
	}
}

func checkFlowDecline(s *domain.SentimentResult) *domain.Alert {
	if s.Stage.Stage != domain.StageDecline {
		return nil
	}
	return &domain.Alert{
		Type:  domain.AlertFlowDecline,
		Level: domain.LevelWarning,
		Title: "flow decline: take profits and cut losses",
		Body: fmt.Sprintf("stage %s, growth %.1f%%\n%s",
			s.Stage.Stage, s.Stage.AvgGrowth*100, s.Stage.Rationale),
		TriggerValue:   s.Stage.AvgGrowth,
		ThresholdValue: -0.15,
	}
}

func checkViralSpread(k float64, th domain.Thresholds) *domain.Alert {
	if k < th.ViralK {
		return nil
	}
	return &domain.Alert{
		Type:           domain.AlertViralSpread,
		Level:          domain.LevelWarning,
		Title:          fmt.Sprintf("viral spread: K=%.2f", k),
		Body:           fmt.Sprintf("viral coefficient %.2f is at or above %.2f; attention is compounding", k, th.ViralK),
		TriggerValue:   k,
		ThresholdValue: th.ViralK,
	}
}

// Save persists alerts with notified=false and sets their IDs.
func (e *AlertEngine) Save(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	for i := range alerts {
		alerts[i].Notified = false
	}
	if err := e.alerts.SaveAlerts(ctx, alerts); err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	return nil
}

// Dispatch sends alerts as one digest and flips their notified flag once
// the notifier reports success. It reports whether delivery happened.
func (e *AlertEngine) Dispatch(ctx context.Context, alerts []domain.Alert) (bool, error) {
	if len(alerts) == 0 || e.notifier == nil {
		return false, nil
	}
	th, err := e.loadThresholds(ctx)
	if err != nil {
		return false, err
	}
	if !th.NotificationEnabled {
		e.log.Debug("notification disabled", "alerts", len(alerts))
		return false, nil
	}

	if err := e.notifier.Notify(ctx, BuildDigest(alerts)); err != nil {
		return false, fmt.Errorf("notify: %w", err)
	}

	ids := make([]int64, 0, len(alerts))
	for i := range alerts {
		alerts[i].Notified = true
		if alerts[i].ID != 0 {
			ids = append(ids, alerts[i].ID)
		}
	}
	if len(ids) > 0 {
		if err := e.alerts.MarkNotified(ctx, ids); err != nil {
			return true, fmt.Errorf("mark notified: %w", err)
		}
	}
	return true, nil
}

// BuildDigest groups alerts by level, most severe first.
func BuildDigest(alerts []domain.Alert) domain.Digest {
	byLevel := make(map[domain.AlertLevel][]domain.Alert)
	for _, a := range alerts {
		byLevel[a.Level] = append(byLevel[a.Level], a)
	}

	subject := fmt.Sprintf("flowwatch: %d alerts", len(alerts))
	if len(byLevel[domain.LevelDanger]) > 0 {
		subject = fmt.Sprintf("flowwatch: %d alerts, %d danger", len(alerts), len(byLevel[domain.LevelDanger]))
	}

	var b strings.Builder
	for _, level := range []domain.AlertLevel{domain.LevelDanger, domain.LevelWarning, domain.LevelInfo} {
		group := byLevel[level]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "[%s] %d\n", strings.ToUpper(string(level)), len(group))
		for _, a := range group {
			fmt.Fprintf(&b, "  - %s\n", a.Title)
		}
	}

	return domain.Digest{Subject: subject, Body: b.String(), Alerts: alerts}
}

// Summary counts alerts over the last days.
func (e *AlertEngine) Summary(ctx context.Context, days int) (*domain.AlertSummary, error) {
	if days <= 0 {
		days = defaultAlertsDays
	}
	return e.alerts.AlertSummary(ctx, days)
}

// History lists alerts over the last days.
func (e *AlertEngine) History(ctx context.Context, days int, alertType domain.AlertType) ([]domain.Alert, error) {
	if days <= 0 {
		days = defaultAlertsDays
	}
	return e.alerts.RecentAlerts(ctx, days, alertType)
}

// Unnotified lists alerts awaiting delivery.
func (e *AlertEngine) Unnotified(ctx context.Context) ([]domain.Alert, error) {
	return e.alerts.Unnotified(ctx)
}

// Thresholds lists the threshold config.
func (e *AlertEngine) Thresholds(ctx context.Context) ([]domain.ThresholdEntry, error) {
	return e.thresholds.ListThresholds(ctx)
}

// SetThreshold validates and stores one threshold value.
func (e *AlertEngine) SetThreshold(ctx context.Context, key, value string) error {
	if err := validateThreshold(key, value); err != nil {
		return err
	}
	if err := e.thresholds.SetThreshold(ctx, key, value); err != nil {
		return fmt.Errorf("set threshold %s: %w", key, err)
	}
	e.log.Info("threshold updated", "key", key, "value", value)
	return nil
}

func validateThreshold(key, value string) error {
	if !domain.IsThresholdKey(key) {
		return fmt.Errorf("unknown threshold %q: %w", key, domain.ErrInvalidInput)
	}
	switch key {
	case domain.ThresholdAlertEnabled, domain.ThresholdNotificationEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be a boolean: %w", key, domain.ErrInvalidInput)
		}
	case domain.ThresholdViralK:
		if v, err := strconv.ParseFloat(value, 64); err != nil || v <= 0 {
			return fmt.Errorf("%s must be a positive number: %w", key, domain.ErrInvalidInput)
		}
	default:
		if v, err := strconv.Atoi(value); err != nil || v < 0 {
			return fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
	}
	return nil
}
