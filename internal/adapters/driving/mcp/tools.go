package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Tool defaults.
const (
	defaultTopTopics  = 10
	defaultTrendDays  = 7
	defaultAlertsDays = 7
)

// errAlertsUnavailable is returned by alert tools when no alert service is wired.
var errAlertsUnavailable = errors.New("mcp: alerts are not available")

// LatestSnapshotInput is the input schema for the latest_snapshot tool.
type LatestSnapshotInput struct {
	TopTopics int `json:"top_topics,omitempty" jsonschema:"number of hot topics to include (default 10)"`
}

// SnapshotOutput is the output schema for the latest_snapshot tool.
type SnapshotOutput struct {
	Found          bool                 `json:"found"`
	ID             int64                `json:"id,omitempty"`
	Version        string               `json:"version,omitempty"`
	FetchTime      string               `json:"fetch_time,omitempty"`
	TotalScore     int                  `json:"total_score"`
	FlowLevel      string               `json:"flow_level,omitempty"`
	TotalPlatforms int                  `json:"total_platforms"`
	SuccessCount   int                  `json:"success_count"`
	CategoryScores CategoryScoresOutput `json:"category_scores"`
	HotTopics      []TopicOutput        `json:"hot_topics"`
	SentimentIndex int                  `json:"sentiment_index,omitempty"`
	SentimentClass string               `json:"sentiment_class,omitempty"`
	Stage          string               `json:"stage,omitempty"`
	Signal         string               `json:"signal,omitempty"`
	RiskLevel      string               `json:"risk_level,omitempty"`
}

// CategoryScoresOutput is the per-category score breakdown.
type CategoryScoresOutput struct {
	Social  int `json:"social"`
	News    int `json:"news"`
	Finance int `json:"finance"`
	Tech    int `json:"tech"`
}

// TopicOutput represents a single hot topic.
type TopicOutput struct {
	Topic         string `json:"topic"`
	Heat          int    `json:"heat"`
	Count         int    `json:"count"`
	CrossPlatform int    `json:"cross_platform"`
}

// FlowTrendInput is the input schema for the flow_trend tool.
type FlowTrendInput struct {
	Days int `json:"days,omitempty" jsonschema:"number of days to compare (default 7)"`
}

// FlowTrendOutput is the output schema for the flow_trend tool.
type FlowTrendOutput struct {
	Days        int           `json:"days"`
	Trend       string        `json:"trend"`
	RecentAvg   float64       `json:"recent_avg"`
	EarlierAvg  float64       `json:"earlier_avg"`
	Description string        `json:"description"`
	Daily       []DailyOutput `json:"daily"`
}

// DailyOutput is one day's rollup.
type DailyOutput struct {
	Date      string `json:"date"`
	AvgScore  int    `json:"avg_score"`
	MaxScore  int    `json:"max_score"`
	MinScore  int    `json:"min_score"`
	Snapshots int    `json:"snapshots"`
}

// RecentAlertsInput is the input schema for the recent_alerts tool.
type RecentAlertsInput struct {
	Days int    `json:"days,omitempty" jsonschema:"look-back window in days (default 7)"`
	Type string `json:"type,omitempty" jsonschema:"only return alerts of this type, e.g. heat_surge"`
}

// RecentAlertsOutput is the output schema for the recent_alerts tool.
type RecentAlertsOutput struct {
	Alerts []AlertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// AlertOutput represents a single alert.
type AlertOutput struct {
	ID             int64   `json:"id"`
	SnapshotID     int64   `json:"snapshot_id,omitempty"`
	Type           string  `json:"type"`
	Level          string  `json:"level"`
	Title          string  `json:"title"`
	Body           string  `json:"body,omitempty"`
	TriggerValue   float64 `json:"trigger_value"`
	ThresholdValue float64 `json:"threshold_value"`
	Notified       bool    `json:"notified"`
	CreatedAt      string  `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "latest_snapshot",
		Description: "Get the most recent attention-flow snapshot with its hot topics and sentiment",
	}, s.handleLatestSnapshot)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "flow_trend",
		Description: "Compare recent daily average flow scores against earlier days",
	}, s.handleFlowTrend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_alerts",
		Description: "List alerts triggered over the last days, optionally filtered by type",
	}, s.handleRecentAlerts)
}

// handleLatestSnapshot handles the latest_snapshot tool invocation.
func (s *Server) handleLatestSnapshot(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LatestSnapshotInput,
) (*mcp.CallToolResult, SnapshotOutput, error) {
	topN := input.TopTopics
	if topN <= 0 {
		topN = defaultTopTopics
	}

	snap, err := s.ports.History.LatestSnapshot(ctx)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	return nil, snapshotOutput(snap, topN), nil
}

// handleFlowTrend handles the flow_trend tool invocation.
func (s *Server) handleFlowTrend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FlowTrendInput,
) (*mcp.CallToolResult, FlowTrendOutput, error) {
	days := input.Days
	if days <= 0 {
		days = defaultTrendDays
	}

	trend, err := s.ports.History.FlowTrend(ctx, days)
	if err != nil {
		return nil, FlowTrendOutput{}, err
	}

	output := FlowTrendOutput{
		Days:        trend.Days,
		Trend:       trend.Trend,
		RecentAvg:   trend.RecentAvg,
		EarlierAvg:  trend.EarlierAvg,
		Description: trend.Description,
		Daily:       make([]DailyOutput, len(trend.Stats)),
	}
	for i, st := range trend.Stats {
		output.Daily[i] = DailyOutput{
			Date:      st.Date,
			AvgScore:  st.AvgScore,
			MaxScore:  st.MaxScore,
			MinScore:  st.MinScore,
			Snapshots: st.SnapshotCount,
		}
	}
	return nil, output, nil
}

// handleRecentAlerts handles the recent_alerts tool invocation.
func (s *Server) handleRecentAlerts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentAlertsInput,
) (*mcp.CallToolResult, RecentAlertsOutput, error) {
	if s.ports.Alerts == nil {
		return nil, RecentAlertsOutput{}, errAlertsUnavailable
	}

	days := input.Days
	if days <= 0 {
		days = defaultAlertsDays
	}

	var alertType domain.AlertType
	if input.Type != "" {
		t, err := domain.ParseAlertType(input.Type)
		if err != nil {
			return nil, RecentAlertsOutput{}, err
		}
		alertType = t
	}

	alerts, err := s.ports.Alerts.History(ctx, days, alertType)
	if err != nil {
		return nil, RecentAlertsOutput{}, err
	}

	output := RecentAlertsOutput{
		Alerts: alertOutputs(alerts),
		Count:  len(alerts),
	}
	return nil, output, nil
}

// snapshotOutput converts a snapshot; nil yields Found=false.
func snapshotOutput(snap *domain.Snapshot, topN int) SnapshotOutput {
	if snap == nil {
		return SnapshotOutput{HotTopics: []TopicOutput{}}
	}

	output := SnapshotOutput{
		Found:          true,
		ID:             snap.ID,
		Version:        snap.Version,
		FetchTime:      snap.FetchTime.Format(time.RFC3339),
		TotalScore:     snap.TotalScore,
		FlowLevel:      snap.FlowLevel,
		TotalPlatforms: snap.TotalPlatforms,
		SuccessCount:   snap.SuccessCount,
		CategoryScores: CategoryScoresOutput{
			Social:  snap.CategoryScores.Social,
			News:    snap.CategoryScores.News,
			Finance: snap.CategoryScores.Finance,
			Tech:    snap.CategoryScores.Tech,
		},
		HotTopics: make([]TopicOutput, 0, min(topN, len(snap.HotTopics))),
	}
	for i, t := range snap.HotTopics {
		if i >= topN {
			break
		}
		output.HotTopics = append(output.HotTopics, TopicOutput{
			Topic:         t.Topic,
			Heat:          t.Heat,
			Count:         t.Count,
			CrossPlatform: t.CrossPlatform,
		})
	}
	if sr := snap.Sentiment; sr != nil {
		output.SentimentIndex = sr.SentimentIndex
		output.SentimentClass = string(sr.SentimentClass)
		output.Stage = string(sr.Stage)
		output.Signal = string(sr.StageSignal)
		output.RiskLevel = sr.RiskLevel
	}
	return output
}

func alertOutputs(alerts []domain.Alert) []AlertOutput {
	out := make([]AlertOutput, len(alerts))
	for i := range alerts {
		a := &alerts[i]
		out[i] = AlertOutput{
			ID:             a.ID,
			SnapshotID:     a.SnapshotID,
			Type:           string(a.Type),
			Level:          string(a.Level),
			Title:          a.Title,
			Body:           a.Body,
			TriggerValue:   a.TriggerValue,
			ThresholdValue: a.ThresholdValue,
			Notified:       a.Notified,
			CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}
