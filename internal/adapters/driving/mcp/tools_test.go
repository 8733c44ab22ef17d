package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		ID:             7,
		Version:        "v-7",
		FetchTime:      time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		TotalPlatforms: 22,
		SuccessCount:   20,
		TotalScore:     640,
		FlowLevel:      "high",
		CategoryScores: domain.CategoryScores{Social: 300, News: 150, Finance: 120, Tech: 70},
		HotTopics: []domain.HotTopic{
			{Topic: "降息", Count: 6, Heat: 92, CrossPlatform: 4},
			{Topic: "芯片", Count: 4, Heat: 70, CrossPlatform: 3},
			{Topic: "机器人", Count: 3, Heat: 55, CrossPlatform: 2},
		},
		Sentiment: &domain.SentimentRecord{
			SentimentIndex: 66,
			SentimentClass: domain.SentimentOptimistic,
			Stage:          domain.StageAcceleration,
			StageSignal:    domain.SignalParticipate,
			RiskLevel:      "medium",
		},
	}
}

func TestServer_handleLatestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns snapshot", func(t *testing.T) {
		server, err := NewServer(&Ports{History: &mockHistoryService{latest: testSnapshot()}})
		require.NoError(t, err)

		_, output, err := server.handleLatestSnapshot(ctx, nil, LatestSnapshotInput{TopTopics: 2})

		require.NoError(t, err)
		assert.True(t, output.Found)
		assert.Equal(t, int64(7), output.ID)
		assert.Equal(t, "2026-03-02T09:30:00Z", output.FetchTime)
		assert.Equal(t, 640, output.TotalScore)
		assert.Equal(t, "high", output.FlowLevel)
		assert.Equal(t, 300, output.CategoryScores.Social)
		require.Len(t, output.HotTopics, 2)
		assert.Equal(t, "降息", output.HotTopics[0].Topic)
		assert.Equal(t, 92, output.HotTopics[0].Heat)
		assert.Equal(t, 66, output.SentimentIndex)
		assert.Equal(t, "acceleration", output.Stage)
		assert.Equal(t, "participate", output.Signal)
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		server, err := NewServer(&Ports{History: &mockHistoryService{}})
		require.NoError(t, err)

		_, output, err := server.handleLatestSnapshot(ctx, nil, LatestSnapshotInput{})

		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.NotNil(t, output.HotTopics)
	})

	t.Run("returns error on store failure", func(t *testing.T) {
		server, err := NewServer(&Ports{History: &mockHistoryService{err: errors.New("db locked")}})
		require.NoError(t, err)

		_, _, err = server.handleLatestSnapshot(ctx, nil, LatestSnapshotInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

func TestServer_handleFlowTrend(t *testing.T) {
	ctx := context.Background()

	t.Run("maps trend and daily stats", func(t *testing.T) {
		history := &mockHistoryService{trend: &domain.FlowTrend{
			Days:       3,
			Trend:      domain.TrendRising,
			RecentAvg:  520,
			EarlierAvg: 400,
			Stats: []domain.DailyStatistic{
				{Date: "2026-03-01", AvgScore: 400, MaxScore: 450, MinScore: 350, SnapshotCount: 4},
				{Date: "2026-03-02", AvgScore: 520, MaxScore: 600, MinScore: 480, SnapshotCount: 5},
			},
		}}
		server, err := NewServer(&Ports{History: history})
		require.NoError(t, err)

		_, output, err := server.handleFlowTrend(ctx, nil, FlowTrendInput{Days: 3})

		require.NoError(t, err)
		assert.Equal(t, 3, history.trendDays)
		assert.Equal(t, domain.TrendRising, output.Trend)
		require.Len(t, output.Daily, 2)
		assert.Equal(t, "2026-03-02", output.Daily[1].Date)
		assert.Equal(t, 5, output.Daily[1].Snapshots)
	})

	t.Run("default days is 7", func(t *testing.T) {
		history := &mockHistoryService{trend: &domain.FlowTrend{Trend: domain.TrendInsufficient}}
		server, err := NewServer(&Ports{History: history})
		require.NoError(t, err)

		_, output, err := server.handleFlowTrend(ctx, nil, FlowTrendInput{})

		require.NoError(t, err)
		assert.Equal(t, 7, history.trendDays)
		assert.Empty(t, output.Daily)
	})
}

func TestServer_handleRecentAlerts(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("returns alerts", func(t *testing.T) {
		alerts := &mockAlertsService{alerts: []domain.Alert{
			{ID: 1, Type: domain.AlertHeatSurge, Level: domain.LevelDanger, Title: "流量激增", TriggerValue: 850, ThresholdValue: 500, CreatedAt: created},
		}}
		server, err := NewServer(&Ports{History: &mockHistoryService{}, Alerts: alerts})
		require.NoError(t, err)

		_, output, err := server.handleRecentAlerts(ctx, nil, RecentAlertsInput{Days: 3, Type: "heat_surge"})

		require.NoError(t, err)
		assert.Equal(t, 3, alerts.gotDays)
		assert.Equal(t, domain.AlertHeatSurge, alerts.gotType)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "danger", output.Alerts[0].Level)
		assert.Equal(t, "2026-03-02T10:00:00Z", output.Alerts[0].CreatedAt)
	})

	t.Run("defaults to all types over 7 days", func(t *testing.T) {
		alerts := &mockAlertsService{}
		server, err := NewServer(&Ports{History: &mockHistoryService{}, Alerts: alerts})
		require.NoError(t, err)

		_, output, err := server.handleRecentAlerts(ctx, nil, RecentAlertsInput{})

		require.NoError(t, err)
		assert.Equal(t, 7, alerts.gotDays)
		assert.Empty(t, alerts.gotType)
		assert.NotNil(t, output.Alerts)
		assert.Zero(t, output.Count)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		alerts := &mockAlertsService{}
		server, err := NewServer(&Ports{History: &mockHistoryService{}, Alerts: alerts})
		require.NoError(t, err)

		_, _, err = server.handleRecentAlerts(ctx, nil, RecentAlertsInput{Type: "meteor"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, alerts.callCount)
	})

	t.Run("no alerts service", func(t *testing.T) {
		server, err := NewServer(&Ports{History: &mockHistoryService{}})
		require.NoError(t, err)

		_, _, err = server.handleRecentAlerts(ctx, nil, RecentAlertsInput{})
		assert.ErrorIs(t, err, errAlertsUnavailable)
	})
}
