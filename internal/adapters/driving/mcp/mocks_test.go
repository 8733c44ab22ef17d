package mcp

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// mockHistoryService is a mock implementation of driving.History.
type mockHistoryService struct {
	latest    *domain.Snapshot
	trend     *domain.FlowTrend
	trendDays int
	err       error
}

func (m *mockHistoryService) LatestSnapshot(_ context.Context) (*domain.Snapshot, error) {
	return m.latest, m.err
}

func (m *mockHistoryService) RecentSnapshots(_ context.Context, _ int) ([]domain.SnapshotSummary, error) {
	return nil, m.err
}

func (m *mockHistoryService) DailyStats(_ context.Context, _ int) ([]domain.DailyStatistic, error) {
	return nil, m.err
}

func (m *mockHistoryService) FlowTrend(_ context.Context, days int) (*domain.FlowTrend, error) {
	m.trendDays = days
	return m.trend, m.err
}

func (m *mockHistoryService) CompareWithHistory(_ context.Context, _, _ int) (*domain.HistoryComparison, error) {
	return nil, m.err
}

// mockAlertsService is a mock implementation of driving.Alerts.
type mockAlertsService struct {
	alerts    []domain.Alert
	gotDays   int
	gotType   domain.AlertType
	err       error
	callCount int
}

func (m *mockAlertsService) Summary(_ context.Context, _ int) (*domain.AlertSummary, error) {
	return nil, m.err
}

func (m *mockAlertsService) History(_ context.Context, days int, alertType domain.AlertType) ([]domain.Alert, error) {
	m.callCount++
	m.gotDays = days
	m.gotType = alertType
	return m.alerts, m.err
}

func (m *mockAlertsService) Unnotified(_ context.Context) ([]domain.Alert, error) {
	return nil, m.err
}

func (m *mockAlertsService) Thresholds(_ context.Context) ([]domain.ThresholdEntry, error) {
	return nil, m.err
}

func (m *mockAlertsService) SetThreshold(_ context.Context, _, _ string) error {
	return m.err
}

// mockCatalog is a mock implementation of driving.SourceCatalog.
type mockCatalog struct {
	sources []domain.Source
}

func (m *mockCatalog) All() []domain.Source {
	return m.sources
}

func (m *mockCatalog) Get(id string) (domain.Source, error) {
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Source{}, domain.ErrNotFound
}

func (m *mockCatalog) ByCategory(_ domain.Category) []domain.Source {
	return m.sources
}

func (m *mockCatalog) Resolve(_ domain.SourceSelector) ([]domain.Source, error) {
	return m.sources, nil
}
