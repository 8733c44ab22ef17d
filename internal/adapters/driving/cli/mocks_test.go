package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
)

// executeCommand runs rootCmd with args and returns its combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandContext(t, context.Background(), args...)
}

func executeCommandContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetFlags restores flag variables, which persist between executions.
func resetFlags() {
	runSelector = "all"
	alertsDays = 7
	alertsType = ""
	alertsUnnotified = false
	historyLimit = 10
	historyDays = 7
	historyHours = 24
	historyScore = 0
	sourcesCategory = ""
	serveMCPPort = 0
	analysisAPIKey = ""
	analysisBaseURL = ""
	analysisModel = ""
	versionShort = false
}

// withServices installs s for the duration of the test.
func withServices(t *testing.T, s *Services) {
	t.Helper()
	saved := Services{
		Catalog:    catalog,
		Ingestion:  ingestion,
		Pipeline:   pipeline,
		History:    historyService,
		Alerts:     alertsService,
		Scheduler:  scheduler,
		Settings:   settingsService,
		Vocabulary: vocabularyWatcher,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(&saved) })
}

type mockCatalog struct {
	sources []domain.Source
}

func (m *mockCatalog) All() []domain.Source { return m.sources }

func (m *mockCatalog) Get(id string) (domain.Source, error) {
	for _, s := range m.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Source{}, domain.ErrNotFound
}

func (m *mockCatalog) ByCategory(c domain.Category) []domain.Source {
	var out []domain.Source
	for _, s := range m.sources {
		if s.Category == c {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockCatalog) Resolve(domain.SourceSelector) ([]domain.Source, error) {
	return m.sources, nil
}

type mockIngestion struct {
	statuses map[string]*driving.SourceStatus
}

func (m *mockIngestion) Ingest(context.Context, domain.SourceSelector) (*domain.FetchResult, error) {
	return &domain.FetchResult{}, nil
}

func (m *mockIngestion) Status(_ context.Context, id string) (*driving.SourceStatus, error) {
	if st, ok := m.statuses[id]; ok {
		return st, nil
	}
	return &driving.SourceStatus{SourceID: id}, nil
}

type mockPipeline struct {
	report      *domain.RunReport
	err         error
	gotSelector domain.SourceSelector
	calls       []string
}

func (m *mockPipeline) QuickAnalysis(_ context.Context, sel domain.SourceSelector) (*domain.RunReport, error) {
	m.gotSelector = sel
	m.calls = append(m.calls, "quick")
	return m.report, m.err
}

func (m *mockPipeline) AlertCheck(context.Context) (*domain.RunReport, error) {
	m.calls = append(m.calls, "alerts")
	return m.report, m.err
}

func (m *mockPipeline) FullAnalysis(context.Context) (*domain.RunReport, error) {
	m.calls = append(m.calls, "full")
	return m.report, m.err
}

type mockHistory struct {
	latest     *domain.Snapshot
	summaries  []domain.SnapshotSummary
	daily      []domain.DailyStatistic
	trend      *domain.FlowTrend
	comparison *domain.HistoryComparison
	err        error

	gotLimit int
	gotDays  int
	gotScore int
	gotHours int
}

func (m *mockHistory) LatestSnapshot(context.Context) (*domain.Snapshot, error) {
	return m.latest, m.err
}

func (m *mockHistory) RecentSnapshots(_ context.Context, limit int) ([]domain.SnapshotSummary, error) {
	m.gotLimit = limit
	return m.summaries, m.err
}

func (m *mockHistory) DailyStats(_ context.Context, days int) ([]domain.DailyStatistic, error) {
	m.gotDays = days
	return m.daily, m.err
}

func (m *mockHistory) FlowTrend(_ context.Context, days int) (*domain.FlowTrend, error) {
	m.gotDays = days
	return m.trend, m.err
}

func (m *mockHistory) CompareWithHistory(_ context.Context, score, hours int) (*domain.HistoryComparison, error) {
	m.gotScore, m.gotHours = score, hours
	if m.comparison != nil {
		m.comparison.Score, m.comparison.Hours = score, hours
	}
	return m.comparison, m.err
}

type mockAlerts struct {
	summary    *domain.AlertSummary
	alerts     []domain.Alert
	unnotified []domain.Alert
	thresholds []domain.ThresholdEntry
	err        error

	gotDays  int
	gotType  domain.AlertType
	setKey   string
	setValue string
}

func (m *mockAlerts) Summary(_ context.Context, days int) (*domain.AlertSummary, error) {
	m.gotDays = days
	return m.summary, m.err
}

func (m *mockAlerts) History(_ context.Context, days int, t domain.AlertType) ([]domain.Alert, error) {
	m.gotDays, m.gotType = days, t
	return m.alerts, m.err
}

func (m *mockAlerts) Unnotified(context.Context) ([]domain.Alert, error) {
	return m.unnotified, m.err
}

func (m *mockAlerts) Thresholds(context.Context) ([]domain.ThresholdEntry, error) {
	return m.thresholds, m.err
}

func (m *mockAlerts) SetThreshold(_ context.Context, key, value string) error {
	m.setKey, m.setValue = key, value
	return m.err
}

type mockScheduler struct {
	mu        sync.Mutex
	views     []domain.TaskStatusView
	log       *domain.SchedulerLog
	err       error
	started   bool
	enabled   map[string]bool
	intervals map[string]time.Duration
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{
		enabled:   make(map[string]bool),
		intervals: make(map[string]time.Duration),
	}
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) RunNow(context.Context, string) (*domain.SchedulerLog, error) {
	return m.log, m.err
}

func (m *mockScheduler) SetEnabled(_ context.Context, id string, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	m.enabled[id] = enabled
	return nil
}

func (m *mockScheduler) SetInterval(_ context.Context, id string, interval time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.intervals[id] = interval
	return nil
}

func (m *mockScheduler) Status(context.Context) ([]domain.TaskStatusView, error) {
	return m.views, m.err
}

func (m *mockScheduler) wasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

type taskUpdate struct {
	id       string
	enabled  bool
	interval time.Duration
}

type mockSettings struct {
	settings *domain.AppSettings
	err      error

	taskUpdates []taskUpdate
	apiKey      string
	baseURL     string
	model       string
}

func newMockSettings() *mockSettings {
	s := domain.DefaultAppSettings()
	return &mockSettings{settings: &s}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	return m.settings, m.err
}

func (m *mockSettings) SetTask(id string, enabled bool, interval time.Duration) error {
	m.taskUpdates = append(m.taskUpdates, taskUpdate{id: id, enabled: enabled, interval: interval})
	return m.err
}

func (m *mockSettings) SetAnalysis(apiKey, baseURL, model string) error {
	m.apiKey, m.baseURL, m.model = apiKey, baseURL, model
	return m.err
}

type mockWatcher struct {
	mu      sync.Mutex
	watched bool
}

func (m *mockWatcher) Watch(ctx context.Context) error {
	m.mu.Lock()
	m.watched = true
	m.mu.Unlock()
	<-ctx.Done()
	return nil
}
