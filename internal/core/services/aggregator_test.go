package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// mockFetcher implements driven.SourceFetcher for testing.
type mockFetcher struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	errs    map[string]error
	calls   []string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		records: make(map[string][]domain.Record),
		errs:    make(map[string]error),
	}
}

func (m *mockFetcher) Fetch(_ context.Context, src domain.Source) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, src.ID)
	if err := m.errs[src.ID]; err != nil {
		return nil, err
	}
	out := make([]domain.Record, len(m.records[src.ID]))
	copy(out, m.records[src.ID])
	return out, nil
}

var _ driven.SourceFetcher = (*mockFetcher)(nil)

func titles(n int, prefix string) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{Title: fmt.Sprintf("%s %d", prefix, i), Rank: i + 1}
	}
	return out
}

func testCatalog() *SourceRegistry {
	return NewSourceRegistryWith([]domain.Source{
		{ID: "weibo", Name: "微博热搜", Category: domain.CategorySocial, Weight: 10},
		{ID: "baidu", Name: "百度热搜", Category: domain.CategoryNews, Weight: 8},
		{ID: "cls", Name: "财联社", Category: domain.CategoryFinance, Weight: 8},
		{ID: "juejin", Name: "掘金", Category: domain.CategoryTech, Weight: 5},
	})
}

func TestAggregator_IngestAll(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.records["weibo"] = titles(3, "weibo")
	fetcher.records["baidu"] = titles(2, "baidu")
	fetcher.records["cls"] = titles(4, "cls")
	fetcher.records["juejin"] = titles(1, "juejin")

	agg := NewAggregator(testCatalog(), fetcher, 0)
	result, err := agg.Ingest(context.Background(), domain.SelectAll)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 4, result.Succeeded)
	assert.Len(t, result.Records(), 10)
	assert.Equal(t, []string{"weibo", "baidu", "cls", "juejin"}, fetcher.calls)
}

func TestAggregator_SourceFailureDoesNotAbort(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.records["weibo"] = titles(3, "weibo")
	fetcher.errs["baidu"] = domain.NewSourceFetchError("baidu", domain.FetchErrorMalformed, errors.New("bad json"))
	fetcher.errs["cls"] = context.DeadlineExceeded
	fetcher.errs["juejin"] = errors.New("connection refused")

	agg := NewAggregator(testCatalog(), fetcher, 0)
	result, err := agg.Ingest(context.Background(), domain.SelectAll)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)
	assert.Len(t, fetcher.calls, 4, "every source attempted exactly once")

	failures := result.Failures()
	require.Len(t, failures, 3)
	assert.ErrorIs(t, failures[0], domain.ErrSourceMalformed)
	assert.ErrorIs(t, failures[1], domain.ErrSourceTimeout)
	assert.ErrorIs(t, failures[2], domain.ErrSourceConnection)
}

func TestAggregator_StampsRecords(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.records["weibo"] = []domain.Record{{
		Title:   "热搜",
		Finance: &domain.FinanceExtension{Tickers: []string{"600519"}},
		Social:  &domain.SocialExtension{HotValue: 42},
	}}
	fetcher.records["cls"] = []domain.Record{{
		Title:   "快讯",
		Origin:  "custom",
		Finance: &domain.FinanceExtension{Tickers: []string{"600519"}},
		Social:  &domain.SocialExtension{HotValue: 1},
	}}

	agg := NewAggregator(testCatalog(), fetcher, 0)
	result, err := agg.Ingest(context.Background(), domain.SourceSelector{IDs: []string{"weibo", "cls"}})
	require.NoError(t, err)

	records := result.Records()
	require.Len(t, records, 2)

	assert.Equal(t, "weibo", records[0].SourceID)
	assert.Equal(t, domain.CategorySocial, records[0].Category)
	assert.Equal(t, "微博热搜", records[0].Origin)
	assert.Nil(t, records[0].Finance)
	require.NotNil(t, records[0].Social)

	assert.Equal(t, "custom", records[1].Origin)
	assert.Equal(t, domain.CategoryFinance, records[1].Category)
	assert.NotNil(t, records[1].Finance)
	assert.Nil(t, records[1].Social)
}

func TestAggregator_UnknownSelector(t *testing.T) {
	agg := NewAggregator(testCatalog(), newMockFetcher(), 0)
	_, err := agg.Ingest(context.Background(), domain.SourceSelector{IDs: []string{"ghost"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAggregator_CancelledContextRecordsTimeouts(t *testing.T) {
	fetcher := newMockFetcher()
	agg := NewAggregator(testCatalog(), fetcher, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := agg.Ingest(ctx, domain.SelectAll)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 0, result.Succeeded)
	for _, f := range result.Failures() {
		assert.ErrorIs(t, f, domain.ErrSourceTimeout)
	}
}

func TestAggregator_Status(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.records["weibo"] = titles(2, "weibo")
	fetcher.errs["baidu"] = errors.New("down")

	agg := NewAggregator(testCatalog(), fetcher, 0)
	ctx := context.Background()

	status, err := agg.Status(ctx, "weibo")
	require.NoError(t, err)
	assert.True(t, status.LastFetch.IsZero())

	_, err = agg.Ingest(ctx, domain.SourceSelector{IDs: []string{"weibo", "baidu"}})
	require.NoError(t, err)

	status, err = agg.Status(ctx, "weibo")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 2, status.Records)
	assert.Empty(t, status.LastError)

	status, err = agg.Status(ctx, "baidu")
	require.NoError(t, err)
	assert.Equal(t, 1, status.ErrorCount)
	assert.Contains(t, status.LastError, "down")

	_, err = agg.Status(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
