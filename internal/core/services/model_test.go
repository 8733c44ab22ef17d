package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

func fetchOf(results ...domain.SourceResult) *domain.FetchResult {
	f := &domain.FetchResult{Results: results}
	for _, r := range results {
		f.Attempted++
		if r.OK() {
			f.Succeeded++
		}
	}
	return f
}

func okResult(id string, cat domain.Category, weight, n int) domain.SourceResult {
	return domain.SourceResult{
		Source:  domain.Source{ID: id, Name: id, Category: cat, Weight: weight},
		Records: make([]domain.Record, n),
	}
}

func TestComputeTrafficScore(t *testing.T) {
	fetch := fetchOf(
		okResult("weibo", domain.CategorySocial, 10, 50), // 600
		okResult("cls", domain.CategoryFinance, 8, 50),   // 600
		okResult("baidu", domain.CategoryNews, 8, 50),    // 400
		okResult("juejin", domain.CategoryTech, 5, 40),   // 160
		domain.SourceResult{
			Source: domain.Source{ID: "down", Category: domain.CategoryFinance, Weight: 9},
			Err:    domain.NewSourceFetchError("down", domain.FetchErrorTimeout, nil),
		},
	)

	got := ComputeTrafficScore(fetch)
	want := domain.TrafficScore{
		Raw:   1760,
		Total: 35,
		Categories: domain.CategoryScores{
			Social:  12,
			News:    8,
			Finance: 12,
			Tech:    3,
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ComputeTrafficScore mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeTrafficScore_Capped(t *testing.T) {
	fetch := fetchOf(okResult("weibo", domain.CategorySocial, 10, 10000))
	got := ComputeTrafficScore(fetch)
	assert.Equal(t, domain.MaxFlowScore, got.Total)
	assert.Equal(t, domain.MaxFlowScore, got.Categories.Social)
}

func TestComputeTrafficScore_Bounds(t *testing.T) {
	for n := 0; n <= 5000; n += 250 {
		fetch := fetchOf(
			okResult("a", domain.CategoryFinance, 10, n),
			okResult("b", domain.CategorySocial, 10, n),
		)
		total := ComputeTrafficScore(fetch).Total
		assert.GreaterOrEqual(t, total, 0)
		assert.LessOrEqual(t, total, domain.MaxFlowScore)
	}
}

func TestEstimateConversion(t *testing.T) {
	weights := []domain.TopicWeight{{Keyword: "政策", Weight: 2.0}, {Keyword: "业绩", Weight: 1.3}}

	t.Run("no matches", func(t *testing.T) {
		got := EstimateConversion(nil, domain.CategoryScores{}, weights)
		assert.InDelta(t, 1.0, got.TopicFactor, 1e-9)
		assert.InDelta(t, 1.0, got.PlatformFactor, 1e-9)
		assert.InDelta(t, 0.0001, got.Rate, 1e-12)
	})

	t.Run("heat boosted match", func(t *testing.T) {
		topics := []domain.HotTopic{
			{Topic: "业绩预告", Heat: 100},
			{Topic: "新政策", Heat: 40},
		}
		cats := domain.CategoryScores{Finance: 50, Social: 50}
		got := EstimateConversion(topics, cats, weights)

		// 业绩: 1.3*1.5 = 1.95; 政策: 2.0*1.2 = 2.4
		assert.InDelta(t, 2.4, got.TopicFactor, 1e-9)
		// 0.5*1.5 + 0.5*1.2
		assert.InDelta(t, 1.35, got.PlatformFactor, 1e-9)
		assert.InDelta(t, 0.0001*2.4*1.35, got.Rate, 1e-12)
		assert.NotEmpty(t, got.Analysis)
	})
}

func TestEstimateVolume(t *testing.T) {
	got := EstimateVolume(800, 0.0003)
	assert.Equal(t, int64(8_000_000), got.Reach)
	assert.Equal(t, int64(2400), got.Participants)
	assert.InDelta(t, 1.2, got.Volume, 1e-9)
	assert.Equal(t, "minimal", got.Level)

	tests := []struct {
		volume float64
		want   string
	}{
		{150, "massive"}, {100, "massive"}, {60, "large"}, {20, "medium"}, {5, "small"}, {4.99, "minimal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, volumeLevel(tt.volume), "volume %v", tt.volume)
	}
}

func TestClassifyFlowType(t *testing.T) {
	tests := []struct {
		name    string
		history []int
		current int
		want    domain.FlowType
	}{
		{name: "insufficient", history: []int{100}, current: 200, want: domain.FlowTypeUnknown},
		{name: "stock flow", history: []int{600, 620, 640}, current: 650, want: domain.FlowTypeStock},
		{name: "incremental", history: []int{100, 130, 170}, current: 220, want: domain.FlowTypeIncremental},
		{name: "declining", history: []int{400, 300, 220}, current: 160, want: domain.FlowTypeDeclining},
		{name: "normal", history: []int{200, 210, 205}, current: 208, want: domain.FlowTypeNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyFlowType(tt.history, tt.current)
			assert.Equal(t, tt.want, got.Type)
		})
	}

	unknown := ClassifyFlowType(nil, 10)
	assert.Equal(t, 0, unknown.Confidence)
}

func TestViralCoefficient(t *testing.T) {
	tests := []struct {
		current, previous int
		wantK             float64
		wantTrend         string
	}{
		{current: 500, previous: 0, wantK: 1.0, wantTrend: "no history"},
		{current: 0, previous: 0, wantK: 1.0, wantTrend: "no history"},
		{current: 300, previous: 100, wantK: 3.0, wantTrend: "explosive"},
		{current: 160, previous: 100, wantK: 1.6, wantTrend: "exponential"},
		{current: 130, previous: 100, wantK: 1.3, wantTrend: "fast growth"},
		{current: 110, previous: 100, wantK: 1.1, wantTrend: "steady growth"},
		{current: 100, previous: 100, wantK: 1.0, wantTrend: "flat"},
		{current: 90, previous: 100, wantK: 0.9, wantTrend: "slight decline"},
		{current: 50, previous: 100, wantK: 0.5, wantTrend: "rapid decay"},
	}
	for _, tt := range tests {
		got := ViralCoefficient(tt.current, tt.previous)
		assert.InDelta(t, tt.wantK, got.K, 1e-9, "K for %d/%d", tt.current, tt.previous)
		assert.Equal(t, tt.wantTrend, got.Trend, "trend for %d/%d", tt.current, tt.previous)
		assert.NotEmpty(t, got.Risk)
	}
}

func TestRunModel(t *testing.T) {
	fetch := fetchOf(okResult("weibo", domain.CategorySocial, 10, 100))
	result := RunModel(fetch, nil, []int{10, 20}, domain.DefaultVocabulary().TopicWeights)

	require.NotNil(t, result)
	assert.Equal(t, 24, result.Score.Total)
	assert.InDelta(t, 1.2, result.Viral.K, 1e-9)
	assert.Len(t, result.Summary, 5)
}
