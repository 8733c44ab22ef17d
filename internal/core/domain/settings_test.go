package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, DefaultAPIBaseURL, s.APIBaseURL)
	assert.Equal(t, 10*time.Second, s.FetchTimeout)
	assert.Equal(t, 300*time.Millisecond, s.RequestDelay)
	assert.Equal(t, "deepseek-chat", s.Analysis.Model)
	assert.False(t, s.Analysis.Enabled())
	assert.Equal(t, 24, s.HistoryHours)
	assert.Equal(t, 10, s.SentimentHistory)
	assert.Equal(t, 20, s.HotTopicCount)
	assert.Len(t, s.Scheduler.TaskConfigs, 3)
}

func TestThresholdsFromMap(t *testing.T) {
	t.Run("empty map uses defaults", func(t *testing.T) {
		th := ThresholdsFromMap(nil)
		assert.Equal(t, 800, th.Heat)
		assert.Equal(t, 10, th.RankChange)
		assert.Equal(t, 90, th.SentimentHigh)
		assert.Equal(t, 20, th.SentimentLow)
		assert.InDelta(t, 1.5, th.ViralK, 1e-9)
		assert.True(t, th.AlertEnabled)
		assert.True(t, th.NotificationEnabled)
		assert.Zero(t, th.DedupWindow)
	})

	t.Run("valid values override", func(t *testing.T) {
		th := ThresholdsFromMap(map[string]string{
			ThresholdHeat:               "650",
			ThresholdViralK:             "2.25",
			ThresholdAlertEnabled:       "false",
			ThresholdDedupWindowMinutes: "15",
		})
		assert.Equal(t, 650, th.Heat)
		assert.InDelta(t, 2.25, th.ViralK, 1e-9)
		assert.False(t, th.AlertEnabled)
		assert.Equal(t, 15*time.Minute, th.DedupWindow)
	})

	t.Run("garbage falls back per key", func(t *testing.T) {
		th := ThresholdsFromMap(map[string]string{ThresholdHeat: "lots"})
		assert.Equal(t, 800, th.Heat)
	})
}

func TestIsThresholdKey(t *testing.T) {
	assert.True(t, IsThresholdKey(ThresholdHeat))
	assert.False(t, IsThresholdKey("colour"))
}

func TestAlertLevel_Priority(t *testing.T) {
	assert.Greater(t, LevelDanger.Priority(), LevelWarning.Priority())
	assert.Greater(t, LevelWarning.Priority(), LevelInfo.Priority())
	assert.Zero(t, AlertLevel("bogus").Priority())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("finance")
	assert.NoError(t, err)
	assert.Equal(t, CategoryFinance, c)

	_, err = ParseCategory("sports")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVocabulary_WithDefaults(t *testing.T) {
	v := Vocabulary{FinanceKeywords: []string{"only"}}.WithDefaults()
	assert.Equal(t, []string{"only"}, v.FinanceKeywords)
	assert.NotEmpty(t, v.PositiveKeywords)
	assert.NotEmpty(t, v.TopicWeights)
}

func TestFetchResult_Aggregates(t *testing.T) {
	fr := FetchResult{
		Results: []SourceResult{
			{Source: Source{ID: "a", Category: CategoryFinance}, Records: []Record{{Title: "x"}, {Title: "y"}}},
			{Source: Source{ID: "b", Category: CategorySocial}, Err: NewSourceFetchError("b", FetchErrorTimeout, nil)},
			{Source: Source{ID: "c", Category: CategorySocial}, Records: []Record{{Title: "z"}}},
		},
	}

	assert.Len(t, fr.Records(), 3)
	assert.Len(t, fr.Failures(), 1)
	counts := fr.CountByCategory()
	assert.Equal(t, 2, counts[CategoryFinance])
	assert.Equal(t, 1, counts[CategorySocial])
}

func TestParseSourceSelector(t *testing.T) {
	sel, err := ParseSourceSelector("")
	assert.NoError(t, err)
	assert.Equal(t, "all", sel.String())

	sel, err = ParseSourceSelector("category:tech")
	assert.NoError(t, err)
	assert.Equal(t, CategoryTech, sel.Category)

	sel, err = ParseSourceSelector("weibo, cls ,")
	assert.NoError(t, err)
	assert.Equal(t, []string{"weibo", "cls"}, sel.IDs)
	assert.Equal(t, "weibo,cls", sel.String())

	_, err = ParseSourceSelector("category:sports")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseSourceSelector(" , ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
