package domain

import "time"

// DailyStatistic is the date-keyed rollup of a day's snapshots.
type DailyStatistic struct {
	// Date is formatted as YYYY-MM-DD.
	Date          string
	AvgScore      int
	MaxScore      int
	MinScore      int
	SnapshotCount int
	TopTopics     []TopicCount
	UpdatedAt     time.Time
}

// DailyStatTopTopics caps the merged topic list kept per day.
const DailyStatTopTopics = 20

// Trend direction labels.
const (
	TrendRising       = "rising"
	TrendFalling      = "falling"
	TrendStable       = "stable"
	TrendInsufficient = "insufficient data"
)

// FlowTrend compares recent daily averages against earlier ones.
type FlowTrend struct {
	Days        int
	Trend       string
	RecentAvg   float64
	EarlierAvg  float64
	Description string
	Stats       []DailyStatistic
}

// HistoryComparison places a score within recent history.
type HistoryComparison struct {
	Score      int
	Hours      int
	Samples    int
	Percentile float64
	Level      string
	Average    float64
	Max        int
	Min        int
}

// ScorePoint is a score at a point in time.
type ScorePoint struct {
	At    time.Time
	Score int
}
