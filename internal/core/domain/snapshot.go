package domain

import "time"

// MaxFlowScore is the ceiling of the normalised flow score.
const MaxFlowScore = 1000

// SnapshotSchemaVersion is written with every persisted snapshot.
// Bump it when the JSON-encoded columns change shape.
const SnapshotSchemaVersion = 1

// CategoryScores holds the normalised score contributed by each category.
type CategoryScores struct {
	Social  int `json:"social"`
	News    int `json:"news"`
	Finance int `json:"finance"`
	Tech    int `json:"tech"`
}

// Get returns the score for a category.
func (c CategoryScores) Get(cat Category) int {
	switch cat {
	case CategorySocial:
		return c.Social
	case CategoryNews:
		return c.News
	case CategoryFinance:
		return c.Finance
	case CategoryTech:
		return c.Tech
	}
	return 0
}

// Total sums all category scores.
func (c CategoryScores) Total() int {
	return c.Social + c.News + c.Finance + c.Tech
}

// Snapshot is the complete output of one pipeline run.
// Snapshots are append-only: created once, never mutated.
type Snapshot struct {
	// ID is assigned by the store on save.
	ID int64

	// Version is a unique identifier for this run.
	Version string

	FetchTime      time.Time
	TotalPlatforms int
	SuccessCount   int

	// TotalScore is the normalised flow score in [0, MaxFlowScore].
	TotalScore     int
	FlowLevel      string
	CategoryScores CategoryScores

	// Analysis is a short human-readable summary of the model output.
	Analysis string

	Records         []Record
	RelevantRecords []RelevantRecord
	HotTopics       []HotTopic
	Sentiment       *SentimentRecord
}

// TopicRanking returns topic to rank index (0-based) for the snapshot's hot topics.
func (s *Snapshot) TopicRanking() map[string]int {
	ranks := make(map[string]int, len(s.HotTopics))
	for i, t := range s.HotTopics {
		ranks[t.Topic] = i
	}
	return ranks
}

// SnapshotSummary is the light listing form of a snapshot.
type SnapshotSummary struct {
	ID           int64
	Version      string
	FetchTime    time.Time
	TotalScore   int
	FlowLevel    string
	SuccessCount int
}

// FlowLevel labels a normalised score.
func FlowLevel(score int) string {
	switch {
	case score >= 800:
		return "extreme"
	case score >= 500:
		return "high"
	case score >= 200:
		return "medium"
	default:
		return "low"
	}
}
