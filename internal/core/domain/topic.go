package domain

// HotTopic is a token that recurs across source titles in one run.
type HotTopic struct {
	Topic string

	// Count is the number of titles containing the token.
	Count int

	// Heat is frequency-normalised to 0..100 with a cross-source bonus.
	Heat int

	// CrossPlatform is the number of distinct sources contributing the token.
	CrossPlatform int

	// Sources holds up to MaxTopicSources contributing source names.
	Sources []string
}

// MaxTopicSources caps the source names kept per hot topic.
const MaxTopicSources = 5

// RelevantRecord is a finance-relevant record with its composite score.
type RelevantRecord struct {
	Record          Record
	MatchedKeywords []string
	KeywordCount    int
	Score           int
}

// TopicCount is a topic and how often it appeared, used in daily rollups.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
