package domain

import "time"

// Default runtime settings.
const (
	DefaultAPIBaseURL       = "https://newsapi.ws4.cn/api/v1/dailynews"
	DefaultFetchTimeout     = 10 * time.Second
	DefaultRequestDelay     = 300 * time.Millisecond
	DefaultAnalysisBaseURL  = "https://api.deepseek.com/v1"
	DefaultAnalysisModel    = "deepseek-chat"
	DefaultAnalysisTimeout  = 120 * time.Second
	DefaultHistoryHours     = 24
	DefaultSentimentHistory = 10
	DefaultHotTopicCount    = 20
)

// AppSettings holds resolved runtime settings.
type AppSettings struct {
	// DataDir holds the sqlite database. Empty means ~/.flowwatch/data.
	DataDir string

	// VocabularyPath is an optional YAML vocabulary file.
	VocabularyPath string

	// APIBaseURL is the content source endpoint.
	APIBaseURL   string
	FetchTimeout time.Duration
	RequestDelay time.Duration

	// Analysis configures the external analysis collaborator.
	// An empty APIKey disables it.
	Analysis AnalysisSettings

	// ValkeyAddr enables the shared alert dedup cache when set.
	ValkeyAddr     string
	ValkeyPassword string

	HistoryHours     int
	SentimentHistory int
	HotTopicCount    int

	Scheduler SchedulerConfig
}

// AnalysisSettings configures the OpenAI-compatible analysis endpoint.
type AnalysisSettings struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether the analyzer has credentials.
func (a AnalysisSettings) Enabled() bool {
	return a.APIKey != ""
}

// DefaultAppSettings returns settings with every default applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		APIBaseURL:   DefaultAPIBaseURL,
		FetchTimeout: DefaultFetchTimeout,
		RequestDelay: DefaultRequestDelay,
		Analysis: AnalysisSettings{
			BaseURL: DefaultAnalysisBaseURL,
			Model:   DefaultAnalysisModel,
			Timeout: DefaultAnalysisTimeout,
		},
		HistoryHours:     DefaultHistoryHours,
		SentimentHistory: DefaultSentimentHistory,
		HotTopicCount:    DefaultHotTopicCount,
		Scheduler:        DefaultSchedulerConfig(),
	}
}
