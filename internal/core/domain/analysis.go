package domain

import "time"

// AnalysisInput is the assembled snapshot handed to the external analyzer.
type AnalysisInput struct {
	Snapshot  *Snapshot
	Model     *ModelResult
	Sentiment *SentimentResult
}

// AnalysisResult is the structured recommendation returned by the analyzer.
type AnalysisResult struct {
	SnapshotID        int64     `json:"-"`
	AffectedSectors   []string  `json:"affected_sectors"`
	RecommendedStocks []string  `json:"recommended_stocks"`
	RiskLevel         string    `json:"risk_level"`
	RiskFactors       []string  `json:"risk_factors"`
	Advice            string    `json:"advice"`
	Confidence        float64   `json:"confidence"`
	Summary           string    `json:"summary"`
	Model             string    `json:"-"`
	CreatedAt         time.Time `json:"-"`
}

// TradingSignal is rule-derived advice from model and sentiment output.
type TradingSignal struct {
	Action     string
	Confidence int
	RiskLevel  string
	KeyMessage string
	Advice     string

	// HotSectors is filled from the external analysis when present.
	HotSectors []string
}

// RunReport is what each orchestrator pass returns.
type RunReport struct {
	Snapshot  *Snapshot
	Fetch     *FetchResult
	Model     *ModelResult
	Sentiment *SentimentResult
	Alerts    []Alert
	Notified  bool
	Analysis  *AnalysisResult
	Signals   *TradingSignal
}
