package domain

import "time"

// SentimentClass labels a sentiment index.
type SentimentClass string

// Sentiment classes, from most bearish to most bullish.
const (
	SentimentExtremelyPessimistic SentimentClass = "extremely pessimistic"
	SentimentPessimistic          SentimentClass = "pessimistic"
	SentimentNeutral              SentimentClass = "neutral"
	SentimentOptimistic           SentimentClass = "optimistic"
	SentimentExtremelyOptimistic  SentimentClass = "extremely optimistic"
)

// Stage is the attention lifecycle phase.
type Stage string

// Flow stages.
const (
	StageUnknown      Stage = "unknown"
	StageStartup      Stage = "startup"
	StageAcceleration Stage = "acceleration"
	StageDivergence   Stage = "divergence"
	StageConsensus    Stage = "consensus"
	StageDecline      Stage = "decline"
	StageStable       Stage = "stable"
)

// Signal is the fixed action word attached to a stage.
type Signal string

// Stage signals.
const (
	SignalObserve     Signal = "observe"
	SignalWatch       Signal = "watch"
	SignalParticipate Signal = "participate"
	SignalCaution     Signal = "caution"
	SignalDanger      Signal = "danger"
	SignalLeave       Signal = "leave"
)

// StageResult is a stage classification with the numbers behind it.
type StageResult struct {
	Stage      Stage
	Signal     Signal
	Confidence int
	Rationale  string
	AvgGrowth  float64
	Volatility float64
	K          float64
}

// MomentumResult is the sentiment momentum over a short window.
type MomentumResult struct {
	Value     float64
	Level     string
	Direction string
}

// RiskAssessment is the composite risk tier.
type RiskAssessment struct {
	Score    int
	Level    string
	Advisory string
}

// SentimentResult bundles the classifier outputs for one run.
type SentimentResult struct {
	Index         int
	Class         SentimentClass
	FlowFactor    int
	FinanceFactor int
	KeywordFactor int
	PositiveHits  int
	NegativeHits  int
	Stage         StageResult
	Momentum      MomentumResult
	Risk          RiskAssessment

	// LexiconPolarity is a supplementary mean polarity in [-1, 1] over
	// Latin-script titles. It is informational and never feeds Index.
	LexiconPolarity *float64
}

// SentimentRecord is the persisted sentiment row belonging to a Snapshot.
type SentimentRecord struct {
	SnapshotID     int64
	SentimentIndex int
	SentimentClass SentimentClass
	Stage          Stage
	StageSignal    Signal
	Momentum       float64
	MomentumLevel  string
	ViralK         float64
	FlowType       FlowType
	RiskLevel      string
	RiskScore      int
	RecordedAt     time.Time
}
