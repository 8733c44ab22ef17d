package domain

// TrafficScore is the output of the traffic scoring step.
type TrafficScore struct {
	// Raw is the unnormalised weighted sum.
	Raw float64

	// Total is min(round(Raw/50), 1000).
	Total int

	Categories CategoryScores
}

// ConversionEstimate is the estimated share of attention that converts to capital.
type ConversionEstimate struct {
	Rate           float64
	TopicFactor    float64
	PlatformFactor float64
	Analysis       string
}

// VolumeEstimate is the projected capital inflow.
type VolumeEstimate struct {
	Reach        int64
	Participants int64

	// Volume is reported in units of one hundred million.
	Volume float64
	Level  string
}

// FlowType classifies how attention is arriving.
type FlowType string

// Flow types.
const (
	FlowTypeUnknown     FlowType = "unknown"
	FlowTypeStock       FlowType = "stock-flow"
	FlowTypeIncremental FlowType = "incremental-flow"
	FlowTypeDeclining   FlowType = "declining"
	FlowTypeNormal      FlowType = "normal"
)

// FlowTypeResult is a flow-type classification with its rationale.
type FlowTypeResult struct {
	Type        FlowType
	Confidence  int
	Description string
	Window      string
	AvgGrowth   float64
}

// ViralResult is the viral coefficient against the previous reading.
type ViralResult struct {
	K     float64
	Trend string
	Risk  string
}

// ModelResult bundles all scoring model outputs for one run.
type ModelResult struct {
	Score      TrafficScore
	Conversion ConversionEstimate
	Volume     VolumeEstimate
	FlowType   FlowTypeResult
	Viral      ViralResult
	Summary    []string
}
