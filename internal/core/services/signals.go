package services

import (
	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

const maxHotSectors = 3

// TradingSignals derives entry/exit advice from stage, K and flow level.
// analysis may be nil.
func TradingSignals(model *domain.ModelResult, sentiment *domain.SentimentResult, analysis *domain.AnalysisResult) *domain.TradingSignal {
	stage := domain.StageUnknown
	index := 50
	if sentiment != nil {
		stage = sentiment.Stage.Stage
		index = sentiment.Index
	}
	k := 1.0
	level := domain.FlowLevel(0)
	if model != nil {
		k = model.Viral.K
		level = domain.FlowLevel(model.Score.Total)
	}

	var sig domain.TradingSignal
	switch {
	case stage == domain.StageConsensus:
		sig = domain.TradingSignal{
			Action:     "sell",
			Confidence: 90,
			RiskLevel:  "extreme",
			KeyMessage: "attention peak means price peak; reduce or close positions",
			Advice:     "cut positions now and lock in gains",
		}
	case stage == domain.StageDecline:
		sig = domain.TradingSignal{
			Action:     "hold off",
			Confidence: 80,
			RiskLevel:  "high",
			KeyMessage: "attention is ebbing; take profits and cut losses",
			Advice:     "holders exit in time, flat accounts keep waiting",
		}
	case stage == domain.StageAcceleration && k > 1.2:
		sig = domain.TradingSignal{
			Action:     "buy",
			Confidence: 75,
			RiskLevel:  "medium",
			KeyMessage: "attention is accelerating; leaders are in play",
			Advice:     "small position in leaders with a -5% stop and +15% target",
		}
	case stage == domain.StageStartup:
		sig = domain.TradingSignal{
			Action:     "watch",
			Confidence: 65,
			RiskLevel:  "low",
			KeyMessage: "attention is starting up",
			Advice:     "watch closely and enter after confirmation",
		}
	case level == "extreme" && index > 85:
		sig = domain.TradingSignal{
			Action:     "hold off",
			Confidence: 70,
			RiskLevel:  "high",
			KeyMessage: "extreme attention with overheated sentiment",
			Advice:     "do not chase; wait for a pullback",
		}
	default:
		sig = domain.TradingSignal{
			Action:     "hold off",
			Confidence: 50,
			RiskLevel:  "medium",
			KeyMessage: "no clear direction",
			Advice:     "wait for a clearer flow signal",
		}
	}

	if analysis != nil {
		sectors := analysis.AffectedSectors
		if len(sectors) > maxHotSectors {
			sectors = sectors[:maxHotSectors]
		}
		sig.HotSectors = append([]string(nil), sectors...)
	}
	return &sig
}
