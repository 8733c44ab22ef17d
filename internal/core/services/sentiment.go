package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// Minimum points for stage classification and momentum.
const (
	minStageHistory    = 3
	minMomentumHistory = 3
	stageWindow        = 3
)

// SentimentFactors is the sentiment index with its three inputs.
type SentimentFactors struct {
	Index         int
	FlowFactor    int
	FinanceFactor int
	KeywordFactor int
	PositiveHits  int
	NegativeHits  int
}

// flowFactor buckets the total record count.
func flowFactor(total int) int {
	switch {
	case total >= 500:
		return 90
	case total >= 300:
		return 70
	case total >= 150:
		return 50
	case total >= 50:
		return 30
	default:
		return 10
	}
}

// ComputeSentimentIndex blends volume, finance share and keyword polarity
// into a 0..100 index.
func ComputeSentimentIndex(total, financeCount int, relevant []domain.RelevantRecord, vocab domain.Vocabulary) SentimentFactors {
	f := SentimentFactors{FlowFactor: flowFactor(total)}

	if total > 0 {
		share := float64(financeCount) / float64(total)
		f.FinanceFactor = clampInt(int(math.Round(share*200)), 0, 100)
	} else {
		f.FinanceFactor = 50
	}

	for i := range relevant {
		text := relevant[i].Record.Text()
		if containsAny(text, vocab.PositiveKeywords) {
			f.PositiveHits++
		}
		if containsAny(text, vocab.NegativeKeywords) {
			f.NegativeHits++
		}
	}
	if hits := f.PositiveHits + f.NegativeHits; hits > 0 {
		f.KeywordFactor = int(math.Round(float64(f.PositiveHits) / float64(hits) * 100))
	} else {
		f.KeywordFactor = 50
	}

	raw := 0.4*float64(f.FlowFactor) + 0.3*float64(f.FinanceFactor) + 0.3*float64(f.KeywordFactor)
	f.Index = clampInt(int(math.Round(raw)), 0, 100)
	return f
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClassifySentiment maps an index to its class. Intervals are half-open,
// so 20, 40, 60 and 80 belong to the upper class.
func ClassifySentiment(index int) domain.SentimentClass {
	switch {
	case index < 20:
		return domain.SentimentExtremelyPessimistic
	case index < 40:
		return domain.SentimentPessimistic
	case index < 60:
		return domain.SentimentNeutral
	case index < 80:
		return domain.SentimentOptimistic
	default:
		return domain.SentimentExtremelyOptimistic
	}
}

// sampleStdev is the sample standard deviation; zero below two samples.
func sampleStdev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// ClassifyStage runs the flow-stage rules over the last three growth periods.
// history is oldest first and excludes current. A nil k is derived from the
// last history point.
func ClassifyStage(history []int, current int, k *float64) domain.StageResult {
	if len(history) < minStageHistory {
		return domain.StageResult{
			Stage:     domain.StageUnknown,
			Signal:    domain.SignalObserve,
			Rationale: "insufficient history, keep observing",
			K:         1.0,
		}
	}

	rates := growthRates(append(intsToFloats(history), float64(current)))
	if len(rates) > stageWindow {
		rates = rates[len(rates)-stageWindow:]
	}
	avg := mean(rates)
	vol := sampleStdev(rates)

	kv := 1.0
	if k != nil {
		kv = *k
	} else if prev := history[len(history)-1]; prev > 0 {
		kv = float64(current) / float64(prev)
	}

	var pos, neg int
	for _, r := range rates {
		switch {
		case r > 0:
			pos++
		case r < 0:
			neg++
		}
	}

	res := domain.StageResult{AvgGrowth: avg, Volatility: vol, K: kv}
	switch {
	case kv >= 1.5 && avg > 0.3:
		res.Stage, res.Signal, res.Confidence = domain.StageConsensus, domain.SignalDanger, 90
		res.Rationale = fmt.Sprintf("attention peak: K=%.2f, growth %.1f%%; broad consensus often marks a top", kv, avg*100)
	case neg >= 2 && avg < -0.15:
		res.Stage, res.Signal, res.Confidence = domain.StageDecline, domain.SignalLeave, 85
		res.Rationale = fmt.Sprintf("attention ebbing: repeated drops, growth %.1f%%", avg*100)
	case vol > 0.25 && pos > 0 && neg > 0:
		res.Stage, res.Signal, res.Confidence = domain.StageDivergence, domain.SignalCaution, 75
		res.Rationale = fmt.Sprintf("divergence: volatility %.1f%% with mixed direction", vol*100)
	case avg > 0.2 && kv > 1.1 && pos >= 2:
		res.Stage, res.Signal, res.Confidence = domain.StageAcceleration, domain.SignalParticipate, 80
		res.Rationale = fmt.Sprintf("accelerating: growth %.1f%%, K=%.2f", avg*100, kv)
	case avg > 0.05 && pos >= 2:
		res.Stage, res.Signal, res.Confidence = domain.StageStartup, domain.SignalWatch, 70
		res.Rationale = fmt.Sprintf("starting up: growth %.1f%%, wait for confirmation", avg*100)
	default:
		res.Stage, res.Signal, res.Confidence = domain.StageStable, domain.SignalObserve, 60
		res.Rationale = fmt.Sprintf("stable: growth %.1f%%, no clear direction", avg*100)
	}
	return res
}

// ComputeMomentum is |latest delta| / mean |delta| over a sentiment series,
// oldest first.
func ComputeMomentum(series []int) domain.MomentumResult {
	if len(series) < minMomentumHistory {
		return domain.MomentumResult{Value: 1.0, Level: "normal", Direction: "insufficient data"}
	}

	deltas := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		deltas = append(deltas, math.Abs(float64(series[i]-series[i-1])))
	}
	avg := mean(deltas)
	value := 1.0
	if avg > 0 {
		value = round2(deltas[len(deltas)-1] / avg)
	}

	var level, trend string
	switch {
	case value >= 2.0:
		level, trend = "extreme", "sharp change"
	case value >= 1.5:
		level, trend = "high", "accelerating"
	case value >= 0.8:
		level, trend = "normal", "steady"
	case value >= 0.3:
		level, trend = "low", "slowing"
	default:
		level, trend = "stalled", "stalled"
	}

	switch last := series[len(series)-1] - series[len(series)-2]; {
	case last > 0:
		trend += " (up)"
	case last < 0:
		trend += " (down)"
	}
	return domain.MomentumResult{Value: value, Level: level, Direction: trend}
}

// AssessRisk accumulates the composite risk score and maps it to a tier.
func AssessRisk(index int, stage domain.Stage, momentum float64) domain.RiskAssessment {
	score := 0
	switch {
	case index > 85:
		score += 3
	case index < 25:
		score += 2
	}
	switch stage {
	case domain.StageConsensus:
		score += 4
	case domain.StageDecline:
		score += 3
	case domain.StageDivergence:
		score += 2
	}
	if momentum >= 2.0 {
		score += 2
	}

	switch {
	case score >= 7:
		return domain.RiskAssessment{Score: score, Level: "extreme", Advisory: "cut or close positions now; the market is at an extreme"}
	case score >= 5:
		return domain.RiskAssessment{Score: score, Level: "high", Advisory: "trade cautiously and reduce exposure; do not chase, keep tight stops"}
	case score >= 3:
		return domain.RiskAssessment{Score: score, Level: "medium", Advisory: "normal operation with position control; trim into strength"}
	case score >= 1:
		return domain.RiskAssessment{Score: score, Level: "low", Advisory: "moderate participation, favour leaders"}
	default:
		return domain.RiskAssessment{Score: score, Level: "very low", Advisory: "risk is low; participate but keep stops"}
	}
}

// SentimentInput is everything the classifier reads for one run.
type SentimentInput struct {
	Fetch    *domain.FetchResult
	Relevant []domain.RelevantRecord
	Vocab    domain.Vocabulary

	// ScoreHistory holds prior total scores, oldest first.
	ScoreHistory []int
	Score        int
	K            *float64

	// IndexHistory holds prior sentiment indices, oldest first.
	IndexHistory []int
}

// SentimentClassifier assembles sentiment results.
type SentimentClassifier struct {
	polarity driven.PolarityScorer
}

// NewSentimentClassifier creates a classifier. polarity may be nil.
func NewSentimentClassifier(polarity driven.PolarityScorer) *SentimentClassifier {
	return &SentimentClassifier{polarity: polarity}
}

// Classify computes index, class, stage, momentum and risk for one run.
func (c *SentimentClassifier) Classify(in SentimentInput) *domain.SentimentResult {
	var records []domain.Record
	financeCount := 0
	if in.Fetch != nil {
		records = in.Fetch.Records()
		financeCount = in.Fetch.CountByCategory()[domain.CategoryFinance]
	}

	f := ComputeSentimentIndex(len(records), financeCount, in.Relevant, in.Vocab)
	stage := ClassifyStage(in.ScoreHistory, in.Score, in.K)

	series := make([]int, 0, len(in.IndexHistory)+1)
	series = append(series, in.IndexHistory...)
	series = append(series, f.Index)
	momentum := ComputeMomentum(series)

	return &domain.SentimentResult{
		Index:           f.Index,
		Class:           ClassifySentiment(f.Index),
		FlowFactor:      f.FlowFactor,
		FinanceFactor:   f.FinanceFactor,
		KeywordFactor:   f.KeywordFactor,
		PositiveHits:    f.PositiveHits,
		NegativeHits:    f.NegativeHits,
		Stage:           stage,
		Momentum:        momentum,
		Risk:            AssessRisk(f.Index, stage.Stage, momentum.Value),
		LexiconPolarity: c.lexiconPolarity(records),
	}
}

// lexiconPolarity averages scorer output over titles it accepts.
func (c *SentimentClassifier) lexiconPolarity(records []domain.Record) *float64 {
	if c == nil || c.polarity == nil {
		return nil
	}
	var sum float64
	n := 0
	for i := range records {
		if p, ok := c.polarity.Polarity(records[i].Title); ok {
			sum += p
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := round2(sum / float64(n))
	return &avg
}
