package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// Scoring constants.
const (
	rawScoreDivisor    = 50.0
	baseConversionRate = 0.0001
	avgTicketSize      = 50000.0
	volumeUnit         = 1e8
	reachPerPoint      = 10000
	topicFactorWindow  = 10
)

// categoryWeight is the market-relevance multiplier per category.
var categoryWeight = map[domain.Category]float64{
	domain.CategoryFinance: 1.5,
	domain.CategorySocial:  1.2,
	domain.CategoryNews:    1.0,
	domain.CategoryTech:    0.8,
}

// CategoryWeight returns the multiplier for a category, 1.0 if unknown.
func CategoryWeight(c domain.Category) float64 {
	if w, ok := categoryWeight[c]; ok {
		return w
	}
	return 1.0
}

// normalise maps a raw weighted sum onto 0..MaxFlowScore.
func normalise(raw float64) int {
	n := int(math.Round(raw / rawScoreDivisor))
	if n > domain.MaxFlowScore {
		return domain.MaxFlowScore
	}
	if n < 0 {
		return 0
	}
	return n
}

// ComputeTrafficScore sums weight x record count x category weight over
// successful sources and normalises the total and each category.
func ComputeTrafficScore(fetch *domain.FetchResult) domain.TrafficScore {
	perCat := make(map[domain.Category]float64, len(domain.Categories))
	var raw float64
	for i := range fetch.Results {
		sr := &fetch.Results[i]
		if !sr.OK() {
			continue
		}
		s := float64(sr.Source.Weight) * float64(len(sr.Records)) * CategoryWeight(sr.Source.Category)
		perCat[sr.Source.Category] += s
		raw += s
	}

	return domain.TrafficScore{
		Raw:   raw,
		Total: normalise(raw),
		Categories: domain.CategoryScores{
			Social:  normalise(perCat[domain.CategorySocial]),
			News:    normalise(perCat[domain.CategoryNews]),
			Finance: normalise(perCat[domain.CategoryFinance]),
			Tech:    normalise(perCat[domain.CategoryTech]),
		},
	}
}

// EstimateConversion computes base_rate x topic_factor x platform_factor.
func EstimateConversion(topics []domain.HotTopic, cats domain.CategoryScores, weights []domain.TopicWeight) domain.ConversionEstimate {
	tf := topicFactor(topics, weights)
	pf := platformFactor(cats)
	rate := baseConversionRate * tf * pf

	return domain.ConversionEstimate{
		Rate:           rate,
		TopicFactor:    tf,
		PlatformFactor: pf,
		Analysis:       conversionAnalysis(rate),
	}
}

// topicFactor is the best weighted keyword match among the top topics,
// boosted by heat. It never drops below 1.0.
func topicFactor(topics []domain.HotTopic, weights []domain.TopicWeight) float64 {
	factor := 1.0
	for i, t := range topics {
		if i >= topicFactorWindow {
			break
		}
		for _, w := range weights {
			if !strings.Contains(t.Topic, w.Keyword) {
				continue
			}
			f := w.Weight * (1 + float64(t.Heat)/100*0.5)
			if f > factor {
				factor = f
			}
			break
		}
	}
	return factor
}

// platformFactor is the category-weighted average of category shares.
func platformFactor(cats domain.CategoryScores) float64 {
	total := cats.Total()
	if total == 0 {
		return 1.0
	}
	var pf float64
	for _, c := range domain.Categories {
		pf += float64(cats.Get(c)) / float64(total) * CategoryWeight(c)
	}
	return pf
}

func conversionAnalysis(rate float64) string {
	switch {
	case rate >= 0.0003:
		return "high conversion: attention is turning into capital quickly"
	case rate >= 0.0002:
		return "above-average conversion: strong finance topics"
	case rate >= 0.0001:
		return "baseline conversion"
	default:
		return "weak conversion: attention is mostly non-financial"
	}
}

// EstimateVolume projects the capital inflow for a score and rate.
func EstimateVolume(score int, rate float64) domain.VolumeEstimate {
	reach := int64(score) * reachPerPoint
	participants := int64(math.Round(float64(reach) * rate))
	volume := round2(float64(participants) * avgTicketSize / volumeUnit)

	return domain.VolumeEstimate{
		Reach:        reach,
		Participants: participants,
		Volume:       volume,
		Level:        volumeLevel(volume),
	}
}

func volumeLevel(v float64) string {
	switch {
	case v >= 100:
		return "massive"
	case v >= 50:
		return "large"
	case v >= 20:
		return "medium"
	case v >= 5:
		return "small"
	default:
		return "minimal"
	}
}

// growthRates returns period-over-period growth, skipping zero bases.
func growthRates(series []float64) []float64 {
	var rates []float64
	for i := 1; i < len(series); i++ {
		if series[i-1] == 0 {
			continue
		}
		rates = append(rates, (series[i]-series[i-1])/series[i-1])
	}
	return rates
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// ClassifyFlowType classifies arriving attention from score history.
// history is oldest first and excludes current.
func ClassifyFlowType(history []int, current int) domain.FlowTypeResult {
	if len(history) < 2 {
		return domain.FlowTypeResult{
			Type:        domain.FlowTypeUnknown,
			Description: "insufficient data",
		}
	}

	series := append(intsToFloats(history), float64(current))
	rates := growthRates(series)
	avg := mean(rates)
	positives := 0
	for _, r := range rates {
		if r > 0 {
			positives++
		}
	}
	positiveShare := 0.0
	if len(rates) > 0 {
		positiveShare = float64(positives) / float64(len(rates))
	}

	initial := float64(history[0])
	switch {
	case initial >= 500 && (float64(current)-initial)/(initial+1) < 0.3:
		return domain.FlowTypeResult{
			Type:        domain.FlowTypeStock,
			Confidence:  80,
			Description: "existing capital rotating in: fast arrival, short window",
			Window:      "2-3 periods",
			AvgGrowth:   avg,
		}
	case avg > 0.15 && positiveShare >= 0.6:
		return domain.FlowTypeResult{
			Type:        domain.FlowTypeIncremental,
			Confidence:  75,
			Description: "new capital building steadily: slow arrival, long window",
			Window:      "5-10 periods",
			AvgGrowth:   avg,
		}
	case avg < -0.1:
		return domain.FlowTypeResult{
			Type:        domain.FlowTypeDeclining,
			Confidence:  70,
			Description: "attention is draining",
			AvgGrowth:   avg,
		}
	default:
		return domain.FlowTypeResult{
			Type:        domain.FlowTypeNormal,
			Confidence:  50,
			Description: "no clear trend",
			AvgGrowth:   avg,
		}
	}
}

// ViralCoefficient computes K = current/previous.
// A zero previous score yields K=1.0 with trend "no history".
func ViralCoefficient(current, previous int) domain.ViralResult {
	if previous <= 0 {
		return domain.ViralResult{K: 1.0, Trend: "no history", Risk: "unknown"}
	}

	k := round2(float64(current) / float64(previous))
	switch {
	case k > 2.0:
		return domain.ViralResult{K: k, Trend: "explosive", Risk: "high"}
	case k > 1.5:
		return domain.ViralResult{K: k, Trend: "exponential", Risk: "medium-high"}
	case k > 1.2:
		return domain.ViralResult{K: k, Trend: "fast growth", Risk: "medium"}
	case k > 1.0:
		return domain.ViralResult{K: k, Trend: "steady growth", Risk: "low"}
	case k == 1.0:
		return domain.ViralResult{K: k, Trend: "flat", Risk: "low"}
	case k > 0.8:
		return domain.ViralResult{K: k, Trend: "slight decline", Risk: "medium"}
	default:
		return domain.ViralResult{K: k, Trend: "rapid decay", Risk: "high"}
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// RunModel assembles every scoring output for one run.
// history holds prior total scores, oldest first.
func RunModel(fetch *domain.FetchResult, topics []domain.HotTopic, history []int, weights []domain.TopicWeight) *domain.ModelResult {
	score := ComputeTrafficScore(fetch)
	conv := EstimateConversion(topics, score.Categories, weights)
	vol := EstimateVolume(score.Total, conv.Rate)
	flow := ClassifyFlowType(history, score.Total)

	previous := 0
	if len(history) > 0 {
		previous = history[len(history)-1]
	}
	viral := ViralCoefficient(score.Total, previous)

	return &domain.ModelResult{
		Score:      score,
		Conversion: conv,
		Volume:     vol,
		FlowType:   flow,
		Viral:      viral,
		Summary:    modelSummary(score.Total, conv, vol, flow, viral),
	}
}

func modelSummary(
	score int,
	conv domain.ConversionEstimate,
	vol domain.VolumeEstimate,
	flow domain.FlowTypeResult,
	viral domain.ViralResult,
) []string {
	var level string
	switch {
	case score >= 800:
		level = "extreme attention, market-wide focus"
	case score >= 500:
		level = "high attention"
	case score >= 200:
		level = "moderate attention"
	default:
		level = "low attention"
	}
	return []string{
		fmt.Sprintf("flow score %d: %s", score, level),
		fmt.Sprintf("conversion rate %.4f%%: %s", conv.Rate*100, conv.Analysis),
		fmt.Sprintf("potential volume %.2f (x1e8): %s", vol.Volume, vol.Level),
		fmt.Sprintf("flow type %s: %s", flow.Type, flow.Description),
		fmt.Sprintf("viral K %.2f: %s (risk %s)", viral.K, viral.Trend, viral.Risk),
	}
}
