package openai

import "github.com/custodia-labs/flowwatch/internal/core/domain"

// analysisContext is the snapshot summary sent to the model.
type analysisContext struct {
	FlowScore      int                   `json:"flow_score"`
	FlowLevel      string                `json:"flow_level"`
	CategoryScores domain.CategoryScores `json:"category_scores"`
	SuccessCount   int                   `json:"platforms_ok"`
	HotTopics      []topicContext        `json:"hot_topics"`
	Headlines      []string              `json:"stock_headlines"`

	ViralK       float64         `json:"viral_k,omitempty"`
	FlowType     domain.FlowType `json:"flow_type,omitempty"`
	ModelSummary []string        `json:"model_summary,omitempty"`

	SentimentIndex int    `json:"sentiment_index,omitempty"`
	SentimentClass string `json:"sentiment_class,omitempty"`
	Stage          string `json:"flow_stage,omitempty"`
	Signal         string `json:"stage_signal,omitempty"`
	RiskLevel      string `json:"risk_level,omitempty"`
	RiskScore      int    `json:"risk_score,omitempty"`
}

type topicContext struct {
	Topic         string `json:"topic"`
	Heat          int    `json:"heat"`
	CrossPlatform int    `json:"cross_platform"`
}

func buildContext(input domain.AnalysisInput) analysisContext {
	snap := input.Snapshot
	c := analysisContext{
		FlowScore:      snap.TotalScore,
		FlowLevel:      snap.FlowLevel,
		CategoryScores: snap.CategoryScores,
		SuccessCount:   snap.SuccessCount,
		HotTopics:      make([]topicContext, 0, min(len(snap.HotTopics), maxContextTopics)),
		Headlines:      make([]string, 0, min(len(snap.RelevantRecords), maxContextHeadlines)),
	}

	for i, t := range snap.HotTopics {
		if i >= maxContextTopics {
			break
		}
		c.HotTopics = append(c.HotTopics, topicContext{Topic: t.Topic, Heat: t.Heat, CrossPlatform: t.CrossPlatform})
	}
	for i, rr := range snap.RelevantRecords {
		if i >= maxContextHeadlines {
			break
		}
		c.Headlines = append(c.Headlines, rr.Record.Title)
	}

	if m := input.Model; m != nil {
		c.ViralK = m.Viral.K
		c.FlowType = m.FlowType.Type
		c.ModelSummary = m.Summary
	}
	if s := input.Sentiment; s != nil {
		c.SentimentIndex = s.Index
		c.SentimentClass = string(s.Class)
		c.Stage = string(s.Stage.Stage)
		c.Signal = string(s.Stage.Signal)
		c.RiskLevel = s.Risk.Level
		c.RiskScore = s.Risk.Score
	}
	return c
}
