package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.Pipeline = (*Orchestrator)(nil)

// OrchestratorConfig tunes the history windows the pipeline reads.
type OrchestratorConfig struct {
	HistoryHours     int
	SentimentHistory int
	HotTopicCount    int
}

// Orchestrator chains ingestion, relevance, scoring, classification,
// alerting and persistence into the three analysis passes.
type Orchestrator struct {
	catalog    driving.SourceCatalog
	ingestion  driving.Ingestion
	snapshots  driven.SnapshotStore
	alerts     *AlertEngine
	classifier *SentimentClassifier
	analyzer   driven.Analyzer
	vocab      driven.VocabularyProvider
	segmenter  driven.Segmenter
	cfg        OrchestratorConfig
	log        *slog.Logger
	newVersion func() string
}

// NewOrchestrator creates an orchestrator. analyzer and segmenter may be nil.
func NewOrchestrator(
	catalog driving.SourceCatalog,
	ingestion driving.Ingestion,
	snapshots driven.SnapshotStore,
	alerts *AlertEngine,
	classifier *SentimentClassifier,
	analyzer driven.Analyzer,
	vocab driven.VocabularyProvider,
	segmenter driven.Segmenter,
	cfg OrchestratorConfig,
) *Orchestrator {
	if cfg.HistoryHours <= 0 {
		cfg.HistoryHours = domain.DefaultHistoryHours
	}
	if cfg.SentimentHistory <= 0 {
		cfg.SentimentHistory = domain.DefaultSentimentHistory
	}
	if cfg.HotTopicCount <= 0 {
		cfg.HotTopicCount = domain.DefaultHotTopicCount
	}
	if classifier == nil {
		classifier = NewSentimentClassifier(nil)
	}
	return &Orchestrator{
		catalog:    catalog,
		ingestion:  ingestion,
		snapshots:  snapshots,
		alerts:     alerts,
		classifier: classifier,
		analyzer:   analyzer,
		vocab:      vocab,
		segmenter:  segmenter,
		cfg:        cfg,
		log:        logger.Component("orchestrator"),
		newVersion: uuid.NewString,
	}
}

// QuickAnalysis ingests the selected sources, scores and classifies the
// run, and persists it as a new snapshot.
func (o *Orchestrator) QuickAnalysis(ctx context.Context, selector domain.SourceSelector) (*domain.RunReport, error) {
	logger.Section("Quick Analysis")

	fetch, err := o.ingestion.Ingest(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	report := &domain.RunReport{Fetch: fetch}
	if fetch.Succeeded == 0 {
		return report, fmt.Errorf("%w: %d attempted", domain.ErrNoSourcesSucceeded, fetch.Attempted)
	}

	vocab := o.vocabulary()
	records := fetch.Records()
	relevant := FilterRelevant(records, o.weightOf, vocab)
	topics := ExtractHotTopics(records, o.segmenter, vocab.StopWords, o.cfg.HotTopicCount)

	history := o.scoreHistory(ctx)
	model := RunModel(fetch, topics, history, vocab.TopicWeights)
	report.Model = model

	k := model.Viral.K
	sentiment := o.classifier.Classify(SentimentInput{
		Fetch:        fetch,
		Relevant:     relevant,
		Vocab:        vocab,
		ScoreHistory: history,
		Score:        model.Score.Total,
		K:            &k,
		IndexHistory: o.indexHistory(ctx),
	})
	report.Sentiment = sentiment

	snapshot := &domain.Snapshot{
		Version:         o.newVersion(),
		FetchTime:       fetch.FetchedAt,
		TotalPlatforms:  fetch.Attempted,
		SuccessCount:    fetch.Succeeded,
		TotalScore:      model.Score.Total,
		FlowLevel:       domain.FlowLevel(model.Score.Total),
		CategoryScores:  model.Score.Categories,
		Analysis:        strings.Join(model.Summary, "\n"),
		Records:         records,
		RelevantRecords: relevant,
		HotTopics:       topics,
		Sentiment: &domain.SentimentRecord{
			SentimentIndex: sentiment.Index,
			SentimentClass: sentiment.Class,
			Stage:          sentiment.Stage.Stage,
			StageSignal:    sentiment.Stage.Signal,
			Momentum:       sentiment.Momentum.Value,
			MomentumLevel:  sentiment.Momentum.Level,
			ViralK:         k,
			FlowType:       model.FlowType.Type,
			RiskLevel:      sentiment.Risk.Level,
			RiskScore:      sentiment.Risk.Score,
			RecordedAt:     fetch.FetchedAt,
		},
	}

	id, err := o.snapshots.SaveSnapshot(ctx, snapshot)
	if err != nil {
		return report, fmt.Errorf("save snapshot: %w", err)
	}
	snapshot.ID = id
	snapshot.Sentiment.SnapshotID = id
	report.Snapshot = snapshot

	o.log.Info("snapshot saved",
		"id", id,
		"score", snapshot.TotalScore,
		"level", snapshot.FlowLevel,
		"stage", sentiment.Stage.Stage,
		"sentiment", sentiment.Index,
		"sources", fmt.Sprintf("%d/%d", fetch.Succeeded, fetch.Attempted))
	return report, nil
}

// AlertCheck runs a quick analysis, then evaluates, persists and
// dispatches alerts against the run before it.
func (o *Orchestrator) AlertCheck(ctx context.Context) (*domain.RunReport, error) {
	report, err := o.QuickAnalysis(ctx, domain.SelectAll)
	if err != nil {
		return report, err
	}
	logger.Section("Alert Check")

	alerts, err := o.alerts.Evaluate(ctx, AlertInput{
		SnapshotID:      report.Snapshot.ID,
		Score:           report.Snapshot.TotalScore,
		Topics:          report.Snapshot.HotTopics,
		PreviousRanking: o.previousRanking(ctx),
		Sentiment:       report.Sentiment,
		ViralK:          report.Model.Viral.K,
	})
	if err != nil {
		return report, fmt.Errorf("evaluate alerts: %w", err)
	}

	if err := o.alerts.Save(ctx, alerts); err != nil {
		return report, err
	}
	report.Alerts = alerts
	o.log.Info("alerts evaluated", "triggered", len(alerts))

	notified, err := o.alerts.Dispatch(ctx, alerts)
	if err != nil {
		o.log.Warn("alert dispatch failed", "error", err)
	}
	report.Notified = notified
	return report, nil
}

// FullAnalysis runs a quick analysis, consults the external analyzer when
// configured, and derives trading signals. An analyzer failure degrades
// the run to numeric-only output.
func (o *Orchestrator) FullAnalysis(ctx context.Context) (*domain.RunReport, error) {
	report, err := o.QuickAnalysis(ctx, domain.SelectAll)
	if err != nil {
		return report, err
	}
	logger.Section("Full Analysis")

	analysis, err := o.analyze(ctx, report)
	switch {
	case errors.Is(err, domain.ErrAnalyzerUnavailable):
		o.log.Debug("analyzer not configured, numeric-only output")
	case err != nil:
		o.log.Warn("external analysis failed", "error", err)
	default:
		if err := o.snapshots.SaveAnalysis(ctx, analysis); err != nil {
			return report, fmt.Errorf("save analysis: %w", err)
		}
		report.Analysis = analysis
	}

	report.Signals = TradingSignals(report.Model, report.Sentiment, report.Analysis)
	return report, nil
}

func (o *Orchestrator) analyze(ctx context.Context, report *domain.RunReport) (*domain.AnalysisResult, error) {
	if o.analyzer == nil {
		return nil, domain.ErrAnalyzerUnavailable
	}
	start := time.Now()
	result, err := o.analyzer.Analyze(ctx, domain.AnalysisInput{
		Snapshot:  report.Snapshot,
		Model:     report.Model,
		Sentiment: report.Sentiment,
	})
	if err != nil {
		return nil, err
	}
	result.SnapshotID = report.Snapshot.ID
	result.Model = o.analyzer.Model()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	o.log.Info("external analysis complete", "model", result.Model, "elapsed", time.Since(start))
	return result, nil
}

func (o *Orchestrator) vocabulary() domain.Vocabulary {
	if o.vocab == nil {
		return domain.DefaultVocabulary()
	}
	return o.vocab.Vocabulary().WithDefaults()
}

func (o *Orchestrator) weightOf(id string) int {
	src, err := o.catalog.Get(id)
	if err != nil {
		return 0
	}
	return src.Weight
}

// scoreHistory returns prior scores, oldest first. Read failures degrade
// to an empty history.
func (o *Orchestrator) scoreHistory(ctx context.Context) []int {
	points, err := o.snapshots.RecentScores(ctx, o.cfg.HistoryHours)
	if err != nil {
		o.log.Warn("score history unavailable", "error", err)
		return nil
	}
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Score
	}
	return out
}

// indexHistory returns prior sentiment indices, oldest first.
func (o *Orchestrator) indexHistory(ctx context.Context) []int {
	records, err := o.snapshots.SentimentHistory(ctx, o.cfg.SentimentHistory)
	if err != nil {
		o.log.Warn("sentiment history unavailable", "error", err)
		return nil
	}
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.SentimentIndex
	}
	return out
}

// previousRanking returns the topic ranking of the snapshot saved before
// the current one, or nil when there is none.
func (o *Orchestrator) previousRanking(ctx context.Context) map[string]int {
	prev, err := o.snapshots.PreviousSnapshot(ctx)
	if err != nil {
		o.log.Warn("previous snapshot unavailable", "error", err)
		return nil
	}
	if prev == nil {
		return nil
	}
	return prev.TopicRanking()
}
