// Command flowwatch tracks attention flow across news and social platforms.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/flowwatch/internal/adapters/driven/analysis/openai"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/dedup/valkey"
	notifylog "github.com/custodia-labs/flowwatch/internal/adapters/driven/notify/log"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/polarity/vader"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/segment/gse"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/flowwatch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flowwatch/internal/adapters/driving/cli"
	"github.com/custodia-labs/flowwatch/internal/connectors/dailynews"
	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/services"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger.Setup(false)
	log := logger.Component("main")

	if err := file.LoadEnv(".env"); err != nil {
		log.Warn("ignoring .env", "error", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	registry := services.NewSourceRegistry()
	fetcher := dailynews.New(settings.APIBaseURL, settings.FetchTimeout)
	aggregator := services.NewAggregator(registry, fetcher, settings.RequestDelay)

	vocabulary, err := file.NewVocabularyFile(settings.VocabularyPath)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}

	var segmenter driven.Segmenter
	if seg, err := gse.New(vocabularyWords(vocabulary.Vocabulary())...); err != nil {
		log.Warn("word segmentation disabled", "error", err)
	} else {
		segmenter = seg
	}

	deduper, closeDeduper := newDeduper(ctx, settings, log)
	defer closeDeduper()

	engine := services.NewAlertEngine(
		store.AlertStore(),
		store.ThresholdStore(),
		notifylog.New(logger.Component("notify")),
		deduper,
	)
	classifier := services.NewSentimentClassifier(vader.New())

	var analyzer driven.Analyzer
	if settings.Analysis.Enabled() {
		prompts, err := file.NewPromptStore("")
		if err != nil {
			return fmt.Errorf("opening prompts: %w", err)
		}
		a, err := openai.New(openai.Config{
			APIKey:  settings.Analysis.APIKey,
			BaseURL: settings.Analysis.BaseURL,
			Model:   settings.Analysis.Model,
			Timeout: settings.Analysis.Timeout,
		}, prompts)
		if err != nil {
			log.Warn("analysis disabled", "error", err)
		} else {
			analyzer = a
		}
	}

	orchestrator := services.NewOrchestrator(
		registry,
		aggregator,
		store.SnapshotStore(),
		engine,
		classifier,
		analyzer,
		vocabulary,
		segmenter,
		services.OrchestratorConfig{
			HistoryHours:     settings.HistoryHours,
			SentimentHistory: settings.SentimentHistory,
			HotTopicCount:    settings.HotTopicCount,
		},
	)
	scheduler := services.NewScheduler(settings.Scheduler, store.SchedulerStore(), orchestrator)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Catalog:    registry,
		Ingestion:  aggregator,
		Pipeline:   orchestrator,
		History:    services.NewHistoryService(store.SnapshotStore()),
		Alerts:     engine,
		Scheduler:  scheduler,
		Settings:   settingsService,
		Vocabulary: vocabulary,
	})

	return cli.Execute(ctx)
}

// vocabularyWords lists the keywords the segmenter must keep whole.
func vocabularyWords(v domain.Vocabulary) []string {
	words := append([]string{}, v.FinanceKeywords...)
	for _, tw := range v.TopicWeights {
		words = append(words, tw.Keyword)
	}
	return words
}

// newDeduper prefers the shared valkey cache and falls back to an
// in-process window when it is not configured or unreachable.
func newDeduper(ctx context.Context, settings *domain.AppSettings, log *slog.Logger) (driven.AlertDeduper, func()) {
	if settings.ValkeyAddr == "" {
		return memory.NewDeduper(), func() {}
	}
	d, err := valkey.New(ctx, valkey.Config{
		Addr:     settings.ValkeyAddr,
		Password: settings.ValkeyPassword,
	})
	if err != nil {
		log.Warn("valkey unavailable, using in-process dedup", "addr", settings.ValkeyAddr, "error", err)
		return memory.NewDeduper(), func() {}
	}
	return d, d.Close
}
