package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Aggregator implements the interface.
var _ driving.Ingestion = (*Aggregator)(nil)

// Aggregator fetches sources one at a time with a fixed delay between
// requests. Each source is attempted exactly once per run; a failure is
// recorded and the run moves on.
type Aggregator struct {
	catalog driving.SourceCatalog
	fetcher driven.SourceFetcher
	pace    *rate.Limiter
	log     *slog.Logger
	now     func() time.Time

	// Status tracking
	mu       sync.RWMutex
	statuses map[string]*driving.SourceStatus
}

// NewAggregator creates an aggregator. delay is the minimum gap between
// consecutive source requests; zero disables pacing.
func NewAggregator(catalog driving.SourceCatalog, fetcher driven.SourceFetcher, delay time.Duration) *Aggregator {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Aggregator{
		catalog:  catalog,
		fetcher:  fetcher,
		pace:     rate.NewLimiter(limit, 1),
		log:      logger.Component("aggregator"),
		now:      time.Now,
		statuses: make(map[string]*driving.SourceStatus),
	}
}

// Ingest fetches every selected source sequentially.
func (a *Aggregator) Ingest(ctx context.Context, selector domain.SourceSelector) (*domain.FetchResult, error) {
	sources, err := a.catalog.Resolve(selector)
	if err != nil {
		return nil, fmt.Errorf("resolve sources: %w", err)
	}

	result := &domain.FetchResult{
		FetchedAt: a.now(),
		Results:   make([]domain.SourceResult, 0, len(sources)),
	}

	for _, src := range sources {
		if err := a.pace.Wait(ctx); err != nil {
			// Wait fails only once ctx is done.
			result.Results = append(result.Results, domain.SourceResult{
				Source: src,
				Err:    domain.NewSourceFetchError(src.ID, domain.FetchErrorTimeout, err),
			})
			result.Attempted++
			continue
		}

		sr := a.fetchOne(ctx, src)
		result.Results = append(result.Results, sr)
		result.Attempted++
		if sr.OK() {
			result.Succeeded++
		}
	}

	a.log.Info("ingestion complete",
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"records", len(result.Records()))
	return result, nil
}

// fetchOne fetches a single source and classifies any failure.
func (a *Aggregator) fetchOne(ctx context.Context, src domain.Source) domain.SourceResult {
	a.markRunning(src.ID)
	start := a.now()

	records, err := a.fetcher.Fetch(ctx, src)
	sr := domain.SourceResult{Source: src, Elapsed: a.now().Sub(start)}

	if err != nil {
		sr.Err = classifyFetchError(src.ID, err)
		a.log.Warn("source fetch failed",
			"source", src.ID,
			"kind", sr.Err.Kind,
			"error", sr.Err.Err)
		a.finish(src.ID, 0, sr.Err)
		return sr
	}

	for i := range records {
		stampRecord(&records[i], src)
	}
	sr.Records = records
	a.log.Debug("source fetched", "source", src.ID, "records", len(records), "elapsed", sr.Elapsed)
	a.finish(src.ID, len(records), nil)
	return sr
}

// stampRecord fills the union tag and drops extensions that do not match it.
func stampRecord(r *domain.Record, src domain.Source) {
	r.SourceID = src.ID
	r.Category = src.Category
	if r.Origin == "" {
		r.Origin = src.Name
	}
	if src.Category != domain.CategoryFinance {
		r.Finance = nil
	}
	if src.Category != domain.CategorySocial {
		r.Social = nil
	}
}

// classifyFetchError maps any fetcher error onto a SourceFetchError.
func classifyFetchError(sourceID string, err error) *domain.SourceFetchError {
	var fe *domain.SourceFetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewSourceFetchError(sourceID, domain.FetchErrorTimeout, err)
	}
	return domain.NewSourceFetchError(sourceID, domain.FetchErrorConnection, err)
}

// Status returns the last fetch status for a source.
func (a *Aggregator) Status(_ context.Context, sourceID string) (*driving.SourceStatus, error) {
	if _, err := a.catalog.Get(sourceID); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if status, ok := a.statuses[sourceID]; ok {
		// Return a copy to avoid race conditions
		cp := *status
		return &cp, nil
	}

	// Never fetched - return idle status
	return &driving.SourceStatus{SourceID: sourceID}, nil
}

func (a *Aggregator) markRunning(sourceID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	status, ok := a.statuses[sourceID]
	if !ok {
		status = &driving.SourceStatus{SourceID: sourceID}
		a.statuses[sourceID] = status
	}
	status.Running = true
}

func (a *Aggregator) finish(sourceID string, records int, fetchErr *domain.SourceFetchError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	status := a.statuses[sourceID]
	status.Running = false
	status.LastFetch = a.now()
	if fetchErr != nil {
		status.LastError = fetchErr.Error()
		status.ErrorCount++
		return
	}
	status.LastError = ""
	status.Records = records
}
