package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// SourceCatalog exposes the static source registry.
type SourceCatalog interface {
	// All returns every source in catalog order.
	All() []domain.Source

	// Get returns a source by ID.
	Get(id string) (domain.Source, error)

	// ByCategory returns the sources of one category.
	ByCategory(category domain.Category) []domain.Source

	// Resolve expands a selector into sources.
	Resolve(selector domain.SourceSelector) ([]domain.Source, error)
}

// Ingestion fetches source batches.
type Ingestion interface {
	// Ingest fetches every selected source once, sequentially.
	// Individual source failures are reported in the result, not as an error.
	Ingest(ctx context.Context, selector domain.SourceSelector) (*domain.FetchResult, error)

	// Status returns the last fetch status for a source.
	Status(ctx context.Context, sourceID string) (*SourceStatus, error)
}

// SourceStatus represents the outcome of a source's last fetch.
type SourceStatus struct {
	// SourceID identifies the source.
	SourceID string

	// Running indicates a fetch is currently in progress.
	Running bool

	// LastFetch is when the last attempt finished.
	LastFetch time.Time

	// Records is the count fetched on the last success.
	Records int

	// LastError is the last failure message, empty on success.
	LastError string

	// ErrorCount is the number of failures since start.
	ErrorCount int
}
