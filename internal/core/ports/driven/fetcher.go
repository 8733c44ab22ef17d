package driven

import (
	"context"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

// SourceFetcher retrieves the current record batch for one source.
type SourceFetcher interface {
	// Fetch returns the source's records ranked from 1.
	// Failures are returned as *domain.SourceFetchError.
	// Implementations bound every call with a fixed timeout.
	Fetch(ctx context.Context, source domain.Source) ([]domain.Record, error)
}
