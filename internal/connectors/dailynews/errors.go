package dailynews

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var (
	// ErrEmptyPlatform indicates a source without an ID was requested.
	ErrEmptyPlatform = errors.New("dailynews: empty platform id")
)

// APIError is a response the API answered but refused.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dailynews: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("dailynews: API status %q: %s", e.Status, e.Message)
}

// classify maps a transport error onto a fetch error kind.
func classify(sourceID string, err error) *domain.SourceFetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewSourceFetchError(sourceID, domain.FetchErrorTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.NewSourceFetchError(sourceID, domain.FetchErrorTimeout, err)
	}
	return domain.NewSourceFetchError(sourceID, domain.FetchErrorConnection, err)
}

func malformed(sourceID string, err error) *domain.SourceFetchError {
	return domain.NewSourceFetchError(sourceID, domain.FetchErrorMalformed, err)
}
