package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientHistory indicates too few history points for a classification.
	// Classifiers report an explicit "unknown" result instead of returning it.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrAnalyzerUnavailable indicates the external analysis service is not configured.
	// Full passes degrade to numeric-only output.
	ErrAnalyzerUnavailable = errors.New("analysis service unavailable")

	// ErrTaskUnknown indicates a scheduler task ID is not registered.
	ErrTaskUnknown = errors.New("unknown task")

	// ErrNoSourcesSucceeded indicates every source failed during ingestion.
	ErrNoSourcesSucceeded = errors.New("no sources succeeded")

	// Source fetch errors.

	// ErrSourceTimeout indicates a source did not answer within the fetch timeout.
	ErrSourceTimeout = errors.New("source timeout")

	// ErrSourceConnection indicates a transport level failure reaching a source.
	ErrSourceConnection = errors.New("source connection error")

	// ErrSourceMalformed indicates a source answered with an unusable payload.
	ErrSourceMalformed = errors.New("source response malformed")
)

// FetchErrorKind classifies a per-source ingestion failure.
type FetchErrorKind string

// Fetch error kinds.
const (
	FetchErrorTimeout    FetchErrorKind = "timeout"
	FetchErrorConnection FetchErrorKind = "connection"
	FetchErrorMalformed  FetchErrorKind = "malformed"
)

// SourceFetchError is a non-fatal failure fetching a single source.
// The aggregator records it and moves on to the next source.
type SourceFetchError struct {
	SourceID string
	Kind     FetchErrorKind
	Err      error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.SourceID, e.Kind, e.Err)
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind.
func (e *SourceFetchError) Is(target error) bool {
	switch e.Kind {
	case FetchErrorTimeout:
		return target == ErrSourceTimeout
	case FetchErrorConnection:
		return target == ErrSourceConnection
	case FetchErrorMalformed:
		return target == ErrSourceMalformed
	}
	return false
}

// NewSourceFetchError builds a SourceFetchError.
func NewSourceFetchError(sourceID string, kind FetchErrorKind, err error) *SourceFetchError {
	return &SourceFetchError{SourceID: sourceID, Kind: kind, Err: err}
}

// PersistenceError is a failed write of the current run's data.
// It is the only failure surfaced as a run-level error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
