// Package domain defines the core business entities for flowwatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A catalogued content source with category and weight
//   - Record: One ingested item, tagged by source category
//   - Snapshot: The versioned output of one pipeline run
//   - SentimentRecord: Sentiment, stage and momentum for a Snapshot
//   - Alert: A threshold rule that fired during a run
//   - SchedulerLog: One row per scheduled task execution
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
