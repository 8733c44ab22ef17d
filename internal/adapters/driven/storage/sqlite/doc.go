// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SnapshotStore: snapshots, their records, topics and sentiment, daily rollups
//     and external analysis results
//   - AlertStore: triggered alerts and their notified flag
//   - ThresholdStore: the alert_config key/value table
//   - SchedulerStore: task state and the execution log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Snapshot rows carry a schema_version column; JSON-encoded columns go through
// encodeJSON and decodeJSON only.
//
// # Data Location
//
// By default, the database is stored at ~/.flowwatch/data/flowwatch.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
