// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceFetcher: Fetches one source's records
//   - SnapshotStore: Snapshot, rollup and analysis persistence
//   - AlertStore: Alert persistence and notified flag
//   - ThresholdStore: Alert threshold key/value config
//   - SchedulerStore: Task state and execution log
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Analyzer: External analysis. Without it, full passes are numeric-only.
//   - Notifier: Alert delivery. Without it, alerts stay unnotified.
//   - AlertDeduper: Only consulted when a dedup window is configured.
//   - PolarityScorer: Supplementary lexicon polarity.
//   - Segmenter: Word segmentation for hot topics. Without it, titles split on punctuation.
//   - PromptStore: Editable analysis prompts. Without it, built-ins are used.
//   - VocabularyProvider: Keyword vocabulary. Without it, defaults apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
