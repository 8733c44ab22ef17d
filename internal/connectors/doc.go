// Package connectors holds the clients that fetch hot lists from content
// sources. Each client implements driven.SourceFetcher and reports
// per-source failures as *domain.SourceFetchError so one bad source never
// aborts a run.
package connectors
