// Package dailynews implements the content-source fetcher for the daily
// hot-list aggregation API.
//
// Each source is requested with a single GET:
//
//	GET {base}/?platform={source id}
//
// The API answers with an envelope whose status field is the string "200" on
// success:
//
//	{"status": "200", "data": [{"title": ..., "content": ..., "url": ...}], "msg": ""}
//
// Items become [domain.Record] values ranked by their position in the list.
// Markdown bodies are flattened to plain text.
//
// # Error Handling
//
// Every failure is returned as a [domain.SourceFetchError] so the aggregator
// can record it and move on:
//
//   - Timeouts (client timeout or context deadline): timeout
//   - Any other transport failure: connection
//   - Non-200 HTTP status, undecodable JSON, or a non-"200" envelope: malformed
//
// The client never retries. Pacing between sources is the caller's concern.
package dailynews
