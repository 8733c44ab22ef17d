package domain

import "time"

// Record is one ingested item. It is owned by a single ingestion run.
//
// Category is the union tag: it selects which (if any) extension is set.
type Record struct {
	Title       string
	Body        string
	URL         string
	Origin      string
	PublishTime string
	Rank        int

	// SourceID is the catalog ID of the source that produced the record.
	SourceID string
	Category Category

	// Finance is set only for finance sources.
	Finance *FinanceExtension

	// Social is set only for social sources.
	Social *SocialExtension
}

// FinanceExtension carries fields only finance sources provide.
type FinanceExtension struct {
	Tickers []string
}

// SocialExtension carries fields only social sources provide.
type SocialExtension struct {
	HotValue int64
}

// Text returns the title and body joined for keyword matching.
func (r *Record) Text() string {
	if r.Body == "" {
		return r.Title
	}
	return r.Title + " " + r.Body
}

// SourceResult is the outcome of fetching one source: either records or an error.
type SourceResult struct {
	Source  Source
	Records []Record
	Err     *SourceFetchError
	Elapsed time.Duration
}

// OK reports whether the fetch succeeded.
func (r *SourceResult) OK() bool {
	return r.Err == nil
}

// FetchResult aggregates one ingestion run.
type FetchResult struct {
	FetchedAt time.Time
	Results   []SourceResult
	Attempted int
	Succeeded int
}

// Records returns every record from successful sources in fetch order.
func (f *FetchResult) Records() []Record {
	var n int
	for i := range f.Results {
		n += len(f.Results[i].Records)
	}
	out := make([]Record, 0, n)
	for i := range f.Results {
		out = append(out, f.Results[i].Records...)
	}
	return out
}

// Failures returns the fetch errors of failed sources.
func (f *FetchResult) Failures() []*SourceFetchError {
	var out []*SourceFetchError
	for i := range f.Results {
		if f.Results[i].Err != nil {
			out = append(out, f.Results[i].Err)
		}
	}
	return out
}

// CountByCategory returns record counts per category.
func (f *FetchResult) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for i := range f.Results {
		counts[f.Results[i].Source.Category] += len(f.Results[i].Records)
	}
	return counts
}
