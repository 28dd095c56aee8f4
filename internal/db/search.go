package db

import "github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"

// ListQuery is the input for a filtered, paginated listing.
// An empty Filters expression matches every document in the index.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	SortBy       string // ascending; empty keeps engine order
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
