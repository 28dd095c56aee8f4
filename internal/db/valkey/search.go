package valkey

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/stranalyzer/internal/db"
)

// SearchList performs paginated search. An empty filter falls back to SCAN + HGETALL.
// valkey-search has no SORTBY, so SortBy is ignored on the FT.SEARCH path.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.Filters.IsEmpty() {
		return s.scanList(ctx, q)
	}

	unsorted := *q
	unsorted.SortBy = ""
	return s.Store.SearchList(ctx, &unsorted)
}

// SearchCount returns the document count. An empty filter falls back to SCAN.
func (s *Store) SearchCount(ctx context.Context, q *db.ListQuery) (int, error) {
	if q.Filters.IsEmpty() {
		keys, err := s.scanKeys(ctx, q.IndexName)
		if err != nil {
			return 0, fmt.Errorf("scan for count: %w", err)
		}
		return len(keys), nil
	}
	return s.Store.SearchCount(ctx, q)
}

// scanList lists documents ordered by key.
func (s *Store) scanList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	keys, err := s.scanKeys(ctx, q.IndexName)
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	total := len(keys)
	if q.Offset >= total || q.Limit == 0 {
		return &db.SearchResult{Total: total}, nil
	}

	end := min(q.Offset+q.Limit, total)
	pageKeys := keys[q.Offset:end]

	hashes, err := s.HGetAllMulti(ctx, pageKeys)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(pageKeys))
	for i, fields := range hashes {
		if fields == nil {
			continue // deleted between SCAN and HGETALL
		}
		entries = append(entries, db.SearchEntry{
			Key:    pageKeys[i],
			Fields: pick(fields, q.ReturnFields),
		})
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func (s *Store) scanKeys(ctx context.Context, index string) ([]string, error) {
	prefix := IndexToKeyPrefix(index)
	keys, err := s.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, err
	}

	// SCAN may return a key more than once.
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// IndexToKeyPrefix converts an index name to its document key prefix.
// "stranalyzer:string:idx" -> "stranalyzer:string:"
func IndexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}

func pick(fields map[string]string, names []string) map[string]string {
	if len(names) == 0 {
		return fields
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		if v, ok := fields[n]; ok {
			out[n] = v
		}
	}
	return out
}
