package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/stranalyzer/internal/db"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// MatchAll is the FT.SEARCH query that selects every document in an index.
const MatchAll = "*"

// SearchList performs a filtered, paginated search via FT.SEARCH.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	query, err := RenderQuery(q.Filters)
	if err != nil {
		return nil, err
	}

	args := []string{q.IndexName, query}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, "ASC")
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return ParseListResult(raw)
}

// SearchCount returns the number of documents matching the query via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, q *db.ListQuery) (int, error) {
	query, err := RenderQuery(q.Filters)
	if err != nil {
		return 0, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(q.IndexName, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

// ParseListResult decodes a RESP2 FT.SEARCH reply: [total, key1, fields1, key2, fields2, ...].
func ParseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Filter building ---

// RenderQuery renders expr as an FT.SEARCH query string; an empty expression matches everything.
func RenderQuery(expr filter.Expression) (string, error) {
	f, err := BuildFilter(expr)
	if err != nil {
		return "", err
	}
	if f == "" {
		return MatchAll, nil
	}
	return f, nil
}

// BuildFilter translates filter.Expression into an FT.SEARCH pre-filter query string.
// Exists conditions have no FT.SEARCH form and must be rewritten by the caller.
func BuildFilter(expr filter.Expression) (string, error) {
	if expr.IsEmpty() {
		return "", nil
	}

	conds := expr.Conditions()
	parts := make([]string, len(conds))
	for i, cond := range conds {
		p, err := buildCondition(cond)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	// Space-separated terms intersect in FT.SEARCH.
	return strings.Join(parts, " "), nil
}

func buildCondition(cond filter.Condition) (string, error) {
	switch {
	case cond.IsMatch():
		return buildTagFilter(cond.Key(), cond.Match()), nil
	case cond.IsEqual():
		v := cond.Equal()
		return buildNumericFilter(cond.Key(), equalRange(v)), nil
	case cond.IsRange():
		return buildNumericFilter(cond.Key(), *cond.Range()), nil
	default:
		return "", fmt.Errorf("%w: %s", db.ErrUnsupportedFilter, cond)
	}
}

func equalRange(v float64) filter.Range {
	r, _ := filter.NewRangeFilter(nil, &v, nil, &v) // gte == lte is always valid
	return r
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = fmt.Sprintf("(%g", *r.GT())
	} else if r.GTE() != nil {
		minBound = fmt.Sprintf("%g", *r.GTE())
	}

	if r.LT() != nil {
		maxBound = fmt.Sprintf("(%g", *r.LT())
	} else if r.LTE() != nil {
		maxBound = fmt.Sprintf("%g", *r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
