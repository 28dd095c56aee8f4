package stranalyzer

import (
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
	"github.com/kailas-cloud/stranalyzer/internal/domain/analysis"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/nlquery"
)

// Errors returned by the client. Match them with errors.Is.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrAlreadyExists = domain.ErrAlreadyExists
	ErrInvalidValue  = domain.ErrInvalidValue
	// ErrFilterConflict covers min_length above max_length and contradictory query phrases.
	ErrFilterConflict = filter.ErrConflict
	// ErrUnparseable is returned by Query and ParseQuery when no phrase is recognized.
	ErrUnparseable = nlquery.ErrUnparseable
	// ErrConflictingFilters is returned by Query and ParseQuery for contradictory phrases.
	ErrConflictingFilters = nlquery.ErrConflictingFilters

	errQueryParsing = nlquery.ErrQueryParsing
)

// Properties are the computed characteristics of a string.
type Properties = analysis.Properties

// Entry is a stored string.
type Entry struct {
	ID         string     `json:"id"`
	Value      string     `json:"value"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Filters selects stored strings. Nil fields are not applied.
type Filters struct {
	IsPalindrome      *bool
	MinLength         *int
	MaxLength         *int
	WordCount         *int
	ContainsCharacter *rune
}

// Page selects a slice of results. Pass the previous NextCursor to continue.
type Page struct {
	Cursor string
	Limit  int
}

// ListResult is one page of stored strings.
type ListResult struct {
	Entries []Entry `json:"data"`
	// Total counts every match, not just this page.
	Total      int     `json:"total"`
	NextCursor string  `json:"next_cursor,omitempty"`
	Filters    Filters `json:"filters_applied"`
}

// QueryResult is one page of a natural-language query.
type QueryResult struct {
	ListResult
	Query string `json:"query"`
}

// Analyze computes the properties of value without storing it.
func Analyze(value string) Properties {
	return analysis.Analyze(value)
}

// ParseQuery translates a natural-language query into filters without touching storage.
func ParseQuery(query string) (Filters, error) {
	set, err := nlquery.Parse(query)
	if err != nil {
		return Filters{}, err
	}
	return filtersFromSet(set), nil
}

// MarshalJSON encodes the filters like the HTTP API's filters_applied object.
func (f Filters) MarshalJSON() ([]byte, error) {
	set, err := f.toSet()
	if err != nil {
		return nil, err
	}
	return set.MarshalJSON()
}

func (f Filters) toSet() (filter.Set, error) {
	b := filter.NewBuilder()
	set := func(k filter.Key, v filter.Value) error { return b.Set(k, v) }

	if f.IsPalindrome != nil {
		if err := set(filter.KeyIsPalindrome, filter.Bool(*f.IsPalindrome)); err != nil {
			return filter.Set{}, err
		}
	}
	if f.WordCount != nil {
		if err := set(filter.KeyWordCount, filter.Int(*f.WordCount)); err != nil {
			return filter.Set{}, err
		}
	}
	if f.MinLength != nil {
		if err := set(filter.KeyMinLength, filter.Int(*f.MinLength)); err != nil {
			return filter.Set{}, err
		}
	}
	if f.MaxLength != nil {
		if err := set(filter.KeyMaxLength, filter.Int(*f.MaxLength)); err != nil {
			return filter.Set{}, err
		}
	}
	if f.ContainsCharacter != nil {
		r := *f.ContainsCharacter
		if !utf8.ValidRune(r) {
			return filter.Set{}, ErrInvalidValue
		}
		if err := set(filter.KeyContainsCharacter, filter.Char(r)); err != nil {
			return filter.Set{}, err
		}
	}
	return b.Build()
}

func filtersFromSet(s filter.Set) Filters {
	var f Filters
	if v, ok := s.IsPalindrome(); ok {
		f.IsPalindrome = &v
	}
	if n, ok := s.WordCount(); ok {
		f.WordCount = &n
	}
	if n, ok := s.MinLength(); ok {
		f.MinLength = &n
	}
	if n, ok := s.MaxLength(); ok {
		f.MaxLength = &n
	}
	if r, ok := s.ContainsCharacter(); ok {
		f.ContainsCharacter = &r
	}
	return f
}

func entryFromDomain(e *domentry.Entry) Entry {
	return Entry{
		ID:         e.ID(),
		Value:      e.Value(),
		Properties: e.Properties(),
		CreatedAt:  e.CreatedAt(),
	}
}

func entriesFromDomain(in []domentry.Entry) []Entry {
	out := make([]Entry, len(in))
	for i := range in {
		out[i] = entryFromDomain(&in[i])
	}
	return out
}
