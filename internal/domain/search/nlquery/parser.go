// Package nlquery translates free-text queries such as
// "single word palindromic strings longer than 3" into a filter.Set.
//
// Translation is a fixed, ordered table of phrase rules. Each matching rule sets one
// filter key through a conflict-checked setter; the first contradiction aborts the
// parse. Parse holds no state between calls and is safe for concurrent use.
package nlquery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// Parse translates a natural-language query into a filter set.
//
// Errors are *ParseError values wrapping ErrEmptyQuery, ErrUnparseable or
// ErrConflictingFilters. Conflicts additionally wrap *filter.ConflictError.
func Parse(query string) (filter.Set, error) {
	text := strings.ToLower(strings.TrimSpace(query))
	if text == "" {
		return filter.Set{}, newParseError(ErrorKindEmpty, query, "", ErrEmptyQuery)
	}

	b := filter.NewBuilder()
	for _, r := range rules {
		groups := r.match(text)
		if groups == nil {
			continue
		}
		v, err := r.extract(groups)
		if err != nil {
			return filter.Set{}, newParseError(ErrorKindNumber, query, r.name,
				fmt.Errorf("%w: %w", ErrUnparseable, err))
		}
		if err := b.Set(r.key, v); err != nil {
			return filter.Set{}, conflict(query, r.name, err)
		}
	}

	if b.Len() == 0 {
		return filter.Set{}, newParseError(ErrorKindUnparseable, query, "", ErrUnparseable)
	}

	set, err := b.Build()
	if err != nil {
		return filter.Set{}, conflict(query, "", err)
	}
	return set, nil
}

// Rules returns the rule names in evaluation order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

func conflict(query, rule string, err error) error {
	if !errors.Is(err, filter.ErrConflict) {
		// Rules only produce well-formed values; anything else is a programming error.
		return fmt.Errorf("rule %s: %w", rule, err)
	}
	return newParseError(ErrorKindConflict, query, rule, fmt.Errorf("%w (%w)", ErrConflictingFilters, err))
}
