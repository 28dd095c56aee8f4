package nlquery

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every parse failure is an ErrQueryParsing; an empty query is
// also an ErrUnparseable so callers can treat both as "no recognizable intent".
var (
	ErrQueryParsing       = errors.New("query parsing failed")
	ErrUnparseable        = fmt.Errorf("%w: unable to parse natural language query into filters", ErrQueryParsing)
	ErrEmptyQuery         = fmt.Errorf("%w: query must not be empty", ErrUnparseable)
	ErrConflictingFilters = fmt.Errorf("%w: query produced conflicting filters", ErrQueryParsing)
)

// ErrorKind categorizes parse errors for programmatic handling.
type ErrorKind string

const (
	ErrorKindEmpty       ErrorKind = "empty"       // blank after trimming
	ErrorKindUnparseable ErrorKind = "unparseable" // no rule matched
	ErrorKindConflict    ErrorKind = "conflict"    // rules disagree or bounds inverted
	ErrorKindNumber      ErrorKind = "number"      // numeric phrase out of range
)

// ParseError is returned by Parse. Err carries the sentinel for the kind and,
// for conflicts, the underlying *filter.ConflictError.
type ParseError struct {
	Kind  ErrorKind
	Query string
	Rule  string // rule that failed, empty when not rule-specific
	Err   error
}

func (e *ParseError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s (rule %s)", e.Err.Error(), e.Rule)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind ErrorKind, query, rule string, err error) *ParseError {
	return &ParseError{Kind: kind, Query: query, Rule: rule, Err: err}
}
