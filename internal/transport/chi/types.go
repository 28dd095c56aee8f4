package chi

import (
	"time"

	"github.com/kailas-cloud/stranalyzer/internal/domain/analysis"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
)

// ErrorCode is the machine-readable error classification returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeInvalidType        ErrorCode = "invalid_type"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeAlreadyExists      ErrorCode = "already_exists"
	ErrorCodeUnparseableQuery   ErrorCode = "unparseable_query"
	ErrorCodeConflictingFilters ErrorCode = "conflicting_filters"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// EntryResponse is a stored string as returned by the API.
type EntryResponse struct {
	ID         string              `json:"id"`
	Value      string              `json:"value"`
	Properties analysis.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ListResponse is returned by GET /strings.
type ListResponse struct {
	Data           []EntryResponse `json:"data"`
	Count          int             `json:"count"`
	FiltersApplied filter.Set      `json:"filters_applied"`
	NextCursor     *string         `json:"next_cursor,omitempty"`
}

// InterpretedQuery echoes a natural-language query with its translation.
type InterpretedQuery struct {
	Original      string     `json:"original"`
	ParsedFilters filter.Set `json:"parsed_filters"`
}

// SearchResponse is returned by GET /strings/filter-by-natural-language.
type SearchResponse struct {
	Data             []EntryResponse  `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery InterpretedQuery `json:"interpreted_query"`
	NextCursor       *string          `json:"next_cursor,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func entryToResponse(e *domentry.Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID(),
		Value:      e.Value(),
		Properties: e.Properties(),
		CreatedAt:  e.CreatedAt(),
	}
}

func entriesToResponse(entries []domentry.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = entryToResponse(&entries[i])
	}
	return out
}

func cursorPtr(c string) *string {
	if c == "" {
		return nil
	}
	return &c
}
