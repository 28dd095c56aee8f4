package entry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
	"github.com/kailas-cloud/stranalyzer/internal/domain/analysis"
	domentry "github.com/kailas-cloud/stranalyzer/internal/domain/entry"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/nlquery"
	"github.com/kailas-cloud/stranalyzer/internal/logger"
	"github.com/kailas-cloud/stranalyzer/internal/metrics"
)

// Page selects a slice of a listing. Cursor is the opaque value returned as NextCursor.
type Page struct {
	Cursor string
	Limit  int
}

// Result is one page of stored strings plus the filters that selected them.
type Result struct {
	Entries    []domentry.Entry
	Total      int
	NextCursor string
	Filters    filter.Set
}

// Service handles analysis, storage and filtered retrieval of strings.
type Service struct {
	repo            Repository
	limits          domain.Limits
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// New creates an entry service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		limits:          domain.DefaultLimits(),
		defaultPageSize: 20,
		maxPageSize:     100,
		now:             time.Now,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithLimits configures value and query size limits. Zero fields keep the current value.
func (s *Service) WithLimits(l domain.Limits) *Service {
	if l.MaxValueBytes > 0 {
		s.limits.MaxValueBytes = l.MaxValueBytes
	}
	if l.MaxQueryLength > 0 {
		s.limits.MaxQueryLength = l.MaxQueryLength
	}
	return s
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create analyzes value and stores it. Fails with domain.ErrAlreadyExists for a known value.
func (s *Service) Create(ctx context.Context, value string) (domentry.Entry, error) {
	e, err := domentry.New(value, s.limits.MaxValueBytes, s.now())
	if err != nil {
		return domentry.Entry{}, err
	}

	if err := s.repo.Create(ctx, &e); err != nil {
		return domentry.Entry{}, fmt.Errorf("create string: %w", err)
	}

	metrics.StringsCreatedTotal.Inc()
	logger.FromContext(ctx).Debug("string stored",
		zap.String("id", e.ID()),
		zap.Int("length", e.Properties().Length),
	)
	return e, nil
}

// Get returns the stored entry for value.
func (s *Service) Get(ctx context.Context, value string) (domentry.Entry, error) {
	e, err := s.repo.Get(ctx, analysis.Hash(value))
	if err != nil {
		return domentry.Entry{}, fmt.Errorf("get string: %w", err)
	}
	return e, nil
}

// Delete removes the stored entry for value.
func (s *Service) Delete(ctx context.Context, value string) error {
	if err := s.repo.Delete(ctx, analysis.Hash(value)); err != nil {
		return fmt.Errorf("delete string: %w", err)
	}
	metrics.StringsDeletedTotal.Inc()
	return nil
}

// List returns stored strings matching an explicit filter set.
func (s *Service) List(ctx context.Context, set filter.Set, page Page) (Result, error) {
	offset, limit, err := s.window(page)
	if err != nil {
		return Result{}, err
	}

	entries, total, err := s.repo.List(ctx, filter.BuildQuery(set), offset, limit)
	if err != nil {
		return Result{}, fmt.Errorf("list strings: %w", err)
	}

	res := Result{Entries: entries, Total: total, Filters: set}
	if next := offset + limit; next < total {
		res.NextCursor = strconv.Itoa(next)
	}
	return res, nil
}

// Count returns how many stored strings match set.
func (s *Service) Count(ctx context.Context, set filter.Set) (int, error) {
	n, err := s.repo.Count(ctx, filter.BuildQuery(set))
	if err != nil {
		return 0, fmt.Errorf("count strings: %w", err)
	}
	return n, nil
}

// Search translates a natural-language query into a filter set and lists matching strings.
// Translation failures are returned as *nlquery.ParseError.
func (s *Service) Search(ctx context.Context, query string, page Page) (Result, error) {
	if n := s.limits.MaxQueryLength; n > 0 && utf8.RuneCountInString(query) > n {
		return Result{}, fmt.Errorf("query too long (max %d characters): %w", n, domain.ErrInvalidValue)
	}

	set, err := nlquery.Parse(query)
	metrics.QueryParseTotal.WithLabelValues(parseOutcome(err)).Inc()
	if err != nil {
		return Result{}, err
	}

	logger.FromContext(ctx).Debug("natural language query parsed",
		zap.String("query", query),
		zap.Stringer("filters", set),
	)

	return s.List(ctx, set, page)
}

// window resolves a page into offset and clamped limit.
func (s *Service) window(page Page) (offset, limit int, err error) {
	limit = page.Limit
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	if page.Cursor != "" {
		offset, err = strconv.Atoi(page.Cursor)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid cursor %q: %w", page.Cursor, domain.ErrInvalidValue)
		}
	}
	return offset, limit, nil
}

func parseOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	var pe *nlquery.ParseError
	if !errors.As(err, &pe) {
		return metrics.OutcomeUnparseable
	}
	switch pe.Kind {
	case nlquery.ErrorKindEmpty:
		return metrics.OutcomeEmpty
	case nlquery.ErrorKindConflict:
		return metrics.OutcomeConflict
	case nlquery.ErrorKindNumber:
		return metrics.OutcomeNumber
	default:
		return metrics.OutcomeUnparseable
	}
}
