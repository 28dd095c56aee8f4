package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stranalyzer/internal/domain"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/filter"
	"github.com/kailas-cloud/stranalyzer/internal/domain/search/nlquery"
	entryuc "github.com/kailas-cloud/stranalyzer/internal/usecase/entry"
	healthuc "github.com/kailas-cloud/stranalyzer/internal/usecase/health"
)

// maxBodyBytes bounds POST /strings bodies before JSON decoding.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the string analysis HTTP API.
type Server struct {
	entries       *entryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(entries *entryuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		entries: entries,
		health:  health,
		logger:  logger,
	}
	// Order matters: conflicts wrap ErrQueryParsing too.
	s.errorHandlers = []errorHandler{
		sentinelHandler(filter.ErrConflict, http.StatusUnprocessableEntity, ErrorCodeConflictingFilters),
		sentinelHandler(nlquery.ErrConflictingFilters, http.StatusUnprocessableEntity, ErrorCodeConflictingFilters),
		sentinelHandler(nlquery.ErrQueryParsing, http.StatusBadRequest, ErrorCodeUnparseableQuery),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidValue, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Routes mounts the API on r. The natural-language route is registered before
// /strings/{value} so it is not captured as a value.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/strings", func(r chi.Router) {
		r.Post("/", s.CreateString)
		r.Get("/", s.ListStrings)
		r.Get("/filter-by-natural-language", s.FilterByNaturalLanguage)
		r.Get("/{value}", s.GetString)
		r.Delete("/{value}", s.DeleteString)
	})
}

// Handler returns a router with the API mounted and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// CreateString handles POST /strings.
func (s *Server) CreateString(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body")
		return
	}
	if len(body.Value) == 0 || string(body.Value) == "null" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, `Missing "value" field`)
		return
	}

	var req createRequest
	if err := json.Unmarshal(body.Value, &req.Value); err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrorCodeInvalidType, `Invalid data type for "value" (must be string)`)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationError(err).Error())
		return
	}

	e, err := s.entries.Create(r.Context(), req.Value)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entryToResponse(&e))
}

// GetString handles GET /strings/{value}.
func (s *Server) GetString(w http.ResponseWriter, r *http.Request) {
	e, err := s.entries.Get(r.Context(), valueParam(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(&e))
}

// DeleteString handles DELETE /strings/{value}.
func (s *Server) DeleteString(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), valueParam(r)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStrings handles GET /strings.
func (s *Server) ListStrings(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	set, err := params.filterSet()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.entries.List(r.Context(), set, params.page())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	data := entriesToResponse(res.Entries)
	writeJSON(w, http.StatusOK, ListResponse{
		Data:           data,
		Count:          len(data),
		FiltersApplied: res.Filters,
		NextCursor:     cursorPtr(res.NextCursor),
	})
}

// FilterByNaturalLanguage handles GET /strings/filter-by-natural-language.
func (s *Server) FilterByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.entries.Search(r.Context(), params.Query, params.page())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	data := entriesToResponse(res.Entries)
	writeJSON(w, http.StatusOK, SearchResponse{
		Data:  data,
		Count: len(data),
		InterpretedQuery: InterpretedQuery{
			Original:      params.Query,
			ParsedFilters: res.Filters,
		},
		NextCursor: cursorPtr(res.NextCursor),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if !report.Healthy() {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: report.Strings(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// valueParam returns the decoded {value} path segment. chi matches on the raw path
// when it contains escaped slashes, so the segment may still be escaped.
func valueParam(r *http.Request) string {
	v := chi.URLParam(r, "value")
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Filter conflicts and parse failures describe only the request itself.
func safeDomainMessage(err error) string {
	var conflict *filter.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}

	sentinels := []error{
		nlquery.ErrConflictingFilters,
		nlquery.ErrEmptyQuery,
		nlquery.ErrUnparseable,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidValue,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("route", r.URL.Path))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
