// Package chi is the HTTP transport: routing, query decoding, and the
// domain error to status code mapping.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain"
	dominsight "github.com/opencatalog/searchsync/internal/domain/insight"
	"github.com/opencatalog/searchsync/internal/store"
	searchuc "github.com/opencatalog/searchsync/internal/usecase/search"
	"github.com/opencatalog/searchsync/internal/version"
)

const maxBulkOperations = 1000

// SearchService is the read-side contract the server depends on.
type SearchService interface {
	Search(ctx context.Context, req *searchuc.Request) (*store.SearchResult, error)
	Suggest(ctx context.Context, req *searchuc.SuggestRequest) ([]store.Suggestion, error)
	Aggregate(ctx context.Context, index, field string) ([]store.FieldBucket, error)
}

// SyncService is the write-side contract the server depends on.
type SyncService interface {
	Apply(ctx context.Context, ev *domain.ChangeEvent) error
	BulkWrite(ctx context.Context, ops []store.BulkOperation) (*store.BulkResult, error)
}

// InsightService runs chart aggregations.
type InsightService interface {
	ListChart(ctx context.Context, req *dominsight.Request) (*dominsight.Result, error)
}

// Pinger checks index store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        SearchService
	sync          SyncService
	insights      InsightService
	pinger        Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, sync SyncService, insights InsightService, pinger Pinger, logger *zap.Logger) *Server {
	s := &Server{
		search:   search,
		sync:     sync,
		insights: insights,
		pinger:   pinger,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownEntityType, http.StatusBadRequest, codeUnknownEntityType),
		sentinelHandler(domain.ErrUnknownChartType, http.StatusBadRequest, codeUnknownChartType),
		sentinelHandler(domain.ErrResultWindowExceeded, http.StatusBadRequest, codeResultWindowExceeded),
		sentinelHandler(domain.ErrMissingEntity, http.StatusBadRequest, codeValidationFailed),
		syncErrorHandler,
	}
	return s
}

// Routes mounts every endpoint on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/suggest", s.Suggest)
		r.Get("/search/aggregate", s.Aggregate)
		r.Post("/search/bulk", s.BulkWrite)
		r.Post("/events", s.ApplyEvent)
		r.Get("/insights/charts", s.ListChart)
	})
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := intParam(q, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	size, err := intParam(q, "size", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	req := &searchuc.Request{
		Query:          q.Get("q"),
		Index:          q.Get("index"),
		From:           from,
		Size:           size,
		SortField:      q.Get("sort_field"),
		SortDescending: q.Get("sort_order") != "asc",
		Deleted:        q.Get("deleted") == "true",
		QueryFilter:    q.Get("query_filter"),
		PostFilter:     q.Get("post_filter"),
		TrackTotalHits: q.Get("track_total_hits") == "true",
	}
	if fields := q.Get("include_source_fields"); fields != "" {
		req.SourceFields = strings.Split(fields, ",")
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Suggest handles GET /api/v1/search/suggest.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := intParam(q, "size", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	out, err := s.search.Suggest(r.Context(), &searchuc.SuggestRequest{
		Index:   q.Get("index"),
		Prefix:  q.Get("q"),
		Field:   q.Get("field"),
		Size:    size,
		Deleted: q.Get("deleted") == "true",
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: out})
}

// Aggregate handles GET /api/v1/search/aggregate.
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field := q.Get("field")
	if field == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "field is required")
		return
	}

	buckets, err := s.search.Aggregate(r.Context(), q.Get("index"), field)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregateResponse{Field: field, Buckets: buckets})
}

// ApplyEvent handles POST /api/v1/events.
func (s *Server) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.ChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if ev.EntityType == "" || ev.EventType == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "entityType and eventType are required")
		return
	}

	if err := s.sync.Apply(r.Context(), &ev); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkWrite handles POST /api/v1/search/bulk.
func (s *Server) BulkWrite(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "operations are required")
		return
	}
	if len(req.Operations) > maxBulkOperations {
		writeError(w, http.StatusBadRequest, codeValidationFailed,
			fmt.Sprintf("at most %d operations per request", maxBulkOperations))
		return
	}

	ops := make([]store.BulkOperation, 0, len(req.Operations))
	for i, op := range req.Operations {
		decoded, err := op.toStore()
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				fmt.Sprintf("operation %d: %v", i, err))
			return
		}
		ops = append(ops, decoded)
	}

	res, err := s.sync.BulkWrite(r.Context(), ops)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListChart handles GET /api/v1/insights/charts.
func (s *Server) ListChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chart := dominsight.ChartType(q.Get("chart_type"))
	if chart == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "chart_type is required")
		return
	}
	start, err := int64Param(q, "start_ts")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	end, err := int64Param(q, "end_ts")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	index := q.Get("index")
	if index == "" {
		index = dominsight.ReportIndex(chart)
	}

	res, err := s.insights.ListChart(r.Context(), &dominsight.Request{
		Chart: chart,
		Index: index,
		Start: start,
		End:   end,
		Team:  q.Get("team"),
		Tier:  q.Get("tier"),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.pinger.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.logger.Warn("health check failed", zap.Error(err))
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"version": version.Version,
	})
}

func intParam(q map[string][]string, name string, def int) (int, error) {
	vals, ok := q[name]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return def, nil
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, vals[0])
	}
	return n, nil
}

func int64Param(q map[string][]string, name string) (int64, error) {
	vals, ok := q[name]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(vals[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, vals[0])
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownEntityType,
		domain.ErrUnknownChartType,
		domain.ErrResultWindowExceeded,
		domain.ErrMissingEntity,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// syncErrorHandler maps index store failures to a gateway error with the
// operation context, without leaking the transport error.
func syncErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var se *domain.SyncError
	if !errors.As(err, &se) {
		return false
	}
	writeError(w, http.StatusBadGateway, codeIndexStoreError,
		fmt.Sprintf("index store %s on %s failed", se.Op, se.Index))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
