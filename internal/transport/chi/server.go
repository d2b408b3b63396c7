package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mediadex/mediadex/internal/domain"
	"github.com/mediadex/mediadex/internal/domain/catalog"
	"github.com/mediadex/mediadex/internal/metrics"
	"github.com/mediadex/mediadex/internal/usecase/engine"
)

// ErrorCode identifies an API error class.
type ErrorCode string

// The full set of API error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnknownCatalog   ErrorCode = "unknown_catalog"
	CodeCacheUnavailable ErrorCode = "cache_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Pinger reports backend reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search engine over HTTP.
type Server struct {
	search        *engine.Service
	stats         *metrics.Collector
	logger        *zap.Logger
	pingers       map[string]Pinger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *engine.Service, stats *metrics.Collector, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		stats:   stats,
		logger:  logger,
		pingers: make(map[string]Pinger),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownCatalog, http.StatusBadRequest, CodeUnknownCatalog),
		sentinelHandler(domain.ErrCacheUnavailable, http.StatusServiceUnavailable, CodeCacheUnavailable),
	}
	return s
}

// WithPinger registers a named backend check for /health.
func (s *Server) WithPinger(name string, p Pinger) *Server {
	s.pingers[name] = p
	return s
}

// Routes mounts every endpoint on a fresh router. Middleware is the caller's
// concern.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.SearchItems)
		r.Get("/stats", s.Stats)
		r.Delete("/cache", s.ClearCache)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// SearchItems handles GET /v1/search.
func (s *Server) SearchItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := query.Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "query parameter \"q\" is required")
		return
	}

	var limit int
	if query.Has("limit") {
		if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid limit: "+err.Error())
			return
		}
		if limit < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be positive")
			return
		}
	}

	var names []string
	if query.Has("categories") {
		if err := runtime.BindQueryParameter("form", false, false, "categories", query, &names); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid categories: "+err.Error())
			return
		}
	}
	tags := make([]catalog.Tag, 0, len(names))
	for _, name := range names {
		tag, err := catalog.Parse(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeUnknownCatalog, err.Error())
			return
		}
		tags = append(tags, tag)
	}

	resp, err := s.search.Search(r.Context(), q, engine.Options{
		Catalogs:    tags,
		Limit:       limit,
		DebounceKey: query.Get("debounce_key"),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// ClearCache handles DELETE /v1/cache.
func (s *Server) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.search.ClearCache(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Ping(r.Context()); err != nil {
			checks[name] = "failed"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
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

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownCatalog,
		domain.ErrCacheUnavailable,
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

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
