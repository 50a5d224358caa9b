package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// maxBodyBytes caps the size of a posted search state.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher is the search use case consumed by the server.
type Searcher interface {
	Search(ctx context.Context, st request.State) (result.State, error)
	Autocomplete(ctx context.Context, term string, size int) ([]result.Result, error)
	Schema() schema.Schema
}

// HealthChecker is the health use case consumed by the server.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	metrics       http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		health:  health,
		metrics: promhttp.Handler(),
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, ErrorResponseCodeIndexUnavailable),
		transportErrorHandler,
	}
	return s
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var st request.State
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	out, err := s.search.Search(r.Context(), st)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Autocomplete handles GET /autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request, params AutocompleteParams) {
	size := 0
	if params.Size != nil {
		if *params.Size < 0 {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "size must not be negative")
			return
		}
		size = *params.Size
	}

	results, err := s.search.Autocomplete(r.Context(), params.Q, size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AutocompleteResponse{Results: results})
}

// Facets handles GET /facets.
func (s *Server) Facets(w http.ResponseWriter, _ *http.Request) {
	sc := s.search.Schema()

	facets := make([]FacetConfig, 0, len(sc.Facets()))
	for _, f := range sc.Facets() {
		if f.Hidden() {
			continue
		}
		facets = append(facets, FacetConfig{
			Field:       f.Name(),
			Label:       f.Label(),
			Type:        string(f.Kind()),
			FilterType:  string(f.Match()),
			Disjunctive: f.Disjunctive(),
		})
	}

	sortOptions := sc.SortOptions()
	if sortOptions == nil {
		sortOptions = []schema.SortOption{}
	}

	writeJSON(w, http.StatusOK, FacetsResponse{
		Facets:         facets,
		SortOptions:    sortOptions,
		DisplayFields:  sc.DisplayFields(),
		ResultsPerPage: sc.DefaultPageSize(),
		MaxPageSize:    sc.MaxPageSize(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors are the client's own input and are returned in full.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrIndexUnavailable,
		domain.ErrTransport,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// transportErrorHandler maps engine failures to 502, or 504 when the engine timed out.
func transportErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrTransport) {
		return false
	}
	status := http.StatusBadGateway
	var te *domain.TransportError
	if errors.As(err, &te) && te.Status == http.StatusGatewayTimeout {
		status = http.StatusGatewayTimeout
	}
	writeError(w, status, ErrorResponseCodeSearchEngineError, msg)
	return true
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
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
