package chi

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeSearchEngineError ErrorResponseCode = "search_engine_error"
	ErrorResponseCodeIndexUnavailable  ErrorResponseCode = "index_unavailable"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// AutocompleteParams are the query parameters of GET /autocomplete.
type AutocompleteParams struct {
	Q    string `form:"q" json:"q"`
	Size *int   `form:"size,omitempty" json:"size,omitempty"`
}

// AutocompleteResponse is the body of GET /autocomplete.
type AutocompleteResponse struct {
	Results []result.Result `json:"results"`
}

// FacetConfig describes one rendered facet to the UI.
type FacetConfig struct {
	Field       string `json:"field"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	FilterType  string `json:"filterType"`
	Disjunctive bool   `json:"disjunctive"`
}

// FacetsResponse is the body of GET /facets: everything the UI needs to lay out
// facets, sorting and paging.
type FacetsResponse struct {
	Facets         []FacetConfig       `json:"facets"`
	SortOptions    []schema.SortOption `json:"sortOptions"`
	DisplayFields  []string            `json:"displayFields"`
	ResultsPerPage int                 `json:"resultsPerPage"`
	MaxPageSize    int                 `json:"maxPageSize"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
