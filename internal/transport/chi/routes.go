package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// InvalidParamFormatError reports a query parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// Handler mounts the API routes on r.
func Handler(s *Server, r chi.Router) http.Handler {
	r.Post("/search", s.Search)
	r.Get("/autocomplete", s.autocompleteWrapper)
	r.Get("/facets", s.Facets)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// autocompleteWrapper binds the query parameters and calls Autocomplete.
func (s *Server) autocompleteWrapper(w http.ResponseWriter, r *http.Request) {
	var params AutocompleteParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		s.paramError(w, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &params.Size); err != nil {
		s.paramError(w, &InvalidParamFormatError{ParamName: "size", Err: err})
		return
	}

	s.Autocomplete(w, r, params)
}

func (s *Server) paramError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}
