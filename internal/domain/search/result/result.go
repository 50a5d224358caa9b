package result

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

// IDField is the result key every result carries.
const IDField = "id"

// Field is one projected display value: the raw engine value and an optional highlighted fragment.
type Field struct {
	Raw     any    `json:"raw"`
	Snippet string `json:"snippet,omitempty"`
}

// Result is one hit projected onto the display fields. Fields missing on the hit are absent.
type Result map[string]Field

// State is the canonical search-result state rendered by the UI.
type State struct {
	WasSearched    bool        `json:"wasSearched"`
	TotalResults   int         `json:"totalResults"`
	TotalPages     int         `json:"totalPages"`
	Results        []Result    `json:"results"`
	Facets         facet.State `json:"facets,omitempty"`
	ResultsPerPage int         `json:"resultsPerPage"`
}

// Builder turns engine responses into UI result state.
type Builder struct {
	schema schema.Schema
}

// NewBuilder creates a result state builder for the schema.
func NewBuilder(s schema.Schema) *Builder {
	return &Builder{schema: s}
}

// Build converts a response into result state. resultsPerPage > 0 overrides the
// page size echoed by the response. WasSearched is left for the caller to set.
func (b *Builder) Build(resp response.Response, resultsPerPage int) State {
	perPage := resp.PageSize
	if resultsPerPage > 0 {
		perPage = resultsPerPage
	}

	return State{
		TotalResults:   resp.Total,
		TotalPages:     totalPages(resp.Total, perPage),
		Results:        b.Results(resp.Hits),
		Facets:         facet.BuildState(resp.Aggregations, b.schema.Facets()),
		ResultsPerPage: perPage,
	}
}

// Results projects hits onto the display fields, preserving hit order.
func (b *Builder) Results(hits []response.Hit) []Result {
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, b.project(h))
	}
	return out
}

func (b *Builder) project(h response.Hit) Result {
	r := make(Result, len(b.schema.DisplayFields())+1)
	for _, name := range b.schema.DisplayFields() {
		raw, ok := h.Source[name]
		if !ok {
			continue
		}
		f := Field{Raw: raw}
		if frags := h.Highlight[name]; len(frags) > 0 {
			f.Snippet = frags[0]
		}
		r[name] = f
	}
	if _, ok := r[IDField]; !ok && h.ID != "" {
		r[IDField] = Field{Raw: h.ID}
	}
	return r
}

func totalPages(total, perPage int) int {
	switch {
	case perPage <= 0:
		return 0
	case total == 0:
		return 1
	default:
		return (total + perPage - 1) / perPage
	}
}
