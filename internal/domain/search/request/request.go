package request

import (
	"encoding/json"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
)

// Sort is an explicit sort clause. A nil *Sort means relevance order.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Clause is a filter resolved against the schema: engine field and match kind are final.
type Clause struct {
	Field  string      `json:"field"`
	Match  facet.Match `json:"match"`
	Values []Value     `json:"values"`
}

// Aggregation describes one facet aggregation to compute. Name is the facet field name
// under which the engine returns it; Field is the indexed field it aggregates.
type Aggregation struct {
	Name   string         `json:"name"`
	Field  string         `json:"field"`
	Kind   facet.Kind     `json:"kind"`
	Size   int            `json:"size"`
	Ranges []facet.Bounds `json:"ranges,omitempty"`
}

// Request is an immutable engine-facing search request.
type Request struct {
	query        string
	searchFields []string
	filters      []Clause
	sort         *Sort
	page         int
	pageSize     int
	aggregations []Aggregation
	highlight    []string
	source       []string
	hitsDisabled bool
	prefix       bool
}

// Query returns the free-text query (empty = match all).
func (r Request) Query() string { return r.query }

// SearchFields returns the fields the query is matched against.
func (r Request) SearchFields() []string { return r.searchFields }

// Filters returns the resolved filter clauses.
func (r Request) Filters() []Clause { return r.filters }

// Sort returns the sort clause, nil for relevance.
func (r Request) Sort() *Sort { return r.sort }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// PageSize returns the requested results per page.
func (r Request) PageSize() int { return r.pageSize }

// From returns the hit offset of the page.
func (r Request) From() int { return (r.page - 1) * r.pageSize }

// Aggregations returns the facet aggregations to compute.
func (r Request) Aggregations() []Aggregation { return r.aggregations }

// Highlight returns the fields to highlight.
func (r Request) Highlight() []string { return r.highlight }

// Source returns the fields to fetch for each hit.
func (r Request) Source() []string { return r.source }

// Prefix reports whether the last query term is matched as a prefix (autocomplete).
func (r Request) Prefix() bool { return r.prefix }

// HitsDisabled reports whether only aggregations are wanted (size 0).
func (r Request) HitsDisabled() bool { return r.hitsDisabled }

// ForFacet narrows the request to counting a single facet: no hits and only
// the named aggregation. Filters and query are unchanged.
func (r Request) ForFacet(name string) Request {
	var aggs []Aggregation
	for _, a := range r.aggregations {
		if a.Name == name {
			aggs = append(aggs, a)
		}
	}
	r.aggregations = aggs
	r.hitsDisabled = true
	r.highlight = nil
	r.sort = nil
	return r
}

type wireRequest struct {
	Query        string        `json:"query"`
	SearchFields []string      `json:"search_fields"`
	Filters      []Clause      `json:"filters"`
	Sort         *Sort         `json:"sort,omitempty"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Aggregations []Aggregation `json:"aggregations"`
	Highlight    []string      `json:"highlight,omitempty"`
	Source       []string      `json:"source"`
	HitsDisabled bool          `json:"hits_disabled"`
	Prefix       bool          `json:"prefix,omitempty"`
}

// MarshalJSON encodes the request canonically. Equal requests encode to equal bytes.
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRequest{
		Query:        r.query,
		SearchFields: r.searchFields,
		Filters:      r.filters,
		Sort:         r.sort,
		Page:         r.page,
		PageSize:     r.pageSize,
		Aggregations: r.aggregations,
		Highlight:    r.highlight,
		Source:       r.source,
		HitsDisabled: r.hitsDisabled,
		Prefix:       r.prefix,
	})
}
