package schema

import (
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
)

// Paging limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortOption is a sort choice offered to the UI. An empty Field means relevance.
type SortOption struct {
	Name      string `json:"name"`
	Field     string `json:"value"`
	Direction string `json:"direction"`
}

// Params holds the raw search schema settings.
type Params struct {
	Facets          []facet.Field
	SearchFields    []string
	DisplayFields   []string
	HighlightFields []string
	SortOptions     []SortOption
	DefaultPageSize int
	MaxPageSize     int
}

// Schema is the single configuration surface of the search layer: which fields are
// faceted and how, which are disjunctive, which are searched and which are displayed.
type Schema struct {
	facets          []facet.Field
	byName          map[string]int
	searchFields    []string
	displayFields   []string
	highlightFields []string
	sortOptions     []SortOption
	defaultPageSize int
	maxPageSize     int
}

// New validates params and creates a Schema.
func New(p Params) (Schema, error) {
	if len(p.DisplayFields) == 0 {
		return Schema{}, fmt.Errorf("at least one display field is required")
	}
	byName := make(map[string]int, len(p.Facets))
	for i, f := range p.Facets {
		if _, dup := byName[f.Name()]; dup {
			return Schema{}, fmt.Errorf("duplicate facet field %q", f.Name())
		}
		byName[f.Name()] = i
	}
	if p.DefaultPageSize <= 0 {
		p.DefaultPageSize = DefaultPageSize
	}
	if p.MaxPageSize <= 0 {
		p.MaxPageSize = MaxPageSize
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return Schema{}, fmt.Errorf("default page size %d exceeds max %d", p.DefaultPageSize, p.MaxPageSize)
	}
	if len(p.SearchFields) == 0 {
		p.SearchFields = p.DisplayFields
	}

	return Schema{
		facets:          append([]facet.Field(nil), p.Facets...),
		byName:          byName,
		searchFields:    append([]string(nil), p.SearchFields...),
		displayFields:   append([]string(nil), p.DisplayFields...),
		highlightFields: append([]string(nil), p.HighlightFields...),
		sortOptions:     append([]SortOption(nil), p.SortOptions...),
		defaultPageSize: p.DefaultPageSize,
		maxPageSize:     p.MaxPageSize,
	}, nil
}

// Facets returns the configured facet fields in declaration order.
func (s Schema) Facets() []facet.Field { return s.facets }

// Facet looks up a facet field by name.
func (s Schema) Facet(name string) (facet.Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return facet.Field{}, false
	}
	return s.facets[i], true
}

// DisjunctiveFields returns the names of fields whose counts ignore their own filter.
func (s Schema) DisjunctiveFields() []string {
	var out []string
	for _, f := range s.facets {
		if f.Disjunctive() {
			out = append(out, f.Name())
		}
	}
	return out
}

// SearchFields returns the fields matched by the free-text query.
func (s Schema) SearchFields() []string { return s.searchFields }

// DisplayFields returns the fields projected into each result.
func (s Schema) DisplayFields() []string { return s.displayFields }

// HighlightFields returns the fields the engine should highlight.
func (s Schema) HighlightFields() []string { return s.highlightFields }

// SortOptions returns the sort choices offered to the UI.
func (s Schema) SortOptions() []SortOption { return s.sortOptions }

// DefaultPageSize returns the page size used when the state does not set one.
func (s Schema) DefaultPageSize() int { return s.defaultPageSize }

// MaxPageSize returns the page size cap.
func (s Schema) MaxPageSize() int { return s.maxPageSize }
