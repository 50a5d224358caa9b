package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

// MaxResultWindow is the deepest hit the engine serves: from + size must not exceed it.
const MaxResultWindow = 10000

// Builder translates UI state into engine requests. It is pure: the same state
// always yields the same request, and the request never aliases the state.
type Builder struct {
	schema schema.Schema
}

// NewBuilder creates a request builder for the schema.
func NewBuilder(s schema.Schema) *Builder {
	return &Builder{schema: s}
}

// Build creates the full search request: hits for the current page plus every facet aggregation.
func (b *Builder) Build(st State) Request {
	page := st.Current
	if page <= 0 {
		page = 1
	}

	return Request{
		query:        strings.TrimSpace(st.SearchTerm),
		searchFields: b.schema.SearchFields(),
		filters:      b.clauses(st.Filters),
		sort:         b.sort(st),
		page:         page,
		pageSize:     b.pageSize(st.ResultsPerPage),
		aggregations: b.aggregations(),
		highlight:    b.schema.HighlightFields(),
		source:       b.schema.DisplayFields(),
	}
}

// Validate checks st against the schema: the sort field must be a configured sort
// option and the requested page must end within MaxResultWindow.
func (b *Builder) Validate(st State) error {
	if st.SortField != "" && !b.sortable(st.SortField) {
		return fmt.Errorf("unknown sort field %q", st.SortField)
	}
	page := max(st.Current, 1)
	size := b.pageSize(st.ResultsPerPage)
	if (page-1)*size+size > MaxResultWindow {
		return fmt.Errorf("page %d of size %d exceeds the result window of %d", page, size, MaxResultWindow)
	}
	return nil
}

func (b *Builder) sortable(field string) bool {
	for _, so := range b.schema.SortOptions() {
		if so.Field != "" && so.Field == field {
			return true
		}
	}
	return false
}

// BuildAutocomplete creates a hits-only request for the first page of term matches.
func (b *Builder) BuildAutocomplete(term string, size int) Request {
	return Request{
		query:        strings.TrimSpace(term),
		searchFields: b.schema.SearchFields(),
		page:         1,
		pageSize:     b.pageSize(size),
		highlight:    b.schema.HighlightFields(),
		source:       b.schema.DisplayFields(),
		prefix:       true,
	}
}

func (b *Builder) pageSize(n int) int {
	if n <= 0 {
		return b.schema.DefaultPageSize()
	}
	return min(n, b.schema.MaxPageSize())
}

func (b *Builder) sort(st State) *Sort {
	if st.SortField == "" {
		return nil
	}
	dir := st.SortDirection
	if dir == "" {
		dir = Asc
	}
	return &Sort{Field: st.SortField, Direction: dir}
}

// clauses resolves each non-empty filter to its engine field and match kind.
// Match precedence: the filter's own type, then the facet config, then All.
func (b *Builder) clauses(filters []Filter) []Clause {
	var out []Clause
	for _, f := range filters {
		if len(f.Values) == 0 {
			continue
		}
		field := f.Field
		match := f.Type
		if cfg, ok := b.schema.Facet(f.Field); ok {
			field = cfg.EngineField()
			if match == "" {
				match = cfg.Match()
			}
		}
		if match == "" {
			match = facet.All
		}
		out = append(out, Clause{
			Field:  field,
			Match:  match,
			Values: append([]Value(nil), f.Values...),
		})
	}
	return out
}

func (b *Builder) aggregations() []Aggregation {
	fields := b.schema.Facets()
	if len(fields) == 0 {
		return nil
	}
	out := make([]Aggregation, len(fields))
	for i, f := range fields {
		out[i] = Aggregation{
			Name:   f.Name(),
			Field:  f.EngineField(),
			Kind:   f.Kind(),
			Size:   f.Size(),
			Ranges: f.Ranges(),
		}
	}
	return out
}
