package docsearch

import (
	"context"
	"fmt"
)

// Hit is a typed search result with the highlight snippets of its fields.
type Hit[T any] struct {
	Item     T
	Snippets map[string]string
}

// TypedResults is the typed outcome of a search.
type TypedResults[T any] struct {
	Hits         []Hit[T]
	TotalResults int
	TotalPages   int
	Facets       map[string]FacetResult
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx   *TypedIndex[T]
	state State
}

// Query sets the free-text query.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.state.SearchTerm = q
	return b
}

// Where selects values of a facet field; multiple values combine per the field's match kind.
func (b *SearchBuilder[T]) Where(field string, values ...any) *SearchBuilder[T] {
	vals := make([]Value, len(values))
	for i, v := range values {
		if val, ok := v.(Value); ok {
			vals[i] = val
			continue
		}
		vals[i] = Term(v)
	}
	b.state.Filters = append(b.state.Filters, Filter{Field: field, Values: vals})
	return b
}

// SortBy orders results by an engine field instead of relevance.
func (b *SearchBuilder[T]) SortBy(field string, desc bool) *SearchBuilder[T] {
	b.state.SortField = field
	b.state.SortDirection = Asc
	if desc {
		b.state.SortDirection = Desc
	}
	return b
}

// Page selects the 1-based result page.
func (b *SearchBuilder[T]) Page(n int) *SearchBuilder[T] {
	b.state.Current = n
	return b
}

// PerPage sets the page size, capped by the schema's maximum.
func (b *SearchBuilder[T]) PerPage(n int) *SearchBuilder[T] {
	b.state.ResultsPerPage = n
	return b
}

// State returns the UI state the builder would search with.
func (b *SearchBuilder[T]) State() State { return b.state }

// Do executes the search and returns typed results.
func (b *SearchBuilder[T]) Do(ctx context.Context) (TypedResults[T], error) {
	res, err := b.idx.client.Search(ctx, b.state)
	if err != nil {
		return TypedResults[T]{}, err
	}

	hits := make([]Hit[T], 0, len(res.Results))
	for i, r := range res.Results {
		item, err := b.idx.decode(r)
		if err != nil {
			return TypedResults[T]{}, fmt.Errorf("decode result %d: %w", i, err)
		}
		hits = append(hits, Hit[T]{Item: item, Snippets: snippets(r)})
	}

	return TypedResults[T]{
		Hits:         hits,
		TotalResults: res.TotalResults,
		TotalPages:   res.TotalPages,
		Facets:       res.Facets,
	}, nil
}

func snippets(r Result) map[string]string {
	var out map[string]string
	for name, f := range r {
		if f.Snippet == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[name] = f.Snippet
	}
	return out
}
