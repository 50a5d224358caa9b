package docsearch

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// State is the UI search state: term, active filters, sort and paging.
type State = request.State

// Filter is the set of selected values of one field.
type Filter = request.Filter

// Value is one selected filter value.
type Value = request.Value

// Sort directions.
const (
	Asc  = request.Asc
	Desc = request.Desc
)

// Term creates a scalar filter value.
func Term(v any) Value { return request.TermValue(v) }

// Between creates a range filter value matching from <= x < to. Either bound may be nil.
func Between(name string, from, to *float64) Value {
	return request.RangeValue(facet.Bounds{Name: name, From: from, To: to})
}

// FieldValue is one displayed field of a result.
type FieldValue struct {
	Raw     any
	Snippet string // highlighted fragment, empty if the engine returned none
}

// Result maps display field name to its value.
type Result map[string]FieldValue

// FacetEntry is one facet entry with its document count.
// Value is the bucket key for value facets and a Range for range facets.
type FacetEntry struct {
	Value any
	Count int
}

// FacetResult is the computed facet of one field.
type FacetResult struct {
	Field string
	Kind  FacetKind
	Data  []FacetEntry
}

// ResultState is the outcome of one search.
type ResultState struct {
	TotalResults   int
	TotalPages     int
	ResultsPerPage int
	Results        []Result
	Facets         map[string]FacetResult // nil when no field has buckets
}

func resultFromDomain(r result.Result) Result {
	out := make(Result, len(r))
	for k, f := range r {
		out[k] = FieldValue{Raw: f.Raw, Snippet: f.Snippet}
	}
	return out
}

func resultsFromDomain(rs []result.Result) []Result {
	out := make([]Result, len(rs))
	for i, r := range rs {
		out[i] = resultFromDomain(r)
	}
	return out
}

func facetsFromDomain(st facet.State) map[string]FacetResult {
	if st == nil {
		return nil
	}
	out := make(map[string]FacetResult, len(st))
	for field, list := range st {
		if len(list) == 0 {
			continue
		}
		f := list[0]
		data := make([]FacetEntry, len(f.Data))
		for i, d := range f.Data {
			v := d.Value
			if b, ok := v.(facet.Bounds); ok {
				v = Range{Name: b.Name, From: b.From, To: b.To}
			}
			data[i] = FacetEntry{Value: v, Count: d.Count}
		}
		out[field] = FacetResult{Field: f.Field, Kind: FacetKind(f.Type), Data: data}
	}
	return out
}

func stateFromDomain(st result.State) ResultState {
	return ResultState{
		TotalResults:   st.TotalResults,
		TotalPages:     st.TotalPages,
		ResultsPerPage: st.ResultsPerPage,
		Results:        resultsFromDomain(st.Results),
		Facets:         facetsFromDomain(st.Facets),
	}
}
