package facet

import "github.com/kailas-cloud/docsearch/internal/domain/search/response"

// BuildState maps every rendered field with its declared kind and keeps only the present facets.
// Returns nil, never an empty map, when no field produced a facet.
func BuildState(aggs response.Aggregations, fields []Field) State {
	var state State
	for _, f := range fields {
		if f.Hidden() {
			continue
		}
		fc, ok := Map(aggs, f.Name(), f.Kind())
		if !ok {
			continue
		}
		if state == nil {
			state = make(State, len(fields))
		}
		state[f.Name()] = []Facet{fc}
	}
	return state
}
