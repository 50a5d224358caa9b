package elastic

import (
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
)

// encodeQuery translates a request into the Elasticsearch search DSL.
//
// Filters go into the non-scoring filter context. "any" clauses become a bool
// should with minimum_should_match 1, "all" clauses add one filter per value.
// Range values use gte/lt, matching range aggregation bucket bounds.
func encodeQuery(req request.Request) map[string]any {
	body := map[string]any{
		"query":            encodeBool(req),
		"track_total_hits": true,
	}

	if req.HitsDisabled() {
		body["size"] = 0
	} else {
		body["from"] = req.From()
		body["size"] = req.PageSize()
		if src := req.Source(); len(src) > 0 {
			body["_source"] = src
		}
	}

	if s := req.Sort(); s != nil {
		body["sort"] = []any{
			map[string]any{s.Field: map[string]any{"order": string(s.Direction)}},
		}
	}

	if hl := req.Highlight(); len(hl) > 0 {
		fields := make(map[string]any, len(hl))
		for _, f := range hl {
			fields[f] = map[string]any{}
		}
		body["highlight"] = map[string]any{"fields": fields}
	}

	if aggs := req.Aggregations(); len(aggs) > 0 {
		out := make(map[string]any, len(aggs))
		for _, a := range aggs {
			out[a.Name] = encodeAggregation(a)
		}
		body["aggs"] = out
	}

	return body
}

func encodeBool(req request.Request) map[string]any {
	var must any = map[string]any{"match_all": map[string]any{}}
	if q := req.Query(); q != "" {
		mm := map[string]any{
			"query":  q,
			"fields": req.SearchFields(),
		}
		if req.Prefix() {
			mm["type"] = "phrase_prefix"
		}
		must = map[string]any{"multi_match": mm}
	}

	b := map[string]any{"must": []any{must}}

	var filters []any
	for _, c := range req.Filters() {
		filters = append(filters, encodeClause(c)...)
	}
	if len(filters) > 0 {
		b["filter"] = filters
	}

	return map[string]any{"bool": b}
}

func encodeClause(c request.Clause) []any {
	terms := make([]any, 0, len(c.Values))
	for _, v := range c.Values {
		terms = append(terms, encodeValue(c.Field, v))
	}
	if c.Match == facet.All {
		return terms
	}
	return []any{map[string]any{
		"bool": map[string]any{
			"should":               terms,
			"minimum_should_match": 1,
		},
	}}
}

func encodeValue(field string, v request.Value) map[string]any {
	if v.Range == nil {
		return map[string]any{"term": map[string]any{field: v.Term}}
	}
	bounds := make(map[string]any, 2)
	if v.Range.From != nil {
		bounds["gte"] = *v.Range.From
	}
	if v.Range.To != nil {
		bounds["lt"] = *v.Range.To
	}
	return map[string]any{"range": map[string]any{field: bounds}}
}

func encodeAggregation(a request.Aggregation) map[string]any {
	if a.Kind == facet.Range {
		ranges := make([]any, 0, len(a.Ranges))
		for _, r := range a.Ranges {
			entry := make(map[string]any, 3)
			if r.From != nil {
				entry["from"] = *r.From
			}
			if r.To != nil {
				entry["to"] = *r.To
			}
			if r.Name != "" {
				entry["key"] = r.Name
			}
			ranges = append(ranges, entry)
		}
		return map[string]any{"range": map[string]any{"field": a.Field, "ranges": ranges}}
	}
	return map[string]any{"terms": map[string]any{"field": a.Field, "size": a.Size}}
}
