package facet

import "github.com/kailas-cloud/docsearch/internal/domain/search/response"

// Datum is one facet value with its document count.
// Value is the bucket key for value facets and a Bounds for range facets.
type Datum struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// Facet is the UI representation of one aggregation.
type Facet struct {
	Field string  `json:"field"`
	Type  Kind    `json:"type"`
	Data  []Datum `json:"data"`
}

// State maps field name to a one-element list holding that field's facet.
// The list wrapper is the shape the UI framework consumes.
type State map[string][]Facet

// MapValue converts the field's terms buckets into a value facet.
// Returns false if the aggregation is missing or has no buckets.
func MapValue(aggs response.Aggregations, field string) (Facet, bool) {
	buckets, ok := nonEmptyBuckets(aggs, field)
	if !ok {
		return Facet{}, false
	}

	data := make([]Datum, len(buckets))
	for i, b := range buckets {
		// boolean and date keys are only human-readable in key_as_string
		var v any = b.Key
		if b.KeyAsString != nil {
			v = *b.KeyAsString
		}
		data[i] = Datum{Value: v, Count: b.DocCount}
	}
	return Facet{Field: field, Type: Value, Data: data}, true
}

// MapRange converts the field's range buckets into a range facet.
// Returns false if the aggregation is missing or has no buckets.
func MapRange(aggs response.Aggregations, field string) (Facet, bool) {
	buckets, ok := nonEmptyBuckets(aggs, field)
	if !ok {
		return Facet{}, false
	}

	data := make([]Datum, len(buckets))
	for i, b := range buckets {
		data[i] = Datum{
			Value: Bounds{From: b.From, To: b.To, Name: keyString(b)},
			Count: b.DocCount,
		}
	}
	return Facet{Field: field, Type: Range, Data: data}, true
}

// Map dispatches on kind.
func Map(aggs response.Aggregations, field string, kind Kind) (Facet, bool) {
	if kind == Range {
		return MapRange(aggs, field)
	}
	return MapValue(aggs, field)
}

func nonEmptyBuckets(aggs response.Aggregations, field string) ([]response.Bucket, bool) {
	if aggs == nil {
		return nil, false
	}
	agg, ok := aggs[field]
	if !ok || len(agg.Buckets) == 0 {
		return nil, false
	}
	return agg.Buckets, true
}

func keyString(b response.Bucket) string {
	if s, ok := b.Key.(string); ok {
		return s
	}
	if b.KeyAsString != nil {
		return *b.KeyAsString
	}
	return ""
}
