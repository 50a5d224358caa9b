package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Bucket is one aggregation bucket. Value (terms) and range aggregations share this shape:
// range buckets carry From/To, boolean and date buckets carry KeyAsString.
// A numeric Key decodes as json.Number so long keys round-trip exactly.
type Bucket struct {
	Key         any      `json:"key"`
	KeyAsString *string  `json:"key_as_string,omitempty"`
	DocCount    int      `json:"doc_count"`
	From        *float64 `json:"from,omitempty"`
	To          *float64 `json:"to,omitempty"`
}

// UnmarshalJSON decodes the bucket with numbers kept as json.Number.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	type plain Bucket
	var p plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return fmt.Errorf("decode bucket: %w", err)
	}
	*b = Bucket(p)
	return nil
}

// Aggregation is an engine aggregation result. Buckets is nil when the engine
// returned no bucket list for it.
type Aggregation struct {
	Buckets []Bucket `json:"buckets,omitempty"`
}

// Aggregations maps aggregation name (the facet field) to its result.
type Aggregations map[string]Aggregation

// UnmarshalJSON decodes each aggregation independently. Entries whose shape is not a
// bucket aggregation decode as an Aggregation without buckets instead of failing the response.
func (a *Aggregations) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode aggregations: %w", err)
	}
	out := make(Aggregations, len(raw))
	for name, msg := range raw {
		var agg Aggregation
		if err := json.Unmarshal(msg, &agg); err != nil {
			agg = Aggregation{}
		}
		out[name] = agg
	}
	*a = out
	return nil
}

// Clone returns a shallow copy of the mapping. Bucket slices are shared.
func (a Aggregations) Clone() Aggregations {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Hit is a single engine hit.
type Hit struct {
	ID        string              `json:"_id"`
	Source    map[string]any      `json:"_source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// Response is a decoded search-engine response.
// PageSize echoes the page size of the request that produced it.
type Response struct {
	Total        int          `json:"total"`
	Hits         []Hit        `json:"hits"`
	Aggregations Aggregations `json:"aggregations,omitempty"`
	PageSize     int          `json:"page_size"`
}

// WithAggregations returns a copy of the response carrying aggs. Hits are shared.
func (r Response) WithAggregations(aggs Aggregations) Response {
	r.Aggregations = aggs
	return r
}

// engineBody is the wire shape of an Elasticsearch search response.
type engineBody struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []Hit           `json:"hits"`
	} `json:"hits"`
	Aggregations Aggregations `json:"aggregations"`
}

// Decode parses an Elasticsearch search response body.
// hits.total may be an object {"value": n, "relation": "eq"} or a bare number.
func Decode(data []byte, pageSize int) (Response, error) {
	var body engineBody
	if err := json.Unmarshal(data, &body); err != nil {
		return Response{}, fmt.Errorf("decode search response: %w", err)
	}

	total, err := decodeTotal(body.Hits.Total)
	if err != nil {
		return Response{}, err
	}

	hits := body.Hits.Hits
	if hits == nil {
		hits = []Hit{}
	}

	return Response{
		Total:        total,
		Hits:         hits,
		Aggregations: body.Aggregations,
		PageSize:     pageSize,
	}, nil
}

func decodeTotal(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	if raw[0] == '{' {
		var obj struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, fmt.Errorf("decode hits.total: %w", err)
		}
		return max(obj.Value, 0), nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("decode hits.total: %w", err)
	}
	return max(n, 0), nil
}
