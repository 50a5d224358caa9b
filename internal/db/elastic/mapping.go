package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

// keywordSuffix is the multi-field that holds the exact value of a text field.
const keywordSuffix = ".keyword"

// Mappings derives explicit index mappings from the schema's value facets so every
// aggregation and term filter lands on a keyword field. A facet on name.keyword maps
// name as text with a keyword sub-field; a facet on a bare field maps it as keyword.
// Range facets and fields no facet uses are left to dynamic mapping.
func Mappings(sc schema.Schema) map[string]any {
	props := make(map[string]any)
	for _, f := range sc.Facets() {
		if f.Kind() != facet.Value {
			continue
		}
		field := f.EngineField()
		if base, ok := strings.CutSuffix(field, keywordSuffix); ok {
			props[base] = map[string]any{
				"type": "text",
				"fields": map[string]any{
					"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
				},
			}
			continue
		}
		props[field] = map[string]any{"type": "keyword"}
	}
	return map[string]any{"properties": props}
}

// CreateIndex creates the bound index with the given mappings.
func (c *Client) CreateIndex(ctx context.Context, mappings map[string]any) error {
	opts := []func(*esapi.IndicesCreateRequest){c.es.Indices.Create.WithContext(ctx)}
	if len(mappings) > 0 {
		body, err := json.Marshal(map[string]any{"mappings": mappings})
		if err != nil {
			return fmt.Errorf("encode mappings: %w", err)
		}
		opts = append(opts, c.es.Indices.Create.WithBody(bytes.NewReader(body)))
	}

	res, err := c.es.Indices.Create(c.index, opts...)
	if err != nil {
		return domain.NewTransportError(OpCreateIndex, 0, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(OpCreateIndex, res)
	}
	return nil
}
