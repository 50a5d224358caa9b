package docsearch

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypedIndex decodes search results into T using T's docsearch struct tags.
type TypedIndex[T any] struct {
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a typed view over client. T must be a struct with docsearch tags;
// its tags are parsed once here.
func NewIndex[T any](client *Client) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index: %w", err)
	}
	return &TypedIndex[T]{client: client, meta: meta}, nil
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// decode converts one result into T. Fields missing from the result keep their zero value.
func (idx *TypedIndex[T]) decode(r Result) (T, error) {
	var item T
	v := reflect.ValueOf(&item).Elem()
	if v.Kind() == reflect.Pointer {
		v.Set(reflect.New(idx.meta.typ))
		v = v.Elem()
	}

	for _, fm := range idx.meta.fields {
		fv, ok := r[fm.name]
		if !ok || fv.Raw == nil {
			continue
		}
		data, err := json.Marshal(fv.Raw)
		if err != nil {
			return item, fmt.Errorf("field %s: %w", fm.name, err)
		}
		if err := json.Unmarshal(data, v.Field(fm.structIdx).Addr().Interface()); err != nil {
			return item, fmt.Errorf("field %s: %w", fm.name, err)
		}
	}
	return item, nil
}
