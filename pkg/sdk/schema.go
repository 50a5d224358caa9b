package docsearch

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

const tagKey = "docsearch"

// FacetKind is the shape of a facet.
type FacetKind string

// Facet kinds.
const (
	FacetValue FacetKind = "value"
	FacetRange FacetKind = "range"
)

// Match is how multiple selected values of one field combine.
type Match string

// Match kinds.
const (
	MatchAny Match = "any"
	MatchAll Match = "all"
)

// Range is one configured bucket of a range facet, also used as a range filter value.
type Range struct {
	Name string
	From *float64
	To   *float64
}

// Facet configures one faceted field.
type Facet struct {
	Field       string
	Label       string
	EngineField string // defaults to Field
	Kind        FacetKind
	Match       Match
	Disjunctive bool
	Hidden      bool // filter-only; never returned as a facet
	Size        int
	Ranges      []Range
}

// SortOption is a sort choice offered to the UI.
type SortOption struct {
	Name      string
	Field     string
	Direction string
}

// Schema describes what is searched, displayed and faceted.
type Schema struct {
	Facets          []Facet
	SearchFields    []string
	DisplayFields   []string
	HighlightFields []string
	SortOptions     []SortOption
	DefaultPageSize int
	MaxPageSize     int
}

func (s Schema) toDomain() (schema.Schema, error) {
	fields := make([]facet.Field, 0, len(s.Facets))
	for _, f := range s.Facets {
		ranges := make([]facet.Bounds, len(f.Ranges))
		for i, r := range f.Ranges {
			ranges[i] = facet.Bounds{Name: r.Name, From: r.From, To: r.To}
		}
		df, err := facet.NewField(facet.FieldSpec{
			Name:        f.Field,
			Label:       f.Label,
			EngineField: f.EngineField,
			Kind:        facet.Kind(f.Kind),
			Match:       facet.Match(f.Match),
			Disjunctive: f.Disjunctive,
			Hidden:      f.Hidden,
			Size:        f.Size,
			Ranges:      ranges,
		})
		if err != nil {
			return schema.Schema{}, fmt.Errorf("docsearch: %w", err)
		}
		fields = append(fields, df)
	}

	sorts := make([]schema.SortOption, len(s.SortOptions))
	for i, so := range s.SortOptions {
		sorts[i] = schema.SortOption{Name: so.Name, Field: so.Field, Direction: so.Direction}
	}

	out, err := schema.New(schema.Params{
		Facets:          fields,
		SearchFields:    s.SearchFields,
		DisplayFields:   s.DisplayFields,
		HighlightFields: s.HighlightFields,
		SortOptions:     sorts,
		DefaultPageSize: s.DefaultPageSize,
		MaxPageSize:     s.MaxPageSize,
	})
	if err != nil {
		return schema.Schema{}, fmt.Errorf("docsearch: %w", err)
	}
	return out, nil
}

// fieldMapping ties a struct field to the document field it is decoded from.
type fieldMapping struct {
	structIdx int
	name      string
}

// schemaMeta holds parsed struct tag metadata for a document type.
type schemaMeta struct {
	typ    reflect.Type
	schema Schema
	fields []fieldMapping
}

// SchemaFor derives a Schema from T's struct tags.
//
// The tag is `docsearch:"name[,modifier...]"`. Every tagged field is displayed.
// Modifiers: search, highlight, facet, disjunctive (implies facet), filter (hidden
// disjunctive facet), all (AND within the field) and keyword (engine field name.keyword, also offered
// as a sort option).
func SchemaFor[T any]() (Schema, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return Schema{}, err
	}
	return meta.schema, nil
}

func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("docsearch: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t}
	seen := make(map[string]struct{})
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		name, err := applyTag(meta, i, f.Name, tag)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("docsearch: duplicate document field %q on %s", name, f.Name)
		}
		seen[name] = struct{}{}
	}

	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("docsearch: no field with a `%s` tag in %s", tagKey, t)
	}
	return meta, nil
}

// applyTag processes a single struct field's tag and returns the document field name.
func applyTag(meta *schemaMeta, idx int, fieldName, tag string) (string, error) {
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		return "", fmt.Errorf("docsearch: empty field name in tag on %s", fieldName)
	}

	meta.fields = append(meta.fields, fieldMapping{structIdx: idx, name: name})
	meta.schema.DisplayFields = append(meta.schema.DisplayFields, name)

	var (
		isFacet bool
		fc      = Facet{Field: name}
	)
	for _, mod := range parts[1:] {
		switch mod {
		case "search":
			meta.schema.SearchFields = append(meta.schema.SearchFields, name)
		case "highlight":
			meta.schema.HighlightFields = append(meta.schema.HighlightFields, name)
		case "facet":
			isFacet = true
		case "disjunctive":
			isFacet = true
			fc.Disjunctive = true
		case "filter":
			isFacet = true
			fc.Disjunctive = true
			fc.Hidden = true
		case "all":
			fc.Match = MatchAll
		case "keyword":
			fc.EngineField = name + ".keyword"
			meta.schema.SortOptions = append(meta.schema.SortOptions,
				SortOption{Name: name, Field: fc.EngineField, Direction: "asc"})
		default:
			return "", fmt.Errorf("docsearch: unknown modifier %q on field %s", mod, fieldName)
		}
	}
	if isFacet {
		meta.schema.Facets = append(meta.schema.Facets, fc)
	}
	return name, nil
}
