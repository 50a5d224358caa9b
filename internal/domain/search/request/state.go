package request

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
)

// MaxQueryLength is the maximum allowed search term length.
const MaxQueryLength = 4096

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Value is a selected filter value: a scalar term, or an interval for range facets.
type Value struct {
	Term  any
	Range *facet.Bounds
}

// TermValue creates a scalar filter value.
func TermValue(v any) Value { return Value{Term: v} }

// RangeValue creates an interval filter value.
func RangeValue(b facet.Bounds) Value { return Value{Range: &b} }

// UnmarshalJSON accepts a JSON scalar or a {from, to, name} object.
// Numeric terms are kept as json.Number.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var b facet.Bounds
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("decode range value: %w", err)
		}
		*v = Value{Range: &b}
		return nil
	}
	var term any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&term); err != nil {
		return fmt.Errorf("decode filter value: %w", err)
	}
	*v = Value{Term: term}
	return nil
}

// MarshalJSON encodes the value in the shape UnmarshalJSON accepts.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Range != nil {
		return json.Marshal(v.Range)
	}
	return json.Marshal(v.Term)
}

// Filter is one active filter from the UI: selected values of one field.
// An empty Type falls back to the field's configured match kind.
type Filter struct {
	Field  string      `json:"field"`
	Values []Value     `json:"values"`
	Type   facet.Match `json:"type,omitempty"`
}

// State is the UI search state posted by the browser.
type State struct {
	SearchTerm     string    `json:"searchTerm"`
	Filters        []Filter  `json:"filters,omitempty"`
	SortField      string    `json:"sortField,omitempty"`
	SortDirection  Direction `json:"sortDirection,omitempty"`
	Current        int       `json:"current,omitempty"`
	ResultsPerPage int       `json:"resultsPerPage,omitempty"`
}

// Validate checks the state for values the builder cannot translate.
func (s State) Validate() error {
	if len(s.SearchTerm) > MaxQueryLength {
		return fmt.Errorf("search term too long (max %d chars)", MaxQueryLength)
	}
	for i, f := range s.Filters {
		if f.Field == "" {
			return fmt.Errorf("filter %d: field is required", i)
		}
		if f.Type != "" && !f.Type.IsValid() {
			return fmt.Errorf("filter %q: invalid type %q", f.Field, f.Type)
		}
		for _, v := range f.Values {
			if err := validateValue(v); err != nil {
				return fmt.Errorf("filter %q: %w", f.Field, err)
			}
		}
	}
	switch s.SortDirection {
	case "", Asc, Desc:
	default:
		return fmt.Errorf("invalid sort direction %q", s.SortDirection)
	}
	if s.Current < 0 {
		return fmt.Errorf("current page must not be negative")
	}
	if s.ResultsPerPage < 0 {
		return fmt.Errorf("resultsPerPage must not be negative")
	}
	return nil
}

func validateValue(v Value) error {
	if v.Range != nil {
		if v.Range.From == nil && v.Range.To == nil {
			return fmt.Errorf("range value %q has no bounds", v.Range.Name)
		}
		return nil
	}
	switch v.Term.(type) {
	case string, bool, float64, int, int64, json.Number:
		return nil
	default:
		return fmt.Errorf("unsupported filter value %v", v.Term)
	}
}

// HasActiveFilter reports whether the field has a filter with at least one selected value.
func (s State) HasActiveFilter(field string) bool {
	for _, f := range s.Filters {
		if f.Field == field && len(f.Values) > 0 {
			return true
		}
	}
	return false
}

// WithoutFilter returns a copy of the state with every filter on field removed.
func (s State) WithoutFilter(field string) State {
	filters := make([]Filter, 0, len(s.Filters))
	for _, f := range s.Filters {
		if f.Field != field {
			filters = append(filters, f)
		}
	}
	s.Filters = filters
	return s
}
