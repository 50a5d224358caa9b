package facet

import "fmt"

// Kind is the facet shape produced from an aggregation.
type Kind string

// Facet kinds.
const (
	// Value facets are built from terms aggregations.
	Value Kind = "value"
	// Range facets are built from numeric range aggregations.
	Range Kind = "range"
)

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool { return k == Value || k == Range }

// Match is how multiple selected values of one field combine.
type Match string

// Match kinds.
const (
	// Any is OR within the field (disjunctive multi-select).
	Any Match = "any"
	// All is AND within the field.
	All Match = "all"
)

// IsValid checks if the match kind is supported.
func (m Match) IsValid() bool { return m == Any || m == All }

// DefaultSize is the default number of buckets requested per value facet.
const DefaultSize = 20

// Bounds is a numeric interval. It describes a configured range bucket and,
// in the same shape, a range facet value and a range filter value.
type Bounds struct {
	From *float64 `json:"from,omitempty" yaml:"from"`
	To   *float64 `json:"to,omitempty" yaml:"to"`
	Name string   `json:"name,omitempty" yaml:"name"`
}

// FieldSpec holds the raw settings of a facet field before validation.
type FieldSpec struct {
	Name        string
	Label       string
	EngineField string
	Kind        Kind
	Match       Match
	Disjunctive bool
	Hidden      bool
	Size        int
	Ranges      []Bounds
}

// Field is an immutable configured facet field.
type Field struct {
	name        string
	label       string
	engineField string
	kind        Kind
	match       Match
	disjunctive bool
	hidden      bool
	size        int
	ranges      []Bounds
}

// NewField validates a spec and creates a Field.
// Defaults: label and engine field = name, kind=value, match=any, size=DefaultSize.
func NewField(spec FieldSpec) (Field, error) {
	if spec.Name == "" {
		return Field{}, fmt.Errorf("facet field name is required")
	}
	if spec.Kind == "" {
		spec.Kind = Value
	}
	if !spec.Kind.IsValid() {
		return Field{}, fmt.Errorf("invalid facet kind %q for %q", spec.Kind, spec.Name)
	}
	if spec.Match == "" {
		spec.Match = Any
	}
	if !spec.Match.IsValid() {
		return Field{}, fmt.Errorf("invalid match kind %q for %q", spec.Match, spec.Name)
	}
	if spec.Kind == Range && len(spec.Ranges) == 0 {
		return Field{}, fmt.Errorf("range facet %q requires at least one range", spec.Name)
	}
	for i, r := range spec.Ranges {
		if r.From == nil && r.To == nil {
			return Field{}, fmt.Errorf("range %d of facet %q has no bounds", i, spec.Name)
		}
	}
	if spec.Label == "" {
		spec.Label = spec.Name
	}
	if spec.EngineField == "" {
		spec.EngineField = spec.Name
	}
	if spec.Size <= 0 {
		spec.Size = DefaultSize
	}

	ranges := make([]Bounds, len(spec.Ranges))
	copy(ranges, spec.Ranges)

	return Field{
		name:        spec.Name,
		label:       spec.Label,
		engineField: spec.EngineField,
		kind:        spec.Kind,
		match:       spec.Match,
		disjunctive: spec.Disjunctive,
		hidden:      spec.Hidden,
		size:        spec.Size,
		ranges:      ranges,
	}, nil
}

// Name returns the facet field name (also the aggregation name).
func (f Field) Name() string { return f.name }

// Label returns the UI label.
func (f Field) Label() string { return f.label }

// EngineField returns the indexed field used for aggregation and filtering.
func (f Field) EngineField() string { return f.engineField }

// Kind returns the facet kind.
func (f Field) Kind() Kind { return f.kind }

// Match returns how selected values combine.
func (f Field) Match() Match { return f.match }

// Disjunctive reports whether counts ignore the field's own filter.
func (f Field) Disjunctive() bool { return f.disjunctive }

// Hidden reports whether the field is filter-only and never rendered as a facet.
func (f Field) Hidden() bool { return f.hidden }

// Size returns the bucket count requested for value facets.
func (f Field) Size() int { return f.size }

// Ranges returns the configured range buckets.
func (f Field) Ranges() []Bounds { return f.ranges }
