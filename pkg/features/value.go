// Package features converts loosely typed sensor payloads into fixed-width
// numeric feature vectors. It covers the three stages of the preprocessing
// pipeline: extraction of a flat field map from one raw payload, schema
// discovery over a training corpus, and deterministic vector encoding of
// arbitrary samples against the frozen schema.
package features

// kind discriminates the two sides of the Value union.
type kind uint8

const (
	kindNumeric kind = iota + 1
	kindCategorical
)

// Value is a single extracted field: a number or a raw category string,
// never both.
type Value struct {
	kind kind
	num  float64
	cat  string
}

// Numeric returns a numeric Value.
func Numeric(f float64) Value {
	return Value{kind: kindNumeric, num: f}
}

// Categorical returns a categorical Value holding the raw string.
func Categorical(s string) Value {
	return Value{kind: kindCategorical, cat: s}
}

// IsNumeric reports whether the value is numeric.
func (v Value) IsNumeric() bool {
	return v.kind == kindNumeric
}

// IsCategorical reports whether the value is categorical.
func (v Value) IsCategorical() bool {
	return v.kind == kindCategorical
}

// Float returns the numeric value, or 0 for categorical values.
func (v Value) Float() float64 {
	return v.num
}

// Category returns the category string and whether the value is categorical.
func (v Value) Category() (string, bool) {
	return v.cat, v.kind == kindCategorical
}

// FieldMap is the normalized, flat view of one raw sample: field name to
// extracted value.
type FieldMap map[string]Value

// RawSample is one record retrieved from an event source. Only Value takes
// part in feature extraction; Key and Type carry source metadata and survive
// into scoring results.
type RawSample struct {
	Key   string `json:"key,omitempty"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}
