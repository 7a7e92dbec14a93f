package features

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SchemaVersion is the persistence format version understood by this package.
const SchemaVersion = 1

// DefaultMaxCategories bounds the number of one-hot columns per categorical
// field when the caller does not choose a limit.
const DefaultMaxCategories = 10

// Schema is the frozen column layout shared by training and inference.
// Columns holds every output column in encoding order: numeric fields sorted
// lexicographically, then for each categorical field (sorted by name) one
// <field>__is_<category> column per retained category followed by
// <field>__is_other. CategoryPlan lists the retained categories per field,
// most frequent first.
//
// A Schema is immutable once built; rebuilding produces a new instance.
type Schema struct {
	Version      int                 `json:"version"`
	Columns      []string            `json:"columns"`
	CategoryPlan map[string][]string `json:"category_plan"`
}

// Width returns the encoded vector length.
func (s *Schema) Width() int {
	return len(s.Columns)
}

// Empty reports whether the schema has no columns at all. Training on an
// empty schema would produce a zero-width model; callers must check.
func (s *Schema) Empty() bool {
	return len(s.Columns) == 0
}

// JSON serializes the schema in its persistence format.
func (s *Schema) JSON() ([]byte, error) {
	return json.Marshal(s)
}

// ParseSchema loads a schema from its persistence format, rejecting versions
// this package does not understand so that a training/inference mismatch
// fails loudly instead of silently misaligning columns.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if s.Version != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", s.Version)
	}
	if s.CategoryPlan == nil {
		s.CategoryPlan = map[string][]string{}
	}
	return &s, nil
}

// BuildSchema derives the frozen schema from a corpus of extracted field
// maps. For each categorical field, up to maxCategories values are retained,
// ranked by descending frequency with ties broken by first appearance in the
// corpus; maxCategories <= 0 selects DefaultMaxCategories.
//
// The result is deterministic for a given corpus order: fields within one
// FieldMap are visited in sorted order so that first-seen ranking does not
// depend on map iteration.
func BuildSchema(corpus []FieldMap, maxCategories int) *Schema {
	if maxCategories <= 0 {
		maxCategories = DefaultMaxCategories
	}

	numericSet := map[string]struct{}{}
	counts := map[string]map[string]int{}
	firstSeen := map[string]map[string]int{}
	seen := 0

	for _, fields := range corpus {
		for _, name := range sortedFieldNames(fields) {
			v := fields[name]
			if v.IsNumeric() {
				numericSet[name] = struct{}{}
				continue
			}
			cat, _ := v.Category()
			if counts[name] == nil {
				counts[name] = map[string]int{}
				firstSeen[name] = map[string]int{}
			}
			if _, ok := firstSeen[name][cat]; !ok {
				firstSeen[name][cat] = seen
				seen++
			}
			counts[name][cat]++
		}
	}

	numeric := make([]string, 0, len(numericSet))
	for name := range numericSet {
		numeric = append(numeric, name)
	}
	sort.Strings(numeric)

	catFields := make([]string, 0, len(counts))
	for name := range counts {
		catFields = append(catFields, name)
	}
	sort.Strings(catFields)

	plan := make(map[string][]string, len(catFields))
	columns := append([]string{}, numeric...)
	for _, field := range catFields {
		retained := rankCategories(counts[field], firstSeen[field], maxCategories)
		plan[field] = retained
		for _, cat := range retained {
			columns = append(columns, oneHotColumn(field, cat))
		}
		columns = append(columns, otherColumn(field))
	}

	return &Schema{
		Version:      SchemaVersion,
		Columns:      columns,
		CategoryPlan: plan,
	}
}

// rankCategories orders a field's observed values by descending frequency
// and keeps the top max. The input slice is assembled in first-seen order so
// a stable sort resolves frequency ties by first appearance.
func rankCategories(counts map[string]int, firstSeen map[string]int, max int) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return firstSeen[values[i]] < firstSeen[values[j]]
	})
	sort.SliceStable(values, func(i, j int) bool {
		return counts[values[i]] > counts[values[j]]
	})
	if len(values) > max {
		values = values[:max]
	}
	return values
}

func sortedFieldNames(fields FieldMap) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedPlanFields returns the schema's categorical fields in column order.
func sortedPlanFields(s *Schema) []string {
	fields := make([]string, 0, len(s.CategoryPlan))
	for name := range s.CategoryPlan {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

func oneHotColumn(field, category string) string {
	return field + "__is_" + category
}

func otherColumn(field string) string {
	return field + "__is_other"
}
