package features

// Encode produces the fixed-width feature vector for one sample against a
// frozen schema. The output length always equals schema.Width(): missing
// numeric fields encode as 0, categorical fields one-hot against the
// retained categories with unmatched values landing in the field's
// __is_other column, and an absent categorical field leaves its whole
// column group at zero.
//
// The vector is assembled from the schema's structure, not by parsing
// column names, so field names containing the one-hot separator cannot
// shift columns.
func Encode(fields FieldMap, schema *Schema) []float64 {
	vec := make([]float64, 0, schema.Width())

	planWidth := 0
	for _, retained := range schema.CategoryPlan {
		planWidth += len(retained) + 1
	}
	numericCount := schema.Width() - planWidth
	if numericCount < 0 {
		numericCount = 0
	}

	for _, col := range schema.Columns[:numericCount] {
		if v, ok := fields[col]; ok && v.IsNumeric() {
			vec = append(vec, v.Float())
		} else {
			vec = append(vec, 0)
		}
	}

	for _, field := range sortedPlanFields(schema) {
		var cat string
		present := false
		if v, ok := fields[field]; ok {
			cat, present = v.Category()
		}
		matched := false
		for _, retained := range schema.CategoryPlan[field] {
			if present && cat == retained {
				vec = append(vec, 1)
				matched = true
			} else {
				vec = append(vec, 0)
			}
		}
		if present && !matched {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	return vec
}

// EncodeMatrix encodes a whole corpus row by row.
func EncodeMatrix(corpus []FieldMap, schema *Schema) [][]float64 {
	matrix := make([][]float64, len(corpus))
	for i, fields := range corpus {
		matrix[i] = Encode(fields, schema)
	}
	return matrix
}
