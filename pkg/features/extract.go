package features

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extract normalizes a raw payload into a flat FieldMap. It is total: any
// payload shape yields a (possibly empty) FieldMap, never an error.
//
// Mappings contribute one field per key, JSON-encoded strings are parsed and
// treated as mappings when they decode to one, and sequences contribute
// positional fields named item_<i>. Anything else produces no fields.
func Extract(sample RawSample) FieldMap {
	switch val := sample.Value.(type) {
	case map[string]any:
		return extractMapping(val)
	case string:
		var obj any
		if err := json.Unmarshal([]byte(val), &obj); err != nil {
			return FieldMap{}
		}
		if m, ok := obj.(map[string]any); ok {
			return extractMapping(m)
		}
		return FieldMap{}
	case []any:
		fields := make(FieldMap, len(val))
		for i, item := range val {
			if v, ok := coerce(item); ok {
				fields["item_"+strconv.Itoa(i)] = v
			}
		}
		return fields
	default:
		return FieldMap{}
	}
}

func extractMapping(m map[string]any) FieldMap {
	fields := make(FieldMap, len(m))
	for name, raw := range m {
		if v, ok := coerce(raw); ok {
			fields[name] = v
		}
	}
	return fields
}

// coerce maps one raw value onto the numeric-or-categorical union. Booleans
// become 1/0, anything float-convertible is numeric, remaining strings are
// categorical, and every other type is dropped.
func coerce(raw any) (Value, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return Numeric(1), true
		}
		return Numeric(0), true
	case float64:
		return Numeric(v), true
	case float32:
		return Numeric(float64(v)), true
	case int:
		return Numeric(float64(v)), true
	case int32:
		return Numeric(float64(v)), true
	case int64:
		return Numeric(float64(v)), true
	case uint:
		return Numeric(float64(v)), true
	case uint32:
		return Numeric(float64(v)), true
	case uint64:
		return Numeric(float64(v)), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Categorical(v.String()), true
		}
		return Numeric(f), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return Numeric(f), true
		}
		return Categorical(v), true
	default:
		return Value{}, false
	}
}
