package graphdb

import "fmt"

// Record is one result row keyed by column name.
type Record map[string]any

// Map returns the column as a property map (queries project nodes with
// `n{.*}` so they arrive as maps rather than driver node types).
func (r Record) Map(key string) map[string]any {
	return AsMap(r[key])
}

func (r Record) String(key string) string {
	return AsString(r[key])
}

func (r Record) Int(key string) int {
	return AsInt(r[key])
}

func AsMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case interface{ GetProperties() map[string]any }:
		return t.GetProperties()
	default:
		return nil
	}
}

func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func AsInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

func AsBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func AsFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}

// AsSlice accepts []any as returned by the driver.
func AsSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func AsStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, AsString(item))
		}
		return out
	default:
		return nil
	}
}
