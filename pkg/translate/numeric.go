package translate

import (
	"encoding/json"
	"strconv"
	"strings"
)

// number converts JSON scalars that carry a numeric meaning. Strings, arrays,
// objects and null are rejected.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// coerce is number plus numeric strings, which older metrics plugin versions
// emit for counts.
func coerce(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	if _, ok := v.(bool); ok {
		return 0, false
	}
	return number(v)
}
