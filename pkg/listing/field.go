package listing

import (
	"encoding/json"
	"math"
	"strconv"
)

// Field describes one target attribute of a normalized record: the source
// keys to try, in priority order, and the value used when none match.
type Field struct {
	Keys     []string
	Fallback string

	// Truthy skips candidates holding empty strings, zero or false. Without
	// it only missing and null candidates are skipped.
	Truthy bool
}

// Lookup returns the first candidate value accepted by the field's rule.
func (f Field) Lookup(raw map[string]any) (any, bool) {
	for _, key := range f.Keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if f.Truthy && !truthy(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// String resolves the field to text, applying the fallback.
func (f Field) String(raw map[string]any) string {
	if v, ok := f.Lookup(raw); ok {
		return Stringify(v)
	}
	return f.Fallback
}

// Stringify renders a decoded JSON value as display text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	default:
		return true
	}
}
