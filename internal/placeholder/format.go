package placeholder

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a placeholder value the way it appears in a finished
// document. Rates keep one decimal for whole values (20 renders as "20.0")
// because the commission figures in contract prose are decimal percentages.
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Float coerces a value to a number. Strings are parsed; booleans map to 0/1.
// The second return reports whether the coercion succeeded.
func Float(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FloatValue looks a key up in values and coerces it to a number.
func (v *Values) FloatValue(key string) (float64, bool) {
	raw, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	return Float(raw)
}

// Truthy reports whether a value shows a conditional section. Numbers are
// truthy when nonzero; strings are parsed as numbers first and unparseable
// strings are falsy; nil and empty strings are falsy.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		f, ok := Float(v)
		return ok && f != 0
	default:
		f, ok := Float(value)
		return ok && f != 0
	}
}

// TruthyKey reports whether the named entry is present and truthy.
func (v *Values) TruthyKey(key string) bool {
	raw, ok := v.Get(key)
	if !ok {
		return false
	}
	return Truthy(raw)
}
