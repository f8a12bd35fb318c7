package tab

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func AsMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func AsSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// Text returns the trimmed string form of v, reporting false for nil, empty
// strings and the NA marker.
func Text(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	default:
		s = fmt.Sprint(t)
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
	if s == "" || s == NA {
		return "", false
	}
	return s, true
}

func Float64(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return 0, false
	}
	s, ok := Text(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func Int64(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if math.IsNaN(t) || t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		return 0, false
	}
	s, ok := Text(v)
	if !ok {
		return 0, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return int64(f), true
	}
	return 0, false
}

// Missing reports whether the cell carries no usable value.
func Missing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		return trimmed == "" || trimmed == NA
	}
	return false
}

// KeyString canonicalizes a join-key cell so string and numeric forms of the
// same id compare equal ("18649486" and 1.8649486e7 both key as "18649486").
func KeyString(v any) string {
	if i, ok := Int64(v); ok {
		return strconv.FormatInt(i, 10)
	}
	s, ok := Text(v)
	if !ok {
		return ""
	}
	return s
}

// CellString renders a cell for CSV export. nil becomes the empty string;
// callers that want the NA marker fill it in before exporting.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// PyFloat matches pandas to_csv float rendering: integral floats keep a
// trailing .0 (4.0 rather than 4).
func PyFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s + ".0"
	}
	return s
}
