package schema

import (
	"encoding/json"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// RawInputs holds the operator-entered values for one month, keyed by field name.
// Values are usually strings but numbers arrive from JSON and SQL sources too.
type RawInputs map[string]any

// leadingNumber matches the numeric prefix of a string such as "85" in "85pts".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Present reports whether key has a value. Missing keys, nil and the empty
// string are absent. Zero and whitespace are present.
func (r RawInputs) Present(key string) bool {
	if key == "" || r == nil {
		return false
	}
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return s != ""
	}
	return true
}

// Float returns the numeric value of key, or 0 when absent or unparseable.
func (r RawInputs) Float(key string) float64 {
	if !r.Present(key) {
		return 0
	}
	n, _ := ParseNumber(r[key])
	return n
}

// String returns the value of key rendered as text, or "" when absent.
func (r RawInputs) String(key string) string {
	if !r.Present(key) {
		return ""
	}
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Clone returns a shallow copy that can be edited without touching the receiver.
func (r RawInputs) Clone() RawInputs {
	out := make(RawInputs, len(r))
	maps.Copy(out, r)
	return out
}

// With returns a copy with key set to value.
func (r RawInputs) With(key string, value any) RawInputs {
	out := r.Clone()
	out[key] = value
	return out
}

// ParseNumber converts a raw value into a float. Strings use their leading
// numeric prefix so "12.5%" reads as 12.5. Non-finite values are rejected.
func ParseNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case int32:
		n = float64(t)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case []byte:
		return ParseNumber(string(t))
	case string:
		m := leadingNumber.FindString(strings.TrimSpace(t))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// IsValidCoefficient reports whether c is one of the selectable coefficients.
func IsValidCoefficient(c float64) bool {
	return slices.Contains(Coefficients, c)
}
