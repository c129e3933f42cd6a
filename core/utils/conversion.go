package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToString converts a loosely typed value to a trimmed string.
// nil becomes the empty string; floats lose trailing zeros.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// ToFloat converts numbers and numeric strings to float64.
// ok is false for anything else, including empty strings and NaN.
func ToFloat(val any) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case string, []byte:
		s := ToString(v)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToInt converts values holding a whole number to int.
// "31", 31.0 and "31.0" convert; "31.5", "S1" and nil do not.
func ToInt(val any) (int, bool) {
	f, ok := ToFloat(val)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
