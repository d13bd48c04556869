package repository

import (
	"math"
	"strconv"
)

// Key converts a parsed scalar to its comparable string form. Filtering and
// selector population both go through here so a numeric product or day in one
// file still matches the string form a selector hands back.
func Key(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// Num is the total numeric coercion: any scalar that does not parse as a
// finite number reports ok=false, never an error.
func Num(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// NumOrNaN coerces for ordering; non-numeric keys compare as NaN, so their
// relative order is unstable, which matches the day-selector contract.
func NumOrNaN(v interface{}) float64 {
	if f, ok := Num(v); ok {
		return f
	}
	return math.NaN()
}
