package types

import (
	"math"
	"strconv"
	"time"
)

// Value is one cell. The dynamic type is the Go type backing the channel:
// uint8..float64, string, and uint32 for DateTime.
type Value = any

// SameValue reports whether a and b hold the same value. Floats compare by
// bit pattern, so a NaN survives an encode/decode round trip as equal.
func SameValue(a, b Value) bool {
	switch x := a.(type) {
	case float32:
		y, ok := b.(float32)
		return ok && math.Float32bits(x) == math.Float32bits(y)
	case float64:
		y, ok := b.(float64)
		return ok && math.Float64bits(x) == math.Float64bits(y)
	default:
		return a == b
	}
}

// FormatValue renders v for display. DateTime values print as UTC RFC 3339.
func FormatValue(dt DataType, v Value) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		if dt == TypeDateTime {
			return time.Unix(int64(x), 0).UTC().Format(time.RFC3339)
		}
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return "?"
	}
}
