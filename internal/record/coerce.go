package record

import (
	"strconv"
	"strings"
	"time"
)

// String coerces a scalar JSON value to a trimmed string. Objects, arrays
// and nil coerce to "".
func String(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Number coerces a JSON value to a float. Numeric strings are accepted,
// including a trailing percent sign.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(n), "%")
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

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a JSON value as a timestamp. Strings are tried against
// the supported layouts; numbers are treated as epoch seconds, or epoch
// milliseconds above 1e12.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return fromEpoch(t)
	case int:
		return fromEpoch(float64(t))
	case int64:
		return fromEpoch(float64(t))
	default:
		return time.Time{}, false
	}
}

func fromEpoch(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n >= 1e12 {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Unix(int64(n), 0).UTC(), true
}
