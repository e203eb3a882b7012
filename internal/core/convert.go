package core

// convert.go provides the field coercions used when turning loose records
// into export rows and summary figures.
//
// Records come from a schemaless store, so a field may be absent, null, a
// number, a numeric string or something unexpected. None of these
// functions fail: text falls back to "", numbers to 0 and timestamps to "".

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOLayout formats instants as UTC with millisecond precision,
// e.g. 2024-01-01T00:00:00.000Z.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatISO renders t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// FormatNumber renders f in its shortest decimal form: 300, 2.5, 0.1.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Text returns the field as display text. Absent and null values yield "".
func Text(rec Record, field string) string {
	return textOf(rec[field])
}

func textOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return FormatNumber(val)
	case float32:
		return FormatNumber(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case Timestamp:
		return FormatISO(val.Time())
	case time.Time:
		return FormatISO(val)
	default:
		return fmt.Sprint(val)
	}
}

// Number returns the field as a float64. Absent, null, non-numeric and
// non-finite values yield 0. Numeric strings are parsed.
func Number(rec Record, field string) float64 {
	f, ok := numberOf(rec[field])
	if !ok {
		return 0
	}
	return f
}

func numberOf(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
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

// TimestampISO returns a platform timestamp field as an ISO-8601 instant,
// or "" when the field is absent or not a recognizable timestamp.
//
// Accepted shapes: Timestamp, *Timestamp, time.Time, and decoded JSON
// objects carrying "seconds" or "_seconds".
func TimestampISO(rec Record, field string) string {
	ts, ok := timestampOf(rec[field])
	if !ok {
		return ""
	}
	return FormatISO(ts.Time())
}

func timestampOf(v any) (Timestamp, bool) {
	switch val := v.(type) {
	case Timestamp:
		return val, true
	case *Timestamp:
		if val == nil {
			return Timestamp{}, false
		}
		return *val, true
	case time.Time:
		if val.IsZero() {
			return Timestamp{}, false
		}
		return TimestampOf(val), true
	case map[string]any:
		for _, key := range []string{"seconds", "_seconds"} {
			if raw, ok := val[key]; ok {
				if secs, ok := numberOf(raw); ok {
					return Timestamp{Seconds: int64(secs)}, true
				}
			}
		}
	case Record:
		return timestampOf(map[string]any(val))
	}
	return Timestamp{}, false
}

// EscapeQuotes doubles every double quote in s, the CSV convention for
// embedding quotes inside a quoted field.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
