// Package timestamp normalizes the loosely formatted date strings the
// leaderboard API returns into comparable millisecond instants.
package timestamp

import (
	"strings"
	"time"
)

// layouts are tried in order. Layouts without a zone are read as UTC.
var layouts = []string{ //nolint:gochecknoglobals // read-only parse table
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Jan 2, 2006",
	"January 2, 2006",
}

// Value is a normalized timestamp: either a known instant in Unix
// milliseconds or Unknown. The zero Value is Unknown.
type Value struct {
	ms    int64
	known bool
}

// Unknown is the timestamp of an event whose date is absent or unparseable.
var Unknown = Value{} //nolint:gochecknoglobals // zero value alias

// FromTime wraps a time as a known Value.
func FromTime(t time.Time) Value {
	return Value{ms: t.UnixMilli(), known: true}
}

// Parse normalizes s. Empty and unrecognized input yields Unknown.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FromTime(t)
		}
	}
	return Unknown
}

// ParsePtr is Parse for optional fields; nil yields Unknown.
func ParsePtr(s *string) Value {
	if s == nil {
		return Unknown
	}
	return Parse(*s)
}

// Known reports whether v holds an instant.
func (v Value) Known() bool { return v.known }

// Millis returns the Unix milliseconds and whether v is known.
func (v Value) Millis() (int64, bool) { return v.ms, v.known }

// Time returns the instant in UTC; the zero time when unknown.
func (v Value) Time() time.Time {
	if !v.known {
		return time.Time{}
	}
	return time.UnixMilli(v.ms).UTC()
}

// String renders v as RFC3339 or "unknown".
func (v Value) String() string {
	if !v.known {
		return "unknown"
	}
	return v.Time().Format(time.RFC3339)
}

// CompareDesc orders newest first with unknown values after every known
// one. Two unknown values compare equal so a stable sort keeps their order.
func CompareDesc(a, b Value) int {
	switch {
	case !a.known && !b.known:
		return 0
	case !a.known:
		return 1
	case !b.known:
		return -1
	case a.ms > b.ms:
		return -1
	case a.ms < b.ms:
		return 1
	default:
		return 0
	}
}

// InRange reports whether v lies in the inclusive range [from, to].
// An unknown bound is open. Unknown values are always in range.
func InRange(v, from, to Value) bool {
	if !v.known {
		return true
	}
	if from.known && v.ms < from.ms {
		return false
	}
	if to.known && v.ms > to.ms {
		return false
	}
	return true
}

// EndOfDay moves a known date-only bound to its last millisecond so that
// a "to" date includes the whole day.
func EndOfDay(v Value) Value {
	if !v.known {
		return v
	}
	t := v.Time()
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return FromTime(end)
}
