package journal

import (
	"fmt"
	"math"
	"time"
)

// ReferenceEpochOffset is the number of seconds between the Unix epoch and
// 2001-01-01T00:00:00Z, the reference date the store's instants count from.
const ReferenceEpochOffset int64 = 978307200

const (
	timestampLayout         = "2006-01-02T15:04:05Z"
	timestampLayoutFraction = "2006-01-02T15:04:05.000000Z"
)

// ReferenceTime converts reference-epoch seconds to a UTC instant, rounded
// half-to-even to the microsecond. The offset is added in floating point
// before rounding, so results agree with Unix-timestamp based tooling.
func ReferenceTime(seconds float64) time.Time {
	unix := seconds + float64(ReferenceEpochOffset)
	whole := math.Floor(unix)
	micros := math.RoundToEven((unix - whole) * 1e6)
	if micros >= 1e6 {
		whole++
		micros -= 1e6
	}
	return time.Unix(int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
}

// FormatTime renders an instant as an ISO-8601 UTC string with a Z suffix.
// Fractional seconds are written with microsecond precision only when present.
func FormatTime(t time.Time) string {
	t = t.UTC().Round(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampLayoutFraction)
}

// FormatTimestamp converts a reference-epoch timestamp to its ISO-8601 form.
// A nil timestamp yields nil.
func FormatTimestamp(seconds *float64) *string {
	if seconds == nil {
		return nil
	}
	s := FormatTime(ReferenceTime(*seconds))
	return &s
}

// ParseTimestamp is the inverse of FormatTimestamp: it returns the
// reference-epoch seconds for an ISO-8601 string.
func ParseTimestamp(s string) (float64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return float64(t.Unix()-ReferenceEpochOffset) + float64(t.Nanosecond())/1e9, nil
}
