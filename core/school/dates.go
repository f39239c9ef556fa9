package school

import "time"

// DateTimeLayout is the store's datetime encoding.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// CanonicalDate encodes a day-granular date the way the store persists it:
// the calendar day with a fixed midnight-UTC time component. Queries against
// day-keyed records must match this exact string, never a date range.
func CanonicalDate(t time.Time) string {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(DateTimeLayout)
}

// ParseDate parses a stored datetime. Day-granular dates without a time
// component are accepted too.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999Z07:00", s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// MonthKey is the canonical per-month key used by salary exports.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
