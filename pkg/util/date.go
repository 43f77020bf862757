package util

import (
	"strconv"
	"time"
)

// CompactDate is the vendor date layout.
const CompactDate = "20060102"

var dateLayouts = []string{CompactDate, "2006-01-02", time.RFC3339, time.RFC3339Nano, "2006/01/02"}

// ParseDate tries the compact vendor layout, ISO dates, RFC3339 and unix seconds.
// The result is the UTC calendar day. Returns (t, true) if any worked.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	// an eight digit string that failed the compact layout is a bad date, not a timestamp
	if len(s) == len(CompactDate) {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return Day(time.Unix(ts, 0).UTC()), true
	}
	return time.Time{}, false
}

// ParseDateDefault parses a date or returns def if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return def
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatCompact renders t in the vendor layout.
func FormatCompact(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CompactDate)
}
