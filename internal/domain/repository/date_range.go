package repository

import "time"

// DefaultLookbackYears is the analysis window used when no start date is given.
const DefaultLookbackYears = 3

// DateRange is an inclusive calendar-day window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NormalizeRange fills missing bounds: end defaults to now, start to end minus DefaultLookbackYears.
// Bounds are truncated to UTC calendar days and swapped if reversed.
func NormalizeRange(start, end, now time.Time) DateRange {
	if end.IsZero() {
		end = now
	}
	if start.IsZero() {
		start = end.AddDate(-DefaultLookbackYears, 0, 0)
	}
	start, end = truncateDay(start), truncateDay(end)
	if start.After(end) {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
