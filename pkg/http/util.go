package http

import (
	"time"

	xutil "FundLens/pkg/util"
)

// ParseDate accepts compact vendor dates, ISO dates, RFC3339 and unix seconds.
func ParseDate(s string) (time.Time, bool) { return xutil.ParseDate(s) }

// ParseDateDefault parses a date or returns default if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time { return xutil.ParseDateDefault(s, def) }
