// Package businesstime converts wall-clock intervals into elapsed business
// seconds under a fixed business-hours policy.
package businesstime

import (
	"time"
)

// Calendar holds the business window. The zero value is not usable; use
// Default or NewCalendar so the window is always explicit.
type Calendar struct {
	openHour  int
	closeHour int
}

// Default is the shipped policy: Monday–Friday, 08:00–17:00.
func Default() Calendar {
	return Calendar{openHour: 8, closeHour: 17}
}

// NewCalendar returns a calendar with a custom daily window. Hours outside
// [0,24] or an inverted window fall back to the default.
func NewCalendar(openHour, closeHour int) Calendar {
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return Default()
	}
	return Calendar{openHour: openHour, closeHour: closeHour}
}

// SecondsBetween returns the number of business seconds in [from, to).
// Both endpoints are truncated to whole minutes first; callers get whole
// minutes of business time, never sub-minute residue.
// Weekends contribute zero regardless of the hours requested. Calendar math
// runs in from's own location; to is interpreted in the same location.
func (c Calendar) SecondsBetween(from, to time.Time) int64 {
	from = from.Truncate(time.Minute)
	to = to.Truncate(time.Minute)
	if !to.After(from) {
		return 0
	}

	loc := from.Location()
	to = to.In(loc)

	var total int64
	cur := from
	for cur.Before(to) {
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			y, m, d := cur.Date()
			open := time.Date(y, m, d, c.openHour, 0, 0, 0, loc)
			close := time.Date(y, m, d, c.closeHour, 0, 0, 0, loc)

			start := cur
			if start.Before(open) {
				start = open
			}
			end := to
			if end.After(close) {
				end = close
			}
			if end.After(start) {
				total += int64(end.Sub(start) / time.Second)
			}
		}
		y, m, d := cur.Date()
		cur = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	}
	return total
}
