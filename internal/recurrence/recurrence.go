// Package recurrence computes the next occurrence of a scheduled task
// definition. All occurrences are snapped to 08:00 in the definition's
// timezone. Look-ahead is bounded (90 days for day-based types, 24 months
// for month-based types) purely to guarantee termination.
package recurrence

import (
	"strings"
	"time"

	"github.com/workshop17/ticketing-engine/internal/domain"
)

const runHour = 8

// DefaultTimezone is used when a definition carries no zone or an
// unloadable one.
const DefaultTimezone = "Africa/Johannesburg"

const (
	dayLookAhead   = 90 // days, for daily/weekly/biweekly
	monthLookAhead = 24 // months, for monthly/bimonthly
)

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

// NextRun returns the first occurrence of def at or after from (and never
// before def.StartDate). ok is false when the look-ahead window holds no
// valid occurrence or the schedule type is unknown. Deterministic: the
// result depends only on the arguments.
func NextRun(def *domain.ScheduledTask, from time.Time) (time.Time, bool) {
	loc := loadZone(def.Timezone)
	now := from.In(loc)
	start := dayStart(def.StartDate, loc)
	if now.Before(start) {
		now = start
	}

	switch def.ScheduleType {
	case domain.ScheduleDaily:
		return nextDaily(now, loc), true
	case domain.ScheduleWeekly, domain.ScheduleBiweekly:
		return nextWeekly(def, now, start, loc)
	case domain.ScheduleMonthly, domain.ScheduleBimonthly:
		return nextMonthly(def, now, start, loc)
	}
	return time.Time{}, false
}

// NextRunAfterFire recomputes NextRunAt after a successful materialization
// at ranAt, seeding from midnight of the following day so even a daily
// schedule always moves forward.
func NextRunAfterFire(def *domain.ScheduledTask, ranAt time.Time) (time.Time, bool) {
	loc := loadZone(def.Timezone)
	y, m, d := ranAt.In(loc).Date()
	tomorrow := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return NextRun(def, tomorrow)
}

// nextDaily: tomorrow at 08:00, unless called at/before 00:00:01 on the
// candidate day itself, in which case today at 08:00 still counts.
func nextDaily(now time.Time, loc *time.Location) time.Time {
	h, m, s := now.Clock()
	if h > 0 || m > 0 || s > 1 {
		now = now.AddDate(0, 0, 1)
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d, runHour, 0, 0, 0, loc)
}

func nextWeekly(def *domain.ScheduledTask, now, start time.Time, loc *time.Location) (time.Time, bool) {
	byDay := normalizeByDay(def.ByDay)
	_, startWeek := start.ISOWeek()

	y, m, d := now.Date()
	cand := time.Date(y, m, d, runHour, 0, 0, 0, loc)
	for i := 0; i < dayLookAhead; i++ {
		if byDay[weekdayCodes[cand.Weekday()]] && !cand.Before(start) && !cand.Before(now) {
			if def.ScheduleType != domain.ScheduleBiweekly {
				return cand, true
			}
			// Week parity against the start week, not elapsed days. ISO
			// week numbers reset at year boundaries, so the remainder can
			// go negative there; the resulting one-time parity flip is
			// behavior and deliberately kept.
			_, week := cand.ISOWeek()
			if (week-startWeek)%2 == 0 {
				return cand, true
			}
		}
		cand = cand.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

func nextMonthly(def *domain.ScheduledTask, now, start time.Time, loc *time.Location) (time.Time, bool) {
	dom := def.DayOfMonth
	if dom < 1 {
		dom = 1
	}
	if dom > 31 {
		dom = 31
	}
	step := 1
	if def.ScheduleType == domain.ScheduleBimonthly {
		step = 2
	}

	baseYear, baseMonth, _ := now.Date()
	for months := 0; months <= monthLookAhead; months += step {
		y, m := addMonths(baseYear, baseMonth, months)
		day := dom
		if last := daysInMonth(y, m); day > last {
			day = last // e.g. day 31 in February clamps to the 28th/29th
		}
		cand := time.Date(y, m, day, runHour, 0, 0, 0, loc)
		if !cand.Before(start) && !cand.Before(now) {
			return cand, true
		}
	}
	return time.Time{}, false
}

func normalizeByDay(byDay []string) map[string]bool {
	set := make(map[string]bool, len(byDay))
	for _, code := range byDay {
		code = strings.ToUpper(strings.TrimSpace(code))
		if isWeekdayCode(code) {
			set[code] = true
		}
	}
	if len(set) == 0 {
		set["MO"] = true
	}
	return set
}

func isWeekdayCode(code string) bool {
	for _, c := range weekdayCodes {
		if c == code {
			return true
		}
	}
	return false
}

func loadZone(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	total := int(month) - 1 + n
	return year + total/12, time.Month(total%12 + 1)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
