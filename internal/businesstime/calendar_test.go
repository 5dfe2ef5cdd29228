package businesstime_test

import (
	"testing"
	"time"

	"github.com/workshop17/ticketing-engine/internal/businesstime"
)

// 2024-01-01 is a Monday.
func date(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestSecondsBetween_FullBusinessDay(t *testing.T) {
	cal := businesstime.Default()

	got := cal.SecondsBetween(date(1, 8, 0), date(1, 17, 0))
	if want := int64(9 * 3600); got != want {
		t.Fatalf("Mon 08:00 -> Mon 17:00: got %d, want %d", got, want)
	}
}

func TestSecondsBetween_WeekendIsZero(t *testing.T) {
	cal := businesstime.Default()

	// Jan 6/7 2024 are Saturday/Sunday.
	if got := cal.SecondsBetween(date(6, 8, 0), date(7, 17, 0)); got != 0 {
		t.Fatalf("weekend interval: got %d, want 0", got)
	}
}

func TestSecondsBetween_SpansWeekend(t *testing.T) {
	cal := businesstime.Default()

	// Fri 16:00 -> Mon 09:00: one hour Friday plus one hour Monday.
	got := cal.SecondsBetween(date(5, 16, 0), date(8, 9, 0))
	if want := int64(7200); got != want {
		t.Fatalf("Fri 16:00 -> Mon 09:00: got %d, want %d", got, want)
	}
}

func TestSecondsBetween_OutsideWindow(t *testing.T) {
	cal := businesstime.Default()

	// Entirely before opening.
	if got := cal.SecondsBetween(date(1, 6, 0), date(1, 7, 30)); got != 0 {
		t.Fatalf("pre-open interval: got %d, want 0", got)
	}
	// Entirely after closing.
	if got := cal.SecondsBetween(date(1, 18, 0), date(1, 22, 0)); got != 0 {
		t.Fatalf("post-close interval: got %d, want 0", got)
	}
	// Straddles the open boundary: only the in-window part counts.
	if got := cal.SecondsBetween(date(1, 7, 0), date(1, 9, 0)); got != 3600 {
		t.Fatalf("straddling open: got %d, want 3600", got)
	}
}

func TestSecondsBetween_ReversedOrEqual(t *testing.T) {
	cal := businesstime.Default()

	if got := cal.SecondsBetween(date(1, 12, 0), date(1, 12, 0)); got != 0 {
		t.Fatalf("equal endpoints: got %d, want 0", got)
	}
	if got := cal.SecondsBetween(date(1, 15, 0), date(1, 9, 0)); got != 0 {
		t.Fatalf("reversed endpoints: got %d, want 0", got)
	}
}

func TestSecondsBetween_TruncatesToMinutes(t *testing.T) {
	cal := businesstime.Default()

	from := time.Date(2024, time.January, 1, 9, 0, 45, 0, time.UTC)
	to := time.Date(2024, time.January, 1, 9, 5, 30, 0, time.UTC)
	// Both endpoints truncate to whole minutes: 09:00 -> 09:05.
	if got := cal.SecondsBetween(from, to); got != 300 {
		t.Fatalf("sub-minute endpoints: got %d, want 300", got)
	}
}

func TestSecondsBetween_MultiDay(t *testing.T) {
	cal := businesstime.Default()

	// Mon 12:00 -> Wed 12:00: 5h Mon + 9h Tue + 4h Wed.
	got := cal.SecondsBetween(date(1, 12, 0), date(3, 12, 0))
	if want := int64(18 * 3600); got != want {
		t.Fatalf("multi-day: got %d, want %d", got, want)
	}
}

func TestNewCalendar_RejectsInvalidWindow(t *testing.T) {
	cal := businesstime.NewCalendar(17, 8)

	// Falls back to the 08:00-17:00 default.
	got := cal.SecondsBetween(date(1, 8, 0), date(1, 17, 0))
	if want := int64(9 * 3600); got != want {
		t.Fatalf("inverted window fallback: got %d, want %d", got, want)
	}
}
