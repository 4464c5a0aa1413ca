// Package dateutil provides the calendar arithmetic shared by recurrence
// expansion and iCalendar encoding. All values are plain calendar dates
// represented as time.Time at midnight UTC; no wall-clock or zone logic
// lives here.
package dateutil

import "time"

// Layout is the canonical date format used throughout the application.
const Layout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns the date n days after t (n may be negative).
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekStart returns the Sunday that begins t's calendar week.
func WeekStart(t time.Time) time.Time {
	return AddDays(t, -int(t.Weekday()))
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped advances t by n months, clamping the day of month to the
// last valid day of the target month. Anchoring on the 31st therefore lands
// on the 30th (or 28th/29th) rather than rolling into the following month,
// which is what time.Time.AddDate would do.
func AddMonthsClamped(t time.Time, n int) time.Time {
	y := t.Year()
	m := int(t.Month()) - 1 + n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := time.Month(m + 1)
	d := t.Day()
	if last := DaysInMonth(y, month); d > last {
		d = last
	}
	return time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
}

// AddYearsClamped advances t by n years with the same day clamping, so a
// Feb 29 anchor falls back to Feb 28 in non-leap target years.
func AddYearsClamped(t time.Time, n int) time.Time {
	y := t.Year() + n
	d := t.Day()
	if last := DaysInMonth(y, t.Month()); d > last {
		d = last
	}
	return time.Date(y, t.Month(), d, 0, 0, 0, 0, time.UTC)
}
