package rental

import "time"

// DateLayout is the day format used in prompts and renderings.
const DateLayout = "02.01.2006"

// Day builds a calendar day at UTC midnight.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

// DaysInclusive counts the days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours()/24) + 1
}

// Overlaps applies the booking overlap rule: a line occupies a range when it
// starts before the range ends and ends after the range starts. Ranges that
// only touch on a boundary day do not overlap.
func Overlaps(lineStart, lineEnd, rangeStart, rangeEnd time.Time) bool {
	return lineStart.Before(rangeEnd) && lineEnd.After(rangeStart)
}

// FormatDate renders a day as DD.MM.YYYY.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }
