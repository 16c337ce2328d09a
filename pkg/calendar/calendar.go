// Package calendar holds calendar-day arithmetic. A day is always taken in
// the location of the time value passed in.
package calendar

import "time"

const DayLayout = "2006-01-02"

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Tomorrow is the start of the calendar day after t.
func Tomorrow(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// DayRange returns [start of day, start of next day).
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}
