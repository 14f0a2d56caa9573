package cpi

import (
	"fmt"
	"time"
)

// Month truncates t to the first day of its month in UTC.
func Month(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthOrdinal returns a running month number, so that consecutive months
// differ by exactly one.
func MonthOrdinal(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// MonthsBetween returns the number of months from a to b (negative if b
// precedes a).
func MonthsBetween(a, b time.Time) int {
	return MonthOrdinal(b) - MonthOrdinal(a)
}

// MonthRange returns n consecutive months starting at start.
func MonthRange(start time.Time, n int) []time.Time {
	first := Month(start)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = first.AddDate(0, i, 0)
	}
	return dates
}

// normalizeDates copies dates truncated to months and verifies they form a
// contiguous monthly axis.
func normalizeDates(dates []time.Time) ([]time.Time, error) {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = Month(d)
		if i > 0 && MonthsBetween(out[i-1], out[i]) != 1 {
			return nil, &ValidationError{
				Field:   "dates",
				Message: fmt.Sprintf("period %d (%s) does not follow %s", i, out[i].Format("2006-01"), out[i-1].Format("2006-01")),
				Value:   i,
				Err:     ErrNonMonthlyDates,
			}
		}
	}
	return out, nil
}

// IndexOfDate returns the position of the month containing t in dates.
func IndexOfDate(dates []time.Time, t time.Time) (int, bool) {
	if len(dates) == 0 {
		return 0, false
	}
	i := MonthsBetween(dates[0], t)
	if i < 0 || i >= len(dates) {
		return 0, false
	}
	return i, true
}
