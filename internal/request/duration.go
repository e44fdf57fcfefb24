package request

import (
	"math"
	"time"
)

// DaysBetween returns the inclusive calendar-day span of a leave period.
// Time-of-day is ignored; a request starting and ending on the same date
// counts as one day. The result is not positive when end precedes start,
// which callers must reject.
func DaysBetween(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	diff := endDay.Sub(startDay).Hours() / 24
	return int(math.Ceil(diff)) + 1
}

// HoursBetween returns the overtime span in hours rounded to two decimals.
// Not positive when end does not come after start.
func HoursBetween(start, end time.Time) float64 {
	hours := end.Sub(start).Hours()
	return math.Round(hours*100) / 100
}
