// Package timex holds the time arithmetic used by timesheets: minutes between
// two instants, calendar-date handling and a JSON friendly Duration.
package timex

import (
	"math"
	"time"
)

// DateLayout is the wire and storage format of a logical calendar day.
const DateLayout = "2006-01-02"

// Minutes returns the length of [start, end] in minutes with millisecond
// precision. The result is negative when end precedes start.
func Minutes(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds()) / 60000
}

// RoundMinutes rounds a fractional minute total to whole minutes.
func RoundMinutes(m float64) int {
	return int(math.Round(m))
}

// Hours converts minutes to hours rounded to one decimal place.
func Hours[T int | float64](minutes T) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsDate reports whether s is a well-formed YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}
