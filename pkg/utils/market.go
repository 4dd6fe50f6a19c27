// Package utils provides shared utility functions.
package utils

import (
	"time"
)

// NYLocation is the timezone for US equity markets.
var NYLocation *time.Location

func init() {
	var err error
	NYLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		NYLocation = time.FixedZone("EST", -5*60*60)
	}
}

// usHolidays holds fixed-date and observed US market holidays by year.
// Floating holidays (Thanksgiving, Easter-linked) are computed.
func usHolidays(year int) []time.Time {
	days := []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, NYLocation),   // New Year's Day
		time.Date(year, time.June, 19, 0, 0, 0, 0, NYLocation),     // Juneteenth
		time.Date(year, time.July, 4, 0, 0, 0, 0, NYLocation),      // Independence Day
		time.Date(year, time.December, 25, 0, 0, 0, 0, NYLocation), // Christmas
		nthWeekday(year, time.January, time.Monday, 3),             // MLK Day
		nthWeekday(year, time.February, time.Monday, 3),            // Presidents Day
		nthWeekday(year, time.September, time.Monday, 1),           // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4),          // Thanksgiving
		lastWeekday(year, time.May, time.Monday),                   // Memorial Day
	}
	return days
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, NYLocation)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 7*(n-1))
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, NYLocation).AddDate(0, 0, -1)
	for d.Weekday() != weekday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// IsMarketHoliday reports whether the date falls on a US market holiday,
// including weekend-observed shifts.
func IsMarketHoliday(date time.Time) bool {
	y, m, d := date.Date()
	for _, h := range usHolidays(y) {
		observed := h
		switch h.Weekday() {
		case time.Saturday:
			observed = h.AddDate(0, 0, -1)
		case time.Sunday:
			observed = h.AddDate(0, 0, 1)
		}
		hy, hm, hd := observed.Date()
		if y == hy && m == hm && d == hd {
			return true
		}
	}
	return false
}

// IsTradingDay reports whether the date is a weekday and not a holiday.
func IsTradingDay(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsMarketHoliday(date)
}

// AddBusinessDays moves the date forward (or backward for negative n) by n
// trading days, skipping weekends and holidays.
func AddBusinessDays(date time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	d := date
	for n > 0 {
		d = d.AddDate(0, 0, step)
		if IsTradingDay(d) {
			n--
		}
	}
	return d
}

// NextWeekdayHour returns the first occurrence of the given weekday at the
// given hour strictly after the reference time.
func NextWeekdayHour(after time.Time, weekday time.Weekday, hour int) time.Time {
	t := time.Date(after.Year(), after.Month(), after.Day(), hour, 0, 0, 0, after.Location())
	for t.Weekday() != weekday || !t.After(after) {
		t = t.AddDate(0, 0, 1)
		t = time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	}
	return t
}
