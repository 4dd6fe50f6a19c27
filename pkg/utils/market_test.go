package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nyDate(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, NYLocation)
}

func TestIsTradingDay(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"regular weekday", nyDate(2026, time.March, 3, 10), true},
		{"saturday", nyDate(2026, time.March, 7, 10), false},
		{"sunday", nyDate(2026, time.March, 8, 10), false},
		{"christmas", nyDate(2026, time.December, 25, 10), false},
		{"july 4 observed friday", nyDate(2026, time.July, 3, 10), false}, // July 4 2026 is a Saturday
		{"thanksgiving", nyDate(2026, time.November, 26, 10), false},
		{"mlk day", nyDate(2026, time.January, 19, 10), false},
		{"memorial day", nyDate(2026, time.May, 25, 10), false},
		{"day after christmas", nyDate(2026, time.December, 28, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTradingDay(tt.date))
		})
	}
}

func TestAddBusinessDays(t *testing.T) {
	// Friday + 1 business day lands on Monday.
	friday := nyDate(2026, time.March, 6, 0)
	assert.Equal(t, nyDate(2026, time.March, 9, 0), AddBusinessDays(friday, 1))

	// Monday - 1 business day lands on the prior Friday.
	monday := nyDate(2026, time.March, 9, 0)
	assert.Equal(t, friday, AddBusinessDays(monday, -1))

	// Zero is the identity.
	assert.Equal(t, friday, AddBusinessDays(friday, 0))

	// Crossing a holiday: Wednesday Dec 23 2026 + 2 business days skips
	// Christmas Friday and the weekend.
	wednesday := nyDate(2026, time.December, 23, 0)
	assert.Equal(t, nyDate(2026, time.December, 28, 0), AddBusinessDays(wednesday, 2))
}

func TestNextWeekdayHour(t *testing.T) {
	// Monday 2026-03-02 16:00 -> the coming Friday 15:00 is March 6.
	monday := nyDate(2026, time.March, 2, 16)
	got := NextWeekdayHour(monday, time.Friday, 15)
	assert.Equal(t, nyDate(2026, time.March, 6, 15), got)

	// Strictly after: from Friday 15:00 exactly, the next one is a week out.
	friday := nyDate(2026, time.March, 6, 15)
	assert.Equal(t, nyDate(2026, time.March, 13, 15), NextWeekdayHour(friday, time.Friday, 15))

	// From Friday 14:00 the same day still qualifies.
	earlier := nyDate(2026, time.March, 6, 14)
	assert.Equal(t, friday, NextWeekdayHour(earlier, time.Friday, 15))
}
