// Package earnings provides the earnings-calendar collaborator used by the
// rotation manager to force positions closed ahead of report dates.
package earnings

import (
	"sync"
	"time"

	"swing-trader/pkg/utils"
)

// Calendar is the capability contract the rotation manager calls through.
// A nil Calendar is valid and means no earnings constraints apply.
type Calendar interface {
	// ShouldForceClose reports whether a held position in symbol must be
	// closed on the given date because earnings are imminent.
	ShouldForceClose(symbol string, date time.Time) bool
	// IsBlackout reports whether new entries in symbol are blocked on the
	// given date.
	IsBlackout(symbol string, date time.Time) bool
}

const (
	// forceCloseBusinessDays is the E-3 rule: positions are closed three
	// business days before the report.
	forceCloseBusinessDays = 3
	// blackoutBusinessDays blocks new entries five business days out.
	blackoutBusinessDays = 5
)

// MemoryCalendar is an in-memory Calendar fed with known report dates.
type MemoryCalendar struct {
	mu      sync.RWMutex
	reports map[string][]time.Time
}

// NewMemoryCalendar creates an empty calendar.
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{reports: make(map[string][]time.Time)}
}

// SetReportDates replaces the known report dates for a symbol.
func (c *MemoryCalendar) SetReportDates(symbol string, dates []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]time.Time, len(dates))
	copy(copied, dates)
	c.reports[symbol] = copied
}

// ShouldForceClose implements the E-3 business-day rule: true from three
// business days before a report through the report date itself.
func (c *MemoryCalendar) ShouldForceClose(symbol string, date time.Time) bool {
	return c.within(symbol, date, forceCloseBusinessDays)
}

// IsBlackout blocks entries from five business days before a report
// through the report date.
func (c *MemoryCalendar) IsBlackout(symbol string, date time.Time) bool {
	return c.within(symbol, date, blackoutBusinessDays)
}

func (c *MemoryCalendar) within(symbol string, date time.Time, businessDays int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	day := truncateToDay(date)
	for _, report := range c.reports[symbol] {
		reportDay := truncateToDay(report)
		windowStart := utils.AddBusinessDays(reportDay, -businessDays)
		if !day.Before(windowStart) && !day.After(reportDay) {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
