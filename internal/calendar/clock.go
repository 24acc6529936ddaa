// internal/calendar/clock.go
package calendar

import "time"

// Clock is the simulated "today" of the system. It starts at a fixed day and
// only moves forward when an administrator advances it.
type Clock struct {
	start       Date
	daysElapsed int
}

// NewClock starts a clock on the calendar day of start.
func NewClock(start time.Time) *Clock {
	return &Clock{start: FromTime(start)}
}

// NewClockAt starts a clock on an explicit date.
func NewClockAt(start Date) *Clock {
	return &Clock{start: start}
}

// AdvanceDay moves the clock forward by n days.
func (c *Clock) AdvanceDay(n int) {
	c.daysElapsed += n
}

// Today returns the start date plus the elapsed days.
func (c *Clock) Today() Date {
	return c.start.AddDays(c.daysElapsed)
}

func (c *Clock) StartDate() Date {
	return c.start
}

func (c *Clock) DaysElapsed() int {
	return c.daysElapsed
}
