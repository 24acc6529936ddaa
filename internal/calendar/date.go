// internal/calendar/date.go
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a day/month/year triple is not a real
// Gregorian date.
var ErrInvalidDate = errors.New("invalid date")

const isoLayout = "2006-01-02"

// Date is an immutable calendar day.
type Date struct {
	day   int
	month int
	year  int
}

// New builds a Date, rejecting triples that do not exist on the calendar.
func New(day, month, year int) (Date, error) {
	if !isValidDate(day, month, year) {
		return Date{}, fmt.Errorf("%w: %d/%d/%d", ErrInvalidDate, day, month, year)
	}
	return Date{day: day, month: month, year: year}, nil
}

// MustNew is like New but panics on an invalid triple. Meant for literals.
func MustNew(day, month, year int) Date {
	d, err := New(day, month, year)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime truncates t to its calendar day.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{day: d, month: int(m), year: y}
}

func (d Date) Day() int   { return d.day }
func (d Date) Month() int { return d.month }
func (d Date) Year() int  { return d.year }

// IsZero reports whether d is the zero value, which is never a valid date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.year, time.Month(d.month), d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves d by n calendar days, crossing month and year ends.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) Equal(other Date) bool {
	return d == other
}

// InRange reports whether d lies within [start, end], both ends included.
func (d Date) InRange(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// DaysBetween is the absolute difference between the day numbers of d and
// other. Rental cost is computed from this value.
func (d Date) DaysBetween(other Date) int {
	diff := d.daysFromYearZero() - other.daysFromYearZero()
	if diff < 0 {
		return -diff
	}
	return diff
}

func (d Date) String() string {
	return fmt.Sprintf("%d/%d/%d", d.day, d.month, d.year)
}

// MarshalText renders d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(isoLayout, string(text))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	*d = FromTime(t)
	return nil
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (Date, error) {
	var d Date
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return Date{}, err
	}
	return d, nil
}

// daysFromYearZero accumulates whole years from year 0, then whole months of
// the current year, then the day of month.
func (d Date) daysFromYearZero() int {
	total := 0
	for y := 0; y < d.year; y++ {
		if isLeapYear(y) {
			total += 366
		} else {
			total += 365
		}
	}
	for m := 1; m < d.month; m++ {
		total += daysInMonth(m, d.year)
	}
	return total + d.day
}

func isValidDate(day, month, year int) bool {
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 {
		return false
	}
	return day <= daysInMonth(month, year)
}

func daysInMonth(month, year int) int {
	switch month {
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}
