package model

import (
	"fmt"
	"time"
)

// dateFormat is the canonical wire format for calendar days.
const dateFormat = "2006-01-02"

// Date is a calendar day anchored at midnight in a fixed location. All date
// arithmetic in the ledger goes through this type; comparisons are
// day-granular, so two Dates in different locations naming the same calendar
// day are equal.
type Date struct {
	t time.Time
}

// NewDate returns the Date for the given calendar day in the local location.
// Out-of-range values normalize the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates t to the calendar day it falls on, in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseDate parses a "2006-01-02" string into a local-midnight Date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateFormat, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{t}, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month.
func (d Date) Day() int { return d.t.Day() }

// Weekday returns the day of the week (Sunday = 0).
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// StartOfDay returns midnight at the start of the day.
func (d Date) StartOfDay() time.Time { return d.t }

// EndOfDay returns the last representable instant of the day.
func (d Date) EndOfDay() time.Time {
	return d.t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// AddDays returns the Date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.t.AddDate(0, 0, n))
}

// ymd collapses the day into an ordering key so that comparisons ignore
// location and time of day.
func (d Date) ymd() int {
	return d.t.Year()*10000 + int(d.t.Month())*100 + d.t.Day()
}

// Equal reports whether d and o name the same calendar day.
func (d Date) Equal(o Date) bool { return d.ymd() == o.ymd() }

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool { return d.ymd() < o.ymd() }

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool { return d.ymd() > o.ymd() }

// String formats the day as "2006-01-02".
func (d Date) String() string { return d.t.Format(dateFormat) }

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
