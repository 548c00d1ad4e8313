package model

import (
	"fmt"
	"time"
)

// Month identifies one calendar month. It is stored as the first instant of
// the month at 00:00 UTC, which makes it usable as a natural key: two Month
// values for the same calendar month always compare equal.
type Month struct {
	t time.Time
}

// NewMonth creates a Month for the given year and calendar month.
func NewMonth(year int, month time.Month) Month {
	return Month{t: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// MonthOf returns the Month containing the given instant.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return NewMonth(u.Year(), u.Month())
}

// ParseMonth parses a "2006-01" formatted string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	if m.t.IsZero() {
		return time.Time{}
	}
	return m.t
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return Month{t: m.t.AddDate(0, 1, 0)}
}

// AddMonths returns the month n calendar months away (n may be negative).
func (m Month) AddMonths(n int) Month {
	return Month{t: m.t.AddDate(0, n, 0)}
}

// End returns the first instant of the following month. A transaction dated
// t belongs to m when !t.Before(m.Time()) && t.Before(m.End()).
func (m Month) End() time.Time {
	return m.Next().t
}

// Contains reports whether the instant falls inside the month.
func (m Month) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(m.t) && u.Before(m.End())
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.t.Before(other.t)
}

// After reports whether m is strictly later than other.
func (m Month) After(other Month) bool {
	return m.t.After(other.t)
}

// Equal reports whether both values identify the same calendar month.
func (m Month) Equal(other Month) bool {
	return m.t.Equal(other.t)
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.t.IsZero()
}

func (m Month) String() string {
	return m.t.Format("2006-01")
}
