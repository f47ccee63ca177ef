package core

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in a specific year, printed as YYYY-MM.
//
// Month membership is always decided on calendar fields (year and month),
// never on day-count windows, so 28, 29, 30 and 31 day months behave alike.
type Month struct {
	year  int
	month time.Month
}

// NewMonth returns the Month for year and month.
func NewMonth(year int, month time.Month) Month {
	// Normalise out-of-range months (e.g. 13 -> January next year).
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{year: t.Year(), month: t.Month()}
}

// MonthOf returns the Month in which t occurs, in t's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return Month{year: year, month: month}
}

// ParseMonth parses a "YYYY-MM" label.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// MustParseMonth is ParseMonth for fixtures.
func MustParseMonth(s string) Month {
	m, err := ParseMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Month) Year() int          { return m.year }
func (m Month) Month() time.Month  { return m.month }
func (m Month) IsZero() bool       { return m.year == 0 && m.month == 0 }
func (m Month) Equal(n Month) bool { return m == n }

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.year, m.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.year, m.month+time.Month(n))
}

// Before reports whether m is earlier than n.
func (m Month) Before(n Month) bool {
	if m.year != n.year {
		return m.year < n.year
	}
	return m.month < n.month
}

// After reports whether m is later than n.
func (m Month) After(n Month) bool {
	return n.Before(m)
}

// Contains reports whether the time instant falls in the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.year && t.Month() == m.month
}

// MonthRange lists every month from..to inclusive in chronological order.
// It returns nil when to is before from.
func MonthRange(from, to Month) []Month {
	if to.Before(from) {
		return nil
	}
	var out []Month
	for m := from; !m.After(to); m = m.AddMonths(1) {
		out = append(out, m)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value leaves
// the zero Month.
func (m *Month) UnmarshalText(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
