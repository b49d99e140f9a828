// Package domain defines the shared types of the weather export pipeline:
// UTC calendar days, archive reading rows, and the static table of
// measurement fields with their physical quantities and units.
package domain

import (
	"fmt"
	"time"
)

// DayFormat is the textual form used for days in state files, file names,
// and command-line arguments.
const DayFormat = "20060102"

// DayLimit is the absolute earliest day the pipeline is willing to
// entertain. Anything parsed below this is treated as garbage.
var DayLimit = Day{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}

// Day is a UTC calendar day. The zero value is not a valid day; construct
// one with DayOf or ParseDay. The embedded time is always midnight UTC.
type Day struct {
	t time.Time
}

// DayOf returns the UTC day containing t.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return Day{time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYYMMDD string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{t}, nil
}

// Start returns the day's first instant (midnight UTC).
func (d Day) Start() time.Time { return d.t }

// End returns the first instant of the following day. A day's span is the
// half-open interval [Start, End).
func (d Day) End() time.Time { return d.t.AddDate(0, 0, 1) }

// Next returns the following calendar day.
func (d Day) Next() Day { return Day{d.t.AddDate(0, 0, 1)} }

// Prev returns the preceding calendar day.
func (d Day) Prev() Day { return Day{d.t.AddDate(0, 0, -1)} }

// MonthStart returns the first day of the month containing d.
func (d Day) MonthStart() Day {
	return Day{time.Date(d.t.Year(), d.t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same calendar day.
func (d Day) Equal(other Day) bool { return d.t.Equal(other.t) }

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d.t.IsZero() }

// Unix returns the epoch seconds of the day's start.
func (d Day) Unix() int64 { return d.t.Unix() }

// String formats the day as YYYYMMDD.
func (d Day) String() string { return d.t.Format(DayFormat) }
