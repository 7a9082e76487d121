// Package timeslot is the pure scheduling core shared by ministry and
// safety-team schedules: calendar dates, clock times, the booking status
// machine, and the overlap conflict detector. It performs no I/O; callers
// fetch candidate bookings with a single ranged query and pass them in.
package timeslot

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange is returned when a start time is not strictly before
	// its end time.
	ErrInvalidRange = errors.New("start time must be before end time")
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidClock is returned when a time string is not HH:MM.
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")
)

// Date is a plain calendar date with no timezone attached. Bookings are
// compared on the wall-calendar day they were entered for, so carrying a
// timezone around would only invite off-by-one drift between clients.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf extracts the calendar date from t, ignoring clock and location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time converts the date to a midnight UTC timestamp for storage.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// ParseClock parses an HH:MM wall-clock time into minutes since midnight.
// 24:00 is not a valid clock time; overnight ranges are rejected upstream
// because their start would not precede their end.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
