// Package timewindow provides day-of-week and minute-of-day arithmetic for the
// weekly timetable.
//
// All comparisons are same-day: a window whose end is numerically before its
// start (for example 23:00-01:00) is not wrapped into the next day and simply
// never contains any minute.
package timewindow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the exclusive upper bound of a Minute.
const MinutesPerDay = 24 * 60

var (
	// ErrInvalidClock is returned when a time of day is not in HH:MM form.
	ErrInvalidClock = errors.New("timewindow: invalid time of day")
	// ErrInvalidDay is returned when a day name is not one of the seven weekdays.
	ErrInvalidDay = errors.New("timewindow: invalid day name")
)

// Minute is a canonical minute of day in [0, 1440).
type Minute int

// ParseClock converts an "HH:MM" 24h string into a Minute. A single digit hour
// ("9:05") is accepted.
func ParseClock(value string) (Minute, error) {
	value = strings.TrimSpace(value)
	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok || len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Minute(hour*60 + minute), nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(value string) Minute {
	m, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return m
}

// MinuteOf returns the minute of day of t in t's own location.
func MinuteOf(t time.Time) Minute {
	return Minute(t.Hour()*60 + t.Minute())
}

// AddHours shifts m by the given number of hours, wrapping modulo one day.
func (m Minute) AddHours(hours int) Minute {
	shifted := (int(m) + hours*60) % MinutesPerDay
	if shifted < 0 {
		shifted += MinutesPerDay
	}
	return Minute(shifted)
}

// String renders the minute as zero padded "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// DayName returns the English weekday name of t ("Monday", ...), which is the
// form stored on sessions.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// ParseDay resolves a weekday name case-insensitively and returns its
// canonical spelling.
func ParseDay(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), trimmed) {
			return day.String(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, value)
}

// Window is a same-day [Start, End) interval.
type Window struct {
	Start Minute
	End   Minute
}

// ParseWindow parses a start and end "HH:MM" pair.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// Contains reports whether Start <= m < End.
func (w Window) Contains(m Minute) bool {
	return w.Start <= m && m < w.End
}

// Overlaps reports whether two windows share at least one minute.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// Minutes is End - Start, negative for inverted windows.
func (w Window) Minutes() int {
	return int(w.End) - int(w.Start)
}
