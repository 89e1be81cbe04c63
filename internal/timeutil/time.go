package timeutil

import (
	"fmt"
	"math"
	"time"

	"github.com/averyhall/tend/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
// (compared in a's location).
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DayDiff returns the number of calendar-day boundaries between from and
// to. Positive when to is after from, negative when the clock has moved
// backward past a boundary. Sub-day differences within the same calendar
// day yield 0 regardless of the hours involved. Rounding absorbs the
// 23- and 25-hour days that DST transitions produce.
func DayDiff(from, to time.Time) int {
	fromDay := StartOfDay(from)
	toDay := StartOfDay(to.In(from.Location()))
	return int(math.Round(toDay.Sub(fromDay).Hours() / 24))
}

// DayString formats t as YYYY-MM-DD.
func DayString(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDay parses a YYYY-MM-DD string into midnight of that day in loc.
func ParseDay(dayStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseClock parses an HH:MM string and returns the hour and minute.
func ParseClock(timeStr string) (hour, minute int, err error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	return t.Hour(), t.Minute(), nil
}

// CombineDayAndClock returns the instant on day's calendar date at the
// given HH:MM time-of-day, in day's location.
func CombineDayAndClock(day time.Time, timeStr string) (time.Time, error) {
	hour, minute, err := ParseClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// AtHourMinute returns the instant on day's calendar date with the given
// hour and minute, in day's location.
func AtHourMinute(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateDateFormat checks if the string matches the standard date format.
func ValidateDateFormat(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
