// Package recurrence expands reminder configurations into concrete,
// identifier-keyed trigger times for the notification collaborator.
package recurrence

import (
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/timeutil"
)

// Occurrence is one concrete instance of a recurring reminder. The ID is
// stable across re-expansions so the tray agent can cancel or dedupe by
// identifier.
type Occurrence struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

// Multi-dose slot hours. The configured reminder's minute-of-hour is
// preserved across every synthesized slot hour.
var (
	twiceDailyHours  = []int{8, 20}
	thriceDailyHours = []int{8, 14, 20}

	twiceWeeklyDays  = []time.Weekday{time.Monday, time.Thursday}
	thriceWeeklyDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
)

// ExpandDaily expands a daily time-of-day reminder into one occurrence
// per day over the horizon, day-indexed from today. Today's slot is
// emitted even when its time has already passed; consumers dedupe by
// identifier, not by time comparison.
func ExpandDaily(habitID, timeOfDay string, now time.Time, horizonDays int) ([]Occurrence, error) {
	if timeOfDay == "" {
		timeOfDay = constants.DefaultReminderTime
	}
	hour, minute, err := timeutil.ParseClock(timeOfDay)
	if err != nil {
		return nil, err
	}

	occurrences := make([]Occurrence, 0, horizonDays)
	start := timeutil.StartOfDay(now)
	for day := 0; day < horizonDays; day++ {
		trigger := timeutil.AtHourMinute(start.AddDate(0, 0, day), hour, minute)
		occurrences = append(occurrences, Occurrence{
			ID:   fmt.Sprintf("%s_daily_%d", habitID, day),
			Time: trigger,
		})
	}
	return occurrences, nil
}

// ExpandDates expands an explicit set of reminder dates. Dates whose
// trigger instant is at or before now are silently skipped; the
// occurrence index follows the position in the configured set so that
// identifiers stay stable as past dates age out.
func ExpandDates(habitID string, dates []string, timeOfDay string, now time.Time) ([]Occurrence, error) {
	if timeOfDay == "" {
		timeOfDay = constants.DefaultReminderTime
	}
	hour, minute, err := timeutil.ParseClock(timeOfDay)
	if err != nil {
		return nil, err
	}

	var occurrences []Occurrence
	for i, dateStr := range dates {
		day, err := timeutil.ParseDay(dateStr, now.Location())
		if err != nil {
			return nil, fmt.Errorf("reminder date %q: %w", dateStr, err)
		}
		trigger := timeutil.AtHourMinute(day, hour, minute)
		if !trigger.After(now) {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			ID:   fmt.Sprintf("%s_date_%d", habitID, i),
			Time: trigger,
		})
	}
	return occurrences, nil
}

// ExpandMedication expands a medication frequency into dose triggers
// over the horizon. Daily frequencies synthesize fixed slot hours with
// the configured reminder's minute; weekly frequencies fire on fixed
// weekdays at hour 8. Identifiers are keyed by unix timestamp because
// medication schedules are regenerated wholesale, not incrementally.
func ExpandMedication(medicationID string, frequency constants.MedicationFrequency, timeOfDay string, now time.Time, horizonDays int) ([]Occurrence, error) {
	if timeOfDay == "" {
		timeOfDay = constants.DefaultReminderTime
	}
	baseHour, baseMinute, err := timeutil.ParseClock(timeOfDay)
	if err != nil {
		return nil, err
	}

	var occurrences []Occurrence
	emit := func(trigger time.Time) {
		occurrences = append(occurrences, Occurrence{
			ID:   fmt.Sprintf("%s_%d", medicationID, trigger.Unix()),
			Time: trigger,
		})
	}

	start := timeutil.StartOfDay(now)
	for dayOffset := 0; dayOffset < horizonDays; dayOffset++ {
		day := start.AddDate(0, 0, dayOffset)

		switch frequency {
		case constants.MedOnceDaily:
			emit(timeutil.AtHourMinute(day, baseHour, baseMinute))
		case constants.MedTwiceDaily:
			for _, hour := range twiceDailyHours {
				emit(timeutil.AtHourMinute(day, hour, baseMinute))
			}
		case constants.MedThriceDaily:
			for _, hour := range thriceDailyHours {
				emit(timeutil.AtHourMinute(day, hour, baseMinute))
			}
		case constants.MedTwiceWeekly:
			if weekdayIn(day.Weekday(), twiceWeeklyDays) {
				emit(timeutil.AtHourMinute(day, 8, baseMinute))
			}
		case constants.MedThriceWeekly:
			if weekdayIn(day.Weekday(), thriceWeeklyDays) {
				emit(timeutil.AtHourMinute(day, 8, baseMinute))
			}
		default:
			return nil, fmt.Errorf("invalid medication frequency %q", frequency)
		}
	}
	return occurrences, nil
}

func weekdayIn(wd time.Weekday, set []time.Weekday) bool {
	for _, candidate := range set {
		if wd == candidate {
			return true
		}
	}
	return false
}
