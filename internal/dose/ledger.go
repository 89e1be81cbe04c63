// Package dose computes per-day medication adherence from scheduled and
// taken dose timestamps.
package dose

import (
	"time"

	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/timeutil"
)

// ScheduledToday returns the medication's scheduled dose times falling
// on now's calendar day.
func ScheduledToday(med models.Medication, now time.Time) []time.Time {
	return sameDayTimes(med.ScheduledTimes, now)
}

// TakenToday returns the medication's taken timestamps falling on now's
// calendar day.
func TakenToday(med models.Medication, now time.Time) []time.Time {
	return sameDayTimes(med.TakenTimes, now)
}

// CompletionRatio returns taken-doses divided by scheduled-doses for
// now's calendar day. Days with no scheduled dose (weekly frequencies on
// an off day) yield 0, never a division error. The ratio can exceed 1.0
// when more doses were taken than scheduled; callers surface that as an
// overdose signal rather than clamping it.
func CompletionRatio(med models.Medication, now time.Time) float64 {
	scheduled := ScheduledToday(med, now)
	if len(scheduled) == 0 {
		return 0
	}
	taken := TakenToday(med, now)
	return float64(len(taken)) / float64(len(scheduled))
}

// NextDoseTime returns the next scheduled dose strictly after now. When
// today's doses are exhausted it projects the earliest scheduled time on
// record onto tomorrow's date. The projection ignores weekly off days,
// so on a weekly schedule it may name a day with no actual dose.
func NextDoseTime(med models.Medication, now time.Time) *time.Time {
	for _, scheduled := range ScheduledToday(med, now) {
		if scheduled.After(now) {
			next := scheduled
			return &next
		}
	}

	earliest := earliestScheduled(med)
	if earliest == nil {
		return nil
	}

	tomorrow := timeutil.StartOfDay(now).AddDate(0, 0, 1)
	next := timeutil.AtHourMinute(tomorrow, earliest.Hour(), earliest.Minute())
	return &next
}

func sameDayTimes(times []time.Time, now time.Time) []time.Time {
	var matched []time.Time
	for _, t := range times {
		if timeutil.SameDay(now, t) {
			matched = append(matched, t)
		}
	}
	return matched
}

func earliestScheduled(med models.Medication) *time.Time {
	if len(med.ScheduledTimes) == 0 {
		return nil
	}
	earliest := med.ScheduledTimes[0]
	for _, t := range med.ScheduledTimes[1:] {
		if t.Before(earliest) {
			earliest = t
		}
	}
	return &earliest
}
