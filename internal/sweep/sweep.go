// Package sweep implements the daily auto-reset pass. The sweep is
// pull-based: commands that read day-scoped state call MaybeReset
// opportunistically, and if the app sits unused for days the first
// invocation after the gap catches up in one pass.
package sweep

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/logger"
	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/notify"
	"github.com/averyhall/tend/internal/recurrence"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/streak"
	"github.com/averyhall/tend/internal/timeutil"
)

// Result reports what one MaybeReset invocation did.
type Result struct {
	DidReset    bool
	ResetAt     time.Time
	Habits      int
	Medications int
}

// Sweeper runs the auto-reset pass against a store and reschedules
// reminders through the notification collaborator afterwards.
type Sweeper struct {
	Store     storage.Provider
	Scheduler notify.Scheduler
}

// New returns a Sweeper. A nil scheduler disables reminder rescheduling.
func New(store storage.Provider, scheduler notify.Scheduler) *Sweeper {
	if scheduler == nil {
		scheduler = notify.NopScheduler{}
	}
	return &Sweeper{Store: store, Scheduler: scheduler}
}

// ResetDue decides whether the daily reset should fire at `now`, given
// the instant of the previous reset (nil when no reset has ever run)
// and the configured HH:MM reset time-of-day.
//
// A reset on a new calendar day fires once `now` passes the configured
// time. A second reset on the same day fires only when the previous one
// happened before today's configured instant, which covers the user
// moving the reset time later after a reset already ran.
func ResetDue(now time.Time, lastReset *time.Time, autoResetTime string) (bool, error) {
	if autoResetTime == "" {
		autoResetTime = constants.DefaultAutoResetTime
	}
	todayResetInstant, err := timeutil.CombineDayAndClock(now, autoResetTime)
	if err != nil {
		return false, fmt.Errorf("invalid auto-reset time %q: %w", autoResetTime, err)
	}

	isPastResetTime := !now.Before(todayResetInstant)
	if lastReset == nil {
		return isPastResetTime, nil
	}

	if !timeutil.SameDay(now, *lastReset) {
		return isPastResetTime, nil
	}
	return isPastResetTime && lastReset.Before(todayResetInstant), nil
}

// MaybeReset checks whether the daily reset is due and, if so, performs
// it: every habit gets an uncompleted entry for today, its period
// counters zeroed and its streak decayed if a day was missed; every
// active medication gets its schedule window regenerated; water intake
// rolls over to the new day. The whole outcome is persisted in one
// transaction, so re-invoking after a failure repeats the sweep cleanly.
func (s *Sweeper) MaybeReset(now time.Time, settings models.Settings) (Result, error) {
	lastReset, err := s.lastResetAt()
	if err != nil {
		return Result{}, err
	}

	due, err := ResetDue(now, lastReset, settings.AutoResetTime)
	if err != nil {
		return Result{}, err
	}
	if !due {
		return Result{DidReset: false}, nil
	}

	habits, err := s.Store.GetAllHabits(false)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load habits for reset: %w", err)
	}
	meds, err := s.Store.GetAllMedications(false, false)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load medications for reset: %w", err)
	}

	today := timeutil.DayString(now)
	pass := storage.ResetSweep{State: map[string]string{}}

	for _, habit := range habits {
		_, err := s.Store.GetHabitEntry(habit.ID, today)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			pass.Entries = append(pass.Entries, models.HabitEntry{
				ID:        uuid.New().String(),
				HabitID:   habit.ID,
				Day:       today,
				Completed: false,
				CreatedAt: now,
				UpdatedAt: now,
			})
		case err != nil:
			return Result{}, fmt.Errorf("failed to load today's entry for habit %s: %w", habit.ID, err)
		}

		decayed := streak.ResetIfNeeded(streak.State{
			Current:       habit.CurrentStreak,
			Longest:       habit.LongestStreak,
			LastCompleted: habit.LastCompleted,
		}, now)
		habit.CurrentStreak = decayed.Current
		habit.LongestStreak = decayed.Longest
		habit.CurrentCount = 0
		habit.Completed = false
		pass.Habits = append(pass.Habits, habit)
	}

	for _, med := range meds {
		occurrences, err := recurrence.ExpandMedication(med.ID, med.Frequency, med.ReminderTime,
			now, constants.MedicationReminderHorizonDays)
		if err != nil {
			logger.Warn("skipping schedule regeneration for medication", "id", med.ID, "error", err)
			continue
		}
		med.ScheduledTimes = occurrenceTimes(occurrences)
		pass.Medications = append(pass.Medications, med)
	}

	pass.State[constants.StateLastResetAt] = storage.FormatTime(now)
	pass.State[constants.StateWaterCount] = "0"
	pass.State[constants.StateWaterDay] = today

	if err := s.Store.ApplyResetSweep(pass); err != nil {
		return Result{}, fmt.Errorf("reset sweep failed: %w", err)
	}

	if settings.NotificationsEnabled {
		s.rescheduleReminders(pass.Habits, pass.Medications, now)
	}

	logger.Info("daily reset performed", "at", now.Format(time.RFC3339),
		"habits", len(pass.Habits), "medications", len(pass.Medications))
	return Result{
		DidReset:    true,
		ResetAt:     now,
		Habits:      len(pass.Habits),
		Medications: len(pass.Medications),
	}, nil
}

func (s *Sweeper) lastResetAt() (*time.Time, error) {
	raw, err := s.Store.GetState(constants.StateLastResetAt)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last reset time: %w", err)
	}
	t, err := storage.ParseTime(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt last reset time %q: %w", raw, err)
	}
	return &t, nil
}

// rescheduleReminders resubmits every reminder occurrence for the new
// day. Delivery is fire-and-forget: a scheduler failure is logged and
// the sweep result stands.
func (s *Sweeper) rescheduleReminders(habits []models.Habit, meds []models.Medication, now time.Time) {
	var requests []notify.Request
	for _, habit := range habits {
		reqs, err := HabitReminderRequests(habit, now)
		if err != nil {
			logger.Warn("skipping reminders for habit", "id", habit.ID, "error", err)
			continue
		}
		requests = append(requests, reqs...)
	}
	for _, med := range meds {
		requests = append(requests, MedicationReminderRequests(med)...)
	}
	if len(requests) == 0 {
		return
	}
	if err := s.Scheduler.Schedule(requests); err != nil {
		logger.Warn("failed to schedule reminders", "count", len(requests), "error", err)
	}
}

// HabitReminderRequests expands a habit's reminder configuration into
// delivery requests. Explicit reminder dates take the configured
// time-of-day (or the default), a daily reminder time covers the
// rolling horizon.
func HabitReminderRequests(habit models.Habit, now time.Time) ([]notify.Request, error) {
	if !habit.HasReminder() {
		return nil, nil
	}

	var occurrences []recurrence.Occurrence
	if len(habit.ReminderDates) > 0 {
		occs, err := recurrence.ExpandDates(habit.ID, habit.ReminderDates, habit.ReminderTime, now)
		if err != nil {
			return nil, err
		}
		occurrences = occs
	} else {
		occs, err := recurrence.ExpandDaily(habit.ID, habit.ReminderTime, now,
			constants.HabitReminderHorizonDays)
		if err != nil {
			return nil, err
		}
		occurrences = occs
	}

	requests := make([]notify.Request, 0, len(occurrences))
	for _, occ := range occurrences {
		requests = append(requests, notify.Request{
			OccurrenceID: occ.ID,
			TriggerAt:    occ.Time,
			Title:        habit.Title,
			Body:         fmt.Sprintf("Time to work on %s", habit.Title),
			Category:     constants.CategoryHabit,
		})
	}
	return requests, nil
}

// MedicationReminderRequests builds delivery requests from a
// medication's already-expanded schedule window.
func MedicationReminderRequests(med models.Medication) []notify.Request {
	requests := make([]notify.Request, 0, len(med.ScheduledTimes))
	for _, t := range med.ScheduledTimes {
		requests = append(requests, notify.Request{
			OccurrenceID: fmt.Sprintf("%s_%d", med.ID, t.Unix()),
			TriggerAt:    t,
			Title:        med.Name,
			Body:         fmt.Sprintf("Time to take %s (%s)", med.Name, med.Dosage),
			Category:     constants.CategoryMedication,
		})
	}
	return requests
}

func occurrenceTimes(occurrences []recurrence.Occurrence) []time.Time {
	times := make([]time.Time, 0, len(occurrences))
	for _, occ := range occurrences {
		times = append(times, occ.Time)
	}
	return times
}
