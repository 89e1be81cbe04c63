package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/backup"
	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/storage/sqlite"
	"github.com/averyhall/tend/internal/timeutil"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	if dbReachable {
		if err := checkSettings(ctx); err != nil {
			fmt.Printf("❌ Settings: FAIL\n   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings: OK\n")
		}

		if err := checkHabitIntegrity(ctx); err != nil {
			fmt.Printf("❌ Habit integrity: FAIL\n   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Habit integrity: OK\n")
		}

		if err := checkMedicationSchedules(ctx); err != nil {
			fmt.Printf("⚠ Medication schedules: WARNING\n   %v\n", err)
		} else {
			fmt.Printf("✓ Medication schedules: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings: SKIPPED (database not reachable)\n")
		fmt.Printf("⊘ Habit integrity: SKIPPED (database not reachable)\n")
		fmt.Printf("⊘ Medication schedules: SKIPPED (database not reachable)\n")
	}

	// Backups only apply to the SQLite backend.
	if _, ok := ctx.Store.(*sqlite.Store); ok {
		if err := checkBackupsPresent(ctx); err != nil {
			fmt.Printf("⚠ Backups present: WARNING\n   %v\n", err)
		} else {
			fmt.Printf("✓ Backups present: OK\n")
		}
	}

	if err := checkClockSanity(ctx, dbReachable); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if settings.AutoResetTime != "" && !timeutil.ValidateTimeFormat(settings.AutoResetTime) {
		return fmt.Errorf("auto-reset time %q is not HH:MM", settings.AutoResetTime)
	}
	if !timeutil.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("timezone %q is not a valid IANA zone", settings.Timezone)
	}
	return nil
}

func checkHabitIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}
	for _, habit := range habits {
		if habit.CurrentStreak < 0 || habit.LongestStreak < 0 {
			return fmt.Errorf("habit %q has a negative streak counter", habit.Title)
		}
		if habit.LongestStreak < habit.CurrentStreak {
			return fmt.Errorf("habit %q: longest streak %d below current streak %d",
				habit.Title, habit.LongestStreak, habit.CurrentStreak)
		}
		if habit.Completed && habit.CurrentCount < habit.TargetCount {
			return fmt.Errorf("habit %q marked completed at %d/%d",
				habit.Title, habit.CurrentCount, habit.TargetCount)
		}
	}
	return nil
}

func checkMedicationSchedules(ctx *cli.Context) error {
	meds, err := ctx.Store.GetAllMedications(false, false)
	if err != nil {
		return err
	}
	for _, med := range meds {
		if len(med.ScheduledTimes) == 0 {
			return fmt.Errorf("active medication %q has an empty schedule window (run 'tend sweep')", med.Name)
		}
		switch med.Frequency {
		case constants.MedOnceDaily, constants.MedTwiceDaily, constants.MedThriceDaily:
			expected := med.DosesPerDay() * constants.MedicationReminderHorizonDays
			if len(med.ScheduledTimes) != expected {
				return fmt.Errorf("medication %q has %d scheduled doses, expected %d (run 'tend sweep')",
					med.Name, len(med.ScheduledTimes), expected)
			}
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider running 'tend backup create'")
	}
	newest := backups[0].Timestamp
	if time.Since(newest) > 7*24*time.Hour {
		return fmt.Errorf("newest backup is older than a week (%s)", newest.Format("2006-01-02"))
	}
	return nil
}

func checkClockSanity(ctx *cli.Context, dbReachable bool) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reports %s, which looks wrong", now.Format(time.RFC3339))
	}
	if !dbReachable {
		return nil
	}

	// A last-reset timestamp in the future means the clock moved backward.
	lastReset, err := lastResetInstant(ctx)
	if err != nil || lastReset == nil {
		return nil
	}
	if lastReset.After(now.Add(time.Hour)) {
		return fmt.Errorf("last reset recorded in the future (%s); the system clock may have moved backward",
			lastReset.Format(time.RFC3339))
	}
	return nil
}

func lastResetInstant(ctx *cli.Context) (*time.Time, error) {
	raw, err := ctx.Store.GetState(constants.StateLastResetAt)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := storage.ParseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
