package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/logger"
	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/streak"
	"github.com/averyhall/tend/internal/sweep"
	"github.com/averyhall/tend/internal/timeutil"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Done    HabitDoneCmd    `cmd:"" help:"Record progress on a habit."`
	Today   HabitTodayCmd   `cmd:"" help:"Show today's habit status."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit history."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Title       string   `arg:"" help:"Habit title."`
	Notes       string   `help:"Optional notes."`
	Frequency   string   `help:"Target period: daily, weekly, or monthly." default:"daily"`
	Target      int      `help:"Completions per period." default:"1"`
	Remind      string   `help:"Daily reminder time (HH:MM)."`
	RemindDates []string `help:"Explicit reminder dates (YYYY-MM-DD), instead of a daily reminder."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Store.GetHabitByTitle(c.Title); err == nil {
		return fmt.Errorf("habit with title %q already exists", c.Title)
	}

	now := ctx.Now()
	habit := models.Habit{
		ID:            uuid.New().String(),
		Title:         c.Title,
		Notes:         c.Notes,
		Frequency:     constants.HabitFrequency(c.Frequency),
		TargetCount:   c.Target,
		ReminderTime:  c.Remind,
		ReminderDates: c.RemindDates,
		CreatedAt:     now,
	}
	if err := habit.Validate(); err != nil {
		return err
	}

	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}
	fmt.Printf("Added habit: %s\n", c.Title)

	if habit.HasReminder() {
		scheduleHabitReminders(ctx, habit, now)
	}
	return nil
}

// scheduleHabitReminders hands the habit's expanded occurrences to the
// tray agent when notifications are on. Failure is non-fatal.
func scheduleHabitReminders(ctx *cli.Context, habit models.Habit, now time.Time) {
	settings, err := ctx.Settings()
	if err != nil || !settings.NotificationsEnabled {
		return
	}
	requests, err := sweep.HabitReminderRequests(habit, now)
	if err != nil {
		fmt.Printf("Warning: could not expand reminders: %v\n", err)
		return
	}
	if err := ctx.Scheduler.Schedule(requests); err != nil {
		fmt.Printf("Warning: could not schedule reminders: %v\n", err)
	}
}

type HabitListCmd struct {
	Deleted bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	habits, err := ctx.Store.GetAllHabits(c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		}
		fmt.Printf("%-24s %s, %d/%d this period, streak %s%s\n",
			habit.Title, habit.Frequency, habit.CurrentCount, habit.TargetCount,
			formatStreak(habit), status)
	}
	return nil
}

func formatStreak(habit models.Habit) string {
	if habit.CurrentStreak == 0 {
		return fmt.Sprintf("0 (best %d)", habit.LongestStreak)
	}
	return fmt.Sprintf("%d (best %d)", habit.CurrentStreak, habit.LongestStreak)
}

type HabitDoneCmd struct {
	Title string `arg:"" help:"Habit title."`
	Count int    `help:"Number of completions to record." default:"1"`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	habit, err := ctx.Store.GetHabitByTitle(c.Title)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Title)
	}
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1")
	}

	now := ctx.Now()
	today := timeutil.DayString(now)
	habit.CurrentCount += c.Count

	entry, entryErr := ctx.Store.GetHabitEntry(habit.ID, today)
	if entryErr != nil && !errors.Is(entryErr, storage.ErrNotFound) {
		return entryErr
	}
	newEntry := errors.Is(entryErr, storage.ErrNotFound)
	if newEntry {
		entry = models.HabitEntry{
			ID:        uuid.New().String(),
			HabitID:   habit.ID,
			Day:       today,
			CreatedAt: now,
		}
	}
	entry.UpdatedAt = now

	reachedTarget := !habit.Completed && habit.CurrentCount >= habit.TargetCount
	var streakGrew, newRecord bool
	if reachedTarget {
		habit.Completed = true
		entry.Completed = true
		completedAt := now
		entry.CompletedAt = &completedAt

		before := habit.CurrentStreak
		bestBefore := habit.LongestStreak
		updated := streak.Update(streak.State{
			Current:       habit.CurrentStreak,
			Longest:       habit.LongestStreak,
			LastCompleted: habit.LastCompleted,
		}, now)
		habit.CurrentStreak = updated.Current
		habit.LongestStreak = updated.Longest
		habit.LastCompleted = updated.LastCompleted
		streakGrew = updated.Current > before
		newRecord = updated.Longest > bestBefore
	}

	if newEntry {
		if err := ctx.Store.AddHabitEntry(entry); err != nil {
			return err
		}
	} else {
		if err := ctx.Store.UpdateHabitEntry(entry); err != nil {
			return err
		}
	}
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	fmt.Printf("%s: %d/%d", habit.Title, habit.CurrentCount, habit.TargetCount)
	if habit.Completed {
		fmt.Print(" ✓")
	}
	fmt.Println()

	if reachedTarget {
		settings, err := ctx.Settings()
		if err == nil && settings.StreakCelebrationEnabled && streakGrew {
			fmt.Printf("🔥 %d-day streak!", habit.CurrentStreak)
			if newRecord {
				fmt.Print(" New record!")
			}
			fmt.Println()
		}
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := timeutil.DayString(ctx.Now())
	fmt.Printf("Habits for %s:\n\n", today)

	completed := 0
	for _, habit := range habits {
		status := "[ ]"
		if habit.Completed {
			status = "[x]"
			completed++
		}
		fmt.Printf("%s %s (%d/%d, streak %s)\n",
			status, habit.Title, habit.CurrentCount, habit.TargetCount, formatStreak(habit))
	}
	fmt.Printf("\nCompleted: %d/%d\n", completed, len(habits))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for one habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	ctx.MaybeSweep()

	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return err
	}

	if c.Habit != "" {
		habit, err := ctx.Store.GetHabitByTitle(c.Habit)
		if err != nil {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		habits = []models.Habit{habit}
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	end := ctx.Now()
	start := end.AddDate(0, 0, -(c.Days - 1))

	const nameWidth = 20
	fmt.Printf("Habit log (last %d days):\n\n", c.Days)
	fmt.Print(padName("Habit", nameWidth))
	for i := 0; i < c.Days; i++ {
		fmt.Printf(" %5s", start.AddDate(0, 0, i).Format("01/02"))
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", nameWidth+6*c.Days))

	for _, habit := range habits {
		fmt.Print(padName(habit.Title, nameWidth))

		entries, err := ctx.Store.GetHabitEntriesForHabit(habit.ID,
			timeutil.DayString(start), timeutil.DayString(end))
		if err != nil {
			return err
		}
		doneDays := make(map[string]bool)
		for _, entry := range entries {
			if entry.Completed {
				doneDays[entry.Day] = true
			}
		}

		for i := 0; i < c.Days; i++ {
			day := timeutil.DayString(start.AddDate(0, 0, i))
			if doneDays[day] {
				fmt.Print("   x  ")
			} else {
				fmt.Print("   .  ")
			}
		}
		fmt.Println()
	}
	return nil
}

func padName(name string, width int) string {
	runes := []rune(name)
	if len(runes) > width {
		return string(runes[:width-3]) + "..."
	}
	return name + strings.Repeat(" ", width-len(runes))
}

type HabitDeleteCmd struct {
	Title string `arg:"" help:"Habit title."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabitByTitle(c.Title)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Title)
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	if habit.HasReminder() {
		cancelHabitReminders(ctx, habit)
	}
	fmt.Printf("Deleted habit: %s\n", c.Title)
	return nil
}

// cancelHabitReminders withdraws any occurrence the tray agent might
// still hold for this habit.
func cancelHabitReminders(ctx *cli.Context, habit models.Habit) {
	for day := 0; day < constants.HabitReminderHorizonDays; day++ {
		id := fmt.Sprintf("%s_daily_%d", habit.ID, day)
		if err := ctx.Scheduler.Cancel(id); err != nil {
			logger.Warn("failed to cancel reminder", "id", id, "error", err)
		}
	}
	for i := range habit.ReminderDates {
		id := fmt.Sprintf("%s_date_%d", habit.ID, i)
		if err := ctx.Scheduler.Cancel(id); err != nil {
			logger.Warn("failed to cancel reminder", "id", id, "error", err)
		}
	}
}

type HabitRestoreCmd struct {
	Title string `arg:"" help:"Title of the deleted habit."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}

	var target *models.Habit
	for i := range habits {
		if habits[i].Title == c.Title && habits[i].DeletedAt != nil {
			target = &habits[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no deleted habit with title %q", c.Title)
	}

	if err := ctx.Store.RestoreHabit(target.ID); err != nil {
		return err
	}
	fmt.Printf("Restored habit: %s\n", c.Title)
	return nil
}
