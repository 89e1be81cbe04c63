package models

import (
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/constants"
)

// Habit represents a recurring practice with a per-period target
type Habit struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Notes         string                   `json:"notes,omitempty"`
	Frequency     constants.HabitFrequency `json:"frequency"`
	TargetCount   int                      `json:"target_count"`
	CurrentCount  int                      `json:"current_count"`
	Completed     bool                     `json:"completed"`
	ReminderTime  string                   `json:"reminder_time,omitempty"`  // HH:MM format, empty when no daily reminder
	ReminderDates []string                 `json:"reminder_dates,omitempty"` // YYYY-MM-DD explicit reminder dates
	CurrentStreak int                      `json:"current_streak"`
	LongestStreak int                      `json:"longest_streak"`
	LastCompleted *time.Time               `json:"last_completed,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	DeletedAt     *time.Time               `json:"deleted_at,omitempty"`
}

func (h *Habit) Validate() error {
	if h.Title == "" {
		return fmt.Errorf("habit title cannot be empty")
	}

	switch h.Frequency {
	case constants.HabitDaily, constants.HabitWeekly, constants.HabitMonthly:
	default:
		return fmt.Errorf("invalid frequency %q (expected daily, weekly, or monthly)", h.Frequency)
	}

	if h.TargetCount < 1 {
		return fmt.Errorf("target count must be at least 1")
	}

	if h.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, h.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time format (expected HH:MM): %w", err)
		}
	}

	for _, d := range h.ReminderDates {
		if _, err := time.Parse(constants.DateFormat, d); err != nil {
			return fmt.Errorf("invalid reminder date %q (expected YYYY-MM-DD): %w", d, err)
		}
	}

	if h.CurrentStreak < 0 || h.LongestStreak < 0 {
		return fmt.Errorf("streak counters cannot be negative")
	}
	if h.LongestStreak < h.CurrentStreak {
		return fmt.Errorf("longest streak %d cannot be below current streak %d", h.LongestStreak, h.CurrentStreak)
	}

	return nil
}

// HasReminder reports whether any reminder configuration is set
func (h *Habit) HasReminder() bool {
	return h.ReminderTime != "" || len(h.ReminderDates) > 0
}

// HabitEntry represents a single day's completion record for a habit.
// At most one entry exists per (habit, day).
type HabitEntry struct {
	ID          string     `json:"id"`
	HabitID     string     `json:"habit_id"`
	Day         string     `json:"day"` // YYYY-MM-DD format
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
