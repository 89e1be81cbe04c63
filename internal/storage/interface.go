package storage

import (
	"errors"
	"time"

	"github.com/averyhall/tend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ResetSweep is the outcome of one auto-reset pass, persisted atomically
// so a crash mid-sweep never leaves some habits zeroed and others not.
type ResetSweep struct {
	Habits      []models.Habit      // habits with counters zeroed and streaks decayed
	Entries     []models.HabitEntry // today-entries created or touched by the sweep
	Medications []models.Medication // medications with regenerated schedule windows
	State       map[string]string   // app-state updates, including last_reset_at
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// App state (derived values, not user preference)
	GetState(key string) (string, error)
	SetState(key, value string) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByTitle(title string) (models.Habit, error)
	GetAllHabits(includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Habit entries (one per habit per calendar day)
	AddHabitEntry(models.HabitEntry) error
	GetHabitEntry(habitID, day string) (models.HabitEntry, error)
	GetHabitEntriesForDay(day string) ([]models.HabitEntry, error)
	GetHabitEntriesForHabit(habitID, startDay, endDay string) ([]models.HabitEntry, error)
	UpdateHabitEntry(models.HabitEntry) error

	// Medications
	AddMedication(models.Medication) error
	GetMedication(id string) (models.Medication, error)
	GetMedicationByName(name string) (models.Medication, error)
	GetAllMedications(includeInactive, includeDeleted bool) ([]models.Medication, error)
	UpdateMedication(models.Medication) error
	DeleteMedication(id string) error

	// ApplyResetSweep persists everything a due auto-reset produced in a
	// single transaction.
	ApplyResetSweep(sweep ResetSweep) error

	// Utils
	GetConfigPath() string
}

// FormatTime renders a timestamp the way every backend stores it.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
