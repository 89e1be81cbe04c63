package models

import (
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/constants"
)

// Medication represents a tracked medication with a pre-expanded rolling
// window of scheduled dose times and an append-only taken log.
type Medication struct {
	ID             string                        `json:"id"`
	Name           string                        `json:"name"`
	Dosage         string                        `json:"dosage"`
	Frequency      constants.MedicationFrequency `json:"frequency"`
	ReminderTime   string                        `json:"reminder_time"` // HH:MM base time-of-day for expansion
	ScheduledTimes []time.Time                   `json:"scheduled_times"`
	TakenTimes     []time.Time                   `json:"taken_times"`
	Active         bool                          `json:"active"`
	CreatedAt      time.Time                     `json:"created_at"`
	DeletedAt      *time.Time                    `json:"deleted_at,omitempty"`
}

func (m *Medication) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("medication name cannot be empty")
	}

	switch m.Frequency {
	case constants.MedOnceDaily, constants.MedTwiceDaily, constants.MedThriceDaily,
		constants.MedTwiceWeekly, constants.MedThriceWeekly:
	default:
		return fmt.Errorf("invalid medication frequency %q", m.Frequency)
	}

	if m.ReminderTime != "" {
		if _, err := time.Parse(constants.TimeFormat, m.ReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time format (expected HH:MM): %w", err)
		}
	}

	return nil
}

// DosesPerDay returns how many doses are due on a day the frequency
// applies to. Weekly frequencies still deliver a single dose on their
// scheduled weekdays.
func (m *Medication) DosesPerDay() int {
	switch m.Frequency {
	case constants.MedTwiceDaily:
		return 2
	case constants.MedThriceDaily:
		return 3
	default:
		return 1
	}
}
