package models

import (
	"testing"

	"github.com/averyhall/tend/internal/constants"
)

func validHabit() Habit {
	return Habit{
		ID:          "habit-1",
		Title:       "Read",
		Frequency:   constants.HabitDaily,
		TargetCount: 1,
	}
}

func TestHabitValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Habit)
		wantErr bool
	}{
		{"valid", func(h *Habit) {}, false},
		{"empty title", func(h *Habit) { h.Title = "" }, true},
		{"bad frequency", func(h *Habit) { h.Frequency = "hourly" }, true},
		{"weekly frequency", func(h *Habit) { h.Frequency = constants.HabitWeekly }, false},
		{"zero target", func(h *Habit) { h.TargetCount = 0 }, true},
		{"valid reminder time", func(h *Habit) { h.ReminderTime = "07:30" }, false},
		{"bad reminder time", func(h *Habit) { h.ReminderTime = "7:30 AM" }, true},
		{"valid reminder date", func(h *Habit) { h.ReminderDates = []string{"2026-04-01"} }, false},
		{"bad reminder date", func(h *Habit) { h.ReminderDates = []string{"04/01/2026"} }, true},
		{"negative streak", func(h *Habit) { h.CurrentStreak = -1 }, true},
		{"longest below current", func(h *Habit) { h.CurrentStreak = 5; h.LongestStreak = 3 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habit := validHabit()
			tt.mutate(&habit)
			err := habit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHabitHasReminder(t *testing.T) {
	habit := validHabit()
	if habit.HasReminder() {
		t.Error("habit without reminder config reports HasReminder")
	}
	habit.ReminderTime = "07:30"
	if !habit.HasReminder() {
		t.Error("habit with reminder time reports no reminder")
	}
	habit = validHabit()
	habit.ReminderDates = []string{"2026-04-01"}
	if !habit.HasReminder() {
		t.Error("habit with reminder dates reports no reminder")
	}
}

func TestMedicationValidate(t *testing.T) {
	tests := []struct {
		name    string
		med     Medication
		wantErr bool
	}{
		{"valid", Medication{Name: "A", Frequency: constants.MedOnceDaily}, false},
		{"empty name", Medication{Frequency: constants.MedOnceDaily}, true},
		{"bad frequency", Medication{Name: "A", Frequency: "hourly"}, true},
		{"weekly frequency", Medication{Name: "A", Frequency: constants.MedThriceWeekly}, false},
		{"valid reminder time", Medication{Name: "A", Frequency: constants.MedOnceDaily, ReminderTime: "08:30"}, false},
		{"bad reminder time", Medication{Name: "A", Frequency: constants.MedOnceDaily, ReminderTime: "830"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.med.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDosesPerDay(t *testing.T) {
	tests := []struct {
		frequency constants.MedicationFrequency
		want      int
	}{
		{constants.MedOnceDaily, 1},
		{constants.MedTwiceDaily, 2},
		{constants.MedThriceDaily, 3},
		{constants.MedTwiceWeekly, 1},
		{constants.MedThriceWeekly, 1},
	}
	for _, tt := range tests {
		med := Medication{Frequency: tt.frequency}
		if got := med.DosesPerDay(); got != tt.want {
			t.Errorf("DosesPerDay(%s) = %d, want %d", tt.frequency, got, tt.want)
		}
	}
}

func TestSettingsMapRoundTrip(t *testing.T) {
	settings := Settings{
		NotificationsEnabled:     true,
		AutoResetTime:            "05:30",
		StreakCelebrationEnabled: false,
		DailyWaterGoal:           10,
		Timezone:                 "Europe/Berlin",
	}

	got, err := MapToSettings(SettingsToMap(settings))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if got != settings {
		t.Errorf("round trip: got %+v, want %+v", got, settings)
	}
}

func TestMapToSettings_MissingBoolKeysKeepDefaults(t *testing.T) {
	// A row-set from an older schema that predates the boolean settings.
	got, err := MapToSettings(map[string]string{
		constants.SettingAutoResetTime: "04:00",
	})
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if got.NotificationsEnabled != constants.DefaultNotificationsEnabled {
		t.Errorf("NotificationsEnabled = %v, want default %v",
			got.NotificationsEnabled, constants.DefaultNotificationsEnabled)
	}
	if got.StreakCelebrationEnabled != constants.DefaultStreakCelebrationEnabled {
		t.Errorf("StreakCelebrationEnabled = %v, want default %v",
			got.StreakCelebrationEnabled, constants.DefaultStreakCelebrationEnabled)
	}
	if got.AutoResetTime != "04:00" {
		t.Errorf("AutoResetTime = %q, want explicit value preserved", got.AutoResetTime)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	settings := Settings{}
	ApplyDefaultSettings(&settings)
	if settings.AutoResetTime != constants.DefaultAutoResetTime {
		t.Errorf("AutoResetTime = %q", settings.AutoResetTime)
	}
	if settings.DailyWaterGoal != constants.DefaultDailyWaterGoal {
		t.Errorf("DailyWaterGoal = %d", settings.DailyWaterGoal)
	}
	if settings.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q", settings.Timezone)
	}

	// Explicit values are left alone.
	settings = Settings{AutoResetTime: "06:00", DailyWaterGoal: 12, Timezone: "UTC"}
	ApplyDefaultSettings(&settings)
	if settings.AutoResetTime != "06:00" || settings.DailyWaterGoal != 12 || settings.Timezone != "UTC" {
		t.Errorf("defaults overwrote explicit values: %+v", settings)
	}
}
