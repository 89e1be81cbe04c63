package models

import (
	"fmt"

	"github.com/averyhall/tend/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Missing keys keep their default values, so boolean settings absent
// from an older row-set do not silently read as false.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingAutoResetTime:
			settings.AutoResetTime = value
		case constants.SettingStreakCelebrationEnabled:
			settings.StreakCelebrationEnabled = value == "true"
		case constants.SettingDailyWaterGoal:
			if _, err := fmt.Sscanf(value, "%d", &settings.DailyWaterGoal); err != nil {
				return Settings{}, fmt.Errorf("parsing daily_water_goal: %w", err)
			}
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingNotificationsEnabled:     fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingAutoResetTime:            settings.AutoResetTime,
		constants.SettingStreakCelebrationEnabled: fmt.Sprintf("%v", settings.StreakCelebrationEnabled),
		constants.SettingDailyWaterGoal:           fmt.Sprintf("%d", settings.DailyWaterGoal),
		constants.SettingTimezone:                 settings.Timezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.AutoResetTime == "" {
		settings.AutoResetTime = constants.DefaultAutoResetTime
	}
	if settings.DailyWaterGoal == 0 {
		settings.DailyWaterGoal = constants.DefaultDailyWaterGoal
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled:     constants.DefaultNotificationsEnabled,
		AutoResetTime:            constants.DefaultAutoResetTime,
		StreakCelebrationEnabled: constants.DefaultStreakCelebrationEnabled,
		DailyWaterGoal:           constants.DefaultDailyWaterGoal,
		Timezone:                 constants.DefaultTimezone,
	}
}
