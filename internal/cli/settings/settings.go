package settings

import (
	"fmt"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/timeutil"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled     *bool   `help:"Enable or disable reminder notifications."`
	AutoResetTime            *string `help:"Time-of-day the daily reset fires (HH:MM)."`
	StreakCelebrationEnabled *bool   `help:"Enable or disable streak celebrations."`
	DailyWaterGoal           *int    `help:"Glasses of water per day."`
	Timezone                 *string `help:"IANA timezone name, or \"Local\"."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Auto-Reset Time:       %s\n", settings.AutoResetTime)
		fmt.Printf("  Streak Celebrations:   %v\n", settings.StreakCelebrationEnabled)
		fmt.Printf("  Daily Water Goal:      %d glasses\n", settings.DailyWaterGoal)
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		return nil
	}

	updated := false
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.AutoResetTime != nil {
		if !timeutil.ValidateTimeFormat(*c.AutoResetTime) {
			return fmt.Errorf("invalid auto-reset time %q (expected HH:MM)", *c.AutoResetTime)
		}
		settings.AutoResetTime = *c.AutoResetTime
		updated = true
	}
	if c.StreakCelebrationEnabled != nil {
		settings.StreakCelebrationEnabled = *c.StreakCelebrationEnabled
		updated = true
	}
	if c.DailyWaterGoal != nil {
		if *c.DailyWaterGoal < 1 {
			return fmt.Errorf("daily water goal must be at least 1")
		}
		settings.DailyWaterGoal = *c.DailyWaterGoal
		updated = true
	}
	if c.Timezone != nil {
		if !timeutil.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
