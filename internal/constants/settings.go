package constants

// Settings keys (column values in the key/value settings table)
const (
	SettingNotificationsEnabled     = "notifications_enabled"
	SettingAutoResetTime            = "auto_reset_time"
	SettingStreakCelebrationEnabled = "streak_celebration_enabled"
	SettingDailyWaterGoal           = "daily_water_goal"
	SettingTimezone                 = "timezone"
)

// Settings defaults
const (
	DefaultNotificationsEnabled     = true
	DefaultAutoResetTime            = "00:00"
	DefaultStreakCelebrationEnabled = true
	DefaultDailyWaterGoal           = 8
	DefaultTimezone                 = "Local"
)

// App state keys (key/value app_state table, derived state rather than
// user preference)
const (
	StateLastResetAt = "last_reset_at"
	StateWaterCount  = "water_count"
	StateWaterDay    = "water_day"
)
