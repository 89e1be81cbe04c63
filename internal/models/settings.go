package models

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled     bool   `json:"notifications_enabled"`      // whether reminder scheduling is enabled
	AutoResetTime            string `json:"auto_reset_time"`            // HH:MM time-of-day the daily reset fires, e.g. "00:00"
	StreakCelebrationEnabled bool   `json:"streak_celebration_enabled"` // whether to announce streak milestones
	DailyWaterGoal           int    `json:"daily_water_goal"`           // target glasses of water per day
	Timezone                 string `json:"timezone"`                   // IANA timezone name, or "Local" for the system timezone
}
