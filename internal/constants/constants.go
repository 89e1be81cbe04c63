package constants

import "time"

// HabitFrequency represents the period over which a habit's target applies
type HabitFrequency string

// MedicationFrequency represents how often a medication dose is due
type MedicationFrequency string

const (
	AppName            = "tend"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tend/tend.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tend-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "tend-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.averyhall.tend"

	// Habit Frequency constants
	HabitDaily   HabitFrequency = "daily"
	HabitWeekly  HabitFrequency = "weekly"
	HabitMonthly HabitFrequency = "monthly"

	// Medication Frequency constants
	MedOnceDaily    MedicationFrequency = "once-daily"
	MedTwiceDaily   MedicationFrequency = "twice-daily"
	MedThriceDaily  MedicationFrequency = "thrice-daily"
	MedTwiceWeekly  MedicationFrequency = "twice-weekly"
	MedThriceWeekly MedicationFrequency = "thrice-weekly"

	// Expansion horizons. These are rolling windows regenerated on every
	// auto-reset sweep, so the exact lengths only bound how far ahead the
	// tray agent sees.
	HabitReminderHorizonDays      = 30
	MedicationReminderHorizonDays = 7

	// DefaultReminderTime is used when a reminder config has no
	// time-of-day set
	DefaultReminderTime = "09:00"

	// Notification category tags consumed by the tray agent
	CategoryHabit      = "habit"
	CategoryMedication = "medication"
)
