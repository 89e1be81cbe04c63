package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "tend.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testTime(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.Local)
}

func TestInit_SeedsDefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if settings.AutoResetTime != constants.DefaultAutoResetTime {
		t.Errorf("AutoResetTime = %q, want %q", settings.AutoResetTime, constants.DefaultAutoResetTime)
	}
	if settings.DailyWaterGoal != constants.DefaultDailyWaterGoal {
		t.Errorf("DailyWaterGoal = %d, want %d", settings.DailyWaterGoal, constants.DefaultDailyWaterGoal)
	}
}

func TestLoad_UninitializedDatabase(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected error loading a database that was never initialized")
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	lastCompleted := testTime(9)
	habit := models.Habit{
		ID:            "habit-1",
		Title:         "Meditate",
		Notes:         "10 minutes",
		Frequency:     constants.HabitDaily,
		TargetCount:   2,
		CurrentCount:  1,
		ReminderTime:  "07:30",
		ReminderDates: []string{"2026-04-01"},
		CurrentStreak: 3,
		LongestStreak: 5,
		LastCompleted: &lastCompleted,
		CreatedAt:     testTime(8),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	got, err := store.GetHabit("habit-1")
	if err != nil {
		t.Fatalf("GetHabit() error = %v", err)
	}
	if got.Title != habit.Title || got.Notes != habit.Notes || got.TargetCount != habit.TargetCount {
		t.Errorf("reloaded habit = %+v", got)
	}
	if got.LastCompleted == nil || !got.LastCompleted.Equal(lastCompleted) {
		t.Errorf("LastCompleted = %v, want %v", got.LastCompleted, lastCompleted)
	}
	if len(got.ReminderDates) != 1 || got.ReminderDates[0] != "2026-04-01" {
		t.Errorf("ReminderDates = %v", got.ReminderDates)
	}

	byTitle, err := store.GetHabitByTitle("Meditate")
	if err != nil {
		t.Fatalf("GetHabitByTitle() error = %v", err)
	}
	if byTitle.ID != habit.ID {
		t.Errorf("GetHabitByTitle returned %q", byTitle.ID)
	}
}

func TestAddHabit_RejectsInvalid(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{ID: "habit-1", Title: "", Frequency: constants.HabitDaily, TargetCount: 1}
	if err := store.AddHabit(habit); err == nil {
		t.Error("expected validation error for empty title")
	}
}

func TestDeleteHabit_CascadesAndRestores(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{
		ID: "habit-1", Title: "Run", Frequency: constants.HabitDaily,
		TargetCount: 1, CreatedAt: testTime(8),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}
	entry := models.HabitEntry{
		ID: "entry-1", HabitID: "habit-1", Day: "2026-03-10",
		Completed: true, CreatedAt: testTime(9), UpdatedAt: testTime(9),
	}
	if err := store.AddHabitEntry(entry); err != nil {
		t.Fatalf("AddHabitEntry() error = %v", err)
	}

	if err := store.DeleteHabit("habit-1"); err != nil {
		t.Fatalf("DeleteHabit() error = %v", err)
	}

	if _, err := store.GetHabit("habit-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted habit still visible, err = %v", err)
	}
	if _, err := store.GetHabitEntry("habit-1", "2026-03-10"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("entry did not cascade, err = %v", err)
	}

	all, err := store.GetAllHabits(true)
	if err != nil {
		t.Fatalf("GetAllHabits() error = %v", err)
	}
	if len(all) != 1 || all[0].DeletedAt == nil {
		t.Fatalf("deleted habit missing from includeDeleted listing: %+v", all)
	}

	if err := store.RestoreHabit("habit-1"); err != nil {
		t.Fatalf("RestoreHabit() error = %v", err)
	}
	if _, err := store.GetHabit("habit-1"); err != nil {
		t.Errorf("restored habit not visible: %v", err)
	}
	if _, err := store.GetHabitEntry("habit-1", "2026-03-10"); err != nil {
		t.Errorf("restored entry not visible: %v", err)
	}
}

func TestHabitEntry_OnePerDay(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{
		ID: "habit-1", Title: "Read", Frequency: constants.HabitDaily,
		TargetCount: 1, CreatedAt: testTime(8),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	entry := models.HabitEntry{
		ID: "entry-1", HabitID: "habit-1", Day: "2026-03-10",
		CreatedAt: testTime(9), UpdatedAt: testTime(9),
	}
	if err := store.AddHabitEntry(entry); err != nil {
		t.Fatalf("AddHabitEntry() error = %v", err)
	}

	// Writing the same (habit, day) again updates in place.
	entry.Completed = true
	completedAt := testTime(10)
	entry.CompletedAt = &completedAt
	entry.UpdatedAt = completedAt
	if err := store.UpdateHabitEntry(entry); err != nil {
		t.Fatalf("UpdateHabitEntry() error = %v", err)
	}

	entries, err := store.GetHabitEntriesForDay("2026-03-10")
	if err != nil {
		t.Fatalf("GetHabitEntriesForDay() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries for the day, want 1", len(entries))
	}
	if !entries[0].Completed || entries[0].CompletedAt == nil {
		t.Errorf("entry update lost: %+v", entries[0])
	}
}

func TestHabitEntriesForHabit_RangeQuery(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{
		ID: "habit-1", Title: "Read", Frequency: constants.HabitDaily,
		TargetCount: 1, CreatedAt: testTime(8),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}

	days := []string{"2026-03-08", "2026-03-09", "2026-03-10", "2026-03-12"}
	for i, day := range days {
		entry := models.HabitEntry{
			ID: "entry-" + day, HabitID: "habit-1", Day: day,
			Completed: i%2 == 0, CreatedAt: testTime(9), UpdatedAt: testTime(9),
		}
		if err := store.AddHabitEntry(entry); err != nil {
			t.Fatalf("AddHabitEntry(%s) error = %v", day, err)
		}
	}

	entries, err := store.GetHabitEntriesForHabit("habit-1", "2026-03-09", "2026-03-11")
	if err != nil {
		t.Fatalf("GetHabitEntriesForHabit() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries in range, want 2", len(entries))
	}
}

func TestMedicationRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	med := models.Medication{
		ID:             "med-1",
		Name:           "Ibuprofen",
		Dosage:         "200 mg",
		Frequency:      constants.MedTwiceDaily,
		ReminderTime:   "08:30",
		ScheduledTimes: []time.Time{testTime(8), testTime(20)},
		TakenTimes:     []time.Time{testTime(8)},
		Active:         true,
		CreatedAt:      testTime(7),
	}
	if err := store.AddMedication(med); err != nil {
		t.Fatalf("AddMedication() error = %v", err)
	}

	got, err := store.GetMedication("med-1")
	if err != nil {
		t.Fatalf("GetMedication() error = %v", err)
	}
	if got.Name != med.Name || got.Dosage != med.Dosage || got.Frequency != med.Frequency {
		t.Errorf("reloaded medication = %+v", got)
	}
	if len(got.ScheduledTimes) != 2 || !got.ScheduledTimes[0].Equal(testTime(8)) {
		t.Errorf("ScheduledTimes = %v", got.ScheduledTimes)
	}
	if len(got.TakenTimes) != 1 {
		t.Errorf("TakenTimes = %v", got.TakenTimes)
	}

	byName, err := store.GetMedicationByName("Ibuprofen")
	if err != nil || byName.ID != "med-1" {
		t.Errorf("GetMedicationByName() = %v, err %v", byName.ID, err)
	}
}

func TestGetAllMedications_Filters(t *testing.T) {
	store := setupTestStore(t)

	active := models.Medication{
		ID: "med-1", Name: "A", Frequency: constants.MedOnceDaily,
		Active: true, CreatedAt: testTime(7),
	}
	inactive := models.Medication{
		ID: "med-2", Name: "B", Frequency: constants.MedOnceDaily,
		Active: false, CreatedAt: testTime(8),
	}
	for _, med := range []models.Medication{active, inactive} {
		if err := store.AddMedication(med); err != nil {
			t.Fatalf("AddMedication() error = %v", err)
		}
	}
	if err := store.DeleteMedication("med-2"); err != nil {
		t.Fatalf("DeleteMedication() error = %v", err)
	}

	activeOnly, err := store.GetAllMedications(false, false)
	if err != nil {
		t.Fatalf("GetAllMedications() error = %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].ID != "med-1" {
		t.Errorf("active-only listing = %+v", activeOnly)
	}

	everything, err := store.GetAllMedications(true, true)
	if err != nil {
		t.Fatalf("GetAllMedications() error = %v", err)
	}
	if len(everything) != 2 {
		t.Errorf("full listing has %d medications, want 2", len(everything))
	}
}

func TestAppState(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetState("missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetState(missing) err = %v, want ErrNotFound", err)
	}

	if err := store.SetState(constants.StateWaterCount, "3"); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if err := store.SetState(constants.StateWaterCount, "4"); err != nil {
		t.Fatalf("SetState() overwrite error = %v", err)
	}

	value, err := store.GetState(constants.StateWaterCount)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if value != "4" {
		t.Errorf("GetState() = %q, want 4", value)
	}
}

func TestApplyResetSweep_Atomic(t *testing.T) {
	store := setupTestStore(t)

	habit := models.Habit{
		ID: "habit-1", Title: "Run", Frequency: constants.HabitDaily,
		TargetCount: 1, CurrentCount: 1, Completed: true, CreatedAt: testTime(8),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("AddHabit() error = %v", err)
	}
	med := models.Medication{
		ID: "med-1", Name: "A", Frequency: constants.MedOnceDaily,
		Active: true, CreatedAt: testTime(7),
	}
	if err := store.AddMedication(med); err != nil {
		t.Fatalf("AddMedication() error = %v", err)
	}

	habit.CurrentCount = 0
	habit.Completed = false
	med.ScheduledTimes = []time.Time{testTime(9)}
	pass := storage.ResetSweep{
		Habits: []models.Habit{habit},
		Entries: []models.HabitEntry{{
			ID: "entry-1", HabitID: "habit-1", Day: "2026-03-10",
			CreatedAt: testTime(0), UpdatedAt: testTime(0),
		}},
		Medications: []models.Medication{med},
		State: map[string]string{
			constants.StateLastResetAt: storage.FormatTime(testTime(0)),
			constants.StateWaterCount:  "0",
		},
	}
	if err := store.ApplyResetSweep(pass); err != nil {
		t.Fatalf("ApplyResetSweep() error = %v", err)
	}

	gotHabit, err := store.GetHabit("habit-1")
	if err != nil {
		t.Fatalf("GetHabit() error = %v", err)
	}
	if gotHabit.CurrentCount != 0 || gotHabit.Completed {
		t.Errorf("habit not swept: %+v", gotHabit)
	}
	if _, err := store.GetHabitEntry("habit-1", "2026-03-10"); err != nil {
		t.Errorf("sweep entry not written: %v", err)
	}
	gotMed, err := store.GetMedication("med-1")
	if err != nil {
		t.Fatalf("GetMedication() error = %v", err)
	}
	if len(gotMed.ScheduledTimes) != 1 {
		t.Errorf("medication window not written: %v", gotMed.ScheduledTimes)
	}
	if value, err := store.GetState(constants.StateWaterCount); err != nil || value != "0" {
		t.Errorf("state not written: %q, err %v", value, err)
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	settings := models.Settings{
		NotificationsEnabled:     false,
		AutoResetTime:            "05:30",
		StreakCelebrationEnabled: true,
		DailyWaterGoal:           10,
		Timezone:                 "America/New_York",
	}
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}
	if got != settings {
		t.Errorf("settings round trip: got %+v, want %+v", got, settings)
	}
}
