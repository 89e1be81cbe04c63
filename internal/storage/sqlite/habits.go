package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/averyhall/tend/internal/models"
	"github.com/averyhall/tend/internal/storage"
)

const habitColumns = `id, title, notes, frequency, target_count, current_count, completed,
	reminder_time, reminder_dates, current_streak, longest_streak, last_completed, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var reminderDatesJSON, createdAt string
	var lastCompleted, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Title, &h.Notes, &h.Frequency, &h.TargetCount, &h.CurrentCount, &h.Completed,
		&h.ReminderTime, &reminderDatesJSON, &h.CurrentStreak, &h.LongestStreak, &lastCompleted, &createdAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, storage.ErrNotFound
		}
		return models.Habit{}, err
	}

	if err := json.Unmarshal([]byte(reminderDatesJSON), &h.ReminderDates); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse reminder_dates for habit %s: %w", h.ID, err)
	}
	h.CreatedAt, err = storage.ParseTime(createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	if lastCompleted.Valid {
		t, err := storage.ParseTime(lastCompleted.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse last_completed for habit %s: %w", h.ID, err)
		}
		h.LastCompleted = &t
	}
	if deletedAt.Valid {
		t, err := storage.ParseTime(deletedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %s: %w", h.ID, err)
		}
		h.DeletedAt = &t
	}

	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	if err := habit.Validate(); err != nil {
		return err
	}
	return s.UpdateHabit(habit)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND deleted_at IS NULL`, id)
	return scanHabit(row)
}

func (s *Store) GetHabitByTitle(title string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+habitColumns+`
		FROM habits WHERE title = ? AND deleted_at IS NULL`, title)
	return scanHabit(row)
}

func (s *Store) GetAllHabits(includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	return s.upsertHabit(s.db, habit)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) upsertHabit(db execer, habit models.Habit) error {
	reminderDates := habit.ReminderDates
	if reminderDates == nil {
		reminderDates = []string{}
	}
	reminderDatesJSON, err := json.Marshal(reminderDates)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder_dates: %w", err)
	}

	var lastCompleted, deletedAt sql.NullString
	if habit.LastCompleted != nil {
		lastCompleted = sql.NullString{String: storage.FormatTime(*habit.LastCompleted), Valid: true}
	}
	if habit.DeletedAt != nil {
		deletedAt = sql.NullString{String: storage.FormatTime(*habit.DeletedAt), Valid: true}
	}

	_, err = db.Exec(`
		INSERT INTO habits (id, title, notes, frequency, target_count, current_count, completed,
			reminder_time, reminder_dates, current_streak, longest_streak, last_completed, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			notes = excluded.notes,
			frequency = excluded.frequency,
			target_count = excluded.target_count,
			current_count = excluded.current_count,
			completed = excluded.completed,
			reminder_time = excluded.reminder_time,
			reminder_dates = excluded.reminder_dates,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_completed = excluded.last_completed,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Title, habit.Notes, string(habit.Frequency), habit.TargetCount,
		habit.CurrentCount, habit.Completed, habit.ReminderTime, string(reminderDatesJSON),
		habit.CurrentStreak, habit.LongestStreak, lastCompleted,
		storage.FormatTime(habit.CreatedAt), deletedAt)
	return err
}

// DeleteHabit soft deletes a habit and cascades to its entries.
func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := storage.FormatTime(time.Now())
	result, err := tx.Exec(`
		UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or already deleted")
	}

	if _, err := tx.Exec(`
		UPDATE habit_entries SET deleted_at = ? WHERE habit_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return err
	}

	return tx.Commit()
}

// RestoreHabit undoes a soft delete, restoring the habit and the entries
// removed with it.
func (s *Store) RestoreHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or not deleted")
	}

	if _, err := tx.Exec(`
		UPDATE habit_entries SET deleted_at = NULL WHERE habit_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Habit Entries

const entryColumns = `id, habit_id, day, completed, completed_at, created_at, updated_at, deleted_at`

func scanEntry(row rowScanner) (models.HabitEntry, error) {
	var e models.HabitEntry
	var createdAt, updatedAt string
	var completedAt, deletedAt sql.NullString

	err := row.Scan(&e.ID, &e.HabitID, &e.Day, &e.Completed, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HabitEntry{}, storage.ErrNotFound
		}
		return models.HabitEntry{}, err
	}

	if completedAt.Valid {
		t, err := storage.ParseTime(completedAt.String)
		if err != nil {
			return models.HabitEntry{}, fmt.Errorf("failed to parse completed_at for entry %s: %w", e.ID, err)
		}
		e.CompletedAt = &t
	}
	e.CreatedAt, err = storage.ParseTime(createdAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse created_at for entry %s: %w", e.ID, err)
	}
	e.UpdatedAt, err = storage.ParseTime(updatedAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse updated_at for entry %s: %w", e.ID, err)
	}
	if deletedAt.Valid {
		t, err := storage.ParseTime(deletedAt.String)
		if err != nil {
			return models.HabitEntry{}, fmt.Errorf("failed to parse deleted_at for entry %s: %w", e.ID, err)
		}
		e.DeletedAt = &t
	}

	return e, nil
}

func (s *Store) AddHabitEntry(entry models.HabitEntry) error {
	return s.UpdateHabitEntry(entry)
}

func (s *Store) GetHabitEntry(habitID, day string) (models.HabitEntry, error) {
	row := s.db.QueryRow(`
		SELECT `+entryColumns+`
		FROM habit_entries WHERE habit_id = ? AND day = ? AND deleted_at IS NULL`,
		habitID, day)
	return scanEntry(row)
}

func (s *Store) GetHabitEntriesForDay(day string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+entryColumns+`
		FROM habit_entries WHERE day = ? AND deleted_at IS NULL
		ORDER BY created_at`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetHabitEntriesForHabit(habitID, startDay, endDay string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+entryColumns+`
		FROM habit_entries
		WHERE habit_id = ? AND day >= ? AND day <= ? AND deleted_at IS NULL
		ORDER BY day DESC`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UpdateHabitEntry(entry models.HabitEntry) error {
	return s.upsertEntry(s.db, entry)
}

func (s *Store) upsertEntry(db execer, entry models.HabitEntry) error {
	var completedAt, deletedAt sql.NullString
	if entry.CompletedAt != nil {
		completedAt = sql.NullString{String: storage.FormatTime(*entry.CompletedAt), Valid: true}
	}
	if entry.DeletedAt != nil {
		deletedAt = sql.NullString{String: storage.FormatTime(*entry.DeletedAt), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO habit_entries (id, habit_id, day, completed, completed_at, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		entry.ID, entry.HabitID, entry.Day, entry.Completed, completedAt,
		storage.FormatTime(entry.CreatedAt), storage.FormatTime(entry.UpdatedAt), deletedAt)
	return err
}
