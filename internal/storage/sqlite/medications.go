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

const medicationColumns = `id, name, dosage, frequency, reminder_time, scheduled_times, taken_times, active, created_at, deleted_at`

func scanMedication(row rowScanner) (models.Medication, error) {
	var m models.Medication
	var scheduledJSON, takenJSON, createdAt string
	var deletedAt sql.NullString

	err := row.Scan(&m.ID, &m.Name, &m.Dosage, &m.Frequency, &m.ReminderTime,
		&scheduledJSON, &takenJSON, &m.Active, &createdAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Medication{}, storage.ErrNotFound
		}
		return models.Medication{}, err
	}

	if err := json.Unmarshal([]byte(scheduledJSON), &m.ScheduledTimes); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse scheduled_times for medication %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(takenJSON), &m.TakenTimes); err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse taken_times for medication %s: %w", m.ID, err)
	}
	m.CreatedAt, err = storage.ParseTime(createdAt)
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to parse created_at for medication %s: %w", m.ID, err)
	}
	if deletedAt.Valid {
		t, err := storage.ParseTime(deletedAt.String)
		if err != nil {
			return models.Medication{}, fmt.Errorf("failed to parse deleted_at for medication %s: %w", m.ID, err)
		}
		m.DeletedAt = &t
	}

	return m, nil
}

func (s *Store) AddMedication(med models.Medication) error {
	if err := med.Validate(); err != nil {
		return err
	}
	return s.UpdateMedication(med)
}

func (s *Store) GetMedication(id string) (models.Medication, error) {
	row := s.db.QueryRow(`
		SELECT `+medicationColumns+`
		FROM medications WHERE id = ? AND deleted_at IS NULL`, id)
	return scanMedication(row)
}

func (s *Store) GetMedicationByName(name string) (models.Medication, error) {
	row := s.db.QueryRow(`
		SELECT `+medicationColumns+`
		FROM medications WHERE name = ? AND deleted_at IS NULL`, name)
	return scanMedication(row)
}

func (s *Store) GetAllMedications(includeInactive, includeDeleted bool) ([]models.Medication, error) {
	query := "SELECT " + medicationColumns + " FROM medications WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeInactive {
		query += " AND active = 1"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []models.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (s *Store) UpdateMedication(med models.Medication) error {
	return s.upsertMedication(s.db, med)
}

func (s *Store) upsertMedication(db execer, med models.Medication) error {
	scheduled := med.ScheduledTimes
	if scheduled == nil {
		scheduled = []time.Time{}
	}
	taken := med.TakenTimes
	if taken == nil {
		taken = []time.Time{}
	}

	scheduledJSON, err := json.Marshal(scheduled)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled_times: %w", err)
	}
	takenJSON, err := json.Marshal(taken)
	if err != nil {
		return fmt.Errorf("failed to marshal taken_times: %w", err)
	}

	var deletedAt sql.NullString
	if med.DeletedAt != nil {
		deletedAt = sql.NullString{String: storage.FormatTime(*med.DeletedAt), Valid: true}
	}

	_, err = db.Exec(`
		INSERT INTO medications (id, name, dosage, frequency, reminder_time, scheduled_times, taken_times, active, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dosage = excluded.dosage,
			frequency = excluded.frequency,
			reminder_time = excluded.reminder_time,
			scheduled_times = excluded.scheduled_times,
			taken_times = excluded.taken_times,
			active = excluded.active,
			deleted_at = excluded.deleted_at`,
		med.ID, med.Name, med.Dosage, string(med.Frequency), med.ReminderTime,
		string(scheduledJSON), string(takenJSON), med.Active,
		storage.FormatTime(med.CreatedAt), deletedAt)
	return err
}

func (s *Store) DeleteMedication(id string) error {
	result, err := s.db.Exec(`
		UPDATE medications SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		storage.FormatTime(time.Now()), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("medication not found or already deleted")
	}

	return nil
}
