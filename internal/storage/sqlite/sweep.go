package sqlite

import (
	"github.com/averyhall/tend/internal/storage"
)

// ApplyResetSweep writes the full outcome of one auto-reset pass in a
// single transaction. Re-running the same sweep is harmless: counters
// are already zero and the today-entries already exist.
func (s *Store) ApplyResetSweep(sweep storage.ResetSweep) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, habit := range sweep.Habits {
		if err := s.upsertHabit(tx, habit); err != nil {
			return err
		}
	}

	for _, entry := range sweep.Entries {
		if err := s.upsertEntry(tx, entry); err != nil {
			return err
		}
	}

	for _, med := range sweep.Medications {
		if err := s.upsertMedication(tx, med); err != nil {
			return err
		}
	}

	for key, value := range sweep.State {
		if _, err := tx.Exec("INSERT OR REPLACE INTO app_state (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}
