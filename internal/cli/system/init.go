package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/constants"
	"github.com/averyhall/tend/internal/storage"
	"github.com/averyhall/tend/internal/storage/postgres"
	"github.com/averyhall/tend/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete the existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDB, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDB
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized tend storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	var sourceStore storage.Provider
	if strings.HasPrefix(sourcePath, "postgres://") || strings.HasPrefix(sourcePath, "postgresql://") {
		if valid, err := postgres.ValidateConnString(sourcePath); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		sourceStore = postgres.New(sourcePath)
	} else {
		sourceStore = sqlite.NewStore(sourcePath)
	}

	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating habits...")
	habits, err := sourceStore.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, habit := range habits {
		if err := ctx.Store.UpdateHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
	}
	fmt.Printf("    Migrated %d habits\n", len(habits))

	fmt.Println("  Migrating habit entries...")
	entryCount := 0
	for _, habit := range habits {
		entries, err := sourceStore.GetHabitEntriesForHabit(habit.ID, "0001-01-01", "9999-12-31")
		if err != nil {
			return fmt.Errorf("failed to get entries for habit %s: %w", habit.ID, err)
		}
		for _, entry := range entries {
			if err := ctx.Store.UpdateHabitEntry(entry); err != nil {
				return fmt.Errorf("failed to add entry %s: %w", entry.ID, err)
			}
		}
		entryCount += len(entries)
	}
	fmt.Printf("    Migrated %d habit entries\n", entryCount)

	fmt.Println("  Migrating medications...")
	meds, err := sourceStore.GetAllMedications(true, true)
	if err != nil {
		return fmt.Errorf("failed to get medications from source: %w", err)
	}
	for _, med := range meds {
		if err := ctx.Store.UpdateMedication(med); err != nil {
			return fmt.Errorf("failed to add medication %s: %w", med.ID, err)
		}
	}
	fmt.Printf("    Migrated %d medications\n", len(meds))

	fmt.Println("  Migrating app state...")
	stateKeys := []string{constants.StateLastResetAt, constants.StateWaterCount, constants.StateWaterDay}
	for _, key := range stateKeys {
		value, err := sourceStore.GetState(key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to get state %q from source: %w", key, err)
		}
		if err := ctx.Store.SetState(key, value); err != nil {
			return fmt.Errorf("failed to set state %q: %w", key, err)
		}
	}

	return nil
}
