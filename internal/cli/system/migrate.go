package system

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/averyhall/tend/internal/cli"
	"github.com/averyhall/tend/internal/migration"
	"github.com/averyhall/tend/internal/storage/postgres"
	"github.com/averyhall/tend/internal/storage/sqlite"
	"github.com/averyhall/tend/migrations"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	var db *sql.DB
	var dialect migration.Dialect
	var dirName string
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		db = store.GetDB()
		dialect = migration.DialectSQLite
		dirName = "sqlite"
	case *postgres.Store:
		db = store.GetDB()
		dialect = migration.DialectPostgres
		dirName = "postgres"
	default:
		return fmt.Errorf("unsupported storage backend")
	}
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	subFS, err := fs.Sub(migrations.FS, dirName)
	if err != nil {
		return fmt.Errorf("failed to access migrations: %w", err)
	}

	runner := migration.NewRunner(db, subFS, dialect)
	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
