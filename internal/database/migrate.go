package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/allisson/storesync/migrations"
)

// MigrationsDir returns the embedded migrations directory for a dialect.
func MigrationsDir(d Dialect) string {
	switch d {
	case DialectPostgres:
		return "postgresql"
	case DialectMySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// Migrate applies every pending embedded migration on db.
// It returns nil when the schema is already up to date.
//
// The migrate instance is not closed: closing it would also close db, which stays owned
// by the caller.
func Migrate(db *sql.DB, driver string) error {
	dialect := DialectFromDriver(driver)
	if !dialect.Valid() {
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	source, err := iofs.New(migrations.FS, MigrationsDir(dialect))
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	var dbDriver migratedb.Driver
	switch dialect {
	case DialectPostgres:
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	case DialectMySQL:
		dbDriver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
