// Package database provides database connection management and utilities.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect establishes a database connection with the given configuration.
//
// The embedded sqlite store is limited to a single open connection: the engine allows one
// writer at a time and the pool makes every local transaction wait its turn instead of
// failing with SQLITE_BUSY.
func Connect(cfg Config) (*sql.DB, error) {
	dsn := cfg.ConnectionString
	if DialectFromDriver(cfg.Driver) == DialectSQLite {
		dsn = SQLiteDSN(dsn)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if DialectFromDriver(cfg.Driver) == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConnections)
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// sqliteTimeFormat makes the driver write timestamps as "2006-01-02 15:04:05.999999999-07:00",
// which sqlite date functions understand and which sorts as text when every value is UTC.
const sqliteTimeFormat = "_time_format=sqlite"

// SQLiteDSN pins the timestamp storage format on a sqlite DSN unless the caller chose one.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteTimeFormat
	}
	return dsn + "?" + sqliteTimeFormat
}
