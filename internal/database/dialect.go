package database

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour spoken by a driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DialectFromDriver maps a database/sql driver name to its dialect.
// Unknown drivers map to an invalid dialect named after the driver.
func DialectFromDriver(driver string) Dialect {
	switch driver {
	case "sqlite":
		return DialectSQLite
	case "postgres", "postgresql", "pgx":
		return DialectPostgres
	case "mysql":
		return DialectMySQL
	default:
		return Dialect(driver)
	}
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Valid reports whether d is a supported dialect.
func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectPostgres, DialectMySQL:
		return true
	}
	return false
}
