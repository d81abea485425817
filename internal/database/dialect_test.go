package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialectFromDriver(t *testing.T) {
	tests := []struct {
		driver   string
		expected Dialect
	}{
		{"sqlite", DialectSQLite},
		{"postgres", DialectPostgres},
		{"postgresql", DialectPostgres},
		{"mysql", DialectMySQL},
		{"unknown", Dialect("unknown")},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			assert.Equal(t, tt.expected, DialectFromDriver(tt.driver))
		})
	}
}

func TestDialect_Rebind(t *testing.T) {
	query := "SELECT id FROM outbox_items WHERE store_id = ? AND synced = ? LIMIT ?"

	t.Run("postgres uses numbered placeholders", func(t *testing.T) {
		assert.Equal(
			t,
			"SELECT id FROM outbox_items WHERE store_id = $1 AND synced = $2 LIMIT $3",
			DialectPostgres.Rebind(query),
		)
	})

	t.Run("sqlite keeps question marks", func(t *testing.T) {
		assert.Equal(t, query, DialectSQLite.Rebind(query))
	})

	t.Run("mysql keeps question marks", func(t *testing.T) {
		assert.Equal(t, query, DialectMySQL.Rebind(query))
	})
}

func TestDialect_Valid(t *testing.T) {
	assert.True(t, DialectSQLite.Valid())
	assert.True(t, DialectPostgres.Valid())
	assert.True(t, DialectMySQL.Valid())
	assert.False(t, Dialect("oracle").Valid())
	assert.False(t, DialectFromDriver("invalid_driver").Valid())
}
