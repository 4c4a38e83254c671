// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"testing"

	"github.com/basketful/storefront/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLiteDB opens an in-memory database with the schema applied
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase(":memory:", nil)
	require.NoError(t, err, "Failed to open SQLite database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewSeededSQLiteDB is NewSQLiteDB plus the catalog seed
func NewSeededSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := NewSQLiteDB(t)
	require.NoError(t, sqlite.SeedDatabase(db), "Failed to seed catalog")
	return db
}
