// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"mkulima/database"
)

// New returns a migrated sqlite database in a temp dir, closed on cleanup.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
