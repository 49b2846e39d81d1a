// Package databasetest opens throwaway SQLite databases carrying the full schema.
package databasetest

import (
	"fmt"
	"path/filepath"
	"testing"

	"activityhub/internal/database"

	"github.com/jmoiron/sqlx"
)

// Open creates a migrated SQLite database in the test's temp dir.
// The pool holds a single connection so concurrent handlers serialize on it.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "activityhub.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite", path)

	if err := database.Migrate("sqlite", dsn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
