// Package sqlite_test contains integration tests for SQLite repositories.
//
// Every test database is opened through db.Open so that tests run against the
// schema the migrations actually produce, not a hand-written copy of it.
package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/robodb/internal/adapters/sqlite"
	"github.com/example/robodb/internal/db"
	"github.com/example/robodb/internal/ports/secondary"
)

// setupTestDB opens a fully migrated database in a temporary directory.
func setupTestDB(t *testing.T) *db.Handle {
	t.Helper()

	h, err := db.Open(context.Background(), filepath.Join(t.TempDir(), db.DefaultFileName))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		h.Close()
	})

	return h
}

// seedRobot inserts a robot and returns its record.
func seedRobot(t *testing.T, repo *sqlite.RobotRepository, id, name string, year int, robotType string, createdAt int64) *secondary.RobotRecord {
	t.Helper()

	rec := &secondary.RobotRecord{
		ID:        id,
		Name:      name,
		Label:     "Label for " + name,
		Year:      year,
		Type:      robotType,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("failed to seed robot %s: %v", name, err)
	}
	return rec
}
