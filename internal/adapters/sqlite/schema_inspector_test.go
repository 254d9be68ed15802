package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/robodb/internal/adapters/sqlite"
	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/db"
)

func TestSchemaInspector_LiveSchema(t *testing.T) {
	h := setupTestDB(t)
	inspector := sqlite.NewSchemaInspector(h)
	ctx := context.Background()

	version, err := inspector.UserVersion(ctx)
	if err != nil {
		t.Fatalf("UserVersion failed: %v", err)
	}
	if version != db.LatestVersion() {
		t.Errorf("expected version %d, got %d", db.LatestVersion(), version)
	}

	columns, err := inspector.Columns(ctx, db.RobotsTable)
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	wantColumns := []string{"id", "name", "label", "year", "type", "created_at", "updated_at", "archived"}
	if len(columns) != len(wantColumns) {
		t.Fatalf("expected %d columns, got %d", len(wantColumns), len(columns))
	}
	for i, want := range wantColumns {
		if columns[i].Name != want {
			t.Errorf("column %d: expected %q, got %q", i, want, columns[i].Name)
		}
	}
	if columns[3].Type != "INTEGER" {
		t.Errorf("expected year to be INTEGER, got %q", columns[3].Type)
	}

	indexes, err := inspector.Indexes(ctx, db.RobotsTable)
	if err != nil {
		t.Fatalf("Indexes failed: %v", err)
	}
	wantIndexes := []string{"idx_robots_archived", "idx_robots_name", "idx_robots_type", "idx_robots_year"}
	if len(indexes) != len(wantIndexes) {
		t.Fatalf("expected %v, got %v", wantIndexes, indexes)
	}
	for i, want := range wantIndexes {
		if indexes[i] != want {
			t.Errorf("index %d: expected %q, got %q", i, want, indexes[i])
		}
	}
}

func TestSchemaInspector_RowCount(t *testing.T) {
	h := setupTestDB(t)
	inspector := sqlite.NewSchemaInspector(h)
	repo := sqlite.NewRobotRepository(h)
	ctx := context.Background()

	seedRobot(t, repo, "r-1", "R2D2", 1977, robot.TypeService, 1000)
	seedRobot(t, repo, "r-2", "C3PO", 1977, robot.TypeService, 1000)

	count, err := inspector.RowCount(ctx, db.RobotsTable)
	if err != nil {
		t.Fatalf("RowCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}

	if _, err := inspector.RowCount(ctx, "robots; DROP TABLE robots"); err == nil {
		t.Error("expected invalid table name to be rejected")
	}
}

func TestSchemaInspector_UnknownTable(t *testing.T) {
	inspector := sqlite.NewSchemaInspector(setupTestDB(t))

	columns, err := inspector.Columns(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if len(columns) != 0 {
		t.Errorf("expected no columns for unknown table, got %d", len(columns))
	}
}
