package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/robodb/internal/db"
	"github.com/example/robodb/internal/ports/secondary"
)

func fullColumns() []secondary.ColumnInfo {
	return []secondary.ColumnInfo{
		{Name: "id", Type: "TEXT"},
		{Name: "name", Type: "TEXT"},
		{Name: "label", Type: "TEXT"},
		{Name: "year", Type: "INTEGER"},
		{Name: "type", Type: "TEXT"},
		{Name: "created_at", Type: "INTEGER"},
		{Name: "updated_at", Type: "INTEGER"},
		{Name: "archived", Type: "INTEGER"},
	}
}

func fullIndexes() []string {
	return []string{"idx_robots_archived", "idx_robots_name", "idx_robots_type", "idx_robots_year"}
}

func TestGetDebugInfo(t *testing.T) {
	inspector := &mockSchemaInspector{version: 3, columns: fullColumns(), indexes: fullIndexes(), rowCount: 7}
	service := NewDebugService(inspector, db.ExpectedSchema())

	info, err := service.GetDebugInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, info.Version)
	assert.Equal(t, db.LatestVersion(), info.LatestVersion)
	assert.Equal(t, 7, info.RobotCount)
	assert.True(t, info.HasArchivedColumn)
	assert.Len(t, info.Columns, 8)
	assert.Equal(t, "year", info.Columns[3].Name)
	assert.Equal(t, "INTEGER", info.Columns[3].Type)
	assert.Equal(t, fullIndexes(), info.Indexes)
}

func TestGetDebugInfo_InspectorFailure(t *testing.T) {
	inspector := &mockSchemaInspector{versionErr: db.ErrNotOpen}
	service := NewDebugService(inspector, db.ExpectedSchema())

	_, err := service.GetDebugInfo(context.Background())
	assert.True(t, errors.Is(err, db.ErrNotOpen))
}

func TestCheckIntegrity(t *testing.T) {
	tests := []struct {
		name         string
		inspector    *mockSchemaInspector
		wantValid    bool
		wantErrors   int
		wantWarnings int
	}{
		{
			name:      "fully migrated",
			inspector: &mockSchemaInspector{version: 3, columns: fullColumns(), indexes: fullIndexes()},
			wantValid: true,
		},
		{
			name:       "archived column missing at version 3",
			inspector:  &mockSchemaInspector{version: 3, columns: fullColumns()[:7], indexes: fullIndexes()},
			wantValid:  false,
			wantErrors: 1,
		},
		{
			name:         "archived index missing is only a warning",
			inspector:    &mockSchemaInspector{version: 3, columns: fullColumns(), indexes: fullIndexes()[1:]},
			wantValid:    true,
			wantWarnings: 1,
		},
		{
			name:         "version 1 ignores later expectations",
			inspector:    &mockSchemaInspector{version: 1, columns: fullColumns()[:7]},
			wantValid:    true,
			wantWarnings: 1, // behind latest
		},
		{
			name:         "version 2 without indexes",
			inspector:    &mockSchemaInspector{version: 2, columns: fullColumns()[:7]},
			wantValid:    true,
			wantWarnings: 4,
		},
		{
			name:         "newer than this build",
			inspector:    &mockSchemaInspector{version: 4, columns: fullColumns(), indexes: fullIndexes()},
			wantValid:    true,
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewDebugService(tt.inspector, db.ExpectedSchema())

			report, err := service.CheckIntegrity(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, report.IsValid)
			assert.Len(t, report.Errors, tt.wantErrors)
			assert.Len(t, report.Warnings, tt.wantWarnings)
		})
	}
}
