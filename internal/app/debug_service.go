package app

import (
	"context"
	"fmt"

	"github.com/example/robodb/internal/db"
	"github.com/example/robodb/internal/ports/primary"
	"github.com/example/robodb/internal/ports/secondary"
)

// DebugServiceImpl implements the DebugService interface.
type DebugServiceImpl struct {
	inspector secondary.SchemaInspector
	expected  []db.VersionSchema
}

// NewDebugService creates a new DebugService checking against the given
// per-version expectations (normally db.ExpectedSchema()).
func NewDebugService(inspector secondary.SchemaInspector, expected []db.VersionSchema) *DebugServiceImpl {
	return &DebugServiceImpl{
		inspector: inspector,
		expected:  expected,
	}
}

// GetDebugInfo reports the live schema of the robots table.
func (s *DebugServiceImpl) GetDebugInfo(ctx context.Context) (*primary.DebugInfo, error) {
	version, err := s.inspector.UserVersion(ctx)
	if err != nil {
		return nil, err
	}

	columns, err := s.inspector.Columns(ctx, db.RobotsTable)
	if err != nil {
		return nil, err
	}

	indexes, err := s.inspector.Indexes(ctx, db.RobotsTable)
	if err != nil {
		return nil, err
	}

	count, err := s.inspector.RowCount(ctx, db.RobotsTable)
	if err != nil {
		return nil, err
	}

	info := &primary.DebugInfo{
		Version:       version,
		LatestVersion: s.latestVersion(),
		RobotCount:    count,
		Indexes:       indexes,
		Columns:       make([]primary.Column, len(columns)),
	}
	for i, c := range columns {
		info.Columns[i] = primary.Column{Name: c.Name, Type: c.Type}
		if c.Name == "archived" {
			info.HasArchivedColumn = true
		}
	}
	return info, nil
}

// CheckIntegrity compares the live schema with what the stored version
// requires. Missing columns are errors, missing indexes only warnings.
func (s *DebugServiceImpl) CheckIntegrity(ctx context.Context) (*primary.IntegrityReport, error) {
	info, err := s.GetDebugInfo(ctx)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]bool, len(info.Columns))
	for _, c := range info.Columns {
		columns[c.Name] = true
	}
	indexes := make(map[string]bool, len(info.Indexes))
	for _, name := range info.Indexes {
		indexes[name] = true
	}

	report := &primary.IntegrityReport{}
	for _, vs := range s.expected {
		if vs.Version > info.Version {
			continue
		}
		for _, col := range vs.Columns {
			if !columns[col] {
				report.Errors = append(report.Errors, fmt.Sprintf("missing column %q (version %d)", col, vs.Version))
			}
		}
		for _, idx := range vs.Indexes {
			if !indexes[idx] {
				report.Warnings = append(report.Warnings, fmt.Sprintf("missing index %q (version %d)", idx, vs.Version))
			}
		}
	}

	if info.Version < info.LatestVersion {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("schema version %d is behind latest version %d", info.Version, info.LatestVersion))
	}
	if info.Version > info.LatestVersion {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("schema version %d is newer than this build (latest %d)", info.Version, info.LatestVersion))
	}

	report.IsValid = len(report.Errors) == 0
	return report, nil
}

func (s *DebugServiceImpl) latestVersion() int {
	latest := 0
	for _, vs := range s.expected {
		if vs.Version > latest {
			latest = vs.Version
		}
	}
	return latest
}

// Ensure DebugServiceImpl implements the interface.
var _ primary.DebugService = (*DebugServiceImpl)(nil)
