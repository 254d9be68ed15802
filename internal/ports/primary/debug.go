package primary

import "context"

// DebugService defines the primary port for schema self-diagnosis.
type DebugService interface {
	// GetDebugInfo reports the live schema of the robots table.
	GetDebugInfo(ctx context.Context) (*DebugInfo, error)

	// CheckIntegrity compares the live schema with what the stored version requires.
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
}

// DebugInfo is a snapshot of the live database.
type DebugInfo struct {
	Version           int
	LatestVersion     int
	RobotCount        int
	HasArchivedColumn bool
	Indexes           []string
	Columns           []Column
}

// Column is one live column.
type Column struct {
	Name string
	Type string
}

// IntegrityReport lists schema problems. Errors break the application,
// warnings only degrade it.
type IntegrityReport struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}
