package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/robodb/internal/ports/primary"
)

// ErrIntegrity is returned by Check when the schema has errors.
var ErrIntegrity = errors.New("database integrity check failed")

// DebugAdapter renders schema diagnostics.
type DebugAdapter struct {
	service primary.DebugService
	out     io.Writer
}

// NewDebugAdapter creates a new DebugAdapter with the given service.
func NewDebugAdapter(service primary.DebugService, out io.Writer) *DebugAdapter {
	return &DebugAdapter{
		service: service,
		out:     out,
	}
}

// Info prints the live schema followed by the integrity report.
func (a *DebugAdapter) Info(ctx context.Context) error {
	info, err := a.service.GetDebugInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}

	fmt.Fprintln(a.out, "\n========== DATABASE ==========")
	fmt.Fprintf(a.out, "Version:         %d (latest %d)\n", info.Version, info.LatestVersion)
	fmt.Fprintf(a.out, "Robots:          %d\n", info.RobotCount)
	fmt.Fprintf(a.out, "Archived column: %s\n", yesNo(info.HasArchivedColumn))

	fmt.Fprintf(a.out, "Indexes (%d):\n", len(info.Indexes))
	for _, idx := range info.Indexes {
		fmt.Fprintf(a.out, "  - %s\n", idx)
	}

	fmt.Fprintf(a.out, "\nTable structure (%d columns):\n", len(info.Columns))
	for _, c := range info.Columns {
		fmt.Fprintf(a.out, "  - %s: %s\n", c.Name, c.Type)
	}

	report, err := a.service.CheckIntegrity(ctx)
	if err != nil {
		return fmt.Errorf("failed to check integrity: %w", err)
	}
	fmt.Fprintln(a.out)
	a.printReport(report)
	fmt.Fprintln(a.out, "==============================")

	return nil
}

// Check prints the integrity report and fails with ErrIntegrity when the
// schema has errors.
func (a *DebugAdapter) Check(ctx context.Context) error {
	report, err := a.service.CheckIntegrity(ctx)
	if err != nil {
		return fmt.Errorf("failed to check integrity: %w", err)
	}

	a.printReport(report)
	if !report.IsValid {
		return ErrIntegrity
	}
	return nil
}

// Version prints the stored and latest schema versions.
func (a *DebugAdapter) Version(ctx context.Context) error {
	info, err := a.service.GetDebugInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}

	fmt.Fprintf(a.out, "schema version %d (latest %d)\n", info.Version, info.LatestVersion)
	return nil
}

func (a *DebugAdapter) printReport(report *primary.IntegrityReport) {
	if report.IsValid {
		fmt.Fprintf(a.out, "Integrity: %s\n", color.New(color.FgHiGreen).Sprint("OK"))
	} else {
		fmt.Fprintf(a.out, "Integrity: %s\n", color.New(color.FgRed).Sprint("ERRORS"))
	}

	for _, e := range report.Errors {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgRed).Sprint("[ERROR]"), e)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(a.out, "  %s %s\n", color.New(color.FgYellow).Sprint("[WARN]"), w)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
