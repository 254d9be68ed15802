// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/primary"
)

// RobotAdapter is a thin adapter that translates CLI operations to RobotService calls.
// It depends only on the RobotService interface, enabling easy testing with mocks.
type RobotAdapter struct {
	service primary.RobotService
	out     io.Writer
}

// NewRobotAdapter creates a new RobotAdapter with the given service.
func NewRobotAdapter(service primary.RobotService, out io.Writer) *RobotAdapter {
	return &RobotAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new robot.
func (a *RobotAdapter) Create(ctx context.Context, req primary.CreateRobotRequest) error {
	created, err := a.service.CreateRobot(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created robot %s: %s\n", created.ID, created.Name)
	return nil
}

// Show displays details for a single robot.
func (a *RobotAdapter) Show(ctx context.Context, robotID string) (*primary.Robot, error) {
	r, err := a.service.GetRobot(ctx, robotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get robot: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", robot.ErrNotFound, robotID)
	}

	fmt.Fprintf(a.out, "\nRobot:   %s\n", r.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", r.Name)
	fmt.Fprintf(a.out, "Label:   %s\n", r.Label)
	fmt.Fprintf(a.out, "Year:    %d\n", r.Year)
	fmt.Fprintf(a.out, "Type:    %s\n", r.Type)
	fmt.Fprintf(a.out, "Status:  %s\n", statusLabel(r.Archived))
	fmt.Fprintf(a.out, "Created: %s\n", formatMillis(r.CreatedAt))
	fmt.Fprintf(a.out, "Updated: %s\n", formatMillis(r.UpdatedAt))
	fmt.Fprintln(a.out)

	return r, nil
}

// Update applies a partial update.
func (a *RobotAdapter) Update(ctx context.Context, req primary.UpdateRobotRequest) error {
	if req.Name == nil && req.Label == nil && req.Year == nil && req.Type == nil {
		return fmt.Errorf("must specify at least --name, --label, --year or --type")
	}

	if _, err := a.service.UpdateRobot(ctx, req); err != nil {
		return fmt.Errorf("failed to update robot: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Robot %s updated\n", req.RobotID)
	return nil
}

// Delete hard-deletes a robot.
func (a *RobotAdapter) Delete(ctx context.Context, robotID string) error {
	if err := a.service.RemoveRobot(ctx, robotID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Robot %s deleted\n", robotID)
	return nil
}

// Archive soft-deletes a robot.
func (a *RobotAdapter) Archive(ctx context.Context, robotID string) error {
	r, err := a.service.ArchiveRobot(ctx, robotID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Robot %s (%s) archived\n", r.ID, r.Name)
	return nil
}

// Unarchive restores an archived robot.
func (a *RobotAdapter) Unarchive(ctx context.Context, robotID string) error {
	r, err := a.service.UnarchiveRobot(ctx, robotID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Robot %s (%s) restored\n", r.ID, r.Name)
	return nil
}

// List prints one page of robots.
func (a *RobotAdapter) List(ctx context.Context, req primary.ListRobotsRequest) error {
	page, err := a.service.ListRobots(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list robots: %w", err)
	}

	if len(page.Robots) == 0 {
		fmt.Fprintln(a.out, "No robots found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-36s  %-24s %-6s %-12s %s\n", "ID", "NAME", "YEAR", "TYPE", "STATUS")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────────────────────────────────────")
	for _, r := range page.Robots {
		fmt.Fprintf(a.out, "%-36s  %-24s %-6d %-12s %s\n", r.ID, r.Name, r.Year, r.Type, statusLabel(r.Archived))
	}

	fmt.Fprintf(a.out, "\nShowing %d-%d of %d", req.Offset+1, req.Offset+len(page.Robots), page.Total)
	if page.HasMore {
		fmt.Fprintf(a.out, " (next page: --offset %d)", req.Offset+len(page.Robots))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Count prints the number of robots.
func (a *RobotAdapter) Count(ctx context.Context, includeArchived bool) error {
	count, err := a.service.CountRobots(ctx, includeArchived)
	if err != nil {
		return fmt.Errorf("failed to count robots: %w", err)
	}

	fmt.Fprintln(a.out, count)
	return nil
}

// Stats prints a summary of the stored robots.
func (a *RobotAdapter) Stats(ctx context.Context) error {
	stats, err := a.service.RobotStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	fmt.Fprintf(a.out, "\nRobots:   %d (%d archived)\n", stats.Total, stats.Archived)
	if stats.Total == 0 {
		fmt.Fprintln(a.out)
		return nil
	}
	fmt.Fprintf(a.out, "Years:    %d - %d\n", stats.OldestYear, stats.NewestYear)

	fmt.Fprintln(a.out, "\nBy type:")
	for _, t := range robot.Types {
		if n := stats.ByType[t]; n > 0 {
			fmt.Fprintf(a.out, "  %-12s %d\n", t, n)
		}
	}

	years := make([]int, 0, len(stats.ByYear))
	for y := range stats.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)

	fmt.Fprintln(a.out, "\nBy year:")
	for _, y := range years {
		fmt.Fprintf(a.out, "  %-12d %d\n", y, stats.ByYear[y])
	}
	fmt.Fprintln(a.out)

	return nil
}

// Seed inserts the given robots, skipping names that already exist.
func (a *RobotAdapter) Seed(ctx context.Context, reqs []primary.CreateRobotRequest, clear bool) error {
	if clear {
		deleted, err := a.service.DeleteAllRobots(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear robots: %w", err)
		}
		fmt.Fprintf(a.out, "✓ Removed %d robots\n", deleted)
	}

	report, err := a.service.ImportRobots(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to seed robots: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Seeded %d robots (%d skipped)\n", report.Inserted, report.Skipped)
	return nil
}

func statusLabel(archived bool) string {
	if archived {
		return color.New(color.FgHiBlack).Sprint("archived")
	}
	return color.New(color.FgHiGreen).Sprint("active")
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
