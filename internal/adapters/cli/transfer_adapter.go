package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/robodb/internal/core/transfer"
	"github.com/example/robodb/internal/ports/primary"
)

// TransferAdapter translates export and import commands to TransferService calls.
type TransferAdapter struct {
	service primary.TransferService
	out     io.Writer
}

// NewTransferAdapter creates a new TransferAdapter with the given service.
func NewTransferAdapter(service primary.TransferService, out io.Writer) *TransferAdapter {
	return &TransferAdapter{
		service: service,
		out:     out,
	}
}

// Export writes every robot to a file. An empty collection is reported, not failed.
func (a *TransferAdapter) Export(ctx context.Context, req primary.ExportRequest) error {
	resp, err := a.service.Export(ctx, req)
	if errors.Is(err, transfer.ErrNothingToExport) {
		fmt.Fprintln(a.out, "No robots to export")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to export robots: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Exported %d robots to %s\n", resp.Count, resp.Path)
	return nil
}

// Import reads robots from a file or stdin. With verbose set, every skipped
// row is listed with its reason.
func (a *TransferAdapter) Import(ctx context.Context, req primary.ImportRequest, verbose bool) error {
	report, err := a.service.Import(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to import robots: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Imported %d robots", report.Inserted)
	if report.Skipped > 0 {
		fmt.Fprint(a.out, color.New(color.FgYellow).Sprintf(" (%d skipped)", report.Skipped))
	}
	fmt.Fprintln(a.out)

	if verbose {
		for _, r := range report.Results {
			if r.Status != primary.ImportSkipped {
				continue
			}
			fmt.Fprintf(a.out, "  - row %d (%s): %s\n", r.Index+1, r.Name, r.Reason)
		}
	}

	return nil
}
