package primary

import "context"

// TransferService defines the primary port for bulk export and import.
type TransferService interface {
	// Export writes every robot to a portable envelope.
	Export(ctx context.Context, req ExportRequest) (*ExportResponse, error)

	// Import reads an envelope or bare robot array and inserts its robots.
	Import(ctx context.Context, req ImportRequest) (*ImportReport, error)
}

// ExportRequest contains parameters for an export.
type ExportRequest struct {
	Format   string // json (default) or yaml
	Compress bool
	Target   string // explicit output path; empty writes into the export directory
}

// ExportResponse describes a finished export.
type ExportResponse struct {
	Path  string
	Count int
}

// ImportRequest contains parameters for an import.
type ImportRequest struct {
	Source string // file path or "-" for standard input
	Format string // overrides the format derived from Source
}
