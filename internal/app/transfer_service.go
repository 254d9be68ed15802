package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/example/robodb/internal/core/transfer"
	"github.com/example/robodb/internal/ports/primary"
	"github.com/example/robodb/internal/ports/secondary"
)

// TransferServiceImpl implements the TransferService interface.
type TransferServiceImpl struct {
	robotService primary.RobotService
	sink         secondary.ExportSink
	source       secondary.ImportSource
	logger       *zap.Logger
	now          func() time.Time
}

// NewTransferService creates a new TransferService with injected dependencies.
func NewTransferService(
	robotService primary.RobotService,
	sink secondary.ExportSink,
	source secondary.ImportSource,
	logger *zap.Logger,
) *TransferServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferServiceImpl{
		robotService: robotService,
		sink:         sink,
		source:       source,
		logger:       logger,
		now:          time.Now,
	}
}

// Export writes every robot to a portable envelope. The format comes from the
// request, then from the target's extension, and defaults to JSON.
func (s *TransferServiceImpl) Export(ctx context.Context, req primary.ExportRequest) (*primary.ExportResponse, error) {
	format, compressed, err := resolveFormat(req.Format, req.Target)
	if err != nil {
		return nil, err
	}
	compressed = compressed || req.Compress

	robots, err := s.robotService.GetAllRobots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read robots: %w", err)
	}
	if len(robots) == 0 {
		return nil, transfer.ErrNothingToExport
	}

	now := s.now()
	data, err := transfer.Encode(transfer.NewEnvelope(toEnvelopeRobots(robots), now), format, compressed)
	if err != nil {
		return nil, err
	}

	path, err := s.sink.Save(ctx, transfer.FileName(now, format, compressed), req.Target, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}

	s.logger.Info("robots exported", zap.String("path", path), zap.Int("count", len(robots)))
	return &primary.ExportResponse{Path: path, Count: len(robots)}, nil
}

// Import reads an envelope or bare robot array and inserts its robots.
func (s *TransferServiceImpl) Import(ctx context.Context, req primary.ImportRequest) (*primary.ImportReport, error) {
	format, _, err := resolveFormat(req.Format, req.Source)
	if err != nil {
		return nil, err
	}

	data, err := s.source.Read(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	rows, err := transfer.Decode(data, format)
	if err != nil {
		return nil, err
	}

	// positions maps each decodable row to its index in the source file.
	var positions []int
	for _, row := range rows {
		if row.Err == nil {
			positions = append(positions, row.Index)
		}
	}

	fields, err := transfer.ToFields(transfer.Robots(rows))
	if err != nil {
		return nil, err
	}

	reqs := make([]primary.CreateRobotRequest, len(fields))
	for i, f := range fields {
		reqs[i] = primary.CreateRobotRequest{Name: f.Name, Label: f.Label, Year: f.Year, Type: f.Type}
	}

	s.logger.Debug("importing robots",
		zap.String("source", req.Source),
		zap.Int("rows", len(rows)),
		zap.Int("malformed", len(rows)-len(reqs)))

	report, importErr := s.robotService.ImportRobots(ctx, reqs)
	if report == nil {
		return nil, importErr
	}

	// Rows after the one that aborted the import were never attempted.
	cutoff := len(rows)
	if importErr != nil && len(report.Results) < len(positions) {
		cutoff = positions[len(report.Results)]
		if cause := errors.Unwrap(importErr); cause != nil {
			importErr = fmt.Errorf("import aborted at row %d: %w", cutoff, cause)
		}
	}

	return mergeImportReport(rows, positions, report, cutoff), importErr
}

// mergeImportReport renumbers the results of the decodable rows back to their
// source positions and adds a skipped result for every malformed row before cutoff.
func mergeImportReport(rows []transfer.Row, positions []int, report *primary.ImportReport, cutoff int) *primary.ImportReport {
	merged := &primary.ImportReport{
		Inserted: report.Inserted,
		Skipped:  report.Skipped,
		Results:  make([]primary.ImportRowResult, 0, len(rows)),
	}
	for _, result := range report.Results {
		result.Index = positions[result.Index]
		merged.Results = append(merged.Results, result)
	}
	for _, row := range rows {
		if row.Err == nil || row.Index >= cutoff {
			continue
		}
		merged.Results = append(merged.Results, primary.ImportRowResult{
			Index:  row.Index,
			Name:   row.Name,
			Status: primary.ImportSkipped,
			Reason: row.Err.Error(),
		})
		merged.Skipped++
	}
	sort.SliceStable(merged.Results, func(i, j int) bool {
		return merged.Results[i].Index < merged.Results[j].Index
	})
	return merged
}

func resolveFormat(explicit, path string) (transfer.Format, bool, error) {
	fromPath, compressed := transfer.FormatFromPath(path)
	if explicit == "" {
		return fromPath, compressed, nil
	}
	format, err := transfer.ParseFormat(explicit)
	if err != nil {
		return "", false, err
	}
	return format, compressed, nil
}

func toEnvelopeRobots(robots []*primary.Robot) []transfer.Robot {
	out := make([]transfer.Robot, len(robots))
	for i, r := range robots {
		archived := transfer.Flag(r.Archived)
		out[i] = transfer.Robot{
			ID:        r.ID,
			Name:      r.Name,
			Label:     r.Label,
			Year:      r.Year,
			Type:      r.Type,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Archived:  &archived,
		}
	}
	return out
}

// Ensure TransferServiceImpl implements the interface.
var _ primary.TransferService = (*TransferServiceImpl)(nil)
