package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	corerobot "github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/primary"
	"github.com/example/robodb/internal/ports/secondary"
)

// RobotServiceImpl implements the RobotService interface.
type RobotServiceImpl struct {
	robotRepo secondary.RobotRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewRobotService creates a new RobotService with injected dependencies.
func NewRobotService(robotRepo secondary.RobotRepository, logger *zap.Logger) *RobotServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotServiceImpl{
		robotRepo: robotRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRobot validates and persists a new robot.
func (s *RobotServiceImpl) CreateRobot(ctx context.Context, req primary.CreateRobotRequest) (*primary.Robot, error) {
	now := s.now()
	fields := corerobot.Normalize(corerobot.Fields{
		Name:  req.Name,
		Label: req.Label,
		Year:  req.Year,
		Type:  req.Type,
	})

	if err := corerobot.ValidateFields(fields, now.Year()).Error(); err != nil {
		return nil, err
	}

	exists, err := s.robotRepo.NameExists(ctx, fields.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check robot name: %w", err)
	}
	if err := corerobot.CanCreateRobot(corerobot.CreateRobotContext{Name: fields.Name, NameExists: exists}).Error(); err != nil {
		return nil, err
	}

	ts := corerobot.Millis(now)
	record := &secondary.RobotRecord{
		ID:        corerobot.NewID(),
		Name:      fields.Name,
		Label:     fields.Label,
		Year:      fields.Year,
		Type:      fields.Type,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.robotRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Debug("robot created", zap.String("id", record.ID), zap.String("name", record.Name))
	return recordToRobot(record), nil
}

// GetRobot retrieves a robot by ID.
func (s *RobotServiceImpl) GetRobot(ctx context.Context, robotID string) (*primary.Robot, error) {
	record, err := s.robotRepo.GetByID(ctx, robotID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return recordToRobot(record), nil
}

// UpdateRobot applies the provided fields and returns the new state.
func (s *RobotServiceImpl) UpdateRobot(ctx context.Context, req primary.UpdateRobotRequest) (*primary.Robot, error) {
	now := s.now()
	changes := corerobot.NormalizeChanges(corerobot.Changes{
		Name:     req.Name,
		Label:    req.Label,
		Year:     req.Year,
		Type:     req.Type,
		Archived: req.Archived,
	})

	if err := corerobot.ValidateChanges(changes, now.Year()).Error(); err != nil {
		return nil, err
	}

	current, err := s.robotRepo.GetByID(ctx, req.RobotID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", corerobot.ErrNotFound, req.RobotID)
	}

	// Renaming to a different casing of the own name must not conflict with itself.
	if changes.Name != nil && *changes.Name != current.Name {
		taken, err := s.robotRepo.NameExists(ctx, *changes.Name, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check robot name: %w", err)
		}
		guard := corerobot.CanRenameRobot(corerobot.RenameRobotContext{
			RobotID:          current.ID,
			NewName:          *changes.Name,
			NameTakenByOther: taken,
		})
		if err := guard.Error(); err != nil {
			return nil, err
		}
	}

	update := &secondary.RobotUpdate{
		ID:        current.ID,
		Name:      changes.Name,
		Label:     changes.Label,
		Year:      changes.Year,
		Type:      changes.Type,
		Archived:  changes.Archived,
		UpdatedAt: corerobot.Millis(now),
	}
	if err := s.robotRepo.Update(ctx, update); err != nil {
		return nil, err
	}

	updated, err := s.robotRepo.GetByID(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated robot: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", corerobot.ErrNotFound, current.ID)
	}

	s.logger.Debug("robot updated", zap.String("id", updated.ID))
	return recordToRobot(updated), nil
}

// RemoveRobot hard-deletes a robot.
func (s *RobotServiceImpl) RemoveRobot(ctx context.Context, robotID string) error {
	if err := s.robotRepo.Delete(ctx, robotID); err != nil {
		return err
	}
	s.logger.Debug("robot deleted", zap.String("id", robotID))
	return nil
}

// ArchiveRobot soft-deletes a robot.
func (s *RobotServiceImpl) ArchiveRobot(ctx context.Context, robotID string) (*primary.Robot, error) {
	archived := true
	return s.UpdateRobot(ctx, primary.UpdateRobotRequest{RobotID: robotID, Archived: &archived})
}

// UnarchiveRobot restores an archived robot.
func (s *RobotServiceImpl) UnarchiveRobot(ctx context.Context, robotID string) (*primary.Robot, error) {
	archived := false
	return s.UpdateRobot(ctx, primary.UpdateRobotRequest{RobotID: robotID, Archived: &archived})
}

// ListRobots searches, sorts and paginates robots.
func (s *RobotServiceImpl) ListRobots(ctx context.Context, req primary.ListRobotsRequest) (*primary.RobotPage, error) {
	opts, guard := corerobot.NormalizeListOptions(corerobot.ListOptions{
		Query:           req.Query,
		Sort:            req.Sort,
		Order:           req.Order,
		Limit:           req.Limit,
		Offset:          req.Offset,
		IncludeArchived: req.IncludeArchived,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	records, total, err := s.robotRepo.List(ctx, secondary.RobotFilters{
		Query:           opts.Query,
		Sort:            opts.Sort,
		Order:           opts.Order,
		Limit:           opts.Limit,
		Offset:          opts.Offset,
		IncludeArchived: opts.IncludeArchived,
	})
	if err != nil {
		return nil, err
	}

	return &primary.RobotPage{
		Robots:  recordsToRobots(records),
		Total:   total,
		HasMore: corerobot.HasMore(opts.Offset, len(records), total),
	}, nil
}

// CountRobots counts robots.
func (s *RobotServiceImpl) CountRobots(ctx context.Context, includeArchived bool) (int, error) {
	return s.robotRepo.Count(ctx, includeArchived)
}

// GetAllRobots returns every robot ordered by name.
func (s *RobotServiceImpl) GetAllRobots(ctx context.Context) ([]*primary.Robot, error) {
	records, err := s.robotRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return recordsToRobots(records), nil
}

// DeleteAllRobots empties the robot table.
func (s *RobotServiceImpl) DeleteAllRobots(ctx context.Context) (int, error) {
	deleted, err := s.robotRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("all robots deleted", zap.Int("count", deleted))
	return deleted, nil
}

// ImportRobots creates robots one at a time. Rows rejected by validation or
// the uniqueness rule are skipped and reported; any other failure aborts.
func (s *RobotServiceImpl) ImportRobots(ctx context.Context, reqs []primary.CreateRobotRequest) (*primary.ImportReport, error) {
	report := &primary.ImportReport{Results: make([]primary.ImportRowResult, 0, len(reqs))}

	for i, req := range reqs {
		result := primary.ImportRowResult{Index: i, Name: req.Name}

		created, err := s.CreateRobot(ctx, req)
		switch {
		case err == nil:
			result.Status = primary.ImportInserted
			result.RobotID = created.ID
			report.Inserted++
		case errors.Is(err, corerobot.ErrDuplicateName), errors.Is(err, corerobot.ErrInvalidInput):
			result.Status = primary.ImportSkipped
			result.Reason = err.Error()
			report.Skipped++
			s.logger.Debug("import row skipped", zap.Int("index", i), zap.String("name", req.Name), zap.Error(err))
		default:
			return report, fmt.Errorf("import aborted at row %d: %w", i, err)
		}

		report.Results = append(report.Results, result)
	}

	s.logger.Info("import finished", zap.Int("inserted", report.Inserted), zap.Int("skipped", report.Skipped))
	return report, nil
}

// RobotStats summarizes the stored robots, archived ones included.
func (s *RobotServiceImpl) RobotStats(ctx context.Context) (*primary.RobotStats, error) {
	records, err := s.robotRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]corerobot.StatsEntry, len(records))
	for i, r := range records {
		entries[i] = corerobot.StatsEntry{Type: r.Type, Year: r.Year, Archived: r.Archived}
	}
	stats := corerobot.ComputeStats(entries)

	return &primary.RobotStats{
		Total:      stats.Total,
		Archived:   stats.Archived,
		ByType:     stats.ByType,
		ByYear:     stats.ByYear,
		OldestYear: stats.OldestYear,
		NewestYear: stats.NewestYear,
	}, nil
}

// Helper methods

func recordToRobot(r *secondary.RobotRecord) *primary.Robot {
	return &primary.Robot{
		ID:        r.ID,
		Name:      r.Name,
		Label:     r.Label,
		Year:      r.Year,
		Type:      r.Type,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Archived:  r.Archived,
	}
}

func recordsToRobots(records []*secondary.RobotRecord) []*primary.Robot {
	robots := make([]*primary.Robot, len(records))
	for i, r := range records {
		robots[i] = recordToRobot(r)
	}
	return robots
}

// Ensure RobotServiceImpl implements the interface.
var _ primary.RobotService = (*RobotServiceImpl)(nil)
