// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/secondary"
)

// ConnProvider hands out the live connection. *db.Handle implements it and
// refuses with db.ErrNotOpen until migrations are complete.
type ConnProvider interface {
	Conn() (*sql.DB, error)
}

const robotColumns = "id, name, label, year, type, created_at, updated_at, archived"

var sortColumns = map[string]string{
	robot.SortName:      "name COLLATE NOCASE",
	robot.SortYear:      "year",
	robot.SortCreatedAt: "created_at",
}

// RobotRepository implements secondary.RobotRepository with SQLite.
type RobotRepository struct {
	db ConnProvider
}

// NewRobotRepository creates a new SQLite robot repository.
func NewRobotRepository(db ConnProvider) *RobotRepository {
	return &RobotRepository{db: db}
}

// Create persists a new robot.
func (r *RobotRepository) Create(ctx context.Context, rec *secondary.RobotRecord) error {
	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		"INSERT INTO robots ("+robotColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.Name, rec.Label, rec.Year, rec.Type, rec.CreatedAt, rec.UpdatedAt, boolToInt(rec.Archived),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a robot named %q already exists", robot.ErrDuplicateName, rec.Name)
		}
		return fmt.Errorf("failed to create robot: %w", err)
	}

	return nil
}

// GetByID retrieves a robot by its ID.
func (r *RobotRepository) GetByID(ctx context.Context, id string) (*secondary.RobotRecord, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}

	record, err := scanRobot(conn.QueryRowContext(ctx,
		"SELECT "+robotColumns+" FROM robots WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get robot: %w", err)
	}

	return record, nil
}

// Update applies the non-nil fields of update and always sets updated_at.
func (r *RobotRepository) Update(ctx context.Context, update *secondary.RobotUpdate) error {
	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	query := "UPDATE robots SET updated_at = ?"
	args := []any{update.UpdatedAt}

	if update.Name != nil {
		query += ", name = ?"
		args = append(args, *update.Name)
	}

	if update.Label != nil {
		query += ", label = ?"
		args = append(args, *update.Label)
	}

	if update.Year != nil {
		query += ", year = ?"
		args = append(args, *update.Year)
	}

	if update.Type != nil {
		query += ", type = ?"
		args = append(args, *update.Type)
	}

	if update.Archived != nil {
		query += ", archived = ?"
		args = append(args, boolToInt(*update.Archived))
	}

	query += " WHERE id = ?"
	args = append(args, update.ID)

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a robot named %q already exists", robot.ErrDuplicateName, derefString(update.Name))
		}
		return fmt.Errorf("failed to update robot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", robot.ErrNotFound, update.ID)
	}

	return nil
}

// Delete removes a robot from persistence.
func (r *RobotRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.db.Conn()
	if err != nil {
		return err
	}

	result, err := conn.ExecContext(ctx, "DELETE FROM robots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete robot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", robot.ErrNotFound, id)
	}

	return nil
}

// List retrieves one page of robots matching filters, plus the total match count.
// Filters are expected to be normalized already (see robot.NormalizeListOptions).
func (r *RobotRepository) List(ctx context.Context, filters secondary.RobotFilters) ([]*secondary.RobotRecord, int, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return nil, 0, err
	}

	orderBy, ok := sortColumns[filters.Sort]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown sort key %q", robot.ErrInvalidInput, filters.Sort)
	}
	direction := "ASC"
	if strings.EqualFold(filters.Order, "DESC") {
		direction = "DESC"
	}

	where := "WHERE 1=1"
	args := []any{}

	if !filters.IncludeArchived {
		where += " AND archived = 0"
	}

	if filters.Query != "" {
		where += ` AND fold(name) LIKE fold(?) ESCAPE '\'`
		args = append(args, "%"+escapeLike(filters.Query)+"%")
	}

	var total int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM robots "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count robots: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM robots %s ORDER BY %s %s, id ASC LIMIT ? OFFSET ?",
		robotColumns, where, orderBy, direction)
	rows, err := conn.QueryContext(ctx, query, append(args, filters.Limit, filters.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list robots: %w", err)
	}
	defer rows.Close()

	robots, err := scanRobots(rows)
	if err != nil {
		return nil, 0, err
	}

	return robots, total, nil
}

// Count returns the number of robots.
func (r *RobotRepository) Count(ctx context.Context, includeArchived bool) (int, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return 0, err
	}

	query := "SELECT COUNT(*) FROM robots"
	if !includeArchived {
		query += " WHERE archived = 0"
	}

	var count int
	if err := conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count robots: %w", err)
	}
	return count, nil
}

// GetAll retrieves every robot ordered by name.
func (r *RobotRepository) GetAll(ctx context.Context) ([]*secondary.RobotRecord, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx,
		"SELECT "+robotColumns+" FROM robots ORDER BY name COLLATE NOCASE ASC, id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get all robots: %w", err)
	}
	defer rows.Close()

	return scanRobots(rows)
}

// DeleteAll empties the robots table.
func (r *RobotRepository) DeleteAll(ctx context.Context) (int, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return 0, err
	}

	result, err := conn.ExecContext(ctx, "DELETE FROM robots")
	if err != nil {
		return 0, fmt.Errorf("failed to delete all robots: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}

// NameExists reports whether a robot other than excludeID uses name, ignoring case.
func (r *RobotRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	conn, err := r.db.Conn()
	if err != nil {
		return false, err
	}

	var count int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM robots WHERE fold(name) = fold(?) AND id != ?",
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check robot name: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRobot(row rowScanner) (*secondary.RobotRecord, error) {
	var archived int
	record := &secondary.RobotRecord{}
	err := row.Scan(
		&record.ID, &record.Name, &record.Label, &record.Year, &record.Type,
		&record.CreatedAt, &record.UpdatedAt, &archived,
	)
	if err != nil {
		return nil, err
	}
	record.Archived = archived != 0
	return record, nil
}

func scanRobots(rows *sql.Rows) ([]*secondary.RobotRecord, error) {
	var robots []*secondary.RobotRecord
	for rows.Next() {
		record, err := scanRobot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan robot: %w", err)
		}
		robots = append(robots, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read robots: %w", err)
	}
	return robots, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure RobotRepository implements the interface.
var _ secondary.RobotRepository = (*RobotRepository)(nil)
