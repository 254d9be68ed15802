package secondary

import "context"

// RobotRepository defines the secondary port for robot persistence.
// It is the only reader and writer of the robots table.
type RobotRepository interface {
	// Create persists a new robot.
	Create(ctx context.Context, robot *RobotRecord) error

	// GetByID retrieves a robot by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*RobotRecord, error)

	// Update applies the non-nil fields of update and sets updated_at.
	Update(ctx context.Context, update *RobotUpdate) error

	// Delete removes a robot from persistence.
	Delete(ctx context.Context, id string) error

	// List retrieves one page of robots and the total number of matches.
	List(ctx context.Context, filters RobotFilters) ([]*RobotRecord, int, error)

	// Count returns the number of robots, archived ones only when asked.
	Count(ctx context.Context, includeArchived bool) (int, error)

	// GetAll retrieves every robot ordered by name.
	GetAll(ctx context.Context) ([]*RobotRecord, error)

	// DeleteAll empties the table and returns the number of rows removed.
	DeleteAll(ctx context.Context) (int, error)

	// NameExists reports whether a robot other than excludeID uses name, ignoring case.
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
}

// RobotRecord represents a robot as stored in persistence.
type RobotRecord struct {
	ID        string
	Name      string
	Label     string
	Year      int
	Type      string
	CreatedAt int64 // epoch milliseconds
	UpdatedAt int64 // epoch milliseconds
	Archived  bool
}

// RobotUpdate carries a partial update. Nil fields are left untouched.
type RobotUpdate struct {
	ID        string
	Name      *string
	Label     *string
	Year      *int
	Type      *string
	Archived  *bool
	UpdatedAt int64
}

// RobotFilters contains normalized filter options for querying robots.
type RobotFilters struct {
	Query           string // case-insensitive substring of name
	Sort            string // name, year or createdAt
	Order           string // ASC or DESC
	Limit           int
	Offset          int
	IncludeArchived bool
}
