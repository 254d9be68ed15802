package primary

import "context"

// RobotService defines the primary port for robot operations.
type RobotService interface {
	// CreateRobot validates and persists a new robot.
	CreateRobot(ctx context.Context, req CreateRobotRequest) (*Robot, error)

	// GetRobot retrieves a robot by ID. Returns nil, nil when absent.
	GetRobot(ctx context.Context, robotID string) (*Robot, error)

	// UpdateRobot applies the provided fields and returns the new state.
	UpdateRobot(ctx context.Context, req UpdateRobotRequest) (*Robot, error)

	// RemoveRobot hard-deletes a robot.
	RemoveRobot(ctx context.Context, robotID string) error

	// ArchiveRobot soft-deletes a robot.
	ArchiveRobot(ctx context.Context, robotID string) (*Robot, error)

	// UnarchiveRobot restores an archived robot.
	UnarchiveRobot(ctx context.Context, robotID string) (*Robot, error)

	// ListRobots searches, sorts and paginates robots.
	ListRobots(ctx context.Context, req ListRobotsRequest) (*RobotPage, error)

	// CountRobots counts robots, archived ones only when asked.
	CountRobots(ctx context.Context, includeArchived bool) (int, error)

	// GetAllRobots returns every robot ordered by name.
	GetAllRobots(ctx context.Context) ([]*Robot, error)

	// DeleteAllRobots empties the robot table.
	DeleteAllRobots(ctx context.Context) (int, error)

	// ImportRobots creates robots one by one, skipping rows that fail.
	ImportRobots(ctx context.Context, reqs []CreateRobotRequest) (*ImportReport, error)

	// RobotStats summarizes the stored robots.
	RobotStats(ctx context.Context) (*RobotStats, error)
}

// Robot represents a robot entity at the port boundary.
type Robot struct {
	ID        string
	Name      string
	Label     string
	Year      int
	Type      string
	CreatedAt int64
	UpdatedAt int64
	Archived  bool
}

// CreateRobotRequest contains parameters for creating a robot.
type CreateRobotRequest struct {
	Name  string
	Label string
	Year  int
	Type  string
}

// UpdateRobotRequest contains parameters for updating a robot.
// Nil fields are left untouched.
type UpdateRobotRequest struct {
	RobotID  string
	Name     *string
	Label    *string
	Year     *int
	Type     *string
	Archived *bool
}

// ListRobotsRequest contains search, sort and pagination parameters.
type ListRobotsRequest struct {
	Query           string
	Sort            string // name (default), year or createdAt
	Order           string // ASC (default) or DESC
	Limit           int    // defaults to 100
	Offset          int
	IncludeArchived bool
}

// RobotPage is one page of a robot listing.
type RobotPage struct {
	Robots  []*Robot
	Total   int
	HasMore bool
}

// ImportStatus is the outcome of importing one row.
type ImportStatus string

const (
	ImportInserted ImportStatus = "inserted"
	ImportSkipped  ImportStatus = "skipped"
)

// ImportRowResult describes what happened to one imported row.
type ImportRowResult struct {
	Index   int
	Name    string
	Status  ImportStatus
	Reason  string
	RobotID string
}

// ImportReport is the result of a bulk import.
type ImportReport struct {
	Inserted int
	Skipped  int
	Results  []ImportRowResult
}

// RobotStats summarizes stored robots.
type RobotStats struct {
	Total      int
	Archived   int
	ByType     map[string]int
	ByYear     map[int]int
	OldestYear int
	NewestYear int
}
