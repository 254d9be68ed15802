package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/secondary"
)

// fixedNow is the clock used by every service under test.
var fixedNow = time.Date(2026, time.October, 15, 9, 30, 15, 123_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

// ============================================================================
// Mock Robot Repository
// ============================================================================

// Ensure mockRobotRepository implements the interface
var _ secondary.RobotRepository = (*mockRobotRepository)(nil)

// mockRobotRepository implements secondary.RobotRepository for testing.
type mockRobotRepository struct {
	robots      map[string]*secondary.RobotRecord
	createErr   error
	getErr      error
	updateErr   error
	listErr     error
	nameErr     error
	lastFilters secondary.RobotFilters
	createCalls int
}

func newMockRobotRepository() *mockRobotRepository {
	return &mockRobotRepository{
		robots: make(map[string]*secondary.RobotRecord),
	}
}

func (m *mockRobotRepository) Create(ctx context.Context, rec *secondary.RobotRecord) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	copied := *rec
	m.robots[rec.ID] = &copied
	return nil
}

func (m *mockRobotRepository) GetByID(ctx context.Context, id string) (*secondary.RobotRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.robots[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *mockRobotRepository) Update(ctx context.Context, update *secondary.RobotUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.robots[update.ID]
	if !ok {
		return fmt.Errorf("%w: %s", robot.ErrNotFound, update.ID)
	}
	if update.Name != nil {
		r.Name = *update.Name
	}
	if update.Label != nil {
		r.Label = *update.Label
	}
	if update.Year != nil {
		r.Year = *update.Year
	}
	if update.Type != nil {
		r.Type = *update.Type
	}
	if update.Archived != nil {
		r.Archived = *update.Archived
	}
	r.UpdatedAt = update.UpdatedAt
	return nil
}

func (m *mockRobotRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.robots[id]; !ok {
		return fmt.Errorf("%w: %s", robot.ErrNotFound, id)
	}
	delete(m.robots, id)
	return nil
}

func (m *mockRobotRepository) List(ctx context.Context, filters secondary.RobotFilters) ([]*secondary.RobotRecord, int, error) {
	m.lastFilters = filters
	if m.listErr != nil {
		return nil, 0, m.listErr
	}

	var matching []*secondary.RobotRecord
	for _, r := range m.sorted() {
		if r.Archived && !filters.IncludeArchived {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filters.Query)) {
			continue
		}
		matching = append(matching, r)
	}

	total := len(matching)
	if filters.Offset >= total {
		return nil, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > total {
		end = total
	}
	return matching[filters.Offset:end], total, nil
}

func (m *mockRobotRepository) Count(ctx context.Context, includeArchived bool) (int, error) {
	count := 0
	for _, r := range m.robots {
		if includeArchived || !r.Archived {
			count++
		}
	}
	return count, nil
}

func (m *mockRobotRepository) GetAll(ctx context.Context) ([]*secondary.RobotRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(), nil
}

func (m *mockRobotRepository) DeleteAll(ctx context.Context) (int, error) {
	n := len(m.robots)
	m.robots = make(map[string]*secondary.RobotRecord)
	return n, nil
}

func (m *mockRobotRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	if m.nameErr != nil {
		return false, m.nameErr
	}
	for _, r := range m.robots {
		if r.ID != excludeID && strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRobotRepository) sorted() []*secondary.RobotRecord {
	out := make([]*secondary.RobotRecord, 0, len(m.robots))
	for _, r := range m.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// seed stores a robot directly, bypassing the service.
func (m *mockRobotRepository) seed(id, name string, year int, robotType string, archived bool) *secondary.RobotRecord {
	rec := &secondary.RobotRecord{
		ID:        id,
		Name:      name,
		Label:     "Label for " + name,
		Year:      year,
		Type:      robotType,
		CreatedAt: 1000,
		UpdatedAt: 1000,
		Archived:  archived,
	}
	m.robots[id] = rec
	return rec
}

// ============================================================================
// Mock Transfer Ports
// ============================================================================

var (
	_ secondary.ExportSink   = (*mockExportSink)(nil)
	_ secondary.ImportSource = (*mockImportSource)(nil)
)

// mockExportSink records what was saved.
type mockExportSink struct {
	saved    []byte
	fileName string
	target   string
	saveErr  error
}

func (m *mockExportSink) Save(ctx context.Context, fileName, target string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = data
	m.fileName = fileName
	m.target = target
	if target != "" {
		return target, nil
	}
	return "/exports/" + fileName, nil
}

// mockImportSource serves fixed content.
type mockImportSource struct {
	data    []byte
	readErr error
	source  string
}

func (m *mockImportSource) Read(ctx context.Context, source string) ([]byte, error) {
	m.source = source
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.data, nil
}

// ============================================================================
// Mock Schema Inspector
// ============================================================================

var _ secondary.SchemaInspector = (*mockSchemaInspector)(nil)

// mockSchemaInspector reports a fixed schema.
type mockSchemaInspector struct {
	version    int
	columns    []secondary.ColumnInfo
	indexes    []string
	rowCount   int
	versionErr error
}

func (m *mockSchemaInspector) UserVersion(ctx context.Context) (int, error) {
	if m.versionErr != nil {
		return 0, m.versionErr
	}
	return m.version, nil
}

func (m *mockSchemaInspector) Columns(ctx context.Context, table string) ([]secondary.ColumnInfo, error) {
	return m.columns, nil
}

func (m *mockSchemaInspector) Indexes(ctx context.Context, table string) ([]string, error) {
	return m.indexes, nil
}

func (m *mockSchemaInspector) RowCount(ctx context.Context, table string) (int, error) {
	return m.rowCount, nil
}
