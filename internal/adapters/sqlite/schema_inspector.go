package sqlite

import (
	"context"
	"fmt"
	"regexp"

	"github.com/example/robodb/internal/ports/secondary"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SchemaInspector implements secondary.SchemaInspector with SQLite pragmas.
type SchemaInspector struct {
	db ConnProvider
}

// NewSchemaInspector creates a new SQLite schema inspector.
func NewSchemaInspector(db ConnProvider) *SchemaInspector {
	return &SchemaInspector{db: db}
}

// UserVersion returns PRAGMA user_version.
func (s *SchemaInspector) UserVersion(ctx context.Context) (int, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return 0, err
	}

	var v int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Columns returns the columns of table in declaration order.
func (s *SchemaInspector) Columns(ctx context.Context, table string) ([]secondary.ColumnInfo, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []secondary.ColumnInfo
	for rows.Next() {
		var c secondary.ColumnInfo
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// Indexes returns the explicitly created indexes of table, sorted by name.
func (s *SchemaInspector) Indexes(ctx context.Context, table string) ([]string, error) {
	conn, err := s.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_autoindex%'
		ORDER BY name`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		indexes = append(indexes, name)
	}
	return indexes, rows.Err()
}

// RowCount returns the number of rows in table.
func (s *SchemaInspector) RowCount(ctx context.Context, table string) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	conn, err := s.db.Conn()
	if err != nil {
		return 0, err
	}

	var count int
	if err := conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return count, nil
}

// Ensure SchemaInspector implements the interface.
var _ secondary.SchemaInspector = (*SchemaInspector)(nil)
