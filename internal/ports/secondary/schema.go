package secondary

import "context"

// SchemaInspector defines the read-only secondary port for live schema introspection.
type SchemaInspector interface {
	// UserVersion returns the schema version stored in the database file.
	UserVersion(ctx context.Context) (int, error)

	// Columns returns the columns of table in declaration order.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)

	// Indexes returns the names of the indexes defined on table.
	Indexes(ctx context.Context, table string) ([]string, error)

	// RowCount returns the number of rows in table.
	RowCount(ctx context.Context, table string) (int, error)
}

// ColumnInfo describes one live column.
type ColumnInfo struct {
	Name string
	Type string
}
