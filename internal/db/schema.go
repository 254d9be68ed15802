package db

// RobotsTable is the only user table.
const RobotsTable = "robots"

// SchemaSQL is the complete schema after all migrations have been applied.
//
// Repository tests load it through GetSchemaSQL() so that they run against the
// same shape as a migrated file. Keep it in sync with the migrations list:
// every column or index added by a migration must appear here too, and
// TestSchemaSQLMatchesMigrations fails when they drift.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS robots (
	id TEXT PRIMARY KEY NOT NULL,
	name TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	year INTEGER NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('industrial', 'service', 'medical', 'educational', 'other')),
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	archived INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_robots_name ON robots(name);
CREATE INDEX IF NOT EXISTS idx_robots_year ON robots(year);
CREATE INDEX IF NOT EXISTS idx_robots_type ON robots(type);
CREATE INDEX IF NOT EXISTS idx_robots_archived ON robots(archived);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}

// VersionSchema lists what a schema version introduces on the robots table.
// Missing columns break the repository; missing indexes only slow it down.
type VersionSchema struct {
	Version int
	Columns []string
	Indexes []string
}

var expectedSchema = []VersionSchema{
	{
		Version: 1,
		Columns: []string{"id", "name", "label", "year", "type", "created_at", "updated_at"},
	},
	{
		Version: 2,
		Indexes: []string{"idx_robots_name", "idx_robots_year", "idx_robots_type"},
	},
	{
		Version: 3,
		Columns: []string{"archived"},
		Indexes: []string{"idx_robots_archived"},
	},
}

// ExpectedSchema returns the per-version expectations in ascending order.
func ExpectedSchema() []VersionSchema {
	out := make([]VersionSchema, len(expectedSchema))
	copy(out, expectedSchema)
	return out
}
