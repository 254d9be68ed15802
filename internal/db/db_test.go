package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHandle(t *testing.T, opts ...Option) (*Handle, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFileName)
	h, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		h.Close()
	})
	return h, path
}

func columnNames(t *testing.T, conn *sql.DB) []string {
	t.Helper()

	rows, err := conn.Query("SELECT name FROM pragma_table_info('robots') ORDER BY cid")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func indexNames(t *testing.T, conn *sql.DB) []string {
	t.Helper()

	rows, err := conn.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'robots' AND name LIKE 'idx_%'")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	sort.Strings(names)
	return names
}

func TestOpen_FreshDatabaseMigratesToLatest(t *testing.T) {
	h, _ := openTestHandle(t)
	ctx := context.Background()

	assert.Equal(t, StateReady, h.State())

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Equal(t, LatestVersion(), version)

	conn, err := h.Conn()
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"id", "name", "label", "year", "type", "created_at", "updated_at", "archived"},
		columnNames(t, conn),
	)
	assert.Equal(t,
		[]string{"idx_robots_archived", "idx_robots_name", "idx_robots_type", "idx_robots_year"},
		indexNames(t, conn),
	)
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	first, err := Open(ctx, path)
	require.NoError(t, err)
	conn, err := first.Conn()
	require.NoError(t, err)
	colsBefore := columnNames(t, conn)
	idxBefore := indexNames(t, conn)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	version, err := second.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	conn, err = second.Conn()
	require.NoError(t, err)
	assert.Equal(t, colsBefore, columnNames(t, conn))
	assert.Equal(t, idxBefore, indexNames(t, conn))
}

func TestRunMigrations_TwiceLeavesSchemaUnchanged(t *testing.T) {
	h, _ := openTestHandle(t)
	ctx := context.Background()

	require.NoError(t, h.RunMigrations(ctx))
	require.NoError(t, h.RunMigrations(ctx))

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Equal(t, StateReady, h.State())
}

func TestRunMigrations_SkipsAppliedVersions(t *testing.T) {
	h, _ := openTestHandle(t)
	ctx := context.Background()

	// Pretend only v1 was applied: v2 and v3 re-run against existing
	// structures and must be absorbed as benign duplicates.
	require.NoError(t, h.setVersion(ctx, 1))
	require.NoError(t, h.RunMigrations(ctx))

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestRunMigrations_DuplicateColumnAdvancesVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	// Build a v2 database that already carries the archived column.
	partial, err := Open(ctx, path, WithMigrations(Migrations()[:2]))
	require.NoError(t, err)
	conn, err := partial.Conn()
	require.NoError(t, err)
	_, err = conn.Exec("ALTER TABLE robots ADD COLUMN archived INTEGER NOT NULL DEFAULT 0")
	require.NoError(t, err)
	require.NoError(t, partial.Close())

	h, err := Open(ctx, path)
	require.NoError(t, err)
	defer h.Close()

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	conn, err = h.Conn()
	require.NoError(t, err)
	assert.Contains(t, indexNames(t, conn), "idx_robots_archived")
}

func TestOpen_FatalMigrationKeepsLastCompletedVersion(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	broken := []Migration{
		Migrations()[0],
		{Version: 2, Name: "002_broken", Statements: []string{"CREATE TABLE oops ("}},
	}

	h, err := Open(ctx, path, WithMigrations(broken))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Nil(t, h)

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	var version int
	require.NoError(t, raw.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_StorageUnavailable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := Open(context.Background(), filepath.Join(blocker, "nested", DefaultFileName))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestClose_LaterOperationsFailWithNotOpen(t *testing.T) {
	h, _ := openTestHandle(t)

	require.NoError(t, h.Close())
	assert.Equal(t, StateClosed, h.State())

	_, err := h.Conn()
	assert.ErrorIs(t, err, ErrNotOpen)

	_, err = h.Version(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)

	// Closing twice is harmless.
	require.NoError(t, h.Close())
}

func TestReset_RecreatesEmptyDatabase(t *testing.T) {
	h, path := openTestHandle(t)
	ctx := context.Background()

	conn, err := h.Conn()
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO robots (id, name, label, year, type, created_at, updated_at)
		VALUES ('r1', 'R2D2', 'Astromech', 1977, 'service', 1, 1)`)
	require.NoError(t, err)

	require.NoError(t, h.Reset(ctx))
	assert.Equal(t, StateReady, h.State())
	assert.Equal(t, path, h.Path())

	version, err := h.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	conn, err = h.Conn()
	require.NoError(t, err)
	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM robots").Scan(&count))
	assert.Zero(t, count)
}

func TestOpen_InMemory(t *testing.T) {
	h, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer h.Close()

	version, err := h.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestSchemaSQLMatchesMigrations(t *testing.T) {
	migrated, _ := openTestHandle(t)
	migratedConn, err := migrated.Conn()
	require.NoError(t, err)

	fresh, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer fresh.Close()
	fresh.SetMaxOpenConns(1)
	_, err = fresh.Exec(GetSchemaSQL())
	require.NoError(t, err)

	assert.Equal(t, columnNames(t, migratedConn), columnNames(t, fresh))
	assert.Equal(t, indexNames(t, migratedConn), indexNames(t, fresh))
}

func TestExpectedSchemaCoversEveryMigration(t *testing.T) {
	expected := ExpectedSchema()
	require.Len(t, expected, len(Migrations()))
	for i, m := range Migrations() {
		assert.Equal(t, m.Version, expected[i].Version)
	}
}

// mockHandle wires a sqlmock connection into a handle the way Open would.
func mockHandle(t *testing.T, list []Migration) (*Handle, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := newHandle("mock.db", WithMigrations(list))
	h.conn = conn
	return h, mock
}

func TestRunMigrations_FatalErrorRollsBack(t *testing.T) {
	list := []Migration{
		{Version: 1, Name: "one", Statements: []string{"CREATE TABLE a (id TEXT)"}},
		{Version: 2, Name: "two", Statements: []string{"CREATE TABLE b (id TEXT)"}},
	}
	h, mock := mockHandle(t, list)

	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA user_version")).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id TEXT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA user_version = 1")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id TEXT)")).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()
	mock.ExpectClose()

	h.mu.Lock()
	err := h.attachLocked(context.Background())
	h.mu.Unlock()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, StateFailed, h.State())

	_, err = h.Conn()
	assert.ErrorIs(t, err, ErrNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_BenignDuplicateContinues(t *testing.T) {
	list := []Migration{
		{Version: 3, Name: "003_add_archived", Statements: []string{
			"ALTER TABLE robots ADD COLUMN archived INTEGER NOT NULL DEFAULT 0",
			"CREATE INDEX IF NOT EXISTS idx_robots_archived ON robots(archived)",
		}},
	}
	h, mock := mockHandle(t, list)

	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA user_version")).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE robots ADD COLUMN archived")).
		WillReturnError(errors.New("duplicate column name: archived"))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_robots_archived")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA user_version = 3")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, h.RunMigrations(context.Background()))
	assert.Equal(t, StateReady, h.State())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsBenignDuplicate(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("duplicate column name: archived"), true},
		{errors.New("table robots already exists"), true},
		{errors.New("index idx_robots_name already exists"), true},
		{errors.New("near \"(\": syntax error"), false},
		{errors.New("database is locked"), false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, isBenignDuplicate(tt.err))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestFoldFunctionRegistered(t *testing.T) {
	h, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer h.Close()

	conn, err := h.Conn()
	require.NoError(t, err)

	var folded string
	require.NoError(t, conn.QueryRow("SELECT fold(?)", "ÉMILE Ångström").Scan(&folded))
	assert.Equal(t, "émile ångström", folded)
	assert.Equal(t, FoldName("ÉMILE Ångström"), folded)
}
