// Package db owns the embedded SQLite file: opening it, bringing its schema
// to the latest version and tearing it down again.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DriverName is go-sqlite3 with the fold() SQL function registered on every
// connection. fold(x) applies FoldName, so name comparisons are case-insensitive
// beyond ASCII, which SQLite's built-in LOWER and NOCASE are not.
const DriverName = "sqlite3_robodb"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", FoldName, true)
		},
	})
}

// FoldName returns the form of a robot name used for uniqueness and search.
func FoldName(name string) string {
	return strings.ToLower(name)
}

// DefaultFileName is the database file name used when only a directory is configured.
const DefaultFileName = "robots.db"

var (
	// ErrStorageUnavailable means the file system or the SQLite engine could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotOpen is returned by a handle that is not in the Ready state.
	ErrNotOpen = errors.New("database is not open")
	// ErrMigrationFailed wraps a fatal, non-benign migration error.
	ErrMigrationFailed = errors.New("migration failed")
)

// State is a step of the handle lifecycle.
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateMigrationsPending
	StateMigrationApplying
	StateReady
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpening:
		return "opening"
	case StateMigrationsPending:
		return "migrations-pending"
	case StateMigrationApplying:
		return "migration-applying"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Handle is the single storage handle of the process. It is created by the
// composition root and passed to every component that needs the database.
type Handle struct {
	mu         sync.Mutex
	path       string
	conn       *sql.DB
	state      State
	logger     *zap.Logger
	migrations []Migration
}

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the logger used for migration progress.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMigrations replaces the built-in migration list.
func WithMigrations(list []Migration) Option {
	return func(h *Handle) {
		h.migrations = list
	}
}

func newHandle(path string, opts ...Option) *Handle {
	h := &Handle{
		path:       path,
		state:      StateUnopened,
		logger:     zap.NewNop(),
		migrations: migrations,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open opens (creating if absent) the database file at path and applies all
// pending migrations before returning. The returned handle is Ready.
func Open(ctx context.Context, path string, opts ...Option) (*Handle, error) {
	h := newHandle(path, opts...)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.openLocked(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handle) openLocked(ctx context.Context) error {
	h.state = StateOpening
	h.logger.Debug("opening database", zap.String("path", h.path))

	conn, err := openConn(ctx, h.path)
	if err != nil {
		h.state = StateFailed
		return err
	}
	h.conn = conn
	return h.attachLocked(ctx)
}

// attachLocked migrates the freshly opened connection and closes it again on failure.
func (h *Handle) attachLocked(ctx context.Context) error {
	if err := h.runMigrationsLocked(ctx); err != nil {
		h.logger.Error("migrations failed", zap.String("path", h.path), zap.Error(err))
		h.conn.Close()
		h.conn = nil
		h.state = StateFailed
		return err
	}
	h.logger.Debug("database ready", zap.String("path", h.path))
	return nil
}

func openConn(ctx context.Context, path string) (*sql.DB, error) {
	if !isMemoryPath(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrStorageUnavailable, err)
		}
	}

	conn, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStorageUnavailable, err)
	}
	// :memory: databases live and die with their connection.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to reach database: %v", ErrStorageUnavailable, err)
	}
	return conn, nil
}

// Conn returns the underlying connection. It fails with ErrNotOpen unless
// the handle is Ready.
func (h *Handle) Conn() (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateReady || h.conn == nil {
		return nil, fmt.Errorf("%w (state: %s)", ErrNotOpen, h.state)
	}
	return h.conn, nil
}

// Version returns the stored schema version.
func (h *Handle) Version(ctx context.Context) (int, error) {
	conn, err := h.Conn()
	if err != nil {
		return 0, err
	}
	return readVersion(ctx, conn)
}

// setVersion overwrites the stored schema version outside of a migration.
func (h *Handle) setVersion(ctx context.Context, v int) error {
	conn, err := h.Conn()
	if err != nil {
		return err
	}
	return writeVersion(ctx, conn, v)
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Path returns the database file path.
func (h *Handle) Path() string {
	return h.path
}

// LatestVersion returns the highest version this handle migrates to.
func (h *Handle) LatestVersion() int {
	return latestVersion(h.migrations)
}

// Close releases the handle. Later operations fail with ErrNotOpen.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeLocked()
}

func (h *Handle) closeLocked() error {
	if h.conn == nil {
		if h.state != StateFailed {
			h.state = StateClosed
		}
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	h.state = StateClosed
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Reset closes the handle, deletes the database file and reopens it,
// re-running every migration from version 0. Destructive.
func (h *Handle) Reset(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.closeLocked(); err != nil {
		return err
	}
	if err := Destroy(h.path); err != nil {
		h.state = StateFailed
		return err
	}
	h.logger.Info("database deleted", zap.String("path", h.path))
	return h.openLocked(ctx)
}

// Destroy deletes the database file at path along with its journal files.
// A missing file is not an error.
func Destroy(path string) error {
	if isMemoryPath(path) {
		return nil
	}
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to delete %s: %v", ErrStorageUnavailable, p, err)
		}
	}
	return nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readVersion(ctx context.Context, q execQueryer) (int, error) {
	var v int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// writeVersion cannot use a bound parameter: PRAGMA values are literals.
func writeVersion(ctx context.Context, q execQueryer, v int) error {
	_, err := q.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v))
	return err
}
