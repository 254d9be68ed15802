package db

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version    int
	Name       string
	Statements []string
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "001_init",
		Statements: []string{`
			CREATE TABLE IF NOT EXISTS robots (
				id TEXT PRIMARY KEY NOT NULL,
				name TEXT NOT NULL UNIQUE,
				label TEXT NOT NULL,
				year INTEGER NOT NULL,
				type TEXT NOT NULL CHECK(type IN ('industrial', 'service', 'medical', 'educational', 'other')),
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			)`,
		},
	},
	{
		Version: 2,
		Name:    "002_add_indexes",
		Statements: []string{
			"CREATE INDEX IF NOT EXISTS idx_robots_name ON robots(name)",
			"CREATE INDEX IF NOT EXISTS idx_robots_year ON robots(year)",
			"CREATE INDEX IF NOT EXISTS idx_robots_type ON robots(type)",
		},
	},
	{
		Version: 3,
		Name:    "003_add_archived",
		Statements: []string{
			"ALTER TABLE robots ADD COLUMN archived INTEGER NOT NULL DEFAULT 0",
			"CREATE INDEX IF NOT EXISTS idx_robots_archived ON robots(archived)",
		},
	},
}

// Migrations returns a copy of the built-in migration list.
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	return out
}

// LatestVersion returns the highest version in the built-in migration list.
func LatestVersion() int {
	return latestVersion(migrations)
}

func latestVersion(list []Migration) int {
	latest := 0
	for _, m := range list {
		if m.Version > latest {
			latest = m.Version
		}
	}
	return latest
}

// RunMigrations executes all pending migrations.
// Each migration runs in its own transaction together with the version bump,
// so the stored version always names the last fully applied migration.
func (h *Handle) RunMigrations(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runMigrationsLocked(ctx)
}

func (h *Handle) runMigrationsLocked(ctx context.Context) error {
	if h.conn == nil {
		return ErrNotOpen
	}

	currentVersion, err := readVersion(ctx, h.conn)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	h.logger.Debug("current schema version", zap.Int("version", currentVersion))

	var pending []Migration
	for _, m := range h.migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		h.state = StateReady
		return nil
	}

	h.state = StateMigrationsPending
	h.logger.Info("migrations pending", zap.Int("count", len(pending)))

	for _, m := range pending {
		h.state = StateMigrationApplying
		if err := h.applyMigration(ctx, m); err != nil {
			h.state = StateFailed
			return fmt.Errorf("%w: migration %d (%s): %v", ErrMigrationFailed, m.Version, m.Name, err)
		}
		h.state = StateMigrationsPending
		h.logger.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
	}

	h.state = StateReady
	return nil
}

func (h *Handle) applyMigration(ctx context.Context, m Migration) error {
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if isBenignDuplicate(err) {
				h.logger.Warn("schema change already present, continuing",
					zap.Int("version", m.Version),
					zap.String("name", m.Name),
					zap.Error(err),
				)
				continue
			}
			tx.Rollback()
			return err
		}
	}

	if err := writeVersion(ctx, tx, m.Version); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// isBenignDuplicate reports whether err means the structure a migration
// creates is already there.
func isBenignDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column name") ||
		strings.Contains(msg, "already exists")
}
