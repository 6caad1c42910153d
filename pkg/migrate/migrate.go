package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/TechXTT/litebridge/internal/logger"
)

var fileRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Migration holds one versioned migration
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Status is the state of one migration against the database.
type Status struct {
	Migration
	Applied bool
}

// Manager applies and rolls back migrations
type Manager struct {
	db            *sql.DB
	migrationsDir string
	migrations    []Migration
}

// NewManager loads migration files from the specified directory
func NewManager(db *sql.DB, migrationsDir string) (*Manager, error) {
	m := &Manager{db: db, migrationsDir: migrationsDir}
	if err := m.loadMigrations(); err != nil {
		return nil, err
	}
	return m, nil
}

// Migrations returns the loaded migrations in version order.
func (m *Manager) Migrations() []Migration {
	return m.migrations
}

// loadMigrations reads .up.sql/.down.sql files and organizes them by version
func (m *Manager) loadMigrations() error {
	entries, err := os.ReadDir(m.migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	tmp := map[int]*Migration{}
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		matches := fileRe.FindStringSubmatch(fi.Name())
		if len(matches) != 4 {
			continue
		}
		ver, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("parse version of %s: %w", fi.Name(), err)
		}
		name := matches[2]
		dir := matches[3]
		data, err := os.ReadFile(filepath.Join(m.migrationsDir, fi.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", fi.Name(), err)
		}
		mig, exists := tmp[ver]
		if !exists {
			mig = &Migration{Version: ver, Name: name}
			tmp[ver] = mig
		} else if mig.Name != name {
			return fmt.Errorf("version %d has two names: %s and %s", ver, mig.Name, name)
		}
		if dir == "up" {
			mig.UpSQL = string(data)
		} else {
			mig.DownSQL = string(data)
		}
	}
	versions := make([]int, 0, len(tmp))
	for v := range tmp {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	for _, v := range versions {
		m.migrations = append(m.migrations, *tmp[v])
	}
	return nil
}

// EnsureVersionTable creates schema_migrations if missing
func (m *Manager) EnsureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// currentVersion returns the highest applied migration version
func (m *Manager) currentVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	row := m.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations;`)
	if err := row.Scan(&v); err != nil {
		return 0, fmt.Errorf("read current version: %w", err)
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// apply runs body and the version bookkeeping statement in one transaction.
func (m *Manager) apply(ctx context.Context, body, bookkeeping string, version int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Up applies all pending migrations and returns how many ran.
func (m *Manager) Up(ctx context.Context) (int, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return 0, err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}
		if mig.UpSQL == "" {
			return applied, fmt.Errorf("migration %04d_%s has no up file", mig.Version, mig.Name)
		}
		logger.Info("applying %04d_%s.up.sql", mig.Version, mig.Name)
		err := m.apply(ctx, mig.UpSQL, `INSERT INTO schema_migrations(version) VALUES(?);`, mig.Version)
		if err != nil {
			return applied, fmt.Errorf("apply up %d: %w", mig.Version, err)
		}
		applied++
	}
	return applied, nil
}

// Down rolls back the latest migration. It reports false when nothing was
// applied. A migration without a down file cannot be rolled back and stays
// recorded.
func (m *Manager) Down(ctx context.Context) (bool, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return false, err
	}

	current, err := m.currentVersion(ctx)
	if err != nil {
		return false, err
	}
	if current == 0 {
		logger.Info("no migrations to roll back")
		return false, nil
	}
	var toRoll *Migration
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if m.migrations[i].Version == current {
			toRoll = &m.migrations[i]
			break
		}
	}
	if toRoll == nil {
		return false, fmt.Errorf("migration not found for version %d", current)
	}
	if toRoll.DownSQL == "" {
		return false, fmt.Errorf("migration %04d_%s has no down file", toRoll.Version, toRoll.Name)
	}
	logger.Info("rolling back %04d_%s.down.sql", toRoll.Version, toRoll.Name)
	err = m.apply(ctx, toRoll.DownSQL, `DELETE FROM schema_migrations WHERE version = ?;`, toRoll.Version)
	if err != nil {
		return false, fmt.Errorf("apply down %d: %w", toRoll.Version, err)
	}
	return true, nil
}

// Status reports every known migration and whether it has been applied.
func (m *Manager) Status(ctx context.Context) ([]Status, error) {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return nil, err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, len(m.migrations))
	for i, mig := range m.migrations {
		out[i] = Status{Migration: mig, Applied: mig.Version <= current}
	}
	return out, nil
}
