package runtime

import (
	"context"
	"database/sql"

	"github.com/TechXTT/litebridge/pkg/migrate"
)

// NewManager returns a migration manager pointed at a directory.
func NewManager(db *sql.DB, dir string) (*migrate.Manager, error) {
	return migrate.NewManager(db, dir)
}

// MigrateUp applies every pending migration in dir and returns how many
// ran.
func MigrateUp(ctx context.Context, db *sql.DB, dir string) (int, error) {
	m, err := NewManager(db, dir)
	if err != nil {
		return 0, err
	}
	return m.Up(ctx)
}
