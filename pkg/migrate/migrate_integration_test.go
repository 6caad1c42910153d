package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/litebridge/pkg/bridge"
	"github.com/TechXTT/litebridge/pkg/native"
)

func TestManager_AgainstSQLite(t *testing.T) {
	ctx := context.Background()
	handle, err := native.Open(ctx, filepath.Join(t.TempDir(), "mig.db"), native.CreateIfNecessary)
	require.NoError(t, err)
	defer handle.Close()
	db := bridge.OpenDB(handle)
	defer db.Close()

	dir := writeMigrations(t, map[string]string{
		"0001_users.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"0001_users.down.sql": "DROP TABLE users;",
		"0002_seed.up.sql":    "INSERT INTO users(name) VALUES ('root'); INSERT INTO users(name) VALUES ('guest');",
		"0002_seed.down.sql":  "DELETE FROM users;",
	})
	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	n, err := mgr.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, handle.InTransaction())

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 2, count)

	n, err = mgr.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rolled, err := mgr.Down(ctx)
	require.NoError(t, err)
	assert.True(t, rolled)

	status, err := mgr.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status[0].Applied)
	assert.False(t, status[1].Applied)

	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	assert.Zero(t, count)
}
