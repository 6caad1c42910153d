package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/litebridge/pkg/bridge"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, bridge.Version)
}

func TestExecQueryTablesDescribe(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, "--db", db, "exec", "CREATE TABLE pets (id INTEGER PRIMARY KEY, name TEXT NOT NULL, born DATETIME, note TEXT DEFAULT 'none')")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "exec", "INSERT INTO pets(name) VALUES ('rex'), ('tom')")
	require.NoError(t, err)
	assert.Equal(t, "2 row(s) affected\n", out)

	out, err = run(t, "--db", db, "query", "SELECT id, name, born FROM pets ORDER BY id")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ID", "NAME", "BORN"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "rex", "NULL"}, strings.Fields(lines[1]))
	assert.Equal(t, "(2 row(s))", lines[3])

	out, err = run(t, "--db", db, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "pets")

	out, err = run(t, "--db", db, "describe", "pets")
	require.NoError(t, err)
	assert.Contains(t, out, "AFFINITY")
	assert.Regexp(t, `note\s+TEXT\s+TEXT\s+true\s+'none'`, out)

	_, err = run(t, "--db", db, "describe", "ghosts")
	assert.ErrorContains(t, err, "no such table")
}

func TestReadOnlyFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ro.db")
	_, err := run(t, "--db", db, "exec", "CREATE TABLE t (v TEXT)")
	require.NoError(t, err)

	_, err = run(t, "--db", db, "--read-only", "exec", "INSERT INTO t VALUES ('x')")
	var sqlErr *bridge.SQLError
	require.ErrorAs(t, err, &sqlErr)
	assert.Equal(t, bridge.StateReadOnlyTransaction, sqlErr.State)
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	migrations := filepath.Join(dir, "migrations")
	require.NoError(t, os.Mkdir(migrations, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(migrations, "0001_init.up.sql"), []byte("CREATE TABLE a (id INTEGER);"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(migrations, "0001_init.down.sql"), []byte("DROP TABLE a;"), 0o644))
	cfgPath := filepath.Join(dir, "litebridge.yaml")
	cfg := "database: " + filepath.Join(dir, "m.db") + "\nmigrations: " + migrations + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := run(t, "--config", cfgPath, "migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, "0001_init: pending\n", out)

	out, err = run(t, "--config", cfgPath, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "Applied 1 migration(s)\n", out)

	out, err = run(t, "--config", cfgPath, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "Rolled back 1 migration\n", out)

	out, err = run(t, "--config", cfgPath, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "No migrations to roll back.\n", out)

	_, err = run(t, "--config", cfgPath, "migrate", "sideways")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "abc", formatValue([]byte("abc")))
	assert.Equal(t, "42", formatValue(int64(42)))
}
