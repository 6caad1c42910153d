package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestUp_AppliesPendingMigrations(t *testing.T) {
	upSQL := "CREATE TABLE foo(id INTEGER);"
	dir := writeMigrations(t, map[string]string{
		"0001_foo.up.sql":   upSQL,
		"0001_foo.down.sql": "DROP TABLE foo;",
		"README.md":         "ignored",
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectExec(fmt.Sprintf("^%s$", regexp.QuoteMeta(upSQL))).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations\(version\) VALUES\(\?\)`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)
	require.Len(t, mgr.Migrations(), 1)

	n, err := mgr.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_RollsBackFailedMigration(t *testing.T) {
	dir := writeMigrations(t, map[string]string{"0002_bad.up.sql": "BROKEN"})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("^BROKEN$").WillReturnError(fmt.Errorf("syntax error"))
	mock.ExpectRollback()

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	n, err := mgr.Up(context.Background())
	assert.ErrorContains(t, err, "apply up 2")
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDown_RollsBackLatestMigration(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"0001_foo.up.sql":   "X",
		"0001_foo.down.sql": "Y",
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("^Y$").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM schema_migrations WHERE version = \?`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	rolled, err := mgr.Down(context.Background())
	require.NoError(t, err)
	assert.True(t, rolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDown_NothingApplied(t *testing.T) {
	dir := writeMigrations(t, map[string]string{"0001_foo.up.sql": "X"})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	rolled, err := mgr.Down(context.Background())
	require.NoError(t, err)
	assert.False(t, rolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDown_MissingDownFile(t *testing.T) {
	dir := writeMigrations(t, map[string]string{"0001_a.up.sql": "X"})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	rolled, err := mgr.Down(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_a has no down file")
	assert.False(t, rolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatus(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"0001_users.up.sql": "A",
		"0002_posts.up.sql": "B",
		"0003_tags.up.sql":  "C",
	})

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))

	mgr, err := NewManager(db, dir)
	require.NoError(t, err)

	status, err := mgr.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 3)
	assert.Equal(t, "users", status[0].Name)
	assert.True(t, status[0].Applied)
	assert.True(t, status[1].Applied)
	assert.False(t, status[2].Applied)
	assert.Equal(t, 3, status[2].Version)
}

func TestNewManager_Errors(t *testing.T) {
	_, err := NewManager(nil, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "read migrations dir")

	dir := writeMigrations(t, map[string]string{
		"0001_a.up.sql":   "A",
		"0001_b.down.sql": "B",
	})
	_, err = NewManager(nil, dir)
	assert.ErrorContains(t, err, "two names")
}
