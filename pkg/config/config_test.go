package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechXTT/litebridge/pkg/native"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "litebridge.yaml", `
database: data/app.db
read_only: true
migrations: db/migrations
verbose: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/app.db", cfg.Database)
	assert.True(t, cfg.ReadOnly)
	assert.True(t, cfg.Create, "defaults survive a partial file")
	assert.Equal(t, "db/migrations", cfg.Migrations)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, native.OpenReadOnly, cfg.OpenFlags())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "database: file.db\n")
	t.Setenv(EnvDatabase, "other.db")
	t.Setenv(EnvReadOnly, "1")
	t.Setenv(EnvMigrations, "sql")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.Database)
	assert.True(t, cfg.ReadOnly)
	assert.Equal(t, "sql", cfg.Migrations)
}

func TestLoad_BadEnvBool(t *testing.T) {
	t.Setenv(EnvReadOnly, "sometimes")
	_, err := Load(writeFile(t, "cfg.yaml", "database: x.db\n"))
	assert.ErrorContains(t, err, EnvReadOnly)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeFile(t, "cfg.yaml", "database: [unterminated\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestOpenFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want native.OpenFlags
	}{
		{"create by default", Config{Database: "a.db", Create: true}, native.CreateIfNecessary},
		{"no create", Config{Database: "a.db"}, native.OpenReadWrite},
		{"read only", Config{Database: "a.db", ReadOnly: true, Create: true}, native.OpenReadOnly},
		{"uri mode wins", Config{Database: "file:a.db?mode=ro", Create: true}, native.OpenReadOnly},
		{"uri rw", Config{Database: "file:a.db?cache=shared&mode=rw", ReadOnly: true}, native.OpenReadWrite},
		{"memory", Config{Database: ":memory:", ReadOnly: true}, native.OpenReadWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.OpenFlags())
		})
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Default().Validate())
	assert.NoError(t, (&Config{Database: "x.db"}).Validate())
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:app.db?mode=ro", (&Config{Database: "app.db", ReadOnly: true}).DSN())
	assert.Equal(t, "file:app.db?mode=rwc", (&Config{Database: "app.db", Create: true}).DSN())
	assert.Equal(t, "file:app.db?mode=rw", (&Config{Database: "file:app.db?mode=rw", Create: true}).DSN())
	assert.Equal(t, ":memory:", (&Config{Database: ":memory:"}).DSN())
}
