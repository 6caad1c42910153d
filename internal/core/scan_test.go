package core

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Users":       "users",
		"UserProfile": "user_profile",
		"UserID":      "user_id",
		"HTTPServer":  "http_server",
		"id":          "id",
	}
	for in, want := range cases {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestFields(t *testing.T) {
	type row struct {
		ID        int
		CreatedAt time.Time `db:"created"`
		Skipped   string    `db:"-"`
		Note      string    `db:",pk"`
		hidden    int
	}
	fields := Fields(reflect.TypeOf(row{}))
	var cols []string
	for _, f := range fields {
		cols = append(cols, f.Column)
	}
	assert.Equal(t, []string{"id", "created", "note"}, cols)
	assert.False(t, fields[0].PrimaryKey)
	assert.True(t, fields[2].PrimaryKey)
	assert.Equal(t, "row", TableName(reflect.TypeOf(&row{})))
}

func TestConnect_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	defer Close(db)

	_, err = db.ExecContext(ctx, `CREATE TABLE events (id INTEGER PRIMARY KEY, title TEXT, at DATETIME)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO events(title, at) VALUES ('launch', '2024-01-02 03:04:05')`)
	require.NoError(t, err)

	type event struct {
		ID    int64
		Title string
		At    time.Time
	}
	got, err := NewQueryBuilder[event](db).From("events").All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "launch", got[0].Title)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got[0].At)

	stamps, err := NewQueryBuilder[time.Time](db).From("events").Select("at").All(ctx)
	require.NoError(t, err)
	assert.Len(t, stamps, 1)

	_, err = Connect(ctx, "")
	assert.Error(t, err)
}
