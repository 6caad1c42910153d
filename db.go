// Package db is a small struct-mapping layer over a litebridge connection.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"

	"github.com/TechXTT/litebridge/internal/core"
	"github.com/TechXTT/litebridge/internal/typeconv"
)

// DB struct using standard sql.DB
type DB struct {
	Conn *sql.DB
}

// NewDB opens the SQLite database at dataSourceName through the litebridge
// driver, creating the file when it does not exist.
func NewDB(dataSourceName string) (*DB, error) {
	conn, err := core.Connect(context.Background(), dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{Conn: conn}, nil
}

// Close closes the underlying pool.
func (db *DB) Close() error {
	return core.Close(db.Conn)
}

// From starts a query against table whose rows scan into T.
func From[T any](db *DB, table string) *core.QueryBuilder[T] {
	return core.NewQueryBuilder[T](db.Conn).From(table)
}

// Select retrieves all rows from the table corresponding to the provided struct slice
func (db *DB) Select(dest interface{}) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}
	elemType := destVal.Elem().Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a slice of structs, got %s", elemType)
	}

	query := "SELECT * FROM " + pq.QuoteIdentifier(core.TableName(elemType))
	rows, err := db.Conn.Query(query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return core.ScanRows(rows, destVal)
}

// AutoMigrate creates a table for every model that does not have one yet.
// Column types follow the Go field types; the field tagged ",pk", or else
// a field named ID, becomes the primary key.
func (db *DB) AutoMigrate(models ...interface{}) error {
	for _, model := range models {
		stmt, err := createTableSQL(reflect.TypeOf(model))
		if err != nil {
			return err
		}
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("auto migrate %T: %w", model, err)
		}
	}
	return nil
}

func createTableSQL(t reflect.Type) (string, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return "", fmt.Errorf("model must be a struct, got %v", t)
	}
	fields := core.Fields(t)
	if len(fields) == 0 {
		return "", fmt.Errorf("model %s has no exported fields", t.Name())
	}

	tagged := false
	for _, f := range fields {
		tagged = tagged || f.PrimaryKey
	}

	cols := make([]string, len(fields))
	for i, f := range fields {
		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		def := pq.QuoteIdentifier(f.Column) + " " + typeconv.MapGoTypeToSQL(ft.String())
		if f.PrimaryKey || (!tagged && f.Column == "id") {
			def += " PRIMARY KEY"
		}
		cols[i] = def
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(core.TableName(t)), strings.Join(cols, ", ")), nil
}
