package bridge

import (
	"context"
	"database/sql"
	"sort"

	"github.com/lib/pq"

	"github.com/TechXTT/litebridge/internal/typeconv"
	"github.com/TechXTT/litebridge/pkg/native"
)

// MetaData describes the database behind a Conn. It is created with the
// Conn and keeps a reference back to it.
type MetaData struct {
	conn *Conn
}

// Table is one table or view.
type Table struct {
	Name string
	// Type is "table" or "view".
	Type string
}

// Column is one column of a table, as reported by PRAGMA table_info.
type Column struct {
	Position     int
	Name         string
	DeclaredType string
	// Affinity is the SQLite type affinity of DeclaredType.
	Affinity string
	Nullable bool
	Default  *string
	// PrimaryKey is the 1-based position in the primary key, or 0.
	PrimaryKey int
}

// Conn returns the owning connection.
func (m *MetaData) Conn() *Conn {
	return m.conn
}

func (m *MetaData) DatabaseProductName() string {
	return "SQLite"
}

// DatabaseProductVersion asks SQLite for its library version.
func (m *MetaData) DatabaseProductVersion(ctx context.Context) (string, error) {
	rows, err := m.query(ctx, "SELECT sqlite_version()")
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var version string
	if !rows.Next() {
		return "", rows.Err()
	}
	if err := rows.Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func (m *MetaData) DriverName() string {
	return DriverName + " (" + native.DriverPackage() + ")"
}

func (m *MetaData) DriverVersion() string {
	return Version
}

// URL identifies the database the same way the litebridge driver's DSN does.
func (m *MetaData) URL() string {
	return DriverName + ":" + m.conn.db.Path()
}

func (m *MetaData) IsReadOnly() bool {
	return m.conn.IsReadOnly()
}

func (m *MetaData) SupportsTransactions() bool {
	return true
}

func (m *MetaData) SupportsGetGeneratedKeys() bool {
	return true
}

func (m *MetaData) SupportsResultSetType(t ResultSetType) bool {
	return t == TypeForwardOnly
}

func (m *MetaData) SupportsResultSetConcurrency(t ResultSetType, c Concurrency) bool {
	return t == TypeForwardOnly && c == ConcurReadOnly
}

// DefaultTransactionIsolation is serializable: SQLite transactions are
// fully isolated from other connections.
func (m *MetaData) DefaultTransactionIsolation() sql.IsolationLevel {
	return sql.LevelSerializable
}

// Tables lists user tables and views by name.
func (m *MetaData) Tables(ctx context.Context) ([]Table, error) {
	rows, err := m.query(ctx, `SELECT name, type FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Columns describes the columns of table in declaration order.
func (m *MetaData) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := m.query(ctx, "PRAGMA table_info("+pq.QuoteIdentifier(table)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			c       Column
			notNull int64
			dflt    sql.NullString
		)
		if err := rows.Scan(&c.Position, &c.Name, &c.DeclaredType, &notNull, &dflt, &c.PrimaryKey); err != nil {
			return nil, err
		}
		c.Nullable = notNull == 0
		if dflt.Valid {
			c.Default = &dflt.String
		}
		c.Affinity = typeconv.Affinity(c.DeclaredType)
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// PrimaryKeys returns the primary key columns of table in key order.
func (m *MetaData) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	cols, err := m.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	var pk []Column
	for _, c := range cols {
		if c.PrimaryKey > 0 {
			pk = append(pk, c)
		}
	}
	sort.Slice(pk, func(i, j int) bool { return pk[i].PrimaryKey < pk[j].PrimaryKey })
	names := make([]string, len(pk))
	for i, c := range pk {
		names[i] = c.Name
	}
	return names, nil
}

func (m *MetaData) query(ctx context.Context, query string) (*Rows, error) {
	if err := m.conn.checkOpen(); err != nil {
		return nil, err
	}
	cur, err := m.conn.db.Query(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	return newRows(cur), nil
}
