// Package native is the SQLite database handle that litebridge adapts.
//
// The handle mirrors a mobile platform's SQLite database object: it is
// opened once, executes literal SQL, tracks nested transactions through
// begin / mark-successful / end and reports its open and read-only state.
// The SQL engine itself is the SQLite driver compiled into the binary
// (modernc.org/sqlite by default, mattn/go-sqlite3 with -tags cgo_sqlite).
package native

import (
	"context"
	"database/sql/driver"
	"net/url"
	"strings"
)

// OpenFlags control how Open opens the database file.
type OpenFlags int

const (
	// OpenReadOnly opens the database for reading only.
	OpenReadOnly OpenFlags = 1 << iota
	// CreateIfNecessary creates the database file if it does not exist.
	CreateIfNecessary

	// OpenReadWrite opens the database for reading and writing.
	OpenReadWrite OpenFlags = 0
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Result reports the outcome of a data-modifying statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Cursor iterates over the rows produced by Query.
type Cursor interface {
	// Columns returns the result column names.
	Columns() []string
	// Next fills dest with the next row. It returns io.EOF after the last row.
	Next(dest []driver.Value) error
	Close() error
}

// Database is an open SQLite database handle.
type Database interface {
	// ExecSQL runs a single statement that returns no data.
	ExecSQL(ctx context.Context, query string, args ...any) error
	// Exec runs a data-modifying statement and reports its result.
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	// Query runs a statement and returns a cursor over its rows.
	Query(ctx context.Context, query string, args ...any) (Cursor, error)

	// BeginTransaction begins a transaction in EXCLUSIVE mode.
	BeginTransaction() error
	// BeginTransactionNonExclusive begins a transaction in IMMEDIATE mode,
	// leaving the database readable by other connections.
	BeginTransactionNonExclusive() error
	// SetTransactionSuccessful marks the current transaction as successful.
	SetTransactionSuccessful() error
	// EndTransaction ends the current transaction. The outermost
	// transaction commits only if it and every nested transaction
	// were marked successful.
	EndTransaction() error
	InTransaction() bool

	IsOpen() bool
	IsReadOnly() bool
	Path() string
	Close() error
}

// ParseDSN splits a litebridge DSN into the path to open and its flags.
// A file: URI keeps its mode parameter; anything else opens read-write and
// creates the file if needed.
func ParseDSN(dsn string) (string, OpenFlags) {
	if dsn == MemoryPath {
		return dsn, OpenReadWrite
	}
	_, query, _ := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		return dsn, CreateIfNecessary
	}
	switch values.Get("mode") {
	case "ro":
		return dsn, OpenReadOnly
	case "rw":
		return dsn, OpenReadWrite
	default:
		return dsn, CreateIfNecessary
	}
}
