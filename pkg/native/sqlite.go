package native

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/TechXTT/litebridge/internal/logger"
)

const (
	beginExclusive = "BEGIN EXCLUSIVE;"
	beginImmediate = "BEGIN IMMEDIATE;"
	beginDeferred  = "BEGIN;"
	commitSQL      = "COMMIT;"
	rollbackSQL    = "ROLLBACK;"
)

// txFrame is one level of a nested transaction.
type txFrame struct {
	successful  bool
	childFailed bool
}

// SQLiteDatabase is a Database backed by database/sql and the compiled-in
// SQLite driver. All work runs on one pinned connection so that transaction
// control statements and queries share a single SQLite session.
type SQLiteDatabase struct {
	mu       sync.Mutex
	db       *sql.DB
	conn     *sql.Conn
	path     string
	readOnly bool
	open     bool
	frames   []*txFrame
	cursors  map[*sqlCursor]struct{}
}

var _ Database = (*SQLiteDatabase)(nil)

// Open opens the SQLite database at path.
func Open(ctx context.Context, path string, flags OpenFlags) (*SQLiteDatabase, error) {
	db, err := sql.Open(driverName, DataSourceName(path, flags))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d, err := Wrap(ctx, db, path, flags)
	if err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Wrap builds a handle around an existing pool. The pool is limited to a
// single connection and is closed together with the handle.
func Wrap(ctx context.Context, db *sql.DB, path string, flags OpenFlags) (*SQLiteDatabase, error) {
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Debug("native: opened %s (driver %s, read-only %t)", path, driverType, flags&OpenReadOnly != 0)
	return &SQLiteDatabase{
		db:       db,
		conn:     conn,
		path:     path,
		readOnly: flags&OpenReadOnly != 0,
		open:     true,
		cursors:  make(map[*sqlCursor]struct{}),
	}, nil
}

// DataSourceName turns a path into a file: URI carrying the open mode.
func DataSourceName(path string, flags OpenFlags) string {
	if path == MemoryPath {
		return path
	}
	mode := "rw"
	switch {
	case flags&OpenReadOnly != 0:
		mode = "ro"
	case flags&CreateIfNecessary != 0:
		mode = "rwc"
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	// An explicit mode in the URI wins.
	if strings.Contains(dsn, "mode=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "mode=" + mode
}

// DriverName returns the database/sql driver name the handle opens with.
func DriverName() string {
	return driverName
}

// DriverType returns "purego" for modernc.org/sqlite and "cgo" for
// mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// DriverPackage returns the import path of the SQLite driver in use.
func DriverPackage() string {
	return driverPackage
}

func (d *SQLiteDatabase) ExecSQL(ctx context.Context, query string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return closedError()
	}
	_, err := d.conn.ExecContext(ctx, query, args...)
	return sqliteError("exec", query, err)
}

func (d *SQLiteDatabase) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return Result{}, closedError()
	}
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, sqliteError("exec", query, err)
	}
	return resultOf(res, query)
}

// resultOf reads the counters of res. SQL holding no statement, such as an
// empty string or a lone comment, leaves modernc without a driver result
// and the accessors panic; that case is reported as a zero Result.
func resultOf(res sql.Result, query string) (out Result, err error) {
	defer func() {
		if recover() != nil {
			out, err = Result{}, nil
		}
	}()
	if out.LastInsertID, err = res.LastInsertId(); err != nil {
		return Result{}, sqliteError("last insert id", query, err)
	}
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return Result{}, sqliteError("rows affected", query, err)
	}
	return out, nil
}

func (d *SQLiteDatabase) Query(ctx context.Context, query string, args ...any) (Cursor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, closedError()
	}
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqliteError("query", query, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, sqliteError("columns", query, err)
	}
	cur := &sqlCursor{db: d, rows: rows, cols: cols}
	d.cursors[cur] = struct{}{}
	return cur, nil
}

func (d *SQLiteDatabase) BeginTransaction() error {
	return d.begin(beginExclusive)
}

func (d *SQLiteDatabase) BeginTransactionNonExclusive() error {
	return d.begin(beginImmediate)
}

// Transaction control runs on context.Background because the Database
// transaction methods take no context.
func (d *SQLiteDatabase) begin(stmt string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return closedError()
	}
	if len(d.frames) == 0 {
		// A read-only session cannot take the write lock IMMEDIATE and
		// EXCLUSIVE ask for.
		if d.readOnly {
			stmt = beginDeferred
		}
		if _, err := d.conn.ExecContext(context.Background(), stmt); err != nil {
			return sqliteError("begin", stmt, err)
		}
	}
	d.frames = append(d.frames, &txFrame{})
	return nil
}

func (d *SQLiteDatabase) SetTransactionSuccessful() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return closedError()
	}
	if len(d.frames) == 0 {
		return illegalState("cannot perform this operation because there is no current transaction")
	}
	top := d.frames[len(d.frames)-1]
	if top.successful {
		return illegalState("cannot perform this operation because the transaction has already been marked successful")
	}
	top.successful = true
	return nil
}

func (d *SQLiteDatabase) EndTransaction() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return closedError()
	}
	if len(d.frames) == 0 {
		return illegalState("cannot perform this operation because there is no current transaction")
	}
	top := d.frames[len(d.frames)-1]
	d.frames = d.frames[:len(d.frames)-1]
	ok := top.successful && !top.childFailed

	if len(d.frames) > 0 {
		if !ok {
			d.frames[len(d.frames)-1].childFailed = true
		}
		return nil
	}

	ctx := context.Background()
	if ok {
		if _, err := d.conn.ExecContext(ctx, commitSQL); err != nil {
			d.conn.ExecContext(ctx, rollbackSQL)
			return sqliteError("commit", commitSQL, err)
		}
		return nil
	}
	_, err := d.conn.ExecContext(ctx, rollbackSQL)
	return sqliteError("rollback", rollbackSQL, err)
}

func (d *SQLiteDatabase) InTransaction() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames) > 0
}

func (d *SQLiteDatabase) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *SQLiteDatabase) IsReadOnly() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readOnly
}

func (d *SQLiteDatabase) Path() string {
	return d.path
}

// forget drops a cursor closed by its owner.
func (d *SQLiteDatabase) forget(c *sqlCursor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cursors, c)
}

// Close closes any cursor still open, rolls back any open transaction and
// releases the connection pool. An open cursor holds the pinned connection,
// so it has to go first. Closing a closed handle is a no-op.
func (d *SQLiteDatabase) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil
	}
	d.open = false
	for c := range d.cursors {
		if err := c.rows.Close(); err != nil {
			logger.Warn("native: closing cursor of %s: %v", d.path, err)
		}
	}
	d.cursors = nil
	if len(d.frames) > 0 {
		d.frames = nil
		if _, err := d.conn.ExecContext(context.Background(), rollbackSQL); err != nil {
			logger.Warn("native: rollback on close of %s: %v", d.path, err)
		}
	}
	logger.Debug("native: closed %s", d.path)
	return errors.Join(d.conn.Close(), d.db.Close())
}
