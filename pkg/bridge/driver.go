package bridge

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/TechXTT/litebridge/pkg/native"
)

const (
	// DriverName is the name the driver is registered under with database/sql.
	DriverName = "litebridge"
	// Version is the litebridge release.
	Version = "v0.3.0"
)

func init() {
	sql.Register(DriverName, &Driver{})
}

// Driver opens native handles from a DSN: a file path, ":memory:" or a
// file: URI whose mode parameter selects read-only (ro), read-write (rw) or
// read-write-create (rwc). A bare path is opened read-write-create.
type Driver struct{}

var _ driver.DriverContext = (*Driver)(nil)

func (d *Driver) Open(name string) (driver.Conn, error) {
	c, err := d.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	return &dsnConnector{dsn: name}, nil
}

type dsnConnector struct {
	dsn string
}

func (c *dsnConnector) Connect(ctx context.Context) (driver.Conn, error) {
	path, flags := native.ParseDSN(c.dsn)
	db, err := native.Open(ctx, path, flags)
	if err != nil {
		return nil, translate(err)
	}
	return &driverConn{conn: NewConn(db, WithOwnedHandle())}, nil
}

func (c *dsnConnector) Driver() driver.Driver {
	return &Driver{}
}

// Connector serves connections over one already-open handle. Connections
// it creates never close the handle.
type Connector struct {
	db   native.Database
	opts []Option
}

// NewConnector returns a Connector for db.
func NewConnector(db native.Database, opts ...Option) *Connector {
	return &Connector{db: db, opts: opts}
}

func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if !c.db.IsOpen() {
		return nil, driver.ErrBadConn
	}
	return &driverConn{conn: NewConn(c.db, c.opts...)}, nil
}

func (c *Connector) Driver() driver.Driver {
	return &Driver{}
}

// OpenDB returns a *sql.DB over db. The pool is limited to one connection
// because the handle is a single SQLite session.
func OpenDB(db native.Database, opts ...Option) *sql.DB {
	sqlDB := sql.OpenDB(NewConnector(db, opts...))
	sqlDB.SetMaxOpenConns(1)
	return sqlDB
}

type driverConn struct {
	conn *Conn
}

// Unwrap returns the Conn behind a driver connection handed out by
// (*sql.Conn).Raw.
func Unwrap(dc any) (*Conn, bool) {
	c, ok := dc.(*driverConn)
	if !ok {
		return nil, false
	}
	return c.conn, true
}

var (
	_ driver.Conn               = (*driverConn)(nil)
	_ driver.ConnBeginTx        = (*driverConn)(nil)
	_ driver.ConnPrepareContext = (*driverConn)(nil)
	_ driver.ExecerContext      = (*driverConn)(nil)
	_ driver.QueryerContext     = (*driverConn)(nil)
	_ driver.Pinger             = (*driverConn)(nil)
	_ driver.Validator          = (*driverConn)(nil)
	_ driver.SessionResetter    = (*driverConn)(nil)
)

func (c *driverConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *driverConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	ps, err := c.conn.PrepareStatement(query)
	if err != nil {
		return nil, err
	}
	return &driverStmt{ps: ps}, nil
}

func (c *driverConn) Close() error {
	return c.conn.Close()
}

func (c *driverConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx turns auto-commit off and opens the transaction right away.
// ReadOnly is accepted as a hint; isolation levels other than the default
// and serializable are rejected.
func (c *driverConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	switch level := sql.IsolationLevel(opts.Isolation); level {
	case sql.LevelDefault, sql.LevelSerializable:
	default:
		return nil, notSupported("isolation level " + level.String())
	}
	if !c.conn.AutoCommit() {
		return nil, newSQLError(StateInvalidTransaction, nil, "transaction already in progress")
	}
	if err := c.conn.SetAutoCommit(false); err != nil {
		return nil, err
	}
	if err := c.conn.ensureTransaction(); err != nil {
		c.conn.autoCommit = true
		return nil, err
	}
	return &driverTx{conn: c.conn}, nil
}

func (c *driverConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	st, err := c.conn.CreateStatement()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	if _, err := st.ExecuteUpdate(ctx, query, namedArgs(args)...); err != nil {
		return nil, err
	}
	return driverResult{res: st.last}, nil
}

func (c *driverConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	st, err := c.conn.CreateStatement()
	if err != nil {
		return nil, err
	}
	rows, err := st.ExecuteQuery(ctx, query, namedArgs(args)...)
	if err != nil {
		return nil, err
	}
	return &driverRows{rows: rows}, nil
}

func (c *driverConn) Ping(ctx context.Context) error {
	if c.conn.IsClosed() {
		return driver.ErrBadConn
	}
	return nil
}

func (c *driverConn) IsValid() bool {
	return !c.conn.IsClosed()
}

func (c *driverConn) ResetSession(ctx context.Context) error {
	if c.conn.IsClosed() {
		return driver.ErrBadConn
	}
	return nil
}

type driverTx struct {
	conn *Conn
}

func (t *driverTx) Commit() error {
	err := t.conn.Commit()
	t.conn.autoCommit = true
	return err
}

func (t *driverTx) Rollback() error {
	err := t.conn.Rollback()
	t.conn.autoCommit = true
	return err
}

// driverStmt runs each execution on a fresh Statement so that rows from an
// earlier Query stay open.
type driverStmt struct {
	ps *PreparedStatement
}

var (
	_ driver.StmtExecContext  = (*driverStmt)(nil)
	_ driver.StmtQueryContext = (*driverStmt)(nil)
)

func (s *driverStmt) Close() error {
	return s.ps.Close()
}

func (s *driverStmt) NumInput() int {
	return -1
}

func (s *driverStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamed(args))
}

func (s *driverStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamed(args))
}

func (s *driverStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	st := newStatement(s.ps.stmt.conn, s.ps.stmt.opts)
	defer st.Close()
	if _, err := st.ExecuteUpdate(ctx, s.ps.query, namedArgs(args)...); err != nil {
		return nil, err
	}
	return driverResult{res: st.last}, nil
}

func (s *driverStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	st := newStatement(s.ps.stmt.conn, s.ps.stmt.opts)
	rows, err := st.ExecuteQuery(ctx, s.ps.query, namedArgs(args)...)
	if err != nil {
		return nil, err
	}
	return &driverRows{rows: rows}, nil
}

type driverResult struct {
	res native.Result
}

func (r driverResult) LastInsertId() (int64, error) { return r.res.LastInsertID, nil }
func (r driverResult) RowsAffected() (int64, error) { return r.res.RowsAffected, nil }

type driverRows struct {
	rows *Rows
}

func (r *driverRows) Columns() []string {
	return r.rows.Columns()
}

func (r *driverRows) Close() error {
	return r.rows.Close()
}

func (r *driverRows) Next(dest []driver.Value) error {
	return r.rows.next(dest)
}

func namedArgs(args []driver.NamedValue) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = sql.Named(a.Name, a.Value)
			continue
		}
		out[i] = a.Value
	}
	return out
}

func valuesToNamed(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}
