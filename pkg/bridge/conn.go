// Package bridge exposes a native SQLite handle through a JDBC-shaped
// connection API and through database/sql.
//
// A Conn wraps one already-open native.Database. It never opens the
// database file and only closes it when constructed with WithOwnedHandle.
// Transactions are delegated to the handle: with auto-commit off, the first
// statement begins a non-exclusive transaction that Commit or Rollback ends.
package bridge

import (
	"context"

	"github.com/google/uuid"

	"github.com/TechXTT/litebridge/internal/logger"
	"github.com/TechXTT/litebridge/pkg/native"
)

// Conn adapts a native.Database to a relational connection.
// A Conn is not safe for concurrent use.
type Conn struct {
	db   native.Database
	meta *MetaData
	id   string

	ownsHandle bool
	autoCommit bool
	// enteredTransaction is set while the handle's current transaction
	// was begun by this Conn.
	enteredTransaction bool
}

// Option configures a Conn.
type Option func(*Conn)

// WithOwnedHandle makes Close close the native handle.
func WithOwnedHandle() Option {
	return func(c *Conn) { c.ownsHandle = true }
}

// WithAutoCommit sets the initial auto-commit mode. The default is on.
func WithAutoCommit(on bool) Option {
	return func(c *Conn) { c.autoCommit = on }
}

// NewConn wraps an open handle.
func NewConn(db native.Database, opts ...Option) *Conn {
	c := &Conn{
		db:         db,
		id:         uuid.NewString()[:8],
		autoCommit: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.meta = &MetaData{conn: c}
	return c
}

// ensureTransaction begins a non-exclusive transaction when auto-commit is
// off and the handle is not already in one.
func (c *Conn) ensureTransaction() error {
	if c.autoCommit || c.db.InTransaction() {
		return nil
	}
	if err := c.db.BeginTransactionNonExclusive(); err != nil {
		return translate(err)
	}
	c.enteredTransaction = true
	logger.Debug("bridge[%s]: began transaction", c.id)
	return nil
}

// Execute runs literal SQL on the handle.
func (c *Conn) Execute(ctx context.Context, query string) error {
	return translate(c.db.ExecSQL(ctx, query))
}

// AutoCommit reports whether every statement runs in its own transaction.
func (c *Conn) AutoCommit() bool {
	return c.autoCommit
}

// SetAutoCommit switches auto-commit mode. Turning it on commits a
// transaction this Conn began.
func (c *Conn) SetAutoCommit(autoCommit bool) error {
	if c.autoCommit == autoCommit {
		return nil
	}
	if autoCommit && c.enteredTransaction && c.db.InTransaction() {
		if err := c.Commit(); err != nil {
			return err
		}
	}
	c.autoCommit = autoCommit
	return nil
}

// Commit commits the transaction this Conn began. It is an error in
// auto-commit mode and a no-op when the Conn does not own a transaction.
func (c *Conn) Commit() error {
	if c.autoCommit {
		return newSQLError(StateInvalidTransaction, ErrAutoCommit, "commit requested in auto-commit mode")
	}
	if !c.db.InTransaction() || !c.enteredTransaction {
		return nil
	}
	markErr := c.db.SetTransactionSuccessful()
	endErr := c.db.EndTransaction()
	c.enteredTransaction = false
	if markErr != nil {
		return translate(markErr)
	}
	if endErr != nil {
		return translate(endErr)
	}
	logger.Debug("bridge[%s]: committed transaction", c.id)
	return nil
}

// Rollback ends the handle's current transaction without marking it
// successful. Unlike Commit it does not check that this Conn began the
// transaction.
func (c *Conn) Rollback() error {
	if c.autoCommit {
		return newSQLError(StateInvalidTransaction, ErrAutoCommit, "rollback requested in auto-commit mode")
	}
	if !c.enteredTransaction {
		logger.Warn("bridge[%s]: rolling back a transaction this connection did not begin", c.id)
	}
	err := c.db.EndTransaction()
	c.enteredTransaction = false
	if err != nil {
		return translate(err)
	}
	logger.Debug("bridge[%s]: rolled back transaction", c.id)
	return nil
}

// CreateStatement returns a statement bound to this Conn.
func (c *Conn) CreateStatement(opts ...StatementOption) (*Statement, error) {
	o, err := buildStatementOptions(opts)
	if err != nil {
		return nil, err
	}
	return newStatement(c, o), nil
}

// PrepareStatement returns a parameterised statement bound to this Conn.
// The SQL is compiled by SQLite when the statement runs.
func (c *Conn) PrepareStatement(query string, opts ...StatementOption) (*PreparedStatement, error) {
	o, err := buildStatementOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{stmt: newStatement(c, o), query: query}, nil
}

// MetaData returns the metadata created with this Conn.
func (c *Conn) MetaData() *MetaData {
	return c.meta
}

// IsClosed reports whether the underlying handle is closed.
func (c *Conn) IsClosed() bool {
	return !c.db.IsOpen()
}

// IsReadOnly reports whether the underlying handle is read-only.
func (c *Conn) IsReadOnly() bool {
	return c.db.IsReadOnly()
}

// Handle returns the wrapped native handle.
func (c *Conn) Handle() native.Database {
	return c.db
}

// Close rolls back a transaction this Conn began and, for owned handles,
// closes the handle.
func (c *Conn) Close() error {
	if !c.db.IsOpen() {
		return nil
	}
	if c.enteredTransaction && c.db.InTransaction() {
		if err := c.db.EndTransaction(); err != nil {
			logger.Warn("bridge[%s]: rollback on close: %v", c.id, err)
		}
		c.enteredTransaction = false
	}
	if !c.ownsHandle {
		return nil
	}
	return translate(c.db.Close())
}

func (c *Conn) checkOpen() error {
	if !c.db.IsOpen() {
		return newSQLError(StateConnectionDoesNotExist, ErrConnClosed, "connection is closed")
	}
	return nil
}
