package bridge

import (
	"context"
	"strings"

	"github.com/TechXTT/litebridge/pkg/native"
)

// Statement runs literal SQL on its Conn. Each execution first makes sure
// the Conn's transaction is open when auto-commit is off.
type Statement struct {
	conn   *Conn
	opts   statementOptions
	closed bool

	rows        *Rows
	updateCount int64
	last        native.Result
}

func newStatement(c *Conn, o statementOptions) *Statement {
	return &Statement{conn: c, opts: o, updateCount: -1}
}

// Conn returns the connection the statement was created on.
func (s *Statement) Conn() *Conn {
	return s.conn
}

func (s *Statement) prepare() error {
	if s.closed {
		return newSQLError(StateGeneral, ErrStmtClosed, "statement is closed")
	}
	if err := s.conn.checkOpen(); err != nil {
		return err
	}
	s.closeRows()
	return s.conn.ensureTransaction()
}

// ExecuteQuery runs a statement that returns rows.
func (s *Statement) ExecuteQuery(ctx context.Context, query string, args ...any) (*Rows, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}
	cur, err := s.conn.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	s.rows = newRows(cur)
	s.updateCount = -1
	return s.rows, nil
}

// ExecuteUpdate runs a data-modifying statement and returns the number of
// rows it changed.
func (s *Statement) ExecuteUpdate(ctx context.Context, query string, args ...any) (int64, error) {
	if err := s.prepare(); err != nil {
		return 0, err
	}
	res, err := s.conn.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err)
	}
	s.last = res
	s.updateCount = res.RowsAffected
	return res.RowsAffected, nil
}

// Execute runs any statement. It reports true when the statement produced
// rows, available from ResultRows, and false when it produced an update
// count, available from UpdateCount.
func (s *Statement) Execute(ctx context.Context, query string, args ...any) (bool, error) {
	if returnsRows(query) {
		if _, err := s.ExecuteQuery(ctx, query, args...); err != nil {
			return false, err
		}
		return true, nil
	}
	if _, err := s.ExecuteUpdate(ctx, query, args...); err != nil {
		return false, err
	}
	return false, nil
}

// ResultRows returns the rows of the last execution, or nil.
func (s *Statement) ResultRows() *Rows {
	return s.rows
}

// UpdateCount returns the rows changed by the last execution, or -1 when
// it produced rows.
func (s *Statement) UpdateCount() int64 {
	return s.updateCount
}

// GeneratedKeys returns the row id of the last inserted row.
func (s *Statement) GeneratedKeys() (int64, error) {
	if !s.opts.generatedKeys {
		return 0, newSQLError(StateGeneral, ErrNoGeneratedKeys, "statement was not created to return generated keys")
	}
	return s.last.LastInsertID, nil
}

// Close closes the current rows. Closing twice is a no-op.
func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeRows()
}

func (s *Statement) closeRows() error {
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}

// returnsRows sniffs the leading keyword of a statement.
func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(strings.TrimLeft(fields[0], "(")) {
	case "SELECT", "WITH", "VALUES", "PRAGMA", "EXPLAIN":
		return true
	}
	return false
}
