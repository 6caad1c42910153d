package native

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalState is returned when an operation is not valid for the
	// current state of the handle, such as ending a transaction that was
	// never begun.
	ErrIllegalState = errors.New("native: illegal state")
	// ErrClosed is returned for any operation on a closed handle.
	ErrClosed = errors.New("native: database is closed")
)

// SQLite primary result codes the adapter cares about.
const (
	CodeBusy       = 5
	CodeLocked     = 6
	CodeReadOnly   = 8
	CodeConstraint = 19
)

// SQLiteError is raised by the SQLite library while running a statement.
type SQLiteError struct {
	Op    string
	Query string
	// Code is the SQLite extended result code, or 0 when the driver did
	// not report one.
	Code int
	Err  error
}

func (e *SQLiteError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("native: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("native: %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *SQLiteError) Unwrap() error { return e.Err }

// PrimaryCode strips the extended bits from Code.
func (e *SQLiteError) PrimaryCode() int { return e.Code & 0xff }

func illegalState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalState, fmt.Sprintf(format, args...))
}

func closedError() error {
	return fmt.Errorf("%w: %w", ErrIllegalState, ErrClosed)
}

func sqliteError(op, query string, err error) error {
	if err == nil {
		return nil
	}
	code, _ := resultCode(err)
	return &SQLiteError{Op: op, Query: query, Code: code, Err: err}
}
