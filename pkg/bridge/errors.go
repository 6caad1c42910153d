package bridge

import (
	"errors"
	"fmt"

	"github.com/TechXTT/litebridge/pkg/native"
)

// SQLSTATE classes reported by SQLError.
const (
	StateGeneral                = "HY000"
	StateFeatureNotSupported    = "0A000"
	StateConnectionDoesNotExist = "08003"
	StateInvalidParameterIndex  = "07009"
	StateIntegrityConstraint    = "23000"
	StateInvalidTransaction     = "25000"
	StateReadOnlyTransaction    = "25006"
	StateSerializationFailure   = "40001"
)

var (
	// ErrNotSupported is the cause of every "feature not supported" SQLError.
	ErrNotSupported = errors.New("feature not supported")
	// ErrAutoCommit is returned by Commit and Rollback in auto-commit mode.
	ErrAutoCommit = errors.New("connection is in auto-commit mode")
	// ErrConnClosed is returned when the underlying handle is closed.
	ErrConnClosed = errors.New("connection is closed")
	// ErrStmtClosed is returned when a closed statement is used.
	ErrStmtClosed = errors.New("statement is closed")
	// ErrNoGeneratedKeys is returned by GeneratedKeys when the statement
	// was not created to return them.
	ErrNoGeneratedKeys = errors.New("generated keys were not requested")
)

// SQLError is the error type every bridge operation reports. Err keeps the
// underlying cause, so errors.Is and errors.As reach native errors as well
// as the sentinels above.
type SQLError struct {
	State   string
	Code    int
	Message string
	Err     error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("litebridge: %s (SQLSTATE %s)", e.Message, e.State)
}

func (e *SQLError) Unwrap() error { return e.Err }

func newSQLError(state string, cause error, format string, args ...any) *SQLError {
	return &SQLError{State: state, Message: fmt.Sprintf(format, args...), Err: cause}
}

func notSupported(feature string) error {
	return newSQLError(StateFeatureNotSupported, ErrNotSupported, "%s is not supported", feature)
}

// translate maps an error raised by the native handle onto SQLError.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var sqlErr *SQLError
	if errors.As(err, &sqlErr) {
		return err
	}

	var se *native.SQLiteError
	switch {
	case errors.As(err, &se):
		return &SQLError{State: stateForCode(se.PrimaryCode()), Code: se.Code, Message: se.Error(), Err: err}
	case errors.Is(err, native.ErrClosed):
		return &SQLError{State: StateConnectionDoesNotExist, Message: err.Error(), Err: err}
	case errors.Is(err, native.ErrIllegalState):
		return &SQLError{State: StateInvalidTransaction, Message: err.Error(), Err: err}
	default:
		return &SQLError{State: StateGeneral, Message: err.Error(), Err: err}
	}
}

func stateForCode(code int) string {
	switch code {
	case native.CodeConstraint:
		return StateIntegrityConstraint
	case native.CodeReadOnly:
		return StateReadOnlyTransaction
	case native.CodeBusy, native.CodeLocked:
		return StateSerializationFailure
	default:
		return StateGeneral
	}
}
