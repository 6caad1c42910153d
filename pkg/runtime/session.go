package runtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Session holds a DB connection and provides query context.
type Session struct {
	DB *sql.DB
}

// NewSession creates a new session from an existing DB.
func NewSession(db *sql.DB) *Session {
	return &Session{DB: db}
}

// Exec runs a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.DB.ExecContext(ctx, query, args...)
}

// Query runs a statement that returns rows.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.DB.QueryContext(ctx, query, args...)
}

// Transaction runs fn inside a transaction. The transaction commits when
// fn returns nil and rolls back when fn fails or panics; a panic is
// re-raised after the rollback.
func (s *Session) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
