package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/TechXTT/litebridge/pkg/bridge"
)

// Connect opens dsn through the litebridge driver and pings it. The pool
// holds a single connection so that every call shares one SQLite session.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is empty")
	}
	db, err := sql.Open(bridge.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func Close(db *sql.DB) error {
	return db.Close()
}
