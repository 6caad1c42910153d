package runtime

import (
	"context"
	"database/sql"

	"github.com/TechXTT/litebridge/internal/core"
	"github.com/TechXTT/litebridge/internal/logger"
	"github.com/TechXTT/litebridge/pkg/config"
)

// Connect opens the configured database through the litebridge driver.
func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dsn := cfg.DSN()
	logger.Debug("runtime: connecting to %s", dsn)
	return core.Connect(ctx, dsn)
}
