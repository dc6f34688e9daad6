package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/callcoach/internal/config"
)

// connectWait bounds how long Connect keeps retrying an unreachable database.
const connectWait = 30 * time.Second

// Connect opens a pool and waits for the first successful ping, retrying with
// exponential backoff while the database comes up. A malformed URL fails at once.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = connectWait

	attempt := 0
	ping := func() error {
		attempt++
		err := pool.Ping(ctx)
		if err != nil {
			slog.Warn("database not ready", "attempt", attempt, "error", err)
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(eb, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
