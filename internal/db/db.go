package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	Addr        string
	MaxConns    int32
	MaxIdleTime string
	// ConnectTimeout bounds pool start-up including the first Ping.
	ConnectTimeout time.Duration
}

// New opens a pgx pool and pings it once. An empty Addr is an error; callers decide
// whether to fall back to the in-memory stores.
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("db: empty address")
	}

	config, err := pgxpool.ParseConfig(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("db: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MaxIdleTime != "" {
		d, err := time.ParseDuration(cfg.MaxIdleTime)
		if err != nil {
			return nil, fmt.Errorf("db: max idle time: %w", err)
		}
		config.MaxConnIdleTime = d
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
