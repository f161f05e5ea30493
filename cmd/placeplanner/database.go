package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"placeplanner/internal/store"
	"placeplanner/shared/go/config"
)

// openDatabase connects to the configured driver.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, store.Dialect, error) {
	dialect, err := store.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, 0, err
	}

	switch dialect {
	case store.Postgres:
		db, err := openPostgres(ctx, cfg.URL)
		return db, dialect, err
	default:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		return db, dialect, err
	}
}

// openPostgres establishes a connection and retries until the instance responds.
func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}

		// Respect caller cancellation.
		if ctx.Err() != nil {
			break
		}

		if time.Now().After(deadline) {
			break
		}

		log.Warn().Err(lastErr).Dur("retry_in", backoff).Msg("database not ready")
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
