// Package postgres stores game sessions and locations in PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/campusguessr/internal/adapters/repository"
)

const (
	maxConns        = 10
	maxConnLifetime = 30 * time.Minute
	uniqueViolation = "23505"
)

// Open creates a connection pool and verifies it with a ping.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: parse url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MaxConnLifetime = maxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("open postgres: verify connection: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          TEXT PRIMARY KEY,
		image_url   TEXT NOT NULL,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		created_by  TEXT NOT NULL DEFAULT '',
		seq         BIGSERIAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_created_by ON locations (created_by)`,
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id            TEXT PRIMARY KEY,
		rounds        INTEGER NOT NULL,
		current_round INTEGER NOT NULL,
		total_score   INTEGER NOT NULL,
		location_ids  TEXT[] NOT NULL,
		guesses       JSONB NOT NULL DEFAULT '[]',
		player_name   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		completed_at  TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_ranked
		ON game_sessions (total_score DESC, created_at)
		WHERE completed_at IS NOT NULL AND player_name <> ''`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: statement #%d: %w", i+1, err)
			}
		}
		return nil
	})
}

// mapErr translates driver errors to repository sentinels.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, repository.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}
