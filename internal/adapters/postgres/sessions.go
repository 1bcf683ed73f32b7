package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/pkg/metrics"
)

const sessionColumns = `id, rounds, current_round, total_score, location_ids, guesses,
	player_name, created_at, updated_at, completed_at`

// SessionStore implements repository.SessionStore on the game_sessions table.
type SessionStore struct {
	pool *pgxpool.Pool
}

var _ repository.SessionStore = (*SessionStore)(nil)

// NewSessionStore wraps an open pool.
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Create(ctx context.Context, gs *model.GameSession) error {
	defer observe(time.Now(), metrics.RecordRepositoryUpdateLatency)

	guesses, err := json.Marshal(gs.Guesses)
	if err != nil {
		return fmt.Errorf("create session: encode guesses: %w", err)
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO game_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		gs.ID, gs.Rounds, gs.CurrentRound, gs.TotalScore, gs.LocationIDs, guesses,
		gs.PlayerName, gs.CreatedAt, gs.UpdatedAt, gs.CompletedAt)
	return mapErr("create session "+gs.ID, err)
}

func (s *SessionStore) Get(ctx context.Context, id string) (*model.GameSession, error) {
	defer observe(time.Now(), metrics.RecordRepositoryQueryLatency)

	gs, err := scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get session "+id, err)
	}
	return gs, nil
}

// Update locks the row with SELECT ... FOR UPDATE for the whole read-modify-write.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*model.GameSession) error) (*model.GameSession, error) {
	defer observe(time.Now(), metrics.RecordRepositoryUpdateLatency)

	var out *model.GameSession
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		gs, err := scanSession(tx.QueryRow(ctx,
			`SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return mapErr("update session "+id, err)
		}
		if err := fn(gs); err != nil {
			return err
		}
		guesses, err := json.Marshal(gs.Guesses)
		if err != nil {
			return fmt.Errorf("update session %s: encode guesses: %w", id, err)
		}
		_, err = tx.Exec(ctx, `UPDATE game_sessions
			SET current_round = $2, total_score = $3, guesses = $4, player_name = $5,
			    updated_at = $6, completed_at = $7
			WHERE id = $1`,
			id, gs.CurrentRound, gs.TotalScore, guesses, gs.PlayerName, gs.UpdatedAt, gs.CompletedAt)
		if err != nil {
			return mapErr("update session "+id, err)
		}
		out = gs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM game_sessions`).Scan(&n)
	return n, mapErr("count sessions", err)
}

// ListCompleted returns every finished game that has a player name.
func (s *SessionStore) ListCompleted(ctx context.Context) ([]model.CompletedGame, error) {
	defer observe(time.Now(), metrics.RecordRepositoryQueryLatency)

	rows, err := s.pool.Query(ctx, `SELECT id, player_name, total_score, created_at, completed_at
		FROM game_sessions
		WHERE completed_at IS NOT NULL AND player_name <> ''`)
	if err != nil {
		return nil, mapErr("list completed", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CompletedGame, error) {
		var g model.CompletedGame
		err := row.Scan(&g.GameID, &g.PlayerName, &g.TotalScore, &g.CreatedAt, &g.CompletedAt)
		return g, err
	})
	return out, mapErr("list completed", err)
}

func scanSession(row pgx.Row) (*model.GameSession, error) {
	var (
		gs      model.GameSession
		guesses []byte
	)
	err := row.Scan(&gs.ID, &gs.Rounds, &gs.CurrentRound, &gs.TotalScore, &gs.LocationIDs, &guesses,
		&gs.PlayerName, &gs.CreatedAt, &gs.UpdatedAt, &gs.CompletedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(guesses, &gs.Guesses); err != nil {
		return nil, fmt.Errorf("decode guesses: %w", err)
	}
	return &gs, nil
}

func observe(start time.Time, record func(float64)) {
	record(float64(time.Since(start).Microseconds()) / 1000)
}
