// Package repository defines the storage interfaces of the game and their
// in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/okian/campusguessr/internal/domain/model"
	"github.com/okian/campusguessr/internal/domain/types"
)

// SessionStore persists game sessions.
type SessionStore interface {
	// Create stores a new session. Returns ErrAlreadyExists for a reused id.
	Create(ctx context.Context, s *model.GameSession) error

	// Get returns a copy of the session or ErrNotFound.
	Get(ctx context.Context, id string) (*model.GameSession, error)

	// Update runs fn on the current session and saves the result if fn
	// returns nil. Calls for the same id are serialized, so fn sees the
	// latest state. Returns the saved session.
	Update(ctx context.Context, id string, fn func(*model.GameSession) error) (*model.GameSession, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// CompletedLister is implemented by session stores that can enumerate
// finished named games, used to rebuild a leaderboard on startup.
type CompletedLister interface {
	ListCompleted(ctx context.Context) ([]model.CompletedGame, error)
}

// LocationStore persists playable locations.
type LocationStore interface {
	Add(ctx context.Context, loc model.Location) error
	Get(ctx context.Context, id string) (model.Location, error)
	// List returns every location in insertion order.
	List(ctx context.Context) ([]model.Location, error)
	// ListByCreator returns the locations of one custom map. An empty
	// createdBy selects the default campus set.
	ListByCreator(ctx context.Context, createdBy string) ([]model.Location, error)
}

// Leaderboard ranks completed named games.
//
// Order: score desc, then earlier created_at, then game id asc.
type Leaderboard interface {
	// Record adds a completed game. Returns false if the game was already recorded.
	Record(ctx context.Context, g model.CompletedGame) (bool, error)

	// TopN returns up to n games created at or after since, ranked by
	// position in that filtered list. A zero since means all time.
	TopN(ctx context.Context, n int, since time.Time) ([]types.Entry, error)

	// Rank returns the all-time entry of a game or ErrNotFound.
	Rank(ctx context.Context, gameID string) (types.Entry, error)

	// Count returns the number of ranked games.
	Count(ctx context.Context) (int, error)
}
