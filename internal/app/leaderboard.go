package service

import (
	"context"
	"fmt"

	"github.com/okian/campusguessr/internal/adapters/repository"
	"github.com/okian/campusguessr/internal/domain/types"
)

// Leaderboard returns the best completed games within filter's window.
// A zero limit uses the default; larger limits are capped.
func (s *Service) Leaderboard(ctx context.Context, filter types.Filter, limit int) ([]types.Entry, error) {
	switch {
	case limit < 0:
		return nil, fmt.Errorf("leaderboard: %w: %d", repository.ErrInvalidLimit, limit)
	case limit == 0:
		limit = s.defaultLimit
	case limit > s.maxLimit:
		limit = s.maxLimit
	}

	entries, err := s.leaderboard.TopN(ctx, limit, filter.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}

// Rank returns the all-time leaderboard entry of a game.
func (s *Service) Rank(ctx context.Context, gameID string) (types.Entry, error) {
	e, err := s.leaderboard.Rank(ctx, gameID)
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank: %w", err)
	}
	return e, nil
}
