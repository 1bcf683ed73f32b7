package playtest

import (
	"errors"
	"fmt"

	"github.com/okian/campusguessr/internal/domain/types"
)

// verifyResults checks that every played game is ranked with its own name
// and total, and that the leaderboard is ordered and headed by a score no
// lower than the best simulated game.
func verifyResults(played []Played, ranks map[string]types.Entry, leaderboard []types.Entry) error {
	best := played[0]
	for _, p := range played {
		if p.TotalScore > best.TotalScore {
			best = p
		}
		e, ok := ranks[p.GameID]
		if !ok {
			return fmt.Errorf("game %s was not ranked", p.GameID)
		}
		if e.Score != p.TotalScore {
			return fmt.Errorf("game %s ranked with score %d, played %d", p.GameID, e.Score, p.TotalScore)
		}
		if e.Username != p.PlayerName {
			return fmt.Errorf("game %s ranked as %q, played as %q", p.GameID, e.Username, p.PlayerName)
		}
	}
	return verifyLeaderboard(leaderboard, best)
}

// verifyLeaderboard checks positional ranks and score ordering.
func verifyLeaderboard(leaderboard []types.Entry, best Played) error {
	if len(leaderboard) == 0 {
		return errors.New("empty leaderboard")
	}
	for i, e := range leaderboard {
		if e.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d", i, e.Rank)
		}
		if i == 0 {
			continue
		}
		prev := leaderboard[i-1]
		if e.Score > prev.Score {
			return fmt.Errorf("leaderboard not sorted: rank %d scores %d above rank %d with %d", e.Rank, e.Score, prev.Rank, prev.Score)
		}
		if e.Score == prev.Score && e.CreatedAt.Before(prev.CreatedAt) {
			return fmt.Errorf("tie at %d not ordered by creation time at rank %d", e.Score, e.Rank)
		}
	}
	if top := leaderboard[0]; top.Score < best.TotalScore {
		return fmt.Errorf("top score %d is below the best played game %d (%s)", top.Score, best.TotalScore, best.GameID)
	}
	return nil
}
