package playtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	service "github.com/okian/campusguessr/internal/app"
	"github.com/okian/campusguessr/internal/domain/geo"
)

type startRequest struct {
	PlayerName string `json:"playerName"`
}

type guessRequest struct {
	GameID         string  `json:"gameId"`
	GuessLatitude  float64 `json:"guessLatitude"`
	GuessLongitude float64 `json:"guessLongitude"`
}

// newPlayerName returns a unique name matching the server's name rule.
func newPlayerName() string {
	return playerNamePrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// randomPoint draws a coordinate uniformly inside b.
func randomPoint(b geo.Bounds) geo.Coordinate {
	return geo.Coordinate{
		Latitude:  b.South + rand.Float64()*(b.North-b.South),
		Longitude: b.West + rand.Float64()*(b.East-b.West),
	}
}

// playGame starts a named game and guesses every round until it completes.
func playGame(ctx context.Context, c *client, bounds geo.Bounds) (Played, int, error) {
	name := newPlayerName()

	var start service.StartGameResult
	if err := c.post(ctx, "/game/start", startRequest{PlayerName: name}, &start); err != nil {
		return Played{}, 0, fmt.Errorf("start game: %w", err)
	}

	p := Played{GameID: start.GameID, PlayerName: name}
	guesses := 0
	for round := 1; round <= start.Rounds; round++ {
		pin := randomPoint(bounds)
		var res service.GuessResult
		err := c.post(ctx, "/game/submit-guess", guessRequest{
			GameID:         start.GameID,
			GuessLatitude:  pin.Latitude,
			GuessLongitude: pin.Longitude,
		}, &res)
		if err != nil {
			return p, guesses, fmt.Errorf("game %s round %d: %w", start.GameID, round, err)
		}
		guesses++
		p.TotalScore = res.TotalScore
		p.Rounds = res.Round
		if res.GameComplete {
			return p, guesses, nil
		}
	}
	return p, guesses, fmt.Errorf("game %s did not complete after %d rounds", start.GameID, start.Rounds)
}
